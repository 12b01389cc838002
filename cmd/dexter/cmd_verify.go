package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newVerifyCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "verify <file>...",
		Short: "Check the checksum and signature of dex files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			results := make([]error, len(args))
			eg := new(errgroup.Group)
			eg.SetLimit(g.jobs())
			for i, path := range args {
				i, path := i, path
				eg.Go(func() error {
					results[i] = verifyFile(g, path)
					return nil
				})
			}
			_ = eg.Wait()

			failed := 0
			for i, err := range results {
				if err == nil {
					fmt.Printf("%s: ok\n", args[i])
					continue
				}
				fmt.Printf("%s: %v\n", args[i], err)
				failed++
			}
			if failed > 0 {
				return errors.Errorf("%d of %d files failed verification", failed, len(args))
			}
			return nil
		},
	}
}

func verifyFile(g *globalOptions, path string) error {
	d, f, err := g.openDecoder(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := d.VerifyChecksum(); err != nil {
		return err
	}
	return d.VerifySignature()
}
