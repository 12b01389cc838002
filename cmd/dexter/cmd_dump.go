package main

import (
	"fmt"
	"os"

	"github.com/dhamidi/dexter/dex"
	"github.com/dhamidi/dexter/format"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newDumpCmd(g *globalOptions) *cobra.Command {
	var dumpFormat string

	cmd := &cobra.Command{
		Use:   "dump <file>...",
		Short: "Decode dex files and print their classes",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("format") && g.cfg.Format != "" {
				dumpFormat = g.cfg.Format
			}
			enc, err := format.New(dumpFormat, os.Stdout)
			if err != nil {
				return err
			}

			files, err := parseAll(g, args)
			if err != nil {
				return err
			}
			for i, f := range files {
				if len(files) > 1 && dumpFormat != "json" {
					fmt.Printf("# %s\n", args[i])
				}
				if err := enc.Encode(f); err != nil {
					return errors.Wrapf(err, "encode %s", dumpFormat)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&dumpFormat, "format", "f", "line", "output format (line, json, text, java)")

	return cmd
}

// parseAll decodes every path concurrently. Each container gets its own
// decoder; results keep the order of paths.
func parseAll(g *globalOptions, paths []string) ([]*dex.File, error) {
	files := make([]*dex.File, len(paths))
	eg := new(errgroup.Group)
	eg.SetLimit(g.jobs())
	for i, path := range paths {
		i, path := i, path
		eg.Go(func() error {
			f, err := g.parse(path)
			if err != nil {
				return err
			}
			files[i] = f
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return files, nil
}
