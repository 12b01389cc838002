package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newOffsetsCmd(g *globalOptions) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "offsets <file>",
		Short: "Print the debug info offset of every method of a compact dex file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := g.parse(args[0])
			if err != nil {
				return err
			}
			if !f.IsCompact() {
				return errors.Errorf("%s is not a compact dex file", args[0])
			}
			table := f.DebugInfoOffsets
			fmt.Printf("minimum offset %#x\n", table.MinimumOffset())
			for i := range f.Methods {
				off, err := table.GetOffset(uint32(i))
				if err != nil {
					return errors.Wrapf(err, "method %d", i)
				}
				if off == 0 && !all {
					continue
				}
				fmt.Printf("%6d  %#08x  %s\n", i, off, f.MethodSignature(uint32(i)))
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "also print methods without debug info")

	return cmd
}
