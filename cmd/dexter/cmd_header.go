package main

import (
	"os"

	"github.com/dhamidi/dexter/dex"
	"github.com/dhamidi/dexter/format"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newHeaderCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "header <file>",
		Short: "Print the header and map list without decoding the class graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, f, err := g.openDecoder(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			items, err := d.DecodeMapList()
			if err != nil {
				return errors.Wrap(err, "map list")
			}
			return format.WriteHeader(os.Stdout, &dex.File{Header: *d.Header(), MapList: items})
		},
	}
}
