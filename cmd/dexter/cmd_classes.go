package main

import (
	"fmt"

	"github.com/dhamidi/dexter/dex"
	"github.com/spf13/cobra"
)

func newClassesCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "classes <file>",
		Short: "List the classes defined in a dex file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := g.parse(args[0])
			if err != nil {
				return err
			}
			for i := range f.Classes {
				c := &f.Classes[i]
				fields, methods := 0, 0
				if c.Data != nil {
					fields = len(c.Data.StaticFields) + len(c.Data.InstanceFields)
					methods = len(c.Data.DirectMethods) + len(c.Data.VirtualMethods)
				}
				fmt.Printf("%s\t%d fields\t%d methods\n", dex.PrettyDescriptor(f.ClassName(c)), fields, methods)
			}
			return nil
		},
	}
}
