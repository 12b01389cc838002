package main

import (
	"os"
	"strings"

	"github.com/dhamidi/dexter/dex"
	"github.com/dhamidi/dexter/format"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newCodeCmd(g *globalOptions) *cobra.Command {
	var method string

	cmd := &cobra.Command{
		Use:   "code <file> <class>",
		Short: "Print code items, try blocks and line tables of a class",
		Long: `Print the code of every method of a class. The class is named either by
its descriptor (Lcom/example/Foo;) or in source form (com.example.Foo).`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := g.parse(args[0])
			if err != nil {
				return err
			}
			desc := args[1]
			if !strings.HasPrefix(desc, "L") || !strings.HasSuffix(desc, ";") {
				desc = dex.SourceToDescriptor(desc)
			}
			c := f.ClassByDescriptor(desc)
			if c == nil {
				return errors.Errorf("class %s not found in %s", desc, args[0])
			}
			if c.Data == nil {
				return nil
			}

			for _, group := range [][]dex.EncodedMethod{c.Data.DirectMethods, c.Data.VirtualMethods} {
				for i := range group {
					m := &group[i]
					if method != "" && f.MethodName(m.Method) != method {
						continue
					}
					if err := format.WriteMethodCode(os.Stdout, f, m); err != nil {
						return err
					}
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&method, "method", "m", "", "only print methods with this name")

	return cmd
}
