package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func newStringsCmd(g *globalOptions) *cobra.Command {
	var contains string

	cmd := &cobra.Command{
		Use:   "strings <file>",
		Short: "Print the string table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := g.parse(args[0])
			if err != nil {
				return err
			}
			for i, s := range f.Strings {
				if contains != "" && !strings.Contains(s, contains) {
					continue
				}
				fmt.Printf("%6d  %s\n", i, strconv.Quote(s))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&contains, "contains", "", "only print strings containing this text")

	return cmd
}
