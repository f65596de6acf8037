package commands

import (
	"fmt"

	"github.com/speakeasy-api/asyncapi-codegen/emit"
	"github.com/spf13/cobra"
)

func newTargetsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "targets",
		Short: "List the available target languages",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			for _, name := range emit.Available() {
				e, err := emit.Get(name)
				if err != nil {
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-6s files: *%s\n", name, e.FileExtension())
			}
		},
	}
}
