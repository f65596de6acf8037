// Package commands implements the asyncapi-gen command line.
package commands

import (
	// Back ends register themselves with the emit registry.
	_ "github.com/speakeasy-api/asyncapi-codegen/emit/cpp"
	_ "github.com/speakeasy-api/asyncapi-codegen/emit/golang"

	"github.com/spf13/cobra"
)

// NewRootCommand builds the asyncapi-gen command tree. The root command generates
// code; check, examples and targets are subcommands.
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "asyncapi-gen <spec> <prefix> <outdir>",
		Short: "Generate typed message code from an AsyncAPI document",
		Long: `Generate typed message code from the components of an AsyncAPI document.

Every entry under components.schemas and components.messages becomes one unit:
a struct with validation, serialization and deserialization for object schemas,
or a type alias for primitives and references. An umbrella unit including every
generated unit is written next to them.

Arguments:
  spec    path to the AsyncAPI document (YAML or JSON), "-" for stdin
  prefix  output prefix: include directory and namespace path for C++,
          package directory for Go
  outdir  existing directory the prefix is created in

Settings are read from ASYNCAPI_GEN_* environment variables and can be
overridden with flags.`,
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runGenerate,
	}

	flags := cmd.Flags()
	flags.StringP("target", "t", "", "target language (see the targets command)")
	flags.Int("concurrency", 0, "number of entries emitted in parallel")
	flags.Int("wrap-width", 0, "column doc comments are wrapped at")
	flags.Bool("summary", false, "print a table of the generated units")
	flags.String("select", "", "JSONPath expression restricting which entries are emitted")

	persistent := cmd.PersistentFlags()
	persistent.String("log-level", "", "log level (debug, info, warn, error)")
	persistent.String("log-format", "", "log format (console, json)")

	cmd.AddCommand(newCheckCommand())
	cmd.AddCommand(newExamplesCommand())
	cmd.AddCommand(newTargetsCommand())

	return cmd
}
