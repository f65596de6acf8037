package commands

import (
	"fmt"

	"github.com/speakeasy-api/asyncapi-codegen/conformance"
	"github.com/spf13/cobra"
)

func newExamplesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "examples <spec>",
		Short: "Validate the examples declared in a document",
		Long: `Validate every value listed under "examples" on the schemas and messages of a
document against the schema it belongs to, using a JSON Schema validator.

Message examples holding a "payload" key are validated by their payload.
The command fails when any example does not match.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runExamples,
	}
}

func runExamples(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger(cmd, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	doc, err := loadDocument(ctx, cmd, logger, args[0])
	if err != nil {
		return err
	}

	v, err := conformance.New(doc)
	if err != nil {
		return err
	}

	results := v.ValidateExamples()
	if len(results) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No examples to validate.")
		return nil
	}

	out := cmd.OutOrStdout()
	failed := 0
	for _, r := range results {
		label := fmt.Sprintf("%s examples[%d]", r.Entry, r.Index)
		if r.Name != "" {
			label += fmt.Sprintf(" (%s)", r.Name)
		}

		if r.Valid() {
			fmt.Fprintf(out, "✅ %s\n", label)
			continue
		}

		failed++
		fmt.Fprintf(out, "❌ %s\n", label)
		for _, err := range r.Errors {
			fmt.Fprintf(out, "   %s\n", err.Error())
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d examples do not match their schema", failed, len(results))
	}
	return nil
}
