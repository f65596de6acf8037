package commands

import (
	"encoding/json"
	"fmt"

	"github.com/speakeasy-api/asyncapi-codegen/eval"
	"github.com/speakeasy-api/asyncapi-codegen/generator"
	"github.com/spf13/cobra"
)

func newCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check <spec> <type> <payload>",
		Short: "Check a JSON payload against a generated type",
		Long: `Deserialize a JSON payload as one of the types generated from a document and
validate it, exactly as the generated code would.

The type is either the generated type name or the key of the entry in the
document. The payload path may be "-" to read it from stdin. On success the
payload is printed in its serialized form.`,
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runCheck,
	}
}

func runCheck(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	specPath, typeName, payloadPath := args[0], args[1], args[2]

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger(cmd, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	doc, err := loadDocument(ctx, cmd, logger, specPath)
	if err != nil {
		return err
	}
	if entry, ok := doc.Entry(typeName); ok {
		typeName = entry.TypeName()
	}

	decls, _, err := generator.Lower(doc)
	if err != nil {
		return err
	}
	in := eval.New(decls)
	if _, err := in.Lookup(typeName); err != nil {
		return err
	}

	text, err := readAll(cmd, payloadPath)
	if err != nil {
		return err
	}

	obj, ok := in.DeserializeString(typeName, text)
	if !ok {
		return fmt.Errorf("payload does not deserialize as %s", typeName)
	}

	out, err := json.MarshalIndent(in.Serialize(obj), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize payload: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))

	if !in.Validate(obj) {
		return fmt.Errorf("payload violates the constraints of %s", typeName)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✅ payload is a valid %s\n", typeName)
	return nil
}
