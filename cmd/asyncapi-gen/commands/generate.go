package commands

import (
	"fmt"
	"strconv"

	"github.com/bndr/gotabulate"
	"github.com/speakeasy-api/asyncapi-codegen/cmd/asyncapi-gen/commands/cmdutil"
	"github.com/speakeasy-api/asyncapi-codegen/errors"
	"github.com/speakeasy-api/asyncapi-codegen/generator"
	"github.com/speakeasy-api/asyncapi-codegen/system"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	specPath, prefix, outDir := args[0], args[1], args[2]

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger(cmd, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if !cmdutil.IsStdin(specPath) {
		if err := cmdutil.RequireFile(specPath); err != nil {
			return fmt.Errorf("spec %w", err)
		}
	}
	if err := cmdutil.RequireDir(outDir); err != nil {
		return err
	}

	doc, err := loadDocument(ctx, cmd, logger, specPath)
	if err != nil {
		return err
	}

	selectExpr, _ := cmd.Flags().GetString("select")
	g, err := generator.New(
		generator.WithLogger(logger),
		generator.WithTarget(cfg.Target),
		generator.WithPrefix(prefix),
		generator.WithConcurrency(cfg.Concurrency),
		generator.WithWrapWidth(cfg.WrapWidth),
		generator.WithSelect(selectExpr),
	)
	if err != nil {
		return err
	}

	res, err := g.Generate(ctx, doc)
	if errors.Is(err, errors.ErrNoComponents) {
		fmt.Fprintln(cmd.OutOrStdout(), "No components to generate.")
		return nil
	}
	if err != nil {
		return err
	}

	if err := generator.Write(ctx, &system.FileSystem{}, outDir, res); err != nil {
		return err
	}

	if len(res.Diagnostics) > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "Generation reported %d diagnostics:\n\n", len(res.Diagnostics))
		fmt.Fprint(cmd.ErrOrStderr(), formatValidationErrors(res.Diagnostics))
	}
	if cfg.Summary {
		fmt.Fprintln(cmd.OutOrStdout(), summaryTable(res))
	}

	p := message.NewPrinter(language.English)
	_, err = p.Fprintf(cmd.OutOrStdout(), "Total lines generated: %d\n", res.TotalLines)
	return err
}

func summaryTable(res *generator.Result) string {
	rows := make([][]any, 0, len(res.Files()))
	for _, u := range res.Files() {
		name := u.Name
		if name == "" {
			name = "-"
		}
		rows = append(rows, []any{name, string(u.Kind), u.Path, strconv.Itoa(u.Lines())})
	}

	t := gotabulate.Create(rows)
	t.SetHeaders([]string{"Name", "Kind", "File", "Lines"})
	t.SetAlign("left")
	return t.Render("grid")
}
