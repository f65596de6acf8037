package commands

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/speakeasy-api/asyncapi-codegen/asyncapi"
	"github.com/speakeasy-api/asyncapi-codegen/cmd/asyncapi-gen/commands/cmdutil"
	"github.com/speakeasy-api/asyncapi-codegen/internal/config"
	"github.com/speakeasy-api/asyncapi-codegen/internal/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// loadConfig reads the environment configuration and applies the flags that were set
// explicitly on the command line.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("target") {
		cfg.Target, _ = flags.GetString("target")
	}
	if flags.Changed("log-level") {
		cfg.LogLevel, _ = flags.GetString("log-level")
	}
	if flags.Changed("log-format") {
		cfg.LogFormat, _ = flags.GetString("log-format")
	}
	if flags.Changed("concurrency") {
		cfg.Concurrency, _ = flags.GetInt("concurrency")
	}
	if flags.Changed("wrap-width") {
		cfg.WrapWidth, _ = flags.GetInt("wrap-width")
	}
	if flags.Changed("summary") {
		cfg.Summary, _ = flags.GetBool("summary")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cmd *cobra.Command, cfg *config.Config) (*zap.Logger, error) {
	return logging.NewLogger(logging.Config{
		Component: "asyncapi-gen",
		Level:     cfg.LogLevel,
		Format:    cfg.LogFormat,
		Output:    cmd.ErrOrStderr(),
	})
}

// loadDocument reads and decodes the document at path. Document diagnostics are
// printed to stderr; only an unreadable or undecodable document is an error.
func loadDocument(ctx context.Context, cmd *cobra.Command, logger *zap.Logger, path string) (*asyncapi.Document, error) {
	r, name, err := cmdutil.OpenInput(path, cmd.InOrStdin())
	if err != nil {
		return nil, err
	}
	defer r.Close()

	doc, diags, err := asyncapi.Unmarshal(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", name, err)
	}
	logger.Debug("loaded document", zap.String("path", name), zap.Int("entries", len(doc.Entries())), zap.Int("diagnostics", len(diags)))

	if len(diags) > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s has %d problems:\n\n", name, len(diags))
		fmt.Fprint(cmd.ErrOrStderr(), formatValidationErrors(diags))
	}
	return doc, nil
}

func formatValidationErrors(validationErrors []error) string {
	var sb strings.Builder
	indexWidth := len(strconv.Itoa(len(validationErrors)))

	for i, validationErr := range validationErrors {
		fmt.Fprintf(&sb, "%*d. %s\n", indexWidth, i+1, validationErr.Error())
	}

	return sb.String()
}

func readAll(cmd *cobra.Command, path string) (string, error) {
	r, _, err := cmdutil.OpenInput(path, cmd.InOrStdin())
	if err != nil {
		return "", err
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}
