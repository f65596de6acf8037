package generator

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/speakeasy-api/asyncapi-codegen/errors"
	"github.com/speakeasy-api/asyncapi-codegen/system"
)

// Write stores every unit of res under outDir, creating the prefix directories as
// needed. outDir itself must already exist.
func Write(ctx context.Context, fsys system.WritableFS, outDir string, res *Result) error {
	info, err := fsys.Stat(outDir)
	if err != nil {
		return errors.ErrOutputDir.Wrap(err)
	}
	if !info.IsDir() {
		return errors.ErrOutputDir.Wrapf("%s is not a directory", outDir)
	}

	for _, u := range res.Files() {
		if err := ctx.Err(); err != nil {
			return err
		}

		target := filepath.Join(outDir, u.Path)
		if err := fsys.MkdirAll(filepath.Dir(target), 0o755); err != nil { //nolint:gosec
			return fmt.Errorf("failed to create directory for %s: %w", u.Path, err)
		}
		if err := fsys.WriteFile(target, u.Content, 0o644); err != nil { //nolint:gosec
			return fmt.Errorf("failed to write %s: %w", u.Path, err)
		}
	}

	return nil
}
