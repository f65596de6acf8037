// Package cmdutil provides shared CLI utilities for all commands.
package cmdutil

import (
	"fmt"
	"io"
	"os"

	"github.com/speakeasy-api/asyncapi-codegen/errors"
)

// StdinIndicator is the conventional Unix indicator to read from stdin.
const StdinIndicator = "-"

// IsStdin returns true if the given path indicates stdin should be used.
func IsStdin(path string) bool {
	return path == StdinIndicator
}

// OpenInput opens path for reading, or returns stdin when path is the stdin indicator.
// The returned name is used in messages.
func OpenInput(path string, stdin io.Reader) (io.ReadCloser, string, error) {
	if IsStdin(path) {
		return io.NopCloser(stdin), "stdin", nil
	}

	if err := RequireFile(path); err != nil {
		return nil, path, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, path, fmt.Errorf("failed to open file: %w", err)
	}
	return f, path, nil
}

// RequireFile fails unless path exists and is not a directory.
func RequireFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("file %s does not exist", path)
		}
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	return nil
}

// RequireDir fails with ErrOutputDir unless path is an existing directory.
func RequireDir(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.ErrOutputDir.Wrapf("%s does not exist", path)
		}
		return errors.ErrOutputDir.Wrap(err)
	}
	if !info.IsDir() {
		return errors.ErrOutputDir.Wrapf("%s is not a directory", path)
	}
	return nil
}
