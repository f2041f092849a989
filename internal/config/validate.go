package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gobwas/glob"
)

var (
	// ErrEmptyDBPath indicates a missing index database path
	ErrEmptyDBPath = errors.New("empty index db_path")

	// ErrInvalidExtension indicates a malformed extension allow-list entry
	ErrInvalidExtension = errors.New("invalid extension")

	// ErrInvalidIgnoreGlob indicates an ignore pattern that does not compile
	ErrInvalidIgnoreGlob = errors.New("invalid ignore glob")
)

// Validate checks that the configuration is valid and complete.
func Validate(cfg *Config) error {
	var errs []error

	if strings.TrimSpace(cfg.Index.DBPath) == "" {
		errs = append(errs, fmt.Errorf("%w: index.db_path is required", ErrEmptyDBPath))
	}

	for _, ext := range cfg.Index.Extensions {
		if strings.TrimSpace(strings.TrimPrefix(ext, ".")) == "" {
			errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidExtension, ext))
		}
	}

	for _, pattern := range cfg.Index.Ignore {
		if _, err := glob.Compile(pattern, '/'); err != nil {
			errs = append(errs, fmt.Errorf("%w: %q: %v", ErrInvalidIgnoreGlob, pattern, err))
		}
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}
	return nil
}

// joinErrors combines multiple errors into a single error with clear formatting.
func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	if len(errs) == 1 {
		return errs[0]
	}

	var msgs []string
	for _, err := range errs {
		msgs = append(msgs, err.Error())
	}
	return fmt.Errorf("validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}
