package config

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingRootPath is returned when the first resolution is requested
	// without a root path.
	ErrMissingRootPath = errors.New("root path is required on first call to config")
	// ErrMissingRequiredKey is returned when a required key has no value from
	// any of its allowed sources.
	ErrMissingRequiredKey = errors.New("missing required configuration key")
	// ErrMalformedOverride is returned when the override file exists but
	// cannot be used.
	ErrMalformedOverride = errors.New("malformed override file")
)

// MissingKeyError names the required key and the sources that could have
// supplied it.
type MissingKeyError struct {
	Key     string
	Allowed Source
}

func (e *MissingKeyError) Error() string {
	return fmt.Sprintf("missing required key %q (allowed sources: %s)", e.Key, e.Allowed)
}

func (e *MissingKeyError) Is(target error) bool { return target == ErrMissingRequiredKey }

// OverrideFileError reports an override file that failed to parse or does
// not fit the schema.
type OverrideFileError struct {
	Path string
	Err  error
}

func (e *OverrideFileError) Error() string {
	return fmt.Sprintf("failed to parse %s: %v", e.Path, e.Err)
}

func (e *OverrideFileError) Unwrap() error { return e.Err }

func (e *OverrideFileError) Is(target error) bool { return target == ErrMalformedOverride }
