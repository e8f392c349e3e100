// Package errdefs defines the error kinds shared by the xmind packages.
package errdefs

import (
	"errors"
	"fmt"
)

// ErrConfiguration indicates a required setting is missing or the writer bindings are inconsistent.
var ErrConfiguration = errors.New("configuration error")

// ErrInvalidArgument indicates a call received an argument it cannot accept.
var ErrInvalidArgument = errors.New("invalid argument")

// ErrMissingArtifact indicates an artifact recorded during save could not be found at finalize time.
var ErrMissingArtifact = errors.New("missing artifact")

// ConfigError represents a configuration problem detected before any output is written.
type ConfigError struct {
	Key   string // registry key, if the problem is a missing setting
	Label string // artifact label, if the problem is a binding
	Err   error
}

func (e *ConfigError) Error() string {
	switch {
	case e.Key != "":
		return fmt.Sprintf("configuration error for key %q: %v", e.Key, e.Err)
	case e.Label != "":
		return fmt.Sprintf("configuration error for artifact %q: %v", e.Label, e.Err)
	}
	return fmt.Sprintf("configuration error: %v", e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrConfiguration.
func (e *ConfigError) Is(target error) bool {
	return target == ErrConfiguration
}

// NewMissingKeyError creates a ConfigError for a required key that is absent.
func NewMissingKeyError(key string) *ConfigError {
	return &ConfigError{Key: key, Err: errors.New("required setting is missing")}
}

// NewBindingError creates a ConfigError for an artifact label.
func NewBindingError(label, format string, args ...any) *ConfigError {
	return &ConfigError{Label: label, Err: fmt.Errorf(format, args...)}
}

// ArgumentError represents a rejected call. The tree is left unmodified.
type ArgumentError struct {
	Op  string
	Err error
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("%s: invalid argument: %v", e.Op, e.Err)
}

func (e *ArgumentError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrInvalidArgument.
func (e *ArgumentError) Is(target error) bool {
	return target == ErrInvalidArgument
}

// NewArgumentError creates a new ArgumentError.
func NewArgumentError(op, format string, args ...any) *ArgumentError {
	return &ArgumentError{Op: op, Err: fmt.Errorf(format, args...)}
}

// ArtifactError represents an I/O failure while writing or packaging an artifact.
type ArtifactError struct {
	Label string
	Path  string
	Op    string // "render", "write", "archive", "remove", "stat"
	Err   error
}

func (e *ArtifactError) Error() string {
	return fmt.Sprintf("artifact %q (%s) failed during %s: %v", e.Label, e.Path, e.Op, e.Err)
}

func (e *ArtifactError) Unwrap() error {
	return e.Err
}

// NewArtifactError creates a new ArtifactError.
func NewArtifactError(label, path, op string, err error) *ArtifactError {
	return &ArtifactError{
		Label: label,
		Path:  path,
		Op:    op,
		Err:   err,
	}
}

// NewMissingArtifactError creates an ArtifactError wrapping ErrMissingArtifact.
func NewMissingArtifactError(label, path string, cause error) *ArtifactError {
	err := ErrMissingArtifact
	if cause != nil {
		err = fmt.Errorf("%w: %v", ErrMissingArtifact, cause)
	}
	return NewArtifactError(label, path, "stat", err)
}
