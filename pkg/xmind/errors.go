package xmind

import "github.com/ukaji3/xmind-go/pkg/xmind/errdefs"

// Error kinds, re-exported so callers only need this package.
var (
	// ErrConfiguration indicates a required setting is missing or the writer bindings are inconsistent.
	ErrConfiguration = errdefs.ErrConfiguration
	// ErrInvalidArgument indicates a rejected call; the tree is left unmodified.
	ErrInvalidArgument = errdefs.ErrInvalidArgument
	// ErrMissingArtifact indicates a recorded artifact was gone when the archive was built.
	ErrMissingArtifact = errdefs.ErrMissingArtifact
)

type (
	// ConfigError represents a configuration problem detected before any output is written.
	ConfigError = errdefs.ConfigError
	// ArgumentError represents a rejected call.
	ArgumentError = errdefs.ArgumentError
	// ArtifactError represents a failure to render, write, package or remove an artifact.
	ArtifactError = errdefs.ArtifactError
)
