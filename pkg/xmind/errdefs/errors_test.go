package errdefs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorKindsMatchSentinels(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
	}{
		{"missing key", NewMissingKeyError("output:base"), ErrConfiguration},
		{"binding", NewBindingError("content", "no writer declares it"), ErrConfiguration},
		{"argument", NewArgumentError("Topic.Insert", "nil child"), ErrInvalidArgument},
		{"missing artifact", NewMissingArtifactError("content", "content.xml", nil), ErrMissingArtifact},
	}

	for _, tt := range tests {
		wrapped := fmt.Errorf("save: %w", tt.err)
		assert.True(t, errors.Is(wrapped, tt.sentinel), tt.name)
	}
}

func TestErrorMessagesCarryContext(t *testing.T) {
	err := NewArtifactError("manifest", "META-INF/manifest.xml", "write", errors.New("disk full"))
	assert.Contains(t, err.Error(), "manifest")
	assert.Contains(t, err.Error(), "META-INF/manifest.xml")
	assert.Contains(t, err.Error(), "disk full")

	cfg := NewMissingKeyError("standardContentNamespaces:xhtml")
	assert.Contains(t, cfg.Error(), "standardContentNamespaces:xhtml")

	var ae *ArtifactError
	assert.True(t, errors.As(fmt.Errorf("x: %w", err), &ae))
	assert.Equal(t, "write", ae.Op)
}
