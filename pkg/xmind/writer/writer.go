// Package writer resolves workbook artifacts to the writers that persist them.
//
// A Pipeline is built from a set of Writers, each declaring the artifact labels
// it can produce, and an ordered binding table mapping each label to a
// Destination. Running the pipeline renders every bound artifact from a
// Document and hands it to its writer exactly once, in binding order.
package writer

import (
	"context"
	"path"
	"strings"

	"github.com/ukaji3/xmind-go/pkg/xmind/errdefs"
)

// Standard artifact labels.
const (
	LabelContent     = "content"
	LabelManifest    = "manifest"
	LabelMetadata    = "metadata"
	LabelAttachments = "attachments"
	LabelOutline     = "outline"
)

// StandardLabels is the default binding order of the archive parts.
var StandardLabels = []string{LabelContent, LabelManifest, LabelMetadata, LabelAttachments}

// Kind is the kind of destination a writer persists to.
type Kind string

const (
	// KindFile writes to a filesystem.
	KindFile Kind = "file"
	// KindMemory keeps artifacts in a process-local buffer.
	KindMemory Kind = "memory"
)

// Destination describes where an artifact goes. Path is relative to the
// writer's root; a trailing "/" marks an artifact that renders to a directory.
type Destination struct {
	Kind Kind
	Path string
}

// IsDir reports whether the destination is a directory.
func (d Destination) IsDir() bool {
	return strings.HasSuffix(d.Path, "/")
}

// Binding associates an artifact label with a destination.
type Binding struct {
	Label       string
	Destination Destination
}

// Part is one file of a rendered artifact. Name is empty for single-file
// artifacts and relative to the destination directory otherwise.
type Part struct {
	Name string
	Data []byte
}

// Artifact is a rendered document fragment.
type Artifact struct {
	Label string
	Parts []Part
}

// Record describes what a writer produced for one artifact during a save.
type Record struct {
	Label  string
	Writer string
	Kind   Kind
	// Path is the artifact location relative to the writer root, without a trailing "/".
	Path string
	Dir  bool
	// Files lists the written file paths relative to the writer root.
	Files []string
}

// Empty reports whether nothing was written.
func (r Record) Empty() bool {
	return len(r.Files) == 0
}

// Writer persists rendered artifacts.
type Writer interface {
	// Name identifies the writer in records and errors.
	Name() string
	// Kind is the destination kind the writer accepts.
	Kind() Kind
	// Labels lists the artifact labels the writer can produce.
	Labels() []string
	// Write persists a, replacing any previous output at dest.
	Write(ctx context.Context, dest Destination, a Artifact) (Record, error)
}

// Document renders artifacts by label.
type Document interface {
	Render(ctx context.Context, label string) (Artifact, error)
}

// CleanPath validates a destination path and returns it in canonical slash
// form without the trailing "/", along with whether it names a directory.
// Absolute paths and paths escaping the root are rejected.
func CleanPath(p string) (string, bool, error) {
	dir := strings.HasSuffix(p, "/")
	if strings.TrimSpace(p) == "" {
		return "", false, errdefs.NewArgumentError("writer.CleanPath", "empty path")
	}
	if strings.HasPrefix(p, "/") || strings.Contains(p, "\\") || strings.Contains(p, ":") {
		return "", false, errdefs.NewArgumentError("writer.CleanPath", "path %q must be relative", p)
	}
	clean := path.Clean(p)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", false, errdefs.NewArgumentError("writer.CleanPath", "path %q escapes the output root", p)
	}
	return clean, dir, nil
}

// partPath joins a part name onto a directory destination.
func partPath(dir string, part Part) (string, error) {
	name, _, err := CleanPath(part.Name)
	if err != nil {
		return "", err
	}
	return path.Join(dir, name), nil
}
