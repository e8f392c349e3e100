package writer

import (
	"context"
	"path"
	"sort"
	"sync"

	"github.com/ukaji3/xmind-go/pkg/xmind/errdefs"
)

// DefaultMemoryTag names the in-memory writer in records.
const DefaultMemoryTag = "[in-memory-writer]"

// InMemoryWriter keeps the latest rendering of each artifact in memory.
type InMemoryWriter struct {
	mu      sync.RWMutex
	tag     string
	labels  []string
	buffers map[string]buffer
}

type buffer struct {
	dir   bool
	parts []Part
}

var _ Writer = (*InMemoryWriter)(nil)

// NewInMemoryWriter creates an in-memory writer for labels.
func NewInMemoryWriter(tag string, labels []string) *InMemoryWriter {
	if tag == "" {
		tag = DefaultMemoryTag
	}
	return &InMemoryWriter{
		tag:     tag,
		labels:  append([]string(nil), labels...),
		buffers: make(map[string]buffer),
	}
}

// Name implements Writer.
func (w *InMemoryWriter) Name() string { return w.tag }

// Kind implements Writer.
func (w *InMemoryWriter) Kind() Kind { return KindMemory }

// Labels implements Writer.
func (w *InMemoryWriter) Labels() []string { return append([]string(nil), w.labels...) }

// Write implements Writer. The buffer for a.Label is replaced, never appended to.
func (w *InMemoryWriter) Write(ctx context.Context, dest Destination, a Artifact) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}

	p, dir, err := CleanPath(dest.Path)
	if err != nil {
		return Record{}, errdefs.NewArtifactError(a.Label, dest.Path, "write", err)
	}
	if !dir && len(a.Parts) != 1 {
		return Record{}, errdefs.NewArtifactError(a.Label, p, "write",
			errdefs.NewArgumentError("InMemoryWriter.Write", "single-file artifact has %d parts", len(a.Parts)))
	}

	rec := Record{Label: a.Label, Writer: w.tag, Kind: KindMemory, Path: p, Dir: dir}
	parts := make([]Part, 0, len(a.Parts))
	for _, part := range a.Parts {
		name := p
		if dir {
			if name, err = partPath(p, part); err != nil {
				return Record{}, errdefs.NewArtifactError(a.Label, p, "write", err)
			}
		}
		parts = append(parts, Part{Name: path.Base(name), Data: append([]byte(nil), part.Data...)})
		rec.Files = append(rec.Files, name)
	}

	w.mu.Lock()
	w.buffers[a.Label] = buffer{dir: dir, parts: parts}
	w.mu.Unlock()
	return rec, nil
}

// Bytes returns the content of a single-file artifact. It reports false for
// directory artifacts, whatever their part count.
func (w *InMemoryWriter) Bytes(label string) ([]byte, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	buf, ok := w.buffers[label]
	if !ok || buf.dir || len(buf.parts) != 1 {
		return nil, false
	}
	return append([]byte(nil), buf.parts[0].Data...), true
}

// Parts returns a copy of every part written for label.
func (w *InMemoryWriter) Parts(label string) []Part {
	w.mu.RLock()
	defer w.mu.RUnlock()
	parts := w.buffers[label].parts
	out := make([]Part, len(parts))
	for i, p := range parts {
		out[i] = Part{Name: p.Name, Data: append([]byte(nil), p.Data...)}
	}
	return out
}

// Written returns the labels that currently hold a buffer, sorted.
func (w *InMemoryWriter) Written() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	labels := make([]string, 0, len(w.buffers))
	for l := range w.buffers {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	return labels
}

// Reset drops every buffer.
func (w *InMemoryWriter) Reset() {
	w.mu.Lock()
	w.buffers = make(map[string]buffer)
	w.mu.Unlock()
}
