package writer

import (
	"context"
	"log/slog"
	"time"

	"github.com/ukaji3/xmind-go/pkg/xmind/errdefs"
)

type resolvedBinding struct {
	Binding
	writer Writer
}

// Pipeline is an immutable, validated binding table.
type Pipeline struct {
	bindings []resolvedBinding
	logger   *slog.Logger
}

// NewPipeline validates the writers and bindings and builds a pipeline.
// It fails with a ConfigError when two writers claim the same label, a binding
// names a label no writer claims, a label is bound twice, a binding's kind
// differs from its writer's, or a destination path is invalid.
func NewPipeline(writers []Writer, bindings []Binding, logger *slog.Logger) (*Pipeline, error) {
	if logger == nil {
		logger = slog.Default()
	}

	owners := make(map[string]Writer)
	for _, w := range writers {
		if w == nil {
			continue
		}
		for _, label := range w.Labels() {
			if prev, ok := owners[label]; ok && prev != w {
				return nil, errdefs.NewBindingError(label, "claimed by both %s and %s writers", prev.Name(), w.Name())
			}
			owners[label] = w
		}
	}

	seen := make(map[string]bool, len(bindings))
	resolved := make([]resolvedBinding, 0, len(bindings))
	for _, b := range bindings {
		if seen[b.Label] {
			return nil, errdefs.NewBindingError(b.Label, "bound more than once")
		}
		seen[b.Label] = true

		w, ok := owners[b.Label]
		if !ok {
			return nil, errdefs.NewBindingError(b.Label, "no writer declares this artifact")
		}
		if w.Kind() != b.Destination.Kind {
			return nil, errdefs.NewBindingError(b.Label, "destination kind %q does not match %s writer kind %q", b.Destination.Kind, w.Name(), w.Kind())
		}
		if _, _, err := CleanPath(b.Destination.Path); err != nil {
			return nil, &errdefs.ConfigError{Label: b.Label, Err: err}
		}
		resolved = append(resolved, resolvedBinding{Binding: b, writer: w})
	}

	return &Pipeline{
		bindings: resolved,
		logger:   logger.With("component", "writer.pipeline"),
	}, nil
}

// Bindings returns the binding table in declared order.
func (p *Pipeline) Bindings() []Binding {
	out := make([]Binding, len(p.bindings))
	for i, b := range p.bindings {
		out[i] = b.Binding
	}
	return out
}

// Labels returns the bound labels in declared order.
func (p *Pipeline) Labels() []string {
	out := make([]string, len(p.bindings))
	for i, b := range p.bindings {
		out[i] = b.Label
	}
	return out
}

// Run renders and writes every bound artifact in order. Records of the
// artifacts written before a failure are returned along with the error.
func (p *Pipeline) Run(ctx context.Context, doc Document) ([]Record, error) {
	records := make([]Record, 0, len(p.bindings))
	for _, b := range p.bindings {
		if err := ctx.Err(); err != nil {
			return records, err
		}

		start := time.Now()
		artifact, err := doc.Render(ctx, b.Label)
		if err != nil {
			return records, errdefs.NewArtifactError(b.Label, b.Destination.Path, "render", err)
		}
		artifact.Label = b.Label

		rec, err := b.writer.Write(ctx, b.Destination, artifact)
		if err != nil {
			return records, err
		}
		records = append(records, rec)

		p.logger.Debug("artifact written",
			"label", b.Label,
			"writer", b.writer.Name(),
			"path", rec.Path,
			"files", len(rec.Files),
			"dur_ms", time.Since(start).Milliseconds())
	}
	return records, nil
}
