package xmind

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sort"
	"strings"
	"time"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/ukaji3/xmind-go/pkg/xmind/archive"
	"github.com/ukaji3/xmind-go/pkg/xmind/config"
	"github.com/ukaji3/xmind-go/pkg/xmind/errdefs"
	"github.com/ukaji3/xmind-go/pkg/xmind/writer"
)

// Finalizer runs once every bound artifact of a save has been written.
type Finalizer interface {
	Finalize(ctx context.Context, name string, records []writer.Record) error
}

// FinalizerFunc adapts an ordinary function to a Finalizer.
type FinalizerFunc func(ctx context.Context, name string, records []writer.Record) error

// Finalize calls f.
func (f FinalizerFunc) Finalize(ctx context.Context, name string, records []writer.Record) error {
	return f(ctx, name, records)
}

// Configuration collects writers, bindings and the finalizer used by the
// workbooks it creates. Errors found while configuring are reported by
// CreateWorkbook.
type Configuration struct {
	registry *config.Registry
	logger   *slog.Logger
	clock    func() time.Time

	fs      billy.Filesystem
	zip     bool
	memory  bool
	outline bool

	writers      []writer.Writer
	bindings     []writer.Binding
	bindingsSet  bool
	finalizer    Finalizer
	finalizerSet bool

	err error
}

// NewConfiguration creates a configuration over reg. A nil registry uses
// config.Default, which is loaded once per process.
func NewConfiguration(reg *config.Registry) *Configuration {
	c := &Configuration{
		registry: reg,
		logger:   slog.Default(),
		clock:    time.Now,
	}
	if reg == nil {
		c.registry, c.err = config.Default()
	}
	return c
}

// Registry returns the settings the configuration reads.
func (c *Configuration) Registry() *config.Registry {
	return c.registry
}

// WithLogger sets the logger handed to writers, the pipeline and workbooks.
func (c *Configuration) WithLogger(logger *slog.Logger) *Configuration {
	if logger != nil {
		c.logger = logger
	}
	return c
}

// WithClock sets the time source used for metadata timestamps.
func (c *Configuration) WithClock(clock func() time.Time) *Configuration {
	if clock != nil {
		c.clock = clock
	}
	return c
}

// WithFileWriter writes every artifact under opts.BasePath on the local disk.
func (c *Configuration) WithFileWriter(opts FileOptions) *Configuration {
	base := opts.BasePath
	if base == "" {
		if c.registry == nil {
			return c
		}
		v, err := c.registry.Require(config.KeyOutputBase)
		if err != nil {
			c.fail(err)
			return c
		}
		base = v
	}
	c.WithFileSystem(osfs.New(base), opts.ShouldZip())
	if opts.Outline {
		c.outline = true
	}
	return c
}

// WithFileSystem writes every artifact to fs. When zip is true the archive
// parts are packed into one file named after the workbook.
func (c *Configuration) WithFileSystem(fs billy.Filesystem, zip bool) *Configuration {
	if fs == nil {
		c.fail(errdefs.NewBindingError("", "file writer requires a filesystem"))
		return c
	}
	c.fs = fs
	c.zip = zip
	return c
}

// WithInMemoryWriter keeps every artifact in a per-workbook buffer, see
// Workbook.InMemoryWriter. Combining it with a file writer is ambiguous and
// makes CreateWorkbook fail.
func (c *Configuration) WithInMemoryWriter() *Configuration {
	c.memory = true
	return c
}

// WithOutline adds the xlsx outline export to the default bindings.
func (c *Configuration) WithOutline() *Configuration {
	c.outline = true
	return c
}

// AddWriters registers additional writers.
func (c *Configuration) AddWriters(writers ...writer.Writer) *Configuration {
	c.writers = append(c.writers, writers...)
	return c
}

// SetBindings replaces the default binding table. Bindings run in the given order.
func (c *Configuration) SetBindings(bindings ...writer.Binding) *Configuration {
	c.bindings = append([]writer.Binding(nil), bindings...)
	c.bindingsSet = true
	return c
}

// SetFinalizer replaces the default finalizer. A nil finalizer disables finalization.
func (c *Configuration) SetFinalizer(f Finalizer) *Configuration {
	c.finalizer = f
	c.finalizerSet = true
	return c
}

// CreateWorkbook validates the configuration and creates an empty workbook
// with one primary sheet.
func (c *Configuration) CreateWorkbook(name string) (*Workbook, error) {
	if c.err != nil {
		return nil, c.err
	}
	if c.registry == nil {
		return nil, &errdefs.ConfigError{Err: errors.New("no settings registry")}
	}
	if err := validateName(name); err != nil {
		return nil, err
	}

	writers, bindings, memory, err := c.resolve()
	if err != nil {
		return nil, err
	}
	if err := checkCollisions(name, bindings); err != nil {
		return nil, err
	}
	pipeline, err := writer.NewPipeline(writers, bindings, c.logger)
	if err != nil {
		return nil, err
	}

	finalizer := c.finalizer
	if !c.finalizerSet && c.fs != nil && c.zip {
		finalizer = archive.NewZipFinalizer(c.fs, c.archiveLabels(), c.logger)
	}

	return newWorkbook(name, workbookDeps{
		registry:  c.registry,
		logger:    c.logger,
		clock:     c.clock,
		pipeline:  pipeline,
		finalizer: finalizer,
		memory:    memory,
	}), nil
}

func (c *Configuration) resolve() ([]writer.Writer, []writer.Binding, *writer.InMemoryWriter, error) {
	files := c.registry.OutputFiles()
	labels := c.archiveLabels()
	claimed := labels
	if c.outline {
		claimed = append(slices.Clone(labels), writer.LabelOutline)
	}

	var (
		writers []writer.Writer
		memory  *writer.InMemoryWriter
	)
	if c.fs != nil {
		writers = append(writers, writer.NewFileWriter(c.fs, claimed, c.logger))
	}
	if c.memory {
		memory = writer.NewInMemoryWriter("", claimed)
		writers = append(writers, memory)
	}
	writers = append(writers, c.writers...)

	if c.bindingsSet {
		return writers, c.bindings, memory, nil
	}
	if c.fs == nil && !c.memory {
		return nil, nil, nil, &errdefs.ConfigError{Err: errors.New("no writer configured and no bindings set")}
	}

	kind := writer.KindFile
	if c.fs == nil {
		kind = writer.KindMemory
	}
	bindings := make([]writer.Binding, 0, len(claimed))
	for _, label := range labels {
		bindings = append(bindings, writer.Binding{Label: label, Destination: writer.Destination{Kind: kind, Path: files[label]}})
	}
	if c.outline {
		key := config.PrefixExports + config.Separator + writer.LabelOutline
		p, err := c.registry.Require(key)
		if err != nil {
			return nil, nil, nil, err
		}
		bindings = append(bindings, writer.Binding{Label: writer.LabelOutline, Destination: writer.Destination{Kind: kind, Path: p}})
	}
	return writers, bindings, memory, nil
}

// archiveLabels returns the labels of the configured output files: the
// standard parts first, in standard order, then any others sorted.
func (c *Configuration) archiveLabels() []string {
	files := c.registry.OutputFiles()
	labels := make([]string, 0, len(files))
	for _, l := range writer.StandardLabels {
		if _, ok := files[l]; ok {
			labels = append(labels, l)
		}
	}
	var extra []string
	for l := range files {
		if !slices.Contains(writer.StandardLabels, l) {
			extra = append(extra, l)
		}
	}
	sort.Strings(extra)
	return append(labels, extra...)
}

func (c *Configuration) fail(err error) {
	if c.err == nil {
		c.err = err
	}
}

// checkCollisions rejects a name that matches a file destination or its top
// directory, since the archive would be written over that artifact.
func checkCollisions(name string, bindings []writer.Binding) error {
	for _, b := range bindings {
		if b.Destination.Kind != writer.KindFile {
			continue
		}
		p, _, err := writer.CleanPath(b.Destination.Path)
		if err != nil {
			continue // reported by the pipeline
		}
		if top, _, _ := strings.Cut(p, "/"); top == name {
			return errdefs.NewArgumentError("CreateWorkbook",
				"workbook name %q collides with the %s artifact at %q", name, b.Label, p)
		}
	}
	return nil
}

func validateName(name string) error {
	const op = "CreateWorkbook"
	switch {
	case strings.TrimSpace(name) == "":
		return errdefs.NewArgumentError(op, "workbook name is empty")
	case strings.ContainsAny(name, `/\`):
		return errdefs.NewArgumentError(op, "workbook name %q contains a path separator", name)
	case name == "." || name == "..":
		return errdefs.NewArgumentError(op, "workbook name %q is not a file name", name)
	}
	return nil
}
