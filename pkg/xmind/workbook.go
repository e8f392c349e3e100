package xmind

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/ukaji3/xmind-go/pkg/xmind/config"
	"github.com/ukaji3/xmind-go/pkg/xmind/dom"
	"github.com/ukaji3/xmind-go/pkg/xmind/errdefs"
	"github.com/ukaji3/xmind-go/pkg/xmind/ids"
	"github.com/ukaji3/xmind-go/pkg/xmind/models"
	"github.com/ukaji3/xmind-go/pkg/xmind/writer"
)

const (
	tagContent = "xmap-content"
	tagSheet   = "sheet"

	contentVersion = "2.0"

	// xlink is always declared so hyperlinks serialize even without a setting.
	defaultXLinkNamespace = "http://www.w3.org/1999/xlink"
)

// DefaultSheetTitle is the title of the primary sheet.
const DefaultSheetTitle = "Sheet 1"

type attachment struct {
	name string
	data []byte
}

type workbookDeps struct {
	registry  *config.Registry
	logger    *slog.Logger
	clock     func() time.Time
	pipeline  *writer.Pipeline
	finalizer Finalizer
	memory    *writer.InMemoryWriter
}

// Workbook is the root of a mind-map document. It is not safe for
// concurrent use; overlapping saves are rejected.
type Workbook struct {
	name     string
	registry *config.Registry
	logger   *slog.Logger
	created  time.Time

	ids         *ids.Generator
	content     *dom.Document
	sheets      []*Sheet
	topics      map[string]*Topic
	attachments []attachment
	author      *models.Author

	pipeline  *writer.Pipeline
	finalizer Finalizer
	memory    *writer.InMemoryWriter
	records   []writer.Record
	saving    atomic.Bool
}

func newWorkbook(name string, deps workbookDeps) *Workbook {
	w := &Workbook{
		name:      name,
		registry:  deps.registry,
		logger:    deps.logger.With("component", "xmind.workbook", "workbook", name),
		created:   deps.clock(),
		ids:       ids.NewGenerator(),
		content:   dom.NewDocument(tagContent),
		topics:    make(map[string]*Topic),
		pipeline:  deps.pipeline,
		finalizer: deps.finalizer,
		memory:    deps.memory,
	}

	root := w.content.Root()
	if uri, ok := w.registry.Get(config.PrefixNamespaces + config.Separator + "xmap"); ok {
		root.SetAttr("xmlns", uri)
	}
	for _, ns := range w.registry.Section(config.PrefixNamespaces) {
		if ns.Key != "xmap" {
			root.SetAttr("xmlns:"+ns.Key, ns.Value)
		}
	}
	if _, ok := root.Attr("xmlns:xlink"); !ok {
		root.SetAttr("xmlns:xlink", defaultXLinkNamespace)
	}
	root.SetAttr("version", contentVersion)

	w.CreateSheet(DefaultSheetTitle)
	return w
}

// Name returns the workbook name, which is also the archive file name.
func (w *Workbook) Name() string { return w.name }

// Registry returns the settings the workbook was created with.
func (w *Workbook) Registry() *config.Registry { return w.registry }

// PrimarySheet returns the sheet created with the workbook.
func (w *Workbook) PrimarySheet() *Sheet { return w.sheets[0] }

// Sheets returns the sheets in document order.
func (w *Workbook) Sheets() []*Sheet {
	return append([]*Sheet(nil), w.sheets...)
}

// CreateSheet appends a new sheet with an untitled root topic.
func (w *Workbook) CreateSheet(title string) *Sheet {
	node := w.content.Root().CreateChild(tagSheet)
	id, err := w.ids.Assign(node)
	if err != nil {
		panic(err) // fresh node; fails only once ids are exhausted
	}
	s := &Sheet{wb: w, node: node, id: id}
	s.root = w.newTopic("")
	node.Append(s.root.node)
	s.SetTitle(title)
	w.sheets = append(w.sheets, s)
	return s
}

// CreateTopic creates a detached topic owned by this workbook. Attach it
// with Topic.Add or Topic.Insert.
func (w *Workbook) CreateTopic(title string) *Topic {
	return w.newTopic(title)
}

func (w *Workbook) newTopic(title string) *Topic {
	node := dom.NewNode(tagTopic)
	id, err := w.ids.Assign(node)
	if err != nil {
		panic(err) // fresh node; fails only once ids are exhausted
	}
	t := &Topic{wb: w, node: node, id: id}
	if title != "" {
		t.SetTitle(title)
	}
	w.topics[id] = t
	return t
}

// lookup maps a topic element back to its Topic.
func (w *Workbook) lookup(n dom.Node) *Topic {
	if n == nil || n.Tag() != tagTopic {
		return nil
	}
	id, ok := n.Attr(ids.Attr)
	if !ok {
		return nil
	}
	return w.topics[id]
}

func (w *Workbook) sheetOf(root *Topic) *Sheet {
	for _, s := range w.sheets {
		if s.root == root {
			return s
		}
	}
	return nil
}

// SetAuthor records the author written to the metadata part. An empty name clears it.
func (w *Workbook) SetAuthor(name, email, org string) {
	if name == "" {
		w.author = nil
		return
	}
	w.author = &models.Author{Name: name, Email: email, Org: org}
}

// Attachments returns the attachment file names in the order they were added.
func (w *Workbook) Attachments() []string {
	names := make([]string, len(w.attachments))
	for i, a := range w.attachments {
		names[i] = a.name
	}
	return names
}

// attach registers an attachment payload. Re-adding identical data is a no-op.
func (w *Workbook) attach(name string, data []byte) error {
	for _, a := range w.attachments {
		if a.name != name {
			continue
		}
		if bytes.Equal(a.data, data) {
			return nil
		}
		return errdefs.NewArgumentError("Topic.AddImage", "attachment %q already holds different content", name)
	}
	w.attachments = append(w.attachments, attachment{name: name, data: append([]byte(nil), data...)})
	return nil
}

func (w *Workbook) attachmentsDir() string {
	if p := w.registry.String(config.PrefixOutputFiles + config.Separator + writer.LabelAttachments); p != "" {
		return strings.TrimSuffix(p, "/")
	}
	return writer.LabelAttachments
}

// InMemoryWriter returns the in-memory writer, or nil when the workbook
// writes to a filesystem.
func (w *Workbook) InMemoryWriter() *writer.InMemoryWriter { return w.memory }

// Bindings returns the binding table the workbook saves through.
func (w *Workbook) Bindings() []writer.Binding { return w.pipeline.Bindings() }

// Records returns what the writers produced during the last save.
func (w *Workbook) Records() []writer.Record {
	return append([]writer.Record(nil), w.records...)
}

// Save renders and writes every bound artifact, then runs the finalizer.
// Artifacts written before a failure stay where they are.
func (w *Workbook) Save(ctx context.Context) error {
	if !w.saving.CompareAndSwap(false, true) {
		return errdefs.NewArgumentError("Workbook.Save", "save of %q already in progress", w.name)
	}
	defer w.saving.Store(false)

	start := time.Now()
	w.records = nil
	records, err := w.pipeline.Run(ctx, w)
	w.records = records
	if err != nil {
		w.logger.Error("save failed", "written", len(records), "error", err)
		return err
	}

	if w.finalizer != nil {
		if err := w.finalizer.Finalize(ctx, w.name, records); err != nil {
			w.logger.Error("finalize failed", "error", err)
			return fmt.Errorf("finalize %s: %w", w.name, err)
		}
	}

	w.logger.Info("workbook saved",
		"artifacts", len(records),
		"dur_ms", time.Since(start).Milliseconds())
	return nil
}

// SaveAsync runs Save in a new goroutine. The returned channel receives the
// result and is then closed.
func (w *Workbook) SaveAsync(ctx context.Context) <-chan error {
	done := make(chan error, 1)
	go func() {
		defer close(done)
		done <- w.Save(ctx)
	}()
	return done
}
