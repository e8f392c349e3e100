package xmind

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/ukaji3/xmind-go/pkg/xmind/dom"
	"github.com/ukaji3/xmind-go/pkg/xmind/errdefs"
)

// Element and attribute names of the content markup.
const (
	tagTopic      = "topic"
	tagTitle      = "title"
	tagChildren   = "children"
	tagTopics     = "topics"
	tagLabels     = "labels"
	tagLabel      = "label"
	tagMarkerRefs = "marker-refs"
	tagMarkerRef  = "marker-ref"
	tagNotes      = "notes"
	tagHTML       = "html"
	tagPlain      = "plain"
	tagParagraph  = "xhtml:p"
	tagImage      = "xhtml:img"

	attrType     = "type"
	attrBranch   = "branch"
	attrHref     = "xlink:href"
	attrMarkerID = "marker-id"

	branchFolded = "folded"
	noteSep      = " : "
)

// Default inline image dimensions.
const (
	ImageWidth  = "85"
	ImageHeight = "85"
)

// TopicType discriminates the child groups of a topic.
type TopicType string

const (
	TopicAttached TopicType = "attached"
	TopicDetached TopicType = "detached"
	TopicSummary  TopicType = "summary"
	TopicCallout  TopicType = "callout"
)

// Note is a key/value pair rendered into a topic's notes.
type Note struct {
	Key   string
	Value string
}

func (n Note) String() string {
	return n.Key + noteSep + n.Value
}

// Topic is a node of a sheet's topic tree. Topics are created by
// Workbook.CreateTopic and belong to that workbook for their lifetime.
type Topic struct {
	wb   *Workbook
	node dom.Node
	id   string
}

// ID returns the topic identifier.
func (t *Topic) ID() string { return t.id }

// Workbook returns the owning workbook.
func (t *Topic) Workbook() *Workbook { return t.wb }

// String renders the topic subtree.
func (t *Topic) String() string { return dom.String(t.node) }

// Title returns the topic title, or "" when untitled.
func (t *Topic) Title() string {
	if n := t.node.Child(tagTitle); n != nil {
		return n.Text()
	}
	return ""
}

// SetTitle sets the topic title.
func (t *Topic) SetTitle(title string) {
	t.node.EnsureChild(tagTitle).SetText(title)
}

// HasTitle reports whether the title contains anything but whitespace.
func (t *Topic) HasTitle() bool {
	return strings.TrimSpace(t.Title()) != ""
}

// IsFolded reports whether the topic's branch is collapsed.
func (t *Topic) IsFolded() bool {
	v, _ := t.node.Attr(attrBranch)
	return v == branchFolded
}

// SetFolded collapses or expands the branch. Expanding removes the attribute.
func (t *Topic) SetFolded(folded bool) {
	if folded {
		t.node.SetAttr(attrBranch, branchFolded)
		return
	}
	t.node.RemoveAttr(attrBranch)
}

// Hyperlink returns the link target, or "".
func (t *Topic) Hyperlink() string {
	v, _ := t.node.Attr(attrHref)
	return v
}

// SetHyperlink sets the link target. An empty uri removes it.
func (t *Topic) SetHyperlink(uri string) {
	if uri == "" {
		t.node.RemoveAttr(attrHref)
		return
	}
	t.node.SetAttr(attrHref, uri)
}

func fold(s string) string {
	return cases.Fold().String(s)
}

// Labels returns the topic labels, without case-insensitive duplicates.
func (t *Topic) Labels() []string {
	container := t.node.Child(tagLabels)
	if container == nil {
		return nil
	}
	seen := make(map[string]bool)
	var labels []string
	for _, n := range container.Children(tagLabel) {
		key := fold(n.Text())
		if seen[key] {
			continue
		}
		seen[key] = true
		labels = append(labels, n.Text())
	}
	return labels
}

// AddLabel adds label unless an equal label, ignoring case, is present.
func (t *Topic) AddLabel(label string) {
	if label == "" {
		return
	}
	key := fold(label)
	for _, l := range t.Labels() {
		if fold(l) == key {
			return
		}
	}
	t.node.EnsureChild(tagLabels).CreateChild(tagLabel).SetText(label)
}

// RemoveLabel removes every label equal to label, ignoring case.
func (t *Topic) RemoveLabel(label string) {
	container := t.node.Child(tagLabels)
	if container == nil {
		return
	}
	key := fold(label)
	for _, n := range container.Children(tagLabel) {
		if fold(n.Text()) == key {
			container.Remove(n)
		}
	}
	if len(container.Children("")) == 0 {
		t.node.Remove(container)
	}
}

// RemoveAllLabels removes every label.
func (t *Topic) RemoveAllLabels() {
	t.node.RemoveChildren(tagLabels)
}

// SetLabels replaces the labels. Case-insensitive duplicates keep the first spelling.
func (t *Topic) SetLabels(labels ...string) {
	t.RemoveAllLabels()
	for _, l := range labels {
		t.AddLabel(l)
	}
}

// Markers returns the marker ids in document order.
func (t *Topic) Markers() []string {
	container := t.node.Child(tagMarkerRefs)
	if container == nil {
		return nil
	}
	var markers []string
	for _, n := range container.Children(tagMarkerRef) {
		if id, ok := n.Attr(attrMarkerID); ok {
			markers = append(markers, id)
		}
	}
	return markers
}

// HasMarker reports whether the marker is attached.
func (t *Topic) HasMarker(markerID string) bool {
	for _, m := range t.Markers() {
		if m == markerID {
			return true
		}
	}
	return false
}

// AddMarker attaches a marker, once.
func (t *Topic) AddMarker(markerID string) {
	if markerID == "" || t.HasMarker(markerID) {
		return
	}
	t.node.EnsureChild(tagMarkerRefs).CreateChild(tagMarkerRef).SetAttr(attrMarkerID, markerID)
}

// RemoveMarker detaches a marker. Removing an absent marker is a no-op.
func (t *Topic) RemoveMarker(markerID string) {
	container := t.node.Child(tagMarkerRefs)
	if container == nil {
		return
	}
	for _, n := range container.Children(tagMarkerRef) {
		if id, _ := n.Attr(attrMarkerID); id == markerID {
			container.Remove(n)
		}
	}
	if len(container.Children("")) == 0 {
		t.node.Remove(container)
	}
}

// AddNotes appends notes to both the structured and the plain notes view,
// in order, as "key : value". It fails with a ConfigError, before touching
// the tree, when the xhtml namespace is not configured.
func (t *Topic) AddNotes(notes []Note) error {
	if _, err := t.wb.registry.Namespace("xhtml"); err != nil {
		return err
	}
	if len(notes) == 0 {
		return nil
	}

	container := t.node.EnsureChild(tagNotes)
	html := container.EnsureChild(tagHTML)
	plain := container.EnsureChild(tagPlain)

	var sb strings.Builder
	sb.WriteString(plain.Text())
	for _, n := range notes {
		html.CreateChild(tagParagraph).SetText(n.String())
		sb.WriteString(n.String())
		sb.WriteByte('\n')
	}
	plain.SetText(sb.String())
	return nil
}

// Notes returns the pairs of the structured notes view.
func (t *Topic) Notes() []Note {
	container := t.node.Child(tagNotes)
	if container == nil {
		return nil
	}
	html := container.Child(tagHTML)
	if html == nil {
		return nil
	}
	var notes []Note
	for _, p := range html.Children(tagParagraph) {
		k, v, _ := strings.Cut(p.Text(), noteSep)
		notes = append(notes, Note{Key: k, Value: v})
	}
	return notes
}

// PlainNotes returns the plain notes view.
func (t *Topic) PlainNotes() string {
	if container := t.node.Child(tagNotes); container != nil {
		if plain := container.Child(tagPlain); plain != nil {
			return plain.Text()
		}
	}
	return ""
}

// AddImage stores data as the attachment filename and inserts an inline
// reference to it. Adding the same file twice with identical data only adds
// another reference; different data under a used name is rejected.
func (t *Topic) AddImage(data []byte, filename string) error {
	const op = "Topic.AddImage"
	for _, prefix := range []string{"xhtml", "svg"} {
		if _, err := t.wb.registry.Namespace(prefix); err != nil {
			return err
		}
	}
	switch {
	case strings.TrimSpace(filename) == "":
		return errdefs.NewArgumentError(op, "image file name is empty")
	case strings.ContainsAny(filename, `/\:`) || filename == "." || filename == "..":
		return errdefs.NewArgumentError(op, "image file name %q is not a plain file name", filename)
	}
	if err := t.wb.attach(filename, data); err != nil {
		return err
	}

	img := t.node.CreateChild(tagImage)
	img.SetAttr("align", "top")
	img.SetAttr("svg:height", ImageHeight)
	img.SetAttr("svg:width", ImageWidth)
	img.SetAttr("xhtml:src", "xap:"+t.wb.attachmentsDir()+"/"+filename)
	return nil
}

// Images returns the sources of the inline image references.
func (t *Topic) Images() []string {
	var srcs []string
	for _, n := range t.node.Children(tagImage) {
		if src, ok := n.Attr("xhtml:src"); ok {
			srcs = append(srcs, src)
		}
	}
	return srcs
}

// Add appends child to the attached group.
func (t *Topic) Add(child *Topic) error {
	return t.Insert(child, -1, TopicAttached)
}

// Insert puts child into the group for typ. For 0 <= index < n, where n is
// the group size, child goes immediately before the topic at index;
// otherwise it is appended. A child that is already in a tree is moved.
//
// Insert fails with an ArgumentError, leaving the tree unmodified, when
// child is nil, belongs to another workbook, is a sheet's root topic, or is
// t itself or one of its ancestors.
func (t *Topic) Insert(child *Topic, index int, typ TopicType) error {
	const op = "Topic.Insert"
	switch {
	case child == nil:
		return errdefs.NewArgumentError(op, "child topic is nil")
	case child.wb != t.wb || !t.wb.ids.Issued(child.id):
		return errdefs.NewArgumentError(op, "topic %q was not created by workbook %q", child.id, t.wb.name)
	case child == t:
		return errdefs.NewArgumentError(op, "topic %q cannot contain itself", t.id)
	case t.wb.sheetOf(child) != nil:
		return errdefs.NewArgumentError(op, "topic %q is the root topic of a sheet", child.id)
	}
	for p := t.Parent(); p != nil; p = p.Parent() {
		if p == child {
			return errdefs.NewArgumentError(op, "topic %q is an ancestor of %q", child.id, t.id)
		}
	}
	if typ == "" {
		typ = TopicAttached
	}

	group := t.group(typ, true)
	var ref dom.Node
	if siblings := group.Children(tagTopic); index >= 0 && index < len(siblings) {
		ref = siblings[index]
		if ref.Same(child.node) {
			return nil
		}
	}

	previous := child.node.Parent()
	group.InsertBefore(child.node, ref)
	if previous != nil && !previous.Same(group) {
		prune(previous)
	}
	return nil
}

// Children returns the topics of the group for typ, in order.
func (t *Topic) Children(typ TopicType) []*Topic {
	group := t.group(typ, false)
	if group == nil {
		return nil
	}
	nodes := group.Children(tagTopic)
	topics := make([]*Topic, 0, len(nodes))
	for _, n := range nodes {
		if c := t.wb.lookup(n); c != nil {
			topics = append(topics, c)
		}
	}
	return topics
}

// Parent returns the topic t is attached to, or nil for root and detached topics.
func (t *Topic) Parent() *Topic {
	group := t.node.Parent()
	if group == nil || group.Tag() != tagTopics {
		return nil
	}
	children := group.Parent()
	if children == nil {
		return nil
	}
	return t.wb.lookup(children.Parent())
}

// Type returns the group t belongs to, or "" for root and detached topics.
func (t *Topic) Type() TopicType {
	group := t.node.Parent()
	if group == nil || group.Tag() != tagTopics {
		return ""
	}
	v, _ := group.Attr(attrType)
	return TopicType(v)
}

// Sheet returns the sheet whose tree contains t, or nil.
func (t *Topic) Sheet() *Sheet {
	top := t
	for p := t.Parent(); p != nil; p = p.Parent() {
		top = p
	}
	return t.wb.sheetOf(top)
}

// walk visits t and its descendants depth-first in document order.
func (t *Topic) walk(depth int, visit func(*Topic, int)) {
	visit(t, depth)
	children := t.node.Child(tagChildren)
	if children == nil {
		return
	}
	for _, group := range children.Children(tagTopics) {
		for _, n := range group.Children(tagTopic) {
			if c := t.wb.lookup(n); c != nil {
				c.walk(depth+1, visit)
			}
		}
	}
}

func (t *Topic) group(typ TopicType, create bool) dom.Node {
	children := t.node.Child(tagChildren)
	if children != nil {
		for _, g := range children.Children(tagTopics) {
			if v, _ := g.Attr(attrType); v == string(typ) {
				return g
			}
		}
	}
	if !create {
		return nil
	}
	if children == nil {
		children = t.node.CreateChild(tagChildren)
	}
	g := children.CreateChild(tagTopics)
	g.SetAttr(attrType, string(typ))
	return g
}

// prune removes an emptied child group, and the children element once it
// holds no group.
func prune(group dom.Node) {
	if group.Tag() != tagTopics || len(group.Children("")) > 0 {
		return
	}
	children := group.Parent()
	if children == nil {
		return
	}
	children.Remove(group)
	if len(children.Children("")) == 0 {
		if owner := children.Parent(); owner != nil {
			owner.Remove(children)
		}
	}
}
