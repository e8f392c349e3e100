// Package dom exposes the small slice of a mutable XML tree that the document
// model needs: named nodes with string attributes and text or element children.
package dom

import (
	"io"
	"strings"

	"github.com/beevik/etree"
)

// Node is an element of a mutable tree.
type Node interface {
	// Tag returns the qualified tag, including any namespace prefix ("xhtml:p").
	Tag() string

	Attr(key string) (string, bool)
	SetAttr(key, value string)
	RemoveAttr(key string)

	Text() string
	SetText(text string)

	// Child returns the first child element with tag, or nil.
	Child(tag string) Node
	// EnsureChild returns the first child element with tag, creating it if absent.
	EnsureChild(tag string) Node
	// Children returns the child elements with tag; an empty tag selects all of them.
	Children(tag string) []Node
	// CreateChild appends a new child element.
	CreateChild(tag string) Node

	// Append adds child as the last element child, detaching it from any previous parent.
	Append(child Node)
	// InsertBefore adds child immediately before ref, which must be a child of this node.
	InsertBefore(child, ref Node)
	// Remove detaches child if it is a child of this node.
	Remove(child Node)
	// RemoveChildren detaches every child element with tag.
	RemoveChildren(tag string)

	// Parent returns the parent element, or nil for a detached or root node.
	Parent() Node
	// Same reports whether other wraps the same underlying element.
	Same(other Node) bool

	// WriteTo serializes the node and its subtree.
	WriteTo(w io.Writer) (int64, error)
}

// NewNode creates a detached element.
func NewNode(tag string) Node {
	return wrap(etree.NewElement(tag))
}

type element struct {
	e *etree.Element
}

func wrap(e *etree.Element) Node {
	if e == nil {
		return nil
	}
	return &element{e: e}
}

func unwrap(n Node) *etree.Element {
	if el, ok := n.(*element); ok {
		return el.e
	}
	return nil
}

func (n *element) Tag() string {
	return n.e.FullTag()
}

func (n *element) Attr(key string) (string, bool) {
	a := n.e.SelectAttr(key)
	if a == nil {
		return "", false
	}
	return a.Value, true
}

func (n *element) SetAttr(key, value string) {
	n.e.CreateAttr(key, value)
}

func (n *element) RemoveAttr(key string) {
	n.e.RemoveAttr(key)
}

func (n *element) Text() string {
	return n.e.Text()
}

func (n *element) SetText(text string) {
	n.e.SetText(text)
}

func (n *element) Child(tag string) Node {
	return wrap(n.e.SelectElement(tag))
}

func (n *element) EnsureChild(tag string) Node {
	if c := n.e.SelectElement(tag); c != nil {
		return wrap(c)
	}
	return wrap(n.e.CreateElement(tag))
}

func (n *element) Children(tag string) []Node {
	var elems []*etree.Element
	if tag == "" {
		elems = n.e.ChildElements()
	} else {
		elems = n.e.SelectElements(tag)
	}
	nodes := make([]Node, 0, len(elems))
	for _, c := range elems {
		nodes = append(nodes, wrap(c))
	}
	return nodes
}

func (n *element) CreateChild(tag string) Node {
	return wrap(n.e.CreateElement(tag))
}

func (n *element) Append(child Node) {
	if c := unwrap(child); c != nil {
		n.e.AddChild(c)
	}
}

func (n *element) InsertBefore(child, ref Node) {
	c, r := unwrap(child), unwrap(ref)
	if c == nil {
		return
	}
	if r == nil || r.Parent() != n.e {
		n.e.AddChild(c)
		return
	}
	if p := c.Parent(); p != nil {
		p.RemoveChild(c)
	}
	// The reference index is read after the detach above, which may have shifted it.
	n.e.InsertChildAt(r.Index(), c)
}

func (n *element) Remove(child Node) {
	if c := unwrap(child); c != nil && c.Parent() == n.e {
		n.e.RemoveChild(c)
	}
}

func (n *element) RemoveChildren(tag string) {
	for _, c := range n.e.SelectElements(tag) {
		n.e.RemoveChild(c)
	}
}

func (n *element) Parent() Node {
	return wrap(n.e.Parent())
}

func (n *element) Same(other Node) bool {
	return other != nil && unwrap(other) == n.e
}

func (n *element) WriteTo(w io.Writer) (int64, error) {
	doc := etree.NewDocument()
	doc.SetRoot(n.e.Copy())
	return doc.WriteTo(w)
}

// String renders the subtree, for diagnostics and tests.
func String(n Node) string {
	var sb strings.Builder
	_, _ = n.WriteTo(&sb)
	return sb.String()
}

// Document is a tree with a single root element and an XML declaration.
type Document struct {
	doc  *etree.Document
	root Node
}

// NewDocument creates a document whose root element has tag.
func NewDocument(rootTag string) *Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8" standalone="no"`)
	root := doc.CreateElement(rootTag)
	return &Document{doc: doc, root: wrap(root)}
}

// Root returns the root element.
func (d *Document) Root() Node {
	return d.root
}

// Bytes serializes the document. A positive indent pretty-prints with that many spaces.
func (d *Document) Bytes(indent int) ([]byte, error) {
	out := d.doc.Copy()
	if indent > 0 {
		out.Indent(indent)
	}
	return out.WriteToBytes()
}
