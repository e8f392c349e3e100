package dom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tags(nodes []Node) []string {
	var out []string
	for _, n := range nodes {
		v, _ := n.Attr("id")
		out = append(out, v)
	}
	return out
}

func TestAttributes(t *testing.T) {
	n := NewNode("topic")

	_, ok := n.Attr("branch")
	assert.False(t, ok)

	n.SetAttr("branch", "folded")
	v, ok := n.Attr("branch")
	assert.True(t, ok)
	assert.Equal(t, "folded", v)

	n.SetAttr("branch", "other")
	v, _ = n.Attr("branch")
	assert.Equal(t, "other", v)

	n.RemoveAttr("branch")
	n.RemoveAttr("branch")
	_, ok = n.Attr("branch")
	assert.False(t, ok)
	assert.Equal(t, `<topic/>`, String(n))
}

func TestEnsureChildIsIdempotent(t *testing.T) {
	n := NewNode("topic")
	a := n.EnsureChild("labels")
	b := n.EnsureChild("labels")

	assert.True(t, a.Same(b))
	assert.Len(t, n.Children("labels"), 1)
	assert.Nil(t, n.Child("markers"))
}

func TestInsertBefore(t *testing.T) {
	parent := NewNode("topics")
	for _, id := range []string{"a", "b", "c"} {
		parent.CreateChild("topic").SetAttr("id", id)
	}
	children := parent.Children("topic")

	x := NewNode("topic")
	x.SetAttr("id", "x")
	parent.InsertBefore(x, children[1])
	assert.Equal(t, []string{"a", "x", "b", "c"}, tags(parent.Children("topic")))

	// Moving an existing child before an earlier sibling.
	parent.InsertBefore(children[2], children[0])
	assert.Equal(t, []string{"c", "a", "x", "b"}, tags(parent.Children("topic")))

	// A reference that is not a child appends.
	y := NewNode("topic")
	y.SetAttr("id", "y")
	parent.InsertBefore(y, NewNode("topic"))
	assert.Equal(t, []string{"c", "a", "x", "b", "y"}, tags(parent.Children("topic")))
}

func TestAppendMovesBetweenParents(t *testing.T) {
	p1 := NewNode("p1")
	p2 := NewNode("p2")
	c := p1.CreateChild("c")

	p2.Append(c)

	assert.Empty(t, p1.Children(""))
	require.Len(t, p2.Children(""), 1)
	assert.True(t, c.Parent().Same(p2))
}

func TestRemove(t *testing.T) {
	p := NewNode("labels")
	p.CreateChild("label").SetText("a")
	p.CreateChild("label").SetText("b")
	other := NewNode("label")

	p.Remove(other)
	assert.Len(t, p.Children("label"), 2)

	p.Remove(p.Children("label")[0])
	require.Len(t, p.Children("label"), 1)
	assert.Equal(t, "b", p.Children("label")[0].Text())

	p.RemoveChildren("label")
	assert.Empty(t, p.Children("label"))
}

func TestPrefixedTags(t *testing.T) {
	n := NewNode("notes")
	p := n.EnsureChild("html").CreateChild("xhtml:p")
	p.SetText("Laptop : x")

	assert.Equal(t, "xhtml:p", p.Tag())
	require.Len(t, n.Child("html").Children("xhtml:p"), 1)
	assert.Equal(t, "<notes><html><xhtml:p>Laptop : x</xhtml:p></html></notes>", String(n))
}

func TestDocumentBytes(t *testing.T) {
	d := NewDocument("xmap-content")
	d.Root().SetAttr("version", "2.0")
	d.Root().CreateChild("sheet")

	compact, err := d.Bytes(0)
	require.NoError(t, err)
	assert.Contains(t, string(compact), `<?xml version="1.0" encoding="UTF-8" standalone="no"?>`)
	assert.Contains(t, string(compact), `<xmap-content version="2.0"><sheet/></xmap-content>`)

	pretty, err := d.Bytes(2)
	require.NoError(t, err)
	assert.Contains(t, string(pretty), "\n  <sheet/>")

	// Indenting a copy leaves the live tree free of whitespace nodes.
	again, err := d.Bytes(0)
	require.NoError(t, err)
	assert.Equal(t, compact, again)
}
