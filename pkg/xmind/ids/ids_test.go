package ids

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukaji3/xmind-go/pkg/xmind/dom"
	"github.com/ukaji3/xmind-go/pkg/xmind/errdefs"
)

func next(t *testing.T, g *Generator) string {
	t.Helper()
	id, err := g.Next()
	require.NoError(t, err)
	return id
}

func TestNextIsUnique(t *testing.T) {
	g := NewGenerator()
	seen := make(map[string]bool)
	for i := 0; i < 5000; i++ {
		id := next(t, g)
		require.Len(t, id, 26)
		require.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
	assert.Equal(t, uint64(5000), g.Count())
}

func TestNextRedrawsIssuedSuffixes(t *testing.T) {
	// Every draw lands on suffix 7 until the fourth call.
	draws := []uint64{7, 7, 7, 9}
	i := 0
	g := newGenerator("salt", suffixSpace, func() uint64 {
		v := draws[i]
		i++
		return v
	})

	assert.Equal(t, "salt00000007", next(t, g))
	assert.Equal(t, "salt00000009", next(t, g))
	assert.Equal(t, 4, i)
	assert.Equal(t, uint64(2), g.Count())
}

func TestNextFailsWhenExhausted(t *testing.T) {
	var n uint64
	g := newGenerator("s", 4, func() uint64 { n++; return n })

	seen := make(map[string]bool)
	for i := 0; i < 4; i++ {
		seen[next(t, g)] = true
	}
	assert.Len(t, seen, 4)

	_, err := g.Next()
	assert.True(t, errors.Is(err, ErrExhausted))

	_, err = g.Assign(dom.NewNode("topic"))
	assert.True(t, errors.Is(err, ErrExhausted))
	assert.Equal(t, uint64(4), g.Count())
}

func TestGeneratorsDoNotCollide(t *testing.T) {
	a, b := NewGenerator(), NewGenerator()
	assert.NotEqual(t, a.salt, b.salt)
	assert.NotEqual(t, next(t, a), next(t, b))
}

func TestAssign(t *testing.T) {
	g := NewGenerator()
	n := dom.NewNode("topic")

	id, err := g.Assign(n)
	require.NoError(t, err)
	got, ok := n.Attr(Attr)
	require.True(t, ok)
	assert.Equal(t, id, got)
	assert.True(t, g.Issued(id))

	_, err = g.Assign(n)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAlreadyIdentified))
	assert.True(t, errors.Is(err, errdefs.ErrInvalidArgument))

	// The original id is untouched.
	got, _ = n.Attr(Attr)
	assert.Equal(t, id, got)
}

func TestIssued(t *testing.T) {
	g := newGenerator("salt", suffixSpace, func() uint64 { return 0x2a })
	id := next(t, g)

	assert.True(t, g.Issued(id))
	assert.False(t, g.Issued(fmt.Sprintf("salt%08x", 0x2b)))
	assert.False(t, g.Issued(next(t, NewGenerator())))
	assert.False(t, g.Issued("short"))
	assert.False(t, g.Issued("saltzzzzzzzz"))
}
