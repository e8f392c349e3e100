// Package ids assigns workbook-unique identifiers to tree nodes.
package ids

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	mrand "math/rand/v2"
	"strconv"
	"strings"
	"sync"

	"github.com/RoaringBitmap/roaring"
	"github.com/ukaji3/xmind-go/pkg/xmind/dom"
	"github.com/ukaji3/xmind-go/pkg/xmind/errdefs"
)

// Attr is the attribute carrying a node's identifier.
const Attr = "id"

var (
	// ErrAlreadyIdentified is returned when Assign is called on a node that already has an identifier.
	ErrAlreadyIdentified = errors.New("node already has an identifier")
	// ErrExhausted is returned once every suffix of a generator has been issued.
	ErrExhausted = errors.New("identifier space exhausted")
)

const (
	saltBytes    = 9 // 18 hex chars
	counterWidth = 8 // hex chars
	suffixSpace  = uint64(1) << 32
)

// Generator mints identifiers of the form <salt><suffix>: a random
// per-generator salt followed by a random zero-padded hex suffix. Issued
// suffixes are kept in a bitmap; a drawn suffix that is already in it is
// drawn again, so a generator never repeats itself.
type Generator struct {
	mu     sync.Mutex
	salt   string
	space  uint64
	draw   func() uint64
	issued *roaring.Bitmap
}

// NewGenerator creates a generator with a fresh random salt.
func NewGenerator() *Generator {
	b := make([]byte, saltBytes)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("ids: reading salt: %v", err))
	}
	return newGenerator(hex.EncodeToString(b), suffixSpace, mrand.Uint64)
}

func newGenerator(salt string, space uint64, draw func() uint64) *Generator {
	return &Generator{
		salt:   salt,
		space:  space,
		draw:   draw,
		issued: roaring.New(),
	}
}

// Next returns a new identifier, or ErrExhausted when none is left.
func (g *Generator) Next() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.issued.GetCardinality() >= g.space {
		return "", ErrExhausted
	}
	n := uint32(g.draw() % g.space)
	for g.issued.Contains(n) {
		n = uint32(g.draw() % g.space)
	}
	g.issued.Add(n)
	return fmt.Sprintf("%s%0*x", g.salt, counterWidth, n), nil
}

// Assign gives n a new identifier. Re-assigning an identified node is rejected.
func (g *Generator) Assign(n dom.Node) (string, error) {
	if existing, ok := n.Attr(Attr); ok {
		return "", &errdefs.ArgumentError{
			Op:  "ids.Assign",
			Err: fmt.Errorf("%w: %q", ErrAlreadyIdentified, existing),
		}
	}
	id, err := g.Next()
	if err != nil {
		return "", err
	}
	n.SetAttr(Attr, id)
	return id, nil
}

// Issued reports whether id was minted by this generator.
func (g *Generator) Issued(id string) bool {
	if len(id) != len(g.salt)+counterWidth || !strings.HasPrefix(id, g.salt) {
		return false
	}
	n, err := strconv.ParseUint(id[len(g.salt):], 16, 32)
	if err != nil {
		return false
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	return g.issued.Contains(uint32(n))
}

// Count returns the number of identifiers issued so far.
func (g *Generator) Count() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.issued.GetCardinality()
}
