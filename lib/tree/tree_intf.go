package tree

import (
	"io"

	"github.com/benz9527/xtree/lib/infra"
)

type RBColor uint8

const (
	Black RBColor = iota
	Red
)

func (c RBColor) String() string {
	switch c {
	case Black:
		return "Black"
	case Red:
		return "Red"
	default:
	}
	return "RBColor(unknown)"
}

type Direction int8

const (
	Left Direction = -1 + iota
	Root
	Right
)

func (d Direction) String() string {
	switch d {
	case Left:
		return "left"
	case Root:
		return "root"
	case Right:
		return "right"
	default:
	}
	return "direction(unknown)"
}

// Node is a read only view of a tree vertex. Absent children and
// the parent of the root are reported as a nil interface.
// A Node is invalidated by the next mutation of its tree.
type Node[K infra.Integer] interface {
	Key() K
	Val() K
	Left() Node[K]
	Right() Node[K]
	Parent() Node[K]
}

type RBNode[K infra.Integer] interface {
	Node[K]
	Color() RBColor
}

// SearchResult reports the edge count from the root to the key.
// Depth is -1 when the key is absent.
type SearchResult struct {
	Found bool
	Depth int
}

var notFound = SearchResult{Found: false, Depth: -1}

// SearchTree is the operation surface shared by the unbalanced,
// AVL and red-black trees. None of the implementations are safe
// for concurrent use.
type SearchTree[K infra.Integer] interface {
	Len() int64
	Root() Node[K]
	// Insert ignores a key that is already present.
	Insert(key, val K)
	// Remove reports whether the key was present.
	Remove(key K) bool
	Search(key K) SearchResult
	Min() (Node[K], bool)
	Max() (Node[K], bool)

	InorderKeys() []K
	PreorderKeys() []K
	PostorderKeys() []K
	Foreach(action func(idx int64, key, val K) bool)

	Height(n Node[K]) int
	Width(n Node[K]) int

	Save(w io.Writer) error
	Load(r io.Reader) error
	SaveToFile(path string) error
	LoadFromFile(path string) error

	Clear()
}
