package tree

import (
	"bytes"
	"math/rand"
	"sort"
	"strings"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

func TestNilNode(t *testing.T) {
	var nilNode RBNode[uint64] = nil
	require.True(t, nilNode == nil)

	var nilNode2 *rbNode[uint64] = nil
	nilNode = nilNode2
	require.True(t, nilNode != nil)
	require.Nil(t, nilNode)

	tree := NewRBTree[uint64]()
	tree.Insert(1, 1)
	require.True(t, tree.Root().Left() == nil)
	require.True(t, tree.Root().Parent() == nil)
}

type colorKey struct {
	color RBColor
	key   uint64
}

func requireColors(t *testing.T, tree *RBTree[uint64], expected []colorKey) {
	t.Helper()
	visited := int64(0)
	tree.ForeachColor(func(idx int64, color RBColor, key uint64, val uint64) bool {
		require.Equal(t, expected[idx].color, color)
		require.Equal(t, expected[idx].key, key)
		visited++
		return true
	})
	require.Equal(t, int64(len(expected)), visited)
	require.Equal(t, int64(len(expected)), tree.Len())
	require.NoError(t, RedViolationValidate[uint64](tree))
	require.NoError(t, BlackViolationValidate[uint64](tree))
	require.NoError(t, ParentViolationValidate[uint64](tree))
}

func TestRbtreeLeftAndRightRotate_Succ(t *testing.T) {
	tree := NewRBTree[uint64]()

	tree.Insert(52, 1)
	requireColors(t, tree, []colorKey{{Black, 52}})

	tree.Insert(47, 1)
	requireColors(t, tree, []colorKey{{Red, 47}, {Black, 52}})

	tree.Insert(3, 1)
	requireColors(t, tree, []colorKey{{Red, 3}, {Black, 47}, {Red, 52}})

	tree.Insert(35, 1)
	requireColors(t, tree, []colorKey{
		{Black, 3},
		{Red, 35},
		{Black, 47},
		{Black, 52},
	})

	tree.Insert(24, 1)
	requireColors(t, tree, []colorKey{
		{Red, 3},
		{Black, 24},
		{Red, 35},
		{Black, 47},
		{Black, 52},
	})

	// remove

	require.True(t, tree.Remove(24))
	requireColors(t, tree, []colorKey{
		{Red, 3},
		{Black, 35},
		{Black, 47},
		{Black, 52},
	})

	require.True(t, tree.Remove(47))
	requireColors(t, tree, []colorKey{
		{Black, 3},
		{Black, 35},
		{Black, 52},
	})

	require.True(t, tree.Remove(52))
	requireColors(t, tree, []colorKey{
		{Red, 3},
		{Black, 35},
	})

	require.True(t, tree.Remove(3))
	requireColors(t, tree, []colorKey{
		{Black, 35},
	})

	require.True(t, tree.Remove(35))
	require.Nil(t, tree.Root())
	require.Equal(t, int64(0), tree.Len())
	require.False(t, tree.Remove(35))
}

func TestRbtree_AscendingThree(t *testing.T) {
	tree := NewRBTree[uint64]()
	for _, k := range []uint64{10, 20, 30} {
		tree.Insert(k, k)
	}
	requireColors(t, tree, []colorKey{{Red, 10}, {Black, 20}, {Red, 30}})
	require.Equal(t, []uint64{20, 10, 30}, tree.PreorderKeys())
	require.Equal(t, []uint64{10, 30, 20}, tree.PostorderKeys())
	require.Equal(t, SearchResult{Found: true, Depth: 0}, tree.Search(20))
	require.Equal(t, SearchResult{Found: true, Depth: 1}, tree.Search(10))
	require.Equal(t, SearchResult{Found: false, Depth: -1}, tree.Search(15))
	require.Equal(t, 2, tree.Height(tree.Root()))
	require.Equal(t, 3, tree.Width(tree.Root()))

	n, ok := tree.Min()
	require.True(t, ok)
	require.Equal(t, uint64(10), n.Key())
	n, ok = tree.Max()
	require.True(t, ok)
	require.Equal(t, uint64(30), n.Key())
}

func TestRbtree_InsertDuplicate(t *testing.T) {
	tree := NewRBTree[uint64]()
	tree.Insert(7, 70)
	tree.Insert(7, 71)
	require.Equal(t, int64(1), tree.Len())
	require.Equal(t, uint64(70), tree.Root().Val())
}

func TestRbtree_RemoveSoleAndEmpty(t *testing.T) {
	tree := NewRBTree[int]()
	require.False(t, tree.Remove(1))
	tree.Insert(1, 1)
	require.True(t, tree.Remove(1))
	require.Nil(t, tree.Root())
	require.Equal(t, int64(0), tree.Len())
	_, ok := tree.Min()
	require.False(t, ok)
}

func TestRbtree_Clear(t *testing.T) {
	tree := NewRBTree[int]()
	for i := 0; i < 100; i++ {
		tree.Insert(i, i)
	}
	tree.Clear()
	require.Nil(t, tree.Root())
	require.Equal(t, int64(0), tree.Len())
	require.Empty(t, tree.InorderKeys())
	require.Equal(t, 0, tree.Height(tree.Root()))
}

func TestRbtree_ForeachStop(t *testing.T) {
	tree := NewRBTree[int]()
	for i := 0; i < 10; i++ {
		tree.Insert(i, i*i)
	}
	visited := 0
	tree.Foreach(func(idx int64, key, val int) bool {
		require.Equal(t, key*key, val)
		visited++
		return idx < 4
	})
	require.Equal(t, 5, visited)

	visited = 0
	tree.ForeachColor(func(idx int64, _ RBColor, _, _ int) bool {
		visited++
		return false
	})
	require.Equal(t, 1, visited)
}

func TestRbtree_SortedInsertion(t *testing.T) {
	tree := NewRBTree[uint64]()
	total := uint64(1 << 14)
	for i := uint64(0); i < total; i++ {
		tree.Insert(i, i)
	}
	// 2*log2(n+1)
	require.LessOrEqual(t, tree.Height(tree.Root()), 29)
	require.NoError(t, RedViolationValidate[uint64](tree))
	require.NoError(t, BlackViolationValidate[uint64](tree))

	for i := total; i > 0; i-- {
		require.True(t, tree.Remove(i-1))
		if i%1024 == 0 {
			require.NoError(t, RedViolationValidate[uint64](tree))
			require.NoError(t, BlackViolationValidate[uint64](tree))
		}
	}
	require.Nil(t, tree.Root())
}

func TestRbtreeRandomInsertAndRemove(t *testing.T) {
	total := uint64(4096)
	insertTotal := uint64(float64(total) * 0.8)
	removeTotal := uint64(float64(total) * 0.2)

	tree := NewRBTree[uint64]()
	keys := make(map[uint64]struct{}, insertTotal)
	for i := uint64(0); i < insertTotal; i++ {
		k := rand.Uint64()
		keys[k] = struct{}{}
		tree.Insert(k, i)
	}
	require.Equal(t, int64(len(keys)), tree.Len())
	require.NoError(t, RedViolationValidate[uint64](tree))
	require.NoError(t, BlackViolationValidate[uint64](tree))

	sorted := lo.Keys(keys)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i] < sorted[j]
	})
	require.Equal(t, sorted, tree.InorderKeys())

	for i := uint64(0); i < removeTotal; i++ {
		k := sorted[rand.Intn(len(sorted))]
		_, ok := keys[k]
		require.Equal(t, ok, tree.Remove(k))
		delete(keys, k)
		require.False(t, tree.Search(k).Found)
	}
	require.Equal(t, int64(len(keys)), tree.Len())
	require.NoError(t, OrderViolationValidate[uint64](tree))
	require.NoError(t, ParentViolationValidate[uint64](tree))
	require.NoError(t, RedViolationValidate[uint64](tree))
	require.NoError(t, BlackViolationValidate[uint64](tree))
}

func TestRbtree_Repaint(t *testing.T) {
	testcases := []struct {
		name    string
		stream  string
		painted bool
	}{
		{name: "empty", stream: "# ", painted: true},
		{name: "single", stream: "1 # # ", painted: true},
		{name: "pair", stream: "2 1 # # # ", painted: true},
		{name: "perfect", stream: "4 2 1 # # 3 # # 6 5 # # 7 # # ", painted: true},
		{name: "uneven", stream: "5 2 1 # # 3 # 4 # # 8 6 # 7 # # 9 # # ", painted: true},
		{name: "chain of three", stream: "1 # 2 # 3 # # ", painted: false},
		{name: "chain of four", stream: "4 3 2 1 # # # # # ", painted: false},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(tt *testing.T) {
			tree := NewRBTree[int]()
			_, count, err := decodePreorder[int, *rbNode[int]](strings.NewReader(tc.stream),
				func(key int, parent *rbNode[int], dir Direction) *rbNode[int] {
					node := &rbNode[int]{parent: parent, key: key, val: key, color: Red}
					switch dir {
					case Left:
						parent.left = node
					case Right:
						parent.right = node
					default:
						tree.root = node
					}
					return node
				},
			)
			require.NoError(tt, err)
			tree.count = count
			before := tree.PreorderKeys()

			require.Equal(tt, tc.painted, tree.repaint())
			if !tc.painted {
				return
			}
			require.Equal(tt, before, tree.PreorderKeys())
			require.NoError(tt, RedViolationValidate[int](tree))
			require.NoError(tt, BlackViolationValidate[int](tree))
		})
	}
}

func TestRbtree_LoadKeepsShapeOrRebuilds(t *testing.T) {
	src := NewRBTree[int]()
	for i := 0; i < 500; i++ {
		src.Insert(rand.Intn(10000), 0)
	}
	buf := &bytes.Buffer{}
	require.NoError(t, src.Save(buf))

	dst := NewRBTree[int]()
	dst.Insert(-1, -1)
	require.NoError(t, dst.Load(bytes.NewReader(buf.Bytes())))
	require.Equal(t, src.PreorderKeys(), dst.PreorderKeys())
	require.Equal(t, src.Len(), dst.Len())
	require.NoError(t, RedViolationValidate[int](dst))
	require.NoError(t, BlackViolationValidate[int](dst))
	require.NoError(t, ParentViolationValidate[int](dst))

	// A degenerate chain admits no coloring.
	chain := NewBST[int]()
	for i := 0; i < 64; i++ {
		chain.Insert(i, i)
	}
	buf.Reset()
	require.NoError(t, chain.Save(buf))
	require.NoError(t, dst.Load(buf))
	require.Equal(t, chain.InorderKeys(), dst.InorderKeys())
	require.Equal(t, int64(64), dst.Len())
	require.Less(t, dst.Height(dst.Root()), 64)
	require.NoError(t, RedViolationValidate[int](dst))
	require.NoError(t, BlackViolationValidate[int](dst))
	require.NoError(t, ParentViolationValidate[int](dst))
}
