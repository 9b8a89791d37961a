package tree

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAVLTree_RotationCases(t *testing.T) {
	testcases := []struct {
		name       string
		keys       []int
		preorder   []int
		leftTimes  int64
		rightTimes int64
	}{
		{name: "RR", keys: []int{10, 20, 30}, preorder: []int{20, 10, 30}, leftTimes: 1},
		{name: "LL", keys: []int{30, 20, 10}, preorder: []int{20, 10, 30}, rightTimes: 1},
		{name: "LR", keys: []int{30, 10, 20}, preorder: []int{20, 10, 30}, leftTimes: 1, rightTimes: 1},
		{name: "RL", keys: []int{10, 30, 20}, preorder: []int{20, 10, 30}, leftTimes: 1, rightTimes: 1},
		{name: "no rotation", keys: []int{20, 10, 30, 5, 40}, preorder: []int{20, 10, 5, 30, 40}},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(tt *testing.T) {
			mp, reader := newTestMeterProvider()
			defer func() {
				require.NoError(tt, mp.Shutdown(context.Background()))
			}()

			tree := NewAVLTree[int](WithMeterProvider(mp))
			for _, k := range tc.keys {
				tree.Insert(k, k)
			}
			require.Equal(tt, tc.preorder, tree.PreorderKeys())
			require.Equal(tt, tc.leftTimes, rotations(tt, reader, Left))
			require.Equal(tt, tc.rightTimes, rotations(tt, reader, Right))
			require.NoError(tt, AVLBalanceViolationValidate[int](tree))
			require.NoError(tt, ParentViolationValidate[int](tree))
		})
	}
}

func TestAVLTree_Remove(t *testing.T) {
	tree := NewAVLTree[int]()
	for _, k := range []int{20, 10, 30, 40} {
		tree.Insert(k, k)
	}
	require.Equal(t, []int{20, 10, 30, 40}, tree.PreorderKeys())

	// 20 becomes right heavy and rotates left.
	require.True(t, tree.Remove(10))
	require.Equal(t, []int{30, 20, 40}, tree.PreorderKeys())
	require.Nil(t, tree.Root().Parent())

	// Two children, the successor's key moves up.
	require.True(t, tree.Remove(30))
	require.Equal(t, []int{40, 20}, tree.PreorderKeys())
	require.False(t, tree.Remove(30))
	require.Equal(t, int64(2), tree.Len())

	require.True(t, tree.Remove(40))
	require.True(t, tree.Remove(20))
	require.Nil(t, tree.Root())
	require.Equal(t, int64(0), tree.Len())
	require.False(t, tree.Remove(20))
}

func TestAVLTree_SortedInsertion(t *testing.T) {
	tree := NewAVLTree[uint32]()
	for i := uint32(1); i <= 1023; i++ {
		tree.Insert(i, i)
	}
	require.Equal(t, int64(1023), tree.Len())
	require.LessOrEqual(t, tree.Height(tree.Root()), 14)
	require.NoError(t, AVLBalanceViolationValidate[uint32](tree))

	res := tree.Search(1)
	require.True(t, res.Found)
	require.LessOrEqual(t, res.Depth, 13)

	for i := uint32(1); i <= 1023; i += 3 {
		require.True(t, tree.Remove(i))
		require.NoError(t, AVLBalanceViolationValidate[uint32](tree))
	}
	require.NoError(t, OrderViolationValidate[uint32](tree))
	require.NoError(t, ParentViolationValidate[uint32](tree))
}

func TestAVLTree_RandomWorkload(t *testing.T) {
	tree := NewAVLTree[int16]()
	expected := make(map[int16]int16)
	for i := 0; i < 8192; i++ {
		k := int16(rand.Intn(2048) - 1024)
		if rand.Intn(2) == 0 {
			_, ok := expected[k]
			require.Equal(t, ok, tree.Remove(k))
			delete(expected, k)
		} else {
			if _, ok := expected[k]; !ok {
				expected[k] = k * 2
			}
			tree.Insert(k, k*2)
		}
		if i%512 == 0 {
			require.NoError(t, AVLBalanceViolationValidate[int16](tree))
		}
	}
	require.Equal(t, int64(len(expected)), tree.Len())
	require.NoError(t, OrderViolationValidate[int16](tree))
	require.NoError(t, ParentViolationValidate[int16](tree))
	require.NoError(t, AVLBalanceViolationValidate[int16](tree))

	tree.Foreach(func(_ int64, key, val int16) bool {
		require.Equal(t, expected[key], val)
		return true
	})
}
