package tree

import (
	"math"
	"strconv"

	"github.com/benz9527/xtree/lib/infra"
)

// Traversals keep an explicit stack instead of recursing, so the
// unbalanced tree's O(n) height under sorted insertion never
// becomes goroutine stack depth.

func foreach[K infra.Integer](root Node[K], action func(idx int64, key, val K) bool) {
	if root == nil {
		return
	}

	stack := make([]Node[K], 0, 32)
	defer func() {
		clear(stack)
	}()

	for aux := root; aux != nil; aux = aux.Left() {
		stack = append(stack, aux)
	}

	idx := int64(0)
	for size := len(stack); size > 0; size = len(stack) {
		aux := stack[size-1]
		if !action(idx, aux.Key(), aux.Val()) {
			return
		}
		idx++
		stack = stack[:size-1]
		for aux = aux.Right(); aux != nil; aux = aux.Left() {
			stack = append(stack, aux)
		}
	}
}

func inorderKeys[K infra.Integer](root Node[K], size int64) []K {
	keys := make([]K, 0, size)
	foreach[K](root, func(_ int64, key, _ K) bool {
		keys = append(keys, key)
		return true
	})
	return keys
}

func preorderKeys[K infra.Integer](root Node[K], size int64) []K {
	keys := make([]K, 0, size)
	if root == nil {
		return keys
	}

	stack := []Node[K]{root}
	for len(stack) > 0 {
		aux := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		keys = append(keys, aux.Key())
		// Right is pushed first so that left pops first.
		if r := aux.Right(); r != nil {
			stack = append(stack, r)
		}
		if l := aux.Left(); l != nil {
			stack = append(stack, l)
		}
	}
	return keys
}

// Postorder (left, right, node) is the reverse of the
// (node, right, left) preorder.
func postorderKeys[K infra.Integer](root Node[K], size int64) []K {
	keys := make([]K, 0, size)
	if root == nil {
		return keys
	}

	stack := []Node[K]{root}
	for len(stack) > 0 {
		aux := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		keys = append(keys, aux.Key())
		if l := aux.Left(); l != nil {
			stack = append(stack, l)
		}
		if r := aux.Right(); r != nil {
			stack = append(stack, r)
		}
	}
	for i, j := 0, len(keys)-1; i < j; i, j = i+1, j-1 {
		keys[i], keys[j] = keys[j], keys[i]
	}
	return keys
}

// Level by level count, height(nil) = 0.
func height[K infra.Integer](n Node[K]) int {
	if n == nil {
		return 0
	}

	h := 0
	level := []Node[K]{n}
	for len(level) > 0 {
		h++
		next := make([]Node[K], 0, len(level)<<1)
		for _, aux := range level {
			if l := aux.Left(); l != nil {
				next = append(next, l)
			}
			if r := aux.Right(); r != nil {
				next = append(next, r)
			}
		}
		level = next
	}
	return h
}

// Slots of a perfect tree with the same height, 2^h - 1.
// Saturates at math.MaxInt for degenerate trees.
func width[K infra.Integer](n Node[K]) int {
	h := height[K](n)
	if h == 0 {
		return 0
	}
	if h >= strconv.IntSize-1 {
		return math.MaxInt
	}
	return 1<<h - 1
}

func minimum[K infra.Integer](n Node[K]) (Node[K], bool) {
	if n == nil {
		return nil, false
	}
	for l := n.Left(); l != nil; l = n.Left() {
		n = l
	}
	return n, true
}

func maximum[K infra.Integer](n Node[K]) (Node[K], bool) {
	if n == nil {
		return nil, false
	}
	for r := n.Right(); r != nil; r = n.Right() {
		n = r
	}
	return n, true
}
