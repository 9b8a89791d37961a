package tree

import (
	"github.com/benz9527/xtree/lib/infra"
)

// paintTable of a subtree: black[b] (red[b]) reports whether the subtree
// can be colored validly with a black (red) root and black-height b,
// where nil children count as 0. b never exceeds the node count of the
// shortest root to nil path.
type paintTable struct {
	black []bool
	red   []bool
}

// preorder nodes, children after their parent.
func (tree *RBTree[K]) preorderNodes() []*rbNode[K] {
	nodes := make([]*rbNode[K], 0, tree.count)
	if tree.root == nil {
		return nodes
	}
	stack := []*rbNode[K]{tree.root}
	for len(stack) > 0 {
		aux := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		nodes = append(nodes, aux)
		if aux.right != nil {
			stack = append(stack, aux.right)
		}
		if aux.left != nil {
			stack = append(stack, aux.left)
		}
	}
	return nodes
}

// repaint colors the current shape as a valid red-black tree without
// moving any node. It reports false, leaving colors untouched, when no
// such coloring exists.
func (tree *RBTree[K]) repaint() bool {
	if tree.root == nil {
		return true
	}

	nodes := tree.preorderNodes()
	tables := make(map[*rbNode[K]]*paintTable, len(nodes))
	shortest := func(n *rbNode[K]) int {
		if n == nil {
			return 0
		}
		return len(tables[n].black) - 1
	}
	canAny := func(n *rbNode[K], b int) bool {
		if n == nil {
			return b == 0
		}
		t := tables[n]
		return b >= 0 && b < len(t.black) && (t.black[b] || t.red[b])
	}
	canBlack := func(n *rbNode[K], b int) bool {
		if n == nil {
			return b == 0
		}
		t := tables[n]
		return b >= 0 && b < len(t.black) && t.black[b]
	}

	// Children first.
	for i := len(nodes) - 1; i >= 0; i-- {
		n := nodes[i]
		size := 1 + min(shortest(n.left), shortest(n.right))
		t := &paintTable{
			black: make([]bool, size+1),
			red:   make([]bool, size+1),
		}
		for b := 0; b <= size; b++ {
			t.black[b] = b >= 1 && canAny(n.left, b-1) && canAny(n.right, b-1)
			t.red[b] = canBlack(n.left, b) && canBlack(n.right, b)
		}
		tables[n] = t
	}

	rootBH := -1
	for b, ok := range tables[tree.root].black {
		if ok {
			rootBH = b
			break
		}
	}
	if rootBH < 0 {
		return false
	}

	type paintJob struct {
		node  *rbNode[K]
		bh    int
		color RBColor
	}
	stack := []paintJob{{node: tree.root, bh: rootBH, color: Black}}
	for len(stack) > 0 {
		job := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		job.node.color = job.color

		bh, mustBeBlack := job.bh, job.color == Red
		if job.color == Black {
			bh--
		}
		for _, child := range [2]*rbNode[K]{job.node.left, job.node.right} {
			if child == nil {
				continue
			}
			color := Red
			if mustBeBlack || canBlack(child, bh) {
				color = Black
			}
			stack = append(stack, paintJob{node: child, bh: bh, color: color})
		}
	}
	return true
}

// rebuild re-inserts the current keys in pre-order.
func (tree *RBTree[K]) rebuild() {
	nodes := tree.preorderNodes()
	keys := make([]K, 0, len(nodes))
	vals := make([]K, 0, len(nodes))
	for _, node := range nodes {
		keys, vals = append(keys, node.key), append(vals, node.val)
	}
	tree.Clear()
	for i := range keys {
		tree.Insert(keys[i], vals[i])
	}
}

// Validators for the tree invariants. They walk with explicit stacks
// and return the first violation found.

func collectNodes[K infra.Integer](root Node[K]) []Node[K] {
	if root == nil {
		return nil
	}
	nodes := make([]Node[K], 0, 64)
	stack := []Node[K]{root}
	for len(stack) > 0 {
		aux := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		nodes = append(nodes, aux)
		if r := aux.Right(); r != nil {
			stack = append(stack, r)
		}
		if l := aux.Left(); l != nil {
			stack = append(stack, l)
		}
	}
	return nodes
}

// OrderViolationValidate checks that the in-order keys are strictly
// ascending, i.e. left keys < node key < right keys everywhere.
func OrderViolationValidate[K infra.Integer](tree SearchTree[K]) error {
	var (
		prev K
		err  error
	)
	foreach[K](tree.Root(), func(idx int64, key, _ K) bool {
		if idx > 0 && key <= prev {
			err = infra.NewErrorStack("[tree] order violation")
			return false
		}
		prev = key
		return true
	})
	return err
}

// ParentViolationValidate checks every child points back at its parent
// and the root has none.
func ParentViolationValidate[K infra.Integer](tree SearchTree[K]) error {
	root := tree.Root()
	if root == nil {
		return nil
	}
	if root.Parent() != nil {
		return infra.NewErrorStack("[tree] parent violation, root has a parent")
	}
	for _, node := range collectNodes[K](root) {
		if l := node.Left(); l != nil && l.Parent() != node {
			return infra.NewErrorStack("[tree] parent violation, left child")
		}
		if r := node.Right(); r != nil && r.Parent() != node {
			return infra.NewErrorStack("[tree] parent violation, right child")
		}
	}
	return nil
}

// AVLBalanceViolationValidate recomputes the heights structurally and
// checks |height(left) - height(right)| <= 1 at every node.
func AVLBalanceViolationValidate[K infra.Integer](tree SearchTree[K]) error {
	nodes := collectNodes[K](tree.Root())
	heights := make(map[Node[K]]int, len(nodes))
	h := func(n Node[K]) int {
		if n == nil {
			return 0
		}
		return heights[n]
	}
	for i := len(nodes) - 1; i >= 0; i-- {
		lh, rh := h(nodes[i].Left()), h(nodes[i].Right())
		if lh-rh > 1 || rh-lh > 1 {
			return infra.NewErrorStack("[avl] balance violation")
		}
		heights[nodes[i]] = 1 + max(lh, rh)
	}
	return nil
}

func colorOf[K infra.Integer](n Node[K]) RBColor {
	if n == nil {
		return Black
	}
	return n.(RBNode[K]).Color()
}

// RedViolationValidate checks the root is black and no red node has a
// red child.
func RedViolationValidate[K infra.Integer](tree *RBTree[K]) error {
	root := tree.Root()
	if root == nil {
		return nil
	}
	if colorOf[K](root) != Black {
		return infra.NewErrorStack("[rbtree] red violation, root is red")
	}
	for _, node := range collectNodes[K](root) {
		if colorOf[K](node) == Red &&
			(colorOf[K](node.Left()) == Red || colorOf[K](node.Right()) == Red) {
			return infra.NewErrorStack("[rbtree] red violation")
		}
	}
	return nil
}

/*
<X> is a RED node.
[X] is a BLACK node (or nil).

	        [13]
	        /  \
	     <8>    [15]
	     / \    /  \
	  [6] [11] [14] [17]
	  /              /
	<1>            <16>

Every path from the root down to a nil child passes the same number
of black nodes.
*/
func BlackViolationValidate[K infra.Integer](tree *RBTree[K]) error {
	nodes := collectNodes[K](tree.Root())
	blackHeights := make(map[Node[K]]int, len(nodes))
	bh := func(n Node[K]) int {
		if n == nil {
			return 0
		}
		return blackHeights[n]
	}
	for i := len(nodes) - 1; i >= 0; i-- {
		l, r := bh(nodes[i].Left()), bh(nodes[i].Right())
		if l != r {
			return infra.NewErrorStack("[rbtree] black violation")
		}
		if colorOf[K](nodes[i]) == Black {
			l++
		}
		blackHeights[nodes[i]] = l
	}
	return nil
}
