package tree

import (
	"go.uber.org/zap"

	"github.com/benz9527/xtree/lib/infra"
)

// AVLTree keeps |height(left) - height(right)| <= 1 at every node.
// Search, traversal and persistence come from the shared binaryTree;
// insert and remove recurse and rebalance each ancestor on the way up.
// Recursion depth is bounded by the height, which is O(log n).
type AVLTree[K infra.Integer] struct {
	binaryTree[K]
}

var _ SearchTree[int] = (*AVLTree[int])(nil)

func NewAVLTree[K infra.Integer](opts ...Option) *AVLTree[K] {
	tree := &AVLTree[K]{
		binaryTree: newBinaryTree[K]("avl", opts),
	}
	tree.afterLoad = tree.reconcile
	return tree
}

func nodeHeight[K infra.Integer](node *bsNode[K]) int {
	if node == nil {
		return 0
	}
	return node.height
}

func (node *bsNode[K]) updateHeight() {
	node.height = 1 + max(nodeHeight(node.left), nodeHeight(node.right))
}

func (node *bsNode[K]) balanceFactor() int {
	return nodeHeight(node.left) - nodeHeight(node.right)
}

/*
Rotations return the new local root and leave the relinking of
that root into the grandparent (or the tree root) to the caller.

		 |                         |
		 X                         Y
		/ \     leftRotate(X)     / \
	   A   Y    ============>    X   C
		  / \                   / \
		 B   C                 A   B
*/
func (tree *AVLTree[K]) leftRotate(x *bsNode[K]) *bsNode[K] {
	if x == nil || x.right == nil {
		// impossible run to here
		panic( /* debug assertion */ "[avl] left rotate node x is nil or x.right is nil")
	}

	y := x.right
	b := y.left
	y.left, x.right = x, b
	if b != nil {
		b.parent = x
	}
	y.parent, x.parent = x.parent, y

	x.updateHeight()
	y.updateHeight()
	tree.stats.rotated(Left)
	return y
}

/*
		 |                         |
		 Y                         X
		/ \     rightRotate(Y)    / \
	   X   C    ============>    A   Y
	  / \                           / \
	 A   B                         B   C
*/
func (tree *AVLTree[K]) rightRotate(y *bsNode[K]) *bsNode[K] {
	if y == nil || y.left == nil {
		// impossible run to here
		panic( /* debug assertion */ "[avl] right rotate node y is nil or y.left is nil")
	}

	x := y.left
	b := x.right
	x.right, y.left = y, b
	if b != nil {
		b.parent = y
	}
	x.parent, y.parent = y.parent, x

	y.updateHeight()
	x.updateHeight()
	tree.stats.rotated(Right)
	return x
}

/*
rebalance refreshes node's height and restores the balance invariant
at node. Returns the (possibly new) subtree root.

LL: bf > 1, bf(left) >= 0, rightRotate(node).
LR: bf > 1, bf(left) < 0, leftRotate(node.left) then rightRotate(node).
RR: bf < -1, bf(right) <= 0, leftRotate(node).
RL: bf < -1, bf(right) > 0, rightRotate(node.right) then leftRotate(node).
*/
func (tree *AVLTree[K]) rebalance(node *bsNode[K]) *bsNode[K] {
	node.updateHeight()
	bf := node.balanceFactor()
	if bf > 1 {
		if /* LR */ node.left.balanceFactor() < 0 {
			node.left = tree.leftRotate(node.left)
		}
		return tree.rightRotate(node)
	} else if bf < -1 {
		if /* RL */ node.right.balanceFactor() > 0 {
			node.right = tree.rightRotate(node.right)
		}
		return tree.leftRotate(node)
	}
	return node
}

func (tree *AVLTree[K]) Insert(key, val K) {
	if tree.Search(key).Found {
		return
	}
	tree.root = tree.insert(tree.root, nil, key, val)
	tree.root.parent = nil
	tree.count++
	tree.stats.inserted()
}

func (tree *AVLTree[K]) insert(node, parent *bsNode[K], key, val K) *bsNode[K] {
	if node == nil {
		return &bsNode[K]{
			parent: parent,
			key:    key,
			val:    val,
			height: 1,
		}
	}
	if key < node.key {
		node.left = tree.insert(node.left, node, key, val)
	} else {
		node.right = tree.insert(node.right, node, key, val)
	}
	return tree.rebalance(node)
}

func (tree *AVLTree[K]) Remove(key K) bool {
	root, removed := tree.remove(tree.root, key)
	tree.root = root
	if tree.root != nil {
		tree.root.parent = nil
	}
	if removed {
		tree.count--
		tree.stats.removed()
	}
	return removed
}

// remove returns the new subtree root and whether key was found in it.
// Two children: the successor's key and value are copied up, then the
// successor is removed from the right subtree.
func (tree *AVLTree[K]) remove(node *bsNode[K], key K) (*bsNode[K], bool) {
	if node == nil {
		return nil, false
	}

	removed := false
	switch res := infra.CompareInteger(key, node.key); {
	case res < 0:
		if node.left, removed = tree.remove(node.left, key); node.left != nil {
			node.left.parent = node
		}
	case res > 0:
		if node.right, removed = tree.remove(node.right, key); node.right != nil {
			node.right.parent = node
		}
	default:
		if node.left == nil || node.right == nil {
			child := node.left
			if child == nil {
				child = node.right
			}
			if child != nil {
				child.parent = node.parent
			}
			node.unlink()
			return child, true
		}

		succ := node.right.minimum()
		node.key, node.val = succ.key, succ.val
		if node.right, removed = tree.remove(node.right, succ.key); node.right != nil {
			node.right.parent = node
		}
	}

	if !removed {
		return node, false
	}
	return tree.rebalance(node), true
}

// reconcile runs after a load. Heights are recomputed bottom-up; a
// loaded shape that breaks the balance invariant (e.g. a file written
// by the unbalanced tree) is rebuilt by re-inserting its pre-order keys.
func (tree *AVLTree[K]) reconcile() {
	nodes := make([]*bsNode[K], 0, tree.count)
	if tree.root != nil {
		stack := []*bsNode[K]{tree.root}
		for len(stack) > 0 {
			aux := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			nodes = append(nodes, aux)
			if aux.left != nil {
				stack = append(stack, aux.left)
			}
			if aux.right != nil {
				stack = append(stack, aux.right)
			}
		}
	}

	// Reverse pre-order visits children before their parent.
	balanced := true
	for i := len(nodes) - 1; i >= 0; i-- {
		nodes[i].updateHeight()
		if bf := nodes[i].balanceFactor(); bf > 1 || bf < -1 {
			balanced = false
		}
	}
	if balanced {
		return
	}

	tree.logger.Warn("loaded avl tree is unbalanced, rebuild it", zap.Int64("nodes", tree.count))
	keys := make([]K, 0, len(nodes))
	vals := make([]K, 0, len(nodes))
	for _, node := range nodes {
		keys, vals = append(keys, node.key), append(vals, node.val)
	}
	tree.Clear()
	for i := range keys {
		tree.root = tree.insert(tree.root, nil, keys[i], vals[i])
		tree.root.parent = nil
		tree.count++
	}
}
