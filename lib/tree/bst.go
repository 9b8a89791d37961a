package tree

import (
	"io"

	"go.uber.org/zap"

	"github.com/benz9527/xtree/lib/infra"
	"github.com/benz9527/xtree/lib/xlog"
)

// bsNode is shared by the unbalanced and the AVL tree.
// parent is a back reference only, children are owned links.
type bsNode[K infra.Integer] struct {
	parent *bsNode[K]
	left   *bsNode[K]
	right  *bsNode[K]
	key    K
	val    K
	// Cached subtree height, maintained by the AVL tree only.
	height int
}

func (node *bsNode[K]) Key() K {
	return node.key
}

func (node *bsNode[K]) Val() K {
	return node.val
}

func (node *bsNode[K]) Left() Node[K] {
	if node == nil || node.left == nil {
		return nil
	}
	return node.left
}

func (node *bsNode[K]) Right() Node[K] {
	if node == nil || node.right == nil {
		return nil
	}
	return node.right
}

func (node *bsNode[K]) Parent() Node[K] {
	if node == nil || node.parent == nil {
		return nil
	}
	return node.parent
}

func (node *bsNode[K]) minimum() *bsNode[K] {
	aux := node
	for ; aux != nil && aux.left != nil; aux = aux.left {
	}
	return aux
}

func (node *bsNode[K]) unlink() {
	node.parent, node.left, node.right = nil, nil, nil
}

// binaryTree carries everything the unbalanced and the AVL tree have
// in common: lookup, traversal, metrics and persistence.
type binaryTree[K infra.Integer] struct {
	root   *bsNode[K]
	count  int64
	logger xlog.XLogger
	stats  *treeStats
	// Runs after a successful load, before the tree is visible.
	afterLoad func()
}

func newBinaryTree[K infra.Integer](kind string, opts []Option) binaryTree[K] {
	cfg := applyOptions(kind, opts)
	return binaryTree[K]{
		logger: cfg.logger,
		stats:  newTreeStats(cfg),
	}
}

func (tree *binaryTree[K]) Len() int64 {
	return tree.count
}

func (tree *binaryTree[K]) Root() Node[K] {
	if tree.root == nil {
		return nil
	}
	return tree.root
}

func (tree *binaryTree[K]) findNode(key K) (*bsNode[K], int) {
	depth := 0
	for aux := tree.root; aux != nil; depth++ {
		switch res := infra.CompareInteger(key, aux.key); {
		case res == 0:
			return aux, depth
		case res < 0:
			aux = aux.left
		default:
			aux = aux.right
		}
	}
	return nil, -1
}

func (tree *binaryTree[K]) Search(key K) SearchResult {
	if node, depth := tree.findNode(key); node != nil {
		return SearchResult{Found: true, Depth: depth}
	}
	return notFound
}

func (tree *binaryTree[K]) Min() (Node[K], bool) {
	return minimum[K](tree.Root())
}

func (tree *binaryTree[K]) Max() (Node[K], bool) {
	return maximum[K](tree.Root())
}

func (tree *binaryTree[K]) InorderKeys() []K {
	return inorderKeys[K](tree.Root(), tree.count)
}

func (tree *binaryTree[K]) PreorderKeys() []K {
	return preorderKeys[K](tree.Root(), tree.count)
}

func (tree *binaryTree[K]) PostorderKeys() []K {
	return postorderKeys[K](tree.Root(), tree.count)
}

// Foreach visits the nodes in ascending key order until action
// returns false.
func (tree *binaryTree[K]) Foreach(action func(idx int64, key, val K) bool) {
	foreach[K](tree.Root(), action)
}

func (tree *binaryTree[K]) Height(n Node[K]) int {
	return height[K](n)
}

func (tree *binaryTree[K]) Width(n Node[K]) int {
	return width[K](n)
}

// u's parent adopts v in u's place. v may be nil.
func (tree *binaryTree[K]) transplant(u, v *bsNode[K]) {
	if u.parent == nil {
		tree.root = v
	} else if u == u.parent.left {
		u.parent.left = v
	} else {
		u.parent.right = v
	}
	if v != nil {
		v.parent = u.parent
	}
}

// Clear drops every node. The nodes are unlinked one by one so that
// stale Node handles held by callers do not pin the rest of the tree.
func (tree *binaryTree[K]) Clear() {
	aux := tree.root
	tree.root = nil
	tree.count = 0
	if aux == nil {
		return
	}

	stack := []*bsNode[K]{aux}
	for len(stack) > 0 {
		aux = stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if aux.left != nil {
			stack = append(stack, aux.left)
		}
		if aux.right != nil {
			stack = append(stack, aux.right)
		}
		aux.unlink()
	}
}

func (tree *binaryTree[K]) Save(w io.Writer) error {
	return encodePreorder[K](w, tree.Root())
}

func (tree *binaryTree[K]) Load(r io.Reader) error {
	root, count, err := decodePreorder[K, *bsNode[K]](r, func(key K, parent *bsNode[K], dir Direction) *bsNode[K] {
		node := &bsNode[K]{
			parent: parent,
			key:    key,
			val:    key,
			height: 1,
		}
		switch dir {
		case Left:
			parent.left = node
		case Right:
			parent.right = node
		default:
		}
		return node
	})
	if err != nil {
		return err
	}

	tree.Clear()
	tree.root, tree.count = root, count
	if tree.afterLoad != nil {
		tree.afterLoad()
	}
	return nil
}

func (tree *binaryTree[K]) SaveToFile(path string) error {
	if err := saveFile(tree.logger, path, tree.Save); err != nil {
		return err
	}
	tree.logger.Debug("tree saved", zap.String("path", path), zap.Int64("nodes", tree.count))
	return nil
}

func (tree *binaryTree[K]) LoadFromFile(path string) error {
	return loadFile(tree.logger, path, func(r io.Reader) error {
		if err := tree.Load(r); err != nil {
			return err
		}
		tree.logger.Debug("tree loaded", zap.String("path", path), zap.Int64("nodes", tree.count))
		return nil
	})
}

// BST is the unbalanced binary search tree. Its height is O(n) under
// sorted insertion; every algorithm here is iterative, so only the
// running time degrades.
type BST[K infra.Integer] struct {
	binaryTree[K]
}

var _ SearchTree[int] = (*BST[int])(nil)

func NewBST[K infra.Integer](opts ...Option) *BST[K] {
	return &BST[K]{
		binaryTree: newBinaryTree[K]("bst", opts),
	}
}

func (tree *BST[K]) Insert(key, val K) {
	var parent *bsNode[K]
	res := int64(0)
	for aux := tree.root; aux != nil; {
		parent = aux
		if res = infra.CompareInteger(key, aux.key); res == 0 {
			return
		} else if res < 0 {
			aux = aux.left
		} else {
			aux = aux.right
		}
	}

	node := &bsNode[K]{
		parent: parent,
		key:    key,
		val:    val,
		height: 1,
	}
	if parent == nil {
		tree.root = node
	} else if res < 0 {
		parent.left = node
	} else {
		parent.right = node
	}
	tree.count++
	tree.stats.inserted()
}

/*
Remove with successor copy-up.

r1: Z has at most one child C (or none), transplant C into Z's place.

	  |                 |
	  Z    ======>      C
	   \
	    C

r2: Z has two children. Its successor S is the minimum of Z.right and
has no left child. Copy S's key and value into Z, then remove S by r1.

	  |                       |
	  Z                       S'
	 / \                     / \
	L   R     ======>       L   R
	   /                       /
	  S                       Sr
	   \
	    Sr
*/
func (tree *BST[K]) Remove(key K) bool {
	z, _ := tree.findNode(key)
	if z == nil {
		return false
	}

	if /* r2 */ z.left != nil && z.right != nil {
		succ := z.right.minimum()
		z.key, z.val = succ.key, succ.val
		z = succ
	}

	/* r1 */
	child := z.left
	if child == nil {
		child = z.right
	}
	tree.transplant(z, child)
	z.unlink()
	tree.count--
	tree.stats.removed()
	return true
}
