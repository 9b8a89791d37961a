package tree

import (
	"io"

	"go.uber.org/zap"

	"github.com/benz9527/xtree/lib/infra"
	"github.com/benz9527/xtree/lib/xlog"
)

type rbNode[K infra.Integer] struct {
	parent *rbNode[K]
	left   *rbNode[K]
	right  *rbNode[K]
	key    K
	val    K
	color  RBColor
}

func (node *rbNode[K]) Color() RBColor {
	return node.color
}

func (node *rbNode[K]) Key() K {
	return node.key
}

func (node *rbNode[K]) Val() K {
	return node.val
}

func (node *rbNode[K]) Left() Node[K] {
	if node == nil || node.left == nil {
		return nil
	}
	return node.left
}

func (node *rbNode[K]) Right() Node[K] {
	if node == nil || node.right == nil {
		return nil
	}
	return node.right
}

func (node *rbNode[K]) Parent() Node[K] {
	if node == nil || node.parent == nil {
		return nil
	}
	return node.parent
}

// Absent children are black.
func (node *rbNode[K]) isBlack() bool {
	return node == nil || node.color == Black
}

func (node *rbNode[K]) isRed() bool {
	return node != nil && node.color == Red
}

func (node *rbNode[K]) minimum() *rbNode[K] {
	aux := node
	for ; aux != nil && aux.left != nil; aux = aux.left {
	}
	return aux
}

func (node *rbNode[K]) unlink() {
	node.parent, node.left, node.right = nil, nil, nil
}

// RBTree is a red-black tree. It shares the operation surface of the
// other trees but none of their code: removal splices nodes out by
// transplant instead of copying the successor's key up, because the
// delete fixup has to follow the node that takes the removed position.
type RBTree[K infra.Integer] struct {
	root   *rbNode[K]
	count  int64
	logger xlog.XLogger
	stats  *treeStats
}

var _ SearchTree[int] = (*RBTree[int])(nil)

func NewRBTree[K infra.Integer](opts ...Option) *RBTree[K] {
	cfg := applyOptions("rbtree", opts)
	return &RBTree[K]{
		logger: cfg.logger,
		stats:  newTreeStats(cfg),
	}
}

func (tree *RBTree[K]) Len() int64 {
	return tree.count
}

func (tree *RBTree[K]) Root() Node[K] {
	if tree.root == nil {
		return nil
	}
	return tree.root
}

// References:
// https://en.wikipedia.org/wiki/Red%E2%80%93black_tree#Properties
// p1. Every node is either red or black.
// p2. All nil children are considered black.
// p3. A red node does not have a red child. (red-violation)
// p4. Every path from a given node to any of its descendant
//   nil children goes through the same number of black nodes. (black-violation)
// p5. The root is black.

/*
Rotations only restructure, colors are left untouched. The new local
root is returned and the caller relinks it, see rotateLeftAt.

		 |                         |
		 X                         S
		/ \     leftRotate(X)     / \
	   L   S    ============>    X   Sd
		  / \                   / \
		Sc   Sd                L   Sc
*/
func (tree *RBTree[K]) leftRotate(x *rbNode[K]) *rbNode[K] {
	if x == nil || x.right == nil {
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] left rotate node x is nil or x.right is nil")
	}

	y := x.right
	x.right, y.left = y.left, x
	if x.right != nil {
		x.right.parent = x
	}
	y.parent, x.parent = x.parent, y
	tree.stats.rotated(Left)
	return y
}

/*
		 |                         |
		 X                         S
		/ \     rightRotate(X)    / \
	   S   R    ============>    Sd  X
	  / \                           / \
	Sd   Sc                       Sc   R
*/
func (tree *RBTree[K]) rightRotate(x *rbNode[K]) *rbNode[K] {
	if x == nil || x.left == nil {
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] right rotate node x is nil or x.left is nil")
	}

	y := x.left
	x.left, y.right = y.right, x
	if x.left != nil {
		x.left.parent = x
	}
	y.parent, x.parent = x.parent, y
	tree.stats.rotated(Right)
	return y
}

// relink puts sub in the slot old used to occupy under parent.
func (tree *RBTree[K]) relink(parent, old, sub *rbNode[K]) {
	switch {
	case parent == nil:
		tree.root = sub
	case parent.left == old:
		parent.left = sub
	default:
		parent.right = sub
	}
}

func (tree *RBTree[K]) rotateLeftAt(x *rbNode[K]) {
	p := x.parent
	tree.relink(p, x, tree.leftRotate(x))
}

func (tree *RBTree[K]) rotateRightAt(x *rbNode[K]) {
	p := x.parent
	tree.relink(p, x, tree.rightRotate(x))
}

// u's parent adopts v in u's place. v may be nil.
func (tree *RBTree[K]) transplant(u, v *rbNode[K]) {
	tree.relink(u.parent, u, v)
	if v != nil {
		v.parent = u.parent
	}
}

func (tree *RBTree[K]) findNode(key K) (*rbNode[K], int) {
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

func (tree *RBTree[K]) Search(key K) SearchResult {
	if node, depth := tree.findNode(key); node != nil {
		return SearchResult{Found: true, Depth: depth}
	}
	return notFound
}

// The new node is a red leaf, a duplicated key is ignored.
func (tree *RBTree[K]) Insert(key, val K) {
	var parent *rbNode[K]
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

	z := &rbNode[K]{
		parent: parent,
		key:    key,
		val:    val,
		color:  Red,
	}
	if parent == nil {
		tree.root = z
	} else if res < 0 {
		parent.left = z
	} else {
		parent.right = z
	}
	tree.count++
	tree.stats.inserted()
	tree.insertFixup(z)
}

/*
<X> is a RED node.
[X] is a BLACK node (or nil).

The loop runs while Z and its parent P are both red. P is red so it is
not the root and the grandparent G exists.

im1: The uncle U is red. Push the red up to G and continue from G.

	    [G]             <G>
	    / \             / \
	  <P> <U>  ====>  [P] [U]
	  /               /
	<Z>             <Z>

im2: U is black and Z is the inner child. Rotate P so that Z and P are
in a straight line, then fall into im3 with P as Z.

	  [G]                 [G]
	  / \    rotate(P)    / \
	<P> [U]  ========>  <Z> [U]
	  \                 /
	  <Z>             <P>

im3: U is black and Z is the outer child. Repaint P black and G red,
then rotate G. The subtree root is black, so the loop ends.

	    [G]                 [P]
	    / \    rotate(G)    / \
	  <P> [U]  ========>  <Z> <G>
	  /                         \
	<Z>                         [U]

The root is repainted black at the end.
*/
func (tree *RBTree[K]) insertFixup(z *rbNode[K]) {
	for z.parent.isRed() {
		p := z.parent
		g := p.parent
		if p == g.left {
			if u := g.right; /* im1 */ u.isRed() {
				p.color, u.color, g.color = Black, Black, Red
				tree.stats.recolored()
				z = g
				continue
			}
			if /* im2 */ z == p.right {
				z = p
				tree.rotateLeftAt(z)
				p = z.parent
			}
			/* im3 */
			p.color, g.color = Black, Red
			tree.rotateRightAt(g)
		} else {
			if u := g.left; /* im1 */ u.isRed() {
				p.color, u.color, g.color = Black, Black, Red
				tree.stats.recolored()
				z = g
				continue
			}
			if /* im2 */ z == p.left {
				z = p
				tree.rotateRightAt(z)
				p = z.parent
			}
			/* im3 */
			p.color, g.color = Black, Red
			tree.rotateLeftAt(g)
		}
	}
	tree.root.color = Black
}

/*
Remove splices by transplant.

r1: Z has no left child, Z.right (maybe nil) takes Z's place.
r2: Z has no right child, Z.left takes Z's place.
r3: Z has two children. Its successor Y (minimum of Z.right) leaves its
own position to Y.right, then takes Z's position, children and color.

	  |                        |
	  Z                        Y
	 / \                      / \
	L   R     ======>        L   R
	   /                        /
	  Y                        X
	   \
	    X

yOriginalRed is the color of the node that actually left its position
(Z in r1/r2, Y in r3). X is the node that moved into that position and
may be nil, so its parent is tracked as xParent. Removing a black node
shortens every path through X by one black, which the fixup repairs.
*/
func (tree *RBTree[K]) Remove(key K) bool {
	z, _ := tree.findNode(key)
	if z == nil {
		return false
	}

	var x, xParent *rbNode[K]
	yOriginalRed := z.isRed()
	if /* r1 */ z.left == nil {
		x, xParent = z.right, z.parent
		tree.transplant(z, z.right)
	} else if /* r2 */ z.right == nil {
		x, xParent = z.left, z.parent
		tree.transplant(z, z.left)
	} else /* r3 */ {
		y := z.right.minimum()
		yOriginalRed = y.isRed()
		x = y.right
		if y.parent == z {
			xParent = y
		} else {
			xParent = y.parent
			tree.transplant(y, y.right)
			y.right = z.right
			y.right.parent = y
		}
		tree.transplant(z, y)
		y.left = z.left
		y.left.parent = y
		y.color = z.color
	}

	z.unlink()
	tree.count--
	tree.stats.removed()
	if !yOriginalRed {
		tree.removeFixup(x, xParent)
	}
	return true
}

/*
<X> is a RED node.
[X] is a BLACK node (or nil).
{X} is either a RED node or a BLACK node.

X carries an extra black. W is X's sibling, Wn the near nephew (same
side as X) and Wf the far nephew. Cases for X being the left child,
the right child case is the mirror.

rm1: W is red. Repaint W black and P red, rotate P towards X. X gets a
black sibling, continue with rm2..rm4.

	  [P]                   [W]
	  / \    l-rotate(P)    / \
	[X] <W>  ==========>  <P> [Wf]
	    / \               / \
	 [Wn] [Wf]          [X] [Wn]

rm2: W and both nephews are black. Repaint W red and move the extra
black up to P.

	  {P}             {P} <- X
	  / \             / \
	[X] [W]  ====>  [X] <W>
	    / \             / \
	 [Wn] [Wf]       [Wn] [Wf]

rm3: W is black, Wn is red and Wf is black. Rotate W away from X and
swap the colors of W and Wn, so the red nephew is the far one.

	  {P}                    {P}
	  / \    r-rotate(W)     / \
	[X] [W]  ==========>   [X] [Wn]
	    / \                      \
	  <Wn> [Wf]                  <W>
	                               \
	                               [Wf]

rm4: W is black and Wf is red. W takes P's color, P and Wf become
black, rotate P towards X. The extra black is absorbed, stop.

	  {P}                   {W}
	  / \    l-rotate(P)    / \
	[X] [W]  ==========>  [P] [Wf]
	    / \               / \
	 {Wn} <Wf>          [X] {Wn}
*/
func (tree *RBTree[K]) removeFixup(x, xParent *rbNode[K]) {
	for x != tree.root && x.isBlack() {
		if x == xParent.left {
			w := xParent.right
			if /* rm1 */ w.isRed() {
				w.color, xParent.color = Black, Red
				tree.rotateLeftAt(xParent)
				w = xParent.right
			}
			if /* rm2 */ w.left.isBlack() && w.right.isBlack() {
				w.color = Red
				tree.stats.recolored()
				x, xParent = xParent, xParent.parent
				continue
			}
			if /* rm3 */ w.right.isBlack() {
				w.left.color, w.color = Black, Red
				tree.rotateRightAt(w)
				w = xParent.right
			}
			/* rm4 */
			w.color, xParent.color, w.right.color = xParent.color, Black, Black
			tree.rotateLeftAt(xParent)
			x, xParent = tree.root, nil
		} else {
			w := xParent.left
			if /* rm1 */ w.isRed() {
				w.color, xParent.color = Black, Red
				tree.rotateRightAt(xParent)
				w = xParent.left
			}
			if /* rm2 */ w.right.isBlack() && w.left.isBlack() {
				w.color = Red
				tree.stats.recolored()
				x, xParent = xParent, xParent.parent
				continue
			}
			if /* rm3 */ w.left.isBlack() {
				w.right.color, w.color = Black, Red
				tree.rotateLeftAt(w)
				w = xParent.left
			}
			/* rm4 */
			w.color, xParent.color, w.left.color = xParent.color, Black, Black
			tree.rotateRightAt(xParent)
			x, xParent = tree.root, nil
		}
	}
	if x != nil {
		x.color = Black
	}
}

func (tree *RBTree[K]) Min() (Node[K], bool) {
	return minimum[K](tree.Root())
}

func (tree *RBTree[K]) Max() (Node[K], bool) {
	return maximum[K](tree.Root())
}

func (tree *RBTree[K]) InorderKeys() []K {
	return inorderKeys[K](tree.Root(), tree.count)
}

func (tree *RBTree[K]) PreorderKeys() []K {
	return preorderKeys[K](tree.Root(), tree.count)
}

func (tree *RBTree[K]) PostorderKeys() []K {
	return postorderKeys[K](tree.Root(), tree.count)
}

// Foreach visits the nodes in ascending key order until action
// returns false.
func (tree *RBTree[K]) Foreach(action func(idx int64, key, val K) bool) {
	foreach[K](tree.Root(), action)
}

// ForeachColor is Foreach with the node color.
func (tree *RBTree[K]) ForeachColor(action func(idx int64, color RBColor, key, val K) bool) {
	aux := tree.root
	if aux == nil {
		return
	}

	stack := make([]*rbNode[K], 0, 32)
	defer func() {
		clear(stack)
	}()

	for ; aux != nil; aux = aux.left {
		stack = append(stack, aux)
	}

	idx := int64(0)
	for size := len(stack); size > 0; size = len(stack) {
		if aux = stack[size-1]; !action(idx, aux.color, aux.key, aux.val) {
			return
		}
		idx++
		stack = stack[:size-1]
		for aux = aux.right; aux != nil; aux = aux.left {
			stack = append(stack, aux)
		}
	}
}

func (tree *RBTree[K]) Height(n Node[K]) int {
	return height[K](n)
}

func (tree *RBTree[K]) Width(n Node[K]) int {
	return width[K](n)
}

func (tree *RBTree[K]) Clear() {
	aux := tree.root
	tree.root = nil
	tree.count = 0
	if aux == nil {
		return
	}

	stack := []*rbNode[K]{aux}
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

func (tree *RBTree[K]) Save(w io.Writer) error {
	return encodePreorder[K](w, tree.Root())
}

// Load rebuilds the structure from the stream. Colors are not persisted;
// they are derived again by repaint, falling back to a rebuild by
// pre-order re-insertion when the shape cannot be colored.
func (tree *RBTree[K]) Load(r io.Reader) error {
	root, count, err := decodePreorder[K, *rbNode[K]](r, func(key K, parent *rbNode[K], dir Direction) *rbNode[K] {
		node := &rbNode[K]{
			parent: parent,
			key:    key,
			val:    key,
			color:  Red,
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
	if tree.root == nil {
		return nil
	}
	if !tree.repaint() {
		tree.logger.Warn("loaded rbtree shape admits no valid coloring, rebuild it",
			zap.Int64("nodes", tree.count),
		)
		tree.rebuild()
	}
	return nil
}

func (tree *RBTree[K]) SaveToFile(path string) error {
	if err := saveFile(tree.logger, path, tree.Save); err != nil {
		return err
	}
	tree.logger.Debug("tree saved", zap.String("path", path), zap.Int64("nodes", tree.count))
	return nil
}

func (tree *RBTree[K]) LoadFromFile(path string) error {
	return loadFile(tree.logger, path, func(r io.Reader) error {
		if err := tree.Load(r); err != nil {
			return err
		}
		tree.logger.Debug("tree loaded", zap.String("path", path), zap.Int64("nodes", tree.count))
		return nil
	})
}
