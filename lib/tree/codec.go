package tree

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/benz9527/xtree/lib/infra"
)

// Persisted format, shared by all tree kinds:
// the pre-order key stream with "#" in place of every absent child,
// each token followed by a single space.
//
//	    20
//	   /  \     =>  "20 10 # # 30 # # "
//	  10  30
//
// Colors and values are not written. Loaded values equal their keys.

const sentinelToken = "#"

var (
	ErrMalformedToken = errors.New("[tree] malformed token")
	ErrOrderViolation = errors.New("[tree] key violates the search order")
)

func encodePreorder[K infra.Integer](w io.Writer, root Node[K]) error {
	bw := bufio.NewWriter(w)
	scratch := make([]byte, 0, 24)

	// nil entries stand for absent children.
	stack := []Node[K]{root}
	for len(stack) > 0 {
		aux := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if aux == nil {
			if _, err := bw.WriteString(sentinelToken + " "); err != nil {
				return infra.WrapErrorStack(err)
			}
			continue
		}
		scratch = infra.AppendInteger(scratch[:0], aux.Key())
		scratch = append(scratch, ' ')
		if _, err := bw.Write(scratch); err != nil {
			return infra.WrapErrorStack(err)
		}
		stack = append(stack, aux.Right(), aux.Left())
	}
	return infra.WrapErrorStack(bw.Flush())
}

type decodeSlot[K infra.Integer, N any] struct {
	parent N
	dir    Direction
	// Open interval the key must fall in.
	lo, hi       K
	hasLo, hasHi bool
}

func (slot *decodeSlot[K, N]) admits(key K) bool {
	if slot.hasLo && key <= slot.lo {
		return false
	}
	if slot.hasHi && key >= slot.hi {
		return false
	}
	return true
}

// decodePreorder rebuilds a tree from the token stream. attach creates
// the node for key and links it under parent on the dir side (Root when
// parent is absent). A stream that ends early leaves the pending slots
// absent; tokens after a complete tree are ignored.
func decodePreorder[K infra.Integer, N any](
	r io.Reader,
	attach func(key K, parent N, dir Direction) N,
) (root N, count int64, err error) {
	var zero N
	scanner := bufio.NewScanner(r)
	scanner.Split(bufio.ScanWords)

	stack := []decodeSlot[K, N]{{parent: zero, dir: Root}}
	for idx := 0; len(stack) > 0 && scanner.Scan(); idx++ {
		slot := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		token := scanner.Text()
		if token == sentinelToken {
			continue
		}
		key, perr := infra.ParseInteger[K](token)
		if perr != nil {
			return zero, 0, infra.WrapErrorStack(
				fmt.Errorf("%w: token %q at %d: %w", ErrMalformedToken, token, idx, perr),
			)
		}
		if !slot.admits(key) {
			return zero, 0, infra.WrapErrorStack(
				fmt.Errorf("%w: key %s at %d", ErrOrderViolation, token, idx),
			)
		}

		node := attach(key, slot.parent, slot.dir)
		if slot.dir == Root {
			root = node
		}
		count++
		stack = append(stack,
			decodeSlot[K, N]{parent: node, dir: Right, lo: key, hasLo: true, hi: slot.hi, hasHi: slot.hasHi},
			decodeSlot[K, N]{parent: node, dir: Left, lo: slot.lo, hasLo: slot.hasLo, hi: key, hasHi: true},
		)
	}
	if err = scanner.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			err = fmt.Errorf("%w: %w", ErrMalformedToken, err)
		}
		return zero, 0, infra.WrapErrorStack(err)
	}
	return root, count, nil
}
