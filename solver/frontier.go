package solver

import (
	"container/heap"
	"slices"

	"github.com/domino14/solitaire/game"
	"github.com/domino14/solitaire/move"
)

// node owns its state outright. A state is never mutated once its node
// exists; children are built from copies.
type node struct {
	state    *game.Game
	parent   *node
	move     move.Move
	depth    int
	score    float64
	priority float64
	seq      uint64
}

// path returns the moves from the root to n.
func (n *node) path() move.List {
	moves := make(move.List, 0, n.depth)
	for cur := n; cur.parent != nil; cur = cur.parent {
		moves = append(moves, cur.move)
	}
	slices.Reverse(moves)
	return moves
}

// frontier is a max-heap on priority. Ties go to the shallower node,
// then to the one pushed first.
type frontier []*node

func (f frontier) Len() int { return len(f) }

func (f frontier) Less(i, j int) bool {
	a, b := f[i], f[j]
	if a.priority != b.priority {
		return a.priority > b.priority
	}
	if a.depth != b.depth {
		return a.depth < b.depth
	}
	return a.seq < b.seq
}

func (f frontier) Swap(i, j int) { f[i], f[j] = f[j], f[i] }

func (f *frontier) Push(x any) {
	*f = append(*f, x.(*node))
}

func (f *frontier) Pop() any {
	old := *f
	n := len(old)
	nd := old[n-1]
	old[n-1] = nil
	*f = old[:n-1]
	return nd
}

func (f *frontier) push(n *node) { heap.Push(f, n) }
func (f *frontier) pop() *node   { return heap.Pop(f).(*node) }
