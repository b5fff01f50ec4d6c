package puzzle

/*

Exact-Cover Matrix

The solver reduces a puzzle to exact cover: pick a subset of the
candidate assignments (row, column, value) so that every
constraint of the grid geometry is satisfied by exactly one
chosen candidate.  The reduction lives in a sparse 0/1 matrix
with one column per constraint and one row per candidate, and
the matrix is represented the "dancing links" way: every 1-entry
is a node in a circular doubly-linked row and a circular
doubly-linked column, so removing a node and restoring it later
are both constant-time pointer splices.

Nodes live in a single arena and link by arena index rather than
by pointer.  The matrix root is index 0, and the header for
constraint k is index k+1, so clue handling can find a
constraint's header without any searching.  Possibility nodes
(the 1-entries) follow the headers in the arena; each candidate
assignment owns four of them, one per constraint it satisfies,
linked into one row ring.

Removal never clears the removed node's own links.  That is the
trick the whole structure turns on: the unspliced node still
remembers its neighbors, so restoring it is just re-aiming the
neighbors at it.  It is only correct if removals and
restorations nest like a stack, which the cover/uncover pair
below guarantees by always traversing in exactly opposite
orders.

*/

// matrixRoot is the arena index of the matrix root sentinel.
const matrixRoot = 0

// A linkNode is one node of the matrix: a member of one
// circular row and one circular column, linked by arena index.
// The root and the constraint headers use only the link fields
// and (for headers) the count; possibility nodes carry their
// owning header and their candidate assignment.
type linkNode struct {
	up, down, left, right int

	count int // headers: possibilities remaining in this column

	header int // possibility nodes: owning constraint header
	row    int // possibility nodes: grid row of the assignment
	col    int // possibility nodes: grid column of the assignment
	val    int // possibility nodes: assigned value, 1..N
}

// A matrix is the exact-cover matrix for one puzzle.  It is
// built once, pruned by the puzzle's clues, and then mutated
// only by the search engine's cover/uncover calls.  It belongs
// to exactly one puzzle and is never shared.
type matrix struct {
	geometry *gridGeometry
	nodes    []linkNode
}

/*

Link primitives

*/

// newNode appends a self-linked node (a ring of one in both
// directions) to the arena and returns its index.
func (m *matrix) newNode() int {
	n := len(m.nodes)
	m.nodes = append(m.nodes, linkNode{up: n, down: n, left: n, right: n})
	return n
}

// addToRow splices node n into a row immediately before head.
func (m *matrix) addToRow(n, head int) {
	prev := m.nodes[head].left
	m.nodes[n].left, m.nodes[n].right = prev, head
	m.nodes[prev].right, m.nodes[head].left = n, n
}

// addToColumn splices node n into a column immediately before
// head.
func (m *matrix) addToColumn(n, head int) {
	prev := m.nodes[head].up
	m.nodes[n].up, m.nodes[n].down = prev, head
	m.nodes[prev].down, m.nodes[head].up = n, n
}

// removeFromRow unsplices n from its row.  The neighbors forget
// n, but n keeps its own links so returnToRow can undo this.
func (m *matrix) removeFromRow(n int) {
	m.nodes[m.nodes[n].left].right = m.nodes[n].right
	m.nodes[m.nodes[n].right].left = m.nodes[n].left
}

// returnToRow re-splices n into its row using n's own links,
// which must not have been touched since its removal.
func (m *matrix) returnToRow(n int) {
	m.nodes[m.nodes[n].left].right = n
	m.nodes[m.nodes[n].right].left = n
}

// removeFromColumn unsplices n from its column, keeping n's own
// links intact.
func (m *matrix) removeFromColumn(n int) {
	m.nodes[m.nodes[n].up].down = m.nodes[n].down
	m.nodes[m.nodes[n].down].up = m.nodes[n].up
}

// returnToColumn re-splices n into its column using n's own
// links.
func (m *matrix) returnToColumn(n int) {
	m.nodes[m.nodes[n].up].down = n
	m.nodes[m.nodes[n].down].up = n
}

/*

Cover and uncover

*/

// cover removes constraint header h from the header ring and
// removes every possibility that can no longer be used: each
// node in h's column satisfies h, so every one of that node's
// other memberships comes out of its own column (and its
// header's count goes down).  The column of h itself is left
// linked, which is what lets uncover find everything again.
//
// The traversal order is part of the contract: column top to
// bottom, memberships left to right.  uncover walks the exact
// reverse, and the stack discipline of the removals depends on
// the two orders mirroring each other.
func (m *matrix) cover(h int) {
	m.removeFromRow(h)
	for n := m.nodes[h].down; n != h; n = m.nodes[n].down {
		for o := m.nodes[n].right; o != n; o = m.nodes[o].right {
			m.removeFromColumn(o)
			m.nodes[m.nodes[o].header].count--
		}
	}
}

// uncover is the exact inverse of cover: column bottom to top,
// memberships right to left, then the header back into the
// header ring.  Calling it except as the inverse of the most
// recent unmatched cover corrupts the matrix.
func (m *matrix) uncover(h int) {
	for n := m.nodes[h].up; n != h; n = m.nodes[n].up {
		for o := m.nodes[n].left; o != n; o = m.nodes[o].left {
			m.returnToColumn(o)
			m.nodes[m.nodes[o].header].count++
		}
	}
	m.returnToRow(h)
}

/*

Matrix construction

*/

// newMatrix builds the full exact-cover matrix for the given
// geometry: all 4*N*N constraint headers in index order, then
// all N*N*N candidate assignments, each as four possibility
// nodes linked into their constraints' columns and into one row
// ring.  Clues have not been applied yet; that is applyClues.
func newMatrix(gg *gridGeometry) *matrix {
	m := &matrix{geometry: gg}
	m.nodes = make([]linkNode, 0, 1+gg.kcount+groupCount*gg.ccount*gg.sidelen)

	// the root, then the headers; constraint k's header is
	// arena index k+1
	m.newNode()
	for k := 0; k < gg.kcount; k++ {
		h := m.newNode()
		m.addToRow(h, matrixRoot)
	}

	// the candidates, in (row, col, val) order; the first
	// membership node anchors the row ring for its three
	// siblings
	for row := 0; row < gg.sidelen; row++ {
		for col := 0; col < gg.sidelen; col++ {
			for val := 1; val <= gg.sidelen; val++ {
				first := 0
				for _, k := range gg.constraints(row, col, val) {
					n := m.newNode()
					m.nodes[n].header = k + 1
					m.nodes[n].row, m.nodes[n].col, m.nodes[n].val = row, col, val
					m.addToColumn(n, k+1)
					m.nodes[k+1].count++
					if first == 0 {
						first = n
					} else {
						m.addToRow(n, first)
					}
				}
			}
		}
	}
	return m
}

// applyClues prunes the matrix by covering the four constraints
// each clue satisfies.  Returns false if the clues conflict,
// that is, if some constraint would be satisfied by two clues.
// On conflict the covering stops at once and the matrix is left
// exactly as it stands: partially covered, never to be
// uncovered, discarded along with the puzzle that owns it.
func (m *matrix) applyClues(clues []int) bool {
	gg := m.geometry
	satisfied := make([]bool, gg.kcount)
	for i, v := range clues {
		if v == 0 {
			continue
		}
		ks := gg.constraints(i/gg.sidelen, i%gg.sidelen, v)
		for _, k := range ks {
			if satisfied[k] {
				return false
			}
		}
		for _, k := range ks {
			satisfied[k] = true
			m.cover(k + 1)
		}
	}
	return true
}
