package puzzle

import (
	"fmt"
)

/*

Sudoku puzzle solver

The solver is Knuth's Algorithm X run over the exact-cover
matrix, with the matrix's dancing links doing the bookkeeping.
The algorithm is a depth-first search; its name notwithstanding,
there is nothing exotic about it beyond the speed of the
structure underneath:

1. If no constraints remain in the header ring, every constraint
is satisfied by a chosen candidate: the puzzle is solved.

2. Otherwise pick the remaining constraint with the fewest
candidates left.  Fewest-first keeps the branching factor small,
and a constraint with no candidates fails immediately, which is
exactly what should happen to a dead end.  Cover the chosen
constraint.

3. Try each candidate in the chosen constraint's column in turn,
top to bottom: cover the candidate's three other constraints
(left to right), then recurse on the reduced matrix.

3.1 If the recursion succeeds, this candidate is part of the
solution.  Record its (row, column, value) in the solution grid
and return success WITHOUT uncovering anything: the covered
state along this path is the committed partial solution, and
nobody rewinds a success.

3.2 If the recursion fails, uncover the three constraints in
reverse (right to left) to restore the matrix exactly, and move
to the next candidate.

4. When every candidate has failed, uncover the chosen
constraint and report failure to the caller, who will try its
own next candidate.

The search stops at the first solution.  The tie-break in step 2
is deliberate and load-bearing: the scan runs left to right from
the root and keeps the first header at the minimum (strictly
smaller counts only), so the same puzzle always searches in the
same order and lands on the same solution.

*/

// chooseConstraint picks the constraint to branch on: the first
// header in the ring, scanning left to right, whose candidate
// count is strictly smaller than every count seen before it.
// The starting minimum of N+1 exceeds any possible count, so
// the first header always displaces it.
func chooseConstraint(m *matrix) int {
	chosen, min := matrixRoot, m.geometry.sidelen+1
	for h := m.nodes[matrixRoot].right; h != matrixRoot; h = m.nodes[h].right {
		if m.nodes[h].count < min {
			chosen, min = h, m.nodes[h].count
		}
	}
	if chosen == matrixRoot {
		// internal caller error - only called with constraints remaining
		panic(fmt.Errorf("chooseConstraint called on an empty header ring"))
	}
	return chosen
}

// findSolution runs the search over the matrix.  On success it
// returns true having written every committed candidate into
// the solution grid on the way back out; the matrix stays
// covered along the solution path.  On failure it returns false
// with the matrix restored exactly to its state at entry.
func findSolution(m *matrix, solution []int) bool {
	if m.nodes[matrixRoot].right == matrixRoot {
		return true
	}
	h := chooseConstraint(m)
	m.cover(h)
	for n := m.nodes[h].down; n != h; n = m.nodes[n].down {
		for o := m.nodes[n].right; o != n; o = m.nodes[o].right {
			m.cover(m.nodes[o].header)
		}
		if findSolution(m, solution) {
			node := &m.nodes[n]
			solution[node.row*m.geometry.sidelen+node.col] = node.val
			return true
		}
		for o := m.nodes[n].left; o != n; o = m.nodes[o].left {
			m.uncover(m.nodes[o].header)
		}
	}
	m.uncover(h)
	return false
}

/*

Solving a puzzle

*/

// Solve searches for a solution to the puzzle and returns
// whether one was found and verified.  On a puzzle that is not
// valid, Solve does nothing and returns false.  On success the
// puzzle's grid becomes the solution; on failure (no solution
// exists) the grid is untouched, and that is a normal outcome,
// not an error.  Solve is idempotent: once it has run, later
// calls just report the same outcome again.
func (p *Puzzle) Solve() bool {
	if p == nil || !p.valid || p.searched {
		return p.Solved()
	}
	p.searched = true
	if findSolution(p.matrix, p.solution) {
		p.solved = p.validateSolution()
	}
	return p.solved
}
