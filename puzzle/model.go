package puzzle

/*

Puzzle model

*/

// A Puzzle is a single solve attempt: the clue grid exactly as
// given, the working solution grid, and the exact-cover matrix
// the search runs over.  A Puzzle is built once, searched at
// most once, and owned by one caller at a time; nothing here is
// safe for concurrent use.
//
// Construction is soft: a malformed grid or conflicting clues
// produce a Puzzle that reports itself as not valid, never an
// error.  An invalid Puzzle is inert; Solve refuses it and its
// grid stays exactly as given.
type Puzzle struct {
	geometry *gridGeometry // nil when the grid shape was malformed
	rows     [][]int       // the clue grid as given, untouched
	clues    []int         // flat row-major clues, well-formed grids only
	solution []int         // starts equal to the clues, filled by the search
	matrix   *matrix       // nil unless the puzzle is valid
	valid    bool
	searched bool
	solved   bool
}

/*

Construction

*/

// create builds the puzzle instance behind New.  The checks run
// in two passes.
//
// Pass 1 validates the shape of the grid without building
// anything: the row count N must be the square of a box size in
// the accepted range, every row must have exactly N entries,
// and every entry must be 0 (empty) or a value 1..N.  A grid
// that fails Pass 1 yields an invalid puzzle with no matrix.
//
// Pass 2 builds the full exact-cover matrix and covers the
// constraints the clues satisfy.  Clues that conflict abandon
// the partly covered matrix where it stands and yield an
// invalid puzzle; the matrix is unusable at that point, so the
// puzzle never keeps a reference to it.
func create(rows [][]int) *Puzzle {
	p := &Puzzle{rows: copyRows(rows)}

	// Pass 1: grid shape
	gg, err := squareGridGeometry(len(rows) * len(rows))
	if err != nil {
		return p
	}
	for _, row := range rows {
		if len(row) != gg.sidelen {
			return p
		}
		for _, v := range row {
			if v < 0 || v > gg.sidelen {
				return p
			}
		}
	}
	p.geometry = gg

	// Pass 2: matrix and clues
	p.clues = flatten(rows)
	p.solution = make([]int, len(p.clues))
	copy(p.solution, p.clues)
	m := newMatrix(gg)
	if !m.applyClues(p.clues) {
		return p
	}
	p.matrix = m
	p.valid = true
	return p
}

/*

Solution validation

*/

// validateSolution re-checks the filled grid from first
// principles, without consulting the matrix: every clue kept,
// every cell in range, and every constraint of the geometry
// satisfied by exactly one cell.  The search is believed only
// when this agrees, so a structure bug shows up as a solve
// failure instead of a wrong grid presented as a solution.
func (p *Puzzle) validateSolution() bool {
	gg := p.geometry
	seen := make([]bool, gg.kcount)
	for i, v := range p.solution {
		if c := p.clues[i]; c != 0 && v != c {
			return false
		}
		if v < 1 || v > gg.sidelen {
			return false
		}
		for _, k := range gg.constraints(i/gg.sidelen, i%gg.sidelen, v) {
			if seen[k] {
				return false
			}
			seen[k] = true
		}
	}
	for _, s := range seen {
		if !s {
			return false
		}
	}
	return true
}

/*

Grid helpers

*/

// copyRows deep-copies a grid, ragged or not.
func copyRows(rows [][]int) [][]int {
	if rows == nil {
		return nil
	}
	out := make([][]int, len(rows))
	for i, row := range rows {
		out[i] = make([]int, len(row))
		copy(out[i], row)
	}
	return out
}

// flatten turns a well-formed square grid into a flat row-major
// value list.
func flatten(rows [][]int) []int {
	out := make([]int, 0, len(rows)*len(rows))
	for _, row := range rows {
		out = append(out, row...)
	}
	return out
}

// unflatten turns a flat row-major value list back into rows of
// the given side length.
func unflatten(values []int, sidelen int) [][]int {
	out := make([][]int, sidelen)
	for i := range out {
		out[i] = make([]int, sidelen)
		copy(out[i], values[i*sidelen:(i+1)*sidelen])
	}
	return out
}

// current returns the puzzle's present flat grid: the solution
// once solved, otherwise the clues.  Nil for malformed puzzles.
func (p *Puzzle) current() []int {
	if p == nil || p.geometry == nil {
		return nil
	}
	if p.solved {
		return p.solution
	}
	return p.clues
}
