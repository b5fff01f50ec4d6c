package puzzle

/*

Puzzle Geometry

In this module, there is only one puzzle geometry: a square of
squares.  The grid has N rows and N columns with N = k*k, and it
is tiled by N boxes, each k squares on a side.  Filling the grid
means satisfying exactly four families of constraints, each with
one constraint per (primary, secondary) pair:

	cell constraints:   each cell holds exactly one value
	row constraints:    each row holds each value exactly once
	column constraints: each column holds each value exactly once
	box constraints:    each box holds each value exactly once

That makes 4 * N * N constraints in all.  They get contiguous
indices, one group after another, with each group laid out as
N*primary + secondary, so any constraint index is computable in
constant time from a (row, column, value) assignment.

*/

// Constraint group offsets, in index order.
const (
	cellGroup = iota
	rowGroup
	colGroup
	boxGroup
	groupCount
)

// A gridGeometry summarizes the geometry parameters of a square
// puzzle grid and computes the constraint indices satisfied by
// value assignments.
type gridGeometry struct {
	sidelen int // N: values are 1..N, rows and columns 0..N-1
	boxlen  int // k: boxes are k x k, N = k*k
	ccount  int // cell count: N*N
	kcount  int // constraint count: 4*N*N
}

// Side lengths we accept.  Below 4 there is no puzzle to solve;
// above 25 the candidate space (4 * N cubed matrix nodes)
// outgrows any sensible in-memory matrix.
const (
	minSideLength = 4
	maxSideLength = 25
)

// gridGeometries is where we memoize computed geometries for
// each side length we've encountered, to avoid computing them
// more than once.
var gridGeometries = make(map[int]*gridGeometry)

// Find the integer square root of val, if it exists.
func findIntSquareRoot(val int) (int, bool) {
	var i int
	for i = 1; i*i <= val; i++ {
		if i*i == val {
			return i, true
		}
	}
	return i - 1, false
}

func computeGridGeometry(slen, blen int) *gridGeometry {
	return &gridGeometry{
		sidelen: slen,
		boxlen:  blen,
		ccount:  slen * slen,
		kcount:  groupCount * slen * slen,
	}
}

// squareGridGeometry returns the geometry for a square puzzle
// with the given number of cells.  This computes (first time)
// and then returns (thereafter) the geometry.  Returns an error
// unless the cell count is the fourth power of a box length in
// the accepted range.
func squareGridGeometry(psize int) (*gridGeometry, error) {
	sidelen, ok := findIntSquareRoot(psize)
	if !ok {
		return nil, formatError(PuzzleSizeAttribute, psize, NonSquareCondition, 0)
	}
	if sidelen < minSideLength {
		return nil, formatError(SideLengthAttribute, sidelen, TooSmallCondition, minSideLength)
	}
	if sidelen > maxSideLength {
		return nil, formatError(SideLengthAttribute, sidelen, TooLargeCondition, maxSideLength)
	}
	boxlen, ok := findIntSquareRoot(sidelen)
	if !ok {
		return nil, formatError(SideLengthAttribute, sidelen, NonSquareCondition, 0)
	}
	gg, ok := gridGeometries[sidelen]
	if ok {
		return gg, nil
	}
	gg = computeGridGeometry(sidelen, boxlen)
	gridGeometries[sidelen] = gg
	return gg, nil
}

/*

Constraint indexing

*/

// boxOf returns the box index of a cell.  Boxes are numbered in
// row-major order, k boxes per band.
func (g *gridGeometry) boxOf(row, col int) int {
	return (row/g.boxlen)*g.boxlen + col/g.boxlen
}

// cellConstraint: the cell at (row, col) holds exactly one value.
func (g *gridGeometry) cellConstraint(row, col int) int {
	return cellGroup*g.ccount + g.sidelen*row + col
}

// rowConstraint: row holds val exactly once.
func (g *gridGeometry) rowConstraint(row, val int) int {
	return rowGroup*g.ccount + g.sidelen*row + (val - 1)
}

// colConstraint: col holds val exactly once.
func (g *gridGeometry) colConstraint(col, val int) int {
	return colGroup*g.ccount + g.sidelen*col + (val - 1)
}

// boxConstraint: the box containing (row, col) holds val exactly
// once.
func (g *gridGeometry) boxConstraint(row, col, val int) int {
	return boxGroup*g.ccount + g.sidelen*g.boxOf(row, col) + (val - 1)
}

// constraints returns the four constraint indices satisfied by
// assigning val (1-based) to the cell at (row, col), in group
// order.  Every candidate assignment satisfies exactly these
// four, so they are also the four column memberships of the
// candidate's matrix row.
func (g *gridGeometry) constraints(row, col, val int) [groupCount]int {
	return [groupCount]int{
		g.cellConstraint(row, col),
		g.rowConstraint(row, val),
		g.colConstraint(col, val),
		g.boxConstraint(row, col, val),
	}
}

/*

Errors

*/

func formatError(attr ErrorAttribute, val int, cond ErrorCondition, limit int) Error {
	err := Error{
		Scope:     GridScope,
		Structure: AttributeValueStructure,
		Attribute: attr,
		Condition: cond,
		Values:    ErrorData{val},
	}
	if cond == TooSmallCondition || cond == TooLargeCondition {
		err.Values = append(err.Values, limit)
	}
	return err
}
