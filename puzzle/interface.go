// Copyright 2016 Daniel C. Brotsky.  All rights reserved.

// Package puzzle solves Sudoku-style grid-filling puzzles by
// reduction to exact cover, searched with Knuth's Algorithm X
// over a dancing-links matrix.  It supports both a golang
// interface and a web interface to the puzzles.
//
// In this package, puzzles are square grids of cells which are
// either empty (represented with a 0 value) or hold a value
// between 1 and the side length of the grid (inclusive).  The
// side length N must itself be the square of a box size k, and
// the grid is tiled by k-by-k boxes.  A filled grid solves the
// puzzle when every row, every column, and every box contains
// each value exactly once and every original clue is preserved.
//
// Construction never fails: a grid whose shape is wrong, or
// whose clues contradict one another, yields a puzzle that
// reports itself as not valid and refuses to solve.  Solving a
// valid puzzle either finds and independently verifies the
// first solution (the same one every time, as the search order
// is deterministic) or completes normally with nothing found,
// which is how over-constrained puzzles report themselves.
// Callers observe everything through the Valid and Solved flags
// and the grid accessors; no operation on a puzzle panics or
// returns an error for a merely unsolvable grid.
package puzzle

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

/*

Construction

*/

// New returns the puzzle for the given clue grid.  Cell values
// range from 1 to the side length of the grid; a value of 0
// means an empty cell.  New always returns a puzzle: if the
// grid is not an N-by-N square with N the square of a box size,
// or a cell value is out of range, or two clues contradict each
// other, the returned puzzle reports false from Valid and does
// nothing else.
func New(rows [][]int) *Puzzle {
	return create(rows)
}

// NewFromSummary returns the puzzle for a summary's flat,
// row-major value list.  A nil value list stands for an empty
// grid of the summary's side length.  Like New this is soft: a
// summary whose value count disagrees with its side length
// yields an invalid puzzle.
func NewFromSummary(s *Summary) *Puzzle {
	if s == nil || s.SideLength < 0 {
		return &Puzzle{}
	}
	values := s.Values
	if values == nil {
		values = make([]int, s.SideLength*s.SideLength)
	}
	if len(values) != s.SideLength*s.SideLength {
		return &Puzzle{}
	}
	return create(unflatten(values, s.SideLength))
}

/*

Puzzle state

*/

// Valid reports whether the clue grid passed the structural and
// conflict checks at construction.  An invalid puzzle is inert.
func (p *Puzzle) Valid() bool {
	return p != nil && p.valid
}

// Solved reports whether Solve found a solution that the
// independent validation confirmed.
func (p *Puzzle) Solved() bool {
	return p != nil && p.solved
}

// SideLength returns the side length of the grid, or 0 when the
// grid shape was malformed.
func (p *Puzzle) SideLength() int {
	if p == nil || p.geometry == nil {
		return 0
	}
	return p.geometry.sidelen
}

// Clues returns a copy of the clue grid exactly as it was given
// to New, malformed or not.
func (p *Puzzle) Clues() [][]int {
	if p == nil {
		return nil
	}
	return copyRows(p.rows)
}

// Grid returns a copy of the puzzle's current grid: the clues
// as given until the puzzle is solved, the full solution after.
func (p *Puzzle) Grid() [][]int {
	if p == nil {
		return nil
	}
	cur := p.current()
	if cur == nil {
		return copyRows(p.rows)
	}
	return unflatten(cur, p.geometry.sidelen)
}

/*

Summaries

*/

// A Summary is the serializable form of a puzzle grid: the side
// length and the flat, row-major cell values.  Summaries are
// what travel through caches, sessions, and the web interface.
type Summary struct {
	SideLength int   `json:"sidelen"`
	Values     []int `json:"values"`
}

// Summary exports the puzzle's current grid.  Puzzles whose
// grid shape was malformed have no meaningful summary, so this
// returns an error for them.
func (p *Puzzle) Summary() (*Summary, error) {
	cur := p.current()
	if cur == nil {
		return nil, summaryError()
	}
	values := make([]int, len(cur))
	copy(values, cur)
	return &Summary{SideLength: p.geometry.sidelen, Values: values}, nil
}

// Hash returns a stable content identity for the summary,
// suitable as a cache key: two summaries of the same grid hash
// the same, and any difference in shape or values changes the
// hash.
func (s *Summary) Hash() (string, error) {
	if s == nil || s.SideLength <= 0 || len(s.Values) != s.SideLength*s.SideLength {
		return "", Error{
			Scope:     ArgumentScope,
			Structure: AttributeStructure,
			Attribute: SummaryAttribute,
			Condition: InvalidArgumentCondition,
		}
	}
	h := sha256.New()
	fmt.Fprintf(h, "%d:", s.SideLength)
	for _, v := range s.Values {
		fmt.Fprintf(h, "%d,", v)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

/*

Errors

*/

func summaryError() Error {
	return Error{
		Scope:     ArgumentScope,
		Structure: AttributeStructure,
		Attribute: PuzzleAttribute,
		Condition: InvalidPuzzleCondition,
	}
}
