// dancer.go - a dancing-links Sudoku solver and web service.
// Copyright (C) 2016-2017 Daniel C. Brotsky.
//
// This program is free software; you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation; either version 2 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License along
// with this program; if not, write to the Free Software Foundation, Inc.,
// 51 Franklin Street, Fifth Floor, Boston, MA 02110-1301 USA.
// Licensed under the LGPL v3.  See the LICENSE file for details

package puzzle

import (
	"fmt"
)

/*

Print forms of puzzle values

*/

var (
	valueStrings = []string{
		" ", "1", "2", "3", "4", "5", "6", "7", "8", "9",
		"A", "B", "C", "D", "E", "F", "G", "H", "I", "J",
		"K", "L", "M", "N", "O", "P", "Q", "R", "S", "T",
		"U", "V", "W", "X", "Y", "Z",
	}
	nonValueString = "?"
	bigValueString = "!"
)

func vstr(i int) string {
	if i < 0 {
		return nonValueString
	}
	if i < len(valueStrings) {
		return valueStrings[i]
	}
	return bigValueString
}

/*

Pretty-printed puzzles in strings, for debugging and the
command line.

*/

// String gives a pretty-printed view of a puzzle's current
// grid, with the original clues marked.
func (p *Puzzle) String() string {
	return p.ValuesString(true)
}

// ValuesString: return a pretty-printed grid of the current
// values, which are the solution values once the puzzle is
// solved and the clues before that.  If markClues is specified,
// cells that were given as clues show with a leading "=".
// Puzzles whose grid shape was malformed have nothing to show,
// so they print as the empty string.
func (p *Puzzle) ValuesString(markClues bool) (result string) {
	cur := p.current()
	if cur == nil {
		return
	}
	slen, blen := p.geometry.sidelen, p.geometry.boxlen
	// first put out the header
	result += " "
	for i := 0; i < slen; i++ {
		if i%blen != 0 {
			result += " "
		} else {
			result += "|"
		}
		result += fmt.Sprintf("%2d ", i+1)
	}
	result += "\n"
	// next are the rows, including the separator at the top
	for ri, rowhdr := 0, 'a'; ri < slen; ri, rowhdr = ri+1, rowhdr+1 {
		if ri%blen == 0 {
			result += " "
			for i := 0; i < slen; i++ {
				result += "+---"
			}
			result += "\n"
		}
		result += string(rowhdr)
		for ci := 0; ci < slen; ci++ {
			if ci%blen != 0 {
				result += " "
			} else {
				result += "|"
			}
			v := cur[(ri*slen)+ci]
			if v == 0 {
				result += " _ "
			} else if markClues && p.clues[(ri*slen)+ci] != 0 {
				result += fmt.Sprintf("=%s ", vstr(v))
			} else {
				result += fmt.Sprintf(" %s ", vstr(v))
			}
		}
		result += "\n"
	}
	return
}

/*

The one-line text form of puzzles

*/

// ParseLine parses a puzzle in the one-line text form: N*N
// value characters, one per cell in row-major order, with "0"
// marking an empty cell and values past 9 written as the
// letters "A" on up.  The line must be exactly the values, no
// surrounding whitespace.  Returns the summary of the parsed
// grid; NewFromSummary turns it into a puzzle.
func ParseLine(line string) (*Summary, error) {
	gg, err := squareGridGeometry(len(line))
	if err != nil {
		return nil, err
	}
	values := make([]int, len(line))
	for i, c := range line {
		v, ok := parseValue(c)
		if !ok {
			return nil, Error{
				Scope:     ArgumentScope,
				Structure: AttributeValueStructure,
				Attribute: CharacterAttribute,
				Condition: NonDigitCondition,
				Values:    ErrorData{string(c)},
			}
		}
		if v > gg.sidelen {
			return nil, Error{
				Scope:     ArgumentScope,
				Structure: AttributeValueStructure,
				Attribute: ValueAttribute,
				Condition: NotInRangeCondition,
				Values:    ErrorData{string(c), 0, gg.sidelen},
			}
		}
		values[i] = v
	}
	return &Summary{SideLength: gg.sidelen, Values: values}, nil
}

// parseValue inverts vstr, mapping a value character to the
// value it prints as.
func parseValue(c rune) (int, bool) {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0'), true
	case c >= 'A' && c <= 'Z':
		return int(c-'A') + 10, true
	}
	return 0, false
}
