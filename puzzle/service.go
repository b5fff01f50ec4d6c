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
	"encoding/json"
	"fmt"
	"net/http"
)

/*

Puzzle state on the wire

*/

// A State is the wire form of a puzzle's current standing: the
// validity and solvedness flags and the current grid values,
// which are the solution values once the puzzle is solved and
// the clues before that.  Malformed puzzles have no values.
type State struct {
	SideLength int   `json:"sidelen"`
	Valid      bool  `json:"valid"`
	Solved     bool  `json:"solved"`
	Values     []int `json:"values,omitempty"`
}

// state collects the puzzle's current State.
func (p *Puzzle) state() *State {
	s := &State{
		SideLength: p.SideLength(),
		Valid:      p.Valid(),
		Solved:     p.Solved(),
	}
	if cur := p.current(); cur != nil {
		s.Values = make([]int, len(cur))
		copy(s.Values, cur)
	}
	return s
}

/*

Puzzle Download Methods

*/

// SummaryHandler responds with the Puzzle's summary.  If we
// can't encode the response to the client successfully, we give
// both the client and the golang caller an Error response.
func (p *Puzzle) SummaryHandler(w http.ResponseWriter, r *http.Request) error {
	summary, e := p.Summary()
	if e != nil {
		return writeError(noPuzzleError, ErrorData{r.URL.Path, "No puzzle"}, w, r)
	}
	return writeJSON(summary, http.StatusOK, w, r)
}

// StateHandler responds with the Puzzle's current state.  Note
// that puzzles with conflicting clues have a perfectly good
// state, just one whose valid flag is down; only puzzles whose
// grid shape was malformed have nothing to report.  If we can't
// encode the response to the client successfully, we give both
// the client and the golang caller an Error response.
func (p *Puzzle) StateHandler(w http.ResponseWriter, r *http.Request) error {
	if p == nil || p.geometry == nil {
		return writeError(noPuzzleError, ErrorData{r.URL.Path, "No puzzle"}, w, r)
	}
	return writeJSON(p.state(), http.StatusOK, w, r)
}

/*

Puzzle Solving

*/

// SolveHandler is a POST handler that runs the solver and
// responds with the resulting state.  Solving never fails hard:
// an invalid or unsolvable puzzle just reports a state whose
// flags say so.  If we can't encode the response to the client
// successfully, we give both the client and the golang caller
// an Error response.
func (p *Puzzle) SolveHandler(w http.ResponseWriter, r *http.Request) error {
	if p == nil || p.geometry == nil {
		return writeError(noPuzzleError, ErrorData{r.URL.Path, "No puzzle"}, w, r)
	}
	p.Solve()
	return writeJSON(p.state(), http.StatusOK, w, r)
}

/*

Utilities

*/

type handlerError int

const (
	requestDecodingError handlerError = iota
	responseEncodingError
	noPuzzleError
)

// writeError sends back a server error of the given type, sort
// of like http.Error, but it sends the JSON form of an
// appropriate Error.
func writeError(et handlerError, ed ErrorData,
	w http.ResponseWriter, r *http.Request) error {
	var err Error
	var status int
	switch et {
	case requestDecodingError:
		status = http.StatusBadRequest
		err = Error{
			Scope:     RequestScope,
			Structure: AttributeStructure,
			Attribute: DecodeAttribute,
			Condition: GeneralCondition,
			Values:    ed,
		}
	case responseEncodingError:
		status = http.StatusInternalServerError
		err = Error{
			Scope:     InternalScope,
			Structure: AttributeStructure,
			Attribute: EncodeAttribute,
			Condition: GeneralCondition,
			Values:    ed,
		}
	case noPuzzleError:
		status = http.StatusNotFound
		err = Error{
			Scope:     RequestScope,
			Structure: AttributeValueStructure,
			Attribute: URLAttribute,
			Condition: GeneralCondition,
			Values:    ed,
		}
	default:
		status = http.StatusInternalServerError
		err = Error{
			Scope:     InternalScope,
			Structure: AttributeStructure,
			Attribute: NamedAttribute,
			Condition: GeneralCondition,
			Values: ErrorData{
				"writeError",
				fmt.Sprintf("Unknown handler error type (%v)", et),
			},
		}
	}
	err.Message = err.Error()
	return writeJSON(err, status, w, r)
}

// writeJSON is called by handlers to encode and send the client
// response.  It returns an appropriate error status for the
// handler to return to its caller, as follows:
//
// 1. If writeJSON encounters an encoding error sending the
// response, it will create an Error object describing the
// failure, encode that Error as a 500-series response to the
// client, and return that Error to the handler.
//
// 2. If no encoding error occurs, but the handler is sending an
// Error object as the response to the client, writeJSON will
// return that same Error to the handler.
//
// 3. If no encoding error occurs, and the handler is sending a
// non-Error object as the response to the client, writeJSON will
// return nil to the handler.
func writeJSON(obj interface{}, status int, w http.ResponseWriter, r *http.Request) error {
	err, isErr := obj.(Error)
	bytes, e := json.Marshal(obj)
	if e != nil {
		if isErr && err.Scope == InternalScope && err.Attribute == EncodeAttribute {
			// We just failed to encode an Encoding error.  This
			// should never happen!!  If it did, it almost
			// certainly means that the JSON encoding system is
			// dead, so pseudo-encode the error by hand by
			// returning the Error's summary as a quoted string.
			status = http.StatusInternalServerError // probably was already!
			bytes = []byte(fmt.Sprintf("%q", err.Error()))
		} else {
			// generate, send, and return an encoding error
			return writeError(responseEncodingError, ErrorData{e.Error()}, w, r)
		}
	}
	hs := w.Header()
	hs.Add("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(bytes)
	if isErr {
		return err
	}
	return nil
}
