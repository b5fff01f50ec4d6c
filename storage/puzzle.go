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

package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/ancientHacker/dancer.go/puzzle"
	"github.com/gomodule/redigo/redis"
)

/*

puzzle collection

*/

// The built-in collection: six 9x9 puzzles from published sample
// collections, the newspaper puzzle everybody has seen, and two
// 4x4 teaching puzzles.  Registration happens here and in
// LoadCollection, both before any sessions run, so the maps are
// read-only once the commands start serving.
var (
	defaultPuzzleID = "standard-1"
	collectionNames = []string{
		"standard-1", "standard-2", "standard-3", "standard-4",
		"standard-5", "standard-6", "standard-7",
		"small-1", "small-2",
	}
	puzzleSummaries = map[string]*puzzle.Summary{
		"standard-1": &puzzle.Summary{
			SideLength: 9,
			Values: []int{
				4, 0, 0, 0, 0, 3, 5, 0, 2,
				0, 0, 9, 5, 0, 6, 3, 4, 0,
				0, 0, 0, 0, 0, 0, 0, 0, 8,
				0, 0, 0, 0, 3, 4, 8, 6, 0,
				0, 0, 4, 6, 0, 5, 2, 0, 0,
				0, 2, 8, 7, 9, 0, 0, 0, 0,
				9, 0, 0, 0, 0, 0, 0, 0, 0,
				0, 8, 7, 3, 0, 2, 9, 0, 0,
				5, 0, 2, 9, 0, 0, 0, 0, 6,
			}},
		"standard-2": &puzzle.Summary{
			SideLength: 9,
			Values: []int{
				0, 1, 0, 5, 0, 6, 0, 2, 0,
				0, 0, 0, 0, 0, 3, 0, 1, 8,
				0, 0, 0, 0, 7, 0, 0, 0, 6,
				0, 0, 5, 0, 0, 0, 0, 3, 0,
				0, 0, 8, 0, 9, 0, 7, 0, 0,
				0, 6, 0, 0, 0, 0, 4, 0, 0,
				5, 0, 0, 0, 4, 0, 0, 0, 0,
				6, 4, 0, 2, 0, 0, 0, 0, 0,
				0, 3, 0, 9, 0, 1, 0, 8, 0,
			}},
		"standard-3": &puzzle.Summary{
			SideLength: 9,
			Values: []int{
				9, 0, 0, 4, 5, 0, 0, 0, 8,
				0, 2, 0, 0, 0, 0, 0, 0, 0,
				0, 0, 0, 1, 7, 2, 4, 0, 0,
				0, 7, 9, 0, 0, 0, 6, 8, 0,
				2, 0, 0, 0, 0, 0, 0, 0, 5,
				0, 4, 3, 0, 0, 0, 2, 7, 0,
				0, 0, 8, 3, 2, 5, 0, 0, 0,
				0, 0, 0, 0, 0, 0, 0, 6, 0,
				4, 0, 0, 0, 1, 6, 0, 0, 3,
			}},
		"standard-4": &puzzle.Summary{
			SideLength: 9,
			Values: []int{
				9, 4, 8, 0, 5, 0, 2, 0, 0,
				0, 0, 7, 8, 0, 3, 0, 0, 1,
				0, 5, 0, 0, 7, 0, 0, 0, 0,
				0, 7, 0, 0, 0, 0, 3, 0, 0,
				2, 0, 0, 6, 0, 5, 0, 0, 4,
				0, 0, 5, 0, 0, 0, 0, 9, 0,
				0, 0, 0, 0, 6, 0, 0, 1, 0,
				3, 0, 0, 5, 0, 9, 7, 0, 0,
				0, 0, 6, 0, 1, 0, 4, 2, 3,
			}},
		"standard-5": &puzzle.Summary{
			SideLength: 9,
			Values: []int{
				0, 0, 0, 0, 0, 0, 0, 0, 0,
				9, 0, 0, 5, 0, 7, 0, 3, 0,
				0, 0, 0, 1, 0, 0, 6, 0, 7,
				0, 4, 0, 0, 6, 0, 0, 8, 2,
				6, 7, 0, 0, 0, 0, 0, 1, 3,
				3, 8, 0, 0, 1, 0, 0, 9, 0,
				7, 0, 5, 0, 0, 8, 0, 0, 0,
				0, 2, 0, 3, 0, 9, 0, 0, 8,
				0, 0, 0, 0, 0, 0, 0, 0, 0,
			}},
		"standard-6": &puzzle.Summary{
			SideLength: 9,
			Values: []int{
				2, 0, 0, 8, 0, 0, 0, 5, 0,
				0, 8, 5, 0, 0, 0, 0, 0, 0,
				0, 3, 6, 7, 5, 0, 0, 0, 1,
				0, 0, 3, 0, 4, 0, 0, 9, 8,
				0, 0, 0, 3, 0, 5, 0, 0, 0,
				4, 1, 0, 0, 6, 0, 7, 0, 0,
				5, 0, 0, 0, 0, 7, 1, 2, 0,
				0, 0, 0, 0, 0, 0, 5, 6, 0,
				0, 2, 0, 0, 0, 0, 0, 0, 4,
			}},
		"standard-7": &puzzle.Summary{
			SideLength: 9,
			Values: []int{
				5, 3, 0, 0, 7, 0, 0, 0, 0,
				6, 0, 0, 1, 9, 5, 0, 0, 0,
				0, 9, 8, 0, 0, 0, 0, 6, 0,
				8, 0, 0, 0, 6, 0, 0, 0, 3,
				4, 0, 0, 8, 0, 3, 0, 0, 1,
				7, 0, 0, 0, 2, 0, 0, 0, 6,
				0, 6, 0, 0, 0, 0, 2, 8, 0,
				0, 0, 0, 4, 1, 9, 0, 0, 5,
				0, 0, 0, 0, 8, 0, 0, 7, 9,
			}},
		"small-1": &puzzle.Summary{
			SideLength: 4,
			Values: []int{
				0, 2, 3, 4,
				4, 0, 2, 1,
				3, 4, 1, 2,
				2, 1, 4, 0,
			}},
		"small-2": &puzzle.Summary{
			SideLength: 4,
			Values: []int{
				1, 0, 3, 0,
				0, 3, 0, 1,
				3, 0, 1, 0,
				0, 1, 0, 3,
			}},
	}
)

// Collection returns the names of the known puzzles, built-ins
// first, loaded files after, in registration order.
func Collection() []string {
	names := make([]string, len(collectionNames))
	copy(names, collectionNames)
	return names
}

// SummaryOf resolves a puzzle name against the collection.  It
// returns the matching name and summary; an empty, "default", or
// unrecognized name resolves to the default puzzle.  The summary
// is the registered one, so callers must not modify it.
func SummaryOf(name string) (string, *puzzle.Summary) {
	if summary, ok := puzzleSummaries[name]; ok {
		return name, summary
	}
	return defaultPuzzleID, puzzleSummaries[defaultPuzzleID]
}

// LoadCollection reads a puzzle collection file, one puzzle per
// line in the text format, and registers its puzzles under the
// names "file-1", "file-2", and so on.  Blank lines are skipped.
// Returns the names registered; on a bad line it returns the
// names registered so far and the parse failure.
func LoadCollection(path string) (names []string, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("Couldn't open collection %q: %v", path, err)
	}
	defer f.Close()

	lineno := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lineno++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		summary, e := puzzle.ParseLine(line)
		if e != nil {
			return names, fmt.Errorf("%s line %d: %v", path, lineno, e)
		}
		name := fmt.Sprintf("file-%d", len(fileNames)+1)
		fileNames = append(fileNames, name)
		collectionNames = append(collectionNames, name)
		puzzleSummaries[name] = summary
		names = append(names, name)
	}
	if e := scanner.Err(); e != nil {
		return names, fmt.Errorf("Couldn't read collection %q: %v", path, e)
	}
	return names, nil
}

// names registered by LoadCollection, in load order
var fileNames []string

/*

solved-grid cache

*/

// solvedKey: the cache key for the solution to the puzzle with
// the given hash.
func solvedKey(hash string) string {
	return rdEnv + ":SOLVED:" + hash
}

// LoadSolution looks for a cached solution to the puzzle with
// the given hash.  Returns the solved summary and whether it was
// found; a miss is a normal outcome, not an error.
func LoadSolution(hash string) (*puzzle.Summary, bool) {
	var bytes []byte
	body := func() (err error) {
		bytes, err = redis.Bytes(rdc.Do("GET", solvedKey(hash)))
		if err == redis.ErrNil {
			return nil
		}
		if err != nil {
			err = fmt.Errorf("Cache failure loading solution %q: %v", hash, err)
		}
		return
	}
	rdExecute(body)
	if len(bytes) == 0 {
		return nil, false
	}
	var summary *puzzle.Summary
	if err := json.Unmarshal(bytes, &summary); err != nil {
		panic(fmt.Errorf("Failed to unmarshal cached solution %q: %v", hash, err))
	}
	return summary, true
}

// SaveSolution caches the solved summary of a puzzle under the
// hash of its clues, so the next Solve of the same puzzle,
// whoever asks, is a lookup rather than a search.
func SaveSolution(hash string, summary *puzzle.Summary) {
	bytes, err := json.Marshal(summary)
	if err != nil {
		panic(fmt.Errorf("Failed to marshal solution %q: %v", hash, err))
	}
	body := func() (err error) {
		_, err = rdc.Do("SET", solvedKey(hash), bytes)
		if err != nil {
			err = fmt.Errorf("Cache failure saving solution %q: %v", hash, err)
		}
		return
	}
	rdExecute(body)
}
