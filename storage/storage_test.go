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
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/ancientHacker/dancer.go/puzzle"
)

/*

connection

*/

func TestConnect(t *testing.T) {
	m := miniredis.RunT(t)
	os.Unsetenv("REDISTOGO_URL")
	os.Setenv("REDIS_URL", "redis://"+m.Addr())
	os.Setenv("DANCER_ENV", "test")
	if cid, err := Connect(); err != nil {
		t.Errorf("Couldn't connect to storage: %v", err)
	} else if cid != rdUrl {
		t.Errorf("Connected to wrong cache (%s)", cid)
	}
	if rdEnv != "test" {
		t.Errorf("Keyspace env is %q, expected %q", rdEnv, "test")
	}
	Close()
}

/*

the puzzle collection

*/

func TestCollectionBuiltins(t *testing.T) {
	builtins := []string{
		"standard-1", "standard-2", "standard-3", "standard-4",
		"standard-5", "standard-6", "standard-7",
		"small-1", "small-2",
	}
	names := Collection()
	if len(names) < len(builtins) {
		t.Fatalf("Collection has %d names, expected at least %d", len(names), len(builtins))
	}
	if !reflect.DeepEqual(names[:len(builtins)], builtins) {
		t.Errorf("Collection starts with %v", names[:len(builtins)])
	}
	for _, name := range builtins {
		if p := puzzle.NewFromSummary(puzzleSummaries[name]); !p.Valid() {
			t.Errorf("Built-in puzzle %q is not valid", name)
		}
	}
	if puzzleSummaries[defaultPuzzleID] == nil {
		t.Errorf("Default puzzle %q is not in the collection", defaultPuzzleID)
	}

	// name resolution falls back to the default puzzle
	for _, in := range []string{"", "default", "no-such-puzzle"} {
		if name, summary := SummaryOf(in); name != defaultPuzzleID || summary == nil {
			t.Errorf("SummaryOf(%q) resolved to %q", in, name)
		}
	}
	if name, summary := SummaryOf("small-2"); name != "small-2" || summary != puzzleSummaries["small-2"] {
		t.Errorf("SummaryOf(%q) resolved to %q", "small-2", name)
	}

	// Collection hands out a copy of the name list
	names[0] = "overwritten"
	if Collection()[0] != "standard-1" {
		t.Errorf("Collection exposes its backing array")
	}
}

func TestLoadCollection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "puzzles.txt")
	content := "1030030130100103\n" +
		"530070000600195000098000060800060003400803001700020006060000280000419005000080079\n" +
		"\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Couldn't write collection file: %v", err)
	}
	names, err := LoadCollection(path)
	if err != nil {
		t.Fatalf("Couldn't load collection: %v", err)
	}
	if len(names) != 2 {
		t.Fatalf("Loaded %d puzzles, expected 2", len(names))
	}
	for i, name := range names {
		if want := fmt.Sprintf("file-%d", i+1); name != want {
			t.Errorf("Puzzle %d is named %q, expected %q", i, name, want)
		}
	}
	if sum := puzzleSummaries[names[0]]; sum == nil || sum.SideLength != 4 {
		t.Errorf("First loaded puzzle is %+v", sum)
	}
	if sum := puzzleSummaries[names[1]]; sum == nil || sum.SideLength != 9 {
		t.Errorf("Second loaded puzzle is %+v", sum)
	}
	all := Collection()
	if all[len(all)-1] != names[len(names)-1] {
		t.Errorf("Collection doesn't end with the loaded puzzles: %v", all)
	}

	// a bad line names the file and line in the failure
	bad := filepath.Join(t.TempDir(), "bad.txt")
	if err := os.WriteFile(bad, []byte("12345\n"), 0644); err != nil {
		t.Fatalf("Couldn't write collection file: %v", err)
	}
	if _, err := LoadCollection(bad); err == nil {
		t.Errorf("Loaded a collection with a malformed line")
	} else if !strings.Contains(err.Error(), "line 1") {
		t.Errorf("Parse failure doesn't name the line: %v", err)
	}

	if _, err := LoadCollection(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Errorf("Loaded a collection that doesn't exist")
	}
}

/*

sessions

*/

func TestSessionResume(t *testing.T) {
	m := miniredis.RunT(t)
	os.Unsetenv("REDISTOGO_URL")
	os.Setenv("REDIS_URL", "redis://"+m.Addr())
	os.Setenv("DANCER_ENV", "test")
	if _, err := Connect(); err != nil {
		t.Fatalf("Couldn't connect to storage: %v", err)
	}
	defer Close()

	created := time.Now().Format(time.RFC3339)
	ts := &Session{SID: "test session 1", Created: created}
	if ts.Lookup() {
		t.Errorf("Found a session that was never saved")
	}
	ts.StartPuzzle("")
	if ts.PID != defaultPuzzleID {
		t.Errorf("Fresh session is solving %q, expected %q", ts.PID, defaultPuzzleID)
	}
	if ts.Puzzle == nil || !ts.Puzzle.Valid() {
		t.Fatalf("Fresh session has no working puzzle")
	}
	ts.StartPuzzle("small-2")
	if ts.PID != "small-2" || ts.Summary != puzzleSummaries["small-2"] {
		t.Errorf("Session is solving %q with summary %+v", ts.PID, ts.Summary)
	}

	// a later client with the same ID resumes the same puzzle
	other := &Session{SID: "test session 1"}
	if !other.Lookup() {
		t.Fatalf("Didn't find the saved session")
	}
	if other.PID != "small-2" || other.Created != created {
		t.Errorf("Resumed session is %+v", other)
	}
	other.StartPuzzle("")
	if other.PID != "small-2" || other.Puzzle.SideLength() != 4 {
		t.Errorf("Resumed session is solving %q", other.PID)
	}

	// unknown and "default" puzzle names fall back to the default
	other.StartPuzzle("this is not a puzzle name")
	if other.PID != defaultPuzzleID {
		t.Errorf("Unknown puzzle name selected %q", other.PID)
	}
	other.StartPuzzle("small-1")
	other.StartPuzzle("default")
	if other.PID != defaultPuzzleID {
		t.Errorf("Puzzle name \"default\" selected %q", other.PID)
	}
}

func TestSessionHistory(t *testing.T) {
	m := miniredis.RunT(t)
	os.Unsetenv("REDISTOGO_URL")
	os.Setenv("REDIS_URL", "redis://"+m.Addr())
	os.Setenv("DANCER_ENV", "test")
	if _, err := Connect(); err != nil {
		t.Fatalf("Couldn't connect to storage: %v", err)
	}
	defer Close()

	ts := &Session{SID: "history session", Created: time.Now().Format(time.RFC3339)}
	ts.StartPuzzle("small-1")
	if got := ts.History(0); len(got) != 0 {
		t.Errorf("New session has %d history entries", len(got))
	}
	ts.Puzzle.Solve()
	ts.RecordSolve()
	ts.StartPuzzle("small-2")
	ts.Puzzle.Solve()
	ts.RecordSolve()

	entries := ts.History(0)
	if len(entries) != 2 {
		t.Fatalf("History has %d entries, expected 2", len(entries))
	}
	if entries[0].PID != "small-1" || !entries[0].Solved || entries[0].When == "" {
		t.Errorf("First history entry is %+v", entries[0])
	}
	if entries[1].PID != "small-2" || !entries[1].Solved {
		t.Errorf("Second history entry is %+v", entries[1])
	}
	if recent := ts.History(1); len(recent) != 1 || recent[0].PID != "small-2" {
		t.Errorf("Most recent history is %+v", recent)
	}

	// the history keeps only the most recent entries
	for i := 0; i < historyCap+10; i++ {
		ts.RecordSolve()
	}
	if count := len(ts.History(0)); count != historyCap {
		t.Errorf("History has %d entries, expected %d", count, historyCap)
	}
}

/*

the solved-grid cache

*/

func TestSolutionCache(t *testing.T) {
	m := miniredis.RunT(t)
	os.Unsetenv("REDISTOGO_URL")
	os.Setenv("REDIS_URL", "redis://"+m.Addr())
	os.Setenv("DANCER_ENV", "test")
	if _, err := Connect(); err != nil {
		t.Fatalf("Couldn't connect to storage: %v", err)
	}
	defer Close()

	sum := puzzleSummaries["standard-7"]
	hash, err := sum.Hash()
	if err != nil {
		t.Fatalf("Couldn't hash summary: %v", err)
	}
	if _, found := LoadSolution(hash); found {
		t.Errorf("Found a solution that was never saved")
	}

	p := puzzle.NewFromSummary(sum)
	if !p.Solve() {
		t.Fatalf("Couldn't solve %q", "standard-7")
	}
	solved, err := p.Summary()
	if err != nil {
		t.Fatalf("Couldn't summarize the solution: %v", err)
	}
	SaveSolution(hash, solved)

	cached, found := LoadSolution(hash)
	if !found {
		t.Fatalf("Didn't find the saved solution")
	}
	if !reflect.DeepEqual(cached, solved) {
		t.Errorf("Cached solution is %+v, expected %+v", cached, solved)
	}

	// a cached solution rebuilds as an already-solved puzzle
	sp := puzzle.NewFromSummary(cached)
	if !sp.Valid() || !sp.Solve() {
		t.Errorf("Cached solution doesn't rebuild as a solved puzzle")
	}
}
