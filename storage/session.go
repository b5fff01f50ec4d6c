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
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/ancientHacker/dancer.go/puzzle"
	"github.com/gomodule/redigo/redis"
)

// A Session tracks which puzzle the user is working on, so a
// restarted client picks up where it left off.  Only the named
// fields are persisted, as a hash; the summary and puzzle are
// rebuilt from the collection on load.
type Session struct {
	SID     string // session ID
	PID     string // ID of puzzle being solved
	Created string // RFC3339 time when the session was created
	Saved   string // RFC3339 time when the session was last saved

	Summary *puzzle.Summary `redis:"-"` // clues of the working puzzle
	Puzzle  *puzzle.Puzzle  `redis:"-"` // working puzzle
}

/*

session manipulation

*/

// Lookup: load the saved session for this session's ID.  Returns
// whether one was found; when it was, StartPuzzle("") rebuilds
// the working puzzle it named.
func (session *Session) Lookup() (found bool) {
	body := func() error {
		vals, err := redis.Values(rdc.Do("HGETALL", session.key()))
		if len(vals) > 0 {
			if err := redis.ScanStruct(vals, session); err != nil {
				log.Printf("Redis error on parse of saved session %q: %v", session.SID, err)
				return err
			}
			found = true
			return nil
		}
		if err != nil {
			log.Printf("Redis error on lookup of session %q: %v", session.SID, err)
			return err
		}
		log.Printf("No saved session %q", session.SID)
		return nil
	}
	rdExecute(body)
	return
}

// StartPuzzle: set the puzzle ID for the current session and
// build a fresh working puzzle from its clues.  If the given
// puzzle ID is empty, try using the session's current puzzle ID.
// If the given puzzle ID is the special value "default" (or
// unknown), use the default puzzle ID.
func (session *Session) StartPuzzle(pid string) {
	// change to the given pid, making sure it's valid
	if pid == "" {
		pid = session.PID
	}
	session.PID, session.Summary = SummaryOf(pid)
	session.Puzzle = puzzle.NewFromSummary(session.Summary)

	// update the cache
	session.Saved = time.Now().Format(time.RFC3339)
	body := func() (err error) {
		_, err = rdc.Do("HMSET", redis.Args{}.Add(session.key()).AddFlat(session)...)
		if err != nil {
			log.Printf("Redis error on save of session %q: %v", session.SID, err)
		}
		return
	}
	rdExecute(body)
	log.Printf("Session %v is now solving puzzle %q.", session.SID, session.PID)
}

// RecordSolve: append the outcome of the working puzzle's Solve
// to the session's history, dropping entries beyond the most
// recent historyCap.
func (session *Session) RecordSolve() {
	entry := &HistoryEntry{
		PID:    session.PID,
		Solved: session.Puzzle.Solved(),
		When:   time.Now().Format(time.RFC3339),
	}
	bytes, err := json.Marshal(entry)
	if err != nil {
		log.Printf("Failed to marshal history entry for %s:%q: %v",
			session.SID, session.PID, err)
		panic(err)
	}

	// update the cache
	session.Saved = entry.When
	body := func() (err error) {
		rdc.Send("HMSET", redis.Args{}.Add(session.key()).AddFlat(session)...)
		rdc.Send("RPUSH", session.historyKey(), bytes)
		_, err = rdc.Do("LTRIM", session.historyKey(), -historyCap, -1)
		if err != nil {
			log.Printf("Redis error on history of %s:%q: %v", session.SID, session.PID, err)
		}
		return
	}
	rdExecute(body)
	log.Printf("Recorded solve of %s:%q (solved %v).", session.SID, session.PID, entry.Solved)
}

// History: return the session's solve records, oldest first.  A
// positive max limits the answer to the most recent max entries.
func (session *Session) History(max int) []HistoryEntry {
	start := 0
	if max > 0 {
		start = -max
	}
	var vals []interface{}
	body := func() (err error) {
		vals, err = redis.Values(rdc.Do("LRANGE", session.historyKey(), start, -1))
		if err != nil {
			log.Printf("Redis error on history of session %q: %v", session.SID, err)
		}
		return
	}
	rdExecute(body)

	entries := make([]HistoryEntry, len(vals))
	for i, val := range vals {
		bytes, err := redis.Bytes(val, nil)
		if err == nil {
			err = json.Unmarshal(bytes, &entries[i])
		}
		if err != nil {
			panic(fmt.Errorf("Failed to read history entry %d of session %q: %v",
				i, session.SID, err))
		}
	}
	return entries
}

// A HistoryEntry records the outcome of one Solve.
type HistoryEntry struct {
	PID    string `json:"pid"`
	Solved bool   `json:"solved"`
	When   string `json:"when"`
}

// sessions keep the most recent historyCap solve records
const historyCap = 100

/*

session key generation

*/

// key - returns the session key
func (session *Session) key() string {
	return rdEnv + ":SID:" + session.SID
}

// historyKey - returns the key for the session's solve history
func (session *Session) historyKey() string {
	return session.key() + ":History"
}
