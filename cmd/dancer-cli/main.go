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

// Interactive console for the dancer solver
package main

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/ancientHacker/dancer.go/puzzle"
	"github.com/ancientHacker/dancer.go/storage"
)

func main() {
	// load any collection file given on the command line
	if len(os.Args) > 1 {
		names, err := storage.LoadCollection(os.Args[1])
		if err != nil {
			log.Printf("Couldn't load puzzle collection: %v", err)
			shutdown(startupFailureShutdown)
		}
		log.Printf("Loaded %d puzzles from %q.", len(names), os.Args[1])
	}

	// establish the cache connection
	if _, err := storage.Connect(); err != nil {
		shutdown(storageFailureShutdown)
	}
	defer storage.Close()

	// catch signals
	shutdownOnSignal()

	// resume the console session if the cache remembers one
	session = &storage.Session{SID: consoleSID(), Created: time.Now().Format(time.RFC3339)}
	if session.Lookup() {
		log.Printf("Found session %v, puzzle %q.", session.SID, session.PID)
	}
	session.StartPuzzle("")

	// serve
	if terminal(os.Stdout) {
		fmt.Println("dancer console - 'help' lists commands, 'quit' leaves.")
	}
	if err := listener(os.Stdout, os.Stdin); err != nil {
		log.Printf("Console failure: %v", err)
		shutdown(listenerFailureShutdown)
	}
}

/*

CLI listener

*/

type request struct {
	inline  string
	command string
	args    []string
}

// terminal reports whether the stream is an interactive terminal,
// which turns on prompting.
// (see http://stackoverflow.com/questions/22744443/ for source)
func terminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	stat, err := f.Stat()
	return err == nil && (stat.Mode()&os.ModeCharDevice) != 0
}

// listener reads lines and dispatches them to handlers
func listener(out io.Writer, in io.Reader) error {
	prompt := terminal(out)

	scanner := bufio.NewScanner(in)
	for {
		if prompt {
			fmt.Fprintf(out, "dancer> ")
		}
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				if prompt {
					fmt.Fprintf(out, " (read error)\n")
				}
				return err
			}
			// ignore any input before the EOF
			if prompt {
				fmt.Fprintf(out, " (EOF)\n")
			}
			return nil
		}
		r := &request{inline: strings.Trim(scanner.Text(), " \t\r\n")}
		args := strings.Split(r.inline, " ")
		r.command = strings.ToLower(args[0])
		switch r.command {
		case "":
			continue
		case "quit":
			fallthrough
		case "exit":
			return nil
		}
		for _, arg := range args[1:] {
			if len(arg) > 0 {
				r.args = append(r.args, strings.ToLower(arg))
			}
		}
		// a bare puzzle number selects that puzzle
		if _, err := strconv.Atoi(r.command); err == nil {
			r.args = append([]string{r.command}, r.args...)
			r.command = "select"
		}
		dispatchCommand(out, r)
	}
}

// command dispatching
type commandInfo struct {
	command     string
	argInfo     string
	description string
	handler     func(*storage.Session, io.Writer, *request)
}

// the command dispatch info is sorted for easy usage printing,
// and then hashed for rapid dispatching
var (
	dispatchInfo  []commandInfo
	dispatchTable map[string]*commandInfo
)

func init() {
	dispatchInfo = []commandInfo{
		{"help", "", "show this usage summary", helpHandler},
		{"history", "[count]", "show recent solve results", historyHandler},
		{"list", "", "list the known puzzles", listHandler},
		{"reset", "[name]", "restart this or another puzzle", resetHandler},
		{"select", "name|number", "switch to another puzzle", selectHandler},
		{"show", "", "show the current puzzle", showHandler},
		{"solve", "", "solve the current puzzle", solveHandler},
	}
	dispatchTable = make(map[string]*commandInfo, len(dispatchInfo))
	for i := range dispatchInfo {
		dispatchTable[dispatchInfo[i].command] = &dispatchInfo[i]
	}
}

func dispatchCommand(w io.Writer, r *request) {
	defer func() {
		if err := recover(); err != nil {
			errorHandler(err, w, r)
		}
	}()

	ci := dispatchTable[r.command]
	if ci == nil {
		usageHandler(fmt.Sprintf("%q is not a known command", r.command), w, r)
	} else {
		ci.handler(session, w, r)
	}
}

/*

request handlers

*/

// the console drives a single session, created in main
var session *storage.Session

func listHandler(session *storage.Session, w io.Writer, r *request) {
	for i, name := range storage.Collection() {
		marker := " "
		if name == session.PID {
			marker = "*"
		}
		fmt.Fprintf(w, "%s%3d  %s\n", marker, i+1, name)
	}
}

func selectHandler(session *storage.Session, w io.Writer, r *request) {
	if len(r.args) != 1 {
		usageHandler(fmt.Sprintf("%s requires a puzzle name or number", r.command), w, r)
		return
	}
	pid := r.args[0]
	if n, err := strconv.Atoi(pid); err == nil {
		names := storage.Collection()
		if n < 1 || n > len(names) {
			usageHandler(fmt.Sprintf("puzzle number (%d) is out of range", n), w, r)
			return
		}
		pid = names[n-1]
	} else if pid != "default" {
		known := false
		for _, name := range storage.Collection() {
			if name == pid {
				known = true
				break
			}
		}
		if !known {
			usageHandler(fmt.Sprintf("%q is not a known puzzle", pid), w, r)
			return
		}
	}
	session.StartPuzzle(pid)
	showHandler(session, w, r)
}

func showHandler(session *storage.Session, w io.Writer, r *request) {
	fmt.Fprintf(w, "Puzzle %q:\n%s", session.PID, session.Puzzle)
	if !session.Puzzle.Valid() {
		fmt.Fprintf(w, "The clues conflict: this puzzle has no solutions.\n")
	}
}

func solveHandler(session *storage.Session, w io.Writer, r *request) {
	if !session.Puzzle.Valid() {
		fmt.Fprintf(w, "Puzzle %q has conflicting clues; nothing to solve.\n", session.PID)
		return
	}
	if session.Puzzle.Solved() {
		fmt.Fprintf(w, "Puzzle %q is already solved:\n%s", session.PID, session.Puzzle.ValuesString(false))
		return
	}

	hash, err := session.Summary.Hash()
	if err != nil {
		panic(err)
	}
	if cached, ok := storage.LoadSolution(hash); ok {
		if sp := puzzle.NewFromSummary(cached); sp.Solve() {
			session.Puzzle = sp
			session.RecordSolve()
			fmt.Fprintf(w, "Puzzle %q solved (cached):\n%s", session.PID, sp.ValuesString(false))
			return
		}
		log.Printf("Ignoring bad cached solution for %q.", session.PID)
	}

	if session.Puzzle.Solve() {
		sum, err := session.Puzzle.Summary()
		if err != nil {
			panic(err)
		}
		storage.SaveSolution(hash, sum)
		session.RecordSolve()
		fmt.Fprintf(w, "Puzzle %q solved:\n%s", session.PID, session.Puzzle.ValuesString(false))
	} else {
		session.RecordSolve()
		fmt.Fprintf(w, "Puzzle %q has no solution.\n", session.PID)
	}
}

func historyHandler(session *storage.Session, w io.Writer, r *request) {
	max := 10
	if len(r.args) > 0 {
		n, err := strconv.Atoi(r.args[0])
		if err != nil || n < 1 {
			usageHandler(fmt.Sprintf("%s count (%s) must be a positive number", r.command, r.args[0]), w, r)
			return
		}
		max = n
	}
	entries := session.History(max)
	if len(entries) == 0 {
		fmt.Fprintf(w, "No solves recorded.\n")
		return
	}
	for _, entry := range entries {
		verdict := "solved"
		if !entry.Solved {
			verdict = "unsolvable"
		}
		fmt.Fprintf(w, "%s  %-12s %s\n", entry.When, entry.PID, verdict)
	}
}

func resetHandler(session *storage.Session, w io.Writer, r *request) {
	pid := ""
	if len(r.args) > 0 {
		pid = r.args[0]
	}
	session.StartPuzzle(pid)
	showHandler(session, w, r)
}

func helpHandler(session *storage.Session, w io.Writer, r *request) {
	fmt.Fprintf(w, "Usage:\n")
	printUsage(w)
}

func usageHandler(msg string, w io.Writer, r *request) {
	fmt.Fprintf(w, "Error: %s\nUsage:\n", msg)
	printUsage(w)
}

func printUsage(w io.Writer) {
	for _, ci := range dispatchInfo {
		fmt.Fprintf(w, "    %8s %-11s\t%s\n", ci.command, ci.argInfo, ci.description)
	}
	fmt.Fprintf(w, "  and 'quit' or EOF to exit.\n")
}

func errorHandler(err interface{}, w io.Writer, r *request) {
	fmt.Fprintf(w, "Error executing %q: %v\n", r.inline, err)
	log.Printf("Failure executing %q: %v", r.inline, err)
}

/*

console session

*/

// consoleSID: the session ID for this console.  One per host, so
// a restarted console resumes where it left off; set
// DANCER_SESSION to keep separate sessions on one host.
func consoleSID() string {
	if sid := os.Getenv("DANCER_SESSION"); sid != "" {
		return sid
	}
	host, err := os.Hostname()
	if err != nil {
		host = "local"
	}
	return "console:" + host
}

/*

coordinate shutdown across goroutines and top-level listener

*/

type shutdownCause int

const (
	unknownShutdown shutdownCause = iota + 1
	startupFailureShutdown
	storageFailureShutdown
	caughtSignalShutdown
	listenerFailureShutdown
)

// for testing, allow alternate forms of shutdown
var alternateShutdown func(reason shutdownCause)

// shutdown: process exit with logging.
func shutdown(reason shutdownCause) {
	storage.Close()

	// for testing: run alternateShutdown instead, if defined
	if alternateShutdown != nil {
		alternateShutdown(reason)
		panic(reason) // shouldn't get here
	}

	// log reason for shutdown and exit
	switch reason {
	case startupFailureShutdown:
		log.Print("Exiting: initialization failure.")
	case storageFailureShutdown:
		log.Print("Exiting: cache failure.")
	case caughtSignalShutdown:
		log.Print("Exiting: caught signal.")
	case listenerFailureShutdown:
		log.Print("Exiting: console failure.")
	default:
		log.Print("Exiting: unknown cause.")
	}
	os.Exit(int(reason))
}

// shutdownOnSignal: catch interrupts and exit.
func shutdownOnSignal() {
	// based on example in os.signal godoc
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		s := <-c
		log.Printf("Received OS-level signal: %v", s)
		shutdown(caughtSignalShutdown)
	}()
}
