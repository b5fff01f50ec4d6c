package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ancientHacker/dancer.go/puzzle"
	"github.com/ancientHacker/dancer.go/storage"
)

const cookieName = "dancerID"
const cookiePath = "/"

type dancerSession struct {
	sessionID string
	puzzleID  string
	summary   *puzzle.Summary
	puzzle    *puzzle.Puzzle
}

var (
	startTime    = time.Now()
	sessions     = make(map[string]*dancerSession)
	sessionMutex sync.RWMutex
	cacheActive  = false // whether the solution cache connected
)

// getCookie gets the session cookie, or sets a new one.  It
// returns the session ID associated with the cookie.
//
// Session IDs only need to tell browsers apart, so each browser
// gets an ID based on the time of its first request; one server
// instance hands them out, so they don't collide.  Heroku-served
// instances get both HTTP and HTTPS traffic with the same
// endpoint, and browsers will offer a cookie they got over HTTP
// to the HTTPS endpoint, mixing two browser-side sessions into
// one.  So the ID carries the originating protocol, and a cookie
// from the wrong protocol starts a fresh session.
func getCookie(w http.ResponseWriter, r *http.Request) string {
	proto := "httpx" // absent other indicators, protocol is unknown

	// Heroku-transported protocols are specified in a header
	if herokuProtocol := r.Header.Get("X-Forwarded-Proto"); herokuProtocol != "" {
		proto = herokuProtocol
	}

	// check for an existing cookie whose value matches the protocol
	if sc, e := r.Cookie(cookieName); e == nil {
		if m, e := regexp.MatchString(proto+"-[0-9a-z]{3,}", sc.Value); e == nil && m {
			return sc.Value
		}
	}

	// no session cookie or not a valid session cookie,
	// start a new session with a new cookie
	sid := proto + "-" + strconv.FormatInt(int64(time.Now().Sub(startTime)), 36)
	sc := &http.Cookie{Name: cookieName, Value: sid, Path: cookiePath}
	http.SetCookie(w, sc)
	return sid
}

// since session selection can happen concurrently from
// simultaneous goroutines, it has to be interlocked
func sessionSelect(w http.ResponseWriter, r *http.Request) *dancerSession {
	sessionID := getCookie(w, r)
	// look up the session for the cookie
	sessionMutex.RLock()
	session, ok := sessions[sessionID]
	sessionMutex.RUnlock()
	if ok && session != nil && session.puzzle != nil {
		return session
	}
	// initialize and save the new session
	session = &dancerSession{sessionID: sessionID}
	session.reset("")
	sessionMutex.Lock()
	sessions[sessionID] = session
	sessionMutex.Unlock()
	return session
}

func (session *dancerSession) reset(puzzleID string) {
	session.puzzleID, session.summary = storage.SummaryOf(puzzleID)
	session.puzzle = puzzle.NewFromSummary(session.summary)
	log.Printf("Session %v is now solving puzzle %q.", session.sessionID, session.puzzleID)
}

func (session *dancerSession) gridHandler(w http.ResponseWriter, r *http.Request) {
	body := fmt.Sprintf("Puzzle %q:\n%s", session.puzzleID, session.puzzle)
	hs := w.Header()
	hs.Add("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(body))
}

func puzzlesHandler(w http.ResponseWriter, r *http.Request) {
	bytes, err := json.Marshal(storage.Collection())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	hs := w.Header()
	hs.Add("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(bytes)
}

func (session *dancerSession) stateHandler(w http.ResponseWriter, r *http.Request) {
	if err := session.puzzle.StateHandler(w, r); err != nil {
		log.Printf("State of session %v failed: %v", session.sessionID, err)
	}
}

func (session *dancerSession) solveHandler(w http.ResponseWriter, r *http.Request) {
	// an unsolved puzzle may have a shared solution already in
	// the cache
	hash := ""
	if cacheActive && session.puzzle.Valid() && !session.puzzle.Solved() {
		if h, err := session.summary.Hash(); err == nil {
			hash = h
			if cached, ok := storage.LoadSolution(hash); ok {
				if sp := puzzle.NewFromSummary(cached); sp.Solve() {
					log.Printf("Solve of %q in session %v was a cache hit.",
						session.puzzleID, session.sessionID)
					session.puzzle = sp
					session.stateHandler(w, r)
					return
				}
			}
		}
	}
	if err := session.puzzle.SolveHandler(w, r); err != nil {
		log.Printf("Solve of %q in session %v failed: %v",
			session.puzzleID, session.sessionID, err)
		return
	}
	if hash != "" && session.puzzle.Solved() {
		if sum, err := session.puzzle.Summary(); err == nil {
			storage.SaveSolution(hash, sum)
		}
	}
}

func rootHandler(w http.ResponseWriter, r *http.Request) {
	// cache errors arrive as panics; turn them into server errors
	// instead of crashes
	defer func() {
		if e := recover(); e != nil {
			log.Printf("Recovered from handler failure: %v", e)
			http.Error(w, fmt.Sprintf("Server error: %v", e), http.StatusInternalServerError)
		}
	}()

	log.Printf("Handling %s %s...", r.Method, r.URL.Path)
	session := sessionSelect(w, r)
	switch {
	case r.URL.Path == "/":
		session.gridHandler(w, r)
	case r.URL.Path == "/api/puzzles":
		puzzlesHandler(w, r)
	case strings.HasPrefix(r.URL.Path, "/api/select/"):
		session.reset(r.URL.Path[len("/api/select/"):])
		session.stateHandler(w, r)
	case r.URL.Path == "/api/state":
		session.stateHandler(w, r)
	case r.URL.Path == "/api/solve":
		session.solveHandler(w, r)
	case strings.HasPrefix(r.URL.Path, "/reset"):
		session.reset(session.puzzleID)
		session.stateHandler(w, r)
	default:
		http.NotFound(w, r)
	}
}

func main() {
	// load any collection file given on the command line
	if len(os.Args) > 1 {
		names, err := storage.LoadCollection(os.Args[1])
		if err != nil {
			log.Fatalf("Couldn't load puzzle collection: %v", err)
		}
		log.Printf("Loaded %d puzzles from %q.", len(names), os.Args[1])
	}

	// the solution cache is shared across instances but optional;
	// serve without one if there's no cache to talk to
	if _, err := storage.Connect(); err == nil {
		cacheActive = true
		defer storage.Close()
	} else {
		log.Printf("Solving without a cache: %v", err)
	}

	http.HandleFunc("/", rootHandler)

	// Heroku environment port sensing
	port := os.Getenv("PORT")
	if port == "" {
		// running locally in dev mode
		port = "localhost:8080"
	} else {
		// running as a true server
		port = ":" + port
	}

	log.Printf("Listening on %s...", port)
	err := http.ListenAndServe(port, nil)
	if err != nil {
		log.Fatal("Listener failure: ", err)
	}
}
