package session

import (
	"io"
	"path/filepath"
	"regexp"
	"strconv"
	"sync"

	"github.com/kiaracarvalho006-del/pacserver/internal/board"
)

// Session is one reusable session worker's game state (spec.md §3): a
// request stream, a notification stream, an owned Board, and a Latch. It
// is created once per worker slot at server start and reused across every
// client that worker ever serves.
//
// Req/Notif are only ever mutated by the owning session worker between
// games, and Board between levels, while no actor holds them; mu exists
// solely so the
// top-scores dumper (running on the acceptor) can read them concurrently
// with that narrow mutation window without a data race.
type Session struct {
	ID int // worker slot index, stable for the process lifetime

	mu    sync.Mutex
	Req   io.ReadCloser
	Notif io.WriteCloser
	Board *board.Board

	Latch Latch
}

// SetStreams installs the freshly opened request/notification streams.
func (s *Session) SetStreams(req io.ReadCloser, notif io.WriteCloser) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Req, s.Notif = req, notif
}

// SetBoard installs the board for the level currently being played.
func (s *Session) SetBoard(b *board.Board) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Board = b
}

// CurrentBoard returns the board currently installed, if any.
func (s *Session) CurrentBoard() *board.Board {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Board
}

// Bound reports whether the session currently owns open streams and is not
// marked disconnected — the definition the top-scores dumper uses to
// decide whether a session is "currently bound" (spec.md §4.5).
func (s *Session) Bound() bool {
	s.mu.Lock()
	bound := s.Req != nil && s.Notif != nil
	s.mu.Unlock()
	return bound && !s.Latch.Disconnected()
}

// CloseStreams closes both streams (best-effort) and clears the handles,
// per spec.md §4.3 step 7: "reset latch stream handles" before the worker
// loops back to accept.
func (s *Session) CloseStreams() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Req != nil {
		s.Req.Close()
		s.Req = nil
	}
	if s.Notif != nil {
		s.Notif.Close()
		s.Notif = nil
	}
}

var clientIDPattern = regexp.MustCompile(`[0-9]+`)

// ClientIDFromPath scans the request-stream path's basename for the first
// decimal integer, falling back to -1 if absent (spec.md §4.3 step 2).
func ClientIDFromPath(path string) int {
	base := filepath.Base(path)
	match := clientIDPattern.FindString(base)
	if match == "" {
		return -1
	}
	id, err := strconv.Atoi(match)
	if err != nil {
		return -1
	}
	return id
}
