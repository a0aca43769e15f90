// Package session implements the per-session state of spec.md §3: the
// reusable Session object and its mutex-guarded status Latch.
package session

import "sync"

// Latch is the small mutex-guarded record of boolean control flags a
// session carries through one game run (spec.md §3 invariants): all reads
// and writes of disconnected/victory/game_over/shutdown/last_cmd/has_cmd/
// client_id go through the same mutex.
type Latch struct {
	mu sync.Mutex

	disconnected bool
	victory      bool
	gameOver     bool
	shutdown     bool

	lastCmd byte
	hasCmd  bool

	clientID int
}

// Reset zeroes every flag and clears the pending command. Called at the
// start of each accept (spec.md §4.3 step 5) and never leaves a flag set
// across a game boundary.
func (l *Latch) Reset(clientID int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.disconnected = false
	l.victory = false
	l.gameOver = false
	l.shutdown = false
	l.lastCmd = 0
	l.hasCmd = false
	l.clientID = clientID
}

// ResetLevel clears victory/game_over/shutdown between levels of the same
// game (spec.md §4.4.a), leaving disconnected and client_id untouched.
func (l *Latch) ResetLevel() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.victory = false
	l.gameOver = false
	l.shutdown = false
}

func (l *Latch) SetDisconnected() {
	l.mu.Lock()
	l.disconnected = true
	l.mu.Unlock()
}

func (l *Latch) Disconnected() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.disconnected
}

func (l *Latch) SetVictory() {
	l.mu.Lock()
	l.victory = true
	l.mu.Unlock()
}

func (l *Latch) Victory() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.victory
}

func (l *Latch) SetGameOver() {
	l.mu.Lock()
	l.gameOver = true
	l.mu.Unlock()
}

func (l *Latch) GameOver() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.gameOver
}

func (l *Latch) SetShutdown() {
	l.mu.Lock()
	l.shutdown = true
	l.mu.Unlock()
}

func (l *Latch) Shutdown() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.shutdown
}

// lastCmd/hasCmd are part of the latch's guarded field set per spec.md's
// invariants list. This design's command-reader (spec.md §4.4.1) applies
// each PLAY command synchronously as it arrives rather than staging it
// here for a separate actor to consume, so the fields are carried for
// data-model fidelity but have no mutator beyond Reset.

func (l *Latch) ClientID() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.clientID
}

// StatusSnapshot holds victory/game_over as Status captures them in one
// lock acquisition, for the publisher (spec.md §4.4.3 step e).
type StatusSnapshot struct {
	Victory  bool
	GameOver bool
}

func (l *Latch) Status() StatusSnapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return StatusSnapshot{Victory: l.victory, GameOver: l.gameOver}
}
