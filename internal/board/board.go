// Package board implements the board & movement façade of spec.md §3/§6:
// the data model (Position, Pacman, Ghost, Board) and the movement rules
// (collision, portal, dot collection, kill) that spec.md treats as an
// external collaborator. The level file format and the exact movement
// algorithm are this module's own design — spec.md deliberately leaves
// them unspecified beyond the {REACHED_PORTAL, VALID_MOVE, INVALID_MOVE,
// DEAD_PACMAN} outcome contract, which is honored exactly.
package board

import (
	"fmt"
	"sync"

	"github.com/kiaracarvalho006-del/pacserver/internal/constants"
)

// Content tags a cell's occupant.
type Content int

const (
	ContentEmpty Content = iota
	ContentWall
	ContentPacman
	ContentGhost
)

// Position is one cell of the board.
type Position struct {
	X, Y      int
	Content   Content
	HasDot    bool
	HasPortal bool

	// mu is reserved for fine-grained cell-level locking. The reference
	// design protects all mutable board state with Board.mu instead; this
	// field is left unused deliberately (spec.md §3, §9).
	mu sync.Mutex
}

// Move is one scripted step: a direction command plus a repeat count. The
// reference design always uses single-step commands (turns=1), but the
// field is carried because the source level format allows runs.
type Move struct {
	Command byte
	Turns   int
}

// Pacman is the single player-controlled actor (spec.md: "exactly one
// pacman in the core design").
type Pacman struct {
	X, Y       int
	Alive      bool
	Points     int
	StepOffset int
	Moves      []Move
	CurrentMove int
	Waiting    int
}

// Ghost is one autonomous actor with a scripted, cyclic move list.
type Ghost struct {
	X, Y        int
	StepOffset  int
	Moves       []Move
	CurrentMove int
	Charged     bool // reserved for gameplay extension; never dispatched on
	Waiting     int
}

// Board is the full per-level game state, protected by a single
// reader/writer lock per spec.md §3's invariant: write-lock for any
// content/has_dot mutation, read-lock suffices to copy cells for a
// snapshot.
type Board struct {
	Width, Height int
	Cells         []Position // row-major, len == Width*Height
	Pacman        *Pacman
	Ghosts        []*Ghost
	LevelName     string
	Dir           string
	Tempo         int // ms

	mu sync.RWMutex
}

// MoveResult is the outcome of one movement call, matching the reference
// enum values bit-for-bit (REACHED_PORTAL=1, VALID_MOVE=0,
// INVALID_MOVE=-1, DEAD_PACMAN=-2).
type MoveResult int

const (
	ReachedPortal MoveResult = 1
	ValidMove     MoveResult = 0
	InvalidMove   MoveResult = -1
	DeadPacman    MoveResult = -2
)

// PointsPerDot is the score awarded for collecting one dot. Not specified
// by spec.md; chosen as a fixed constant (see DESIGN.md).
const PointsPerDot = 10

func (b *Board) index(x, y int) int { return y*b.Width + x }

func (b *Board) inBounds(x, y int) bool {
	return x >= 0 && x < b.Width && y >= 0 && y < b.Height
}

var directions = map[byte][2]int{
	'N': {0, -1},
	'S': {0, 1},
	'E': {1, 0},
	'W': {-1, 0},
}

// Lock/Unlock/RLock/RUnlock expose the board's single reader/writer lock to
// callers (command-reader, ghost actors, publisher) per spec.md's discipline
// that no module other than Board itself owns the mutex's internals.
func (b *Board) Lock()    { b.mu.Lock() }
func (b *Board) Unlock()  { b.mu.Unlock() }
func (b *Board) RLock()   { b.mu.RLock() }
func (b *Board) RUnlock() { b.mu.RUnlock() }

// MovePacman applies one command to the single pacman. Caller must hold the
// board write lock for the duration of the call (spec.md §4.4.1).
func MovePacman(b *Board, pacmanIndex int, cmd byte) MoveResult {
	if pacmanIndex != 0 || b.Pacman == nil || !b.Pacman.Alive {
		return InvalidMove
	}
	delta, ok := directions[cmd]
	if !ok {
		return InvalidMove
	}

	p := b.Pacman
	nx, ny := p.X+delta[0], p.Y+delta[1]
	if !b.inBounds(nx, ny) {
		return InvalidMove
	}

	target := &b.Cells[b.index(nx, ny)]
	if target.Content == ContentWall {
		return InvalidMove
	}
	if target.Content == ContentGhost {
		killPacman(b)
		return DeadPacman
	}

	current := &b.Cells[b.index(p.X, p.Y)]
	current.Content = ContentEmpty
	p.X, p.Y = nx, ny

	if target.HasDot {
		target.HasDot = false
		p.Points += PointsPerDot
	}

	reachedPortal := target.HasPortal
	target.Content = ContentPacman

	if reachedPortal {
		return ReachedPortal
	}
	return ValidMove
}

// killPacman marks the pacman dead and clears its occupied cell. Caller
// must hold the board write lock.
func killPacman(b *Board) {
	p := b.Pacman
	if p == nil {
		return
	}
	p.Alive = false
	b.Cells[b.index(p.X, p.Y)].Content = ContentEmpty
}

// MoveGhost applies one scripted step to the ghost at ghostIndex. Returns
// DeadPacman if the move collides with the live pacman. A wall,
// out-of-bounds or unknown-direction step returns InvalidMove and leaves
// the ghost in place for the next cycle. Caller must hold the
// board write lock (spec.md §4.4.2).
func MoveGhost(b *Board, ghostIndex int, cmd byte) MoveResult {
	if ghostIndex < 0 || ghostIndex >= len(b.Ghosts) {
		return InvalidMove
	}
	g := b.Ghosts[ghostIndex]
	delta, ok := directions[cmd]
	if !ok {
		return InvalidMove
	}

	nx, ny := g.X+delta[0], g.Y+delta[1]
	if !b.inBounds(nx, ny) {
		return InvalidMove
	}

	target := &b.Cells[b.index(nx, ny)]
	if target.Content == ContentWall {
		return InvalidMove
	}
	if target.Content == ContentPacman && b.Pacman != nil && b.Pacman.Alive {
		killPacman(b)
		current := &b.Cells[b.index(g.X, g.Y)]
		current.Content = ContentEmpty
		g.X, g.Y = nx, ny
		target.Content = ContentGhost
		return DeadPacman
	}

	current := &b.Cells[b.index(g.X, g.Y)]
	current.Content = ContentEmpty
	g.X, g.Y = nx, ny
	target.Content = ContentGhost
	return ValidMove
}

// SnapshotCells copies the content byte of every cell using the §4.4.3
// translation table. Caller must hold at least the board read lock.
func SnapshotCells(b *Board) []byte {
	out := make([]byte, len(b.Cells))
	for i, c := range b.Cells {
		out[i] = cellByte(c)
	}
	return out
}

func cellByte(c Position) byte {
	switch c.Content {
	case ContentWall:
		return constants.CellWall
	case ContentPacman:
		return constants.CellPacman
	case ContentGhost:
		return constants.CellGhost
	default:
		switch {
		case c.HasPortal:
			return constants.CellPortal
		case c.HasDot:
			return constants.CellDot
		default:
			return constants.CellEmpty
		}
	}
}

// NextMove returns the ghost's current scripted move, cycling modulo the
// move-list length, and advances the cursor.
func (g *Ghost) NextMove() byte {
	if len(g.Moves) == 0 {
		return 0
	}
	m := g.Moves[g.CurrentMove%len(g.Moves)]
	g.CurrentMove++
	return m.Command
}

// Validate reports a descriptive error if the board's invariants (array
// lengths, exactly one pacman, ghost count bound) are violated — used by
// the level loader after parsing.
func (b *Board) Validate() error {
	if b.Width <= 0 || b.Height <= 0 {
		return fmt.Errorf("invalid board dimensions %dx%d", b.Width, b.Height)
	}
	if len(b.Cells) != b.Width*b.Height {
		return fmt.Errorf("cell count %d does not match %dx%d", len(b.Cells), b.Width, b.Height)
	}
	if b.Pacman == nil {
		return fmt.Errorf("level has no pacman start position")
	}
	if len(b.Ghosts) > constants.MaxGhosts {
		return fmt.Errorf("level has %d ghosts, exceeds MaxGhosts=%d", len(b.Ghosts), constants.MaxGhosts)
	}
	return nil
}
