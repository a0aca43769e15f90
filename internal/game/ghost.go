package game

import (
	"github.com/kiaracarvalho006-del/pacserver/internal/board"
	"github.com/kiaracarvalho006-del/pacserver/internal/session"
)

// runGhostActor implements spec.md §4.4.2. Ghosts never terminate the
// level themselves; a DEAD_PACMAN result only sets game_over, observed by
// the publisher, while the command-reader's own outcome — or the driver
// flipping shutdown after it returns — is what ends the level (spec.md §9
// Open Question: ghost cadence continues until shutdown is set).
func runGhostActor(sess *session.Session, ghostIndex int) {
	b := sess.Board
	ghost := b.Ghosts[ghostIndex]

	for {
		sleep(b.Tempo * (1 + ghost.StepOffset))

		if sess.Latch.Shutdown() {
			return
		}

		b.Lock()
		cmd := ghost.NextMove()
		result := board.MoveGhost(b, ghostIndex, cmd)
		b.Unlock()

		if result == board.DeadPacman {
			sess.Latch.SetGameOver()
		}
	}
}
