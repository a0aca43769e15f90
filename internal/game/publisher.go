package game

import (
	"github.com/kiaracarvalho006-del/pacserver/internal/board"
	"github.com/kiaracarvalho006-del/pacserver/internal/protocol"
	"github.com/kiaracarvalho006-del/pacserver/internal/session"
)

// runPublisher implements spec.md §4.4.3: emit one snapshot immediately,
// then loop on the tempo cadence until shutdown, emitting one final
// best-effort snapshot on the way out.
func runPublisher(sess *session.Session) {
	if err := publishSnapshot(sess); err != nil {
		sess.Latch.SetDisconnected()
		sess.Latch.SetShutdown()
		return
	}

	for {
		sleep(sess.Board.Tempo)
		if sess.Latch.Shutdown() {
			break
		}
		if err := publishSnapshot(sess); err != nil {
			sess.Latch.SetDisconnected()
			sess.Latch.SetShutdown()
			break
		}
	}

	_ = publishSnapshot(sess) // final snapshot, best-effort
}

// publishSnapshot builds and writes one BOARD frame. No lock is held
// across the I/O: the board read lock is released before the write, and
// the latch mutex is never held together with the board lock here.
func publishSnapshot(sess *session.Session) error {
	b := sess.Board

	b.RLock()
	cells := board.SnapshotCells(b)
	width, height, tempo := b.Width, b.Height, b.Tempo
	points := 0
	if b.Pacman != nil {
		points = b.Pacman.Points
	}
	b.RUnlock()

	status := sess.Latch.Status()

	return protocol.WriteBoard(sess.Notif, protocol.BoardFrame{
		Width:    int32(width),
		Height:   int32(height),
		Tempo:    int32(tempo),
		Victory:  boolToInt32(status.Victory),
		GameOver: boolToInt32(status.GameOver),
		Points:   int32(points),
		Cells:    cells,
	})
}

func boolToInt32(b bool) int32 {
	if b {
		return 1
	}
	return 0
}
