package game

import (
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/kiaracarvalho006-del/pacserver/internal/board"
	"github.com/kiaracarvalho006-del/pacserver/internal/constants"
	"github.com/kiaracarvalho006-del/pacserver/internal/protocol"
	"github.com/kiaracarvalho006-del/pacserver/internal/session"
)

// runCommandReader implements spec.md §4.4.1. It holds no lock across the
// sleep or the stream read, and takes the board write lock only for the
// duration of one movement call.
func runCommandReader(sess *session.Session) Outcome {
	b := sess.Board
	pacman := b.Pacman

	for {
		sleep(b.Tempo * (1 + pacman.StepOffset))

		op, err := protocol.ReadOpcode(sess.Req)
		if err != nil {
			return disconnect(sess, err)
		}

		switch op {
		case constants.OpDisconnect:
			sess.Latch.SetDisconnected()
			return QuitGame

		case constants.OpPlay:
			cmd, err := protocol.ReadPlayCommand(sess.Req)
			if err != nil {
				return disconnect(sess, err)
			}

			if cmd == 'G' {
				// Reserved, ignored (spec.md §4.4.1, §9 Open Question).
				continue
			}
			if cmd == 'Q' {
				return QuitGame
			}

			b.Lock()
			result := board.MovePacman(b, 0, cmd)
			b.Unlock()

			switch result {
			case board.ReachedPortal:
				return NextLevel
			case board.DeadPacman:
				return QuitGame
			default:
				continue
			}

		default:
			slog.Warn("command-reader: unknown opcode on request stream, skipping", "opcode", op)
			continue
		}
	}
}

func disconnect(sess *session.Session, err error) Outcome {
	if !errors.Is(err, io.EOF) {
		slog.Debug("command-reader: request stream read failed", "error", err)
	}
	sess.Latch.SetDisconnected()
	return QuitGame
}

func sleep(ms int) {
	if ms <= 0 {
		return
	}
	time.Sleep(time.Duration(ms) * time.Millisecond)
}
