// Package worker implements the acceptor and session-worker actors of
// spec.md §4.2/§4.3: the single task reading CONNECT frames off the
// rendezvous stream and the fixed pool of reusable session workers it
// feeds through the bounded connection queue.
package worker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/kiaracarvalho006-del/pacserver/internal/constants"
	"github.com/kiaracarvalho006-del/pacserver/internal/protocol"
	"github.com/kiaracarvalho006-del/pacserver/internal/queue"
	"github.com/kiaracarvalho006-del/pacserver/internal/scores"
	"github.com/kiaracarvalho006-del/pacserver/internal/session"
)

// Acceptor owns the rendezvous stream exclusively (spec.md §5 "Shared
// resources"). Run returns on EOF of that stream, on cancellation of its
// context (checked between frames), or on a read or enqueue error. The
// server holds a dummy writer open, so EOF occurs only once that writer is
// closed at shutdown.
type Acceptor struct {
	Rendezvous io.Reader
	Queue      *queue.ConnectionQueue
	Sessions   []*session.Session

	// DumpSignal carries one value per delivered top-scores signal. The
	// acceptor drains it non-blockingly between frames, never mid-frame
	// (spec.md §4.2, §4.5).
	DumpSignal <-chan struct{}
	DumpPath   string
	TopN       int
}

// Run reads CONNECT frames until the rendezvous stream reaches EOF or ctx
// is cancelled, enqueuing one ConnectRequest per frame.
func (a *Acceptor) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		a.serviceDumpSignal()

		op, err := protocol.ReadOpcode(a.Rendezvous)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("acceptor: reading opcode: %w", err)
		}
		if op != constants.OpConnect {
			slog.Warn("acceptor: unknown opcode on rendezvous stream, skipping", "opcode", op)
			continue
		}

		frame, err := protocol.ReadConnect(a.Rendezvous)
		if err != nil {
			return fmt.Errorf("acceptor: reading connect frame: %w", err)
		}

		req := queue.ConnectRequest{ReqPath: frame.ReqPath, NotifPath: frame.NotifPath}
		if err := a.Queue.Enqueue(ctx, req); err != nil {
			return fmt.Errorf("acceptor: enqueueing connect request: %w", err)
		}
	}
}

// serviceDumpSignal drains at most one pending signal and, if one was
// pending, runs the top-scores dump. A non-blocking receive keeps the
// acceptor from stalling the rendezvous stream when no operator has asked
// for a dump.
func (a *Acceptor) serviceDumpSignal() {
	select {
	case <-a.DumpSignal:
		scores.Dump(a.Sessions, a.DumpPath, a.TopN)
	default:
	}
}
