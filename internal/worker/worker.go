package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/kiaracarvalho006-del/pacserver/internal/fifo"
	"github.com/kiaracarvalho006-del/pacserver/internal/game"
	"github.com/kiaracarvalho006-del/pacserver/internal/protocol"
	"github.com/kiaracarvalho006-del/pacserver/internal/queue"
	"github.com/kiaracarvalho006-del/pacserver/internal/session"
)

// SessionWorker is one schedulable task bound to one preallocated Session
// slot (spec.md §4.3). It runs until its queue wait is cancelled, serving
// an unbounded sequence of clients one at a time.
type SessionWorker struct {
	Session  *session.Session
	Queue    *queue.ConnectionQueue
	LevelDir string
}

// Run implements the session worker's outer loop of spec.md §4.3 steps
// 1-7.
func (w *SessionWorker) Run(ctx context.Context) error {
	for {
		req, err := w.Queue.Dequeue(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return fmt.Errorf("session worker %d: dequeue: %w", w.Session.ID, err)
		}

		w.serve(req)
	}
}

// serve carries one client through connect, play, and teardown. Every
// fault here is confined to this client: the worker always returns to its
// caller's loop and dequeues the next request (spec.md §7 "Workers never
// terminate on a client fault").
func (w *SessionWorker) serve(req queue.ConnectRequest) {
	clientID := session.ClientIDFromPath(req.ReqPath)
	gameID := uuid.New().String()[:8]
	log := slog.With("worker", w.Session.ID, "client_id", clientID, "game_id", gameID)

	reqStream, reqErr := fifo.OpenDuplex(req.ReqPath)
	notifStream, notifErr := fifo.OpenDuplex(req.NotifPath)

	if reqErr != nil || notifErr != nil {
		log.Warn("failed to open client streams", "req_err", reqErr, "notif_err", notifErr)
		// spec.md §4.3 step 3: ack failure on whichever stream opened.
		if notifErr == nil {
			_ = protocol.WriteConnectAck(notifStream, 1)
			notifStream.Close()
		}
		if reqErr == nil {
			reqStream.Close()
		}
		return
	}

	if err := protocol.WriteConnectAck(notifStream, 0); err != nil {
		log.Warn("failed to send connect ack", "error", err)
		reqStream.Close()
		notifStream.Close()
		return
	}

	w.Session.Latch.Reset(clientID)
	w.Session.SetStreams(reqStream, notifStream)

	if err := game.PlayAllLevels(w.Session, w.LevelDir); err != nil {
		log.Error("game driver aborted session", "error", err)
	}

	w.Session.CloseStreams()
}
