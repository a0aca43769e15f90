package worker

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kiaracarvalho006-del/pacserver/internal/constants"
	"github.com/kiaracarvalho006-del/pacserver/internal/fifo"
	"github.com/kiaracarvalho006-del/pacserver/internal/protocol"
	"github.com/kiaracarvalho006-del/pacserver/internal/queue"
	"github.com/kiaracarvalho006-del/pacserver/internal/session"
)

// TestSessionWorkerServesOneClientEndToEnd drives a SessionWorker against
// real named pipes, the same transport the wire protocol is specified
// over (spec.md §6), rather than in-memory io.Pipe substitutes.
func TestSessionWorkerServesOneClientEndToEnd(t *testing.T) {
	levelDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(levelDir, "a.lvl"), []byte("tempo=5\ngrid:\nP@\n"), 0o644))

	pipeDir := t.TempDir()
	reqPath := filepath.Join(pipeDir, "7_request")
	notifPath := filepath.Join(pipeDir, "7_notification")
	require.NoError(t, fifo.Create(reqPath, 0o600))
	require.NoError(t, fifo.Create(notifPath, 0o600))

	sess := &session.Session{ID: 1}
	q := queue.New(1)
	w := &SessionWorker{Session: sess, Queue: q, LevelDir: levelDir}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	require.NoError(t, q.Enqueue(ctx, queue.ConnectRequest{
		ReqPath:   reqPath,
		NotifPath: notifPath,
	}))

	go func() { _ = w.Run(ctx) }()

	clientReq, err := fifo.OpenDuplex(reqPath)
	require.NoError(t, err)
	defer clientReq.Close()
	clientNotif, err := fifo.OpenDuplex(notifPath)
	require.NoError(t, err)
	defer clientNotif.Close()

	op, err := protocol.ReadOpcode(clientNotif)
	require.NoError(t, err)
	require.Equal(t, constants.OpConnect, op)
	status, err := protocol.ReadConnectAck(clientNotif)
	require.NoError(t, err)
	require.Zero(t, status)

	// First BOARD snapshot arrives before any command (spec.md §4.4.3).
	op, err = protocol.ReadOpcode(clientNotif)
	require.NoError(t, err)
	require.Equal(t, constants.OpBoard, op)
	_, err = protocol.ReadBoard(clientNotif)
	require.NoError(t, err)

	// Moving east reaches the portal on this 2x1 board, finishing the only
	// level with a victory.
	require.NoError(t, protocol.WritePlay(clientReq, 'E'))

	var last protocol.BoardFrame
	for {
		op, err := protocol.ReadOpcode(clientNotif)
		if err != nil {
			require.ErrorIs(t, err, io.EOF)
			break
		}
		require.Equal(t, constants.OpBoard, op)
		f, err := protocol.ReadBoard(clientNotif)
		require.NoError(t, err)
		last = f
		if f.Victory == 1 {
			break
		}
	}
	require.Equal(t, int32(1), last.Victory)
}
