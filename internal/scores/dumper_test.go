package scores

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kiaracarvalho006-del/pacserver/internal/board"
	"github.com/kiaracarvalho006-del/pacserver/internal/session"
)

func boundSession(t *testing.T, clientID, points int) *session.Session {
	t.Helper()
	reqR, reqW := io.Pipe()
	notifR, notifW := io.Pipe()
	t.Cleanup(func() {
		reqR.Close()
		reqW.Close()
		notifR.Close()
		notifW.Close()
	})

	s := &session.Session{ID: clientID}
	s.Latch.Reset(clientID)
	s.SetStreams(reqR, notifW)
	s.SetBoard(&board.Board{Pacman: &board.Pacman{Points: points}})
	return s
}

func TestDumpRanksDescendingByPointsTiesByClientID(t *testing.T) {
	// spec.md §8 scenario 4: clients 3 and 9 both score 10, client 3 first.
	sessions := []*session.Session{
		boundSession(t, 9, 10),
		boundSession(t, 3, 10),
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "top5.txt")
	Dump(sessions, path, 5)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "3 10\n9 10\n", string(data))
}

func TestDumpTruncatesToTopN(t *testing.T) {
	sessions := []*session.Session{
		boundSession(t, 1, 100),
		boundSession(t, 2, 90),
		boundSession(t, 3, 80),
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "top2.txt")
	Dump(sessions, path, 2)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "1 100\n2 90\n", string(data))
}

func TestDumpSkipsUnboundAndNilSessions(t *testing.T) {
	bound := boundSession(t, 5, 42)
	unbound := &session.Session{ID: 6}

	dir := t.TempDir()
	path := filepath.Join(dir, "top5.txt")
	Dump([]*session.Session{bound, unbound, nil}, path, 5)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "5 42\n", string(data))
}

func TestDumpSwallowsOpenFailure(t *testing.T) {
	sessions := []*session.Session{boundSession(t, 1, 10)}
	require.NotPanics(t, func() {
		Dump(sessions, filepath.Join(t.TempDir(), "no-such-dir", "top5.txt"), 5)
	})
}
