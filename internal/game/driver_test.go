package game

import (
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kiaracarvalho006-del/pacserver/internal/board"
	"github.com/kiaracarvalho006-del/pacserver/internal/protocol"
	"github.com/kiaracarvalho006-del/pacserver/internal/session"
)

// frameReader continuously drains BOARD frames from r so the publisher's
// synchronous pipe writes never block the test.
type frameReader struct {
	mu     sync.Mutex
	frames []protocol.BoardFrame
}

func startFrameReader(t *testing.T, r io.Reader) *frameReader {
	t.Helper()
	fr := &frameReader{}
	go func() {
		for {
			op, err := protocol.ReadOpcode(r)
			if err != nil {
				return
			}
			if op != 4 {
				return
			}
			f, err := protocol.ReadBoard(r)
			if err != nil {
				return
			}
			fr.mu.Lock()
			fr.frames = append(fr.frames, f)
			fr.mu.Unlock()
		}
	}()
	return fr
}

func (fr *frameReader) last() (protocol.BoardFrame, bool) {
	fr.mu.Lock()
	defer fr.mu.Unlock()
	if len(fr.frames) == 0 {
		return protocol.BoardFrame{}, false
	}
	return fr.frames[len(fr.frames)-1], true
}

func (fr *frameReader) waitFor(t *testing.T, pred func(protocol.BoardFrame) bool, timeout time.Duration) protocol.BoardFrame {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if f, ok := fr.last(); ok && pred(f) {
			return f
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("timed out waiting for expected board frame")
	return protocol.BoardFrame{}
}

func newTestSession(t *testing.T, level string) (*session.Session, *io.PipeWriter, *frameReader) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "l1.lvl"), []byte(level), 0o644))
	b, err := board.Load(dir, "l1.lvl", 0)
	require.NoError(t, err)

	sess := &session.Session{Board: b}
	sess.Latch.Reset(1)

	reqR, reqW := io.Pipe()
	notifR, notifW := io.Pipe()
	sess.Req = reqR
	sess.Notif = notifW

	fr := startFrameReader(t, notifR)

	t.Cleanup(func() {
		reqW.Close()
		notifW.Close()
	})

	return sess, reqW, fr
}

func TestRunLevelReachPortalYieldsNextLevel(t *testing.T) {
	sess, reqW, fr := newTestSession(t, "tempo=5\ngrid:\nP@\n")

	outcomeCh := make(chan Outcome, 1)
	go func() { outcomeCh <- RunLevel(sess) }()

	fr.waitFor(t, func(protocol.BoardFrame) bool { return true }, time.Second)
	require.NoError(t, protocol.WritePlay(reqW, 'E'))

	select {
	case outcome := <-outcomeCh:
		require.Equal(t, NextLevel, outcome)
	case <-time.After(2 * time.Second):
		t.Fatal("RunLevel did not return")
	}
}

func TestRunLevelQuitCommand(t *testing.T) {
	sess, reqW, _ := newTestSession(t, "tempo=5\ngrid:\nP.\n")

	outcomeCh := make(chan Outcome, 1)
	go func() { outcomeCh <- RunLevel(sess) }()

	require.NoError(t, protocol.WritePlay(reqW, 'Q'))

	select {
	case outcome := <-outcomeCh:
		require.Equal(t, QuitGame, outcome)
	case <-time.After(2 * time.Second):
		t.Fatal("RunLevel did not return")
	}
}

func TestRunLevelReservedGCommandNeverChangesBoard(t *testing.T) {
	sess, reqW, _ := newTestSession(t, "tempo=5\ngrid:\nP.\n")
	before := sess.Board.Pacman.X

	go RunLevel(sess)
	require.NoError(t, protocol.WritePlay(reqW, 'G'))
	time.Sleep(30 * time.Millisecond)

	sess.Board.RLock()
	after := sess.Board.Pacman.X
	sess.Board.RUnlock()
	require.Equal(t, before, after)

	require.NoError(t, protocol.WritePlay(reqW, 'Q'))
}

func TestRunLevelGhostKillSetsGameOver(t *testing.T) {
	sess, _, fr := newTestSession(t, "tempo=5\ngrid:\nPM\nghost_offset=0\nghost_moves=W\n")

	outcomeCh := make(chan Outcome, 1)
	go func() { outcomeCh <- RunLevel(sess) }()

	f := fr.waitFor(t, func(f protocol.BoardFrame) bool { return f.GameOver == 1 }, 2*time.Second)
	require.Equal(t, int32(1), f.GameOver)

	// The command-reader is still waiting on a read; close the request
	// stream so its read fails and RunLevel can return within the test
	// timeout (mirrors a client that departs after seeing game_over).
	sess.Req.Close()

	select {
	case <-outcomeCh:
	case <-time.After(2 * time.Second):
		t.Fatal("RunLevel did not return after request stream closed")
	}
}

func TestPlayAllLevelsVictory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.lvl"), []byte("tempo=5\ngrid:\nP@\n"), 0o644))

	b, err := board.Load(dir, "a.lvl", 0)
	require.NoError(t, err)
	sess := &session.Session{Board: b}
	sess.Latch.Reset(1)

	reqR, reqW := io.Pipe()
	notifR, notifW := io.Pipe()
	sess.Req, sess.Notif = reqR, notifW
	defer reqW.Close()
	defer notifW.Close()

	fr := startFrameReader(t, notifR)

	done := make(chan struct{})
	go func() {
		require.NoError(t, PlayAllLevels(sess, dir))
		close(done)
	}()

	fr.waitFor(t, func(protocol.BoardFrame) bool { return true }, time.Second)
	require.NoError(t, protocol.WritePlay(reqW, 'E'))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("PlayAllLevels did not return")
	}
	require.True(t, sess.Latch.Victory())
}
