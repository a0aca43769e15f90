package game

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/kiaracarvalho006-del/pacserver/internal/board"
	"github.com/kiaracarvalho006-del/pacserver/internal/session"
)

// RunLevel spawns the command-reader, one ghost actor per ghost, and the
// snapshot publisher for the session's currently loaded board, then joins
// them in the order spec.md §4.4 mandates: the command-reader first; its
// return sets shutdown, and only then are the ghosts and the publisher
// joined.
func RunLevel(sess *session.Session) Outcome {
	readerDone := make(chan Outcome, 1)
	go func() { readerDone <- runCommandReader(sess) }()

	lvl := sess.CurrentBoard()

	var ghostsWG sync.WaitGroup
	for i := range lvl.Ghosts {
		ghostsWG.Add(1)
		go func(idx int) {
			defer ghostsWG.Done()
			runGhostActor(sess, idx)
		}(i)
	}

	var pubWG sync.WaitGroup
	pubWG.Add(1)
	go func() {
		defer pubWG.Done()
		runPublisher(sess)
	}()

	outcome := <-readerDone
	sess.Latch.SetShutdown()

	ghostsWG.Wait()
	pubWG.Wait()

	return outcome
}

// PlayAllLevels implements spec.md §4.4's per-session driver: iterate the
// level directory, run one tick loop per level, and advance the outer
// latch flags on termination.
func PlayAllLevels(sess *session.Session, levelDir string) error {
	levels, err := board.ListLevels(levelDir)
	if err != nil {
		return fmt.Errorf("listing levels in %s: %w", levelDir, err)
	}
	if len(levels) == 0 {
		return fmt.Errorf("no .lvl files found in %s", levelDir)
	}

	accumulated := 0
	for i, name := range levels {
		sess.Latch.ResetLevel()

		b, err := board.Load(levelDir, name, accumulated)
		if err != nil {
			// Resource exhaustion / load failure aborts the current level
			// with QUIT_GAME (spec.md §7) rather than crashing the worker.
			slog.Error("failed to load level, aborting session", "level", name, "error", err)
			sess.Latch.SetGameOver()
			return nil
		}
		sess.SetBoard(b)

		outcome := RunLevel(sess)

		switch {
		case outcome == NextLevel && i < len(levels)-1:
			accumulated = sess.CurrentBoard().Pacman.Points
			board.Unload(b)
		case outcome == NextLevel:
			// Last level: leave this board in place so the victory path
			// below still has a live board to snapshot instead of unloading
			// it here and falling through to an empty one.
		case outcome == QuitGame:
			sess.Latch.SetGameOver()
			board.Unload(b)
			return nil
		}
	}

	sess.Latch.SetVictory()
	_ = publishSnapshot(sess) // one final snapshot with victory=1 (spec.md §4.4.f)
	board.Unload(sess.CurrentBoard())
	return nil
}
