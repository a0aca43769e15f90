// Package scores implements the top-scores dumper of spec.md §4.5: an
// on-demand, signal-triggered snapshot of every currently bound session's
// score, ranked and truncated to a fixed-size file.
package scores

import (
	"fmt"
	"os"
	"sort"

	"github.com/kiaracarvalho006-del/pacserver/internal/session"
)

// entry is one ranked (client_id, points) tuple.
type entry struct {
	ClientID int
	Points   int
}

// Dump snapshots every bound session in sessions, ranks them descending by
// points (ties broken by ascending client id), truncates to topN, and
// overwrites path. A file-open failure is swallowed: the dump is an
// operational aid, never part of game correctness (spec.md §4.5, §7).
func Dump(sessions []*session.Session, path string, topN int) {
	entries := collect(sessions)

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Points != entries[j].Points {
			return entries[i].Points > entries[j].Points
		}
		return entries[i].ClientID < entries[j].ClientID
	})

	if len(entries) > topN {
		entries = entries[:topN]
	}

	f, err := os.Create(path)
	if err != nil {
		return
	}
	defer f.Close()

	for _, e := range entries {
		fmt.Fprintf(f, "%d %d\n", e.ClientID, e.Points)
	}
}

// collect acquires each session's latch and board read lock in turn,
// releasing them before moving to the next session, so the dump never
// blocks another session's progress for longer than one snapshot read
// (spec.md §4.2).
func collect(sessions []*session.Session) []entry {
	var entries []entry
	for _, s := range sessions {
		if s == nil || !s.Bound() {
			continue
		}
		clientID := s.Latch.ClientID()

		b := s.CurrentBoard()
		if b == nil {
			continue
		}
		b.RLock()
		points := 0
		if b.Pacman != nil {
			points = b.Pacman.Points
		}
		b.RUnlock()

		entries = append(entries, entry{ClientID: clientID, Points: points})
	}
	return entries
}
