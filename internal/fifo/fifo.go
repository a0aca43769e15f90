// Package fifo wraps named-pipe (FIFO) creation and the SIGPIPE-ignoring
// discipline spec.md §5 requires so that a write to a closed stream
// returns an error instead of killing the process.
package fifo

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sys/unix"
)

// Create makes a FIFO at path with the given permission bits. EEXIST is
// not an error — the server pre-creates the rendezvous path and a restart
// must not fail because it already exists (spec.md §6).
func Create(path string, perm os.FileMode) error {
	if err := unix.Mkfifo(path, uint32(perm)); err != nil {
		if errors.Is(err, unix.EEXIST) {
			return nil
		}
		return fmt.Errorf("mkfifo %s: %w", path, err)
	}
	return nil
}

// IgnoreBrokenPipe installs the process-wide SIGPIPE-ignore policy so that
// writes to a notification stream whose reader has gone away return
// io/syscall errors rather than terminating the process (spec.md §5).
func IgnoreBrokenPipe() {
	signal.Ignore(syscall.SIGPIPE)
}

// OpenDuplex opens the FIFO at path O_RDWR. A plain O_RDONLY or O_WRONLY
// open on a FIFO blocks until a peer opens the other end; O_RDWR never
// blocks, so both the client and the session worker use it for the per-
// client request/notification streams to avoid ordering one another
// (spec.md §7's "dummy writer" technique, generalized from the rendezvous
// channel to every FIFO this server touches).
func OpenDuplex(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return f, nil
}

// OpenRendezvous opens the pre-created rendezvous FIFO for reading and
// also opens and retains a dummy O_RDWR handle on the same path for the
// life of the server, so the acceptor's read end never observes EOF no
// matter how many clients come and go (spec.md §7). The dummy handle is
// opened first (O_RDWR never blocks); the reader's O_RDONLY open then
// completes immediately because a writer already exists.
func OpenRendezvous(path string) (reader *os.File, dummyWriter *os.File, err error) {
	dummyWriter, err = os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s (dummy writer): %w", path, err)
	}
	reader, err = os.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		dummyWriter.Close()
		return nil, nil, fmt.Errorf("open %s (reader): %w", path, err)
	}
	return reader, dummyWriter, nil
}
