// Command pacserver is the server CLI of spec.md §6: it pre-creates the
// rendezvous channel, preallocates max_games session workers, and runs
// until SIGINT/SIGTERM.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/kiaracarvalho006-del/pacserver/internal/config"
	"github.com/kiaracarvalho006-del/pacserver/internal/fifo"
	"github.com/kiaracarvalho006-del/pacserver/internal/queue"
	"github.com/kiaracarvalho006-del/pacserver/internal/session"
	"github.com/kiaracarvalho006-del/pacserver/internal/worker"
)

// usageError marks an argument-misuse failure, which exits -1 per
// spec.md §6 rather than the 1 used for other startup errors.
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

func main() {
	root := &cobra.Command{
		Use:   "pacserver <level_dir> <max_games> <register_path>",
		Short: "session-oriented Pac-Man game server",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 3 {
				return usageError{fmt.Errorf("expected exactly 3 arguments: <level_dir> <max_games> <register_path>, got %d", len(args))}
			}
			return nil
		},
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(args[0], args[1], args[2])
		},
	}

	if err := root.Execute(); err != nil {
		var ue usageError
		if errors.As(err, &ue) {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(-1)
		}
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(levelDir, maxGamesArg, registerPath string) error {
	maxGames, err := strconv.Atoi(maxGamesArg)
	if err != nil || maxGames < 1 {
		return usageError{fmt.Errorf("max_games must be a positive integer, got %q", maxGamesArg)}
	}

	cfg, err := config.Load(os.Getenv("PACSERVER_CONFIG"))
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	})))

	fifo.IgnoreBrokenPipe()

	if err := fifo.Create(registerPath, 0o600); err != nil {
		return fmt.Errorf("creating rendezvous channel: %w", err)
	}
	rendezvous, dummyWriter, err := fifo.OpenRendezvous(registerPath)
	if err != nil {
		return fmt.Errorf("opening rendezvous channel: %w", err)
	}
	defer rendezvous.Close()
	defer dummyWriter.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	usrCh := make(chan os.Signal, 1)
	signal.Notify(usrCh, syscall.SIGUSR1)
	dumpCh := make(chan struct{}, 1)

	go func() {
		for {
			select {
			case sig := <-sigCh:
				slog.Info("shutting down", "signal", sig)
				cancel()
				// Closing the dummy writer lets the acceptor's blocked
				// read on the rendezvous stream observe EOF and return
				// cleanly (spec.md §7) instead of being killed mid-read.
				dummyWriter.Close()
				return
			case <-usrCh:
				select {
				case dumpCh <- struct{}{}:
				default:
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	queueCap := cfg.QueueCapacity
	q := queue.New(queueCap)

	sessions := make([]*session.Session, maxGames)
	for i := range sessions {
		sessions[i] = &session.Session{ID: i}
	}

	g, gctx := errgroup.WithContext(ctx)

	acceptor := &worker.Acceptor{
		Rendezvous: rendezvous,
		Queue:      q,
		Sessions:   sessions,
		DumpSignal: dumpCh,
		DumpPath:   cfg.DumpPath,
		TopN:       cfg.TopN,
	}
	g.Go(func() error {
		slog.Info("acceptor starting", "register_path", registerPath)
		return acceptor.Run(gctx)
	})

	for _, sess := range sessions {
		sw := &worker.SessionWorker{Session: sess, Queue: q, LevelDir: levelDir}
		g.Go(func() error {
			return sw.Run(gctx)
		})
	}

	slog.Info("pacserver ready",
		"level_dir", levelDir,
		"max_games", maxGames,
		"register_path", registerPath,
		"queue_capacity", queueCap)

	if err := g.Wait(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
