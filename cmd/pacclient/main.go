// Command pacclient is a minimal reference client for the wire protocol
// of spec.md §6. It has no TUI — snapshots are rendered as plain text —
// since client-side rendering is explicitly out of scope (spec.md §1).
package main

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"
	"unicode"

	"github.com/spf13/cobra"

	"github.com/kiaracarvalho006-del/pacserver/internal/constants"
	"github.com/kiaracarvalho006-del/pacserver/internal/fifo"
	"github.com/kiaracarvalho006-del/pacserver/internal/protocol"
)

func main() {
	var interval time.Duration

	root := &cobra.Command{
		Use:   "pacclient <client_id> <register_path> [commands_file]",
		Short: "reference client for the Pac-Man wire protocol",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) < 2 || len(args) > 3 {
				return fmt.Errorf("expected 2 or 3 arguments: <client_id> <register_path> [commands_file]")
			}
			return nil
		},
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			commandsFile := ""
			if len(args) == 3 {
				commandsFile = args[2]
			}
			return run(args[0], args[1], commandsFile, interval)
		},
	}
	root.Flags().DurationVar(&interval, "interval", 150*time.Millisecond, "delay between scripted commands")

	if err := root.Execute(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(clientID, registerPath, commandsFile string, interval time.Duration) error {
	reqPath := fmt.Sprintf("/tmp/%s_request", clientID)
	notifPath := fmt.Sprintf("/tmp/%s_notification", clientID)

	if err := fifo.Create(reqPath, 0o600); err != nil {
		return fmt.Errorf("creating request stream: %w", err)
	}
	if err := fifo.Create(notifPath, 0o600); err != nil {
		return fmt.Errorf("creating notification stream: %w", err)
	}

	reqStream, err := fifo.OpenDuplex(reqPath)
	if err != nil {
		return fmt.Errorf("opening request stream: %w", err)
	}
	defer reqStream.Close()
	notifStream, err := fifo.OpenDuplex(notifPath)
	if err != nil {
		return fmt.Errorf("opening notification stream: %w", err)
	}
	defer notifStream.Close()

	rendezvous, err := os.OpenFile(registerPath, os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("opening rendezvous channel %s: %w", registerPath, err)
	}
	if err := protocol.WriteConnect(rendezvous, protocol.ConnectFrame{ReqPath: reqPath, NotifPath: notifPath}); err != nil {
		rendezvous.Close()
		return fmt.Errorf("sending connect frame: %w", err)
	}
	rendezvous.Close()

	op, err := protocol.ReadOpcode(notifStream)
	if err != nil {
		return fmt.Errorf("reading connect ack: %w", err)
	}
	if op != constants.OpConnect {
		return fmt.Errorf("unexpected opcode %d waiting for connect ack", op)
	}
	status, err := protocol.ReadConnectAck(notifStream)
	if err != nil {
		return fmt.Errorf("reading connect ack status: %w", err)
	}
	if status != 0 {
		return fmt.Errorf("server refused connection (status %d)", status)
	}
	fmt.Printf("connected as client %s\n", clientID)

	snapshotsDone := make(chan struct{})
	go func() {
		defer close(snapshotsDone)
		for {
			op, err := protocol.ReadOpcode(notifStream)
			if err != nil {
				return
			}
			if op != constants.OpBoard {
				continue
			}
			f, err := protocol.ReadBoard(notifStream)
			if err != nil {
				return
			}
			renderBoard(f)
			if f.Victory == 1 || f.GameOver == 1 {
				return
			}
		}
	}()

	src := commandSource(commandsFile)
	for {
		cmd, ok := src()
		if !ok {
			break
		}
		if cmd == 'Q' {
			_ = protocol.WriteDisconnect(reqStream)
			break
		}
		if err := protocol.WritePlay(reqStream, cmd); err != nil {
			break
		}
		select {
		case <-snapshotsDone:
			goto done
		case <-time.After(interval):
		}
	}
done:
	<-snapshotsDone
	return nil
}

// commandSource returns a function yielding one upper-cased, non-space
// command byte per call. With a commands file it rewinds at EOF (spec.md
// §6); otherwise it reads from the terminal, one line per call.
func commandSource(path string) func() (byte, bool) {
	if path == "" {
		scanner := bufio.NewScanner(os.Stdin)
		return func() (byte, bool) {
			for scanner.Scan() {
				line := strings.TrimSpace(scanner.Text())
				if line == "" {
					continue
				}
				return byte(unicode.ToUpper(rune(line[0]))), true
			}
			return 0, false
		}
	}

	data, err := os.ReadFile(path)
	if err != nil || len(data) == 0 {
		return func() (byte, bool) { return 0, false }
	}
	pos := 0
	return func() (byte, bool) {
		for scanned := 0; scanned <= len(data); scanned++ {
			if pos >= len(data) {
				pos = 0
			}
			c := data[pos]
			pos++
			if unicode.IsSpace(rune(c)) {
				continue
			}
			return byte(unicode.ToUpper(rune(c))), true
		}
		return 0, false
	}
}

func renderBoard(f protocol.BoardFrame) {
	fmt.Printf("--- points=%d victory=%d game_over=%d ---\n", f.Points, f.Victory, f.GameOver)
	w := int(f.Width)
	for row := 0; row < int(f.Height); row++ {
		start := row * w
		if start+w > len(f.Cells) {
			break
		}
		fmt.Println(string(f.Cells[start : start+w]))
	}
}
