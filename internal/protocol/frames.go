package protocol

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/kiaracarvalho006-del/pacserver/internal/constants"
)

// ConnectFrame is the client->server CONNECT payload on the rendezvous
// stream: two fixed-width, NUL-terminated path strings.
type ConnectFrame struct {
	ReqPath   string
	NotifPath string
}

// ReadConnect reads one CONNECT frame (opcode already consumed by the
// caller). Each path occupies a MaxPipePathLength-byte zero-padded slot.
func ReadConnect(r io.Reader) (ConnectFrame, error) {
	var buf [2 * constants.MaxPipePathLength]byte
	if err := ReadFull(r, buf[:]); err != nil {
		return ConnectFrame{}, err
	}
	return ConnectFrame{
		ReqPath:   cString(buf[:constants.MaxPipePathLength]),
		NotifPath: cString(buf[constants.MaxPipePathLength:]),
	}, nil
}

// WriteConnect writes the CONNECT opcode and payload.
func WriteConnect(w io.Writer, f ConnectFrame) error {
	var buf [1 + 2*constants.MaxPipePathLength]byte
	buf[0] = byte(constants.OpConnect)
	if err := putCString(buf[1:1+constants.MaxPipePathLength], f.ReqPath); err != nil {
		return fmt.Errorf("encoding req path: %w", err)
	}
	if err := putCString(buf[1+constants.MaxPipePathLength:], f.NotifPath); err != nil {
		return fmt.Errorf("encoding notif path: %w", err)
	}
	return WriteFull(w, buf[:])
}

// WriteConnectAck writes the server->client CONNECT_ACK frame: opcode plus
// a single status byte (0 = ok, nonzero = failure).
func WriteConnectAck(w io.Writer, status byte) error {
	buf := [2]byte{byte(constants.OpConnect), status}
	return WriteFull(w, buf[:])
}

// ReadConnectAck reads the status byte of a CONNECT_ACK frame (opcode
// already consumed).
func ReadConnectAck(r io.Reader) (byte, error) {
	var buf [1]byte
	if err := ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}

// WriteDisconnect writes the client->server DISCONNECT frame (opcode only).
func WriteDisconnect(w io.Writer) error {
	return WriteFull(w, []byte{byte(constants.OpDisconnect)})
}

// WritePlay writes the client->server PLAY frame: opcode plus one command
// byte.
func WritePlay(w io.Writer, cmd byte) error {
	buf := [2]byte{byte(constants.OpPlay), cmd}
	return WriteFull(w, buf[:])
}

// ReadPlayCommand reads the command byte of a PLAY frame (opcode already
// consumed).
func ReadPlayCommand(r io.Reader) (byte, error) {
	var buf [1]byte
	if err := ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}

// ReadOpcode reads the one-byte opcode that prefixes every frame.
func ReadOpcode(r io.Reader) (constants.Opcode, error) {
	var buf [1]byte
	if err := ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return constants.Opcode(buf[0]), nil
}

// BoardFrame is the server->client snapshot frame: four-byte native-endian
// ints followed by the width*height cell payload.
type BoardFrame struct {
	Width     int32
	Height    int32
	Tempo     int32
	Victory   int32
	GameOver  int32
	Points    int32
	Cells     []byte
}

// WriteBoard writes a BOARD frame atomically: the caller is expected to
// hold no lock during the call, but the payload itself is assembled into a
// single buffer and written with one WriteFull call so a partial frame is
// never observable by a well-behaved reader.
func WriteBoard(w io.Writer, f BoardFrame) error {
	if int(f.Width*f.Height) != len(f.Cells) {
		return fmt.Errorf("board frame: cell payload length %d does not match %dx%d", len(f.Cells), f.Width, f.Height)
	}
	header := make([]byte, 1+6*4)
	header[0] = byte(constants.OpBoard)
	binary.NativeEndian.PutUint32(header[1:5], uint32(f.Width))
	binary.NativeEndian.PutUint32(header[5:9], uint32(f.Height))
	binary.NativeEndian.PutUint32(header[9:13], uint32(f.Tempo))
	binary.NativeEndian.PutUint32(header[13:17], uint32(f.Victory))
	binary.NativeEndian.PutUint32(header[17:21], uint32(f.GameOver))
	binary.NativeEndian.PutUint32(header[21:25], uint32(f.Points))

	buf := make([]byte, 0, len(header)+len(f.Cells))
	buf = append(buf, header...)
	buf = append(buf, f.Cells...)
	return WriteFull(w, buf)
}

// ReadBoard reads a BOARD frame (opcode already consumed).
func ReadBoard(r io.Reader) (BoardFrame, error) {
	var header [6 * 4]byte
	if err := ReadFull(r, header[:]); err != nil {
		return BoardFrame{}, err
	}
	f := BoardFrame{
		Width:    int32(binary.NativeEndian.Uint32(header[0:4])),
		Height:   int32(binary.NativeEndian.Uint32(header[4:8])),
		Tempo:    int32(binary.NativeEndian.Uint32(header[8:12])),
		Victory:  int32(binary.NativeEndian.Uint32(header[12:16])),
		GameOver: int32(binary.NativeEndian.Uint32(header[16:20])),
		Points:   int32(binary.NativeEndian.Uint32(header[20:24])),
	}
	if f.Width < 0 || f.Height < 0 {
		return BoardFrame{}, fmt.Errorf("board frame: negative dimensions %dx%d", f.Width, f.Height)
	}
	cells := make([]byte, f.Width*f.Height)
	if err := ReadFull(r, cells); err != nil {
		return BoardFrame{}, err
	}
	f.Cells = cells
	return f, nil
}

// cString trims a fixed-width zero-padded slot to its NUL-terminated
// content.
func cString(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}

// putCString writes s into the fixed-width slot dst, NUL-padded. Returns an
// error if s (plus terminator) does not fit.
func putCString(dst []byte, s string) error {
	if len(s) >= len(dst) {
		return fmt.Errorf("string %q exceeds slot width %d", s, len(dst))
	}
	clear(dst)
	copy(dst, s)
	return nil
}
