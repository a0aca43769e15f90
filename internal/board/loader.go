package board

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Level file format (this module's own design; spec.md treats the loader
// as an opaque collaborator):
//
//	tempo=<ms>
//	grid:
//	#####
//	#P..#
//	#.M.#
//	#..@#
//	#####
//	pacman_offset=<n>
//	pacman_moves=<comma-separated commands, may be empty>
//	ghost_offset=<n>        (repeated once per 'M' encountered, row-major)
//	ghost_moves=<comma-separated commands, non-empty>
//
// Grid alphabet: '#' wall, '.' dot, '@' portal, ' ' empty, 'P' pacman
// start, 'M' ghost start (consumes the next ghost_offset/ghost_moves pair
// in file order).

// Load parses levelFile (relative to dir) into a fresh Board, seeding the
// pacman's accumulated points from the prior level (spec.md §4.4.b).
func Load(dir, levelFile string, accumulatedPoints int) (*Board, error) {
	path := filepath.Join(dir, levelFile)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening level %s: %w", path, err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)

	b := &Board{LevelName: levelFile, Dir: dir}
	var gridLines []string
	var ghostOffsets []int
	var ghostMoveLines [][]Move
	pacmanOffset := 0
	var pacmanMoves []Move

	readingGrid := false
	for sc.Scan() {
		line := sc.Text()
		if readingGrid {
			// A header line always contains '='; grid rows never do.
			if strings.Contains(line, "=") {
				readingGrid = false
			} else {
				if line != "" {
					gridLines = append(gridLines, line)
				}
				continue
			}
		}

		switch {
		case strings.HasPrefix(line, "tempo="):
			v, err := strconv.Atoi(strings.TrimPrefix(line, "tempo="))
			if err != nil {
				return nil, fmt.Errorf("parsing tempo: %w", err)
			}
			b.Tempo = v
		case line == "grid:":
			readingGrid = true
		case strings.HasPrefix(line, "pacman_offset="):
			v, err := strconv.Atoi(strings.TrimPrefix(line, "pacman_offset="))
			if err != nil {
				return nil, fmt.Errorf("parsing pacman_offset: %w", err)
			}
			pacmanOffset = v
		case strings.HasPrefix(line, "pacman_moves="):
			pacmanMoves = parseMoves(strings.TrimPrefix(line, "pacman_moves="))
		case strings.HasPrefix(line, "ghost_offset="):
			v, err := strconv.Atoi(strings.TrimPrefix(line, "ghost_offset="))
			if err != nil {
				return nil, fmt.Errorf("parsing ghost_offset: %w", err)
			}
			ghostOffsets = append(ghostOffsets, v)
		case strings.HasPrefix(line, "ghost_moves="):
			ghostMoveLines = append(ghostMoveLines, parseMoves(strings.TrimPrefix(line, "ghost_moves=")))
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading level %s: %w", path, err)
	}

	if len(gridLines) == 0 {
		return nil, fmt.Errorf("level %s has no grid", path)
	}

	b.Height = len(gridLines)
	b.Width = len(gridLines[0])
	b.Cells = make([]Position, b.Width*b.Height)

	var ghosts []*Ghost
	for y, line := range gridLines {
		if len(line) != b.Width {
			return nil, fmt.Errorf("level %s: ragged grid row %d (len %d, want %d)", path, y, len(line), b.Width)
		}
		for x, ch := range []byte(line) {
			pos := &b.Cells[b.index(x, y)]
			pos.X, pos.Y = x, y
			switch ch {
			case '#':
				pos.Content = ContentWall
			case '.':
				pos.HasDot = true
			case '@':
				pos.HasPortal = true
			case 'P':
				b.Pacman = &Pacman{X: x, Y: y, Alive: true, Points: accumulatedPoints, StepOffset: pacmanOffset, Moves: pacmanMoves}
				pos.Content = ContentPacman
			case 'M':
				idx := len(ghosts)
				g := &Ghost{X: x, Y: y}
				if idx < len(ghostOffsets) {
					g.StepOffset = ghostOffsets[idx]
				}
				if idx < len(ghostMoveLines) {
					g.Moves = ghostMoveLines[idx]
				}
				ghosts = append(ghosts, g)
				pos.Content = ContentGhost
			case ' ':
				// empty
			default:
				return nil, fmt.Errorf("level %s: unknown cell rune %q at (%d,%d)", path, ch, x, y)
			}
		}
	}
	b.Ghosts = ghosts

	if err := b.Validate(); err != nil {
		return nil, fmt.Errorf("validating level %s: %w", path, err)
	}
	for i, g := range b.Ghosts {
		if len(g.Moves) == 0 {
			return nil, fmt.Errorf("level %s: ghost %d has an empty move list", path, i)
		}
	}

	return b, nil
}

// Unload releases the board's resources. In this Go implementation there
// is nothing to free explicitly (no manual memory management), but the
// call is kept — and must be made exactly once per successful Load on
// every exit path — to mirror the reference design's load/unload pairing
// and to give future resource-bearing extensions (e.g. a cached tileset) a
// single place to release them.
func Unload(b *Board) {
	if b == nil {
		return
	}
	b.Lock()
	defer b.Unlock()
	b.Cells = nil
	b.Pacman = nil
	b.Ghosts = nil
}

func parseMoves(s string) []Move {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	moves := make([]Move, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		moves = append(moves, Move{Command: p[0], Turns: 1})
	}
	return moves
}

// ListLevels returns level file names in dir, filtered per spec.md §4.4:
// skip dotfiles, keep only names ending in ".lvl". Order follows
// os.ReadDir, which is lexicographic by name — unlike the C reference's
// raw readdir() order; see DESIGN.md for this Open-Question resolution.
func ListLevels(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading level directory %s: %w", dir, err)
	}
	var names []string
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		if !strings.HasSuffix(name, ".lvl") {
			continue
		}
		names = append(names, name)
	}
	return names, nil
}
