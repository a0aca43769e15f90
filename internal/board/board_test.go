package board

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeLevel(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoadSimplePortalLevel(t *testing.T) {
	dir := t.TempDir()
	writeLevel(t, dir, "l1.lvl", "tempo=100\ngrid:\nP@\n")

	b, err := Load(dir, "l1.lvl", 0)
	require.NoError(t, err)
	require.Equal(t, 2, b.Width)
	require.Equal(t, 1, b.Height)
	require.Equal(t, 100, b.Tempo)
	require.True(t, b.Pacman.Alive)
	require.Equal(t, 0, b.Pacman.Points)

	// First move: east, into the portal cell.
	res := MovePacman(b, 0, 'E')
	require.Equal(t, ReachedPortal, res)
	require.Equal(t, 1, b.Pacman.X)

	Unload(b)
	require.Nil(t, b.Cells)
}

func TestMovePacmanWallIsInvalid(t *testing.T) {
	dir := t.TempDir()
	writeLevel(t, dir, "l1.lvl", "tempo=50\ngrid:\nP#\n")
	b, err := Load(dir, "l1.lvl", 0)
	require.NoError(t, err)

	res := MovePacman(b, 0, 'E')
	require.Equal(t, InvalidMove, res)
	require.Equal(t, 0, b.Pacman.X)
}

func TestMovePacmanCollectsDot(t *testing.T) {
	dir := t.TempDir()
	writeLevel(t, dir, "l1.lvl", "tempo=50\ngrid:\nP.\n")
	b, err := Load(dir, "l1.lvl", 5)
	require.NoError(t, err)
	require.Equal(t, 5, b.Pacman.Points)

	res := MovePacman(b, 0, 'E')
	require.Equal(t, ValidMove, res)
	require.Equal(t, 5+PointsPerDot, b.Pacman.Points)
	require.False(t, b.Cells[b.index(1, 0)].HasDot)
}

func TestGhostKillsPacman(t *testing.T) {
	dir := t.TempDir()
	writeLevel(t, dir, "l1.lvl",
		"tempo=50\ngrid:\nPM\nghost_offset=0\nghost_moves=W\n")
	b, err := Load(dir, "l1.lvl", 0)
	require.NoError(t, err)
	require.Len(t, b.Ghosts, 1)

	res := MoveGhost(b, 0, b.Ghosts[0].NextMove())
	require.Equal(t, DeadPacman, res)
	require.False(t, b.Pacman.Alive)
}

func TestGhostMoveListCyclesModuloLength(t *testing.T) {
	g := &Ghost{Moves: []Move{{Command: 'N'}, {Command: 'S'}}}
	require.Equal(t, byte('N'), g.NextMove())
	require.Equal(t, byte('S'), g.NextMove())
	require.Equal(t, byte('N'), g.NextMove())
}

func TestListLevelsFiltersNonLvlAndDotfiles(t *testing.T) {
	dir := t.TempDir()
	writeLevel(t, dir, "a.lvl", "tempo=1\ngrid:\nP\n")
	writeLevel(t, dir, "b.txt", "ignored")
	writeLevel(t, dir, ".hidden.lvl", "ignored")

	names, err := ListLevels(dir)
	require.NoError(t, err)
	require.Equal(t, []string{"a.lvl"}, names)
}

func TestSnapshotCellsTranslation(t *testing.T) {
	dir := t.TempDir()
	writeLevel(t, dir, "l1.lvl", "tempo=50\ngrid:\nP#.@ \n")
	b, err := Load(dir, "l1.lvl", 0)
	require.NoError(t, err)

	cells := SnapshotCells(b)
	require.Equal(t, []byte("C#.@ "), cells)
}

func TestValidateRejectsMissingPacman(t *testing.T) {
	b := &Board{Width: 1, Height: 1, Cells: make([]Position, 1)}
	require.Error(t, b.Validate())
}

func TestLoadRejectsGhostWithoutMoves(t *testing.T) {
	dir := t.TempDir()
	writeLevel(t, dir, "l1.lvl", "tempo=50\ngrid:\nPM\n")
	_, err := Load(dir, "l1.lvl", 0)
	require.Error(t, err)
}
