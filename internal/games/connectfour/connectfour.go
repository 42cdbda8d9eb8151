// Package connectfour implements the Connect Four game as a state.Clonable, used to exercise the searchers
// and by the connect4 and compare programs.
//
// The board has 7 columns and 6 rows. Players alternate dropping a disc in a column, and the first to
// connect four discs horizontally, vertically or diagonally wins.
package connectfour

import (
	"fmt"
	"strings"

	"github.com/janpfeifer/gamesearch/internal/state"
	"github.com/pkg/errors"
	"golang.org/x/exp/rand"
)

const (
	Columns = 7
	Rows    = 6

	// NumCells on the board, also the maximum number of moves in a match.
	NumCells = Columns * Rows

	// Connect is the number of aligned discs needed to win.
	Connect = 4
)

// Column where a disc is dropped: it's the move of the game.
type Column int8

// String implements fmt.Stringer. Columns are displayed 1-based.
func (c Column) String() string {
	return fmt.Sprintf("col-%d", int(c)+1)
}

// cell content: 0 for empty, or 1 + PlayerNum.
type cell uint8

const emptyCell cell = 0

func playerCell(player state.PlayerNum) cell { return cell(player) + 1 }

// Zobrist keys for each disc of each player in each position, plus one for the second player to move.
var (
	zobristDiscs [Columns][Rows][state.NumPlayers]uint64
	zobristSide  uint64
)

func init() {
	rng := rand.New(rand.NewSource(0x5eed_c0ffee))
	for col := range Columns {
		for row := range Rows {
			for player := range state.NumPlayers {
				zobristDiscs[col][row][player] = rng.Uint64()
			}
		}
	}
	zobristSide = rng.Uint64()
}

// Board is the Connect Four game state. Row 0 is the bottom of the board.
//
// It implements state.Clonable[*Board, Column]. The zero value is not valid, use New.
type Board struct {
	cells   [Columns][Rows]cell
	heights [Columns]int8

	next     state.PlayerNum
	winner   state.PlayerNum
	numMoves int
	hash     uint64
}

// Assert Board implements the state interfaces.
var (
	_ state.Clonable[*Board, Column] = (*Board)(nil)
	_ state.Prioritizer[Column]      = (*Board)(nil)
)

// New returns an empty board, with the first player to move.
func New() *Board {
	return &Board{next: state.PlayerFirst, winner: state.PlayerInvalid}
}

// FromColumns builds a board by playing the sequence of columns (1-based digits, e.g. "4455") from
// the start. It is convenient to write positions in tests.
func FromColumns(sequence string) (*Board, error) {
	b := New()
	for ii, r := range sequence {
		if r < '1' || r > '0'+Columns {
			return nil, errors.Errorf("invalid column %q at position %d of %q", r, ii, sequence)
		}
		if err := b.ExecuteMove(Column(r - '1')); err != nil {
			return nil, errors.WithMessagef(err, "move #%d of %q", ii, sequence)
		}
	}
	return b, nil
}

// Clone implements state.Clonable.
func (b *Board) Clone() *Board {
	newB := &Board{}
	*newB = *b
	return newB
}

// CurrentPlayer implements state.TwoPlayer.
func (b *Board) CurrentPlayer() state.PlayerNum {
	return b.next
}

// Winner returns the player that won, or state.PlayerInvalid if there is no winner (yet).
func (b *Board) Winner() state.PlayerNum {
	return b.winner
}

// NumMoves played so far.
func (b *Board) NumMoves() int {
	return b.numMoves
}

// IsFinished returns whether the match is over.
func (b *Board) IsFinished() bool {
	return b.winner != state.PlayerInvalid || b.numMoves == NumCells
}

// IsGameWon implements state.State: the player to move never has a winning line already on the board,
// since the game ends as soon as the opponent connects.
func (b *Board) IsGameWon() bool {
	return b.winner == b.next
}

// IsGameLost implements state.State.
func (b *Board) IsGameLost() bool {
	return b.winner == b.next.Opponent()
}

// IsGameDraw implements state.TwoPlayer.
func (b *Board) IsGameDraw() bool {
	return b.winner == state.PlayerInvalid && b.numMoves == NumCells
}

// Hash implements state.State, with Zobrist hashing maintained incrementally.
func (b *Board) Hash() uint64 {
	return b.hash
}

// PlayerAt returns the player owning the disc at the given position, and false if it is empty.
func (b *Board) PlayerAt(col Column, row int) (state.PlayerNum, bool) {
	c := b.cells[col][row]
	if c == emptyCell {
		return state.PlayerInvalid, false
	}
	return state.PlayerNum(c - 1), true
}

// Height returns the number of discs in the column.
func (b *Board) Height(col Column) int {
	return int(b.heights[col])
}

// LegalMoves implements state.State: the non-full columns, if the match is not finished.
func (b *Board) LegalMoves() []Column {
	if b.IsFinished() {
		return nil
	}
	moves := make([]Column, 0, Columns)
	for col := range Column(Columns) {
		if b.heights[col] < Rows {
			moves = append(moves, col)
		}
	}
	return moves
}

// MovePriority implements state.Prioritizer: central columns take part in more lines, so they are explored first.
func (b *Board) MovePriority(col Column) int {
	center := Column(Columns / 2)
	if col > center {
		return -int(col - center)
	}
	return -int(center - col)
}

// ExecuteMove implements state.State.
func (b *Board) ExecuteMove(col Column) error {
	if col < 0 || col >= Columns {
		return errors.Wrapf(state.ErrInvalidMove, "column %d out of range", col)
	}
	if b.IsFinished() {
		return errors.Wrapf(state.ErrInvalidMove, "can't play %s: match is finished", col)
	}
	row := b.heights[col]
	if row >= Rows {
		return errors.Wrapf(state.ErrInvalidMove, "column %s is full", col)
	}
	player := b.next
	b.cells[col][row] = playerCell(player)
	b.heights[col]++
	b.hash ^= zobristDiscs[col][row][player] ^ zobristSide
	b.numMoves++
	if b.connects(col, int(row), player) {
		b.winner = player
	}
	b.next = player.Opponent()
	return nil
}

// UndoMove implements state.State.
func (b *Board) UndoMove(col Column) error {
	if col < 0 || col >= Columns || b.heights[col] == 0 {
		return errors.Wrapf(state.ErrInvalidMove, "can't undo %s: no disc there", col)
	}
	row := b.heights[col] - 1
	player := b.next.Opponent()
	if b.cells[col][row] != playerCell(player) {
		return errors.Wrapf(state.ErrInvalidMove, "can't undo %s: top disc is not from %s", col, player)
	}
	b.cells[col][row] = emptyCell
	b.heights[col]--
	b.hash ^= zobristDiscs[col][row][player] ^ zobristSide
	b.numMoves--
	// The position before the move was not finished, otherwise the move wouldn't have been executed.
	b.winner = state.PlayerInvalid
	b.next = player
	return nil
}

// directions to look for lines: horizontal, vertical and both diagonals.
var directions = [4][2]int{{1, 0}, {0, 1}, {1, 1}, {1, -1}}

// connects returns whether the disc of player at (col, row) is part of a line of Connect discs.
func (b *Board) connects(col Column, row int, player state.PlayerNum) bool {
	for _, dir := range directions {
		if 1+b.countDir(int(col), row, dir[0], dir[1], player)+b.countDir(int(col), row, -dir[0], -dir[1], player) >= Connect {
			return true
		}
	}
	return false
}

// countDir counts the consecutive discs of player starting from (col, row), exclusive, in the direction (dx, dy).
func (b *Board) countDir(col, row, dx, dy int, player state.PlayerNum) (count int) {
	want := playerCell(player)
	for {
		col, row = col+dx, row+dy
		if col < 0 || col >= Columns || row < 0 || row >= Rows || b.cells[col][row] != want {
			return
		}
		count++
	}
}

// String implements fmt.Stringer, with a simple ASCII rendering. The ui/cli package has a prettier one.
func (b *Board) String() string {
	var sb strings.Builder
	symbols := [3]byte{'.', 'X', 'O'}
	for row := Rows - 1; row >= 0; row-- {
		for col := range Columns {
			sb.WriteByte(symbols[b.cells[col][row]])
		}
		sb.WriteByte('\n')
	}
	fmt.Fprintf(&sb, "next=%s, moves=%d, winner=%s\n", b.next, b.numMoves, b.winner)
	return sb.String()
}
