package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/janpfeifer/gamesearch/internal/games/connectfour"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadColumn(t *testing.T) {
	b, err := connectfour.FromColumns("111111")
	require.NoError(t, err)
	var out bytes.Buffer
	ui := NewWithIO(strings.NewReader("9\nabc\n1\n4\n"), &out, false, false)
	_, err = ui.ReadColumn(b)
	assert.ErrorIs(t, err, errTooManyAttempts)
	assert.Contains(t, out.String(), "Column 1 is full")

	col, err := ui.ReadColumn(b)
	require.NoError(t, err)
	assert.Equal(t, Column(3), col)

	ui = NewWithIO(strings.NewReader("quit\n"), &out, false, false)
	_, err = ui.ReadColumn(b)
	assert.ErrorIs(t, err, ErrQuit)

	// Last line without a newline.
	ui = NewWithIO(strings.NewReader("7"), &out, false, false)
	col, err = ui.ReadColumn(b)
	require.NoError(t, err)
	assert.Equal(t, Column(6), col)
	_, err = ui.ReadColumn(b)
	assert.Error(t, err)
}

func TestRunNextMove(t *testing.T) {
	b := connectfour.New()
	var out bytes.Buffer
	ui := NewWithIO(strings.NewReader("0\n0\n0\n4\n"), &out, false, false)
	require.NoError(t, ui.RunNextMove(b))
	assert.Equal(t, 1, b.Height(3))
	assert.Equal(t, 2, strings.Count(out.String(), "Move #1"), "board should be printed again after 3 failures")
}

func TestPrint(t *testing.T) {
	b, err := connectfour.FromColumns("4343434")
	require.NoError(t, err)
	var out bytes.Buffer
	ui := NewWithIO(strings.NewReader(""), &out, false, false)
	ui.Print(b)
	ui.PrintWinner(b)
	text := out.String()
	assert.Contains(t, text, "Move #8")
	assert.Contains(t, text, " O  X ")
	assert.Contains(t, text, " 1  2  3  4  5  6  7 ")
	assert.Contains(t, text, "FIRST PLAYER WINS")
	assert.NotContains(t, text, "Turn to play")
}
