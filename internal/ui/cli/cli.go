// Package cli implements a command-line UI for Connect Four.
package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/janpfeifer/gamesearch/internal/games/connectfour"
	"github.com/janpfeifer/gamesearch/internal/state"
	"github.com/pkg/errors"
	"golang.org/x/term"
)

type Board = connectfour.Board
type Column = connectfour.Column

// maxAttempts to read a valid command before printing the board again.
const maxAttempts = 3

var (
	// ErrQuit is returned by ReadColumn when the user asks to quit.
	ErrQuit = errors.New("user quit")

	errTooManyAttempts = errors.New("failed to read command 3 times")

	playerSymbols = [state.NumPlayers]string{"X", "O"}
	playerStyles  = [state.NumPlayers]lipgloss.Style{
		lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true),
	}
	boardStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("12"))
	winnerStyle = lipgloss.NewStyle().Background(lipgloss.Color("13")).Foreground(lipgloss.Color("0")).Padding(1, 2)
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("5"))
)

// UI reads the moves of a human player and prints the board.
type UI struct {
	color, clearScreen bool
	reader             *bufio.Reader
	out                io.Writer
}

// New creates a UI on the standard input and output.
func New(color bool, clearScreen bool) *UI {
	return NewWithIO(os.Stdin, os.Stdout, color, clearScreen)
}

// NewWithIO creates a UI reading commands from in and printing to out.
func NewWithIO(in io.Reader, out io.Writer, color bool, clearScreen bool) *UI {
	return &UI{
		color:       color,
		clearScreen: clearScreen,
		reader:      bufio.NewReader(in),
		out:         out,
	}
}

// terminalWidth returns the width of the output terminal, or 0 if it is not a terminal.
func (ui *UI) terminalWidth() int {
	f, ok := ui.out.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return 0
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0
	}
	return width
}

func (ui *UI) printCentered(block string) {
	indent := max(0, (ui.terminalWidth()-lipgloss.Width(block))/2)
	for _, line := range strings.Split(block, "\n") {
		if len(line) == 0 {
			fmt.Fprintln(ui.out)
			continue
		}
		fmt.Fprintf(ui.out, "%s%s\n", strings.Repeat(" ", indent), line)
	}
}

// PlayerName returns the (colored) name of the player, using the symbol of its discs.
func (ui *UI) PlayerName(player state.PlayerNum) string {
	return ui.render(player, fmt.Sprintf("%s (%s)", player, playerSymbols[player]))
}

func (ui *UI) render(player state.PlayerNum, s string) string {
	if !ui.color {
		return s
	}
	return playerStyles[player].Render(s)
}

// Print the move number, the board and who is to play.
func (ui *UI) Print(b *Board) {
	if ui.clearScreen {
		fmt.Fprint(ui.out, "\033c")
	}
	fmt.Fprintf(ui.out, "\nMove #%d\n\n", b.NumMoves()+1)
	ui.PrintBoard(b)
	if !b.IsFinished() {
		fmt.Fprintf(ui.out, "\n\tTurn to play: %s\n", ui.PlayerName(b.CurrentPlayer()))
	}
}

// PrintBoard prints the grid of discs, with the column numbers below.
func (ui *UI) PrintBoard(b *Board) {
	var sb strings.Builder
	for row := connectfour.Rows - 1; row >= 0; row-- {
		for col := range Column(connectfour.Columns) {
			player, ok := b.PlayerAt(col, row)
			if !ok {
				sb.WriteString(" · ")
				continue
			}
			sb.WriteString(" " + ui.render(player, playerSymbols[player]) + " ")
		}
		if row > 0 {
			sb.WriteByte('\n')
		}
	}
	grid := boardStyle.Render(sb.String())
	sb.Reset()
	sb.WriteByte(' ')
	for col := range connectfour.Columns {
		fmt.Fprintf(&sb, " %d ", col+1)
	}
	ui.printCentered(lipgloss.JoinVertical(lipgloss.Left, grid, sb.String()))
}

// PrintWinner prints the final result of a finished game.
func (ui *UI) PrintWinner(b *Board) {
	fmt.Fprintln(ui.out)
	winner := b.Winner()
	var msg string
	if winner == state.PlayerInvalid {
		msg = "*** DRAW: the board is full! ***"
	} else {
		msg = fmt.Sprintf("*** %s PLAYER WINS!! Congratulations! ***", strings.ToUpper(winner.String()))
	}
	if ui.color {
		msg = winnerStyle.Render(msg)
	}
	ui.printCentered(msg)
	fmt.Fprintln(ui.out)
}

// ReadColumn reads the column (1 to 7) the player to move wants to play. It asks again for invalid input,
// up to 3 times. It returns ErrQuit if the user types "quit" (or "q").
func (ui *UI) ReadColumn(b *Board) (Column, error) {
	for range maxAttempts {
		prompt := fmt.Sprintf("    %s column (1-%d) > ", ui.PlayerName(b.CurrentPlayer()), connectfour.Columns)
		if ui.color {
			prompt = promptStyle.Render(prompt)
		}
		fmt.Fprint(ui.out, prompt)
		text, err := ui.reader.ReadString('\n')
		text = strings.ToLower(strings.TrimSpace(text))
		if err != nil && (err != io.EOF || text == "") {
			return 0, errors.Wrap(err, "failed to read command")
		}
		if text == "q" || text == "quit" {
			return 0, ErrQuit
		}
		num, err := strconv.Atoi(text)
		if err != nil || num < 1 || num > connectfour.Columns {
			fmt.Fprintf(ui.out, "    * Sorry, %q is not a column number from 1 to %d\n", text, connectfour.Columns)
			continue
		}
		col := Column(num - 1)
		if b.Height(col) >= connectfour.Rows {
			fmt.Fprintf(ui.out, "    * Column %d is full\n", num)
			continue
		}
		return col, nil
	}
	return 0, errTooManyAttempts
}

// RunNextMove prints the board and executes the move read from the user. It returns ErrQuit if the user quits.
func (ui *UI) RunNextMove(b *Board) error {
	for {
		ui.Print(b)
		fmt.Fprintln(ui.out)
		col, err := ui.ReadColumn(b)
		if errors.Is(err, errTooManyAttempts) {
			continue
		}
		if err != nil {
			return err
		}
		return b.ExecuteMove(col)
	}
}
