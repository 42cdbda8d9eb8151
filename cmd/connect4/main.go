// connect4 plays Connect Four in the terminal: human vs AI, human vs human (-hotseat) or AI vs AI (-watch).
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/gomlx/exceptions"
	"github.com/janpfeifer/gamesearch/internal/games/connectfour"
	"github.com/janpfeifer/gamesearch/internal/players"
	"github.com/janpfeifer/gamesearch/internal/profilers"
	"github.com/janpfeifer/gamesearch/internal/state"
	"github.com/janpfeifer/gamesearch/internal/ui/cli"
	"github.com/janpfeifer/gamesearch/internal/ui/spinning"
	"github.com/janpfeifer/must"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

type Board = connectfour.Board
type Column = connectfour.Column
type Player = players.Player[*Board, Column]

var (
	flagHotseat   = flag.Bool("hotseat", false, "Hotseat match: human vs human")
	flagWatch     = flag.Bool("watch", false, "Watch mode: AI vs AI playing")
	flagFirst     = flag.String("first", "", "Who plays first: human or ai. Default is random.")
	flagAIConfig  = flag.String("ai", "alphabeta,max_depth=7", "AI configuration against which to play")
	flagAIConfig2 = flag.String("ai2", "maximizing,max_depth=6", "Second AI configuration, if playing AI vs AI with -watch")
	flagEval      = flag.String("eval", "heuristic", "Evaluator used by the AI: heuristic or winonly")
	flagStart     = flag.String("start", "", "Sequence of columns (1 to 7) played before the match starts, e.g. \"4435\"")
	flagMaxTime   = flag.Duration("max_time", 0, "If > 0, limits the time the AI takes for each move: "+
		"the best move of the last completed search iteration is played.")
	flagNoColor = flag.Bool("no_color", false, "Disables colors in the terminal")
	flagQuiet   = flag.Bool("quiet", false, "Quiet mode for when watching AI play: only the moves and the final board are printed.")

	// aiPlayers: if nil, it's a human playing.
	aiPlayers [state.NumPlayers]*Player

	globalCtx = context.Background()
)

func main() {
	klog.InitFlags(nil)
	flag.Parse()

	// Tied root scores are common in Connect Four (e.g. -eval=winonly), so players only resign
	// if configured with give_up.
	players.DefaultGiveUp = false

	// Capture Control+C
	var cancel func()
	globalCtx, cancel = context.WithCancel(spinning.SafeInterrupt(context.Background(), 3*time.Second))
	defer cancel()
	profiler := must.M1(profilers.Setup(globalCtx))
	defer profiler.OnQuit()

	createPlayers()
	board := must.M1(connectfour.FromColumns(*flagStart))
	ui := cli.New(!*flagNoColor, false)
	if err := runMatch(ui, board); err != nil {
		if errors.Is(err, cli.ErrQuit) {
			fmt.Println("Bye!")
			return
		}
		klog.Exitf("Failed to run match: %+v", err)
	}
}

// runMatch until the board is finished, or a player resigns.
func runMatch(ui *cli.UI, board *Board) error {
	for !board.IsFinished() {
		aiPlayer := aiPlayers[board.CurrentPlayer()]
		if aiPlayer == nil {
			if err := ui.RunNextMove(board); err != nil {
				return err
			}
			continue
		}

		// AI plays.
		if *flagWatch && !*flagQuiet {
			ui.Print(board)
		}
		fmt.Printf("\t%s (%s) thinking ...", ui.PlayerName(board.CurrentPlayer()), aiPlayer)
		ctx, cancel := globalCtx, context.CancelFunc(func() {})
		if *flagMaxTime > 0 {
			ctx, cancel = context.WithTimeout(globalCtx, *flagMaxTime)
		}
		s := spinning.New(ctx)
		decision, err := aiPlayer.Play(ctx, board)
		s.Done()
		cancel()
		if err != nil {
			return err
		}
		if globalCtx.Err() != nil {
			return errors.Wrap(globalCtx.Err(), "match interrupted")
		}
		if decision.IsSkip() {
			fmt.Printf(" resigns.\n\n")
			ui.Print(board)
			fmt.Printf("\n\t%s resigned: %s wins!\n\n", ui.PlayerName(board.CurrentPlayer()),
				ui.PlayerName(board.CurrentPlayer().Opponent()))
			return nil
		}
		fmt.Printf(" plays %s\n\n", decision.Move())
		if err := board.ExecuteMove(decision.Move()); err != nil {
			return err
		}
	}
	ui.Print(board)
	ui.PrintWinner(board)
	return nil
}

// createPlayers in aiPlayers.
func createPlayers() {
	if *flagHotseat && *flagWatch {
		klog.Fatalf("-hotseat and -watch cannot be used together")
	}
	if *flagHotseat {
		// Both players are human, nothing to do.
		return
	}
	evaluator := must.M1(connectfour.NewEvaluator(*flagEval))

	var aiPlayerNum state.PlayerNum
	if !*flagWatch {
		switch strings.ToLower(*flagFirst) {
		case "human":
			aiPlayerNum = state.PlayerSecond
		case "ai":
			aiPlayerNum = state.PlayerFirst
		case "":
			aiPlayerNum = state.PlayerNum(rand.IntN(2))
		default:
			exceptions.Panicf("invalid -first=%q, only valid values are \"human\" or \"ai\"", *flagFirst)
		}
	}
	aiPlayers[aiPlayerNum] = must.M1(players.New[*Board, Column](*flagAIConfig, evaluator))
	if !*flagWatch {
		return
	}

	// Create second AI.
	aiPlayers[aiPlayerNum.Opponent()] = must.M1(players.New[*Board, Column](*flagAIConfig2, evaluator))
}
