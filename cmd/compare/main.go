// compare runs a tournament of Connect Four matches between two AI configurations.
//
// Players alternate who plays first, and each match starts from a few random moves, so the matches are not
// all the same.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand/v2"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/gomlx/exceptions"
	"github.com/janpfeifer/gamesearch/internal/ai"
	"github.com/janpfeifer/gamesearch/internal/games/connectfour"
	"github.com/janpfeifer/gamesearch/internal/players"
	"github.com/janpfeifer/gamesearch/internal/profilers"
	"github.com/janpfeifer/gamesearch/internal/state"
	"github.com/janpfeifer/gamesearch/internal/ui/cli"
	"github.com/janpfeifer/gamesearch/internal/ui/spinning"
	"github.com/janpfeifer/must"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"k8s.io/klog/v2"
)

type Board = connectfour.Board
type Column = connectfour.Column
type Player = players.Player[*Board, Column]

var (
	flagPlayer1Config = flag.String("ai1", "", "1st player configuration.")
	flagPlayer2Config = flag.String("ai2", "", "2nd player configuration.")
	flagEval1         = flag.String("eval1", "heuristic", "Evaluator of the 1st player: heuristic or winonly.")
	flagEval2         = flag.String("eval2", "heuristic", "Evaluator of the 2nd player: heuristic or winonly.")
	flagNumMatches    = flag.Int("num_matches", 100, "Number of matches to play.")
	flagRandomMoves   = flag.Int("random_moves", 2, "Number of random moves played at the start of each match.")
	flagSeed          = flag.Uint64("seed", 0, "Seed for the random opening moves.")
	flagParallelism   = flag.Int("parallelism", 0, "If > 0 ignore GOMAXPROCS and play "+
		"these many matches simultaneously.")
	flagPrintSteps = flag.Bool("print_steps", false, "Print board at each step. "+
		"Very verbose, and you probably want to set -parallelism to 1.")
)

// globalCtx used everywhere. It is cancelled when the program is about to exit either by
// an interrupt (ctrl+C) or by reaching the end.
var globalCtx = context.Background()

func main() {
	klog.InitFlags(nil)
	flag.Parse()

	// Tied root scores are common in Connect Four (e.g. -eval=winonly), so players only resign
	// if configured with give_up.
	players.DefaultGiveUp = false

	if *flagPlayer1Config == "" || *flagPlayer2Config == "" {
		klog.Fatal("You must configure both players to compare with flags -ai1 and -ai2")
	}

	// Capture Control+C
	var globalCancel func()
	globalCtx, globalCancel = context.WithCancel(spinning.SafeInterrupt(context.Background(), 5*time.Second))
	defer globalCancel()

	// Profilers: HTTP profiler server and CPU profile.
	profiler := must.M1(profilers.Setup(globalCtx))
	defer profiler.OnQuit()

	// Check configurations before starting.
	must.M1(createAIPlayers())
	must.M(runMatches(globalCtx))
}

// createAIPlayers creates a new pair of players: agents are not safe for concurrent use, so each match
// gets its own.
func createAIPlayers() (aiPlayers [2]*Player, err error) {
	for playerIdx, config := range [2]string{*flagPlayer1Config, *flagPlayer2Config} {
		var evaluator ai.Evaluator[*Board]
		evaluator, err = connectfour.NewEvaluator([2]string{*flagEval1, *flagEval2}[playerIdx])
		if err != nil {
			return
		}
		klog.V(1).Infof("Creating AI for player #%d from %q", playerIdx, config)
		aiPlayers[playerIdx], err = players.New[*Board, Column](config, evaluator)
		if err != nil {
			return
		}
	}
	return
}

type Results struct {
	mu                   sync.Mutex
	start                time.Time
	winsAs1st, winsAs2nd [2]int
	resigns              [2]int
	draws                [2]int
	played, total        int
}

func (r *Results) String() string {
	var parts []string
	parts = append(parts, fmt.Sprintf("Played %d of %d: ", r.played, r.total))
	for playerIdx := range 2 {
		parts = append(parts,
			fmt.Sprintf("AI-%d: %d Wins (1st: %d, 2nd: %d, %d resigns) / ",
				playerIdx+1, r.winsAs1st[playerIdx]+r.winsAs2nd[playerIdx],
				r.winsAs1st[playerIdx], r.winsAs2nd[playerIdx], r.resigns[playerIdx]))
	}
	parts = append(parts, fmt.Sprintf("%d draws (%d AI-1 as 1st, %d AI-2 as 1st) - ",
		r.draws[0]+r.draws[1], r.draws[0], r.draws[1]))
	parts = append(parts, time.Since(r.start).Round(time.Millisecond).String())
	parts = append(parts, "\033[0K")
	return strings.Join(parts, "")
}

// matchResult from the perspective of the players of the match.
type matchResult struct {
	winner   state.PlayerNum
	resigned bool
}

func runMatches(ctx context.Context) error {
	r := &Results{
		start: time.Now(),
		total: *flagNumMatches,
	}
	var wg errgroup.Group
	wg.SetLimit(getParallelism())
	fmt.Printf("\r%s", r)

	for matchIdx := range r.total {
		wg.Go(func() error {
			aiPlayers, err := createAIPlayers()
			if err != nil {
				return err
			}
			isSwapped := matchIdx%2 == 1
			player1st := 0
			if isSwapped {
				aiPlayers[0], aiPlayers[1] = aiPlayers[1], aiPlayers[0]
				player1st = 1
			}
			var result matchResult
			err = exceptions.TryCatch[error](func() {
				result = must.M1(runMatch(ctx, matchIdx, aiPlayers))
			})
			if err != nil {
				return errors.WithMessagef(err, "match #%d failed", matchIdx)
			}
			if ctx.Err() != nil {
				return nil
			}

			// Record winner.
			r.mu.Lock()
			defer r.mu.Unlock()
			if result.winner == state.PlayerInvalid {
				r.draws[player1st]++
			} else {
				winner := int(result.winner)
				if isSwapped {
					winner = 1 - winner
				}
				if winner == player1st {
					r.winsAs1st[winner]++
				} else {
					r.winsAs2nd[winner]++
				}
				if result.resigned {
					r.resigns[1-winner]++
				}
			}
			r.played++
			fmt.Printf("\r%s", r)
			return nil
		})
	}
	err := wg.Wait()
	fmt.Printf("\r%s", r)
	fmt.Println()
	if ctx.Err() != nil {
		fmt.Printf("Interrupted: %s\n", ctx.Err())
		return nil
	}
	return err
}

var (
	stepUI   = cli.New(true, false)
	muStepUI sync.Mutex
)

func runMatch(ctx context.Context, matchNum int, aiPlayers [2]*Player) (matchResult, error) {
	noResult := matchResult{winner: state.PlayerInvalid}
	if ctx.Err() != nil {
		// Already interrupted.
		return noResult, nil
	}
	if klog.V(1).Enabled() {
		klog.Infof("Starting match %d", matchNum)
		defer klog.Infof("Finished match %d", matchNum)
	}
	matchName := fmt.Sprintf("Match-%05d", matchNum)
	board := connectfour.New()
	// Both matches of a pair (with players swapped) start from the same random moves.
	rng := rand.New(rand.NewPCG(*flagSeed, uint64(matchNum/2)))
	for range *flagRandomMoves {
		if board.IsFinished() {
			break
		}
		moves := board.LegalMoves()
		if err := board.ExecuteMove(moves[rng.IntN(len(moves))]); err != nil {
			return noResult, err
		}
	}

	for !board.IsFinished() {
		if ctx.Err() != nil {
			klog.V(1).Infof("%s interrupted: %s", matchName, ctx.Err())
			return noResult, nil
		}
		playerNum := board.CurrentPlayer()
		decision, err := aiPlayers[playerNum].Play(ctx, board)
		if err != nil {
			return noResult, err
		}
		if decision.IsSkip() {
			klog.V(1).Infof("%s: %s resigned at move #%d", matchName, playerNum, board.NumMoves()+1)
			return matchResult{winner: playerNum.Opponent(), resigned: true}, nil
		}
		if err := board.ExecuteMove(decision.Move()); err != nil {
			return noResult, err
		}
		if *flagPrintSteps {
			muStepUI.Lock()
			fmt.Printf("%s, %s played %s\n", matchName, stepUI.PlayerName(playerNum), decision.Move())
			stepUI.PrintBoard(board)
			fmt.Println("------------------")
			muStepUI.Unlock()
		}
	}
	for _, p := range aiPlayers {
		p.Finalize()
	}
	return matchResult{winner: board.Winner()}, nil
}

// getParallelism returns the parallelism.
func getParallelism() (parallelism int) {
	parallelism = runtime.GOMAXPROCS(0)
	if *flagParallelism > 0 {
		parallelism = *flagParallelism
	}
	return
}
