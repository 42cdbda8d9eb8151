package minimax_test

import (
	"context"
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/janpfeifer/gamesearch/internal/ai"
	"github.com/janpfeifer/gamesearch/internal/games/connectfour"
	"github.com/janpfeifer/gamesearch/internal/searchers"
	"github.com/janpfeifer/gamesearch/internal/searchers/bruteforce"
	"github.com/janpfeifer/gamesearch/internal/searchers/minimax"
	"github.com/janpfeifer/gamesearch/internal/state/statetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/klog/v2"
)

func init() {
	klog.InitFlags(nil)
}

type Board = connectfour.Board
type Column = connectfour.Column

func mustBoard(t *testing.T, sequence string) *Board {
	t.Helper()
	b, err := connectfour.FromColumns(sequence)
	require.NoError(t, err)
	return b
}

func TestWinningColumn(t *testing.T) {
	ctx := context.Background()

	// First player to move, with three in a row in the bottom row and the fourth cell open.
	b := mustBoard(t, "112233")
	before := b.String()
	mm := minimax.New[*Board, Column](connectfour.WinOnly{}).WithMaxDepth(7)
	decision, err := mm.NextAction(ctx, b)
	require.NoError(t, err)
	assert.Equal(t, searchers.Play(Column(3)), decision)
	assert.Equal(t, before, b.String(), "state must not be modified")

	// Second player to move must block.
	b = mustBoard(t, "11223")
	mm = minimax.New[*Board, Column](connectfour.WinOnly{}).WithMaxDepth(3)
	decision, err = mm.NextAction(ctx, b)
	require.NoError(t, err)
	assert.Equal(t, searchers.Play(Column(3)), decision)
	for _, sm := range mm.LastScores() {
		if sm.Move != 3 {
			assert.Equal(t, float32(-connectfour.MaxScore), sm.SearchScore, "move %s", sm)
			assert.Equal(t, 2, sm.WinDepth)
		}
	}
}

func TestDoubleThreat(t *testing.T) {
	// First player has two discs in the bottom row: playing the 4th column opens three in a row with both
	// ends free, which the opponent cannot block. No move wins immediately.
	b := mustBoard(t, "2737")
	mm := minimax.New[*Board, Column](connectfour.WinOnly{}).WithMaxDepth(7).WithSeed(5)
	decision, err := mm.NextAction(context.Background(), b)
	require.NoError(t, err)
	assert.Equal(t, searchers.Play(Column(3)), decision)
	assert.Equal(t, 3, mm.Stats().Iterations, "search should stop once the win is proven")
	for _, sm := range mm.LastScores() {
		if sm.Move == 3 {
			assert.Equal(t, float32(connectfour.MaxScore), sm.SearchScore)
			assert.Equal(t, 3, sm.WinDepth)
		} else {
			assert.Less(t, sm.SearchScore, float32(connectfour.MaxScore), "move %s", sm)
		}
	}
}

func TestEquivalenceWithBruteForce(t *testing.T) {
	ctx := context.Background()
	rng := rand.New(rand.NewPCG(3, 4))
	for ii := range 6 {
		b := connectfour.New()
		_, err := statetest.PlayRandomly[*Board, Column](b, 3+ii*3, rng)
		require.NoError(t, err)
		if b.IsFinished() {
			continue
		}
		for depth := 1; depth <= 4; depth++ {
			t.Run(fmt.Sprintf("position-%d-depth-%d", ii, depth), func(t *testing.T) {
				bf := bruteforce.New[*Board, Column](connectfour.Heuristic{}).WithMaxDepth(depth)
				_, err := bf.NextAction(ctx, b)
				require.NoError(t, err)
				bfScores := bf.LastScores()
				bfBest := bfScores[searchers.BestScoredMove(bfScores, connectfour.MaxScore)]

				mm := minimax.New[*Board, Column](connectfour.Heuristic{}).WithMaxDepth(depth).WithSeed(1)
				decision, err := mm.NextAction(ctx, b)
				require.NoError(t, err)
				for _, sm := range bfScores {
					if sm.Move == decision.Move() {
						assert.InDelta(t, bfBest.SearchScore, sm.SearchScore, 1e-3,
							"minimax chose %v, brute-force best is %s, board:\n%s", sm.Move, bfBest, b)
					}
				}
			})
		}
	}
}

func TestTieBreaking(t *testing.T) {
	ctx := context.Background()
	mm := minimax.New[*Board, Column](connectfour.WinOnly{}).WithMaxDepth(2).WithSeed(42)
	b := connectfour.New()

	// All moves are tied with a score of 0, so the choice is random.
	var decisions []searchers.Decision[Column]
	distinct := make(map[Column]bool)
	for range 20 {
		decision, err := mm.NextAction(ctx, b)
		require.NoError(t, err)
		decisions = append(decisions, decision)
		distinct[decision.Move()] = true
	}
	assert.Greater(t, len(distinct), 1)
	for _, sm := range mm.LastScores() {
		assert.Equal(t, float32(0), sm.SearchScore)
	}

	// Reset re-seeds the tie-breaking, so decisions are repeated.
	mm.ResetState()
	for ii := range 20 {
		decision, err := mm.NextAction(ctx, b)
		require.NoError(t, err)
		assert.Equal(t, decisions[ii], decision, "decision #%d", ii)
	}
}

func TestNoLegalMoves(t *testing.T) {
	mm := minimax.New[*Board, Column](connectfour.WinOnly{})
	_, err := mm.NextAction(context.Background(), mustBoard(t, "4343434"))
	assert.ErrorIs(t, err, searchers.ErrNoLegalMoves)
}

func TestTerminalBaseCase(t *testing.T) {
	counting := ai.NewCountingEvaluator[*Board](connectfour.Heuristic{})
	mm := minimax.New[*Board, Column](counting)
	b := mustBoard(t, "4")
	score, err := mm.EvaluateWithLookahead(b, 0)
	require.NoError(t, err)
	assert.Equal(t, connectfour.Heuristic{}.EvaluateState(b, b.CurrentPlayer()), score)
	assert.Equal(t, 1, counting.Count)

	counting.Count = 0
	b = mustBoard(t, "4343434")
	score, err = mm.EvaluateWithLookahead(b, 6)
	require.NoError(t, err)
	assert.Equal(t, float32(-connectfour.MaxScore), score)
	assert.Equal(t, 1, counting.Count)
}

func TestCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	mm := minimax.New[*Board, Column](connectfour.Heuristic{}).WithMaxDepth(9)
	decision, err := mm.NextAction(ctx, connectfour.New())
	require.NoError(t, err)
	assert.Equal(t, searchers.Play(Column(3)), decision)
	assert.Equal(t, 0, mm.Stats().Iterations)
}
