package maximizing_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/janpfeifer/gamesearch/internal/ai"
	"github.com/janpfeifer/gamesearch/internal/games/connectfour"
	"github.com/janpfeifer/gamesearch/internal/games/golf"
	"github.com/janpfeifer/gamesearch/internal/searchers"
	"github.com/janpfeifer/gamesearch/internal/searchers/bruteforce"
	"github.com/janpfeifer/gamesearch/internal/searchers/maximizing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/klog/v2"
)

func init() {
	klog.InitFlags(nil)
}

type Board = connectfour.Board
type Column = connectfour.Column

func TestForcedLossOrdering(t *testing.T) {
	// Second player (O) to move:
	//
	//   .......
	//   .......
	//   .......
	//   ..X.O..
	//   OXOXXX.
	//   OOOXOXX
	//
	// X threatens to complete 4 in the second row, on column 7. Any other move loses in 2 plies, and blocking
	// on column 7 loses in 4 plies.
	b, err := connectfour.FromColumns("655173622345314")
	require.NoError(t, err)
	before := b.String()

	ms := maximizing.New[*Board, Column](connectfour.WinOnly{}).WithMaxDepth(6).WithGiveUp(false)
	decision, err := ms.NextAction(context.Background(), b)
	require.NoError(t, err)
	assert.Equal(t, searchers.Play(Column(6)), decision)
	assert.Equal(t, before, b.String())

	// All other moves lose faster, so they were discarded as soon as the slower loss was proven, at depth 4.
	assert.Equal(t, 4, ms.Stats().Iterations)
	scores := ms.LastScores()
	require.Len(t, scores, 1)
	assert.Equal(t, Column(6), scores[0].Move)
	assert.Equal(t, 4, scores[0].WinDepth)
	assert.Equal(t, float32(-connectfour.MaxScore), scores[0].SearchScore)
}

func TestProvenWin(t *testing.T) {
	b, err := connectfour.FromColumns("434343")
	require.NoError(t, err)
	ms := maximizing.New[*Board, Column](connectfour.Heuristic{}).WithMaxDepth(5)
	decision, err := ms.NextAction(context.Background(), b)
	require.NoError(t, err)
	assert.Equal(t, searchers.Play(Column(3)), decision)
	assert.Equal(t, 1, ms.Stats().Iterations)
}

func TestTerminatingMove(t *testing.T) {
	// Playing the last card of the tableau is a terminating move: it is scored without executing it.
	columns := make([][]golf.Card, golf.Columns)
	columns[0] = []golf.Card{golf.NewCard(5, 1)}
	g, err := golf.FromLayout(columns, 0, golf.NewCard(4, 0), []golf.Card{golf.NewCard(13, 0), golf.NewCard(9, 0)})
	require.NoError(t, err)
	ms := maximizing.New[*golf.Game, golf.Move](golf.NewEvaluator()).WithMaxDepth(3)
	decision, err := ms.NextAction(context.Background(), g)
	require.NoError(t, err)
	assert.Equal(t, searchers.Play(golf.Move(0)), decision)
	assert.Equal(t, 1, ms.Stats().Nodes, "only the draw should have been executed")
}

func TestBestScoreMatchesBruteForce(t *testing.T) {
	ctx := context.Background()
	evaluator := golf.NewEvaluator()
	for seed := range uint64(6) {
		for depth := 1; depth <= 5; depth++ {
			t.Run(fmt.Sprintf("seed=%d-depth=%d", seed, depth), func(t *testing.T) {
				g := golf.NewDeal(seed)
				bf := bruteforce.New[*golf.Game, golf.Move](evaluator).WithMaxDepth(depth)
				_, err := bf.NextAction(ctx, g)
				require.NoError(t, err)
				bfScores := bf.LastScores()
				bfBest := bfScores[searchers.BestScoredMove(bfScores, 1)]

				ms := maximizing.New[*golf.Game, golf.Move](evaluator).WithMaxDepth(depth).WithGiveUp(false)
				decision, err := ms.NextAction(ctx, g)
				require.NoError(t, err)
				require.False(t, decision.IsSkip())
				for _, sm := range bfScores {
					if sm.Move == decision.Move() {
						assert.Equal(t, bfBest.SearchScore, sm.SearchScore, "maximizing chose %v, brute-force best is %s", sm.Move, bfBest)
					}
				}
			})
		}
	}
}

func TestTerminalBaseCase(t *testing.T) {
	counting := ai.NewCountingEvaluator[*golf.Game](golf.NewEvaluator())
	ms := maximizing.New[*golf.Game, golf.Move](counting)
	g := golf.NewDeal(1)
	score, err := ms.EvaluateWithLookahead(g, 0)
	require.NoError(t, err)
	assert.Equal(t, golf.NewEvaluator().EvaluateState(g, 0), score)
	assert.Equal(t, 1, counting.Count)

	// Won game.
	columns := make([][]golf.Card, golf.Columns)
	columns[0] = []golf.Card{golf.NewCard(5, 1)}
	g, err = golf.FromLayout(columns, 0, golf.NewCard(4, 0), nil)
	require.NoError(t, err)
	require.NoError(t, g.ExecuteMove(0))
	counting.Count = 0
	score, err = ms.EvaluateWithLookahead(g, 4)
	require.NoError(t, err)
	assert.Equal(t, float32(1), score)
	assert.Equal(t, 1, counting.Count)
}

func TestSkipAndReset(t *testing.T) {
	ctx := context.Background()
	columns := make([][]golf.Card, golf.Columns)
	columns[0] = []golf.Card{golf.NewCard(13, 0)}
	g, err := golf.FromLayout(columns, 0, golf.NewCard(4, 0), []golf.Card{golf.NewCard(9, 0), golf.NewCard(2, 0)})
	require.NoError(t, err)

	ms := maximizing.New[*golf.Game, golf.Move](golf.NewEvaluator())
	decision, err := ms.NextAction(ctx, g)
	require.NoError(t, err)
	assert.True(t, decision.IsSkip(), "game can't be won")

	// No legal moves.
	require.NoError(t, g.ExecuteMove(golf.Draw))
	require.NoError(t, g.ExecuteMove(golf.Draw))
	decision, err = ms.NextAction(ctx, g)
	require.NoError(t, err)
	assert.True(t, decision.IsSkip())

	// Idempotent reset.
	g = golf.NewDeal(5)
	ms.WithGiveUp(false).WithMaxDepth(6)
	first, err := ms.NextAction(ctx, g)
	require.NoError(t, err)
	firstScores := ms.LastScores()
	ms.ResetState()
	assert.Equal(t, 0, ms.Table().Len())
	second, err := ms.NextAction(ctx, g)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, firstScores, ms.LastScores())
	assert.Equal(t, golf.NewDeal(5).String(), g.String())
}

func TestCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ms := maximizing.New[*Board, Column](connectfour.Heuristic{}).WithMaxDepth(8)
	decision, err := ms.NextAction(ctx, connectfour.New())
	require.NoError(t, err)
	assert.Equal(t, searchers.Play(Column(3)), decision)
	assert.Equal(t, 0, ms.Stats().Iterations)
}
