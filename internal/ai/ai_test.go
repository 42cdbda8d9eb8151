package ai_test

import (
	"testing"

	"github.com/janpfeifer/gamesearch/internal/ai"
	"github.com/janpfeifer/gamesearch/internal/games/connectfour"
	"github.com/janpfeifer/gamesearch/internal/games/golf"
	"github.com/janpfeifer/gamesearch/internal/state"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsEndGameAndScore(t *testing.T) {
	b, err := connectfour.FromColumns("4343434")
	require.NoError(t, err)
	isEnd, score := ai.IsEndGameAndScore[connectfour.Column](b, state.PlayerFirst, 10)
	assert.True(t, isEnd)
	assert.Equal(t, float32(10), score)
	_, score = ai.IsEndGameAndScore[connectfour.Column](b, state.PlayerSecond, 10)
	assert.Equal(t, float32(-10), score)

	isEnd, _ = ai.IsEndGameAndScore[connectfour.Column](connectfour.New(), state.PlayerFirst, 10)
	assert.False(t, isEnd)
}

func TestSquashScore(t *testing.T) {
	assert.Equal(t, float32(0), ai.SquashScore(0, 1))
	for _, x := range []float32{0.5, 3, 1e6} {
		squashed := ai.SquashScore(x, 1)
		assert.Greater(t, squashed, float32(0))
		assert.Less(t, squashed, float32(1))
		assert.Equal(t, -squashed, ai.SquashScore(-x, 1))
	}
}

func TestCapabilitiesThroughWrappers(t *testing.T) {
	counting := ai.NewCountingEvaluator[*golf.Game](golf.NewEvaluator())
	assert.Equal(t, "Counting(GolfEvaluator)", counting.String())
	_, ok := ai.MoveEvaluatorOf[*golf.Game, golf.Move](counting)
	assert.True(t, ok)
	_, ok = ai.UnwinnableEstimatorOf[*golf.Game](counting)
	assert.True(t, ok)

	counting.EvaluateState(golf.NewDeal(0), state.PlayerFirst)
	assert.Equal(t, 1, counting.Count)

	_, ok = ai.MoveEvaluatorOf[*connectfour.Board, connectfour.Column](connectfour.WinOnly{})
	assert.False(t, ok)
	_, ok = ai.UnwinnableEstimatorOf[*connectfour.Board](ai.NewCountingEvaluator[*connectfour.Board](connectfour.Heuristic{}))
	assert.False(t, ok)
}

// undoFailing is a golf game whose moves can't be undone.
type undoFailing struct {
	*golf.Game
}

func (u undoFailing) UndoMove(golf.Move) error { return errors.New("undo not supported") }

func TestScoreAfterMove(t *testing.T) {
	g := golf.NewDeal(1)
	before := g.String()
	scored := func() float32 {
		assert.Equal(t, golf.DeckSize-golf.TableauSize-2, g.StockSize(), "move should be executed while scoring")
		return 0.5
	}
	assert.Equal(t, float32(0.5), ai.ScoreAfterMove[golf.Move](g, golf.Draw, -1, scored))
	assert.Equal(t, before, g.String())

	// Invalid moves are not scored.
	called := false
	score := ai.ScoreAfterMove[golf.Move](g, golf.Move(golf.Columns), -1, func() float32 {
		called = true
		return 0
	})
	assert.Equal(t, float32(-1), score)
	assert.False(t, called)

	// Undo failures are logged, the score is still returned.
	assert.Equal(t, float32(0.5), ai.ScoreAfterMove[golf.Move](undoFailing{g}, golf.Draw, -1, scored))
	assert.NotEqual(t, before, g.String())
}
