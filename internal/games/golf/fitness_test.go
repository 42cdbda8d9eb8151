package golf

import (
	"context"
	"testing"

	"github.com/janpfeifer/gamesearch/internal/searchers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeightsFromConfig(t *testing.T) {
	w, err := WeightsFromConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultWeights, w)

	w, err = WeightsFromConfig("cleared=0.5,playable=0.2")
	require.NoError(t, err)
	assert.Equal(t, Weights{Cleared: 0.5, Stock: DefaultWeights.Stock, Playable: 0.2}, w)

	for _, config := range []string{"cleared=0.95", "stock=-0.1", "cleared=abc", "speed=1"} {
		_, err = WeightsFromConfig(config)
		assert.Error(t, err, "config %q", config)
	}
}

// firstMoveAgent always plays the first legal move, and gives up when only drawing is possible.
type firstMoveAgent struct{}

func (firstMoveAgent) NextAction(_ context.Context, g *Game) (searchers.Decision[Move], error) {
	moves := g.LegalMoves()
	if len(moves) == 0 || moves[0] == Draw {
		return searchers.Skip[Move](), nil
	}
	return searchers.Play(moves[0]), nil
}

func (firstMoveAgent) ResetState() {}

func TestPlayDeal(t *testing.T) {
	ctx := context.Background()
	columns := make([][]Card, Columns)
	columns[0] = []Card{NewCard(7, 0), NewCard(6, 0)}
	g, err := FromLayout(columns, 0, NewCard(5, 0), nil)
	require.NoError(t, err)
	result, err := PlayDeal(ctx, firstMoveAgent{}, g)
	require.NoError(t, err)
	assert.Equal(t, DealResult{Won: true, Cleared: TableauSize, Moves: 2}, result)

	columns[0] = []Card{NewCard(13, 0)}
	g, err = FromLayout(columns, 0, NewCard(5, 0), []Card{NewCard(9, 0)})
	require.NoError(t, err)
	result, err = PlayDeal(ctx, firstMoveAgent{}, g)
	require.NoError(t, err)
	assert.True(t, result.Abandoned)
	assert.False(t, result.Won)
	assert.Equal(t, 0, result.Moves)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = PlayDeal(cancelled, firstMoveAgent{}, NewDeal(1))
	assert.ErrorIs(t, err, context.Canceled)
}
