package golf

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/janpfeifer/gamesearch/internal/state"
	"github.com/janpfeifer/gamesearch/internal/state/statetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// snapshot includes the hidden fields, and the undo history.
func snapshot(g *Game) string {
	return fmt.Sprintf("%+v", *g)
}

// layout builds a game with the given first column, and the remaining columns empty.
func layout(t *testing.T, column []Card, hidden int, waste Card, stock ...Card) *Game {
	t.Helper()
	columns := make([][]Card, Columns)
	columns[0] = column
	g, err := FromLayout(columns, hidden, waste, stock)
	require.NoError(t, err)
	return g
}

func TestDeal(t *testing.T) {
	g := NewDeal(1)
	assert.Equal(t, TableauSize, g.TableauCount())
	assert.Equal(t, 0, g.Cleared())
	assert.Equal(t, DeckSize-TableauSize-1, g.StockSize())
	for col := range Columns {
		assert.Equal(t, int8(ColumnDepth-1), g.hidden[col])
	}
	assert.Equal(t, NewDeal(1).String(), g.String())
	assert.Equal(t, NewDeal(1).Hash(), g.Hash())
	assert.NotEqual(t, NewDeal(2).Hash(), g.Hash())

	// All cards are dealt exactly once.
	seen := make(map[Card]bool)
	for _, cards := range g.columns {
		for _, c := range cards {
			seen[c] = true
		}
	}
	seen[g.WasteTop()] = true
	for _, c := range g.Stock() {
		seen[c] = true
	}
	assert.Len(t, seen, DeckSize)
}

func TestIncrementalHash(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	for seed := range uint64(10) {
		g := NewDeal(seed)
		initial := g.Hash()
		var played []Move
		for !state.IsTerminal[Move](g) {
			moves := g.LegalMoves()
			move := moves[rng.IntN(len(moves))]
			before := g.Hash()
			require.NoError(t, g.ExecuteMove(move))
			require.Equal(t, g.fullHash(), g.Hash(), "deal %d after %s", seed, move)
			require.NotEqual(t, before, g.Hash())
			played = append(played, move)
		}
		clone := g.Clone()
		assert.Equal(t, g.Hash(), clone.Hash())
		for ii := len(played) - 1; ii >= 0; ii-- {
			require.NoError(t, g.UndoMove(played[ii]))
			require.Equal(t, g.fullHash(), g.Hash())
		}
		assert.Equal(t, initial, g.Hash())
	}
}

func TestUndoExact(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 5))
	for seed := range uint64(20) {
		g := NewDeal(seed)
		statetest.CheckUndoExact[*Game, Move](t, g, snapshot, DeckSize, rng)
	}
}

func TestCloneIsDeep(t *testing.T) {
	g := NewDeal(7)
	_, err := statetest.PlayRandomly[*Game, Move](g, 5, rand.New(rand.NewPCG(1, 1)))
	require.NoError(t, err)
	before := snapshot(g)
	clone := g.Clone()
	assert.Equal(t, before, snapshot(clone))
	_, err = statetest.PlayRandomly[*Game, Move](clone, 10, rand.New(rand.NewPCG(2, 2)))
	require.NoError(t, err)
	assert.Equal(t, before, snapshot(g))
}

func TestRules(t *testing.T) {
	king, five, four, nine := NewCard(13, 0), NewCard(5, 0), NewCard(4, 0), NewCard(9, 0)
	g := layout(t, []Card{king, five}, 1, four, nine)
	assert.Equal(t, []Move{0, Draw}, g.LegalMoves())
	assert.Equal(t, "1: ## 5♠\n", g.String()[:len("1: ## 5♠\n")])
	assert.Greater(t, g.MovePriority(0), g.MovePriority(Draw))

	require.NoError(t, g.ExecuteMove(0))
	assert.Equal(t, five, g.WasteTop())
	assert.Equal(t, int8(0), g.hidden[0], "king should have been turned face-up")
	assert.Equal(t, []Move{Draw}, g.LegalMoves())
	assert.Equal(t, 1, g.TableauCount())
	require.NoError(t, g.UndoMove(0))
	assert.Equal(t, int8(1), g.hidden[0], "king should have been turned face-down again")
	assert.Equal(t, four, g.WasteTop())

	require.NoError(t, g.ExecuteMove(Draw))
	assert.Equal(t, nine, g.WasteTop())
	assert.Equal(t, 0, g.StockSize())
	assert.True(t, g.IsGameLost())
	assert.False(t, g.IsGameWon())
	assert.Empty(t, g.LegalMoves())
	assert.ErrorIs(t, g.ExecuteMove(Draw), state.ErrInvalidMove)
	assert.ErrorIs(t, g.ExecuteMove(0), state.ErrInvalidMove)
	assert.ErrorIs(t, g.ExecuteMove(1), state.ErrInvalidMove)
	require.NoError(t, g.UndoMove(Draw))
	assert.Equal(t, 1, g.StockSize())
}

func TestWin(t *testing.T) {
	g := layout(t, []Card{NewCard(5, 1)}, 0, NewCard(4, 0))
	assert.True(t, g.IsTerminatingMove(0))
	require.NoError(t, g.ExecuteMove(0))
	assert.True(t, g.IsGameWon())
	assert.False(t, g.IsGameLost())
	assert.Empty(t, g.LegalMoves())
	assert.Equal(t, TableauSize, g.Cleared())
}

func TestFromLayoutErrors(t *testing.T) {
	_, err := FromLayout(make([][]Card, 3), 0, 0, nil)
	assert.Error(t, err)
	columns := make([][]Card, Columns)
	columns[0] = []Card{NewCard(1, 0)}
	_, err = FromLayout(columns, 0, NewCard(1, 0), nil)
	assert.Error(t, err, "repeated card")
}

func TestEvaluator(t *testing.T) {
	e := NewEvaluator()
	king, four, nine, queen := NewCard(13, 0), NewCard(4, 0), NewCard(9, 0), NewCard(12, 0)

	g := layout(t, []Card{king}, 0, four, nine)
	assert.True(t, e.IsLikelyUnwinnable(g))
	g = layout(t, []Card{king}, 0, four, nine, queen)
	assert.False(t, e.IsLikelyUnwinnable(g))

	// Lost and won positions.
	g = layout(t, []Card{king}, 0, four)
	assert.Equal(t, float32(-1), e.EvaluateState(g, state.PlayerFirst))
	g = layout(t, []Card{NewCard(5, 1)}, 0, four)
	assert.Equal(t, float32(1), e.EvaluateMove(g, 0))
	assert.Equal(t, 1, g.TableauCount(), "EvaluateMove must restore the game")

	// Clearing cards improves the score, and it never reaches the maximum before winning.
	g = NewDeal(11)
	initial := e.EvaluateState(g, state.PlayerFirst)
	assert.Less(t, initial, float32(1))
	assert.Greater(t, initial, float32(0))
	g = layout(t, []Card{king, NewCard(5, 1)}, 0, four, nine)
	assert.Greater(t, e.EvaluateMove(g, 0), e.EvaluateMove(g, Draw))
}
