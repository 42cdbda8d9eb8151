package players_test

import (
	"context"
	"testing"

	"github.com/janpfeifer/gamesearch/internal/games/connectfour"
	"github.com/janpfeifer/gamesearch/internal/games/golf"
	"github.com/janpfeifer/gamesearch/internal/players"
	"github.com/janpfeifer/gamesearch/internal/searchers"
	"github.com/janpfeifer/gamesearch/internal/searchers/alphabeta"
	"github.com/janpfeifer/gamesearch/internal/searchers/bruteforce"
	"github.com/janpfeifer/gamesearch/internal/searchers/maximizing"
	"github.com/janpfeifer/gamesearch/internal/searchers/minimax"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Board = connectfour.Board
type Column = connectfour.Column

func TestNew(t *testing.T) {
	p, err := players.New[*Board, Column]("", connectfour.Heuristic{})
	require.NoError(t, err)
	ab, ok := p.Agent.(*alphabeta.Searcher[*Board, Column])
	require.True(t, ok, "default player should use alpha-beta, got %T", p.Agent)
	assert.Equal(t, 5, ab.MaxDepth())
	assert.Equal(t, players.DefaultPlayerConfig+"/Heuristic", p.String())

	p, err = players.New[*Board, Column]("bruteforce", connectfour.WinOnly{})
	require.NoError(t, err)
	bf, ok := p.Agent.(*bruteforce.Searcher[*Board, Column])
	require.True(t, ok)
	assert.Equal(t, bruteforce.DefaultMaxDepth, bf.MaxDepth())

	p, err = players.New[*Board, Column]("minimax, max_depth=7, seed=3", connectfour.WinOnly{})
	require.NoError(t, err)
	mm, ok := p.Agent.(*minimax.Searcher[*Board, Column])
	require.True(t, ok)
	assert.Equal(t, 7, mm.MaxDepth())

	g, err := players.New[*golf.Game, golf.Move]("maximizing,max_depth=3,give_up=false,tie_epsilon=1e-3", golf.NewEvaluator())
	require.NoError(t, err)
	ms, ok := g.Agent.(*maximizing.Searcher[*golf.Game, golf.Move])
	require.True(t, ok)
	assert.Equal(t, 3, ms.MaxDepth())

	// Randomness wraps the searcher.
	p, err = players.New[*Board, Column]("alphabeta,randomness=0.5,max_move_randomness=4,seed=1", connectfour.Heuristic{})
	require.NoError(t, err)
	_, ok = p.Agent.(*alphabeta.Searcher[*Board, Column])
	assert.False(t, ok)
}

func TestNewErrors(t *testing.T) {
	for _, config := range []string{
		"max_depth=3",
		"alphabeta,minimax",
		"alphabeta,unknown_key",
		"minimax,give_up",
		"bruteforce,tie_epsilon=0.1",
		"alphabeta,max_depth=0",
		"alphabeta,max_depth=deep",
		"maximizing,give_up=maybe",
		"alphabeta,randomness=-1",
		"minimax,seed=-3",
	} {
		_, err := players.New[*Board, Column](config, connectfour.Heuristic{})
		assert.Error(t, err, "config %q should fail", config)
	}
}

func TestPlay(t *testing.T) {
	b, err := connectfour.FromColumns("112233")
	require.NoError(t, err)
	p, err := players.New[*Board, Column]("minimax,max_depth=7", connectfour.WinOnly{})
	require.NoError(t, err)
	decision, err := p.Play(context.Background(), b)
	require.NoError(t, err)
	assert.Equal(t, searchers.Play(Column(3)), decision)
	p.Finalize()

	// Errors are reported with the player configuration.
	b, err = connectfour.FromColumns("4343434")
	require.NoError(t, err)
	_, err = p.Play(context.Background(), b)
	assert.ErrorIs(t, err, searchers.ErrNoLegalMoves)
	assert.ErrorContains(t, err, "minimax,max_depth=7")
}

func TestDefaultGiveUp(t *testing.T) {
	ctx := context.Background()
	defer func(giveUp bool) { players.DefaultGiveUp = giveUp }(players.DefaultGiveUp)

	// With a win-only evaluator all moves of the empty board tie with the static score.
	for _, config := range []string{players.DefaultPlayerConfig, "maximizing,max_depth=4"} {
		players.DefaultGiveUp = true
		p, err := players.New[*Board, Column](config, connectfour.WinOnly{})
		require.NoError(t, err)
		decision, err := p.Play(ctx, connectfour.New())
		require.NoError(t, err)
		assert.True(t, decision.IsSkip(), "config %q", config)

		players.DefaultGiveUp = false
		p, err = players.New[*Board, Column](config, connectfour.WinOnly{})
		require.NoError(t, err)
		decision, err = p.Play(ctx, connectfour.New())
		require.NoError(t, err)
		assert.False(t, decision.IsSkip(), "config %q", config)

		// An explicit give_up overrides the default.
		p, err = players.New[*Board, Column](config+",give_up", connectfour.WinOnly{})
		require.NoError(t, err)
		decision, err = p.Play(ctx, connectfour.New())
		require.NoError(t, err)
		assert.True(t, decision.IsSkip(), "config %q", config)
	}
}
