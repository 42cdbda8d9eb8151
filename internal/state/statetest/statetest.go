// Package statetest provides helper functions to test implementations of state.State, and fixtures
// shared by the searchers tests.
package statetest

import (
	"math/rand/v2"
	"testing"

	"github.com/janpfeifer/gamesearch/internal/state"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

// Snapshot returns a comparable representation of all the fields (visible and hidden) of a state. The
// String() of the state, if it prints everything, is usually a good one.
type Snapshot[S any] func(s S) string

// CheckUndoExact walks randomly numSteps plies from s, and at every position it executes and undoes each
// of the legal moves, checking that the hash and the snapshot of the state are restored exactly.
//
// At the end it undoes the whole walk and checks the state is back to the original one.
// The walk stops earlier if the game finishes.
func CheckUndoExact[S state.State[M], M comparable](t *testing.T, s S, snapshot Snapshot[S], numSteps int, rng *rand.Rand) {
	t.Helper()
	initialHash, initialSnapshot := s.Hash(), snapshot(s)
	var walk []M
	for range numSteps {
		if state.IsTerminal[M](s) {
			break
		}
		moves := s.LegalMoves()
		if len(moves) == 0 {
			break
		}
		hash, snap := s.Hash(), snapshot(s)
		for _, move := range moves {
			require.NoError(t, s.ExecuteMove(move), "ExecuteMove(%v)", move)
			require.NoError(t, s.UndoMove(move), "UndoMove(%v)", move)
			require.Equal(t, hash, s.Hash(), "hash changed after execute/undo of %v", move)
			require.Equal(t, snap, snapshot(s), "state changed after execute/undo of %v", move)
		}
		move := moves[rng.IntN(len(moves))]
		require.NoError(t, s.ExecuteMove(move))
		walk = append(walk, move)
	}
	for ii := len(walk) - 1; ii >= 0; ii-- {
		require.NoError(t, s.UndoMove(walk[ii]), "UndoMove(%v) unwinding the walk", walk[ii])
	}
	require.Equal(t, initialHash, s.Hash(), "hash changed after unwinding %d moves", len(walk))
	require.Equal(t, initialSnapshot, snapshot(s), "state changed after unwinding %d moves", len(walk))
}

// PlayRandomly plays numMoves random moves on s (or fewer if the game finishes), and returns the moves
// played.
func PlayRandomly[S state.State[M], M comparable](s S, numMoves int, rng *rand.Rand) ([]M, error) {
	var played []M
	for range numMoves {
		if state.IsTerminal[M](s) {
			break
		}
		moves := s.LegalMoves()
		if len(moves) == 0 {
			break
		}
		move := moves[rng.IntN(len(moves))]
		if err := s.ExecuteMove(move); err != nil {
			return played, errors.Wrapf(err, "random play failed at move #%d", len(played))
		}
		played = append(played, move)
	}
	return played, nil
}
