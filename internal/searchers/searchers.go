// Package searchers defines the API shared by all search agents, and the utilities they share: the
// Decision returned to callers, scored move records, move ordering, the unwinnability heuristic and
// search statistics.
//
// The agents themselves are implemented in the sub-packages bruteforce, alphabeta, maximizing and minimax.
package searchers

import (
	"context"
	"fmt"

	"github.com/janpfeifer/gamesearch/internal/ai"
	"github.com/pkg/errors"
)

// ErrNoLegalMoves is returned by agents whose contract requires always returning a playable move, when
// the position has none.
var ErrNoLegalMoves = errors.New("no legal moves")

// Agent is the interface any of the search algorithms must adhere to be valid.
//
// An Agent owns its memoization state (transposition table, scratch buffers) and is not safe for concurrent
// use. Independent agents can run concurrently.
type Agent[S any, M comparable] interface {
	// NextAction searches s and returns the decision of the agent: either the move to play or to abandon
	// the game.
	//
	// The state is mutated during the search, and restored to its original contents before returning.
	// Cancellation of ctx is checked between iterations of the search (and between root moves), in
	// which case the best move found so far is returned, with no error.
	NextAction(ctx context.Context, s S) (Decision[M], error)

	// ResetState clears memoized search state. It should be called between independent games.
	ResetState()
}

// Configurable is implemented by agents whose search depth and evaluator can be changed between searches.
type Configurable[S any] interface {
	MaxDepth() int
	SetMaxDepth(maxDepth int)
	SetEvaluator(evaluator ai.Evaluator[S])
}

// RootScorer is implemented by agents that keep the scores of the root moves of their last search.
type RootScorer[M comparable] interface {
	// LastScores returns the root moves scored by the last call to NextAction, or nil if they are not
	// available. The returned slice is owned by the caller.
	LastScores() []ScoredMove[M]
}

// Decision is the result of a search: either play a move, or skip (abandon) the game.
// It is immutable.
type Decision[M comparable] struct {
	move M
	skip bool
}

// Play returns a Decision to play the given move.
func Play[M comparable](move M) Decision[M] {
	return Decision[M]{move: move}
}

// Skip returns a Decision to abandon the game.
func Skip[M comparable]() Decision[M] {
	return Decision[M]{skip: true}
}

// IsSkip returns whether the agent elects to abandon the game.
func (d Decision[M]) IsSkip() bool {
	return d.skip
}

// Move returns the move to play. It returns the zero value if IsSkip.
func (d Decision[M]) Move() M {
	return d.move
}

// String implements fmt.Stringer.
func (d Decision[M]) String() string {
	if d.skip {
		return "Skip"
	}
	return fmt.Sprintf("Play(%v)", d.move)
}

// CheckDepth returns an error if maxDepth is not valid for a search.
func CheckDepth(maxDepth int) error {
	if maxDepth < 1 {
		return errors.Errorf("invalid max depth %d: it must be >= 1", maxDepth)
	}
	return nil
}
