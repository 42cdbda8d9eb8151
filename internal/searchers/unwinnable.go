package searchers

import (
	"github.com/chewxy/math32"
	"github.com/janpfeifer/gamesearch/internal/ai"
)

// Epsilons used by the unwinnability heuristic. They depend on the scale of the evaluator scores, so they
// are configurable per agent.
type Epsilons struct {
	// Improvement is how much the best lookahead score must improve over the static evaluation of the
	// position for the position to be considered winnable.
	Improvement float32

	// Tie is the tolerance under which two lookahead scores are considered the same.
	Tie float32
}

// DefaultEpsilons are tuned for evaluators with MaximumScore around 1.
var DefaultEpsilons = Epsilons{Improvement: 1e-4, Tie: 1e-6}

// IsUnwinnable is the heuristic used by the agents that can abandon a game. A position is judged unwinnable
// when:
//
//  1. the best lookahead score doesn't improve over the static evaluation of the position by more than
//     eps.Improvement; and
//  2. either every root move's lookahead score is the same (within eps.Tie), or the evaluator implements
//     ai.UnwinnableEstimator and it agrees.
//
// It is not a proof: false positives are an accepted tradeoff.
func IsUnwinnable[S any, M comparable](s S, scored []ScoredMove[M], static float32, evaluator ai.Evaluator[S], eps Epsilons) bool {
	if len(scored) == 0 {
		return true
	}
	best := scored[0].SearchScore
	for _, sm := range scored[1:] {
		best = max(best, sm.SearchScore)
	}
	if best > static+eps.Improvement {
		return false
	}
	allTied := true
	for _, sm := range scored {
		if math32.Abs(sm.SearchScore-best) > eps.Tie {
			allTied = false
			break
		}
	}
	if allTied {
		return true
	}
	if estimator, ok := ai.UnwinnableEstimatorOf(evaluator); ok {
		return estimator.IsLikelyUnwinnable(s)
	}
	return false
}
