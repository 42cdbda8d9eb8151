// Package bruteforce implements a fixed-depth full-width search, with no pruning and no memoization.
//
// It is too slow for anything but shallow depths, and it is used as the baseline the other searchers
// are compared against.
package bruteforce

import (
	"context"

	"github.com/chewxy/math32"
	"github.com/janpfeifer/gamesearch/internal/ai"
	"github.com/janpfeifer/gamesearch/internal/searchers"
	"github.com/janpfeifer/gamesearch/internal/state"
	"k8s.io/klog/v2"
)

// DefaultMaxDepth for search.
const DefaultMaxDepth = 3

// Searcher implements searchers.Agent with a brute-force negamax search.
type Searcher[S state.State[M], M comparable] struct {
	maxDepth  int
	evaluator ai.Evaluator[S]
	stats     searchers.Stats

	lastScores []searchers.ScoredMove[M]
}

// New returns a brute-force searcher using the given evaluator. See the With... methods for optional
// configuration.
func New[S state.State[M], M comparable](evaluator ai.Evaluator[S]) *Searcher[S, M] {
	return &Searcher[S, M]{evaluator: evaluator, maxDepth: DefaultMaxDepth}
}

// WithMaxDepth sets the depth of the search, in plies. Default is DefaultMaxDepth.
func (bf *Searcher[S, M]) WithMaxDepth(maxDepth int) *Searcher[S, M] {
	bf.maxDepth = maxDepth
	return bf
}

// MaxDepth implements searchers.Configurable.
func (bf *Searcher[S, M]) MaxDepth() int { return bf.maxDepth }

// SetMaxDepth implements searchers.Configurable.
func (bf *Searcher[S, M]) SetMaxDepth(maxDepth int) { bf.maxDepth = maxDepth }

// SetEvaluator implements searchers.Configurable.
func (bf *Searcher[S, M]) SetEvaluator(evaluator ai.Evaluator[S]) { bf.evaluator = evaluator }

// Stats of the last search.
func (bf *Searcher[S, M]) Stats() searchers.Stats { return bf.stats }

// LastScores implements searchers.RootScorer.
func (bf *Searcher[S, M]) LastScores() []searchers.ScoredMove[M] {
	return append([]searchers.ScoredMove[M](nil), bf.lastScores...)
}

// ResetState implements searchers.Agent. The brute-force searcher keeps no memoization, so it only clears
// the scores of the last search.
func (bf *Searcher[S, M]) ResetState() {
	bf.lastScores = bf.lastScores[:0]
}

// NextAction implements searchers.Agent. It returns searchers.ErrNoLegalMoves if there are no moves.
//
// Root moves are searched in the order given by s.LegalMoves(), and the first of the best scoring ones
// is chosen.
func (bf *Searcher[S, M]) NextAction(ctx context.Context, s S) (searchers.Decision[M], error) {
	if err := searchers.CheckDepth(bf.maxDepth); err != nil {
		return searchers.Decision[M]{}, err
	}
	moves := s.LegalMoves()
	if len(moves) == 0 {
		return searchers.Decision[M]{}, searchers.ErrNoLegalMoves
	}
	bf.stats.Start()
	player := state.PlayerOf[M](s)
	bf.lastScores = searchers.NewScoredMoves[S, M](s, moves, bf.evaluator, bf.lastScores)
	for ii := range bf.lastScores {
		if ctx.Err() != nil {
			klog.V(1).Infof("bruteforce: search cancelled after %d of %d moves", ii, len(moves))
			bf.lastScores = bf.lastScores[:ii]
			break
		}
		sm := &bf.lastScores[ii]
		err := state.WithMove[M](s, sm.Move, func() error {
			bf.stats.Nodes++
			score, err := bf.negamax(s, bf.maxDepth-1)
			sm.SearchScore = searchers.FromChild[M](s, player, score)
			return err
		})
		if err != nil {
			return searchers.Decision[M]{}, err
		}
		if math32.Abs(sm.SearchScore) >= bf.evaluator.MaximumScore() {
			sm.WinDepth = bf.maxDepth
		}
	}
	bf.stats.Iterations = 1
	bf.stats.Log("bruteforce", nil)
	if len(bf.lastScores) == 0 {
		return searchers.Play(moves[0]), nil
	}
	best := bf.lastScores[searchers.BestScoredMove(bf.lastScores, bf.evaluator.MaximumScore())]
	klog.V(1).Infof("bruteforce: %s", best)
	return searchers.Play(best.Move), nil
}

// EvaluateWithLookahead returns the score of s, from the perspective of its player to move, searching depth
// plies. With depth 0, or if s is finished, it returns the evaluator score.
func (bf *Searcher[S, M]) EvaluateWithLookahead(s S, depth int) (float32, error) {
	return bf.negamax(s, depth)
}

func (bf *Searcher[S, M]) negamax(s S, depth int) (float32, error) {
	player := state.PlayerOf[M](s)
	if depth <= 0 || state.IsTerminal[M](s) {
		bf.stats.Evals++
		return bf.evaluator.EvaluateState(s, player), nil
	}
	moves := s.LegalMoves()
	if len(moves) == 0 {
		bf.stats.Evals++
		return bf.evaluator.EvaluateState(s, player), nil
	}
	best := math32.Inf(-1)
	for _, move := range moves {
		err := state.WithMove[M](s, move, func() error {
			bf.stats.Nodes++
			score, err := bf.negamax(s, depth-1)
			best = max(best, searchers.FromChild[M](s, player, score))
			return err
		})
		if err != nil {
			return 0, err
		}
	}
	return best, nil
}
