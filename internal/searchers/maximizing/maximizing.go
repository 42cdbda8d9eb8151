// Package maximizing implements the "MaxiMax" searcher, designed for single player games (patience games)
// but that also works for two-player games, with the negamax formulation.
//
// It searches with iterative deepening, and it avoids forced losses: when some root moves are proven losses,
// only the ones that lose the slowest are kept for the next iterations. This way, when there is no way to
// win, it prolongs the game as much as possible.
//
// There is no alpha-beta pruning: every move is searched, except when a proven win is found. So the
// transposition table is consulted only by depth.
package maximizing

import (
	"context"

	"github.com/chewxy/math32"
	"github.com/janpfeifer/gamesearch/internal/ai"
	"github.com/janpfeifer/gamesearch/internal/searchers"
	"github.com/janpfeifer/gamesearch/internal/state"
	"github.com/janpfeifer/gamesearch/internal/ttable"
	"k8s.io/klog/v2"
)

// DefaultMaxDepth for search.
const DefaultMaxDepth = 4

// Searcher implements searchers.Agent, searchers.Configurable and searchers.RootScorer.
type Searcher[S state.State[M], M comparable] struct {
	maxDepth  int
	evaluator ai.Evaluator[S]
	epsilons  searchers.Epsilons
	giveUp    bool

	table *ttable.Table
	stats searchers.Stats

	// pool is the storage reused for the scored root moves, and candidates is the slice of it with the
	// root moves still under consideration.
	pool, candidates []searchers.ScoredMove[M]
}

// New returns a maximizing searcher using the given evaluator. See the With... methods for the optional
// configuration.
func New[S state.State[M], M comparable](evaluator ai.Evaluator[S]) *Searcher[S, M] {
	return &Searcher[S, M]{
		maxDepth:  DefaultMaxDepth,
		evaluator: evaluator,
		epsilons:  searchers.DefaultEpsilons,
		giveUp:    true,
		table:     ttable.New(),
	}
}

// WithMaxDepth sets the max depth of search, in plies. Default is DefaultMaxDepth.
func (ms *Searcher[S, M]) WithMaxDepth(maxDepth int) *Searcher[S, M] {
	ms.maxDepth = maxDepth
	return ms
}

// WithGiveUp configures whether the searcher abandons (returns searchers.Skip) positions it judges unwinnable.
// Default is true.
func (ms *Searcher[S, M]) WithGiveUp(giveUp bool) *Searcher[S, M] {
	ms.giveUp = giveUp
	return ms
}

// WithEpsilons sets the tolerances used by the unwinnability heuristic. Default is searchers.DefaultEpsilons.
func (ms *Searcher[S, M]) WithEpsilons(eps searchers.Epsilons) *Searcher[S, M] {
	ms.epsilons = eps
	return ms
}

// MaxDepth implements searchers.Configurable.
func (ms *Searcher[S, M]) MaxDepth() int { return ms.maxDepth }

// SetMaxDepth implements searchers.Configurable.
func (ms *Searcher[S, M]) SetMaxDepth(maxDepth int) { ms.maxDepth = maxDepth }

// SetEvaluator implements searchers.Configurable. It clears the transposition table.
func (ms *Searcher[S, M]) SetEvaluator(evaluator ai.Evaluator[S]) {
	ms.evaluator = evaluator
	ms.table.Reset()
}

// Stats of the last search.
func (ms *Searcher[S, M]) Stats() searchers.Stats { return ms.stats }

// Table returns the transposition table owned by the searcher.
func (ms *Searcher[S, M]) Table() *ttable.Table { return ms.table }

// LastScores implements searchers.RootScorer. Root moves discarded by the forced-loss avoidance are
// not included.
func (ms *Searcher[S, M]) LastScores() []searchers.ScoredMove[M] {
	return append([]searchers.ScoredMove[M](nil), ms.candidates...)
}

// ResetState implements searchers.Agent.
func (ms *Searcher[S, M]) ResetState() {
	ms.table.Reset()
	ms.candidates = ms.pool[:0]
}

// NextAction implements searchers.Agent. It returns searchers.Skip if there are no legal moves, or if the
// position is judged unwinnable and give-up is enabled.
func (ms *Searcher[S, M]) NextAction(ctx context.Context, s S) (searchers.Decision[M], error) {
	if err := searchers.CheckDepth(ms.maxDepth); err != nil {
		return searchers.Decision[M]{}, err
	}
	moves := s.LegalMoves()
	if len(moves) == 0 {
		klog.V(1).Infof("maximizing: no legal moves, skipping")
		ms.candidates = ms.pool[:0]
		return searchers.Skip[M](), nil
	}
	ms.stats.Start()
	defer ms.stats.Log("maximizing", ms.table)
	maxScore := ms.evaluator.MaximumScore()
	ms.pool = searchers.NewScoredMoves[S, M](s, moves, ms.evaluator, ms.pool)
	ms.candidates = ms.pool

	var (
		best    M
		hasBest bool
	)
	for depth := 1; depth <= ms.maxDepth; depth++ {
		searchers.OrderScoredMoves(ms.candidates, best, hasBest)
		numScored, err := ms.searchRoot(ctx, s, depth)
		if err != nil {
			return searchers.Decision[M]{}, err
		}
		if numScored < len(ms.candidates) {
			klog.V(1).Infof("maximizing: search cancelled at depth %d, after %d of %d moves", depth, numScored, len(ms.candidates))
			if !hasBest && numScored > 0 {
				best = ms.candidates[searchers.BestScoredMove(ms.candidates[:numScored], maxScore)].Move
			} else if !hasBest {
				best = ms.candidates[0].Move
			}
			return searchers.Play(best), nil
		}
		ms.stats.Iterations++

		numCandidates := len(ms.candidates)
		ms.candidates = avoidForcedLoss(ms.candidates, maxScore)
		if len(ms.candidates) == 1 && numCandidates > 1 {
			klog.V(1).Infof("maximizing: only one move left at depth %d: %s", depth, ms.candidates[0])
			return searchers.Play(ms.candidates[0].Move), nil
		}
		bestIdx := searchers.BestScoredMove(ms.candidates, maxScore)
		best, hasBest = ms.candidates[bestIdx].Move, true
		if klog.V(3).Enabled() {
			klog.Infof("maximizing: depth %d, %d candidates, best %s", depth, len(ms.candidates), ms.candidates[bestIdx])
		}
		if ms.candidates[bestIdx].SearchScore >= maxScore {
			klog.V(1).Infof("maximizing: proven win %s", ms.candidates[bestIdx])
			return searchers.Play(best), nil
		}
	}

	if ms.giveUp {
		ms.stats.Evals++
		static := ms.evaluator.EvaluateState(s, state.PlayerOf[M](s))
		if searchers.IsUnwinnable[S, M](s, ms.candidates, static, ms.evaluator, ms.epsilons) {
			klog.V(1).Infof("maximizing: position judged unwinnable (static score %.4g), giving up", static)
			return searchers.Skip[M](), nil
		}
	}
	klog.V(1).Infof("maximizing: playing %v", best)
	return searchers.Play(best), nil
}

// avoidForcedLoss removes from candidates the proven losses, except the ones that lose the slowest (with the
// largest WinDepth). It reuses the candidates storage.
func avoidForcedLoss[M comparable](candidates []searchers.ScoredMove[M], maxScore float32) []searchers.ScoredMove[M] {
	slowest := 0
	for _, sm := range candidates {
		if sm.SearchScore <= -maxScore {
			slowest = max(slowest, sm.WinDepth)
		}
	}
	if slowest == 0 {
		// No proven losses.
		return candidates
	}
	kept := candidates[:0]
	for _, sm := range candidates {
		if sm.SearchScore > -maxScore || sm.WinDepth == slowest {
			kept = append(kept, sm)
		}
	}
	return kept
}

// searchRoot scores the candidate root moves searching to the given depth, and returns the number of moves
// scored. It is smaller than len(ms.candidates) only if the search was cancelled.
func (ms *Searcher[S, M]) searchRoot(ctx context.Context, s S, depth int) (int, error) {
	player := state.PlayerOf[M](s)
	maxScore := ms.evaluator.MaximumScore()
	for ii := range ms.candidates {
		if ctx.Err() != nil {
			return ii, nil
		}
		sm := &ms.candidates[ii]
		score, err := ms.scoreMove(s, player, sm.Move, depth)
		if err != nil {
			return ii, err
		}
		sm.SearchScore = score
		if sm.WinDepth == 0 && math32.Abs(score) >= maxScore {
			sm.WinDepth = depth
		}
	}
	return len(ms.candidates), nil
}

// scoreMove returns the score of playing move in s, from the perspective of player (the player to move in s),
// searching depth plies (including the move itself).
//
// Moves flagged by state.TerminatingMover are scored with ai.MoveEvaluator, if the evaluator implements it.
func (ms *Searcher[S, M]) scoreMove(s S, player state.PlayerNum, move M, depth int) (score float32, err error) {
	if terminating, ok := any(s).(state.TerminatingMover[M]); ok && terminating.IsTerminatingMove(move) {
		if moveEvaluator, ok := ai.MoveEvaluatorOf[S, M](ms.evaluator); ok {
			ms.stats.Evals++
			return moveEvaluator.EvaluateMove(s, move), nil
		}
	}
	err = state.WithMove[M](s, move, func() error {
		ms.stats.Nodes++
		childScore, err := ms.lookahead(s, depth-1)
		score = searchers.FromChild[M](s, player, childScore)
		return err
	})
	return
}

// EvaluateWithLookahead returns the score of s, from the perspective of its player to move, searching depth
// plies. With depth 0, or if s is finished, it returns the evaluator score.
func (ms *Searcher[S, M]) EvaluateWithLookahead(s S, depth int) (float32, error) {
	return ms.lookahead(s, depth)
}

func (ms *Searcher[S, M]) lookahead(s S, depth int) (float32, error) {
	player := state.PlayerOf[M](s)
	if depth <= 0 || state.IsTerminal[M](s) {
		ms.stats.Evals++
		return ms.evaluator.EvaluateState(s, player), nil
	}
	hash := s.Hash()
	if score, found := ms.table.LookupDepth(hash, depth); found {
		return score, nil
	}
	moves := searchers.OrderMoves[M](s, s.LegalMoves())
	if len(moves) == 0 {
		ms.stats.Evals++
		return ms.evaluator.EvaluateState(s, player), nil
	}
	maxScore := ms.evaluator.MaximumScore()
	best := math32.Inf(-1)
	for _, move := range moves {
		score, err := ms.scoreMove(s, player, move, depth)
		if err != nil {
			return 0, err
		}
		best = max(best, score)
		if best >= maxScore {
			ms.stats.Prunes++
			break
		}
	}
	ms.table.Store(hash, best, depth, math32.Inf(-1), math32.Inf(1))
	return best, nil
}
