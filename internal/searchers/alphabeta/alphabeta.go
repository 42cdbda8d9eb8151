// Package alphabeta implements an alpha-beta pruning searcher, with iterative deepening and a transposition
// table.
//
// It uses the negamax formulation: scores are always relative to the player to move, and they are negated
// when moving to a position where the other player is to move. So it works both for two-player games and
// single player games (where scores are never negated).
//
// See: wikipedia.org/wiki/Alpha-beta_pruning
package alphabeta

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
const DefaultMaxDepth = 3

// Searcher implements searchers.Agent, searchers.Configurable and searchers.RootScorer.
//
// It owns its transposition table and is not safe for concurrent use.
type Searcher[S state.State[M], M comparable] struct {
	maxDepth  int
	evaluator ai.Evaluator[S]
	epsilons  searchers.Epsilons
	giveUp    bool

	table  *ttable.Table
	stats  searchers.Stats
	scored []searchers.ScoredMove[M]
}

// New returns an alpha-beta pruning searcher using the given evaluator.
// There are many other optional configurations, see methods Searcher.With...
func New[S state.State[M], M comparable](evaluator ai.Evaluator[S]) *Searcher[S, M] {
	return &Searcher[S, M]{
		maxDepth:  DefaultMaxDepth,
		evaluator: evaluator,
		epsilons:  searchers.DefaultEpsilons,
		giveUp:    true,
		table:     ttable.New(),
	}
}

// WithMaxDepth sets the max depth of search: the unit here are plies (ply singular). Each move counts as one
// ply. See https://en.wikipedia.org/wiki/Ply_(game_theory).
//
// The default is 3 (DefaultMaxDepth).
func (ab *Searcher[S, M]) WithMaxDepth(maxDepth int) *Searcher[S, M] {
	ab.maxDepth = maxDepth
	return ab
}

// WithGiveUp configures whether the searcher abandons (returns searchers.Skip) positions it judges unwinnable.
// See searchers.IsUnwinnable. Default is true.
func (ab *Searcher[S, M]) WithGiveUp(giveUp bool) *Searcher[S, M] {
	ab.giveUp = giveUp
	return ab
}

// WithEpsilons sets the tolerances used by the unwinnability heuristic. They should be adjusted to the scale
// of the evaluator's scores. Default is searchers.DefaultEpsilons.
func (ab *Searcher[S, M]) WithEpsilons(eps searchers.Epsilons) *Searcher[S, M] {
	ab.epsilons = eps
	return ab
}

// MaxDepth implements searchers.Configurable.
func (ab *Searcher[S, M]) MaxDepth() int { return ab.maxDepth }

// SetMaxDepth implements searchers.Configurable.
func (ab *Searcher[S, M]) SetMaxDepth(maxDepth int) { ab.maxDepth = maxDepth }

// SetEvaluator implements searchers.Configurable. Since cached scores came from the previous evaluator,
// the transposition table is cleared.
func (ab *Searcher[S, M]) SetEvaluator(evaluator ai.Evaluator[S]) {
	ab.evaluator = evaluator
	ab.table.Reset()
}

// Stats of the last search.
func (ab *Searcher[S, M]) Stats() searchers.Stats { return ab.stats }

// Table returns the transposition table owned by the searcher.
func (ab *Searcher[S, M]) Table() *ttable.Table { return ab.table }

// LastScores implements searchers.RootScorer.
//
// Notice that only the best move (and moves tied with it) have exact scores: the others are upper bounds,
// because of the pruning.
func (ab *Searcher[S, M]) LastScores() []searchers.ScoredMove[M] {
	return append([]searchers.ScoredMove[M](nil), ab.scored...)
}

// ResetState implements searchers.Agent: it clears the transposition table.
func (ab *Searcher[S, M]) ResetState() {
	ab.table.Reset()
	ab.scored = ab.scored[:0]
}

// NextAction implements searchers.Agent.
//
// It searches with iterative deepening from depth 1 to MaxDepth, reordering the root moves after each
// iteration. It returns searchers.Skip if there are no legal moves, or if the position is judged
// unwinnable and give-up is enabled.
func (ab *Searcher[S, M]) NextAction(ctx context.Context, s S) (searchers.Decision[M], error) {
	if err := searchers.CheckDepth(ab.maxDepth); err != nil {
		return searchers.Decision[M]{}, err
	}
	moves := s.LegalMoves()
	if len(moves) == 0 {
		klog.V(1).Infof("alphabeta: no legal moves, skipping")
		ab.scored = ab.scored[:0]
		return searchers.Skip[M](), nil
	}
	ab.stats.Start()
	maxScore := ab.evaluator.MaximumScore()
	ab.scored = searchers.NewScoredMoves[S, M](s, moves, ab.evaluator, ab.scored)

	var (
		best      M
		hasBest   bool
		cancelled bool
	)
	for depth := 1; depth <= ab.maxDepth && !cancelled; depth++ {
		searchers.OrderScoredMoves(ab.scored, best, hasBest)
		numScored, err := ab.searchRoot(ctx, s, depth)
		if err != nil {
			return searchers.Decision[M]{}, err
		}
		if numScored < len(ab.scored) {
			cancelled = true
			klog.V(1).Infof("alphabeta: search cancelled at depth %d, after %d of %d moves", depth, numScored, len(ab.scored))
			if hasBest || numScored == 0 {
				// Keep the result of the last completed iteration.
				break
			}
		}
		bestIdx := searchers.BestScoredMove(ab.scored[:numScored], maxScore)
		best, hasBest = ab.scored[bestIdx].Move, true
		ab.stats.Iterations++
		if klog.V(3).Enabled() {
			klog.Infof("alphabeta: depth %d, best %s", depth, ab.scored[bestIdx])
		}
		if ab.scored[bestIdx].SearchScore >= maxScore {
			// Proven win, no need to search deeper.
			break
		}
	}
	ab.stats.Log("alphabeta", ab.table)
	if !hasBest {
		return searchers.Play(ab.scored[0].Move), nil
	}

	if ab.giveUp && !cancelled {
		ab.stats.Evals++
		static := ab.evaluator.EvaluateState(s, state.PlayerOf[M](s))
		if searchers.IsUnwinnable[S, M](s, ab.scored, static, ab.evaluator, ab.epsilons) {
			klog.V(1).Infof("alphabeta: position judged unwinnable (static score %.4g), giving up", static)
			return searchers.Skip[M](), nil
		}
	}
	klog.V(1).Infof("alphabeta: playing %v", best)
	return searchers.Play(best), nil
}

// searchRoot scores the root moves (already ordered) searching to the given depth, and returns the number
// of moves scored. It is smaller than len(ab.scored) only if the search was cancelled.
//
// The root window is kept 2*epsilons.Tie below the best score found so far, so moves tied with the best
// one get exact scores.
func (ab *Searcher[S, M]) searchRoot(ctx context.Context, s S, depth int) (int, error) {
	player := state.PlayerOf[M](s)
	maxScore := ab.evaluator.MaximumScore()
	bestScore := math32.Inf(-1)
	beta := math32.Inf(1)
	for ii := range ab.scored {
		if ctx.Err() != nil {
			return ii, nil
		}
		sm := &ab.scored[ii]
		alpha := bestScore - 2*ab.epsilons.Tie
		err := state.WithMove[M](s, sm.Move, func() error {
			ab.stats.Nodes++
			score, err := ab.childScore(s, player, depth-1, alpha, beta)
			sm.SearchScore = score
			return err
		})
		if err != nil {
			return ii, err
		}
		bestScore = max(bestScore, sm.SearchScore)
		if math32.Abs(sm.SearchScore) >= maxScore {
			if sm.WinDepth == 0 {
				sm.WinDepth = depth
			}
		} else {
			sm.WinDepth = 0
		}
	}
	return len(ab.scored), nil
}

// childScore searches the position s (after a move by player) and returns its score from the perspective
// of player, with the window [alpha, beta] also given in the perspective of player.
func (ab *Searcher[S, M]) childScore(s S, player state.PlayerNum, depth int, alpha, beta float32) (float32, error) {
	if state.PlayerOf[M](s) == player {
		return ab.alphaBeta(s, depth, alpha, beta)
	}
	score, err := ab.alphaBeta(s, depth, -beta, -alpha)
	return -score, err
}

// EvaluateWithLookahead returns the score of s, from the perspective of its player to move, searching depth
// plies with the full window. With depth 0, or if s is finished, it returns the evaluator score.
func (ab *Searcher[S, M]) EvaluateWithLookahead(s S, depth int) (float32, error) {
	return ab.alphaBeta(s, depth, math32.Inf(-1), math32.Inf(1))
}

// alphaBeta returns the score of s from the perspective of its player to move. If the score is <= alpha
// it is only an upper bound, and if it is >= beta it is only a lower bound (fail-soft).
func (ab *Searcher[S, M]) alphaBeta(s S, depth int, alpha, beta float32) (float32, error) {
	player := state.PlayerOf[M](s)
	if depth <= 0 || state.IsTerminal[M](s) {
		ab.stats.Evals++
		return ab.evaluator.EvaluateState(s, player), nil
	}
	hash := s.Hash()
	if score, found := ab.table.Lookup(hash, depth, alpha, beta); found {
		return score, nil
	}
	moves := searchers.OrderMoves[M](s, s.LegalMoves())
	if len(moves) == 0 {
		ab.stats.Evals++
		return ab.evaluator.EvaluateState(s, player), nil
	}

	bestScore := math32.Inf(-1)
	a := alpha
	for _, move := range moves {
		err := state.WithMove[M](s, move, func() error {
			ab.stats.Nodes++
			score, err := ab.childScore(s, player, depth-1, a, beta)
			bestScore = max(bestScore, score)
			return err
		})
		if err != nil {
			return 0, err
		}
		a = max(a, bestScore)
		if a >= beta {
			ab.stats.Prunes++
			break
		}
	}
	ab.table.Store(hash, bestScore, depth, alpha, beta)
	return bestScore, nil
}
