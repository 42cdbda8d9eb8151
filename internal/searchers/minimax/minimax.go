// Package minimax implements a minimax searcher with alpha-beta pruning for strict two-player zero-sum games.
//
// Differently from the negamax searchers, it keeps the explicit alternation of maximizing (the player that
// is searching) and minimizing (the opponent) nodes, with all scores from the perspective of the searching
// player. And it branches on clones of the state, so the caller's state is never mutated.
//
// Root moves with the same score are chosen at random.
package minimax

import (
	"context"
	"math/rand/v2"

	"github.com/chewxy/math32"
	"github.com/janpfeifer/gamesearch/internal/ai"
	"github.com/janpfeifer/gamesearch/internal/searchers"
	"github.com/janpfeifer/gamesearch/internal/state"
	"github.com/janpfeifer/gamesearch/internal/ttable"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// DefaultMaxDepth for search.
const DefaultMaxDepth = 4

// playerSalt is mixed into the position hashes used as transposition keys, since scores are from the
// perspective of the searching player.
var playerSalt = [state.NumPlayers]uint64{0, 0x9e3779b97f4a7c15}

// Searcher implements searchers.Agent, searchers.Configurable and searchers.RootScorer.
type Searcher[S state.Clonable[S, M], M comparable] struct {
	maxDepth  int
	evaluator ai.Evaluator[S]

	seed    uint64
	hasSeed bool
	rng     *rand.Rand

	table  *ttable.Table
	stats  searchers.Stats
	scored []searchers.ScoredMove[M]
}

// New returns a minimax searcher using the given evaluator, with a randomly seeded tie-breaking.
// See the With... methods for the optional configuration.
func New[S state.Clonable[S, M], M comparable](evaluator ai.Evaluator[S]) *Searcher[S, M] {
	return &Searcher[S, M]{
		maxDepth:  DefaultMaxDepth,
		evaluator: evaluator,
		rng:       rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		table:     ttable.New(),
	}
}

// WithMaxDepth sets the max depth of search, in plies. Default is DefaultMaxDepth.
func (mm *Searcher[S, M]) WithMaxDepth(maxDepth int) *Searcher[S, M] {
	mm.maxDepth = maxDepth
	return mm
}

// WithSeed sets the seed used to break ties among equally scored moves. The random number generator is
// re-seeded at every ResetState, so the same sequence of searches yields the same decisions.
func (mm *Searcher[S, M]) WithSeed(seed uint64) *Searcher[S, M] {
	mm.seed, mm.hasSeed = seed, true
	mm.rng = rand.New(rand.NewPCG(seed, seed))
	return mm
}

// MaxDepth implements searchers.Configurable.
func (mm *Searcher[S, M]) MaxDepth() int { return mm.maxDepth }

// SetMaxDepth implements searchers.Configurable.
func (mm *Searcher[S, M]) SetMaxDepth(maxDepth int) { mm.maxDepth = maxDepth }

// SetEvaluator implements searchers.Configurable. It clears the transposition table.
func (mm *Searcher[S, M]) SetEvaluator(evaluator ai.Evaluator[S]) {
	mm.evaluator = evaluator
	mm.table.Reset()
}

// Stats of the last search.
func (mm *Searcher[S, M]) Stats() searchers.Stats { return mm.stats }

// Table returns the transposition table owned by the searcher.
func (mm *Searcher[S, M]) Table() *ttable.Table { return mm.table }

// LastScores implements searchers.RootScorer. Moves scoring below the best are upper bounds.
func (mm *Searcher[S, M]) LastScores() []searchers.ScoredMove[M] {
	return append([]searchers.ScoredMove[M](nil), mm.scored...)
}

// ResetState implements searchers.Agent. It clears the transposition table and, if a seed was given,
// re-seeds the tie-breaking.
func (mm *Searcher[S, M]) ResetState() {
	mm.table.Reset()
	mm.scored = mm.scored[:0]
	if mm.hasSeed {
		mm.rng = rand.New(rand.NewPCG(mm.seed, mm.seed))
	}
}

// NextAction implements searchers.Agent. It returns searchers.ErrNoLegalMoves if there are no moves.
// The state s is not modified.
func (mm *Searcher[S, M]) NextAction(ctx context.Context, s S) (searchers.Decision[M], error) {
	if err := searchers.CheckDepth(mm.maxDepth); err != nil {
		return searchers.Decision[M]{}, err
	}
	moves := s.LegalMoves()
	if len(moves) == 0 {
		return searchers.Decision[M]{}, searchers.ErrNoLegalMoves
	}
	mm.stats.Start()
	defer mm.stats.Log("minimax", mm.table)
	root := s.CurrentPlayer()
	maxScore := mm.evaluator.MaximumScore()
	mm.scored = searchers.NewScoredMoves[S, M](s, moves, mm.evaluator, mm.scored)

	// Immediate wins are played without searching.
	for ii := range mm.scored {
		sm := &mm.scored[ii]
		child, err := mm.play(s, sm.Move)
		if err != nil {
			return searchers.Decision[M]{}, err
		}
		if isEnd, score := ai.IsEndGameAndScore[M](child, root, maxScore); isEnd && score >= maxScore {
			sm.SearchScore, sm.WinDepth = score, 1
			mm.scored[0], mm.scored[ii] = mm.scored[ii], mm.scored[0]
			mm.scored = mm.scored[:1]
			klog.V(1).Infof("minimax: immediate win %v", mm.scored[0].Move)
			return searchers.Play(mm.scored[0].Move), nil
		}
	}

	var (
		ties    []M
		hasBest bool
	)
	for depth := 1; depth <= mm.maxDepth; depth++ {
		var best M
		if hasBest {
			best = ties[0]
		}
		searchers.OrderScoredMoves(mm.scored, best, hasBest)
		newTies, err := mm.searchRoot(ctx, s, root, depth)
		if err != nil {
			return searchers.Decision[M]{}, err
		}
		if newTies == nil {
			klog.V(1).Infof("minimax: search cancelled at depth %d", depth)
			break
		}
		ties, hasBest = newTies, true
		mm.stats.Iterations++
		if mm.scored[0].SearchScore >= maxScore || mm.scored[0].SearchScore <= -maxScore {
			// Result is proven, searching deeper won't change it.
			break
		}
	}
	if !hasBest {
		return searchers.Play(mm.scored[0].Move), nil
	}
	choice := ties[0]
	if len(ties) > 1 {
		choice = ties[mm.rng.IntN(len(ties))]
	}
	klog.V(1).Infof("minimax: playing %v (%d tied moves)", choice, len(ties))
	return searchers.Play(choice), nil
}

// searchRoot scores all root moves to the given depth, and returns the best scoring ones (ties), or nil if
// the search was cancelled. At return the best move is moved to the front of mm.scored.
//
// The root window lower bound is kept just below the best score, so moves tied with it get exact scores.
func (mm *Searcher[S, M]) searchRoot(ctx context.Context, s S, root state.PlayerNum, depth int) ([]M, error) {
	maxScore := mm.evaluator.MaximumScore()
	bestScore := math32.Inf(-1)
	bestIdx := -1
	for ii := range mm.scored {
		if ctx.Err() != nil {
			return nil, nil
		}
		sm := &mm.scored[ii]
		child, err := mm.play(s, sm.Move)
		if err != nil {
			return nil, err
		}
		alpha := math32.Nextafter(bestScore, math32.Inf(-1))
		score, err := mm.minimax(child, root, depth-1, alpha, math32.Inf(1))
		if err != nil {
			return nil, err
		}
		sm.SearchScore = score
		if sm.WinDepth == 0 && math32.Abs(score) >= maxScore {
			sm.WinDepth = depth
		}
		if score > bestScore {
			bestScore, bestIdx = score, ii
		}
	}
	mm.scored[0], mm.scored[bestIdx] = mm.scored[bestIdx], mm.scored[0]
	var ties []M
	for _, sm := range mm.scored {
		if sm.SearchScore == bestScore {
			ties = append(ties, sm.Move)
		}
	}
	return ties, nil
}

// play returns a clone of s after move.
func (mm *Searcher[S, M]) play(s S, move M) (S, error) {
	child := s.Clone()
	mm.stats.Nodes++
	if err := child.ExecuteMove(move); err != nil {
		var zero S
		return zero, errors.WithMessagef(err, "minimax failed to execute move %v", move)
	}
	return child, nil
}

// EvaluateWithLookahead returns the score of s, from the perspective of its player to move, searching
// depth plies. With depth 0, or if s is finished, it returns the evaluator score.
func (mm *Searcher[S, M]) EvaluateWithLookahead(s S, depth int) (float32, error) {
	return mm.minimax(s, s.CurrentPlayer(), depth, math32.Inf(-1), math32.Inf(1))
}

// minimax returns the score of s from the perspective of the root player. Positions where the root player
// is to move maximize, the others minimize.
func (mm *Searcher[S, M]) minimax(s S, root state.PlayerNum, depth int, alpha, beta float32) (float32, error) {
	if depth <= 0 || state.IsTerminal[M](s) {
		mm.stats.Evals++
		return mm.evaluator.EvaluateState(s, root), nil
	}
	key := s.Hash() ^ playerSalt[root]
	if score, found := mm.table.Lookup(key, depth, alpha, beta); found {
		return score, nil
	}
	moves := searchers.OrderMoves[M](s, s.LegalMoves())
	if len(moves) == 0 {
		mm.stats.Evals++
		return mm.evaluator.EvaluateState(s, root), nil
	}

	maximizing := s.CurrentPlayer() == root
	a, b := alpha, beta
	var value float32
	if maximizing {
		value = math32.Inf(-1)
	} else {
		value = math32.Inf(1)
	}
	for _, move := range moves {
		child, err := mm.play(s, move)
		if err != nil {
			return 0, err
		}
		score, err := mm.minimax(child, root, depth-1, a, b)
		if err != nil {
			return 0, err
		}
		if maximizing {
			value = max(value, score)
			a = max(a, value)
		} else {
			value = min(value, score)
			b = min(b, value)
		}
		if a >= b {
			mm.stats.Prunes++
			break
		}
	}
	mm.table.Store(key, value, depth, alpha, beta)
	return value, nil
}
