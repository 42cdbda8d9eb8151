package searchers

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/janpfeifer/gamesearch/internal/ai"
	"github.com/janpfeifer/gamesearch/internal/state"
)

// ScoredMove is a candidate root move tagged with its scores. They are created fresh at every search iteration.
type ScoredMove[M comparable] struct {
	Move M

	// Priority is the static priority of the move, if the state implements state.Prioritizer.
	Priority int

	// MoveScore is the static (one-ply) score of the move, if the evaluator implements ai.MoveEvaluator.
	MoveScore float32

	// SearchScore is the result of the full lookahead.
	SearchScore float32

	// WinDepth is the shallowest search depth at which SearchScore was confirmed to be a win or a loss
	// (|SearchScore| >= MaximumScore). It is 0 while the outcome is not proven.
	WinDepth int
}

// String implements fmt.Stringer.
func (sm ScoredMove[M]) String() string {
	if sm.WinDepth > 0 {
		return fmt.Sprintf("%v: %.4g (proven at depth %d)", sm.Move, sm.SearchScore, sm.WinDepth)
	}
	return fmt.Sprintf("%v: %.4g", sm.Move, sm.SearchScore)
}

// NewScoredMoves fills buf (reusing its storage) with the given moves, along with their static priority and
// move score.
func NewScoredMoves[S state.State[M], M comparable](s S, moves []M, evaluator ai.Evaluator[S], buf []ScoredMove[M]) []ScoredMove[M] {
	prioritizer, hasPriority := any(s).(state.Prioritizer[M])
	moveEvaluator, hasMoveScore := ai.MoveEvaluatorOf[S, M](evaluator)
	buf = buf[:0]
	for _, move := range moves {
		sm := ScoredMove[M]{Move: move}
		if hasPriority {
			sm.Priority = prioritizer.MovePriority(move)
		}
		if hasMoveScore {
			sm.MoveScore = moveEvaluator.EvaluateMove(s, move)
		}
		buf = append(buf, sm)
	}
	return buf
}

// OrderScoredMoves sorts the moves for the next iteration of an iterative deepening search: previous best move
// first (if hasBest), then by priority, then by static move score.
// The sort is stable, so ties keep their order from the previous iteration.
func OrderScoredMoves[M comparable](moves []ScoredMove[M], best M, hasBest bool) {
	slices.SortStableFunc(moves, func(a, b ScoredMove[M]) int {
		if hasBest {
			if a.Move == best && b.Move != best {
				return -1
			}
			if b.Move == best && a.Move != best {
				return 1
			}
		}
		if c := cmp.Compare(b.Priority, a.Priority); c != 0 {
			return c
		}
		return cmp.Compare(b.MoveScore, a.MoveScore)
	})
}

// OrderMoves returns a copy of moves sorted by their static priority, if s implements state.Prioritizer.
// It is used for the inner nodes of the search, where there is no previous best move to use.
//
// A copy is made because games may return a cached slice of legal moves.
func OrderMoves[M comparable](s state.State[M], moves []M) []M {
	prioritizer, ok := s.(state.Prioritizer[M])
	if !ok || len(moves) < 2 {
		return moves
	}
	ordered := slices.Clone(moves)
	slices.SortStableFunc(ordered, func(a, b M) int {
		return cmp.Compare(prioritizer.MovePriority(b), prioritizer.MovePriority(a))
	})
	return ordered
}

// BestScoredMove returns the index of the move with the highest SearchScore. Among proven wins it prefers the
// fastest (smallest WinDepth). Other ties are broken by order.
// It returns -1 if moves is empty.
func BestScoredMove[M comparable](moves []ScoredMove[M], maxScore float32) int {
	bestIdx := -1
	for ii, sm := range moves {
		if bestIdx == -1 {
			bestIdx = ii
			continue
		}
		best := moves[bestIdx]
		if sm.SearchScore > best.SearchScore {
			bestIdx = ii
		} else if sm.SearchScore == best.SearchScore && sm.SearchScore >= maxScore &&
			sm.WinDepth > 0 && sm.WinDepth < best.WinDepth {
			bestIdx = ii
		}
	}
	return bestIdx
}

// FromChild converts the score of a child position, relative to its player to move, to the perspective of
// player. Scores are negated only if the child has a different player to move (e.g. single player games
// never negate).
func FromChild[M comparable](child state.State[M], player state.PlayerNum, score float32) float32 {
	if state.PlayerOf(child) != player {
		return -score
	}
	return score
}
