// Package ai (Artificial Intelligence) defines the evaluator interfaces the searchers use to score
// game positions.
package ai

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/janpfeifer/gamesearch/internal/state"
	"k8s.io/klog/v2"
)

// Evaluator returns a heuristic estimate of the value of a position.
type Evaluator[S any] interface {
	// EvaluateState returns the value of s from the perspective of the given player. A value of
	// MaximumScore is a sure win, -MaximumScore a sure loss.
	//
	// It must be bounded by MaximumScore: searchers compare against it to detect proven wins
	// and losses.
	EvaluateState(s S, perspective state.PlayerNum) float32

	// MaximumScore achievable by EvaluateState.
	MaximumScore() float32

	// String returns the evaluator name, used for logging.
	String() string
}

// MoveEvaluator is an optional capability of an Evaluator: a cheap one-ply estimate of the value of
// taking move in s, for the player to move.
//
// It is used to order moves, and to score moves flagged by state.TerminatingMover without recursion.
type MoveEvaluator[S any, M comparable] interface {
	EvaluateMove(s S, move M) float32
}

// UnwinnableEstimator is an optional capability of an Evaluator: a cheap check on whether a
// position is unlikely to be winnable. It is a heuristic, and false positives are acceptable.
type UnwinnableEstimator[S any] interface {
	IsLikelyUnwinnable(s S) bool
}

// IsEndGameAndScore returns whether the game is finished, and the score of the win/loss/draw for the
// given perspective if it is finished. If isEnd is false, the score should be ignored.
//
// The state reports won/lost for its player to move, so the score is flipped if perspective is
// somebody else.
func IsEndGameAndScore[M comparable](s state.State[M], perspective state.PlayerNum, maxScore float32) (isEnd bool, score float32) {
	switch {
	case s.IsGameWon():
		score = maxScore
	case s.IsGameLost():
		score = -maxScore
	case state.IsDraw(s):
		return true, 0
	default:
		return false, 0
	}
	if state.PlayerOf(s) != perspective {
		score = -score
	}
	return true, score
}

// SquashScore converts any score to a value strictly between -maxScore and +maxScore
// by using the tanh(x) function -- a type of S curve.
//
// Heuristic evaluators use it so only proven wins/losses reach the MaximumScore.
func SquashScore(x, maxScore float32) float32 {
	return math32.Tanh(x/maxScore) * maxScore * squashMargin
}

// squashMargin keeps squashed scores away from MaximumScore, even when tanh saturates in float32.
const squashMargin = 0.999

// ScoreAfterMove executes move on s, returns the value given by score and undoes the move. It is used by
// MoveEvaluator implementations.
//
// If move can't be executed it returns invalidScore. An error undoing the move leaves s corrupted, and it is
// logged as an error.
func ScoreAfterMove[M comparable](s state.State[M], move M, invalidScore float32, score func() float32) float32 {
	result := invalidScore
	executed := false
	err := state.WithMove(s, move, func() error {
		executed = true
		result = score()
		return nil
	})
	if err != nil && executed {
		klog.Errorf("Failed to undo move %v after scoring it: %+v", move, err)
	}
	return result
}

// CountingEvaluator wraps an Evaluator and counts the number of calls to EvaluateState.
// It is used to collect search statistics and as a probe in tests.
type CountingEvaluator[S any] struct {
	Evaluator[S]
	Count int
}

// NewCountingEvaluator returns a CountingEvaluator wrapping e.
func NewCountingEvaluator[S any](e Evaluator[S]) *CountingEvaluator[S] {
	return &CountingEvaluator[S]{Evaluator: e}
}

// EvaluateState implements Evaluator.
func (c *CountingEvaluator[S]) EvaluateState(s S, perspective state.PlayerNum) float32 {
	c.Count++
	return c.Evaluator.EvaluateState(s, perspective)
}

// String implements Evaluator and fmt.Stringer.
func (c *CountingEvaluator[S]) String() string {
	return fmt.Sprintf("Counting(%s)", c.Evaluator)
}

// Unwrap returns the wrapped Evaluator.
func (c *CountingEvaluator[S]) Unwrap() Evaluator[S] {
	return c.Evaluator
}

// MoveEvaluatorOf returns e as a MoveEvaluator, looking through wrappers (evaluators with an
// Unwrap() method) if needed.
func MoveEvaluatorOf[S any, M comparable](e Evaluator[S]) (MoveEvaluator[S, M], bool) {
	for e != nil {
		if me, ok := e.(MoveEvaluator[S, M]); ok {
			return me, true
		}
		e = unwrap(e)
	}
	return nil, false
}

// UnwinnableEstimatorOf returns e as an UnwinnableEstimator, looking through wrappers if needed.
func UnwinnableEstimatorOf[S any](e Evaluator[S]) (UnwinnableEstimator[S], bool) {
	for e != nil {
		if ue, ok := e.(UnwinnableEstimator[S]); ok {
			return ue, true
		}
		e = unwrap(e)
	}
	return nil, false
}

func unwrap[S any](e Evaluator[S]) Evaluator[S] {
	if w, ok := e.(interface{ Unwrap() Evaluator[S] }); ok {
		return w.Unwrap()
	}
	return nil
}
