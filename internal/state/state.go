// Package state defines the contract any game must implement to be searched by the agents in
// package searchers.
//
// The engine never knows the rules of a game: it only enumerates legal moves, executes and undoes
// them in place, checks for end of game and asks for a hash of the position to use as a
// transposition key.
package state

import (
	"fmt"

	"github.com/pkg/errors"
)

// PlayerNum is either 0 or 1 corresponding to the first player to move or the second player to move.
// Single player games always report PlayerFirst.
type PlayerNum uint8

const (
	PlayerFirst PlayerNum = iota
	PlayerSecond

	// PlayerInvalid represents an invalid PlayerNum, also used to report "no winner".
	PlayerInvalid

	// NumPlayers in two-player games.
	NumPlayers = PlayerInvalid
)

// String implements fmt.Stringer.
func (p PlayerNum) String() string {
	switch p {
	case PlayerFirst:
		return "First"
	case PlayerSecond:
		return "Second"
	default:
		return fmt.Sprintf("PlayerInvalid(%d)", uint8(p))
	}
}

// Opponent returns the other player in a two-player game.
func (p PlayerNum) Opponent() PlayerNum {
	return 1 - p
}

// ErrInvalidMove is returned (wrapped) by ExecuteMove or UndoMove when asked to perform an
// illegal transition. For the search engine this is a contract violation and it is never
// recovered from: it aborts the whole decision.
var ErrInvalidMove = errors.New("invalid move")

// State is the minimal capability set any game must implement to be searched.
//
// The game state is owned by the caller and mutated in place by the agents during search: every
// ExecuteMove is followed by the corresponding UndoMove before the agent returns.
type State[M comparable] interface {
	// LegalMoves available at the current position. Implementations may cache the list, but it must be
	// invalidated on any mutation.
	LegalMoves() []M

	// ExecuteMove mutates the state forward. It returns an error wrapping ErrInvalidMove for illegal moves.
	ExecuteMove(move M) error

	// UndoMove exactly reverses the effect of the immediately preceding ExecuteMove with the same move,
	// including hidden state like face-down flags or counters.
	UndoMove(move M) error

	// IsGameWon reports whether the game is won from the perspective of the player to move (or of
	// the sole player in single player games).
	IsGameWon() bool

	// IsGameLost reports whether the game is lost from the perspective of the player to move.
	IsGameLost() bool

	// Hash of the position. Rules-equivalent positions must hash identically, no matter the order of the
	// moves that led to them.
	Hash() uint64
}

// TwoPlayer is a State for games with two alternating players.
type TwoPlayer[M comparable] interface {
	State[M]

	// IsGameDraw reports whether the game finished without a winner.
	IsGameDraw() bool

	// CurrentPlayer is the player to move.
	CurrentPlayer() PlayerNum
}

// Clonable is a two-player State that can be deep copied, used by searchers that branch on
// immutable copies instead of executing and undoing moves in place.
type Clonable[S any, M comparable] interface {
	TwoPlayer[M]

	// Clone returns a deep copy sharing no memory with the original.
	Clone() S
}

// Prioritizer is an optional capability of a State: it returns a static priority for a move, used to
// order the exploration of moves. Higher priority moves are explored first.
//
// Typically moves into a winning/terminal zone rank above lateral reorganizing moves, which rank above
// cautious or low-information moves.
type Prioritizer[M comparable] interface {
	MovePriority(move M) int
}

// TerminatingMover is an optional capability of a State: it flags moves after which no further recursion
// is warranted. Searchers that support it score those moves with ai.MoveEvaluator instead.
type TerminatingMover[M comparable] interface {
	IsTerminatingMove(move M) bool
}

// PlayerOf returns the player to move in s, or PlayerFirst if s is not a two-player game.
func PlayerOf[M comparable](s State[M]) PlayerNum {
	if tp, ok := s.(interface{ CurrentPlayer() PlayerNum }); ok {
		return tp.CurrentPlayer()
	}
	return PlayerFirst
}

// IsDraw returns whether s is finished in a draw. Games that don't implement IsGameDraw never draw.
func IsDraw[M comparable](s State[M]) bool {
	if d, ok := s.(interface{ IsGameDraw() bool }); ok {
		return d.IsGameDraw()
	}
	return false
}

// IsTerminal returns whether s is won, lost or drawn.
func IsTerminal[M comparable](s State[M]) bool {
	return s.IsGameWon() || s.IsGameLost() || IsDraw(s)
}

// WithMove executes move on s, calls fn and then always undoes the move, even if fn returns an error or
// panics. It is the only way searchers mutate the state.
//
// Errors from ExecuteMove are returned without calling fn. An error from UndoMove is returned if
// fn itself didn't fail.
func WithMove[M comparable](s State[M], move M, fn func() error) (err error) {
	if err = s.ExecuteMove(move); err != nil {
		return errors.WithMessagef(err, "failed to execute move %v", move)
	}
	defer func() {
		if undoErr := s.UndoMove(move); undoErr != nil && err == nil {
			err = errors.WithMessagef(undoErr, "failed to undo move %v", move)
		}
	}()
	return fn()
}
