package connectfour

import (
	"strings"

	"github.com/janpfeifer/gamesearch/internal/ai"
	"github.com/janpfeifer/gamesearch/internal/state"
	"github.com/pkg/errors"
)

// MaxScore returned by the evaluators for a won position.
const MaxScore = 1000

// WinOnly evaluator scores +MaxScore for a won position, -MaxScore for a lost one and 0 for anything else.
type WinOnly struct{}

var _ ai.Evaluator[*Board] = WinOnly{}

// EvaluateState implements ai.Evaluator.
func (WinOnly) EvaluateState(b *Board, perspective state.PlayerNum) float32 {
	_, score := ai.IsEndGameAndScore[Column](b, perspective, MaxScore)
	return score
}

// MaximumScore implements ai.Evaluator.
func (WinOnly) MaximumScore() float32 { return MaxScore }

// String implements ai.Evaluator.
func (WinOnly) String() string { return "WinOnly" }

// Heuristic evaluator counts the open windows (groups of 4 aligned cells) each player can still complete,
// weighted by how many discs are already in them.
//
// Non-final positions are squashed so only proven wins and losses reach MaxScore.
type Heuristic struct{}

var (
	_ ai.Evaluator[*Board]             = Heuristic{}
	_ ai.MoveEvaluator[*Board, Column] = Heuristic{}
)

// windowWeights indexed by the number of discs of a player in a window otherwise empty.
var windowWeights = [Connect]float32{0, 1, 8, 64}

// EvaluateState implements ai.Evaluator.
func (Heuristic) EvaluateState(b *Board, perspective state.PlayerNum) float32 {
	if isEnd, score := ai.IsEndGameAndScore[Column](b, perspective, MaxScore); isEnd {
		return score
	}
	var score float32
	for _, dir := range directions {
		for col := range Columns {
			for row := range Rows {
				endCol, endRow := col+(Connect-1)*dir[0], row+(Connect-1)*dir[1]
				if endCol < 0 || endCol >= Columns || endRow < 0 || endRow >= Rows {
					continue
				}
				var counts [state.NumPlayers + 1]int
				for ii := range Connect {
					counts[b.cells[col+ii*dir[0]][row+ii*dir[1]]]++
				}
				mine, theirs := counts[playerCell(perspective)], counts[playerCell(perspective.Opponent())]
				switch {
				case mine > 0 && theirs == 0:
					score += windowWeights[mine]
				case theirs > 0 && mine == 0:
					score -= windowWeights[theirs]
				}
			}
		}
	}
	return ai.SquashScore(score, MaxScore)
}

// EvaluateMove implements ai.MoveEvaluator: the score, for the player to move, of the position after move.
// It returns -MaxScore for invalid moves.
func (h Heuristic) EvaluateMove(b *Board, move Column) float32 {
	player := b.CurrentPlayer()
	return ai.ScoreAfterMove[Column](b, move, -MaxScore, func() float32 {
		return h.EvaluateState(b, player)
	})
}

// MaximumScore implements ai.Evaluator.
func (Heuristic) MaximumScore() float32 { return MaxScore }

// String implements ai.Evaluator.
func (Heuristic) String() string { return "Heuristic" }

// NewEvaluator returns the evaluator with the given name (case-insensitive): "heuristic" or "winonly".
func NewEvaluator(name string) (ai.Evaluator[*Board], error) {
	switch strings.ToLower(name) {
	case "heuristic":
		return Heuristic{}, nil
	case "winonly", "win_only":
		return WinOnly{}, nil
	}
	return nil, errors.Errorf("unknown Connect Four evaluator %q, valid values are \"heuristic\" or \"winonly\"", name)
}
