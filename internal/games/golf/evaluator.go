package golf

import (
	"github.com/janpfeifer/gamesearch/internal/ai"
	"github.com/janpfeifer/gamesearch/internal/state"
)

// Weights of the Evaluator. Their sum must stay below 1, so only a won game reaches the maximum score.
type Weights struct {
	// Cleared is the weight of the fraction of the tableau cleared.
	Cleared float32

	// Stock is the weight of the fraction of the stock still available.
	Stock float32

	// Playable is the weight of the fraction of columns whose top card can be played right now.
	Playable float32
}

// DefaultWeights were picked by hand, playing a few hundred deals.
var DefaultWeights = Weights{Cleared: 0.8, Stock: 0.1, Playable: 0.05}

// Evaluator scores Golf positions between -1 (lost) and 1 (won).
//
// It implements ai.MoveEvaluator and ai.UnwinnableEstimator.
type Evaluator struct {
	Weights Weights
}

var (
	_ ai.Evaluator[*Game]           = (*Evaluator)(nil)
	_ ai.MoveEvaluator[*Game, Move] = (*Evaluator)(nil)
	_ ai.UnwinnableEstimator[*Game] = (*Evaluator)(nil)
)

// NewEvaluator returns an Evaluator with the DefaultWeights.
func NewEvaluator() *Evaluator {
	return &Evaluator{Weights: DefaultWeights}
}

// MaximumScore implements ai.Evaluator.
func (e *Evaluator) MaximumScore() float32 { return 1 }

// String implements ai.Evaluator.
func (e *Evaluator) String() string { return "GolfEvaluator" }

// EvaluateState implements ai.Evaluator. Golf has a single player, so perspective is ignored.
func (e *Evaluator) EvaluateState(g *Game, _ state.PlayerNum) float32 {
	if isEnd, score := ai.IsEndGameAndScore[Move](g, state.PlayerFirst, 1); isEnd {
		return score
	}
	var playable int
	for col := range Columns {
		if g.canPlay(col) {
			playable++
		}
	}
	w := e.Weights
	return w.Cleared*float32(g.Cleared())/TableauSize +
		w.Stock*float32(len(g.stock))/(DeckSize-TableauSize-1) +
		w.Playable*float32(playable)/Columns
}

// EvaluateMove implements ai.MoveEvaluator. Invalid moves score -1.
func (e *Evaluator) EvaluateMove(g *Game, move Move) float32 {
	return ai.ScoreAfterMove[Move](g, move, -1, func() float32 {
		return e.EvaluateState(g, state.PlayerFirst)
	})
}

// IsLikelyUnwinnable implements ai.UnwinnableEstimator: it returns true if some column top card can never be
// played, because no card ranked next to it is visible on the waste top or left in the stock.
//
// Face-down cards are not considered, and since the cards below the column tops can also be played on the
// waste, it may have false positives.
func (e *Evaluator) IsLikelyUnwinnable(g *Game) bool {
	if g.IsGameWon() {
		return false
	}
	for col := range Columns {
		top, ok := g.ColumnTop(col)
		if !ok {
			continue
		}
		if top.Adjacent(g.WasteTop()) {
			continue
		}
		reachable := false
		for _, c := range g.stock {
			if top.Adjacent(c) {
				reachable = true
				break
			}
		}
		if !reachable {
			return true
		}
	}
	return false
}
