package golf

import (
	"context"
	"fmt"

	"github.com/janpfeifer/gamesearch/internal/parameters"
	"github.com/janpfeifer/gamesearch/internal/searchers"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// WeightsFromConfig parses the evaluator weights from a configuration string like
// "cleared=0.7,stock=0.2,playable=0.05". Weights not given keep their DefaultWeights value.
func WeightsFromConfig(config string) (Weights, error) {
	params := parameters.NewFromConfigString(config)
	w := DefaultWeights
	var err error
	for _, field := range []struct {
		key   string
		value *float32
	}{{"cleared", &w.Cleared}, {"stock", &w.Stock}, {"playable", &w.Playable}} {
		*field.value, err = parameters.PopParamOr(params, field.key, *field.value)
		if err != nil {
			return w, err
		}
		if *field.value < 0 {
			return w, errors.Errorf("weight %s=%g must be >= 0", field.key, *field.value)
		}
	}
	if err = params.CheckAllUsed(); err != nil {
		return w, errors.WithMessage(err, "invalid golf weights")
	}
	if sum := w.Cleared + w.Stock + w.Playable; sum >= 1 {
		return w, errors.Errorf("sum of golf weights (%g) must be < 1", sum)
	}
	return w, nil
}

// DealResult is the outcome of playing one deal.
type DealResult struct {
	Won, Abandoned bool

	// Cleared is the number of cards removed from the tableau.
	Cleared int

	// Moves played, including draws from the stock.
	Moves int
}

// String implements fmt.Stringer.
func (r DealResult) String() string {
	switch {
	case r.Won:
		return fmt.Sprintf("won in %d moves", r.Moves)
	case r.Abandoned:
		return fmt.Sprintf("abandoned after %d moves, %d cards cleared", r.Moves, r.Cleared)
	default:
		return fmt.Sprintf("lost after %d moves, %d cards cleared", r.Moves, r.Cleared)
	}
}

// PlayDeal plays g with agent until it is won, lost or abandoned (the agent returns searchers.Skip).
// g is left at its final position.
func PlayDeal(ctx context.Context, agent searchers.Agent[*Game, Move], g *Game) (DealResult, error) {
	var result DealResult
	for !g.IsGameWon() && !g.IsGameLost() {
		if err := ctx.Err(); err != nil {
			return result, errors.Wrap(err, "golf deal interrupted")
		}
		decision, err := agent.NextAction(ctx, g)
		if err != nil {
			return result, err
		}
		if decision.IsSkip() {
			result.Abandoned = true
			break
		}
		if err := g.ExecuteMove(decision.Move()); err != nil {
			return result, errors.WithMessagef(err, "agent played an invalid move at move #%d", result.Moves+1)
		}
		result.Moves++
		klog.V(3).Infof("golf: played %s\n%s", decision.Move(), g)
	}
	result.Won = g.IsGameWon()
	result.Cleared = g.Cleared()
	return result, nil
}
