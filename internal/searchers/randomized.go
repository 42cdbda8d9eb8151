package searchers

import (
	"context"
	"math"
	"math/rand/v2"
	"slices"

	"github.com/gomlx/exceptions"
	"k8s.io/klog/v2"
)

// ScoringAgent is an Agent that reports the scores of its root moves.
type ScoringAgent[S any, M comparable] interface {
	Agent[S, M]
	RootScorer[M]
}

// NewRandomized adds randomness to the moves played by an existing agent.
// Args:
//
//   - agent: Baseline agent, it must report its root scores.
//   - randomness (>=0): Amount of randomness to use: it is applied as a divisor to the scores
//     returned by the agent, except if there is a proven winning move.
//     The larger the value the more it leads to randomness (exploration), and lower values
//     lead to "pick the best scoring move" (exploitation), with zero meaning no randomness.
//   - maxMoveRandomness: after the agent played this many moves (since the last ResetState) no more
//     randomness is used. This allows randomness to be used only earlier in the match. Zero means no limit.
//   - rng: source of randomness. If nil, a randomly seeded one is used.
func NewRandomized[S any, M comparable](agent ScoringAgent[S, M], randomness float64, maxMoveRandomness int, rng *rand.Rand) Agent[S, M] {
	if randomness <= 0 {
		// Without randomness, simply return the original agent.
		return agent
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &randomizedAgent[S, M]{agent: agent, randomness: randomness, maxMoveRandomness: maxMoveRandomness, rng: rng}
}

// randomizedAgent is a meta Agent, that introduces randomness to the choices of its base agent.
type randomizedAgent[S any, M comparable] struct {
	agent             ScoringAgent[S, M]
	randomness        float64
	maxMoveRandomness int
	movesPlayed       int
	rng               *rand.Rand
}

// NextAction implements Agent.
func (ra *randomizedAgent[S, M]) NextAction(ctx context.Context, s S) (Decision[M], error) {
	decision, err := ra.agent.NextAction(ctx, s)
	if err != nil || decision.IsSkip() {
		return decision, err
	}
	ra.movesPlayed++
	scored := ra.agent.LastScores()

	// If we reached the max move number for randomness, or if the agent doesn't return scores for the
	// different moves, or if there is only one move possible, or if there is a proven win,
	// we don't add any randomness.
	if (ra.maxMoveRandomness > 0 && ra.movesPlayed > ra.maxMoveRandomness) || len(scored) <= 1 {
		return decision, nil
	}
	found := false
	for _, sm := range scored {
		if sm.WinDepth > 0 && sm.SearchScore > 0 {
			return decision, nil
		}
		if sm.Move == decision.Move() {
			found = true
		}
	}
	if !found {
		exceptions.Panicf("randomizedAgent: agent chose %v, which is not among its %d scored root moves!?",
			decision.Move(), len(scored))
	}

	// Calculate probability for each move.
	logits := make([]float64, len(scored))
	for ii, sm := range scored {
		logits[ii] = float64(sm.SearchScore) / ra.randomness
	}
	probabilities := softmax(logits)

	// Select from probabilities.
	chance := ra.rng.Float64()
	for moveIdx, value := range probabilities {
		if chance > value {
			chance -= value
			continue
		}
		if klog.V(2).Enabled() {
			klog.Infof("randomizedAgent selection: %s (base agent chose %s)", scored[moveIdx], decision)
		}
		return Play(scored[moveIdx].Move), nil
	}
	// Rounding errors: take the last one.
	return Play(scored[len(scored)-1].Move), nil
}

// ResetState implements Agent.
func (ra *randomizedAgent[S, M]) ResetState() {
	ra.movesPlayed = 0
	ra.agent.ResetState()
}

func softmax(values []float64) (probs []float64) {
	probs = make([]float64, len(values))
	var sum float64

	// Subtract maxValue from all values keep the probability the same, but makes for more numerically stable
	// values.
	maxValue := slices.Max(values)
	for ii, value := range values {
		probs[ii] = math.Exp(value - maxValue)
		sum += probs[ii]
	}
	for ii := range probs {
		probs[ii] /= sum
	}
	return
}
