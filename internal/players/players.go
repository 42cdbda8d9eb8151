// Package players provides a factory of AI players from configuration strings.
package players

import (
	"context"
	"math/rand/v2"

	"github.com/janpfeifer/gamesearch/internal/ai"
	"github.com/janpfeifer/gamesearch/internal/parameters"
	"github.com/janpfeifer/gamesearch/internal/searchers"
	"github.com/janpfeifer/gamesearch/internal/searchers/alphabeta"
	"github.com/janpfeifer/gamesearch/internal/searchers/bruteforce"
	"github.com/janpfeifer/gamesearch/internal/searchers/maximizing"
	"github.com/janpfeifer/gamesearch/internal/searchers/minimax"
	"github.com/janpfeifer/gamesearch/internal/state"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// DefaultPlayerConfig is used if no configuration was given to the AI. The value may be changed by the
// binaries.
var DefaultPlayerConfig = "alphabeta,max_depth=5"

// DefaultGiveUp is the value of give_up when it is not given in the configuration. Games where a flat
// evaluation is common (e.g. Connect Four with a win-only evaluator) should set it to false, since an
// all-tied root is then judged unwinnable.
var DefaultGiveUp = true

// Player is an agent built from a configuration string, along with the evaluator it uses.
type Player[S any, M comparable] struct {
	searchers.Agent[S, M]
	Evaluator ai.Evaluator[S]

	// Config used to create the player.
	Config string
}

// String implements fmt.Stringer.
func (p *Player[S, M]) String() string {
	return p.Config + "/" + p.Evaluator.String()
}

// Play returns the decision of the player's agent for s, logging it.
func (p *Player[S, M]) Play(ctx context.Context, s S) (searchers.Decision[M], error) {
	decision, err := p.NextAction(ctx, s)
	if err != nil {
		return decision, errors.WithMessagef(err, "AI (%s) failed to choose a move", p)
	}
	if klog.V(2).Enabled() {
		klog.Infof("AI (%s) playing %s", p, decision)
	}
	return decision, nil
}

// Finalize is called at the end of a match: it resets the agent for the next one.
func (p *Player[S, M]) Finalize() {
	klog.V(1).Infof("Player (%s) finalized", p)
	p.ResetState()
}

// New creates a new AI player given the configuration string.
//
// Args:
//
//   - config: a comma-separated list of parameters with optional values associated. Exactly one searcher
//     must be given. If empty, the default is given by DefaultPlayerConfig.
//     E.g.: "alphabeta,max_depth=6,give_up=false"
//   - evaluator: used by the searcher to score positions.
//
// Parameters:
//
//   - bruteforce, alphabeta, maximizing or minimax (bool): the searcher to use.
//   - max_depth (int): max depth of search, in plies. The default depends on the searcher.
//   - give_up (bool): alphabeta and maximizing only: whether to abandon games judged unwinnable. Default is
//     given by DefaultGiveUp.
//   - improvement_epsilon, tie_epsilon (float): alphabeta and maximizing only: tolerances of the unwinnability
//     heuristic. See searchers.Epsilons.
//   - seed (int): seed for the random choices (minimax tie-breaking and randomness). If not set the choices
//     are not reproducible.
//   - randomness (float): Adds a layer of randomness in the search: the first level choice is
//     distributed according to a softmax of the scores of each move, divided by this value.
//     So lower values (closer to 0) means less randomness, higher value means more randomness,
//     hence more exploration. Default is 0.
//   - max_move_randomness (int): only use randomness for the first moves played. Default is 0, meaning no limit.
//
// Unknown parameters are rejected.
func New[S state.Clonable[S, M], M comparable](config string, evaluator ai.Evaluator[S]) (*Player[S, M], error) {
	if config == "" {
		config = DefaultPlayerConfig
	}
	params := parameters.NewFromConfigString(config)
	agent, err := newAgent[S, M](params, evaluator)
	if err == nil {
		err = params.CheckAllUsed()
	}
	if err != nil {
		return nil, errors.WithMessagef(err, "failed to create AI player from %q", config)
	}
	return &Player[S, M]{Agent: agent, Evaluator: evaluator, Config: config}, nil
}

var searcherKeys = []string{"bruteforce", "alphabeta", "maximizing", "minimax"}

func newAgent[S state.Clonable[S, M], M comparable](params parameters.Params, evaluator ai.Evaluator[S]) (searchers.Agent[S, M], error) {
	var searcherKey string
	for _, key := range searcherKeys {
		use, err := parameters.PopParamOr(params, key, false)
		if err != nil {
			return nil, err
		}
		if !use {
			continue
		}
		if searcherKey != "" {
			return nil, errors.Errorf("multiple searchers defined: %q and %q", searcherKey, key)
		}
		searcherKey = key
	}
	if searcherKey == "" {
		return nil, errors.Errorf("no searcher defined, use one of %q", searcherKeys)
	}

	hasDepth := params.Has("max_depth")
	maxDepth, err := parameters.PopParamOr(params, "max_depth", 0)
	if err != nil {
		return nil, err
	}
	if hasDepth {
		if err := searchers.CheckDepth(maxDepth); err != nil {
			return nil, err
		}
	}
	hasSeed := params.Has("seed")
	seed, err := parameters.PopParamOr(params, "seed", uint64(0))
	if err != nil {
		return nil, err
	}

	var agent searchers.ScoringAgent[S, M]
	switch searcherKey {
	case "bruteforce":
		bf := bruteforce.New[S, M](evaluator)
		if maxDepth > 0 {
			bf.WithMaxDepth(maxDepth)
		}
		agent = bf
	case "alphabeta":
		ab := alphabeta.New[S, M](evaluator)
		if maxDepth > 0 {
			ab.WithMaxDepth(maxDepth)
		}
		giveUp, eps, err := popGiveUpParams(params)
		if err != nil {
			return nil, err
		}
		agent = ab.WithGiveUp(giveUp).WithEpsilons(eps)
	case "maximizing":
		ms := maximizing.New[S, M](evaluator)
		if maxDepth > 0 {
			ms.WithMaxDepth(maxDepth)
		}
		giveUp, eps, err := popGiveUpParams(params)
		if err != nil {
			return nil, err
		}
		agent = ms.WithGiveUp(giveUp).WithEpsilons(eps)
	case "minimax":
		mm := minimax.New[S, M](evaluator)
		if maxDepth > 0 {
			mm.WithMaxDepth(maxDepth)
		}
		if hasSeed {
			mm.WithSeed(seed)
		}
		agent = mm
	}

	randomness, err := parameters.PopParamOr(params, "randomness", 0.0)
	if err != nil {
		return nil, err
	}
	maxMoveRandomness, err := parameters.PopParamOr(params, "max_move_randomness", 0)
	if err != nil {
		return nil, err
	}
	if randomness < 0 || maxMoveRandomness < 0 {
		return nil, errors.Errorf("randomness (%g) and max_move_randomness (%d) must be >= 0", randomness, maxMoveRandomness)
	}
	var rng *rand.Rand
	if hasSeed {
		rng = rand.New(rand.NewPCG(seed, ^seed))
	}
	return searchers.NewRandomized[S, M](agent, randomness, maxMoveRandomness, rng), nil
}

// popGiveUpParams parses the parameters of the searchers that can abandon a game.
func popGiveUpParams(params parameters.Params) (giveUp bool, eps searchers.Epsilons, err error) {
	eps = searchers.DefaultEpsilons
	giveUp, err = parameters.PopParamOr(params, "give_up", DefaultGiveUp)
	if err != nil {
		return
	}
	eps.Improvement, err = parameters.PopParamOr(params, "improvement_epsilon", eps.Improvement)
	if err != nil {
		return
	}
	eps.Tie, err = parameters.PopParamOr(params, "tie_epsilon", eps.Tie)
	return
}
