package searchers

import (
	"fmt"
	"time"

	"github.com/janpfeifer/gamesearch/internal/ttable"
	"k8s.io/klog/v2"
)

// Stats stores running stats collected during the search: for benchmarking, monitoring and debugging purposes.
type Stats struct {
	// Nodes visited during search -- execution of a move (or a clone of the state), followed by its evaluation.
	Nodes int

	// Evals is the number of calls to the evaluator.
	Evals int

	// Prunes counts the alpha-beta cutoffs.
	Prunes int

	// Iterations of iterative deepening completed.
	Iterations int

	start time.Time
}

// Start resets the stats and starts the clock.
func (s *Stats) Start() {
	*s = Stats{start: time.Now()}
}

// String implements fmt.Stringer.
func (s *Stats) String() string {
	return fmt.Sprintf("nodes=%d, evals=%d, prunes=%d, iterations=%d", s.Nodes, s.Evals, s.Prunes, s.Iterations)
}

// Log the stats with klog, if verbosity is >= 2. table is optional.
func (s *Stats) Log(name string, table *ttable.Table) {
	if !klog.V(2).Enabled() {
		return
	}
	elapsed := time.Since(s.start).Seconds()
	klog.Infof("%s search counts: %s", name, s)
	if elapsed > 0 {
		klog.Infof("  nodes/s=%.1f, evals/s=%.1f", float64(s.Nodes)/elapsed, float64(s.Evals)/elapsed)
	}
	if table != nil {
		klog.Infof("  transposition table: %d positions, %s", table.Len(), table.Stats())
	}
}
