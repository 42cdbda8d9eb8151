// golf plays a number of seeded Golf patience deals with an AI configuration, and reports how many were won
// and the mean number of cards cleared: the fitness of the configuration and evaluator weights.
package main

import (
	"context"
	"flag"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/gomlx/exceptions"
	"github.com/janpfeifer/gamesearch/internal/games/golf"
	"github.com/janpfeifer/gamesearch/internal/players"
	"github.com/janpfeifer/gamesearch/internal/profilers"
	"github.com/janpfeifer/gamesearch/internal/ui/spinning"
	"github.com/janpfeifer/must"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"k8s.io/klog/v2"
)

var (
	flagAIConfig    = flag.String("ai", "maximizing,max_depth=4", "AI configuration used to play the deals.")
	flagWeights     = flag.String("weights", "", "Evaluator weights, e.g. \"cleared=0.7,stock=0.2,playable=0.05\". Defaults are used for those not given.")
	flagNumDeals    = flag.Int("num_deals", 100, "Number of deals to play.")
	flagSeed        = flag.Uint64("seed", 0, "Seed of the first deal: deals use consecutive seeds.")
	flagParallelism = flag.Int("parallelism", 0, "If > 0 ignore GOMAXPROCS and play "+
		"these many deals simultaneously.")
	flagPrintDeals = flag.Bool("print_deals", false, "Print the result of each deal.")
)

func main() {
	klog.InitFlags(nil)
	flag.Parse()

	// Capture Control+C
	ctx, cancel := context.WithCancel(spinning.SafeInterrupt(context.Background(), 5*time.Second))
	defer cancel()
	profiler := must.M1(profilers.Setup(ctx))
	defer profiler.OnQuit()

	weights := must.M1(golf.WeightsFromConfig(*flagWeights))
	// Check configuration before starting.
	must.M1(newPlayer(weights))
	must.M(playDeals(ctx, weights))
}

func newPlayer(weights golf.Weights) (*players.Player[*golf.Game, golf.Move], error) {
	return players.New[*golf.Game, golf.Move](*flagAIConfig, &golf.Evaluator{Weights: weights})
}

// Fitness accumulates the results of the deals.
type Fitness struct {
	mu                     sync.Mutex
	start                  time.Time
	won, abandoned, played int
	cleared                int
	total                  int
}

func (f *Fitness) String() string {
	meanCleared := 0.0
	if f.played > 0 {
		meanCleared = float64(f.cleared) / float64(f.played)
	}
	return fmt.Sprintf("Played %d of %d: %d won, %d abandoned, %.2f cards cleared on average - %s\033[0K",
		f.played, f.total, f.won, f.abandoned, meanCleared, time.Since(f.start).Round(time.Millisecond))
}

func playDeals(ctx context.Context, weights golf.Weights) error {
	f := &Fitness{start: time.Now(), total: *flagNumDeals}
	var wg errgroup.Group
	parallelism := runtime.GOMAXPROCS(0)
	if *flagParallelism > 0 {
		parallelism = *flagParallelism
	}
	wg.SetLimit(parallelism)
	fmt.Printf("\r%s", f)

	for dealIdx := range f.total {
		wg.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			seed := *flagSeed + uint64(dealIdx)
			var result golf.DealResult
			err := exceptions.TryCatch[error](func() {
				player := must.M1(newPlayer(weights))
				defer player.Finalize()
				result = must.M1(golf.PlayDeal(ctx, player, golf.NewDeal(seed)))
			})
			if ctx.Err() != nil {
				return nil
			}
			if err != nil {
				return errors.WithMessagef(err, "deal with seed %d failed", seed)
			}

			f.mu.Lock()
			defer f.mu.Unlock()
			f.played++
			f.cleared += result.Cleared
			if result.Won {
				f.won++
			}
			if result.Abandoned {
				f.abandoned++
			}
			if *flagPrintDeals {
				fmt.Printf("\rDeal #%d (seed %d): %s\033[0K\n", dealIdx, seed, result)
			}
			fmt.Printf("\r%s", f)
			return nil
		})
	}
	err := wg.Wait()
	fmt.Printf("\r%s\n", f)
	if ctx.Err() != nil {
		fmt.Printf("Interrupted: %s\n", ctx.Err())
		return nil
	}
	return err
}
