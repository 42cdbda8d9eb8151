// Package spinning provides a friendly spinning clock (or some other spinning symbols)
// to show while the AI is thinking.
package spinning

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"k8s.io/klog/v2"
)

var (
	ThemeAscii = []rune(`|/-\`)
	ThemeMoon  = []rune("🌑🌒🌓🌔🌕🌖🌗🌘")
	ThemeClock = []rune("🕐🕑🕒🕓🕔🕕🕖🕗🕘🕙🕚🕛")

	// Theme used by New. It defaults to ThemeClock.
	Theme = ThemeClock
)

// Spinning is a spinning symbol being displayed, until Done is called.
type Spinning struct {
	wg     sync.WaitGroup
	cancel func()
}

// SafeInterrupt captures SigInt (Ctrl+C) and SigTerm and returns a context that is cancelled when one of
// them arrives. Searches using the context return their best move so far. If the program hasn't exited
// after gracePeriod, the terminal is reset and the program exits.
func SafeInterrupt(ctx context.Context, gracePeriod time.Duration) context.Context {
	ctx, cancel := context.WithCancel(ctx)
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		s := <-sigChan
		fmt.Println()
		klog.Errorf("Got interrupted (signal %q), shutting down... (%s)", s, gracePeriod)
		cancel()
		time.Sleep(gracePeriod)
		Reset(os.Stdout)
		klog.Exitf("Graceful shutting down %s period expired, exiting.", gracePeriod)
	}()
	return ctx
}

// Reset terminal: make cursor visible, restore default terminal colors.
func Reset(w io.Writer) {
	fmt.Fprint(w, "\033[?25h\033[39;49;0m\n")
}

// New starts a spinning display on os.Stdout, that runs on a separate goroutine.
// It stops when Spinning.Done is called or ctx is cancelled.
func New(ctx context.Context) *Spinning {
	return NewWithWriter(ctx, os.Stdout, Theme, 500*time.Millisecond)
}

// NewWithWriter is like New, but writes to w, with the given theme and period.
func NewWithWriter(ctx context.Context, w io.Writer, theme []rune, period time.Duration) *Spinning {
	s := &Spinning{}
	ctx, s.cancel = context.WithCancel(ctx)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(period)
		defer ticker.Stop()
		fmt.Fprint(w, "\033[?25l")       // Hide cursor.
		defer fmt.Fprint(w, "\033[?25h") // Restore cursor.

		fmt.Fprint(w, "  ")
		for idx := 0; ; idx = (idx + 1) % len(theme) {
			fmt.Fprintf(w, "\b\b%c", theme[idx])
			select {
			case <-ctx.Done():
				fmt.Fprint(w, "\b\b")
				return
			case <-ticker.C:
			}
		}
	}()
	return s
}

// Done stops the spinning, and waits for the display to be cleared.
func (s *Spinning) Done() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.wg.Wait()
}
