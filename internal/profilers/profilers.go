// Package profilers implement helper functions to set up profiling for the binaries: linking it installs
// the profiler flags.
package profilers

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"runtime"
	"runtime/pprof"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

var (
	flagProfiler   = flag.Int("prof", -1, "If set, serves the HTTP profiler at the given port, and keeps the program alive at the end.")
	flagCPUProfile = flag.String("cpu_profile", "", "write cpu profile to `file`")
	flagMemProfile = flag.String("mem_profile", "", "write heap profile to `file` at the end of the program")
)

// Profiler holds the profilers started by Setup.
type Profiler struct {
	ctx     context.Context
	cpuFile *os.File
	addr    string
}

// Setup starts the HTTP (flag -prof) and CPU profilers (flag -cpu_profile), if they were configured.
// It should be followed by a deferred call to Profiler.OnQuit.
func Setup(ctx context.Context) (*Profiler, error) {
	p := &Profiler{ctx: ctx}
	if *flagProfiler >= 0 {
		p.addr = fmt.Sprintf("localhost:%d", *flagProfiler)
		klog.Infof("Starting profiler on %s/debug/pprof: access it with $ go tool pprof %s/debug/pprof/heap", p.addr, p.addr)
		go func() {
			klog.Fatal(http.ListenAndServe(p.addr, nil))
		}()
	}
	if *flagCPUProfile != "" {
		f, err := os.Create(*flagCPUProfile)
		if err != nil {
			return nil, errors.Wrap(err, "could not create CPU profile")
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			_ = f.Close()
			return nil, errors.Wrap(err, "could not start CPU profile")
		}
		p.cpuFile = f
	}
	return p, nil
}

// OnQuit should be called before the exit of the main() function, typically as a deferred call
// just after Setup.
//
// If the HTTP profiler is enabled, it keeps the program alive until the context given to Setup is done.
func (p *Profiler) OnQuit() {
	if p.cpuFile != nil {
		pprof.StopCPUProfile()
		if err := p.cpuFile.Close(); err != nil {
			klog.Errorf("Failed to close CPU profile: %+v", err)
		}
	}
	if *flagMemProfile != "" {
		if err := writeHeapProfile(*flagMemProfile); err != nil {
			klog.Errorf("%+v", err)
		}
	}
	if p.addr == "" || p.ctx.Err() != nil {
		return
	}
	// Garbage collect, to see if there is anything leaking.
	for range 10 {
		runtime.GC()
	}
	klog.Infof("Program finished: kept alive with profiler opened at %s/debug/pprof, interrupt (Ctrl+C) to exit", p.addr)
	<-p.ctx.Done()
}

func writeHeapProfile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "could not create memory profile")
	}
	defer func() { _ = f.Close() }()
	runtime.GC()
	return errors.Wrap(pprof.WriteHeapProfile(f), "could not write memory profile")
}
