// cmd/athrbench/main.go
// Copyright(c) 2022-2025 a32nx contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// athrbench runs scripted and randomized scenarios through the autothrust
// law, checks their expectations and invariants, and records or compares
// reference traces.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"runtime"
	"strings"
	"sync/atomic"
	"time"

	"github.com/salvapatuel/a32nx/athr"
	av "github.com/salvapatuel/a32nx/aviation"
	"github.com/salvapatuel/a32nx/log"
	"github.com/salvapatuel/a32nx/scenario"
	"github.com/salvapatuel/a32nx/trace"
	"github.com/salvapatuel/a32nx/util"

	"github.com/goforj/godump"
	"golang.org/x/sync/errgroup"
)

var (
	configFile    = flag.String("config", "", "JSON file with autothrust parameter overrides")
	scenarioFiles = flag.String("scenarios", "", "Comma-separated scenario JSON files (default: the builtin scenarios)")
	randomRuns    = flag.Int("random", 0, "Number of randomized soak scenarios to run in addition")
	randomCycles  = flag.Int("cycles", 20000, "Cycles per randomized scenario")
	seed          = flag.Int64("seed", 1, "Seed of the first randomized scenario")
	traceDir      = flag.String("traces", "testdata/traces", "Directory of reference traces")
	record        = flag.Bool("record", false, "Record reference traces for every scenario run")
	compare       = flag.Bool("compare", false, "Replay the reference trace of every scenario run and report differences")
	tolerance     = flag.Float64("tol", 1e-9, "Tolerance for command and limit differences when comparing traces")
	contextFrames = flag.Int("context", 8, "Number of frames to print before a trace divergence")
	dump          = flag.Bool("dump", false, "Dump the configuration and the state around failures")
	logLevel      = flag.String("loglevel", "info", "Logging level: debug, info, warn, error")
	logDir        = flag.String("logdir", "", "Log file directory")
	athrlog       = flag.String("athrlog", "", "Per-cycle trace categories (requires the athrlog build tag)")
	jobs          = flag.Int("j", runtime.NumCPU(), "Number of scenarios to run concurrently")
)

type result struct {
	name     string
	cycles   int
	failures []string
}

func main() {
	flag.Parse()

	lg := log.New(*logLevel, *logDir)
	if *athrlog != "" {
		athr.InitAthrLog(true, *athrlog)
	}

	cfg := athr.DefaultConfig()
	if *configFile != "" {
		f, err := os.Open(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", *configFile, err)
			os.Exit(1)
		}
		cfg, err = athr.LoadConfig(f)
		f.Close()
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", *configFile, err)
			os.Exit(1)
		}
	}
	units := av.StandardUnits()
	if *dump {
		godump.Dump(cfg)
	}

	sc, err := loadScenarios()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	for i := range *randomRuns {
		sc = append(sc, scenario.Random(*seed+int64(i), *randomCycles))
	}
	lg.Info("running scenarios", "count", len(sc), "record", *record, "compare", *compare)

	store := trace.NewStore(*traceDir, lg)
	results := make([]result, len(sc))
	var totalCycles atomic.Int64
	start := time.Now()

	eg, ctx := errgroup.WithContext(context.Background())
	eg.SetLimit(max(1, *jobs))
	for i, s := range sc {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r, err := runScenario(s, cfg, units, store, lg)
			if err != nil {
				return fmt.Errorf("%s: %w", s.Name, err)
			}
			results[i] = r
			totalCycles.Add(int64(r.cycles))
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		lg.Errorf("%v", err)
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	failed := 0
	for _, r := range results {
		if len(r.failures) == 0 {
			fmt.Printf("ok    %-24s %8d cycles\n", r.name, r.cycles)
			continue
		}
		failed++
		fmt.Printf("FAIL  %-24s %8d cycles\n", r.name, r.cycles)
		for _, f := range r.failures {
			fmt.Printf("      %s\n", strings.ReplaceAll(f, "\n", "\n      "))
		}
	}

	elapsed := time.Since(start)
	fmt.Printf("%d scenarios, %d failed, %d cycles in %s\n", len(results), failed, totalCycles.Load(),
		elapsed.Round(time.Millisecond))
	lg.Info("done", "scenarios", len(results), "failed", failed, "cycles", totalCycles.Load(),
		"elapsed", elapsed)
	if failed > 0 {
		os.Exit(1)
	}
}

func loadScenarios() ([]*scenario.Scenario, error) {
	if *scenarioFiles == "" {
		return scenario.Builtin()
	}

	var sc []*scenario.Scenario
	for _, fn := range strings.Split(*scenarioFiles, ",") {
		s, err := scenario.LoadFile(strings.TrimSpace(fn))
		if err != nil {
			return nil, err
		}
		sc = append(sc, s)
	}
	return sc, nil
}

// runScenario returns an error only for problems that should stop the
// whole run; check failures are reported in the result.
func runScenario(s *scenario.Scenario, cfg *athr.Config, units av.Units, store *trace.Store,
	lg *log.Logger) (result, error) {
	r := result{name: s.Name}

	inputs, err := s.Inputs()
	if err != nil {
		return r, err
	}
	tr, err := trace.Record(s.Name, cfg, units, inputs, lg.With("scenario", s.Name))
	if err != nil {
		return r, err
	}
	r.cycles = len(tr.Frames)

	outputs := make([]athr.Output, len(tr.Frames))
	for i, f := range tr.Frames {
		outputs[i] = f.Output
	}
	if err := s.Check(outputs); err != nil {
		r.failures = append(r.failures, err.Error())
	}
	if err := scenario.CheckInvariants(cfg, inputs, outputs); err != nil {
		r.failures = append(r.failures, err.Error())
	}

	if *compare {
		ref, err := store.Get(s.Name)
		if errors.Is(err, trace.ErrTraceNotFound) {
			r.failures = append(r.failures, "no reference trace")
		} else if err != nil {
			return r, err
		} else if got, mm, err := trace.Replay(ref, *tolerance, lg); err != nil {
			r.failures = append(r.failures, err.Error())
			if len(mm) > 0 && mm[0].Cycle < len(got) {
				r.failures = append(r.failures, divergence(ref, got, mm[0].Cycle))
			}
		}
	}

	if *record {
		if err := store.Put(tr); err != nil {
			return r, err
		}
		lg.Infof("%s: recorded %d frames to %s", s.Name, len(tr.Frames), store.Path(s.Name))
	}

	return r, nil
}

// divergence formats the frames leading up to the first mismatch.
func divergence(ref *trace.Trace, got []athr.Output, cycle int) string {
	rb := util.NewRingBuffer[string](max(1, *contextFrames))
	for i := 0; i <= cycle; i++ {
		mark := util.Select(i == cycle, ">", " ")
		rb.Add(fmt.Sprintf("%s %7d  ref %s\n           got %s", mark, i, ref.Frames[i].Output, got[i]))
	}

	var sb strings.Builder
	for i := range rb.Size() {
		sb.WriteString(rb.Get(i))
		sb.WriteByte('\n')
	}
	if *dump {
		sb.WriteString(godump.DumpStr(ref.Frames[cycle].Input))
	}
	return sb.String()
}
