// Command ppsim-sweep runs a grid of alpha/beta motion laws headless and ranks
// them by how many particles end up in dense clusters.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"runtime"
	"sort"
	"sync"
	"time"

	"ppsim/internal/archive"
	"ppsim/internal/control"
	"ppsim/internal/msglog"
	"ppsim/internal/state"
)

type paramSet struct {
	alpha float64 // degrees
	beta  float64 // degrees
}

func (p paramSet) String() string {
	return fmt.Sprintf("alpha=%.1f beta=%.1f", p.alpha, p.beta)
}

type scenarioResult struct {
	params  paramSet
	census  state.Census
	elapsed time.Duration
	snap    state.Snapshot
}

// score favours laws that build dense cores.
func (r scenarioResult) score() float64 {
	return r.census.Share(state.ColorYellow) + 0.5*r.census.Share(state.ColorBlue)
}

func main() {
	steps := flag.Int("steps", 300, "ticks to simulate per scenario")
	workers := flag.Int("workers", runtime.NumCPU(), "number of worker goroutines")
	num := flag.Int("num", 1500, "particles per scenario")
	size := flag.Int("size", 400, "world width and height")
	seed := flag.Int64("seed", 1337, "placement seed shared by every scenario")
	alphaMin := flag.Float64("alpha-min", 150, "first alpha in degrees")
	alphaMax := flag.Float64("alpha-max", 210, "last alpha in degrees")
	alphaStep := flag.Float64("alpha-step", 15, "alpha increment in degrees")
	betaMin := flag.Float64("beta-min", 5, "first beta in degrees")
	betaMax := flag.Float64("beta-max", 30, "last beta in degrees")
	betaStep := flag.Float64("beta-step", 5, "beta increment in degrees")
	top := flag.Int("top", 5, "results to print")
	archivePath := flag.String("archive", "", "store the best final states in this sqlite archive")
	flag.Parse()

	if *workers < 1 {
		*workers = 1
	}
	if *alphaStep <= 0 || *betaStep <= 0 {
		log.Fatalf("alpha-step and beta-step must be positive")
	}

	base := state.DefaultConfig()
	base.Num = *num
	base.Width, base.Height = *size, *size
	base.Stop = *steps
	if err := base.Validate(); err != nil {
		log.Fatalf("base config: %v", err)
	}

	var sets []paramSet
	for a := *alphaMin; a <= *alphaMax+1e-9; a += *alphaStep {
		for b := *betaMin; b <= *betaMax+1e-9; b += *betaStep {
			sets = append(sets, paramSet{alpha: a, beta: b})
		}
	}

	fmt.Printf("Sweeping %d parameter sets (%d workers, %d steps, %d particles)\n", len(sets), *workers, *steps, *num)

	jobs := make(chan paramSet)
	results := make(chan scenarioResult)
	var wg sync.WaitGroup

	for i := 0; i < *workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for params := range jobs {
				res, err := runScenario(base, params, *seed)
				if err != nil {
					log.Printf("%s: %v", params, err)
					continue
				}
				results <- res
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	go func() {
		for _, params := range sets {
			jobs <- params
		}
		close(jobs)
	}()

	start := time.Now()
	var all []scenarioResult
	for res := range results {
		all = append(all, res)
	}

	sort.Slice(all, func(i, j int) bool { return all[i].score() > all[j].score() })
	elapsed := time.Since(start)

	fmt.Printf("\nTop %d results (elapsed %s):\n", *top, elapsed.Round(time.Millisecond))
	for i := 0; i < len(all) && i < *top; i++ {
		res := all[i]
		c := res.census
		fmt.Printf("%2d) score=%.3f mean=%.2f max=%d bands[green=%d brown=%d blue=%d yellow=%d] took=%s %s\n",
			i+1, res.score(), c.MeanNeighbours, c.MaxNeighbours,
			c.Bands[state.ColorGreen], c.Bands[state.ColorBrown], c.Bands[state.ColorBlue], c.Bands[state.ColorYellow],
			res.elapsed.Round(time.Millisecond), res.params)
	}

	if *archivePath != "" {
		if err := archiveTop(*archivePath, all[:min(*top, len(all))], *steps); err != nil {
			log.Fatalf("archive: %v", err)
		}
		fmt.Printf("\nStored %d final states in %s\n", min(*top, len(all)), *archivePath)
	}
}

// runScenario drives one State through an orchestrator until its stop count.
func runScenario(base state.Config, params paramSet, seed int64) (scenarioResult, error) {
	cfg := base
	cfg.Alpha = state.DegToRad(params.alpha)
	cfg.Beta = state.DegToRad(params.beta)

	st, err := state.NewWithConfig(msglog.New(8), cfg,
		state.WithSeed(seed), state.WithWorkers(1))
	if err != nil {
		return scenarioResult{}, err
	}
	orch := control.New(st)

	start := time.Now()
	if err := orch.Run(context.Background(), 0); err != nil {
		return scenarioResult{}, err
	}
	return scenarioResult{
		params:  params,
		census:  st.Census(),
		elapsed: time.Since(start),
		snap:    st.Snapshot(),
	}, nil
}

func archiveTop(path string, results []scenarioResult, tick int) error {
	store, err := archive.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()
	ctx := context.Background()
	for _, res := range results {
		label := fmt.Sprintf("sweep-a%g-b%g", res.params.alpha, res.params.beta)
		if _, err := store.Save(ctx, label, tick, res.snap); err != nil {
			return err
		}
	}
	return nil
}
