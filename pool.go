package printready

import (
	"context"
	"runtime"
	"sync"
)

// Worker sizing constants.
const (
	// MinWorkers ensures at least one render runs.
	MinWorkers = 1

	// MaxWorkers caps concurrent browsers to limit memory (~200MB each).
	MaxWorkers = 8

	// cpuDivisor leaves headroom for Chrome child processes.
	cpuDivisor = 2
)

// ResolveWorkers determines how many renders to run at once.
// Priority: explicit workers > GOMAXPROCS-based calculation.
func ResolveWorkers(workers int) int {
	if workers > 0 {
		return workers
	}

	// GOMAXPROCS is adjusted by automaxprocs in containers.
	n := runtime.GOMAXPROCS(0) / cpuDivisor

	if n < MinWorkers {
		return MinWorkers
	}
	if n > MaxWorkers {
		return MaxWorkers
	}
	return n
}

// BatchResult is the outcome of one request of a batch.
type BatchResult struct {
	Index    int
	Request  RenderRequest
	Artifact *Artifact
	Err      error
}

// RenderAll renders reqs with at most workers renders in flight and
// returns the results in request order. Requests not yet started when ctx
// is done fail with ctx's error.
func (p *Printer) RenderAll(ctx context.Context, reqs []RenderRequest, workers int) []BatchResult {
	results := make([]BatchResult, len(reqs))
	if len(reqs) == 0 {
		return results
	}

	workers = ResolveWorkers(workers)
	if workers > len(reqs) {
		workers = len(reqs)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				res := BatchResult{Index: i, Request: reqs[i]}
				if err := ctx.Err(); err != nil {
					res.Err = err
				} else {
					res.Artifact, res.Err = p.Render(ctx, reqs[i])
				}
				results[i] = res
			}
		}()
	}

	for i := range reqs {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return results
}
