// Package parallel runs independent per-element computations over a range
// of indices using a bounded number of goroutines.
package parallel

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// minChunk keeps tiny meshes from being split into many goroutines
const minChunk = 1024

// Workers returns n if positive, otherwise the number of available CPUs
func Workers(n int) int {
	if n > 0 {
		return n
	}
	return runtime.NumCPU()
}

// For splits [0, n) into contiguous chunks and calls fn on each of them using
// at most workers goroutines (all CPUs when workers <= 0). The error returned
// is the one of the lowest failing chunk, so the reported element does not
// depend on scheduling.
func For(n, workers int, fn func(start, end int) error) error {
	if n <= 0 {
		return nil
	}
	workers = Workers(workers)

	chunk := (n + 4*workers - 1) / (4 * workers)
	if chunk < minChunk {
		chunk = minChunk
	}
	if workers == 1 || chunk >= n {
		return fn(0, n)
	}

	numChunks := (n + chunk - 1) / chunk
	errs := make([]error, numChunks)

	var g errgroup.Group
	g.SetLimit(workers)
	for c := 0; c < numChunks; c++ {
		c := c
		start := c * chunk
		end := min(start+chunk, n)
		g.Go(func() error {
			errs[c] = fn(start, end)
			return nil
		})
	}
	_ = g.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
