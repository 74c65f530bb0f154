package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/joshuapare/ownkit/tree"
)

var (
	benchN          int
	benchAllocators []string
)

func init() {
	cmd := newBenchCmd()
	cmd.Flags().IntVar(&benchN, "n", 100000, "Alloc/realloc/free cycles per allocator")
	cmd.Flags().StringSliceVar(&benchAllocators, "allocator", allocatorNames, "Allocators to measure")
	rootCmd.AddCommand(cmd)
}

func newBenchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Measure allocation throughput per allocator",
		Long: `The bench command runs alloc, grow and free cycles through a tree node for
each allocator and reports the cost per cycle.

Example:
  ownctl bench
  ownctl bench --n 1000000 --allocator pool,arena`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBench()
		},
	}
	return cmd
}

// benchResult is the measurement for one allocator.
type benchResult struct {
	Allocator   string        `json:"allocator"`
	Cycles      int           `json:"cycles"`
	Elapsed     time.Duration `json:"elapsed_ns"`
	NsPerCycle  float64       `json:"ns_per_cycle"`
	CyclesPerMs float64       `json:"cycles_per_ms"`
}

func runBench() error {
	if benchN <= 0 {
		return fmt.Errorf("--n must be positive, got %d", benchN)
	}

	results := make([]benchResult, 0, len(benchAllocators))
	for _, name := range benchAllocators {
		b, err := newBackend(name)
		if err != nil {
			return err
		}
		printVerbose("Benchmarking %s (%d cycles)\n", name, benchN)
		res := benchAllocator(b, benchN)
		if err := b.close(); err != nil {
			return fmt.Errorf("release %s: %w", name, err)
		}
		results = append(results, res)
	}

	if jsonOut {
		return printJSON(results)
	}

	st := newStyles()
	printInfo("%s\n", st.title.Render(fmt.Sprintf("%-10s %12s %14s %14s", "allocator", "cycles", "ns/cycle", "cycles/ms")))
	for _, r := range results {
		printInfo("%-10s %12d %14.1f %14.1f\n", r.Allocator, r.Cycles, r.NsPerCycle, r.CyclesPerMs)
	}
	return nil
}

var benchSizes = [...]int{16, 48, 100, 200, 24, 64}

// benchAllocator allocates, doubles and frees n blocks on one node.
func benchAllocator(b *backend, n int) benchResult {
	root := tree.NewRoot(b.Allocator)
	defer root.Destroy()

	start := time.Now()
	for i := range n {
		size := benchSizes[i%len(benchSizes)]
		mem := root.Alloc(1, size)
		mem = root.Realloc(mem, 1, size*2)
		root.Free(mem)
	}
	elapsed := time.Since(start)

	res := benchResult{
		Allocator: b.Name(),
		Cycles:    n,
		Elapsed:   elapsed,
	}
	if elapsed > 0 {
		res.NsPerCycle = float64(elapsed.Nanoseconds()) / float64(n)
		res.CyclesPerMs = float64(n) / (float64(elapsed.Nanoseconds()) / 1e6)
	}
	return res
}
