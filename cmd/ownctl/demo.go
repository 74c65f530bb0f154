package main

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/joshuapare/ownkit/tree"
	"github.com/joshuapare/ownkit/tree/alloc"
	"github.com/joshuapare/ownkit/tree/array"
	"github.com/joshuapare/ownkit/tree/hashmap"
	"github.com/joshuapare/ownkit/tree/printer"
	"github.com/joshuapare/ownkit/tree/thread"
	"github.com/joshuapare/ownkit/tree/verify"
)

const demoJobTimeout = 10 * time.Second

var (
	demoAllocator string
	demoDepth     int
	demoWorkers   int
	demoJobs      int
	demoStats     bool
)

func init() {
	cmd := newDemoCmd()
	cmd.Flags().StringVar(&demoAllocator, "allocator", "heap", "Allocator backing the tree (heap, pool, arena)")
	cmd.Flags().IntVar(&demoDepth, "depth", 0, "Maximum depth to print (0 = unlimited)")
	cmd.Flags().IntVar(&demoWorkers, "workers", 4, "Thread pool workers")
	cmd.Flags().IntVar(&demoJobs, "jobs", 8, "Futures to run on the pool")
	cmd.Flags().BoolVar(&demoStats, "stats", false, "Print allocator statistics")
	rootCmd.AddCommand(cmd)
}

func newDemoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Build a sample tree and print it",
		Long: `The demo command builds a small ownership tree holding plain allocations,
an array filled by futures on a thread pool, a case-insensitive string map,
a weak pointer and a join node, verifies it and prints it.

Example:
  ownctl demo
  ownctl demo --allocator pool --depth 2
  ownctl demo --json --stats`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo()
		},
	}
	return cmd
}

func runDemo() error {
	b, err := newBackend(demoAllocator)
	if err != nil {
		return err
	}
	defer b.close()

	counting := alloc.NewCounting(b.Allocator)
	root := tree.NewRoot(counting)
	root.SetName("demo")
	defer root.Destroy()

	printVerbose("Building demo tree on %s\n", counting.Name())
	if err := buildDemoTree(root, demoWorkers, demoJobs); err != nil {
		return err
	}
	if err := verify.AllInvariants(root); err != nil {
		return fmt.Errorf("demo tree is inconsistent: %w", err)
	}

	opts := printer.DefaultOptions()
	opts.MaxDepth = demoDepth
	opts.ShowAllocations = verbose

	var stats []stat
	if demoStats {
		if stats, err = gatherStats(counting, b); err != nil {
			return err
		}
	}

	if jsonOut {
		var buf bytes.Buffer
		opts.Format = printer.FormatJSON
		if err := printer.New(&buf, opts).PrintTree(root); err != nil {
			return err
		}
		return printJSON(struct {
			Tree  json.RawMessage `json:"tree"`
			Stats []stat          `json:"stats,omitempty"`
		}{Tree: buf.Bytes(), Stats: stats})
	}

	if quiet {
		return nil
	}
	st := newStyles()
	printInfo("%s\n", st.title.Render("ownership tree"))
	if err := printer.New(os.Stdout, opts).PrintTree(root); err != nil {
		return err
	}
	if demoStats {
		printStats(st, stats)
	}
	return nil
}

// buildDemoTree hangs the sample structure off root:
//
//	config   plain node with a settings buffer
//	squares  uint32 array filled by pool futures
//	index    folded-string map from "Item-N" to the square's array index
//	workers  thread pool
//	config.ref weak pointer to config
//	session  join shared by config and index
//	session.weak weak join to session, used to attach the session buffer
func buildDemoTree(root *tree.Node, workers, jobs int) error {
	config := tree.New(root)
	config.SetName("config")
	settings := config.Alloc(1, 64)
	copy(settings, "listen=:8080\nworkers=4\n")
	tree.NewDestroyLog(config, "config", "settings released")

	squares := array.NewDyn(root, nil, 4, 0, 4)
	squares.SetName("squares")

	index := hashmap.NewFoldedStrings(root, 4, jobs)
	index.SetName("index")

	pool := thread.NewPool(root, workers)
	pool.SetName("workers")

	batch := tree.New(root)
	batch.SetName("jobs")
	futures := make([]*thread.Future, jobs)
	for i := range futures {
		futures[i] = thread.RunFuture(batch, func(f *thread.Future) {
			n := uint32(f.User().(int))
			out := f.Alloc(4, 1)
			binary.LittleEndian.PutUint32(out, n*n)
		}, pool, i)
	}
	for i, f := range futures {
		if !f.WaitTimeout(demoJobTimeout) {
			return fmt.Errorf("job %d did not finish", i)
		}
		result := f.Allocations()[0]
		squares.Push(result)
		var pos [4]byte
		binary.LittleEndian.PutUint32(pos[:], uint32(squares.Len()-1))
		index.SetString(fmt.Sprintf("Item-%d", i), pos[:])
	}
	batch.Destroy()

	ref := tree.NewPtr(root, config)
	ref.SetName("config.ref")

	session := tree.NewJoin(root.Allocator(), config, index.Node)
	session.SetName("session")

	weak := tree.NewWeakJoin(root, session)
	weak.SetName("session.weak")
	held := weak.Acquire()
	if held == nil {
		return fmt.Errorf("session is gone")
	}
	held.Alloc(1, 32)
	weak.Release()
	return nil
}
