package main

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/spf13/cobra"

	"github.com/joshuapare/ownkit/tree"
	"github.com/joshuapare/ownkit/tree/alloc"
	"github.com/joshuapare/ownkit/tree/array"
	"github.com/joshuapare/ownkit/tree/hashmap"
	"github.com/joshuapare/ownkit/tree/verify"
)

var (
	leakOps       int
	leakSeed      uint64
	leakAllocator string
)

// errLeak is returned when blocks survive the root's destruction.
var errLeak = errors.New("leak detected")

func init() {
	cmd := newLeakcheckCmd()
	cmd.Flags().IntVar(&leakOps, "ops", 5000, "Number of random operations")
	cmd.Flags().Uint64Var(&leakSeed, "seed", 1, "Random seed (0 = time based)")
	cmd.Flags().StringVar(&leakAllocator, "allocator", "heap", "Allocator under test (heap, pool, arena)")
	rootCmd.AddCommand(cmd)
}

func newLeakcheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "leakcheck",
		Short: "Run randomized tree operations and check for leaks",
		Long: `The leakcheck command creates, allocates, resizes, frees, moves and destroys
nodes, arrays and maps at random over a counting allocator. Every invariant
is verified after each step; once the root is destroyed no block may remain.

Example:
  ownctl leakcheck
  ownctl leakcheck --ops 20000 --seed 42 --allocator pool`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLeakcheck()
		},
	}
	return cmd
}

// leakReport summarizes one leakcheck run.
type leakReport struct {
	Allocator   string        `json:"allocator"`
	Seed        uint64        `json:"seed"`
	Steps       int           `json:"steps"`
	Nodes       int           `json:"nodes_created"`
	Allocations uint64        `json:"allocations"`
	Frees       uint64        `json:"frees"`
	Exhausted   int           `json:"exhausted"`
	LiveBlocks  int           `json:"live_blocks"`
	LiveBytes   int           `json:"live_bytes"`
	Elapsed     time.Duration `json:"elapsed_ns"`
}

func runLeakcheck() error {
	b, err := newBackend(leakAllocator)
	if err != nil {
		return err
	}
	defer b.close()

	seed := leakSeed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	printVerbose("Running %d operations with seed %d on %s\n", leakOps, seed, leakAllocator)

	counting := alloc.NewCounting(b.Allocator)
	rep, err := leakcheck(counting, leakOps, seed)
	if err != nil {
		return err
	}

	if jsonOut {
		if err := printJSON(rep); err != nil {
			return err
		}
	} else {
		st := newStyles()
		printInfo("%s\n", st.title.Render("leakcheck "+rep.Allocator))
		printInfo("%s\n", st.row("seed", 14, fmt.Sprint(rep.Seed)))
		printInfo("%s\n", st.row("steps", 14, fmt.Sprint(rep.Steps)))
		printInfo("%s\n", st.row("nodes", 14, fmt.Sprint(rep.Nodes)))
		printInfo("%s\n", st.row("allocations", 14, fmt.Sprint(rep.Allocations)))
		printInfo("%s\n", st.row("frees", 14, fmt.Sprint(rep.Frees)))
		printInfo("%s\n", st.row("exhausted", 14, fmt.Sprint(rep.Exhausted)))
		printInfo("%s\n", st.row("elapsed", 14, rep.Elapsed.String()))
		if rep.LiveBlocks == 0 {
			printInfo("%s\n", st.good.Render("no leaks"))
		} else {
			printInfo("%s\n", st.bad.Render(fmt.Sprintf("%d blocks leaked", rep.LiveBlocks)))
		}
	}

	if rep.LiveBlocks != 0 {
		return fmt.Errorf("%w: %d blocks (%d bytes) outstanding", errLeak, rep.LiveBlocks, rep.LiveBytes)
	}
	return nil
}

// leakRun is the state of one randomized run.
type leakRun struct {
	rng    *rand.Rand
	root   *tree.Node
	nodes  []*tree.Node
	mems   [][]byte
	arrays []*array.Array
	maps   []*hashmap.Map
	rep    leakReport
}

// leakcheck runs ops random operations on a tree over c, verifying after
// every step, then destroys the tree and reports what c still holds.
func leakcheck(c *alloc.Counting, ops int, seed uint64) (leakReport, error) {
	start := time.Now()
	r := &leakRun{
		rng:  rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		root: tree.NewRoot(c),
		rep:  leakReport{Allocator: c.Inner().Name(), Seed: seed},
	}
	r.nodes = []*tree.Node{r.root}

	for step := range ops {
		r.step()
		r.rep.Steps++
		// Drop freed blocks before their addresses can be handed out again.
		r.liveMems()
		if err := verify.AllInvariants(r.root); err != nil {
			r.root.Destroy()
			return r.rep, fmt.Errorf("step %d: %w", step, err)
		}
		if err := verify.Accounting(r.root, c); err != nil {
			r.root.Destroy()
			return r.rep, fmt.Errorf("step %d: %w", step, err)
		}
	}

	r.root.Destroy()
	r.rep.Allocations, r.rep.Frees = c.Totals()
	r.rep.LiveBlocks, r.rep.LiveBytes = c.Live()
	r.rep.Elapsed = time.Since(start)
	return r.rep, nil
}

func (r *leakRun) liveNodes() []*tree.Node {
	out := r.nodes[:0]
	for _, n := range r.nodes {
		if n.State() == tree.Live {
			out = append(out, n)
		}
	}
	r.nodes = out
	return out
}

func (r *leakRun) liveMems() [][]byte {
	owned := make(map[*byte]bool)
	r.root.Walk(func(n *tree.Node, _ int) bool {
		// Array and map buffers are not tracked here.
		if n.Kind() != tree.KindNode {
			return true
		}
		for _, m := range n.Allocations() {
			owned[alloc.Addr(m)] = true
		}
		return true
	})
	out := r.mems[:0]
	for _, m := range r.mems {
		if owned[alloc.Addr(m)] {
			out = append(out, m)
		}
	}
	r.mems = out
	return out
}

func (r *leakRun) liveArrays() []*array.Array {
	out := r.arrays[:0]
	for _, a := range r.arrays {
		if a.State() == tree.Live {
			out = append(out, a)
		}
	}
	r.arrays = out
	return out
}

func (r *leakRun) liveMaps() []*hashmap.Map {
	out := r.maps[:0]
	for _, m := range r.maps {
		if m.State() == tree.Live {
			out = append(out, m)
		}
	}
	r.maps = out
	return out
}

func (r *leakRun) pick(ns []*tree.Node) *tree.Node {
	return ns[r.rng.IntN(len(ns))]
}

func (r *leakRun) size() int {
	return 1 + r.rng.IntN(512)
}

func (r *leakRun) step() {
	ns := r.liveNodes()
	switch r.rng.IntN(12) {
	case 0, 1:
		n := tree.New(r.pick(ns))
		r.nodes = append(r.nodes, n)
		r.rep.Nodes++
	case 2, 3:
		mem, err := r.pick(ns).TryAlloc(1, r.size())
		if err != nil {
			r.rep.Exhausted++
			return
		}
		r.mems = append(r.mems, mem)
	case 4:
		ms := r.liveMems()
		if len(ms) == 0 {
			return
		}
		i := r.rng.IntN(len(ms))
		mem, err := r.root.TryRealloc(ms[i], 1, r.size())
		if err != nil {
			r.rep.Exhausted++
			return
		}
		r.mems[i] = mem
	case 5:
		ms := r.liveMems()
		if len(ms) == 0 {
			return
		}
		r.root.Free(ms[r.rng.IntN(len(ms))])
	case 6:
		ms := r.liveMems()
		if len(ms) == 0 {
			return
		}
		tree.MoveAllocation(ms[r.rng.IntN(len(ms))], r.root, r.pick(ns))
	case 7:
		if len(ns) < 2 {
			return
		}
		n, into := ns[1+r.rng.IntN(len(ns)-1)], r.pick(ns)
		if !isAncestor(n, into) {
			tree.Move(n, into)
		}
	case 8:
		if len(ns) < 2 || r.rng.IntN(4) != 0 {
			return
		}
		ns[1+r.rng.IntN(len(ns)-1)].Destroy()
	case 9:
		as := r.liveArrays()
		if len(as) == 0 || r.rng.IntN(8) == 0 {
			policy := array.Policy(r.rng.IntN(int(array.GrowDoubledCenter) + 1))
			if policy == array.GrowFixed {
				policy = array.GrowDoubled
			}
			r.arrays = append(r.arrays, array.New(r.pick(ns), nil, 4, 0, 1+r.rng.IntN(8), policy))
			return
		}
		a := as[r.rng.IntN(len(as))]
		count := 1 + r.rng.IntN(16)
		switch r.rng.IntN(4) {
		case 0:
			a.Append(nil, count)
		case 1:
			a.AppendFront(nil, count)
		case 2:
			a.Take(nil, min(count, a.Len()))
		case 3:
			a.TakeFront(nil, min(count, a.Len()))
		}
	case 10, 11:
		hs := r.liveMaps()
		if len(hs) == 0 || r.rng.IntN(16) == 0 {
			r.maps = append(r.maps, hashmap.NewStrings(r.pick(ns), 8, 1+r.rng.IntN(32)))
			return
		}
		m := hs[r.rng.IntN(len(hs))]
		key := fmt.Sprintf("key-%d", r.rng.IntN(64))
		if r.rng.IntN(3) == 0 {
			m.RemoveString(key)
			return
		}
		var v [8]byte
		binary.LittleEndian.PutUint64(v[:], r.rng.Uint64())
		m.SetString(key, v[:])
	}
}

// isAncestor reports whether n is into or one of its ancestors.
func isAncestor(n, into *tree.Node) bool {
	for p := into; p != nil; p = p.Parent() {
		if p == n {
			return true
		}
	}
	return false
}
