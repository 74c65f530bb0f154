package main

import (
	"fmt"
	"strings"

	"github.com/joshuapare/ownkit/tree/alloc"
)

// allocatorNames lists the values accepted by --allocator.
var allocatorNames = []string{"heap", "pool", "arena"}

const arenaSize = 64 << 20

// backend is an allocator chosen on the command line.
type backend struct {
	alloc.Allocator
	report alloc.Reporter // nil for the heap
	close  func() error
}

func newBackend(name string) (*backend, error) {
	switch name {
	case "heap":
		return &backend{
			Allocator: alloc.NewHeap(),
			close:     func() error { return nil },
		}, nil
	case "pool":
		p := alloc.NewPool(alloc.DefaultPoolOptions())
		return &backend{
			Allocator: p,
			report:    p,
			close: func() error {
				p.Release()
				return nil
			},
		}, nil
	case "arena":
		a, err := alloc.NewArena(arenaSize)
		if err != nil {
			return nil, fmt.Errorf("create arena: %w", err)
		}
		return &backend{Allocator: a, report: a, close: a.Release}, nil
	default:
		return nil, fmt.Errorf("unknown allocator %q (want one of %s)", name, strings.Join(allocatorNames, ", "))
	}
}
