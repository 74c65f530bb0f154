package printer

import (
	"fmt"
	"strings"

	"github.com/joshuapare/ownkit/tree"
)

// printNodeText prints one node in human-readable text format.
func (p *Printer) printNodeText(n *tree.Node, depth int) {
	indent := strings.Repeat(" ", depth*p.opts.IndentSize)

	fmt.Fprintf(p.writer, "%s[%s]", indent, n.Kind())
	if name := n.Name(); name != "" {
		fmt.Fprintf(p.writer, " %q", name)
	}
	fmt.Fprintln(p.writer)

	allocs := n.Allocations()
	if p.opts.PrintMetadata {
		fmt.Fprintf(p.writer, "%s  Children: %d, Allocations: %d (%d bytes)\n",
			indent, n.NumChildren(), len(allocs), allocBytes(allocs))
		if d := describe(n); d != "" {
			fmt.Fprintf(p.writer, "%s  %s\n", indent, d)
		}
	}

	if p.opts.ShowAllocations {
		shown := len(allocs)
		if p.opts.MaxAllocations > 0 {
			shown = min(shown, p.opts.MaxAllocations)
		}
		for i, mem := range allocs[:shown] {
			fmt.Fprintf(p.writer, "%s  #%d: %d bytes\n", indent, i, len(mem))
		}
		if shown < len(allocs) {
			fmt.Fprintf(p.writer, "%s  ... %d more\n", indent, len(allocs)-shown)
		}
	}
}

// printTreeText recursively prints a subtree in text format.
func (p *Printer) printTreeText(n *tree.Node, depth int) {
	if p.opts.MaxDepth > 0 && depth >= p.opts.MaxDepth {
		return
	}
	if n.State() != tree.Live {
		return
	}

	p.printNodeText(n, depth)
	for _, c := range n.Children() {
		p.printTreeText(c, depth+1)
	}
}
