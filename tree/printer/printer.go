// Package printer renders ownership trees as indented text or JSON.
package printer

import (
	"errors"
	"fmt"
	"io"

	"github.com/joshuapare/ownkit/tree"
)

const (
	DefaultIndentSize     = 2
	DefaultMaxDepth       = 0
	DefaultMaxAllocations = 8
)

// ErrNotLive is returned when asked to print a destroyed node.
var ErrNotLive = errors.New("printer: node is not live")

// Format specifies the output format for printing.
type Format string

const (
	// FormatText outputs an indented outline.
	FormatText Format = "text"

	// FormatJSON outputs one JSON document.
	FormatJSON Format = "json"
)

// Options controls printing behavior.
type Options struct {
	// Format specifies output format (text, json).
	// Default: FormatText
	Format Format

	// IndentSize is the number of spaces per indent level (text format only).
	// Default: 2
	IndentSize int

	// MaxDepth limits recursion depth (0 = unlimited).
	// Default: 0 (unlimited)
	MaxDepth int

	// ShowAllocations lists the size of every allocation a node owns.
	// Default: false
	ShowAllocations bool

	// MaxAllocations limits how many allocations are listed per node.
	// Set to 0 for no limit.
	// Default: 8
	MaxAllocations int

	// PrintMetadata includes state, child and allocation counts, and the
	// description of containers bound to the node.
	// Default: true
	PrintMetadata bool
}

// DefaultOptions returns sensible defaults for printing.
func DefaultOptions() Options {
	return Options{
		Format:          FormatText,
		IndentSize:      DefaultIndentSize,
		MaxDepth:        DefaultMaxDepth,
		ShowAllocations: false,
		MaxAllocations:  DefaultMaxAllocations,
		PrintMetadata:   true,
	}
}

// Describer is implemented by values bound to nodes that can summarize
// themselves in one line, such as arrays and maps.
type Describer interface {
	Describe() string
}

// Printer handles formatted output of node trees.
type Printer struct {
	opts   Options
	writer io.Writer
}

// New creates a new Printer writing to w.
//
// Example:
//
//	p := printer.New(os.Stdout, printer.DefaultOptions())
//	p.PrintTree(root)
func New(w io.Writer, opts Options) *Printer {
	return &Printer{
		writer: w,
		opts:   opts,
	}
}

// PrintNode prints a single node without its children.
func (p *Printer) PrintNode(n *tree.Node) error {
	if n.State() != tree.Live {
		return fmt.Errorf("print node: %w", ErrNotLive)
	}
	switch p.opts.Format {
	case FormatJSON:
		return p.printNodeJSON(n)
	default:
		p.printNodeText(n, 0)
		return nil
	}
}

// PrintTree prints n and its descendants down to MaxDepth.
func (p *Printer) PrintTree(n *tree.Node) error {
	if n.State() != tree.Live {
		return fmt.Errorf("print tree: %w", ErrNotLive)
	}
	switch p.opts.Format {
	case FormatJSON:
		return p.printTreeJSON(n)
	default:
		p.printTreeText(n, 0)
		return nil
	}
}

// describe returns the one-line summary of the value bound to n, if any.
func describe(n *tree.Node) string {
	if d, ok := n.Bound().(Describer); ok {
		return d.Describe()
	}
	return ""
}

func allocBytes(allocs [][]byte) int {
	total := 0
	for _, mem := range allocs {
		total += len(mem)
	}
	return total
}
