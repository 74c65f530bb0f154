package printer

import (
	"encoding/json"
	"fmt"

	"github.com/joshuapare/ownkit/tree"
)

// jsonNode represents a node in JSON format.
type jsonNode struct {
	Kind            string     `json:"kind"`
	Name            string     `json:"name,omitempty"`
	State           string     `json:"state,omitempty"`
	NumChildren     *int       `json:"num_children,omitempty"`
	NumAllocations  *int       `json:"num_allocations,omitempty"`
	AllocationBytes *int       `json:"allocation_bytes,omitempty"`
	Description     string     `json:"description,omitempty"`
	Allocations     []int      `json:"allocations,omitempty"`
	Children        []jsonNode `json:"children,omitempty"`
}

func (p *Printer) buildJSON(n *tree.Node) jsonNode {
	node := jsonNode{
		Kind: n.Kind(),
		Name: n.Name(),
	}

	allocs := n.Allocations()
	if p.opts.PrintMetadata {
		children, count, bytes := n.NumChildren(), len(allocs), allocBytes(allocs)
		node.State = n.State().String()
		node.NumChildren = &children
		node.NumAllocations = &count
		node.AllocationBytes = &bytes
		node.Description = describe(n)
	}

	if p.opts.ShowAllocations {
		shown := len(allocs)
		if p.opts.MaxAllocations > 0 {
			shown = min(shown, p.opts.MaxAllocations)
		}
		node.Allocations = make([]int, shown)
		for i, mem := range allocs[:shown] {
			node.Allocations[i] = len(mem)
		}
	}
	return node
}

func (p *Printer) buildTreeJSON(n *tree.Node, depth int) jsonNode {
	node := p.buildJSON(n)
	if p.opts.MaxDepth > 0 && depth+1 >= p.opts.MaxDepth {
		return node
	}
	for _, c := range n.Children() {
		if c.State() != tree.Live {
			continue
		}
		node.Children = append(node.Children, p.buildTreeJSON(c, depth+1))
	}
	return node
}

// printNodeJSON prints a single node in JSON format.
func (p *Printer) printNodeJSON(n *tree.Node) error {
	return p.writeJSON(p.buildJSON(n))
}

// printTreeJSON prints a subtree as one nested JSON document.
func (p *Printer) printTreeJSON(n *tree.Node) error {
	return p.writeJSON(p.buildTreeJSON(n, 0))
}

func (p *Printer) writeJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(p.writer, "%s\n", data)
	return err
}
