package verify

import (
	"fmt"
	"strconv"

	"github.com/joshuapare/ownkit/tree"
	"github.com/joshuapare/ownkit/tree/alloc"
)

// ValidationError describes one invariant violation.
type ValidationError struct {
	Type    string
	Message string
	Path    string
	Details map[string]any
}

func (e *ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s at %s: %s", e.Type, e.Path, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// AllInvariants validates all tree invariants in one call.
// Returns the first error encountered, or nil if all checks pass.
func AllInvariants(root *tree.Node) error {
	if err := Structure(root); err != nil {
		return err
	}
	if err := Allocators(root); err != nil {
		return err
	}
	if err := Allocations(root); err != nil {
		return err
	}
	return nil
}

// visit walks the subtree pre-order, stopping at the first error. It never
// descends into a node that is not live or was already visited.
func visit(root *tree.Node, fn func(n *tree.Node, path string) error) error {
	seen := make(map[*tree.Node]string)
	var walk func(n *tree.Node, path string) error
	walk = func(n *tree.Node, path string) error {
		if first, ok := seen[n]; ok {
			return &ValidationError{
				Type:    "Structure",
				Message: "node reached twice",
				Path:    path,
				Details: map[string]any{"first_path": first},
			}
		}
		seen[n] = path
		if err := fn(n, path); err != nil {
			return err
		}
		if n.State() != tree.Live || !n.Is(tree.KindNode) {
			return nil
		}
		for i, c := range n.Children() {
			if err := walk(c, path+"/"+label(i, c)); err != nil {
				return err
			}
		}
		return nil
	}
	return walk(root, "")
}

func label(i int, n *tree.Node) string {
	name := n.Name()
	if name == "" {
		name = n.Kind()
	}
	return strconv.Itoa(i) + ":" + name
}

// Structure validates parent links, node states and kinds, and that no node
// is reachable along two paths.
func Structure(root *tree.Node) error {
	if root == nil {
		return &ValidationError{Type: "Structure", Message: "nil root"}
	}
	return visit(root, func(n *tree.Node, path string) error {
		if st := n.State(); st != tree.Live {
			return &ValidationError{
				Type:    "Structure",
				Message: fmt.Sprintf("node is %s", st),
				Path:    path,
			}
		}
		if !n.Is(tree.KindNode) {
			return &ValidationError{
				Type:    "Structure",
				Message: fmt.Sprintf("invalid kind %q", n.Kind()),
				Path:    path,
			}
		}
		for i, c := range n.Children() {
			if c == nil {
				return &ValidationError{
					Type:    "Structure",
					Message: fmt.Sprintf("child %d is nil", i),
					Path:    path,
				}
			}
			if p := c.Parent(); p != n {
				return &ValidationError{
					Type:    "Structure",
					Message: "child does not point back at its parent",
					Path:    path + "/" + label(i, c),
					Details: map[string]any{"parent": describeNode(p)},
				}
			}
		}
		return nil
	})
}

// Allocators validates that every child uses its parent's allocator.
func Allocators(root *tree.Node) error {
	return visit(root, func(n *tree.Node, path string) error {
		p := n.Parent()
		if p == nil || path == "" {
			return nil
		}
		if !alloc.Identical(p.Allocator(), n.Allocator()) {
			return &ValidationError{
				Type:    "Allocators",
				Message: "child allocator differs from its parent's",
				Path:    path,
				Details: map[string]any{
					"parent": p.Allocator().Name(),
					"child":  n.Allocator().Name(),
				},
			}
		}
		return nil
	})
}

// Allocations validates that allocations are non-empty and owned once.
func Allocations(root *tree.Node) error {
	owners := make(map[*byte]string)
	return visit(root, func(n *tree.Node, path string) error {
		if n.State() != tree.Live {
			return nil
		}
		for i, mem := range n.Allocations() {
			addr := alloc.Addr(mem)
			if len(mem) == 0 || addr == nil {
				return &ValidationError{
					Type:    "Allocations",
					Message: fmt.Sprintf("allocation %d is empty", i),
					Path:    path,
				}
			}
			if first, ok := owners[addr]; ok {
				return &ValidationError{
					Type:    "Allocations",
					Message: fmt.Sprintf("allocation %d is owned twice", i),
					Path:    path,
					Details: map[string]any{"first_owner": first, "bytes": len(mem)},
				}
			}
			owners[addr] = path
		}
		return nil
	})
}

// LiveCounter reports outstanding blocks and bytes; *alloc.Counting
// implements it.
type LiveCounter interface {
	Live() (blocks, bytes int)
}

// Accounting validates that the tree owns exactly what c reports as live.
// It only holds when c serves no other tree.
func Accounting(root *tree.Node, c LiveCounter) error {
	blocks, bytes := 0, 0
	err := visit(root, func(n *tree.Node, _ string) error {
		if n.State() != tree.Live {
			return nil
		}
		for _, mem := range n.Allocations() {
			blocks++
			bytes += len(mem)
		}
		return nil
	})
	if err != nil {
		return err
	}

	liveBlocks, liveBytes := c.Live()
	if blocks != liveBlocks || bytes != liveBytes {
		return &ValidationError{
			Type:    "Accounting",
			Message: fmt.Sprintf("tree owns %d blocks (%d bytes), allocator reports %d blocks (%d bytes)", blocks, bytes, liveBlocks, liveBytes),
			Details: map[string]any{
				"tree_blocks":  blocks,
				"tree_bytes":   bytes,
				"alloc_blocks": liveBlocks,
				"alloc_bytes":  liveBytes,
			},
		}
	}
	return nil
}

func describeNode(n *tree.Node) string {
	if n == nil {
		return "<nil>"
	}
	if name := n.Name(); name != "" {
		return n.Kind() + " " + strconv.Quote(name)
	}
	return n.Kind()
}
