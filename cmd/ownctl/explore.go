package main

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	overlay "github.com/rmhubbert/bubbletea-overlay"
	"github.com/spf13/cobra"

	"github.com/joshuapare/ownkit/internal/logger"
	"github.com/joshuapare/ownkit/tree"
	"github.com/joshuapare/ownkit/tree/alloc"
	"github.com/joshuapare/ownkit/tree/printer"
)

var (
	exploreAllocator string
	exploreWorkers   int
	exploreJobs      int
)

func init() {
	cmd := newExploreCmd()
	cmd.Flags().StringVar(&exploreAllocator, "allocator", "heap", "Allocator backing the tree (heap, pool, arena)")
	cmd.Flags().IntVar(&exploreWorkers, "workers", 4, "Thread pool workers")
	cmd.Flags().IntVar(&exploreJobs, "jobs", 8, "Futures to run on the pool")
	rootCmd.AddCommand(cmd)
}

func newExploreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "explore",
		Short: "Browse the demo tree interactively",
		Long: `The explore command builds the demo tree and opens a terminal browser over
it. Nodes expand and collapse, the detail overlay shows a node's
allocations, and the path of the selected node can be copied.

Example:
  ownctl explore
  ownctl explore --allocator arena`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExplore()
		},
	}
	return cmd
}

func runExplore() error {
	b, err := newBackend(exploreAllocator)
	if err != nil {
		return err
	}
	defer b.close()

	root := tree.NewRoot(alloc.NewCounting(b.Allocator))
	root.SetName("demo")
	defer root.Destroy()
	if err := buildDemoTree(root, exploreWorkers, exploreJobs); err != nil {
		return err
	}

	logger.Info("starting explorer", "allocator", exploreAllocator)
	p := tea.NewProgram(newExploreModel(root), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run explorer: %w", err)
	}
	return nil
}

var (
	exploreTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#7D56F4")).
				Padding(0, 1).
				MarginBottom(1)

	exploreSelectedStyle = lipgloss.NewStyle().
				Background(lipgloss.Color("#7D56F4")).
				Foreground(lipgloss.Color("#FFFFFF")).
				Bold(true)

	exploreKindStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#00D7FF"))

	exploreStatusStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#666666")).
				MarginTop(1)

	exploreDetailStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("#7D56F4")).
				Padding(0, 1)
)

// treeRow is one visible line of the explorer.
type treeRow struct {
	node     *tree.Node
	depth    int
	path     string
	children int
}

// exploreModel is the explorer's bubbletea model.
type exploreModel struct {
	root       *tree.Node
	keys       exploreKeyMap
	expanded   map[*tree.Node]bool
	rows       []treeRow
	cursor     int
	detail     viewport.Model
	showDetail bool
	status     string
	width      int
	height     int
}

func newExploreModel(root *tree.Node) exploreModel {
	m := exploreModel{
		root:     root,
		keys:     defaultExploreKeys(),
		expanded: map[*tree.Node]bool{root: true},
		detail:   viewport.New(60, 16),
		width:    80,
		height:   24,
	}
	m.refresh()
	return m
}

// refresh rebuilds the visible rows from the expansion state.
func (m *exploreModel) refresh() {
	m.rows = m.rows[:0]
	var add func(n *tree.Node, depth int, path string)
	add = func(n *tree.Node, depth int, path string) {
		if n.State() != tree.Live {
			return
		}
		m.rows = append(m.rows, treeRow{node: n, depth: depth, path: path, children: n.NumChildren()})
		if !m.expanded[n] {
			return
		}
		for i, c := range n.Children() {
			add(c, depth+1, path+"/"+nodeLabel(i, c))
		}
	}
	add(m.root, 0, "")
	m.cursor = min(m.cursor, len(m.rows)-1)
}

func nodeLabel(i int, n *tree.Node) string {
	if name := n.Name(); name != "" {
		return name
	}
	return fmt.Sprintf("%s#%d", n.Kind(), i)
}

func (m exploreModel) current() treeRow {
	return m.rows[m.cursor]
}

// Init implements tea.Model.
func (m exploreModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m exploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.detail.Width = max(20, msg.Width*2/3)
		m.detail.Height = max(5, msg.Height/2)
		return m, nil

	case tea.KeyMsg:
		if m.showDetail {
			switch {
			case key.Matches(msg, m.keys.Esc), key.Matches(msg, m.keys.Detail):
				m.showDetail = false
				return m, nil
			case key.Matches(msg, m.keys.Quit):
				return m, tea.Quit
			}
			var cmd tea.Cmd
			m.detail, cmd = m.detail.Update(msg)
			return m, cmd
		}

		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, m.keys.Down):
			if m.cursor < len(m.rows)-1 {
				m.cursor++
			}
		case key.Matches(msg, m.keys.Expand):
			m.expanded[m.current().node] = true
			m.refresh()
		case key.Matches(msg, m.keys.Collapse):
			m.collapse()
		case key.Matches(msg, m.keys.Toggle):
			n := m.current().node
			m.expanded[n] = !m.expanded[n]
			m.refresh()
		case key.Matches(msg, m.keys.Detail):
			m.detail.SetContent(m.describe(m.current().node))
			m.detail.GotoTop()
			m.showDetail = true
		case key.Matches(msg, m.keys.Copy):
			path := m.current().path
			if path == "" {
				path = "/"
			}
			if err := clipboard.WriteAll(path); err != nil {
				m.status = "copy failed: " + err.Error()
			} else {
				m.status = "copied " + path
			}
		}
	}
	return m, nil
}

// collapse folds the selected node, or moves to its parent row when it is
// already folded.
func (m *exploreModel) collapse() {
	row := m.current()
	if m.expanded[row.node] && row.children > 0 {
		m.expanded[row.node] = false
		m.refresh()
		return
	}
	for i := m.cursor - 1; i >= 0; i-- {
		if m.rows[i].depth < row.depth {
			m.cursor = i
			return
		}
	}
}

// describe renders the printer's view of n for the detail overlay.
func (m exploreModel) describe(n *tree.Node) string {
	opts := printer.DefaultOptions()
	opts.ShowAllocations = true
	var buf bytes.Buffer
	if err := printer.New(&buf, opts).PrintNode(n); err != nil {
		return err.Error()
	}
	return strings.TrimRight(buf.String(), "\n")
}

// View implements tea.Model.
func (m exploreModel) View() string {
	if m.showDetail {
		fg := detailBox{content: exploreDetailStyle.Render(m.detail.View())}
		return overlay.New(fg, mainView{m: m}, overlay.Center, overlay.Center, 0, 0).View()
	}
	return m.renderMain()
}

func (m exploreModel) renderMain() string {
	var b strings.Builder
	for i, row := range m.rows {
		marker := "  "
		if row.children > 0 {
			marker = "▸ "
			if m.expanded[row.node] {
				marker = "▾ "
			}
		}
		line := strings.Repeat("  ", row.depth) + marker + exploreKindStyle.Render("["+row.node.Kind()+"]")
		if name := row.node.Name(); name != "" {
			line += " " + name
		}
		if i == m.cursor {
			line = exploreSelectedStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}

	status := m.status
	if status == "" {
		status = "↑/↓ move  ←/→ fold  enter toggle  d detail  c copy path  q quit"
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		exploreTitleStyle.Render("ownership tree explorer"),
		strings.TrimRight(b.String(), "\n"),
		exploreStatusStyle.Render(status),
	)
}

// mainView and detailBox adapt rendered views to the overlay's models.
type mainView struct{ m exploreModel }

func (v mainView) Init() tea.Cmd                       { return nil }
func (v mainView) Update(tea.Msg) (tea.Model, tea.Cmd) { return v, nil }
func (v mainView) View() string                        { return v.m.renderMain() }

type detailBox struct{ content string }

func (d detailBox) Init() tea.Cmd                       { return nil }
func (d detailBox) Update(tea.Msg) (tea.Model, tea.Cmd) { return d, nil }
func (d detailBox) View() string                        { return d.content }
