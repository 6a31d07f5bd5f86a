// Package tui implements the interactive lens browser for a single Go file.
package tui

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/shibukawa/gopiumlens/action"
	"github.com/shibukawa/gopiumlens/lens"
	"github.com/shibukawa/gopiumlens/runner"
	"github.com/shibukawa/gopiumlens/settings"
	"github.com/shibukawa/gopiumlens/tools"
)

// Options configures the browser
type Options struct {
	File       string
	Store      *settings.Store
	Outliner   lens.Outliner
	Conditions *lens.Conditions
	// NewRunner builds the action runner around the browser's sink and prompter
	NewRunner func(sink runner.Sink, prompter tools.Prompter) *action.Runner
	// Mirror optionally receives a copy of every output line
	Mirror runner.Sink
}

// lensItem wraps a Lens for the list display
type lensItem struct {
	lens lens.Lens
}

func (i lensItem) Title() string { return i.lens.Title }
func (i lensItem) Description() string {
	if i.lens.Kind == lens.KindPackage {
		return fmt.Sprintf("line %d · package %s", i.lens.Line, i.lens.Package)
	}

	return fmt.Sprintf("line %d · struct %s", i.lens.Line, i.lens.Struct)
}
func (i lensItem) FilterValue() string { return i.lens.Title + " " + i.lens.Struct }

// Browser is the bubbletea model listing the lenses of one file
type Browser struct {
	ctx      context.Context
	file     string
	outliner lens.Outliner
	cond     *lens.Conditions
	store    *settings.Store
	runner   *action.Runner
	bus      *bus
	unsub    func()

	lensList list.Model
	logView  viewport.Model
	lines    []string
	prompts  []promptMsg // pending install questions, the first one is shown
	running  int
	status   string
	errorMsg string
	width    int
	height   int
}

// New creates the browser and subscribes it to settings changes
func New(ctx context.Context, opts Options) *Browser {
	b := newBus()

	var sink runner.Sink = &Sink{bus: b}
	if opts.Mirror != nil {
		sink = runner.MultiSink{sink, opts.Mirror}
	}

	delegate := list.NewDefaultDelegate()
	delegate.SetHeight(2)
	delegate.SetSpacing(0)
	lensList := list.New([]list.Item{}, delegate, 0, 0)
	lensList.Title = "Lenses"
	lensList.SetShowStatusBar(false)
	lensList.SetFilteringEnabled(true)

	m := &Browser{
		ctx:      ctx,
		file:     opts.File,
		outliner: opts.Outliner,
		cond:     opts.Conditions,
		store:    opts.Store,
		bus:      b,
		lensList: lensList,
		logView:  viewport.New(0, 0),
		status:   "Loading lenses...",
	}

	m.runner = opts.NewRunner(sink, &Prompter{bus: b})
	m.unsub = opts.Store.Subscribe(func(s *settings.Snapshot) {
		b.send(snapshotMsg{snapshot: s})
	})

	return m
}

// Close stops event delivery and unsubscribes from the store
func (m *Browser) Close() {
	m.unsub()
	m.bus.close()
}

// Run starts the browser and blocks until the user quits
func Run(ctx context.Context, opts Options) error {
	m := New(ctx, opts)
	defer m.Close()

	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if err != nil {
		return fmt.Errorf("browser failed: %w", err)
	}

	return nil
}

// Init implements tea.Model
func (m *Browser) Init() tea.Cmd {
	return tea.Batch(m.loadLenses(m.store.Current()), m.bus.wait())
}

// Update implements tea.Model
func (m *Browser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		if len(m.prompts) > 0 {
			return m.answerPrompt(msg)
		}

		if m.lensList.FilterState() != list.Filtering {
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			case "enter":
				return m.runSelected()
			case "r":
				m.status = "Reloading lenses..."
				return m, m.loadLenses(m.store.Current())
			case "pgup", "pgdown":
				var cmd tea.Cmd
				m.logView, cmd = m.logView.Update(msg)
				return m, cmd
			}
		}

	case lensesMsg:
		m.setLenses(msg)
		return m, nil

	case snapshotMsg:
		m.status = fmt.Sprintf("Settings reloaded (v%d)", msg.snapshot.Version())
		return m, tea.Batch(m.loadLenses(msg.snapshot), m.bus.wait())

	case lineMsg:
		m.appendLine(string(msg))
		return m, m.bus.wait()

	case clearMsg:
		m.lines = nil
		m.logView.SetContent("")
		return m, m.bus.wait()

	case promptMsg:
		m.prompts = append(m.prompts, msg)
		return m, m.bus.wait()

	case actionDoneMsg:
		m.running--
		switch {
		case msg.err != nil:
			m.errorMsg = msg.err.Error()
			m.status = fmt.Sprintf("%s abandoned", msg.title)
		case msg.completion.Success:
			m.errorMsg = ""
			m.status = fmt.Sprintf("%s done", msg.title)
		default:
			m.status = fmt.Sprintf("%s failed with exit %d", msg.title, msg.completion.ExitCode)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.lensList, cmd = m.lensList.Update(msg)
	return m, cmd
}

func (m *Browser) answerPrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		m.prompts[0].reply <- true
	case "n", "N", "esc":
		m.prompts[0].reply <- false
	case "ctrl+c":
		for _, p := range m.prompts {
			p.reply <- false
		}
		m.prompts = nil
		return m, tea.Quit
	default:
		return m, nil
	}

	m.prompts = m.prompts[1:]

	return m, nil
}

func (m *Browser) runSelected() (tea.Model, tea.Cmd) {
	item, ok := m.lensList.SelectedItem().(lensItem)
	if !ok {
		return m, nil
	}

	m.running++
	m.status = fmt.Sprintf("Running %s...", item.lens.Title)

	req := action.RequestFor(item.lens)
	title := item.lens.Title
	r := m.runner
	ctx := m.ctx

	return m, func() tea.Msg {
		completion, err := r.Invoke(ctx, req)
		return actionDoneMsg{title: title, completion: completion, err: err}
	}
}

func (m *Browser) loadLenses(snapshot *settings.Snapshot) tea.Cmd {
	outliner := m.outliner
	cond := m.cond
	file := m.file
	ctx := m.ctx

	return func() tea.Msg {
		symbols, err := outliner.Outline(ctx, file)
		if err != nil {
			return lensesMsg{err: err}
		}

		lenses, err := lens.Lenses(snapshot, file, symbols, cond)

		return lensesMsg{lenses: lenses, err: err}
	}
}

func (m *Browser) setLenses(msg lensesMsg) {
	items := make([]list.Item, len(msg.lenses))
	for i, l := range msg.lenses {
		items[i] = lensItem{lens: l}
	}

	m.lensList.SetItems(items)

	if msg.err != nil {
		m.errorMsg = msg.err.Error()
	} else {
		m.errorMsg = ""
	}

	m.status = fmt.Sprintf("Found %d lenses", len(items))
}

func (m *Browser) appendLine(line string) {
	m.lines = append(m.lines, line)
	m.logView.SetContent(strings.Join(m.lines, "\n"))
	m.logView.GotoBottom()
}

func (m *Browser) resize(width, height int) {
	m.width = width
	m.height = height

	listWidth := max(30, int(float64(width)*0.45))
	bodyHeight := max(5, height-6)

	m.lensList.SetSize(listWidth, bodyHeight)
	m.logView.Width = max(20, width-listWidth-6)
	m.logView.Height = max(3, bodyHeight-3)
}

// View implements tea.Model
func (m *Browser) View() string {
	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FF6B9D")).
		MarginBottom(1).
		Render("🌺 GOPIUM · " + filepath.Base(m.file))

	logHead := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#5B8DEF")).
		Render("OUTPUT")
	logBox := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444444")).
		Padding(0, 1).
		Render(logHead + "\n" + m.logView.View())

	content := lipgloss.JoinHorizontal(lipgloss.Top, m.lensList.View(), logBox)

	if m.errorMsg != "" {
		errBlock := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#FF6B6B")).
			Padding(0, 1).
			Render("⚠ " + m.errorMsg)
		content = content + "\n" + errBlock
	}

	if len(m.prompts) > 0 {
		prompt := m.prompts[0]
		promptBox := lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color("#FFD93D")).
			Padding(0, 1).
			Render(fmt.Sprintf("%s\n%s? [y/n]", prompt.message, prompt.action))
		content = content + "\n" + promptBox
	}

	status := m.status
	if m.running > 0 {
		status = fmt.Sprintf("%s (%d running)", status, m.running)
	}

	footer := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#888888")).
		MarginTop(1).
		Render(status + " · enter run · r reload · / filter · q quit")

	return header + "\n" + content + "\n" + footer
}
