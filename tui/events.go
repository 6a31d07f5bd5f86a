package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/shibukawa/gopiumlens/lens"
	"github.com/shibukawa/gopiumlens/runner"
	"github.com/shibukawa/gopiumlens/settings"
)

type (
	lineMsg     string
	clearMsg    struct{}
	snapshotMsg struct{ snapshot *settings.Snapshot }
	lensesMsg   struct {
		lenses []lens.Lens
		err    error
	}
	actionDoneMsg struct {
		title      string
		completion runner.Completion
		err        error
	}
	promptMsg struct {
		message string
		action  string
		reply   chan bool
	}
)

// bus carries events from background goroutines into the program loop.
// Sends give up once the program has stopped.
type bus struct {
	events chan tea.Msg
	done   chan struct{}
}

func newBus() *bus {
	return &bus{
		events: make(chan tea.Msg, 256),
		done:   make(chan struct{}),
	}
}

func (b *bus) send(msg tea.Msg) {
	select {
	case b.events <- msg:
	case <-b.done:
	}
}

func (b *bus) wait() tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-b.events:
			return msg
		case <-b.done:
			return nil
		}
	}
}

func (b *bus) close() {
	select {
	case <-b.done:
	default:
		close(b.done)
	}
}

// Sink forwards invocation output into the log panel
type Sink struct {
	bus *bus
}

// Clear implements runner.Sink
func (s *Sink) Clear() { s.bus.send(clearMsg{}) }

// Show implements runner.Sink. The log panel is always visible.
func (s *Sink) Show() {}

// AppendLine implements runner.Sink
func (s *Sink) AppendLine(line string) { s.bus.send(lineMsg(line)) }

// Prompter asks install questions through an overlay in the browser
type Prompter struct {
	bus *bus
}

// Confirm implements tools.Prompter
func (p *Prompter) Confirm(ctx context.Context, message, action string) (bool, error) {
	reply := make(chan bool, 1)
	p.bus.send(promptMsg{message: message, action: action, reply: reply})

	select {
	case answer := <-reply:
		return answer, nil
	case <-p.bus.done:
		return false, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}
