package tools

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
)

// ConsolePrompter asks y/N questions on a terminal.
// Yes accepts and No declines every offer without reading input.
type ConsolePrompter struct {
	In  io.Reader
	Out io.Writer
	Yes bool
	No  bool

	once    sync.Once
	answers chan answer
}

type answer struct {
	line string
	err  error
}

// Confirm implements Prompter
func (p *ConsolePrompter) Confirm(ctx context.Context, message, action string) (bool, error) {
	if p.No {
		return false, nil
	}

	if p.Yes {
		return true, nil
	}

	out := p.Out
	if out == nil {
		out = os.Stderr
	}

	color.New(color.FgYellow).Fprintln(out, message)
	fmt.Fprintf(out, "%s? [y/N] ", action)

	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case a, ok := <-p.lines():
		if !ok {
			// input exhausted
			return false, nil
		}

		if a.err != nil {
			return false, fmt.Errorf("failed to read answer: %w", a.err)
		}

		switch strings.ToLower(strings.TrimSpace(a.line)) {
		case "y", "yes":
			return true, nil
		default:
			return false, nil
		}
	}
}

// lines starts the single reader of In on first use. A line read after its
// question was cancelled answers the next question.
func (p *ConsolePrompter) lines() <-chan answer {
	p.once.Do(func() {
		in := p.In
		if in == nil {
			in = os.Stdin
		}

		p.answers = make(chan answer)

		go func() {
			defer close(p.answers)

			reader := bufio.NewReader(in)
			for {
				line, err := reader.ReadString('\n')
				if line != "" || err == nil {
					p.answers <- answer{line: line}
				}

				if err != nil {
					if !errors.Is(err, io.EOF) {
						p.answers <- answer{err: err}
					}
					return
				}
			}
		}()
	})

	return p.answers
}
