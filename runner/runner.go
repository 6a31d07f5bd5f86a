// Package runner spawns external processes and streams their output into a sink.
package runner

import (
	"bufio"
	"errors"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Command describes a single external process invocation
type Command struct {
	Path string   // Binary path
	Args []string // Argument vector, without the binary itself
	Dir  string   // Working directory (empty = current)
	Env  []string // Additional environment variables (KEY=VALUE), appended to os.Environ
}

// String renders the command the way it is announced to the user
func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Path
	}

	return c.Path + " " + strings.Join(c.Args, " ")
}

// Completion is the outcome of a finished invocation
type Completion struct {
	ID       string
	Success  bool
	ExitCode int // -1 when the process could not be started
	Duration time.Duration
}

// Task owns one running process until it exits
type Task struct {
	id         string
	started    time.Time
	done       chan struct{}
	completion Completion
}

// Start spawns cmd and forwards its stdout and stderr to sink line by line.
// Lines of one stream keep their order; lines of the two streams are
// interleaved in arrival order only. A process that cannot be started is
// reported as a single line in sink and completes as failed.
func Start(cmd Command, sink Sink) *Task {
	t := &Task{
		id:      uuid.NewString(),
		started: time.Now(),
		done:    make(chan struct{}),
	}

	c := exec.Command(cmd.Path, cmd.Args...)
	c.Dir = cmd.Dir
	if len(cmd.Env) > 0 {
		c.Env = append(os.Environ(), cmd.Env...)
	}

	stdout, stderr, err := pipes(c)
	if err == nil {
		err = c.Start()
	}

	if err != nil {
		sink.AppendLine(err.Error())
		t.complete(false, -1)

		return t
	}

	events := make(chan string, 64)

	var pumps errgroup.Group
	pumps.Go(func() error { return pump(stdout, events) })
	pumps.Go(func() error { return pump(stderr, events) })

	consumed := make(chan struct{})
	go func() {
		defer close(consumed)
		for line := range events {
			sink.AppendLine(line)
		}
	}()

	go func() {
		// Both pipes must be drained before Wait closes them
		pumpErr := pumps.Wait()
		close(events)
		<-consumed

		waitErr := c.Wait()
		if pumpErr != nil {
			sink.AppendLine(pumpErr.Error())
		}

		exitCode := -1
		if c.ProcessState != nil {
			exitCode = c.ProcessState.ExitCode()
		}

		t.complete(waitErr == nil && pumpErr == nil && exitCode == 0, exitCode)
	}()

	return t
}

// Run starts cmd and waits for its completion
func Run(cmd Command, sink Sink) Completion {
	return Start(cmd, sink).Wait()
}

// ID returns the invocation id
func (t *Task) ID() string {
	return t.id
}

// Done is closed once the task has completed
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the process exits and returns its completion
func (t *Task) Wait() Completion {
	<-t.done
	return t.completion
}

func (t *Task) complete(success bool, exitCode int) {
	t.completion = Completion{
		ID:       t.id,
		Success:  success,
		ExitCode: exitCode,
		Duration: time.Since(t.started),
	}
	close(t.done)
}

func pipes(c *exec.Cmd) (io.ReadCloser, io.ReadCloser, error) {
	stdout, err := c.StdoutPipe()
	if err != nil {
		return nil, nil, err
	}

	stderr, err := c.StderrPipe()
	if err != nil {
		return nil, nil, err
	}

	return stdout, stderr, nil
}

// pump reads r line by line into events. Lines have no length limit so a
// long line can never stall the child on a full pipe.
func pump(r io.Reader, events chan<- string) error {
	reader := bufio.NewReader(r)

	for {
		line, err := reader.ReadString('\n')
		if line != "" {
			events <- strings.TrimRight(line, "\r\n")
		}

		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, os.ErrClosed) {
				return nil
			}

			return err
		}
	}
}
