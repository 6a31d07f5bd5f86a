// Package action wires a lens trigger to a gopium invocation: it resolves the
// binary, builds the argument vector from the current settings snapshot and
// runs the process into the shared output sink.
package action

import (
	"context"
	"fmt"
	"time"

	"github.com/shibukawa/gopiumlens"
	"github.com/shibukawa/gopiumlens/lens"
	"github.com/shibukawa/gopiumlens/runner"
	"github.com/shibukawa/gopiumlens/settings"
	"github.com/shibukawa/gopiumlens/tools"
)

// Request identifies one gopium action
type Request struct {
	Preset  string
	Path    string // Package directory
	Package string
	Struct  string // Empty for package-wide actions
}

// RequestFor returns the request triggered by l
func RequestFor(l lens.Lens) Request {
	return Request{
		Preset:  l.Preset,
		Path:    l.Path,
		Package: l.Package,
		Struct:  l.Struct,
	}
}

// Snapshots provides the current settings snapshot
type Snapshots interface {
	Current() *settings.Snapshot
}

// Resolver resolves tool binaries
type Resolver interface {
	Resolve(ctx context.Context, name string) (string, error)
}

// Runner runs gopium actions. Invocations are not serialized: concurrent
// calls share Sink and their output interleaves.
type Runner struct {
	Snapshots Snapshots
	Tools     Resolver
	Sink      runner.Sink
}

// Args returns the argument vector the request would run with, or
// ErrUnknownPreset when the current snapshot has no such preset
func (r *Runner) Args(req Request) ([]string, error) {
	snapshot := r.Snapshots.Current()
	if snapshot == nil {
		return nil, gopiumlens.ErrNoSnapshot
	}

	pattern := lens.CompileFilter(req.Struct).String()

	args := snapshot.Build(req.Preset, req.Path, req.Package, pattern)
	if len(args) == 0 {
		return nil, fmt.Errorf("%w: %s", gopiumlens.ErrUnknownPreset, req.Preset)
	}

	return args, nil
}

// Invoke runs the request and waits for gopium to exit. A missing tool or an
// unknown preset abandons the invocation before anything is written to Sink.
func (r *Runner) Invoke(ctx context.Context, req Request) (runner.Completion, error) {
	bin, err := r.Tools.Resolve(ctx, tools.Gopium)
	if err != nil {
		return runner.Completion{}, err
	}

	args, err := r.Args(req)
	if err != nil {
		return runner.Completion{}, err
	}

	cmd := runner.Command{Path: bin, Args: args}

	r.Sink.Clear()
	r.Sink.Show()
	r.Sink.AppendLine(runner.Banner + cmd.String())

	completion := runner.Run(cmd, r.Sink)
	r.Sink.AppendLine(CompletionLine(completion))

	return completion, nil
}

// Run is Invoke reduced to the success outcome
func (r *Runner) Run(ctx context.Context, req Request) bool {
	completion, err := r.Invoke(ctx, req)
	return err == nil && completion.Success
}

// CompletionLine renders the line appended after an invocation finishes
func CompletionLine(c runner.Completion) string {
	status := "done"
	if !c.Success {
		status = "failed"
	}

	return fmt.Sprintf("%s%s (%s) exit %d in %s", runner.Banner, status, c.ID, c.ExitCode, c.Duration.Round(time.Millisecond))
}
