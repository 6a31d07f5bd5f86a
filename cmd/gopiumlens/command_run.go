package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/shibukawa/gopiumlens/action"
)

// Target holds the positional inputs shared by run and args
type Target struct {
	Preset  string `arg:"" help:"Action preset name"`
	Path    string `arg:"" help:"Package directory" type:"path"`
	Package string `arg:"" help:"Package name"`
	Struct  string `arg:"" optional:"" help:"Restrict the action to a single struct"`
}

func (t Target) request() action.Request {
	return action.Request{
		Preset:  t.Preset,
		Path:    t.Path,
		Package: t.Package,
		Struct:  t.Struct,
	}
}

// RunCmd represents the run command
type RunCmd struct {
	Target `embed:""`
}

// Run executes the run command
func (cmd *RunCmd) Run(ctx *Context) error {
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	if ctx.Verbose {
		color.Blue("Running preset %s on %s", cmd.Preset, cmd.Path)
	}

	completion, err := a.actions.Invoke(context.Background(), cmd.request())
	if err != nil {
		return err
	}

	if !completion.Success {
		return fmt.Errorf("%w: exit code %d", ErrActionFailed, completion.ExitCode)
	}

	return nil
}

// ArgsCmd represents the args command
type ArgsCmd struct {
	Target `embed:""`
}

// Run executes the args command
func (cmd *ArgsCmd) Run(ctx *Context) error {
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	args, err := a.actions.Args(cmd.request())
	if err != nil {
		return err
	}

	fmt.Println(strings.Join(args, " "))

	return nil
}
