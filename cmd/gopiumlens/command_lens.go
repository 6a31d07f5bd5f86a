package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/fatih/color"

	"github.com/shibukawa/gopiumlens/action"
	"github.com/shibukawa/gopiumlens/lens"
	"github.com/shibukawa/gopiumlens/runner"
	"github.com/shibukawa/gopiumlens/settings"
	"github.com/shibukawa/gopiumlens/tools"
	"github.com/shibukawa/gopiumlens/tui"
)

// LensCmd represents the lens command
type LensCmd struct {
	File    string `arg:"" help:"Go source file" type:"path"`
	Outline string `help:"Outline source (parser, goutline)" default:"parser" enum:"parser,goutline"`
}

// Run executes the lens command
func (cmd *LensCmd) Run(ctx *Context) error {
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	bg := context.Background()

	outliner, err := a.outliner(bg, cmd.Outline)
	if err != nil {
		return err
	}

	symbols, err := outliner.Outline(bg, cmd.File)
	if err != nil {
		return err
	}

	cond, err := lens.NewConditions()
	if err != nil {
		return err
	}

	lenses, lensErr := lens.Lenses(a.store.Current(), cmd.File, symbols, cond)
	if lensErr != nil && !ctx.Quiet {
		color.Yellow("Some presets were hidden: %v", lensErr)
	}

	if len(lenses) == 0 && !ctx.Quiet {
		color.Yellow("No gopium actions for %s", cmd.File)
	}

	for _, l := range lenses {
		fmt.Println(formatLens(cmd.File, l))
	}

	return nil
}

// formatLens renders a lens as a single grep friendly line
func formatLens(file string, l lens.Lens) string {
	target := "package " + l.Package
	if l.Kind == lens.KindStruct {
		target = "struct " + l.Struct
	}

	return fmt.Sprintf("%s:%d: %s (%s)", filepath.Base(file), l.Line, l.Title, target)
}

// outliner returns the outliner selected by name
func (a *app) outliner(ctx context.Context, name string) (lens.Outliner, error) {
	switch name {
	case "", "parser":
		return lens.ParserOutliner{}, nil
	case "goutline":
		bin, err := a.discovery().Resolve(ctx, tools.GoOutline)
		if err != nil {
			return nil, err
		}

		return lens.ToolOutliner{Binary: bin}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownOutliner, name)
	}
}

// BrowseCmd represents the browse command
type BrowseCmd struct {
	File    string `arg:"" help:"Go source file" type:"path"`
	Outline string `help:"Outline source (parser, goutline)" default:"parser" enum:"parser,goutline"`
	NoWatch bool   `help:"Do not reload presets when the config file changes"`
}

// Run executes the browse command
func (cmd *BrowseCmd) Run(ctx *Context) error {
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// Offer every missing tool once before the screen is taken over
	discovery := a.discovery()
	if missing := discovery.Missing(); len(missing) > 0 {
		names := make([]string, 0, len(missing))
		for _, t := range missing {
			names = append(names, t.Name)
		}

		if !ctx.Quiet {
			color.Yellow("Missing tools: %s", strings.Join(names, ", "))
		}

		if err := discovery.Offer(sigCtx, missing); err != nil && !ctx.Quiet {
			color.Yellow("Tools were not installed: %v", err)
		}
	}

	outliner, err := a.outliner(sigCtx, cmd.Outline)
	if err != nil {
		return err
	}

	cond, err := lens.NewConditions()
	if err != nil {
		return err
	}

	watchCtx, cancelWatch := context.WithCancel(sigCtx)
	defer cancelWatch()

	if !cmd.NoWatch {
		if err := a.watchConfig(watchCtx, ctx.Config); err != nil && !ctx.Quiet {
			color.Yellow("Presets will not reload on config changes: %v", err)
		}
	}

	return tui.Run(sigCtx, tui.Options{
		File:       cmd.File,
		Store:      a.store,
		Outliner:   outliner,
		Conditions: cond,
		Mirror:     a.mirror(),
		NewRunner: func(sink runner.Sink, prompter tools.Prompter) *action.Runner {
			// --yes and --no-install answer without a terminal
			if ctx.Yes || ctx.NoInstall {
				prompter = a.prompter
			}

			return &action.Runner{
				Snapshots: a.store,
				Tools:     a.resolver(sink, prompter),
				Sink:      sink,
			}
		},
	})
}

// watchConfig reloads the store on config changes until ctx is done.
// Setup failures are reported and returned; later errors are only reported.
func (a *app) watchConfig(ctx context.Context, configPath string) error {
	watcher, err := settings.NewWatcher(a.store, configPath)
	if err != nil {
		a.reportWatchError(err)
		return err
	}

	go func() {
		defer watcher.Close()
		watcher.Run(ctx, a.reportWatchError)
	}()

	return nil
}

// reportWatchError records config reload failures in the log file
func (a *app) reportWatchError(err error) {
	if a.logFile != nil {
		a.logFile.AppendLine(runner.Banner + "config reload: " + err.Error())
	}
}

// mirror returns the log file sink, or nil when no log file is configured
func (a *app) mirror() runner.Sink {
	if a.logFile == nil {
		return nil
	}

	return a.logFile
}
