package main

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/fatih/color"

	"github.com/shibukawa/gopiumlens"
	"github.com/shibukawa/gopiumlens/action"
	"github.com/shibukawa/gopiumlens/runner"
	"github.com/shibukawa/gopiumlens/settings"
	"github.com/shibukawa/gopiumlens/tools"
)

// app holds the pipeline shared by the commands
type app struct {
	store    *settings.Store
	sink     runner.Sink
	logFile  *runner.FileSink
	prompter *tools.ConsolePrompter
	actions  *action.Runner

	// toolsConfig follows every successful store reload
	toolsConfig atomic.Pointer[gopiumlens.ToolsConfig]
	// locator is the search template; ToolsPath comes from toolsConfig
	locator tools.Locator
}

// newApp loads the configuration and assembles discovery and the action runner
func newApp(ctx *Context) (*app, error) {
	if ctx.Yes && ctx.NoInstall {
		return nil, ErrYesAndNoInstall
	}

	a := &app{
		sink:     runner.NewConsoleSink(nil),
		prompter: &tools.ConsolePrompter{Yes: ctx.Yes, No: ctx.NoInstall},
	}

	store, err := settings.NewStore(a.trackTools(settings.ConfigFileLoader(ctx.Config)))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	a.store = store

	if ctx.LogFile != "" {
		a.logFile, err = runner.OpenFileSink(ctx.LogFile)
		if err != nil {
			return nil, err
		}

		a.sink = runner.MultiSink{a.sink, a.logFile}

		if ctx.Verbose {
			color.Blue("Logging gopium output to %s", ctx.LogFile)
		}
	}

	a.actions = &action.Runner{Snapshots: store, Tools: a.resolver(a.sink, a.prompter), Sink: a.sink}

	if ctx.Verbose {
		color.Blue("Loaded %d presets from %s", len(store.Current().PresetNames()), ctx.Config)
	}

	return a, nil
}

// trackTools wraps loader so the tools section of every loaded config is kept
func (a *app) trackTools(loader settings.Loader) settings.Loader {
	return func() (*gopiumlens.Config, error) {
		config, err := loader()
		if err != nil {
			return nil, err
		}

		toolsConfig := config.Tools
		a.toolsConfig.Store(&toolsConfig)

		return config, nil
	}
}

// toolsSettings returns the tools section of the latest loaded config
func (a *app) toolsSettings() gopiumlens.ToolsConfig {
	if cfg := a.toolsConfig.Load(); cfg != nil {
		return *cfg
	}

	return gopiumlens.ToolsConfig{Version: gopiumlens.DefaultToolsVersion, Go: "go"}
}

// discovery builds tool discovery from the latest tools config
func (a *app) discovery() *tools.Discovery {
	return a.newDiscovery(a.sink, a.prompter)
}

// newDiscovery builds tool discovery whose installer writes into sink
func (a *app) newDiscovery(sink runner.Sink, prompter tools.Prompter) *tools.Discovery {
	toolsConfig := a.toolsSettings()

	locator := a.locator
	locator.ToolsPath = toolsConfig.Path

	return &tools.Discovery{
		Provider:  tools.DefaultProvider(),
		Locator:   locator,
		Prompter:  prompter,
		Installer: tools.NewGoInstaller(toolsConfig, sink),
	}
}

// resolver returns an action.Resolver that picks up tools config reloads
func (a *app) resolver(sink runner.Sink, prompter tools.Prompter) action.Resolver {
	return resolverFunc(func(ctx context.Context, name string) (string, error) {
		return a.newDiscovery(sink, prompter).Resolve(ctx, name)
	})
}

type resolverFunc func(ctx context.Context, name string) (string, error)

func (f resolverFunc) Resolve(ctx context.Context, name string) (string, error) {
	return f(ctx, name)
}

// close releases the log file
func (a *app) close() {
	if a.logFile != nil {
		_ = a.logFile.Close()
	}
}
