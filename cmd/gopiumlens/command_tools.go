package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/shibukawa/gopiumlens/settings"
	"github.com/shibukawa/gopiumlens/tools"
)

// PresetsCmd represents the presets command
type PresetsCmd struct{}

// Run executes the presets command
func (cmd *PresetsCmd) Run(ctx *Context) error {
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	presets := a.store.Current().Presets()
	if len(presets) == 0 && !ctx.Quiet {
		color.Yellow("No presets configured in %s", ctx.Config)
	}

	for _, p := range presets {
		fmt.Println(formatPreset(p))
	}

	return nil
}

// formatPreset renders a preset as `name: walker strategy...`
func formatPreset(p settings.Preset) string {
	line := p.Name + ": " + p.Walker
	if len(p.Strategies) > 0 {
		line += " " + strings.Join(p.Strategies, " ")
	}

	if p.When != "" {
		line += " [when " + p.When + "]"
	}

	return line
}

// ToolsCmd represents the tools command
type ToolsCmd struct{}

// Run executes the tools command
func (cmd *ToolsCmd) Run(ctx *Context) error {
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	discovery := a.discovery()

	for _, t := range discovery.Provider.Tools() {
		path, ok := discovery.Lookup(t)
		if ok {
			color.Green("✓ %-10s %s", t.Name, path)
			continue
		}

		color.Red("✗ %-10s not found (go install %s@%s)", t.Name, t.ImportPath, a.toolsSettings().Version)
	}

	return nil
}

// InstallCmd represents the install command
type InstallCmd struct {
	Tools []string `arg:"" optional:"" help:"Tools to install (default: all missing tools)"`
}

// Run executes the install command
func (cmd *InstallCmd) Run(ctx *Context) error {
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	discovery := a.discovery()

	selected, err := cmd.selectTools(discovery)
	if err != nil {
		return err
	}

	if len(selected) == 0 {
		if !ctx.Quiet {
			color.Green("All tools are installed")
		}

		return nil
	}

	if err := discovery.Install(context.Background(), selected); err != nil {
		return err
	}

	if missing := discovery.Missing(); len(missing) > 0 {
		return fmt.Errorf("%w: installed binaries are not visible in the tools path, GOBIN, GOPATH/bin or PATH", ErrMissingToolsRemaining)
	}

	if !ctx.Quiet {
		color.Green("Tools installed successfully")
	}

	return nil
}

// selectTools returns the named tools, or every missing tool when none is named
func (cmd *InstallCmd) selectTools(d *tools.Discovery) ([]tools.Tool, error) {
	if len(cmd.Tools) == 0 {
		return d.Missing(), nil
	}

	selected := make([]tools.Tool, 0, len(cmd.Tools))
	for _, name := range cmd.Tools {
		t, err := d.Provider.Tool(name)
		if err != nil {
			return nil, err
		}

		selected = append(selected, t)
	}

	return selected, nil
}
