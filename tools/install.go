package tools

import (
	"context"
	"fmt"

	"github.com/shibukawa/gopiumlens"
	"github.com/shibukawa/gopiumlens/runner"
)

// GoInstaller installs tools with `go install` and streams the output into Sink
type GoInstaller struct {
	Go      string // go binary, defaults to "go"
	Version string // version token, defaults to "latest"
	GOBIN   string // install destination, empty keeps the go default
	Sink    runner.Sink
}

// NewGoInstaller creates an installer from the tools configuration
func NewGoInstaller(cfg gopiumlens.ToolsConfig, sink runner.Sink) *GoInstaller {
	return &GoInstaller{
		Go:      cfg.Go,
		Version: cfg.Version,
		GOBIN:   cfg.Path,
		Sink:    sink,
	}
}

// Command returns the install command for tool
func (i *GoInstaller) Command(tool Tool) runner.Command {
	goBin := i.Go
	if goBin == "" {
		goBin = "go"
	}

	version := i.Version
	if version == "" {
		version = gopiumlens.DefaultToolsVersion
	}

	cmd := runner.Command{
		Path: goBin,
		Args: []string{"install", "-v", tool.ImportPath + "@" + version},
	}

	if i.GOBIN != "" {
		cmd.Env = []string{"GOBIN=" + i.GOBIN}
	}

	return cmd
}

// Install implements Installer
func (i *GoInstaller) Install(_ context.Context, tool Tool) error {
	cmd := i.Command(tool)

	i.Sink.Show()
	i.Sink.AppendLine(runner.Banner + "installing " + tool.Name + ": " + cmd.String())

	completion := runner.Run(cmd, i.Sink)
	if !completion.Success {
		i.Sink.AppendLine(fmt.Sprintf("%sinstalling %s failed (exit %d)", runner.Banner, tool.Name, completion.ExitCode))
		return fmt.Errorf("%w: %s exited with %d", gopiumlens.ErrInstallFailed, tool.Name, completion.ExitCode)
	}

	i.Sink.AppendLine(runner.Banner + "installed " + tool.Name)

	return nil
}
