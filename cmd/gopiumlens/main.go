package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
)

// Context represents the global context for commands
type Context struct {
	Config    string
	Verbose   bool
	Quiet     bool
	LogFile   string
	Yes       bool
	NoInstall bool
}

// CLI represents the command-line interface
var CLI struct {
	Config    string `help:"Configuration file path" default:"gopiumlens.yaml"`
	Verbose   bool   `help:"Enable verbose output" short:"v"`
	Quiet     bool   `help:"Suppress output" short:"q"`
	LogFile   string `help:"Append gopium output to this log file" type:"path"`
	Yes       bool   `help:"Accept tool installation offers without asking" short:"y"`
	NoInstall bool   `help:"Decline tool installation offers without asking"`

	Run     RunCmd     `cmd:"" help:"Run a gopium action preset on a package or struct"`
	Args    ArgsCmd    `cmd:"" help:"Print the gopium argument vector without running it"`
	Lens    LensCmd    `cmd:"" help:"List gopium actions available in a Go file"`
	Browse  BrowseCmd  `cmd:"" help:"Browse and run gopium actions of a Go file interactively"`
	Presets PresetsCmd `cmd:"" help:"List configured action presets"`
	Tools   ToolsCmd   `cmd:"" help:"Show required tools and where they were found"`
	Install InstallCmd `cmd:"" help:"Install required tools with go install"`
	Init    InitCmd    `cmd:"" help:"Create a sample gopiumlens.yaml"`
	Version VersionCmd `cmd:"" help:"Show version information"`
}

// VersionCmd represents the version command
type VersionCmd struct{}

// Run executes the version command
func (cmd *VersionCmd) Run() error {
	fmt.Println("gopiumlens v0.1.0")
	return nil
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("gopiumlens"),
		kong.Description("Run gopium struct layout actions from the command line"),
	)

	appCtx := &Context{
		Config:    CLI.Config,
		Verbose:   CLI.Verbose,
		Quiet:     CLI.Quiet,
		LogFile:   CLI.LogFile,
		Yes:       CLI.Yes,
		NoInstall: CLI.NoInstall,
	}

	err := ctx.Run(appCtx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
