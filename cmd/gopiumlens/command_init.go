package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
)

// InitCmd represents the init command
type InitCmd struct {
	Force bool `help:"Overwrite an existing configuration file"`
}

func (i *InitCmd) Run(ctx *Context) error {
	if ctx.Verbose {
		color.Blue("Initializing gopiumlens configuration")
	}

	if fileExists(ctx.Config) && !i.Force {
		return fmt.Errorf("%w: %s (use --force to overwrite)", ErrConfigExists, ctx.Config)
	}

	err := writeFile(ctx.Config, sampleConfig)
	if err != nil {
		return fmt.Errorf("failed to create sample configuration: %w", err)
	}

	if !ctx.Quiet {
		color.Green("Created %s", ctx.Config)
		fmt.Println("\nNext steps:")
		fmt.Println("1. Edit the actions in " + filepath.Base(ctx.Config) + " to fit your structs")
		fmt.Println("2. Run 'gopiumlens tools' to check that gopium is installed")
		fmt.Println("3. Run 'gopiumlens lens <file.go>' to see the available actions")
	}

	return nil
}

const sampleConfig = `# gopium action presets, offered on every package and struct declaration
actions:
  - name: pack
    walker: ast_go
    strategies:
      - filter_pads
      - memory_pack
  - name: cache
    walker: ast_go
    strategies:
      - filter_pads
      - memory_pack
      - cache_rounding_cpu_l1_discrete
  - name: annotate
    walker: ast_go
    strategies:
      - fields_annotate_doc
    # CEL condition over file, dir, pkg, name, kind and test
    when: 'kind == "struct" && !test'
  - name: json
    walker: json_std
    strategies:
      - memory_pack

# Flags passed to gopium only when set
# target_compiler: gc
# target_architecture: amd64
# target_cpu_cache_lines_sizes: [64, 64, 64]
# package_build_envs: ["GOFLAGS=-mod=mod"]
# package_build_flags: ["-tags=integration"]
# walker_deep: true
# walker_backref: true
# printer_indent: 0
# printer_tab_width: 4
# printer_use_space: false
# timeout: 30

# Tool discovery and installation
tools:
  # path: ${HOME}/.gopium/bin
  version: latest
  go: go
`

// writeFile writes content to a file, creating directories if necessary
func writeFile(path, content string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	return os.WriteFile(path, []byte(content), 0644)
}

// fileExists checks if a file exists
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
