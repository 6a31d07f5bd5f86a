package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/shibukawa/gopiumlens"
	"github.com/shibukawa/gopiumlens/lens"
	"github.com/shibukawa/gopiumlens/settings"
	"github.com/shibukawa/gopiumlens/testhelper"
	"github.com/shibukawa/gopiumlens/tools"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "gopiumlens.yaml")
	err := os.WriteFile(path, []byte(content), 0644)
	assert.NoError(t, err)

	return path
}

func TestInitCmd(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "project", "gopiumlens.yaml")
	ctx := &Context{Config: configPath, Quiet: true}

	t.Run("CreatesLoadableConfig", func(t *testing.T) {
		err := (&InitCmd{}).Run(ctx)
		assert.NoError(t, err)

		config, err := gopiumlens.LoadConfig(configPath)
		assert.NoError(t, err)
		assert.Equal(t, []string{"pack", "cache", "annotate", "json"}, config.ActionNames())
		assert.Equal(t, `kind == "struct" && !test`, config.Actions[2].When)
		assert.Equal(t, gopiumlens.DefaultToolsVersion, config.Tools.Version)
	})

	t.Run("RefusesToOverwrite", func(t *testing.T) {
		err := (&InitCmd{}).Run(ctx)
		assert.True(t, errors.Is(err, ErrConfigExists))

		err = (&InitCmd{Force: true}).Run(ctx)
		assert.NoError(t, err)
	})
}

func TestArgsFromConfig(t *testing.T) {
	configPath := writeConfig(t, testhelper.TrimIndent(t, `
		actions:
			- name: tight
			  walker: ast_go
			  strategies: [filter_pads, memory_pack]
		target_cpu_cache_lines_sizes: [64, 128]
		walker_deep: true
		walker_backref: false
		printer_tab_width: 4
	`))

	a, err := newApp(&Context{Config: configPath, NoInstall: true})
	assert.NoError(t, err)
	defer a.close()

	args, err := a.actions.Args(Target{Preset: "tight", Path: "/src/cache", Package: "cache", Struct: "LRU"}.request())
	assert.NoError(t, err)
	assert.Equal(t, []string{
		"-p", "/src/cache",
		"-r", "^LRU$",
		"-l", "64", "-l", "128",
		"-d",
		"-w", "4",
		"ast_go", "cache", "filter_pads", "memory_pack",
	}, args)

	_, err = a.actions.Args(Target{Preset: "loose", Package: "cache"}.request())
	assert.True(t, errors.Is(err, gopiumlens.ErrUnknownPreset))
}

func TestNewApp_Errors(t *testing.T) {
	_, err := newApp(&Context{Config: "gopiumlens.yaml", Yes: true, NoInstall: true})
	assert.True(t, errors.Is(err, ErrYesAndNoInstall))

	configPath := writeConfig(t, "actions:\n  - name: broken\n")
	_, err = newApp(&Context{Config: configPath})
	assert.True(t, errors.Is(err, gopiumlens.ErrConfigValidation))
}

func TestRunCmd_WithFakeGopium(t *testing.T) {
	toolsDir := t.TempDir()
	testhelper.WriteExecutable(t, toolsDir, "gopium", `echo "$@"; [ "$1" = "-p" ]`)

	configPath := writeConfig(t, "actions:\n  - name: pack\n    walker: ast_go\n    strategies: [memory_pack]\ntools:\n  path: "+toolsDir+"\n")
	logPath := filepath.Join(t.TempDir(), "gopiumlens.log")
	ctx := &Context{Config: configPath, LogFile: logPath, NoInstall: true, Quiet: true}

	err := (&RunCmd{Target{Preset: "pack", Path: "/src/widgets", Package: "widgets"}}).Run(ctx)
	assert.NoError(t, err)

	err = (&RunCmd{Target{Preset: "pack", Package: "widgets"}}).Run(ctx)
	assert.True(t, errors.Is(err, ErrActionFailed))

	data, err := os.ReadFile(logPath)
	assert.NoError(t, err)
	assert.Contains(t, string(data), "-p /src/widgets -r .* ast_go widgets memory_pack")
	assert.Contains(t, string(data), "gopium 🌺: done (")
	assert.Contains(t, string(data), "gopium 🌺: failed (")
}

func TestRunCmd_MissingToolDeclined(t *testing.T) {
	configPath := writeConfig(t, "actions:\n  - name: pack\n    walker: ast_go\ntools:\n  path: "+t.TempDir()+"\n")

	a, err := newApp(&Context{Config: configPath, NoInstall: true})
	assert.NoError(t, err)
	defer a.close()

	a.locator = tools.Locator{
		Getenv:   func(string) string { return t.TempDir() },
		LookPath: func(string) (string, error) { return "", os.ErrNotExist },
	}

	_, err = a.actions.Invoke(t.Context(), Target{Preset: "pack", Package: "widgets"}.request())
	assert.True(t, errors.Is(err, gopiumlens.ErrToolNotFound))
	assert.True(t, errors.Is(err, gopiumlens.ErrInstallDeclined))
}

func TestNewApp_ToolsConfigFollowsReload(t *testing.T) {
	oldTools := t.TempDir()
	newTools := t.TempDir()
	bin := testhelper.WriteExecutable(t, newTools, "gopium", `echo "$@"`)

	configPath := writeConfig(t, "actions:\n  - name: pack\n    walker: ast_go\ntools:\n  path: "+oldTools+"\n  version: v1.0.0\n")

	a, err := newApp(&Context{Config: configPath, NoInstall: true})
	assert.NoError(t, err)
	defer a.close()

	a.locator = tools.Locator{
		Getenv:   func(string) string { return t.TempDir() },
		LookPath: func(string) (string, error) { return "", os.ErrNotExist },
	}

	_, err = a.actions.Invoke(t.Context(), Target{Preset: "pack", Package: "widgets"}.request())
	assert.True(t, errors.Is(err, gopiumlens.ErrToolNotFound))

	err = os.WriteFile(configPath, []byte("actions:\n  - name: pack\n    walker: ast_go\ntools:\n  path: "+newTools+"\n  version: v1.1.0\n"), 0644)
	assert.NoError(t, err)

	_, err = a.store.Reload()
	assert.NoError(t, err)
	assert.Equal(t, "v1.1.0", a.toolsSettings().Version)

	gopium, err := tools.DefaultProvider().Tool(tools.Gopium)
	assert.NoError(t, err)

	path, ok := a.discovery().Lookup(gopium)
	assert.True(t, ok)
	assert.Equal(t, bin, path)

	completion, err := a.actions.Invoke(t.Context(), Target{Preset: "pack", Package: "widgets"}.request())
	assert.NoError(t, err)
	assert.True(t, completion.Success)

	// A broken config keeps the tools settings of the last good load
	err = os.WriteFile(configPath, []byte("actions:\n  - name: broken\n"), 0644)
	assert.NoError(t, err)

	_, err = a.store.Reload()
	assert.True(t, errors.Is(err, gopiumlens.ErrConfigValidation))
	assert.Equal(t, newTools, a.toolsSettings().Path)
}

func TestWatchConfig_ReportsSetupFailure(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "gopiumlens.log")
	configPath := filepath.Join(t.TempDir(), "missing", "gopiumlens.yaml")

	a, err := newApp(&Context{Config: configPath, LogFile: logPath, NoInstall: true, Quiet: true})
	assert.NoError(t, err)

	err = a.watchConfig(t.Context(), configPath)
	assert.Error(t, err)
	a.close()

	data, err := os.ReadFile(logPath)
	assert.NoError(t, err)
	assert.Contains(t, string(data), "config reload: failed to watch")
}

func TestInstallCmd_SelectTools(t *testing.T) {
	d := &tools.Discovery{Provider: tools.DefaultProvider()}

	selected, err := (&InstallCmd{Tools: []string{"gopium"}}).selectTools(d)
	assert.NoError(t, err)
	assert.Equal(t, 1, len(selected))
	assert.Equal(t, "github.com/1pkg/gopium", selected[0].ImportPath)

	_, err = (&InstallCmd{Tools: []string{"gopls"}}).selectTools(d)
	assert.True(t, errors.Is(err, gopiumlens.ErrUnknownTool))
}

func TestFormatting(t *testing.T) {
	assert.Equal(t, "widgets.go:5: gopium pack (struct Widget)", formatLens("/src/widgets/widgets.go", lens.Lens{
		Title: "gopium pack", Kind: lens.KindStruct, Line: 5, Package: "widgets", Struct: "Widget",
	}))
	assert.Equal(t, "widgets.go:1: gopium pack (package widgets)", formatLens("widgets.go", lens.Lens{
		Title: "gopium pack", Kind: lens.KindPackage, Line: 1, Package: "widgets",
	}))

	assert.Equal(t, "pack: ast_go filter_pads memory_pack", formatPreset(settings.Preset{
		Name: "pack", Walker: "ast_go", Strategies: []string{"filter_pads", "memory_pack"},
	}))
	assert.Equal(t, `empty: ast_go [when kind == "struct"]`, formatPreset(settings.Preset{
		Name: "empty", Walker: "ast_go", When: `kind == "struct"`,
	}))
}

func TestOutlinerSelection(t *testing.T) {
	a := &app{}

	outliner, err := a.outliner(t.Context(), "parser")
	assert.NoError(t, err)
	assert.Equal(t, lens.Outliner(lens.ParserOutliner{}), outliner)

	_, err = a.outliner(t.Context(), "gopls")
	assert.True(t, errors.Is(err, ErrUnknownOutliner))
}
