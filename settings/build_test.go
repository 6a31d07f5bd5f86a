package settings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/shibukawa/gopiumlens"
)

func ptr[T any](v T) *T {
	return &v
}

func tightSnapshot(flags Flags) *Snapshot {
	return New(1, []Preset{
		{Name: "tight", Walker: "json_std", Strategies: []string{"explicit_paddings_system_alignment", "add_tag"}},
		{Name: "empty", Walker: "ast_std"},
	}, flags)
}

func TestBuild_EndToEndScenario(t *testing.T) {
	snapshot := tightSnapshot(Flags{Indent: ptr(4)})

	args := snapshot.Build("tight", "/pkg", "mypkg", "^Widget$")

	assert.Equal(t, []string{
		"-p", "/pkg",
		"-r", "^Widget$",
		"-i", "4",
		"json_std", "mypkg", "explicit_paddings_system_alignment", "add_tag",
	}, args)
}

func TestBuild_TrailingPositionals(t *testing.T) {
	snapshot := tightSnapshot(Flags{Compiler: ptr("gc"), Deep: ptr(true)})

	args := snapshot.Build("tight", "", "pkg", "")

	tail := args[len(args)-4:]
	assert.Equal(t, []string{"json_std", "pkg", "explicit_paddings_system_alignment", "add_tag"}, tail)

	empty := snapshot.Build("empty", "", "pkg", "")
	assert.Equal(t, []string{"-c", "gc", "-d", "ast_std", "pkg"}, empty)
}

func TestBuild_UnknownPresetIsEmpty(t *testing.T) {
	snapshot := tightSnapshot(Flags{Indent: ptr(4), Deep: ptr(true)})

	tests := []struct {
		name    string
		preset  string
		path    string
		pkg     string
		pattern string
	}{
		{"no inputs", "missing", "", "", ""},
		{"all inputs", "missing", "/pkg", "mypkg", "^A$"},
		{"case differs", "Tight", "/pkg", "mypkg", ".*"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := snapshot.Build(tt.preset, tt.path, tt.pkg, tt.pattern)
			assert.Equal(t, 0, len(args))
		})
	}
}

func TestBuild_PathAndPatternLeadFlags(t *testing.T) {
	snapshot := tightSnapshot(Flags{
		Compiler:     ptr("gccgo"),
		Architecture: ptr("arm64"),
		Timeout:      ptr(10),
	})

	args := snapshot.Build("tight", "/src/pkg", "pkg", "^A$")

	assert.Equal(t, []string{"-p", "/src/pkg", "-r", "^A$"}, args[:4])
	assert.Equal(t, []string{"-c", "gccgo", "-a", "arm64", "-t", "10"}, args[4:10])
}

func TestBuild_BooleanFlags(t *testing.T) {
	absent := tightSnapshot(Flags{}).Build("tight", "", "pkg", "")
	falsy := tightSnapshot(Flags{Deep: ptr(false), Backref: ptr(false), UseSpace: ptr(false)}).Build("tight", "", "pkg", "")
	truthy := tightSnapshot(Flags{Deep: ptr(true), Backref: ptr(true), UseSpace: ptr(true)}).Build("tight", "", "pkg", "")

	assert.Equal(t, absent, falsy)
	assert.Equal(t, []string{"-d", "-b", "-s", "json_std", "pkg", "explicit_paddings_system_alignment", "add_tag"}, truthy)
}

func TestBuild_ListFlagsRepeatPerElement(t *testing.T) {
	snapshot := tightSnapshot(Flags{
		CacheLineSizes: []int{64, 128, 256},
		BuildEnvs:      []string{"GOOS=linux", "CGO_ENABLED=0"},
		BuildFlags:     []string{},
	})

	args := snapshot.Build("tight", "", "pkg", "")

	assert.Equal(t, []string{
		"-l", "64", "-l", "128", "-l", "256",
		"-e", "GOOS=linux", "-e", "CGO_ENABLED=0",
		"json_std", "pkg", "explicit_paddings_system_alignment", "add_tag",
	}, args)
}

func TestBuild_FixedFlagOrder(t *testing.T) {
	snapshot := tightSnapshot(Flags{
		Timeout:        ptr(5),
		UseSpace:       ptr(true),
		TabWidth:       ptr(8),
		Indent:         ptr(2),
		Backref:        ptr(true),
		Deep:           ptr(true),
		BuildFlags:     []string{"-race"},
		BuildEnvs:      []string{"A=1"},
		CacheLineSizes: []int{32},
		Architecture:   ptr("386"),
		Compiler:       ptr("gc"),
	})

	args := snapshot.Build("empty", "", "pkg", "")

	assert.Equal(t, []string{
		"-c", "gc",
		"-a", "386",
		"-l", "32",
		"-e", "A=1",
		"-f", "-race",
		"-d",
		"-b",
		"-i", "2",
		"-w", "8",
		"-s",
		"-t", "5",
		"ast_std", "pkg",
	}, args)
}

func TestBuild_DeterministicAndNonMutating(t *testing.T) {
	snapshot := tightSnapshot(Flags{CacheLineSizes: []int{64, 64}, Indent: ptr(4)})

	first := snapshot.Build("tight", "/pkg", "mypkg", "^A$")
	first[0] = "mutated"
	second := snapshot.Build("tight", "/pkg", "mypkg", "^A$")
	third := snapshot.Build("tight", "/pkg", "mypkg", "^A$")

	assert.Equal(t, second, third)
	assert.Equal(t, "-p", second[0])

	preset, ok := snapshot.Preset("tight")
	assert.True(t, ok)
	assert.Equal(t, []string{"explicit_paddings_system_alignment", "add_tag"}, preset.Strategies)
}

func TestBuild_ConfigValuesPassThroughVerbatim(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), gopiumlens.DefaultConfigFile)

	configContent := `
actions:
  - name: pack
    walker: ast_go
    strategies: [memory_pack]
package_build_envs: ["CGO_LDFLAGS=-Wl,-rpath,$ORIGIN/lib"]
target_cpu_cache_lines_sizes: [0]
printer_indent: -1
`

	err := os.WriteFile(configPath, []byte(configContent), 0644)
	assert.NoError(t, err)

	config, err := gopiumlens.LoadConfig(configPath)
	assert.NoError(t, err)

	args := FromConfig(config, 1).Build("pack", "", "widgets", "")
	assert.Equal(t, []string{
		"-l", "0",
		"-e", "CGO_LDFLAGS=-Wl,-rpath,$ORIGIN/lib",
		"-i", "-1",
		"ast_go", "widgets", "memory_pack",
	}, args)
}
