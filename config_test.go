package gopiumlens

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/goccy/go-yaml"
)

func TestLoadConfig_MissingFileReturnsDefaults(t *testing.T) {
	tmpDir := t.TempDir()

	config, err := LoadConfig(filepath.Join(tmpDir, DefaultConfigFile))
	assert.NoError(t, err)
	assert.Equal(t, []string{"pack", "cache", "json"}, config.ActionNames())
	assert.Equal(t, DefaultToolsVersion, config.Tools.Version)
	assert.Equal(t, "go", config.Tools.Go)

	// No gopium flag gets a default value
	assert.Zero(t, config.TargetCompiler)
	assert.Zero(t, config.PrinterIndent)
	assert.Zero(t, config.WalkerDeep)
	assert.Zero(t, config.TargetCPUCacheLineSizes)
}

func TestLoadConfig_FullConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, DefaultConfigFile)

	configContent := `
actions:
  - name: tight
    walker: json_std
    strategies: [explicit_padings_system_alignment, add_tag_group_soft]
  - name: annotate
    walker: ast_go
    when: "!test"
target_compiler: gc
target_architecture: arm64
target_cpu_cache_lines_sizes: [64, 128]
package_build_envs: ["GOOS=linux"]
package_build_flags: ["-tags=integration"]
walker_deep: false
walker_backref: true
printer_indent: 4
printer_tab_width: 8
printer_use_space: true
timeout: 30
tools:
  path: /opt/tools/bin
  version: v1.6.1
`

	err := os.WriteFile(configPath, []byte(configContent), 0644)
	assert.NoError(t, err)

	config, err := LoadConfig(configPath)
	assert.NoError(t, err)

	assert.Equal(t, 2, len(config.Actions))
	assert.Equal(t, "json_std", config.Actions[0].Walker)
	assert.Equal(t, []string{"explicit_padings_system_alignment", "add_tag_group_soft"}, config.Actions[0].Strategies)
	assert.Equal(t, "!test", config.Actions[1].When)
	assert.Equal(t, []string{}, config.Actions[1].Strategies)

	assert.Equal(t, "gc", *config.TargetCompiler)
	assert.Equal(t, "arm64", *config.TargetArchitecture)
	assert.Equal(t, []int{64, 128}, config.TargetCPUCacheLineSizes)
	assert.Equal(t, []string{"GOOS=linux"}, config.PackageBuildEnvs)
	assert.Equal(t, []string{"-tags=integration"}, config.PackageBuildFlags)
	assert.False(t, *config.WalkerDeep)
	assert.True(t, *config.WalkerBackref)
	assert.Equal(t, 4, *config.PrinterIndent)
	assert.Equal(t, 8, *config.PrinterTabWidth)
	assert.True(t, *config.PrinterUseSpace)
	assert.Equal(t, 30, *config.Timeout)

	assert.Equal(t, "/opt/tools/bin", config.Tools.Path)
	assert.Equal(t, "v1.6.1", config.Tools.Version)
	assert.Equal(t, "go", config.Tools.Go)
}

func TestLoadConfig_ExpandsEnvFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, DefaultConfigFile)

	err := os.WriteFile(filepath.Join(tmpDir, ".env"), []byte("GOPIUMLENS_TEST_TOOLS=/from/env\n"), 0644)
	assert.NoError(t, err)
	t.Cleanup(func() { os.Unsetenv("GOPIUMLENS_TEST_TOOLS") })

	err = os.WriteFile(configPath, []byte("tools:\n  path: ${GOPIUMLENS_TEST_TOOLS}/bin\n"), 0644)
	assert.NoError(t, err)

	config, err := LoadConfig(configPath)
	assert.NoError(t, err)
	assert.Equal(t, "/from/env/bin", config.Tools.Path)
}

func TestLoadConfig_BuildEnvsAreNotExpanded(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), DefaultConfigFile)
	t.Setenv("GOPIUMLENS_TEST_TOOLS", "/from/env")

	configContent := `
package_build_envs: ["CGO_LDFLAGS=-Wl,-rpath,$ORIGIN/lib", "GOFLAGS=${GOPIUMLENS_TEST_TOOLS}"]
tools:
  path: ${GOPIUMLENS_TEST_TOOLS}/bin
`

	err := os.WriteFile(configPath, []byte(configContent), 0644)
	assert.NoError(t, err)

	config, err := LoadConfig(configPath)
	assert.NoError(t, err)
	assert.Equal(t, []string{"CGO_LDFLAGS=-Wl,-rpath,$ORIGIN/lib", "GOFLAGS=${GOPIUMLENS_TEST_TOOLS}"}, config.PackageBuildEnvs)
	assert.Equal(t, "/from/env/bin", config.Tools.Path)
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("GOPIUMLENS_A", "alpha")

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"braced", "${GOPIUMLENS_A}/bin", "alpha/bin"},
		{"bare", "$GOPIUMLENS_A/bin", "alpha/bin"},
		{"unset", "${GOPIUMLENS_UNSET_VALUE}", ""},
		{"plain", "/usr/local/bin", "/usr/local/bin"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, expandEnvVars(tt.input))
		})
	}
}

func TestConfig_YAMLRoundTripKeepsAbsentFlags(t *testing.T) {
	indent := 2
	config := &Config{
		Actions:       []ActionConfig{{Name: "a", Walker: "ast_std"}},
		PrinterIndent: &indent,
	}

	data, err := yaml.Marshal(config)
	assert.NoError(t, err)

	var decoded Config
	assert.NoError(t, yaml.Unmarshal(data, &decoded))
	assert.Equal(t, 2, *decoded.PrinterIndent)
	assert.Zero(t, decoded.PrinterTabWidth)
}
