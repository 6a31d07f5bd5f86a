package gopiumlens

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
)

// ErrConfigValidation is returned when configuration validation fails
var ErrConfigValidation = errors.New("configuration validation failed")

// DefaultConfigFile is the configuration file name looked up in the working directory
const DefaultConfigFile = "gopiumlens.yaml"

// DefaultToolsVersion is the version token passed to the installer when none is configured
const DefaultToolsVersion = "latest"

// Config represents the gopiumlens configuration.
//
// Flag fields are pointers (or nil-able slices) so an omitted key stays absent
// and is never passed to gopium; defaults belong to gopium itself.
type Config struct {
	Actions []ActionConfig `yaml:"actions"`

	// Target platform
	TargetCompiler          *string `yaml:"target_compiler"`
	TargetArchitecture      *string `yaml:"target_architecture"`
	TargetCPUCacheLineSizes []int   `yaml:"target_cpu_cache_lines_sizes"`

	// Package parser
	PackageBuildEnvs  []string `yaml:"package_build_envs"`
	PackageBuildFlags []string `yaml:"package_build_flags"`

	// Walker
	WalkerDeep    *bool `yaml:"walker_deep"`
	WalkerBackref *bool `yaml:"walker_backref"`

	// Printer
	PrinterIndent   *int  `yaml:"printer_indent"`
	PrinterTabWidth *int  `yaml:"printer_tab_width"`
	PrinterUseSpace *bool `yaml:"printer_use_space"`

	// Timeout in seconds, enforced by gopium
	Timeout *int `yaml:"timeout"`

	Tools ToolsConfig `yaml:"tools"`
}

// ActionConfig is a single named preset entry
type ActionConfig struct {
	Name       string   `yaml:"name"`
	Walker     string   `yaml:"walker"`
	Strategies []string `yaml:"strategies"`
	// When is an optional CEL expression deciding where the action is offered
	When string `yaml:"when,omitempty"`
}

// ToolsConfig represents tool discovery and installation settings
type ToolsConfig struct {
	Path    string `yaml:"path"`    // Extra directory searched before GOBIN/GOPATH/PATH
	Version string `yaml:"version"` // Version token for go install
	Go      string `yaml:"go"`      // Go binary used to install tools
}

// LoadConfig loads configuration from the specified file
func LoadConfig(configPath string) (*Config, error) {
	// Load .env files first
	err := loadEnvFiles(filepath.Dir(configPath))
	if err != nil {
		return nil, fmt.Errorf("failed to load environment files: %w", err)
	}

	// Check if config file exists
	_, err = os.Stat(configPath)
	if os.IsNotExist(err) {
		// Return default configuration if file doesn't exist
		config := getDefaultConfig()
		expandConfigEnvVars(config)

		return config, nil
	}

	// Read config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse YAML with strict mode to detect unknown fields
	var config Config

	err = yaml.UnmarshalWithOptions(data, &config, yaml.Strict())
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Validate the configuration
	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	// Apply defaults for missing values
	applyDefaults(&config)

	// Expand environment variables
	expandConfigEnvVars(&config)

	return &config, nil
}

// validateConfig checks the preset structure. Flag values are passed to
// gopium as written and never checked here.
func validateConfig(config *Config) error {
	for i, action := range config.Actions {
		if action.Name == "" {
			return fmt.Errorf("%w: actions[%d]: name is required", ErrConfigValidation, i)
		}

		if action.Walker == "" {
			return fmt.Errorf("%w: action '%s': walker is required", ErrConfigValidation, action.Name)
		}
	}

	return nil
}

// getDefaultConfig returns the default configuration
func getDefaultConfig() *Config {
	return &Config{
		Actions: []ActionConfig{
			{
				Name:       "pack",
				Walker:     "ast_go",
				Strategies: []string{"filter_pads", "memory_pack"},
			},
			{
				Name:       "cache",
				Walker:     "ast_go",
				Strategies: []string{"filter_pads", "memory_pack", "cache_rounding_cpu_l1_discrete"},
			},
			{
				Name:       "json",
				Walker:     "json_std",
				Strategies: []string{"memory_pack"},
			},
		},
		Tools: ToolsConfig{
			Version: DefaultToolsVersion,
			Go:      "go",
		},
	}
}

// applyDefaults applies default values to missing configuration fields.
// Only tool settings get defaults; gopium flags stay absent when omitted.
func applyDefaults(config *Config) {
	if config.Tools.Version == "" {
		config.Tools.Version = DefaultToolsVersion
	}

	if config.Tools.Go == "" {
		config.Tools.Go = "go"
	}

	for i := range config.Actions {
		if config.Actions[i].Strategies == nil {
			config.Actions[i].Strategies = []string{}
		}
	}
}

// loadEnvFiles loads a .env file from dir if it exists
func loadEnvFiles(dir string) error {
	path := filepath.Join(dir, ".env")
	if fileExists(path) {
		err := godotenv.Load(path)
		if err != nil {
			return fmt.Errorf("failed to load .env file: %w", err)
		}
	}

	return nil
}

var (
	bracedEnvPattern = regexp.MustCompile(`\$\{([^}]+)\}`)
	bareEnvPattern   = regexp.MustCompile(`\$([A-Za-z_][A-Za-z0-9_]*)`)
)

// expandEnvVars expands environment variables in the format ${VAR} or $VAR
func expandEnvVars(s string) string {
	s = bracedEnvPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1] // Remove ${ and }
		return os.Getenv(varName)
	})

	s = bareEnvPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[1:] // Remove $
		return os.Getenv(varName)
	})

	return s
}

// expandConfigEnvVars expands environment variables in the tools paths.
// gopium flag values such as package_build_envs are left verbatim.
func expandConfigEnvVars(config *Config) {
	config.Tools.Path = expandEnvVars(config.Tools.Path)
	config.Tools.Go = expandEnvVars(config.Tools.Go)
}

// fileExists checks if a file exists
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// ActionNames returns configured action names in declaration order, duplicates included
func (c *Config) ActionNames() []string {
	names := make([]string, 0, len(c.Actions))
	for _, action := range c.Actions {
		names = append(names, action.Name)
	}

	return names
}
