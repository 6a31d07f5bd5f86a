// Package settings holds the immutable settings snapshot gopium invocations
// are built from, the argument vector builder and the store that owns and
// broadcasts snapshots.
package settings

import (
	"sort"

	"github.com/shibukawa/gopiumlens"
)

// Preset is a named pairing of a walker and an ordered list of strategies
type Preset struct {
	Name       string
	Walker     string
	Strategies []string
	When       string
}

// Flags is the closed set of optional gopium flags. Nil means "do not pass".
type Flags struct {
	Compiler       *string  // -c
	Architecture   *string  // -a
	CacheLineSizes []int    // -l
	BuildEnvs      []string // -e
	BuildFlags     []string // -f
	Deep           *bool    // -d
	Backref        *bool    // -b
	Indent         *int     // -i
	TabWidth       *int     // -w
	UseSpace       *bool    // -s
	Timeout        *int     // -t
}

// Snapshot is one consistent, read-only version of the settings.
// Snapshots are replaced wholesale and never edited in place.
type Snapshot struct {
	version uint64
	presets map[string]Preset
	flags   Flags
}

// New creates a snapshot from presets and flags. Later presets with a
// duplicate name overwrite earlier ones.
func New(version uint64, presets []Preset, flags Flags) *Snapshot {
	s := &Snapshot{
		version: version,
		presets: make(map[string]Preset, len(presets)),
		flags:   flags.clone(),
	}

	for _, p := range presets {
		s.presets[p.Name] = p.clone()
	}

	return s
}

// FromConfig builds a snapshot from a loaded configuration
func FromConfig(cfg *gopiumlens.Config, version uint64) *Snapshot {
	presets := make([]Preset, 0, len(cfg.Actions))
	for _, action := range cfg.Actions {
		presets = append(presets, Preset{
			Name:       action.Name,
			Walker:     action.Walker,
			Strategies: action.Strategies,
			When:       action.When,
		})
	}

	flags := Flags{
		Compiler:       cfg.TargetCompiler,
		Architecture:   cfg.TargetArchitecture,
		CacheLineSizes: cfg.TargetCPUCacheLineSizes,
		BuildEnvs:      cfg.PackageBuildEnvs,
		BuildFlags:     cfg.PackageBuildFlags,
		Deep:           cfg.WalkerDeep,
		Backref:        cfg.WalkerBackref,
		Indent:         cfg.PrinterIndent,
		TabWidth:       cfg.PrinterTabWidth,
		UseSpace:       cfg.PrinterUseSpace,
		Timeout:        cfg.Timeout,
	}

	return New(version, presets, flags)
}

// Version returns the snapshot version assigned by its owner
func (s *Snapshot) Version() uint64 {
	return s.version
}

// Preset returns a copy of the named preset
func (s *Snapshot) Preset(name string) (Preset, bool) {
	p, ok := s.presets[name]
	if !ok {
		return Preset{}, false
	}

	return p.clone(), true
}

// PresetNames returns preset names sorted lexicographically
func (s *Snapshot) PresetNames() []string {
	names := make([]string, 0, len(s.presets))
	for name := range s.presets {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// Presets returns copies of all presets sorted by name
func (s *Snapshot) Presets() []Preset {
	names := s.PresetNames()

	presets := make([]Preset, 0, len(names))
	for _, name := range names {
		presets = append(presets, s.presets[name].clone())
	}

	return presets
}

// Flags returns a copy of the flag set
func (s *Snapshot) Flags() Flags {
	return s.flags.clone()
}

func (p Preset) clone() Preset {
	p.Strategies = cloneSlice(p.Strategies)
	return p
}

func (f Flags) clone() Flags {
	f.Compiler = clonePtr(f.Compiler)
	f.Architecture = clonePtr(f.Architecture)
	f.CacheLineSizes = cloneSlice(f.CacheLineSizes)
	f.BuildEnvs = cloneSlice(f.BuildEnvs)
	f.BuildFlags = cloneSlice(f.BuildFlags)
	f.Deep = clonePtr(f.Deep)
	f.Backref = clonePtr(f.Backref)
	f.Indent = clonePtr(f.Indent)
	f.TabWidth = clonePtr(f.TabWidth)
	f.UseSpace = clonePtr(f.UseSpace)
	f.Timeout = clonePtr(f.Timeout)

	return f
}

func clonePtr[T any](v *T) *T {
	if v == nil {
		return nil
	}

	c := *v

	return &c
}

func cloneSlice[T any](v []T) []T {
	if v == nil {
		return nil
	}

	return append(make([]T, 0, len(v)), v...)
}
