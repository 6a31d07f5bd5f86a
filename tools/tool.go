// Package tools locates the external binaries gopiumlens drives and offers
// to install the ones that are missing.
package tools

import (
	"fmt"
	"sort"

	"github.com/shibukawa/gopiumlens"
)

// Tool names
const (
	Gopium    = "gopium"
	GoOutline = "go-outline"
)

// Tool describes an installable Go tool
type Tool struct {
	Name        string // Logical name used by callers
	Binary      string // Executable name, defaults to Name
	ImportPath  string // Module path passed to go install
	Description string
	Important   bool
}

// BinaryName returns the executable name searched on disk
func (t Tool) BinaryName() string {
	if t.Binary != "" {
		return t.Binary
	}

	return t.Name
}

// Provider enumerates the tools known to gopiumlens. It is injected into
// Discovery so the tool table can be replaced without touching callers.
type Provider interface {
	Tools() []Tool
	Tool(name string) (Tool, error)
}

// StaticProvider serves a fixed tool table
type StaticProvider struct {
	tools map[string]Tool
}

// NewStaticProvider creates a provider over the given tools
func NewStaticProvider(tools ...Tool) *StaticProvider {
	p := &StaticProvider{tools: make(map[string]Tool, len(tools))}
	for _, t := range tools {
		p.tools[t.Name] = t
	}

	return p
}

// DefaultProvider knows gopium and the outline tool
func DefaultProvider() *StaticProvider {
	return NewStaticProvider(
		Tool{
			Name:        Gopium,
			ImportPath:  "github.com/1pkg/gopium",
			Description: "Smart struct fields management",
			Important:   true,
		},
		Tool{
			Name:        GoOutline,
			Binary:      "goutline",
			ImportPath:  "github.com/1pkg/goutline",
			Description: "Go to symbol in file",
			Important:   true,
		},
	)
}

// Tools returns all tools sorted by name
func (p *StaticProvider) Tools() []Tool {
	result := make([]Tool, 0, len(p.tools))
	for _, t := range p.tools {
		result = append(result, t)
	}

	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })

	return result
}

// Tool returns the tool registered under name
func (p *StaticProvider) Tool(name string) (Tool, error) {
	t, ok := p.tools[name]
	if !ok {
		return Tool{}, fmt.Errorf("%w: %s", gopiumlens.ErrUnknownTool, name)
	}

	return t, nil
}
