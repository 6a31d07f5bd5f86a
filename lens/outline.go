// Package lens computes the inline gopium actions offered for a Go file:
// one per preset on the package declaration and on every struct declaration.
package lens

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/shibukawa/gopiumlens"
)

// SymbolKind identifies the declarations lenses attach to
type SymbolKind string

const (
	KindPackage SymbolKind = "package"
	KindStruct  SymbolKind = "struct"
)

// Symbol is a package or struct declaration of a Go file
type Symbol struct {
	Name string
	Kind SymbolKind
	Line int
}

// Outliner lists the symbols of a Go file, package first
type Outliner interface {
	Outline(ctx context.Context, file string) ([]Symbol, error)
}

// ParserOutliner outlines files in process with go/parser
type ParserOutliner struct{}

// Outline implements Outliner
func (ParserOutliner) Outline(ctx context.Context, file string) ([]Symbol, error) {
	if !strings.HasSuffix(file, ".go") {
		return nil, fmt.Errorf("%w: %s", gopiumlens.ErrNotGoFile, file)
	}

	fset := token.NewFileSet()

	f, err := parser.ParseFile(fset, file, nil, parser.SkipObjectResolution)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", file, err)
	}

	symbols := []Symbol{{
		Name: f.Name.Name,
		Kind: KindPackage,
		Line: fset.Position(f.Package).Line,
	}}

	// Struct declarations in source order, including ones local to functions
	ast.Inspect(f, func(n ast.Node) bool {
		spec, ok := n.(*ast.TypeSpec)
		if !ok {
			return true
		}

		if _, isStruct := spec.Type.(*ast.StructType); isStruct {
			symbols = append(symbols, Symbol{
				Name: spec.Name.Name,
				Kind: KindStruct,
				Line: fset.Position(spec.Pos()).Line,
			})
		}

		return true
	})

	return symbols, nil
}

// ToolOutliner outlines files with the goutline binary
type ToolOutliner struct {
	// Binary is the absolute path of goutline
	Binary string
}

// declaration mirrors goutline's JSON output
type declaration struct {
	Label    string        `json:"label"`
	Type     string        `json:"type"`
	Start    int           `json:"start"`
	End      int           `json:"end"`
	Children []declaration `json:"children,omitempty"`
}

// Outline implements Outliner
func (o ToolOutliner) Outline(ctx context.Context, file string) ([]Symbol, error) {
	if !strings.HasSuffix(file, ".go") {
		return nil, fmt.Errorf("%w: %s", gopiumlens.ErrNotGoFile, file)
	}

	src, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", file, err)
	}

	var stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, o.Binary, "-f", file)
	cmd.Dir = filepath.Dir(file)
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("goutline failed for %s: %w: %s", file, err, strings.TrimSpace(stderr.String()))
	}

	return decodeOutline(out, src)
}

// decodeOutline converts goutline's declaration tree into symbols.
// Offsets are 1-based byte positions into src.
func decodeOutline(data, src []byte) ([]Symbol, error) {
	var decls []declaration
	if err := json.Unmarshal(data, &decls); err != nil {
		return nil, fmt.Errorf("failed to decode goutline output: %w", err)
	}

	if len(decls) == 0 || decls[0].Type != string(KindPackage) {
		return nil, gopiumlens.ErrNoPackageSymbol
	}

	pkg := decls[0]
	symbols := []Symbol{{Name: pkg.Label, Kind: KindPackage, Line: lineAt(src, pkg.Start)}}

	var walk func([]declaration)
	walk = func(children []declaration) {
		for _, d := range children {
			if d.Type == string(KindStruct) {
				symbols = append(symbols, Symbol{Name: d.Label, Kind: KindStruct, Line: lineAt(src, d.Start)})
			}

			walk(d.Children)
		}
	}
	walk(pkg.Children)

	return symbols, nil
}

func lineAt(src []byte, offset int) int {
	if offset <= 0 {
		return 1
	}

	if offset > len(src) {
		offset = len(src) + 1
	}

	return bytes.Count(src[:offset-1], []byte("\n")) + 1
}
