package lens

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/shibukawa/gopiumlens/settings"
)

// Lens is one inline gopium action attached to a declaration
type Lens struct {
	Title   string
	Tooltip string
	Kind    SymbolKind
	Line    int

	// Invocation parameters
	Preset  string
	Path    string
	Package string
	Struct  string
}

// Lenses computes the lenses for file from its outline. The first symbol must
// be the package; test files get no package lenses. Presets are enumerated in
// name order. cond may be nil, in which case preset conditions are ignored.
// Lenses whose condition fails to evaluate are hidden and the failures are
// returned joined alongside the remaining lenses.
func Lenses(snapshot *settings.Snapshot, file string, symbols []Symbol, cond *Conditions) ([]Lens, error) {
	if len(symbols) == 0 || symbols[0].Kind != KindPackage {
		return nil, nil
	}

	pkg := symbols[0]
	dir := filepath.Dir(file)
	test := strings.HasSuffix(file, "_test.go")
	presets := snapshot.Presets()

	var (
		lenses []Lens
		errs   []error
	)

	add := func(sym Symbol, structName string) {
		for _, preset := range presets {
			if cond != nil {
				allowed, err := cond.Allow(preset.When, Vars{
					File:    file,
					Dir:     dir,
					Package: pkg.Name,
					Struct:  structName,
					Kind:    sym.Kind,
					Test:    test,
				})
				if err != nil {
					errs = append(errs, fmt.Errorf("preset %s: %w", preset.Name, err))
					continue
				}

				if !allowed {
					continue
				}
			}

			lenses = append(lenses, Lens{
				Title:   "gopium " + preset.Name,
				Tooltip: fmt.Sprintf("gopium %s action %s", sym.Kind, preset.Name),
				Kind:    sym.Kind,
				Line:    sym.Line,
				Preset:  preset.Name,
				Path:    dir,
				Package: pkg.Name,
				Struct:  structName,
			})
		}
	}

	if !test {
		add(pkg, "")
	}

	for _, sym := range symbols[1:] {
		if sym.Kind == KindStruct {
			add(sym, sym.Name)
		}
	}

	return lenses, errors.Join(errs...)
}
