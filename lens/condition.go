package lens

import (
	"fmt"

	"github.com/google/cel-go/cel"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/shibukawa/gopiumlens"
)

// Vars are the variables a preset condition can reference. Package and
// Struct are exposed as pkg and name since package is reserved in CEL.
type Vars struct {
	File    string
	Dir     string
	Package string
	Struct  string
	Kind    SymbolKind
	Test    bool
}

func (v Vars) activation() map[string]any {
	return map[string]any{
		"file": v.File,
		"dir":  v.Dir,
		"pkg":  v.Package,
		"name": v.Struct,
		"kind": string(v.Kind),
		"test": v.Test,
	}
}

// Conditions evaluates preset "when" expressions written in CEL, e.g.
//
//	kind == "struct" && !test
//	pkg.startsWith("internal") || name.endsWith("Cache")
//
// Compiled programs are kept in a bounded cache keyed by expression.
type Conditions struct {
	env      *cel.Env
	programs *lru.Cache[string, cel.Program]
}

// programCacheSize bounds the number of compiled expressions kept around
const programCacheSize = 256

// NewConditions creates the CEL environment for preset conditions
func NewConditions() (*Conditions, error) {
	env, err := cel.NewEnv(
		cel.Variable("file", cel.StringType),
		cel.Variable("dir", cel.StringType),
		cel.Variable("pkg", cel.StringType),
		cel.Variable("name", cel.StringType),
		cel.Variable("kind", cel.StringType),
		cel.Variable("test", cel.BoolType),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create condition CEL: %w", err)
	}

	programs, err := lru.New[string, cel.Program](programCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create condition cache: %w", err)
	}

	return &Conditions{
		env:      env,
		programs: programs,
	}, nil
}

// Allow reports whether expr holds for vars. An empty expression always holds.
func (c *Conditions) Allow(expr string, vars Vars) (bool, error) {
	if expr == "" {
		return true, nil
	}

	program, err := c.program(expr)
	if err != nil {
		return false, err
	}

	result, _, err := program.Eval(vars.activation())
	if err != nil {
		return false, fmt.Errorf("CEL evaluation error in %q: %w", expr, err)
	}

	allowed, ok := result.Value().(bool)
	if !ok {
		return false, fmt.Errorf("%w: %q", gopiumlens.ErrConditionNotBool, expr)
	}

	return allowed, nil
}

func (c *Conditions) program(expr string) (cel.Program, error) {
	if program, ok := c.programs.Get(expr); ok {
		return program, nil
	}

	ast, issues := c.env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("CEL compilation error in %q: %w", expr, issues.Err())
	}

	program, err := c.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL program: %w", err)
	}

	c.programs.Add(expr, program)

	return program, nil
}
