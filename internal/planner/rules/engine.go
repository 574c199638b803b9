package rules

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"
)

// ============================================================
// CEL Engine
// ============================================================

// Engine компилирует и кэширует CEL-выражения правил.
type Engine struct {
	env      *cel.Env
	mu       sync.RWMutex
	prgCache map[string]cel.Program
}

func NewEngine() (*Engine, error) {
	env, err := cel.NewEnv(
		cel.Variable("plan", cel.DynType),
		cel.Variable("site", cel.DynType),
		cel.Variable("room", cel.DynType),
		cel.Variable("project", cel.DynType),
	)
	if err != nil {
		return nil, fmt.Errorf("create CEL environment: %w", err)
	}
	return &Engine{
		env:      env,
		prgCache: make(map[string]cel.Program),
	}, nil
}

// CompilePack прогревает кэш и отклоняет пакеты с невалидными выражениями.
func (e *Engine) CompilePack(p *Pack) error {
	for _, r := range p.Rules {
		for _, expr := range []string{r.When, r.Expr, r.Message, r.Failure} {
			if expr == "" {
				continue
			}
			if _, err := e.program(expr); err != nil {
				return fmt.Errorf("pack %q rule %q: %w", p.Name, r.Name, err)
			}
		}
	}
	return nil
}

func (e *Engine) EvalBool(expr string, vars map[string]any) (bool, error) {
	out, err := e.eval(expr, vars)
	if err != nil {
		return false, err
	}
	val, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("%q: result not bool", expr)
	}
	return val, nil
}

func (e *Engine) EvalString(expr string, vars map[string]any) (string, error) {
	out, err := e.eval(expr, vars)
	if err != nil {
		return "", err
	}
	val, ok := out.(string)
	if !ok {
		return "", fmt.Errorf("%q: result not string", expr)
	}
	return val, nil
}

func (e *Engine) eval(expr string, vars map[string]any) (any, error) {
	prg, err := e.program(expr)
	if err != nil {
		return nil, err
	}
	out, _, err := prg.Eval(vars)
	if err != nil {
		return nil, fmt.Errorf("eval %q: %w", expr, err)
	}
	return out.Value(), nil
}

func (e *Engine) program(expr string) (cel.Program, error) {
	e.mu.RLock()
	prg, hit := e.prgCache[expr]
	e.mu.RUnlock()
	if hit {
		return prg, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if prg, hit = e.prgCache[expr]; hit {
		return prg, nil
	}

	ast, issues := e.env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile %q: %w", expr, issues.Err())
	}
	prg, err := e.env.Program(ast,
		cel.InterruptCheckFrequency(100),
		cel.CostLimit(10000),
	)
	if err != nil {
		return nil, fmt.Errorf("program %q: %w", expr, err)
	}
	e.prgCache[expr] = prg
	return prg, nil
}
