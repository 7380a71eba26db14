package service

import (
	"fmt"

	"github.com/google/cel-go/cel"

	"github.com/dialwise/directory/common/apperr"
)

// CodeRule validates proposed dial codes against a CEL expression over
// a single `value` variable. Compiled once at startup; evaluation is
// cheap enough for every draft and import row.
type CodeRule struct {
	expr string
	prg  cel.Program
}

// NewCodeRule compiles the rule expression
func NewCodeRule(expr string) (*CodeRule, error) {
	env, err := cel.NewEnv(
		cel.Variable("value", cel.StringType),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL env: %w", err)
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("failed to compile code rule %q: %w", expr, issues.Err())
	}

	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("failed to build code rule program: %w", err)
	}

	return &CodeRule{expr: expr, prg: prg}, nil
}

// Validate checks a proposed dial code
func (r *CodeRule) Validate(value string) error {
	out, _, err := r.prg.Eval(map[string]interface{}{
		"value": value,
	})
	if err != nil {
		return fmt.Errorf("code rule evaluation error: %w", err)
	}

	ok, isBool := out.Value().(bool)
	if !isBool {
		return fmt.Errorf("code rule did not return boolean, got %T", out.Value())
	}

	if !ok {
		return apperr.InvalidArgument("dial code %q does not satisfy the code rule", value)
	}
	return nil
}
