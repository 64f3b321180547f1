// Package policy evaluates user-supplied CEL expressions against
// findings, so CI pipelines can fail a build on conditions like
// "severity == 'critical' && saving > 500".
package policy

import (
	"fmt"

	"github.com/costlens/costlens/pkg/rules"
	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/checker/decls"
)

// Gate is a compiled findings filter.
type Gate struct {
	expr    string
	program cel.Program
}

// Compile builds a gate from a CEL expression. The expression sees one
// finding at a time through the variables rule, resource, service,
// severity, category, saving and current.
func Compile(expr string) (*Gate, error) {
	env, err := cel.NewEnv(
		// Lets "saving > 500" work without a trailing ".0".
		cel.CrossTypeNumericComparisons(true),
		cel.Declarations(
			decls.NewVar("rule", decls.String),
			decls.NewVar("resource", decls.String),
			decls.NewVar("service", decls.String),
			decls.NewVar("severity", decls.String),
			decls.NewVar("category", decls.String),
			decls.NewVar("saving", decls.Double),
			decls.NewVar("current", decls.Double),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL env: %w", err)
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("policy compilation error: %w", issues.Err())
	}

	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("policy program creation error: %w", err)
	}

	return &Gate{expr: expr, program: prg}, nil
}

// Match returns the findings the expression evaluates true for.
// Evaluation errors on individual findings are reported, not skipped;
// a gate that cannot be evaluated must not silently pass a pipeline.
func (g *Gate) Match(findings []rules.Finding) ([]rules.Finding, error) {
	var matched []rules.Finding
	for _, f := range findings {
		out, _, err := g.program.Eval(map[string]any{
			"rule":     f.ID,
			"resource": f.Resource,
			"service":  f.Service,
			"severity": string(f.Severity),
			"category": string(f.Category),
			"saving":   f.MonthlySaving,
			"current":  f.CurrentMonthlyCost,
		})
		if err != nil {
			return nil, fmt.Errorf("policy evaluation failed for %s: %w", f.ID, err)
		}
		if hit, ok := out.Value().(bool); ok && hit {
			matched = append(matched, f)
		}
	}
	return matched, nil
}

// Expr returns the source expression, for log and error context.
func (g *Gate) Expr() string {
	return g.expr
}
