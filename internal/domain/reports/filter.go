package reports

import (
	"fmt"
	"strings"

	"github.com/google/cel-go/cel"

	"invoicely/internal/core/apperror"
)

// Filter selects report rows with a boolean expression over the variable `row`,
// for example `row.status == "paid" && row.total_amount > 1000`.
type Filter struct {
	expr string
	prg  cel.Program
}

// CompileFilter parses and type-checks expr. An empty expression returns a nil
// filter that keeps every row.
func CompileFilter(expr string) (*Filter, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, nil
	}

	env, err := cel.NewEnv(
		cel.Variable("row", cel.MapType(cel.StringType, cel.DynType)),
	)
	if err != nil {
		return nil, fmt.Errorf("create filter env: %w", err)
	}

	ast, iss := env.Compile(expr)
	if iss != nil && iss.Err() != nil {
		return nil, apperror.NewFieldValidation("filter", "Invalid filter expression").
			WithDetail("error", iss.Err().Error())
	}

	prg, err := env.Program(ast)
	if err != nil {
		return nil, apperror.NewFieldValidation("filter", "Invalid filter expression").
			WithDetail("error", err.Error())
	}

	return &Filter{expr: expr, prg: prg}, nil
}

// String returns the source expression.
func (f *Filter) String() string {
	if f == nil {
		return ""
	}
	return f.expr
}

// Match evaluates the filter on one row. A row missing a referenced key does
// not match.
func (f *Filter) Match(row Row) (bool, error) {
	if f == nil {
		return true, nil
	}
	out, _, err := f.prg.Eval(map[string]any{"row": row.Map()})
	if err != nil {
		if strings.Contains(err.Error(), "no such key") {
			return false, nil
		}
		return false, apperror.NewFieldValidation("filter", "Filter could not be evaluated").
			WithDetail("error", err.Error())
	}
	b, ok := out.Value().(bool)
	if !ok {
		return false, apperror.NewFieldValidation("filter", "Filter must evaluate to true or false")
	}
	return b, nil
}

// Apply returns the rows that match, in order.
func (f *Filter) Apply(rows []Row) ([]Row, error) {
	if f == nil {
		return rows, nil
	}
	out := make([]Row, 0, len(rows))
	for _, row := range rows {
		ok, err := f.Match(row)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, row)
		}
	}
	return out, nil
}
