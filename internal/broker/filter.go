package broker

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/cel-go/cel"
)

// eventFilter wraps a compiled CEL program evaluated per candidate event.
// When disabled, match always returns true.
type eventFilter struct {
	prog    cel.Program
	enabled bool
}

// compileFilter compiles expr against the event environment:
//
//	data        dyn     the pushed payload
//	key         string  the topic key
//	id          string  the event id
//	created_ms  int     creation time, Unix ms
//	now_ms      int     evaluation time, Unix ms
func compileFilter(expr string) (eventFilter, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return eventFilter{}, nil
	}
	env, err := cel.NewEnv(
		cel.Variable("data", cel.DynType),
		cel.Variable("key", cel.StringType),
		cel.Variable("id", cel.StringType),
		cel.Variable("created_ms", cel.IntType),
		cel.Variable("now_ms", cel.IntType),
		cel.CrossTypeNumericComparisons(true),
	)
	if err != nil {
		return eventFilter{}, err
	}
	ast, iss := env.Compile(expr)
	if iss != nil && iss.Err() != nil {
		return eventFilter{}, fmt.Errorf("%w: filter: %v", ErrInvalidArgument, iss.Err())
	}
	if !ast.OutputType().IsAssignableType(cel.BoolType) {
		return eventFilter{}, fmt.Errorf("%w: filter must evaluate to bool, got %s", ErrInvalidArgument, ast.OutputType())
	}
	prog, err := env.Program(ast)
	if err != nil {
		return eventFilter{}, fmt.Errorf("%w: filter: %v", ErrInvalidArgument, err)
	}
	return eventFilter{prog: prog, enabled: true}, nil
}

// match evaluates the filter for ev. Evaluation errors (missing fields and
// the like) count as a non-match.
func (f eventFilter) match(key string, ev Event, now time.Time) bool {
	if !f.enabled {
		return true
	}
	out, _, err := f.prog.Eval(map[string]any{
		"data":       ev.Data,
		"key":        key,
		"id":         ev.ID,
		"created_ms": ev.CreatedAt.UnixMilli(),
		"now_ms":     now.UnixMilli(),
	})
	if err != nil {
		return false
	}
	b, ok := out.Value().(bool)
	return ok && b
}
