package gateway

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
	"github.com/vektah/gqlparser/v2/parser"
	"github.com/vektah/gqlparser/v2/validator"
	"golang.org/x/sync/errgroup"

	"github.com/cardlore/cardlore/internal/types"
)

// maxParallelFields bounds how many root fields of one request run at once.
// Each running field holds one read session.
const maxParallelFields = 4

// Dispatcher runs one catalog operation by name. *catalog.Dispatcher
// implements it.
type Dispatcher interface {
	Dispatch(ctx context.Context, op string, args map[string]any) (any, error)
}

// Request is a GraphQL request as sent over HTTP.
type Request struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName,omitempty"`
	Variables     map[string]any `json:"variables,omitempty"`
}

// Response is a GraphQL response. Data is absent when the request failed
// before execution and null when a non-null root field failed.
type Response struct {
	Data   json.RawMessage `json:"data,omitempty"`
	Errors gqlerror.List   `json:"errors,omitempty"`
}

// Executed reports whether the request reached execution.
func (r *Response) Executed() bool {
	return r.Data != nil
}

// Executor validates GraphQL requests against the schema and resolves each
// root field through one catalog operation.
type Executor struct {
	schema     *ast.Schema
	dispatcher Dispatcher
	logger     *slog.Logger
}

// NewExecutor creates an Executor.
func NewExecutor(schema *ast.Schema, dispatcher Dispatcher, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{schema: schema, dispatcher: dispatcher, logger: logger}
}

// Execute runs req. Field failures are reported in Response.Errors next to
// the data of the fields that succeeded.
func (e *Executor) Execute(ctx context.Context, req Request) *Response {
	if strings.TrimSpace(req.Query) == "" {
		return &Response{Errors: gqlerror.List{requestError(CodeBadUserInput, "GraphQL request must include a query")}}
	}

	// Parsing first tells syntax errors apart from schema violations.
	if _, err := parser.ParseQuery(&ast.Source{Name: "request", Input: req.Query}); err != nil {
		return &Response{Errors: gqlerror.List{withCode(asGraphQLError(err), CodeParseFailed)}}
	}
	doc, errs := gqlparser.LoadQuery(e.schema, req.Query)
	if len(errs) > 0 {
		return &Response{Errors: requestErrors(errs, CodeValidationFailed)}
	}

	op := doc.Operations.ForName(req.OperationName)
	if op == nil {
		msg := "operationName is required when the document has several operations"
		if req.OperationName != "" {
			msg = "unknown operation " + req.OperationName
		}
		return &Response{Errors: gqlerror.List{requestError(CodeBadUserInput, msg)}}
	}
	if op.Operation != ast.Query {
		return &Response{Errors: gqlerror.List{requestError(CodeBadUserInput,
			"only query operations are supported")}}
	}

	vars, err := validator.VariableValues(e.schema, op, req.Variables)
	if err != nil {
		return &Response{Errors: gqlerror.List{withCode(asGraphQLError(err), CodeBadUserInput)}}
	}

	return e.executeQuery(ctx, op, vars)
}

func (e *Executor) executeQuery(ctx context.Context, op *ast.OperationDefinition, vars map[string]any) *Response {
	fields := collectFields(op.SelectionSet, vars, "Query")
	values := make([]any, len(fields))
	fieldErrs := make([]*gqlerror.Error, len(fields))

	var g errgroup.Group
	g.SetLimit(maxParallelFields)
	for i, field := range fields {
		g.Go(func() error {
			values[i], fieldErrs[i] = e.resolveRoot(ctx, field, vars)
			return nil
		})
	}
	_ = g.Wait()

	resp := &Response{}
	data := newObject(len(fields))
	nullData := false
	for i, field := range fields {
		if fieldErrs[i] != nil {
			resp.Errors = append(resp.Errors, fieldErrs[i])
			if field.Definition != nil && field.Definition.Type.NonNull {
				nullData = true
			}
		}
		data.set(field.Alias, values[i])
	}

	if nullData {
		resp.Data = json.RawMessage("null")
		return resp
	}
	raw, err := json.Marshal(data)
	if err != nil {
		e.logger.Error("failed to encode GraphQL response", "error", err)
		resp.Data = json.RawMessage("null")
		resp.Errors = append(resp.Errors, requestError(CodeInternal, internalErrorDescription))
		return resp
	}
	resp.Data = raw
	return resp
}

// resolveRoot runs the operation bound to a Query field and shapes its result
// to the field's selection set.
func (e *Executor) resolveRoot(ctx context.Context, field *ast.Field, vars map[string]any) (any, *gqlerror.Error) {
	path := ast.Path{ast.PathName(field.Alias)}

	if field.Name == "__typename" {
		return "Query", nil
	}
	if value, ok := e.introspectRoot(field, vars); ok {
		return value, nil
	}
	op, ok := rootFields[field.Name]
	if !ok {
		return nil, &gqlerror.Error{
			Message:    "field " + field.Name + " is not supported",
			Path:       path,
			Extensions: map[string]any{"code": CodeValidationFailed},
		}
	}

	args := field.ArgumentMap(vars)
	start := time.Now()
	value, err := e.dispatcher.Dispatch(ctx, string(op), args)
	if err != nil {
		if types.IsInfrastructure(err) {
			e.logger.Error("field resolution failed",
				"field", field.Alias,
				"operation", op,
				"error", err)
		}
		return nil, fieldError(err, string(op), path)
	}

	generic, err := toGeneric(value)
	if err != nil {
		e.logger.Error("failed to convert operation result",
			"field", field.Alias,
			"operation", op,
			"error", err)
		return nil, fieldError(err, string(op), path)
	}

	e.logger.Debug("field resolved",
		"field", field.Alias,
		"operation", op,
		"duration_ms", time.Since(start).Milliseconds())
	return complete(generic, field, vars), nil
}

// complete shapes value to the selection set of field.
func complete(value any, field *ast.Field, vars map[string]any) any {
	if value == nil || len(field.SelectionSet) == 0 || field.Definition == nil {
		return value
	}
	typeName := field.Definition.Type.Name()

	if list, ok := value.([]any); ok {
		out := make([]any, len(list))
		for i, item := range list {
			out[i] = completeObject(item, field.SelectionSet, typeName, vars)
		}
		return out
	}
	return completeObject(value, field.SelectionSet, typeName, vars)
}

func completeObject(value any, selections ast.SelectionSet, typeName string, vars map[string]any) any {
	m, ok := value.(map[string]any)
	if !ok {
		return nil
	}

	fields := collectFields(selections, vars, typeName)
	out := newObject(len(fields))
	for _, f := range fields {
		if f.Name == "__typename" {
			out.set(f.Alias, typeName)
			continue
		}
		out.set(f.Alias, complete(m[f.Name], f, vars))
	}
	return out
}

// collectFields flattens fragments and applies @skip and @include. Fields
// sharing a response key are merged.
func collectFields(selections ast.SelectionSet, vars map[string]any, typeName string) []*ast.Field {
	var fields []*ast.Field
	index := map[string]int{}

	var walk func(ast.SelectionSet)
	walk = func(set ast.SelectionSet) {
		for _, sel := range set {
			switch s := sel.(type) {
			case *ast.Field:
				if !included(s.Directives, vars) {
					continue
				}
				if i, ok := index[s.Alias]; ok {
					merged := *fields[i]
					merged.SelectionSet = append(append(ast.SelectionSet{}, fields[i].SelectionSet...), s.SelectionSet...)
					fields[i] = &merged
					continue
				}
				index[s.Alias] = len(fields)
				fields = append(fields, s)

			case *ast.FragmentSpread:
				if !included(s.Directives, vars) || s.Definition == nil ||
					!typeMatches(s.Definition.TypeCondition, typeName) {
					continue
				}
				walk(s.Definition.SelectionSet)

			case *ast.InlineFragment:
				if !included(s.Directives, vars) || !typeMatches(s.TypeCondition, typeName) {
					continue
				}
				walk(s.SelectionSet)
			}
		}
	}
	walk(selections)
	return fields
}

// The schema has no interfaces or unions, so a condition matches only its
// own type.
func typeMatches(condition, typeName string) bool {
	return condition == "" || condition == typeName
}

func included(directives ast.DirectiveList, vars map[string]any) bool {
	if d := directives.ForName("skip"); d != nil && directiveIf(d, vars) {
		return false
	}
	if d := directives.ForName("include"); d != nil && !directiveIf(d, vars) {
		return false
	}
	return true
}

func directiveIf(d *ast.Directive, vars map[string]any) bool {
	arg := d.Arguments.ForName("if")
	if arg == nil {
		return false
	}
	v, err := arg.Value.Value(vars)
	if err != nil {
		return false
	}
	b, _ := v.(bool)
	return b
}
