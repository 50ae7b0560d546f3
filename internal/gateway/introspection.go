package gateway

import (
	"github.com/99designs/gqlgen/graphql/introspection"
	"github.com/vektah/gqlparser/v2/ast"
)

// introspectRoot answers the __schema and __type root fields. ok is false
// for any other field.
func (e *Executor) introspectRoot(field *ast.Field, vars map[string]any) (value any, ok bool) {
	switch field.Name {
	case "__schema":
		return introspectSchema(introspection.WrapSchema(e.schema), field.SelectionSet, vars), true
	case "__type":
		name, _ := field.ArgumentMap(vars)["name"].(string)
		def := e.schema.Types[name]
		if def == nil {
			return nil, true
		}
		return introspectType(introspection.WrapTypeFromDef(e.schema, def), field.SelectionSet, vars), true
	}
	return nil, false
}

func introspectSchema(s *introspection.Schema, selections ast.SelectionSet, vars map[string]any) any {
	fields := collectFields(selections, vars, "__Schema")
	out := newObject(len(fields))
	for _, f := range fields {
		switch f.Name {
		case "__typename":
			out.set(f.Alias, "__Schema")
		case "description":
			out.set(f.Alias, s.Description())
		case "types":
			types := s.Types()
			list := make([]any, len(types))
			for i := range types {
				list[i] = introspectType(&types[i], f.SelectionSet, vars)
			}
			out.set(f.Alias, list)
		case "queryType":
			out.set(f.Alias, introspectType(s.QueryType(), f.SelectionSet, vars))
		case "mutationType":
			out.set(f.Alias, introspectType(s.MutationType(), f.SelectionSet, vars))
		case "subscriptionType":
			out.set(f.Alias, introspectType(s.SubscriptionType(), f.SelectionSet, vars))
		case "directives":
			directives := s.Directives()
			list := make([]any, len(directives))
			for i := range directives {
				list[i] = introspectDirective(&directives[i], f.SelectionSet, vars)
			}
			out.set(f.Alias, list)
		default:
			out.set(f.Alias, nil)
		}
	}
	return out
}

// introspectType resolves a __Type lazily: nested types are only expanded as
// far as the selection set asks, so recursive type references terminate.
func introspectType(t *introspection.Type, selections ast.SelectionSet, vars map[string]any) any {
	if t == nil {
		return nil
	}

	fields := collectFields(selections, vars, "__Type")
	out := newObject(len(fields))
	for _, f := range fields {
		switch f.Name {
		case "__typename":
			out.set(f.Alias, "__Type")
		case "kind":
			out.set(f.Alias, t.Kind())
		case "name":
			out.set(f.Alias, t.Name())
		case "description":
			out.set(f.Alias, t.Description())
		case "specifiedByURL":
			out.set(f.Alias, t.SpecifiedByURL())
		case "fields":
			defs := t.Fields(includeDeprecated(f, vars))
			if defs == nil {
				out.set(f.Alias, nil)
				continue
			}
			list := make([]any, len(defs))
			for i := range defs {
				list[i] = introspectField(&defs[i], f.SelectionSet, vars)
			}
			out.set(f.Alias, list)
		case "inputFields":
			out.set(f.Alias, introspectInputValues(t.InputFields(), f.SelectionSet, vars))
		case "interfaces":
			out.set(f.Alias, introspectTypeList(t.Interfaces(), f.SelectionSet, vars))
		case "possibleTypes":
			out.set(f.Alias, introspectTypeList(t.PossibleTypes(), f.SelectionSet, vars))
		case "enumValues":
			values := t.EnumValues(includeDeprecated(f, vars))
			if values == nil {
				out.set(f.Alias, nil)
				continue
			}
			list := make([]any, len(values))
			for i := range values {
				list[i] = introspectEnumValue(&values[i], f.SelectionSet, vars)
			}
			out.set(f.Alias, list)
		case "ofType":
			out.set(f.Alias, introspectType(t.OfType(), f.SelectionSet, vars))
		default:
			out.set(f.Alias, nil)
		}
	}
	return out
}

func introspectTypeList(types []introspection.Type, selections ast.SelectionSet, vars map[string]any) any {
	if types == nil {
		return nil
	}
	list := make([]any, len(types))
	for i := range types {
		list[i] = introspectType(&types[i], selections, vars)
	}
	return list
}

func introspectField(fd *introspection.Field, selections ast.SelectionSet, vars map[string]any) any {
	fields := collectFields(selections, vars, "__Field")
	out := newObject(len(fields))
	for _, f := range fields {
		switch f.Name {
		case "__typename":
			out.set(f.Alias, "__Field")
		case "name":
			out.set(f.Alias, fd.Name)
		case "description":
			out.set(f.Alias, fd.Description())
		case "args":
			out.set(f.Alias, introspectInputValues(nonNilArgs(fd.Args), f.SelectionSet, vars))
		case "type":
			out.set(f.Alias, introspectType(fd.Type, f.SelectionSet, vars))
		case "isDeprecated":
			out.set(f.Alias, fd.IsDeprecated())
		case "deprecationReason":
			out.set(f.Alias, fd.DeprecationReason())
		default:
			out.set(f.Alias, nil)
		}
	}
	return out
}

// introspectInputValues resolves arguments and input fields. The schema
// deprecates no input value.
func introspectInputValues(values []introspection.InputValue, selections ast.SelectionSet, vars map[string]any) any {
	if values == nil {
		return nil
	}
	list := make([]any, len(values))
	for i := range values {
		v := &values[i]
		fields := collectFields(selections, vars, "__InputValue")
		out := newObject(len(fields))
		for _, f := range fields {
			switch f.Name {
			case "__typename":
				out.set(f.Alias, "__InputValue")
			case "name":
				out.set(f.Alias, v.Name)
			case "description":
				out.set(f.Alias, v.Description())
			case "type":
				out.set(f.Alias, introspectType(v.Type, f.SelectionSet, vars))
			case "defaultValue":
				out.set(f.Alias, v.DefaultValue)
			case "isDeprecated":
				out.set(f.Alias, false)
			default:
				out.set(f.Alias, nil)
			}
		}
		list[i] = out
	}
	return list
}

func introspectEnumValue(v *introspection.EnumValue, selections ast.SelectionSet, vars map[string]any) any {
	fields := collectFields(selections, vars, "__EnumValue")
	out := newObject(len(fields))
	for _, f := range fields {
		switch f.Name {
		case "__typename":
			out.set(f.Alias, "__EnumValue")
		case "name":
			out.set(f.Alias, v.Name)
		case "description":
			out.set(f.Alias, v.Description())
		case "isDeprecated":
			out.set(f.Alias, v.IsDeprecated())
		case "deprecationReason":
			out.set(f.Alias, v.DeprecationReason())
		default:
			out.set(f.Alias, nil)
		}
	}
	return out
}

func introspectDirective(d *introspection.Directive, selections ast.SelectionSet, vars map[string]any) any {
	fields := collectFields(selections, vars, "__Directive")
	out := newObject(len(fields))
	for _, f := range fields {
		switch f.Name {
		case "__typename":
			out.set(f.Alias, "__Directive")
		case "name":
			out.set(f.Alias, d.Name)
		case "description":
			out.set(f.Alias, d.Description())
		case "locations":
			out.set(f.Alias, d.Locations)
		case "args":
			out.set(f.Alias, introspectInputValues(nonNilArgs(d.Args), f.SelectionSet, vars))
		case "isRepeatable":
			out.set(f.Alias, d.IsRepeatable)
		default:
			out.set(f.Alias, nil)
		}
	}
	return out
}

// nonNilArgs keeps args lists non-null; only inputFields may be null.
func nonNilArgs(args []introspection.InputValue) []introspection.InputValue {
	if args == nil {
		return []introspection.InputValue{}
	}
	return args
}

func includeDeprecated(f *ast.Field, vars map[string]any) bool {
	include, _ := f.ArgumentMap(vars)["includeDeprecated"].(bool)
	return include
}
