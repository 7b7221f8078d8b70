package tools

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"sort"

	"github.com/go-openapi/spec"
)

func property(typ, description string) spec.Schema {
	return *new(spec.Schema).Typed(typ, "").WithDescription(description)
}

func enumProperty(typ, description string, values ...any) spec.Schema {
	return *new(spec.Schema).Typed(typ, "").WithDescription(description).WithEnum(values...)
}

func objectSchema(props map[string]spec.Schema, required ...string) spec.Schema {
	s := new(spec.Schema).Typed("object", "")
	if len(props) > 0 {
		s = s.WithProperties(props)
	}
	if len(required) > 0 {
		s = s.WithRequired(required...)
	}
	return *s
}

// Validate checks args against an object schema: required presence, declared
// property types and enum membership. Properties not declared in the schema are
// accepted. A null value is treated as absent.
func Validate(schema spec.Schema, args Args) error {
	var problems []FieldError
	for _, name := range schema.Required {
		if !args.Has(name) {
			problems = append(problems, FieldError{Field: name, Reason: "is required"})
		}
	}
	for name, prop := range schema.Properties {
		if !args.Has(name) {
			continue
		}
		v := args[name]
		if len(prop.Type) > 0 && !matchesAnyType(prop.Type, v) {
			problems = append(problems, FieldError{Field: name, Reason: "must be of type " + typeList(prop.Type)})
			continue
		}
		if len(prop.Enum) > 0 && !inEnum(prop.Enum, v) {
			problems = append(problems, FieldError{Field: name, Reason: fmt.Sprintf("must be one of %s", enumList(prop.Enum))})
		}
	}
	if len(problems) == 0 {
		return nil
	}
	sort.Slice(problems, func(i, j int) bool { return problems[i].Field < problems[j].Field })
	return &ValidationError{Problems: problems}
}

func matchesAnyType(types spec.StringOrArray, v any) bool {
	for _, t := range types {
		if matchesType(t, v) {
			return true
		}
	}
	return false
}

func matchesType(typ string, v any) bool {
	switch typ {
	case "string":
		_, ok := v.(string)
		return ok
	case "boolean":
		_, ok := v.(bool)
		return ok
	case "number":
		_, ok := Args{"v": v}.Number("v")
		return ok
	case "integer":
		f, ok := Args{"v": v}.Number("v")
		return ok && f == math.Trunc(f)
	case "object":
		_, ok := v.(map[string]any)
		return ok
	case "array":
		_, ok := v.([]any)
		return ok
	case "null":
		return v == nil
	}
	return true
}

func inEnum(values []any, v any) bool {
	for _, e := range values {
		if reflect.DeepEqual(e, v) {
			return true
		}
	}
	return false
}

func typeList(types spec.StringOrArray) string {
	if len(types) == 1 {
		return types[0]
	}
	b, _ := json.Marshal([]string(types))
	return string(b)
}

func enumList(values []any) string {
	b, _ := json.Marshal(values)
	return string(b)
}
