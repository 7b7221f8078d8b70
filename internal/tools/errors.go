package tools

import "strings"

// FieldError is one argument problem.
type FieldError struct {
	Field  string
	Reason string
}

func (f FieldError) String() string { return f.Field + ": " + f.Reason }

// ValidationError reports arguments that do not satisfy a tool's input schema.
type ValidationError struct {
	Problems []FieldError
}

func (v *ValidationError) Error() string {
	parts := make([]string, len(v.Problems))
	for i, p := range v.Problems {
		parts[i] = p.String()
	}
	return strings.Join(parts, "; ")
}

var _ error = &ValidationError{}

// UnknownToolError is returned for a name missing from the catalog.
type UnknownToolError struct {
	Name string
}

func (u *UnknownToolError) Error() string { return "Unknown tool: " + u.Name }

var _ error = &UnknownToolError{}
