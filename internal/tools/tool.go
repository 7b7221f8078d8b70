// Package tools defines the n8n tool catalog and the dispatcher that runs tool invocations.
package tools

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/go-openapi/spec"
)

// Descriptor advertises a tool to callers.
type Descriptor struct {
	Name        string
	Description string
	InputSchema spec.Schema
}

// Tool is a named operation that can be described to and invoked by an agent.
// Invoke receives arguments that already passed schema validation and returns a
// value that is rendered as pretty-printed JSON.
type Tool interface {
	Descriptor() Descriptor
	Invoke(ctx context.Context, args Args) (any, error)
}

// Result is the outcome of one invocation.
type Result struct {
	Payload string `json:"payload"`
	IsError bool   `json:"isError"`
}

// API is the subset of the n8n REST client the tools use.
type API interface {
	Get(ctx context.Context, path string) (json.RawMessage, error)
	Post(ctx context.Context, path string, body any) (json.RawMessage, error)
	Put(ctx context.Context, path string, body any) (json.RawMessage, error)
	Delete(ctx context.Context, path string) (json.RawMessage, error)
}

// WebhookCaller issues unauthenticated calls to public webhook URLs.
type WebhookCaller interface {
	Call(ctx context.Context, method, rawURL string, body any) (json.RawMessage, error)
}

// Args are the decoded JSON arguments of an invocation.
type Args map[string]any

// Has reports whether key is present with a non-null value.
func (a Args) Has(key string) bool {
	v, ok := a[key]
	return ok && v != nil
}

// String returns a string argument, or "" when absent or not a string.
func (a Args) String(key string) string {
	s, _ := a[key].(string)
	return s
}

// Bool returns a boolean argument and whether it was present as a boolean.
func (a Args) Bool(key string) (bool, bool) {
	b, ok := a[key].(bool)
	return b, ok
}

// Number returns a numeric argument; JSON numbers decode as float64 but
// in-process callers may pass Go integers.
func (a Args) Number(key string) (float64, bool) {
	switch v := a[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	}
	return 0, false
}

func formatNumber(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

// tool binds a descriptor to its handler.
type tool struct {
	desc Descriptor
	run  func(ctx context.Context, args Args) (any, error)
}

func (t *tool) Descriptor() Descriptor { return t.desc }

func (t *tool) Invoke(ctx context.Context, args Args) (any, error) { return t.run(ctx, args) }
