package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"n8n-mcp/internal/n8n"
)

// Dispatcher routes invocations to catalog tools and maps every outcome to a Result.
type Dispatcher struct {
	catalog *Catalog
	logger  *zap.Logger
}

// NewDispatcher returns a dispatcher over catalog. A nil logger disables logging.
func NewDispatcher(catalog *Catalog, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{catalog: catalog, logger: logger}
}

// List returns the catalog descriptors in declaration order.
func (d *Dispatcher) List() []Descriptor { return d.catalog.List() }

// Invoke validates args and runs the named tool. Failures are reported in the
// Result, never returned.
func (d *Dispatcher) Invoke(ctx context.Context, name string, args map[string]any) Result {
	start := time.Now()
	logger := d.logger.With(zap.String("tool", name), zap.String("invocation_id", uuid.NewString()))

	t, ok := d.catalog.Lookup(name)
	if !ok {
		err := &UnknownToolError{Name: name}
		logger.Warn("Unknown tool requested")
		return Result{Payload: err.Error(), IsError: true}
	}
	if args == nil {
		args = map[string]any{}
	}
	if err := Validate(t.Descriptor().InputSchema, args); err != nil {
		logger.Info("Rejected invalid arguments", zap.Error(err))
		return Result{Payload: "Invalid arguments: " + err.Error(), IsError: true}
	}

	out, err := invokeSafely(ctx, t, args)
	if err == nil {
		var payload string
		payload, err = PrettyJSON(out)
		if err == nil {
			logger.Debug("Tool call succeeded", zap.Duration("duration", time.Since(start)))
			return Result{Payload: payload}
		}
	}
	logger.Warn("Tool call failed", zap.Duration("duration", time.Since(start)), zap.Error(err))
	return Result{Payload: "Error: " + errorMessage(err), IsError: true}
}

func invokeSafely(ctx context.Context, t Tool, args Args) (out any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s: panic: %v", t.Descriptor().Name, r)
		}
	}()
	return t.Invoke(ctx, args)
}

// errorMessage prefers the message reported by the remote API.
func errorMessage(err error) string {
	var apiErr *n8n.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}

// PrettyJSON renders v with two-space indentation, keeping key order of raw
// JSON documents and leaving HTML characters unescaped.
func PrettyJSON(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n")), nil
}
