package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"n8n-mcp/internal/n8n"
)

type recordedRequest struct {
	Method string
	Path   string
	Query  string
	Body   string
	Header http.Header
}

// stubN8N serves one fixed response and records every request it sees.
type stubN8N struct {
	*httptest.Server
	mu       sync.Mutex
	requests []recordedRequest
	status   int
	body     string
}

func newStub(t *testing.T, status int, body string) *stubN8N {
	t.Helper()
	s := &stubN8N{status: status, body: body}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		s.mu.Lock()
		s.requests = append(s.requests, recordedRequest{
			Method: r.Method,
			Path:   r.URL.EscapedPath(),
			Query:  r.URL.RawQuery,
			Body:   string(b),
			Header: r.Header.Clone(),
		})
		s.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(s.status)
		_, _ = w.Write([]byte(s.body))
	}))
	t.Cleanup(s.Close)
	return s
}

func (s *stubN8N) last(t *testing.T) recordedRequest {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	require.NotEmpty(t, s.requests)
	return s.requests[len(s.requests)-1]
}

func (s *stubN8N) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

func newDispatcher(s *stubN8N) *Dispatcher {
	api := n8n.New(s.URL, "test-key", s.Client())
	hooks := n8n.NewWebhookCaller(s.Client())
	return NewDispatcher(NewCatalog(api, hooks, s.URL), nil)
}

func indent(t *testing.T, doc string) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, json.Indent(&buf, []byte(doc), "", "  "))
	return buf.String()
}

const fixedDoc = `{"id":"42","name":"Orders <sync>","active":true,"nodes":[],"tags":[{"id":"t1"}]}`

func TestInvokeEveryToolRelaysResponse(t *testing.T) {
	tests := []struct {
		tool       string
		args       map[string]any
		wantMethod string
		wantPath   string
		wantQuery  string
		wantBody   string
	}{
		{tool: "list_workflows", args: map[string]any{"active": false, "limit": float64(10)}, wantMethod: "GET", wantPath: "/api/v1/workflows", wantQuery: "active=false&limit=10"},
		{tool: "get_workflow", args: map[string]any{"id": "42"}, wantMethod: "GET", wantPath: "/api/v1/workflows/42"},
		{tool: "call_webhook_get", args: map[string]any{"url": "/webhook/abc"}, wantMethod: "GET", wantPath: "/webhook/abc"},
		{tool: "call_webhook_post", args: map[string]any{"url": "/webhook/abc", "data": map[string]any{"a": "b"}}, wantMethod: "POST", wantPath: "/webhook/abc", wantBody: `{"a":"b"}`},
		{tool: "list_executions", args: map[string]any{"workflowId": "42", "status": "error", "limit": float64(5)}, wantMethod: "GET", wantPath: "/api/v1/executions", wantQuery: "limit=5&status=error&workflowId=42"},
		{tool: "get_execution", args: map[string]any{"id": "7"}, wantMethod: "GET", wantPath: "/api/v1/executions/7"},
		{tool: "create_workflow", args: map[string]any{"name": "n", "nodes": []any{}, "connections": map[string]any{}}, wantMethod: "POST", wantPath: "/api/v1/workflows", wantBody: `{"connections":{},"name":"n","nodes":[],"settings":{}}`},
		{tool: "update_workflow", args: map[string]any{"id": "42", "name": "renamed"}, wantMethod: "PUT", wantPath: "/api/v1/workflows/42", wantBody: `{"name":"renamed"}`},
		{tool: "delete_workflow", args: map[string]any{"id": "42"}, wantMethod: "DELETE", wantPath: "/api/v1/workflows/42"},
		{tool: "activate_workflow", args: map[string]any{"id": "42"}, wantMethod: "POST", wantPath: "/api/v1/workflows/42/activate"},
		{tool: "deactivate_workflow", args: map[string]any{"id": "42"}, wantMethod: "POST", wantPath: "/api/v1/workflows/42/deactivate"},
		{tool: "get_workflow_tags", args: nil, wantMethod: "GET", wantPath: "/api/v1/tags"},
		{tool: "execute_workflow", args: map[string]any{"id": "42", "data": map[string]any{"x": float64(1)}}, wantMethod: "POST", wantPath: "/api/v1/workflows/42/execute", wantBody: `{"data":{"x":1}}`},
	}
	for _, tt := range tests {
		t.Run(tt.tool, func(t *testing.T) {
			stub := newStub(t, http.StatusOK, fixedDoc)
			d := newDispatcher(stub)
			if len(tt.args) > 0 {
				if u, ok := tt.args["url"].(string); ok {
					tt.args["url"] = stub.URL + u
				}
			}

			res := d.Invoke(context.Background(), tt.tool, tt.args)
			assert.False(t, res.IsError, res.Payload)
			assert.Equal(t, indent(t, fixedDoc), res.Payload)

			req := stub.last(t)
			assert.Equal(t, tt.wantMethod, req.Method)
			assert.Equal(t, tt.wantPath, req.Path)
			assert.Equal(t, tt.wantQuery, req.Query)
			if tt.wantBody == "" {
				assert.Empty(t, req.Body)
			} else {
				assert.JSONEq(t, tt.wantBody, req.Body)
			}
		})
	}
}

func TestInvokeUnknownTool(t *testing.T) {
	stub := newStub(t, http.StatusOK, `{}`)
	res := newDispatcher(stub).Invoke(context.Background(), "drop_database", nil)
	assert.Equal(t, Result{Payload: "Unknown tool: drop_database", IsError: true}, res)
	assert.Zero(t, stub.count())
}

func TestInvokeRemoteNotFound(t *testing.T) {
	stub := newStub(t, http.StatusNotFound, `{"message":"not found"}`)
	res := newDispatcher(stub).Invoke(context.Background(), "get_workflow", map[string]any{"id": "X"})
	assert.Equal(t, Result{Payload: "Error: not found", IsError: true}, res)
	assert.Equal(t, "/api/v1/workflows/X", stub.last(t).Path)
}

func TestInvokeNetworkFailure(t *testing.T) {
	stub := newStub(t, http.StatusOK, `{}`)
	d := newDispatcher(stub)
	stub.Close()

	res := d.Invoke(context.Background(), "get_workflow_tags", nil)
	assert.True(t, res.IsError)
	assert.Contains(t, res.Payload, "Error: ")
}

func TestInvokeListWorkflowWebhooks(t *testing.T) {
	stub := newStub(t, http.StatusOK, `{"id":"wf","nodes":[
		{"type":"n8n-nodes-base.webhook","webhookId":"w1","name":"Hook","parameters":{"path":"abc"},"disabled":false},
		{"type":"other"}
	]}`)
	res := newDispatcher(stub).Invoke(context.Background(), "list_workflow_webhooks", map[string]any{"id": "wf"})
	require.False(t, res.IsError, res.Payload)

	var hooks []map[string]any
	require.NoError(t, json.Unmarshal([]byte(res.Payload), &hooks))
	assert.Equal(t, []map[string]any{{
		"id":         "w1",
		"name":       "Hook",
		"path":       "abc",
		"httpMethod": "GET",
		"url":        stub.URL + "/webhook/abc",
		"disabled":   false,
	}}, hooks)
	assert.Equal(t, "/api/v1/workflows/wf", stub.last(t).Path)
}

func TestInvokeListWorkflowWebhooksMalformedWorkflow(t *testing.T) {
	stub := newStub(t, http.StatusOK, `{"nodes":{"not":"a list"}}`)
	res := newDispatcher(stub).Invoke(context.Background(), "list_workflow_webhooks", map[string]any{"id": "wf"})
	assert.True(t, res.IsError)
	assert.Contains(t, res.Payload, "Error: decode workflow")
}

func TestInvokeListWorkflowWebhooksWithoutNodes(t *testing.T) {
	stub := newStub(t, http.StatusOK, `{"id":"wf","name":"bare"}`)
	res := newDispatcher(stub).Invoke(context.Background(), "list_workflow_webhooks", map[string]any{"id": "wf"})
	assert.Equal(t, Result{Payload: "Error: workflow has no nodes list", IsError: true}, res)
}

func TestWebhookCallsOmitAPIKey(t *testing.T) {
	for _, name := range []string{"call_webhook_get", "call_webhook_post"} {
		t.Run(name, func(t *testing.T) {
			stub := newStub(t, http.StatusOK, `{"ok":true}`)
			args := map[string]any{"url": stub.URL + "/webhook/abc", "data": map[string]any{}}
			res := newDispatcher(stub).Invoke(context.Background(), name, args)
			require.False(t, res.IsError, res.Payload)
			assert.Empty(t, stub.last(t).Header.Get(n8n.APIKeyHeader))
		})
	}
}

func TestManagementCallsSendAPIKey(t *testing.T) {
	stub := newStub(t, http.StatusOK, `{"data":[]}`)
	res := newDispatcher(stub).Invoke(context.Background(), "list_workflows", nil)
	require.False(t, res.IsError)
	assert.Equal(t, "test-key", stub.last(t).Header.Get(n8n.APIKeyHeader))
}

func TestListWorkflowsIdempotent(t *testing.T) {
	stub := newStub(t, http.StatusOK, `{"data":[{"id":"1","name":"a & b"}],"nextCursor":null}`)
	d := newDispatcher(stub)
	first := d.Invoke(context.Background(), "list_workflows", map[string]any{"limit": float64(3)})
	second := d.Invoke(context.Background(), "list_workflows", map[string]any{"limit": float64(3)})
	assert.Equal(t, first, second)
	assert.Contains(t, first.Payload, `"a & b"`)
}

func TestInvokeValidatesBeforeNetwork(t *testing.T) {
	tests := []struct {
		name    string
		tool    string
		args    map[string]any
		payload string
	}{
		{name: "missing id", tool: "get_workflow", args: nil, payload: "Invalid arguments: id: is required"},
		{name: "null id", tool: "delete_workflow", args: map[string]any{"id": nil}, payload: "Invalid arguments: id: is required"},
		{name: "wrong type", tool: "get_workflow", args: map[string]any{"id": float64(3)}, payload: "Invalid arguments: id: must be of type string"},
		{name: "bad enum", tool: "list_executions", args: map[string]any{"status": "running"}, payload: `Invalid arguments: status: must be one of ["success","error","waiting"]`},
		{name: "several", tool: "create_workflow", args: map[string]any{"nodes": "x"}, payload: "Invalid arguments: connections: is required; name: is required; nodes: must be of type array"},
		{name: "post without data", tool: "call_webhook_post", args: map[string]any{"url": "http://example.invalid"}, payload: "Invalid arguments: data: is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := newStub(t, http.StatusOK, `{}`)
			res := newDispatcher(stub).Invoke(context.Background(), tt.tool, tt.args)
			assert.Equal(t, Result{Payload: tt.payload, IsError: true}, res)
			assert.Zero(t, stub.count())
		})
	}
}

type panicTool struct{}

func (panicTool) Descriptor() Descriptor {
	return Descriptor{Name: "boom", InputSchema: objectSchema(nil)}
}

func (panicTool) Invoke(context.Context, Args) (any, error) { panic("kaboom") }

func TestInvokeRecoversPanics(t *testing.T) {
	d := NewDispatcher(newCatalog(panicTool{}), nil)
	res := d.Invoke(context.Background(), "boom", nil)
	assert.True(t, res.IsError)
	assert.Equal(t, "Error: boom: panic: kaboom", res.Payload)
}

func TestPrettyJSON(t *testing.T) {
	out, err := PrettyJSON(json.RawMessage(`{"b":1,"a":"<x>"}`))
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"b\": 1,\n  \"a\": \"<x>\"\n}", out)
}
