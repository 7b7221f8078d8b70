package server

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"
)

// maxMessageSize bounds one JSON-RPC line; workflow documents can be large.
const maxMessageSize = 16 << 20

// JSON-RPC 2.0 error codes.
const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
)

var supportedProtocolVersions = []string{mcp.LATEST_PROTOCOL_VERSION, "2025-03-26", "2024-11-05"}

type rpcRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// isNotification reports whether the request carries no id and expects no reply.
func (r *rpcRequest) isNotification() bool { return len(r.ID) == 0 }

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type initializeParams struct {
	ProtocolVersion string `json:"protocolVersion"`
}

type initializeResult struct {
	ProtocolVersion string             `json:"protocolVersion"`
	Capabilities    map[string]any     `json:"capabilities"`
	ServerInfo      mcp.Implementation `json:"serverInfo"`
}

// lineWriter serializes responses from concurrent tool calls.
type lineWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (lw *lineWriter) write(resp rpcResponse) error {
	b, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	lw.mu.Lock()
	defer lw.mu.Unlock()
	_, err = lw.w.Write(append(b, '\n'))
	return err
}

// ServeStdio reads newline-delimited JSON-RPC requests from in and writes the
// responses to out until in is exhausted or ctx is cancelled. Each tools/call
// runs in its own goroutine; ServeStdio waits for them before returning.
func (s *Server) ServeStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxMessageSize)

	lines := make(chan []byte)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		for scanner.Scan() {
			line := append([]byte(nil), scanner.Bytes()...)
			select {
			case lines <- line:
			case <-ctx.Done():
				scanErr <- nil
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	w := &lineWriter{w: out}
	var wg sync.WaitGroup
	defer wg.Wait()
	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				wg.Wait()
				select {
				case err := <-scanErr:
					if err != nil {
						return fmt.Errorf("read stdin: %w", err)
					}
				case <-ctx.Done():
				}
				return nil
			}
			s.handleLine(ctx, line, w, &wg)
		}
	}
}

func (s *Server) handleLine(ctx context.Context, line []byte, w *lineWriter, wg *sync.WaitGroup) {
	if len(bytes.TrimSpace(line)) == 0 {
		return
	}
	var req rpcRequest
	if err := json.Unmarshal(line, &req); err != nil {
		s.reply(w, rpcResponse{ID: json.RawMessage("null"), Error: &rpcError{Code: codeParseError, Message: "Parse error"}})
		return
	}
	if req.Method == "" {
		if !req.isNotification() {
			s.reply(w, rpcResponse{ID: req.ID, Error: &rpcError{Code: codeInvalidRequest, Message: "Invalid Request"}})
		}
		return
	}

	switch req.Method {
	case "initialize":
		var p initializeParams
		_ = json.Unmarshal(req.Params, &p)
		s.result(w, &req, initializeResult{
			ProtocolVersion: negotiateProtocolVersion(p.ProtocolVersion),
			Capabilities:    map[string]any{"tools": map[string]any{}},
			ServerInfo:      mcp.Implementation{Name: Name, Version: s.cfg.Version},
		})
	case "ping":
		s.result(w, &req, map[string]any{})
	case "tools/list":
		s.result(w, &req, mcp.ListToolsResult{Tools: s.tools})
	case "tools/call":
		var p CallRequest
		if err := json.Unmarshal(req.Params, &p); err != nil || p.Name == nil {
			s.fail(w, &req, codeInvalidParams, "Invalid params: tools/call requires a tool name")
			return
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.result(w, &req, toCallToolResult(s.dispatcher.Invoke(ctx, *p.Name, p.Args)))
		}()
	default:
		if req.isNotification() {
			s.logger.Debug("Ignoring notification", zap.String("method", req.Method))
			return
		}
		s.fail(w, &req, codeMethodNotFound, "Method not found: "+req.Method)
	}
}

func negotiateProtocolVersion(requested string) string {
	for _, v := range supportedProtocolVersions {
		if v == requested {
			return v
		}
	}
	return mcp.LATEST_PROTOCOL_VERSION
}

func (s *Server) result(w *lineWriter, req *rpcRequest, result any) {
	if req.isNotification() {
		return
	}
	s.reply(w, rpcResponse{ID: req.ID, Result: result})
}

func (s *Server) fail(w *lineWriter, req *rpcRequest, code int, msg string) {
	if req.isNotification() {
		return
	}
	s.reply(w, rpcResponse{ID: req.ID, Error: &rpcError{Code: code, Message: msg}})
}

func (s *Server) reply(w *lineWriter, resp rpcResponse) {
	resp.JSONRPC = "2.0"
	if err := w.write(resp); err != nil {
		s.logger.Error("Failed to write response", zap.Error(err))
	}
}
