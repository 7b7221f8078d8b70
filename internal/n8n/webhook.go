package n8n

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// WebhookNodeType is the node type tag of n8n webhook triggers.
const WebhookNodeType = "n8n-nodes-base.webhook"

// Node is the subset of a workflow node read when deriving webhooks.
type Node struct {
	Name       string          `json:"name"`
	Type       string          `json:"type"`
	WebhookID  string          `json:"webhookId"`
	Disabled   bool            `json:"disabled"`
	Parameters *NodeParameters `json:"parameters"`
}

// NodeParameters holds the webhook-relevant node parameters.
type NodeParameters struct {
	Path       string `json:"path"`
	HTTPMethod string `json:"httpMethod"`
}

// Workflow is the subset of a workflow document needed for webhook extraction.
// Nodes is nil when the document has no nodes list.
type Workflow struct {
	Nodes *[]Node `json:"nodes"`
}

// Webhook describes one webhook trigger of a workflow.
type Webhook struct {
	ID         string `json:"id,omitempty"`
	Name       string `json:"name"`
	Path       string `json:"path,omitempty"`
	HTTPMethod string `json:"httpMethod"`
	URL        string `json:"url"`
	Disabled   bool   `json:"disabled"`
}

// ExtractWebhooks decodes a workflow document and returns its webhook triggers
// in node order. The webhook URL is rooted at hostURL. A document without a
// nodes list, or a webhook node without parameters, is an error.
func ExtractWebhooks(hostURL string, doc json.RawMessage) ([]Webhook, error) {
	var wf Workflow
	if err := json.Unmarshal(doc, &wf); err != nil {
		return nil, fmt.Errorf("decode workflow: %w", err)
	}
	if wf.Nodes == nil {
		return nil, errors.New("workflow has no nodes list")
	}
	out := make([]Webhook, 0, len(*wf.Nodes))
	for i, n := range *wf.Nodes {
		if n.Type != WebhookNodeType {
			continue
		}
		if n.Parameters == nil {
			return nil, fmt.Errorf("webhook node %d (%q) has no parameters", i, n.Name)
		}
		method := n.Parameters.HTTPMethod
		if method == "" {
			method = http.MethodGet
		}
		out = append(out, Webhook{
			ID:         n.WebhookID,
			Name:       n.Name,
			Path:       n.Parameters.Path,
			HTTPMethod: method,
			URL:        hostURL + "/webhook/" + n.Parameters.Path,
			Disabled:   n.Disabled,
		})
	}
	return out, nil
}

// WebhookCaller calls public webhook endpoints. It never sends the API key.
type WebhookCaller struct {
	HTTP *http.Client
}

// NewWebhookCaller returns a caller. If httpClient is nil, a default with 30s timeout is used.
func NewWebhookCaller(httpClient *http.Client) *WebhookCaller {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &WebhookCaller{HTTP: httpClient}
}

// Call issues method against rawURL. A non-nil body is sent as JSON.
func (w *WebhookCaller) Call(ctx context.Context, method, rawURL string, body any) (json.RawMessage, error) {
	reader, err := encodeBody(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json, text/plain, */*")
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return send(w.HTTP, req)
}
