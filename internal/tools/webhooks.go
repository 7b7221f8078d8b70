package tools

import (
	"context"
	"net/http"

	"github.com/go-openapi/spec"

	"n8n-mcp/internal/n8n"
)

func listWorkflowWebhooks(api API, hostURL string) Tool {
	return &tool{
		desc: Descriptor{
			Name:        "list_workflow_webhooks",
			Description: "Get all webhooks in a workflow",
			InputSchema: idSchema("The ID of the workflow to get webhooks from"),
		},
		run: func(ctx context.Context, args Args) (any, error) {
			doc, err := api.Get(ctx, workflowPath(args.String("id")))
			if err != nil {
				return nil, err
			}
			return n8n.ExtractWebhooks(hostURL, doc)
		},
	}
}

func callWebhookGet(hooks WebhookCaller) Tool {
	return &tool{
		desc: Descriptor{
			Name:        "call_webhook_get",
			Description: "Call a GET webhook",
			InputSchema: objectSchema(map[string]spec.Schema{
				"url": property("string", "The webhook URL to call"),
			}, "url"),
		},
		run: func(ctx context.Context, args Args) (any, error) {
			return hooks.Call(ctx, http.MethodGet, args.String("url"), nil)
		},
	}
}

func callWebhookPost(hooks WebhookCaller) Tool {
	return &tool{
		desc: Descriptor{
			Name:        "call_webhook_post",
			Description: "Call a POST webhook",
			InputSchema: objectSchema(map[string]spec.Schema{
				"url":  property("string", "The webhook URL to call"),
				"data": property("object", "Data to send in the POST request body"),
			}, "url", "data"),
		},
		run: func(ctx context.Context, args Args) (any, error) {
			return hooks.Call(ctx, http.MethodPost, args.String("url"), args["data"])
		},
	}
}
