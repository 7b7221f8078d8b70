package tools

import (
	"context"
	"net/url"

	"github.com/go-openapi/spec"
)

func listExecutions(api API) Tool {
	return &tool{
		desc: Descriptor{
			Name:        "list_executions",
			Description: "Get workflow executions",
			InputSchema: objectSchema(map[string]spec.Schema{
				"workflowId": property("string", "Filter by workflow ID"),
				"status":     enumProperty("string", "Filter by execution status", "success", "error", "waiting"),
				"limit":      property("number", "Number of executions to return (default: 20)"),
			}),
		},
		run: func(ctx context.Context, args Args) (any, error) {
			q := url.Values{}
			if id := args.String("workflowId"); id != "" {
				q.Set("workflowId", id)
			}
			if status := args.String("status"); status != "" {
				q.Set("status", status)
			}
			if limit, ok := args.Number("limit"); ok && limit != 0 {
				q.Set("limit", formatNumber(limit))
			}
			return api.Get(ctx, withQuery("/executions", q))
		},
	}
}

func getExecution(api API) Tool {
	return &tool{
		desc: Descriptor{
			Name:        "get_execution",
			Description: "Get details of a specific execution",
			InputSchema: idSchema("The execution ID"),
		},
		run: func(ctx context.Context, args Args) (any, error) {
			return api.Get(ctx, "/executions/"+url.PathEscape(args.String("id")))
		},
	}
}
