package tools

import (
	"context"
	"net/url"
	"strconv"

	"github.com/go-openapi/spec"
)

func workflowPath(id string, suffix ...string) string {
	p := "/workflows/" + url.PathEscape(id)
	for _, s := range suffix {
		p += "/" + s
	}
	return p
}

func idSchema(description string) spec.Schema {
	return objectSchema(map[string]spec.Schema{"id": property("string", description)}, "id")
}

func listWorkflows(api API) Tool {
	return &tool{
		desc: Descriptor{
			Name:        "list_workflows",
			Description: "Get all n8n workflows",
			InputSchema: objectSchema(map[string]spec.Schema{
				"active": property("boolean", "Filter by active status"),
				"limit":  property("number", "Number of workflows to return (default: 100)"),
			}),
		},
		run: func(ctx context.Context, args Args) (any, error) {
			q := url.Values{}
			if active, ok := args.Bool("active"); ok {
				q.Set("active", strconv.FormatBool(active))
			}
			if limit, ok := args.Number("limit"); ok && limit != 0 {
				q.Set("limit", formatNumber(limit))
			}
			return api.Get(ctx, withQuery("/workflows", q))
		},
	}
}

func getWorkflow(api API) Tool {
	return &tool{
		desc: Descriptor{
			Name:        "get_workflow",
			Description: "Get a specific workflow by ID",
			InputSchema: idSchema("The workflow ID"),
		},
		run: func(ctx context.Context, args Args) (any, error) {
			return api.Get(ctx, workflowPath(args.String("id")))
		},
	}
}

func createWorkflow(api API) Tool {
	return &tool{
		desc: Descriptor{
			Name:        "create_workflow",
			Description: "Create a new workflow",
			InputSchema: objectSchema(map[string]spec.Schema{
				"name":        property("string", "Name of the workflow"),
				"nodes":       property("array", "Nodes of the workflow"),
				"connections": property("object", "Connections between the workflow nodes"),
				"settings":    property("object", "Workflow settings (default: {})"),
			}, "name", "nodes", "connections"),
		},
		run: func(ctx context.Context, args Args) (any, error) {
			body := map[string]any{
				"name":        args["name"],
				"nodes":       args["nodes"],
				"connections": args["connections"],
				"settings":    map[string]any{},
			}
			if args.Has("settings") {
				body["settings"] = args["settings"]
			}
			return api.Post(ctx, "/workflows", body)
		},
	}
}

// updateWorkflow sends only the fields the caller provided.
func updateWorkflow(api API) Tool {
	return &tool{
		desc: Descriptor{
			Name:        "update_workflow",
			Description: "Update an existing workflow. Only the provided fields are sent.",
			InputSchema: objectSchema(map[string]spec.Schema{
				"id":          property("string", "The workflow ID"),
				"name":        property("string", "New name of the workflow"),
				"nodes":       property("array", "New nodes of the workflow"),
				"connections": property("object", "New connections between the workflow nodes"),
				"settings":    property("object", "New workflow settings"),
			}, "id"),
		},
		run: func(ctx context.Context, args Args) (any, error) {
			body := map[string]any{}
			for _, field := range []string{"name", "nodes", "connections", "settings"} {
				if args.Has(field) {
					body[field] = args[field]
				}
			}
			return api.Put(ctx, workflowPath(args.String("id")), body)
		},
	}
}

func deleteWorkflow(api API) Tool {
	return &tool{
		desc: Descriptor{
			Name:        "delete_workflow",
			Description: "Delete a workflow by ID",
			InputSchema: idSchema("The workflow ID"),
		},
		run: func(ctx context.Context, args Args) (any, error) {
			return api.Delete(ctx, workflowPath(args.String("id")))
		},
	}
}

func activateWorkflow(api API) Tool {
	return &tool{
		desc: Descriptor{
			Name:        "activate_workflow",
			Description: "Activate a workflow",
			InputSchema: idSchema("The workflow ID"),
		},
		run: func(ctx context.Context, args Args) (any, error) {
			return api.Post(ctx, workflowPath(args.String("id"), "activate"), nil)
		},
	}
}

func deactivateWorkflow(api API) Tool {
	return &tool{
		desc: Descriptor{
			Name:        "deactivate_workflow",
			Description: "Deactivate a workflow",
			InputSchema: idSchema("The workflow ID"),
		},
		run: func(ctx context.Context, args Args) (any, error) {
			return api.Post(ctx, workflowPath(args.String("id"), "deactivate"), nil)
		},
	}
}

func getWorkflowTags(api API) Tool {
	return &tool{
		desc: Descriptor{
			Name:        "get_workflow_tags",
			Description: "Get all workflow tags",
			InputSchema: objectSchema(nil),
		},
		run: func(ctx context.Context, _ Args) (any, error) {
			return api.Get(ctx, "/tags")
		},
	}
}

func executeWorkflow(api API) Tool {
	return &tool{
		desc: Descriptor{
			Name:        "execute_workflow",
			Description: "Execute a workflow with optional input data",
			InputSchema: objectSchema(map[string]spec.Schema{
				"id":   property("string", "The workflow ID"),
				"data": property("object", "Input data for the workflow execution"),
			}, "id"),
		},
		run: func(ctx context.Context, args Args) (any, error) {
			body := map[string]any{}
			if args.Has("data") {
				body["data"] = args["data"]
			}
			return api.Post(ctx, workflowPath(args.String("id"), "execute"), body)
		},
	}
}

func withQuery(path string, q url.Values) string {
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}
