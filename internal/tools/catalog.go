package tools

import (
	"fmt"
	"strings"
)

// Catalog is the static, ordered set of tools.
type Catalog struct {
	tools  []Tool
	byName map[string]Tool
}

// NewCatalog builds the n8n tool catalog. hostURL roots derived webhook URLs.
func NewCatalog(api API, hooks WebhookCaller, hostURL string) *Catalog {
	hostURL = strings.TrimRight(hostURL, "/")
	return newCatalog(
		listWorkflows(api),
		getWorkflow(api),
		listWorkflowWebhooks(api, hostURL),
		callWebhookGet(hooks),
		callWebhookPost(hooks),
		listExecutions(api),
		getExecution(api),
		createWorkflow(api),
		updateWorkflow(api),
		deleteWorkflow(api),
		activateWorkflow(api),
		deactivateWorkflow(api),
		getWorkflowTags(api),
		executeWorkflow(api),
	)
}

func newCatalog(tools ...Tool) *Catalog {
	c := &Catalog{tools: tools, byName: make(map[string]Tool, len(tools))}
	for _, t := range tools {
		name := t.Descriptor().Name
		if _, dup := c.byName[name]; dup {
			panic(fmt.Sprintf("tools: duplicate tool name %q", name))
		}
		c.byName[name] = t
	}
	return c
}

// List returns the descriptors in declaration order.
func (c *Catalog) List() []Descriptor {
	out := make([]Descriptor, len(c.tools))
	for i, t := range c.tools {
		out[i] = t.Descriptor()
	}
	return out
}

// Lookup finds a tool by name.
func (c *Catalog) Lookup(name string) (Tool, bool) {
	t, ok := c.byName[name]
	return t, ok
}
