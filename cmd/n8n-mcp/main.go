// Command n8n-mcp serves the n8n REST API as MCP tools.
package main

func main() {
	Execute()
}
