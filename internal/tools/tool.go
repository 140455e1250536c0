// Package tools implements the read-only AWS query tools and the filesystem
// backend tools exposed to the deep agent. Every tool formats a human-readable
// text report and never lets an error escape its own boundary: failures are
// caught and returned as an error string so the agent can read them.
package tools

import (
	"context"
	"fmt"
	"sort"

	"github.com/opsgrade/mlcost/internal/aws"
	"github.com/opsgrade/mlcost/internal/tavily"
)

// RunFunc executes a tool call with already-decoded arguments.
type RunFunc func(ctx context.Context, args map[string]any) string

// Tool is one callable function offered to the model.
type Tool struct {
	Name        string
	Description string
	// InputSchema is a JSON-schema object ({"type":"object", ...}) consumed
	// by both provider adapters.
	InputSchema map[string]any
	Run         RunFunc
}

// Registry holds the agent's tool set in a stable order.
type Registry struct {
	tools  []Tool
	byName map[string]Tool
}

// NewRegistry builds a registry from the given tools. Duplicate names are an
// error so a misconfigured tool set fails at construction, not mid-query.
func NewRegistry(tools []Tool) (*Registry, error) {
	byName := make(map[string]Tool, len(tools))
	for _, t := range tools {
		if _, ok := byName[t.Name]; ok {
			return nil, fmt.Errorf("duplicate tool name: %s", t.Name)
		}
		byName[t.Name] = t
	}
	return &Registry{tools: tools, byName: byName}, nil
}

// All returns the tools in registration order.
func (r *Registry) All() []Tool {
	return r.tools
}

// Names returns the sorted tool names.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Execute runs the named tool. Unknown tool names return an error string like
// any other tool failure, so the model can correct itself on the next turn.
func (r *Registry) Execute(ctx context.Context, name string, args map[string]any) string {
	t, ok := r.byName[name]
	if !ok {
		return fmt.Sprintf("Error: unknown tool '%s'", name)
	}
	return t.Run(ctx, args)
}

// Toolset builds the concrete tool functions around the shared AWS clients,
// the search client and the filesystem root.
type Toolset struct {
	clients *aws.Clients
	search  *tavily.Client
	rootDir string
	debug   bool
}

// NewToolset wires the tool dependencies together.
func NewToolset(clients *aws.Clients, search *tavily.Client, rootDir string, debug bool) *Toolset {
	return &Toolset{
		clients: clients,
		search:  search,
		rootDir: rootDir,
		debug:   debug,
	}
}

// All returns every tool in the set, in the order the agent advertises them.
func (ts *Toolset) All() []Tool {
	tools := []Tool{ts.InternetSearch()}
	tools = append(tools,
		ts.ListSageMakerTrainingJobs(),
		ts.GetTrainingJobDetails(),
		ts.ListSageMakerEndpoints(),
		ts.GetEndpointDetails(),
		ts.AnalyzeBedrockUsage(),
		ts.GetMLCostRecommendations(),
		ts.AnalyzeMLDataStorage(),
		ts.ListCloudWatchDashboards(),
		ts.GetDashboardSummary(),
		ts.ListLogGroups(),
		ts.FetchCloudWatchLogsForService(),
		ts.AnalyzeLogGroup(),
		ts.GetCloudWatchAlarmsForService(),
	)
	tools = append(tools, ts.FilesystemTools()...)
	return tools
}

// accountClients resolves the optional cross-account parameters every AWS
// tool accepts.
func (ts *Toolset) accountClients(ctx context.Context, args map[string]any) (*aws.Clients, string, error) {
	accountID := stringArg(args, "account_id", "")
	roleName := stringArg(args, "role_name", "")

	clients, err := ts.clients.ForAccount(ctx, accountID, roleName)
	if err != nil {
		return nil, "", err
	}
	return clients, aws.AccountContext(accountID), nil
}

// objectSchema builds the JSON schema for a tool's parameters.
func objectSchema(properties map[string]any, required ...string) map[string]any {
	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func prop(typ, description string) map[string]any {
	return map[string]any{"type": typ, "description": description}
}

// crossAccountProps are the optional parameters shared by every AWS tool.
func crossAccountProps(extra map[string]any) map[string]any {
	props := map[string]any{
		"account_id": prop("string", "Target AWS account ID for cross-account access (optional)"),
		"role_name":  prop("string", "IAM role name to assume in target account (optional)"),
	}
	for k, v := range extra {
		props[k] = v
	}
	return props
}

// Argument decoding helpers. Tool-call arguments arrive as JSON-decoded
// map[string]any, so numbers may be float64 regardless of the schema type.

func stringArg(args map[string]any, key, fallback string) string {
	if v, ok := args[key]; ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return fallback
}

func intArg(args map[string]any, key string, fallback int) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case int64:
		return int(v)
	}
	return fallback
}

func boolArg(args map[string]any, key string, fallback bool) bool {
	if v, ok := args[key].(bool); ok {
		return v
	}
	return fallback
}
