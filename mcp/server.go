// Package mcp provides the MCP (Model Context Protocol) server for Rigforge.
package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/rigforge/rigforge/internal/graph"
	"github.com/rigforge/rigforge/internal/session"
	"github.com/rigforge/rigforge/internal/storage"
)

// Server represents the MCP server.
type Server struct {
	storage StorageBackend
	engine  *session.Engine
	server  *mcp.Server
}

// StorageBackend defines the interface for storage backends.
type StorageBackend interface {
	FTSSearch(ctx context.Context, query string, limit int) ([]storage.SearchResult, error)
	GetNode(ctx context.Context, nodeID string) (*graph.Node, error)
	GetRelated(ctx context.Context, nodeID string, kind graph.EdgeKind) ([]storage.RelatedPart, error)
	NodeCount() int
	EdgeCount() int
	Close() error
}

// Tool represents an MCP tool.
type Tool struct {
	Name        string
	Description string
	InputSchema *jsonschema.Schema
}

// Resource represents an MCP resource.
type Resource struct {
	URI         string
	Name        string
	Description string
	MimeType    string
}

// NewServer creates a new MCP server.
func NewServer(storage StorageBackend, engine *session.Engine) *Server {
	s := &Server{
		storage: storage,
		engine:  engine,
	}

	s.server = mcp.NewServer(&mcp.Implementation{
		Name:    "rigforge",
		Version: "0.1.0",
	}, nil)

	return s
}

// ListTools returns all registered tools.
func (s *Server) ListTools() []Tool {
	return []Tool{
		{
			Name:        "rig_search",
			Description: "Search the part graph by free text. Returns ranked parts matching the query.",
			InputSchema: &jsonschema.Schema{
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					"query": {Type: "string", Description: "Search query text"},
					"limit": {Type: "integer", Description: "Maximum number of results"},
				},
				Required: []string{"query"},
			},
		},
		{
			Name:        "rig_compat",
			Description: "List everything compatible with a part, grouped by the rule that proved it.",
			InputSchema: &jsonschema.Schema{
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					"part": {Type: "string", Description: "Part name or ID to inspect"},
				},
				Required: []string{"part"},
			},
		},
		{
			Name:        "rig_start_session",
			Description: "Start a budgeted build selection session. Returns the session ID used by the other rig_ tools.",
			InputSchema: &jsonschema.Schema{
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					"budget":  {Type: "integer", Description: "Total budget in currency units"},
					"purpose": {Type: "string", Description: "Build purpose: gaming, workstation, or general"},
				},
				Required: []string{"budget"},
			},
		},
		{
			Name:        "rig_candidates",
			Description: "Get the ranked, compatibility-filtered candidates for a selection step (1-8).",
			InputSchema: &jsonschema.Schema{
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					"session_id": {Type: "string", Description: "Session ID from rig_start_session"},
					"step":       {Type: "integer", Description: "Selection step, 1 through 8"},
					"top_k":      {Type: "integer", Description: "Maximum candidates to return"},
				},
				Required: []string{"session_id", "step"},
			},
		},
		{
			Name:        "rig_select",
			Description: "Select a component for a step. Steps must be taken in order; the selection fixes constraints for later steps.",
			InputSchema: &jsonschema.Schema{
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					"session_id":   {Type: "string", Description: "Session ID from rig_start_session"},
					"step":         {Type: "integer", Description: "Selection step, 1 through 8"},
					"component_id": {Type: "string", Description: "Component ID to select"},
				},
				Required: []string{"session_id", "step", "component_id"},
			},
		},
		{
			Name:        "rig_summary",
			Description: "Get the session's selections, total spend, remaining budget, and status.",
			InputSchema: &jsonschema.Schema{
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					"session_id": {Type: "string", Description: "Session ID from rig_start_session"},
				},
				Required: []string{"session_id"},
			},
		},
	}
}

// ListResources returns all registered resources.
func (s *Server) ListResources() []Resource {
	return []Resource{
		{
			URI:         "rigforge://overview",
			Name:        "Graph Overview",
			Description: "High-level statistics about the built part graph",
			MimeType:    "text/plain",
		},
		{
			URI:         "rigforge://schema",
			Name:        "Graph Schema",
			Description: "Description of the Rigforge part graph schema",
			MimeType:    "text/plain",
		},
	}
}

// CallTool executes a tool with the given arguments.
func (s *Server) CallTool(ctx context.Context, name string, args map[string]any) (string, error) {
	switch name {
	case "rig_search":
		query, _ := args["query"].(string)
		limit, _ := args["limit"].(float64)
		if limit == 0 {
			limit = 20
		}
		return handleSearch(ctx, s.storage, query, int(limit))
	case "rig_compat":
		part, _ := args["part"].(string)
		return handleCompat(ctx, s.storage, part)
	case "rig_start_session":
		budget, _ := args["budget"].(float64)
		purpose, _ := args["purpose"].(string)
		return handleStartSession(s.engine, int(budget), purpose)
	case "rig_candidates":
		sessionID, _ := args["session_id"].(string)
		step, _ := args["step"].(float64)
		topK, _ := args["top_k"].(float64)
		return handleCandidates(s.engine, sessionID, int(step), int(topK))
	case "rig_select":
		sessionID, _ := args["session_id"].(string)
		step, _ := args["step"].(float64)
		componentID, _ := args["component_id"].(string)
		return handleSelect(s.engine, sessionID, int(step), componentID)
	case "rig_summary":
		sessionID, _ := args["session_id"].(string)
		return handleSummary(s.engine, sessionID)
	default:
		return "", fmt.Errorf("unknown tool: %s", name)
	}
}

// ReadResource reads a resource by URI.
func (s *Server) ReadResource(ctx context.Context, uri string) (string, error) {
	switch uri {
	case "rigforge://overview":
		return getOverview(s.storage), nil
	case "rigforge://schema":
		return getSchema(), nil
	default:
		return "", fmt.Errorf("unknown resource: %s", uri)
	}
}

// Run starts the MCP server with stdio transport.
func (s *Server) Run(ctx context.Context, stdin io.Reader, stdout io.Writer) error {
	if stdin == nil || stdout == nil {
		return fmt.Errorf("stdin and stdout must not be nil")
	}

	reader := bufio.NewReader(stdin)
	encoder := json.NewEncoder(stdout)
	// Note: Do NOT use SetIndent - MCP protocol requires compact JSON (one line per message)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line, err := reader.ReadBytes('\n')
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		// Parse JSON-RPC request
		var req map[string]any
		if err := json.Unmarshal(line, &req); err != nil {
			continue
		}

		// Handle request
		resp := s.handleRequest(ctx, req)
		if err := encoder.Encode(resp); err != nil {
			return err
		}
	}
}

func (s *Server) handleRequest(ctx context.Context, req map[string]any) map[string]any {
	method, _ := req["method"].(string)
	id := req["id"]

	switch method {
	case "initialize":
		return s.handleInitialize(id)
	case "tools/list":
		return s.handleToolsList(id)
	case "tools/call":
		return s.handleToolsCall(ctx, id, req)
	case "resources/list":
		return s.handleResourcesList(id)
	case "resources/read":
		return s.handleResourcesRead(ctx, id, req)
	default:
		return errorResponse(id, -32601, "Method not found: "+method)
	}
}

func (s *Server) handleInitialize(id any) map[string]any {
	return map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"result": map[string]any{
			"protocolVersion": "2024-11-05",
			"serverInfo": map[string]any{
				"name":    "rigforge",
				"version": "0.1.0",
			},
			"capabilities": map[string]any{
				"tools": map[string]any{
					"listChanged": false,
				},
				"resources": map[string]any{
					"listChanged": false,
				},
			},
		},
	}
}

func (s *Server) handleToolsList(id any) map[string]any {
	tools := s.ListTools()
	toolList := make([]map[string]any, len(tools))
	for i, tool := range tools {
		schema, _ := json.Marshal(tool.InputSchema)
		var schemaMap map[string]any
		json.Unmarshal(schema, &schemaMap)

		toolList[i] = map[string]any{
			"name":        tool.Name,
			"description": tool.Description,
			"inputSchema": schemaMap,
		}
	}

	return map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"result": map[string]any{
			"tools": toolList,
		},
	}
}

func (s *Server) handleToolsCall(ctx context.Context, id any, req map[string]any) map[string]any {
	params, _ := req["params"].(map[string]any)
	if params == nil {
		return errorResponse(id, -32602, "Invalid params")
	}

	name, _ := params["name"].(string)
	args, _ := params["arguments"].(map[string]any)

	result, err := s.CallTool(ctx, name, args)
	if err != nil {
		return errorResponse(id, -32000, err.Error())
	}

	return map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"result": map[string]any{
			"content": []map[string]any{
				{
					"type": "text",
					"text": result,
				},
			},
		},
	}
}

func (s *Server) handleResourcesList(id any) map[string]any {
	resources := s.ListResources()
	resourceList := make([]map[string]any, len(resources))
	for i, res := range resources {
		resourceList[i] = map[string]any{
			"uri":         res.URI,
			"name":        res.Name,
			"description": res.Description,
			"mimeType":    res.MimeType,
		}
	}

	return map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"result": map[string]any{
			"resources": resourceList,
		},
	}
}

func (s *Server) handleResourcesRead(ctx context.Context, id any, req map[string]any) map[string]any {
	params, _ := req["params"].(map[string]any)
	if params == nil {
		return errorResponse(id, -32602, "Invalid params")
	}

	uri, _ := params["uri"].(string)

	content, err := s.ReadResource(ctx, uri)
	if err != nil {
		return errorResponse(id, -32000, err.Error())
	}

	return map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"result": map[string]any{
			"contents": []map[string]any{
				{
					"uri":      uri,
					"mimeType": "text/plain",
					"text":     content,
				},
			},
		},
	}
}

// Tool Handlers

func handleSearch(ctx context.Context, storage StorageBackend, query string, limit int) (string, error) {
	if query == "" {
		return "No query provided", nil
	}

	results, err := storage.FTSSearch(ctx, query, limit)
	if err != nil {
		return "", err
	}
	if len(results) == 0 {
		return "No results found", nil
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d results for '%s':\n\n", len(results), query))

	for i, r := range results {
		sb.WriteString(fmt.Sprintf("%d. **%s** (%s)\n", i+1, r.Name, r.Category))
		sb.WriteString(fmt.Sprintf("   ID: %s\n", r.NodeID))
		sb.WriteString(fmt.Sprintf("   Price: %d\n", r.Price))
		sb.WriteString(fmt.Sprintf("   Score: %.3f\n\n", r.Score))
	}

	sb.WriteString("Next: Use `rig_compat` on a specific part for its compatibility set.")

	return sb.String(), nil
}

// resolvePartToNodeID finds a node ID for a loose part reference: direct
// ID lookup first, then FTS with an exact-name preference.
func resolvePartToNodeID(ctx context.Context, storage StorageBackend, part string) (string, error) {
	if node, err := storage.GetNode(ctx, part); err == nil && node != nil {
		return node.ID, nil
	}

	results, err := storage.FTSSearch(ctx, part, 10)
	if err != nil {
		return "", err
	}

	for _, result := range results {
		if result.Name == part {
			return result.NodeID, nil
		}
	}

	if len(results) > 0 {
		return results[0].NodeID, nil
	}

	return "", fmt.Errorf("part '%s' not found", part)
}

func handleCompat(ctx context.Context, storage StorageBackend, part string) (string, error) {
	if part == "" {
		return "No part provided", nil
	}

	nodeID, err := resolvePartToNodeID(ctx, storage, part)
	if err != nil {
		return fmt.Sprintf("Part '%s' not found in the graph", part), nil
	}

	node, err := storage.GetNode(ctx, nodeID)
	if err != nil || node == nil {
		return fmt.Sprintf("Part '%s' not found in the graph", part), nil
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Compatibility for: **%s** (%s, price %d)\n\n", node.Name, node.Category, node.Price))

	compatible, _ := storage.GetRelated(ctx, nodeID, graph.EdgeCompatibleWith)
	if len(compatible) > 0 {
		byRule := make(map[string][]storageRelated)
		for _, rel := range compatible {
			byRule[rel.Rule] = append(byRule[rel.Rule], storageRelated{rel.Node.Name, string(rel.Node.Category), rel.Node.Price})
		}
		rules := make([]string, 0, len(byRule))
		for rule := range byRule {
			rules = append(rules, rule)
		}
		sort.Strings(rules)

		for _, rule := range rules {
			rels := byRule[rule]
			sb.WriteString(fmt.Sprintf("## %s (%d)\n", rule, len(rels)))
			for _, rel := range rels {
				sb.WriteString(fmt.Sprintf("- %s (%s, %d)\n", rel.name, rel.category, rel.price))
			}
			sb.WriteString("\n")
		}
	} else {
		sb.WriteString("No compatible parts recorded.\n\n")
	}

	synergy, _ := storage.GetRelated(ctx, nodeID, graph.EdgeSynergyWith)
	if len(synergy) > 0 {
		sb.WriteString(fmt.Sprintf("## Synergy (%d)\n", len(synergy)))
		for _, rel := range synergy {
			sb.WriteString(fmt.Sprintf("- %s (score %.1f)\n", rel.Node.Name, rel.Weight))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("Next: Use `rig_start_session` to build around this part within a budget.")

	return sb.String(), nil
}

type storageRelated struct {
	name     string
	category string
	price    int
}

func handleStartSession(engine *session.Engine, budget int, purpose string) (string, error) {
	if engine == nil {
		return "", fmt.Errorf("selection engine not available")
	}

	s, err := engine.StartSession(budget, session.ParsePurpose(purpose))
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString("Session started.\n\n")
	sb.WriteString(fmt.Sprintf("**Session ID:** %s\n", s.ID))
	sb.WriteString(fmt.Sprintf("**Budget:** %d\n", s.Budget))
	sb.WriteString(fmt.Sprintf("**Purpose:** %s\n\n", s.Purpose))
	sb.WriteString("Steps, in order:\n")
	for step := 1; step <= session.TotalSteps; step++ {
		category, _ := session.StepCategory(step)
		sb.WriteString(fmt.Sprintf("%d. %s\n", step, category))
	}
	sb.WriteString("\nNext: Use `rig_candidates` with step 1 to pick the CPU.")

	return sb.String(), nil
}

func handleCandidates(engine *session.Engine, sessionID string, step, topK int) (string, error) {
	if engine == nil {
		return "", fmt.Errorf("selection engine not available")
	}

	candidates, err := engine.GetStepCandidates(sessionID, step, topK)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Candidates for step %d (%s)\n\n", candidates.Step, candidates.Category))
	sb.WriteString(fmt.Sprintf("Remaining budget: %d, step budget: %d\n\n",
		candidates.Context.RemainingBudget, candidates.Context.StepBudget))

	if candidates.RelaxationNeeded {
		sb.WriteString("**No candidate fits the current constraints.**\n\n")
		writeConstraintContext(&sb, candidates.Context)
		sb.WriteString("\nRelax the budget or earlier selections and retry.")
		return sb.String(), nil
	}

	for _, c := range candidates.Items {
		sb.WriteString(fmt.Sprintf("%d. **%s** (price %d, score %.3f)\n", c.Rank, c.Name, c.Price, c.Score))
		sb.WriteString(fmt.Sprintf("   ID: %s\n", c.ComponentID))
	}
	sb.WriteString("\nNext: Use `rig_select` with the chosen component ID.")

	return sb.String(), nil
}

func writeConstraintContext(sb *strings.Builder, ctx session.CandidateContext) {
	if ctx.Socket != "" {
		sb.WriteString(fmt.Sprintf("- Required socket: %s\n", ctx.Socket))
	}
	if ctx.MemoryType != "" {
		sb.WriteString(fmt.Sprintf("- Required memory type: %s\n", ctx.MemoryType))
	}
	if ctx.FormFactor != "" {
		sb.WriteString(fmt.Sprintf("- Required form factor: %s\n", ctx.FormFactor))
	}
	if ctx.MinWattage > 0 {
		sb.WriteString(fmt.Sprintf("- Required wattage: %dW or more\n", ctx.MinWattage))
	}
	if ctx.GPULengthMM > 0 {
		sb.WriteString(fmt.Sprintf("- Required GPU clearance: %dmm or more\n", ctx.GPULengthMM))
	}
	if ctx.MaxCoolerMM > 0 {
		sb.WriteString(fmt.Sprintf("- Cooler height limit: %dmm\n", ctx.MaxCoolerMM))
	}
}

func handleSelect(engine *session.Engine, sessionID string, step int, componentID string) (string, error) {
	if engine == nil {
		return "", fmt.Errorf("selection engine not available")
	}

	if err := engine.SelectComponent(sessionID, step, componentID); err != nil {
		return "", err
	}

	if step == session.TotalSteps {
		return fmt.Sprintf("Selected %s for step %d. The build is complete; use `rig_summary` for the full picture.",
			componentID, step), nil
	}
	return fmt.Sprintf("Selected %s for step %d. Next: `rig_candidates` with step %d.",
		componentID, step, step+1), nil
}

func handleSummary(engine *session.Engine, sessionID string) (string, error) {
	if engine == nil {
		return "", fmt.Errorf("selection engine not available")
	}

	summary, err := engine.GetSummary(sessionID)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Build summary (%s)\n\n", summary.Status))
	sb.WriteString(fmt.Sprintf("**Budget:** %d\n", summary.Budget))
	sb.WriteString(fmt.Sprintf("**Purpose:** %s\n\n", summary.Purpose))

	if len(summary.Selections) == 0 {
		sb.WriteString("No components selected yet.\n")
	} else {
		for _, sel := range summary.Selections {
			sb.WriteString(fmt.Sprintf("%d. %s: **%s** (%d)\n", sel.Step, sel.Category, sel.Name, sel.Price))
		}
		sb.WriteString("\n")
	}

	sb.WriteString(fmt.Sprintf("**Total:** %d\n", summary.TotalPrice))
	sb.WriteString(fmt.Sprintf("**Remaining:** %d\n", summary.RemainingBudget))

	return sb.String(), nil
}

// Resource Handlers

func getOverview(storage StorageBackend) string {
	var sb strings.Builder
	sb.WriteString("# Rigforge Part Graph Overview\n\n")
	sb.WriteString(fmt.Sprintf("**Nodes:** %d\n", storage.NodeCount()))
	sb.WriteString(fmt.Sprintf("**Edges:** %d\n", storage.EdgeCount()))
	sb.WriteString("\n## Node Types\n\n")
	sb.WriteString("- Component: A purchasable PC part\n")
	sb.WriteString("- Category: One of the eight part categories\n")
	sb.WriteString("- Attribute: A deduplicated spec value (socket, memory type, ...)\n")
	sb.WriteString("- Purpose: A build purpose with minimum requirements\n")
	sb.WriteString("\n## Edge Types\n\n")
	sb.WriteString("- BELONGS_TO: Component to its category\n")
	sb.WriteString("- HAS_ATTRIBUTE: Component to a spec value\n")
	sb.WriteString("- COMPATIBLE_WITH: Proven compatible pair, tagged with the rule\n")
	sb.WriteString("- SYNERGY_WITH: Parts that pair well (co-occurrence, tier match)\n")
	sb.WriteString("- SUITABLE_FOR: GPU meeting a purpose's minimum requirement\n")

	return sb.String()
}

func getSchema() string {
	var sb strings.Builder
	sb.WriteString("# Rigforge Part Graph Schema\n\n")
	sb.WriteString("## Node Kinds\n\n")
	sb.WriteString("| Kind | Description | Key Properties |\n")
	sb.WriteString("|------|-------------|----------------|\n")
	sb.WriteString("| `component` | Purchasable part | name, category, price, tier, specs |\n")
	sb.WriteString("| `category` | Part category | name |\n")
	sb.WriteString("| `attribute` | Spec value | key, value |\n")
	sb.WriteString("| `purpose` | Build purpose | name, minimum GPU |\n")
	sb.WriteString("\n## Edge Kinds\n\n")
	sb.WriteString("| Kind | Source → Target | Properties |\n")
	sb.WriteString("|------|-----------------|------------|\n")
	sb.WriteString("| `belongs_to` | Component → Category | - |\n")
	sb.WriteString("| `has_attribute` | Component → Attribute | - |\n")
	sb.WriteString("| `compatible_with` | Component → Component | rule |\n")
	sb.WriteString("| `synergy_with` | Component → Component | score |\n")
	sb.WriteString("| `suitable_for` | Component → Purpose | score |\n")
	sb.WriteString("\n## Compatibility Rules\n\n")
	sb.WriteString("| Rule | Pair | Check |\n")
	sb.WriteString("|------|------|-------|\n")
	sb.WriteString("| `socket` | CPU → Motherboard | exact socket match |\n")
	sb.WriteString("| `memory_type` | Memory → Motherboard | exact memory type match |\n")
	sb.WriteString("| `gpu_length` | GPU → Case | case clearance covers card length |\n")
	sb.WriteString("| `form_factor` | Motherboard → Case | case lists the board's form factor |\n")
	sb.WriteString("| `psu_capacity` | GPU → PSU | wattage covers TDP plus headroom |\n")
	sb.WriteString("| `cooler_height` | Cooler → Case | case clearance covers tower height |\n")

	return sb.String()
}

// Helper functions

func errorResponse(id any, code int, message string) map[string]any {
	return map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"error": map[string]any{
			"code":    code,
			"message": message,
		},
	}
}
