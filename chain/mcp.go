// CLAUDE:SUMMARY MCP tool surface: quiz_start, quiz_status, quiz_runs over the run registry.
package chain

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hazyhaar/quizchain/kit"
)

// RegisterMCP registers the chain tools on an MCP server. base is the
// process-lifetime context chains are bound to; started chains outlive the
// tool call that launched them. id is the identity forwarded with every
// submission.
func (r *Runner) RegisterMCP(srv *mcp.Server, base context.Context, id Identity) {
	r.registerStartTool(srv, base, id)
	r.registerStatusTool(srv)
	r.registerRunsTool(srv)
}

func inputSchema(properties map[string]any, required []string) map[string]any {
	s := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

// --- quiz_start ---

type startReq struct {
	URL string `json:"url"`
}

func (r *Runner) registerStartTool(srv *mcp.Server, base context.Context, id Identity) {
	tool := &mcp.Tool{
		Name:        "quiz_start",
		Description: "Start a quiz chain at the given URL. Returns the run ID and deadline; progress is queried with quiz_status.",
		InputSchema: inputSchema(map[string]any{
			"url": map[string]any{"type": "string", "description": "Initial quiz page URL"},
		}, []string{"url"}),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		q := req.(*startReq)
		if q.URL == "" {
			return nil, fmt.Errorf("url is required")
		}
		runID, deadline := r.Start(kit.WithTransport(base, "mcp"), q.URL, id)
		return map[string]any{
			"run_id":   runID,
			"deadline": deadline.Format(time.RFC3339),
		}, nil
	}

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var q startReq
		if err := json.Unmarshal(req.Params.Arguments, &q); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &q}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

// --- quiz_status ---

type statusReq struct {
	RunID string `json:"run_id"`
}

func (r *Runner) registerStatusTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "quiz_status",
		Description: "Report the state of one quiz chain run: depth, current URL, and terminal outcome.",
		InputSchema: inputSchema(map[string]any{
			"run_id": map[string]any{"type": "string", "description": "Run ID returned by quiz_start"},
		}, []string{"run_id"}),
	}

	endpoint := func(_ context.Context, req any) (any, error) {
		q := req.(*statusReq)
		st, ok := r.registry.Get(q.RunID)
		if !ok {
			return nil, fmt.Errorf("unknown run %q", q.RunID)
		}
		return st, nil
	}

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var q statusReq
		if err := json.Unmarshal(req.Params.Arguments, &q); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &q}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

// --- quiz_runs ---

func (r *Runner) registerRunsTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "quiz_runs",
		Description: "List tracked quiz chain runs, newest first.",
		InputSchema: inputSchema(map[string]any{}, nil),
	}

	endpoint := func(_ context.Context, _ any) (any, error) {
		return map[string]any{"runs": r.registry.List()}, nil
	}

	decode := func(_ *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		return &kit.MCPDecodeResult{Request: nil}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}
