package kit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// MCPDecodeResult holds the decoded request and an optional context enrichment.
type MCPDecodeResult struct {
	Request   any
	EnrichCtx func(context.Context) context.Context
}

// MCPDecoder extracts the typed request from the arguments of a tool call.
type MCPDecoder func(mcp.CallToolRequest) (*MCPDecodeResult, error)

// MCPTransport tags the context of every call with the "mcp" transport.
func MCPTransport() Middleware {
	return func(next Endpoint) Endpoint {
		return func(ctx context.Context, request any) (any, error) {
			return next(WithTransport(ctx, "mcp"), request)
		}
	}
}

// RegisterMCPTool registers an Endpoint as an MCP tool on the given server.
// The endpoint runs behind MCPTransport and then mws, outermost first.
// Decode and endpoint errors are returned to the client as tool errors, not
// protocol errors.
func RegisterMCPTool(srv *server.MCPServer, tool mcp.Tool, endpoint Endpoint, decode MCPDecoder, mws ...Middleware) {
	ep := Chain(MCPTransport(), mws...)(endpoint)
	srv.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		decoded, err := decode(req)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
		if decoded.EnrichCtx != nil {
			ctx = decoded.EnrichCtx(ctx)
		}
		return toolResult(ep(ctx, decoded.Request)), nil
	})
}

// toolResult renders an endpoint outcome as JSON text or a tool error.
func toolResult(resp any, err error) *mcp.CallToolResult {
	if err != nil {
		return mcp.NewToolResultError(err.Error())
	}
	data, err := json.Marshal(resp)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("marshal: %v", err))
	}
	return mcp.NewToolResultText(string(data))
}
