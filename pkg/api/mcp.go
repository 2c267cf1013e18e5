package api

import (
	"log/slog"
	"strings"

	"github.com/hazyhaar/annomi/pkg/kit"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// RegisterMCPTools registers the normalize_text, topic_distribution and
// split_summary tools on the server.
func RegisterMCPTools(srv *server.MCPServer, s *Service, logger *slog.Logger) {
	mws := func(name string) []kit.Middleware {
		return []kit.Middleware{kit.RequestID(), kit.Logging(logger, name)}
	}

	kit.RegisterMCPTool(srv, mcp.NewTool("normalize_text",
		mcp.WithDescription("Normalize utterances the way the processed dataset does: expand contractions, strip hyphens and unintelligible markers, collapse spaces, case-fold."),
		mcp.WithString("text", mcp.Required(), mcp.Description("Utterance to normalize. Separate several with newlines.")),
	), normalizeEndpoint(s), func(req mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		text, _ := req.GetArguments()["text"].(string)
		return &kit.MCPDecodeResult{Request: &normalizeReq{Texts: strings.Split(text, "\n")}}, nil
	}, mws("normalize_text")...)

	kit.RegisterMCPTool(srv, mcp.NewTool("topic_distribution",
		mcp.WithDescription("List the topics of the loaded dataset with their record counts, most frequent first."),
		mcp.WithNumber("limit", mcp.Description("Maximum number of topics to return (0 for all)")),
	), topicsEndpoint(s), func(req mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		limit, _ := req.GetArguments()["limit"].(float64)
		return &kit.MCPDecodeResult{Request: &topicsReq{Limit: int(limit)}}, nil
	}, mws("topic_distribution")...)

	kit.RegisterMCPTool(srv, mcp.NewTool("split_summary",
		mcp.WithDescription("Run a stratified train/test split on one target column and report sizes, classes and per-group counts."),
		mcp.WithString("target", mcp.Required(), mcp.Description("Target column, e.g. client_talk_type")),
		mcp.WithNumber("test_size", mcp.Description("Fraction of each group sent to test (default 0.2)")),
		mcp.WithNumber("seed", mcp.Description("Shuffle seed for a reproducible split")),
		mcp.WithBoolean("multi_topic_fallback", mcp.Description("Keep singleton multi-topic groups in train (default true)")),
	), splitEndpoint(s), decodeSplitArgs, mws("split_summary")...)
}

func decodeSplitArgs(req mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
	args := req.GetArguments()
	r := &splitReq{}
	r.Target, _ = args["target"].(string)
	r.TestSize, _ = args["test_size"].(float64)
	if v, ok := args["seed"].(float64); ok && v >= 0 {
		seed := uint64(v)
		r.Seed = &seed
	}
	if v, ok := args["multi_topic_fallback"].(bool); ok {
		r.Fallback = &v
	}
	return &kit.MCPDecodeResult{Request: r}, nil
}
