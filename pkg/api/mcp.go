package api

import (
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hazyhaar/fangyan/pkg/dict"
	"github.com/hazyhaar/fangyan/pkg/kit"
	"github.com/hazyhaar/fangyan/pkg/lexicon"
)

// NewMCPServer returns an MCP server exposing the dictionary tools.
func NewMCPServer(reg *dict.Registry, version string, logger *slog.Logger) *server.MCPServer {
	srv := server.NewMCPServer("fangyan", version, server.WithToolCapabilities(false))
	RegisterMCPTools(srv, NewEndpoints(reg, logger))
	return srv
}

// RegisterMCPTools registers the dictionary MCP tools on the server.
func RegisterMCPTools(srv *server.MCPServer, eps *Endpoints) {
	kit.RegisterMCPTool(srv, searchEntriesTool(), eps.Search, decodeSearchEntries)
	kit.RegisterMCPTool(srv, getEntryTool(), eps.GetEntry, decodeGetEntry)
	kit.RegisterMCPTool(srv, listFacetsTool(), eps.Facets, decodeNoArgs)
	kit.RegisterMCPTool(srv, listDatasetsTool(), eps.Datasets, decodeNoArgs)
}

func searchEntriesTool() mcp.Tool {
	return mcp.NewTool("search_entries",
		mcp.WithDescription("Search the dialect dictionary by headword, romanization, IPA or gloss. Results are ranked by relevance and tolerate small romanization typos. An empty query lists the filtered entries in dictionary order."),
		mcp.WithString("query", mcp.Description("Headword, romanization (tone digits optional), IPA or gloss text; empty to browse")),
		mcp.WithString("dialect", mcp.Description("Restrict to one dialect (see list_facets); \"all\" or empty for every dialect")),
		mcp.WithString("pos", mcp.Description("Restrict to one part of speech (see list_facets)")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of results (default 20)")),
	)
}

// defaultMCPLimit keeps tool responses small when the caller gives no limit.
const defaultMCPLimit = 20

func decodeSearchEntries(req mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
	args := req.GetArguments()
	query, _ := args["query"].(string)
	dialect, _ := args["dialect"].(string)
	pos, _ := args["pos"].(string)

	limit := defaultMCPLimit
	if v, ok := args["limit"]; ok {
		n, ok := v.(float64)
		if !ok || n < 0 || n != float64(int(n)) {
			return nil, fmt.Errorf("limit must be a non-negative integer")
		}
		limit = int(n)
	}
	return &kit.MCPDecodeResult{Request: &searchReq{
		Query:   query,
		Filters: lexicon.Filters{Dialect: dialect, POS: pos},
		Limit:   limit,
	}}, nil
}

func getEntryTool() mcp.Tool {
	return mcp.NewTool("get_entry",
		mcp.WithDescription("Fetch one dictionary entry by ID, with pronunciation, senses and examples."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Entry ID as returned by search_entries")),
	)
}

func decodeGetEntry(req mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
	id, _ := req.GetArguments()["id"].(string)
	if id == "" {
		return nil, fmt.Errorf("id is required")
	}
	return &kit.MCPDecodeResult{Request: &entryReq{ID: id}}, nil
}

func listFacetsTool() mcp.Tool {
	return mcp.NewTool("list_facets",
		mcp.WithDescription("List the dialects and parts of speech present in the dictionary, for use as search filters."),
	)
}

func listDatasetsTool() mcp.Tool {
	return mcp.NewTool("list_datasets",
		mcp.WithDescription("List the loaded datasets with source, license and entry count."),
	)
}

func decodeNoArgs(_ mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
	return &kit.MCPDecodeResult{Request: nil}, nil
}
