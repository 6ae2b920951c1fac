// FitLens - Trait-Aware Clothing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fitlens

// Package mcp exposes the recommendation engine as a Model Context
// Protocol tool server over stdio.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/tomtom215/fitlens/internal/recommend"
)

// ToolRecommendProducts is the name of the recommendation tool.
const ToolRecommendProducts = "recommend_products"

// Recommender is the part of recommend.Engine the tools use.
type Recommender interface {
	Recommend(ctx context.Context, req recommend.Request) (*recommend.Response, error)
}

// NewServer builds the MCP server without starting it.
func NewServer(engine Recommender, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"FitLens Recommendation Server",
		version,
		server.WithLogging(),
	)

	h := &toolHandler{engine: engine}

	s.AddTool(mcp.NewTool(ToolRecommendProducts,
		mcp.WithDescription("Rank catalog clothing products for a person's traits, style, size and budget. Returns products with a score and the reasons they match."),
		mcp.WithString("style", mcp.Description("Outfit category."), mcp.Required(), mcp.Enum("casual", "traditional")),
		mcp.WithString("skin_temperature", mcp.Description("Skin undertone. Defaults to neutral."), mcp.Enum("warm", "cool", "neutral")),
		mcp.WithString("skin_depth", mcp.Description("Skin depth. Defaults to medium."), mcp.Enum("light", "medium", "deep")),
		mcp.WithString("frame", mcp.Description("Body frame. Defaults to regular."), mcp.Enum("slim", "regular", "fuller")),
		mcp.WithString("height_bucket", mcp.Description("Height range. Defaults to avg."), mcp.Enum("short", "avg", "tall")),
		mcp.WithString("shoulders", mcp.Description("Shoulder width. Defaults to average."), mcp.Enum("narrow", "broad", "average")),
		mcp.WithString("size", mcp.Description("Preferred size label, e.g. M.")),
		mcp.WithNumber("budget", mcp.Description("Budget in rupees. Omit or 0 for no budget.")),
		mcp.WithNumber("k", mcp.Description("Number of products to return.")),
	), h.handleRecommendProducts)

	return s
}

// ServeStdio runs the MCP server on stdin/stdout until the client
// disconnects.
func ServeStdio(engine Recommender, version string) error {
	return server.ServeStdio(NewServer(engine, version))
}
