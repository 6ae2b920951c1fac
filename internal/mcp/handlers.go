// FitLens - Trait-Aware Clothing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fitlens

package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/tomtom215/fitlens/internal/models"
	"github.com/tomtom215/fitlens/internal/recommend"
)

type toolHandler struct {
	engine Recommender
}

// recommendResult is the tool output.
type recommendResult struct {
	Scorer          string              `json:"scorer"`
	Fallback        bool                `json:"fallback"`
	TotalCandidates int                 `json:"total_candidates"`
	Items           []models.ProductOut `json:"items"`
}

// requestFromArgs maps tool arguments onto an engine request. Traits that
// are not given keep their defaults.
func requestFromArgs(request mcp.CallToolRequest) recommend.Request {
	traits := models.DefaultTraits()
	if v := request.GetString("skin_temperature", ""); v != "" {
		traits.SkinTemperature = v
	}
	if v := request.GetString("skin_depth", ""); v != "" {
		traits.SkinDepth = v
	}
	if v := request.GetString("frame", ""); v != "" {
		traits.Frame = v
	}
	if v := request.GetString("height_bucket", ""); v != "" {
		traits.HeightBucket = v
	}
	if v := request.GetString("shoulders", ""); v != "" {
		traits.Shoulders = v
	}

	req := recommend.Request{
		Profile: recommend.Profile{
			Traits: traits,
			Style:  models.Style(request.GetString("style", "")),
			Size:   strings.TrimSpace(request.GetString("size", "")),
		},
		K: request.GetInt("k", 0),
	}
	if budget := request.GetInt("budget", 0); budget > 0 {
		req.Budget = &budget
	}
	return req
}

func (h *toolHandler) handleRecommendProducts(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	resp, err := h.engine.Recommend(ctx, requestFromArgs(request))
	if err != nil {
		if errors.Is(err, recommend.ErrInvalidRequest) {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("recommendation failed: %v", err)), nil
	}

	out := recommendResult{
		Scorer:          resp.Metadata.Scorer,
		Fallback:        resp.Metadata.Fallback,
		TotalCandidates: resp.TotalCandidates,
		Items:           resp.Items,
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
