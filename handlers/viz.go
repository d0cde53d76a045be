// ABOUTME: GraphViz visualization MCP handler
// ABOUTME: Provides the generate_pipeline_graph tool for agents
package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/crmdash/services"
	"github.com/harperreed/crmdash/viz"
)

type VizHandlers struct {
	svc *services.Services
}

func NewVizHandlers(svc *services.Services) *VizHandlers {
	return &VizHandlers{svc: svc}
}

type GeneratePipelineGraphInput struct{}

type GenerateGraphOutput struct {
	GraphType string `json:"graph_type"`
	DOTSource string `json:"dot_source"`
	NodeCount int    `json:"node_count"`
	EdgeCount int    `json:"edge_count"`
}

func (h *VizHandlers) GeneratePipelineGraph(ctx context.Context, _ *mcp.CallToolRequest, _ GeneratePipelineGraphInput) (*mcp.CallToolResult, GenerateGraphOutput, error) {
	snap, err := h.svc.Snapshot(ctx)
	if err != nil {
		return nil, GenerateGraphOutput{}, err
	}

	dot, err := viz.NewGraphGenerator(snap.Contacts, snap.Deals).GeneratePipelineGraph(ctx)
	if err != nil {
		return nil, GenerateGraphOutput{}, fmt.Errorf("failed to generate graph: %w", err)
	}

	// Count nodes and edges for stats
	nodeCount := strings.Count(dot, "[label=")
	edgeCount := strings.Count(dot, "->")

	return nil, GenerateGraphOutput{
		GraphType: "pipeline",
		DOTSource: dot,
		NodeCount: nodeCount,
		EdgeCount: edgeCount,
	}, nil
}
