// ABOUTME: Dashboard metrics MCP tool
// ABOUTME: Loads all three collections in parallel and reports the dashboard figures
package handlers

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/crmdash/services"
	"github.com/harperreed/crmdash/viz"
)

type DashboardHandlers struct {
	svc *services.Services
}

func NewDashboardHandlers(svc *services.Services) *DashboardHandlers {
	return &DashboardHandlers{svc: svc}
}

type DashboardMetricsInput struct{}

type StageOutput struct {
	Stage string  `json:"stage"`
	Label string  `json:"label"`
	Count int     `json:"count"`
	Value float64 `json:"value"`
}

type RecentActivityOutput struct {
	ActivityOutput
	ContactName string `json:"contact_name"`
}

type DashboardMetricsOutput struct {
	TotalContacts       int                    `json:"total_contacts"`
	TotalDeals          int                    `json:"total_deals"`
	ActiveDeals         int                    `json:"active_deals"`
	ClosedWon           int                    `json:"closed_won"`
	PipelineValue       float64                `json:"pipeline_value"`
	ActivePipelineValue float64                `json:"active_pipeline_value"`
	ConversionRate      int                    `json:"conversion_rate"`
	Stages              []StageOutput          `json:"stages"`
	RecentActivities    []RecentActivityOutput `json:"recent_activities"`
	NeverContacted      []string               `json:"never_contacted"`
}

func (h *DashboardHandlers) DashboardMetrics(ctx context.Context, _ *mcp.CallToolRequest, _ DashboardMetricsInput) (*mcp.CallToolResult, DashboardMetricsOutput, error) {
	snap, err := h.svc.Snapshot(ctx)
	if err != nil {
		return nil, DashboardMetricsOutput{}, err
	}
	return nil, dashboardOutput(snap), nil
}

func dashboardOutput(snap services.Snapshot) DashboardMetricsOutput {
	stats := viz.GenerateDashboardStats(snap.Contacts, snap.Deals, snap.Activities)

	out := DashboardMetricsOutput{
		TotalContacts:       stats.Metrics.TotalContacts,
		TotalDeals:          stats.Metrics.TotalDeals,
		ActiveDeals:         stats.Metrics.ActiveDeals,
		ClosedWon:           stats.Metrics.ClosedWon,
		PipelineValue:       stats.Metrics.PipelineValue,
		ActivePipelineValue: viz.ActivePipelineValue(snap.Deals),
		ConversionRate:      stats.Metrics.ConversionRate,
		Stages:              []StageOutput{},
		RecentActivities:    []RecentActivityOutput{},
		NeverContacted:      []string{},
	}
	for _, s := range stats.Stages {
		out.Stages = append(out.Stages, StageOutput{
			Stage: string(s.Stage),
			Label: s.Label(),
			Count: s.Count,
			Value: s.Value,
		})
	}
	for _, item := range stats.RecentActivity {
		out.RecentActivities = append(out.RecentActivities, RecentActivityOutput{
			ActivityOutput: activityToOutput(item.Activity),
			ContactName:    item.Contact,
		})
	}
	out.NeverContacted = append(out.NeverContacted, stats.StaleContacts...)
	return out
}

func contactName(snap services.Snapshot, id string) string {
	return viz.ContactName(viz.ContactNames(snap.Contacts), id)
}
