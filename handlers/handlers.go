// ABOUTME: MCP server wiring for the CRM tools, resources, and prompts
// ABOUTME: Shared input parsing and the registration used by the mcp command
package handlers

import (
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/crmdash/models"
	"github.com/harperreed/crmdash/services"
)

// NewServer builds an MCP server exposing every CRM tool over svc.
func NewServer(svc *services.Services, version string) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "crmdash",
		Version: version,
	}, nil)
	Register(server, svc)
	return server
}

// Register adds the CRM tools, resources, and prompts to server.
func Register(server *mcp.Server, svc *services.Services) {
	contactHandlers := NewContactHandlers(svc)
	dealHandlers := NewDealHandlers(svc)
	activityHandlers := NewActivityHandlers(svc)
	dashboardHandlers := NewDashboardHandlers(svc)
	queryHandlers := NewQueryHandlers(svc)
	vizHandlers := NewVizHandlers(svc)

	// Contacts
	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_contacts",
		Description: "List contacts, optionally filtered by a search term and status",
	}, contactHandlers.ListContacts)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_contact",
		Description: "Get a single contact by ID",
	}, contactHandlers.GetContact)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "add_contact",
		Description: "Add a new contact to the CRM",
	}, contactHandlers.AddContact)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "update_contact",
		Description: "Update an existing contact's information",
	}, contactHandlers.UpdateContact)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "delete_contact",
		Description: "Delete a contact. Its deals and activities are kept",
	}, contactHandlers.DeleteContact)

	// Deals
	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_deals",
		Description: "List deals, optionally filtered by stage or contact",
	}, dealHandlers.ListDeals)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_deal",
		Description: "Get a single deal by ID",
	}, dealHandlers.GetDeal)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "create_deal",
		Description: "Create a new deal for a contact",
	}, dealHandlers.CreateDeal)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "update_deal",
		Description: "Update an existing deal's information including stage and value",
	}, dealHandlers.UpdateDeal)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "move_deal_stage",
		Description: "Move a deal to another pipeline stage",
	}, dealHandlers.MoveDealStage)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "delete_deal",
		Description: "Delete a deal",
	}, dealHandlers.DeleteDeal)

	// Activities
	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_activities",
		Description: "List activities, optionally filtered by type or contact",
	}, activityHandlers.ListActivities)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "log_activity",
		Description: "Log a call, email, meeting, or note against a contact",
	}, activityHandlers.LogActivity)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "update_activity",
		Description: "Update an existing activity",
	}, activityHandlers.UpdateActivity)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "delete_activity",
		Description: "Delete an activity",
	}, activityHandlers.DeleteActivity)

	// Dashboard and search
	mcp.AddTool(server, &mcp.Tool{
		Name:        "dashboard_metrics",
		Description: "Headline metrics, pipeline overview, and recent activities",
	}, dashboardHandlers.DashboardMetrics)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "query_crm",
		Description: "Universal query tool for filtering contacts, deals, or activities",
	}, queryHandlers.QueryCRM)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "generate_pipeline_graph",
		Description: "Render the deal pipeline as Graphviz DOT",
	}, vizHandlers.GeneratePipelineGraph)

	registerResources(server, NewResourceHandlers(svc))
	registerPrompts(server, NewPromptHandlers(svc))
}

func parseStatus(s string) (models.ContactStatus, error) {
	for _, status := range models.ContactStatuses {
		if string(status) == s {
			return status, nil
		}
	}
	return "", fmt.Errorf("invalid status %q (valid: lead, qualified, customer)", s)
}

func parseStage(s string) (models.Stage, error) {
	var names []string
	for _, stage := range models.DealStages {
		if string(stage) == s {
			return stage, nil
		}
		names = append(names, string(stage))
	}
	return "", fmt.Errorf("invalid stage %q (valid: %s)", s, strings.Join(names, ", "))
}

func parseActivityType(s string) (models.ActivityType, error) {
	for _, t := range models.ActivityTypes {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("invalid type %q (valid: call, email, meeting, note)", s)
}

// parseTimestamp accepts RFC 3339 or YYYY-MM-DD, which is read as midnight UTC.
func parseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(models.DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (use ISO 8601/RFC3339 or YYYY-MM-DD)", s)
	}
	return t, nil
}

func requireFields(missing []string) error {
	if len(missing) == 0 {
		return nil
	}
	return fmt.Errorf("missing required fields: %s", strings.Join(missing, ", "))
}

func rejectInvalid(invalid []string) error {
	if len(invalid) == 0 {
		return nil
	}
	return fmt.Errorf("invalid fields: %s (value must be >= 0, probability 0-100)", strings.Join(invalid, ", "))
}

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339)
}
