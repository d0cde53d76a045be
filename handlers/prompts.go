// ABOUTME: MCP prompt handlers for reusable CRM workflow templates
// ABOUTME: Provides standardized prompts for contact, deal, follow-up, and pipeline reviews
package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/crmdash/models"
	"github.com/harperreed/crmdash/services"
	"github.com/harperreed/crmdash/viz"
)

type PromptHandlers struct {
	svc *services.Services
	now func() time.Time
}

func NewPromptHandlers(svc *services.Services) *PromptHandlers {
	return &PromptHandlers{svc: svc, now: time.Now}
}

func registerPrompts(server *mcp.Server, h *PromptHandlers) {
	server.AddPrompt(&mcp.Prompt{
		Name:        "contact-summary",
		Description: "Summarize a contact with their deals and activity history",
		Arguments: []*mcp.PromptArgument{
			{Name: "contact_id", Description: "Contact ID", Required: true},
		},
	}, h.GetPrompt)

	server.AddPrompt(&mcp.Prompt{
		Name:        "deal-analysis",
		Description: "Analyze a deal's health and suggest next steps",
		Arguments: []*mcp.PromptArgument{
			{Name: "deal_id", Description: "Deal ID", Required: true},
		},
	}, h.GetPrompt)

	server.AddPrompt(&mcp.Prompt{
		Name:        "follow-up-suggestions",
		Description: "Contacts that have gone quiet and may need outreach",
		Arguments: []*mcp.PromptArgument{
			{Name: "days_since_contact", Description: "Days without contact (default 30)"},
		},
	}, h.GetPrompt)

	server.AddPrompt(&mcp.Prompt{
		Name:        "pipeline-review",
		Description: "Review the whole deal pipeline stage by stage",
	}, h.GetPrompt)
}

// GetPrompt generates the prompt message based on the template
func (h *PromptHandlers) GetPrompt(ctx context.Context, request *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	name := request.Params.Name
	arguments := request.Params.Arguments
	switch name {
	case "contact-summary":
		return h.getContactSummaryPrompt(ctx, arguments)
	case "deal-analysis":
		return h.getDealAnalysisPrompt(ctx, arguments)
	case "follow-up-suggestions":
		return h.getFollowUpSuggestionsPrompt(ctx, arguments)
	case "pipeline-review":
		return h.getPipelineReviewPrompt(ctx)
	default:
		return nil, fmt.Errorf("unknown prompt: %s", name)
	}
}

func userPrompt(description, text string) *mcp.GetPromptResult {
	return &mcp.GetPromptResult{
		Description: description,
		Messages: []*mcp.PromptMessage{
			{
				Role:    "user",
				Content: &mcp.TextContent{Text: text},
			},
		},
	}
}

func (h *PromptHandlers) getContactSummaryPrompt(ctx context.Context, args map[string]string) (*mcp.GetPromptResult, error) {
	contactID, ok := args["contact_id"]
	if !ok || contactID == "" {
		return nil, fmt.Errorf("contact_id is required")
	}

	contact, err := h.svc.Contacts.GetByID(ctx, contactID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch contact: %w", err)
	}
	snap, err := h.svc.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	// Build the prompt
	var promptText strings.Builder
	promptText.WriteString("Please provide a comprehensive summary of this contact:\n\n")
	promptText.WriteString(fmt.Sprintf("Name: %s\n", contact.Name))
	if contact.Email != "" {
		promptText.WriteString(fmt.Sprintf("Email: %s\n", contact.Email))
	}
	if contact.Phone != "" {
		promptText.WriteString(fmt.Sprintf("Phone: %s\n", contact.Phone))
	}
	if contact.Company != "" {
		promptText.WriteString(fmt.Sprintf("Company: %s\n", contact.Company))
	}
	if contact.Position != "" {
		promptText.WriteString(fmt.Sprintf("Position: %s\n", contact.Position))
	}
	promptText.WriteString(fmt.Sprintf("Status: %s\n", contact.Status.Label()))
	if contact.LastContact != nil {
		promptText.WriteString(fmt.Sprintf("Last Contacted: %s\n", contact.LastContact.Format(models.DateLayout)))
	}

	promptText.WriteString("\nDeals:\n")
	deals := 0
	for _, d := range snap.Deals {
		if d.ContactID == contact.ID {
			promptText.WriteString(fmt.Sprintf("- %s: %s, %s, %d%%\n", d.Title, viz.FormatMoney(d.Value), d.Stage.Label(), d.Probability))
			deals++
		}
	}
	if deals == 0 {
		promptText.WriteString("- none\n")
	}

	promptText.WriteString("\nActivity history:\n")
	activities := 0
	for _, a := range snap.Activities {
		if a.ContactID == contact.ID {
			promptText.WriteString(fmt.Sprintf("- [%s] %s: %s (%d min)\n", a.Date.Format(models.DateLayout), a.Type, a.Description, a.Duration))
			activities++
		}
	}
	if activities == 0 {
		promptText.WriteString("- none\n")
	}

	promptText.WriteString("\nPlease include:")
	promptText.WriteString("\n1. Overview of the relationship and where it stands")
	promptText.WriteString("\n2. Recommendations for next steps or follow-up actions")
	promptText.WriteString("\n3. Any patterns or insights from their interaction history")

	return userPrompt(fmt.Sprintf("Summary for contact: %s", contact.Name), promptText.String()), nil
}

func (h *PromptHandlers) getDealAnalysisPrompt(ctx context.Context, args map[string]string) (*mcp.GetPromptResult, error) {
	dealID, ok := args["deal_id"]
	if !ok || dealID == "" {
		return nil, fmt.Errorf("deal_id is required")
	}

	deal, err := h.svc.Deals.GetByID(ctx, dealID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch deal: %w", err)
	}
	snap, err := h.svc.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	var promptText strings.Builder
	promptText.WriteString("Please analyze this deal:\n\n")
	promptText.WriteString(fmt.Sprintf("Title: %s\n", deal.Title))
	promptText.WriteString(fmt.Sprintf("Value: %s\n", viz.FormatMoney(deal.Value)))
	promptText.WriteString(fmt.Sprintf("Stage: %s\n", deal.Stage.Label()))
	promptText.WriteString(fmt.Sprintf("Probability: %d%%\n", deal.Probability))
	promptText.WriteString(fmt.Sprintf("Contact: %s\n", contactName(snap, deal.ContactID)))
	if !deal.ExpectedClose.IsZero() {
		promptText.WriteString(fmt.Sprintf("Expected Close: %s\n", deal.ExpectedClose))
	}

	promptText.WriteString("\nRelated activities:\n")
	count := 0
	for _, a := range snap.Activities {
		if a.DealID == deal.ID {
			promptText.WriteString(fmt.Sprintf("- [%s] %s: %s\n", a.Date.Format(models.DateLayout), a.Type, a.Description))
			count++
		}
	}
	if count == 0 {
		promptText.WriteString("- none\n")
	}

	promptText.WriteString("\nPlease provide:")
	promptText.WriteString("\n1. Assessment of deal health and likelihood to close")
	promptText.WriteString("\n2. Risks or blockers to watch")
	promptText.WriteString("\n3. Recommended actions to move the deal to the next stage")

	return userPrompt(fmt.Sprintf("Analysis for deal: %s", deal.Title), promptText.String()), nil
}

func (h *PromptHandlers) getFollowUpSuggestionsPrompt(ctx context.Context, args map[string]string) (*mcp.GetPromptResult, error) {
	// Default to 30 days
	daysSince := 30
	if d, ok := args["days_since_contact"]; ok && d != "" {
		n, err := strconv.Atoi(d)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("days_since_contact must be a non-negative integer")
		}
		daysSince = n
	}

	contacts, err := h.svc.Contacts.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch contacts: %w", err)
	}

	cutoff := h.now().AddDate(0, 0, -daysSince)

	var promptText strings.Builder
	promptText.WriteString(fmt.Sprintf("Contacts that may need follow-up (no contact in %d+ days):\n\n", daysSince))

	count := 0
	for _, contact := range contacts {
		switch {
		case contact.LastContact == nil:
			promptText.WriteString(fmt.Sprintf("- %s (never contacted)\n", contact.Name))
			count++
		case contact.LastContact.Before(cutoff):
			promptText.WriteString(fmt.Sprintf("- %s (last contacted %s)\n", contact.Name, contact.LastContact.Format(models.DateLayout)))
			count++
		}
	}

	if count == 0 {
		promptText.WriteString("All contacts have been contacted recently.\n")
	}

	promptText.WriteString("\nPlease:")
	promptText.WriteString("\n1. Prioritize which contacts to reach out to first")
	promptText.WriteString("\n2. Suggest personalized outreach approaches for each")
	promptText.WriteString("\n3. Identify any patterns in follow-up gaps")

	return userPrompt("Follow-up suggestions for contacts", promptText.String()), nil
}

func (h *PromptHandlers) getPipelineReviewPrompt(ctx context.Context) (*mcp.GetPromptResult, error) {
	snap, err := h.svc.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	stats := viz.GenerateDashboardStats(snap.Contacts, snap.Deals, snap.Activities)
	names := viz.ContactNames(snap.Contacts)

	var promptText strings.Builder
	promptText.WriteString("Please review the sales pipeline:\n\n")
	promptText.WriteString(fmt.Sprintf("Total pipeline value: %s\n", viz.FormatMoney(stats.Metrics.PipelineValue)))
	promptText.WriteString(fmt.Sprintf("Active pipeline value: %s\n", viz.FormatMoney(viz.ActivePipelineValue(snap.Deals))))
	promptText.WriteString(fmt.Sprintf("Active deals: %d\n", stats.Metrics.ActiveDeals))
	promptText.WriteString(fmt.Sprintf("Conversion rate: %d%%\n", stats.Metrics.ConversionRate))

	for _, stage := range stats.Stages {
		promptText.WriteString(fmt.Sprintf("\n%s (%d deals, %s):\n", stage.Label(), stage.Count, viz.FormatMoney(stage.Value)))
		for _, d := range stage.Deals {
			promptText.WriteString(fmt.Sprintf("- %s for %s: %s, %d%%\n",
				d.Title, viz.ContactName(names, d.ContactID), viz.FormatMoney(d.Value), d.Probability))
		}
	}

	promptText.WriteString("\nPlease:")
	promptText.WriteString("\n1. Identify bottlenecks between stages")
	promptText.WriteString("\n2. Flag deals that look stalled or at risk")
	promptText.WriteString("\n3. Forecast likely revenue from the active pipeline")

	return userPrompt("Pipeline review", promptText.String()), nil
}
