// ABOUTME: Activity MCP tool handlers
// ABOUTME: Implements list_activities, log_activity, update_activity, and delete_activity tools
package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/crmdash/models"
	"github.com/harperreed/crmdash/pages"
	"github.com/harperreed/crmdash/services"
)

type ActivityHandlers struct {
	activities *services.ActivityService
	contacts   *services.ContactService
	now        func() time.Time
}

func NewActivityHandlers(svc *services.Services) *ActivityHandlers {
	return &ActivityHandlers{activities: svc.Activities, contacts: svc.Contacts, now: time.Now}
}

type ActivityOutput struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	ContactID   string `json:"contact_id"`
	DealID      string `json:"deal_id,omitempty"`
	Description string `json:"description"`
	Date        string `json:"date"`
	Duration    int    `json:"duration"`
}

func activityToOutput(a models.Activity) ActivityOutput {
	return ActivityOutput{
		ID:          a.ID,
		Type:        string(a.Type),
		ContactID:   a.ContactID,
		DealID:      a.DealID,
		Description: a.Description,
		Date:        formatTime(a.Date),
		Duration:    a.Duration,
	}
}

type ListActivitiesInput struct {
	Type      string `json:"type,omitempty" jsonschema:"Filter by type: call, email, meeting, or note"`
	ContactID string `json:"contact_id,omitempty" jsonschema:"Filter by contact ID"`
	DealID    string `json:"deal_id,omitempty" jsonschema:"Filter by deal ID"`
	Limit     int    `json:"limit,omitempty" jsonschema:"Maximum number of results (default 50)"`
}

type ListActivitiesOutput struct {
	Activities []ActivityOutput `json:"activities"`
	Count      int              `json:"count"`
}

func (h *ActivityHandlers) ListActivities(ctx context.Context, _ *mcp.CallToolRequest, input ListActivitiesInput) (*mcp.CallToolResult, ListActivitiesOutput, error) {
	typ := pages.TypeAll
	if input.Type != "" {
		t, err := parseActivityType(input.Type)
		if err != nil {
			return nil, ListActivitiesOutput{}, err
		}
		typ = t
	}
	limit := input.Limit
	if limit <= 0 {
		limit = 50
	}

	activities, err := h.activities.GetAll(ctx)
	if err != nil {
		return nil, ListActivitiesOutput{}, fmt.Errorf("failed to list activities: %w", err)
	}

	result := []ActivityOutput{}
	for _, a := range pages.FilterActivities(activities, typ) {
		if input.ContactID != "" && a.ContactID != input.ContactID {
			continue
		}
		if input.DealID != "" && a.DealID != input.DealID {
			continue
		}
		if len(result) == limit {
			break
		}
		result = append(result, activityToOutput(a))
	}

	return nil, ListActivitiesOutput{Activities: result, Count: len(result)}, nil
}

type LogActivityInput struct {
	Type        string `json:"type,omitempty" jsonschema:"call, email, meeting, or note (default call)"`
	ContactID   string `json:"contact_id" jsonschema:"Contact ID (required)"`
	DealID      string `json:"deal_id,omitempty" jsonschema:"Related deal ID"`
	Description string `json:"description" jsonschema:"What happened (required)"`
	Date        string `json:"date,omitempty" jsonschema:"When it happened (ISO 8601, defaults to now)"`
	Duration    int    `json:"duration,omitempty" jsonschema:"Duration in minutes (default 30)"`
}

func (h *ActivityHandlers) LogActivity(ctx context.Context, _ *mcp.CallToolRequest, input LogActivityInput) (*mcp.CallToolResult, ActivityOutput, error) {
	typ := models.ActivityCall
	if input.Type != "" {
		t, err := parseActivityType(input.Type)
		if err != nil {
			return nil, ActivityOutput{}, err
		}
		typ = t
	}

	// Parse activity date or use current time
	date := h.now().UTC()
	if input.Date != "" {
		t, err := parseTimestamp(input.Date)
		if err != nil {
			return nil, ActivityOutput{}, err
		}
		date = t
	}
	duration := input.Duration
	if duration == 0 {
		duration = 30
	}

	in := models.ActivityInput{
		Type:        typ,
		ContactID:   input.ContactID,
		DealID:      input.DealID,
		Description: input.Description,
		Date:        date,
		Duration:    duration,
	}
	if err := requireFields(pages.MissingActivityFields(in)); err != nil {
		return nil, ActivityOutput{}, err
	}
	if _, err := h.contacts.GetByID(ctx, in.ContactID); err != nil {
		return nil, ActivityOutput{}, fmt.Errorf("failed to look up contact: %w", err)
	}

	activity, err := h.activities.Create(ctx, in)
	if err != nil {
		return nil, ActivityOutput{}, fmt.Errorf("failed to log activity: %w", err)
	}

	return nil, activityToOutput(activity), nil
}

type UpdateActivityInput struct {
	ID          string  `json:"id" jsonschema:"Activity ID (required)"`
	Type        *string `json:"type,omitempty" jsonschema:"Updated type"`
	ContactID   *string `json:"contact_id,omitempty" jsonschema:"Updated contact ID"`
	DealID      *string `json:"deal_id,omitempty" jsonschema:"Updated deal ID, empty to detach"`
	Description *string `json:"description,omitempty" jsonschema:"Updated description"`
	Date        *string `json:"date,omitempty" jsonschema:"Updated date (ISO 8601)"`
	Duration    *int    `json:"duration,omitempty" jsonschema:"Updated duration in minutes"`
}

func (h *ActivityHandlers) UpdateActivity(ctx context.Context, _ *mcp.CallToolRequest, input UpdateActivityInput) (*mcp.CallToolResult, ActivityOutput, error) {
	if input.ID == "" {
		return nil, ActivityOutput{}, fmt.Errorf("id is required")
	}

	patch := models.ActivityPatch{
		ContactID:   input.ContactID,
		DealID:      input.DealID,
		Description: input.Description,
		Duration:    input.Duration,
	}
	if input.Type != nil {
		t, err := parseActivityType(*input.Type)
		if err != nil {
			return nil, ActivityOutput{}, err
		}
		patch.Type = &t
	}
	if input.Date != nil {
		t, err := parseTimestamp(*input.Date)
		if err != nil {
			return nil, ActivityOutput{}, err
		}
		patch.Date = &t
	}

	activity, err := h.activities.Update(ctx, input.ID, patch)
	if err != nil {
		return nil, ActivityOutput{}, fmt.Errorf("failed to update activity: %w", err)
	}

	return nil, activityToOutput(activity), nil
}

func (h *ActivityHandlers) DeleteActivity(ctx context.Context, _ *mcp.CallToolRequest, input DeleteInput) (*mcp.CallToolResult, DeleteOutput, error) {
	if input.ID == "" {
		return nil, DeleteOutput{}, fmt.Errorf("id is required")
	}

	deleted, err := h.activities.Delete(ctx, input.ID)
	if err != nil {
		return nil, DeleteOutput{}, fmt.Errorf("failed to delete activity: %w", err)
	}

	return nil, DeleteOutput{ID: input.ID, Deleted: deleted}, nil
}
