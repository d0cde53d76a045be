// ABOUTME: Deal MCP tool handlers
// ABOUTME: Implements list, get, create, update, stage move, and delete tools for deals
package handlers

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/crmdash/models"
	"github.com/harperreed/crmdash/pages"
	"github.com/harperreed/crmdash/services"
)

type DealHandlers struct {
	deals    *services.DealService
	contacts *services.ContactService
}

func NewDealHandlers(svc *services.Services) *DealHandlers {
	return &DealHandlers{deals: svc.Deals, contacts: svc.Contacts}
}

type DealOutput struct {
	ID            string  `json:"id"`
	Title         string  `json:"title"`
	Value         float64 `json:"value"`
	Stage         string  `json:"stage"`
	Probability   int     `json:"probability"`
	ContactID     string  `json:"contact_id"`
	ExpectedClose string  `json:"expected_close,omitempty"`
	CreatedAt     string  `json:"created_at"`
}

func dealToOutput(d models.Deal) DealOutput {
	return DealOutput{
		ID:            d.ID,
		Title:         d.Title,
		Value:         d.Value,
		Stage:         string(d.Stage),
		Probability:   d.Probability,
		ContactID:     d.ContactID,
		ExpectedClose: d.ExpectedClose.String(),
		CreatedAt:     formatTime(d.CreatedAt),
	}
}

type ListDealsInput struct {
	Stage     string `json:"stage,omitempty" jsonschema:"Filter by stage"`
	ContactID string `json:"contact_id,omitempty" jsonschema:"Filter by contact ID"`
	Limit     int    `json:"limit,omitempty" jsonschema:"Maximum number of results (default 50)"`
}

type ListDealsOutput struct {
	Deals []DealOutput `json:"deals"`
	Count int          `json:"count"`
}

func (h *DealHandlers) ListDeals(ctx context.Context, _ *mcp.CallToolRequest, input ListDealsInput) (*mcp.CallToolResult, ListDealsOutput, error) {
	if input.Stage != "" {
		if _, err := parseStage(input.Stage); err != nil {
			return nil, ListDealsOutput{}, err
		}
	}
	limit := input.Limit
	if limit <= 0 {
		limit = 50
	}

	deals, err := h.deals.GetAll(ctx)
	if err != nil {
		return nil, ListDealsOutput{}, fmt.Errorf("failed to list deals: %w", err)
	}

	result := []DealOutput{}
	for _, d := range deals {
		if input.Stage != "" && string(d.Stage) != input.Stage {
			continue
		}
		if input.ContactID != "" && d.ContactID != input.ContactID {
			continue
		}
		if len(result) == limit {
			break
		}
		result = append(result, dealToOutput(d))
	}

	return nil, ListDealsOutput{Deals: result, Count: len(result)}, nil
}

type GetDealInput struct {
	ID string `json:"id" jsonschema:"Deal ID (required)"`
}

func (h *DealHandlers) GetDeal(ctx context.Context, _ *mcp.CallToolRequest, input GetDealInput) (*mcp.CallToolResult, DealOutput, error) {
	if input.ID == "" {
		return nil, DealOutput{}, fmt.Errorf("id is required")
	}

	deal, err := h.deals.GetByID(ctx, input.ID)
	if err != nil {
		return nil, DealOutput{}, fmt.Errorf("failed to get deal: %w", err)
	}

	return nil, dealToOutput(deal), nil
}

type CreateDealInput struct {
	Title         string  `json:"title" jsonschema:"Deal title (required)"`
	Value         float64 `json:"value,omitempty" jsonschema:"Deal value in dollars"`
	Stage         string  `json:"stage,omitempty" jsonschema:"Pipeline stage (default lead)"`
	Probability   *int    `json:"probability,omitempty" jsonschema:"Win probability in percent (default 10)"`
	ContactID     string  `json:"contact_id" jsonschema:"Contact ID (required)"`
	ExpectedClose string  `json:"expected_close" jsonschema:"Expected close date, YYYY-MM-DD (required)"`
}

func (h *DealHandlers) CreateDeal(ctx context.Context, _ *mcp.CallToolRequest, input CreateDealInput) (*mcp.CallToolResult, DealOutput, error) {
	stage := models.StageLead
	if input.Stage != "" {
		s, err := parseStage(input.Stage)
		if err != nil {
			return nil, DealOutput{}, err
		}
		stage = s
	}
	probability := 10
	if input.Probability != nil {
		probability = *input.Probability
	}
	closeDate, err := models.ParseDate(input.ExpectedClose)
	if err != nil {
		return nil, DealOutput{}, err
	}

	in := models.DealInput{
		Title:         input.Title,
		Value:         input.Value,
		Stage:         stage,
		Probability:   probability,
		ContactID:     input.ContactID,
		ExpectedClose: closeDate,
	}
	if err := requireFields(pages.MissingDealFields(in)); err != nil {
		return nil, DealOutput{}, err
	}
	if err := rejectInvalid(pages.InvalidDealFields(in.Value, in.Probability)); err != nil {
		return nil, DealOutput{}, err
	}
	if _, err := h.contacts.GetByID(ctx, in.ContactID); err != nil {
		return nil, DealOutput{}, fmt.Errorf("failed to look up contact: %w", err)
	}

	deal, err := h.deals.Create(ctx, in)
	if err != nil {
		return nil, DealOutput{}, fmt.Errorf("failed to create deal: %w", err)
	}

	return nil, dealToOutput(deal), nil
}

type UpdateDealInput struct {
	ID            string   `json:"id" jsonschema:"Deal ID (required)"`
	Title         *string  `json:"title,omitempty" jsonschema:"Updated title"`
	Value         *float64 `json:"value,omitempty" jsonschema:"Updated value in dollars"`
	Stage         *string  `json:"stage,omitempty" jsonschema:"Updated stage"`
	Probability   *int     `json:"probability,omitempty" jsonschema:"Updated win probability in percent"`
	ContactID     *string  `json:"contact_id,omitempty" jsonschema:"Updated contact ID"`
	ExpectedClose *string  `json:"expected_close,omitempty" jsonschema:"Updated expected close date, YYYY-MM-DD"`
}

func (h *DealHandlers) UpdateDeal(ctx context.Context, _ *mcp.CallToolRequest, input UpdateDealInput) (*mcp.CallToolResult, DealOutput, error) {
	if input.ID == "" {
		return nil, DealOutput{}, fmt.Errorf("id is required")
	}

	// Unset fields stand in as valid values so only patched ones are checked.
	value, probability := 0.0, 0
	if input.Value != nil {
		value = *input.Value
	}
	if input.Probability != nil {
		probability = *input.Probability
	}
	if err := rejectInvalid(pages.InvalidDealFields(value, probability)); err != nil {
		return nil, DealOutput{}, err
	}

	patch := models.DealPatch{
		Title:       input.Title,
		Value:       input.Value,
		Probability: input.Probability,
		ContactID:   input.ContactID,
	}
	if input.Stage != nil {
		s, err := parseStage(*input.Stage)
		if err != nil {
			return nil, DealOutput{}, err
		}
		patch.Stage = &s
	}
	if input.ExpectedClose != nil {
		d, err := models.ParseDate(*input.ExpectedClose)
		if err != nil {
			return nil, DealOutput{}, err
		}
		patch.ExpectedClose = &d
	}

	deal, err := h.deals.Update(ctx, input.ID, patch)
	if err != nil {
		return nil, DealOutput{}, fmt.Errorf("failed to update deal: %w", err)
	}

	return nil, dealToOutput(deal), nil
}

type MoveDealStageInput struct {
	ID    string `json:"id" jsonschema:"Deal ID (required)"`
	Stage string `json:"stage" jsonschema:"Target stage (required)"`
}

func (h *DealHandlers) MoveDealStage(ctx context.Context, _ *mcp.CallToolRequest, input MoveDealStageInput) (*mcp.CallToolResult, DealOutput, error) {
	if input.ID == "" {
		return nil, DealOutput{}, fmt.Errorf("id is required")
	}
	stage, err := parseStage(input.Stage)
	if err != nil {
		return nil, DealOutput{}, err
	}

	deal, err := h.deals.Update(ctx, input.ID, models.DealStage(stage))
	if err != nil {
		return nil, DealOutput{}, fmt.Errorf("failed to move deal: %w", err)
	}

	return nil, dealToOutput(deal), nil
}

func (h *DealHandlers) DeleteDeal(ctx context.Context, _ *mcp.CallToolRequest, input DeleteInput) (*mcp.CallToolResult, DeleteOutput, error) {
	if input.ID == "" {
		return nil, DeleteOutput{}, fmt.Errorf("id is required")
	}

	deleted, err := h.deals.Delete(ctx, input.ID)
	if err != nil {
		return nil, DeleteOutput{}, fmt.Errorf("failed to delete deal: %w", err)
	}

	return nil, DeleteOutput{ID: input.ID, Deleted: deleted}, nil
}
