// ABOUTME: Universal query tool handler
// ABOUTME: Implements flexible filtering across contacts, deals, and activities
package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/crmdash/pages"
	"github.com/harperreed/crmdash/services"
)

type QueryHandlers struct {
	svc *services.Services
}

func NewQueryHandlers(svc *services.Services) *QueryHandlers {
	return &QueryHandlers{svc: svc}
}

type QueryCRMInput struct {
	EntityType string                 `json:"entity_type" jsonschema:"Type of entity to query (contact, deal, activity)"`
	Query      string                 `json:"query,omitempty" jsonschema:"Search text (contact name/email/company, deal title, activity description)"`
	Filters    map[string]interface{} `json:"filters,omitempty" jsonschema:"Additional filters as key-value pairs"`
	Limit      int                    `json:"limit,omitempty" jsonschema:"Maximum results to return (default 10)"`
}

type QueryCRMOutput struct {
	EntityType string        `json:"entity_type"`
	Results    []interface{} `json:"results"`
	Count      int           `json:"count"`
}

func (h *QueryHandlers) QueryCRM(ctx context.Context, _ *mcp.CallToolRequest, input QueryCRMInput) (*mcp.CallToolResult, QueryCRMOutput, error) {
	// Set default limit
	if input.Limit == 0 {
		input.Limit = 10
	}

	var (
		results []interface{}
		err     error
	)
	switch input.EntityType {
	case "contact":
		results, err = h.queryContacts(ctx, input)
	case "deal":
		results, err = h.queryDeals(ctx, input)
	case "activity":
		results, err = h.queryActivities(ctx, input)
	default:
		return nil, QueryCRMOutput{}, fmt.Errorf("invalid entity_type: %s (valid: contact, deal, activity)", input.EntityType)
	}
	if err != nil {
		return nil, QueryCRMOutput{}, err
	}
	if results == nil {
		results = []interface{}{}
	}

	return nil, QueryCRMOutput{
		EntityType: input.EntityType,
		Results:    results,
		Count:      len(results),
	}, nil
}

func stringFilter(filters map[string]interface{}, key string) string {
	s, _ := filters[key].(string)
	return s
}

func numberFilter(filters map[string]interface{}, key string) (float64, bool) {
	v, ok := filters[key].(float64)
	return v, ok
}

func (h *QueryHandlers) queryContacts(ctx context.Context, input QueryCRMInput) ([]interface{}, error) {
	status := pages.StatusAll
	if s := stringFilter(input.Filters, "status"); s != "" {
		parsed, err := parseStatus(s)
		if err != nil {
			return nil, err
		}
		status = parsed
	}

	contacts, err := h.svc.Contacts.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to find contacts: %w", err)
	}

	var results []interface{}
	for _, c := range pages.FilterContacts(contacts, input.Query, status) {
		if len(results) == input.Limit {
			break
		}
		results = append(results, contactToOutput(c))
	}
	return results, nil
}

func (h *QueryHandlers) queryDeals(ctx context.Context, input QueryCRMInput) ([]interface{}, error) {
	// Extract filters
	stage := stringFilter(input.Filters, "stage")
	if stage != "" {
		if _, err := parseStage(stage); err != nil {
			return nil, err
		}
	}
	contactID := stringFilter(input.Filters, "contact_id")
	minValue, hasMin := numberFilter(input.Filters, "min_value")
	maxValue, hasMax := numberFilter(input.Filters, "max_value")
	term := strings.ToLower(input.Query)

	deals, err := h.svc.Deals.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to find deals: %w", err)
	}

	var results []interface{}
	for _, d := range deals {
		if stage != "" && string(d.Stage) != stage {
			continue
		}
		if contactID != "" && d.ContactID != contactID {
			continue
		}
		if hasMin && d.Value < minValue {
			continue
		}
		if hasMax && d.Value > maxValue {
			continue
		}
		if term != "" && !strings.Contains(strings.ToLower(d.Title), term) {
			continue
		}
		if len(results) == input.Limit {
			break
		}
		results = append(results, dealToOutput(d))
	}
	return results, nil
}

func (h *QueryHandlers) queryActivities(ctx context.Context, input QueryCRMInput) ([]interface{}, error) {
	typ := pages.TypeAll
	if t := stringFilter(input.Filters, "type"); t != "" {
		parsed, err := parseActivityType(t)
		if err != nil {
			return nil, err
		}
		typ = parsed
	}
	contactID := stringFilter(input.Filters, "contact_id")
	dealID := stringFilter(input.Filters, "deal_id")
	term := strings.ToLower(input.Query)

	activities, err := h.svc.Activities.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to find activities: %w", err)
	}

	var results []interface{}
	for _, a := range pages.FilterActivities(activities, typ) {
		if contactID != "" && a.ContactID != contactID {
			continue
		}
		if dealID != "" && a.DealID != dealID {
			continue
		}
		if term != "" && !strings.Contains(strings.ToLower(a.Description), term) {
			continue
		}
		if len(results) == input.Limit {
			break
		}
		results = append(results, activityToOutput(a))
	}
	return results, nil
}
