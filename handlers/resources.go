// ABOUTME: MCP resource handlers for exposing CRM data
// ABOUTME: Provides read-only access to contacts, deals, activities, and the pipeline via URI
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/crmdash/services"
)

type ResourceHandlers struct {
	svc *services.Services
}

func NewResourceHandlers(svc *services.Services) *ResourceHandlers {
	return &ResourceHandlers{svc: svc}
}

func registerResources(server *mcp.Server, h *ResourceHandlers) {
	for _, r := range []struct{ uri, name, desc string }{
		{"crm://contacts", "contacts", "All contacts, newest first"},
		{"crm://deals", "deals", "All deals, newest first"},
		{"crm://activities", "activities", "All activities, newest first"},
		{"crm://pipeline", "pipeline", "Dashboard metrics and per-stage pipeline totals"},
	} {
		server.AddResource(&mcp.Resource{
			URI:         r.uri,
			Name:        r.name,
			Description: r.desc,
			MIMEType:    "application/json",
		}, h.ReadResource)
	}

	server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: "crm://contacts/{id}",
		Name:        "contact",
		Description: "One contact with its deals and activities",
		MIMEType:    "application/json",
	}, h.ReadResource)

	server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: "crm://deals/{id}",
		Name:        "deal",
		Description: "One deal with its activities",
		MIMEType:    "application/json",
	}, h.ReadResource)
}

// ReadResource handles resource read requests
func (h *ResourceHandlers) ReadResource(ctx context.Context, request *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	uri := request.Params.URI
	// Parse the URI
	if !strings.HasPrefix(uri, "crm://") {
		return nil, fmt.Errorf("invalid URI scheme: expected crm://")
	}

	path := strings.TrimPrefix(uri, "crm://")
	parts := strings.Split(path, "/")
	if len(parts) > 2 || (len(parts) == 2 && parts[1] == "") {
		return nil, mcp.ResourceNotFoundError(uri)
	}

	var (
		payload any
		err     error
	)
	switch {
	case parts[0] == "contacts" && len(parts) == 1:
		payload, err = h.allContacts(ctx)
	case parts[0] == "contacts":
		payload, err = h.contact(ctx, parts[1])
	case parts[0] == "deals" && len(parts) == 1:
		payload, err = h.allDeals(ctx)
	case parts[0] == "deals":
		payload, err = h.deal(ctx, parts[1])
	case parts[0] == "activities" && len(parts) == 1:
		payload, err = h.allActivities(ctx)
	case parts[0] == "pipeline" && len(parts) == 1:
		var snap services.Snapshot
		snap, err = h.svc.Snapshot(ctx)
		if err == nil {
			payload = dashboardOutput(snap)
		}
	default:
		return nil, mcp.ResourceNotFoundError(uri)
	}
	if errors.Is(err, services.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(uri)
	}
	if err != nil {
		return nil, err
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s: %w", parts[0], err)
	}

	return &mcp.ReadResourceResult{Contents: []*mcp.ResourceContents{
		{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}}, nil
}

func (h *ResourceHandlers) allContacts(ctx context.Context) ([]ContactOutput, error) {
	contacts, err := h.svc.Contacts.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch contacts: %w", err)
	}
	out := make([]ContactOutput, len(contacts))
	for i, c := range contacts {
		out[i] = contactToOutput(c)
	}
	return out, nil
}

func (h *ResourceHandlers) allDeals(ctx context.Context) ([]DealOutput, error) {
	deals, err := h.svc.Deals.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch deals: %w", err)
	}
	out := make([]DealOutput, len(deals))
	for i, d := range deals {
		out[i] = dealToOutput(d)
	}
	return out, nil
}

func (h *ResourceHandlers) allActivities(ctx context.Context) ([]ActivityOutput, error) {
	activities, err := h.svc.Activities.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch activities: %w", err)
	}
	out := make([]ActivityOutput, len(activities))
	for i, a := range activities {
		out[i] = activityToOutput(a)
	}
	return out, nil
}

type contactResource struct {
	ContactOutput
	Deals      []DealOutput     `json:"deals"`
	Activities []ActivityOutput `json:"activities"`
}

func (h *ResourceHandlers) contact(ctx context.Context, id string) (contactResource, error) {
	contact, err := h.svc.Contacts.GetByID(ctx, id)
	if err != nil {
		return contactResource{}, fmt.Errorf("failed to fetch contact: %w", err)
	}
	snap, err := h.svc.Snapshot(ctx)
	if err != nil {
		return contactResource{}, err
	}

	out := contactResource{
		ContactOutput: contactToOutput(contact),
		Deals:         []DealOutput{},
		Activities:    []ActivityOutput{},
	}
	for _, d := range snap.Deals {
		if d.ContactID == id {
			out.Deals = append(out.Deals, dealToOutput(d))
		}
	}
	for _, a := range snap.Activities {
		if a.ContactID == id {
			out.Activities = append(out.Activities, activityToOutput(a))
		}
	}
	return out, nil
}

type dealResource struct {
	DealOutput
	ContactName string           `json:"contact_name"`
	Activities  []ActivityOutput `json:"activities"`
}

func (h *ResourceHandlers) deal(ctx context.Context, id string) (dealResource, error) {
	deal, err := h.svc.Deals.GetByID(ctx, id)
	if err != nil {
		return dealResource{}, fmt.Errorf("failed to fetch deal: %w", err)
	}
	snap, err := h.svc.Snapshot(ctx)
	if err != nil {
		return dealResource{}, err
	}

	out := dealResource{
		DealOutput:  dealToOutput(deal),
		ContactName: contactName(snap, deal.ContactID),
		Activities:  []ActivityOutput{},
	}
	for _, a := range snap.Activities {
		if a.DealID == id {
			out.Activities = append(out.Activities, activityToOutput(a))
		}
	}
	return out, nil
}
