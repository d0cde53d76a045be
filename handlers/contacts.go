// ABOUTME: Contact MCP tool handlers
// ABOUTME: Implements list_contacts, get_contact, add_contact, update_contact, and delete_contact tools
package handlers

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/crmdash/models"
	"github.com/harperreed/crmdash/pages"
	"github.com/harperreed/crmdash/services"
)

type ContactHandlers struct {
	contacts *services.ContactService
}

func NewContactHandlers(svc *services.Services) *ContactHandlers {
	return &ContactHandlers{contacts: svc.Contacts}
}

type ContactOutput struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Email       string  `json:"email,omitempty"`
	Phone       string  `json:"phone,omitempty"`
	Company     string  `json:"company,omitempty"`
	Position    string  `json:"position,omitempty"`
	Status      string  `json:"status"`
	CreatedAt   string  `json:"created_at"`
	LastContact *string `json:"last_contact,omitempty"`
}

func contactToOutput(c models.Contact) ContactOutput {
	out := ContactOutput{
		ID:        c.ID,
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		Company:   c.Company,
		Position:  c.Position,
		Status:    string(c.Status),
		CreatedAt: formatTime(c.CreatedAt),
	}
	if c.LastContact != nil {
		last := formatTime(*c.LastContact)
		out.LastContact = &last
	}
	return out
}

type ListContactsInput struct {
	Query  string `json:"query,omitempty" jsonschema:"Search term matched against name, email, and company"`
	Status string `json:"status,omitempty" jsonschema:"Filter by status: lead, qualified, or customer"`
	Limit  int    `json:"limit,omitempty" jsonschema:"Maximum number of results (default 50)"`
}

type ListContactsOutput struct {
	Contacts []ContactOutput `json:"contacts"`
	Count    int             `json:"count"`
}

func (h *ContactHandlers) ListContacts(ctx context.Context, _ *mcp.CallToolRequest, input ListContactsInput) (*mcp.CallToolResult, ListContactsOutput, error) {
	status := pages.StatusAll
	if input.Status != "" {
		s, err := parseStatus(input.Status)
		if err != nil {
			return nil, ListContactsOutput{}, err
		}
		status = s
	}
	limit := input.Limit
	if limit <= 0 {
		limit = 50
	}

	contacts, err := h.contacts.GetAll(ctx)
	if err != nil {
		return nil, ListContactsOutput{}, fmt.Errorf("failed to list contacts: %w", err)
	}

	matched := pages.FilterContacts(contacts, input.Query, status)
	if len(matched) > limit {
		matched = matched[:limit]
	}

	result := make([]ContactOutput, len(matched))
	for i, c := range matched {
		result[i] = contactToOutput(c)
	}
	return nil, ListContactsOutput{Contacts: result, Count: len(result)}, nil
}

type GetContactInput struct {
	ID string `json:"id" jsonschema:"Contact ID (required)"`
}

func (h *ContactHandlers) GetContact(ctx context.Context, _ *mcp.CallToolRequest, input GetContactInput) (*mcp.CallToolResult, ContactOutput, error) {
	if input.ID == "" {
		return nil, ContactOutput{}, fmt.Errorf("id is required")
	}

	contact, err := h.contacts.GetByID(ctx, input.ID)
	if err != nil {
		return nil, ContactOutput{}, fmt.Errorf("failed to get contact: %w", err)
	}

	return nil, contactToOutput(contact), nil
}

type AddContactInput struct {
	Name     string `json:"name" jsonschema:"Contact name (required)"`
	Email    string `json:"email,omitempty" jsonschema:"Contact email address"`
	Phone    string `json:"phone,omitempty" jsonschema:"Contact phone number"`
	Company  string `json:"company,omitempty" jsonschema:"Company the contact works for"`
	Position string `json:"position,omitempty" jsonschema:"Job title"`
	Status   string `json:"status,omitempty" jsonschema:"lead, qualified, or customer (default lead)"`
}

func (h *ContactHandlers) AddContact(ctx context.Context, _ *mcp.CallToolRequest, input AddContactInput) (*mcp.CallToolResult, ContactOutput, error) {
	status := models.StatusLead
	if input.Status != "" {
		s, err := parseStatus(input.Status)
		if err != nil {
			return nil, ContactOutput{}, err
		}
		status = s
	}

	in := models.ContactInput{
		Name:     input.Name,
		Email:    input.Email,
		Phone:    input.Phone,
		Company:  input.Company,
		Position: input.Position,
		Status:   status,
	}
	if err := requireFields(pages.MissingContactFields(in)); err != nil {
		return nil, ContactOutput{}, err
	}

	contact, err := h.contacts.Create(ctx, in)
	if err != nil {
		return nil, ContactOutput{}, fmt.Errorf("failed to create contact: %w", err)
	}

	return nil, contactToOutput(contact), nil
}

type UpdateContactInput struct {
	ID          string  `json:"id" jsonschema:"Contact ID (required)"`
	Name        *string `json:"name,omitempty" jsonschema:"Updated contact name"`
	Email       *string `json:"email,omitempty" jsonschema:"Updated email address"`
	Phone       *string `json:"phone,omitempty" jsonschema:"Updated phone number"`
	Company     *string `json:"company,omitempty" jsonschema:"Updated company"`
	Position    *string `json:"position,omitempty" jsonschema:"Updated job title"`
	Status      *string `json:"status,omitempty" jsonschema:"Updated status: lead, qualified, or customer"`
	LastContact *string `json:"last_contact,omitempty" jsonschema:"When the contact was last reached (ISO 8601)"`
}

func (h *ContactHandlers) UpdateContact(ctx context.Context, _ *mcp.CallToolRequest, input UpdateContactInput) (*mcp.CallToolResult, ContactOutput, error) {
	if input.ID == "" {
		return nil, ContactOutput{}, fmt.Errorf("id is required")
	}

	patch := models.ContactPatch{
		Name:     input.Name,
		Email:    input.Email,
		Phone:    input.Phone,
		Company:  input.Company,
		Position: input.Position,
	}
	if input.Name != nil && *input.Name == "" {
		return nil, ContactOutput{}, fmt.Errorf("name cannot be empty")
	}
	if input.Status != nil {
		s, err := parseStatus(*input.Status)
		if err != nil {
			return nil, ContactOutput{}, err
		}
		patch.Status = &s
	}
	if input.LastContact != nil {
		t, err := parseTimestamp(*input.LastContact)
		if err != nil {
			return nil, ContactOutput{}, err
		}
		patch.LastContact = &t
	}

	contact, err := h.contacts.Update(ctx, input.ID, patch)
	if err != nil {
		return nil, ContactOutput{}, fmt.Errorf("failed to update contact: %w", err)
	}

	return nil, contactToOutput(contact), nil
}

type DeleteInput struct {
	ID string `json:"id" jsonschema:"ID of the record to delete (required)"`
}

type DeleteOutput struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}

func (h *ContactHandlers) DeleteContact(ctx context.Context, _ *mcp.CallToolRequest, input DeleteInput) (*mcp.CallToolResult, DeleteOutput, error) {
	if input.ID == "" {
		return nil, DeleteOutput{}, fmt.Errorf("id is required")
	}

	deleted, err := h.contacts.Delete(ctx, input.ID)
	if err != nil {
		return nil, DeleteOutput{}, fmt.Errorf("failed to delete contact: %w", err)
	}

	return nil, DeleteOutput{ID: input.ID, Deleted: deleted}, nil
}
