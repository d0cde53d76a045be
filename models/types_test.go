// ABOUTME: Tests for CRM data models
// ABOUTME: Validates patches, cloning, stage helpers, and date serialization
package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestContactPatchChangesOnlySetFields(t *testing.T) {
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	before := Contact{
		ID:        "1",
		Name:      "Ada Lovelace",
		Email:     "ada@example.com",
		Phone:     "555-0100",
		Company:   "Analytical Engines",
		Position:  "Engineer",
		Status:    StatusLead,
		CreatedAt: created,
	}

	after := before.Clone()
	ContactPatch{Status: Ptr(StatusCustomer)}.Apply(&after)

	diff := cmp.Diff(before, after)
	assert.Contains(t, diff, "Status")
	before.Status = StatusCustomer
	assert.Empty(t, cmp.Diff(before, after))
}

func TestDealStagePatch(t *testing.T) {
	deal := Deal{ID: "7", Title: "Acme", Value: 5000, Stage: StageLead, Probability: 10}
	DealStage(StageQualified).Apply(&deal)

	assert.Equal(t, StageQualified, deal.Stage)
	assert.Equal(t, 5000.0, deal.Value)
	assert.Equal(t, "Acme", deal.Title)
}

func TestActivityPatchClearsDeal(t *testing.T) {
	activity := Activity{ID: "a", Type: ActivityCall, DealID: "d1", Duration: 30}
	ActivityPatch{DealID: Ptr("")}.Apply(&activity)

	assert.Empty(t, activity.DealID)
	assert.Equal(t, 30, activity.Duration)
}

func TestContactCloneDoesNotAlias(t *testing.T) {
	last := time.Now().UTC()
	original := Contact{ID: "1", LastContact: &last}

	copied := original.Clone()
	*copied.LastContact = last.Add(time.Hour)

	assert.Equal(t, last, *original.LastContact)
}

func TestInputPatchCoversEditableFields(t *testing.T) {
	in := ContactInput{Name: "Grace", Email: "grace@navy.mil", Status: StatusQualified}
	var c Contact
	in.Patch().Apply(&c)

	assert.Equal(t, "Grace", c.Name)
	assert.Equal(t, "grace@navy.mil", c.Email)
	assert.Equal(t, StatusQualified, c.Status)

	// A zero activity date must not overwrite the stored one.
	stamp := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	a := Activity{Date: stamp}
	ActivityInput{Type: ActivityNote, Duration: 5}.Patch().Apply(&a)
	assert.Equal(t, stamp, a.Date)
	assert.Equal(t, ActivityNote, a.Type)
}

func TestStageHelpers(t *testing.T) {
	tests := []struct {
		stage  Stage
		label  string
		closed bool
	}{
		{StageLead, "Leads", false},
		{StageQualified, "Qualified", false},
		{StageProposal, "Proposal", false},
		{StageNegotiation, "Negotiation", false},
		{StageClosedWon, "Closed Won", true},
		{StageClosedLost, "Closed Lost", true},
	}

	for _, tt := range tests {
		t.Run(string(tt.stage), func(t *testing.T) {
			assert.Equal(t, tt.label, tt.stage.Label())
			assert.Equal(t, tt.closed, tt.stage.Closed())
		})
	}
}

func TestContactStatusLabel(t *testing.T) {
	assert.Equal(t, "Qualified", StatusQualified.Label())
	assert.Equal(t, "", ContactStatus("").Label())
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-03-15")
	require.NoError(t, err)
	assert.Equal(t, NewDate(2024, time.March, 15), d)

	d, err = ParseDate("2024-03-15T18:30:00Z")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-15", d.String())

	d, err = ParseDate("")
	require.NoError(t, err)
	assert.True(t, d.IsZero())

	_, err = ParseDate("next tuesday")
	assert.Error(t, err)
}

func TestDealJSONUsesCamelCaseFieldNames(t *testing.T) {
	deal := Deal{
		ID:            "1",
		Title:         "Enterprise",
		Value:         45000,
		Stage:         StageProposal,
		Probability:   60,
		ContactID:     "3",
		ExpectedClose: NewDate(2024, time.April, 30),
	}

	data, err := json.Marshal(deal)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"contactId":"3"`)
	assert.Contains(t, string(data), `"expectedClose":"2024-04-30"`)

	var decoded Deal
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, deal.ExpectedClose, decoded.ExpectedClose)
}

func TestDateYAML(t *testing.T) {
	var holder struct {
		Close Date `yaml:"close"`
		Empty Date `yaml:"empty"`
	}
	require.NoError(t, yaml.Unmarshal([]byte("close: 2024-06-01\nempty: null\n"), &holder))
	assert.Equal(t, NewDate(2024, time.June, 1), holder.Close)
	assert.True(t, holder.Empty.IsZero())
}
