// ABOUTME: Tests for the SQLite entity tables
// ABOUTME: Runs the same collection contract as the memory store against :memory: databases
package db

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/crmdash/mockdata"
	"github.com/harperreed/crmdash/models"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := OpenDatabase()
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return database
}

func TestOpenDatabaseCreatesSchema(t *testing.T) {
	database := setupTestDB(t)

	var count int
	err := database.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table'").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestOpenDatabaseIsPrivate(t *testing.T) {
	a := setupTestDB(t)
	b := setupTestDB(t)

	contacts := NewContactTable(a)
	require.NoError(t, contacts.Prepend(models.Contact{ID: "x", Name: "Only in A", CreatedAt: time.Now()}))

	n, err := NewContactTable(b).Len()
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestNewSetKeepsSeedOrder(t *testing.T) {
	seed := mockdata.MustDefault()
	set, err := NewSet(setupTestDB(t), seed)
	require.NoError(t, err)

	contacts, err := set.Contacts.All()
	require.NoError(t, err)
	require.Len(t, contacts, len(seed.Contacts))
	for i := range seed.Contacts {
		assert.Equal(t, seed.Contacts[i].ID, contacts[i].ID)
		assert.Equal(t, seed.Contacts[i].Name, contacts[i].Name)
		assert.True(t, seed.Contacts[i].CreatedAt.Equal(contacts[i].CreatedAt))
		if seed.Contacts[i].LastContact == nil {
			assert.Nil(t, contacts[i].LastContact)
		} else {
			require.NotNil(t, contacts[i].LastContact)
			assert.True(t, seed.Contacts[i].LastContact.Equal(*contacts[i].LastContact))
		}
	}

	deals, err := set.Deals.All()
	require.NoError(t, err)
	require.Len(t, deals, len(seed.Deals))
	assert.Equal(t, seed.Deals[0].ExpectedClose, deals[0].ExpectedClose)
	assert.Equal(t, seed.Deals[0].Stage, deals[0].Stage)

	activities, err := set.Activities.All()
	require.NoError(t, err)
	require.Len(t, activities, len(seed.Activities))
}

func TestContactTablePrependIsNewestFirst(t *testing.T) {
	contacts := NewContactTable(setupTestDB(t))
	now := time.Now().UTC()

	require.NoError(t, contacts.Prepend(models.Contact{ID: "1", Name: "First", CreatedAt: now}))
	require.NoError(t, contacts.Prepend(models.Contact{ID: "2", Name: "Second", CreatedAt: now}))
	require.NoError(t, contacts.Prepend(models.Contact{ID: "3", Name: "Third", CreatedAt: now}))

	all, err := contacts.All()
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "3", all[0].ID)
	assert.Equal(t, "2", all[1].ID)
	assert.Equal(t, "1", all[2].ID)
}

func TestDealTableReplaceAndRemove(t *testing.T) {
	deals := NewDealTable(setupTestDB(t))
	now := time.Now().UTC()

	deal := models.Deal{
		ID:            "d1",
		Title:         "Acme",
		Value:         5000,
		Stage:         models.StageLead,
		Probability:   10,
		ContactID:     "X",
		ExpectedClose: models.NewDate(2024, time.July, 1),
		CreatedAt:     now,
	}
	require.NoError(t, deals.Prepend(deal))

	models.DealStage(models.StageQualified).Apply(&deal)
	ok, err := deals.Replace(deal)
	require.NoError(t, err)
	assert.True(t, ok)

	got, found, err := deals.Find("d1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, models.StageQualified, got.Stage)
	assert.Equal(t, 5000.0, got.Value)
	assert.Equal(t, "Acme", got.Title)
	assert.True(t, now.Equal(got.CreatedAt))

	ok, err = deals.Replace(models.Deal{ID: "missing"})
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = deals.Remove("d1")
	require.NoError(t, err)
	assert.True(t, ok)

	_, found, err = deals.Find("d1")
	require.NoError(t, err)
	assert.False(t, found)

	ok, err = deals.Remove("d1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestActivityTableOptionalDeal(t *testing.T) {
	activities := NewActivityTable(setupTestDB(t))
	when := time.Date(2024, 5, 2, 15, 30, 0, 0, time.UTC)

	require.NoError(t, activities.Prepend(models.Activity{
		ID:          "a1",
		Type:        models.ActivityNote,
		ContactID:   "1",
		Description: "No deal attached",
		Date:        when,
		Duration:    5,
	}))

	got, found, err := activities.Find("a1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "", got.DealID)
	assert.Equal(t, models.ActivityNote, got.Type)
	assert.True(t, when.Equal(got.Date))

	n, err := activities.Len()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
