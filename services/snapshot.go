// ABOUTME: Parallel read of every entity collection
// ABOUTME: Shared by the CLI, web UI and MCP handlers that need all three lists at once
package services

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/harperreed/crmdash/models"
)

// Snapshot is every record of every entity, read at roughly the same time.
type Snapshot struct {
	Contacts   []models.Contact
	Deals      []models.Deal
	Activities []models.Activity
}

// Snapshot fetches all three collections concurrently. The first failure
// cancels the remaining reads.
func (s *Services) Snapshot(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		snap.Contacts, err = s.Contacts.GetAll(ctx)
		return err
	})
	g.Go(func() (err error) {
		snap.Deals, err = s.Deals.GetAll(ctx)
		return err
	})
	g.Go(func() (err error) {
		snap.Activities, err = s.Activities.GetAll(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return Snapshot{}, fmt.Errorf("failed to load CRM data: %w", err)
	}
	return snap, nil
}
