// ABOUTME: Contact, deal, and activity services
// ABOUTME: Per-entity defaults applied on create and the bundle used by callers
package services

import (
	"time"

	"github.com/harperreed/crmdash/models"
	"github.com/harperreed/crmdash/store"
)

type (
	ContactService  = Service[models.Contact, models.ContactInput, models.ContactPatch]
	DealService     = Service[models.Deal, models.DealInput, models.DealPatch]
	ActivityService = Service[models.Activity, models.ActivityInput, models.ActivityPatch]
)

func NewContactService(records store.Collection[models.Contact], opts Options) *ContactService {
	return newService[models.Contact, models.ContactInput, models.ContactPatch]("contact", records, buildContact, opts)
}

func NewDealService(records store.Collection[models.Deal], opts Options) *DealService {
	return newService[models.Deal, models.DealInput, models.DealPatch]("deal", records, buildDeal, opts)
}

func NewActivityService(records store.Collection[models.Activity], opts Options) *ActivityService {
	return newService[models.Activity, models.ActivityInput, models.ActivityPatch]("activity", records, buildActivity, opts)
}

// New contacts have never been contacted.
func buildContact(id string, in models.ContactInput, now time.Time) models.Contact {
	return models.Contact{
		ID:          id,
		Name:        in.Name,
		Email:       in.Email,
		Phone:       in.Phone,
		Company:     in.Company,
		Position:    in.Position,
		Status:      in.Status,
		CreatedAt:   now,
		LastContact: nil,
	}
}

func buildDeal(id string, in models.DealInput, now time.Time) models.Deal {
	return models.Deal{
		ID:            id,
		Title:         in.Title,
		Value:         in.Value,
		Stage:         in.Stage,
		Probability:   in.Probability,
		ContactID:     in.ContactID,
		ExpectedClose: in.ExpectedClose,
		CreatedAt:     now,
	}
}

func buildActivity(id string, in models.ActivityInput, now time.Time) models.Activity {
	date := in.Date
	if date.IsZero() {
		date = now
	}
	return models.Activity{
		ID:          id,
		Type:        in.Type,
		ContactID:   in.ContactID,
		DealID:      in.DealID,
		Description: in.Description,
		Date:        date,
		Duration:    in.Duration,
	}
}

// Services bundles one service per entity over a shared store set.
type Services struct {
	Contacts   *ContactService
	Deals      *DealService
	Activities *ActivityService
}

// New builds all three services. They share opts, including its IDGenerator.
func New(set *store.Set, opts Options) *Services {
	if opts.IDs == nil {
		opts.IDs = NewULIDGenerator()
	}
	return &Services{
		Contacts:   NewContactService(set.Contacts, opts),
		Deals:      NewDealService(set.Deals, opts),
		Activities: NewActivityService(set.Activities, opts),
	}
}
