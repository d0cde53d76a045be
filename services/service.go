// ABOUTME: Generic CRUD facade over an entity collection
// ABOUTME: Every call waits out its simulated latency before touching the store
package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/harperreed/crmdash/store"
)

// Patch is a partial update that can be applied to a T.
type Patch[T any] interface {
	Apply(*T)
}

// Options configures a service. Zero fields fall back to defaults.
type Options struct {
	Delayer Delayer
	Latency Latency
	IDs     IDGenerator
	Clock   Clock
	Logger  *zap.Logger
	Metrics *Metrics
}

func (o Options) withDefaults() Options {
	if o.Delayer == nil {
		o.Delayer = SleepDelayer{}
	}
	if o.Latency == (Latency{}) {
		o.Latency = DefaultLatency()
	}
	if o.IDs == nil {
		o.IDs = NewULIDGenerator()
	}
	if o.Clock == nil {
		o.Clock = time.Now
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

// Service exposes asynchronous-looking CRUD over one entity type.
// In is the create input and P the partial update type.
type Service[T store.Record[T], In any, P Patch[T]] struct {
	entity  string
	records store.Collection[T]
	build   func(id string, in In, now time.Time) T
	opts    Options
	logger  *zap.Logger
}

func newService[T store.Record[T], In any, P Patch[T]](
	entity string,
	records store.Collection[T],
	build func(string, In, time.Time) T,
	opts Options,
) *Service[T, In, P] {
	opts = opts.withDefaults()
	return &Service[T, In, P]{
		entity:  entity,
		records: records,
		build:   build,
		opts:    opts,
		logger:  opts.Logger.With(zap.String("entity", entity)),
	}
}

// Entity returns the singular entity name used in errors and metrics.
func (s *Service[T, In, P]) Entity() string {
	return s.entity
}

// GetAll returns a copy of every record, newest first.
func (s *Service[T, In, P]) GetAll(ctx context.Context) ([]T, error) {
	var out []T
	err := s.call(ctx, OpGetAll, "", func() error {
		var err error
		out, err = s.records.All()
		return err
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

// GetByID returns the record with id or an error wrapping ErrNotFound.
func (s *Service[T, In, P]) GetByID(ctx context.Context, id string) (T, error) {
	var rec T
	err := s.call(ctx, OpGetByID, id, func() error {
		found, ok, err := s.records.Find(id)
		if err != nil {
			return err
		}
		if !ok {
			return notFound(s.entity, id)
		}
		rec = found
		return nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return rec, nil
}

// Create assigns a fresh id and defaults, then stores the record as newest.
func (s *Service[T, In, P]) Create(ctx context.Context, in In) (T, error) {
	var rec T
	err := s.call(ctx, OpCreate, "", func() error {
		rec = s.build(s.opts.IDs.NewID(), in, s.opts.Clock())
		return s.records.Prepend(rec)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return rec, nil
}

// Update merges patch into the record with id. There is no version check,
// so concurrent updates are last-writer-wins.
func (s *Service[T, In, P]) Update(ctx context.Context, id string, patch P) (T, error) {
	var rec T
	err := s.call(ctx, OpUpdate, id, func() error {
		current, ok, err := s.records.Find(id)
		if err != nil {
			return err
		}
		if !ok {
			return notFound(s.entity, id)
		}
		patch.Apply(&current)

		replaced, err := s.records.Replace(current)
		if err != nil {
			return err
		}
		if !replaced {
			// Deleted between Find and Replace.
			return notFound(s.entity, id)
		}
		rec = current
		return nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return rec, nil
}

// Delete removes the record with id and reports true.
func (s *Service[T, In, P]) Delete(ctx context.Context, id string) (bool, error) {
	err := s.call(ctx, OpDelete, id, func() error {
		removed, err := s.records.Remove(id)
		if err != nil {
			return err
		}
		if !removed {
			return notFound(s.entity, id)
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *Service[T, In, P]) call(ctx context.Context, op Op, id string, fn func() error) error {
	start := time.Now()

	err := s.opts.Delayer.Delay(ctx, s.opts.Latency.For(op))
	if err == nil {
		err = fn()
	}

	elapsed := time.Since(start)
	result := outcome(err)
	s.opts.Metrics.observe(s.entity, op, result, elapsed)

	fields := []zap.Field{
		zap.String("op", string(op)),
		zap.String("outcome", result),
		zap.Duration("elapsed", elapsed),
	}
	if id != "" {
		fields = append(fields, zap.String("id", id))
	}
	if err != nil && result != "not_found" {
		fields = append(fields, zap.Error(err))
	}
	s.logger.Debug("service call", fields...)

	return err
}
