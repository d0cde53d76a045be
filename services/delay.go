// ABOUTME: Simulated network latency for service calls
// ABOUTME: Delayer implementations and the per-operation latency table
package services

import (
	"context"
	"time"
)

// Op names a service operation. Values double as metric labels.
type Op string

const (
	OpGetAll  Op = "get_all"
	OpGetByID Op = "get_by_id"
	OpCreate  Op = "create"
	OpUpdate  Op = "update"
	OpDelete  Op = "delete"
)

// Delayer blocks for a simulated round trip.
// It returns ctx.Err() if ctx ends first.
type Delayer interface {
	Delay(ctx context.Context, d time.Duration) error
}

// SleepDelayer waits on a real timer.
type SleepDelayer struct{}

func (SleepDelayer) Delay(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// NoDelay returns immediately. Used by tests and one-shot CLI commands.
type NoDelay struct{}

func (NoDelay) Delay(ctx context.Context, _ time.Duration) error {
	return ctx.Err()
}

// Latency is the simulated duration of each operation.
type Latency struct {
	GetAll  time.Duration `mapstructure:"get_all"`
	GetByID time.Duration `mapstructure:"get_by_id"`
	Create  time.Duration `mapstructure:"create"`
	Update  time.Duration `mapstructure:"update"`
	Delete  time.Duration `mapstructure:"delete"`
}

// DefaultLatency mirrors a sluggish REST backend.
func DefaultLatency() Latency {
	return Latency{
		GetAll:  300 * time.Millisecond,
		GetByID: 200 * time.Millisecond,
		Create:  400 * time.Millisecond,
		Update:  350 * time.Millisecond,
		Delete:  250 * time.Millisecond,
	}
}

// For returns the duration configured for op.
func (l Latency) For(op Op) time.Duration {
	switch op {
	case OpGetAll:
		return l.GetAll
	case OpGetByID:
		return l.GetByID
	case OpCreate:
		return l.Create
	case OpUpdate:
		return l.Update
	case OpDelete:
		return l.Delete
	}
	return 0
}
