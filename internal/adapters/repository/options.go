package repository

import (
	"time"

	"github.com/austinw/envelope/internal/adapters/pubsub"
	"github.com/austinw/envelope/internal/domain/model"
)

// MemoryOption applies a configuration option to the MemoryStore.
type MemoryOption func(*MemoryStore)

// WithNominees replaces the default catalog.
func WithNominees(nominees []model.Nominee) MemoryOption {
	return func(s *MemoryStore) {
		if len(nominees) > 0 {
			s.nominees = append([]model.Nominee(nil), nominees...)
		}
	}
}

// WithBus sets the change-notification bus.
func WithBus(bus pubsub.Bus) MemoryOption {
	return func(s *MemoryStore) {
		s.bus = bus
	}
}

// WithClock overrides the submission timestamp source.
func WithClock(clock func() time.Time) MemoryOption {
	return func(s *MemoryStore) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// SQLiteOption applies a configuration option to the SQLiteStore.
type SQLiteOption func(*SQLiteStore)

// WithSQLiteNominees replaces the default catalog.
func WithSQLiteNominees(nominees []model.Nominee) SQLiteOption {
	return func(s *SQLiteStore) {
		if len(nominees) > 0 {
			s.nominees = append([]model.Nominee(nil), nominees...)
		}
	}
}

// WithSQLiteBus sets the change-notification bus.
func WithSQLiteBus(bus pubsub.Bus) SQLiteOption {
	return func(s *SQLiteStore) {
		s.bus = bus
	}
}
