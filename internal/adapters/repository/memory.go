package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/austinw/envelope/internal/adapters/pubsub"
	"github.com/austinw/envelope/internal/domain/model"
	"github.com/austinw/envelope/pkg/metrics"
)

// MemoryStore implements Store with a mutex-guarded in-process state.
// The name-uniqueness check runs under the write lock, so two racing
// submissions with the same name cannot both pass it.
type MemoryStore struct {
	mu       sync.RWMutex
	nominees []model.Nominee
	byID     map[int]int // nominee id -> index into nominees
	picks    map[string]model.Pick
	byName   map[string]string // lowercased name -> pick id
	seq      uint64
	settings model.Settings

	bus   pubsub.Bus
	clock func() time.Time
}

// NewMemoryStore creates a store seeded with the default catalog.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		nominees: model.DefaultNominees(),
		picks:    make(map[string]model.Pick),
		byName:   make(map[string]string),
		clock:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.byID = make(map[int]int, len(s.nominees))
	for i, n := range s.nominees {
		s.byID[n.ID] = i
	}
	return s
}

func (s *MemoryStore) publish(ctx context.Context, topic pubsub.Topic) {
	if s.bus != nil {
		s.bus.Publish(ctx, topic)
	}
}

// Nominees returns a copy of the catalog with current odds applied.
func (s *MemoryStore) Nominees(ctx context.Context) ([]model.Nominee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Nominee, len(s.nominees))
	copy(out, s.nominees)
	return out, nil
}

// SetOdds upserts one nominee's odds and notifies the odds topic.
func (s *MemoryStore) SetOdds(ctx context.Context, nomineeID int, value float64) error {
	if !validOdds(value) {
		return ErrInvalidOdds
	}
	s.mu.Lock()
	i, ok := s.byID[nomineeID]
	if !ok {
		s.mu.Unlock()
		return ErrUnknownNominee
	}
	s.nominees[i].Odds = value
	s.mu.Unlock()

	metrics.RecordOddsUpdate()
	s.publish(ctx, pubsub.TopicOdds)
	return nil
}

// Picks returns all picks ordered by submission time, then sequence.
func (s *MemoryStore) Picks(ctx context.Context) ([]model.Pick, error) {
	s.mu.RLock()
	out := make([]model.Pick, 0, len(s.picks))
	for _, p := range s.picks {
		out = append(out, p)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].SubmittedAt.Equal(out[j].SubmittedAt) {
			return out[i].SubmittedAt.Before(out[j].SubmittedAt)
		}
		return out[i].Seq < out[j].Seq
	})
	return out, nil
}

// SubmitPick validates and appends a pick under the write lock.
func (s *MemoryStore) SubmitPick(ctx context.Context, name string, nomineeID int) (model.Pick, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Pick{}, ErrEmptyName
	}

	s.mu.Lock()
	if s.settings.Resolved() {
		s.mu.Unlock()
		return model.Pick{}, ErrContestClosed
	}
	if _, ok := s.byID[nomineeID]; !ok {
		s.mu.Unlock()
		return model.Pick{}, ErrUnknownNominee
	}
	key := strings.ToLower(name)
	if _, taken := s.byName[key]; taken {
		s.mu.Unlock()
		return model.Pick{}, ErrDuplicateName
	}

	s.seq++
	p := model.Pick{
		ID:          uuid.NewString(),
		Name:        name,
		NomineeID:   nomineeID,
		SubmittedAt: s.clock(),
		Seq:         s.seq,
	}
	s.picks[p.ID] = p
	s.byName[key] = p.ID
	total := len(s.picks)
	s.mu.Unlock()

	metrics.RecordPickSubmitted()
	metrics.UpdatePickCount(total)
	s.publish(ctx, pubsub.TopicPicks)
	return p, nil
}

// RemovePick deletes by id; unknown ids are a no-op but still count as
// success, so the operation stays idempotent for retries.
func (s *MemoryStore) RemovePick(ctx context.Context, id string) error {
	s.mu.Lock()
	p, ok := s.picks[id]
	if ok {
		delete(s.picks, id)
		delete(s.byName, strings.ToLower(p.Name))
	}
	total := len(s.picks)
	s.mu.Unlock()

	if ok {
		metrics.UpdatePickCount(total)
		s.publish(ctx, pubsub.TopicPicks)
	}
	return nil
}

// ClearPicks removes everything with one notification, not one per row.
func (s *MemoryStore) ClearPicks(ctx context.Context) error {
	s.mu.Lock()
	had := len(s.picks) > 0
	s.picks = make(map[string]model.Pick)
	s.byName = make(map[string]string)
	s.mu.Unlock()

	if had {
		metrics.UpdatePickCount(0)
		s.publish(ctx, pubsub.TopicPicks)
	}
	return nil
}

// Settings returns the singleton settings record.
func (s *MemoryStore) Settings(ctx context.Context) (model.Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.settings.WinnerID == nil {
		return model.Settings{}, nil
	}
	id := *s.settings.WinnerID
	return model.Settings{WinnerID: &id}, nil
}

// AnnounceWinner sets (or corrects) the winner and closes submissions.
func (s *MemoryStore) AnnounceWinner(ctx context.Context, nomineeID int) error {
	s.mu.Lock()
	if _, ok := s.byID[nomineeID]; !ok {
		s.mu.Unlock()
		return ErrUnknownNominee
	}
	id := nomineeID
	s.settings.WinnerID = &id
	s.mu.Unlock()

	s.publish(ctx, pubsub.TopicSettings)
	return nil
}

// ResetWinner reopens the contest.
func (s *MemoryStore) ResetWinner(ctx context.Context) error {
	s.mu.Lock()
	s.settings.WinnerID = nil
	s.mu.Unlock()

	s.publish(ctx, pubsub.TopicSettings)
	return nil
}
