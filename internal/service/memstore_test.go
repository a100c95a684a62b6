package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/ny-kanto/mall-api/internal/domain"
	"github.com/ny-kanto/mall-api/internal/event"
	apperrors "github.com/ny-kanto/mall-api/pkg/errors"
)

// memStore implements ReviewRepository and RatableRepository in memory with
// the same observable behavior as the Postgres repositories.
type memStore struct {
	mu       sync.Mutex
	reviews  map[string]*domain.Review
	ratables map[domain.EntityKind]map[string]domain.RatingSummary
	clock    time.Time

	setRatingErr error
}

func newMemStore() *memStore {
	return &memStore{
		reviews: map[string]*domain.Review{},
		ratables: map[domain.EntityKind]map[string]domain.RatingSummary{
			domain.EntityBoutique: {},
			domain.EntityProduit:  {},
		},
		clock: time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC),
	}
}

func (m *memStore) addEntity(kind domain.EntityKind, id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ratables[kind][id] = domain.RatingSummary{}
}

func (m *memStore) rating(kind domain.EntityKind, id string) domain.RatingSummary {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ratables[kind][id]
}

func (m *memStore) rows(kind domain.EntityKind, id string) []domain.Review {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Review
	for _, r := range m.reviews {
		if r.EntityType == kind && r.EntityID == id {
			out = append(out, *r)
		}
	}
	return out
}

// tick returns strictly increasing timestamps so ordering is deterministic.
func (m *memStore) tick() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

func (m *memStore) Upsert(_ context.Context, review *domain.Review) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.tick()
	for _, r := range m.reviews {
		if r.UserID == review.UserID && r.EntityType == review.EntityType && r.EntityID == review.EntityID {
			r.Note = review.Note
			r.Commentaire = review.Commentaire
			r.UpdatedAt = now
			*review = *r
			return false, nil
		}
	}

	stored := *review
	stored.CreatedAt = now
	stored.UpdatedAt = now
	m.reviews[stored.ID] = &stored
	*review = stored
	return true, nil
}

func (m *memStore) Delete(_ context.Context, id, userID string) (*domain.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reviews[id]
	if !ok || r.UserID != userID {
		return nil, apperrors.NotFound("avis", id)
	}
	delete(m.reviews, id)
	return r, nil
}

func (m *memStore) CountByEntity(_ context.Context, kind domain.EntityKind, entityID string) (int, error) {
	return len(m.rows(kind, entityID)), nil
}

func (m *memStore) ListByEntity(_ context.Context, kind domain.EntityKind, entityID string, limit, skip int) ([]domain.Review, error) {
	rows := m.rows(kind, entityID)
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].CreatedAt.Equal(rows[j].CreatedAt) {
			return rows[i].CreatedAt.After(rows[j].CreatedAt)
		}
		return rows[i].ID > rows[j].ID
	})
	if skip >= len(rows) {
		return []domain.Review{}, nil
	}
	end := skip + limit
	if end > len(rows) {
		end = len(rows)
	}
	return rows[skip:end], nil
}

func (m *memStore) Summary(_ context.Context, kind domain.EntityKind, entityID string) (domain.RatingSummary, error) {
	rows := m.rows(kind, entityID)
	var sum float64
	for _, r := range rows {
		sum += r.Note
	}
	if len(rows) == 0 {
		return domain.NewRatingSummary(0, 0), nil
	}
	return domain.NewRatingSummary(sum/float64(len(rows)), len(rows)), nil
}

func (m *memStore) Exists(_ context.Context, kind domain.EntityKind, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entities, ok := m.ratables[kind]
	if !ok {
		return false, apperrors.InvalidInput("unknown entity type")
	}
	_, ok = entities[id]
	return ok, nil
}

func (m *memStore) SetRating(_ context.Context, kind domain.EntityKind, id string, summary domain.RatingSummary) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setRatingErr != nil {
		return m.setRatingErr
	}
	if _, ok := m.ratables[kind][id]; !ok {
		return apperrors.NotFound(string(kind), id)
	}
	m.ratables[kind][id] = summary
	return nil
}

var errStoreDown = errors.New("store unavailable")

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestReviewService(store *memStore) *ReviewService {
	logger := newTestLogger()
	producer := event.NewProducer(nil, logger)
	aggregator := NewRatingAggregator(store, store, producer, logger)
	return NewReviewService(store, store, aggregator, producer, logger)
}

func strPtr(s string) *string {
	return &s
}
