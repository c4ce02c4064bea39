package leads

import (
	"context"
	"sort"
	"sync"
	"time"
)

// ListFilter narrows and pages lead listings.
type ListFilter struct {
	Limit    int
	Offset   int
	MinScore int
}

// Repository defines the interface for lead storage.
//
// Upsert must be atomic with respect to the session identifier: concurrent or
// repeated calls for the same session never produce two records, and created
// is true only on the call that first creates the row.
type Repository interface {
	Upsert(ctx context.Context, lead *Lead) (created bool, err error)
	GetBySession(ctx context.Context, sessionID string) (*Lead, error)
	List(ctx context.Context, filter ListFilter) ([]*Lead, error)
}

// InMemoryRepository keeps leads in a mutex-guarded map keyed by session id.
// Used by the CLI and by tests; the API server runs the Postgres repository.
type InMemoryRepository struct {
	mu    sync.RWMutex
	leads map[string]*Lead
	seq   int64
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		leads: make(map[string]*Lead),
	}
}

// Upsert inserts or replaces the lead for its session id.
func (r *InMemoryRepository) Upsert(ctx context.Context, lead *Lead) (bool, error) {
	if lead == nil || lead.SessionID == "" {
		return false, ErrMissingSessionID
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	stored := *lead
	if existing, ok := r.leads[lead.SessionID]; ok {
		stored.ID = existing.ID
		stored.CreatedAt = existing.CreatedAt
		stored.UpdatedAt = now
		r.leads[lead.SessionID] = &stored
		return false, nil
	}

	r.seq++
	stored.ID = r.seq
	stored.CreatedAt = now
	stored.UpdatedAt = now
	r.leads[lead.SessionID] = &stored
	return true, nil
}

// GetBySession retrieves the lead for a session id.
func (r *InMemoryRepository) GetBySession(ctx context.Context, sessionID string) (*Lead, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	lead, ok := r.leads[sessionID]
	if !ok {
		return nil, ErrLeadNotFound
	}
	copied := *lead
	return &copied, nil
}

// List returns stored leads, newest first.
func (r *InMemoryRepository) List(ctx context.Context, filter ListFilter) ([]*Lead, error) {
	r.mu.RLock()
	all := make([]*Lead, 0, len(r.leads))
	for _, lead := range r.leads {
		if lead.Score < filter.MinScore {
			continue
		}
		copied := *lead
		all = append(all, &copied)
	}
	r.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	if filter.Offset >= len(all) {
		return []*Lead{}, nil
	}
	all = all[filter.Offset:]
	if filter.Limit > 0 && len(all) > filter.Limit {
		all = all[:filter.Limit]
	}
	return all, nil
}
