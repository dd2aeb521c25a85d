package web

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/talent/internal/core"
	"github.com/JonMunkholm/talent/internal/extract"
)

// memStore is an in-memory core.Store for handler tests.
type memStore struct {
	mu      sync.Mutex
	rows    map[uuid.UUID]core.Candidate
	audit   []core.AuditEntry
	clock   time.Time
	pingErr error
}

func newMemStore() *memStore {
	return &memStore{
		rows:  make(map[uuid.UUID]core.Candidate),
		clock: time.Date(2025, 6, 10, 10, 0, 0, 0, time.UTC),
	}
}

func (m *memStore) InsertCandidate(_ context.Context, nc core.NewCandidate) (core.Candidate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.clock = m.clock.Add(time.Minute)
	c := core.Candidate{
		ID:              uuid.New(),
		Name:            nc.Name,
		Surname:         nc.Surname,
		Tier:            nc.Tier,
		YearsExperience: nc.YearsExperience,
		Availability:    nc.Availability,
		CreatedAt:       m.clock,
		UpdatedAt:       m.clock,
	}
	m.rows[c.ID] = c
	return c, nil
}

func (m *memStore) GetCandidate(_ context.Context, id uuid.UUID) (core.Candidate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.rows[id]
	if !ok {
		return core.Candidate{}, core.ErrNotFound
	}
	return c, nil
}

func (m *memStore) UpdateCandidate(_ context.Context, id uuid.UUID, p core.CandidatePatch) (core.Candidate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.rows[id]
	if !ok {
		return core.Candidate{}, core.ErrNotFound
	}
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Surname != nil {
		c.Surname = *p.Surname
	}
	if p.Tier != nil {
		c.Tier = *p.Tier
	}
	if p.YearsExperience != nil {
		c.YearsExperience = *p.YearsExperience
	}
	if p.Availability != nil {
		c.Availability = *p.Availability
	}
	m.rows[id] = c
	return c, nil
}

func (m *memStore) DeleteCandidate(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.rows[id]; !ok {
		return core.ErrNotFound
	}
	delete(m.rows, id)
	return nil
}

// ListCandidates supports the tier, availability and search filters and
// the default newest-first order.
func (m *memStore) ListCandidates(_ context.Context, q core.Query) ([]core.Candidate, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []core.Candidate
	for _, c := range m.rows {
		if q.Tier != "" && c.Tier != q.Tier {
			continue
		}
		if q.Availability != nil && c.Availability != *q.Availability {
			continue
		}
		if q.Search != "" && !strings.Contains(strings.ToLower(c.FullName()), strings.ToLower(q.Search)) {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })

	total := len(out)
	if q.Offset < len(out) {
		out = out[q.Offset:]
	} else {
		out = nil
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, total, nil
}

func (m *memStore) Aggregate(_ context.Context) (core.Aggregates, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	agg := core.Aggregates{ByTier: make(map[extract.Tier]int)}
	sum := 0
	for _, c := range m.rows {
		agg.Total++
		if c.Availability {
			agg.Available++
		}
		agg.ByTier[c.Tier]++
		sum += c.YearsExperience
	}
	if agg.Total > 0 {
		agg.AverageYears = float64(sum) / float64(agg.Total)
	}
	return agg, nil
}

func (m *memStore) Ping(context.Context) error {
	return m.pingErr
}

func (m *memStore) InsertAudit(_ context.Context, rec core.AuditRecord) (core.AuditEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.clock = m.clock.Add(time.Second)
	e := core.AuditEntry{
		ID:          uuid.New(),
		Action:      rec.Action,
		Severity:    rec.Severity,
		CandidateID: rec.CandidateID,
		IPAddress:   rec.IPAddress,
		UserAgent:   rec.UserAgent,
		FileName:    rec.FileName,
		Changes:     rec.Changes,
		CreatedAt:   m.clock,
	}
	m.audit = append(m.audit, e)
	return e, nil
}

func (m *memStore) ListAudit(_ context.Context, candidateID uuid.UUID, limit int) ([]core.AuditEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []core.AuditEntry
	for i := len(m.audit) - 1; i >= 0 && len(out) < limit; i-- {
		if m.audit[i].CandidateID == candidateID {
			out = append(out, m.audit[i])
		}
	}
	return out, nil
}
