package core

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) InsertCandidate(ctx context.Context, c NewCandidate) (Candidate, error) {
	args := m.Called(ctx, c)
	if fn, ok := args.Get(0).(func(context.Context, NewCandidate) Candidate); ok {
		return fn(ctx, c), args.Error(1)
	}
	return args.Get(0).(Candidate), args.Error(1)
}

func (m *mockStore) GetCandidate(ctx context.Context, id uuid.UUID) (Candidate, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(Candidate), args.Error(1)
}

func (m *mockStore) UpdateCandidate(ctx context.Context, id uuid.UUID, p CandidatePatch) (Candidate, error) {
	args := m.Called(ctx, id, p)
	return args.Get(0).(Candidate), args.Error(1)
}

func (m *mockStore) DeleteCandidate(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockStore) ListCandidates(ctx context.Context, q Query) ([]Candidate, int, error) {
	args := m.Called(ctx, q)
	rows, _ := args.Get(0).([]Candidate)
	return rows, args.Int(1), args.Error(2)
}

func (m *mockStore) Aggregate(ctx context.Context) (Aggregates, error) {
	args := m.Called(ctx)
	return args.Get(0).(Aggregates), args.Error(1)
}

func (m *mockStore) InsertAudit(ctx context.Context, rec AuditRecord) (AuditEntry, error) {
	args := m.Called(ctx, rec)
	return args.Get(0).(AuditEntry), args.Error(1)
}

func (m *mockStore) ListAudit(ctx context.Context, candidateID uuid.UUID, limit int) ([]AuditEntry, error) {
	args := m.Called(ctx, candidateID, limit)
	entries, _ := args.Get(0).([]AuditEntry)
	return entries, args.Error(1)
}

func (m *mockStore) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// echoInsert makes InsertCandidate return the stored candidate with a fresh id.
func echoInsert(m *mockStore) {
	m.On("InsertCandidate", mock.Anything, mock.AnythingOfType("core.NewCandidate")).
		Return(func(_ context.Context, nc NewCandidate) Candidate {
			return Candidate{
				ID:              uuid.New(),
				Name:            nc.Name,
				Surname:         nc.Surname,
				Tier:            nc.Tier,
				YearsExperience: nc.YearsExperience,
				Availability:    nc.Availability,
			}
		}, nil)
}

// allowAudit accepts any audit write. Tests that inspect audit records use
// newAuditedService instead.
func allowAudit(m *mockStore) {
	m.On("InsertAudit", mock.Anything, mock.Anything).Return(AuditEntry{}, nil).Maybe()
}
