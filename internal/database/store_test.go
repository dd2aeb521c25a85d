package database

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/talent/internal/config"
	"github.com/JonMunkholm/talent/internal/core"
	"github.com/JonMunkholm/talent/internal/extract"
)

// testPool connects to TEST_DATABASE_URL, applies migrations and empties
// the candidates table. Tests using it are skipped when the variable is unset.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := Connect(ctx, config.DatabaseConfig{
		URL:             url,
		MaxConns:        4,
		MinConns:        1,
		MaxConnLifetime: time.Hour,
		MaxConnIdleTime: time.Minute,
	})
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = Migrate(ctx, pool)
	require.NoError(t, err)

	_, err = pool.Exec(ctx, "TRUNCATE candidates, candidate_audit_log")
	require.NoError(t, err)

	return pool
}

func seed(t *testing.T, s *Store, name, surname string, tier extract.Tier, years int, available bool) core.Candidate {
	t.Helper()
	c, err := s.InsertCandidate(context.Background(), core.NewCandidate{
		Name:            name,
		Surname:         surname,
		Tier:            tier,
		YearsExperience: years,
		Availability:    available,
	})
	require.NoError(t, err)
	return c
}

func TestStore_CRUD(t *testing.T) {
	s := NewStore(testPool(t))
	ctx := context.Background()

	created := seed(t, s, "Ana", "Gil", extract.TierSenior, 7, true)
	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	got, err := s.GetCandidate(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Name, got.Name)
	assert.Equal(t, extract.TierSenior, got.Tier)

	years := 1
	tier := extract.TierJunior
	updated, err := s.UpdateCandidate(ctx, created.ID, core.CandidatePatch{Tier: &tier, YearsExperience: &years})
	require.NoError(t, err)
	assert.Equal(t, extract.TierJunior, updated.Tier)
	assert.Equal(t, 1, updated.YearsExperience)
	assert.Equal(t, "Gil", updated.Surname)
	assert.True(t, updated.Availability)

	require.NoError(t, s.DeleteCandidate(ctx, created.ID))
	_, err = s.GetCandidate(ctx, created.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.ErrorIs(t, s.DeleteCandidate(ctx, created.ID), core.ErrNotFound)

	_, err = s.UpdateCandidate(ctx, uuid.New(), core.CandidatePatch{Tier: &tier})
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestStore_ListAndAggregate(t *testing.T) {
	s := NewStore(testPool(t))
	ctx := context.Background()

	seed(t, s, "Ana", "Gil", extract.TierSenior, 8, true)
	seed(t, s, "Luis", "Mora", extract.TierJunior, 1, false)
	seed(t, s, "Marta", "Anaya", extract.TierJunior, 3, true)

	rows, total, err := s.ListCandidates(ctx, core.Query{Search: "ana"})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, rows, 2)

	rows, total, err = s.ListCandidates(ctx, core.Query{Search: "ana gil"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "Ana", rows[0].Name)

	available := true
	rows, total, err = s.ListCandidates(ctx, core.Query{
		Tier:         extract.TierJunior,
		Availability: &available,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "Marta", rows[0].Name)

	rows, total, err = s.ListCandidates(ctx, core.Query{
		SortBy: core.SortYearsExperience,
		Desc:   true,
		Limit:  2,
		Offset: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, rows, 2)
	assert.Equal(t, 3, rows[0].YearsExperience)
	assert.Equal(t, 1, rows[1].YearsExperience)

	agg, err := s.Aggregate(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, agg.Total)
	assert.Equal(t, 2, agg.Available)
	assert.Equal(t, 2, agg.ByTier[extract.TierJunior])
	assert.Equal(t, 1, agg.ByTier[extract.TierSenior])
	assert.InDelta(t, 4.0, agg.AverageYears, 0.001)

	require.NoError(t, s.Ping(ctx))
}

func TestStore_AggregateEmpty(t *testing.T) {
	s := NewStore(testPool(t))

	agg, err := s.Aggregate(context.Background())
	require.NoError(t, err)
	assert.Zero(t, agg.Total)
	assert.Zero(t, agg.AverageYears)
	assert.Empty(t, agg.ByTier)
}

func TestStore_CheckConstraints(t *testing.T) {
	s := NewStore(testPool(t))

	_, err := s.InsertCandidate(context.Background(), core.NewCandidate{
		Name: "Ana", Surname: "Gil", Tier: extract.TierSenior, YearsExperience: 51,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "violates check constraint")
}

func TestStore_AuditLog(t *testing.T) {
	s := NewStore(testPool(t))
	ctx := context.Background()
	id := uuid.New()

	first, err := s.InsertAudit(ctx, core.AuditRecord{
		Action:      core.ActionUpload,
		Severity:    core.SeverityLow,
		CandidateID: id,
		IPAddress:   "203.0.113.7",
		FileName:    "cv.xlsx",
		Changes:     map[string]any{"tier": "senior", "yearsExperience": 4},
	})
	require.NoError(t, err)
	assert.Equal(t, "cv.xlsx", first.FileName)
	assert.Empty(t, first.UserAgent)

	_, err = s.InsertAudit(ctx, core.AuditRecord{Action: core.ActionDelete, Severity: core.SeverityHigh, CandidateID: id})
	require.NoError(t, err)

	entries, err := s.ListAudit(ctx, id, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, core.ActionDelete, entries[0].Action)
	assert.Nil(t, entries[0].Changes)
	assert.Equal(t, core.ActionUpload, entries[1].Action)
	assert.Equal(t, "senior", entries[1].Changes["tier"])
	assert.Equal(t, float64(4), entries[1].Changes["yearsExperience"])

	entries, err = s.ListAudit(ctx, id, 1)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	entries, err = s.ListAudit(ctx, uuid.New(), 10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
