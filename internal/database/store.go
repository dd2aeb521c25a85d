package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"golang.org/x/sync/errgroup"

	"github.com/JonMunkholm/talent/internal/core"
	"github.com/JonMunkholm/talent/internal/extract"
)

const (
	tableCandidates = "candidates"

	colID              = "id"
	colName            = "name"
	colSurname         = "surname"
	colTier            = "tier"
	colYearsExperience = "years_experience"
	colAvailability    = "availability"
	colCreatedAt       = "created_at"
	colUpdatedAt       = "updated_at"
)

var candidateColumns = []string{
	colID, colName, colSurname, colTier, colYearsExperience,
	colAvailability, colCreatedAt, colUpdatedAt,
}

// sortColumns maps API sort fields to database columns.
var sortColumns = map[core.SortField]string{
	core.SortCreatedAt:       colCreatedAt,
	core.SortName:            colName,
	core.SortSurname:         colSurname,
	core.SortYearsExperience: colYearsExperience,
	core.SortTier:            colTier,
}

// Store implements core.Store on PostgreSQL.
type Store struct {
	db DBTX
}

var _ core.Store = (*Store)(nil)

// NewStore returns a Store running queries on db.
func NewStore(db DBTX) *Store {
	return &Store{db: db}
}

func selectColumns() string {
	quoted := make([]string, len(candidateColumns))
	for i, c := range candidateColumns {
		quoted[i] = quoteIdentifier(c)
	}
	return strings.Join(quoted, ", ")
}

func scanCandidate(row pgx.Row) (core.Candidate, error) {
	var (
		c    core.Candidate
		id   pgtype.UUID
		tier string
	)
	err := row.Scan(&id, &c.Name, &c.Surname, &tier, &c.YearsExperience,
		&c.Availability, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return core.Candidate{}, err
	}
	c.ID = uuid.UUID(id.Bytes)
	c.Tier = extract.Tier(tier)
	return c, nil
}

func pgUUID(id uuid.UUID) pgtype.UUID {
	return pgtype.UUID{Bytes: id, Valid: true}
}

// InsertCandidate stores c under a new random id.
func (s *Store) InsertCandidate(ctx context.Context, c core.NewCandidate) (core.Candidate, error) {
	query := fmt.Sprintf(
		"INSERT INTO %s (%s, %s, %s, %s, %s, %s) VALUES ($1, $2, $3, $4, $5, $6) RETURNING %s",
		quoteIdentifier(tableCandidates),
		quoteIdentifier(colID), quoteIdentifier(colName), quoteIdentifier(colSurname),
		quoteIdentifier(colTier), quoteIdentifier(colYearsExperience), quoteIdentifier(colAvailability),
		selectColumns(),
	)

	row := s.db.QueryRow(ctx, query,
		pgUUID(uuid.New()), c.Name, c.Surname, string(c.Tier), c.YearsExperience, c.Availability)
	return scanCandidate(row)
}

// GetCandidate returns the candidate with id or core.ErrNotFound.
func (s *Store) GetCandidate(ctx context.Context, id uuid.UUID) (core.Candidate, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = $1",
		selectColumns(), quoteIdentifier(tableCandidates), quoteIdentifier(colID))

	c, err := scanCandidate(s.db.QueryRow(ctx, query, pgUUID(id)))
	if errors.Is(err, pgx.ErrNoRows) {
		return core.Candidate{}, core.ErrNotFound
	}
	return c, err
}

// UpdateCandidate applies the non-nil fields of p and bumps updated_at.
func (s *Store) UpdateCandidate(ctx context.Context, id uuid.UUID, p core.CandidatePatch) (core.Candidate, error) {
	var tier *string
	if p.Tier != nil {
		t := string(*p.Tier)
		tier = &t
	}

	query := fmt.Sprintf(`UPDATE %[1]s SET
		%[2]s = COALESCE($2, %[2]s),
		%[3]s = COALESCE($3, %[3]s),
		%[4]s = COALESCE($4, %[4]s),
		%[5]s = COALESCE($5, %[5]s),
		%[6]s = COALESCE($6, %[6]s),
		%[7]s = $7
		WHERE %[8]s = $1
		RETURNING %[9]s`,
		quoteIdentifier(tableCandidates),
		quoteIdentifier(colName),
		quoteIdentifier(colSurname),
		quoteIdentifier(colTier),
		quoteIdentifier(colYearsExperience),
		quoteIdentifier(colAvailability),
		quoteIdentifier(colUpdatedAt),
		quoteIdentifier(colID),
		selectColumns(),
	)

	row := s.db.QueryRow(ctx, query, pgUUID(id),
		p.Name, p.Surname, tier, p.YearsExperience, p.Availability, time.Now().UTC())
	c, err := scanCandidate(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return core.Candidate{}, core.ErrNotFound
	}
	return c, err
}

// DeleteCandidate removes the candidate with id or returns core.ErrNotFound.
func (s *Store) DeleteCandidate(ctx context.Context, id uuid.UUID) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE %s = $1",
		quoteIdentifier(tableCandidates), quoteIdentifier(colID))

	tag, err := s.db.Exec(ctx, query, pgUUID(id))
	if err != nil {
		return fmt.Errorf("delete candidate: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return core.ErrNotFound
	}
	return nil
}

// ListCandidates returns the rows selected by q and the total number of
// matches. The page and the count are fetched concurrently.
func (s *Store) ListCandidates(ctx context.Context, q core.Query) ([]core.Candidate, int, error) {
	wb := NewWhereBuilder()
	wb.AddSearch(q.Search)
	if q.Tier != "" {
		wb.AddEquals(colTier, string(q.Tier))
	}
	if q.Availability != nil {
		wb.AddEquals(colAvailability, *q.Availability)
	}
	where, args := wb.Build()

	g, gctx := errgroup.WithContext(ctx)

	var total int
	g.Go(func() error {
		countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s%s", quoteIdentifier(tableCandidates), where)
		if err := s.db.QueryRow(gctx, countQuery, args...).Scan(&total); err != nil {
			return fmt.Errorf("count candidates: %w", err)
		}
		return nil
	})

	var candidates []core.Candidate
	g.Go(func() error {
		query, pageArgs := pageQuery(where, args, q)
		rows, err := s.db.Query(gctx, query, pageArgs...)
		if err != nil {
			return fmt.Errorf("query candidates: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			c, err := scanCandidate(rows)
			if err != nil {
				return fmt.Errorf("scan candidate: %w", err)
			}
			candidates = append(candidates, c)
		}
		return rows.Err()
	})

	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	return candidates, total, nil
}

// pageQuery builds the SELECT for one page. The args slice is copied so
// the concurrent count query keeps its own.
func pageQuery(where string, args []any, q core.Query) (string, []any) {
	query := fmt.Sprintf("SELECT %s FROM %s%s ORDER BY %s",
		selectColumns(), quoteIdentifier(tableCandidates), where, orderBy(q))

	out := append([]any(nil), args...)
	if q.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(out)+1, len(out)+2)
		out = append(out, q.Limit, q.Offset)
	}
	return query, out
}

// orderBy returns the ORDER BY list for q. The id tiebreaker keeps paging
// stable when sort values repeat.
func orderBy(q core.Query) string {
	col, ok := sortColumns[q.SortBy]
	if !ok {
		return fmt.Sprintf("%s DESC, %s ASC, %s ASC",
			quoteIdentifier(colCreatedAt), quoteIdentifier(colName), quoteIdentifier(colID))
	}

	dir := "ASC"
	if q.Desc {
		dir = "DESC"
	}
	return fmt.Sprintf("%s %s, %s ASC", quoteIdentifier(col), dir, quoteIdentifier(colID))
}

// Aggregate computes the statistics figures with four concurrent queries.
func (s *Store) Aggregate(ctx context.Context) (core.Aggregates, error) {
	table := quoteIdentifier(tableCandidates)
	agg := core.Aggregates{ByTier: make(map[extract.Tier]int)}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return s.db.QueryRow(gctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", table)).Scan(&agg.Total)
	})

	g.Go(func() error {
		return s.db.QueryRow(gctx,
			fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s", table, quoteIdentifier(colAvailability)),
		).Scan(&agg.Available)
	})

	var avg pgtype.Float8
	g.Go(func() error {
		return s.db.QueryRow(gctx,
			fmt.Sprintf("SELECT AVG(%s)::float8 FROM %s", quoteIdentifier(colYearsExperience), table),
		).Scan(&avg)
	})

	byTier := make(map[extract.Tier]int)
	g.Go(func() error {
		rows, err := s.db.Query(gctx, fmt.Sprintf("SELECT %[1]s, COUNT(*) FROM %[2]s GROUP BY %[1]s",
			quoteIdentifier(colTier), table))
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var (
				tier string
				n    int
			)
			if err := rows.Scan(&tier, &n); err != nil {
				return err
			}
			byTier[extract.Tier(tier)] = n
		}
		return rows.Err()
	})

	if err := g.Wait(); err != nil {
		return core.Aggregates{}, fmt.Errorf("aggregate: %w", err)
	}

	agg.ByTier = byTier
	if avg.Valid {
		agg.AverageYears = avg.Float64
	}
	return agg, nil
}

// Ping checks the connection when the underlying handle supports it.
func (s *Store) Ping(ctx context.Context) error {
	if p, ok := s.db.(interface{ Ping(context.Context) error }); ok {
		return p.Ping(ctx)
	}
	return nil
}
