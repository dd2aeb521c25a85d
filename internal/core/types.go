package core

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/talent/internal/extract"
)

// Candidate is a stored candidate profile.
type Candidate struct {
	ID              uuid.UUID    `json:"id"`
	Name            string       `json:"name"`
	Surname         string       `json:"surname"`
	Tier            extract.Tier `json:"tier"`
	YearsExperience int          `json:"yearsExperience"`
	Availability    bool         `json:"availability"`
	CreatedAt       time.Time    `json:"createdAt"`
	UpdatedAt       time.Time    `json:"updatedAt"`
}

// FullName joins name and surname.
func (c Candidate) FullName() string {
	return c.Name + " " + c.Surname
}

// CreateParams is the raw input for a new candidate. Pointer fields
// distinguish "not supplied" from the zero value.
type CreateParams struct {
	Name            string `json:"name"`
	Surname         string `json:"surname"`
	Tier            string `json:"tier"`
	YearsExperience *int   `json:"yearsExperience"`
	Availability    *bool  `json:"availability"`
}

// UpdateParams is a partial update. Nil fields are left unchanged.
type UpdateParams struct {
	Name            *string `json:"name"`
	Surname         *string `json:"surname"`
	Tier            *string `json:"tier"`
	YearsExperience *int    `json:"yearsExperience"`
	Availability    *bool   `json:"availability"`
}

// NewCandidate is a validated and normalized candidate ready to persist.
type NewCandidate struct {
	Name            string
	Surname         string
	Tier            extract.Tier
	YearsExperience int
	Availability    bool
}

// CandidatePatch is a validated UpdateParams.
type CandidatePatch struct {
	Name            *string
	Surname         *string
	Tier            *extract.Tier
	YearsExperience *int
	Availability    *bool
}

// Empty reports whether the patch changes nothing.
func (p CandidatePatch) Empty() bool {
	return p.Name == nil && p.Surname == nil && p.Tier == nil &&
		p.YearsExperience == nil && p.Availability == nil
}

// SortField is a column candidates can be ordered by.
type SortField string

const (
	SortCreatedAt       SortField = "createdAt"
	SortName            SortField = "name"
	SortSurname         SortField = "surname"
	SortYearsExperience SortField = "yearsExperience"
	SortTier            SortField = "tier"
)

// SortFields lists every accepted SortField.
var SortFields = []SortField{SortCreatedAt, SortName, SortSurname, SortYearsExperience, SortTier}

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// ListParams is the raw listing request as received from a client.
type ListParams struct {
	Page         int
	Limit        int
	Search       string
	Tier         string
	Availability *bool
	SortBy       string
	SortOrder    string
}

// Query is a validated ListParams in the form the Store consumes.
// An empty SortBy means the default order: newest first, then by name.
// A Limit of zero returns every matching row.
type Query struct {
	Offset       int
	Limit        int
	Search       string
	Tier         extract.Tier
	Availability *bool
	SortBy       SortField
	Desc         bool
}

// CandidatePage is one page of a listing.
type CandidatePage struct {
	Data       []Candidate `json:"data"`
	Total      int         `json:"total"`
	Page       int         `json:"page"`
	Limit      int         `json:"limit"`
	TotalPages int         `json:"totalPages"`
}

// Aggregates are the raw numbers a Store computes for Statistics.
type Aggregates struct {
	Total        int
	Available    int
	ByTier       map[extract.Tier]int
	AverageYears float64
}

// Statistics summarizes the stored candidates.
type Statistics struct {
	Total             int                  `json:"total"`
	Available         int                  `json:"available"`
	Unavailable       int                  `json:"unavailable"`
	ByTier            map[extract.Tier]int `json:"byTier"`
	AverageExperience int                  `json:"averageExperience"`
}

// Preview is the outcome of running the extraction engine on a workbook
// without persisting anything.
type Preview struct {
	FileName string              `json:"fileName,omitempty"`
	Valid    bool                `json:"valid"`
	Analysis extract.Analysis    `json:"analysis"`
	Errors   extract.FieldErrors `json:"errors,omitempty"`
	Message  string              `json:"message,omitempty"`
	Code     string              `json:"code,omitempty"`
	Action   string              `json:"action,omitempty"`
}

// Describe fills the user-facing message fields from msg.
func (p *Preview) Describe(msg UserMessage) {
	p.Message, p.Code, p.Action = msg.Message, msg.Code, msg.Action
}

// ExpectedFormat describes the workbook layout uploads should follow.
type ExpectedFormat struct {
	Headers    []string          `json:"headers"`
	Example    []string          `json:"example"`
	Accepted   map[string]string `json:"accepted"`
	Notes      []string          `json:"notes"`
	Extensions []string          `json:"extensions"`
	MaxSize    int64             `json:"maxSize"`
}

// Store persists candidates and their audit trail.
//
// GetCandidate, UpdateCandidate and DeleteCandidate return ErrNotFound
// for unknown ids. ListAudit returns entries newest first.
type Store interface {
	InsertCandidate(ctx context.Context, c NewCandidate) (Candidate, error)
	GetCandidate(ctx context.Context, id uuid.UUID) (Candidate, error)
	UpdateCandidate(ctx context.Context, id uuid.UUID, p CandidatePatch) (Candidate, error)
	DeleteCandidate(ctx context.Context, id uuid.UUID) error
	ListCandidates(ctx context.Context, q Query) ([]Candidate, int, error)
	Aggregate(ctx context.Context) (Aggregates, error)
	InsertAudit(ctx context.Context, rec AuditRecord) (AuditEntry, error)
	ListAudit(ctx context.Context, candidateID uuid.UUID, limit int) ([]AuditEntry, error)
	Ping(ctx context.Context) error
}
