package core

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/talent/internal/logging"
)

// AuditAction represents the type of change being audited.
type AuditAction string

const (
	ActionCreate AuditAction = "create"
	ActionUpload AuditAction = "upload"
	ActionUpdate AuditAction = "update"
	ActionDelete AuditAction = "delete"
)

// AuditSeverity represents the severity level of an audit entry.
type AuditSeverity string

const (
	SeverityLow    AuditSeverity = "low"
	SeverityMedium AuditSeverity = "medium"
	SeverityHigh   AuditSeverity = "high"
)

// historyLimit caps the entries returned by History.
const historyLimit = 100

// AuditEntry is one recorded change to a candidate. Entries outlive the
// candidate they describe.
type AuditEntry struct {
	ID          uuid.UUID      `json:"id"`
	Action      AuditAction    `json:"action"`
	Severity    AuditSeverity  `json:"severity"`
	CandidateID uuid.UUID      `json:"candidateId"`
	IPAddress   string         `json:"ipAddress,omitempty"`
	UserAgent   string         `json:"userAgent,omitempty"`
	FileName    string         `json:"fileName,omitempty"`
	Changes     map[string]any `json:"changes,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
}

// AuditLogParams contains parameters for creating an audit log entry.
// Client details are taken from the context.
type AuditLogParams struct {
	Action      AuditAction
	CandidateID uuid.UUID
	FileName    string
	Changes     map[string]any
}

// AuditRecord is an audit entry ready to persist.
type AuditRecord struct {
	Action      AuditAction
	Severity    AuditSeverity
	CandidateID uuid.UUID
	IPAddress   string
	UserAgent   string
	FileName    string
	Changes     map[string]any
}

// determineSeverity returns the appropriate severity for an action.
func determineSeverity(action AuditAction) AuditSeverity {
	switch action {
	case ActionDelete:
		return SeverityHigh
	case ActionUpdate:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// logAudit records a change. The change itself has already been committed,
// so a failed write is logged rather than returned.
func (s *Service) logAudit(ctx context.Context, p AuditLogParams) {
	rec := AuditRecord{
		Action:      p.Action,
		Severity:    determineSeverity(p.Action),
		CandidateID: p.CandidateID,
		IPAddress:   GetIPAddressFromContext(ctx),
		UserAgent:   GetUserAgentFromContext(ctx),
		FileName:    p.FileName,
		Changes:     p.Changes,
	}
	if _, err := s.store.InsertAudit(ctx, rec); err != nil {
		logging.FromContext(ctx).Error("audit log write failed",
			"action", p.Action,
			"candidate_id", p.CandidateID,
			"error", err,
		)
	}
}

// History returns the most recent changes to the candidate with id, newest
// first. A deleted candidate keeps its history.
func (s *Service) History(ctx context.Context, id uuid.UUID) ([]AuditEntry, error) {
	entries, err := s.store.ListAudit(ctx, id, historyLimit)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []AuditEntry{}
	}
	return entries, nil
}

// candidateChanges lists the stored fields of a new candidate.
func candidateChanges(c Candidate) map[string]any {
	return map[string]any{
		"name":            c.Name,
		"surname":         c.Surname,
		"tier":            c.Tier,
		"yearsExperience": c.YearsExperience,
		"availability":    c.Availability,
	}
}

// patchChanges lists the fields a patch sets.
func patchChanges(p CandidatePatch) map[string]any {
	changes := make(map[string]any)
	if p.Name != nil {
		changes["name"] = *p.Name
	}
	if p.Surname != nil {
		changes["surname"] = *p.Surname
	}
	if p.Tier != nil {
		changes["tier"] = *p.Tier
	}
	if p.YearsExperience != nil {
		changes["yearsExperience"] = *p.YearsExperience
	}
	if p.Availability != nil {
		changes["availability"] = *p.Availability
	}
	return changes
}
