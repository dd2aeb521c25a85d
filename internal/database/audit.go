package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JonMunkholm/talent/internal/core"
)

const auditColumns = `id, action, severity, candidate_id, ip_address, user_agent, file_name, changes, created_at`

// InsertAudit stores one audit record under a new id.
func (s *Store) InsertAudit(ctx context.Context, rec core.AuditRecord) (core.AuditEntry, error) {
	var changes []byte
	if rec.Changes != nil {
		var err error
		if changes, err = json.Marshal(rec.Changes); err != nil {
			return core.AuditEntry{}, fmt.Errorf("encode audit changes: %w", err)
		}
	}

	row := s.db.QueryRow(ctx, `
		INSERT INTO candidate_audit_log
			(id, action, severity, candidate_id, ip_address, user_agent, file_name, changes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+auditColumns,
		pgUUID(uuid.New()),
		string(rec.Action),
		string(rec.Severity),
		pgUUID(rec.CandidateID),
		toPgText(rec.IPAddress),
		toPgText(rec.UserAgent),
		toPgText(rec.FileName),
		changes,
	)
	return scanAudit(row)
}

// ListAudit returns up to limit entries for a candidate, newest first.
func (s *Store) ListAudit(ctx context.Context, candidateID uuid.UUID, limit int) ([]core.AuditEntry, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+auditColumns+`
		FROM candidate_audit_log
		WHERE candidate_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2`,
		pgUUID(candidateID), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query audit log: %w", err)
	}
	defer rows.Close()

	var entries []core.AuditEntry
	for rows.Next() {
		e, err := scanAudit(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAudit(row scanner) (core.AuditEntry, error) {
	var (
		e                   core.AuditEntry
		id, candidateID     pgtype.UUID
		action, severity    string
		ip, userAgent, file pgtype.Text
		changes             []byte
	)
	if err := row.Scan(&id, &action, &severity, &candidateID, &ip, &userAgent, &file, &changes, &e.CreatedAt); err != nil {
		return core.AuditEntry{}, fmt.Errorf("scan audit entry: %w", err)
	}

	e.ID = uuid.UUID(id.Bytes)
	e.CandidateID = uuid.UUID(candidateID.Bytes)
	e.Action = core.AuditAction(action)
	e.Severity = core.AuditSeverity(severity)
	e.IPAddress, e.UserAgent, e.FileName = ip.String, userAgent.String, file.String

	if len(changes) > 0 {
		if err := json.Unmarshal(changes, &e.Changes); err != nil {
			return core.AuditEntry{}, fmt.Errorf("decode audit changes: %w", err)
		}
	}
	return e, nil
}

// toPgText maps "" to SQL NULL.
func toPgText(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: s != ""}
}
