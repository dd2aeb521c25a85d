package core

import (
	"context"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/JonMunkholm/talent/internal/config"
	"github.com/JonMunkholm/talent/internal/extract"
	"github.com/JonMunkholm/talent/internal/logging"
)

// Service provides the candidate operations shared by every frontend.
type Service struct {
	store         Store
	engine        *extract.Engine
	upload        config.UploadConfig
	uploadLimiter *UploadLimiter
}

// Upload is a workbook received from a client.
type Upload struct {
	FileName string
	Data     []byte
}

// NewService creates a Service backed by store. Tools that only preview
// workbooks or build templates may pass a nil store.
func NewService(store Store, cfg *config.Config) *Service {
	return &Service{
		store:         store,
		engine:        extract.New(extract.DefaultRules(), extract.WithUnzipLimit(unzipLimit(cfg.Upload))),
		upload:        cfg.Upload,
		uploadLimiter: NewUploadLimiter(cfg.Upload.MaxConcurrent, cfg.Upload.MaxWaitTime),
	}
}

// unzipRatio bounds how far an accepted upload may inflate when unzipped.
const unzipRatio = 50

func unzipLimit(u config.UploadConfig) int64 {
	if u.MaxFileSize <= 0 {
		return 0
	}
	return u.MaxFileSize * unzipRatio
}

// Engine returns the extraction engine used for uploads.
func (s *Service) Engine() *extract.Engine {
	return s.engine
}

// Create validates p, normalizes the names and stores the candidate.
// Unusual tier and experience combinations are logged but accepted.
func (s *Service) Create(ctx context.Context, p CreateParams) (Candidate, error) {
	return s.create(ctx, p, AuditLogParams{Action: ActionCreate})
}

func (s *Service) create(ctx context.Context, p CreateParams, audit AuditLogParams) (Candidate, error) {
	nc, err := ValidateCreate(p)
	if err != nil {
		return Candidate{}, err
	}

	log := logging.WithFields(ctx, clientAttrs(ctx)...)
	for _, w := range coherenceWarnings(nc.Tier, nc.YearsExperience) {
		log.Warn("candidate coherence", "warning", w, "tier", nc.Tier, "years", nc.YearsExperience)
	}

	c, err := s.store.InsertCandidate(ctx, nc)
	if err != nil {
		return Candidate{}, fmt.Errorf("insert candidate: %w", err)
	}

	log.Info("candidate created", "id", c.ID, "tier", c.Tier)

	audit.CandidateID, audit.Changes = c.ID, candidateChanges(c)
	s.logAudit(ctx, audit)
	return c, nil
}

// CreateFromWorkbook extracts tier, experience and availability from the
// workbook and stores them together with name and surname. Extraction
// errors are returned unchanged so callers can report every field.
func (s *Service) CreateFromWorkbook(ctx context.Context, name, surname string, file Upload) (Candidate, error) {
	var v validator
	if strings.TrimSpace(name) == "" {
		v.add("name", name, "is required")
	}
	if strings.TrimSpace(surname) == "" {
		v.add("surname", surname, "is required")
	}
	if err := v.err(); err != nil {
		return Candidate{}, err
	}

	rec, err := s.extract(ctx, file)
	if err != nil {
		return Candidate{}, err
	}

	years, avail := rec.YearsExperience, rec.Availability
	return s.create(ctx, CreateParams{
		Name:            name,
		Surname:         surname,
		Tier:            string(rec.Tier),
		YearsExperience: &years,
		Availability:    &avail,
	}, AuditLogParams{Action: ActionUpload, FileName: file.FileName})
}

func (s *Service) extract(ctx context.Context, file Upload) (extract.Record, error) {
	if err := s.checkFile(file); err != nil {
		return extract.Record{}, err
	}

	if s.upload.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.upload.Timeout)
		defer cancel()
	}

	log := logging.WithFields(ctx, "file", file.FileName, "size", len(file.Data))

	var a extract.Analysis
	err := s.uploadLimiter.Do(ctx, func() error {
		var err error
		a, err = s.engine.AnalyzeWorkbook(file.Data)
		return err
	})
	if err != nil {
		log.Info("extraction failed", "shape", a.Shape, "error", err)
		return extract.Record{}, err
	}

	log.Debug("extraction succeeded", "shape", a.Shape, "columns", a.Columns)
	return a.Record, nil
}

// PreviewWorkbook runs the extraction engine without storing anything.
// Field and structure problems are reported inside the Preview; only an
// unreadable or rejected file is an error.
func (s *Service) PreviewWorkbook(ctx context.Context, file Upload) (Preview, error) {
	if err := s.checkFile(file); err != nil {
		return Preview{}, err
	}

	p := Preview{FileName: file.FileName}
	err := s.uploadLimiter.Do(ctx, func() error {
		var err error
		p.Analysis, err = s.engine.AnalyzeWorkbook(file.Data)
		return err
	})

	var (
		fields    extract.FieldErrors
		structure *extract.StructureError
	)
	switch {
	case err == nil:
		p.Valid = true
	case errors.As(err, &fields):
		p.Errors = fields
		p.Describe(MapError(err))
	case errors.As(err, &structure):
		p.Describe(MapError(err))
	default:
		return Preview{}, err
	}
	return p, nil
}

func (s *Service) checkFile(file Upload) error {
	if file.FileName == "" && file.Data == nil {
		return ErrNoFile
	}

	ext := strings.ToLower(filepath.Ext(file.FileName))
	allowed := false
	for _, a := range AllowedExtensions {
		if ext == a {
			allowed = true
			break
		}
	}
	if !allowed {
		return &UnsupportedFileError{Name: file.FileName}
	}

	if len(file.Data) == 0 {
		return ErrEmptyFile
	}
	if size := int64(len(file.Data)); size > s.upload.MaxFileSize {
		return &FileTooLargeError{Size: size, Limit: s.upload.MaxFileSize}
	}
	return nil
}

// List returns one page of candidates matching p.
func (s *Service) List(ctx context.Context, p ListParams) (CandidatePage, error) {
	q, page, limit, err := ValidateList(p)
	if err != nil {
		return CandidatePage{}, err
	}

	rows, total, err := s.store.ListCandidates(ctx, q)
	if err != nil {
		return CandidatePage{}, fmt.Errorf("list candidates: %w", err)
	}
	if rows == nil {
		rows = []Candidate{}
	}

	logging.FromContext(ctx).Debug("listed candidates", "page", page, "returned", len(rows), "total", total)

	return CandidatePage{
		Data:       rows,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: (total + limit - 1) / limit,
	}, nil
}

// Get returns the candidate with id, or ErrNotFound.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (Candidate, error) {
	return s.store.GetCandidate(ctx, id)
}

// Update applies the supplied fields of p to the candidate with id.
func (s *Service) Update(ctx context.Context, id uuid.UUID, p UpdateParams) (Candidate, error) {
	patch, err := ValidateUpdate(p)
	if err != nil {
		return Candidate{}, err
	}

	log := logging.WithFields(ctx, append([]any{"id", id}, clientAttrs(ctx)...)...)
	if patch.Tier != nil && patch.YearsExperience != nil {
		for _, w := range coherenceWarnings(*patch.Tier, *patch.YearsExperience) {
			log.Warn("candidate coherence", "warning", w)
		}
	}

	c, err := s.store.UpdateCandidate(ctx, id, patch)
	if err != nil {
		return Candidate{}, err
	}

	log.Info("candidate updated")
	s.logAudit(ctx, AuditLogParams{Action: ActionUpdate, CandidateID: id, Changes: patchChanges(patch)})
	return c, nil
}

// Delete removes the candidate with id.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.store.DeleteCandidate(ctx, id); err != nil {
		return err
	}
	logging.WithFields(ctx, append([]any{"id", id}, clientAttrs(ctx)...)...).Info("candidate deleted")
	s.logAudit(ctx, AuditLogParams{Action: ActionDelete, CandidateID: id})
	return nil
}

// Statistics summarizes all stored candidates.
func (s *Service) Statistics(ctx context.Context) (Statistics, error) {
	agg, err := s.store.Aggregate(ctx)
	if err != nil {
		return Statistics{}, fmt.Errorf("aggregate candidates: %w", err)
	}

	byTier := map[extract.Tier]int{extract.TierJunior: 0, extract.TierSenior: 0}
	for t, n := range agg.ByTier {
		byTier[t] = n
	}

	return Statistics{
		Total:             agg.Total,
		Available:         agg.Available,
		Unavailable:       agg.Total - agg.Available,
		ByTier:            byTier,
		AverageExperience: int(math.Round(agg.AverageYears)),
	}, nil
}

// ExpectedFormat describes the workbook layout uploads should follow.
func (s *Service) ExpectedFormat() ExpectedFormat {
	return ExpectedFormat{
		Headers: []string{"Seniority", "Años Experiencia", "Disponibilidad"},
		Example: []string{"senior", "5", "true"},
		Accepted: map[string]string{
			string(extract.FieldTier):            "junior or senior",
			string(extract.FieldYearsExperience): fmt.Sprintf("whole number from %d to %d", extract.MinYears, extract.MaxYears),
			string(extract.FieldAvailability):    "true/false, yes/no, si/no, 1/0, verdadero/falso",
		},
		Notes: []string{
			"Only the first sheet is read.",
			"The header row is optional; without it columns are read in the order shown.",
			"Only the first data row is used.",
			"Headers may be in English or Spanish and in any order.",
		},
		Extensions: AllowedExtensions,
		MaxSize:    s.upload.MaxFileSize,
	}
}

// Health checks the store connection.
func (s *Service) Health(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// UploadLimiterStatus returns the current upload slot usage.
func (s *Service) UploadLimiterStatus() UploadLimiterStatus {
	return s.uploadLimiter.Status()
}

// WaitForUploads blocks until in-flight uploads finish or ctx ends.
func (s *Service) WaitForUploads(ctx context.Context) error {
	return s.uploadLimiter.WaitForDrain(ctx)
}
