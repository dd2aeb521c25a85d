package core

// validation.go checks client input before it reaches the store.
//
// Every check runs, so one response can report all of a request's problems.
// Names are normalized here too: create and update both store the
// title-cased form.

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/JonMunkholm/talent/internal/extract"
)

const (
	MinNameLength = 2
	MaxNameLength = 100
)

// ValidationError represents a single validation error for a field.
type ValidationError struct {
	Field   string `json:"field"`           // Request field name
	Value   string `json:"value,omitempty"` // The invalid value
	Message string `json:"message"`         // Human-readable error message
}

func (e ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// validator accumulates ValidationErrors.
type validator struct {
	errs []ValidationError
}

func (v *validator) add(field, value, msg string) {
	v.errs = append(v.errs, ValidationError{Field: field, Value: value, Message: msg})
}

func (v *validator) err() error {
	if len(v.errs) == 0 {
		return nil
	}
	return &InputError{Errors: v.errs}
}

func (v *validator) name(field, raw string) string {
	name := NormalizeName(raw)
	switch n := utf8.RuneCountInString(name); {
	case n == 0:
		v.add(field, raw, "is required")
	case n < MinNameLength || n > MaxNameLength:
		v.add(field, raw, fmt.Sprintf("must be between %d and %d characters", MinNameLength, MaxNameLength))
	}
	return name
}

func (v *validator) tier(raw string) extract.Tier {
	t, ok := extract.ParseTier(raw)
	if !ok {
		v.add(string(extract.FieldTier), raw, extract.MsgTier)
	}
	return t
}

func (v *validator) years(n int) {
	if n < extract.MinYears || n > extract.MaxYears {
		v.add(string(extract.FieldYearsExperience), strconv.Itoa(n), extract.MsgYearsOutOfRange)
	}
}

// ValidateCreate validates p and returns the normalized candidate.
func ValidateCreate(p CreateParams) (NewCandidate, error) {
	var v validator
	c := NewCandidate{
		Name:    v.name("name", p.Name),
		Surname: v.name("surname", p.Surname),
		Tier:    v.tier(p.Tier),
	}

	if p.YearsExperience == nil {
		v.add(string(extract.FieldYearsExperience), "", "is required")
	} else {
		v.years(*p.YearsExperience)
		c.YearsExperience = *p.YearsExperience
	}

	if p.Availability == nil {
		v.add(string(extract.FieldAvailability), "", "is required")
	} else {
		c.Availability = *p.Availability
	}

	return c, v.err()
}

// ValidateUpdate validates the supplied fields of p.
func ValidateUpdate(p UpdateParams) (CandidatePatch, error) {
	var (
		v     validator
		patch CandidatePatch
	)

	if p.Name != nil {
		name := v.name("name", *p.Name)
		patch.Name = &name
	}
	if p.Surname != nil {
		surname := v.name("surname", *p.Surname)
		patch.Surname = &surname
	}
	if p.Tier != nil {
		t := v.tier(*p.Tier)
		patch.Tier = &t
	}
	if p.YearsExperience != nil {
		v.years(*p.YearsExperience)
		patch.YearsExperience = p.YearsExperience
	}
	patch.Availability = p.Availability

	if err := v.err(); err != nil {
		return CandidatePatch{}, err
	}
	if patch.Empty() {
		return CandidatePatch{}, &InputError{Errors: []ValidationError{{Message: "no fields to update"}}}
	}
	return patch, nil
}

// ValidateList applies listing defaults and bounds. It returns the store
// query along with the effective page and limit.
func ValidateList(p ListParams) (Query, int, int, error) {
	var v validator

	page := p.Page
	switch {
	case page == 0:
		page = DefaultPage
	case page < 1:
		v.add("page", strconv.Itoa(p.Page), "must be at least 1")
	}

	limit := p.Limit
	switch {
	case limit == 0:
		limit = DefaultLimit
	case limit < 1 || limit > MaxLimit:
		v.add("limit", strconv.Itoa(p.Limit), fmt.Sprintf("must be between 1 and %d", MaxLimit))
	}

	// The offset (page-1)*limit must fit in an int.
	if page > 1 && limit >= 1 && limit <= MaxLimit && page-1 > math.MaxInt/limit {
		v.add("page", strconv.Itoa(p.Page), "is too large")
	}

	q := Query{
		Search:       strings.TrimSpace(p.Search),
		Availability: p.Availability,
	}

	if raw := strings.TrimSpace(p.Tier); raw != "" {
		q.Tier = v.tier(raw)
	}

	if raw := strings.TrimSpace(p.SortBy); raw != "" {
		q.SortBy = parseSortField(raw)
		if q.SortBy == "" {
			v.add("sortBy", raw, "must be one of "+joinSortFields())
		}
	}

	switch strings.ToLower(strings.TrimSpace(p.SortOrder)) {
	case "", "asc":
	case "desc":
		q.Desc = true
	default:
		v.add("sortOrder", p.SortOrder, "must be asc or desc")
	}

	if err := v.err(); err != nil {
		return Query{}, 0, 0, err
	}

	q.Limit = limit
	q.Offset = (page - 1) * limit
	return q, page, limit, nil
}

func parseSortField(s string) SortField {
	for _, f := range SortFields {
		if strings.EqualFold(string(f), s) {
			return f
		}
	}
	return ""
}

func joinSortFields() string {
	names := make([]string, len(SortFields))
	for i, f := range SortFields {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}
