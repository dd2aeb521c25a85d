package database

import (
	"fmt"
	"strings"
)

// WhereBuilder assembles a parameterized WHERE clause. Placeholders are
// numbered in the order values are added.
type WhereBuilder struct {
	conditions []string
	args       []any
}

// NewWhereBuilder returns an empty builder.
func NewWhereBuilder() *WhereBuilder {
	return &WhereBuilder{}
}

// arg records v and returns its placeholder.
func (b *WhereBuilder) arg(v any) string {
	b.args = append(b.args, v)
	return fmt.Sprintf("$%d", len(b.args))
}

// AddEquals adds "col = value".
func (b *WhereBuilder) AddEquals(col string, v any) {
	b.conditions = append(b.conditions, fmt.Sprintf("%s = %s", quoteIdentifier(col), b.arg(v)))
}

// AddSearch matches term against name and surname, case-insensitively.
// A row matches when either column contains the whole term, or when name
// contains its first word and surname its second, so "ana gil" finds
// Ana Gil.
func (b *WhereBuilder) AddSearch(term string) {
	term = strings.TrimSpace(term)
	if term == "" {
		return
	}

	words := strings.Split(term, " ")
	first, second := words[0], ""
	if len(words) > 1 {
		second = words[1]
	}

	whole := b.arg(containsPattern(term))
	firstArg := b.arg(containsPattern(first))
	secondArg := b.arg(containsPattern(second))

	name, surname := quoteIdentifier(colName), quoteIdentifier(colSurname)
	b.conditions = append(b.conditions, fmt.Sprintf(
		"(%[1]s ILIKE %[3]s OR %[2]s ILIKE %[3]s OR (%[1]s ILIKE %[4]s AND %[2]s ILIKE %[5]s))",
		name, surname, whole, firstArg, secondArg,
	))
}

// Build returns the clause, including a leading " WHERE", and its arguments.
// An empty builder returns "".
func (b *WhereBuilder) Build() (string, []any) {
	if len(b.conditions) == 0 {
		return "", b.args
	}
	return " WHERE " + strings.Join(b.conditions, " AND "), b.args
}

// NextArgIndex returns the number the next placeholder would get.
func (b *WhereBuilder) NextArgIndex() int {
	return len(b.args) + 1
}

// containsPattern wraps s for ILIKE, escaping the pattern metacharacters.
func containsPattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}

func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
