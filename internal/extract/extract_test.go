package extract

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyze_HeaderAndHeaderless(t *testing.T) {
	e := NewDefault()

	t.Run("headerless three cell row", func(t *testing.T) {
		a, err := e.Analyze(NewGrid(TextRow("senior", "5", "si")))
		require.NoError(t, err)
		assert.Equal(t, HeaderAbsent, a.Shape)
		assert.Equal(t, Record{Tier: TierSenior, YearsExperience: 5, Availability: true}, a.Record)
	})

	t.Run("spanish header", func(t *testing.T) {
		a, err := e.Analyze(NewGrid(
			TextRow("Nivel", "Años", "Disponible"),
			TextRow("junior", "2", "no"),
		))
		require.NoError(t, err)
		assert.Equal(t, HeaderPresent, a.Shape)
		assert.Equal(t, Record{Tier: TierJunior, YearsExperience: 2, Availability: false}, a.Record)
	})

	t.Run("errors accumulate", func(t *testing.T) {
		_, err := e.Extract(NewGrid(
			TextRow("Seniority", "Years"),
			TextRow("master", "abc"),
		))
		var fe FieldErrors
		require.ErrorAs(t, err, &fe)
		require.True(t, fe.Has(FieldTier))
		require.True(t, fe.Has(FieldYearsExperience))

		byField := map[Field]string{}
		for _, f := range fe {
			byField[f.Field] = f.Message
		}
		assert.Equal(t, MsgTier, byField[FieldTier])
		assert.Contains(t, byField[FieldYearsExperience], "unparsable")
	})

	t.Run("empty grid", func(t *testing.T) {
		_, err := e.Extract(Grid{})
		var se *StructureError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, ReasonEmptyGrid, se.Reason)
	})
}

func TestAnalyze_HeaderWithoutData(t *testing.T) {
	e := NewDefault()

	a, err := e.Analyze(NewGrid(TextRow("Seniority", "Years of experience", "Availability")))
	var se *StructureError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, ReasonMissingDataRow, se.Reason)
	assert.Equal(t, HeaderPresent, a.Shape)
	assert.Equal(t, Record{}, a.Record)
}

func TestExtract_RoundTrip(t *testing.T) {
	e := NewDefault()
	want := Record{Tier: TierSenior, YearsExperience: 5, Availability: true}

	grid := NewGrid(
		TextRow("Seniority", "Years of experience", "Availability"),
		TextRow(string(want.Tier), strconv.Itoa(want.YearsExperience), "si"),
	)

	got, err := e.Extract(grid)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestResolve_PermutationInvariance(t *testing.T) {
	e := NewDefault()

	headers := map[Field]string{
		FieldTier:            "Seniority",
		FieldYearsExperience: "Years of experience",
		FieldAvailability:    "Disponibilidad",
	}
	values := map[Field]string{
		FieldTier:            "junior",
		FieldYearsExperience: "7",
		FieldAvailability:    "yes",
	}
	want := Record{Tier: TierJunior, YearsExperience: 7, Availability: true}

	perms := [][3]Field{
		{FieldTier, FieldYearsExperience, FieldAvailability},
		{FieldTier, FieldAvailability, FieldYearsExperience},
		{FieldYearsExperience, FieldTier, FieldAvailability},
		{FieldYearsExperience, FieldAvailability, FieldTier},
		{FieldAvailability, FieldTier, FieldYearsExperience},
		{FieldAvailability, FieldYearsExperience, FieldTier},
	}

	for _, p := range perms {
		var head, data []string
		for _, f := range p {
			head = append(head, headers[f])
			data = append(data, values[f])
		}

		a, err := e.Analyze(NewGrid(TextRow(head...), TextRow(data...)))
		require.NoError(t, err, "order %v", p)
		assert.Equal(t, HeaderPresent, a.Shape)
		for i, f := range p {
			idx, ok := a.Columns.Index(f)
			require.True(t, ok, "field %s unresolved for order %v", f, p)
			assert.Equal(t, i, idx, "field %s for order %v", f, p)
		}
		assert.Equal(t, want, a.Record)
	}
}

func TestResolve_SynonymPriority(t *testing.T) {
	e := NewDefault()

	// "years of experience" outranks "experience" even when it comes later.
	cols := e.Resolve(TextRow("Experience", "Level", "Years of Experience", "Available"))
	idx, ok := cols.Index(FieldYearsExperience)
	require.True(t, ok)
	assert.Equal(t, 2, idx)

	idx, ok = cols.Index(FieldTier)
	require.True(t, ok)
	assert.Equal(t, 1, idx)
}

func TestResolve_ExactMatchOnly(t *testing.T) {
	e := NewDefault()

	cols := e.Resolve(TextRow("  SENIORITY  ", "years of experience (total)", "availability?"))
	_, ok := cols.Index(FieldTier)
	assert.True(t, ok)
	_, ok = cols.Index(FieldYearsExperience)
	assert.False(t, ok)
	_, ok = cols.Index(FieldAvailability)
	assert.False(t, ok)
}

func TestResolve_FirstMatchingColumnWins(t *testing.T) {
	e := NewDefault()

	cols := e.Resolve(TextRow("Nivel", "Seniority", "Seniority"))
	idx, ok := cols.Index(FieldTier)
	require.True(t, ok)
	assert.Equal(t, 1, idx)
}

func TestExtract_MissingColumns(t *testing.T) {
	e := NewDefault()

	_, err := e.Extract(NewGrid(
		TextRow("Seniority", "Notes"),
		TextRow("senior", "anything"),
	))

	var fe FieldErrors
	require.ErrorAs(t, err, &fe)
	assert.Len(t, fe, 2)
	assert.False(t, fe.Has(FieldTier))
	for _, f := range fe {
		assert.Contains(t, f.Message, MsgMissingColumn)
	}
}

func TestExtract_AllFieldsInvalid(t *testing.T) {
	e := NewDefault()

	_, err := e.Extract(NewGrid(
		TextRow("Seniority", "Years", "Availability"),
		TextRow("lead", "99", "maybe"),
	))

	var fe FieldErrors
	require.ErrorAs(t, err, &fe)
	require.Len(t, fe, 3)
	assert.Equal(t, FieldError{Field: FieldTier, Message: MsgTier}, fe[0])
	assert.Equal(t, FieldError{Field: FieldYearsExperience, Message: MsgYearsOutOfRange}, fe[1])
	assert.Equal(t, FieldError{Field: FieldAvailability, Message: MsgUnparsableBoolean}, fe[2])
}

func TestCoerceTier(t *testing.T) {
	e := NewDefault()

	tests := []struct {
		cell Cell
		want Tier
		ok   bool
	}{
		{Text("junior"), TierJunior, true},
		{Text("  SENIOR "), TierSenior, true},
		{Text("Senior"), TierSenior, true},
		{Text("mid"), "", false},
		{Text("seniors"), "", false},
		{Number(1), "", false},
		{Bool(true), "", false},
		{Null(), "", false},
	}

	for _, tt := range tests {
		got, err := e.coerceTier(tt.cell, true)
		if tt.ok {
			assert.Nil(t, err, "cell %q", tt.cell.String())
			assert.Equal(t, tt.want, got)
		} else {
			require.NotNil(t, err, "cell %q", tt.cell.String())
			assert.Equal(t, MsgTier, err.Message)
		}
	}

	_, err := e.coerceTier(Null(), false)
	require.NotNil(t, err)
	assert.Contains(t, err.Message, MsgTier)
}

func TestCoerceYears(t *testing.T) {
	e := NewDefault()

	tests := []struct {
		name string
		cell Cell
		want int
		msg  string
	}{
		{"text integer", Text("5"), 5, ""},
		{"padded text", Text("  12 "), 12, ""},
		{"number", Number(5), 5, ""},
		{"lower bound", Number(0), 0, ""},
		{"upper bound", Text("50"), 50, ""},
		{"integral decimal text", Text("3.0"), 3, ""},
		{"above range", Text("51"), 0, MsgYearsOutOfRange},
		{"negative", Number(-1), 0, MsgYearsOutOfRange},
		{"fractional number", Number(2.5), 0, MsgYearsUnparsable},
		{"fractional text", Text("2.5"), 0, MsgYearsUnparsable},
		{"words", Text("abc"), 0, MsgYearsUnparsable},
		{"digits then words", Text("5 years"), 0, MsgYearsUnparsable},
		{"bool", Bool(true), 0, MsgYearsUnparsable},
		{"null", Null(), 0, MsgYearsUnparsable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.coerceYears(tt.cell, true)
			if tt.msg == "" {
				require.Nil(t, err)
				assert.Equal(t, tt.want, got)
				return
			}
			require.NotNil(t, err)
			assert.Equal(t, FieldYearsExperience, err.Field)
			assert.Equal(t, tt.msg, err.Message)
		})
	}
}

func TestCoerceYears_Idempotent(t *testing.T) {
	e := NewDefault()

	for n := -3; n <= 53; n++ {
		fromNumber, errNumber := e.coerceYears(Number(float64(n)), true)
		fromText, errText := e.coerceYears(Text(strconv.Itoa(n)), true)
		assert.Equal(t, fromNumber, fromText, "value %d", n)
		assert.Equal(t, errNumber, errText, "value %d", n)
	}
}

func TestCoerceAvailability(t *testing.T) {
	e := NewDefault()

	truthy := []string{"si", "sí", "yes", "y", "t", "verdadero", "1", "true"}
	falsy := []string{"no", "n", "f", "falso", "0", "false"}

	pad := func(s string) []string {
		return []string{s, " " + s + " ", "\t" + s, strings.ToUpper(s)}
	}

	for _, tok := range truthy {
		for _, v := range pad(tok) {
			got, err := e.coerceAvailability(Text(v), true)
			require.Nil(t, err, "token %q", v)
			assert.True(t, got, "token %q", v)
		}
	}
	for _, tok := range falsy {
		for _, v := range pad(tok) {
			got, err := e.coerceAvailability(Text(v), true)
			require.Nil(t, err, "token %q", v)
			assert.False(t, got, "token %q", v)
		}
	}

	for _, v := range []string{"nombre", "yes please", "2", "sip", "nope", "verdad", "null"} {
		_, err := e.coerceAvailability(Text(v), true)
		require.NotNil(t, err, "token %q", v)
		assert.Equal(t, MsgUnparsableBoolean, err.Message)
	}
}

func TestCoerceAvailability_NativeAndNumeric(t *testing.T) {
	e := NewDefault()

	got, err := e.coerceAvailability(Bool(true), true)
	require.Nil(t, err)
	assert.True(t, got)

	got, err = e.coerceAvailability(Bool(false), true)
	require.Nil(t, err)
	assert.False(t, got)

	got, err = e.coerceAvailability(Number(1), true)
	require.Nil(t, err)
	assert.True(t, got)

	got, err = e.coerceAvailability(Number(0), true)
	require.Nil(t, err)
	assert.False(t, got)

	_, err = e.coerceAvailability(Number(2), true)
	assert.NotNil(t, err)

	_, err = e.coerceAvailability(Null(), true)
	assert.NotNil(t, err)
}

func TestCoerceAvailability_DecomposedAccent(t *testing.T) {
	e := NewDefault()

	got, ok := e.ParseBoolean("si\u0301")
	require.True(t, ok)
	assert.True(t, got)
}
