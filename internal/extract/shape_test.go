package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	e := NewDefault()

	tests := []struct {
		name string
		row  Row
		want Shape
	}{
		{"data triple", TextRow("senior", "5", "si"), HeaderAbsent},
		{"native data triple", Row{Text("junior"), Number(0), Bool(false)}, HeaderAbsent},
		{"english header", TextRow("Seniority", "Years of experience", "Availability"), HeaderPresent},
		{"spanish header", TextRow("Nivel", "Años", "Disponible"), HeaderPresent},
		{"keyword substring", TextRow("Candidate level (junior/senior)"), HeaderPresent},
		{"two cell header", TextRow("Seniority", "Years"), HeaderPresent},
		{"no keywords", TextRow("foo", "bar", "baz"), HeaderAbsent},
		{"four cells without keywords", TextRow("senior", "5", "si", "extra"), HeaderAbsent},
		{"numbers only", Row{Number(1), Number(2), Number(3)}, HeaderAbsent},
		{"bad tier with keyword", TextRow("years", "5", "si"), HeaderPresent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, e.Classify(tt.row))
		})
	}
}

func TestClassify_DataShapeBeatsKeywords(t *testing.T) {
	rules := DefaultRules()
	rules.keywords = append(rules.keywords, "si")
	e := New(rules)

	assert.Equal(t, HeaderAbsent, e.Classify(TextRow("senior", "5", "si")))
	assert.Equal(t, HeaderPresent, e.Classify(TextRow("senior", "five", "si")))
}

func TestShape_MarshalText(t *testing.T) {
	b, err := HeaderPresent.MarshalText()
	assert.NoError(t, err)
	assert.Equal(t, "header_present", string(b))
	assert.Equal(t, "header_absent", HeaderAbsent.String())
}

func TestShape_UnmarshalText(t *testing.T) {
	var s Shape
	assert.NoError(t, s.UnmarshalText([]byte("header_present")))
	assert.Equal(t, HeaderPresent, s)
	assert.NoError(t, s.UnmarshalText([]byte("header_absent")))
	assert.Equal(t, HeaderAbsent, s)
	assert.Error(t, s.UnmarshalText([]byte("sideways")))
}
