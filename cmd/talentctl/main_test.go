package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/talent/internal/core"
	"github.com/JonMunkholm/talent/internal/extract"
)

func run(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func writeWorkbook(t *testing.T, rows ...[]any) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		row := row
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	path := filepath.Join(t.TempDir(), "candidate.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestExtract_Valid(t *testing.T) {
	path := writeWorkbook(t,
		[]any{"Disponibilidad", "Nivel", "Experiencia"},
		[]any{"No", "junior", 2},
	)

	out, _, err := run(t, "extract", path)
	require.NoError(t, err)

	var report core.Preview
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.True(t, report.Valid)
	assert.Equal(t, "candidate.xlsx", report.FileName)
	assert.Equal(t, extract.Record{Tier: extract.TierJunior, YearsExperience: 2, Availability: false}, report.Analysis.Record)
}

func TestExtract_InvalidFields(t *testing.T) {
	path := writeWorkbook(t,
		[]any{"Seniority", "Years", "Availability"},
		[]any{"principal", -1, "yes"},
	)

	out, _, err := run(t, "extract", path)
	assert.ErrorIs(t, err, errExtractFailed)

	var report core.Preview
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.False(t, report.Valid)
	assert.Equal(t, "VAL002", report.Code)
	require.Len(t, report.Errors, 2)
	assert.Equal(t, extract.FieldTier, report.Errors[0].Field)
	assert.Equal(t, extract.FieldYearsExperience, report.Errors[1].Field)
}

func TestExtract_UnreadableFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("not a workbook"), 0o644))

	out, stderr, err := run(t, "extract", path)
	assert.ErrorIs(t, err, errExtractFailed)

	var report core.Preview
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, "FILE002", report.Code)
	assert.NotEmpty(t, report.Action)
	assert.Contains(t, stderr, report.Message+" (Code: FILE002). "+report.Action)
}

func TestExtract_MissingFile(t *testing.T) {
	_, _, err := run(t, "extract", filepath.Join(t.TempDir(), "nope.xlsx"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, errExtractFailed)
}

func TestTemplate_ExtractsExampleRow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "template.xlsx")

	_, _, err := run(t, "template", path)
	require.NoError(t, err)

	out, _, err := run(t, "extract", path)
	require.NoError(t, err)

	var report core.Preview
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, extract.HeaderPresent, report.Analysis.Shape)
	assert.Equal(t, extract.Record{Tier: extract.TierSenior, YearsExperience: 5, Availability: true}, report.Analysis.Record)
}

func TestFormat(t *testing.T) {
	out, _, err := run(t, "format")
	require.NoError(t, err)

	var format core.ExpectedFormat
	require.NoError(t, json.Unmarshal([]byte(out), &format))
	assert.Equal(t, []string{"Seniority", "Años Experiencia", "Disponibilidad"}, format.Headers)
	assert.Equal(t, core.AllowedExtensions, format.Extensions)
}

func TestArgsValidated(t *testing.T) {
	_, _, err := run(t, "extract")
	assert.Error(t, err)

	_, _, err = run(t, "format", "extra")
	assert.Error(t, err)
}
