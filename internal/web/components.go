package web

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/talent/internal/core"
	"github.com/JonMunkholm/talent/internal/extract"
)

// htmlWriter accumulates the first write error so components can emit
// markup without checking every call.
type htmlWriter struct {
	w   io.Writer
	err error
}

func (h *htmlWriter) raw(s string) {
	if h.err == nil {
		_, h.err = io.WriteString(h.w, s)
	}
}

func (h *htmlWriter) text(s string) {
	h.raw(templ.EscapeString(s))
}

func (h *htmlWriter) render(ctx context.Context, c templ.Component) {
	if h.err == nil {
		h.err = c.Render(ctx, h.w)
	}
}

// component adapts a markup function to templ.Component.
func component(fn func(ctx context.Context, h *htmlWriter)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		fn(ctx, h)
		return h.err
	})
}

// Layout wraps body in the page shell.
func Layout(title string, body templ.Component) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		h.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		h.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		h.raw(`<title>`)
		h.text(title)
		h.raw(`</title><script src="https://unpkg.com/htmx.org@1.9.12"></script>`)
		h.raw(`<style>body{font-family:sans-serif;margin:2rem}table{border-collapse:collapse}` +
			`td,th{border:1px solid #ccc;padding:.3rem .6rem}.error{color:#b00}.ok{color:#070}</style>`)
		h.raw(`</head><body>`)
		h.render(ctx, body)
		h.raw(`</body></html>`)
	})
}

// Dashboard is the main page: summary figures, the upload form and the
// candidate table.
func Dashboard(stats core.Statistics, format core.ExpectedFormat, page core.CandidatePage) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		h.raw(`<h1>Candidates</h1>`)
		h.render(ctx, StatisticsPanel(stats))

		h.raw(`<section><h2>Add candidate</h2>`)
		h.raw(`<form hx-post="/candidates/upload" hx-encoding="multipart/form-data" hx-target="#upload-result">`)
		h.raw(`<input name="name" placeholder="Name" required> `)
		h.raw(`<input name="surname" placeholder="Surname" required> `)
		h.raw(`<input type="file" name="file" accept="`)
		h.text(strings.Join(format.Extensions, ","))
		h.raw(`" required> <button type="submit">Upload</button> `)
		h.raw(`<button type="button" hx-post="/candidates/extract" hx-include="closest form" `)
		h.raw(`hx-encoding="multipart/form-data" hx-target="#upload-result">Preview</button>`)
		h.raw(`</form><div id="upload-result"></div>`)

		h.raw(`<p>Expected columns: `)
		h.text(strings.Join(format.Headers, " | "))
		h.raw(`. <a href="/candidates/template">Download template</a></p></section>`)

		h.raw(`<section><h2>All candidates</h2>`)
		h.raw(`<div id="candidate-table" hx-get="/candidates/table" hx-trigger="candidates-changed from:body">`)
		h.render(ctx, CandidateTable(page))
		h.raw(`</div><p><a href="/candidates/export">Export to Excel</a></p></section>`)
	})
}

// StatisticsPanel shows the summary figures.
func StatisticsPanel(stats core.Statistics) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		h.raw(`<dl id="statistics">`)
		row := func(label string, n int) {
			h.raw(`<dt>`)
			h.text(label)
			h.raw(`</dt><dd>`)
			h.text(strconv.Itoa(n))
			h.raw(`</dd>`)
		}
		row("Total", stats.Total)
		row("Available", stats.Available)
		row("Unavailable", stats.Unavailable)
		row("Junior", stats.ByTier[extract.TierJunior])
		row("Senior", stats.ByTier[extract.TierSenior])
		row("Average years", stats.AverageExperience)
		h.raw(`</dl>`)
	})
}

// CandidateTable renders one page of candidates.
func CandidateTable(page core.CandidatePage) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		if len(page.Data) == 0 {
			h.raw(`<p>No candidates yet.</p>`)
			return
		}

		h.raw(`<table><thead><tr><th>Name</th><th>Seniority</th><th>Years</th><th>Available</th></tr></thead><tbody>`)
		for _, c := range page.Data {
			h.raw(`<tr><td>`)
			h.text(c.FullName())
			h.raw(`</td><td>`)
			h.text(string(c.Tier))
			h.raw(`</td><td>`)
			h.text(strconv.Itoa(c.YearsExperience))
			h.raw(`</td><td>`)
			h.text(yesNo(c.Availability))
			h.raw(`</td></tr>`)
		}
		h.raw(`</tbody></table>`)
		h.text(fmt.Sprintf("Page %d of %d (%d candidates)", page.Page, page.TotalPages, page.Total))
	})
}

// CandidateCreated confirms an upload.
func CandidateCreated(c core.Candidate) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		h.raw(`<p class="ok">Added `)
		h.text(c.FullName())
		h.raw(` (`)
		h.text(fmt.Sprintf("%s, %d years", c.Tier, c.YearsExperience))
		h.raw(`).</p>`)
	})
}

// PreviewResult shows what the extraction engine read from a workbook.
func PreviewResult(p core.Preview) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		if !p.Valid {
			h.raw(`<div class="error"><p>`)
			h.text(p.Message)
			h.raw(`</p>`)
			if len(p.Errors) > 0 {
				h.raw(`<ul>`)
				for _, fe := range p.Errors {
					h.raw(`<li><strong>`)
					h.text(string(fe.Field))
					h.raw(`</strong>: `)
					h.text(fe.Message)
					h.raw(`</li>`)
				}
				h.raw(`</ul>`)
			}
			h.raw(`</div>`)
			return
		}

		rec := p.Analysis.Record
		h.raw(`<p class="ok">Read `)
		h.text(fmt.Sprintf("%s, %d years, available: %s", rec.Tier, rec.YearsExperience, yesNo(rec.Availability)))
		h.raw(` (`)
		h.text(p.Analysis.Shape.String())
		h.raw(`).</p>`)
	})
}

// ErrorAlert renders a user-facing error with its support code.
func ErrorAlert(msg core.UserMessage) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		h.raw(`<div class="error" role="alert"><p>`)
		h.text(msg.Message)
		h.raw(`</p>`)
		if msg.Action != "" {
			h.raw(`<p>`)
			h.text(msg.Action)
			h.raw(`</p>`)
		}
		h.raw(`<small>Code: `)
		h.text(msg.Code)
		h.raw(`</small></div>`)
	})
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
