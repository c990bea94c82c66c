// Package output renders normalized scan reports.
package output

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/Masterminds/sprig/v3"
	"github.com/google/uuid"

	"github.com/StinkyLord/ort-html-report/internal/model"
)

// Renderer turns a populated store into a document.
type Renderer interface {
	Render(w io.Writer, store *model.Store) error
}

// Compile-time interface check.
var _ Renderer = (*HTMLRenderer)(nil)

const reportTitle = "OSS scan"

// vcsSchemes are the URL schemes rendered as links: web and repository
// schemes. Any other scheme is left to html/template, which neutralizes it.
var vcsSchemes = map[string]bool{
	"http":      true,
	"https":     true,
	"git":       true,
	"git+https": true,
	"git+http":  true,
	"git+ssh":   true,
	"ssh":       true,
	"svn":       true,
	"svn+ssh":   true,
	"hg":        true,
	"ftp":       true,
}

const htmlTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="generator" content="{{ .Generator }}">
<meta name="report-id" content="{{ .ReportID }}">
<title>{{ .Title }}</title>
</head>
<body>
<h2>Project {{ .RepositoryURL }}</h2>
<h3>Analyzer</h3><br/>
<table border="1">
<tr bgcolor="#9acd32">
<th>#</th>
<th>Library name <br/>(type:group-id:artifact-id:version)</th>
<th>License identifier <br/>(<a href="https://spdx.org/licenses/" target="_blank">spdx Identifier</a>)</th>
<th>Library homepage url</th>
<th>Library source code url<br/>(GIT repository)</th>
</tr>
{{- template "section" (dict "Name" "Projects" "Rows" .Projects) }}
{{- template "section" (dict "Name" "Packages" "Rows" .Packages) }}
</table>
<p><small>Generated {{ .Generated }}</small></p>
</body>
</html>
{{ define "section" }}
<tr bgcolor="#add8e6"><td colspan="5"><b>{{ .Name }}</b></td></tr>
{{- range $i, $row := .Rows }}
<tr>
<td>{{ add1 $i }}</td>
<td>{{ $row.ID | default "-" }}</td>
<td>{{ with $row.License }}<b>{{ .Original }}</b><br/><br/>{{ range .Extracted }}<a href="{{ linkURL .URL }}" target="_blank">{{ .Name }}</a><br/>{{ end }}{{ else }}-{{ end }}</td>
<td>{{ with $row.Description }}{{ . }} <br/>{{ end }}{{ template "link" $row.Homepage }}</td>
<td>{{ template "link" $row.SourceURL }}</td>
</tr>
{{- end }}
{{- end }}
{{ define "link" }}{{ if . }}<a href="{{ linkURL . }}" target="_blank">{{ . }}</a>{{ else }}-{{ end }}{{ end }}`

// reportData is what the HTML template is executed with.
type reportData struct {
	Title         string
	Generator     string
	ReportID      string
	Generated     string
	RepositoryURL string
	Projects      []row
	Packages      []row
}

// row is one project or package line of the table.
type row struct {
	ID          string
	License     *model.LicenseLinkSet
	Description string
	Homepage    string
	SourceURL   string
}

// HTMLRenderer renders the license report as a single HTML page.
type HTMLRenderer struct {
	toolVersion string
	tmpl        *template.Template

	now   func() time.Time
	newID func() string
}

// NewHTMLRenderer parses the report template.
func NewHTMLRenderer(toolVersion string) (*HTMLRenderer, error) {
	funcMap := sprig.FuncMap()
	funcMap["linkURL"] = linkURL

	tmpl, err := template.New("report").Funcs(funcMap).Parse(htmlTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse report template: %w", err)
	}

	return &HTMLRenderer{
		toolVersion: toolVersion,
		tmpl:        tmpl,
		now:         time.Now,
		newID:       uuid.NewString,
	}, nil
}

// Render writes the HTML report for store to w.
func (r *HTMLRenderer) Render(w io.Writer, store *model.Store) error {
	data := r.buildReportData(store)

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("template execution error: %w", err)
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write error: %w", err)
	}
	return nil
}

func (r *HTMLRenderer) buildReportData(store *model.Store) reportData {
	data := reportData{
		Title:         reportTitle,
		Generator:     "ort-html-report " + r.toolVersion,
		ReportID:      r.newID(),
		Generated:     r.now().UTC().Format(time.RFC3339),
		RepositoryURL: store.Repository.String("vp_url"),
		Projects:      []row{},
		Packages:      []row{},
	}

	if store.Analyzer == nil {
		slog.Warn("Report has no analyzer result, the table will be empty")
		return data
	}

	for _, p := range store.Analyzer.Projects {
		data.Projects = append(data.Projects, newRow(p, false))
	}
	for _, p := range store.Analyzer.Packages {
		data.Packages = append(data.Packages, newRow(p, true))
	}
	return data
}

func newRow(rec model.Record, withDescription bool) row {
	r := row{
		ID:        rec.String("id"),
		Homepage:  rec.String("homepage_url"),
		SourceURL: rec.String("vp_url"),
	}
	if withDescription {
		r.Description = rec.String("description")
	}
	if lic, ok := rec.License(); ok {
		r.License = &lic
	}
	return r
}

// linkURL marks URLs with a known repository or web scheme as safe for an
// href. Anything else is returned as a plain string, which html/template
// filters if it is unsafe.
func linkURL(raw string) any {
	u, err := url.Parse(raw)
	if err != nil || !vcsSchemes[strings.ToLower(u.Scheme)] {
		return raw
	}
	return template.URL(raw)
}
