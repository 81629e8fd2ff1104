package printing

import (
	"html/template"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English)

// humanize turns an enum value such as NON_FUNCTIONAL into "Non Functional"
func humanize(v string) string {
	return titleCaser.String(strings.ToLower(strings.ReplaceAll(v, "_", " ")))
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format("2006-01-02")
}

func formatDateTime(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04 UTC")
}

var matrixFuncs = template.FuncMap{
	"humanize":       humanize,
	"formatDate":     formatDate,
	"formatDateTime": formatDateTime,
	"lower":          strings.ToLower,
}

var matrixTemplate = template.Must(template.New("matrix").Funcs(matrixFuncs).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<title>Traceability matrix - {{.Project.Name}}</title>
<style>
  body { font-family: "Helvetica Neue", Arial, sans-serif; font-size: 9pt; color: #222; }
  h1 { font-size: 15pt; margin: 0 0 2mm 0; }
  .meta { color: #666; margin-bottom: 5mm; }
  table { width: 100%; border-collapse: collapse; table-layout: fixed; }
  th, td { border: 1px solid #bbb; padding: 1.5mm 2mm; vertical-align: top; word-wrap: break-word; }
  th { background: #eef1f5; text-align: left; }
  tr { page-break-inside: avoid; }
  ul { margin: 0; padding-left: 4mm; }
  .badge { display: inline-block; padding: 0 1.5mm; border-radius: 1mm; background: #e5e7eb; font-size: 8pt; }
  .status-approved, .status-implemented, .status-verified { background: #d1fae5; }
  .status-review { background: #fef3c7; }
  .status-closed { background: #e0e7ff; }
  .empty { color: #999; }
</style>
</head>
<body>
<h1>Traceability matrix: {{.Project.Name}}</h1>
<div class="meta">{{len .Matrix}} requirement(s), generated {{formatDateTime .GeneratedAt}}</div>
<table>
  <thead>
    <tr>
      <th style="width:24%">Requirement</th>
      <th style="width:14%">Classification</th>
      <th style="width:20%">Stakeholders</th>
      <th style="width:24%">Tasks</th>
      <th style="width:18%">Meetings</th>
    </tr>
  </thead>
  <tbody>
  {{- range .Matrix}}
    <tr>
      <td><strong>{{.Title}}</strong><br><span class="empty">{{.Owner}}</span></td>
      <td>
        <span class="badge status-{{lower .Status}}">{{humanize .Status}}</span><br>
        {{humanize .Type}}<br>{{humanize .Priority}} priority
      </td>
      <td>{{if .Stakeholders}}<ul>{{range .Stakeholders}}<li>{{.Name}} ({{humanize .Role}})</li>{{end}}</ul>{{else}}<span class="empty">None</span>{{end}}</td>
      <td>{{if .Tasks}}<ul>{{range .Tasks}}<li>{{.Title}} [{{humanize .Status}}]{{if .Assignee}} - {{.Assignee}}{{end}}</li>{{end}}</ul>{{else}}<span class="empty">None</span>{{end}}</td>
      <td>{{if .Meetings}}<ul>{{range .Meetings}}<li>{{formatDate .Date}} {{.Title}}</li>{{end}}</ul>{{else}}<span class="empty">None</span>{{end}}</td>
    </tr>
  {{- else}}
    <tr><td colspan="5" class="empty">This project has no requirements yet.</td></tr>
  {{- end}}
  </tbody>
</table>
</body>
</html>
`))

const matrixFooter = `<div style="font-size:7pt;width:100%;text-align:center;color:#888;">` +
	`Page <span class="pageNumber"></span> of <span class="totalPages"></span></div>`
