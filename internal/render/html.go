package render

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/Tiliavir/cwr/internal/grouping"
	"github.com/Tiliavir/cwr/internal/model"
	"github.com/Tiliavir/cwr/internal/timecalc"
)

const reportCSS = `
body{font-family:Calibri,sans-serif;margin:40px;background-color:#f5f5f5}
.container{max-width:1200px;margin:0 auto;background-color:white;padding:20px;box-shadow:0 0 10px rgba(0,0,0,0.1);border-radius:5px}
.header{background-color:#E5F3E2;padding:20px;margin-bottom:20px;border-radius:5px}
.ticket{margin-bottom:30px;border:1px solid #ddd;border-radius:5px;overflow:hidden}
.ticket-header{background-color:#E5F3E2;padding:15px;border-bottom:1px solid #ddd}
.ticket-details{padding:15px;background-color:white}
table{width:100%;border-collapse:collapse;margin-top:10px}
th,td{padding:8px;text-align:left;border:1px solid #ddd}
th{background-color:#f8f8f8}
.totals{margin-top:15px;padding:10px;background-color:#f8f8f8;border-radius:3px}
.meta-info{color:#666;font-size:0.9em}
@media print {
  body{margin:0}
  .container{box-shadow:none}
  .ticket{page-break-inside:avoid}
  table{page-break-inside:auto}
  tr{page-break-inside:avoid;page-break-after:auto}
  thead{display:table-header-group}
}
`

var htmlReport = template.Must(template.New("report").Funcs(template.FuncMap{
	"hours":   grouping.FormatHours,
	"isoDate": isoDate,
	"lines":   func(s string) []string { return strings.Split(s, "\n") },
	"orElse": func(fallback, s string) string {
		if s == "" {
			return fallback
		}
		return s
	},
}).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>ConnectWise Report</title>
<style>{{.CSS}}</style>
</head>
<body>
<div class="container">
<div class="header">
<h1>ConnectWise Report</h1>
<div class="meta-info">
<p>Report Generated: {{.Generated}}</p>
<p>Company ID: {{.AccountID}}</p>
</div>
</div>
{{range .Tickets}}<div class="ticket" id="ticket-{{.Key}}">
<div class="ticket-header">
<h2>Ticket #{{.Key}}</h2>
{{with index .Rows 0}}<p class="summary">{{.TicketSummary}}</p>
<div class="ticket-info">
<p><strong>Board:</strong> {{orElse "Unknown Board" .Board}}</p>
<p><strong>Status:</strong> {{orElse "Unknown Status" .Status}}</p>
</div>{{end}}
</div>
<div class="ticket-details">
<table>
<thead><tr><th>Date</th><th>Start Time</th><th>End Time</th><th>Hours</th><th>Engineer</th><th>Work Type</th><th>Notes</th></tr></thead>
<tbody>
{{range .Rows}}<tr><td>{{isoDate .}}</td><td>{{.StartTime}}</td><td>{{.EndTime}}</td><td>{{hours .Hours}}</td><td>{{.Engineer}}</td><td>{{.WorkType}}</td><td>{{range $i, $l := lines .Detail}}{{if $i}}<br>{{end}}{{$l}}{{end}}</td></tr>
{{end}}</tbody>
</table>
<div class="totals"><p><strong>Total Hours:</strong> {{hours .SubtotalHours}}</p></div>
</div>
</div>
{{end}}</div>
</body>
</html>
`))

func isoDate(r model.Row) string {
	if r.Start.IsZero() {
		return ""
	}
	return timecalc.FormatISODate(r.Start)
}

// HTML renders the per-ticket report. Rows without a ticket are left out;
// tickets appear in the order they are first seen.
func HTML(rows []model.Row, meta Meta) ([]byte, error) {
	data := struct {
		CSS       template.CSS
		Generated string
		AccountID string
		Tickets   []grouping.Group
	}{
		CSS:       template.CSS(reportCSS),
		Generated: meta.GeneratedAt.Format("2006-01-02 15:04:05"),
		AccountID: meta.AccountID,
		Tickets:   grouping.ByTicketKey(rows),
	}
	var buf bytes.Buffer
	if err := htmlReport.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render html: %w", err)
	}
	return buf.Bytes(), nil
}
