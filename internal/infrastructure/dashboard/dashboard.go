// Package dashboard renders a static HTML report aggregated from the local
// ledgers. It needs no hosted database access: the seen ledger carries enough
// signal (source, first-seen week) for the overview charts.
package dashboard

import (
	"fmt"
	"html/template"
	"os"
	"sort"
	"strings"
	"time"

	"genairadar/internal/relevance"
)

const maxWeeks = 8

// Renderer aggregates ledger contents into the dashboard file.
type Renderer struct {
	now func() time.Time
}

// NewRenderer builds the report generator.
func NewRenderer() *Renderer {
	return &Renderer{now: time.Now}
}

type row struct {
	Label string
	Count int
	Pct   int
}

type viewData struct {
	GeneratedAt   string
	Total         int
	GlobalImports int
	TodayImports  int
	Sources       []row
	Weeks         []row
}

// Render aggregates the seen ledger and writes the HTML report atomically.
func (r *Renderer) Render(path string, seen map[string]time.Time, globalImports, todayImports int) error {
	data := viewData{
		GeneratedAt:   r.now().UTC().Format("02/01/2006 15:04 UTC"),
		Total:         len(seen),
		GlobalImports: globalImports,
		TodayImports:  todayImports,
		Sources:       bySource(seen),
		Weeks:         byWeek(seen),
	}

	var b strings.Builder
	if err := pageTemplate.Execute(&b, data); err != nil {
		return fmt.Errorf("render dashboard: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write dashboard: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace dashboard: %w", err)
	}
	return nil
}

// bySource groups ledger refs by origin. Key refs carry their source before
// the separator; URL refs fall back to the host heuristic.
func bySource(seen map[string]time.Time) []row {
	counts := map[string]int{}
	for ref := range seen {
		if src, _, ok := strings.Cut(ref, "|"); ok && !strings.Contains(src, "/") {
			counts[src]++
			continue
		}
		counts[relevance.GuessSource(ref)]++
	}
	return toRows(counts, descByCount)
}

func byWeek(seen map[string]time.Time) []row {
	counts := map[string]int{}
	for _, firstSeen := range seen {
		year, week := firstSeen.UTC().ISOWeek()
		counts[fmt.Sprintf("%d-W%02d", year, week)]++
	}

	rows := toRows(counts, ascByLabel)
	if len(rows) > maxWeeks {
		rows = rows[len(rows)-maxWeeks:]
		rescale(rows)
	}
	return rows
}

type rowOrder func(a, b row) bool

func descByCount(a, b row) bool {
	if a.Count != b.Count {
		return a.Count > b.Count
	}
	return a.Label < b.Label
}

func ascByLabel(a, b row) bool { return a.Label < b.Label }

func toRows(counts map[string]int, less rowOrder) []row {
	rows := make([]row, 0, len(counts))
	for label, count := range counts {
		rows = append(rows, row{Label: label, Count: count})
	}
	sort.Slice(rows, func(i, j int) bool { return less(rows[i], rows[j]) })
	rescale(rows)
	return rows
}

// rescale recomputes bar widths relative to the largest row.
func rescale(rows []row) {
	max := 1
	for _, r := range rows {
		if r.Count > max {
			max = r.Count
		}
	}
	for i := range rows {
		rows[i].Pct = rows[i].Count * 100 / max
	}
}

var pageTemplate = template.Must(template.New("dashboard").Parse(`<!DOCTYPE html>
<html lang="es">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>GenAI Radar - Dashboard</title>
<style>
* { box-sizing: border-box; margin: 0; padding: 0; }
body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', sans-serif;
       background: #0f172a; color: #e2e8f0; padding: 24px; }
h1 { font-size: 1.6rem; font-weight: 700; margin-bottom: 4px; }
.subtitle { color: #64748b; font-size: .85rem; margin-bottom: 28px; }
h2 { font-size: .95rem; font-weight: 600; margin-bottom: 14px; color: #cbd5e1; }
.stats { display: flex; gap: 14px; flex-wrap: wrap; margin-bottom: 28px; }
.stat-card { background: #1e293b; border-radius: 10px; padding: 18px 22px;
             min-width: 130px; flex: 1; }
.stat-value { font-size: 2rem; font-weight: 700; color: #6366f1; }
.stat-label { font-size: .8rem; color: #94a3b8; margin-top: 4px; }
.grid { display: grid; grid-template-columns: repeat(auto-fit, minmax(280px, 1fr)); gap: 18px; }
.card { background: #1e293b; border-radius: 10px; padding: 20px; min-width: 0; }
.chart { display: flex; flex-direction: column; gap: 8px; }
.bar-row { display: flex; align-items: center; gap: 8px; }
.bar-label { flex: 0 0 130px; font-size: .78rem; color: #94a3b8;
             white-space: nowrap; overflow: hidden; text-overflow: ellipsis; }
.bar-bg { flex: 1; background: #0f172a; border-radius: 4px; height: 16px; overflow: hidden; }
.bar-fill { height: 100%; border-radius: 4px; background: #6366f1; }
.bar-count { flex: 0 0 auto; font-size: .78rem; color: #64748b; }
.empty { color: #475569; font-size: .82rem; padding: 8px 0; }
.footer { margin-top: 28px; color: #334155; font-size: .75rem; text-align: right; }
</style>
</head>
<body>
<h1>GenAI Radar - Dashboard</h1>
<p class="subtitle">Generado el {{.GeneratedAt}} &middot; {{.Total}} referencias en los ledgers</p>
<div class="stats">
  <div class="stat-card"><div class="stat-value">{{.Total}}</div><div class="stat-label">Referencias vistas</div></div>
  <div class="stat-card"><div class="stat-value">{{.GlobalImports}}</div><div class="stat-label">Importadas (global)</div></div>
  <div class="stat-card"><div class="stat-value">{{.TodayImports}}</div><div class="stat-label">Importadas hoy</div></div>
</div>
<div class="grid">
  <div class="card"><h2>Por fuente</h2>
  {{if .Sources}}<div class="chart">{{range .Sources}}
    <div class="bar-row"><span class="bar-label">{{.Label}}</span>
    <div class="bar-bg"><div class="bar-fill" style="width:{{.Pct}}%"></div></div>
    <span class="bar-count">{{.Count}}</span></div>
  {{end}}</div>{{else}}<p class="empty">Sin datos</p>{{end}}</div>
  <div class="card"><h2>Por semana</h2>
  {{if .Weeks}}<div class="chart">{{range .Weeks}}
    <div class="bar-row"><span class="bar-label">{{.Label}}</span>
    <div class="bar-bg"><div class="bar-fill" style="width:{{.Pct}}%"></div></div>
    <span class="bar-count">{{.Count}}</span></div>
  {{end}}</div>{{else}}<p class="empty">Sin datos</p>{{end}}</div>
</div>
<p class="footer">GenAI Radar &middot; dashboard estático generado localmente</p>
</body>
</html>
`))
