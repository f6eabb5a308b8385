package view

import (
	"context"
	"io"
	"strconv"
	"strings"

	"replacementGame/business/dashboard"

	"github.com/a-h/templ"
)

const (
	chartWidth  = 600
	chartHeight = 200
	chartPad    = 24
)

func DashboardPage(v dashboard.View) templ.Component {
	return Layout("Retrain History", templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &html{}
		h.raw(`<main>`)

		if v.Empty {
			h.raw(`<p class="placeholder">`).text(v.Message).raw(`</p></main>`)
			return h.flush(w)
		}

		h.raw(`<h1>Retrain History</h1>`).
			raw(`<section><h2>📈 R² Over Time</h2>`)
		renderChart(h, v.R2, "#4ade80")
		h.raw(`</section><section><h2>📉 MSE Over Time</h2>`)
		renderChart(h, v.MSE, "#f87171")
		h.raw(`</section>`)

		h.raw(`<section><h2>📦 Recent Runs</h2>`).
			raw(`<p><a href="/retrain-dashboard/export.xlsx">Download as spreadsheet</a></p>`).
			raw(`<table><thead><tr><th>Time</th><th>Samples</th><th>MSE</th><th>R²</th></tr></thead><tbody>`)
		for _, row := range v.Rows {
			h.raw(`<tr class="run">`).
				raw(`<td>`).text(row.Time).raw(`</td>`).
				raw(`<td>`).text(strconv.Itoa(row.Samples)).raw(`</td>`).
				raw(`<td>`).text(row.MSE).raw(`</td>`).
				raw(`<td>`).text(row.R2).raw(`</td>`).
				raw(`</tr>`)
		}
		h.raw(`</tbody></table></section></main>`)

		return h.flush(w)
	}))
}

// renderChart draws a series as an SVG line, samples spread evenly on x.
func renderChart(h *html, s dashboard.Series, stroke string) {
	n := len(s.Points)
	innerW := float64(chartWidth - 2*chartPad)
	innerH := float64(chartHeight - 2*chartPad)

	xAt := func(i int) float64 {
		if n == 1 {
			return chartPad + innerW/2
		}
		return chartPad + innerW*float64(i)/float64(n-1)
	}
	yAt := func(y float64) float64 {
		return chartPad + innerH*(1-y)
	}

	coords := make([]string, 0, n)
	for i, p := range s.Points {
		coords = append(coords, strconv.FormatFloat(xAt(i), 'f', 1, 64)+","+strconv.FormatFloat(yAt(p.Y), 'f', 1, 64))
	}

	h.rawf(`<svg class="chart" viewBox="0 0 %d %d" role="img" aria-label="`, chartWidth, chartHeight).text(s.Name).raw(`">`).
		rawf(`<text x="4" y="%d" fill="#9ca3af" font-size="10">%s</text>`, chartPad, strconv.FormatFloat(s.Max, 'f', 2, 64)).
		rawf(`<text x="4" y="%d" fill="#9ca3af" font-size="10">%s</text>`, chartHeight-chartPad, strconv.FormatFloat(s.Min, 'f', 2, 64)).
		rawf(`<polyline fill="none" stroke="%s" stroke-width="2" points="%s"/>`, stroke, strings.Join(coords, " "))

	for i, p := range s.Points {
		h.rawf(`<circle cx="%.1f" cy="%.1f" r="3" fill="%s"><title>`, xAt(i), yAt(p.Y), stroke).
			text(p.Label + ": " + strconv.FormatFloat(p.Value, 'f', 2, 64)).
			raw(`</title></circle>`)
	}

	h.raw(`</svg>`)
}
