package view

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"
)

// html accumulates markup; text is escaped, raw is not.
type html struct {
	b strings.Builder
}

func (h *html) raw(s string) *html {
	h.b.WriteString(s)
	return h
}

func (h *html) text(s string) *html {
	h.b.WriteString(templ.EscapeString(s))
	return h
}

func (h *html) rawf(format string, args ...any) *html {
	fmt.Fprintf(&h.b, format, args...)
	return h
}

func (h *html) component(ctx context.Context, c templ.Component) error {
	return c.Render(ctx, &h.b)
}

func (h *html) flush(w io.Writer) error {
	_, err := io.WriteString(w, h.b.String())
	return err
}

// Layout wraps a page body in the shared document shell.
func Layout(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &html{}
		h.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`).
			raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`).
			raw(`<title>`).text(title).raw(`</title>`).
			raw(`<style>`).raw(stylesheet).raw(`</style></head><body>`)

		if err := h.component(ctx, body); err != nil {
			return err
		}

		h.raw(`<footer><a href="/">Play</a> · <a href="/retrain-dashboard">View Retrain Dashboard</a></footer>`).
			raw(`</body></html>`)

		return h.flush(w)
	})
}

const stylesheet = `
body{background:#030712;color:#fff;font-family:system-ui,sans-serif;margin:0;padding:3rem 1.5rem}
main{max-width:56rem;margin:0 auto}
h1{text-align:center}
footer{text-align:center;padding:1.5rem;border-top:1px solid #1f2937;margin-top:3rem}
a{color:#60a5fa}
.cart{list-style:none;padding:0}
.item{padding:1rem;border-radius:.25rem;border:1px solid #4b5563;background:#1f2937;margin:.5rem 0}
.item.unavailable{border-color:#ef4444;background:rgba(239,68,68,.2)}
.meta{font-size:.875rem;color:#9ca3af}
.oos{font-style:italic;color:#f87171;float:right}
.options{display:grid;grid-template-columns:1fr 1fr;gap:.75rem;margin-top:1rem}
.option{width:100%;text-align:left;padding:.5rem;border-radius:.25rem;border:1px solid #6b7280;background:#374151;color:#fff}
.option.selected{background:#16a34a;border-color:#4ade80}
.actions,.result{text-align:center;margin-top:2rem}
.btn{background:#2563eb;color:#fff;padding:.5rem 1.5rem;border:0;border-radius:.25rem}
.btn.again{background:#16a34a}
.error{color:#ef4444;text-align:center}
.summary{font-size:.875rem;color:#d1d5db}
table{width:100%;border:1px solid #374151;font-size:.875rem;border-collapse:collapse}
th,td{padding:.5rem;text-align:left;border-top:1px solid #374151}
thead{background:#1f2937;color:#d1d5db}
svg{background:#111827;width:100%}
`
