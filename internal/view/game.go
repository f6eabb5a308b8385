package view

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"replacementGame/domain"

	"github.com/a-h/templ"
)

func GamePage(session *domain.GameSession) templ.Component {
	return Layout("Item Replacement Game", templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &html{}
		h.raw(`<main><h1>🛒 Item Replacement Game</h1>`)
		renderGame(h, session)
		h.raw(`</main>`)
		return h.flush(w)
	}))
}

func renderGame(h *html, s *domain.GameSession) {
	if s == nil || s.LoadFailed || s.Round == nil {
		h.raw(`<p class="error">Failed to load round.</p>`).
			raw(`<form method="post" action="/game/new" class="actions"><button class="btn" type="submit">Start New Round</button></form>`)
		return
	}

	h.raw(`<h2>Customer Cart</h2><ul class="cart">`)
	for _, item := range s.Round.Cart {
		renderCartItem(h, s, item)
	}
	h.raw(`</ul>`)

	if !s.Submitted || s.Result == nil {
		h.raw(`<form method="post" action="/game/submit" class="actions">`).
			raw(`<button class="btn" type="submit">Submit Replacements</button></form>`)
		return
	}

	renderResult(h, s.Result)
}

func renderCartItem(h *html, s *domain.GameSession, item domain.Item) {
	class := "item"
	if item.Unavailable {
		class += " unavailable"
	}

	h.rawf(`<li class="%s" data-item-id="%s">`, class, templ.EscapeString(item.ID))
	if item.Unavailable {
		h.raw(`<span class="oos">Out of Stock</span>`)
	}
	h.raw(`<p><strong>`).text(item.Title).raw(`</strong></p>`).
		raw(`<p class="meta">Price: `).text(formatPrice(item.Price, "N/A")).
		raw(` | Rating: `).text(formatRating(item.Rating)).raw(`</p>`)

	if item.Unavailable {
		selected := s.Selections[item.ID]
		h.raw(`<div class="options">`)
		for _, opt := range s.Round.Replacements[item.ID] {
			optClass := "option"
			if selected == opt.ID {
				optClass += " selected"
			}
			h.raw(`<form method="post" action="/game/select">`).
				raw(`<input type="hidden" name="item_id" value="`).text(item.ID).raw(`">`).
				raw(`<input type="hidden" name="replacement_id" value="`).text(opt.ID).raw(`">`).
				rawf(`<button class="%s" type="submit"`, optClass)
			if s.Submitted {
				h.raw(` disabled`)
			}
			h.raw(`><strong>`).text(opt.Title).raw(`</strong><br><span class="meta">`).
				text(formatPrice(opt.Price, "Price N/A")).raw(` | Rating: `).text(formatRating(opt.Rating)).
				raw(`</span></button></form>`)
		}
		h.raw(`</div>`)
	}

	h.raw(`</li>`)
}

func renderResult(h *html, r *domain.SubmissionResult) {
	total := r.Scored + r.Skipped + r.Failed

	h.raw(`<div class="result">`).
		rawf(`<h3>Your Score: %d/100</h3>`, r.Score).
		raw(`<p class="summary">Based on how close your replacements were in price and rating.</p>`).
		rawf(`<p class="summary">Scored %d of %d replacements`, r.Scored, total)
	if r.Skipped > 0 {
		h.rawf(`, %d skipped`, r.Skipped)
	}
	if r.Failed > 0 {
		h.rawf(`, %d could not be scored`, r.Failed)
	}
	h.raw(`.</p>`).
		raw(`<form method="post" action="/game/new"><button class="btn again" type="submit">Play Again</button></form>`).
		raw(`</div>`)
}

func formatPrice(p *float64, missing string) string {
	if p == nil {
		return missing
	}
	return fmt.Sprintf("$%.2f", *p)
}

func formatRating(r *float64) string {
	if r == nil {
		return "N/A"
	}
	return strconv.FormatFloat(*r, 'f', -1, 64)
}
