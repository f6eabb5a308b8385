package domain

// Item is a product as the replacement service sends it:
//
//	{"id": "...", "title": "...", "subcategory": "...", "price": 4.99, "rating": 4.2, "unavailable": false}
//
// price and rating may be null or absent.
type Item struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Subcategory string   `json:"subcategory"`
	Price       *float64 `json:"price"`
	Rating      *float64 `json:"rating"`
	Unavailable bool     `json:"unavailable"`
}

// Round is one instance of the game: a cart plus candidate replacements
// keyed by the id of each unavailable cart item.
type Round struct {
	Cart         []Item            `json:"cart"`
	Replacements map[string][]Item `json:"replacements"`
}

// Normalize gives every unavailable cart item a (possibly empty) candidate
// list and drops lists keyed by items that are available or not in the cart.
func (r *Round) Normalize() {
	if r.Replacements == nil {
		r.Replacements = make(map[string][]Item)
	}

	unavailable := make(map[string]struct{}, len(r.Cart))
	for _, it := range r.Cart {
		if !it.Unavailable {
			continue
		}
		unavailable[it.ID] = struct{}{}
		if r.Replacements[it.ID] == nil {
			r.Replacements[it.ID] = []Item{}
		}
	}

	for id := range r.Replacements {
		if _, ok := unavailable[id]; !ok {
			delete(r.Replacements, id)
		}
	}
}

// UnavailableItems returns the out-of-stock cart items in cart order.
func (r *Round) UnavailableItems() []Item {
	out := make([]Item, 0, len(r.Cart))
	for _, it := range r.Cart {
		if it.Unavailable {
			out = append(out, it)
		}
	}
	return out
}

// CartItem looks up a cart entry by id.
func (r *Round) CartItem(id string) (Item, bool) {
	for _, it := range r.Cart {
		if it.ID == id {
			return it, true
		}
	}
	return Item{}, false
}

// Candidate resolves a replacement id against the candidates offered for originalID.
func (r *Round) Candidate(originalID, replacementID string) (Item, bool) {
	for _, c := range r.Replacements[originalID] {
		if c.ID == replacementID {
			return c, true
		}
	}
	return Item{}, false
}
