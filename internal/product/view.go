package product

// View is the listing-page state: a client-held product array plus the
// current filter, sort and page. Changing the filter or sort recomputes the
// visible set and resets paging to the first page.
type View struct {
	products []Product
	filter   Filter
	sort     Sort
	page     int
	perPage  int
	visible  []Product
}

// NewView builds a view over products showing perPage items per page.
func NewView(products []Product, perPage int) *View {
	if perPage <= 0 {
		perPage = 12
	}
	v := &View{products: products, page: 1, perPage: perPage}
	v.recompute()
	return v
}

// SetProducts replaces the backing array, e.g. after a fresh catalog fetch.
func (v *View) SetProducts(products []Product) {
	v.products = products
	v.page = 1
	v.recompute()
}

// SetFilter replaces the filter and resets to page 1.
func (v *View) SetFilter(f Filter) {
	v.filter = f
	v.page = 1
	v.recompute()
}

// SetSort replaces the sort mode and resets to page 1.
func (v *View) SetSort(mode Sort) {
	v.sort = mode
	v.page = 1
	v.recompute()
}

// SetPage clamps n into the valid page range.
func (v *View) SetPage(n int) {
	if n < 1 {
		n = 1
	}
	if max := v.TotalPages(); n > max {
		n = max
	}
	v.page = n
}

// Page returns the current page number.
func (v *View) Page() int { return v.page }

// TotalPages is at least 1 even for an empty result set.
func (v *View) TotalPages() int {
	n := (len(v.visible) + v.perPage - 1) / v.perPage
	if n < 1 {
		n = 1
	}
	return n
}

// Visible returns the filtered-and-sorted slice for the current page.
func (v *View) Visible() []Product {
	start := (v.page - 1) * v.perPage
	if start >= len(v.visible) {
		return nil
	}
	end := start + v.perPage
	if end > len(v.visible) {
		end = len(v.visible)
	}
	out := make([]Product, end-start)
	copy(out, v.visible[start:end])
	return out
}

// All returns the whole filtered-and-sorted set across pages.
func (v *View) All() []Product {
	out := make([]Product, len(v.visible))
	copy(out, v.visible)
	return out
}

func (v *View) recompute() {
	v.visible = Apply(v.products, v.filter, v.sort)
}
