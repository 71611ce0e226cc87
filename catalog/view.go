package catalog

import (
	"context"
	"sync"

	"github.com/mansetdig/goAset/backend"
)

// View is the dashboard state: the loaded products, the search string and
// the current page. The shell owns one View and passes search changes and
// "asset added" notifications in explicitly.
type View struct {
	svc *Service

	mu       sync.Mutex
	products []backend.Product
	search   string
	page     int
}

func NewView(svc *Service) *View {
	return &View{svc: svc, page: 1}
}

// Reload fetches the product list again. On error the previous list is kept.
func (v *View) Reload(ctx context.Context) error {
	products, err := v.svc.Load(ctx)
	if err != nil {
		return err
	}
	v.mu.Lock()
	v.products = products
	v.mu.Unlock()
	return nil
}

// AssetAdded is called after an asset was created elsewhere.
func (v *View) AssetAdded(ctx context.Context) error {
	return v.Reload(ctx)
}

// SetSearch replaces the search string and returns to the first page.
func (v *View) SetSearch(search string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.search = search
	v.page = 1
}

func (v *View) Search() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.search
}

// SetPage moves to page n; out-of-range pages are clamped on Current.
func (v *View) SetPage(n int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.page = n
}

// Next advances one page if possible.
func (v *View) Next() Page {
	v.mu.Lock()
	defer v.mu.Unlock()
	p := v.currentLocked()
	if p.HasNext() {
		v.page = p.Number + 1
	}
	return v.currentLocked()
}

// Prev goes back one page if possible.
func (v *View) Prev() Page {
	v.mu.Lock()
	defer v.mu.Unlock()
	p := v.currentLocked()
	if p.HasPrev() {
		v.page = p.Number - 1
	}
	return v.currentLocked()
}

// Current returns the visible page.
func (v *View) Current() Page {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.currentLocked()
}

func (v *View) currentLocked() Page {
	p := Paginate(Filter(v.products, v.search), v.page, PerPage)
	v.page = p.Number
	return p
}
