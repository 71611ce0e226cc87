package catalog

import (
	"sync"

	"github.com/mansetdig/goAset/backend"
)

// Line is one product in a borrow list.
type Line struct {
	Product  backend.Product
	Quantity int
}

// Borrow tracks how many of each product the user intends to borrow.
// Quantities stay within [0, stock]. The zero value is ready to use.
type Borrow struct {
	mu    sync.Mutex
	lines map[string]Line
}

// Increment adds one of p, up to its stock, and returns the new quantity.
func (b *Borrow) Increment(p backend.Product) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.lines == nil {
		b.lines = make(map[string]Line)
	}
	l := b.lines[p.ID]
	l.Product = p
	if l.Quantity < p.Stock {
		l.Quantity++
	}
	if l.Quantity == 0 {
		return 0
	}
	b.lines[p.ID] = l
	return l.Quantity
}

// Decrement removes one of the product with id, never below zero.
func (b *Borrow) Decrement(id string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	l, ok := b.lines[id]
	if !ok {
		return 0
	}
	l.Quantity--
	if l.Quantity <= 0 {
		delete(b.lines, id)
		return 0
	}
	b.lines[id] = l
	return l.Quantity
}

// Quantity returns the current quantity of id.
func (b *Borrow) Quantity(id string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lines[id].Quantity
}

// Lines returns the non-zero lines in the order of products.
func (b *Borrow) Lines(products []backend.Product) []Line {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Line, 0, len(b.lines))
	for _, p := range products {
		if l, ok := b.lines[p.ID]; ok {
			out = append(out, l)
		}
	}
	return out
}

// Reset empties the list.
func (b *Borrow) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lines = nil
}
