package permission

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed menu.yaml
var canonicalMenuYAML []byte

// MenuEntry is one navigation entry and the roles allowed to see it.
type MenuEntry struct {
	Label string `yaml:"label"`
	Icon  string `yaml:"icon"`
	Roles []Role `yaml:"roles"`
}

// Allows reports whether role is listed for the entry.
func (e MenuEntry) Allows(role Role) bool {
	for _, r := range e.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Menu is an ordered list of entries whose role sets have been compiled
// against a registry.
type Menu struct {
	registry *Registry
	entries  []MenuEntry
	masks    []Mask64
}

// NewMenu compiles entries against registry. Entries without a label or with
// unregistered roles are rejected.
func NewMenu(registry *Registry, entries []MenuEntry) (*Menu, error) {
	if registry == nil {
		return nil, errors.New("menu requires a role registry")
	}
	m := &Menu{
		registry: registry,
		entries:  make([]MenuEntry, 0, len(entries)),
		masks:    make([]Mask64, 0, len(entries)),
	}
	for i, e := range entries {
		e.Label = strings.TrimSpace(e.Label)
		if e.Label == "" {
			return nil, fmt.Errorf("menu entry %d: empty label", i)
		}
		mask, err := registry.Mask(e.Roles)
		if err != nil {
			return nil, fmt.Errorf("menu entry %q: %w", e.Label, err)
		}
		e.Roles = append([]Role(nil), e.Roles...)
		m.entries = append(m.entries, e)
		m.masks = append(m.masks, mask)
	}
	return m, nil
}

// ParseMenu decodes a YAML list of entries and compiles it.
func ParseMenu(data []byte, registry *Registry) (*Menu, error) {
	var entries []MenuEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse menu: %w", err)
	}
	return NewMenu(registry, entries)
}

var canonicalMenu = sync.OnceValue(func() *Menu {
	m, err := ParseMenu(canonicalMenuYAML, DefaultRegistry())
	if err != nil {
		panic("permission: embedded menu: " + err.Error())
	}
	return m
})

// CanonicalMenu returns the built-in navigation menu.
func CanonicalMenu() *Menu {
	return canonicalMenu()
}

// Entries returns a copy of every entry in canonical order.
func (m *Menu) Entries() []MenuEntry {
	if m == nil {
		return nil
	}
	out := make([]MenuEntry, len(m.entries))
	copy(out, m.entries)
	return out
}

// Len returns the number of entries.
func (m *Menu) Len() int {
	if m == nil {
		return 0
	}
	return len(m.entries)
}

// VisibleEntries returns the subsequence of menu whose role set contains
// role, in menu order. An empty or unregistered role yields an empty list.
func VisibleEntries(role Role, menu *Menu) []MenuEntry {
	out := []MenuEntry{}
	if role == "" || menu == nil {
		return out
	}
	bit, ok := menu.registry.Bit(role)
	if !ok {
		return out
	}
	for i := range menu.entries {
		if menu.masks[i].Has(bit) {
			out = append(out, menu.entries[i])
		}
	}
	return out
}
