// Package registry holds the named upstream product configurations and the
// process-wide "current product" selection read by the gateway before every
// upstream call.
package registry

import (
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// DefaultProductID is the configuration used when no explicit selection has
// been made or an unknown id is requested.
const DefaultProductID = "dear-sa"

// Product identifies one upstream tenant configuration.
// Credential is the opaque value sent as the raw Authorization header, no
// scheme prefix. An empty credential means "not configured".
type Product struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Credential  string `yaml:"credential"`
	Description string `yaml:"description"`
}

// Configured reports whether the product has a usable credential.
func (p Product) Configured() bool {
	return p.Credential != ""
}

// Registry stores products in insertion order and tracks the current
// selection. Products are defined at startup and never mutated; only the
// current selection changes at runtime. Concurrent SetCurrent calls race
// semantically (last write wins) which is acceptable for a single-operator
// portal; the lock only keeps the selection read/write data-safe.
type Registry struct {
	mu       sync.RWMutex
	products []Product
	index    map[string]int
	current  string
}

// Defaults returns the built-in product set. Credentials are supplied via
// configuration; the built-ins carry none.
func Defaults() []Product {
	return []Product{
		{ID: "dear-sa", Name: "DearSA", Description: "DearSA product configuration"},
		{ID: "tlu-sa", Name: "TLU SA", Description: "TLU SA product configuration"},
		{ID: "free-sa", Name: "FreeSA", Description: "FreeSA product configuration"},
	}
}

// New creates a registry from the given products. The current selection
// starts at the default product.
func New(products []Product) (*Registry, error) {
	if len(products) == 0 {
		return nil, fmt.Errorf("registry requires at least one product")
	}
	index := make(map[string]int, len(products))
	for i, p := range products {
		if p.ID == "" {
			return nil, fmt.Errorf("product %d has no id", i)
		}
		if _, dup := index[p.ID]; dup {
			return nil, fmt.Errorf("duplicate product id %q", p.ID)
		}
		index[p.ID] = i
	}

	r := &Registry{products: products, index: index}
	r.current = r.Default().ID
	return r, nil
}

// LoadFile reads a YAML product list, replacing the built-in definitions.
func LoadFile(path string) ([]Product, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read products file: %w", err)
	}
	var doc struct {
		Products []Product `yaml:"products"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse products file: %w", err)
	}
	if len(doc.Products) == 0 {
		return nil, fmt.Errorf("products file %s defines no products", path)
	}
	return doc.Products, nil
}

// List returns all products in insertion order.
func (r *Registry) List() []Product {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Product, len(r.products))
	copy(out, r.products)
	return out
}

// ByID returns the matching product, or the default configuration if the id
// is unknown or empty. It never fails.
func (r *Registry) ByID(id string) Product {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if i, ok := r.index[id]; ok {
		return r.products[i]
	}
	return r.defaultLocked()
}

// Default returns the designated default product, or the first entry when
// the default id is absent.
func (r *Registry) Default() Product {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.defaultLocked()
}

func (r *Registry) defaultLocked() Product {
	if i, ok := r.index[DefaultProductID]; ok {
		return r.products[i]
	}
	return r.products[0]
}

// SetCurrent switches the current selection to the product with the given
// id, falling back to the default for unknown ids, and returns the selection.
func (r *Registry) SetCurrent(id string) Product {
	selected := r.ByID(id)
	r.mu.Lock()
	r.current = selected.ID
	r.mu.Unlock()
	return selected
}

// Current returns the currently selected product.
func (r *Registry) Current() Product {
	r.mu.RLock()
	id := r.current
	r.mu.RUnlock()
	return r.ByID(id)
}
