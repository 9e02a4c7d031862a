// Package catalog holds the product catalog and the browsing state over it:
// a toggleable category filter and a handful of sort orders.
package catalog

import (
	"sort"

	"github.com/go-faster/errors"
)

// SortOption selects the ordering applied to the current filtered view.
type SortOption string

const (
	SortDefault    SortOption = "default" // by product id ascending
	SortPriceAsc   SortOption = "priceAsc"
	SortPriceDesc  SortOption = "priceDesc"
	SortRatingDesc SortOption = "ratingDesc"
)

// ErrUnknownProduct is returned when a product id is not in the catalog.
var ErrUnknownProduct = errors.New("unknown product")

// Catalog owns the full product list and the currently filtered view.
// It is not safe for concurrent use; browsing is driven from a single
// goroutine like the rest of the UI state.
type Catalog struct {
	products []Product
	filtered []Product
	selected string
}

// New creates a Catalog over the given products with no filter applied.
func New(products []Product) *Catalog {
	c := &Catalog{products: products}
	c.filtered = append([]Product(nil), products...)
	return c
}

// Products returns the current filtered (and sorted) view.
func (c *Catalog) Products() []Product {
	return c.filtered
}

// All returns the full unfiltered catalog.
func (c *Catalog) All() []Product {
	return c.products
}

// ByID looks a product up in the full catalog, ignoring the active filter.
func (c *Catalog) ByID(id int) (Product, error) {
	for _, p := range c.products {
		if p.ID == id {
			return p, nil
		}
	}
	return Product{}, errors.Wrapf(ErrUnknownProduct, "id %d", id)
}

// Categories returns the distinct categories in catalog order.
func (c *Catalog) Categories() []string {
	seen := make(map[string]bool)
	var out []string
	for _, p := range c.products {
		if !seen[p.Category] {
			seen[p.Category] = true
			out = append(out, p.Category)
		}
	}
	return out
}

// SelectedCategory returns the active filter category, or "" when unfiltered.
func (c *Catalog) SelectedCategory() string {
	return c.selected
}

// ToggleCategory applies or clears the category filter. Selecting the active
// category again restores the full catalog; selecting a different category
// replaces the filter.
func (c *Catalog) ToggleCategory(category string) {
	if c.selected == category {
		c.selected = ""
		c.filtered = append(c.filtered[:0:0], c.products...)
		return
	}
	c.selected = category
	c.filtered = c.filtered[:0:0]
	for _, p := range c.products {
		if p.Category == category {
			c.filtered = append(c.filtered, p)
		}
	}
}

// Sort reorders the current filtered view in place. Unknown options fall back
// to the default product-id ordering.
func (c *Catalog) Sort(opt SortOption) {
	switch opt {
	case SortPriceAsc:
		sort.SliceStable(c.filtered, func(i, j int) bool {
			return c.filtered[i].Price.LessThan(c.filtered[j].Price)
		})
	case SortPriceDesc:
		sort.SliceStable(c.filtered, func(i, j int) bool {
			return c.filtered[j].Price.LessThan(c.filtered[i].Price)
		})
	case SortRatingDesc:
		sort.SliceStable(c.filtered, func(i, j int) bool {
			return c.filtered[j].Rating < c.filtered[i].Rating
		})
	default:
		sort.SliceStable(c.filtered, func(i, j int) bool {
			return c.filtered[i].ID < c.filtered[j].ID
		})
	}
}
