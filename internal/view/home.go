package view

import (
	"github.com/go-faster/errors"

	"github.com/mikawa/storefront/internal/cart"
	"github.com/mikawa/storefront/internal/catalog"
)

// HomeView is the product browsing page: the filtered catalog plus the
// add-to-cart action on each product card.
type HomeView struct {
	catalog *catalog.Catalog
	cart    *cart.Orchestrator
}

func NewHomeView(c *catalog.Catalog, o *cart.Orchestrator) *HomeView {
	return &HomeView{catalog: c, cart: o}
}

// Products returns the current filtered, sorted product list.
func (v *HomeView) Products() []catalog.Product {
	return v.catalog.Products()
}

func (v *HomeView) Categories() []string {
	return v.catalog.Categories()
}

// ToggleCategory filters to one category, or back to the full list when
// the selected category is toggled again.
func (v *HomeView) ToggleCategory(category string) {
	v.catalog.ToggleCategory(category)
}

func (v *HomeView) Sort(opt catalog.SortOption) {
	v.catalog.Sort(opt)
}

// AddToCart puts one unit of the product into the cart.
func (v *HomeView) AddToCart(productID int) (cart.Line, error) {
	p, err := v.catalog.ByID(productID)
	if err != nil {
		return cart.Line{}, errors.Wrap(err, "add to cart")
	}
	return v.cart.Add(p)
}
