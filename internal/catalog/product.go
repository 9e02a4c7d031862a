package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product represents a catalog item available for purchase. The catalog is
// static seed data; products are immutable after load.
type Product struct {
	ID           int
	Name         string
	Category     string
	Price        decimal.Decimal
	Rating       int
	OnSale       bool
	ReleaseDate  time.Time
	AvailableQty int
	ImageURL     string

	// New is derived at load time: the product was released within the three
	// months preceding the reference date.
	New bool
}

// newArrivalWindow is how far back from the reference date a release still
// counts as a new arrival.
const newArrivalWindow = 3 // months

// MarkNewArrivals sets the New flag on every product released after
// referenceDate minus three months.
func MarkNewArrivals(products []Product, referenceDate time.Time) {
	cutoff := referenceDate.AddDate(0, -newArrivalWindow, 0)
	for i := range products {
		products[i].New = products[i].ReleaseDate.After(cutoff)
	}
}
