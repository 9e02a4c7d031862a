package catalog

import (
	_ "embed"
	"encoding/json"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// seedJSON contains the embedded seed catalog.
//
//go:embed seed/products.json
var seedJSON []byte

// referenceDate anchors the new-arrival computation. The seed catalog is a
// fixed snapshot, so the reference is fixed with it rather than derived from
// the wall clock.
var referenceDate = time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC)

type productJSON struct {
	ID           int             `json:"id"`
	Name         string          `json:"name"`
	Category     string          `json:"category"`
	Price        decimal.Decimal `json:"price"`
	Rating       int             `json:"rating"`
	IsSale       bool            `json:"isSale"`
	ReleaseDate  string          `json:"releaseDate"`
	AvailableQty int             `json:"availableQty"`
	ImageURL     string          `json:"imageUrl"`
}

// Load decodes the embedded seed catalog and marks new arrivals.
func Load() (*Catalog, error) {
	var raw []productJSON
	if err := json.Unmarshal(seedJSON, &raw); err != nil {
		return nil, errors.Wrap(err, "parse seed catalog")
	}

	products := make([]Product, len(raw))
	for i, r := range raw {
		released, err := time.Parse(time.DateOnly, r.ReleaseDate)
		if err != nil {
			return nil, errors.Wrapf(err, "product %d: release date", r.ID)
		}
		products[i] = Product{
			ID:           r.ID,
			Name:         r.Name,
			Category:     r.Category,
			Price:        r.Price,
			Rating:       r.Rating,
			OnSale:       r.IsSale,
			ReleaseDate:  released,
			AvailableQty: r.AvailableQty,
			ImageURL:     r.ImageURL,
		}
	}

	MarkNewArrivals(products, referenceDate)
	return New(products), nil
}
