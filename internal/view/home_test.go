package view

import (
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/mikawa/storefront/internal/actionlog"
	"github.com/mikawa/storefront/internal/cart"
	"github.com/mikawa/storefront/internal/catalog"
)

func testHomeView(t *testing.T) (*HomeView, *cart.Orchestrator) {
	t.Helper()
	products := []catalog.Product{
		{ID: 1, Name: "Fridge", Category: "appliances", Price: decimal.NewFromInt(1200), Rating: 4},
		{ID: 2, Name: "Laptop", Category: "electronics", Price: decimal.NewFromInt(900), Rating: 5},
		{ID: 3, Name: "Washer", Category: "appliances", Price: decimal.NewFromInt(700), Rating: 3},
	}
	log := actionlog.New(zaptest.NewLogger(t), http.DefaultClient, actionlog.Config{})
	o := cart.New(nil, staticIdentity{}, log, nil)
	return NewHomeView(catalog.New(products), o), o
}

func TestHomeView_FilterAndSort(t *testing.T) {
	v, _ := testHomeView(t)

	v.ToggleCategory("appliances")
	require.Len(t, v.Products(), 2)

	v.Sort(catalog.SortPriceAsc)
	assert.Equal(t, 3, v.Products()[0].ID)
	assert.Equal(t, 1, v.Products()[1].ID)

	v.ToggleCategory("appliances")
	assert.Len(t, v.Products(), 3, "toggling the same category restores the full list")
}

func TestHomeView_AddToCart(t *testing.T) {
	v, o := testHomeView(t)

	line, err := v.AddToCart(2)
	require.NoError(t, err)
	assert.Equal(t, "Laptop", line.ProductName)
	assert.Equal(t, 1, o.TotalQuantity())

	_, err = v.AddToCart(99)
	require.ErrorIs(t, err, catalog.ErrUnknownProduct)
	assert.Equal(t, 1, o.TotalQuantity())
}
