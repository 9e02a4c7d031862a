package catalog

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProducts() []Product {
	return []Product{
		{ID: 1, Name: "Fridge A", Category: "Fridge", Price: decimal.NewFromInt(2200), Rating: 4},
		{ID: 2, Name: "Washer A", Category: "Washer", Price: decimal.NewFromInt(800), Rating: 5},
		{ID: 3, Name: "Fridge B", Category: "Fridge", Price: decimal.NewFromInt(1100), Rating: 3},
		{ID: 4, Name: "TV A", Category: "TV", Price: decimal.NewFromInt(300), Rating: 5},
	}
}

func TestToggleCategory_SameCategoryTwiceRestoresAll(t *testing.T) {
	c := New(testProducts())

	c.ToggleCategory("Fridge")
	require.Len(t, c.Products(), 2)
	assert.Equal(t, "Fridge", c.SelectedCategory())

	c.ToggleCategory("Fridge")
	assert.Len(t, c.Products(), 4)
	assert.Empty(t, c.SelectedCategory())
}

func TestToggleCategory_DifferentCategoryReplacesFilter(t *testing.T) {
	c := New(testProducts())

	c.ToggleCategory("Fridge")
	c.ToggleCategory("TV")

	require.Len(t, c.Products(), 1)
	assert.Equal(t, "TV A", c.Products()[0].Name)
	assert.Equal(t, "TV", c.SelectedCategory())
}

func TestSort(t *testing.T) {
	ids := func(ps []Product) []int {
		out := make([]int, len(ps))
		for i, p := range ps {
			out[i] = p.ID
		}
		return out
	}

	tests := []struct {
		opt  SortOption
		want []int
	}{
		{SortPriceAsc, []int{4, 2, 3, 1}},
		{SortPriceDesc, []int{1, 3, 2, 4}},
		{SortRatingDesc, []int{2, 4, 1, 3}},
		{SortDefault, []int{1, 2, 3, 4}},
		{SortOption("bogus"), []int{1, 2, 3, 4}},
	}
	for _, tt := range tests {
		t.Run(string(tt.opt), func(t *testing.T) {
			c := New(testProducts())
			c.Sort(tt.opt)
			assert.Equal(t, tt.want, ids(c.Products()))
		})
	}
}

func TestSort_AppliesToFilteredView(t *testing.T) {
	c := New(testProducts())
	c.ToggleCategory("Fridge")
	c.Sort(SortPriceAsc)

	require.Len(t, c.Products(), 2)
	assert.Equal(t, 3, c.Products()[0].ID)
	assert.Equal(t, 1, c.Products()[1].ID)
}

func TestMarkNewArrivals(t *testing.T) {
	ref := time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC)
	products := []Product{
		{ID: 1, ReleaseDate: time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC)},
		{ID: 2, ReleaseDate: time.Date(2023, time.December, 30, 0, 0, 0, 0, time.UTC)},
		{ID: 3, ReleaseDate: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)}, // exactly on the cutoff
	}

	MarkNewArrivals(products, ref)

	assert.True(t, products[0].New)
	assert.False(t, products[1].New)
	assert.False(t, products[2].New, "cutoff itself is not after the cutoff")
}

func TestByID(t *testing.T) {
	c := New(testProducts())

	p, err := c.ByID(2)
	require.NoError(t, err)
	assert.Equal(t, "Washer A", p.Name)

	_, err = c.ByID(99)
	assert.ErrorIs(t, err, ErrUnknownProduct)
}

func TestLoad_SeedCatalog(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)

	all := c.All()
	require.Len(t, all, 15)

	assert.Equal(t, []string{"Fridge", "Washer", "Kitchen", "Vacuum", "Climate", "TV"}, c.Categories())

	// Products released after 2024-01-01 are new arrivals.
	byID := make(map[int]Product, len(all))
	for _, p := range all {
		byID[p.ID] = p
	}
	assert.True(t, byID[1].New, "French Door Fridge released 2024-02-01")
	assert.True(t, byID[12].New, "65 Inch 4K TV released 2024-04-21")
	assert.False(t, byID[2].New)
	assert.True(t, decimal.NewFromInt(2200).Equal(byID[1].Price))
}
