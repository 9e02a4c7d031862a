package stubapi

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikawa/storefront/internal/gateway"
)

// The stub is exercised through the real client so the two sides of the
// wire contract are tested against each other.
func testClient(t *testing.T) (*gateway.Client, *Store) {
	t.Helper()
	store := NewStore()
	srv := httptest.NewServer(NewHandler(store).Routes())
	t.Cleanup(srv.Close)
	return gateway.NewClient(srv.URL, srv.Client()), store
}

func order(prices ...int64) gateway.OrderRequest {
	req := gateway.OrderRequest{
		UserID:     "u1",
		UserName:   "alice",
		TotalPrice: decimal.Zero,
	}
	for i, p := range prices {
		req.Items = append(req.Items, gateway.OrderItem{
			ProductID:   i + 1,
			ProductName: fmt.Sprintf("product-%d", i+1),
			Price:       decimal.NewFromInt(p),
		})
		req.TotalPrice = req.TotalPrice.Add(decimal.NewFromInt(p))
		req.TotalQuantity++
	}
	return req
}

func TestPlaceOrder(t *testing.T) {
	client, _ := testClient(t)

	resp, err := client.PlaceOrder(context.Background(), order(100, 50))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(resp.OrderNumber, "ORD-"), "got %q", resp.OrderNumber)
	assert.Equal(t, "CONFIRMED", resp.Status)
	assert.NotEmpty(t, resp.Message)
}

func TestPlaceOrder_Validation(t *testing.T) {
	client, _ := testClient(t)

	tests := []struct {
		name string
		req  gateway.OrderRequest
	}{
		{"missing user", gateway.OrderRequest{Items: order(100).Items, TotalPrice: decimal.NewFromInt(100)}},
		{"no items", gateway.OrderRequest{UserID: "u1", TotalPrice: decimal.Zero}},
		{"negative total", gateway.OrderRequest{
			UserID:     "u1",
			Items:      order(100).Items,
			TotalPrice: decimal.NewFromInt(-100),
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.PlaceOrder(context.Background(), tt.req)
			require.Error(t, err)

			var statusErr *gateway.StatusError
			require.ErrorAs(t, err, &statusErr)
			assert.Equal(t, http.StatusBadRequest, statusErr.Code)
			assert.NotEmpty(t, statusErr.Message)
		})
	}
}

func TestOrderHistory_PaginationAndOrder(t *testing.T) {
	client, _ := testClient(t)

	for i := 0; i < 25; i++ {
		_, err := client.PlaceOrder(context.Background(), order(int64(10+i)))
		require.NoError(t, err)
	}

	page0, err := client.OrderHistory(context.Background(), "u1", 0, 10)
	require.NoError(t, err)
	assert.Len(t, page0.Content, 10)
	assert.Equal(t, 25, page0.Pageable.TotalElements)
	assert.Equal(t, 3, page0.Pageable.TotalPages)
	assert.True(t, decimal.NewFromInt(34).Equal(page0.Content[0].TotalPrice), "newest order first")

	page2, err := client.OrderHistory(context.Background(), "u1", 2, 10)
	require.NoError(t, err)
	assert.Len(t, page2.Content, 5)
	assert.True(t, decimal.NewFromInt(10).Equal(page2.Content[4].TotalPrice), "oldest order last")

	past, err := client.OrderHistory(context.Background(), "u1", 9, 10)
	require.NoError(t, err)
	assert.Empty(t, past.Content, "pages past the end are empty, not errors")

	other, err := client.OrderHistory(context.Background(), "someone-else", 0, 10)
	require.NoError(t, err)
	assert.Empty(t, other.Content)
	assert.Zero(t, other.Pageable.TotalElements)
}

func TestMemberStatus_Accrual(t *testing.T) {
	client, _ := testClient(t)

	status := client.FetchMemberStatus(context.Background(), "u1")
	require.NotNil(t, status)
	assert.Equal(t, gateway.MemberStatus{Points: 0, Rank: "Bronze"}, *status)

	_, err := client.PlaceOrder(context.Background(), order(4990))
	require.NoError(t, err)

	status, err2 := client.RecomputeMemberStatus(context.Background(), "u1", "ORD-X")
	require.NoError(t, err2)
	assert.Equal(t, gateway.MemberStatus{Points: 499, Rank: "Bronze"}, *status)

	_, err = client.PlaceOrder(context.Background(), order(10))
	require.NoError(t, err)
	status = client.FetchMemberStatus(context.Background(), "u1")
	require.NotNil(t, status)
	assert.Equal(t, gateway.MemberStatus{Points: 500, Rank: "Silver"}, *status)
}

func TestRankThresholds(t *testing.T) {
	tests := []struct {
		points int64
		want   string
	}{
		{0, "Bronze"},
		{499, "Bronze"},
		{500, "Silver"},
		{1999, "Silver"},
		{2000, "Gold"},
		{5000, "Gold"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, rankFor(tt.points), "points=%d", tt.points)
	}
}

func TestLogSinks(t *testing.T) {
	store := NewStore()
	srv := httptest.NewServer(NewHandler(store).Routes())
	t.Cleanup(srv.Close)

	post := func(path, body string) int {
		resp, err := http.Post(srv.URL+path, "application/json", strings.NewReader(body))
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		return resp.StatusCode
	}

	assert.Equal(t, http.StatusAccepted, post("/logs/user-actions", `{"action":"add_to_cart"}`))
	assert.Equal(t, http.StatusAccepted, post("/logs/errors", `{"message":"boom"}`))
	assert.Equal(t, http.StatusAccepted, post("/logs/user-actions", `not json`), "sinks never reject")

	actions, errs := store.EventCounts()
	assert.Equal(t, 2, actions)
	assert.Equal(t, 1, errs)
}
