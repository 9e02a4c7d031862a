package gateway

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// OrderItem is the economically relevant snapshot of a product at the moment
// it was added to the cart.
type OrderItem struct {
	ProductID   int             `json:"productId"`
	ProductName string          `json:"productName"`
	Price       decimal.Decimal `json:"price"`
}

// OrderRequest is built from the cart and identity snapshots at submit time.
// It is never persisted locally.
type OrderRequest struct {
	UserID        string
	UserName      string
	TotalPrice    decimal.Decimal
	TotalQuantity int
	Items         []OrderItem
}

// OrderResponse is the authoritative result of placing an order. A non-empty
// OrderNumber signals success.
type OrderResponse struct {
	OrderNumber string `json:"orderNumber"`
	Status      string `json:"status"`
	Message     string `json:"message"`
}

// MemberStatus is the server-maintained points/rank summary mirrored
// client-side for display. The backend is the record of truth.
type MemberStatus struct {
	Points int    `json:"points"`
	Rank   string `json:"rank"`
}

// Order is one entry of the order-history listing.
type Order struct {
	OrderDate     time.Time       `json:"orderDate"`
	OrderNumber   string          `json:"orderNumber"`
	TotalPrice    decimal.Decimal `json:"totalPrice"`
	TotalQuantity int             `json:"totalQuantity"`
	Items         []OrderItem     `json:"orderItems"`
}

// Pageable describes the zero-indexed page window of a history response.
type Pageable struct {
	PageNumber    int `json:"pageNumber"`
	PageSize      int `json:"pageSize"`
	TotalElements int `json:"totalElements"`
	TotalPages    int `json:"totalPages"`
}

// HistoryPage is one page of a user's past orders.
type HistoryPage struct {
	Content  []Order  `json:"content"`
	Pageable Pageable `json:"pageable"`
}

// StatusError reports a non-2xx backend response.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend returned status %d", e.Code)
	}
	return fmt.Sprintf("backend returned status %d: %s", e.Code, e.Message)
}
