// Package stubapi is the in-memory development backend for the storefront
// client: orders, paginated history, membership status, and log sinks.
package stubapi

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mikawa/storefront/internal/gateway"
)

// Membership rank thresholds, in points. Points accrue as one point per 10
// spent, over the user's lifetime.
var (
	silverThreshold = int64(500)
	goldThreshold   = int64(2000)
)

// Store keeps all state in memory. Everything is lost on restart, which is
// the point: a clean fixture for every development session.
type Store struct {
	mu     sync.Mutex
	orders map[string][]gateway.Order
	spend  map[string]decimal.Decimal

	actionEvents int
	errorEvents  int
}

func NewStore() *Store {
	return &Store{
		orders: make(map[string][]gateway.Order),
		spend:  make(map[string]decimal.Decimal),
	}
}

// PlaceOrder records the order newest-first and returns the confirmation.
func (s *Store) PlaceOrder(userID string, totalPrice decimal.Decimal, totalQuantity int, items []gateway.OrderItem) gateway.OrderResponse {
	order := gateway.Order{
		OrderDate:     time.Now().UTC(),
		OrderNumber:   newOrderNumber(),
		TotalPrice:    totalPrice,
		TotalQuantity: totalQuantity,
		Items:         items,
	}

	s.mu.Lock()
	s.orders[userID] = append([]gateway.Order{order}, s.orders[userID]...)
	s.spend[userID] = s.spend[userID].Add(totalPrice)
	s.mu.Unlock()

	return gateway.OrderResponse{
		OrderNumber: order.OrderNumber,
		Status:      "CONFIRMED",
		Message:     "Order placed successfully",
	}
}

// History returns one zero-indexed page of the user's orders, newest first.
// Pages past the end come back empty rather than failing.
func (s *Store) History(userID string, page, size int) gateway.HistoryPage {
	s.mu.Lock()
	orders := s.orders[userID]
	s.mu.Unlock()

	total := len(orders)
	totalPages := 0
	if size > 0 {
		totalPages = (total + size - 1) / size
	}

	var content []gateway.Order
	if size > 0 && page >= 0 {
		lo := page * size
		if lo < total {
			hi := lo + size
			if hi > total {
				hi = total
			}
			content = append([]gateway.Order(nil), orders[lo:hi]...)
		}
	}

	return gateway.HistoryPage{
		Content: content,
		Pageable: gateway.Pageable{
			PageNumber:    page,
			PageSize:      size,
			TotalElements: total,
			TotalPages:    totalPages,
		},
	}
}

// MemberStatus derives the points and rank from lifetime spend. Users with
// no orders are Bronze with zero points.
func (s *Store) MemberStatus(userID string) gateway.MemberStatus {
	s.mu.Lock()
	spend := s.spend[userID]
	s.mu.Unlock()

	points := spend.Div(decimal.NewFromInt(10)).IntPart()
	if points < 0 {
		points = 0
	}
	return gateway.MemberStatus{
		Points: int(points),
		Rank:   rankFor(points),
	}
}

func rankFor(points int64) string {
	switch {
	case points >= goldThreshold:
		return "Gold"
	case points >= silverThreshold:
		return "Silver"
	default:
		return "Bronze"
	}
}

func (s *Store) CountAction() {
	s.mu.Lock()
	s.actionEvents++
	s.mu.Unlock()
}

func (s *Store) CountError() {
	s.mu.Lock()
	s.errorEvents++
	s.mu.Unlock()
}

// EventCounts reports how many log events arrived on each sink.
func (s *Store) EventCounts() (actions, errs int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.actionEvents, s.errorEvents
}

func newOrderNumber() string {
	id := uuid.New().String()
	return "ORD-" + strings.ToUpper(id[:8])
}
