// Package cart owns the in-memory shopping cart and drives the place-order
// workflow, including the membership-status reconciliation that follows a
// successful order.
package cart

import (
	"context"
	"sync"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mikawa/storefront/internal/actionlog"
	"github.com/mikawa/storefront/internal/catalog"
	"github.com/mikawa/storefront/internal/gateway"
	"github.com/mikawa/storefront/internal/session"
	"github.com/mikawa/storefront/pkg/pubsub"
)

var (
	// ErrNotAuthenticated is returned when an order is submitted without a
	// resolved identity. It is a local contract violation; no network call
	// is made.
	ErrNotAuthenticated = errors.New("user not authenticated")

	// ErrOrderInFlight is returned when a submission starts while another
	// one is still running. Duplicates are rejected, not coalesced.
	ErrOrderInFlight = errors.New("order submission already in flight")

	// ErrEmptyCart is returned when there is nothing to order.
	ErrEmptyCart = errors.New("cart is empty")

	// ErrInvalidPrice is returned when a product with a negative price is
	// added. Prices are validated at insertion so totals never have to
	// defend against malformed values.
	ErrInvalidPrice = errors.New("product price must not be negative")
)

// Line is one cart entry: a snapshot of the product's economically relevant
// fields at the moment it was added, plus a synthetic id so a specific line
// can be removed without positional ambiguity. Re-adding the same product
// creates an independent second line; there is no quantity merging.
type Line struct {
	ID          string
	ProductID   int
	ProductName string
	Price       decimal.Decimal
}

// Gateway is the slice of the order backend the orchestrator needs.
type Gateway interface {
	PlaceOrder(ctx context.Context, req gateway.OrderRequest) (*gateway.OrderResponse, error)
	FetchMemberStatus(ctx context.Context, userID string) *gateway.MemberStatus
	RecomputeMemberStatus(ctx context.Context, userID, orderNumber string) (*gateway.MemberStatus, error)
}

// IdentitySource provides a point-in-time identity snapshot.
type IdentitySource interface {
	Identity() session.Identity
}

// Notifier receives the user-facing outcomes of the order workflow.
// A status failure is distinct from an order failure: the order stands.
type Notifier interface {
	OrderPlaced(resp gateway.OrderResponse)
	MemberStatusUpdated(status gateway.MemberStatus)
	MemberStatusFailed(err error)
}

// NopNotifier discards all notifications.
type NopNotifier struct{}

func (NopNotifier) OrderPlaced(gateway.OrderResponse)        {}
func (NopNotifier) MemberStatusUpdated(gateway.MemberStatus) {}
func (NopNotifier) MemberStatusFailed(error)                 {}

// Orchestrator owns the cart sequence, the cart-panel and membership-menu
// visibility flags, the last known membership status, and the in-flight
// submission guard.
type Orchestrator struct {
	gw     Gateway
	ids    IdentitySource
	log    *actionlog.Logger
	notify Notifier

	status *pubsub.Subject[gateway.MemberStatus]

	mu          sync.Mutex
	lines       []Line
	visible     bool
	menuVisible bool
	inFlight    bool
}

// New creates an Orchestrator with an empty, hidden cart.
func New(gw Gateway, ids IdentitySource, log *actionlog.Logger, notify Notifier) *Orchestrator {
	if notify == nil {
		notify = NopNotifier{}
	}
	return &Orchestrator{
		gw:     gw,
		ids:    ids,
		log:    log,
		notify: notify,
		status: pubsub.NewSubject[gateway.MemberStatus](),
	}
}

// Add prepends a line derived from the product, so the cart reads
// most-recently-added first.
func (o *Orchestrator) Add(p catalog.Product) (Line, error) {
	if p.Price.IsNegative() {
		return Line{}, errors.Wrapf(ErrInvalidPrice, "product %d", p.ID)
	}

	line := Line{
		ID:          uuid.New().String(),
		ProductID:   p.ID,
		ProductName: p.Name,
		Price:       p.Price,
	}

	o.mu.Lock()
	o.lines = append([]Line{line}, o.lines...)
	o.mu.Unlock()

	o.log.Action("add_to_cart", actionlog.Details{
		"productId":   p.ID,
		"productName": p.Name,
	})
	return line, nil
}

// RemoveAt removes the line at the given position. An out-of-range index is
// a no-op: positions shift as the cart mutates, and a stale index must not
// corrupt state. RemoveLine is the unambiguous alternative.
func (o *Orchestrator) RemoveAt(index int) {
	o.mu.Lock()
	if index < 0 || index >= len(o.lines) {
		o.mu.Unlock()
		return
	}
	removed := o.lines[index]
	o.lines = append(o.lines[:index], o.lines[index+1:]...)
	o.mu.Unlock()

	o.log.Action("remove_from_cart", actionlog.Details{
		"productId":   removed.ProductID,
		"productName": removed.ProductName,
	})
}

// RemoveLine removes the line with the given synthetic id. It reports
// whether a line was removed.
func (o *Orchestrator) RemoveLine(lineID string) bool {
	o.mu.Lock()
	for i, line := range o.lines {
		if line.ID == lineID {
			o.lines = append(o.lines[:i], o.lines[i+1:]...)
			o.mu.Unlock()
			o.log.Action("remove_from_cart", actionlog.Details{
				"productId":   line.ProductID,
				"productName": line.ProductName,
			})
			return true
		}
	}
	o.mu.Unlock()
	return false
}

// Lines returns a copy of the current cart sequence.
func (o *Orchestrator) Lines() []Line {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]Line(nil), o.lines...)
}

// TotalQuantity is the number of lines currently in the cart. Always derived,
// never stored.
func (o *Orchestrator) TotalQuantity() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.lines)
}

// TotalPrice is the sum of line prices. Always derived, never stored.
func (o *Orchestrator) TotalPrice() decimal.Decimal {
	o.mu.Lock()
	defer o.mu.Unlock()
	return totalPrice(o.lines)
}

func totalPrice(lines []Line) decimal.Decimal {
	sum := decimal.Zero
	for _, line := range lines {
		sum = sum.Add(line.Price)
	}
	return sum
}

// Visible reports whether the cart panel is shown.
func (o *Orchestrator) Visible() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.visible
}

// ToggleVisibility flips the cart panel and returns the new state. Pure UI
// state; no business effect.
func (o *Orchestrator) ToggleVisibility() bool {
	o.mu.Lock()
	o.visible = !o.visible
	visible := o.visible
	o.mu.Unlock()

	o.log.Action("toggle_cart", actionlog.Details{"isVisible": visible})
	return visible
}

// MembershipMenuVisible reports whether the membership menu is shown.
func (o *Orchestrator) MembershipMenuVisible() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.menuVisible
}

// ToggleMembershipMenu flips the membership menu and returns the new state.
func (o *Orchestrator) ToggleMembershipMenu() bool {
	o.mu.Lock()
	o.menuVisible = !o.menuVisible
	visible := o.menuVisible
	o.mu.Unlock()

	o.log.Action("toggle_membership_menu", actionlog.Details{"isVisible": visible})
	return visible
}

// MemberStatus is the observable membership status stream. It holds no value
// until the first successful fetch or order-linked recompute.
func (o *Orchestrator) MemberStatus() *pubsub.Subject[gateway.MemberStatus] {
	return o.status
}

// RefreshMemberStatus fetches the membership status best-effort, typically
// when an identity appears. On failure the held status is left untouched.
func (o *Orchestrator) RefreshMemberStatus(ctx context.Context, userID string) {
	if st := o.gw.FetchMemberStatus(ctx, userID); st != nil {
		o.status.Set(*st)
	}
}
