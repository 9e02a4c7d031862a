package cart

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/mikawa/storefront/internal/actionlog"
	"github.com/mikawa/storefront/internal/gateway"
)

// Result is the outcome of a completed PlaceOrder workflow. The order itself
// succeeded; StatusErr is set when only the follow-up membership recompute
// failed, leaving the previously held status in place.
type Result struct {
	Order     gateway.OrderResponse
	Status    *gateway.MemberStatus
	StatusErr error
}

// PlaceOrder runs the order workflow:
//
//  1. Reject re-entrant submissions (ErrOrderInFlight) and empty carts.
//  2. Snapshot identity and cart once; an absent identity fails the attempt
//     before any network call (ErrNotAuthenticated).
//  3. Issue exactly one order-placement call. On failure the cart contents
//     and visibility are left exactly as they were.
//  4. On success, clear the cart, hide the panel, and recompute the
//     membership status using the snapshot's user id and the returned order
//     number. A recompute failure does not undo the order; it is surfaced
//     separately through the Notifier and Result.StatusErr.
func (o *Orchestrator) PlaceOrder(ctx context.Context) (*Result, error) {
	o.mu.Lock()
	if o.inFlight {
		o.mu.Unlock()
		return nil, ErrOrderInFlight
	}
	if len(o.lines) == 0 {
		o.mu.Unlock()
		return nil, ErrEmptyCart
	}
	o.inFlight = true
	lines := append([]Line(nil), o.lines...)
	o.mu.Unlock()

	defer func() {
		o.mu.Lock()
		o.inFlight = false
		o.mu.Unlock()
	}()

	total := totalPrice(lines)
	o.log.Action("place_order_initiated", actionlog.Details{
		"itemCount":  len(lines),
		"totalPrice": total,
	})

	identity := o.ids.Identity()
	if !identity.Present() {
		o.log.Error(ErrNotAuthenticated, "place_order", nil)
		return nil, ErrNotAuthenticated
	}

	req := gateway.OrderRequest{
		UserID:        identity.UserID,
		UserName:      identity.UserName,
		TotalPrice:    total,
		TotalQuantity: len(lines),
		Items:         make([]gateway.OrderItem, len(lines)),
	}
	for i, line := range lines {
		req.Items[i] = gateway.OrderItem{
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			Price:       line.Price,
		}
	}

	resp, err := o.gw.PlaceOrder(ctx, req)
	if err != nil {
		o.log.Error(err, "place_order", nil)
		return nil, errors.Wrap(err, "place order")
	}

	o.log.Action("order_placed_success", actionlog.Details{"orderNumber": resp.OrderNumber})

	// The order is committed: clear the cart and hide the panel before the
	// follow-up status call, which must not affect them either way.
	o.mu.Lock()
	o.lines = nil
	o.visible = false
	o.mu.Unlock()
	o.notify.OrderPlaced(*resp)

	// Reconcile with the request's user id, not a re-read of the possibly
	// changed live identity.
	status, err := o.gw.RecomputeMemberStatus(ctx, req.UserID, resp.OrderNumber)
	if err != nil {
		o.log.Error(err, "calculate_member_status", actionlog.Details{
			"orderNumber": resp.OrderNumber,
		})
		o.notify.MemberStatusFailed(err)
		return &Result{Order: *resp, StatusErr: err}, nil
	}

	o.log.Action("member_status_updated", actionlog.Details{
		"points": status.Points,
		"rank":   status.Rank,
	})
	o.status.Set(*status)
	o.notify.MemberStatusUpdated(*status)

	return &Result{Order: *resp, Status: status}, nil
}
