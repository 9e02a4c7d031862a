package view

import (
	"context"
	"sync"

	"github.com/mikawa/storefront/internal/gateway"
	"github.com/mikawa/storefront/internal/session"
)

// User-facing states of the order history page.
const (
	historyPageSize = 10

	ErrMsgNotAuthenticated = "User not authenticated"
	ErrMsgLoadFailed       = "Failed to load order history. Please try again later."
)

// HistoryGateway fetches one page of past orders.
type HistoryGateway interface {
	OrderHistory(ctx context.Context, userID string, page, size int) (*gateway.HistoryPage, error)
}

// IdentitySource reports who is signed in at call time.
type IdentitySource interface {
	Identity() session.Identity
}

// HistoryView is the paginated order history page. Every fetch carries a
// sequence number; a response arriving after a newer fetch started is
// discarded so the page never shows data for a page the user already left.
type HistoryView struct {
	gw  HistoryGateway
	ids IdentitySource

	mu         sync.Mutex
	page       int
	totalPages int
	orders     []gateway.Order
	loading    bool
	errMsg     string
	seq        uint64
}

func NewHistoryView(gw HistoryGateway, ids IdentitySource) *HistoryView {
	return &HistoryView{gw: gw, ids: ids}
}

// Load fetches the current page for the signed-in user.
func (v *HistoryView) Load(ctx context.Context) {
	v.mu.Lock()
	v.seq++
	seq := v.seq

	id := v.ids.Identity()
	if !id.Present() {
		v.errMsg = ErrMsgNotAuthenticated
		v.loading = false
		v.mu.Unlock()
		return
	}
	v.loading = true
	v.errMsg = ""
	page := v.page
	v.mu.Unlock()

	resp, err := v.gw.OrderHistory(ctx, id.UserID, page, historyPageSize)

	v.mu.Lock()
	defer v.mu.Unlock()
	if seq != v.seq {
		// A newer fetch superseded this one.
		return
	}
	v.loading = false
	if err != nil {
		v.errMsg = ErrMsgLoadFailed
		return
	}
	v.orders = resp.Content
	v.totalPages = resp.Pageable.TotalPages
}

// NextPage advances and reloads, unless already on the last page.
func (v *HistoryView) NextPage(ctx context.Context) {
	v.mu.Lock()
	if v.page >= v.totalPages-1 {
		v.mu.Unlock()
		return
	}
	v.page++
	v.mu.Unlock()
	v.Load(ctx)
}

// PrevPage goes back and reloads, unless already on the first page.
func (v *HistoryView) PrevPage(ctx context.Context) {
	v.mu.Lock()
	if v.page <= 0 {
		v.mu.Unlock()
		return
	}
	v.page--
	v.mu.Unlock()
	v.Load(ctx)
}

func (v *HistoryView) Orders() []gateway.Order {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]gateway.Order(nil), v.orders...)
}

func (v *HistoryView) Page() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.page
}

func (v *HistoryView) TotalPages() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.totalPages
}

func (v *HistoryView) Loading() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.loading
}

// Err returns the page-level error message, or empty when the last load
// succeeded.
func (v *HistoryView) Err() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.errMsg
}
