package stubapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mikawa/storefront/internal/gateway"
)

// Handler serves the order API routes backed by a Store.
type Handler struct {
	store *Store
}

func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

// Routes returns the API mux. Paths are relative to the mount point.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /orders", h.placeOrder)
	mux.HandleFunc("GET /orders", h.orderHistory)
	mux.HandleFunc("GET /member-status/{userID}", h.memberStatus)
	mux.HandleFunc("POST /member-status/calculate", h.recompute)
	mux.HandleFunc("POST /logs/user-actions", h.logAction)
	mux.HandleFunc("POST /logs/errors", h.logError)
	return mux
}

type orderRequest struct {
	UserID        string              `json:"userId"`
	UserName      string              `json:"userName"`
	TotalPrice    decimal.Decimal     `json:"totalPrice"`
	TotalQuantity int                 `json:"totalQuantity"`
	Items         []gateway.OrderItem `json:"orderItems"`
}

func (h *Handler) placeOrder(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserID == "" {
		writeMessage(w, http.StatusBadRequest, "userId is required")
		return
	}
	if len(req.Items) == 0 {
		writeMessage(w, http.StatusBadRequest, "order has no items")
		return
	}
	if req.TotalPrice.IsNegative() {
		writeMessage(w, http.StatusBadRequest, "totalPrice must not be negative")
		return
	}
	for _, item := range req.Items {
		if item.Price.IsNegative() {
			writeMessage(w, http.StatusBadRequest, "item price must not be negative")
			return
		}
	}

	resp := h.store.PlaceOrder(req.UserID, req.TotalPrice, req.TotalQuantity, req.Items)
	zctx.From(r.Context()).Info("Order placed",
		zap.String("order_number", resp.OrderNumber),
		zap.String("user_id", req.UserID),
	)

	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("orderNumber")
	e.Str(resp.OrderNumber)
	e.FieldStart("status")
	e.Str(resp.Status)
	e.FieldStart("message")
	e.Str(resp.Message)
	e.ObjEnd()
	writeJSON(w, http.StatusCreated, e.Bytes())
}

func (h *Handler) orderHistory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	userID := q.Get("userId")
	if userID == "" {
		writeMessage(w, http.StatusBadRequest, "userId is required")
		return
	}
	page := intParam(q.Get("page"), 0)
	size := intParam(q.Get("size"), 10)

	history := h.store.History(userID, page, size)

	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("content")
	e.ArrStart()
	for _, order := range history.Content {
		encodeOrder(&e, order)
	}
	e.ArrEnd()
	e.FieldStart("pageable")
	e.ObjStart()
	e.FieldStart("pageNumber")
	e.Int(history.Pageable.PageNumber)
	e.FieldStart("pageSize")
	e.Int(history.Pageable.PageSize)
	e.FieldStart("totalElements")
	e.Int(history.Pageable.TotalElements)
	e.FieldStart("totalPages")
	e.Int(history.Pageable.TotalPages)
	e.ObjEnd()
	e.ObjEnd()
	writeJSON(w, http.StatusOK, e.Bytes())
}

func (h *Handler) memberStatus(w http.ResponseWriter, r *http.Request) {
	writeMemberStatus(w, h.store.MemberStatus(r.PathValue("userID")))
}

func (h *Handler) recompute(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID      string `json:"userId"`
		OrderNumber string `json:"orderNumber"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserID == "" {
		writeMessage(w, http.StatusBadRequest, "userId is required")
		return
	}
	writeMemberStatus(w, h.store.MemberStatus(req.UserID))
}

func (h *Handler) logAction(w http.ResponseWriter, r *http.Request) {
	h.store.CountAction()
	h.echoEvent(r, "user action event")
	w.WriteHeader(http.StatusAccepted)
}

func (h *Handler) logError(w http.ResponseWriter, r *http.Request) {
	h.store.CountError()
	h.echoEvent(r, "error event")
	w.WriteHeader(http.StatusAccepted)
}

// echoEvent traces the raw payload so a developer tailing the stub sees
// what the client reports. Malformed payloads are still accepted; the
// sinks are fire-and-forget.
func (h *Handler) echoEvent(r *http.Request, kind string) {
	var body map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return
	}
	fields := make([]zap.Field, 0, len(body))
	for k, v := range body {
		fields = append(fields, zap.ByteString(k, v))
	}
	zctx.From(r.Context()).Debug("Received "+kind, fields...)
}

func encodeOrder(e *jx.Encoder, order gateway.Order) {
	e.ObjStart()
	e.FieldStart("orderDate")
	e.Str(order.OrderDate.Format(time.RFC3339))
	e.FieldStart("orderNumber")
	e.Str(order.OrderNumber)
	e.FieldStart("totalPrice")
	e.Num(jx.Num(order.TotalPrice.String()))
	e.FieldStart("totalQuantity")
	e.Int(order.TotalQuantity)
	e.FieldStart("orderItems")
	e.ArrStart()
	for _, item := range order.Items {
		e.ObjStart()
		e.FieldStart("productId")
		e.Int(item.ProductID)
		e.FieldStart("productName")
		e.Str(item.ProductName)
		e.FieldStart("price")
		e.Num(jx.Num(item.Price.String()))
		e.ObjEnd()
	}
	e.ArrEnd()
	e.ObjEnd()
}

func writeMemberStatus(w http.ResponseWriter, status gateway.MemberStatus) {
	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("points")
	e.Int(status.Points)
	e.FieldStart("rank")
	e.Str(status.Rank)
	e.ObjEnd()
	writeJSON(w, http.StatusOK, e.Bytes())
}

func writeMessage(w http.ResponseWriter, code int, message string) {
	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("message")
	e.Str(message)
	e.ObjEnd()
	writeJSON(w, code, e.Bytes())
}

func writeJSON(w http.ResponseWriter, code int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(body)
}

func intParam(s string, fallback int) int {
	if s == "" {
		return fallback
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return v
}
