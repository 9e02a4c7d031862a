// Package gateway is the stateless HTTP client for the order backend:
// order placement, paginated order history, and membership status. Every
// call is a single round trip; there are no retries and no caching.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"
)

// Client talks to the order API. Monetary amounts cross the wire as JSON
// numbers, so decimals are converted at this boundary and nowhere else.
type Client struct {
	base   string
	client *http.Client
}

// NewClient creates a Client for the given API base URL, e.g.
// "http://localhost:8080/api".
func NewClient(baseURL string, client *http.Client) *Client {
	return &Client{
		base:   strings.TrimRight(baseURL, "/"),
		client: client,
	}
}

// PlaceOrder submits the order and returns the backend's authoritative
// response. Errors propagate; the caller decides what happens to the cart.
func (c *Client) PlaceOrder(ctx context.Context, req OrderRequest) (*OrderResponse, error) {
	var resp OrderResponse
	if err := c.post(ctx, c.base+"/orders", encodeOrderRequest(req), &resp); err != nil {
		return nil, errors.Wrap(err, "place order")
	}
	return &resp, nil
}

// OrderHistory fetches one zero-indexed page of the user's past orders.
// The page size is always sent explicitly; server defaults are not assumed.
func (c *Client) OrderHistory(ctx context.Context, userID string, page, size int) (*HistoryPage, error) {
	q := url.Values{}
	q.Set("userId", userID)
	q.Set("page", strconv.Itoa(page))
	q.Set("size", strconv.Itoa(size))

	var resp HistoryPage
	if err := c.get(ctx, c.base+"/orders?"+q.Encode(), &resp); err != nil {
		return nil, errors.Wrap(err, "order history")
	}
	return &resp, nil
}

// FetchMemberStatus is the best-effort enrichment call made when an identity
// appears. It returns nil on any failure instead of propagating the error.
func (c *Client) FetchMemberStatus(ctx context.Context, userID string) *MemberStatus {
	var resp MemberStatus
	if err := c.get(ctx, c.base+"/member-status/"+url.PathEscape(userID), &resp); err != nil {
		return nil
	}
	return &resp
}

// RecomputeMemberStatus asks the backend to recompute the membership status
// after an order. Unlike FetchMemberStatus this is a required post-order step
// and errors propagate.
func (c *Client) RecomputeMemberStatus(ctx context.Context, userID, orderNumber string) (*MemberStatus, error) {
	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("userId")
	e.Str(userID)
	e.FieldStart("orderNumber")
	e.Str(orderNumber)
	e.ObjEnd()

	var resp MemberStatus
	if err := c.post(ctx, c.base+"/member-status/calculate", e.Bytes(), &resp); err != nil {
		return nil, errors.Wrap(err, "recompute member status")
	}
	return &resp, nil
}

func (c *Client) get(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	return c.do(req, out)
}

func (c *Client) post(ctx context.Context, url string, body []byte, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{
			Code:    resp.StatusCode,
			Message: readErrorMessage(resp.Body),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(err, "decode response")
	}
	return nil
}

// readErrorMessage extracts a {"message": ...} body when the backend sends
// one; anything else is ignored.
func readErrorMessage(r io.Reader) string {
	body, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil {
		return ""
	}
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return payload.Message
}

// encodeOrderRequest writes the order request with monetary values as plain
// JSON numbers, matching what the backend expects.
func encodeOrderRequest(req OrderRequest) []byte {
	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("userId")
	e.Str(req.UserID)
	e.FieldStart("userName")
	e.Str(req.UserName)
	e.FieldStart("totalPrice")
	encodeAmount(&e, req.TotalPrice)
	e.FieldStart("totalQuantity")
	e.Int(req.TotalQuantity)
	e.FieldStart("orderItems")
	e.ArrStart()
	for _, item := range req.Items {
		e.ObjStart()
		e.FieldStart("productId")
		e.Int(item.ProductID)
		e.FieldStart("productName")
		e.Str(item.ProductName)
		e.FieldStart("price")
		encodeAmount(&e, item.Price)
		e.ObjEnd()
	}
	e.ArrEnd()
	e.ObjEnd()
	return e.Bytes()
}

// encodeAmount writes a decimal as a raw JSON number. decimal.String output
// is always a valid number literal, so no precision is lost on the way out.
func encodeAmount(e *jx.Encoder, d decimal.Decimal) {
	e.Num(jx.Num(d.String()))
}
