// Package client is a thin REST client for the service center API.
// Each call is one HTTP request, failures are returned as is.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/internal/service/backup"
	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/internal/service/cashregister"
	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/internal/service/lock"
	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/internal/service/repair"
	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/internal/storage"
	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/internal/syncserver"
)

var ErrNoToken = errors.New("server did not disclose the api token")

// APIError is a non-2xx answer from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d %s", e.StatusCode, e.Message)
}

// IsStatus reports whether err is an APIError with the given status code.
func IsStatus(err error, code int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == code
}

type ServerInfo struct {
	Name       string            `json:"name"`
	Version    string            `json:"version"`
	SyncServer syncserver.Status `json:"syncServer"`
	Token      string            `json:"token,omitempty"`
}

type Client struct {
	baseURL  string
	token    string
	clientID string
	http     *http.Client
}

type Option func(*Client)

func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithClientID sets the X-Client-Id header, the owner name for repair locks.
func WithClientID(id string) Option {
	return func(c *Client) { c.clientID = id }
}

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Connect fetches the API token from /api/server-info. The server only
// hands it out to clients on the same machine.
func (c *Client) Connect(ctx context.Context) (*ServerInfo, error) {
	const op = "client.Connect"

	var info ServerInfo
	if err := c.do(ctx, http.MethodGet, "/api/server-info", nil, nil, &info); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if info.Token == "" && c.token == "" {
		return &info, fmt.Errorf("%s: %w", op, ErrNoToken)
	}
	if info.Token != "" {
		c.token = info.Token
	}

	return &info, nil
}

// RepairQuery mirrors the list filter of GET /api/repairs.
type RepairQuery struct {
	Search   string
	Statuses []string
	Executor string
	Limit    int
	Offset   int
}

func (q RepairQuery) values() url.Values {
	v := url.Values{}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if len(q.Statuses) > 0 {
		v.Set("status", strings.Join(q.Statuses, ","))
	}
	if q.Executor != "" {
		v.Set("executor", q.Executor)
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Offset > 0 {
		v.Set("offset", strconv.Itoa(q.Offset))
	}
	return v
}

func (c *Client) Repairs(ctx context.Context, q RepairQuery) ([]storage.Repair, error) {
	var out []storage.Repair
	err := c.do(ctx, http.MethodGet, "/api/repairs", q.values(), nil, &out)
	return out, err
}

func (c *Client) Repair(ctx context.Context, id int64) (*storage.Repair, error) {
	var out storage.Repair
	if err := c.do(ctx, http.MethodGet, repairPath(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) NextReceiptID(ctx context.Context) (int64, error) {
	var out struct {
		NextReceiptID int64 `json:"nextReceiptId"`
	}
	err := c.do(ctx, http.MethodGet, "/api/repairs/next-receipt-id", nil, nil, &out)
	return out.NextReceiptID, err
}

func (c *Client) CreateRepair(ctx context.Context, in repair.Input) (*storage.Repair, error) {
	var out storage.Repair
	if err := c.do(ctx, http.MethodPost, "/api/repairs", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateRepair(ctx context.Context, id int64, in repair.Input) (*storage.Repair, error) {
	var out storage.Repair
	if err := c.do(ctx, http.MethodPut, repairPath(id), nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteRepair(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, repairPath(id), nil, nil, nil)
}

func (c *Client) SetStatus(ctx context.Context, id int64, status, paymentType string) (*storage.Repair, error) {
	body := map[string]string{"status": status, "paymentType": paymentType}

	var out storage.Repair
	if err := c.do(ctx, http.MethodPut, repairPath(id)+"/status", nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SetPaid(ctx context.Context, id int64, paid bool, paymentType string, stampToday bool) (*storage.Repair, error) {
	body := map[string]any{"isPaid": paid, "paymentType": paymentType, "stampToday": stampToday}

	var out storage.Repair
	if err := c.do(ctx, http.MethodPut, repairPath(id)+"/payment", nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// LockState is the answer of the lock check endpoint.
type LockState struct {
	Locked bool       `json:"locked"`
	Lock   *lock.Lock `json:"lock,omitempty"`
}

func (c *Client) CheckLock(ctx context.Context, id int64) (*LockState, error) {
	var out LockState
	if err := c.do(ctx, http.MethodGet, repairPath(id)+"/check-repair-lock", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Lock takes the advisory lock. A lock held by someone else comes back as
// an APIError with status 423.
func (c *Client) Lock(ctx context.Context, id int64) (*lock.Lock, error) {
	var out lock.Lock
	if err := c.do(ctx, http.MethodPost, repairPath(id)+"/lock-repair", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Unlock(ctx context.Context, id int64, token string) error {
	q := url.Values{"token": {token}}
	return c.do(ctx, http.MethodDelete, repairPath(id)+"/lock-repair", q, nil, nil)
}

func (c *Client) Balances(ctx context.Context) (*storage.Balances, error) {
	var out storage.Balances
	if err := c.do(ctx, http.MethodGet, "/api/cash-register/balances", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Transactions(ctx context.Context, from, to time.Time) ([]storage.Transaction, error) {
	q := url.Values{}
	if !from.IsZero() {
		q.Set("from", from.Format(time.DateOnly))
	}
	if !to.IsZero() {
		q.Set("to", to.Format(time.DateOnly))
	}

	var out []storage.Transaction
	err := c.do(ctx, http.MethodGet, "/api/transactions", q, nil, &out)
	return out, err
}

func (c *Client) CreateTransaction(ctx context.Context, in cashregister.ManualTransaction) (*storage.Transaction, error) {
	var out storage.Transaction
	if err := c.do(ctx, http.MethodPost, "/api/transactions", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteTransaction(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/api/transactions/"+strconv.FormatInt(id, 10), nil, nil, nil)
}

func (c *Client) Reconcile(ctx context.Context, actualCash, actualCard float64, description string) (*cashregister.ReconcileResult, error) {
	body := map[string]any{"actualCash": actualCash, "actualCard": actualCard, "description": description}

	var out cashregister.ReconcileResult
	if err := c.do(ctx, http.MethodPost, "/api/transactions/reconcile", nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Executors(ctx context.Context) ([]storage.Executor, error) {
	var out []storage.Executor
	err := c.do(ctx, http.MethodGet, "/api/executors", nil, nil, &out)
	return out, err
}

// PartQuery mirrors the filter of GET /api/products.
type PartQuery struct {
	Search   string
	Supplier string
	InStock  *bool
	Limit    int
}

func (q PartQuery) values() url.Values {
	v := url.Values{}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.Supplier != "" {
		v.Set("supplier", q.Supplier)
	}
	if q.InStock != nil {
		v.Set("inStock", strconv.FormatBool(*q.InStock))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	return v
}

func (c *Client) Parts(ctx context.Context, q PartQuery) ([]storage.Part, error) {
	var out []storage.Part
	err := c.do(ctx, http.MethodGet, "/api/products", q.values(), nil, &out)
	return out, err
}

// RepairParts lists the parts installed into a repair.
func (c *Client) RepairParts(ctx context.Context, id int64) ([]storage.Part, error) {
	var out []storage.Part
	err := c.do(ctx, http.MethodGet, repairPath(id)+"/parts", nil, nil, &out)
	return out, err
}

// Backups and CreateBackup need an admin token.
func (c *Client) Backups(ctx context.Context) ([]backup.Info, error) {
	var out []backup.Info
	err := c.do(ctx, http.MethodGet, "/api/backups", nil, nil, &out)
	return out, err
}

func (c *Client) CreateBackup(ctx context.Context) (*backup.Info, error) {
	var out backup.Info
	if err := c.do(ctx, http.MethodPost, "/api/backups", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func repairPath(id int64) string {
	return "/api/repairs/" + strconv.FormatInt(id, 10)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if c.clientID != "" {
		req.Header.Set("X-Client-Id", c.clientID)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(msg))}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}

	return nil
}
