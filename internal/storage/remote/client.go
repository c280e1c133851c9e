// Package remote implements storage.TallyStore against the upstream REST API.
//
// Calls are never retried: a failed create may or may not have been applied,
// so retrying could double-log a bag.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mmynk/tallysheet/internal/models"
	"github.com/mmynk/tallysheet/internal/storage"
)

var _ storage.TallyStore = (*Client)(nil)

const (
	apiPrefix      = "/api/v1"
	defaultTimeout = 30 * time.Second
)

// Error is a non-2xx response. Detail is the server's message, verbatim.
type Error struct {
	Status int
	Detail string
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("upstream returned %d", e.Status)
	}
	return e.Detail
}

// Is makes 404 responses match storage.ErrNotFound.
func (e *Error) Is(target error) bool {
	return target == storage.ErrNotFound && e.Status == http.StatusNotFound
}

// Client calls the upstream tally API.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// New creates a client for baseURL, authenticating with a bearer token
// when token is non-empty.
func New(baseURL, token string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid remote url %q", baseURL)
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+apiPrefix+path, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	slog.Debug("Upstream call", "method", method, "path", path, "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Error{Status: resp.StatusCode, Detail: detail(data)}
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}

// detail extracts the message from an error body. The API sends
// {"detail": "..."} for handled errors and a list of field errors for
// validation failures; anything else is returned as text.
func detail(body []byte) string {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && len(payload.Detail) > 0 {
		var msg string
		if err := json.Unmarshal(payload.Detail, &msg); err == nil {
			return msg
		}
		var fields []struct {
			Msg string `json:"msg"`
		}
		if err := json.Unmarshal(payload.Detail, &fields); err == nil && len(fields) > 0 {
			msgs := make([]string, 0, len(fields))
			for _, f := range fields {
				msgs = append(msgs, f.Msg)
			}
			return strings.Join(msgs, "; ")
		}
		return string(payload.Detail)
	}
	return strings.TrimSpace(string(body))
}

func (c *Client) ListClassifications(ctx context.Context, plantID int64) ([]models.WeightClassification, error) {
	var out []models.WeightClassification
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/plants/%d/weight-classifications", plantID), nil, &out)
	return out, err
}

func (c *Client) GetClassification(ctx context.Context, id int64) (*models.WeightClassification, error) {
	var out models.WeightClassification
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/weight-classifications/%d", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListAllocations requires every row to carry its view tag.
func (c *Client) ListAllocations(ctx context.Context, sessionID int64) ([]models.AllocationView, error) {
	var out []models.AllocationView
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/tally-sessions/%d/allocations", sessionID), nil, &out); err != nil {
		return nil, err
	}
	for _, v := range out {
		switch v.View {
		case models.ViewFull, models.ViewRequirementOnly:
		default:
			return nil, fmt.Errorf("allocation %d: unknown view %q", v.ID, v.View)
		}
	}
	return out, nil
}

type createEntryRequest struct {
	SessionID              int64       `json:"tally_session_id"`
	WeightClassificationID int64       `json:"weight_classification_id"`
	Role                   models.Role `json:"role"`
	Weight                 float64     `json:"weight"`
	Heads                  int         `json:"heads"`
	Notes                  string      `json:"notes,omitempty"`
}

// entryResponse mirrors a log entry as the API sends it. created_at may
// lack a zone offset, in which case it is UTC.
type entryResponse struct {
	ID                     int64       `json:"id"`
	SessionID              int64       `json:"tally_session_id"`
	WeightClassificationID int64       `json:"weight_classification_id"`
	Role                   models.Role `json:"role"`
	Weight                 float64     `json:"weight"`
	Heads                  float64     `json:"heads"`
	Notes                  *string     `json:"notes"`
	CreatedAt              string      `json:"created_at"`
}

var timestampLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999999", "2006-01-02 15:04:05.999999999"}

func (r entryResponse) entry() (models.TallyLogEntry, error) {
	if r.Heads < 0 || r.Heads != math.Trunc(r.Heads) || r.Heads > math.MaxInt32 {
		return models.TallyLogEntry{}, fmt.Errorf("entry %d: heads %v is not a whole number", r.ID, r.Heads)
	}
	e := models.TallyLogEntry{
		ID:                     r.ID,
		SessionID:              r.SessionID,
		WeightClassificationID: r.WeightClassificationID,
		Role:                   r.Role,
		Weight:                 r.Weight,
		Heads:                  int(r.Heads),
	}
	if r.Notes != nil {
		e.Notes = *r.Notes
	}
	if r.CreatedAt == "" {
		return e, nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, r.CreatedAt); err == nil {
			e.CreatedAt = t.UTC()
			return e, nil
		}
	}
	return e, fmt.Errorf("entry %d: invalid created_at %q", r.ID, r.CreatedAt)
}

func (c *Client) CreateLogEntry(ctx context.Context, sessionID int64, entry *models.TallyLogEntry) error {
	in := createEntryRequest{
		SessionID:              sessionID,
		WeightClassificationID: entry.WeightClassificationID,
		Role:                   entry.Role,
		Weight:                 entry.Weight,
		Heads:                  entry.Heads,
		Notes:                  entry.Notes,
	}
	var out entryResponse
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/tally-sessions/%d/log-entries", sessionID), in, &out); err != nil {
		return err
	}
	created, err := out.entry()
	if err != nil {
		return err
	}
	*entry = created
	return nil
}

func (c *Client) ListLogEntries(ctx context.Context, sessionID int64, role *models.Role) ([]models.TallyLogEntry, error) {
	path := fmt.Sprintf("/tally-sessions/%d/log-entries", sessionID)
	if role != nil {
		path += "?role=" + url.QueryEscape(string(*role))
	}
	var raw []entryResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &raw); err != nil {
		return nil, err
	}
	out := make([]models.TallyLogEntry, 0, len(raw))
	for _, r := range raw {
		e, err := r.entry()
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

type sessionResponse struct {
	ID         int64                `json:"id"`
	CustomerID int64                `json:"customer_id"`
	PlantID    int64                `json:"plant_id"`
	Date       string               `json:"date"`
	Status     models.SessionStatus `json:"status"`
}

// GetSession fetches the session and then its customer for the name.
func (c *Client) GetSession(ctx context.Context, id int64) (*models.TallySession, error) {
	var s sessionResponse
	if err := c.do(ctx, http.MethodGet, "/tally-sessions/"+strconv.FormatInt(id, 10), nil, &s); err != nil {
		return nil, err
	}
	session := &models.TallySession{ID: s.ID, CustomerID: s.CustomerID, PlantID: s.PlantID, Status: s.Status}
	if s.Date != "" {
		d, err := time.Parse("2006-01-02", s.Date)
		if err != nil {
			return nil, fmt.Errorf("invalid session date %q: %w", s.Date, err)
		}
		session.Date = d
	}

	var customer models.Customer
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/customers/%d", s.CustomerID), nil, &customer); err != nil {
		return nil, err
	}
	session.CustomerName = customer.Name
	return session, nil
}

const preferencesPath = "/users/me/preferences"

// GetPreferences ignores userID; the token identifies the user.
func (c *Client) GetPreferences(ctx context.Context, userID int64) (*models.Preferences, error) {
	var out models.Preferences
	if err := c.do(ctx, http.MethodGet, preferencesPath, nil, &out); err != nil {
		var apiErr *Error
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
			return &models.Preferences{UserID: userID}, nil
		}
		return nil, err
	}
	out.UserID = userID
	return &out, nil
}

func (c *Client) UpdateClassificationOrder(ctx context.Context, userID int64, category models.Category, ids []int64) (*models.Preferences, error) {
	prefs, err := c.GetPreferences(ctx, userID)
	if err != nil {
		return nil, err
	}
	if prefs.ClassificationOrder == nil {
		prefs.ClassificationOrder = make(models.ClassificationOrder)
	}
	if len(ids) == 0 {
		delete(prefs.ClassificationOrder, category)
	} else {
		prefs.ClassificationOrder[category] = ids
	}
	return c.putOrder(ctx, userID, prefs.ClassificationOrder)
}

func (c *Client) ResetClassificationOrder(ctx context.Context, userID int64) (*models.Preferences, error) {
	return c.putOrder(ctx, userID, nil)
}

func (c *Client) putOrder(ctx context.Context, userID int64, order models.ClassificationOrder) (*models.Preferences, error) {
	in := map[string]any{"classification_order": order}
	var out models.Preferences
	if err := c.do(ctx, http.MethodPut, preferencesPath, in, &out); err != nil {
		return nil, err
	}
	out.UserID = userID
	return &out, nil
}
