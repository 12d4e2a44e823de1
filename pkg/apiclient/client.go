// Package apiclient talks to the dashboard execution backend over HTTP. Card
// execution, dashboard CRUD, and the streaming chat endpoint all flow through
// one client so auth and retries are configured in a single place.
package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/goliatone/go-insight/components/cards"
	"github.com/goliatone/go-insight/components/cards/chat"
)

// Client is an HTTP client for the insight backend.
type Client struct {
	baseURL    string
	httpClient *resty.Client
	session    *cards.Session
}

// Option customizes a client.
type Option func(*Client)

// WithSession binds the client to a session other than the process default.
func WithSession(session *cards.Session) Option {
	return func(c *Client) {
		if session != nil {
			c.session = session
		}
	}
}

// WithTimeout overrides the default request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.SetTimeout(timeout)
	}
}

// WithHTTPClient swaps the underlying http.Client, mostly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = resty.NewWithClient(hc)
	}
}

// New creates a client for the given base URL.
func New(baseURL string, options ...Option) *Client {
	httpClient := resty.New()
	httpClient.SetTimeout(30 * time.Second)
	httpClient.SetRetryCount(3)
	httpClient.SetRetryWaitTime(1 * time.Second)
	httpClient.SetRetryMaxWaitTime(5 * time.Second)

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		session:    cards.DefaultSession,
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

var _ cards.CardExecutor = (*Client)(nil)
var _ cards.DashboardStore = (*Client)(nil)

// ExecuteCard runs one card on the backend and returns its HTML payload.
func (c *Client) ExecuteCard(ctx context.Context, cardID string, opts cards.ExecuteOptions) (cards.CardExecuteResponse, error) {
	if cardID == "" {
		return cards.CardExecuteResponse{}, fmt.Errorf("apiclient: card id is required")
	}
	resp, err := c.request(ctx).
		SetBody(opts).
		Post(c.baseURL + "/cards/" + cardID + "/execute")
	if err != nil {
		return cards.CardExecuteResponse{}, fmt.Errorf("apiclient: execute card %s: %w", cardID, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return cards.CardExecuteResponse{}, statusError("execute card "+cardID, resp)
	}
	var out cards.CardExecuteResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return cards.CardExecuteResponse{}, fmt.Errorf("apiclient: parse execute response: %w", err)
	}
	if out.CardID == "" {
		out.CardID = cardID
	}
	return out, nil
}

// GetDashboard fetches a dashboard definition.
func (c *Client) GetDashboard(ctx context.Context, dashboardID string) (cards.Dashboard, error) {
	resp, err := c.request(ctx).
		Get(c.baseURL + "/dashboards/" + dashboardID)
	if err != nil {
		return cards.Dashboard{}, fmt.Errorf("apiclient: get dashboard %s: %w", dashboardID, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return cards.Dashboard{}, statusError("get dashboard "+dashboardID, resp)
	}
	var dash cards.Dashboard
	if err := json.Unmarshal(resp.Body(), &dash); err != nil {
		return cards.Dashboard{}, fmt.Errorf("apiclient: parse dashboard: %w", err)
	}
	return dash, nil
}

// UpdateDashboard persists a dashboard definition.
func (c *Client) UpdateDashboard(ctx context.Context, dash cards.Dashboard) error {
	if dash.ID == "" {
		return fmt.Errorf("apiclient: dashboard id is required")
	}
	resp, err := c.request(ctx).
		SetBody(dash).
		Put(c.baseURL + "/dashboards/" + dash.ID)
	if err != nil {
		return fmt.Errorf("apiclient: update dashboard %s: %w", dash.ID, err)
	}
	if resp.StatusCode() != http.StatusOK && resp.StatusCode() != http.StatusNoContent {
		return statusError("update dashboard "+dash.ID, resp)
	}
	return nil
}

// ChatRequest is the payload for the streaming chat endpoint.
type ChatRequest struct {
	Question string            `json:"question"`
	Filters  cards.FilterState `json:"filters,omitempty"`
}

// StreamChat asks a question about a dashboard and feeds the SSE response
// through the chat handlers. It blocks until the stream finishes.
func (c *Client) StreamChat(ctx context.Context, dashboardID string, req ChatRequest, h chat.Handlers) error {
	resp, err := c.request(ctx).
		SetDoNotParseResponse(true).
		SetHeader("Accept", "text/event-stream").
		SetBody(req).
		Post(c.baseURL + "/dashboards/" + dashboardID + "/chat")
	if err != nil {
		return fmt.Errorf("apiclient: chat stream %s: %w", dashboardID, err)
	}
	body := resp.RawBody()
	defer body.Close()
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("apiclient: chat stream %s: status %d", dashboardID, resp.StatusCode())
	}
	return chat.ReadStream(ctx, body, h)
}

func (c *Client) request(ctx context.Context) *resty.Request {
	req := c.httpClient.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json")
	if token := c.session.Token(); token != "" {
		req.SetAuthToken(token)
	}
	return req
}

func statusError(op string, resp *resty.Response) error {
	var apiErr struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(resp.Body(), &apiErr); err == nil && apiErr.Error != "" {
		return fmt.Errorf("apiclient: %s: %s (status %d)", op, apiErr.Error, resp.StatusCode())
	}
	return fmt.Errorf("apiclient: %s: status %d", op, resp.StatusCode())
}
