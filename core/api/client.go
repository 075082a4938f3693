package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"grocer/core/metrics"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// CommandLogin is the only command allowed without a session key.
const CommandLogin = "login"

// anonymousSlotInfo is what the server reports for ChosenDeliverySlotInfo
// when the session belongs to nobody.
const anonymousSlotInfo = "Not applicable with anonymous login"

// Requester issues a single command against the remote service.
// It is the one collaborator the catalogue and basket packages depend on.
type Requester interface {
	Request(ctx context.Context, command string, params Params) (*Response, error)
}

// Identity reports the customer a session is authenticated as.
type Identity interface {
	CustomerID() (string, error)
}

// Session is a logged-in conversation with the service: it sends commands and
// knows which customer, if any, it belongs to.
type Session interface {
	Requester
	Identity
	Login(ctx context.Context, email, password string) error
	Anonymous() bool
	Customer() (Customer, error)
}

// Ensure Client implements Session at compile time.
var (
	_ Requester = (*Client)(nil)
	_ Identity  = (*Client)(nil)
	_ Session   = (*Client)(nil)
)

// Customer holds the personal fields returned by a non-anonymous login.
type Customer struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Forename     string `json:"forename"`
	BranchNumber string `json:"branch_number"`
}

// Client talks to the grocery REST service and owns the session.
type Client struct {
	endpoint       *url.URL
	http           *http.Client
	developerKey   string
	applicationKey string
	userAgent      string
	logger         *zap.Logger
	metrics        *metrics.Metrics

	mu         sync.RWMutex
	sessionKey string
	loggedIn   bool
	anonymous  bool
	customer   Customer

	sf singleflight.Group
}

// Option customises a Client.
type Option func(*Client)

// WithLogger sets the logger used for request tracing.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMetrics records every command in m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// NewClient builds a Client from the configuration.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	endpoint, err := url.Parse(strings.TrimSpace(cfg.Endpoint))
	if err != nil {
		return nil, fmt.Errorf("parse endpoint %q: %w", cfg.Endpoint, err)
	}
	if endpoint.Scheme == "" || endpoint.Host == "" {
		return nil, fmt.Errorf("endpoint %q must be an absolute URL", cfg.Endpoint)
	}

	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = 30
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = "grocer/0.1"
	}

	c := &Client{
		endpoint:       endpoint,
		http:           &http.Client{Timeout: time.Duration(timeout) * time.Second},
		developerKey:   cfg.DeveloperKey,
		applicationKey: cfg.ApplicationKey,
		userAgent:      userAgent,
		logger:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Request sends command with params and returns the decoded response.
// When no session exists yet an anonymous login is performed first.
func (c *Client) Request(ctx context.Context, command string, params Params) (*Response, error) {
	if command != CommandLogin && c.SessionKey() == "" {
		if err := c.anonymousLogin(ctx); err != nil {
			return nil, fmt.Errorf("anonymous login: %w", err)
		}
	}
	return c.do(ctx, command, params)
}

// Login authenticates as the given customer. Empty credentials log in anonymously.
func (c *Client) Login(ctx context.Context, email, password string) error {
	resp, err := c.do(ctx, CommandLogin, Params{"email": email, "password": password})
	if err != nil {
		return err
	}

	anonymous := resp.String("ChosenDeliverySlotInfo") == anonymousSlotInfo

	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessionKey = resp.String("SessionKey")
	c.loggedIn = true
	c.anonymous = anonymous
	// Anonymous logins report a placeholder customer, which is never exposed.
	if anonymous {
		c.customer = Customer{}
	} else {
		c.customer = Customer{
			ID:           resp.String("CustomerId"),
			Name:         resp.String("CustomerName"),
			Forename:     resp.String("CustomerForename"),
			BranchNumber: resp.String("BranchNumber"),
		}
	}

	c.logger.Debug("Logged in",
		zap.Bool("anonymous", anonymous),
		zap.String("customer_id", c.customer.ID),
	)
	return nil
}

// Anonymous reports whether the session has no authenticated customer.
func (c *Client) Anonymous() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return !c.loggedIn || c.anonymous
}

// SessionKey returns the current session key, empty before the first login.
func (c *Client) SessionKey() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sessionKey
}

// Customer returns the authenticated customer's details.
func (c *Client) Customer() (Customer, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.loggedIn || c.anonymous {
		return Customer{}, ErrNotAuthenticated
	}
	return c.customer, nil
}

// CustomerID returns the authenticated customer's id.
func (c *Client) CustomerID() (string, error) {
	cust, err := c.Customer()
	return cust.ID, err
}

// CustomerName returns the authenticated customer's full name.
func (c *Client) CustomerName() (string, error) {
	cust, err := c.Customer()
	return cust.Name, err
}

// CustomerForename returns the authenticated customer's forename.
func (c *Client) CustomerForename() (string, error) {
	cust, err := c.Customer()
	return cust.Forename, err
}

// BranchNumber returns the branch serving the authenticated customer.
func (c *Client) BranchNumber() (string, error) {
	cust, err := c.Customer()
	return cust.BranchNumber, err
}

func (c *Client) anonymousLogin(ctx context.Context) error {
	_, err, _ := c.sf.Do(CommandLogin, func() (interface{}, error) {
		// Another caller may have finished logging in while we waited.
		if c.SessionKey() != "" {
			return nil, nil
		}
		return nil, c.Login(ctx, "", "")
	})
	return err
}

func (c *Client) do(ctx context.Context, command string, params Params) (*Response, error) {
	values := url.Values{}
	values.Set("command", command)
	values.Set("applicationkey", c.applicationKey)
	values.Set("developerkey", c.developerKey)
	values.Set("page", "1")
	for k, v := range params {
		values.Set(k, v)
	}
	if key := c.SessionKey(); key != "" {
		values.Set("sessionkey", key)
	}

	reqURL := *c.endpoint
	reqURL.RawQuery = values.Encode()

	start := time.Now()
	rec, err := c.fetch(ctx, reqURL.String())
	if err == nil {
		err = CheckStatus(command, rec)
	}
	c.metrics.ObserveRequest(command, statusLabel(err), time.Since(start))
	c.logger.Debug("API request",
		zap.String("command", command),
		zap.String("page", values.Get("page")),
		zap.Duration("elapsed", time.Since(start)),
		zap.Error(err),
	)
	if err != nil {
		return nil, err
	}

	copied := make(Params, len(params))
	for k, v := range params {
		copied[k] = v
	}
	return &Response{Record: rec, Command: command, Params: copied}, nil
}

func (c *Client) fetch(ctx context.Context, rawURL string) (Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("api returned http status %d", resp.StatusCode)
	}

	decoder := json.NewDecoder(resp.Body)
	decoder.UseNumber()
	var rec Record
	if err := decoder.Decode(&rec); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return rec, nil
}

func statusLabel(err error) string {
	var apiErr *APIError
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotAuthenticated):
		return "not_authenticated"
	case errors.As(err, &apiErr):
		return "api_error"
	default:
		return "transport_error"
	}
}
