package lemonsqueezy

import (
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

	"github.com/smallbiznis/revboard/internal/config"
	"go.uber.org/zap"
)

// ErrMissingCredentials indicates the client was configured without an API key
// or store id.
var ErrMissingCredentials = errors.New("lemonsqueezy: api key and store id are required")

const defaultTimeout = 30 * time.Second

// Client performs HTTP calls against the Lemon Squeezy JSON:API.
type Client struct {
	apiKey     string
	storeID    string
	baseURL    string
	httpClient *http.Client
	log        *zap.Logger
}

// Options configures the Lemon Squeezy client.
type Options struct {
	APIKey     string
	StoreID    string
	BaseURL    string
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// NewClient constructs a client with sane defaults and injected dependencies.
func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.lemonsqueezy.com/v1"
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		apiKey:     strings.TrimSpace(opts.APIKey),
		storeID:    strings.TrimSpace(opts.StoreID),
		baseURL:    baseURL,
		httpClient: httpClient,
		log:        log.Named("providers.lemonsqueezy"),
	}
}

// NewClientFromConfig builds a client from application configuration.
func NewClientFromConfig(cfg config.Config, log *zap.Logger) *Client {
	return NewClient(Options{
		APIKey:  cfg.LemonSqueezy.APIKey,
		StoreID: cfg.LemonSqueezy.StoreID,
		BaseURL: cfg.LemonSqueezy.BaseURL,
		Logger:  log,
	})
}

// Enabled reports whether the client holds usable credentials.
func (c *Client) Enabled() bool {
	return c.apiKey != "" && c.storeID != ""
}

// ListOrders returns one page of store orders, newest first.
func (c *Client) ListOrders(ctx context.Context, page, size int) (OrdersPage, error) {
	var out OrdersPage
	query := c.pageQuery(page, size)
	query.Set("filter[store_id]", c.storeID)
	query.Set("sort", "-createdAt")
	if err := c.get(ctx, "/orders", query, &out); err != nil {
		return OrdersPage{}, err
	}
	return out, nil
}

// ListSubscriptionInvoices returns one page of recurring invoices, newest first.
func (c *Client) ListSubscriptionInvoices(ctx context.Context, page, size int) (SubscriptionInvoicesPage, error) {
	var out SubscriptionInvoicesPage
	query := c.pageQuery(page, size)
	query.Set("filter[store_id]", c.storeID)
	query.Set("sort", "-createdAt")
	if err := c.get(ctx, "/subscription-invoices", query, &out); err != nil {
		return SubscriptionInvoicesPage{}, err
	}
	return out, nil
}

// ListCustomers returns one page of the full customer list.
func (c *Client) ListCustomers(ctx context.Context, page, size int) (CustomersPage, error) {
	var out CustomersPage
	query := c.pageQuery(page, size)
	query.Set("filter[store_id]", c.storeID)
	if err := c.get(ctx, "/customers", query, &out); err != nil {
		return CustomersPage{}, err
	}
	return out, nil
}

// ListSubscriptions returns one page of subscriptions filtered by status.
func (c *Client) ListSubscriptions(ctx context.Context, status string, page, size int) (SubscriptionsPage, error) {
	var out SubscriptionsPage
	query := c.pageQuery(page, size)
	query.Set("filter[store_id]", c.storeID)
	if trimmed := strings.TrimSpace(status); trimmed != "" {
		query.Set("filter[status]", trimmed)
	}
	if err := c.get(ctx, "/subscriptions", query, &out); err != nil {
		return SubscriptionsPage{}, err
	}
	return out, nil
}

func (c *Client) pageQuery(page, size int) url.Values {
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = 100
	}
	query := url.Values{}
	query.Set("page[number]", strconv.Itoa(page))
	query.Set("page[size]", strconv.Itoa(size))
	return query
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	if !c.Enabled() {
		return ErrMissingCredentials
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("lemonsqueezy: build request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.api+json")
	req.Header.Set("Content-Type", "application/vnd.api+json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("lemonsqueezy: %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("lemonsqueezy: read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr errorResponse
		if unmarshalErr := json.Unmarshal(body, &apiErr); unmarshalErr == nil && len(apiErr.Errors) > 0 {
			return fmt.Errorf("lemonsqueezy: %s: %s (%s)", path, apiErr.Errors[0].Title, apiErr.Errors[0].Status)
		}
		return fmt.Errorf("lemonsqueezy: %s: unexpected status %d", path, resp.StatusCode)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("lemonsqueezy: decode %s: %w", path, err)
	}
	return nil
}
