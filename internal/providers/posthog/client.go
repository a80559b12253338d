package posthog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/smallbiznis/revboard/internal/config"
	"go.uber.org/zap"
)

// ErrMissingCredentials indicates the client was configured without an API key
// or project id.
var ErrMissingCredentials = errors.New("posthog: api key and project id are required")

const defaultTimeout = 30 * time.Second

// Client performs HTTP calls against the PostHog query API.
type Client struct {
	apiKey     string
	projectID  string
	host       string
	httpClient *http.Client
	log        *zap.Logger
}

// Options configures the PostHog client.
type Options struct {
	APIKey     string
	ProjectID  string
	Host       string
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// NewClient constructs a client with sane defaults and injected dependencies.
func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	host := strings.TrimRight(opts.Host, "/")
	if host == "" {
		host = "https://us.posthog.com"
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		apiKey:     strings.TrimSpace(opts.APIKey),
		projectID:  strings.TrimSpace(opts.ProjectID),
		host:       host,
		httpClient: httpClient,
		log:        log.Named("providers.posthog"),
	}
}

// NewClientFromConfig builds a client from application configuration.
func NewClientFromConfig(cfg config.Config, log *zap.Logger) *Client {
	return NewClient(Options{
		APIKey:    cfg.PostHog.APIKey,
		ProjectID: cfg.PostHog.ProjectID,
		Host:      cfg.PostHog.Host,
		Logger:    log,
	})
}

// Enabled reports whether the client holds usable credentials.
func (c *Client) Enabled() bool {
	return c.apiKey != "" && c.projectID != ""
}

// QueryTrends runs a daily trend query counting unique actors per event per
// day. Results come back in the same order as req.Events.
func (c *Client) QueryTrends(ctx context.Context, req TrendsRequest) ([]TrendResult, error) {
	series := make([]eventsNode, 0, len(req.Events))
	for _, event := range req.Events {
		series = append(series, eventsNode{Kind: "EventsNode", Event: event, Math: "dau"})
	}
	query := trendsQuery{
		Kind:     "TrendsQuery",
		Series:   series,
		Interval: "day",
		DateRange: dateRange{
			DateFrom: req.DateFrom,
			DateTo:   req.DateTo,
		},
	}
	return c.runQuery(ctx, query)
}

// QueryBreakdown runs a trend query for a single event broken down by a
// property, keeping only the top values for the range.
func (c *Client) QueryBreakdown(ctx context.Context, req BreakdownRequest) ([]TrendResult, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = 10
	}
	query := trendsQuery{
		Kind:     "TrendsQuery",
		Series:   []eventsNode{{Kind: "EventsNode", Event: req.Event, Math: "dau"}},
		Interval: "day",
		DateRange: dateRange{
			DateFrom: req.DateFrom,
			DateTo:   req.DateTo,
		},
		BreakdownFilter: &breakdownFilter{
			Breakdown:      req.Breakdown,
			BreakdownType:  "event",
			BreakdownLimit: limit,
		},
	}
	return c.runQuery(ctx, query)
}

func (c *Client) runQuery(ctx context.Context, query trendsQuery) ([]TrendResult, error) {
	if !c.Enabled() {
		return nil, ErrMissingCredentials
	}

	payload, err := json.Marshal(queryEnvelope{Query: query})
	if err != nil {
		return nil, fmt.Errorf("posthog: encode query: %w", err)
	}

	endpoint := fmt.Sprintf("%s/api/projects/%s/query/", c.host, c.projectID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("posthog: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("posthog: query: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("posthog: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("posthog: query: unexpected status %d", resp.StatusCode)
	}

	var decoded queryResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("posthog: decode response: %w", err)
	}

	results := make([]TrendResult, 0, len(decoded.Results))
	for _, wire := range decoded.Results {
		event := wire.Action.Name
		if event == "" {
			event = wire.Label
		}
		results = append(results, TrendResult{
			Event:          event,
			BreakdownValue: breakdownValueString(wire.BreakdownValue),
			Days:           wire.Days,
			Data:           wire.Data,
		})
	}
	return results, nil
}

func breakdownValueString(v any) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return value
	case float64:
		return fmt.Sprintf("%g", value)
	default:
		return fmt.Sprintf("%v", value)
	}
}
