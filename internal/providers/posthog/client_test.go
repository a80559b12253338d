package posthog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(Options{
		APIKey:    "test-key",
		ProjectID: "777",
		Host:      server.URL,
	})
}

func TestQueryTrends(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/projects/777/query/", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var envelope queryEnvelope
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&envelope))
		assert.Equal(t, "TrendsQuery", envelope.Query.Kind)
		assert.Equal(t, "day", envelope.Query.Interval)
		assert.Len(t, envelope.Query.Series, 2)
		assert.Equal(t, "dau", envelope.Query.Series[0].Math)
		assert.Nil(t, envelope.Query.BreakdownFilter)

		_, _ = w.Write([]byte(`{
			"results": [
				{"label": "$pageview", "action": {"name": "$pageview"}, "days": ["2024-03-04", "2024-03-05"], "data": [120, 95]},
				{"label": "purchase_completed", "action": {"name": "purchase_completed"}, "days": ["2024-03-04", "2024-03-05"], "data": [2, 4]}
			]
		}`))
	})

	results, err := client.QueryTrends(context.Background(), TrendsRequest{
		Events:   []string{"$pageview", "purchase_completed"},
		DateFrom: "2024-03-04",
		DateTo:   "2024-03-05",
	})
	assert.NoError(t, err)
	assert.Len(t, results, 2)
	assert.Equal(t, "$pageview", results[0].Event)
	assert.Equal(t, []float64{120, 95}, results[0].Data)
}

func TestQueryBreakdownDefaultsLimit(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var envelope queryEnvelope
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&envelope))
		assert.NotNil(t, envelope.Query.BreakdownFilter)
		assert.Equal(t, "$referring_domain", envelope.Query.BreakdownFilter.Breakdown)
		assert.Equal(t, 10, envelope.Query.BreakdownFilter.BreakdownLimit)

		_, _ = w.Write([]byte(`{
			"results": [
				{"label": "google.com", "breakdown_value": "google.com", "days": ["2024-03-04"], "data": [80]}
			]
		}`))
	})

	results, err := client.QueryBreakdown(context.Background(), BreakdownRequest{
		Event:     "$pageview",
		Breakdown: "$referring_domain",
		DateFrom:  "2024-03-04",
		DateTo:    "2024-03-04",
	})
	assert.NoError(t, err)
	assert.Len(t, results, 1)
	assert.Equal(t, "google.com", results[0].BreakdownValue)
}

func TestQueryTrendsHTTPError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.QueryTrends(context.Background(), TrendsRequest{Events: []string{"$pageview"}})
	assert.Error(t, err)
}

func TestMissingCredentials(t *testing.T) {
	client := NewClient(Options{})
	assert.False(t, client.Enabled())

	_, err := client.QueryTrends(context.Background(), TrendsRequest{Events: []string{"$pageview"}})
	assert.ErrorIs(t, err, ErrMissingCredentials)
}
