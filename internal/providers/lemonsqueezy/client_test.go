package lemonsqueezy

import (
	"context"
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
		APIKey:  "test-key",
		StoreID: "123",
		BaseURL: server.URL,
	})
}

func TestListOrders(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/orders", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/vnd.api+json", r.Header.Get("Accept"))

		query := r.URL.Query()
		assert.Equal(t, "123", query.Get("filter[store_id]"))
		assert.Equal(t, "-createdAt", query.Get("sort"))
		assert.Equal(t, "2", query.Get("page[number]"))
		assert.Equal(t, "100", query.Get("page[size]"))

		w.Header().Set("Content-Type", "application/vnd.api+json")
		_, _ = w.Write([]byte(`{
			"data": [
				{"id": "1", "attributes": {"store_id": 123, "status": "paid", "total": 2500, "created_at": "2024-03-05T10:00:00Z"}}
			],
			"meta": {"page": {"currentPage": 2, "lastPage": 3, "perPage": 100, "total": 250}}
		}`))
	})

	page, err := client.ListOrders(context.Background(), 2, 100)
	assert.NoError(t, err)
	assert.Len(t, page.Data, 1)
	assert.Equal(t, "paid", page.Data[0].Attributes.Status)
	assert.Equal(t, int64(2500), page.Data[0].Attributes.Total)
	assert.Equal(t, 3, page.Meta.Page.LastPage)
}

func TestListSubscriptionsStatusFilter(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/subscriptions", r.URL.Path)
		assert.Equal(t, "active", r.URL.Query().Get("filter[status]"))
		_, _ = w.Write([]byte(`{"data": [], "meta": {"page": {"currentPage": 1, "lastPage": 1}}}`))
	})

	_, err := client.ListSubscriptions(context.Background(), "active", 1, 100)
	assert.NoError(t, err)
}

func TestGetDecodesAPIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"errors": [{"status": "401", "title": "Unauthorized", "detail": "bad key"}]}`))
	})

	_, err := client.ListOrders(context.Background(), 1, 100)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "Unauthorized")
}

func TestMissingCredentials(t *testing.T) {
	client := NewClient(Options{})
	assert.False(t, client.Enabled())

	_, err := client.ListOrders(context.Background(), 1, 100)
	assert.ErrorIs(t, err, ErrMissingCredentials)
}
