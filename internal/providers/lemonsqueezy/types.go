package lemonsqueezy

import "time"

// Page carries the JSON:API pagination block returned by list endpoints.
type Page struct {
	CurrentPage int `json:"currentPage"`
	LastPage    int `json:"lastPage"`
	PerPage     int `json:"perPage"`
	Total       int `json:"total"`
}

type Meta struct {
	Page Page `json:"page"`
}

// Order is one record from the orders list endpoint.
type Order struct {
	ID         string          `json:"id"`
	Attributes OrderAttributes `json:"attributes"`
}

type OrderAttributes struct {
	StoreID   int64     `json:"store_id"`
	Status    string    `json:"status"`
	Total     int64     `json:"total"`
	CreatedAt time.Time `json:"created_at"`
}

// SubscriptionInvoice is one record from the subscription-invoices endpoint.
type SubscriptionInvoice struct {
	ID         string                        `json:"id"`
	Attributes SubscriptionInvoiceAttributes `json:"attributes"`
}

type SubscriptionInvoiceAttributes struct {
	StoreID        int64     `json:"store_id"`
	SubscriptionID int64     `json:"subscription_id"`
	BillingReason  string    `json:"billing_reason"`
	OrderID        int64     `json:"order_id"`
	Status         string    `json:"status"`
	Total          int64     `json:"total"`
	CreatedAt      time.Time `json:"created_at"`
}

// Customer is one record from the customers endpoint.
type Customer struct {
	ID         string             `json:"id"`
	Attributes CustomerAttributes `json:"attributes"`
}

type CustomerAttributes struct {
	StoreID   int64     `json:"store_id"`
	Status    string    `json:"status"`
	MRR       int64     `json:"mrr"`
	CreatedAt time.Time `json:"created_at"`
}

// Subscription is one record from the subscriptions endpoint.
type Subscription struct {
	ID         string                 `json:"id"`
	Attributes SubscriptionAttributes `json:"attributes"`
}

type SubscriptionAttributes struct {
	StoreID    int64  `json:"store_id"`
	CustomerID int64  `json:"customer_id"`
	Status     string `json:"status"`
}

// OrdersPage is one page of orders plus pagination metadata.
type OrdersPage struct {
	Data []Order `json:"data"`
	Meta Meta    `json:"meta"`
}

type SubscriptionInvoicesPage struct {
	Data []SubscriptionInvoice `json:"data"`
	Meta Meta                  `json:"meta"`
}

type CustomersPage struct {
	Data []Customer `json:"data"`
	Meta Meta       `json:"meta"`
}

type SubscriptionsPage struct {
	Data []Subscription `json:"data"`
	Meta Meta           `json:"meta"`
}

type errorResponse struct {
	Errors []struct {
		Status string `json:"status"`
		Title  string `json:"title"`
		Detail string `json:"detail"`
	} `json:"errors"`
}
