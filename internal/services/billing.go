package services

import "context"

type Subscription struct {
	Active     bool
	CustomerID string
}

type Customer struct {
	ID    string
	Email string
	Name  string
}

type BillingEventType string

const (
	EventCheckoutCompleted   BillingEventType = "checkout.session.completed"
	EventSubscriptionCreated BillingEventType = "customer.subscription.created"
	EventSubscriptionUpdated BillingEventType = "customer.subscription.updated"
	EventSubscriptionDeleted BillingEventType = "customer.subscription.deleted"
	EventPaymentFailed       BillingEventType = "invoice.payment_failed"
)

// BillingEvent is a verified webhook event reduced to what enrollment needs.
// Email may be empty when the provider only names the customer.
type BillingEvent struct {
	ID                 string
	Type               BillingEventType
	Email              string
	Name               string
	CustomerID         string
	SubscriptionStatus string
}

type SubscriptionChecker interface {
	CheckSubscription(ctx context.Context, email string) (Subscription, error)
}

type Billing interface {
	SubscriptionChecker
	CreateCheckout(ctx context.Context, email, name string) (string, error)
	CreatePortal(ctx context.Context, customerID string) (string, error)
	Customer(ctx context.Context, customerID string) (Customer, error)
	ParseWebhook(payload []byte, signature string) (BillingEvent, error)
}

type Notifier interface {
	Send(ctx context.Context, to, subject, html string) error
}

type Throttle interface {
	Allow(ctx context.Context, key string) (bool, error)
}
