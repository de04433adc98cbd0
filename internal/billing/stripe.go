// Package billing adapts Stripe to the services.Billing interface.
package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"

	"github.com/seanlongden/asa-student-portal/internal/services"
)

const (
	enrollmentFeeCents = 350000
	monthlyFeeCents    = 49700
)

type Config struct {
	SecretKey     string
	WebhookSecret string
	PublicURL     string
	// APIURL overrides the Stripe API base, for tests.
	APIURL  string
	Timeout time.Duration
}

type Stripe struct {
	api           *client.API
	webhookSecret string
	publicURL     string
}

func New(cfg Config) *Stripe {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	backendCfg := &stripe.BackendConfig{
		HTTPClient:        &http.Client{Timeout: timeout},
		MaxNetworkRetries: stripe.Int64(1),
		LeveledLogger:     &stripe.LeveledLogger{Level: stripe.LevelError},
	}
	if cfg.APIURL != "" {
		backendCfg.URL = stripe.String(cfg.APIURL)
		backendCfg.MaxNetworkRetries = stripe.Int64(0)
		backendCfg.LeveledLogger = &stripe.LeveledLogger{Level: stripe.LevelNull}
	}
	backend := stripe.GetBackendWithConfig(stripe.APIBackend, backendCfg)
	api := &client.API{}
	api.Init(cfg.SecretKey, &stripe.Backends{API: backend, Connect: backend, Uploads: backend})
	return &Stripe{api: api, webhookSecret: cfg.WebhookSecret, publicURL: cfg.PublicURL}
}

// CheckSubscription finds the first customer with the email and reports
// whether it has an active subscription.
func (s *Stripe) CheckSubscription(ctx context.Context, email string) (services.Subscription, error) {
	customers := &stripe.CustomerListParams{Email: stripe.String(email)}
	customers.Limit = stripe.Int64(1)
	customers.Context = ctx
	it := s.api.Customers.List(customers)
	if !it.Next() {
		if err := it.Err(); err != nil {
			return services.Subscription{}, fmt.Errorf("list customers: %w", err)
		}
		return services.Subscription{}, nil
	}
	customerID := it.Customer().ID

	subs := &stripe.SubscriptionListParams{
		Customer: stripe.String(customerID),
		Status:   stripe.String(string(stripe.SubscriptionStatusActive)),
	}
	subs.Limit = stripe.Int64(1)
	subs.Context = ctx
	subIt := s.api.Subscriptions.List(subs)
	active := subIt.Next()
	if err := subIt.Err(); err != nil {
		return services.Subscription{}, fmt.Errorf("list subscriptions: %w", err)
	}
	return services.Subscription{Active: active, CustomerID: customerID}, nil
}

func (s *Stripe) CreateCheckout(ctx context.Context, email, name string) (string, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		CustomerEmail:      stripe.String(email),
		SuccessURL:         stripe.String(s.publicURL + "/dashboard?success=true"),
		CancelURL:          stripe.String(s.publicURL + "/?canceled=true"),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:    stripe.String(string(stripe.CurrencyUSD)),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{Name: stripe.String("ASA Enrollment Fee")},
					UnitAmount:  stripe.Int64(enrollmentFeeCents),
				},
				Quantity: stripe.Int64(1),
			},
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:    stripe.String(string(stripe.CurrencyUSD)),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{Name: stripe.String("ASA Monthly Membership")},
					UnitAmount:  stripe.Int64(monthlyFeeCents),
					Recurring: &stripe.CheckoutSessionLineItemPriceDataRecurringParams{
						Interval: stripe.String(string(stripe.PriceRecurringIntervalMonth)),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
	}
	params.AddMetadata("studentName", name)
	params.AddMetadata("studentEmail", email)
	params.Context = ctx
	session, err := s.api.CheckoutSessions.New(params)
	if err != nil {
		return "", fmt.Errorf("create checkout session: %w", err)
	}
	return session.URL, nil
}

func (s *Stripe) CreatePortal(ctx context.Context, customerID string) (string, error) {
	params := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(customerID),
		ReturnURL: stripe.String(s.publicURL + "/dashboard"),
	}
	params.Context = ctx
	session, err := s.api.BillingPortalSessions.New(params)
	if err != nil {
		return "", fmt.Errorf("create portal session: %w", err)
	}
	return session.URL, nil
}

func (s *Stripe) Customer(ctx context.Context, customerID string) (services.Customer, error) {
	params := &stripe.CustomerParams{}
	params.Context = ctx
	customer, err := s.api.Customers.Get(customerID, params)
	if err != nil {
		return services.Customer{}, fmt.Errorf("get customer %s: %w", customerID, err)
	}
	if customer.Deleted {
		return services.Customer{ID: customer.ID}, nil
	}
	return services.Customer{ID: customer.ID, Email: customer.Email, Name: customer.Name}, nil
}

// ParseWebhook verifies the Stripe-Signature header and reduces the event to
// the fields enrollment acts on. Unknown event types are returned with only
// ID and Type set.
func (s *Stripe) ParseWebhook(payload []byte, signature string) (services.BillingEvent, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, s.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return services.BillingEvent{}, err
	}
	out := services.BillingEvent{ID: event.ID, Type: services.BillingEventType(event.Type)}
	if event.Data == nil {
		return out, nil
	}
	switch out.Type {
	case services.EventCheckoutCompleted:
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			return services.BillingEvent{}, fmt.Errorf("decode checkout session: %w", err)
		}
		out.Email = session.CustomerEmail
		if out.Email == "" {
			out.Email = session.Metadata["studentEmail"]
		}
		if out.Email == "" && session.CustomerDetails != nil {
			out.Email = session.CustomerDetails.Email
		}
		out.Name = session.Metadata["studentName"]
		if session.Customer != nil {
			out.CustomerID = session.Customer.ID
		}
	case services.EventSubscriptionCreated, services.EventSubscriptionUpdated, services.EventSubscriptionDeleted:
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return services.BillingEvent{}, fmt.Errorf("decode subscription: %w", err)
		}
		out.SubscriptionStatus = string(sub.Status)
		if sub.Customer != nil {
			out.CustomerID = sub.Customer.ID
		}
	case services.EventPaymentFailed:
		var invoice stripe.Invoice
		if err := json.Unmarshal(event.Data.Raw, &invoice); err != nil {
			return services.BillingEvent{}, fmt.Errorf("decode invoice: %w", err)
		}
		out.Email = invoice.CustomerEmail
		if invoice.Customer != nil {
			out.CustomerID = invoice.Customer.ID
		}
	}
	return out, nil
}

var _ services.Billing = (*Stripe)(nil)
