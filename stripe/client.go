package stripe

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	stripeapi "github.com/stripe/stripe-go/v81"
	stripecustomer "github.com/stripe/stripe-go/v81/customer"
	stripeintent "github.com/stripe/stripe-go/v81/paymentintent"
	stripepaymentmethod "github.com/stripe/stripe-go/v81/paymentmethod"
	stripeprice "github.com/stripe/stripe-go/v81/price"
	stripeproduct "github.com/stripe/stripe-go/v81/product"
	stripesubscription "github.com/stripe/stripe-go/v81/subscription"
	stripewebhook "github.com/stripe/stripe-go/v81/webhook"
	"go.vocdoni.io/dvote/log"
)

// Client wraps the Stripe API client with additional functionality
type Client struct {
	config     *Config
	httpClient *http.Client
}

// NewClient creates a new Stripe client with the given configuration
func NewClient(config *Config) *Client {
	stripeapi.Key = config.APIKey
	if config.WebhookSecret == "" {
		log.Warnw("stripe webhook secret not configured, webhook signatures will NOT be verified")
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// ValidateWebhookEvent validates and parses a webhook event. When no webhook
// secret is configured the payload is parsed without signature verification,
// which is only acceptable for local development.
func (c *Client) ValidateWebhookEvent(payload []byte, signatureHeader string) (*stripeapi.Event, error) {
	if c.config.WebhookSecret == "" {
		event := &stripeapi.Event{}
		if err := json.Unmarshal(payload, event); err != nil {
			return nil, NewStripeError("webhook_validation", "failed to parse unverified webhook payload", err)
		}
		return event, nil
	}
	event, err := stripewebhook.ConstructEvent(payload, signatureHeader, c.config.WebhookSecret)
	if err != nil {
		return nil, NewStripeError("webhook_validation", "webhook signature validation failed", err)
	}
	return &event, nil
}

// CreatePaymentIntent creates a payment intent for a token purchase. The
// amount is expressed in minor currency units. The user and token amount
// travel in the intent metadata so the webhook reconciliation can credit the
// right account without any extra lookup.
func (*Client) CreatePaymentIntent(userID string, amount int64, packageID, packageName string) (*stripeapi.PaymentIntent, error) {
	params := &stripeapi.PaymentIntentParams{
		Amount:   stripeapi.Int64(amount),
		Currency: stripeapi.String(string(stripeapi.CurrencyUSD)),
		AutomaticPaymentMethods: &stripeapi.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripeapi.Bool(true),
		},
	}
	params.AddMetadata("userId", userID)
	params.AddMetadata("tokens", strconv.FormatInt(TokensForMinorAmount(amount), 10))
	params.AddMetadata("timestamp", strconv.FormatInt(time.Now().Unix(), 10))
	if packageID != "" {
		params.AddMetadata("packageId", packageID)
	}
	if packageName != "" {
		params.AddMetadata("packageName", packageName)
	}

	intent, err := stripeintent.New(params)
	if err != nil {
		return nil, NewStripeError("api_call_failed", "failed to create payment intent", err)
	}
	return intent, nil
}

// GetCustomerByEmail retrieves a customer by email address
func (*Client) GetCustomerByEmail(email string) (*stripeapi.Customer, error) {
	params := &stripeapi.CustomerListParams{
		Email: stripeapi.String(email),
	}

	customers := stripecustomer.List(params)
	if !customers.Next() {
		return nil, NewStripeError("customer_not_found", fmt.Sprintf("customer with email %s not found", email), nil)
	}

	return customers.Customer(), nil
}

// GetOrCreateCustomer returns the customer with the given email, creating it
// with the user reference in the metadata when none exists yet.
func (c *Client) GetOrCreateCustomer(email, username, userID string) (*stripeapi.Customer, error) {
	if customer, err := c.GetCustomerByEmail(email); err == nil {
		return customer, nil
	}
	params := &stripeapi.CustomerParams{
		Email: stripeapi.String(email),
		Name:  stripeapi.String(username),
	}
	params.AddMetadata("userId", userID)
	customer, err := stripecustomer.New(params)
	if err != nil {
		return nil, NewStripeError("api_call_failed", "failed to create customer", err)
	}
	return customer, nil
}

// ResolveVIPPrice returns the recurring price used for VIP subscriptions. A
// configured price ID wins; otherwise the price is looked up by its lookup
// key and created together with its product when missing.
func (c *Client) ResolveVIPPrice() (string, error) {
	if c.config.VIPPriceID != "" {
		return c.config.VIPPriceID, nil
	}

	results := stripeprice.Search(&stripeapi.PriceSearchParams{
		SearchParams: stripeapi.SearchParams{
			Query: fmt.Sprintf("active:'true' AND lookup_key:'%s'", DefaultVIPLookupKey),
		},
	})
	if results.Next() {
		return results.Price().ID, nil
	}
	if err := results.Err(); err != nil {
		return "", NewStripeError("api_call_failed", "failed to search for VIP price", err)
	}

	product, err := stripeproduct.New(&stripeapi.ProductParams{
		Name: stripeapi.String("VIP Membership"),
	})
	if err != nil {
		return "", NewStripeError("api_call_failed", "failed to create VIP product", err)
	}
	price, err := stripeprice.New(&stripeapi.PriceParams{
		Product:    stripeapi.String(product.ID),
		UnitAmount: stripeapi.Int64(999),
		Currency:   stripeapi.String(string(stripeapi.CurrencyUSD)),
		Recurring: &stripeapi.PriceRecurringParams{
			Interval: stripeapi.String(string(stripeapi.PriceRecurringIntervalMonth)),
		},
		LookupKey: stripeapi.String(DefaultVIPLookupKey),
	})
	if err != nil {
		return "", NewStripeError("api_call_failed", "failed to create VIP price", err)
	}
	return price.ID, nil
}

// CreateVIPSubscription subscribes the customer to the VIP price. The
// payment method is attached and set as the customer default first, and the
// subscription starts incomplete so the client can confirm the first payment
// with the returned intent secret. The user reference is set explicitly in
// the subscription metadata so the webhook reconciliation can resolve it.
func (*Client) CreateVIPSubscription(customerID, priceID, paymentMethodID, userID string) (*stripeapi.Subscription, error) {
	if paymentMethodID != "" {
		if _, err := stripepaymentmethod.Attach(paymentMethodID, &stripeapi.PaymentMethodAttachParams{
			Customer: stripeapi.String(customerID),
		}); err != nil {
			return nil, NewStripeError("api_call_failed", "failed to attach payment method", err)
		}
		if _, err := stripecustomer.Update(customerID, &stripeapi.CustomerParams{
			InvoiceSettings: &stripeapi.CustomerInvoiceSettingsParams{
				DefaultPaymentMethod: stripeapi.String(paymentMethodID),
			},
		}); err != nil {
			return nil, NewStripeError("api_call_failed", "failed to set default payment method", err)
		}
	}

	params := &stripeapi.SubscriptionParams{
		Customer: stripeapi.String(customerID),
		Items: []*stripeapi.SubscriptionItemsParams{
			{Price: stripeapi.String(priceID)},
		},
		PaymentBehavior: stripeapi.String("default_incomplete"),
		PaymentSettings: &stripeapi.SubscriptionPaymentSettingsParams{
			SaveDefaultPaymentMethod: stripeapi.String("on_subscription"),
		},
	}
	params.AddMetadata("userId", userID)
	params.AddExpand("latest_invoice.payment_intent")

	subscription, err := stripesubscription.New(params)
	if err != nil {
		return nil, NewStripeError("api_call_failed", "failed to create subscription", err)
	}
	return subscription, nil
}

// CancelSubscription cancels the subscription immediately.
func (*Client) CancelSubscription(subscriptionID string) error {
	if _, err := stripesubscription.Cancel(subscriptionID, nil); err != nil {
		return NewStripeError("api_call_failed", "failed to cancel subscription", err)
	}
	return nil
}

// PaymentInfo represents the payment information extracted from a webhook
// event that is relevant for crediting tokens.
type PaymentInfo struct {
	ID     string
	UserID string
	Amount int64
	Tokens int64
}

// parsePaymentFromEvent extracts payment information from a payment intent
// event. The token amount comes from the intent metadata when present and
// falls back to the charged amount otherwise.
func parsePaymentFromEvent(event *stripeapi.Event) (*PaymentInfo, error) {
	var intent stripeapi.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		return nil, NewStripeError("invalid_event", "failed to parse payment intent from event", err)
	}
	userID := intent.Metadata["userId"]
	if userID == "" {
		return nil, NewStripeError("missing_user_metadata",
			fmt.Sprintf("payment intent %s carries no userId metadata", intent.ID), nil)
	}
	tokens := TokensForMinorAmount(intent.Amount)
	if raw := intent.Metadata["tokens"]; raw != "" {
		if parsed, err := strconv.ParseInt(raw, 10, 64); err == nil && parsed > 0 {
			tokens = parsed
		}
	}
	return &PaymentInfo{
		ID:     intent.ID,
		UserID: userID,
		Amount: intent.Amount,
		Tokens: tokens,
	}, nil
}

// SubscriptionInfo represents the subscription information extracted from a
// webhook event that is relevant for the VIP flag.
type SubscriptionInfo struct {
	ID         string
	UserID     string
	CustomerID string
	Status     stripeapi.SubscriptionStatus
	PeriodEnd  time.Time
}

// parseSubscriptionFromEvent extracts subscription information from a
// webhook event.
func parseSubscriptionFromEvent(event *stripeapi.Event) (*SubscriptionInfo, error) {
	var subscription stripeapi.Subscription
	if err := json.Unmarshal(event.Data.Raw, &subscription); err != nil {
		return nil, NewStripeError("invalid_event", "failed to parse subscription from event", err)
	}
	userID := subscription.Metadata["userId"]
	if userID == "" {
		return nil, NewStripeError("missing_user_metadata",
			fmt.Sprintf("subscription %s carries no userId metadata", subscription.ID), nil)
	}
	info := &SubscriptionInfo{
		ID:     subscription.ID,
		UserID: userID,
		Status: subscription.Status,
	}
	if subscription.Customer != nil {
		info.CustomerID = subscription.Customer.ID
	}
	if subscription.CurrentPeriodEnd > 0 {
		info.PeriodEnd = time.Unix(subscription.CurrentPeriodEnd, 0)
	}
	return info, nil
}
