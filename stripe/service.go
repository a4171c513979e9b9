// Package stripe provides integration with the Stripe payment service,
// handling token purchases, VIP subscriptions, and webhook events.
package stripe

import (
	"context"
	"errors"
	"fmt"
	"time"

	stripeapi "github.com/stripe/stripe-go/v81"
	"github.com/tokenarena/arena-backend/db"
	"github.com/tokenarena/arena-backend/notifications"
	"go.vocdoni.io/dvote/log"
)

// Service provides the main business logic for Stripe operations
type Service struct {
	client      *Client
	db          *db.MongoStorage
	eventStore  *MemoryEventStore
	lockManager *LockManager
	config      *Config
	mail        notifications.NotificationService
}

// NewService creates a new Stripe service. The mail service is optional and
// only used to notify users about their VIP membership.
func NewService(config *Config, database *db.MongoStorage, mail notifications.NotificationService) (*Service, error) {
	if config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if database == nil {
		return nil, fmt.Errorf("database is required")
	}

	return &Service{
		client:      NewClient(config),
		db:          database,
		eventStore:  NewMemoryEventStore(0),
		lockManager: NewLockManager(),
		config:      config,
		mail:        mail,
	}, nil
}

// HandleWebhookEvent validates and processes a webhook event with
// idempotency. A signature validation failure is the only error the caller
// should answer with a non-2xx status.
func (s *Service) HandleWebhookEvent(payload []byte, signatureHeader string) error {
	event, err := s.client.ValidateWebhookEvent(payload, signatureHeader)
	if err != nil {
		return err
	}

	// skip events already processed in this process lifetime
	if s.eventStore.EventExists(event.ID) {
		log.Debugf("stripe webhook: event %s already processed, skipping", event.ID)
		return nil
	}

	if err := s.HandleEvent(event); err != nil {
		return err
	}

	// mark event as processed only when successful, so a transient failure
	// can be recovered by the gateway retry
	s.eventStore.MarkProcessed(event.ID)

	return nil
}

// HandleEvent dispatches a parsed event to its handler. Event types outside
// the closed set below are acknowledged and logged, never an error.
func (s *Service) HandleEvent(event *stripeapi.Event) error {
	switch event.Type {
	case stripeapi.EventTypePaymentIntentSucceeded:
		return s.handlePaymentSucceeded(event)
	case stripeapi.EventTypePaymentIntentPaymentFailed:
		return s.handlePaymentFailed(event)
	case stripeapi.EventTypeCustomerSubscriptionCreated:
		return s.handleSubscriptionCreated(event)
	case stripeapi.EventTypeCustomerSubscriptionDeleted:
		return s.handleSubscriptionDeleted(event)
	default:
		log.Debugf("stripe webhook: received unhandled event type %s (id %s)", event.Type, event.ID)
		return nil
	}
}

// handlePaymentSucceeded credits the purchased tokens to the user referenced
// by the payment intent metadata.
func (s *Service) handlePaymentSucceeded(event *stripeapi.Event) error {
	payment, err := parsePaymentFromEvent(event)
	if err != nil {
		return fmt.Errorf("failed to handle payment event %s: %w", event.ID, err)
	}

	// serialize processing per user
	unlock := s.lockManager.LockUser(payment.UserID)
	defer unlock()

	if _, err := s.db.User(payment.UserID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return NewStripeError("user_not_found",
				fmt.Sprintf("user %s not found for payment %s", payment.UserID, payment.ID), nil)
		}
		return fmt.Errorf("failed to load user %s for payment %s: %w", payment.UserID, payment.ID, err)
	}

	description := fmt.Sprintf("purchase of %d tokens", payment.Tokens)
	err = s.db.GrantTokens(payment.UserID, payment.Tokens, db.TxTypePurchase, description, payment.ID)
	if err != nil {
		if errors.Is(err, db.ErrAlreadyExists) {
			// the ledger already carries this payment, nothing to credit
			log.Debugf("stripe webhook: payment %s already credited, skipping", payment.ID)
			return nil
		}
		return fmt.Errorf("failed to credit %d tokens to user %s for payment %s: %w",
			payment.Tokens, payment.UserID, payment.ID, err)
	}

	log.Infow("tokens credited",
		"userID", payment.UserID,
		"tokens", payment.Tokens,
		"paymentID", payment.ID)
	return nil
}

// handlePaymentFailed records the failure. The user balance is never touched
// on a failed payment.
func (*Service) handlePaymentFailed(event *stripeapi.Event) error {
	payment, err := parsePaymentFromEvent(event)
	if err != nil {
		return fmt.Errorf("failed to handle payment failure event %s: %w", event.ID, err)
	}
	log.Warnw("payment failed",
		"userID", payment.UserID,
		"paymentID", payment.ID,
		"amount", payment.Amount)
	return nil
}

// handleSubscriptionCreated flags the user as VIP until the end of the
// current billing period.
func (s *Service) handleSubscriptionCreated(event *stripeapi.Event) error {
	subscription, err := parseSubscriptionFromEvent(event)
	if err != nil {
		return fmt.Errorf("failed to handle subscription event %s: %w", event.ID, err)
	}

	unlock := s.lockManager.LockUser(subscription.UserID)
	defer unlock()

	var expiry *time.Time
	if !subscription.PeriodEnd.IsZero() {
		expiry = &subscription.PeriodEnd
	}
	if err := s.db.SetVIPStatus(subscription.UserID, true, expiry); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return NewStripeError("user_not_found",
				fmt.Sprintf("user %s not found for subscription %s", subscription.UserID, subscription.ID), nil)
		}
		return fmt.Errorf("failed to flag user %s as VIP for subscription %s: %w",
			subscription.UserID, subscription.ID, err)
	}
	if err := s.db.SetUserSubscription(subscription.UserID, subscription.CustomerID, subscription.ID); err != nil {
		return fmt.Errorf("failed to store subscription %s for user %s: %w",
			subscription.ID, subscription.UserID, err)
	}

	log.Infow("vip subscription activated",
		"userID", subscription.UserID,
		"subscriptionID", subscription.ID)
	s.notifyVIPChange(subscription.UserID, true)
	return nil
}

// handleSubscriptionDeleted clears the VIP flag. Clearing an already cleared
// flag is a no-op, so a replayed deletion event is harmless.
func (s *Service) handleSubscriptionDeleted(event *stripeapi.Event) error {
	subscription, err := parseSubscriptionFromEvent(event)
	if err != nil {
		return fmt.Errorf("failed to handle subscription event %s: %w", event.ID, err)
	}

	unlock := s.lockManager.LockUser(subscription.UserID)
	defer unlock()

	if err := s.db.SetVIPStatus(subscription.UserID, false, nil); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return NewStripeError("user_not_found",
				fmt.Sprintf("user %s not found for subscription %s", subscription.UserID, subscription.ID), nil)
		}
		return fmt.Errorf("failed to clear VIP flag of user %s for subscription %s: %w",
			subscription.UserID, subscription.ID, err)
	}

	log.Infow("vip subscription ended",
		"userID", subscription.UserID,
		"subscriptionID", subscription.ID)
	s.notifyVIPChange(subscription.UserID, false)
	return nil
}

// notifyVIPChange sends a best-effort email about the VIP membership change.
func (s *Service) notifyVIPChange(userID string, active bool) {
	if s.mail == nil {
		return
	}
	user, err := s.db.User(userID)
	if err != nil || user.Email == "" {
		return
	}
	subject := "Your VIP membership is active"
	body := "Welcome to the VIP club! Your membership is now active."
	if !active {
		subject = "Your VIP membership has ended"
		body = "Your VIP membership has ended. You can resubscribe at any time."
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.mail.SendNotification(ctx, &notifications.Notification{
		ToName:    user.Username,
		ToAddress: user.Email,
		Subject:   subject,
		Body:      body,
	}); err != nil {
		log.Warnw("failed to send VIP notification", "userID", userID, "error", err)
	}
}

// CreatePaymentIntent creates a payment intent for a token purchase and
// returns it with the client secret the frontend needs to confirm the
// payment.
func (s *Service) CreatePaymentIntent(user *db.User, amount int64, packageID, packageName string) (*stripeapi.PaymentIntent, error) {
	return s.client.CreatePaymentIntent(user.ID, amount, packageID, packageName)
}

// CreateVIPSubscription subscribes the user to the VIP membership price,
// creating the Stripe customer when needed.
func (s *Service) CreateVIPSubscription(user *db.User, paymentMethodID string) (*stripeapi.Subscription, error) {
	customerID := user.StripeCustomerID
	if customerID == "" {
		customer, err := s.client.GetOrCreateCustomer(user.Email, user.Username, user.ID)
		if err != nil {
			return nil, err
		}
		customerID = customer.ID
	}

	priceID, err := s.client.ResolveVIPPrice()
	if err != nil {
		return nil, err
	}

	subscription, err := s.client.CreateVIPSubscription(customerID, priceID, paymentMethodID, user.ID)
	if err != nil {
		return nil, err
	}

	// store the customer reference right away, the subscription reference is
	// confirmed by the webhook once the first payment settles
	if err := s.db.SetUserSubscription(user.ID, customerID, ""); err != nil {
		log.Warnw("failed to store stripe customer reference",
			"userID", user.ID, "customerID", customerID, "error", err)
	}

	return subscription, nil
}
