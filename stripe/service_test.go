package stripe

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
	"github.com/tokenarena/arena-backend/db"
	"github.com/tokenarena/arena-backend/test"
)

var (
	testDB      *db.MongoStorage
	testService *Service
)

func TestMain(m *testing.M) {
	ctx := context.Background()
	dbContainer, err := test.StartMongoContainer(ctx)
	if err != nil {
		panic(fmt.Sprintf("failed to start MongoDB container: %v", err))
	}

	mongoURI, err := test.MongoURI(ctx, dbContainer)
	if err != nil {
		panic(fmt.Sprintf("failed to get MongoDB endpoint: %v", err))
	}

	testDB, err = db.New(mongoURI, test.RandomDatabaseName())
	if err != nil {
		panic(fmt.Sprintf("failed to create new MongoDB connection: %v", err))
	}

	// an empty webhook secret makes the service accept raw JSON payloads,
	// so the webhook flow can be exercised without signing
	testService, err = NewService(&Config{APIKey: "sk_test_arena"}, testDB, nil)
	if err != nil {
		panic(fmt.Sprintf("failed to create stripe service: %v", err))
	}

	code := m.Run()

	testDB.Close()
	if err := dbContainer.Terminate(ctx); err != nil {
		panic(fmt.Sprintf("failed to stop MongoDB container: %v", err))
	}

	os.Exit(code)
}

func testServiceUser(c *qt.C, email string) *db.User {
	c.Helper()
	id, err := testDB.SetUser(&db.User{
		Email:    email,
		Username: email,
		Password: "hashedpassword",
	})
	c.Assert(err, qt.IsNil)
	return &db.User{ID: id, Email: email}
}

func paymentEventPayload(eventID, intentID, userID string, amount int64) []byte {
	metadata := "{}"
	if userID != "" {
		metadata = fmt.Sprintf(`{"userId":%q}`, userID)
	}
	return []byte(fmt.Sprintf(`{
		"id": %q,
		"type": "payment_intent.succeeded",
		"data": {
			"object": {
				"id": %q,
				"object": "payment_intent",
				"amount": %d,
				"currency": "usd",
				"metadata": %s
			}
		}
	}`, eventID, intentID, amount, metadata))
}

func subscriptionEventPayload(eventType, eventID, subscriptionID, userID string, periodEnd int64) []byte {
	return []byte(fmt.Sprintf(`{
		"id": %q,
		"type": %q,
		"data": {
			"object": {
				"id": %q,
				"object": "subscription",
				"customer": "cus_test_123",
				"status": "active",
				"current_period_end": %d,
				"metadata": {"userId": %q}
			}
		}
	}`, eventID, eventType, subscriptionID, periodEnd, userID))
}

func TestHandlePaymentSucceeded(t *testing.T) {
	defer func() { _ = testDB.Reset() }()
	c := qt.New(t)
	user := testServiceUser(c, "buyer@email.test")

	payload := paymentEventPayload("evt_1", "pi_1", user.ID, 1000)
	c.Assert(testService.HandleWebhookEvent(payload, ""), qt.IsNil)

	stored, err := testDB.User(user.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(stored.TokenBalance, qt.Equals, int64(250))
	txs, err := testDB.TransactionsByUser(user.ID, 0)
	c.Assert(err, qt.IsNil)
	c.Assert(txs, qt.HasLen, 1)
	c.Assert(txs[0].Type, qt.Equals, db.TxTypePurchase)
	c.Assert(txs[0].Amount, qt.Equals, int64(250))
	c.Assert(txs[0].PaymentID, qt.Equals, "pi_1")

	// a redelivery of the same event must not credit again
	c.Assert(testService.HandleWebhookEvent(payload, ""), qt.IsNil)
	stored, err = testDB.User(user.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(stored.TokenBalance, qt.Equals, int64(250))

	// the same payment under a fresh event ID must not credit either
	replay := paymentEventPayload("evt_2", "pi_1", user.ID, 1000)
	c.Assert(testService.HandleWebhookEvent(replay, ""), qt.IsNil)
	stored, err = testDB.User(user.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(stored.TokenBalance, qt.Equals, int64(250))
	txs, err = testDB.TransactionsByUser(user.ID, 0)
	c.Assert(err, qt.IsNil)
	c.Assert(txs, qt.HasLen, 1)
}

func TestHandlePaymentMissingUser(t *testing.T) {
	defer func() { _ = testDB.Reset() }()
	c := qt.New(t)
	user := testServiceUser(c, "bystander@email.test")

	// no userId metadata: the event must fail loudly without touching any
	// balance, and must not be mistaken for a signature failure
	payload := paymentEventPayload("evt_nouser", "pi_nouser", "", 1000)
	err := testService.HandleWebhookEvent(payload, "")
	c.Assert(err, qt.IsNotNil)
	c.Assert(IsValidationError(err), qt.IsFalse)

	stored, dbErr := testDB.User(user.ID)
	c.Assert(dbErr, qt.IsNil)
	c.Assert(stored.TokenBalance, qt.Equals, int64(0))

	// an unknown user reference fails the same way
	payload = paymentEventPayload("evt_ghost", "pi_ghost", "no-such-user", 1000)
	err = testService.HandleWebhookEvent(payload, "")
	c.Assert(err, qt.IsNotNil)
	c.Assert(IsValidationError(err), qt.IsFalse)
}

func TestHandleSubscriptionLifecycle(t *testing.T) {
	defer func() { _ = testDB.Reset() }()
	c := qt.New(t)
	user := testServiceUser(c, "vip@email.test")
	periodEnd := time.Now().Add(30 * 24 * time.Hour).Unix()

	created := subscriptionEventPayload("customer.subscription.created", "evt_sub_1", "sub_1", user.ID, periodEnd)
	c.Assert(testService.HandleWebhookEvent(created, ""), qt.IsNil)

	stored, err := testDB.User(user.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(stored.VIP, qt.IsTrue)
	c.Assert(stored.VIPExpiry, qt.Not(qt.IsNil))
	c.Assert(stored.VIPExpiry.Unix(), qt.Equals, periodEnd)
	c.Assert(stored.StripeCustomerID, qt.Equals, "cus_test_123")
	c.Assert(stored.StripeSubscriptionID, qt.Equals, "sub_1")

	deleted := subscriptionEventPayload("customer.subscription.deleted", "evt_sub_2", "sub_1", user.ID, periodEnd)
	c.Assert(testService.HandleWebhookEvent(deleted, ""), qt.IsNil)
	stored, err = testDB.User(user.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(stored.VIP, qt.IsFalse)
	c.Assert(stored.VIPExpiry, qt.IsNil)

	// a replayed deletion under a fresh event ID is a no-op
	replay := subscriptionEventPayload("customer.subscription.deleted", "evt_sub_3", "sub_1", user.ID, periodEnd)
	c.Assert(testService.HandleWebhookEvent(replay, ""), qt.IsNil)
	stored, err = testDB.User(user.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(stored.VIP, qt.IsFalse)
}

func TestConcurrentPayments(t *testing.T) {
	defer func() { _ = testDB.Reset() }()
	c := qt.New(t)
	user := testServiceUser(c, "concurrent@email.test")

	// two distinct payments arriving at once must both credit
	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			payload := paymentEventPayload(
				fmt.Sprintf("evt_conc_%d", i),
				fmt.Sprintf("pi_conc_%d", i),
				user.ID, 1000)
			errs[i] = testService.HandleWebhookEvent(payload, "")
		}(i)
	}
	wg.Wait()
	c.Assert(errs[0], qt.IsNil)
	c.Assert(errs[1], qt.IsNil)

	stored, err := testDB.User(user.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(stored.TokenBalance, qt.Equals, int64(500))
	txs, err := testDB.TransactionsByUser(user.ID, 0)
	c.Assert(err, qt.IsNil)
	c.Assert(txs, qt.HasLen, 2)
}

func TestHandleUnknownEventType(t *testing.T) {
	c := qt.New(t)
	payload := []byte(`{
		"id": "evt_other",
		"type": "charge.refunded",
		"data": {"object": {"id": "ch_1", "object": "charge"}}
	}`)
	// unknown event types are acknowledged without error
	c.Assert(testService.HandleWebhookEvent(payload, ""), qt.IsNil)
}

func TestPaymentFailedDoesNotCredit(t *testing.T) {
	defer func() { _ = testDB.Reset() }()
	c := qt.New(t)
	user := testServiceUser(c, "declined@email.test")
	payload := []byte(fmt.Sprintf(`{
		"id": "evt_failed",
		"type": "payment_intent.payment_failed",
		"data": {
			"object": {
				"id": "pi_failed",
				"object": "payment_intent",
				"amount": 1000,
				"metadata": {"userId": %q}
			}
		}
	}`, user.ID))
	c.Assert(testService.HandleWebhookEvent(payload, ""), qt.IsNil)
	stored, err := testDB.User(user.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(stored.TokenBalance, qt.Equals, int64(0))
	txs, err := testDB.TransactionsByUser(user.ID, 0)
	c.Assert(err, qt.IsNil)
	c.Assert(txs, qt.HasLen, 0)
}
