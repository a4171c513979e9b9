package db

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (ms *MongoStorage) fetchUserFromDB(ctx context.Context, id string) (*User, error) {
	result := ms.users.FindOne(ctx, bson.M{"_id": id})
	user := &User{}
	if err := result.Decode(user); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

// User method returns the user with the given ID. If the user doesn't exist,
// it returns a specific error. If other errors occur, it returns the error.
func (ms *MongoStorage) User(id string) (*User, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	return ms.fetchUserFromDB(ctx, id)
}

// UserByEmail method returns the user with the given email. If the user
// doesn't exist, it returns a specific error. If other errors occur, it
// returns the error.
func (ms *MongoStorage) UserByEmail(email string) (*User, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	result := ms.users.FindOne(ctx, bson.M{"email": email})
	user := &User{}
	if err := result.Decode(user); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

// SetUser method creates or updates the user in the database. If the user
// already exists, it updates the fields that have changed. If the user
// doesn't exist, it creates it assigning a fresh identifier.
func (ms *MongoStorage) SetUser(user *User) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	if user.ID != "" {
		// if the user exists, update it with the new data
		updateDoc, err := dynamicUpdateDocument(user, nil)
		if err != nil {
			return "", err
		}
		if _, err := ms.users.UpdateOne(ctx, bson.M{"_id": user.ID}, updateDoc); err != nil {
			return "", err
		}
		return user.ID, nil
	}
	// if the user doesn't exist, create it setting the ID first
	user.ID = uuid.NewString()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	if _, err := ms.users.InsertOne(ctx, user); err != nil {
		if strings.Contains(err.Error(), "duplicate key error") {
			return "", ErrAlreadyExists
		}
		return "", err
	}
	return user.ID, nil
}

// DelUser method deletes the user from the database. If an error occurs, it
// returns the error.
func (ms *MongoStorage) DelUser(user *User) error {
	if user.ID == "" && user.Email == "" {
		return ErrInvalidData
	}
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	filter := bson.M{"_id": user.ID}
	if user.ID == "" {
		filter = bson.M{"email": user.Email}
	}
	_, err := ms.users.DeleteOne(ctx, filter)
	return err
}

// incUserTokens applies a signed token delta to the user's balance as a single
// conditional update. Debits carry a $gte guard so the balance can never go
// negative, and two concurrent credits both land ($inc, not read-modify-write).
// This method must be used for every balance mutation.
func (ms *MongoStorage) incUserTokens(ctx context.Context, userID string, delta int64) error {
	filter := bson.M{"_id": userID}
	if delta < 0 {
		filter["tokenBalance"] = bson.M{"$gte": -delta}
	}
	res, err := ms.users.UpdateOne(ctx, filter, bson.M{"$inc": bson.M{"tokenBalance": delta}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		if delta < 0 {
			// distinguish a missing user from an insufficient balance
			if _, err := ms.fetchUserFromDB(ctx, userID); err != nil {
				return err
			}
			return ErrInsufficientTokens
		}
		return ErrNotFound
	}
	return nil
}

// IncUserTokens applies a signed token delta to the user's balance.
func (ms *MongoStorage) IncUserTokens(userID string, delta int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	return ms.incUserTokens(ctx, userID, delta)
}

// SetVIPStatus sets or clears the VIP flag and expiry of the user. Clearing
// an already cleared flag is a no-op, which makes the operation idempotent.
func (ms *MongoStorage) SetVIPStatus(userID string, vip bool, expiry *time.Time) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	update := bson.M{"$set": bson.M{"vip": vip, "vipExpiry": expiry}}
	if expiry == nil {
		update = bson.M{
			"$set":   bson.M{"vip": vip},
			"$unset": bson.M{"vipExpiry": ""},
		}
	}
	res, err := ms.users.UpdateOne(ctx, bson.M{"_id": userID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// SetUserSubscription stores the gateway customer and subscription
// identifiers of the user.
func (ms *MongoStorage) SetUserSubscription(userID, customerID, subscriptionID string) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	update := bson.M{"$set": bson.M{
		"stripeCustomerID":     customerID,
		"stripeSubscriptionID": subscriptionID,
	}}
	res, err := ms.users.UpdateOne(ctx, bson.M{"_id": userID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// applyMatchResult updates the aggregate stats counters of a settled match
// participant. Must be called within the settlement transaction.
func (ms *MongoStorage) applyMatchResult(ctx context.Context, userID string, won bool, tokens int64) error {
	inc := bson.M{"stats.losses": 1}
	if won {
		inc = bson.M{"stats.wins": 1, "stats.tokensWon": tokens}
	}
	res, err := ms.users.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{"$inc": inc})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Leaderboard returns the top users ordered by tokens won and then by wins.
func (ms *MongoStorage) Leaderboard(limit int64) ([]*User, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	opts := options.Find().
		SetSort(bson.D{{Key: "stats.tokensWon", Value: -1}, {Key: "stats.wins", Value: -1}}).
		SetLimit(limit)
	cur, err := ms.users.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	var users []*User
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}
