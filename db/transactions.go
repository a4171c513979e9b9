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

func (ms *MongoStorage) addTransaction(ctx context.Context, tx *Transaction) error {
	if tx.UserID == "" || tx.Amount == 0 || !IsValidTransactionType(tx.Type) {
		return ErrInvalidData
	}
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now()
	}
	if _, err := ms.transactions.InsertOne(ctx, tx); err != nil {
		if strings.Contains(err.Error(), "duplicate key error") {
			return ErrAlreadyExists
		}
		return err
	}
	return nil
}

// GrantTokens credits tokens to the user and records the matching ledger
// entry in a single transaction. The paymentID, when set, is covered by a
// unique index: a replayed gateway event inserts nothing and returns
// ErrAlreadyExists without touching the balance.
func (ms *MongoStorage) GrantTokens(userID string, amount int64, txType TransactionType, description, paymentID string) error {
	if amount <= 0 {
		return ErrInvalidData
	}
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	return ms.WithTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		// insert the ledger entry first so the unique paymentID index
		// rejects a duplicate before the balance is touched
		if err := ms.addTransaction(sessCtx, &Transaction{
			UserID:      userID,
			Type:        txType,
			Amount:      amount,
			Description: description,
			PaymentID:   paymentID,
		}); err != nil {
			return err
		}
		return ms.incUserTokens(sessCtx, userID, amount)
	})
}

// SpendTokens debits tokens from the user and records the matching ledger
// entry with a negative amount. It returns ErrInsufficientTokens when the
// balance cannot cover the debit.
func (ms *MongoStorage) SpendTokens(userID string, amount int64, txType TransactionType, description string) error {
	if amount <= 0 {
		return ErrInvalidData
	}
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	return ms.WithTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := ms.incUserTokens(sessCtx, userID, -amount); err != nil {
			return err
		}
		return ms.addTransaction(sessCtx, &Transaction{
			UserID:      userID,
			Type:        txType,
			Amount:      -amount,
			Description: description,
		})
	})
}

// TransferTokens moves tokens from one user to another, recording a debit
// entry for the sender and a credit entry for the recipient. All four writes
// commit or abort together.
func (ms *MongoStorage) TransferTokens(fromID, toID string, amount int64, description string) error {
	if amount <= 0 || fromID == toID {
		return ErrInvalidData
	}
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	return ms.WithTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := ms.incUserTokens(sessCtx, fromID, -amount); err != nil {
			return err
		}
		if err := ms.incUserTokens(sessCtx, toID, amount); err != nil {
			return err
		}
		if err := ms.addTransaction(sessCtx, &Transaction{
			UserID:      fromID,
			Type:        TxTypeTip,
			Amount:      -amount,
			Description: description,
		}); err != nil {
			return err
		}
		return ms.addTransaction(sessCtx, &Transaction{
			UserID:      toID,
			Type:        TxTypeTip,
			Amount:      amount,
			Description: description,
		})
	})
}

// TransactionsByUser returns the ledger entries of the user, newest first.
func (ms *MongoStorage) TransactionsByUser(userID string, limit int64) ([]*Transaction, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if limit > 0 {
		opts = opts.SetLimit(limit)
	}
	cur, err := ms.transactions.Find(ctx, bson.M{"userID": userID}, opts)
	if err != nil {
		return nil, err
	}
	var txs []*Transaction
	if err := cur.All(ctx, &txs); err != nil {
		return nil, err
	}
	return txs, nil
}
