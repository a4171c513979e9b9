package db

import (
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestGrantTokens(t *testing.T) {
	defer func() { _ = testDB.Reset() }()
	c := qt.New(t)
	user := testUser(c, "grant@email.test", 0)
	// credit with a payment reference
	err := testDB.GrantTokens(user.ID, 250, TxTypePurchase, "token purchase", "pi_test_123")
	c.Assert(err, qt.IsNil)
	stored, err := testDB.User(user.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(stored.TokenBalance, qt.Equals, int64(250))
	// replaying the same payment must not credit again
	err = testDB.GrantTokens(user.ID, 250, TxTypePurchase, "token purchase", "pi_test_123")
	c.Assert(err, qt.ErrorIs, ErrAlreadyExists)
	stored, err = testDB.User(user.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(stored.TokenBalance, qt.Equals, int64(250))
	txs, err := testDB.TransactionsByUser(user.ID, 0)
	c.Assert(err, qt.IsNil)
	c.Assert(txs, qt.HasLen, 1)
	c.Assert(txs[0].Type, qt.Equals, TxTypePurchase)
	c.Assert(txs[0].Amount, qt.Equals, int64(250))
	c.Assert(txs[0].PaymentID, qt.Equals, "pi_test_123")
	// grants without a payment reference are not deduplicated
	c.Assert(testDB.GrantTokens(user.ID, 100, TxTypeMatchWin, "match win", ""), qt.IsNil)
	c.Assert(testDB.GrantTokens(user.ID, 100, TxTypeMatchWin, "match win", ""), qt.IsNil)
	stored, err = testDB.User(user.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(stored.TokenBalance, qt.Equals, int64(450))
	// invalid input
	c.Assert(testDB.GrantTokens(user.ID, 0, TxTypePurchase, "", ""), qt.Equals, ErrInvalidData)
	c.Assert(testDB.GrantTokens(user.ID, -10, TxTypePurchase, "", ""), qt.Equals, ErrInvalidData)
}

func TestSpendTokens(t *testing.T) {
	defer func() { _ = testDB.Reset() }()
	c := qt.New(t)
	user := testUser(c, "spend@email.test", 100)
	c.Assert(testDB.SpendTokens(user.ID, 60, TxTypeWithdrawal, "withdrawal"), qt.IsNil)
	// a debit beyond the balance aborts and records nothing
	err := testDB.SpendTokens(user.ID, 41, TxTypeWithdrawal, "withdrawal")
	c.Assert(err, qt.ErrorIs, ErrInsufficientTokens)
	stored, err := testDB.User(user.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(stored.TokenBalance, qt.Equals, int64(40))
	txs, err := testDB.TransactionsByUser(user.ID, 0)
	c.Assert(err, qt.IsNil)
	c.Assert(txs, qt.HasLen, 1)
	c.Assert(txs[0].Amount, qt.Equals, int64(-60))
}

func TestTransferTokens(t *testing.T) {
	defer func() { _ = testDB.Reset() }()
	c := qt.New(t)
	from := testUser(c, "tipper@email.test", 100)
	to := testUser(c, "tipped@email.test", 0)
	c.Assert(testDB.TransferTokens(from.ID, to.ID, 30, "nice play"), qt.IsNil)
	// self tips and empty amounts are rejected
	c.Assert(testDB.TransferTokens(from.ID, from.ID, 30, ""), qt.Equals, ErrInvalidData)
	c.Assert(testDB.TransferTokens(from.ID, to.ID, 0, ""), qt.Equals, ErrInvalidData)
	// the whole transfer aborts when the sender cannot cover it
	err := testDB.TransferTokens(from.ID, to.ID, 1000, "too much")
	c.Assert(err, qt.ErrorIs, ErrInsufficientTokens)
	fromStored, err := testDB.User(from.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(fromStored.TokenBalance, qt.Equals, int64(70))
	toStored, err := testDB.User(to.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(toStored.TokenBalance, qt.Equals, int64(30))
	// each side gets its own ledger entry
	fromTxs, err := testDB.TransactionsByUser(from.ID, 0)
	c.Assert(err, qt.IsNil)
	c.Assert(fromTxs, qt.HasLen, 1)
	c.Assert(fromTxs[0].Amount, qt.Equals, int64(-30))
	c.Assert(fromTxs[0].Type, qt.Equals, TxTypeTip)
	toTxs, err := testDB.TransactionsByUser(to.ID, 0)
	c.Assert(err, qt.IsNil)
	c.Assert(toTxs, qt.HasLen, 1)
	c.Assert(toTxs[0].Amount, qt.Equals, int64(30))
}

func TestTransactionsByUserOrder(t *testing.T) {
	defer func() { _ = testDB.Reset() }()
	c := qt.New(t)
	user := testUser(c, "ledger@email.test", 0)
	c.Assert(testDB.GrantTokens(user.ID, 100, TxTypePurchase, "first", "pi_1"), qt.IsNil)
	c.Assert(testDB.GrantTokens(user.ID, 200, TxTypePurchase, "second", "pi_2"), qt.IsNil)
	c.Assert(testDB.GrantTokens(user.ID, 300, TxTypePurchase, "third", "pi_3"), qt.IsNil)
	txs, err := testDB.TransactionsByUser(user.ID, 2)
	c.Assert(err, qt.IsNil)
	c.Assert(txs, qt.HasLen, 2)
	// newest first
	c.Assert(txs[0].Description, qt.Equals, "third")
	c.Assert(txs[1].Description, qt.Equals, "second")
}
