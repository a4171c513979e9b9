package db

import (
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestCreateAndJoinMatch(t *testing.T) {
	defer func() { _ = testDB.Reset() }()
	c := qt.New(t)
	creator := testUser(c, "creator@email.test", 500)
	opponent := testUser(c, "opponent@email.test", 500)
	broke := testUser(c, "broke@email.test", 10)
	// the creator must hold the wager
	_, err := testDB.CreateMatch(broke.ID, "chess", 100)
	c.Assert(err, qt.Equals, ErrInsufficientTokens)
	match, err := testDB.CreateMatch(creator.ID, "chess", 100)
	c.Assert(err, qt.IsNil)
	c.Assert(match.Status, qt.Equals, MatchStatusOpen)
	c.Assert(match.Wager, qt.Equals, int64(100))
	// open matches are listed
	open, err := testDB.OpenMatches(0)
	c.Assert(err, qt.IsNil)
	c.Assert(open, qt.HasLen, 1)
	// the creator cannot join their own match
	_, err = testDB.JoinMatch(match.ID, creator.ID)
	c.Assert(err, qt.Equals, ErrInvalidData)
	// the opponent must hold the wager too
	_, err = testDB.JoinMatch(match.ID, broke.ID)
	c.Assert(err, qt.Equals, ErrInsufficientTokens)
	match, err = testDB.JoinMatch(match.ID, opponent.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(match.Status, qt.Equals, MatchStatusActive)
	c.Assert(match.OpponentID, qt.Equals, opponent.ID)
	// a second join must fail once the match is active
	third := testUser(c, "third@email.test", 500)
	_, err = testDB.JoinMatch(match.ID, third.ID)
	c.Assert(err, qt.Equals, ErrInvalidMatchTransition)
}

func TestSettleMatch(t *testing.T) {
	defer func() { _ = testDB.Reset() }()
	c := qt.New(t)
	creator := testUser(c, "creator@email.test", 500)
	opponent := testUser(c, "opponent@email.test", 500)
	match, err := testDB.CreateMatch(creator.ID, "tekken", 150)
	c.Assert(err, qt.IsNil)
	// settling before an opponent joins is not allowed
	_, err = testDB.SettleMatch(match.ID, creator.ID)
	c.Assert(err, qt.Equals, ErrInvalidMatchTransition)
	_, err = testDB.JoinMatch(match.ID, opponent.ID)
	c.Assert(err, qt.IsNil)
	// the winner must be a participant
	_, err = testDB.SettleMatch(match.ID, "somebody-else")
	c.Assert(err, qt.Equals, ErrInvalidData)
	match, err = testDB.SettleMatch(match.ID, opponent.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(match.Status, qt.Equals, MatchStatusSettled)
	c.Assert(match.WinnerID, qt.Equals, opponent.ID)
	// tokens moved from the loser to the winner
	winner, err := testDB.User(opponent.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(winner.TokenBalance, qt.Equals, int64(650))
	c.Assert(winner.Stats.Wins, qt.Equals, int64(1))
	c.Assert(winner.Stats.TokensWon, qt.Equals, int64(150))
	loser, err := testDB.User(creator.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(loser.TokenBalance, qt.Equals, int64(350))
	c.Assert(loser.Stats.Losses, qt.Equals, int64(1))
	// each participant gets a ledger entry
	winTxs, err := testDB.TransactionsByUser(opponent.ID, 0)
	c.Assert(err, qt.IsNil)
	c.Assert(winTxs, qt.HasLen, 1)
	c.Assert(winTxs[0].Type, qt.Equals, TxTypeMatchWin)
	c.Assert(winTxs[0].Amount, qt.Equals, int64(150))
	lossTxs, err := testDB.TransactionsByUser(creator.ID, 0)
	c.Assert(err, qt.IsNil)
	c.Assert(lossTxs, qt.HasLen, 1)
	c.Assert(lossTxs[0].Type, qt.Equals, TxTypeMatchLoss)
	c.Assert(lossTxs[0].Amount, qt.Equals, int64(-150))
	// a settled match cannot settle again
	_, err = testDB.SettleMatch(match.ID, opponent.ID)
	c.Assert(err, qt.Equals, ErrInvalidMatchTransition)
}

func TestCancelMatch(t *testing.T) {
	defer func() { _ = testDB.Reset() }()
	c := qt.New(t)
	creator := testUser(c, "creator@email.test", 500)
	opponent := testUser(c, "opponent@email.test", 500)
	match, err := testDB.CreateMatch(creator.ID, "chess", 100)
	c.Assert(err, qt.IsNil)
	// only the creator can cancel
	_, err = testDB.CancelMatch(match.ID, opponent.ID)
	c.Assert(err, qt.Equals, ErrNotParticipant)
	match, err = testDB.CancelMatch(match.ID, creator.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(match.Status, qt.Equals, MatchStatusCancelled)
	// a cancelled match cannot be joined
	_, err = testDB.JoinMatch(match.ID, opponent.ID)
	c.Assert(err, qt.Equals, ErrInvalidMatchTransition)
	// an active match cannot be cancelled
	active, err := testDB.CreateMatch(creator.ID, "chess", 100)
	c.Assert(err, qt.IsNil)
	_, err = testDB.JoinMatch(active.ID, opponent.ID)
	c.Assert(err, qt.IsNil)
	_, err = testDB.CancelMatch(active.ID, creator.ID)
	c.Assert(err, qt.Equals, ErrInvalidMatchTransition)
}
