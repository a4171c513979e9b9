package db

import (
	"time"
)

// User represents a platform account. The token balance is mutated only
// through the atomic increment helpers, never by read-modify-write.
type User struct {
	ID                   string     `json:"id" bson:"_id"`
	Email                string     `json:"email" bson:"email"`
	Username             string     `json:"username" bson:"username"`
	Phone                string     `json:"phone,omitempty" bson:"phone,omitempty"`
	Password             string     `json:"-" bson:"password"`
	TokenBalance         int64      `json:"tokenBalance" bson:"tokenBalance"`
	VIP                  bool       `json:"vip" bson:"vip"`
	VIPExpiry            *time.Time `json:"vipExpiry,omitempty" bson:"vipExpiry,omitempty"`
	StripeCustomerID     string     `json:"-" bson:"stripeCustomerID,omitempty"`
	StripeSubscriptionID string     `json:"-" bson:"stripeSubscriptionID,omitempty"`
	Stats                UserStats  `json:"stats" bson:"stats"`
	CreatedAt            time.Time  `json:"createdAt" bson:"createdAt"`
}

// UserStats holds the aggregate match counters shown on the leaderboard.
type UserStats struct {
	Wins      int64 `json:"wins" bson:"wins"`
	Losses    int64 `json:"losses" bson:"losses"`
	TokensWon int64 `json:"tokensWon" bson:"tokensWon"`
}

type TransactionType string

// Transaction is an append-only ledger entry. Amount is signed in token
// units; the sum of all amounts for a user equals the user's balance.
type Transaction struct {
	ID          string          `json:"id" bson:"_id"`
	UserID      string          `json:"userId" bson:"userID"`
	Type        TransactionType `json:"type" bson:"type"`
	Amount      int64           `json:"amount" bson:"amount"`
	Description string          `json:"description" bson:"description"`
	PaymentID   string          `json:"paymentId,omitempty" bson:"paymentID,omitempty"`
	CreatedAt   time.Time       `json:"createdAt" bson:"createdAt"`
}

type MatchStatus string

// Match represents a wager between two users. The stake is settled at
// resolution time: the loser is debited and the winner credited in a
// single multi-document transaction.
type Match struct {
	ID         string      `json:"id" bson:"_id"`
	Game       string      `json:"game" bson:"game"`
	CreatorID  string      `json:"creatorId" bson:"creatorID"`
	OpponentID string      `json:"opponentId,omitempty" bson:"opponentID,omitempty"`
	Wager      int64       `json:"wager" bson:"wager"`
	Status     MatchStatus `json:"status" bson:"status"`
	WinnerID   string      `json:"winnerId,omitempty" bson:"winnerID,omitempty"`
	CreatedAt  time.Time   `json:"createdAt" bson:"createdAt"`
	UpdatedAt  time.Time   `json:"updatedAt" bson:"updatedAt"`
}
