package api

import (
	"time"

	"github.com/tokenarena/arena-backend/db"
)

// UserInfo is the struct that represents a user in the API. The password is
// only accepted on registration and login, never returned.
type UserInfo struct {
	ID           string       `json:"id,omitempty"`
	Email        string       `json:"email,omitempty"`
	Username     string       `json:"username,omitempty"`
	Phone        string       `json:"phone,omitempty"`
	Password     string       `json:"password,omitempty"`
	TokenBalance int64        `json:"tokenBalance"`
	VIP          bool         `json:"vip"`
	VIPExpiry    *time.Time   `json:"vipExpiry,omitempty"`
	Stats        db.UserStats `json:"stats"`
}

// LoginResponse is the struct that represents the response of the login,
// register and refresh endpoints.
type LoginResponse struct {
	Token    string    `json:"token"`
	Expirity time.Time `json:"expirity"`
}

// PaymentIntentRequest is the request to create a token purchase.
type PaymentIntentRequest struct {
	// Amount is the charge amount in minor currency units (cents).
	Amount      int64  `json:"amount"`
	PackageID   string `json:"packageId,omitempty"`
	PackageName string `json:"packageName,omitempty"`
}

// PaymentIntentResponse carries the secret the frontend needs to confirm the
// payment, plus the tokens the purchase will grant.
type PaymentIntentResponse struct {
	PaymentIntentID string `json:"paymentIntentId"`
	ClientSecret    string `json:"clientSecret"`
	Amount          int64  `json:"amount"`
	Tokens          int64  `json:"tokens"`
}

// SubscriptionRequest is the request to create a VIP subscription.
type SubscriptionRequest struct {
	PaymentMethodID string `json:"paymentMethodId,omitempty"`
}

// SubscriptionResponse carries the created subscription and, when the first
// payment is pending, the intent secret to confirm it.
type SubscriptionResponse struct {
	SubscriptionID string `json:"subscriptionId"`
	Status         string `json:"status"`
	ClientSecret   string `json:"clientSecret,omitempty"`
}

// TransactionList is the ledger of a user in the API.
type TransactionList struct {
	Transactions []*TransactionInfo `json:"transactions"`
}

// TransactionInfo is a single ledger entry in the API.
type TransactionInfo struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	Amount      int64     `json:"amount"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// TipRequest is the request to tip tokens to another user.
type TipRequest struct {
	ToUserID string `json:"toUserId"`
	Amount   int64  `json:"amount"`
	Message  string `json:"message,omitempty"`
}

// WithdrawRequest is the request to withdraw tokens.
type WithdrawRequest struct {
	Amount int64 `json:"amount"`
}

// BalanceResponse is the token balance of a user after an operation.
type BalanceResponse struct {
	TokenBalance int64 `json:"tokenBalance"`
}

// MatchRequest is the request to create a wager match.
type MatchRequest struct {
	Game  string `json:"game"`
	Wager int64  `json:"wager"`
}

// MatchJoinOrCancel operations carry no body, the match comes from the URL.

// MatchSettleRequest is the request to declare the winner of a match.
type MatchSettleRequest struct {
	WinnerID string `json:"winnerId"`
}

// MatchInfo is the struct that represents a match in the API.
type MatchInfo struct {
	ID         string    `json:"id"`
	Game       string    `json:"game"`
	CreatorID  string    `json:"creatorId"`
	OpponentID string    `json:"opponentId,omitempty"`
	Wager      int64     `json:"wager"`
	Status     string    `json:"status"`
	WinnerID   string    `json:"winnerId,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// MatchList is a list of matches in the API.
type MatchList struct {
	Matches []*MatchInfo `json:"matches"`
}

// LeaderboardEntry is a single row of the leaderboard.
type LeaderboardEntry struct {
	Rank      int    `json:"rank"`
	UserID    string `json:"userId"`
	Username  string `json:"username"`
	VIP       bool   `json:"vip"`
	Wins      int64  `json:"wins"`
	Losses    int64  `json:"losses"`
	TokensWon int64  `json:"tokensWon"`
}

// LeaderboardResponse is the leaderboard in the API.
type LeaderboardResponse struct {
	Entries []*LeaderboardEntry `json:"entries"`
}

// userInfoFromDB converts a database user into its API representation.
func userInfoFromDB(user *db.User) *UserInfo {
	return &UserInfo{
		ID:           user.ID,
		Email:        user.Email,
		Username:     user.Username,
		Phone:        user.Phone,
		TokenBalance: user.TokenBalance,
		VIP:          user.VIP,
		VIPExpiry:    user.VIPExpiry,
		Stats:        user.Stats,
	}
}

// matchInfoFromDB converts a database match into its API representation.
func matchInfoFromDB(match *db.Match) *MatchInfo {
	return &MatchInfo{
		ID:         match.ID,
		Game:       match.Game,
		CreatorID:  match.CreatorID,
		OpponentID: match.OpponentID,
		Wager:      match.Wager,
		Status:     string(match.Status),
		WinnerID:   match.WinnerID,
		CreatedAt:  match.CreatedAt,
	}
}
