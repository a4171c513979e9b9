package api

const (
	// auth routes

	// POST /auth/refresh to refresh the JWT token
	authRefreshTokenEndpoint = "/auth/refresh"
	// POST /auth/login to login and get a JWT token
	authLoginEndpoint = "/auth/login"

	// user routes

	// POST /users to register a new user
	usersEndpoint = "/users"
	// GET /users/me to get the current user information
	usersMeEndpoint = "/users/me"
	// GET /users/me/transactions to get the current user token ledger
	usersMeTransactionsEndpoint = "/users/me/transactions"

	// payment routes

	// POST /payments/intent to create a token purchase payment intent
	paymentsIntentEndpoint = "/payments/intent"
	// POST /payments/subscription to create a VIP subscription
	paymentsSubscriptionEndpoint = "/payments/subscription"
	// POST /payments/webhook to receive gateway events
	paymentsWebhookEndpoint = "/payments/webhook"

	// token routes

	// POST /tokens/tip to tip tokens to another user
	tokensTipEndpoint = "/tokens/tip"
	// POST /tokens/withdraw to withdraw tokens
	tokensWithdrawEndpoint = "/tokens/withdraw"

	// match routes

	// POST /matches to create a wager match, GET to list open matches
	matchesEndpoint = "/matches"
	// GET /matches/{matchID} to get a match
	matchEndpoint = "/matches/{matchID}"
	// POST /matches/{matchID}/join to join an open match
	matchJoinEndpoint = "/matches/{matchID}/join"
	// POST /matches/{matchID}/settle to declare the winner
	matchSettleEndpoint = "/matches/{matchID}/settle"
	// POST /matches/{matchID}/cancel to cancel an open match
	matchCancelEndpoint = "/matches/{matchID}/cancel"

	// leaderboard routes

	// GET /leaderboard to get the top users by tokens won
	leaderboardEndpoint = "/leaderboard"
)
