package api

import "time"

const (
	jwtExpiration = 360 * time.Hour // 15 days
	passwordSalt  = "arena365"      // salt for password hashing

	// minPasswordLength is the minimum accepted password length on registration
	minPasswordLength = 8
	// defaultLeaderboardSize is the number of entries returned when no limit
	// is requested
	defaultLeaderboardSize = 25
	// maxLeaderboardSize caps the requested leaderboard size
	maxLeaderboardSize = 100
	// maxWebhookBodyBytes caps the size of an incoming webhook payload
	maxWebhookBodyBytes = int64(65536)
)
