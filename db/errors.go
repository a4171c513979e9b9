package db

import "fmt"

var (
	ErrNotFound           = fmt.Errorf("not found")
	ErrInvalidData        = fmt.Errorf("invalid data provided")
	ErrAlreadyExists      = fmt.Errorf("already exists")
	ErrInsufficientTokens = fmt.Errorf("insufficient token balance")
	// ErrInvalidMatchTransition is returned when a match status change is not
	// allowed from its current status.
	ErrInvalidMatchTransition = fmt.Errorf("invalid match status transition")
	ErrNotParticipant         = fmt.Errorf("user is not a match participant")
)
