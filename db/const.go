package db

const (
	// transaction types
	TxTypePurchase   TransactionType = "purchase"
	TxTypeWithdrawal TransactionType = "withdrawal"
	TxTypeMatchWin   TransactionType = "match_win"
	TxTypeMatchLoss  TransactionType = "match_loss"
	TxTypeTip        TransactionType = "tip"

	// match states
	MatchStatusOpen      MatchStatus = "open"
	MatchStatusActive    MatchStatus = "active"
	MatchStatusSettled   MatchStatus = "settled"
	MatchStatusCancelled MatchStatus = "cancelled"
)

// validTransactionTypes is a map that contains the valid transaction types
var validTransactionTypes = map[TransactionType]bool{
	TxTypePurchase:   true,
	TxTypeWithdrawal: true,
	TxTypeMatchWin:   true,
	TxTypeMatchLoss:  true,
	TxTypeTip:        true,
}

// IsValidTransactionType function checks if the transaction type is valid
func IsValidTransactionType(t TransactionType) bool {
	return validTransactionTypes[t]
}
