// Package notifications defines the service interface used to notify users
// about account events: VIP membership activation, withdrawal confirmations
// and similar receipts. Implementations exist for SMTP mail and Twilio SMS.
package notifications

import "context"

// Notification is a single message for a user. Mail senders use the address,
// subject and both bodies; SMS senders use the number and the body only.
type Notification struct {
	ToName    string
	ToAddress string
	ToNumber  string
	Subject   string
	Body      string
	PlainBody string
}

// NotificationService is implemented by every notification channel. Init
// receives the channel specific configuration struct.
type NotificationService interface {
	Init(conf any) error
	SendNotification(context.Context, *Notification) error
}
