// Package queue defines the payment-confirmation payload published to the
// message broker and the background consumer that records delivery status.
package queue

import "github.com/google/uuid"

// PaymentConfirmedEvent is published after a checkout-completed webhook has
// been committed. It carries enough for downstream delivery (email, push)
// without querying the primary database.
type PaymentConfirmedEvent struct {
	PaymentID   uuid.UUID `json:"payment_id"`
	OrderID     uuid.UUID `json:"order_id"`
	UserID      uuid.UUID `json:"user_id"`
	Email       string    `json:"email"`
	Amount      string    `json:"amount"`
	ConfirmedAt string    `json:"confirmed_at"`
}
