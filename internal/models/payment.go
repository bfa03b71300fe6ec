package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PaymentStatus string

const (
	PaymentStatusSuccessful PaymentStatus = "successful"
	PaymentStatusCanceled   PaymentStatus = "canceled"
	PaymentStatusRefunded   PaymentStatus = "refunded"
)

// Payment records a completed external charge. It is only ever created by
// the provider webhook. The unique indexes on OrderID and ExternalPaymentID
// are what make replayed webhook deliveries harmless.
type Payment struct {
	ID                uuid.UUID       `gorm:"type:uuid;primary_key"`
	UserID            uuid.UUID       `gorm:"type:uuid;not null;index"`
	OrderID           uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex"`
	Order             *Order          `gorm:"foreignKey:OrderID"`
	Status            PaymentStatus   `gorm:"type:varchar(16);not null"`
	Amount            decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	ExternalPaymentID string          `gorm:"not null;uniqueIndex"`
	PaymentIntent     string          `gorm:"index"`
	Items             []PaymentItem   `gorm:"foreignKey:PaymentID"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (payment *Payment) BeforeCreate(tx *gorm.DB) (err error) {
	if payment.ID == uuid.Nil {
		payment.ID = uuid.New()
	}
	return
}

// PaymentItem mirrors an OrderItem at payment time, as an append-only audit
// trail independent of later order mutation.
type PaymentItem struct {
	ID             uuid.UUID       `gorm:"type:uuid;primary_key"`
	PaymentID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	OrderItemID    uuid.UUID       `gorm:"type:uuid;not null"`
	PriceAtPayment decimal.Decimal `gorm:"type:numeric(10,2);not null"`
}

func (item *PaymentItem) BeforeCreate(tx *gorm.DB) (err error) {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	return
}
