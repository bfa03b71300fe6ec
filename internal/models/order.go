package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderStatus string

const (
	OrderStatusPending  OrderStatus = "pending"
	OrderStatusPaid     OrderStatus = "paid"
	OrderStatusCanceled OrderStatus = "canceled"
)

// Order is a priced, immutable snapshot of a checkout attempt. TotalAmount
// and the per-item prices are frozen at creation time and never re-read
// from the catalog.
type Order struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key"`
	UserID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	User        *User           `gorm:"foreignKey:UserID"`
	Status      OrderStatus     `gorm:"type:varchar(16);not null;default:'pending';index"`
	TotalAmount decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	Items       []OrderItem     `gorm:"foreignKey:OrderID"`
	CreatedAt   time.Time       `gorm:"index"`
	UpdatedAt   time.Time
}

func (order *Order) BeforeCreate(tx *gorm.DB) (err error) {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	return
}

type OrderItem struct {
	ID           uuid.UUID       `gorm:"type:uuid;primary_key"`
	OrderID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	MovieID      uuid.UUID       `gorm:"type:uuid;not null"`
	Movie        *Movie          `gorm:"foreignKey:MovieID"`
	PriceAtOrder decimal.Decimal `gorm:"type:numeric(10,2);not null"`
}

func (item *OrderItem) BeforeCreate(tx *gorm.DB) (err error) {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	return
}
