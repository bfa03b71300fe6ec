package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Cart holds a user's not-yet-purchased selection. One cart per user; the
// row survives checkout, only its items are cleared after payment.
type Cart struct {
	ID        uuid.UUID  `gorm:"type:uuid;primary_key"`
	UserID    uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex"`
	User      *User      `gorm:"foreignKey:UserID"`
	Items     []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (cart *Cart) BeforeCreate(tx *gorm.DB) (err error) {
	if cart.ID == uuid.Nil {
		cart.ID = uuid.New()
	}
	return
}

type CartItem struct {
	ID      uuid.UUID `gorm:"type:uuid;primary_key"`
	CartID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_cart_movie"`
	MovieID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_cart_movie"`
	Movie   *Movie    `gorm:"foreignKey:MovieID"`
	AddedAt time.Time `gorm:"not null"`
}

func (item *CartItem) BeforeCreate(tx *gorm.DB) (err error) {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	if item.AddedAt.IsZero() {
		item.AddedAt = time.Now().UTC()
	}
	return
}
