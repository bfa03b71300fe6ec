package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Movie is a catalog entry. Removal from the catalog is a soft delete, so
// carts may still reference movies that are no longer purchasable.
type Movie struct {
	gorm.Model
	ID          uuid.UUID `gorm:"type:uuid;primary_key"`
	Title       string    `gorm:"not null"`
	Description string
	Year        int
	Price       decimal.Decimal `gorm:"type:numeric(10,2);not null"`
}

func (movie *Movie) BeforeCreate(tx *gorm.DB) (err error) {
	if movie.ID == uuid.Nil {
		movie.ID = uuid.New()
	}
	return
}
