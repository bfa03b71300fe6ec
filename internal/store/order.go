package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/veralain/cinemarket/internal/models"
)

type OrderFilter struct {
	UserID   *uuid.UUID
	Status   *models.OrderStatus
	DateFrom *time.Time
	DateTo   *time.Time
}

// CreateOrder converts the user's cart into a pending order with prices
// frozen at this moment. The whole sequence runs as one serializable
// transaction so the pending-overlap check and the insert cannot be split
// by a concurrent checkout: under Postgres one of two racing requests
// aborts instead of both creating pending orders for the same movies.
//
// The cart is NOT cleared here and the payment provider is NOT contacted
// here; both happen elsewhere (cart clearing only on payment completion).
func CreateOrder(db *gorm.DB, userID uuid.UUID) (*models.Order, error) {
	var order *models.Order
	err := db.Transaction(func(tx *gorm.DB) error {
		var cart models.Cart
		if err := tx.Preload("Items").Where("user_id = ?", userID).First(&cart).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCartEmpty
			}
			return err
		}
		if len(cart.Items) == 0 {
			return ErrCartEmpty
		}

		movieIDs := make([]uuid.UUID, 0, len(cart.Items))
		for _, item := range cart.Items {
			movieIDs = append(movieIDs, item.MovieID)
		}

		var movies []models.Movie
		if err := tx.Where("id IN ?", movieIDs).Find(&movies).Error; err != nil {
			return err
		}
		available := make(map[uuid.UUID]models.Movie, len(movies))
		for _, movie := range movies {
			available[movie.ID] = movie
		}

		var missing []uuid.UUID
		for _, id := range movieIDs {
			if _, ok := available[id]; !ok {
				missing = append(missing, id)
			}
		}
		if len(missing) > 0 {
			return &MovieUnavailableError{MovieIDs: missing}
		}

		var pending int64
		err := tx.Model(&models.OrderItem{}).
			Joins("JOIN orders ON orders.id = order_items.order_id").
			Where("orders.user_id = ? AND orders.status = ? AND order_items.movie_id IN ?",
				userID, models.OrderStatusPending, movieIDs).
			Count(&pending).Error
		if err != nil {
			return err
		}
		if pending > 0 {
			return ErrOrderAlreadyPending
		}

		total := decimal.Zero
		for _, id := range movieIDs {
			total = total.Add(available[id].Price)
		}

		created := models.Order{
			UserID:      userID,
			Status:      models.OrderStatusPending,
			TotalAmount: total,
		}
		if err := tx.Create(&created).Error; err != nil {
			return err
		}
		for _, id := range movieIDs {
			item := models.OrderItem{
				OrderID:      created.ID,
				MovieID:      id,
				PriceAtOrder: available[id].Price,
			}
			if err := tx.Create(&item).Error; err != nil {
				return err
			}
			created.Items = append(created.Items, item)
		}

		order = &created
		return nil
	}, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// CancelOrder sets a pending order to canceled. Any payment row referencing
// the order blocks cancellation regardless of the payment's own status;
// once a charge exists the refund path is the only way back.
func CancelOrder(db *gorm.DB, orderID uuid.UUID) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.Where("id = ?", orderID).First(&order).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return err
		}

		var payments int64
		if err := tx.Model(&models.Payment{}).Where("order_id = ?", order.ID).Count(&payments).Error; err != nil {
			return err
		}
		if payments > 0 {
			return ErrCancellationNotAvailable
		}

		return tx.Model(&order).Update("status", models.OrderStatusCanceled).Error
	})
}

// ListOrders returns orders newest first. Unset filter fields are not
// constrained.
func ListOrders(db *gorm.DB, filter OrderFilter) ([]models.Order, error) {
	query := db.Model(&models.Order{}).Preload("Items")

	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.DateFrom != nil {
		query = query.Where("created_at >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		query = query.Where("created_at <= ?", *filter.DateTo)
	}

	var orders []models.Order
	if err := query.Order("created_at DESC").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}
