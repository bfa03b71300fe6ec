package store

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/veralain/cinemarket/internal/models"
)

// HasUserPurchased reports whether the movie appears in any of the user's
// paid orders. Used at cart-add time to block repurchase.
func HasUserPurchased(db *gorm.DB, userID, movieID uuid.UUID) (bool, error) {
	var count int64
	err := db.Model(&models.OrderItem{}).
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.user_id = ? AND orders.status = ? AND order_items.movie_id = ?",
			userID, models.OrderStatusPaid, movieID).
		Count(&count).Error
	return count > 0, err
}

// GetOrCreateCart returns the user's cart, creating an empty one on first
// use. A lost creation race against a concurrent request falls back to the
// row the other request inserted.
func GetOrCreateCart(db *gorm.DB, userID uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	err := db.Where("user_id = ?", userID).First(&cart).Error
	if err == nil {
		return &cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	cart = models.Cart{UserID: userID}
	if err := db.Create(&cart).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			if err := db.Where("user_id = ?", userID).First(&cart).Error; err != nil {
				return nil, err
			}
			return &cart, nil
		}
		return nil, err
	}
	return &cart, nil
}

func AddMovieToCart(db *gorm.DB, userID, movieID uuid.UUID) error {
	purchased, err := HasUserPurchased(db, userID, movieID)
	if err != nil {
		return err
	}
	if purchased {
		return ErrMovieAlreadyPurchased
	}

	cart, err := GetOrCreateCart(db, userID)
	if err != nil {
		return err
	}

	var existing models.CartItem
	err = db.Where("cart_id = ? AND movie_id = ?", cart.ID, movieID).First(&existing).Error
	if err == nil {
		return ErrMovieAlreadyInCart
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	item := models.CartItem{CartID: cart.ID, MovieID: movieID}
	if err := db.Create(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrMovieAlreadyInCart
		}
		return err
	}
	return nil
}

func RemoveMovieFromCart(db *gorm.DB, userID, movieID uuid.UUID) error {
	var cart models.Cart
	if err := db.Where("user_id = ?", userID).First(&cart).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCartNotFound
		}
		return err
	}

	var item models.CartItem
	err := db.Where("cart_id = ? AND movie_id = ?", cart.ID, movieID).First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMovieNotInCart
		}
		return err
	}
	return db.Delete(&item).Error
}

// ClearCart removes every item from the user's cart. The cart row itself is
// kept for future purchases.
func ClearCart(db *gorm.DB, userID uuid.UUID) error {
	var cart models.Cart
	if err := db.Where("user_id = ?", userID).First(&cart).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCartNotFound
		}
		return err
	}

	var count int64
	if err := db.Model(&models.CartItem{}).Where("cart_id = ?", cart.ID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrCartEmpty
	}
	return db.Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error
}

func ListCartMovies(db *gorm.DB, userID uuid.UUID) ([]models.Movie, error) {
	var cart models.Cart
	if err := db.Where("user_id = ?", userID).First(&cart).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCartNotFound
		}
		return nil, err
	}

	var movies []models.Movie
	err := db.Model(&models.Movie{}).
		Joins("JOIN cart_items ON cart_items.movie_id = movies.id").
		Where("cart_items.cart_id = ?", cart.ID).
		Find(&movies).Error
	if err != nil {
		return nil, err
	}
	if len(movies) == 0 {
		return nil, ErrCartEmpty
	}
	return movies, nil
}
