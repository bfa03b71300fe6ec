package store

import (
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/veralain/cinemarket/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "store.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}

	err = db.AutoMigrate(
		&models.Role{}, &models.User{}, &models.Movie{},
		&models.Cart{}, &models.CartItem{},
		&models.Order{}, &models.OrderItem{},
		&models.Payment{}, &models.PaymentItem{},
	)
	if err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	return db
}

func createTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()

	user := models.User{
		Email:    uuid.NewString() + "@example.com",
		Password: "not-a-real-hash",
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create test user: %v", err)
	}
	return &user
}

func createTestMovie(t *testing.T, db *gorm.DB, title, price string) *models.Movie {
	t.Helper()

	movie := models.Movie{
		Title: title,
		Year:  2021,
		Price: decimal.RequireFromString(price),
	}
	if err := db.Create(&movie).Error; err != nil {
		t.Fatalf("create test movie: %v", err)
	}
	return &movie
}

func addToCart(t *testing.T, db *gorm.DB, userID, movieID uuid.UUID) {
	t.Helper()

	if err := AddMovieToCart(db, userID, movieID); err != nil {
		t.Fatalf("add movie to cart: %v", err)
	}
}

func placeTestOrder(t *testing.T, db *gorm.DB, userID uuid.UUID) *models.Order {
	t.Helper()

	order, err := CreateOrder(db, userID)
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	return order
}

func countRows(t *testing.T, db *gorm.DB, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()

	var count int64
	if err := db.Model(model).Where(query, args...).Count(&count).Error; err != nil {
		t.Fatalf("count rows: %v", err)
	}
	return count
}
