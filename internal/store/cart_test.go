package store

import (
	"errors"
	"testing"

	"github.com/veralain/cinemarket/internal/models"
)

func TestGetOrCreateCart(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db)

	cart, err := GetOrCreateCart(db, user.ID)
	if err != nil {
		t.Fatalf("first call: %v", err)
	}
	if cart.UserID != user.ID {
		t.Fatalf("cart belongs to %s, want %s", cart.UserID, user.ID)
	}

	again, err := GetOrCreateCart(db, user.ID)
	if err != nil {
		t.Fatalf("second call: %v", err)
	}
	if again.ID != cart.ID {
		t.Fatalf("second call created a new cart: %s vs %s", again.ID, cart.ID)
	}
	if n := countRows(t, db, &models.Cart{}, "user_id = ?", user.ID); n != 1 {
		t.Fatalf("expected exactly one cart, got %d", n)
	}
}

func TestAddMovieToCart(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db)
	movie := createTestMovie(t, db, "Heat", "9.99")

	if err := AddMovieToCart(db, user.ID, movie.ID); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := AddMovieToCart(db, user.ID, movie.ID); !errors.Is(err, ErrMovieAlreadyInCart) {
		t.Fatalf("duplicate add: got %v, want ErrMovieAlreadyInCart", err)
	}
}

func TestAddMovieToCartAlreadyPurchased(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db)
	movie := createTestMovie(t, db, "Ran", "12.50")

	addToCart(t, db, user.ID, movie.ID)
	order := placeTestOrder(t, db, user.ID)
	if err := db.Model(order).Update("status", models.OrderStatusPaid).Error; err != nil {
		t.Fatalf("mark order paid: %v", err)
	}
	if err := ClearCart(db, user.ID); err != nil {
		t.Fatalf("clear cart: %v", err)
	}

	if err := AddMovieToCart(db, user.ID, movie.ID); !errors.Is(err, ErrMovieAlreadyPurchased) {
		t.Fatalf("got %v, want ErrMovieAlreadyPurchased", err)
	}
}

func TestRemoveMovieFromCart(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db)
	movie := createTestMovie(t, db, "Alien", "7.00")

	if err := RemoveMovieFromCart(db, user.ID, movie.ID); !errors.Is(err, ErrCartNotFound) {
		t.Fatalf("no cart: got %v, want ErrCartNotFound", err)
	}

	addToCart(t, db, user.ID, movie.ID)

	other := createTestMovie(t, db, "Aliens", "7.50")
	if err := RemoveMovieFromCart(db, user.ID, other.ID); !errors.Is(err, ErrMovieNotInCart) {
		t.Fatalf("absent movie: got %v, want ErrMovieNotInCart", err)
	}

	if err := RemoveMovieFromCart(db, user.ID, movie.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if n := countRows(t, db, &models.CartItem{}, "movie_id = ?", movie.ID); n != 0 {
		t.Fatalf("item still present after removal")
	}
}

func TestClearCart(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db)

	if err := ClearCart(db, user.ID); !errors.Is(err, ErrCartNotFound) {
		t.Fatalf("no cart: got %v, want ErrCartNotFound", err)
	}

	cart, err := GetOrCreateCart(db, user.ID)
	if err != nil {
		t.Fatalf("create cart: %v", err)
	}
	if err := ClearCart(db, user.ID); !errors.Is(err, ErrCartEmpty) {
		t.Fatalf("empty cart: got %v, want ErrCartEmpty", err)
	}

	movie := createTestMovie(t, db, "Stalker", "6.00")
	addToCart(t, db, user.ID, movie.ID)

	if err := ClearCart(db, user.ID); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if n := countRows(t, db, &models.CartItem{}, "cart_id = ?", cart.ID); n != 0 {
		t.Fatalf("cart items remain after clear")
	}
	// The cart row itself survives.
	if n := countRows(t, db, &models.Cart{}, "id = ?", cart.ID); n != 1 {
		t.Fatalf("cart row was deleted")
	}
}

func TestListCartMovies(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db)

	if _, err := ListCartMovies(db, user.ID); !errors.Is(err, ErrCartNotFound) {
		t.Fatalf("no cart: got %v, want ErrCartNotFound", err)
	}

	if _, err := GetOrCreateCart(db, user.ID); err != nil {
		t.Fatalf("create cart: %v", err)
	}
	if _, err := ListCartMovies(db, user.ID); !errors.Is(err, ErrCartEmpty) {
		t.Fatalf("empty cart: got %v, want ErrCartEmpty", err)
	}

	first := createTestMovie(t, db, "Solaris", "8.00")
	second := createTestMovie(t, db, "Mirror", "8.50")
	addToCart(t, db, user.ID, first.ID)
	addToCart(t, db, user.ID, second.ID)

	movies, err := ListCartMovies(db, user.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(movies) != 2 {
		t.Fatalf("got %d movies, want 2", len(movies))
	}
}

func TestHasUserPurchased(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db)
	movie := createTestMovie(t, db, "Yojimbo", "5.00")

	addToCart(t, db, user.ID, movie.ID)
	order := placeTestOrder(t, db, user.ID)

	// Pending orders don't count as ownership.
	owned, err := HasUserPurchased(db, user.ID, movie.ID)
	if err != nil {
		t.Fatalf("check pending: %v", err)
	}
	if owned {
		t.Fatal("pending order reported as purchased")
	}

	if err := db.Model(order).Update("status", models.OrderStatusPaid).Error; err != nil {
		t.Fatalf("mark paid: %v", err)
	}
	owned, err = HasUserPurchased(db, user.ID, movie.ID)
	if err != nil {
		t.Fatalf("check paid: %v", err)
	}
	if !owned {
		t.Fatal("paid order not reported as purchased")
	}

	// Another user is unaffected.
	stranger := createTestUser(t, db)
	owned, err = HasUserPurchased(db, stranger.ID, movie.ID)
	if err != nil {
		t.Fatalf("check stranger: %v", err)
	}
	if owned {
		t.Fatal("purchase leaked across users")
	}
}
