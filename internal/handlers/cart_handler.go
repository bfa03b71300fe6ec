package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/veralain/cinemarket/internal/helpers"
	"github.com/veralain/cinemarket/internal/store"
)

func AddMovieToCart(c *gin.Context) {
	movieID, err := helpers.ParseUUIDParam(c, "movieId")
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid movie ID.")
		return
	}

	userID, exists := c.Get("user_id")
	if !exists {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User ID not found in token.")
		return
	}
	userUUID, ok := userID.(uuid.UUID)
	if !ok {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Invalid user ID type.")
		return
	}

	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	if err := store.AddMovieToCart(gormDB, userUUID, movieID); err != nil {
		switch {
		case errors.Is(err, store.ErrMovieAlreadyPurchased), errors.Is(err, store.ErrMovieAlreadyInCart):
			helpers.RespondWithError(c, http.StatusBadRequest, err.Error())
		default:
			helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to add movie to cart.")
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Movie added to cart."})
}

func RemoveMovieFromCart(c *gin.Context) {
	movieID, err := helpers.ParseUUIDParam(c, "movieId")
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid movie ID.")
		return
	}

	userID, exists := c.Get("user_id")
	if !exists {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User ID not found in token.")
		return
	}
	userUUID, ok := userID.(uuid.UUID)
	if !ok {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Invalid user ID type.")
		return
	}

	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	if err := store.RemoveMovieFromCart(gormDB, userUUID, movieID); err != nil {
		switch {
		case errors.Is(err, store.ErrCartNotFound), errors.Is(err, store.ErrMovieNotInCart):
			helpers.RespondWithError(c, http.StatusBadRequest, err.Error())
		default:
			helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to remove movie from cart.")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Movie removed from cart."})
}

func ClearCart(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User ID not found in token.")
		return
	}
	userUUID, ok := userID.(uuid.UUID)
	if !ok {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Invalid user ID type.")
		return
	}

	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	if err := store.ClearCart(gormDB, userUUID); err != nil {
		switch {
		case errors.Is(err, store.ErrCartNotFound), errors.Is(err, store.ErrCartEmpty):
			helpers.RespondWithError(c, http.StatusBadRequest, err.Error())
		default:
			helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to clear cart.")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Cart cleared."})
}

func ListCart(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User ID not found in token.")
		return
	}
	userUUID, ok := userID.(uuid.UUID)
	if !ok {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Invalid user ID type.")
		return
	}

	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	movies, err := store.ListCartMovies(gormDB, userUUID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrCartNotFound), errors.Is(err, store.ErrCartEmpty):
			helpers.RespondWithError(c, http.StatusBadRequest, err.Error())
		default:
			helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to list cart.")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"movies": movies})
}
