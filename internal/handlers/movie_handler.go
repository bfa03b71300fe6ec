package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/veralain/cinemarket/internal/helpers"
	"github.com/veralain/cinemarket/internal/models"
)

type MovieRequest struct {
	Title       string          `json:"title" binding:"required"`
	Description string          `json:"description"`
	Year        int             `json:"year" binding:"required"`
	Price       decimal.Decimal `json:"price" binding:"required"`
}

func ListMovies(c *gin.Context) {
	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	var movies []models.Movie
	if err := gormDB.Order("title").Find(&movies).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to list movies.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"movies": movies})
}

func GetMovie(c *gin.Context) {
	movieID, err := helpers.ParseUUIDParam(c, "id")
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid movie ID.")
		return
	}

	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	var movie models.Movie
	if err := gormDB.Where("id = ?", movieID).First(&movie).Error; err != nil {
		helpers.RespondWithError(c, http.StatusNotFound, "Movie not found.")
		return
	}
	c.JSON(http.StatusOK, movie)
}

func CreateMovie(c *gin.Context) {
	var req MovieRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
		return
	}

	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	movie := models.Movie{
		ID:          uuid.New(),
		Title:       req.Title,
		Description: req.Description,
		Year:        req.Year,
		Price:       req.Price,
	}
	if err := gormDB.Create(&movie).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to create movie.")
		return
	}
	c.JSON(http.StatusCreated, movie)
}

// DeleteMovie soft-deletes a catalog entry. Carts referencing it will fail
// checkout with a movie-unavailable error until the item is removed.
func DeleteMovie(c *gin.Context) {
	movieID, err := helpers.ParseUUIDParam(c, "id")
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid movie ID.")
		return
	}

	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	var movie models.Movie
	if err := gormDB.Where("id = ?", movieID).First(&movie).Error; err != nil {
		helpers.RespondWithError(c, http.StatusNotFound, "Movie not found.")
		return
	}
	if err := gormDB.Delete(&movie).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to delete movie.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Movie deleted successfully."})
}
