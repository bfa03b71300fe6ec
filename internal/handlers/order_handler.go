package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/veralain/cinemarket/internal/gateway"
	"github.com/veralain/cinemarket/internal/helpers"
	"github.com/veralain/cinemarket/internal/middleware"
	"github.com/veralain/cinemarket/internal/models"
	"github.com/veralain/cinemarket/internal/store"
)

type OrderItemResponse struct {
	ID           uuid.UUID       `json:"id"`
	MovieID      uuid.UUID       `json:"movie_id"`
	PriceAtOrder decimal.Decimal `json:"price_at_order"`
}

type OrderResponse struct {
	ID          uuid.UUID           `json:"id"`
	Status      models.OrderStatus  `json:"status"`
	TotalAmount decimal.Decimal     `json:"total_amount"`
	CreatedAt   time.Time           `json:"created_at"`
	Items       []OrderItemResponse `json:"items"`
	PaymentURL  string              `json:"payment_url,omitempty"`
}

func orderResponse(order *models.Order, paymentURL string) OrderResponse {
	items := make([]OrderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, OrderItemResponse{
			ID:           item.ID,
			MovieID:      item.MovieID,
			PriceAtOrder: item.PriceAtOrder,
		})
	}
	return OrderResponse{
		ID:          order.ID,
		Status:      order.Status,
		TotalAmount: order.TotalAmount,
		CreatedAt:   order.CreatedAt,
		Items:       items,
		PaymentURL:  paymentURL,
	}
}

// PlaceOrder turns the caller's cart into a pending order and hands back
// the provider's checkout URL. A provider failure leaves the order pending
// with no payment record; the overlap check constrains re-placing.
func PlaceOrder(c *gin.Context) {
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

	gw := middleware.GetPaymentGateway(c)
	if gw == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Payment gateway not configured.")
		return
	}

	order, err := store.CreateOrder(gormDB, userUUID)
	if err != nil {
		var unavailable *store.MovieUnavailableError
		switch {
		case errors.Is(err, store.ErrCartEmpty), errors.Is(err, store.ErrOrderAlreadyPending):
			helpers.RespondWithError(c, http.StatusBadRequest, err.Error())
		case errors.As(err, &unavailable):
			helpers.RespondWithError(c, http.StatusBadRequest, unavailable.Error())
		default:
			helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to place order.")
		}
		return
	}

	url, err := gw.CreateCheckoutSession(userUUID, order.ID, order.TotalAmount)
	if err != nil {
		var sessionErr *gateway.SessionError
		if errors.As(err, &sessionErr) {
			helpers.RespondWithError(c, http.StatusBadRequest, sessionErr.Error())
		} else {
			helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to create checkout session.")
		}
		return
	}

	c.JSON(http.StatusCreated, orderResponse(order, url))
}

func ListMyOrders(c *gin.Context) {
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

	orders, err := store.ListOrders(gormDB, store.OrderFilter{UserID: &userUUID})
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to list orders.")
		return
	}

	responses := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		responses = append(responses, orderResponse(&orders[i], ""))
	}
	c.JSON(http.StatusOK, gin.H{"orders": responses})
}

// ListOrders is the moderator view with optional user/status/date filters.
func ListOrders(c *gin.Context) {
	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	var filter store.OrderFilter

	userID, err := helpers.ParseUUIDQuery(c, "user_id")
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	filter.UserID = userID

	if raw := c.Query("status"); raw != "" {
		status := models.OrderStatus(raw)
		switch status {
		case models.OrderStatusPending, models.OrderStatusPaid, models.OrderStatusCanceled:
			filter.Status = &status
		default:
			helpers.RespondWithError(c, http.StatusBadRequest, "Invalid status.")
			return
		}
	}

	if filter.DateFrom, err = helpers.ParseTimeQuery(c, "date_from"); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	if filter.DateTo, err = helpers.ParseTimeQuery(c, "date_to"); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	orders, err := store.ListOrders(gormDB, filter)
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to list orders.")
		return
	}

	responses := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		responses = append(responses, orderResponse(&orders[i], ""))
	}
	c.JSON(http.StatusOK, gin.H{"orders": responses})
}

func CancelOrder(c *gin.Context) {
	orderID, err := helpers.ParseUUIDParam(c, "id")
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid order ID.")
		return
	}

	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	if err := store.CancelOrder(gormDB, orderID); err != nil {
		switch {
		case errors.Is(err, store.ErrOrderNotFound), errors.Is(err, store.ErrCancellationNotAvailable):
			helpers.RespondWithError(c, http.StatusBadRequest, err.Error())
		default:
			helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to cancel order.")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Order successfully canceled."})
}
