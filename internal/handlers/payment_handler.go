package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/veralain/cinemarket/internal/helpers"
	"github.com/veralain/cinemarket/internal/middleware"
	"github.com/veralain/cinemarket/internal/models"
	"github.com/veralain/cinemarket/internal/queue"
	"github.com/veralain/cinemarket/internal/store"
)

const (
	eventCheckoutCompleted = "checkout.session.completed"
	eventRefundCreated     = "refund.created"
)

type webhookEvent struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object struct {
			AmountTotal   int64             `json:"amount_total"`
			PaymentIntent string            `json:"payment_intent"`
			Metadata      map[string]string `json:"metadata"`
		} `json:"object"`
	} `json:"data"`
}

// StripeWebhook is the reconciler entry point. The provider retries on any
// non-2xx, so only transient store failures answer 5xx; everything the
// service cannot act on (unknown type, foreign payment intent, malformed
// or unknown metadata) is acknowledged to stop retry storms.
func StripeWebhook(c *gin.Context) {
	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	var event webhookEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid webhook payload.")
		return
	}

	switch event.Type {
	case eventCheckoutCompleted:
		resolveCheckoutCompleted(c, gormDB, event)
	case eventRefundCreated:
		if err := store.ApplyRefundCreated(gormDB, store.RefundCreated{
			EventID:       event.ID,
			PaymentIntent: event.Data.Object.PaymentIntent,
		}); err != nil {
			log.Printf("webhook %s: refund reconciliation failed: %v", event.ID, err)
			helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to process refund event.")
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "success"})
	default:
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
	}
}

func resolveCheckoutCompleted(c *gin.Context, gormDB *gorm.DB, event webhookEvent) {
	metadata := event.Data.Object.Metadata
	userID, userErr := uuid.Parse(metadata["user_id"])
	orderID, orderErr := uuid.Parse(metadata["order_id"])
	if userErr != nil || orderErr != nil {
		log.Printf("webhook %s: malformed metadata %v, acknowledging", event.ID, metadata)
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}

	release, err := middleware.GetOrderLocker(c).Acquire(c.Request.Context(), orderID)
	if err != nil {
		helpers.RespondWithError(c, http.StatusServiceUnavailable, "Order is being processed, retry later.")
		return
	}
	defer release()

	payment, err := store.ApplyCheckoutCompleted(gormDB, store.CheckoutCompleted{
		EventID:       event.ID,
		PaymentIntent: event.Data.Object.PaymentIntent,
		AmountTotal:   event.Data.Object.AmountTotal,
		UserID:        userID,
		OrderID:       orderID,
	})
	switch {
	case errors.Is(err, store.ErrPaymentAlreadyRecorded):
		log.Printf("webhook %s: order %s already reconciled", event.ID, orderID)
		c.JSON(http.StatusOK, gin.H{"status": "success"})
		return
	case errors.Is(err, store.ErrOrderNotFound):
		// Data-integrity fault: the event names an order this service never
		// created. Acknowledge so the provider stops retrying.
		log.Printf("webhook %s: order %s does not exist, acknowledging", event.ID, orderID)
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	case err != nil:
		log.Printf("webhook %s: reconciliation failed: %v", event.ID, err)
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to process payment event.")
		return
	}

	notifyPaymentConfirmed(c, gormDB, payment)
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

// notifyPaymentConfirmed dispatches the confirmation after commit. Failures
// are logged only; delivery status is reported by the queue consumer.
func notifyPaymentConfirmed(c *gin.Context, gormDB *gorm.DB, payment *models.Payment) {
	notifier := middleware.GetNotifier(c)
	if notifier == nil {
		return
	}

	var user models.User
	if err := gormDB.Where("id = ?", payment.UserID).First(&user).Error; err != nil {
		log.Printf("payment %s: user lookup for notification failed: %v", payment.ID, err)
		return
	}

	event := queue.PaymentConfirmedEvent{
		PaymentID:   payment.ID,
		OrderID:     payment.OrderID,
		UserID:      payment.UserID,
		Email:       user.Email,
		Amount:      payment.Amount.StringFixed(2),
		ConfirmedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if err := notifier.NotifyPaymentConfirmed(event); err != nil {
		log.Printf("payment %s: confirmation publish failed: %v", payment.ID, err)
	}
}

// RefundPayment asks the provider to refund a recorded charge. The state
// change itself lands later through the refund.created webhook.
func RefundPayment(c *gin.Context) {
	paymentID, err := helpers.ParseUUIDParam(c, "id")
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid payment ID.")
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

	payment, err := store.GetPaymentByID(gormDB, paymentID)
	if err != nil {
		if errors.Is(err, store.ErrPaymentNotFound) {
			helpers.RespondWithError(c, http.StatusNotFound, err.Error())
		} else {
			helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to load payment.")
		}
		return
	}
	if payment.PaymentIntent == "" {
		helpers.RespondWithError(c, http.StatusBadRequest, store.ErrPaymentIntentMissing.Error())
		return
	}

	if err := gw.CreateRefund(payment.PaymentIntent); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "refund_initiated"})
}

func ListMyPayments(c *gin.Context) {
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

	filter := store.PaymentFilter{UserID: &userUUID}
	if err := parsePaymentFilter(c, &filter); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	payments, err := store.ListPayments(gormDB, filter)
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to list payments.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"payments": payments})
}

func ListPayments(c *gin.Context) {
	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	var filter store.PaymentFilter

	userID, err := helpers.ParseUUIDQuery(c, "user_id")
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	filter.UserID = userID

	if err := parsePaymentFilter(c, &filter); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	payments, err := store.ListPayments(gormDB, filter)
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to list payments.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"payments": payments})
}

func parsePaymentFilter(c *gin.Context, filter *store.PaymentFilter) error {
	if raw := c.Query("status"); raw != "" {
		status := models.PaymentStatus(raw)
		switch status {
		case models.PaymentStatusSuccessful, models.PaymentStatusCanceled, models.PaymentStatusRefunded:
			filter.Status = &status
		default:
			return errors.New("invalid status")
		}
	}

	paymentID, err := helpers.ParseUUIDQuery(c, "payment_id")
	if err != nil {
		return err
	}
	filter.PaymentID = paymentID
	return nil
}
