package handlers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/veralain/cinemarket/internal/gateway"
	"github.com/veralain/cinemarket/internal/middleware"
	"github.com/veralain/cinemarket/internal/models"
	"github.com/veralain/cinemarket/internal/queue"
	"github.com/veralain/cinemarket/internal/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "handlers.db")
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

// stubGateway stands in for the provider client. It records calls and
// answers with whatever the test configured.
type stubGateway struct {
	sessionURL  string
	sessionErr  error
	refundErr   error
	sessions    int
	refunds     []string
	lastOrderID uuid.UUID
}

func (g *stubGateway) CreateCheckoutSession(userID, orderID uuid.UUID, amount decimal.Decimal) (string, error) {
	g.sessions++
	g.lastOrderID = orderID
	if g.sessionErr != nil {
		return "", g.sessionErr
	}
	return g.sessionURL, nil
}

func (g *stubGateway) CreateRefund(paymentIntent string) error {
	g.refunds = append(g.refunds, paymentIntent)
	return g.refundErr
}

type stubNotifier struct {
	events []queue.PaymentConfirmedEvent
}

func (n *stubNotifier) NotifyPaymentConfirmed(event queue.PaymentConfirmedEvent) error {
	n.events = append(n.events, event)
	return nil
}

// newTestRouter wires the handler stack the way the server does, swapping
// JWT auth for a middleware that pins the caller identity.
func newTestRouter(db *gorm.DB, gw gateway.PaymentGateway, notifier queue.Notifier, userID uuid.UUID, role string) *gin.Engine {
	r := gin.New()
	r.Use(middleware.DatabaseMiddleware(db))
	r.Use(middleware.PaymentGatewayMiddleware(gw))
	r.Use(middleware.NotifierMiddleware(notifier))
	r.Use(middleware.OrderLockerMiddleware(nil))
	r.Use(func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Set("role", role)
		c.Next()
	})

	v1 := r.Group("/v1")
	{
		v1.POST("/payments/stripe/webhook", StripeWebhook)

		cart := v1.Group("/cart")
		{
			cart.GET("", ListCart)
			cart.POST("/movies/:movieId", AddMovieToCart)
			cart.DELETE("/movies/:movieId", RemoveMovieFromCart)
			cart.DELETE("/movies", ClearCart)
		}

		orders := v1.Group("/orders")
		{
			orders.POST("", PlaceOrder)
			orders.GET("/my", ListMyOrders)
			orders.GET("", middleware.RequireRoles("moderator", "admin"), ListOrders)
			orders.PATCH("/:id/cancel", CancelOrder)
		}

		payments := v1.Group("/payments")
		{
			payments.GET("/my", ListMyPayments)
			payments.GET("", middleware.RequireRoles("moderator", "admin"), ListPayments)
			payments.POST("/:id/refund", middleware.RequireRoles("moderator", "admin"), RefundPayment)
		}
	}
	return r
}

func performRequest(r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func seedUser(t *testing.T, db *gorm.DB) *models.User {
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

func seedMovie(t *testing.T, db *gorm.DB, title, price string) *models.Movie {
	t.Helper()

	movie := models.Movie{
		Title: title,
		Year:  2022,
		Price: decimal.RequireFromString(price),
	}
	if err := db.Create(&movie).Error; err != nil {
		t.Fatalf("create test movie: %v", err)
	}
	return &movie
}

func fillCart(t *testing.T, db *gorm.DB, userID uuid.UUID, movieIDs ...uuid.UUID) {
	t.Helper()

	for _, movieID := range movieIDs {
		if err := store.AddMovieToCart(db, userID, movieID); err != nil {
			t.Fatalf("add movie to cart: %v", err)
		}
	}
}

func checkoutCompletedBody(eventID, intent string, amount int64, userID, orderID uuid.UUID) map[string]interface{} {
	return map[string]interface{}{
		"id":   eventID,
		"type": "checkout.session.completed",
		"data": map[string]interface{}{
			"object": map[string]interface{}{
				"amount_total":   amount,
				"payment_intent": intent,
				"metadata": map[string]string{
					"user_id":  userID.String(),
					"order_id": orderID.String(),
				},
			},
		},
	}
}

func decodeOrderResponse(t *testing.T, w *httptest.ResponseRecorder) OrderResponse {
	t.Helper()

	var resp OrderResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode order response: %v (body %s)", err, w.Body.String())
	}
	return resp
}

func requireStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()

	if w.Code != want {
		t.Fatalf("status %d, want %d (body %s)", w.Code, want, w.Body.String())
	}
}
