package server

import (
	"fmt"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/veralain/cinemarket/config"
	"github.com/veralain/cinemarket/internal/gateway"
	"github.com/veralain/cinemarket/internal/handlers"
	"github.com/veralain/cinemarket/internal/locks"
	"github.com/veralain/cinemarket/internal/middleware"
	"github.com/veralain/cinemarket/internal/queue"
)

func Start() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %v", err)
	}

	db, err := config.InitDatabase(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %v", err)
	}

	stripeCfg, err := config.LoadStripeConfig()
	if err != nil {
		return fmt.Errorf("failed to load stripe config: %v", err)
	}
	stripeClient := config.InitStripeClient(stripeCfg)
	paymentGateway := gateway.NewStripeGateway(stripeClient, stripeCfg.SuccessURL, stripeCfg.CancelURL)

	locker := locks.NewOrderLocker(config.InitRedis(config.LoadRedisConfig()))

	var notifier queue.Notifier
	if url := os.Getenv("RABBITMQ_URL"); url != "" {
		publisher, err := queue.NewPublisher(url)
		if err != nil {
			log.Printf("rabbitmq unavailable, payment notifications disabled: %v", err)
		} else {
			notifier = publisher
			defer publisher.Close()
			go queue.StartDeliveryConsumer(url)
		}
	}

	r := gin.Default()

	setupRoutes(r, db, paymentGateway, notifier, locker, stripeCfg.WebhookSecret)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	return r.Run(":" + port)
}

func setupRoutes(r *gin.Engine, db *gorm.DB, paymentGateway gateway.PaymentGateway, notifier queue.Notifier, locker *locks.OrderLocker, webhookSecret string) {
	r.Use(middleware.DatabaseMiddleware(db))
	r.Use(middleware.PaymentGatewayMiddleware(paymentGateway))
	r.Use(middleware.NotifierMiddleware(notifier))
	r.Use(middleware.OrderLockerMiddleware(locker))

	public := r.Group("/v1")
	{
		public.POST("/register", handlers.Register)
		public.POST("/login", handlers.Login)

		moviePublic := public.Group("/movies")
		{
			moviePublic.GET("", handlers.ListMovies)
			moviePublic.GET("/:id", handlers.GetMovie)
		}

		public.POST("/payments/stripe/webhook",
			middleware.WebhookSignatureMiddleware(webhookSecret), handlers.StripeWebhook)
	}

	protected := r.Group("/v1")
	protected.Use(middleware.JWTAuthMiddleware())
	{
		movieProtected := protected.Group("/movies")
		movieProtected.Use(middleware.RequireRoles("moderator", "admin"))
		{
			movieProtected.POST("", handlers.CreateMovie)
			movieProtected.DELETE("/:id", handlers.DeleteMovie)
		}

		cart := protected.Group("/cart")
		{
			cart.GET("", handlers.ListCart)
			cart.POST("/movies/:movieId", handlers.AddMovieToCart)
			cart.DELETE("/movies/:movieId", handlers.RemoveMovieFromCart)
			cart.DELETE("/movies", handlers.ClearCart)
		}

		orders := protected.Group("/orders")
		{
			orders.POST("", handlers.PlaceOrder)
			orders.GET("/my", handlers.ListMyOrders)
			orders.GET("", middleware.RequireRoles("moderator", "admin"), handlers.ListOrders)
			orders.PATCH("/:id/cancel", handlers.CancelOrder)
		}

		payments := protected.Group("/payments")
		{
			payments.GET("/my", handlers.ListMyPayments)
			payments.GET("", middleware.RequireRoles("moderator", "admin"), handlers.ListPayments)
			payments.POST("/:id/refund", middleware.RequireRoles("moderator", "admin"), handlers.RefundPayment)
		}
	}
}
