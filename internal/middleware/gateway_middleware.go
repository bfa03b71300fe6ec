package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/veralain/cinemarket/internal/gateway"
)

func PaymentGatewayMiddleware(gw gateway.PaymentGateway) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("payment_gateway", gw)
		c.Next()
	}
}

func GetPaymentGateway(c *gin.Context) gateway.PaymentGateway {
	value, exists := c.Get("payment_gateway")
	if !exists {
		return nil
	}
	gw, ok := value.(gateway.PaymentGateway)
	if !ok {
		return nil
	}
	return gw
}
