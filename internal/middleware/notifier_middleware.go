package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/veralain/cinemarket/internal/locks"
	"github.com/veralain/cinemarket/internal/queue"
)

// NotifierMiddleware injects the payment-confirmation publisher. A nil
// notifier is allowed; handlers then skip dispatch.
func NotifierMiddleware(notifier queue.Notifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if notifier != nil {
			c.Set("notifier", notifier)
		}
		c.Next()
	}
}

func GetNotifier(c *gin.Context) queue.Notifier {
	value, exists := c.Get("notifier")
	if !exists {
		return nil
	}
	notifier, ok := value.(queue.Notifier)
	if !ok {
		return nil
	}
	return notifier
}

func OrderLockerMiddleware(locker *locks.OrderLocker) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("order_locker", locker)
		c.Next()
	}
}

func GetOrderLocker(c *gin.Context) *locks.OrderLocker {
	value, exists := c.Get("order_locker")
	if !exists {
		return nil
	}
	locker, ok := value.(*locks.OrderLocker)
	if !ok {
		return nil
	}
	return locker
}
