package middleware

import (
	"bytes"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/veralain/cinemarket/internal/helpers"
)

const signatureTolerance = 5 * time.Minute

// WebhookSignatureMiddleware verifies the provider's Stripe-Signature
// header against the raw body before the reconciler sees the event. An
// empty secret disables verification (local development, tests).
func WebhookSignatureMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			c.Next()
			return
		}

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			helpers.RespondWithError(c, http.StatusBadRequest, "Failed to read webhook payload.")
			c.Abort()
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		header := c.GetHeader("Stripe-Signature")
		if !helpers.VerifyStripeSignature(body, header, secret, signatureTolerance, time.Now()) {
			helpers.RespondWithError(c, http.StatusBadRequest, "Invalid webhook signature.")
			c.Abort()
			return
		}
		c.Next()
	}
}
