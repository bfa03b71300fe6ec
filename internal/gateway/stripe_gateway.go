package gateway

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
)

// PaymentGateway is the narrow contract against the external payment
// provider. It never writes payment records; those only come in through the
// webhook.
type PaymentGateway interface {
	CreateCheckoutSession(userID, orderID uuid.UUID, amount decimal.Decimal) (string, error)
	CreateRefund(paymentIntent string) error
}

// SessionError carries the provider's human-readable message for a failed
// checkout-session creation. The order stays pending; the caller surfaces
// this as a client error.
type SessionError struct {
	Message string
}

func (e *SessionError) Error() string {
	return "payment session creation failed: " + e.Message
}

type StripeGateway struct {
	client     *client.API
	successURL string
	cancelURL  string
}

func NewStripeGateway(sc *client.API, successURL, cancelURL string) *StripeGateway {
	return &StripeGateway{
		client:     sc,
		successURL: successURL,
		cancelURL:  cancelURL,
	}
}

func (g *StripeGateway) CreateCheckoutSession(userID, orderID uuid.UUID, amount decimal.Decimal) (string, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String("usd"),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(fmt.Sprintf("Order #%s", orderID)),
					},
					UnitAmount: stripe.Int64(amount.Shift(2).IntPart()),
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(g.successURL),
		CancelURL:  stripe.String(g.cancelURL),
	}
	params.AddMetadata("user_id", userID.String())
	params.AddMetadata("order_id", orderID.String())

	session, err := g.client.CheckoutSessions.New(params)
	if err != nil {
		return "", &SessionError{Message: providerMessage(err)}
	}
	return session.URL, nil
}

func (g *StripeGateway) CreateRefund(paymentIntent string) error {
	_, err := g.client.Refunds.New(&stripe.RefundParams{
		PaymentIntent: stripe.String(paymentIntent),
	})
	if err != nil {
		return fmt.Errorf("refund failed: %s", providerMessage(err))
	}
	return nil
}

func providerMessage(err error) string {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) && stripeErr.Msg != "" {
		return stripeErr.Msg
	}
	return err.Error()
}
