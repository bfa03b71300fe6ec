package store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrCartNotFound          = errors.New("you don't have a cart")
	ErrCartEmpty             = errors.New("cart is empty")
	ErrMovieAlreadyInCart    = errors.New("movie is already in cart")
	ErrMovieAlreadyPurchased = errors.New("you already bought this movie")
	ErrMovieNotInCart        = errors.New("this movie is not in your cart")

	ErrOrderNotFound            = errors.New("order with such id doesn't exist")
	ErrOrderAlreadyPending      = errors.New("you already have a pending order with some of these movies")
	ErrCancellationNotAvailable = errors.New("cancellation is not possible")

	ErrPaymentNotFound      = errors.New("no payment with such id")
	ErrPaymentIntentMissing = errors.New("payment has no payment intent on record")

	// ErrPaymentAlreadyRecorded means a checkout-completed event hit the
	// unique payment constraints: the charge was already reconciled and the
	// delivery should be acknowledged without further work.
	ErrPaymentAlreadyRecorded = errors.New("payment already recorded for this order")
)

// MovieUnavailableError reports cart movies that no longer resolve against
// the catalog at checkout time.
type MovieUnavailableError struct {
	MovieIDs []uuid.UUID
}

func (e *MovieUnavailableError) Error() string {
	ids := make([]string, 0, len(e.MovieIDs))
	for _, id := range e.MovieIDs {
		ids = append(ids, id.String())
	}
	return fmt.Sprintf("some movies are no longer available: %s", strings.Join(ids, ", "))
}
