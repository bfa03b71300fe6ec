package store

import (
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/veralain/cinemarket/internal/models"
)

// CheckoutCompleted is a provider checkout.session.completed event after
// payload validation: ids resolved, metadata parsed.
type CheckoutCompleted struct {
	EventID       string
	PaymentIntent string
	AmountTotal   int64 // minor units as charged by the provider
	UserID        uuid.UUID
	OrderID       uuid.UUID
}

// RefundCreated is a provider refund.created event.
type RefundCreated struct {
	EventID       string
	PaymentIntent string
}

// ApplyCheckoutCompleted reconciles a successful checkout: payment row,
// order → paid, payment-item snapshots, cart items cleared — all in one
// transaction, so no partial state is ever observable.
//
// Replays are harmless: the unique constraints on payments.order_id and
// payments.external_payment_id turn a duplicate delivery into
// ErrPaymentAlreadyRecorded and the transaction rolls back untouched.
// A missing order means the event references state this service never
// created; the caller logs it and acknowledges (ErrOrderNotFound).
func ApplyCheckoutCompleted(db *gorm.DB, event CheckoutCompleted) (*models.Payment, error) {
	var payment *models.Payment
	err := db.Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.Where("id = ?", event.OrderID).First(&order).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return err
		}

		created := models.Payment{
			UserID:            event.UserID,
			OrderID:           event.OrderID,
			Status:            models.PaymentStatusSuccessful,
			Amount:            decimal.New(event.AmountTotal, -2),
			ExternalPaymentID: event.EventID,
			PaymentIntent:     event.PaymentIntent,
		}
		if err := tx.Create(&created).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrPaymentAlreadyRecorded
			}
			return err
		}

		if err := tx.Model(&order).Update("status", models.OrderStatusPaid).Error; err != nil {
			return err
		}

		var orderItems []models.OrderItem
		if err := tx.Where("order_id = ?", order.ID).Find(&orderItems).Error; err != nil {
			return err
		}
		for _, item := range orderItems {
			snapshot := models.PaymentItem{
				PaymentID:      created.ID,
				OrderItemID:    item.ID,
				PriceAtPayment: item.PriceAtOrder,
			}
			if err := tx.Create(&snapshot).Error; err != nil {
				return err
			}
			created.Items = append(created.Items, snapshot)
		}

		var cart models.Cart
		err := tx.Where("user_id = ?", event.UserID).First(&cart).Error
		if err == nil {
			if err := tx.Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error; err != nil {
				return err
			}
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		payment = &created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}

// ApplyRefundCreated marks the matching payment refunded and cancels its
// order. An unknown payment intent is a no-op: the event belongs to another
// system or was already superseded, and the provider only needs an ack.
func ApplyRefundCreated(db *gorm.DB, event RefundCreated) error {
	if event.PaymentIntent == "" {
		return nil
	}
	return db.Transaction(func(tx *gorm.DB) error {
		var payment models.Payment
		err := tx.Where("payment_intent = ?", event.PaymentIntent).First(&payment).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		updates := map[string]interface{}{
			"status":              models.PaymentStatusRefunded,
			"external_payment_id": event.EventID,
		}
		if err := tx.Model(&payment).Updates(updates).Error; err != nil {
			return err
		}
		return tx.Model(&models.Order{}).
			Where("id = ?", payment.OrderID).
			Update("status", models.OrderStatusCanceled).Error
	})
}

func GetPaymentByID(db *gorm.DB, paymentID uuid.UUID) (*models.Payment, error) {
	var payment models.Payment
	if err := db.Preload("Items").Where("id = ?", paymentID).First(&payment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	return &payment, nil
}

type PaymentFilter struct {
	UserID    *uuid.UUID
	Status    *models.PaymentStatus
	PaymentID *uuid.UUID
}

func ListPayments(db *gorm.DB, filter PaymentFilter) ([]models.Payment, error) {
	query := db.Model(&models.Payment{}).Preload("Items")

	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.PaymentID != nil {
		query = query.Where("id = ?", *filter.PaymentID)
	}

	var payments []models.Payment
	if err := query.Order("created_at DESC").Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}
