// Package payment implements the payment capture sub-flow: change
// computation for cash, zero change for mobile money, and confirmation
// validation before the caller performs the close mutation.
package payment

import (
	"errors"
	"reflect"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"barpos/internal/apierror"
	"barpos/internal/model"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking.
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// ErrInsufficientCash rejects a cash confirmation whose received amount does
// not cover the order total.
var ErrInsufficientCash = errors.New("amount received is less than the order total")

// Capture is the in-progress payment for one preparing order. Amount
// received defaults to the order total (exact change).
type Capture struct {
	OrderID        string          `validate:"required"`
	OrderTotal     decimal.Decimal `validate:"min=0"`
	PaymentType    string          `validate:"required,oneof=cash mobile_money"`
	AmountReceived decimal.Decimal `validate:"min=0"`
}

// Payment is the finalized record emitted back to the workboard.
type Payment struct {
	OrderID        string
	PaymentType    string
	AmountReceived decimal.Decimal
	ChangeAmount   decimal.Decimal
}

func NewCapture(order model.Order) *Capture {
	return &Capture{
		OrderID:        order.ID,
		OrderTotal:     order.TotalAmount,
		PaymentType:    model.PaymentCash,
		AmountReceived: order.TotalAmount,
	}
}

// Change is max(0, received - total) for cash. Mobile money collects no
// physical cash, so change is always zero no matter the amount entered.
func (c *Capture) Change() decimal.Decimal {
	if c.PaymentType != model.PaymentCash {
		return decimal.Zero
	}
	change := c.AmountReceived.Sub(c.OrderTotal)
	if change.IsNegative() {
		return decimal.Zero
	}
	return change
}

// Confirm validates the capture and emits the payment record. The caller
// still owns the network mutation.
func (c *Capture) Confirm() (*Payment, error) {
	if err := validate.Struct(c); err != nil {
		fields := make(map[string]string)
		for _, fe := range err.(validator.ValidationErrors) {
			fields[fe.Field()] = fe.Tag()
		}
		return nil, apierror.NewValidation(fields)
	}
	if c.PaymentType == model.PaymentCash && c.AmountReceived.LessThan(c.OrderTotal) {
		return nil, ErrInsufficientCash
	}
	return &Payment{
		OrderID:        c.OrderID,
		PaymentType:    c.PaymentType,
		AmountReceived: c.AmountReceived,
		ChangeAmount:   c.Change(),
	}, nil
}
