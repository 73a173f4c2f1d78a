package payments

import "context"

// Receipt describes a completed charge.
type Receipt struct {
	IntentID string
	Amount   int64
	Currency string
}

// Gateway charges the fixed ticket amount against a payment method.
type Gateway interface {
	Charge(ctx context.Context, paymentMethodID string) (*Receipt, error)
}
