package payments

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/venuetix/bookings/pkg/logger"
)

// DevGateway approves every charge without talking to Stripe.
type DevGateway struct {
	amount   int64
	currency string
}

func NewDevGateway(amount int64, currency string) *DevGateway {
	return &DevGateway{amount: amount, currency: currency}
}

func (g *DevGateway) Charge(ctx context.Context, paymentMethodID string) (*Receipt, error) {
	intentID := fmt.Sprintf("pi_dev_%s", uuid.NewString())
	logger.InfoContext(ctx, "💳 [DEV PAYMENT] charge approved",
		"payment_method", paymentMethodID,
		"intent_id", intentID,
		"amount", g.amount,
		"currency", g.currency,
	)
	return &Receipt{IntentID: intentID, Amount: g.amount, Currency: g.currency}, nil
}
