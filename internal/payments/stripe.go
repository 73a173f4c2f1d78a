package payments

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

type StripeGateway struct {
	api      *client.API
	amount   int64
	currency string
}

func NewStripeGateway(secretKey string, amount int64, currency string) *StripeGateway {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &StripeGateway{
		api:      api,
		amount:   amount,
		currency: currency,
	}
}

func (g *StripeGateway) Charge(_ context.Context, paymentMethodID string) (*Receipt, error) {
	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(g.amount),
		Currency:           stripe.String(g.currency),
		PaymentMethod:      stripe.String(paymentMethodID),
		ConfirmationMethod: stripe.String(string(stripe.PaymentIntentConfirmationMethodManual)),
		Confirm:            stripe.Bool(true),
	}

	intent, err := g.api.PaymentIntents.New(params)
	if err != nil {
		return nil, fmt.Errorf("payment failed: %w", err)
	}

	return &Receipt{
		IntentID: intent.ID,
		Amount:   g.amount,
		Currency: g.currency,
	}, nil
}
