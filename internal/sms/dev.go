package sms

import (
	"context"

	"github.com/venuetix/bookings/pkg/logger"
)

// DevSender logs messages instead of sending them.
type DevSender struct{}

func NewDevSender() *DevSender {
	return &DevSender{}
}

func (d *DevSender) Send(ctx context.Context, to, body string) error {
	logger.InfoContext(ctx, "📱 [DEV SMS]", "to", to, "body", body)
	return nil
}
