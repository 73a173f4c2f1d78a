package sms

import "context"

// Sender dispatches a text message to a mobile number.
type Sender interface {
	Send(ctx context.Context, to, body string) error
}
