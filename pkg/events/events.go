package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/venuetix/bookings/pkg/logger"
)

type Publisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
	Close() error
}

type Subscriber interface {
	Subscribe(subject string, handler func(msg *Message)) error
	QueueSubscribe(subject, queue string, handler func(msg *Message)) error
	Close() error
}

type EventBus interface {
	Publisher
	Subscriber
}

type Message struct {
	Subject   string
	Data      []byte
	Timestamp time.Time
}

type NATSEventBus struct {
	conn *nats.Conn
}

func NewNATSEventBus(url string) (*NATSEventBus, error) {
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &NATSEventBus{conn: conn}, nil
}

func (n *NATSEventBus) Publish(ctx context.Context, subject string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}

	logger.DebugContext(ctx, "Publishing event", "subject", subject, "data", string(payload))

	return n.conn.Publish(subject, payload)
}

func (n *NATSEventBus) Subscribe(subject string, handler func(msg *Message)) error {
	_, err := n.conn.Subscribe(subject, func(msg *nats.Msg) {
		handler(&Message{
			Subject:   msg.Subject,
			Data:      msg.Data,
			Timestamp: time.Now(),
		})
	})
	return err
}

func (n *NATSEventBus) QueueSubscribe(subject, queue string, handler func(msg *Message)) error {
	_, err := n.conn.QueueSubscribe(subject, queue, func(msg *nats.Msg) {
		handler(&Message{
			Subject:   msg.Subject,
			Data:      msg.Data,
			Timestamp: time.Now(),
		})
	})
	return err
}

func (n *NATSEventBus) Close() error {
	n.conn.Close()
	return nil
}

// Event subjects
const (
	UserRegistered  = "user.registered"
	TicketBooked    = "ticket.booked"
	TicketCanceled  = "ticket.canceled"
	PaymentCaptured = "payment.captured"
	ContactReceived = "contact.received"
)

// Event payloads
type UserRegisteredEvent struct {
	UserID       int64     `json:"user_id"`
	Username     string    `json:"username"`
	Mobile       string    `json:"mobile"`
	RegisteredAt time.Time `json:"registered_at"`
}

type TicketBookedEvent struct {
	TicketID  string    `json:"ticket_id"`
	UserID    int64     `json:"user_id"`
	GroupSize int       `json:"group_size"`
	BookedAt  time.Time `json:"booked_at"`
}

type TicketCanceledEvent struct {
	TicketID   string    `json:"ticket_id"`
	UserID     int64     `json:"user_id"`
	CanceledAt time.Time `json:"canceled_at"`
}

type PaymentCapturedEvent struct {
	IntentID   string    `json:"intent_id"`
	TicketID   string    `json:"ticket_id"`
	Amount     int64     `json:"amount"`
	Currency   string    `json:"currency"`
	CapturedAt time.Time `json:"captured_at"`
}

type ContactReceivedEvent struct {
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	ReceivedAt time.Time `json:"received_at"`
}
