package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/venuetix/bookings/internal/domain"
	"github.com/venuetix/bookings/internal/repo/postgres"
	"github.com/venuetix/bookings/pkg/events"
	"github.com/venuetix/bookings/pkg/logger"
)

// ErrInvalidGroupSize reports a group size that is missing, non-numeric, or
// below one.
var ErrInvalidGroupSize = errors.New("group size must be a number of at least 1")

type BookingService interface {
	// Book validates the raw group size and creates a ticket for the user.
	Book(ctx context.Context, userID int64, groupSizeRaw string) (*domain.Ticket, error)
	ListTickets(ctx context.Context, userID int64) ([]domain.Ticket, error)
	// CancelTicket deletes the user's ticket; unknown ids are a no-op.
	CancelTicket(ctx context.Context, userID int64, ticketID string) error
}

type bookingService struct {
	tickets postgres.TicketsRepo
	bus     events.Publisher
}

func NewBookingService(tickets postgres.TicketsRepo, bus events.Publisher) BookingService {
	return &bookingService{tickets: tickets, bus: bus}
}

func (s *bookingService) Book(ctx context.Context, userID int64, groupSizeRaw string) (*domain.Ticket, error) {
	groupSize, err := strconv.Atoi(groupSizeRaw)
	if err != nil || groupSize < 1 {
		return nil, ErrInvalidGroupSize
	}

	ticket := &domain.Ticket{
		ID:        uuid.NewString(),
		UserID:    userID,
		GroupSize: groupSize,
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, fmt.Errorf("failed to create ticket: %w", err)
	}

	if err := s.bus.Publish(ctx, events.TicketBooked, events.TicketBookedEvent{
		TicketID:  ticket.ID,
		UserID:    userID,
		GroupSize: groupSize,
		BookedAt:  time.Now(),
	}); err != nil {
		logger.WarnContext(ctx, "Failed to publish ticket.booked", "error", err)
	}

	return ticket, nil
}

func (s *bookingService) ListTickets(ctx context.Context, userID int64) ([]domain.Ticket, error) {
	tickets, err := s.tickets.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tickets: %w", err)
	}
	return tickets, nil
}

func (s *bookingService) CancelTicket(ctx context.Context, userID int64, ticketID string) error {
	// The store keys tickets by UUID; anything else cannot name an existing
	// ticket and falls under the unknown-id no-op rather than reaching the
	// store as a type error.
	if _, err := uuid.Parse(ticketID); err != nil {
		return nil
	}

	if err := s.tickets.Delete(ctx, ticketID, userID); err != nil {
		return fmt.Errorf("failed to delete ticket: %w", err)
	}

	if err := s.bus.Publish(ctx, events.TicketCanceled, events.TicketCanceledEvent{
		TicketID:   ticketID,
		UserID:     userID,
		CanceledAt: time.Now(),
	}); err != nil {
		logger.WarnContext(ctx, "Failed to publish ticket.canceled", "error", err)
	}

	return nil
}
