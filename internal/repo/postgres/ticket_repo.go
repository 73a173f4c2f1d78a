package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/venuetix/bookings/internal/domain"
)

type TicketsRepo interface {
	Create(ctx context.Context, t *domain.Ticket) error
	ListByUser(ctx context.Context, userID int64) ([]domain.Ticket, error)
	// Delete removes the ticket if it exists and belongs to userID. Deleting
	// an unknown ticket is a no-op.
	Delete(ctx context.Context, id string, userID int64) error
}

type ticketsRepo struct {
	pool *pgxpool.Pool
}

func NewTicketsRepo(pool *pgxpool.Pool) TicketsRepo {
	return &ticketsRepo{pool: pool}
}

const ticketCols = `id, user_id, group_size, created_at`

func (r *ticketsRepo) Create(ctx context.Context, t *domain.Ticket) error {
	const q = `
		INSERT INTO tickets (id, user_id, group_size)
		VALUES ($1, $2, $3)
		RETURNING created_at`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return r.pool.QueryRow(ctx, q, t.ID, t.UserID, t.GroupSize).Scan(&t.CreatedAt)
}

func (r *ticketsRepo) ListByUser(ctx context.Context, userID int64) ([]domain.Ticket, error) {
	const q = `SELECT ` + ticketCols + ` FROM tickets WHERE user_id = $1 ORDER BY created_at DESC`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tickets []domain.Ticket
	for rows.Next() {
		var t domain.Ticket
		if err := rows.Scan(&t.ID, &t.UserID, &t.GroupSize, &t.CreatedAt); err != nil {
			return nil, err
		}
		tickets = append(tickets, t)
	}

	return tickets, rows.Err()
}

func (r *ticketsRepo) Delete(ctx context.Context, id string, userID int64) error {
	const q = `DELETE FROM tickets WHERE id = $1 AND user_id = $2`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err := r.pool.Exec(ctx, q, id, userID)
	return err
}
