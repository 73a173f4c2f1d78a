package domain

import "time"

type Ticket struct {
	ID        string    `json:"id"`
	UserID    int64     `json:"user_id"`
	GroupSize int       `json:"group_size"`
	CreatedAt time.Time `json:"created_at"`
}
