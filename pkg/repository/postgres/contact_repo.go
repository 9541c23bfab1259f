package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stuimpact/stuimpactweb2/pkg/contact"
)

// ContactRepository persists contact form messages.
type ContactRepository struct {
	pool *pgxpool.Pool
}

func NewContactRepository(pool *pgxpool.Pool) *ContactRepository {
	return &ContactRepository{pool: pool}
}

func (r *ContactRepository) Create(ctx context.Context, m contact.Message) error {
	_, err := r.pool.Exec(ctx, `
INSERT INTO contact_messages (id, name, email, message, created_at)
VALUES ($1, $2, $3, $4, $5)
`, m.ID, m.Name, m.Email, m.Body, m.CreatedAt)
	return err
}
