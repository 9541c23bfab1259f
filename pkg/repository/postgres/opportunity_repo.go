package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stuimpact/stuimpactweb2/pkg/opportunity"
)

// OpportunityRepository stores the catalog. Tags live in a TEXT[] column with
// a GIN index so "carries every tag" is a single containment test.
type OpportunityRepository struct {
	pool *pgxpool.Pool
}

func NewOpportunityRepository(pool *pgxpool.Pool) *OpportunityRepository {
	return &OpportunityRepository{pool: pool}
}

const opportunityColumns = `id, title, description, apply_url, image_url, type, prestige, tags, created_at`

func (r *OpportunityRepository) Search(ctx context.Context, tags []string, limit, offset int) ([]opportunity.Opportunity, error) {
	if tags == nil {
		tags = []string{}
	}
	rows, err := r.pool.Query(ctx, `
SELECT `+opportunityColumns+`
FROM opportunities
WHERE tags @> $1::text[]
ORDER BY title, id
LIMIT $2 OFFSET $3
`, tags, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]opportunity.Opportunity, 0, limit)
	for rows.Next() {
		o, err := scanOpportunity(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *OpportunityRepository) GetByID(ctx context.Context, id string) (opportunity.Opportunity, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+opportunityColumns+` FROM opportunities WHERE id = $1`, id)
	o, err := scanOpportunity(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return opportunity.Opportunity{}, opportunity.ErrNotFound
	}
	return o, err
}

func (r *OpportunityRepository) Upsert(ctx context.Context, o opportunity.Opportunity) error {
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now().UTC()
	}
	_, err := r.pool.Exec(ctx, `
INSERT INTO opportunities (`+opportunityColumns+`)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (id) DO UPDATE SET
	title = EXCLUDED.title,
	description = EXCLUDED.description,
	apply_url = EXCLUDED.apply_url,
	image_url = EXCLUDED.image_url,
	type = EXCLUDED.type,
	prestige = EXCLUDED.prestige,
	tags = EXCLUDED.tags
`, o.ID, strings.TrimSpace(o.Title), o.Description, o.ApplyURL, o.ImageURL, o.Type, o.Prestige, o.Tags, o.CreatedAt)
	return err
}

func scanOpportunity(row pgx.Row) (opportunity.Opportunity, error) {
	var o opportunity.Opportunity
	err := row.Scan(&o.ID, &o.Title, &o.Description, &o.ApplyURL, &o.ImageURL, &o.Type, &o.Prestige, &o.Tags, &o.CreatedAt)
	if err != nil {
		return opportunity.Opportunity{}, err
	}
	o.CreatedAt = o.CreatedAt.UTC()
	if o.Tags == nil {
		o.Tags = []string{}
	}
	return o, nil
}
