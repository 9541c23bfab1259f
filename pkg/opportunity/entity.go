package opportunity

import (
	"context"
	"errors"
	"time"
)

// Opportunity is one catalog entry. Identity is ID alone.
type Opportunity struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ApplyURL    string    `json:"applyUrl"`
	ImageURL    string    `json:"imageUrl"`
	Type        string    `json:"type,omitempty"`
	Prestige    string    `json:"prestige,omitempty"`
	Tags        []string  `json:"tags"`
	CreatedAt   time.Time `json:"createdAt,omitempty"`
}

// Page is one slice of search results.
type Page struct {
	Number int           `json:"page"`
	Items  []Opportunity `json:"opportunities"`
	IsLast bool          `json:"isLastPage"`
}

var ErrNotFound = errors.New("opportunity not found")

// Repository is the catalog store port.
type Repository interface {
	// Search returns entries carrying every tag in tags.
	Search(ctx context.Context, tags []string, limit, offset int) ([]Opportunity, error)
	GetByID(ctx context.Context, id string) (Opportunity, error)
	Upsert(ctx context.Context, o Opportunity) error
}
