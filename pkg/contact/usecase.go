// Package contact accepts messages sent through the site's contact form.
package contact

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"

	"github.com/stuimpact/stuimpactweb2/pkg/events"
	"github.com/stuimpact/stuimpactweb2/pkg/logger"
	"github.com/stuimpact/stuimpactweb2/pkg/metrics"
)

var (
	ErrMissingFields = errors.New("all fields are required")
	ErrInvalidEmail  = errors.New("invalid email address")
)

const maxMessageLen = 5000

type UseCase interface {
	Submit(ctx context.Context, name, email, body string) (Message, error)
}

type service struct {
	repo      Repository
	publisher events.Publisher
	policy    *bluemonday.Policy
	log       zerolog.Logger
}

// NewService returns the default UseCase. A nil publisher disables events.
func NewService(repo Repository, publisher events.Publisher) UseCase {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &service{
		repo:      repo,
		publisher: publisher,
		policy:    bluemonday.StrictPolicy(),
		log:       logger.Component("contact"),
	}
}

func (s *service) Submit(ctx context.Context, name, email, body string) (Message, error) {
	name = s.plain(name)
	email = strings.TrimSpace(email)
	body = s.plain(body)
	if name == "" || email == "" || body == "" {
		metrics.ContactSubmissions.WithLabelValues("invalid").Inc()
		return Message{}, ErrMissingFields
	}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		metrics.ContactSubmissions.WithLabelValues("invalid").Inc()
		return Message{}, ErrInvalidEmail
	}
	if r := []rune(body); len(r) > maxMessageLen {
		body = string(r[:maxMessageLen])
	}

	m := Message{
		ID:        uuid.New(),
		Name:      name,
		Email:     email,
		Body:      body,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, m); err != nil {
		metrics.ContactSubmissions.WithLabelValues("error").Inc()
		return Message{}, fmt.Errorf("store contact message: %w", err)
	}
	metrics.ContactSubmissions.WithLabelValues("ok").Inc()

	if err := s.publisher.Publish(ctx, events.ContactReceived, m); err != nil {
		s.log.Warn().Err(err).Str("id", m.ID.String()).Msg("contact event not published")
	}
	return m, nil
}

// plain strips markup and stores the text unescaped.
func (s *service) plain(v string) string {
	return strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(v)))
}
