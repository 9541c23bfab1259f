package auth

import (
	"time"

	"github.com/google/uuid"
)

// User is a portal account.
type User struct {
	ID               uuid.UUID
	Email            string
	PasswordHash     string
	IsAdmin          bool
	Verified         bool
	VerificationCode string
	CreatedAt        time.Time
}
