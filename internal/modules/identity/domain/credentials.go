package domain

import (
	"fmt"
	"strings"
	"time"

	apperrors "fasttrack/internal/platform/errors"
)

// Credentials are what the remote store needs to scope requests to a user.
type Credentials struct {
	UserID     string    `json:"user_id"`
	Email      string    `json:"email,omitempty"`
	Token      string    `json:"token,omitempty"`
	SignedInAt time.Time `json:"signed_in_at"`
}

func (c Credentials) Present() bool {
	return c.UserID != ""
}

func (c Credentials) Equal(other Credentials) bool {
	return c.UserID == other.UserID && c.Token == other.Token && c.Email == other.Email
}

func (c Credentials) Validate() error {
	if strings.TrimSpace(c.UserID) == "" {
		return fmt.Errorf("%w: user id is required", apperrors.ErrInvalidInput)
	}
	if strings.ContainsAny(c.UserID, " \t\n") {
		return fmt.Errorf("%w: user id must not contain whitespace", apperrors.ErrInvalidInput)
	}
	if c.Email != "" && !strings.Contains(c.Email, "@") {
		return fmt.Errorf("%w: email %q is malformed", apperrors.ErrInvalidInput, c.Email)
	}
	return nil
}
