package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"

	"github.com/google/uuid"

	"github.com/unpatched/unpatched-server/pkg/models"
	"github.com/unpatched/unpatched-server/pkg/store"
)

// EnsureUser creates or refreshes the bootstrap operator account. An existing
// account keeps its id and roles; the password hash and active flag are
// overwritten so an operator locked out by a forgotten password or a
// deactivated account can recover through the server's startup flags.
func EnsureUser(ctx context.Context, st *store.Store, email, password string) error {
	if email == "" || password == "" {
		return ErrMissingCredentials
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return ErrInvalidEmail
	}

	hash, err := HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash bootstrap password: %w", err)
	}

	user, err := st.GetUserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		user = &models.User{
			ID:    uuid.New(),
			Email: email,
			Roles: models.StringList{"admin"},
		}
	} else if err != nil {
		return fmt.Errorf("failed to look up bootstrap user: %w", err)
	}

	user.Password = hash
	user.Active = true
	if err := st.SaveUser(ctx, user); err != nil {
		return fmt.Errorf("failed to save bootstrap user: %w", err)
	}

	slog.Info("bootstrap user ensured", "email", email)
	return nil
}
