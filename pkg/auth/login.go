package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"time"

	"github.com/google/uuid"

	"github.com/unpatched/unpatched-server/pkg/models"
	"github.com/unpatched/unpatched-server/pkg/store"
)

const (
	blacklistAfter = 5
	blacklistTTL   = 5 * time.Minute
)

// Authorizer runs operator logins against the user table and the
// failed-login blacklist, and admits agents on the socket upgrade.
type Authorizer struct {
	store  *store.Store
	issuer *TokenIssuer
}

// NewAuthorizer creates an Authorizer over the store and token issuer.
func NewAuthorizer(st *store.Store, issuer *TokenIssuer) *Authorizer {
	return &Authorizer{store: st, issuer: issuer}
}

// Login authenticates an operator and returns a signed token. The blacklist
// check runs first so a blocked IP is rejected before any hashing work; the
// caller cannot distinguish a block from bad credentials.
func (a *Authorizer) Login(ctx context.Context, ip, clientID, clientSecret string) (string, error) {
	log := slog.With("ip", ip)

	item, err := a.store.GetBlacklistItemByIP(ctx, ip)
	if errors.Is(err, store.ErrNotFound) {
		item = &models.BlacklistItem{ID: uuid.New(), IP: ip}
	} else if err != nil {
		return "", fmt.Errorf("failed to check blacklist: %w", err)
	}

	if item.BlockedUntil != nil {
		if *item.BlockedUntil > models.Now() {
			log.Error("login blocked, too many failed attempts", "blocked_until", *item.BlockedUntil)
			return "", ErrWrongCredentials
		}
		// The block has lapsed; the IP starts over with a clean slate.
		if err := a.store.DeleteBlacklistItem(ctx, item.ID); err != nil {
			return "", fmt.Errorf("failed to clear expired blacklist item: %w", err)
		}
		item = &models.BlacklistItem{ID: uuid.New(), IP: ip}
	}

	if clientID == "" || clientSecret == "" {
		return "", ErrMissingCredentials
	}
	if _, err := mail.ParseAddress(clientID); err != nil {
		return "", ErrInvalidEmail
	}

	log = log.With("email", clientID)
	log.Info("starting login")

	user, err := a.store.GetUserByEmail(ctx, clientID)
	if errors.Is(err, store.ErrNotFound) {
		return "", a.recordFailure(ctx, log, item)
	}
	if err != nil {
		return "", fmt.Errorf("failed to look up user: %w", err)
	}
	if !VerifyPassword(clientSecret, user.Password) {
		return "", a.recordFailure(ctx, log, item)
	}

	token, err := a.issuer.Issue(user.Email)
	if err != nil {
		return "", err
	}
	log.Info("login successful")
	return token, nil
}

// recordFailure bumps the IP's failure count, opening a block window once
// the count reaches the threshold, and always returns ErrWrongCredentials.
func (a *Authorizer) recordFailure(ctx context.Context, log *slog.Logger, item *models.BlacklistItem) error {
	item.Tries++
	if item.Tries >= blacklistAfter {
		blocked := models.Now()
		until := models.FormatTime(time.Now().Add(blacklistTTL))
		item.Blocked = &blocked
		item.BlockedUntil = &until
	}
	if err := a.store.SaveBlacklistItem(ctx, item); err != nil {
		log.Error("failed to record login failure", "error", err)
	}
	log.Error("login failed, wrong credentials", "tries", item.Tries)
	return ErrWrongCredentials
}
