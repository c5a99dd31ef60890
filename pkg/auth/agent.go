package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/unpatched/unpatched-server/pkg/models"
	"github.com/unpatched/unpatched-server/pkg/store"
)

// HeaderAPIKey is the upgrade-request header agents authenticate with. Its
// value is the host's id, handed out when the host row is created.
const HeaderAPIKey = "X_API_KEY"

// agentKeyMaxAge bounds how long an idle key stays valid. A host that has
// not checked in for this long must be re-enrolled; a host that has never
// checked in is still admissible, otherwise no agent could ever connect.
const agentKeyMaxAge = 30 * 24 * time.Hour

// AdmitAgent validates an agent's API key and returns the host it belongs
// to. Every rejection reason collapses into ErrAgentUnauthorized; the
// specifics stay in the server log.
func (a *Authorizer) AdmitAgent(ctx context.Context, apiKey string) (*models.Host, error) {
	id, err := uuid.Parse(apiKey)
	if err != nil {
		slog.Warn("agent rejected, api key is not a uuid")
		return nil, ErrAgentUnauthorized
	}

	log := slog.With("host_id", id)
	host, err := a.store.GetHost(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		log.Warn("agent rejected, unknown host")
		return nil, ErrAgentUnauthorized
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up host: %w", err)
	}

	if !host.Active {
		log.Warn("agent rejected, host is deactivated")
		return nil, ErrAgentUnauthorized
	}
	if host.LastCheckin != nil {
		checkin, err := models.ParseTime(*host.LastCheckin)
		if err != nil || time.Since(checkin) > agentKeyMaxAge {
			log.Warn("agent rejected, api key is stale", "last_checkin", *host.LastCheckin)
			return nil, ErrAgentUnauthorized
		}
	}

	return host, nil
}
