package models

import "github.com/google/uuid"

// BlacklistItem tracks failed logins per client IP. Once tries reaches the
// block threshold, blocked_until opens a window during which every login
// from that IP is rejected without touching the password hasher.
type BlacklistItem struct {
	ID           uuid.UUID `json:"id" db:"id"`
	IP           string    `json:"ip" db:"ip"`
	Tries        int       `json:"tries" db:"tries"`
	Created      string    `json:"created" db:"created"`
	Blocked      *string   `json:"blocked" db:"blocked"`
	BlockedUntil *string   `json:"blocked_until" db:"blocked_until"`
}

// IsBlocked reports whether the item's block window covers the given time.
func (b *BlacklistItem) IsBlocked(now string) bool {
	return b.BlockedUntil != nil && *b.BlockedUntil > now
}
