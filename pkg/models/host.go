package models

import "github.com/google/uuid"

// Host is the server's record of one agent's machine. Agents self-describe
// on every connection, refreshing alias, attributes and ip.
type Host struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	Alias       string     `json:"alias" db:"alias"`
	Attributes  StringList `json:"attributes" db:"attributes"`
	IP          string     `json:"ip" db:"ip"`
	Active      bool       `json:"active" db:"active"`
	LastCheckin *string    `json:"last_checkin" db:"last_checkin"`
	Created     string     `json:"created" db:"created"`
}

// AttributeKey returns the host's attributes in canonical comparison form.
func (h *Host) AttributeKey() string {
	return AttributeKey(h.Attributes)
}
