package models

import (
	"errors"

	"github.com/google/uuid"
)

// Target selects the hosts a schedule applies to. Exactly one member is set:
// either an explicit host id, or an attribute list that must equal the host's
// attributes as a multiset.
type Target struct {
	Attributes StringList `json:"attributes"`
	HostID     *uuid.UUID `json:"host_id"`
}

// Validate checks the exactly-one-member rule.
func (t *Target) Validate() error {
	if (t.Attributes == nil) == (t.HostID == nil) {
		return errors.New("target requires exactly one of attributes or host_id")
	}
	return nil
}

// Timer decides when a schedule fires. Exactly one member is set: a cron
// expression (recurring) or an RFC-3339 timestamp (one-shot).
type Timer struct {
	Cron      *string `json:"cron"`
	Timestamp *string `json:"timestamp"`
}

// Validate checks the exactly-one-member rule and the timestamp format.
func (t *Timer) Validate() error {
	if (t.Cron == nil) == (t.Timestamp == nil) {
		return errors.New("timer requires exactly one of cron or timestamp")
	}
	if t.Timestamp != nil {
		if _, err := ParseTime(*t.Timestamp); err != nil {
			return errors.New("timer timestamp is not a valid RFC-3339 time")
		}
	}
	return nil
}

// Schedule binds one script to a target at a timing. A timestamp-timed
// schedule fires at most once; materializing it flips active to false.
type Schedule struct {
	ID       uuid.UUID `json:"id"`
	ScriptID uuid.UUID `json:"script_id"`
	Target   Target    `json:"target"`
	Timer    Timer     `json:"timer"`
	Active   bool      `json:"active"`
}

// Validate checks both union members.
func (s *Schedule) Validate() error {
	if err := s.Target.Validate(); err != nil {
		return err
	}
	return s.Timer.Validate()
}

// Matches reports whether the schedule targets the given host: target-by-id
// matches exactly, target-by-attributes requires multiset equality.
func (s *Schedule) Matches(h *Host) bool {
	if s.Target.HostID != nil {
		return *s.Target.HostID == h.ID
	}
	if s.Target.Attributes != nil {
		return AttributeKey(s.Target.Attributes) == h.AttributeKey()
	}
	return false
}
