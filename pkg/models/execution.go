package models

import "github.com/google/uuid"

// Execution is one concrete run record. Its state is encoded in response:
// NULL means pending, the claim sentinel means claimed and awaiting the
// agent's reply, any later timestamp means completed.
type Execution struct {
	ID       uuid.UUID `json:"id" db:"id"`
	Request  string    `json:"request" db:"request"`
	Response *string   `json:"response" db:"response"`
	HostID   uuid.UUID `json:"host_id" db:"host_id"`
	SchedID  uuid.UUID `json:"sched_id" db:"sched_id"`
	Created  string    `json:"created" db:"created"`
	Output   string    `json:"output" db:"output"`
}

// IsPending reports whether the execution has not been dispatched yet.
func (e *Execution) IsPending() bool {
	return e.Response == nil
}

// IsClaimed reports whether the execution was dispatched and is awaiting
// the agent's reply.
func (e *Execution) IsClaimed() bool {
	return e.Response != nil && *e.Response == ClaimSentinel
}

// IsCompleted reports whether the execution carries a real completion time.
func (e *Execution) IsCompleted() bool {
	return e.Response != nil && *e.Response != ClaimSentinel
}
