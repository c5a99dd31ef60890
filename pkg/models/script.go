package models

import "github.com/google/uuid"

// Script is a named, versioned piece of shell text. Immutable by convention
// once referenced by a schedule.
type Script struct {
	ID            uuid.UUID  `json:"id" db:"id"`
	Name          string     `json:"name" db:"name"`
	Version       string     `json:"version" db:"version"`
	OutputRegex   string     `json:"output_regex" db:"output_regex"`
	Labels        StringList `json:"labels" db:"labels"`
	TimeoutInS    uint64     `json:"timeout_in_s" db:"timeout_in_s"`
	ScriptContent string     `json:"script_content" db:"script_content"`
}
