package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExecutionState(t *testing.T) {
	e := Execution{Request: "2024-03-07T12:00:00.000Z"}
	assert.True(t, e.IsPending())
	assert.False(t, e.IsClaimed())
	assert.False(t, e.IsCompleted())

	sentinel := ClaimSentinel
	e.Response = &sentinel
	assert.False(t, e.IsPending())
	assert.True(t, e.IsClaimed())
	assert.False(t, e.IsCompleted())

	done := "2024-03-07T12:00:05.000Z"
	e.Response = &done
	assert.False(t, e.IsPending())
	assert.False(t, e.IsClaimed())
	assert.True(t, e.IsCompleted())
}
