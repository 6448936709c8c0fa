package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWOStatusTransitions(t *testing.T) {
	tests := []struct {
		from    WOStatus
		to      WOStatus
		allowed bool
	}{
		{WOStatusDraft, WOStatusPending, true},
		{WOStatusDraft, WOStatusInProgress, false},
		{WOStatusPending, WOStatusInProgress, true},
		{WOStatusPending, WOStatusOnHold, true},
		{WOStatusInProgress, WOStatusOnHold, true},
		{WOStatusInProgress, WOStatusCompleted, true},
		{WOStatusOnHold, WOStatusInProgress, true},
		{WOStatusOnHold, WOStatusCompleted, false},
		{WOStatusCompleted, WOStatusDelivered, true},
		{WOStatusCompleted, WOStatusInProgress, true},
		{WOStatusDelivered, WOStatusInProgress, false},
		{WOStatusCancelled, WOStatusPending, false},
	}

	for _, tt := range tests {
		assert.Equalf(t, tt.allowed, tt.from.CanTransitionTo(tt.to),
			"%s -> %s", tt.from, tt.to)
	}
}

func TestSuggestWOStatus(t *testing.T) {
	tests := []struct {
		name      string
		current   WOStatus
		completed float64
		total     float64
		expected  WOStatus
	}{
		{"no progress stays pending", WOStatusPending, 0, 100, WOStatusPending},
		{"partial progress is in progress", WOStatusPending, 40, 100, WOStatusInProgress},
		{"full completion", WOStatusInProgress, 100, 100, WOStatusCompleted},
		{"over completion still completed", WOStatusInProgress, 120, 100, WOStatusCompleted},
		{"progress rolled back to zero", WOStatusInProgress, 0, 100, WOStatusPending},
		{"on hold is preserved", WOStatusOnHold, 100, 100, WOStatusOnHold},
		{"delivered is preserved", WOStatusDelivered, 50, 100, WOStatusDelivered},
		{"cancelled is preserved", WOStatusCancelled, 100, 100, WOStatusCancelled},
		{"zero total falls back to pending", WOStatusInProgress, 10, 0, WOStatusPending},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SuggestWOStatus(tt.current, tt.completed, tt.total))
		})
	}
}

func TestCompletionPercent(t *testing.T) {
	wo := &WorkOrder{TotalQuantity: 200, CompletedQuantity: 50}
	assert.Equal(t, 25.0, wo.CompletionPercent())

	wo.CompletedQuantity = 250
	assert.Equal(t, 100.0, wo.CompletionPercent())

	wo.CompletedQuantity = -10
	assert.Equal(t, 0.0, wo.CompletionPercent())

	zero := &WorkOrder{}
	assert.Equal(t, 0.0, zero.CompletionPercent())
}
