package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseStatus(t *testing.T) {
	s, ok := ParseStatus("  Confirmed ")
	assert.True(t, ok)
	assert.Equal(t, StatusConfirmed, s)

	_, ok = ParseStatus("delivered")
	assert.False(t, ok)
}

func TestStatusLabels(t *testing.T) {
	assert.Equal(t, "pending", StatusPending.Label())
	assert.Equal(t, "cancelled", StatusCancelled.String())
	assert.Equal(t, "unknown", Status(99).String())
	assert.False(t, Status(0).Valid())
}

func TestOrderTransitions(t *testing.T) {
	cases := []struct {
		from, to Status
		allowed  bool
	}{
		{StatusPending, StatusConfirmed, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusClosed, false},
		{StatusConfirmed, StatusClosed, true},
		// Orders cannot be cancelled once confirmed.
		{StatusConfirmed, StatusCancelled, false},
		{StatusClosed, StatusPending, false},
		{StatusCancelled, StatusConfirmed, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.allowed, tc.from.CanTransitionOrder(tc.to),
			"order %s -> %s", tc.from, tc.to)
	}
}

func TestEventTransitions(t *testing.T) {
	cases := []struct {
		from, to Status
		allowed  bool
	}{
		{StatusPending, StatusConfirmed, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusClosed, false},
		{StatusConfirmed, StatusClosed, true},
		// Events can still be called off after confirmation.
		{StatusConfirmed, StatusCancelled, true},
		{StatusClosed, StatusConfirmed, false},
		{StatusCancelled, StatusPending, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.allowed, tc.from.CanTransitionEvent(tc.to),
			"event %s -> %s", tc.from, tc.to)
	}
}
