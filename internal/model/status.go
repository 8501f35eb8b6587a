package model

import "strings"

// Status is the lifecycle state shared by orders and events. Ids are fixed
// and match the persisted status_id column.
type Status int

const (
	StatusPending   Status = 1
	StatusConfirmed Status = 2
	StatusClosed    Status = 3
	StatusCancelled Status = 4
)

var statusLabels = map[Status]string{
	StatusPending:   "pending",
	StatusConfirmed: "confirmed",
	StatusClosed:    "closed",
	StatusCancelled: "cancelled",
}

var statusByLabel = map[string]Status{
	"pending":   StatusPending,
	"confirmed": StatusConfirmed,
	"closed":    StatusClosed,
	"cancelled": StatusCancelled,
}

func (s Status) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

func (s Status) Label() string {
	return statusLabels[s]
}

func (s Status) String() string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return "unknown"
}

// ParseStatus maps a label to its canonical status, case-insensitively.
func ParseStatus(label string) (Status, bool) {
	s, ok := statusByLabel[strings.ToLower(strings.TrimSpace(label))]
	return s, ok
}

// Orders close from confirmed but cannot be cancelled once confirmed; events
// can still be called off after confirmation, which is what triggers the
// stock credit.
var orderTransitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusClosed},
	StatusClosed:    {},
	StatusCancelled: {},
}

var eventTransitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusClosed, StatusCancelled},
	StatusClosed:    {},
	StatusCancelled: {},
}

// CanTransitionOrder reports whether an order may move from s to target.
func (s Status) CanTransitionOrder(target Status) bool {
	return containsStatus(orderTransitions[s], target)
}

// CanTransitionEvent reports whether an event may move from s to target.
func (s Status) CanTransitionEvent(target Status) bool {
	return containsStatus(eventTransitions[s], target)
}

func containsStatus(allowed []Status, target Status) bool {
	for _, s := range allowed {
		if s == target {
			return true
		}
	}
	return false
}
