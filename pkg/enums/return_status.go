package enums

import "fmt"

// ReturnStatus is the lifecycle state of a return or exchange request.
type ReturnStatus string

const (
	ReturnStatusPending    ReturnStatus = "PENDING"
	ReturnStatusApproved   ReturnStatus = "APPROVED"
	ReturnStatusRejected   ReturnStatus = "REJECTED"
	ReturnStatusInTransit  ReturnStatus = "IN_TRANSIT"
	ReturnStatusReceived   ReturnStatus = "RECEIVED"
	ReturnStatusInspecting ReturnStatus = "INSPECTING"
	ReturnStatusCompleted  ReturnStatus = "COMPLETED"
	ReturnStatusCancelled  ReturnStatus = "CANCELLED"
)

var validReturnStatuses = []ReturnStatus{
	ReturnStatusPending,
	ReturnStatusApproved,
	ReturnStatusRejected,
	ReturnStatusInTransit,
	ReturnStatusReceived,
	ReturnStatusInspecting,
	ReturnStatusCompleted,
	ReturnStatusCancelled,
}

// String implements fmt.Stringer.
func (r ReturnStatus) String() string {
	return string(r)
}

// IsValid reports whether the value is a known ReturnStatus.
func (r ReturnStatus) IsValid() bool {
	for _, candidate := range validReturnStatuses {
		if candidate == r {
			return true
		}
	}
	return false
}

// IsActive reports whether the request still blocks a new return for
// the same order.
func (r ReturnStatus) IsActive() bool {
	switch r {
	case ReturnStatusRejected, ReturnStatusCompleted, ReturnStatusCancelled:
		return false
	}
	return true
}

// IsTerminal reports whether the request admits no further processing.
func (r ReturnStatus) IsTerminal() bool {
	switch r {
	case ReturnStatusRejected, ReturnStatusCompleted, ReturnStatusCancelled:
		return true
	}
	return false
}

// ParseReturnStatus converts raw input into a ReturnStatus.
func ParseReturnStatus(value string) (ReturnStatus, error) {
	for _, candidate := range validReturnStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid return status %q", value)
}
