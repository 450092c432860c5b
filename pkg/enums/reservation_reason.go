package enums

import "fmt"

// ReservationReason records why a reservation left the RESERVED state.
type ReservationReason string

const (
	ReservationReasonPaymentConfirmed ReservationReason = "PAYMENT_CONFIRMED"
	ReservationReasonPaymentFailed    ReservationReason = "PAYMENT_FAILED"
	ReservationReasonTimeout          ReservationReason = "TIMEOUT"
	ReservationReasonCancelled        ReservationReason = "CANCELLED"
)

var validReservationReasons = []ReservationReason{
	ReservationReasonPaymentConfirmed,
	ReservationReasonPaymentFailed,
	ReservationReasonTimeout,
	ReservationReasonCancelled,
}

// String implements fmt.Stringer.
func (r ReservationReason) String() string {
	return string(r)
}

// IsValid reports whether the value is a known ReservationReason.
func (r ReservationReason) IsValid() bool {
	for _, candidate := range validReservationReasons {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseReservationReason converts raw input into a ReservationReason.
func ParseReservationReason(value string) (ReservationReason, error) {
	for _, candidate := range validReservationReasons {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid reservation reason %q", value)
}
