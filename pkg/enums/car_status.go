package enums

import "fmt"

// CarStatus is the sales state of a listing. Any status may follow any other.
type CarStatus string

const (
	CarStatusAvailable   CarStatus = "AVAILABLE"
	CarStatusUnavailable CarStatus = "UNAVAILABLE"
	CarStatusSold        CarStatus = "SOLD"
)

var validCarStatuses = []CarStatus{
	CarStatusAvailable,
	CarStatusUnavailable,
	CarStatusSold,
}

// String implements fmt.Stringer.
func (s CarStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known CarStatus.
func (s CarStatus) IsValid() bool {
	for _, candidate := range validCarStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseCarStatus converts raw input into a CarStatus.
func ParseCarStatus(value string) (CarStatus, error) {
	for _, candidate := range validCarStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid car status %q", value)
}
