package types

import "fmt"

// Urgency represents how urgently a user message needs handling
type Urgency string

const (
	UrgencyLow      Urgency = "low"
	UrgencyMedium   Urgency = "medium"
	UrgencyHigh     Urgency = "high"
	UrgencyCritical Urgency = "critical"
)

// AllUrgencies returns all valid urgency levels
func AllUrgencies() []Urgency {
	return []Urgency{
		UrgencyLow,
		UrgencyMedium,
		UrgencyHigh,
		UrgencyCritical,
	}
}

// IsValid checks if the urgency level is valid
func (u Urgency) IsValid() bool {
	switch u {
	case UrgencyLow, UrgencyMedium, UrgencyHigh, UrgencyCritical:
		return true
	default:
		return false
	}
}

// Normalize returns the urgency, treating anything invalid as UrgencyMedium
func (u Urgency) Normalize() Urgency {
	if !u.IsValid() {
		return UrgencyMedium
	}
	return u
}

func (u Urgency) rank() int {
	switch u {
	case UrgencyLow:
		return 0
	case UrgencyMedium:
		return 1
	case UrgencyHigh:
		return 2
	case UrgencyCritical:
		return 3
	default:
		return 1
	}
}

// AtLeast reports whether u is at least as urgent as other
func (u Urgency) AtLeast(other Urgency) bool {
	return u.rank() >= other.rank()
}

// String returns the string representation of the urgency
func (u Urgency) String() string {
	return string(u)
}

// ParseUrgency parses a string into an Urgency
func ParseUrgency(s string) (Urgency, error) {
	urgency := Urgency(s)
	if !urgency.IsValid() {
		return "", fmt.Errorf("invalid urgency: %s", s)
	}
	return urgency, nil
}
