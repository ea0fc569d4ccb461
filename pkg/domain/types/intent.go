package types

import "fmt"

// IntentCategory represents the classified category of a user message
type IntentCategory string

const (
	IntentAttendance IntentCategory = "ATTENDANCE"
	IntentAcademic   IntentCategory = "ACADEMIC"
	IntentEnrollment IntentCategory = "ENROLLMENT"
	IntentSchedule   IntentCategory = "SCHEDULE"
	IntentPolicy     IntentCategory = "POLICY"
	IntentFacilities IntentCategory = "FACILITIES"
	IntentComplaint  IntentCategory = "COMPLAINT"
	IntentEmergency  IntentCategory = "EMERGENCY"
	IntentGeneral    IntentCategory = "GENERAL"
	IntentUnknown    IntentCategory = "UNKNOWN"
)

// AllIntentCategories returns all valid intent categories
func AllIntentCategories() []IntentCategory {
	return []IntentCategory{
		IntentAttendance,
		IntentAcademic,
		IntentEnrollment,
		IntentSchedule,
		IntentPolicy,
		IntentFacilities,
		IntentComplaint,
		IntentEmergency,
		IntentGeneral,
		IntentUnknown,
	}
}

// IsValid checks if the intent category is valid
func (c IntentCategory) IsValid() bool {
	switch c {
	case IntentAttendance,
		IntentAcademic,
		IntentEnrollment,
		IntentSchedule,
		IntentPolicy,
		IntentFacilities,
		IntentComplaint,
		IntentEmergency,
		IntentGeneral,
		IntentUnknown:
		return true
	default:
		return false
	}
}

// Normalize returns the category, mapping anything invalid or empty to IntentUnknown
func (c IntentCategory) Normalize() IntentCategory {
	if !c.IsValid() {
		return IntentUnknown
	}
	return c
}

// String returns the string representation of the intent category
func (c IntentCategory) String() string {
	return string(c)
}

// ParseIntentCategory parses a string into an IntentCategory
func ParseIntentCategory(s string) (IntentCategory, error) {
	category := IntentCategory(s)
	if !category.IsValid() {
		return "", fmt.Errorf("invalid intent category: %s", s)
	}
	return category, nil
}
