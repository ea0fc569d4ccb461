package types

// ViolationType represents the kind of safety violation detected in text
type ViolationType string

const (
	ViolationPII                    ViolationType = "pii"
	ViolationHarmfulContent         ViolationType = "harmful_content"
	ViolationBlockedTerm            ViolationType = "blocked_term"
	ViolationSensitiveTerm          ViolationType = "sensitive_term"
	ViolationUnauthorizedDisclosure ViolationType = "unauthorized_disclosure"
	ViolationExcessiveDisclosure    ViolationType = "excessive_disclosure"
)

// String returns the string representation of the violation type
func (v ViolationType) String() string {
	return string(v)
}

// Severity represents the severity of a safety violation
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// String returns the string representation of the severity
func (s Severity) String() string {
	return string(s)
}

// PIIType represents the kind of personally identifiable information matched
type PIIType string

const (
	PIISSN         PIIType = "ssn"
	PIIPhone       PIIType = "phone"
	PIIEmail       PIIType = "email"
	PIIAddress     PIIType = "address"
	PIIDateOfBirth PIIType = "date_of_birth"
	PIIStudentID   PIIType = "student_id"
	PIICreditCard  PIIType = "credit_card"
	PIIPassword    PIIType = "password"
)

// String returns the string representation of the PII type
func (p PIIType) String() string {
	return string(p)
}
