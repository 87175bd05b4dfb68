package application

import "regexp"

// NameMaxLen is the maximum accepted length of a user name in bytes.
const NameMaxLen = 100

// emailPattern is a deliberately loose address check: one "@" with
// non-whitespace on both sides and a dotted domain.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidateUserInput checks the structural constraints on a (normalized)
// input and returns a ValidationError carrying every violation, or nil.
// It is pure and performs no I/O.
func ValidateUserInput(in UserInput) *ValidationError {
	var violations []FieldViolation

	if in.Name == "" {
		violations = append(violations, FieldViolation{Field: "name", Reason: "must not be empty"})
	} else if len(in.Name) > NameMaxLen {
		violations = append(violations, FieldViolation{Field: "name", Reason: "must be at most 100 characters"})
	}

	if in.Email == "" {
		violations = append(violations, FieldViolation{Field: "email", Reason: "must not be empty"})
	} else if !emailPattern.MatchString(in.Email) {
		violations = append(violations, FieldViolation{Field: "email", Reason: "must be a valid email address"})
	}

	if len(violations) > 0 {
		return &ValidationError{Violations: violations}
	}
	return nil
}
