package validation

import (
	"fmt"
	"regexp"
	"strings"

	"eventsignup/internal/models"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Grade bounds: -1 is Pre-K, 6 is the highest grade the fee rules model
const (
	MinGrade = -1
	MaxGrade = 6
)

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateEmail checks if an email address is valid
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return ValidationError{Field: "email", Message: "email is required"}
	}
	if !emailRegex.MatchString(email) {
		return ValidationError{Field: "email", Message: "invalid email format"}
	}
	return nil
}

// ValidatePerson checks the fields of a person submitted for registration
func ValidatePerson(p *models.Person) error {
	if strings.TrimSpace(p.FirstName) == "" {
		return ValidationError{Field: "firstName", Message: "first name is required"}
	}
	if strings.TrimSpace(p.LastName) == "" {
		return ValidationError{Field: "lastName", Message: "last name is required"}
	}
	if p.Gender != models.GenderMale && p.Gender != models.GenderFemale {
		return ValidationError{Field: "gender", Message: "gender must be M or F"}
	}
	if p.Grade != nil && (*p.Grade < MinGrade || *p.Grade > MaxGrade) {
		return ValidationError{Field: "grade", Message: fmt.Sprintf("grade must be between %d and %d", MinGrade, MaxGrade)}
	}
	if p.EmailAddress != "" {
		if err := ValidateEmail(p.EmailAddress); err != nil {
			return err
		}
	}
	return nil
}

// ValidateZip checks a 5-digit zip code
func ValidateZip(zip string) error {
	zip = strings.TrimSpace(zip)
	if len(zip) != 5 {
		return ValidationError{Field: "zip", Message: "zip must be 5 digits"}
	}
	for _, c := range zip {
		if c < '0' || c > '9' {
			return ValidationError{Field: "zip", Message: "zip must be 5 digits"}
		}
	}
	return nil
}
