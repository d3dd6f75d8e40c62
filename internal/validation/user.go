// Package validation provides input validation for request bodies.
package validation

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	// Bangladeshi mobile number, with or without the +880 country prefix.
	phoneRegex = regexp.MustCompile(`^(\+880|0)1[3-9]\d{8}$`)
)

// InstitutionalDomain is the only email domain accepted for registration.
const InstitutionalDomain = "du.ac.bd"

// RegistrationInput is the registration request body.
type RegistrationInput struct {
	Name            string
	Email           string
	Phone           string
	Year            string
	Hall            string
	Department      string
	Password        string
	ConfirmPassword string
}

// ValidateEmail checks format and restricts to the institutional domain.
func ValidateEmail(email string) error {
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format")
	}
	if len(email) > 254 {
		return fmt.Errorf("email must not exceed 254 characters")
	}
	if !strings.HasSuffix(strings.ToLower(email), "@"+InstitutionalDomain) {
		return fmt.Errorf("only %s email addresses are allowed", InstitutionalDomain)
	}
	return nil
}

// ValidatePhone checks the local 11-digit mobile format.
func ValidatePhone(phone string) error {
	if !phoneRegex.MatchString(phone) {
		return fmt.Errorf("invalid Bangladeshi phone number")
	}
	return nil
}

// ValidatePassword checks minimum password requirements.
func ValidatePassword(password string) error {
	if len(password) < 6 {
		return fmt.Errorf("password must be at least 6 characters")
	}
	if len(password) > 128 {
		return fmt.Errorf("password must not exceed 128 characters")
	}
	return nil
}

// ValidateRegistration checks every registration field independently and
// returns the full list of failures.
func ValidateRegistration(in RegistrationInput) []string {
	var errs []string

	if len(strings.TrimSpace(in.Name)) < 2 {
		errs = append(errs, "Name must be at least 2 characters")
	}
	if err := ValidateEmail(in.Email); err != nil {
		errs = append(errs, err.Error())
	}
	if err := ValidatePhone(in.Phone); err != nil {
		errs = append(errs, err.Error())
	}
	if strings.TrimSpace(in.Year) == "" {
		errs = append(errs, "Year is required")
	}
	if len(strings.TrimSpace(in.Hall)) < 2 {
		errs = append(errs, "Hall name is required")
	}
	if len(strings.TrimSpace(in.Department)) < 2 {
		errs = append(errs, "Department is required")
	}
	if err := ValidatePassword(in.Password); err != nil {
		errs = append(errs, err.Error())
	}
	if in.Password != in.ConfirmPassword {
		errs = append(errs, "Passwords do not match")
	}

	return errs
}
