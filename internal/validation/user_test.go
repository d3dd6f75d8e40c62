package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{"valid institutional email", "alice@du.ac.bd", false},
		{"subdomain local part", "alice.rahman@du.ac.bd", false},
		{"wrong domain", "alice@gmail.com", true},
		{"domain as substring only", "alice@notdu.ac.bd.evil.com", true},
		{"missing at sign", "alice.du.ac.bd", true},
		{"empty", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidatePhone(t *testing.T) {
	tests := []struct {
		name    string
		phone   string
		wantErr bool
	}{
		{"local format", "01712345678", false},
		{"country prefix", "+8801712345678", false},
		{"bad operator digit", "01212345678", true},
		{"too short", "0171234567", true},
		{"too long", "017123456789", true},
		{"letters", "017abc45678", true},
		{"empty", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePhone(tt.phone)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidatePassword(t *testing.T) {
	assert.Error(t, ValidatePassword("short"))
	assert.NoError(t, ValidatePassword("secret1"))
	assert.NoError(t, ValidatePassword("exactly"))
}

func TestValidateRegistration(t *testing.T) {
	valid := RegistrationInput{
		Name:            "Alice Rahman",
		Email:           "alice@du.ac.bd",
		Phone:           "01712345678",
		Year:            "3rd",
		Hall:            "Rokeya Hall",
		Department:      "Computer Science and Engineering",
		Password:        "secret1",
		ConfirmPassword: "secret1",
	}

	t.Run("valid input has no errors", func(t *testing.T) {
		assert.Empty(t, ValidateRegistration(valid))
	})

	t.Run("every failing field is reported", func(t *testing.T) {
		errs := ValidateRegistration(RegistrationInput{})
		// name, email, phone, year, hall, department, password
		assert.Len(t, errs, 7)
	})

	t.Run("password mismatch", func(t *testing.T) {
		in := valid
		in.ConfirmPassword = "different"
		errs := ValidateRegistration(in)
		assert.Equal(t, []string{"Passwords do not match"}, errs)
	})

	t.Run("non-institutional email", func(t *testing.T) {
		in := valid
		in.Email = "alice@gmail.com"
		errs := ValidateRegistration(in)
		assert.Len(t, errs, 1)
		assert.Contains(t, errs[0], "du.ac.bd")
	})
}
