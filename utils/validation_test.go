package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signupRequest struct {
	Name     string `json:"name" validate:"required,personname"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,maxbytes=72"`
	Phone    string `json:"phoneNumber" validate:"omitempty,e164"`
	Birthday string `json:"birthday" validate:"omitempty,datetime=2006-01-02"`
	Price    int64  `json:"price" validate:"gte=0"`
}

func validSignup() signupRequest {
	return signupRequest{
		Name:     "Ana María",
		Email:    "ana@example.com",
		Password: "secret123",
		Phone:    "+573001234567",
		Birthday: "1990-04-01",
	}
}

func TestValidateStruct(t *testing.T) {
	t.Run("valid struct", func(t *testing.T) {
		s := validSignup()
		assert.NoError(t, ValidateStruct(&s))
	})

	tests := []struct {
		name      string
		mutate    func(*signupRequest)
		wantField string
		wantText  string
	}{
		{"missing email", func(s *signupRequest) { s.Email = "" }, "email", "required"},
		{"invalid email", func(s *signupRequest) { s.Email = "not-an-email" }, "email", "valid email"},
		{"short password", func(s *signupRequest) { s.Password = "short" }, "password", "at least 8"},
		{"password over 72 bytes", func(s *signupRequest) { s.Password = strings.Repeat("é", 37) }, "password", "at most 72 bytes"},
		{"digits in name", func(s *signupRequest) { s.Name = "R2D2" }, "name", "letters"},
		{"trailing hyphen in name", func(s *signupRequest) { s.Name = "Ana-" }, "name", "letters"},
		{"local phone number", func(s *signupRequest) { s.Phone = "3001234567" }, "phoneNumber", "international"},
		{"wrong date format", func(s *signupRequest) { s.Birthday = "01/04/1990" }, "birthday", "2006-01-02"},
		{"negative price", func(s *signupRequest) { s.Price = -1 }, "price", "greater than or equal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validSignup()
			tt.mutate(&s)

			err := ValidateStruct(&s)
			require.Error(t, err)
			assert.True(t, IsValidationError(err))

			fields := GetValidationFields(err)
			require.Contains(t, fields, tt.wantField)
			assert.Contains(t, fields[tt.wantField], tt.wantText)
		})
	}
}

func TestPersonNames(t *testing.T) {
	for _, name := range []string{"Ada", "Mary Ann", "O'Brien", "Jean-Luc", "Zoë", "Łukasz"} {
		assert.True(t, personNameRegex.MatchString(name), name)
	}
	for _, name := range []string{"", " Ada", "Ada  Lovelace", "Ada1", "<script>"} {
		assert.False(t, personNameRegex.MatchString(name), name)
	}
}

func TestValidationError(t *testing.T) {
	s := signupRequest{}
	err := ValidateStruct(&s)
	require.Error(t, err)

	assert.Equal(t, "Validation failed", err.Error())

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	details := validationErr.Details()
	assert.Equal(t, "email is required", details["email"])
	assert.Equal(t, "name is required", details["name"])
}

func TestGetValidationFields_OtherErrors(t *testing.T) {
	assert.Nil(t, GetValidationFields(assert.AnError))
	assert.False(t, IsValidationError(assert.AnError))
}
