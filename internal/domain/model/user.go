package model

import (
	"fmt"
	"strings"

	"physical-ai-textbook/internal/domain"
)

// ExperienceLevel is the self-reported skill level collected at signup.
type ExperienceLevel string

const (
	ExperienceBeginner     ExperienceLevel = "beginner"
	ExperienceIntermediate ExperienceLevel = "intermediate"
	ExperienceAdvanced     ExperienceLevel = "advanced"
)

// PasswordMinLengthHint is shown next to the password field. It is not enforced.
const PasswordMinLengthHint = 6

func (l ExperienceLevel) Valid() bool {
	switch l {
	case ExperienceBeginner, ExperienceIntermediate, ExperienceAdvanced:
		return true
	}
	return false
}

// ParseExperienceLevel accepts any casing and surrounding whitespace.
func ParseExperienceLevel(s string) (ExperienceLevel, error) {
	l := ExperienceLevel(strings.ToLower(strings.TrimSpace(s)))
	if !l.Valid() {
		return "", fmt.Errorf("experience level %q: %w", s, domain.ErrInvalidArgument)
	}
	return l, nil
}

// User is the identity record returned by the backend.
type User struct {
	ID                 int64           `json:"id"`
	Email              string          `json:"email"`
	Name               string          `json:"name"`
	SoftwareExperience ExperienceLevel `json:"software_experience"`
	HardwareExperience ExperienceLevel `json:"hardware_experience"`
}

func (u *User) IsZero() bool { return u == nil || (u.ID == 0 && u.Email == "") }

// SignupProfile carries everything needed to create an account.
type SignupProfile struct {
	Email              string          `json:"email" yaml:"email"`
	Name               string          `json:"name" yaml:"name"`
	Password           string          `json:"password" yaml:"password"`
	SoftwareExperience ExperienceLevel `json:"software_experience" yaml:"software_experience"`
	HardwareExperience ExperienceLevel `json:"hardware_experience" yaml:"hardware_experience"`
}

// ValidationError names the first signup field that failed validation.
type ValidationError struct {
	Field string
	Value string
}

func (e *ValidationError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("%s %q: %v", e.Field, e.Value, domain.ErrInvalidArgument)
	}
	return fmt.Sprintf("%s is required: %v", e.Field, domain.ErrInvalidArgument)
}

func (e *ValidationError) Unwrap() error { return domain.ErrInvalidArgument }

// Validate checks presence of required fields and the experience enums.
// Password strength is deliberately not checked here.
func (p SignupProfile) Validate() error {
	switch {
	case strings.TrimSpace(p.Email) == "":
		return &ValidationError{Field: "email"}
	case strings.TrimSpace(p.Name) == "":
		return &ValidationError{Field: "name"}
	case p.Password == "":
		return &ValidationError{Field: "password"}
	case !p.SoftwareExperience.Valid():
		return &ValidationError{Field: "software_experience", Value: string(p.SoftwareExperience)}
	case !p.HardwareExperience.Valid():
		return &ValidationError{Field: "hardware_experience", Value: string(p.HardwareExperience)}
	}
	return nil
}
