package student

import (
	"errors"
	"strings"
)

// Domain errors
var (
	ErrEmptyName  = errors.New("student name cannot be empty")
	ErrEmptyEmail = errors.New("student email cannot be empty")
)

// Student is a registered student. Students are created from seed data only
// and are read-only afterwards.
// Password is stored as given and is never returned by any read path.
type Student struct {
	ID       int64
	Name     string
	Email    string
	Password string
}

// Summary is the public projection of a Student.
type Summary struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Validate checks if the Student has valid data.
// PRE: Student struct is populated
// POST: Returns nil if valid, error otherwise
func (s *Student) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return ErrEmptyName
	}
	if strings.TrimSpace(s.Email) == "" {
		return ErrEmptyEmail
	}
	return nil
}

// Summary strips the password.
func (s Student) Summary() Summary {
	return Summary{ID: s.ID, Name: s.Name, Email: s.Email}
}
