package clients

import (
	"errors"
	"strings"
	"time"
)

var (
	// ErrInvalidName is returned when the name is missing
	ErrInvalidName = errors.New("name is required")

	// ErrInvalidEmail is returned when the email is missing
	ErrInvalidEmail = errors.New("email is required")

	// ErrClientNotFound is returned when a client record is not found
	ErrClientNotFound = errors.New("client not found")
)

// Client represents one contact-form submission.
type Client struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Service   string    `json:"service,omitempty"`
	Message   string    `json:"message,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateClientRequest carries the contact form fields.
type CreateClientRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Service string `json:"service"`
	Message string `json:"message"`
}

// Validate checks required fields.
func (r *CreateClientRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return ErrInvalidName
	}
	if strings.TrimSpace(r.Email) == "" {
		return ErrInvalidEmail
	}
	return nil
}
