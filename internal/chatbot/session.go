package chatbot

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"
)

// Step identifies which slot the quote dialogue is waiting on.
type Step string

const (
	StepName    Step = "name"
	StepPhone   Step = "phone"
	StepService Step = "service"
)

// LeadDraft accumulates the fields collected during a quote dialogue.
// Message keeps the utterance that triggered the dialogue.
type LeadDraft struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Service string `json:"service"`
	Message string `json:"message"`
}

// Session is the per-visitor dialogue state. A session exists only while a
// quote dialogue is in progress; completed or expired dialogues are removed.
type Session struct {
	Step      Step      `json:"step"`
	Draft     LeadDraft `json:"draft"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ErrSessionNotFound is returned when no dialogue is active for a session id.
var ErrSessionNotFound = errors.New("chatbot: session not found")

// SessionStore tracks active quote dialogues keyed by an opaque session id.
// Implementations must treat the id as a best-effort visitor identity, not a
// security boundary.
type SessionStore interface {
	Get(ctx context.Context, sessionID string) (*Session, error)
	Put(ctx context.Context, sessionID string, session *Session) error
	Delete(ctx context.Context, sessionID string) error
}

// phonePattern matches candidate phone substrings: digits with optional
// leading +, spaces, hyphens, dots and parentheses.
var phonePattern = regexp.MustCompile(`\+?\d[\d\s\-().]{5,}\d`)

// extractPhone pulls a phone-like substring out of free text. A candidate
// must contain at least 7 digits to count.
func extractPhone(text string) (string, bool) {
	for _, candidate := range phonePattern.FindAllString(text, -1) {
		digits := 0
		for _, r := range candidate {
			if r >= '0' && r <= '9' {
				digits++
			}
		}
		if digits >= 7 {
			return strings.TrimSpace(candidate), true
		}
	}
	return "", false
}
