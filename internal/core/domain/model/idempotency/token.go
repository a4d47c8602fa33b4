package idempotency

import (
	"regexp"

	"orderflow/internal/pkg/errs"
)

const (
	MinTokenLength = 8
	MaxTokenLength = 64
)

var tokenPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Token is a validated client-supplied idempotency token.
type Token string

// ParseToken checks length and charset before anything touches storage.
func ParseToken(raw string) (Token, error) {
	switch {
	case raw == "":
		return "", errs.NewBadTokenError("token is empty")
	case len(raw) < MinTokenLength:
		return "", errs.NewBadTokenError("token is shorter than 8 characters")
	case len(raw) > MaxTokenLength:
		return "", errs.NewBadTokenError("token is longer than 64 characters")
	case !tokenPattern.MatchString(raw):
		return "", errs.NewBadTokenError("token may only contain letters, digits, '-' and '_'")
	}
	return Token(raw), nil
}

func (t Token) String() string {
	return string(t)
}
