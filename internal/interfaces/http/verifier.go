package http

import (
	"encoding/json"
	"fmt"
)

// Verifier checks the verification token Lark attaches to webhook payloads
type Verifier struct {
	verifyToken string
}

// NewVerifier creates a new webhook verifier
func NewVerifier(verifyToken string) *Verifier {
	return &Verifier{verifyToken: verifyToken}
}

// VerifyChallenge handles the initial webhook challenge verification
func (v *Verifier) VerifyChallenge(body []byte) (string, error) {
	var challenge struct {
		Challenge string `json:"challenge"`
		Token     string `json:"token"`
		Type      string `json:"type"`
	}

	if err := json.Unmarshal(body, &challenge); err != nil {
		return "", fmt.Errorf("failed to unmarshal challenge: %w", err)
	}

	if challenge.Type != "url_verification" {
		return "", fmt.Errorf("invalid challenge type: %s", challenge.Type)
	}

	if !v.VerifyToken(challenge.Token) {
		return "", fmt.Errorf("invalid verification token")
	}

	return challenge.Challenge, nil
}

// VerifyToken checks a payload token against the configured verification token
func (v *Verifier) VerifyToken(token string) bool {
	if v.verifyToken == "" {
		// Verification disabled when no token configured
		return true
	}
	return token == v.verifyToken
}
