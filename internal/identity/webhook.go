package identity

import (
	"alcyxob/learnhub/internal/domain"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// SignatureHeader carries the hex HMAC-SHA256 of the raw webhook body.
const SignatureHeader = "X-Webhook-Signature"

const (
	EventUserCreated = "user.created"
	EventUserUpdated = "user.updated"
	EventUserDeleted = "user.deleted"
)

// WebhookEvent is a user lifecycle notification from the provider.
type WebhookEvent struct {
	Type string      `json:"type" binding:"required"`
	Data WebhookUser `json:"data"`
}

type EmailAddress struct {
	EmailAddress string `json:"email_address"`
}

type WebhookUser struct {
	ID             string         `json:"id"`
	FirstName      string         `json:"first_name"`
	LastName       string         `json:"last_name"`
	EmailAddresses []EmailAddress `json:"email_addresses"`
	PublicMetadata struct {
		Role domain.Role `json:"role"`
	} `json:"public_metadata"`
}

// FullName joins first and last name.
func (u WebhookUser) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// PrimaryEmail returns the first listed address, lower-cased.
func (u WebhookUser) PrimaryEmail() string {
	if len(u.EmailAddresses) == 0 {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(u.EmailAddresses[0].EmailAddress))
}

// Sign returns the signature the provider sends for body.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature compares signature with the expected one in constant time.
func VerifySignature(secret string, body []byte, signature string) bool {
	if secret == "" || signature == "" {
		return false
	}
	got, err := hex.DecodeString(strings.TrimSpace(signature))
	if err != nil {
		return false
	}
	want, _ := hex.DecodeString(Sign(secret, body))
	return hmac.Equal(got, want)
}
