// Package webhook authenticates and decodes GitHub webhook deliveries.
package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

const signaturePrefix = "sha256="

// Authenticator checks the X-Hub-Signature-256 header of a delivery.
type Authenticator struct {
	secret []byte
}

// NewAuthenticator returns an Authenticator for the app's webhook secret.
func NewAuthenticator(secret string) *Authenticator {
	return &Authenticator{secret: []byte(secret)}
}

// Verify reports whether signature is the HMAC-SHA256 of body under the shared secret.
// body must be the exact bytes received, before any decoding.
func (a *Authenticator) Verify(body []byte, signature string) bool {
	if !strings.HasPrefix(signature, signaturePrefix) {
		return false
	}
	got, err := hex.DecodeString(signature[len(signaturePrefix):])
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, a.secret)
	mac.Write(body)
	return hmac.Equal(got, mac.Sum(nil))
}

// Sign returns the signature header value GitHub would send for body.
func (a *Authenticator) Sign(body []byte) string {
	mac := hmac.New(sha256.New, a.secret)
	mac.Write(body)
	return signaturePrefix + hex.EncodeToString(mac.Sum(nil))
}
