package appauth

import (
	"crypto/rsa"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	custom_errors "commit-lens/internal/errors"
	"commit-lens/internal/model"
)

// AssertionTTL is the lifetime of an app assertion. GitHub rejects anything longer than ten minutes.
const AssertionTTL = 10 * time.Minute

// Issuer mints app assertions (GitHub App JWTs).
type Issuer struct {
	appID string
	key   *rsa.PrivateKey
	now   func() time.Time
}

// NewIssuer normalizes and imports the credential's private key.
func NewIssuer(cred model.AppCredential) (*Issuer, error) {
	normalized, err := NormalizePrivateKey(cred.PrivateKeyPEM)
	if err != nil {
		return nil, err
	}
	key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(normalized))
	if err != nil {
		return nil, &custom_errors.SigningError{Err: err}
	}
	return &Issuer{
		appID: strconv.FormatInt(cred.AppID, 10),
		key:   key,
		now:   time.Now,
	}, nil
}

// Mint returns a freshly signed RS256 assertion. Assertions are never cached.
func (i *Issuer) Mint() (string, error) {
	now := i.now()
	claims := jwt.RegisteredClaims{
		Issuer:    i.appID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(AssertionTTL)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(i.key)
	if err != nil {
		return "", &custom_errors.SigningError{Err: err}
	}
	return signed, nil
}
