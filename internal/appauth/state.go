package appauth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	custom_errors "commit-lens/internal/errors"
)

const (
	// StateTTL bounds how long a user may take to finish the GitHub install flow.
	StateTTL = 10 * time.Minute

	tokenTypeState   = "install_state"
	tokenTypeSession = "session"
)

// UserClaims binds a token to a local user.
type UserClaims struct {
	UserID string `json:"userId"`
	Type   string `json:"typ,omitempty"`
	jwt.RegisteredClaims
}

// StateSigner signs and verifies HS256 tokens that identify a local user: the
// install state round-tripped through GitHub and the dashboard session cookie.
type StateSigner struct {
	secret []byte
	now    func() time.Time
}

// NewStateSigner creates a signer for the given shared secret.
func NewStateSigner(secret string) *StateSigner {
	return &StateSigner{secret: []byte(secret), now: time.Now}
}

// Sign mints an install state token for userID.
func (s *StateSigner) Sign(userID string) (string, error) {
	return s.sign(userID, tokenTypeState, StateTTL)
}

// SignSession mints a session token. Only the external login system and tests issue these.
func (s *StateSigner) SignSession(userID string, ttl time.Duration) (string, error) {
	return s.sign(userID, tokenTypeSession, ttl)
}

func (s *StateSigner) sign(userID, typ string, ttl time.Duration) (string, error) {
	if userID == "" {
		return "", errors.New("user id is required")
	}
	now := s.now()
	claims := UserClaims{
		UserID: userID,
		Type:   typ,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", &custom_errors.SigningError{Err: err}
	}
	return signed, nil
}

// Verify checks an install state token and returns the user it was issued for.
// Any failure is reported as ErrInvalidState.
func (s *StateSigner) Verify(token string) (string, error) {
	return s.verify(token, tokenTypeState)
}

// VerifySession checks a session token and returns its user id.
func (s *StateSigner) VerifySession(token string) (string, error) {
	return s.verify(token, tokenTypeSession)
}

func (s *StateSigner) verify(token, typ string) (string, error) {
	var claims UserClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", custom_errors.ErrInvalidState, err)
	}
	if claims.Type != typ || claims.UserID == "" {
		return "", fmt.Errorf("%w: wrong token type or missing user", custom_errors.ErrInvalidState)
	}
	return claims.UserID, nil
}
