// Package auth holds the client session. The order service issues the token;
// the client never verifies the signature, it only decodes the claims it
// needs to default and scope requests. The server remains the authority on
// every call.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Common errors
var (
	ErrInvalidToken   = errors.New("invalid token")
	ErrExpiredToken   = errors.New("token has expired")
	ErrMissingUserID  = errors.New("missing userId in claims")
	ErrMissingCompany = errors.New("missing companyId in claims")
)

// Claims represents the token claims the client reads
type Claims struct {
	jwt.RegisteredClaims
	UserID    int64  `json:"userId"`
	CompanyID int64  `json:"companyId"`
	Username  string `json:"username,omitempty"`
}

// Session is an authenticated client session. It implements the identity and
// token source ports of the application and api packages.
type Session struct {
	raw    string
	claims *Claims
}

// NewSession decodes the claims of a bearer token. The signature is not
// checked here; only expiry and the presence of the identity claims are.
func NewSession(token string) (*Session, error) {
	claims := &Claims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return nil, ErrInvalidToken
	}

	if claims.ExpiresAt != nil && time.Now().After(claims.ExpiresAt.Time) {
		return nil, ErrExpiredToken
	}
	if claims.UserID == 0 {
		return nil, ErrMissingUserID
	}
	if claims.CompanyID == 0 {
		return nil, ErrMissingCompany
	}

	return &Session{raw: token, claims: claims}, nil
}

// Token returns the raw bearer token for the Authorization header
func (s *Session) Token() string {
	return s.raw
}

// UserID returns the authenticated user's ID
func (s *Session) UserID() int64 {
	return s.claims.UserID
}

// CompanyID returns the company the session acts for
func (s *Session) CompanyID() int64 {
	return s.claims.CompanyID
}

// Username returns the display name claim, if present
func (s *Session) Username() string {
	return s.claims.Username
}

// ExpiresAt returns the token expiry, or the zero time when the token does
// not carry one
func (s *Session) ExpiresAt() time.Time {
	if s.claims.ExpiresAt == nil {
		return time.Time{}
	}
	return s.claims.ExpiresAt.Time
}
