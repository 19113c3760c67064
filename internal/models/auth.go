package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token type discriminators. Reviewer tokens are structurally distinct from
// user tokens and are only honored by the review endpoints.
const (
	TokenTypeUser     = "user"
	TokenTypeReviewer = "reviewer"
)

// JWTClaims is the payload carried by user access tokens.
type JWTClaims struct {
	UserID string   `json:"user_id"`
	Role   UserRole `json:"role"`
	Email  string   `json:"email"`
	Type   string   `json:"type"`
	jwt.RegisteredClaims
}

// ReviewerClaims is the payload carried by phase-scoped reviewer tokens.
type ReviewerClaims struct {
	Username string         `json:"username"`
	Phase    ManifestoPhase `json:"phase"`
	Type     string         `json:"type"`
	jwt.RegisteredClaims
}

// UserInfo describes the authenticated user in responses.
type UserInfo struct {
	ID         string   `json:"id"`
	Email      string   `json:"email"`
	Name       string   `json:"name"`
	RollNo     string   `json:"roll_no"`
	Department string   `json:"department"`
	Role       UserRole `json:"role"`
}

// LoginResponse returns the issued token and user info.
type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresIn   int64     `json:"expires_in"`
	User        UserInfo  `json:"user"`
	IssuedAt    time.Time `json:"issued_at"`
}

// ReviewerLoginResponse returns the phase-scoped reviewer token.
type ReviewerLoginResponse struct {
	AccessToken string         `json:"access_token"`
	ExpiresIn   int64          `json:"expires_in"`
	Username    string         `json:"username"`
	Phase       ManifestoPhase `json:"phase"`
}
