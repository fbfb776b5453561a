package utils

import (
	"errors" // Error values
	"time"   // Time for token expiration

	"github.com/golang-jwt/jwt/v5" // JWT library
)

// SessionCookie is the cookie the signed session token travels in
const SessionCookie = "wallet_session"

// SessionTTL is how long a login stays valid
const SessionTTL = 24 * time.Hour

// ErrInvalidSession is returned for tokens that fail signature or claim checks
var ErrInvalidSession = errors.New("invalid session token")

// Claims identifies the logged in user
type Claims struct {
	UserID               uint   `json:"user_id"` // Custom claim for user ID
	MailID               string `json:"mail_id"` // Mail the user logged in with
	jwt.RegisteredClaims        // Standard JWT claims
}

// GenerateJWT creates a session token for a given user
func GenerateJWT(userID uint, mailID, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		MailID: mailID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)), // Token expires after ttl
			IssuedAt:  jwt.NewNumericDate(now),          // Issued at current time
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims) // Create token with claims
	return token.SignedString([]byte(secret))                  // Sign the token with the secret
}

// ParseJWT parses and validates a session token string
func ParseJWT(tokenStr, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (any, error) {
		return []byte(secret), nil // Return the secret key for validation
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, errors.Join(ErrInvalidSession, err)
	}
	// Validate token and extract claims
	if claims, ok := token.Claims.(*Claims); ok && token.Valid && claims.UserID != 0 {
		return claims, nil
	}
	return nil, ErrInvalidSession
}
