// Package jwtauth issues and verifies the optional bearer token that
// carries a premium-tier assertion from the external subscription system
// (spec §1 treats account storage and the subscription lifecycle as an
// out-of-scope collaborator; this package only ever reads a tier claim off
// a token someone else issued, or — for local testing — issues one itself).
package jwtauth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the JWT payload this service understands. UserID identifies
// the caller; Tier overrides whatever the client claims on join-queue, so
// a free user cannot self-upgrade by lying in the WebSocket payload.
type Claims struct {
	UserID string `json:"user_id"`
	Tier   string `json:"tier"`
	jwt.RegisteredClaims
}

// Issue signs a token for userID/tier, valid for ttl. Used by the demo
// login endpoint; a real deployment would issue these from the
// subscription service instead.
func Issue(secret, userID, tier string, ttl time.Duration) (string, error) {
	claims := Claims{
		UserID: userID,
		Tier:   tier,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// Verify parses and validates tokenString, returning its claims.
func Verify(secret, tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	return claims, nil
}
