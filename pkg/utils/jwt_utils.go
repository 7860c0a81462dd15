package utils

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// jwtSecretKey verifies actor tokens issued by the upstream identity service.
// IMPORTANT: In a production environment, this key should be strong and come from a secure configuration (e.g., environment variable).
var jwtSecretKey = []byte(Getenv("JWT_SECRET", "dev-only-tooltrack-actor-key"))

// Claims carries the actor identity attached to mutating operations.
// Authentication itself happens upstream; this service only attributes.
type Claims struct {
	ActorID string `json:"actor_id"`
	Role    string `json:"role"`
	jwt.RegisteredClaims
}

// ParseActorToken parses and validates an actor token string.
// It returns the claims if the token is valid, otherwise an error.
func ParseActorToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return jwtSecretKey, nil
	})

	if err != nil {
		return nil, fmt.Errorf("token validation failed: %w", err)
	}

	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	return claims, nil
}
