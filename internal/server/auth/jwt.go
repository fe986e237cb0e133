// Package auth issues and parses the JWT access tokens used by the gateway.
// A token carries the authenticated user key, the publisher (parent) key used
// for provider-owned resources, and the granted roles.
package auth

import (
	"time"

	"github.com/geotrade/marketplace/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Role is a closed set of capabilities checked by the web layer.
type Role string

const (
	RoleUser     Role = "USER"
	RoleConsumer Role = "CONSUMER"
	RoleProvider Role = "PROVIDER"
	RoleHelpdesk Role = "HELPDESK"
)

// Claims extends the registered JWT claims with the marketplace identity.
type Claims struct {
	jwt.RegisteredClaims
	UserKey   string `json:"user_key"`
	ParentKey string `json:"parent_key"`
	Email     string `json:"email"`
	Roles     []Role `json:"roles"`
}

// HasRole reports whether the claims grant the given role.
func (c *Claims) HasRole(role Role) bool {
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// GenerateToken signs a token for the given identity.
func GenerateToken(userKey, parentKey, email string, roles []Role, secretKey []byte, validityDuration time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
		},
		UserKey:   userKey,
		ParentKey: parentKey,
		Email:     email,
		Roles:     roles,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ParseToken validates a token string and returns the embedded claims.
func ParseToken(tokenString string, secretKey []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	})
	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
