// Package session derives the signed-in operator from a session token.
package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"

	"tokoadmin/internal/models"
)

var (
	ErrNoToken   = errors.New("no session token")
	ErrMalformed = errors.New("malformed session token")
	ErrExpired   = errors.New("session token expired")
	ErrSignature = errors.New("invalid session token signature")
)

// Identity is the operator carried by a session token.
type Identity struct {
	ID        string      `json:"id"`
	FullName  string      `json:"fullname"`
	Role      models.Role `json:"role"`
	ExpiresAt time.Time   `json:"expiresAt,omitempty"`
}

// IsAdmin reports whether the identity may use the console screens.
func (i Identity) IsAdmin() bool { return i.Role == models.RoleAdmin }

// Derive is the single place a token becomes an Identity. With an empty
// secret the token is only decoded; with a secret its HMAC signature is
// verified as well. An expired token yields ErrExpired together with the
// identity it carried, so the caller can drop that operator's state.
func Derive(token string, secret []byte) (*Identity, error) {
	return deriveAt(token, secret, time.Now())
}

func deriveAt(token string, secret []byte, now time.Time) (*Identity, error) {
	if token == "" {
		return nil, ErrNoToken
	}

	claims := jwt.MapClaims{}
	if len(secret) == 0 {
		if _, _, err := new(jwt.Parser).ParseUnverified(token, claims); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
	} else {
		parser := &jwt.Parser{SkipClaimsValidation: true}
		_, err := parser.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return secret, nil
		})
		if err != nil {
			var verr *jwt.ValidationError
			if errors.As(err, &verr) && verr.Errors&jwt.ValidationErrorMalformed != 0 {
				return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
			}
			return nil, fmt.Errorf("%w: %v", ErrSignature, err)
		}
	}

	id := &Identity{
		ID:       stringClaim(claims, "id"),
		FullName: stringClaim(claims, "fullname"),
		Role:     models.Role(stringClaim(claims, "role")),
	}
	if id.ID == "" {
		return nil, fmt.Errorf("%w: missing id claim", ErrMalformed)
	}

	if exp, ok := claims["exp"].(float64); ok {
		id.ExpiresAt = time.Unix(int64(exp), 0)
		if !now.Before(id.ExpiresAt) {
			return id, ErrExpired
		}
	}
	return id, nil
}

func stringClaim(claims jwt.MapClaims, key string) string {
	s, _ := claims[key].(string)
	return s
}
