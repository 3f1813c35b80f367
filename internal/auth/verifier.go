package auth

import (
	"errors"
	"strings"

	"github.com/golang-jwt/jwt/v4"
	"github.com/vitalpath/vitalpath/internal/config"
)

var (
	ErrInvalidToken = errors.New("invalid_token")
)

// Identity is the authenticated caller extracted from a bearer token. The
// identity provider owns credentials and signup; this service only verifies
// the signature and reads the claims it needs.
type Identity struct {
	UserID string
	Email  string
	Name   string
	Admin  bool
}

type Verifier struct {
	secret []byte
}

func NewVerifier(cfg config.Config) *Verifier {
	return &Verifier{secret: []byte(cfg.AuthJWTSecret)}
}

func (v *Verifier) Verify(tokenString string) (Identity, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return Identity{}, ErrInvalidToken
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return v.secret, nil
	})
	if err != nil || !token.Valid {
		return Identity{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, ErrInvalidToken
	}

	identity := Identity{}
	if sub, ok := claims["sub"].(string); ok {
		identity.UserID = strings.TrimSpace(sub)
	}
	if identity.UserID == "" {
		return Identity{}, ErrInvalidToken
	}
	if email, ok := claims["email"].(string); ok {
		identity.Email = email
	}
	if name, ok := claims["name"].(string); ok {
		identity.Name = name
	}
	if admin, ok := claims["admin"].(bool); ok {
		identity.Admin = admin
	}
	return identity, nil
}
