package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenExpired = errors.New("session token expired")
	ErrTokenInvalid = errors.New("session token invalid")
)

type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies stateless session tokens. There is no
// server-side revocation: logout only clears the client cookie, so an
// issued token stays valid until its expiry. Known limitation.
type TokenIssuer struct {
	secret []byte
	expiry time.Duration
}

func NewTokenIssuer(secret string, expiry time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), expiry: expiry}
}

func (t *TokenIssuer) Issue(userID string) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.expiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

func (t *TokenIssuer) Verify(tokenStr string) (string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return t.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", ErrTokenInvalid
	}
	if !token.Valid || claims.UserID == "" {
		return "", ErrTokenInvalid
	}
	return claims.UserID, nil
}
