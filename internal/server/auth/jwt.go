// Package auth issues and checks the HS256 session tickets handed out on a
// successful login.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/chatshield/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the standard registered claims; Subject is the username.
type Claims struct {
	jwt.RegisteredClaims
}

// GenerateToken signs a ticket for username valid for validityDuration.
func GenerateToken(username string, secretKey []byte, validityDuration time.Duration) (string, error) {
	id, err := common.MakeRandHexString(16)
	if err != nil {
		return "", fmt.Errorf("token id: %w", err)
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        id,
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validityDuration)),
		},
	})

	return token.SignedString(secretKey)
}

// GetUsernameFromToken validates tokenString and returns its subject.
// Any failure, including expiry, yields an error wrapping common.ErrInvalidToken.
func GetUsernameFromToken(tokenString string, secretKey []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", errors.Join(common.ErrInvalidToken, err)
	}

	if !token.Valid || claims.Subject == "" {
		return "", common.ErrInvalidToken
	}

	return claims.Subject, nil
}

// Issuer binds a secret and lifetime so callers need not carry them around.
type Issuer struct {
	secret   []byte
	validity time.Duration
}

func NewIssuer(secretKey string, validity time.Duration) *Issuer {
	return &Issuer{secret: []byte(secretKey), validity: validity}
}

func (i *Issuer) Issue(username string) (string, error) {
	return GenerateToken(username, i.secret, i.validity)
}

func (i *Issuer) Verify(token string) (string, error) {
	return GetUsernameFromToken(token, i.secret)
}
