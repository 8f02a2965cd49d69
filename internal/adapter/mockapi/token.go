package mockapi

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const tokenTTL = 24 * time.Hour

var errInvalidToken = errors.New("invalid token")

type tokenClaims struct {
	UserID int `json:"uid"`
	jwt.RegisteredClaims
}

// tokenIssuer signs and verifies the mock bearer tokens. HMAC is enough
// here, nothing outside this process ever checks them.
type tokenIssuer struct {
	secret []byte
}

func newTokenIssuer(secret string) *tokenIssuer {
	return &tokenIssuer{secret: []byte(secret)}
}

func (t *tokenIssuer) Issue(userID int) (string, error) {
	const op = "tokenIssuer.Issue"

	now := time.Now()
	claims := tokenClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "storefront-mockapi",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return signed, nil
}

// Verify returns the user id carried by a valid token.
func (t *tokenIssuer) Verify(raw string) (int, error) {
	const op = "tokenIssuer.Verify"

	var claims tokenClaims
	token, err := jwt.ParseWithClaims(raw, &claims,
		func(*jwt.Token) (any, error) { return t.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if !token.Valid || claims.UserID == 0 {
		return 0, fmt.Errorf("%s: %w", op, errInvalidToken)
	}
	return claims.UserID, nil
}
