package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"lumaregistrar/internal/domain"
)

// Issuer is the "iss" claim on every operator token.
const Issuer = "lumaregistrar"

type operatorClaims struct {
	jwt.RegisteredClaims
	Scope string `json:"scope"`
}

const operatorScope = "registrations"

type jwtSigner struct {
	secret []byte
	now    func() time.Time
}

// NewJWTIssuer returns a TokenIssuer that signs HS256 operator tokens with secret.
func NewJWTIssuer(secret string) domain.TokenIssuer {
	return &jwtSigner{secret: []byte(secret), now: time.Now}
}

// NewJWTVerifier returns a TokenVerifier accepting tokens made by NewJWTIssuer with the same secret.
func NewJWTVerifier(secret string) domain.TokenVerifier {
	return &jwtSigner{secret: []byte(secret), now: time.Now}
}

func (s *jwtSigner) Issue(subject string, expiry time.Duration) (string, error) {
	if subject == "" {
		return "", fmt.Errorf("%w: token subject is required", domain.ErrInvalidInput)
	}
	if expiry <= 0 {
		return "", fmt.Errorf("%w: token expiry must be positive", domain.ErrInvalidInput)
	}
	now := s.now()
	claims := operatorClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
		Scope: operatorScope,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

func (s *jwtSigner) Verify(token string) (string, error) {
	var claims operatorClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return "", fmt.Errorf("invalid token: %w", err)
	}
	if claims.Scope != operatorScope {
		return "", errors.New("invalid token: wrong scope")
	}
	return claims.Subject, nil
}
