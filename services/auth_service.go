package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"subjectswap_server/models"
)

// CredentialVerifier resolves a bearer credential to a user id.
type CredentialVerifier interface {
	Verify(token string) (string, error)
}

// Claims are the JWT claims carried by login tokens.
type Claims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// JWTVerifier verifies and issues HS256 login tokens.
type JWTVerifier struct {
	secret []byte
}

// NewJWTVerifier creates a verifier for secret.
func NewJWTVerifier(secret string) *JWTVerifier {
	return &JWTVerifier{secret: []byte(secret)}
}

// Issue signs a token for userID that expires after ttl.
func (v *JWTVerifier) Issue(userID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(v.secret)
}

// Verify validates tokenString and returns its userId claim.
func (v *JWTVerifier) Verify(tokenString string) (string, error) {
	if tokenString == "" {
		return "", fmt.Errorf("%w: missing token", models.ErrAuthentication)
	}
	if len(v.secret) == 0 {
		return "", fmt.Errorf("%w: verifier has no secret", models.ErrAuthentication)
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", fmt.Errorf("%w: token expired", models.ErrAuthentication)
		}
		return "", fmt.Errorf("%w: %v", models.ErrAuthentication, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == "" {
		return "", fmt.Errorf("%w: invalid token claims", models.ErrAuthentication)
	}
	return claims.UserID, nil
}
