package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/identity-service/internal/domain"
)

// TokenManager turns a built claim set into a signed session JWT and parses
// it back for protected routes. The credential services themselves never see
// tokens; they stop at the abstract claim set.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenManager builds a new manager.
func NewTokenManager(secret string, ttlMinutes int) *TokenManager {
	if ttlMinutes <= 0 {
		ttlMinutes = 60
	}
	return &TokenManager{secret: []byte(secret), ttl: time.Duration(ttlMinutes) * time.Minute}
}

// SessionClaims describes the JWT payload derived from a claim set.
type SessionClaims struct {
	Name       string   `json:"name"`
	AuthMethod string   `json:"amr"`
	Roles      []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// IssueToken signs a JWT carrying the claim set. The set must include the
// unique-identifier claim; name, auth-method, and role claims are mapped
// onto their JWT counterparts.
func (tm *TokenManager) IssueToken(cs *domain.ClaimSet) (string, time.Time, error) {
	subject, ok := cs.First(domain.ClaimTypeID)
	if !ok {
		return "", time.Time{}, errors.New("claim set missing identifier claim")
	}
	name, _ := cs.First(domain.ClaimTypeName)
	method, _ := cs.First(domain.ClaimTypeAuthMethod)

	now := time.Now()
	expiresAt := now.Add(tm.ttl)
	claims := &SessionClaims{
		Name:       name,
		AuthMethod: method,
		Roles:      cs.Values(domain.ClaimTypeRole),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(tm.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// ParseToken validates and returns claims.
func (tm *TokenManager) ParseToken(tokenStr string) (*SessionClaims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return tm.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*SessionClaims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}
