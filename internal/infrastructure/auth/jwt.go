package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/bengbengle/nft-lend/internal/domain"
)

// Claims represents the JWT claims
type Claims struct {
	Address string      `json:"address"`
	Role    domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// Caller converts the claims into the caller they authenticate.
func (c *Claims) Caller() (*domain.Caller, error) {
	addr, err := domain.ParseNonZeroAddress(c.Address)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}
	if !c.Role.IsValid() {
		return nil, domain.ErrInvalidToken
	}
	return &domain.Caller{Address: addr, Role: c.Role}, nil
}

// JWTManager manages JWT token creation and validation
type JWTManager struct {
	secretKey     []byte
	tokenDuration time.Duration
}

// NewJWTManager creates a new JWT manager
func NewJWTManager(secretKey string, tokenDuration time.Duration) *JWTManager {
	return &JWTManager{
		secretKey:     []byte(secretKey),
		tokenDuration: tokenDuration,
	}
}

// Generate generates a new JWT token for a caller
func (m *JWTManager) Generate(caller *domain.Caller) (string, error) {
	now := time.Now()
	claims := Claims{
		Address: caller.Address.Hex(),
		Role:    caller.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   caller.Address.Hex(),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.tokenDuration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secretKey)
}

// Verify verifies a JWT token and returns the claims
func (m *JWTManager) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&Claims{},
		func(token *jwt.Token) (interface{}, error) {
			// Validate signing method
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return m.secretKey, nil
		},
	)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrExpiredToken
		}
		return nil, domain.ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, domain.ErrInvalidToken
	}

	return claims, nil
}
