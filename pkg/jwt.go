package pkg

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

var ErrInvalidToken = errors.New("invalid token")

type Claims struct {
	UserID    uint   `json:"userId"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	TokenType string `json:"tokenType"`
	jwt.RegisteredClaims
}

type RefreshClaims struct {
	UserID    uint   `json:"userId"`
	TokenType string `json:"tokenType"`
	jwt.RegisteredClaims
}

func GenerateToken(userID uint, email string, role string, secret string, expirationMinutes int) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:    userID,
		Email:     email,
		Role:      role,
		TokenType: tokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(expirationMinutes) * time.Minute)),
			Issuer:    "flowcore",
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func GenerateRefreshToken(userID uint, secret string, expirationDays int) (string, error) {
	now := time.Now()
	claims := RefreshClaims{
		UserID:    userID,
		TokenType: tokenTypeRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.AddDate(0, 0, expirationDays)),
			Issuer:    "flowcore",
			// two refreshes within the same second must still differ
			ID: strconv.FormatInt(now.UnixNano(), 36),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func ValidateToken(tokenString string, secret string) (*Claims, error) {
	claims := &Claims{}
	if err := parse(tokenString, secret, claims); err != nil {
		return nil, err
	}
	if claims.TokenType != tokenTypeAccess {
		return nil, fmt.Errorf("%w: not an access token", ErrInvalidToken)
	}
	return claims, nil
}

func ValidateRefreshToken(tokenString string, secret string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := parse(tokenString, secret, claims); err != nil {
		return nil, err
	}
	if claims.TokenType != tokenTypeRefresh {
		return nil, fmt.Errorf("%w: not a refresh token", ErrInvalidToken)
	}
	return claims, nil
}

func parse(tokenString string, secret string, claims jwt.Claims) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !token.Valid {
		return ErrInvalidToken
	}
	return nil
}
