// Package auth issues and verifies the HMAC-signed access and refresh tokens
// used by the API.
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

var (
	ErrInvalidToken   = errors.New("invalid token")
	ErrExpiredToken   = errors.New("token expired")
	ErrWrongTokenType = errors.New("wrong token type")
)

type Claims struct {
	UserID    int    `json:"user_id"`
	Role      string `json:"role"`
	TokenType string `json:"type"`
	jwt.RegisteredClaims
}

// Pair is what the token endpoints hand back to clients.
type Pair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
	UserID  int    `json:"user_id"`
	// refresh token id and expiry, kept server side only
	RefreshID      string    `json:"-"`
	RefreshExpires time.Time `json:"-"`
}

type Issuer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewIssuer(secret string, accessTTL, refreshTTL time.Duration) *Issuer {
	return &Issuer{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// Issue signs a fresh access/refresh pair for the user.
func (i *Issuer) Issue(userID int, role string) (Pair, error) {
	now := i.now()
	access, _, err := i.sign(userID, role, TypeAccess, now, i.accessTTL)
	if err != nil {
		return Pair{}, err
	}
	refresh, claims, err := i.sign(userID, role, TypeRefresh, now, i.refreshTTL)
	if err != nil {
		return Pair{}, err
	}
	return Pair{
		Access:         access,
		Refresh:        refresh,
		UserID:         userID,
		RefreshID:      claims.ID,
		RefreshExpires: claims.ExpiresAt.Time,
	}, nil
}

func (i *Issuer) sign(userID int, role, tokenType string, now time.Time, ttl time.Duration) (string, *Claims, error) {
	claims := &Claims{
		UserID:    userID,
		Role:      role,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(userID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign %s token: %w", tokenType, err)
	}
	return signed, claims, nil
}

// Parse verifies signature, expiry and token type.
func (i *Issuer) Parse(tokenString, expectedType string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return i.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	if !token.Valid || claims.UserID == 0 {
		return nil, ErrInvalidToken
	}
	if claims.TokenType != expectedType {
		return nil, ErrWrongTokenType
	}
	return claims, nil
}
