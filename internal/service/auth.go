package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const tokenTTL = time.Hour

// Domain errors for portal auth flows.
var (
	ErrInvalidPassword = errors.New("invalid password")
	ErrInvalidToken    = errors.New("invalid token")
	ErrNotProvisioned  = errors.New("no admin credential configured")
)

// PortalAuthService validates the single admin credential and issues JWTs
// for the portal API. There is no user table: the device knows one admin.
type PortalAuthService struct {
	adminPassHash string
	signingKey    []byte
}

func NewPortalAuthService(adminPassHash string, signingKey []byte) *PortalAuthService {
	return &PortalAuthService{adminPassHash: adminPassHash, signingKey: signingKey}
}

type claims struct {
	jwt.RegisteredClaims
}

// GenerateToken checks the admin password and returns a signed JWT.
func (s *PortalAuthService) GenerateToken(password string) (string, error) {
	if s.adminPassHash == "" {
		return "", ErrNotProvisioned
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.adminPassHash), []byte(password)); err != nil {
		return "", ErrInvalidPassword
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "admin",
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	})
	return token.SignedString(s.signingKey)
}

// ParseToken validates a portal JWT.
func (s *PortalAuthService) ParseToken(accessToken string) error {
	token, err := jwt.ParseWithClaims(accessToken, &claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.signingKey, nil
	})
	if err != nil {
		return err
	}
	if !token.Valid {
		return ErrInvalidToken
	}
	return nil
}
