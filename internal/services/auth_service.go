package services

import (
	"context"
	"fmt"
	"time"

	"pocketchat/config"
	"pocketchat/internal/repository"
	chat_errors "pocketchat/pkg/errors"

	"github.com/golang-jwt/jwt/v5"
)

// AuthService exchanges an external user id for a signed access token.
// Identity itself belongs to the external provider; this service only
// gates the API surface.
type AuthService struct {
	userRepo  repository.UserRepository
	jwtSecret []byte
	accessTTL time.Duration
}

func NewAuthService(userRepo repository.UserRepository, cfg *config.Config) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		jwtSecret: []byte(cfg.JWTSecret),
		accessTTL: time.Duration(cfg.JWTExpiryMin) * time.Minute,
	}
}

type AccessClaims struct {
	UserID string `json:"uid"`
	jwt.RegisteredClaims
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

// IssueToken mints an access token for a known external user id.
func (s *AuthService) IssueToken(ctx context.Context, externalID string) (TokenResponse, error) {
	if externalID == "" {
		return TokenResponse{}, fmt.Errorf("%w: user id is required", chat_errors.ErrInvalidInput)
	}
	if _, err := s.userRepo.GetByExternalID(ctx, externalID); err != nil {
		return TokenResponse{}, err
	}

	now := time.Now()
	claims := AccessClaims{
		UserID: externalID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   externalID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return TokenResponse{}, err
	}
	return TokenResponse{
		AccessToken: signed,
		ExpiresIn:   int64(s.accessTTL.Seconds()),
	}, nil
}

func (s *AuthService) ParseAccessToken(tokenString string) (*AccessClaims, error) {
	if tokenString == "" {
		return nil, chat_errors.ErrUnauthorized
	}
	claims := &AccessClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, chat_errors.ErrUnauthorized
	}
	return claims, nil
}
