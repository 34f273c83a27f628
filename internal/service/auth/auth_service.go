package auth

import (
	"context"
	"fmt"
	"time"

	"maximally-judging/internal/domain"
	"maximally-judging/internal/service"
	"maximally-judging/pkg/errors"
	"maximally-judging/pkg/logger"

	"github.com/golang-jwt/jwt/v5"
)

// Service validates Supabase-issued organizer JWTs. Supabase signs access
// tokens with HS256 using the project's JWT secret.
type Service struct {
	jwtSecret string
	logger    *logger.Logger
}

// NewService creates an auth service backed by the Supabase JWT secret.
func NewService(jwtSecret string, logger *logger.Logger) service.AuthService {
	return &Service{
		jwtSecret: jwtSecret,
		logger:    logger,
	}
}

// ValidateToken parses and verifies a bearer token and returns the user
// profile carried in its claims.
func (s *Service) ValidateToken(ctx context.Context, tokenString string) (*domain.UserProfile, error) {
	if s.jwtSecret == "" {
		s.logger.Error("SUPABASE_JWT_SECRET not configured")
		return nil, errors.NewAuthenticationError("JWT validation not configured")
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})

	if err != nil || !token.Valid {
		s.logger.WithError(err).Debug("JWT validation failed")
		return nil, errors.NewAuthenticationError("Invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.NewAuthenticationError("Invalid token claims")
	}

	// jwt.Parse already rejects expired tokens when exp is present, but
	// Supabase tokens without exp are not acceptable here.
	if exp, ok := claims["exp"].(float64); !ok || time.Now().Unix() > int64(exp) {
		return nil, errors.NewAuthenticationError("Token has expired")
	}

	profile := &domain.UserProfile{
		Sub:   stringClaim(claims, "sub"),
		Email: stringClaim(claims, "email"),
		Role:  stringClaim(claims, "role"),
	}

	if profile.Sub == "" {
		return nil, errors.NewAuthenticationError("Token carries no user identifier")
	}

	return profile, nil
}

func stringClaim(claims jwt.MapClaims, key string) string {
	if v, ok := claims[key].(string); ok {
		return v
	}
	return ""
}
