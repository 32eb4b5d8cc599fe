package service

import (
	"github.com/nivelo/crm-dashboard-bfa-go/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// AuthService validates access tokens minted by the main CRM backend.
// This BFF never issues tokens or stores credentials.
type AuthService struct {
	secret []byte
	logger *zap.Logger
}

// NewAuthService creates the token validator.
func NewAuthService(secret string, logger *zap.Logger) *AuthService {
	return &AuthService{secret: []byte(secret), logger: logger}
}

// AccessClaims are the claims this BFF cares about.
type AccessClaims struct {
	Sub string `json:"sub"`
	jwt.RegisteredClaims
}

// ValidateAccessToken parses and verifies an HS256 access token.
func (s *AuthService) ValidateAccessToken(tokenString string) (*AccessClaims, error) {
	claims := &AccessClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, &domain.ErrUnauthorized{Message: "unexpected signing method"}
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, &domain.ErrUnauthorized{Message: "invalid or expired token"}
	}
	if claims.Sub == "" {
		claims.Sub = claims.Subject
	}
	return claims, nil
}
