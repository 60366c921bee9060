package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/noah-isme/kaizen-portal-api/internal/models"
	appErrors "github.com/noah-isme/kaizen-portal-api/pkg/errors"
)

// AuthConfig defines how admin access tokens are signed.
type AuthConfig struct {
	AccessTokenSecret string
	AccessTokenExpiry time.Duration
	Issuer            string
}

// AuthService issues and validates admin access tokens. Login flows live outside this API.
type AuthService struct {
	catalog *CatalogService
	logger  *zap.Logger
	config  AuthConfig
	now     func() time.Time
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(catalog *CatalogService, logger *zap.Logger, config AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if catalog == nil {
		catalog = NewCatalogService()
	}
	if config.AccessTokenExpiry <= 0 {
		config.AccessTokenExpiry = 24 * time.Hour
	}
	return &AuthService{catalog: catalog, logger: logger, config: config, now: time.Now}
}

// IssueToken signs a token for actor; ttl <= 0 uses the configured expiry.
func (s *AuthService) IssueToken(actor models.Actor, ttl time.Duration) (string, time.Time, error) {
	actor, err := s.checkActor(actor)
	if err != nil {
		return "", time.Time{}, err
	}
	if ttl <= 0 {
		ttl = s.config.AccessTokenExpiry
	}
	issuedAt := s.now().UTC()
	expiresAt := issuedAt.Add(ttl)
	claims := &models.JWTClaims{
		UserID:     actor.ID,
		Name:       actor.Name,
		Role:       actor.Role,
		Department: actor.Department,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   actor.ID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.AccessTokenSecret))
	if err != nil {
		return "", time.Time{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign token")
	}
	s.logger.Info("access token issued", zap.String("user_id", actor.ID), zap.String("role", string(actor.Role)))
	return signed, expiresAt, nil
}

// ValidateToken parses and validates an access token returning the claims.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	opts := []jwt.ParserOption{jwt.WithTimeFunc(s.now)}
	if s.config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.config.Issuer))
	}
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.AccessTokenSecret), nil
	}, opts...)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}
	actor, err := s.checkActor(models.ActorFromClaims(claims))
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}
	claims.Department = actor.Department
	return claims, nil
}

// checkActor rejects unknown roles and department admins without a known department.
func (s *AuthService) checkActor(actor models.Actor) (models.Actor, error) {
	actor.ID = strings.TrimSpace(actor.ID)
	if actor.ID == "" {
		return actor, appErrors.Clone(appErrors.ErrValidation, "user id is required")
	}
	switch actor.Role {
	case models.RoleSuperAdmin:
		actor.Department = ""
	case models.RoleDepartmentAdmin:
		name, ok := s.catalog.NormalizeDepartment(actor.Department)
		if !ok {
			return actor, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("Unknown department: %s", actor.Department))
		}
		actor.Department = name
	default:
		return actor, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("Unknown role: %s", actor.Role))
	}
	return actor, nil
}
