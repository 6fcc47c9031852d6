// Package security provides token based authentication
package security

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/recipemanager/server/internal/domain/user"
	"github.com/recipemanager/server/internal/infrastructure/config"
	"github.com/recipemanager/server/internal/ports/outbound"
	"go.uber.org/zap"
)

const (
	// revokedPrefix namespaces revoked token ids in the cache
	revokedPrefix = "revoked_token:"
	audience      = "recipemanager-api"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenRevoked = errors.New("token has been revoked")
)

// Claims represents JWT claims structure
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// AuthService issues, verifies and revokes HMAC signed access tokens.
// Revoked token ids are kept in the cache until the token would expire.
type AuthService struct {
	secret     []byte
	issuer     string
	expiration time.Duration
	revoked    outbound.CacheRepository
	now        func() time.Time
	logger     *zap.Logger
}

// NewAuthService creates a new authentication service. An empty secret is
// only accepted outside production; a random one is generated so tokens do
// not survive restarts.
func NewAuthService(cfg *config.Config, revoked outbound.CacheRepository, logger *zap.Logger) (*AuthService, error) {
	logger = logger.Named("auth")

	secret := []byte(cfg.Auth.JWTSecret)
	if len(secret) == 0 {
		if cfg.IsProduction() {
			return nil, fmt.Errorf("auth.jwt_secret is required in production")
		}
		generated, err := randomSecret()
		if err != nil {
			return nil, err
		}
		secret = generated
		logger.Warn("auth.jwt_secret is empty, using a random secret for this process")
	}

	issuer := cfg.Auth.Issuer
	if issuer == "" {
		issuer = "recipemanager"
	}

	return &AuthService{
		secret:     secret,
		issuer:     issuer,
		expiration: cfg.Auth.JWTExpiration,
		revoked:    revoked,
		now:        time.Now,
		logger:     logger,
	}, nil
}

var _ outbound.TokenService = (*AuthService)(nil)

// Issue creates a new access token for u
func (a *AuthService) Issue(ctx context.Context, u *user.User) (*outbound.IssuedToken, error) {
	now := a.now()
	expiresAt := now.Add(a.expiration)

	claims := &Claims{
		UserID: u.ID().String(),
		Email:  u.Email(),
		Role:   string(u.Role()),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    a.issuer,
			Subject:   u.ID().String(),
			Audience:  []string{audience},
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.New().String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(a.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &outbound.IssuedToken{
		Token:     tokenString,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Verify validates signature, expiry, issuer and revocation
func (a *AuthService) Verify(ctx context.Context, tokenString string) (*outbound.TokenClaims, error) {
	claims, err := a.parse(tokenString)
	if err != nil {
		return nil, err
	}

	// A failing revocation store must not lock every user out
	revoked, err := a.revoked.Exists(ctx, revokedPrefix+claims.ID)
	if err != nil {
		a.logger.Warn("Failed to check token revocation", zap.Error(err))
	} else if revoked {
		return nil, ErrTokenRevoked
	}

	return toTokenClaims(claims)
}

// Revoke blocks the token until its natural expiry
func (a *AuthService) Revoke(ctx context.Context, tokenString string) error {
	claims, err := a.parse(tokenString)
	if err != nil {
		return err
	}

	ttl := claims.ExpiresAt.Time.Sub(a.now())
	if ttl <= 0 {
		return nil
	}

	if err := a.revoked.Set(ctx, revokedPrefix+claims.ID, []byte("revoked"), ttl); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}

	a.logger.Info("Token revoked",
		zap.String("token_id", claims.ID),
		zap.String("user_id", claims.UserID))
	return nil
}

func (a *AuthService) parse(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return a.secret, nil
	},
		jwt.WithIssuer(a.issuer),
		jwt.WithAudience(audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.ID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func toTokenClaims(claims *Claims) (*outbound.TokenClaims, error) {
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}

	return &outbound.TokenClaims{
		TokenID:   claims.ID,
		UserID:    userID,
		Email:     claims.Email,
		Role:      user.Role(claims.Role),
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

func randomSecret() ([]byte, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("failed to generate secret: %w", err)
	}
	return []byte(hex.EncodeToString(buf)), nil
}
