package identity

import (
	"errors"
	"fmt"
	"time"

	"github.com/corray333/backend-labs/shop/internal/service/models/apperr"
	"github.com/corray333/backend-labs/shop/internal/service/models/user"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

const (
	DefaultIssuer     = "shop"
	DefaultTokenTTL   = 24 * time.Hour
	DefaultBcryptCost = 12
)

// Config holds the token signing parameters.
type Config struct {
	Secret     string
	Issuer     string
	TokenTTL   time.Duration
	BcryptCost int
}

// ConfigFromViper reads the identity.* keys.
func ConfigFromViper() Config {
	return Config{
		Secret:     viper.GetString("identity.jwt_secret"),
		Issuer:     viper.GetString("identity.issuer"),
		TokenTTL:   viper.GetDuration("identity.token_ttl"),
		BcryptCost: viper.GetInt("identity.bcrypt_cost"),
	}
}

// Claims is the payload of an access token. The subject is the account id.
type Claims struct {
	Kind user.Kind `json:"kind"`
	jwt.RegisteredClaims
}

// Provider issues and verifies HS256 access tokens and hashes passwords.
type Provider struct {
	cfg Config
	now func() time.Time
}

// MustNewProvider validates cfg, fills defaults and panics without a secret.
func MustNewProvider(cfg Config) *Provider {
	if cfg.Secret == "" {
		panic("identity: jwt secret is required")
	}
	if cfg.Issuer == "" {
		cfg.Issuer = DefaultIssuer
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = DefaultTokenTTL
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = DefaultBcryptCost
	}
	if cfg.BcryptCost < bcrypt.MinCost || cfg.BcryptCost > bcrypt.MaxCost {
		panic(fmt.Sprintf("identity: bcrypt cost %d out of range", cfg.BcryptCost))
	}

	return &Provider{cfg: cfg, now: time.Now}
}

func (p *Provider) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.cfg.BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	return string(hash), nil
}

// ComparePassword returns ErrUnauthorized when password does not match hash.
func (p *Provider) ComparePassword(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return fmt.Errorf("invalid credentials: %w", apperr.ErrUnauthorized)
	}

	return nil
}

// Issue signs an access token for the principal.
func (p *Provider) Issue(principal user.Principal) (string, error) {
	now := p.now()
	claims := Claims{
		Kind: principal.Kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   principal.ID,
			Issuer:    p.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(p.cfg.TokenTTL)),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(p.cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

// Verify checks the token signature, issuer and expiry and returns its principal.
// Every failure wraps ErrUnauthorized.
func (p *Provider) Verify(token string) (user.Principal, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}

		return []byte(p.cfg.Secret), nil
	},
		jwt.WithIssuer(p.cfg.Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(p.now),
	)
	if err != nil {
		return user.Principal{}, fmt.Errorf("%w: %w", apperr.ErrUnauthorized, err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.Subject == "" {
		return user.Principal{}, fmt.Errorf("%w: %w", apperr.ErrUnauthorized, errors.New("invalid token claims"))
	}

	return user.Principal{ID: claims.Subject, Kind: claims.Kind}, nil
}
