package authsvc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/corray333/backend-labs/shop/internal/dal/postgres"
	accountrepo "github.com/corray333/backend-labs/shop/internal/dal/repositories/account/postgres"
	"github.com/corray333/backend-labs/shop/internal/service/models/apperr"
	"github.com/corray333/backend-labs/shop/internal/service/models/user"
	"github.com/google/uuid"
)

const MinPasswordLength = 6

type accountRepository interface {
	Insert(ctx context.Context, a user.Account) error
	GetByEmail(ctx context.Context, kind user.Kind, email string) (*user.Account, error)
	Exists(ctx context.Context, kind user.Kind, id string) (bool, error)
	QueryBuyersOfClient(ctx context.Context, clientID string) ([]user.Buyer, error)
}

type identityProvider interface {
	HashPassword(password string) (string, error)
	ComparePassword(hash, password string) error
	Issue(principal user.Principal) (string, error)
	Verify(token string) (user.Principal, error)
}

// AuthService signs up and authenticates users and clients.
type AuthService struct {
	accounts accountRepository
	identity identityProvider

	now   func() time.Time
	newID func() string
}

type option func(*AuthService)

func MustNewAuthService(opts ...option) *AuthService {
	s := &AuthService{
		now:   time.Now,
		newID: uuid.NewString,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.accounts == nil || s.identity == nil {
		panic("authsvc: account repository and identity provider are required")
	}

	return s
}

//goland:noinspection GoExportedFuncWithUnexportedType
func WithPostgresClient(pgClient *postgres.Client) option {
	return func(s *AuthService) {
		s.accounts = accountrepo.NewPostgresAccountRepository(pgClient.Pool())
	}
}

//goland:noinspection GoExportedFuncWithUnexportedType
func WithIdentityProvider(p identityProvider) option {
	return func(s *AuthService) {
		s.identity = p
	}
}

func withAccountRepository(r accountRepository) option {
	return func(s *AuthService) {
		s.accounts = r
	}
}

// SignUpInput is a new account request.
type SignUpInput struct {
	Name     string
	Email    string
	Password string
}

// SignUp creates an account of the given kind and returns an access token for it.
func (s *AuthService) SignUp(ctx context.Context, kind user.Kind, in SignUpInput) (string, *user.Account, error) {
	name := strings.TrimSpace(in.Name)
	email, err := normalizeEmail(in.Email)

	switch {
	case name == "":
		return "", nil, apperr.NewValidationError("name", "is required")
	case err != nil:
		return "", nil, err
	case len(in.Password) < MinPasswordLength:
		return "", nil, apperr.NewValidationError("password", fmt.Sprintf("must be at least %d characters", MinPasswordLength))
	}

	hash, err := s.identity.HashPassword(in.Password)
	if err != nil {
		return "", nil, err
	}

	acc := user.Account{
		ID:           s.newID(),
		Kind:         kind,
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    s.now().UTC(),
	}

	if err := s.accounts.Insert(ctx, acc); err != nil {
		return "", nil, err
	}

	token, err := s.identity.Issue(user.Principal{ID: acc.ID, Kind: kind})
	if err != nil {
		return "", nil, err
	}

	slog.InfoContext(ctx, "Account created", "account_id", acc.ID, "kind", kind)

	return token, &acc, nil
}

// Login checks the credentials and returns an access token.
// Unknown emails and wrong passwords both yield ErrUnauthorized.
func (s *AuthService) Login(ctx context.Context, kind user.Kind, email, password string) (string, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return "", err
	}

	acc, err := s.accounts.GetByEmail(ctx, kind, email)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return "", fmt.Errorf("invalid credentials: %w", apperr.ErrUnauthorized)
		}

		return "", err
	}

	if err := s.identity.ComparePassword(acc.PasswordHash, password); err != nil {
		return "", err
	}

	return s.identity.Issue(user.Principal{ID: acc.ID, Kind: acc.Kind})
}

// Authenticate verifies the token, requires the principal to be of kind and
// to still exist in the store.
func (s *AuthService) Authenticate(ctx context.Context, token string, kind user.Kind) (user.Principal, error) {
	principal, err := s.identity.Verify(token)
	if err != nil {
		return user.Principal{}, err
	}

	if principal.Kind != kind {
		return user.Principal{}, fmt.Errorf("%s token used as %s: %w", principal.Kind, kind, apperr.ErrForbidden)
	}

	ok, err := s.accounts.Exists(ctx, kind, principal.ID)
	if err != nil {
		return user.Principal{}, err
	}
	if !ok {
		return user.Principal{}, fmt.Errorf("%s %s no longer exists: %w", kind, principal.ID, apperr.ErrUnauthorized)
	}

	return principal, nil
}

// GetBuyersOfClient lists the users who ordered any product of the client.
func (s *AuthService) GetBuyersOfClient(ctx context.Context, clientID string) ([]user.Buyer, error) {
	if clientID == "" {
		return nil, apperr.NewValidationError("clientId", "is required")
	}

	return s.accounts.QueryBuyersOfClient(ctx, clientID)
}

func normalizeEmail(email string) (string, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(email))
	if err != nil || addr.Name != "" {
		return "", apperr.NewValidationError("email", "is not a valid address")
	}

	return strings.ToLower(addr.Address), nil
}
