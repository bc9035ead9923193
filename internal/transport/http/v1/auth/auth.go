package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/corray333/backend-labs/shop/internal/service/models/apperr"
	"github.com/corray333/backend-labs/shop/internal/service/models/user"
	"github.com/corray333/backend-labs/shop/internal/transport/http/v1/httperr"
)

type authenticator interface {
	Authenticate(ctx context.Context, token string, kind user.Kind) (user.Principal, error)
}

type principalKey struct{}

// WithPrincipal stores the authenticated caller in ctx.
func WithPrincipal(ctx context.Context, p user.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFrom returns the caller stored by Require.
func PrincipalFrom(ctx context.Context) (user.Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(user.Principal)

	return p, ok
}

// Caller returns the caller of r or ErrUnauthorized when the route is not guarded by Require.
func Caller(r *http.Request) (user.Principal, error) {
	p, ok := PrincipalFrom(r.Context())
	if !ok {
		return user.Principal{}, fmt.Errorf("no principal in request: %w", apperr.ErrUnauthorized)
	}

	return p, nil
}

// Require rejects requests without a valid bearer token of the given kind.
func Require(a authenticator, kind user.Kind) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearer(r)
			if !ok {
				httperr.Write(w, r, fmt.Errorf("missing bearer token: %w", apperr.ErrUnauthorized))

				return
			}

			p, err := a.Authenticate(r.Context(), token, kind)
			if err != nil {
				httperr.Write(w, r, err)

				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
		})
	}
}

func bearer(r *http.Request) (string, bool) {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}

	token = strings.TrimSpace(token)

	return token, token != ""
}
