package accounts

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/corray333/backend-labs/shop/internal/service/models/apperr"
	"github.com/corray333/backend-labs/shop/internal/service/models/user"
	"github.com/corray333/backend-labs/shop/internal/service/services/authsvc"
	"github.com/corray333/backend-labs/shop/internal/transport/http/v1/auth"
	"github.com/stretchr/testify/require"
)

type stubAuth struct {
	kind     user.Kind
	accounts map[string]string
}

func (s *stubAuth) SignUp(_ context.Context, kind user.Kind, in authsvc.SignUpInput) (string, *user.Account, error) {
	s.kind = kind
	if _, ok := s.accounts[in.Email]; ok {
		return "", nil, fmt.Errorf("account %s: %w", in.Email, apperr.ErrAlreadyExists)
	}
	s.accounts[in.Email] = in.Password

	return "tok-" + in.Email, &user.Account{ID: "a1", Kind: kind, Name: in.Name, Email: in.Email, PasswordHash: "hash"}, nil
}

func (s *stubAuth) Login(_ context.Context, kind user.Kind, email, password string) (string, error) {
	s.kind = kind
	if s.accounts[email] != password {
		return "", fmt.Errorf("login: %w", apperr.ErrUnauthorized)
	}

	return "tok-" + email, nil
}

func TestSignUp(t *testing.T) {
	svc := &stubAuth{accounts: map[string]string{}}
	body := `{"name":"Ann","email":"ann@example.com","password":"secret1"}`

	rec := httptest.NewRecorder()
	SignUp(rec, httptest.NewRequest(http.MethodPost, "/clients/signup", strings.NewReader(body)), svc, user.KindClient)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, user.KindClient, svc.kind)

	var resp struct {
		Token   string         `json:"token"`
		Account map[string]any `json:"account"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "tok-ann@example.com", resp.Token)
	require.Equal(t, "Ann", resp.Account["name"])
	require.NotContains(t, rec.Body.String(), "hash")

	rec = httptest.NewRecorder()
	SignUp(rec, httptest.NewRequest(http.MethodPost, "/clients/signup", strings.NewReader(body)), svc, user.KindClient)
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = httptest.NewRecorder()
	SignUp(rec, httptest.NewRequest(http.MethodPost, "/users/signup", strings.NewReader(`{"name":"B","email":"nope","password":"x"}`)), svc, user.KindUser)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogin(t *testing.T) {
	svc := &stubAuth{accounts: map[string]string{"ann@example.com": "secret1"}}

	rec := httptest.NewRecorder()
	Login(rec, httptest.NewRequest(http.MethodPost, "/users/login", strings.NewReader(`{"email":"ann@example.com","password":"secret1"}`)), svc, user.KindUser)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"token":"tok-ann@example.com"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	Login(rec, httptest.NewRequest(http.MethodPost, "/users/login", strings.NewReader(`{"email":"ann@example.com","password":"wrong"}`)), svc, user.KindUser)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

type stubBuyers map[string][]user.Buyer

func (s stubBuyers) GetBuyersOfClient(_ context.Context, clientID string) ([]user.Buyer, error) {
	return s[clientID], nil
}

func TestListClientBuyers(t *testing.T) {
	svc := stubBuyers{"c1": {{ID: "u1", Name: "Ann", Email: "ann@example.com", OrderIDs: []string{"o1"}}}}

	asClient := func(id string) *http.Request {
		r := httptest.NewRequest(http.MethodGet, "/users/client", nil)

		return r.WithContext(auth.WithPrincipal(r.Context(), user.Principal{ID: id, Kind: user.KindClient}))
	}

	rec := httptest.NewRecorder()
	ListClientBuyers(rec, asClient("c1"), svc)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `[{"id":"u1","name":"Ann","email":"ann@example.com","orderIds":["o1"]}]`, rec.Body.String())

	rec = httptest.NewRecorder()
	ListClientBuyers(rec, asClient("c2"), svc)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `[]`, rec.Body.String())

	rec = httptest.NewRecorder()
	ListClientBuyers(rec, httptest.NewRequest(http.MethodGet, "/users/client", nil), svc)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
