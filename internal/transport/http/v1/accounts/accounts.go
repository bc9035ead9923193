package accounts

import (
	"context"
	"net/http"

	"github.com/corray333/backend-labs/shop/internal/service/models/user"
	"github.com/corray333/backend-labs/shop/internal/service/services/authsvc"
	"github.com/corray333/backend-labs/shop/internal/transport/http/v1/auth"
	"github.com/corray333/backend-labs/shop/internal/transport/http/v1/httperr"
	"github.com/corray333/backend-labs/shop/internal/transport/http/v1/request"
)

type service interface {
	SignUp(ctx context.Context, kind user.Kind, in authsvc.SignUpInput) (string, *user.Account, error)
	Login(ctx context.Context, kind user.Kind, email, password string) (string, error)
}

type buyerLister interface {
	GetBuyersOfClient(ctx context.Context, clientID string) ([]user.Buyer, error)
}

type signUpRequest struct {
	Name     string `json:"name"     validate:"required"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (r *signUpRequest) toModel() authsvc.SignUpInput {
	return authsvc.SignUpInput{Name: r.Name, Email: r.Email, Password: r.Password}
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

type tokenResponse struct {
	Token   string        `json:"token"`
	Account *user.Account `json:"account,omitempty"`
}

// SignUp handles POST /users/signup and /clients/signup.
func SignUp(w http.ResponseWriter, r *http.Request, service service, kind user.Kind) {
	req := signUpRequest{}
	if err := request.DecodeJSON(r, &req); err != nil {
		httperr.Write(w, r, err)

		return
	}

	token, account, err := service.SignUp(r.Context(), kind, req.toModel())
	if err != nil {
		httperr.Write(w, r, err)

		return
	}

	httperr.WriteJSON(w, r, http.StatusCreated, tokenResponse{Token: token, Account: account})
}

// Login handles POST /users/login and /clients/login.
func Login(w http.ResponseWriter, r *http.Request, service service, kind user.Kind) {
	req := loginRequest{}
	if err := request.DecodeJSON(r, &req); err != nil {
		httperr.Write(w, r, err)

		return
	}

	token, err := service.Login(r.Context(), kind, req.Email, req.Password)
	if err != nil {
		httperr.Write(w, r, err)

		return
	}

	httperr.WriteJSON(w, r, http.StatusOK, tokenResponse{Token: token})
}

// ListClientBuyers handles GET /users/client: the users who ordered products of the calling client.
func ListClientBuyers(w http.ResponseWriter, r *http.Request, service buyerLister) {
	caller, err := auth.Caller(r)
	if err != nil {
		httperr.Write(w, r, err)

		return
	}

	buyers, err := service.GetBuyersOfClient(r.Context(), caller.ID)
	if err != nil {
		httperr.Write(w, r, err)

		return
	}

	if buyers == nil {
		buyers = []user.Buyer{}
	}

	httperr.WriteJSON(w, r, http.StatusOK, buyers)
}
