package iaccountrepo

import (
	"context"

	"github.com/corray333/backend-labs/shop/internal/service/models/user"
)

type IAccountRepository interface {
	Insert(ctx context.Context, a user.Account) error
	GetByEmail(ctx context.Context, kind user.Kind, email string) (*user.Account, error)
	Exists(ctx context.Context, kind user.Kind, id string) (bool, error)
	QueryBuyersOfClient(ctx context.Context, clientID string) ([]user.Buyer, error)
}
