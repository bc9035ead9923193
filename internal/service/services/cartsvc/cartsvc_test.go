package cartsvc

import (
	"context"
	"testing"

	"github.com/corray333/backend-labs/shop/internal/service/models/apperr"
	"github.com/corray333/backend-labs/shop/internal/service/models/cart"
	"github.com/stretchr/testify/require"
)

type memCart struct {
	lines map[[2]string]cart.Item
}

func (m *memCart) Add(_ context.Context, item cart.Item) (*cart.Item, error) {
	key := [2]string{item.UserID, item.ProductID}
	if existing, ok := m.lines[key]; ok {
		existing.Quantity += item.Quantity
		existing.UpdatedAt = item.UpdatedAt
		item = existing
	}
	m.lines[key] = item

	return &item, nil
}

func (m *memCart) QueryByUser(_ context.Context, userID string) ([]cart.Item, error) {
	var out []cart.Item
	for k, it := range m.lines {
		if k[0] == userID {
			out = append(out, it)
		}
	}

	return out, nil
}

func TestAddToCart(t *testing.T) {
	repo := &memCart{lines: map[[2]string]cart.Item{}}
	svc := MustNewCartService(withRepository(repo))
	ctx := context.Background()

	first, err := svc.AddToCart(ctx, "u1", "p1", 2)
	require.NoError(t, err)

	second, err := svc.AddToCart(ctx, "u1", "p1", 3)
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
	require.Equal(t, int64(5), second.Quantity)

	items, err := svc.GetCart(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, items, 1)

	_, err = svc.AddToCart(ctx, "u1", "p1", 0)
	require.ErrorIs(t, err, apperr.ErrValidation)

	_, err = svc.AddToCart(ctx, "u1", "", 1)
	require.ErrorIs(t, err, apperr.ErrValidation)
}
