package ordersvc

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/corray333/backend-labs/shop/internal/dal/interfaces/iorderitemrepo"
	"github.com/corray333/backend-labs/shop/internal/dal/interfaces/iorderrepo"
	"github.com/corray333/backend-labs/shop/internal/dal/interfaces/ioutboxrepo"
	"github.com/corray333/backend-labs/shop/internal/dal/interfaces/iproductrepo"
	"github.com/corray333/backend-labs/shop/internal/service/models/apperr"
	"github.com/corray333/backend-labs/shop/internal/service/models/order"
	"github.com/corray333/backend-labs/shop/internal/service/models/orderitem"
	"github.com/corray333/backend-labs/shop/internal/service/models/outbox"
	"github.com/corray333/backend-labs/shop/internal/service/models/product"
)

// fakeStore is an in-memory store with row locks that are skipped, never waited on.
type fakeStore struct {
	mu sync.Mutex

	products map[string]product.StockSnapshot
	locks    map[string]*fakeUOW
	orders   []order.Order
	items    []orderitem.OrderItem
	outbox   []outbox.OutboxMessage

	lockErrs   []error
	commitErrs []error
	lockCalls  [][]string
	begins     int
	commits    int
	rollbacks  int
}

func newFakeStore(products ...product.StockSnapshot) *fakeStore {
	st := &fakeStore{
		products: map[string]product.StockSnapshot{},
		locks:    map[string]*fakeUOW{},
	}
	for _, p := range products {
		st.products[p.ID] = p
	}

	return st
}

func (st *fakeStore) factory() func() unitOfWork {
	return func() unitOfWork { return &fakeUOW{store: st} }
}

func (st *fakeStore) stock(id string) int64 {
	st.mu.Lock()
	defer st.mu.Unlock()

	return st.products[id].Stock
}

func (st *fakeStore) committedOrders() []order.Order {
	st.mu.Lock()
	defer st.mu.Unlock()

	return slices.Clone(st.orders)
}

func popErr(errs *[]error) error {
	if len(*errs) == 0 {
		return nil
	}
	err := (*errs)[0]
	*errs = (*errs)[1:]

	return err
}

type fakeUOW struct {
	store      *fakeStore
	begun      bool
	decrements map[string]int64
	orders     []order.Order
	items      []orderitem.OrderItem
	outbox     []outbox.OutboxMessage
}

func (u *fakeUOW) Begin(context.Context) error {
	u.store.mu.Lock()
	defer u.store.mu.Unlock()

	u.begun = true
	u.decrements = map[string]int64{}
	u.store.begins++

	return nil
}

func (u *fakeUOW) Commit(context.Context) error {
	u.store.mu.Lock()
	defer u.store.mu.Unlock()

	if err := popErr(&u.store.commitErrs); err != nil {
		return err
	}

	for id, qty := range u.decrements {
		p := u.store.products[id]
		p.Stock -= qty
		u.store.products[id] = p
	}
	u.store.orders = append(u.store.orders, u.orders...)
	u.store.items = append(u.store.items, u.items...)
	u.store.outbox = append(u.store.outbox, u.outbox...)
	u.store.commits++
	u.releaseLocked()

	return nil
}

func (u *fakeUOW) Rollback(context.Context) error {
	u.store.mu.Lock()
	defer u.store.mu.Unlock()

	u.store.rollbacks++
	u.releaseLocked()

	return nil
}

func (u *fakeUOW) releaseLocked() {
	for id, holder := range u.store.locks {
		if holder == u {
			delete(u.store.locks, id)
		}
	}
}

func (u *fakeUOW) ProductRepository() iproductrepo.IProductRepository {
	return fakeProductRepo{u}
}

func (u *fakeUOW) OrderRepository() iorderrepo.IOrderRepository {
	return fakeOrderRepo{u}
}

func (u *fakeUOW) OrderItemRepository() iorderitemrepo.IOrderItemRepository {
	return fakeOrderItemRepo{u}
}

func (u *fakeUOW) OutboxRepository() ioutboxrepo.IOutboxRepository {
	return fakeOutboxRepo{u}
}

type fakeProductRepo struct{ u *fakeUOW }

func (r fakeProductRepo) LockForOrder(_ context.Context, ids []string) ([]product.StockSnapshot, error) {
	st := r.u.store
	st.mu.Lock()
	defer st.mu.Unlock()

	st.lockCalls = append(st.lockCalls, slices.Clone(ids))
	if err := popErr(&st.lockErrs); err != nil {
		return nil, err
	}

	var out []product.StockSnapshot
	for _, id := range ids {
		p, ok := st.products[id]
		if !ok {
			continue
		}
		if holder, locked := st.locks[id]; locked && holder != r.u {
			continue
		}
		st.locks[id] = r.u
		out = append(out, p)
	}

	return out, nil
}

func (r fakeProductRepo) DecrementStock(_ context.Context, id string, qty int64) error {
	st := r.u.store
	st.mu.Lock()
	defer st.mu.Unlock()

	if st.locks[id] != r.u {
		return errors.New("decrement without lock")
	}
	if st.products[id].Stock-r.u.decrements[id] < qty {
		return fmt.Errorf("product %s: %w", id, apperr.ErrInsufficientStock)
	}
	r.u.decrements[id] += qty

	return nil
}

func (r fakeProductRepo) Insert(context.Context, product.Product) error {
	return errors.New("not implemented")
}

func (r fakeProductRepo) Get(context.Context, string) (*product.Product, error) {
	return nil, errors.New("not implemented")
}

func (r fakeProductRepo) Query(context.Context, *product.QueryProductsModel) ([]product.Product, error) {
	return nil, errors.New("not implemented")
}

type fakeOrderRepo struct{ u *fakeUOW }

func (r fakeOrderRepo) Insert(_ context.Context, o order.Order) error {
	o.OrderItems = nil
	r.u.orders = append(r.u.orders, o)

	return nil
}

func (r fakeOrderRepo) Get(ctx context.Context, id string) (*order.Order, error) {
	orders, _ := r.Query(ctx, &order.QueryOrdersModel{Ids: []string{id}})
	if len(orders) == 0 {
		return nil, fmt.Errorf("order %s: %w", id, apperr.ErrNotFound)
	}

	return &orders[0], nil
}

func (r fakeOrderRepo) Query(_ context.Context, filter *order.QueryOrdersModel) ([]order.Order, error) {
	st := r.u.store
	st.mu.Lock()
	defer st.mu.Unlock()

	var out []order.Order
	for _, o := range st.orders {
		if len(filter.Ids) > 0 && !slices.Contains(filter.Ids, o.ID) {
			continue
		}
		if len(filter.UserIds) > 0 && !slices.Contains(filter.UserIds, o.UserID) {
			continue
		}
		o.OrderItems = []orderitem.OrderItem{}
		out = append(out, o)
	}

	return out, nil
}

func (r fakeOrderRepo) QueryByClient(context.Context, *order.QueryClientOrdersModel) ([]order.ClientOrder, error) {
	return nil, nil
}

func (r fakeOrderRepo) UpdateStatus(_ context.Context, id string, status order.Status) error {
	return r.update(id, func(o *order.Order) { o.Status = status })
}

func (r fakeOrderRepo) UpdateReturnReason(_ context.Context, id, reason string) error {
	return r.update(id, func(o *order.Order) { o.ReturnReason = &reason })
}

func (r fakeOrderRepo) update(id string, apply func(*order.Order)) error {
	st := r.u.store
	st.mu.Lock()
	defer st.mu.Unlock()

	for i := range st.orders {
		if st.orders[i].ID == id {
			apply(&st.orders[i])
			st.orders[i].UpdatedAt = time.Now()

			return nil
		}
	}

	return fmt.Errorf("order %s: %w", id, apperr.ErrNotFound)
}

type fakeOrderItemRepo struct{ u *fakeUOW }

func (r fakeOrderItemRepo) BulkInsert(_ context.Context, items []orderitem.OrderItem) error {
	r.u.items = append(r.u.items, items...)

	return nil
}

func (r fakeOrderItemRepo) Query(
	_ context.Context,
	filter *orderitem.QueryOrderItemsModel,
) ([]orderitem.OrderItem, error) {
	st := r.u.store
	st.mu.Lock()
	defer st.mu.Unlock()

	var out []orderitem.OrderItem
	for _, it := range st.items {
		if slices.Contains(filter.OrderIds, it.OrderID) {
			out = append(out, it)
		}
	}

	return out, nil
}

type fakeOutboxRepo struct{ u *fakeUOW }

func (r fakeOutboxRepo) Insert(_ context.Context, msg outbox.OutboxMessage) error {
	r.u.outbox = append(r.u.outbox, msg)

	return nil
}

func (r fakeOutboxRepo) GetPending(context.Context, time.Time, int) ([]outbox.OutboxMessage, error) {
	return nil, nil
}

func (r fakeOutboxRepo) Delete(context.Context, int64) error {
	return nil
}

func (r fakeOutboxRepo) MarkFailed(context.Context, int64, int, string, time.Time) error {
	return nil
}

type recordingInvalidator struct {
	mu  sync.Mutex
	ids [][]string
}

func (r *recordingInvalidator) Invalidate(_ context.Context, ids ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.ids = append(r.ids, ids)

	return nil
}
