package usecase_test

import (
	"context"
	"sync"
	"time"

	"github.com/DRSN-tech/pos-backend/internal/domain"
	"github.com/DRSN-tech/pos-backend/internal/usecase"
	"github.com/DRSN-tech/pos-backend/pkg/e"
	"github.com/jackc/pgx/v5"
)

type noopLogger struct{}

func (noopLogger) Debugf(string, ...any)        {}
func (noopLogger) Infof(string, ...any)         {}
func (noopLogger) Warnf(string, ...any)         {}
func (noopLogger) Errorf(error, string, ...any) {}

// fakeTx подменяет pgx.Tx в тестах: фиксирует только факт commit/rollback.
// Остальные методы pgx.Tx не вызываются и остаются nil-заглушками.
type fakeTx struct {
	pgx.Tx
	committed  bool
	rolledBack bool
}

func (t *fakeTx) Commit(context.Context) error {
	t.committed = true
	return nil
}

func (t *fakeTx) Rollback(context.Context) error {
	t.rolledBack = true
	return nil
}

type fakeDB struct {
	tx *fakeTx
}

func newFakeDB() *fakeDB {
	return &fakeDB{tx: &fakeTx{}}
}

func (d *fakeDB) Begin(context.Context) (pgx.Tx, error) {
	return d.tx, nil
}

func (d *fakeDB) BeginTx(context.Context, pgx.TxOptions) (pgx.Tx, error) {
	return d.tx, nil
}

type fakeProductRepo struct {
	mu       sync.Mutex
	products map[int64]*domain.Product
	nextID   int64

	decremented  map[int64]int32
	decrementErr error
	createErr    error
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{
		products:    make(map[int64]*domain.Product),
		decremented: make(map[int64]int32),
		nextID:      1,
	}
}

func (f *fakeProductRepo) add(product *domain.Product) *domain.Product {
	f.mu.Lock()
	defer f.mu.Unlock()

	stored := *product
	stored.ID = f.nextID
	stored.CreatedAt = time.Now()
	f.nextID++
	f.products[stored.ID] = &stored

	return &stored
}

func (f *fakeProductRepo) Create(_ context.Context, product *domain.Product) (*domain.Product, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}

	return f.add(product), nil
}

func (f *fakeProductRepo) GetByID(_ context.Context, id int64) (*domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	product, found := f.products[id]
	if !found {
		return nil, e.ErrProductNotFound
	}

	copied := *product
	return &copied, nil
}

func (f *fakeProductRepo) List(context.Context) ([]*domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	result := make([]*domain.Product, 0, len(f.products))
	for _, product := range f.products {
		copied := *product
		result = append(result, &copied)
	}

	return result, nil
}

func (f *fakeProductRepo) Update(_ context.Context, req *usecase.UpdateProductReq) (*domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	product, found := f.products[req.ID]
	if !found {
		return nil, e.ErrProductNotFound
	}

	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Category != nil {
		product.Category = *req.Category
	}
	if req.PurchasePrice != nil {
		product.PurchasePrice = *req.PurchasePrice
	}
	if req.SalePrice != nil {
		product.SalePrice = *req.SalePrice
	}
	if req.Stock != nil {
		product.Stock = *req.Stock
	}
	if req.Description.Set {
		product.Description = req.Description.Value
	}

	copied := *product
	return &copied, nil
}

func (f *fakeProductRepo) Delete(_ context.Context, id int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, found := f.products[id]; !found {
		return false, nil
	}

	delete(f.products, id)
	return true, nil
}

func (f *fakeProductRepo) GetForUpdate(_ context.Context, ids []int64) ([]usecase.ProductStock, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	result := make([]usecase.ProductStock, 0, len(ids))
	for _, id := range ids {
		if product, found := f.products[id]; found {
			result = append(result, usecase.ProductStock{
				ID:    product.ID,
				Name:  product.Name,
				Stock: product.Stock,
			})
		}
	}

	return result, nil
}

func (f *fakeProductRepo) DecrementStock(_ context.Context, id int64, qty int32) error {
	if f.decrementErr != nil {
		return f.decrementErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	product, found := f.products[id]
	if !found || product.Stock < qty {
		return e.ErrStockConflict
	}

	product.Stock -= qty
	f.decremented[id] += qty

	return nil
}

type fakeSaleRepo struct {
	nextSaleID int64
	sales      []*domain.Sale
	items      []*domain.SaleItem
	details    []usecase.SaleDetail

	createItemsErr error
	listErr        error
}

func newFakeSaleRepo() *fakeSaleRepo {
	return &fakeSaleRepo{nextSaleID: 1}
}

func (f *fakeSaleRepo) CreateSale(_ context.Context, sale *domain.Sale) (*domain.Sale, error) {
	stored := *sale
	stored.ID = f.nextSaleID
	stored.OccurredAt = time.Now()
	f.nextSaleID++
	f.sales = append(f.sales, &stored)

	copied := stored
	return &copied, nil
}

func (f *fakeSaleRepo) CreateSaleItems(_ context.Context, items []*domain.SaleItem) error {
	if f.createItemsErr != nil {
		return f.createItemsErr
	}

	f.items = append(f.items, items...)
	return nil
}

func (f *fakeSaleRepo) GetSalesWithItems(context.Context) ([]usecase.SaleDetail, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}

	return f.details, nil
}

type fakeOutboxRepo struct {
	events    []*usecase.OutboxEvent
	createErr error
}

func (f *fakeOutboxRepo) Create(_ context.Context, event *usecase.OutboxEvent) (*usecase.OutboxEvent, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}

	stored := *event
	stored.ID = int64(len(f.events) + 1)
	f.events = append(f.events, &stored)

	return &stored, nil
}

func (f *fakeOutboxRepo) GetAndMarkAsProcessing(context.Context, int) ([]*usecase.OutboxEvent, error) {
	return nil, nil
}

func (f *fakeOutboxRepo) MarkAsProcessed(context.Context, int64) error {
	return nil
}

type fakeCacheRepo struct {
	mu       sync.Mutex
	products map[int64]*domain.Product
	deleted  []int64
	getErr   error
}

func newFakeCacheRepo() *fakeCacheRepo {
	return &fakeCacheRepo{products: make(map[int64]*domain.Product)}
}

func (f *fakeCacheRepo) GetProduct(_ context.Context, id int64) (*domain.Product, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	product, found := f.products[id]
	if !found {
		return nil, nil
	}

	copied := *product
	return &copied, nil
}

func (f *fakeCacheRepo) SetProduct(_ context.Context, product *domain.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	copied := *product
	f.products[copied.ID] = &copied

	return nil
}

func (f *fakeCacheRepo) DeleteProducts(_ context.Context, ids []int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, id := range ids {
		delete(f.products, id)
	}
	f.deleted = append(f.deleted, ids...)

	return nil
}

func (f *fakeCacheRepo) deletedIDs() []int64 {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]int64(nil), f.deleted...)
}
