package usecase_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/DRSN-tech/pos-backend/internal/domain"
	"github.com/DRSN-tech/pos-backend/internal/usecase"
	"github.com/DRSN-tech/pos-backend/pkg/e"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type saleFixture struct {
	productRepo *fakeProductRepo
	saleRepo    *fakeSaleRepo
	outboxRepo  *fakeOutboxRepo
	cacheRepo   *fakeCacheRepo
	db          *fakeDB
	uc          *usecase.SaleUseCase
}

func newSaleFixture() *saleFixture {
	f := &saleFixture{
		productRepo: newFakeProductRepo(),
		saleRepo:    newFakeSaleRepo(),
		outboxRepo:  &fakeOutboxRepo{},
		cacheRepo:   newFakeCacheRepo(),
		db:          newFakeDB(),
	}
	f.uc = usecase.NewSaleUC(f.saleRepo, f.productRepo, f.outboxRepo, f.db, f.cacheRepo, noopLogger{})

	return f
}

func (f *saleFixture) addWidget(stock int32) *domain.Product {
	return f.productRepo.add(domain.NewProduct("Widget", "tools", 10000, 15000, stock, nil))
}

func TestRecordSale(t *testing.T) {
	f := newSaleFixture()
	widget := f.addWidget(10)

	detail, err := f.uc.RecordSale(context.Background(), usecase.NewRecordSaleReq("cashier1", []usecase.SaleItemReq{
		{ProductID: widget.ID, Qty: 3, SalePrice: 15000},
	}))
	require.NoError(t, err)

	assert.Equal(t, int64(45000), detail.Total)
	assert.Equal(t, "cashier1", detail.Cashier)
	require.Len(t, detail.Items, 1)
	assert.Equal(t, "Widget", detail.Items[0].ProductName)
	assert.Equal(t, int32(3), detail.Items[0].Qty)
	assert.Equal(t, int64(45000), detail.Items[0].Subtotal)

	stored, err := f.productRepo.GetByID(context.Background(), widget.ID)
	require.NoError(t, err)
	assert.Equal(t, int32(7), stored.Stock)

	assert.True(t, f.db.tx.committed)
	assert.False(t, f.db.tx.rolledBack)
	assert.Contains(t, f.cacheRepo.deletedIDs(), widget.ID)

	// Следующая продажа сверх остатка отклоняется, остаток не меняется
	_, err = f.uc.RecordSale(context.Background(), usecase.NewRecordSaleReq("cashier1", []usecase.SaleItemReq{
		{ProductID: widget.ID, Qty: 8, SalePrice: 15000},
	}))

	var stockErr *e.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, int64(8), stockErr.Requested)
	assert.Equal(t, int32(7), stockErr.Available)

	stored, err = f.productRepo.GetByID(context.Background(), widget.ID)
	require.NoError(t, err)
	assert.Equal(t, int32(7), stored.Stock)
}

func TestRecordSaleInsufficientStock(t *testing.T) {
	f := newSaleFixture()
	widget := f.addWidget(7)

	_, err := f.uc.RecordSale(context.Background(), usecase.NewRecordSaleReq("cashier1", []usecase.SaleItemReq{
		{ProductID: widget.ID, Qty: 8, SalePrice: 15000},
	}))

	var stockErr *e.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, widget.ID, stockErr.ProductID)
	assert.Equal(t, int64(8), stockErr.Requested)
	assert.Equal(t, int32(7), stockErr.Available)

	// Остатки и история не тронуты, транзакция откатилась
	stored, getErr := f.productRepo.GetByID(context.Background(), widget.ID)
	require.NoError(t, getErr)
	assert.Equal(t, int32(7), stored.Stock)
	assert.Empty(t, f.saleRepo.sales)
	assert.True(t, f.db.tx.rolledBack)
	assert.False(t, f.db.tx.committed)
}

func TestRecordSaleCumulativeQtyPerProduct(t *testing.T) {
	f := newSaleFixture()
	widget := f.addWidget(5)

	// Две позиции одного товара: проверка идёт против суммарного количества
	_, err := f.uc.RecordSale(context.Background(), usecase.NewRecordSaleReq("cashier1", []usecase.SaleItemReq{
		{ProductID: widget.ID, Qty: 3, SalePrice: 15000},
		{ProductID: widget.ID, Qty: 3, SalePrice: 14000},
	}))

	var stockErr *e.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, int64(6), stockErr.Requested)
	assert.Equal(t, int32(5), stockErr.Available)
}

func TestRecordSaleHugeCumulativeQty(t *testing.T) {
	f := newSaleFixture()
	widget := f.addWidget(5)

	// Суммарное количество двух позиций не влезает в int32; продажа всё равно
	// должна отклониться по остатку, а не пройти из-за переполнения суммы
	_, err := f.uc.RecordSale(context.Background(), usecase.NewRecordSaleReq("cashier1", []usecase.SaleItemReq{
		{ProductID: widget.ID, Qty: 1_500_000_000, SalePrice: 15000},
		{ProductID: widget.ID, Qty: 1_500_000_000, SalePrice: 15000},
	}))

	var stockErr *e.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, int64(3_000_000_000), stockErr.Requested)
	assert.Equal(t, int32(5), stockErr.Available)

	stored, getErr := f.productRepo.GetByID(context.Background(), widget.ID)
	require.NoError(t, getErr)
	assert.Equal(t, int32(5), stored.Stock)
	assert.Empty(t, f.saleRepo.sales)
	assert.False(t, f.db.tx.committed)
}

func TestRecordSaleDuplicateLinesKeptSeparate(t *testing.T) {
	f := newSaleFixture()
	widget := f.addWidget(10)

	detail, err := f.uc.RecordSale(context.Background(), usecase.NewRecordSaleReq("cashier1", []usecase.SaleItemReq{
		{ProductID: widget.ID, Qty: 2, SalePrice: 15000},
		{ProductID: widget.ID, Qty: 1, SalePrice: 12000},
	}))
	require.NoError(t, err)

	// Позиции не сливаются, каждая сохраняет свою цену
	require.Len(t, detail.Items, 2)
	assert.Equal(t, int64(30000), detail.Items[0].Subtotal)
	assert.Equal(t, int64(12000), detail.Items[1].Subtotal)
	assert.Equal(t, int64(42000), detail.Total)

	stored, err := f.productRepo.GetByID(context.Background(), widget.ID)
	require.NoError(t, err)
	assert.Equal(t, int32(7), stored.Stock)
}

func TestRecordSaleUnknownProduct(t *testing.T) {
	f := newSaleFixture()

	_, err := f.uc.RecordSale(context.Background(), usecase.NewRecordSaleReq("cashier1", []usecase.SaleItemReq{
		{ProductID: 777, Qty: 1, SalePrice: 15000},
	}))

	require.ErrorIs(t, err, e.ErrProductNotFound)
	assert.True(t, f.db.tx.rolledBack)
}

func TestRecordSaleValidation(t *testing.T) {
	f := newSaleFixture()
	widget := f.addWidget(10)

	tests := []struct {
		name    string
		req     *usecase.RecordSaleReq
		wantErr error
	}{
		{
			name:    "empty cashier",
			req:     usecase.NewRecordSaleReq("  ", []usecase.SaleItemReq{{ProductID: widget.ID, Qty: 1, SalePrice: 100}}),
			wantErr: e.ErrCashierRequired,
		},
		{
			name:    "no items",
			req:     usecase.NewRecordSaleReq("cashier1", nil),
			wantErr: e.ErrNoSaleItems,
		},
		{
			name:    "zero qty",
			req:     usecase.NewRecordSaleReq("cashier1", []usecase.SaleItemReq{{ProductID: widget.ID, Qty: 0, SalePrice: 100}}),
			wantErr: e.ErrQtyMustBePositive,
		},
		{
			name:    "non-positive price",
			req:     usecase.NewRecordSaleReq("cashier1", []usecase.SaleItemReq{{ProductID: widget.ID, Qty: 1, SalePrice: 0}}),
			wantErr: e.ErrPriceMustBePositive,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.uc.RecordSale(context.Background(), tt.req)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}

	// Валидация отрабатывает до открытия транзакции
	assert.False(t, f.db.tx.committed)
	assert.False(t, f.db.tx.rolledBack)
}

func TestRecordSaleRollbackOnItemsFailure(t *testing.T) {
	f := newSaleFixture()
	widget := f.addWidget(10)
	f.saleRepo.createItemsErr = errors.New("insert failed")

	_, err := f.uc.RecordSale(context.Background(), usecase.NewRecordSaleReq("cashier1", []usecase.SaleItemReq{
		{ProductID: widget.ID, Qty: 3, SalePrice: 15000},
	}))

	require.Error(t, err)
	assert.True(t, f.db.tx.rolledBack)
	assert.False(t, f.db.tx.committed)

	stored, getErr := f.productRepo.GetByID(context.Background(), widget.ID)
	require.NoError(t, getErr)
	assert.Equal(t, int32(10), stored.Stock)
}

func TestRecordSaleStorageFailure(t *testing.T) {
	f := newSaleFixture()
	widget := f.addWidget(10)
	f.saleRepo.createItemsErr = e.StorageFailure(errors.New("dial tcp 127.0.0.1:5432: connection refused"))

	_, err := f.uc.RecordSale(context.Background(), usecase.NewRecordSaleReq("cashier1", []usecase.SaleItemReq{
		{ProductID: widget.ID, Qty: 3, SalePrice: 15000},
	}))

	// Сбой соединения доходит до вызывающего слоя помеченным как transient
	require.ErrorIs(t, err, e.ErrStorageUnavailable)
	assert.True(t, f.db.tx.rolledBack)
	assert.False(t, f.db.tx.committed)
}

func TestRecordSaleOutboxEvent(t *testing.T) {
	f := newSaleFixture()
	widget := f.addWidget(10)

	detail, err := f.uc.RecordSale(context.Background(), usecase.NewRecordSaleReq("cashier1", []usecase.SaleItemReq{
		{ProductID: widget.ID, Qty: 3, SalePrice: 15000},
	}))
	require.NoError(t, err)

	require.Len(t, f.outboxRepo.events, 1)
	event := f.outboxRepo.events[0]
	assert.Equal(t, usecase.SaleRecorded, event.EventType)
	assert.Equal(t, detail.ID, event.SaleID)
	assert.Equal(t, usecase.Pending, event.Status)
	assert.NotEmpty(t, event.EventID)

	var payload struct {
		SaleID  int64  `json:"sale_id"`
		Cashier string `json:"cashier"`
		Total   string `json:"total"`
		Items   []struct {
			ProductID int64  `json:"product_id"`
			Qty       int32  `json:"qty"`
			SalePrice string `json:"sale_price"`
			Subtotal  string `json:"subtotal"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal(event.Payload, &payload))

	assert.Equal(t, detail.ID, payload.SaleID)
	assert.Equal(t, "450.00", payload.Total)
	require.Len(t, payload.Items, 1)
	assert.Equal(t, "150.00", payload.Items[0].SalePrice)
	assert.Equal(t, "450.00", payload.Items[0].Subtotal)
}

func TestListSales(t *testing.T) {
	f := newSaleFixture()
	f.saleRepo.details = []usecase.SaleDetail{
		{ID: 2, Cashier: "cashier2", Total: 2000},
		{ID: 1, Cashier: "cashier1", Total: 1000},
	}

	details, err := f.uc.ListSales(context.Background())
	require.NoError(t, err)
	require.Len(t, details, 2)
	assert.Equal(t, int64(2), details[0].ID)
	assert.Equal(t, int64(1), details[1].ID)
}

func TestListSalesError(t *testing.T) {
	f := newSaleFixture()
	f.saleRepo.listErr = errors.New("query failed")

	_, err := f.uc.ListSales(context.Background())
	require.Error(t, err)
}
