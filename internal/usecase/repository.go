package usecase

import (
	"context"

	"github.com/DRSN-tech/pos-backend/internal/domain"
)

type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) (*domain.Product, error)
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	List(ctx context.Context) ([]*domain.Product, error)
	Update(ctx context.Context, req *UpdateProductReq) (*domain.Product, error)
	Delete(ctx context.Context, id int64) (bool, error)

	// GetForUpdate читает остатки в рамках транзакции из контекста,
	// блокируя строки до её завершения.
	GetForUpdate(ctx context.Context, ids []int64) ([]ProductStock, error)
	DecrementStock(ctx context.Context, id int64, qty int32) error
}

type SaleRepository interface {
	CreateSale(ctx context.Context, sale *domain.Sale) (*domain.Sale, error)
	CreateSaleItems(ctx context.Context, items []*domain.SaleItem) error
	GetSalesWithItems(ctx context.Context) ([]SaleDetail, error)
}

type OutboxRepository interface {
	Create(ctx context.Context, event *OutboxEvent) (*OutboxEvent, error)
	GetAndMarkAsProcessing(ctx context.Context, limit int) ([]*OutboxEvent, error)
	MarkAsProcessed(ctx context.Context, id int64) error
}

type CacheRepository interface {
	// GetProduct возвращает (nil, nil) при промахе кэша.
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	SetProduct(ctx context.Context, product *domain.Product) error
	DeleteProducts(ctx context.Context, ids []int64) error
}
