package usecase

import (
	"context"

	"github.com/DRSN-tech/pos-backend/internal/domain"
)

type ProductUC interface {
	CreateProduct(ctx context.Context, req *CreateProductReq) (*domain.Product, error)
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	ListProducts(ctx context.Context) ([]*domain.Product, error)
	UpdateProduct(ctx context.Context, req *UpdateProductReq) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id int64) (*DeleteProductRes, error)
}

type SaleUC interface {
	RecordSale(ctx context.Context, req *RecordSaleReq) (*SaleDetail, error)
	ListSales(ctx context.Context) ([]SaleDetail, error)
}
