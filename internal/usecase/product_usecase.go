package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/DRSN-tech/pos-backend/internal/domain"
	"github.com/DRSN-tech/pos-backend/pkg/e"
	"github.com/DRSN-tech/pos-backend/pkg/logger"
)

// ProductUseCase реализует бизнес-логику каталога товаров.
type ProductUseCase struct {
	productRepo ProductRepository
	cacheRepo   CacheRepository
	logger      logger.Logger
}

func NewProductUC(
	productRepo ProductRepository,
	cacheRepo CacheRepository,
	logger logger.Logger,
) *ProductUseCase {
	return &ProductUseCase{
		productRepo: productRepo,
		cacheRepo:   cacheRepo,
		logger:      logger,
	}
}

// CreateProduct валидирует и сохраняет новый товар.
// Валидация дублирует внешний слой: ядро не должно записать товар,
// нарушающий инварианты каталога.
func (p *ProductUseCase) CreateProduct(ctx context.Context, req *CreateProductReq) (*domain.Product, error) {
	const op = "ProductUseCase.CreateProduct"

	if err := p.validateProduct(req); err != nil {
		return nil, e.Wrap(op, err)
	}

	product, err := p.productRepo.Create(ctx, domain.NewProduct(
		req.Name, req.Category, req.PurchasePrice, req.SalePrice, req.Stock, req.Description,
	))
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return product, nil
}

// GetProduct возвращает товар по ID. Отсутствие товара — штатный результат
// (e.ErrProductNotFound). Чтение идёт через кэш, промахи добираются из БД
// и кэшируются в фоне.
func (p *ProductUseCase) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	const op = "ProductUseCase.GetProduct"

	cached, err := p.cacheRepo.GetProduct(ctx, id)
	if err != nil {
		p.logger.Warnf("Cache lookup failed for product %d: %v", id, e.Wrap(op, err))
	}
	if cached != nil {
		return cached, nil
	}

	product, err := p.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	// Фоновое добавление товара в кэш
	go func() {
		bgCtx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
		defer cancel()

		if err := p.cacheRepo.SetProduct(bgCtx, product); err != nil {
			p.logger.Warnf("Failed to cache product in background: %v", e.Wrap(op, err))
		}
	}()

	return product, nil
}

// ListProducts возвращает все товары, новые первыми. Пагинации нет —
// известное ограничение каталога.
func (p *ProductUseCase) ListProducts(ctx context.Context) ([]*domain.Product, error) {
	const op = "ProductUseCase.ListProducts"

	products, err := p.productRepo.List(ctx)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return products, nil
}

// UpdateProduct применяет частичное обновление: меняются только переданные
// поля, Description c явным null очищается. Возвращает полный обновлённый товар.
func (p *ProductUseCase) UpdateProduct(ctx context.Context, req *UpdateProductReq) (*domain.Product, error) {
	const op = "ProductUseCase.UpdateProduct"

	if err := p.validatePatch(req); err != nil {
		return nil, e.Wrap(op, err)
	}

	product, err := p.productRepo.Update(ctx, req)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	p.invalidateCache(ctx, op, []int64{req.ID})

	return product, nil
}

// DeleteProduct удаляет товар. Отсутствие ID — отрицательный результат,
// не ошибка. Каскад схемы удаляет зависимые позиции продаж.
func (p *ProductUseCase) DeleteProduct(ctx context.Context, id int64) (*DeleteProductRes, error) {
	const op = "ProductUseCase.DeleteProduct"

	deleted, err := p.productRepo.Delete(ctx, id)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	if !deleted {
		return NewDeleteProductRes(false, fmt.Sprintf("Product with ID %d not found", id)), nil
	}

	p.invalidateCache(ctx, op, []int64{id})

	return NewDeleteProductRes(true, fmt.Sprintf("Product with ID %d deleted successfully", id)), nil
}

// invalidateCache удаляет товары из кэша; сбой кэша не фатален для операции.
func (p *ProductUseCase) invalidateCache(ctx context.Context, op string, ids []int64) {
	if err := p.cacheRepo.DeleteProducts(ctx, ids); err != nil {
		p.logger.Warnf("Failed to delete products from cache: %v", e.Wrap(op, err))
	}
}

// validateProduct проверяет инварианты каталога для нового товара.
func (p *ProductUseCase) validateProduct(req *CreateProductReq) error {
	if strings.TrimSpace(req.Name) == "" {
		return e.ErrProductNameRequired
	}

	if strings.TrimSpace(req.Category) == "" {
		return e.ErrProductCategoryRequired
	}

	if req.PurchasePrice <= 0 || req.SalePrice <= 0 {
		return e.ErrPriceMustBePositive
	}

	if req.Stock < 0 {
		return e.ErrStockMustBeNonNegative
	}

	return nil
}

// validatePatch проверяет только переданные поля.
func (p *ProductUseCase) validatePatch(req *UpdateProductReq) error {
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return e.ErrProductNameRequired
	}

	if req.Category != nil && strings.TrimSpace(*req.Category) == "" {
		return e.ErrProductCategoryRequired
	}

	if req.PurchasePrice != nil && *req.PurchasePrice <= 0 {
		return e.ErrPriceMustBePositive
	}

	if req.SalePrice != nil && *req.SalePrice <= 0 {
		return e.ErrPriceMustBePositive
	}

	if req.Stock != nil && *req.Stock < 0 {
		return e.ErrStockMustBeNonNegative
	}

	return nil
}
