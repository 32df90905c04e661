package converter

import "github.com/DRSN-tech/pos-backend/internal/domain"

// ProductConverter преобразует сущности Product между domain и кэш-моделью.
type ProductConverter interface {
	ToRedisModel(entity *domain.Product) *ProductRedisModel
	ToEntity(model *ProductRedisModel) *domain.Product
}

type ProductConverterImpl struct{}

func NewProductConverterImpl() *ProductConverterImpl {
	return &ProductConverterImpl{}
}

func (c *ProductConverterImpl) ToRedisModel(entity *domain.Product) *ProductRedisModel {
	return &ProductRedisModel{
		ID:            entity.ID,
		Name:          entity.Name,
		Category:      entity.Category,
		PurchasePrice: entity.PurchasePrice,
		SalePrice:     entity.SalePrice,
		Stock:         entity.Stock,
		Description:   entity.Description,
		CreatedAt:     entity.CreatedAt,
	}
}

func (c *ProductConverterImpl) ToEntity(model *ProductRedisModel) *domain.Product {
	return &domain.Product{
		ID:            model.ID,
		Name:          model.Name,
		Category:      model.Category,
		PurchasePrice: model.PurchasePrice,
		SalePrice:     model.SalePrice,
		Stock:         model.Stock,
		Description:   model.Description,
		CreatedAt:     model.CreatedAt,
	}
}
