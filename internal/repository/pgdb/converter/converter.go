package converter

import (
	"github.com/DRSN-tech/pos-backend/internal/domain"
	"github.com/DRSN-tech/pos-backend/internal/usecase"
	"github.com/DRSN-tech/pos-backend/pkg/money"
)

// ProductConverter преобразует сущности Product между domain и моделью PostgreSQL.
type ProductConverter interface {
	ToModel(entity *domain.Product) *ProductModel
	ToEntity(model *ProductModel) *domain.Product
	ToArrEntity(models []*ProductModel) []*domain.Product
}

// SaleConverter преобразует сущности Sale между domain и моделью PostgreSQL.
type SaleConverter interface {
	ToModel(entity *domain.Sale) *SaleModel
	ToEntity(model *SaleModel) *domain.Sale
}

// OutboxEventConverter преобразует сущности OutboxEvent между usecase и моделью PostgreSQL.
type OutboxEventConverter interface {
	ToModel(entity *usecase.OutboxEvent) *OutboxEventModel
	ToEntity(model *OutboxEventModel) *usecase.OutboxEvent
	ToArrEntity(models []*OutboxEventModel) []*usecase.OutboxEvent
}

type ProductConverterImpl struct{}

func NewProductConverterImpl() *ProductConverterImpl {
	return &ProductConverterImpl{}
}

func (c *ProductConverterImpl) ToModel(entity *domain.Product) *ProductModel {
	return &ProductModel{
		ID:            entity.ID,
		Name:          entity.Name,
		Category:      entity.Category,
		PurchasePrice: money.ToDecimal(entity.PurchasePrice),
		SalePrice:     money.ToDecimal(entity.SalePrice),
		Stock:         entity.Stock,
		Description:   entity.Description,
		CreatedAt:     entity.CreatedAt,
	}
}

func (c *ProductConverterImpl) ToEntity(model *ProductModel) *domain.Product {
	return &domain.Product{
		ID:            model.ID,
		Name:          model.Name,
		Category:      model.Category,
		PurchasePrice: money.FromDecimal(model.PurchasePrice),
		SalePrice:     money.FromDecimal(model.SalePrice),
		Stock:         model.Stock,
		Description:   model.Description,
		CreatedAt:     model.CreatedAt,
	}
}

func (c *ProductConverterImpl) ToArrEntity(models []*ProductModel) []*domain.Product {
	entities := make([]*domain.Product, 0, len(models))
	for _, model := range models {
		entities = append(entities, c.ToEntity(model))
	}

	return entities
}

type SaleConverterImpl struct{}

func NewSaleConverterImpl() *SaleConverterImpl {
	return &SaleConverterImpl{}
}

func (c *SaleConverterImpl) ToModel(entity *domain.Sale) *SaleModel {
	return &SaleModel{
		ID:         entity.ID,
		OccurredAt: entity.OccurredAt,
		Total:      money.ToDecimal(entity.Total),
		Cashier:    entity.Cashier,
	}
}

func (c *SaleConverterImpl) ToEntity(model *SaleModel) *domain.Sale {
	return &domain.Sale{
		ID:         model.ID,
		OccurredAt: model.OccurredAt,
		Total:      money.FromDecimal(model.Total),
		Cashier:    model.Cashier,
	}
}

type OutboxEventConverterImpl struct{}

func NewOutboxEventConverterImpl() *OutboxEventConverterImpl {
	return &OutboxEventConverterImpl{}
}

func (c *OutboxEventConverterImpl) ToModel(entity *usecase.OutboxEvent) *OutboxEventModel {
	return &OutboxEventModel{
		ID:          entity.ID,
		EventID:     entity.EventID,
		EventType:   string(entity.EventType),
		SaleID:      entity.SaleID,
		Payload:     entity.Payload,
		Status:      string(entity.Status),
		CreatedAt:   entity.CreatedAt,
		ProcessedAt: entity.ProcessedAt,
	}
}

func (c *OutboxEventConverterImpl) ToEntity(model *OutboxEventModel) *usecase.OutboxEvent {
	return &usecase.OutboxEvent{
		ID:          model.ID,
		EventID:     model.EventID,
		EventType:   usecase.OutboxEventType(model.EventType),
		SaleID:      model.SaleID,
		Payload:     model.Payload,
		Status:      usecase.OutboxStatus(model.Status),
		CreatedAt:   model.CreatedAt,
		ProcessedAt: model.ProcessedAt,
	}
}

func (c *OutboxEventConverterImpl) ToArrEntity(models []*OutboxEventModel) []*usecase.OutboxEvent {
	entities := make([]*usecase.OutboxEvent, 0, len(models))
	for _, model := range models {
		entities = append(entities, c.ToEntity(model))
	}

	return entities
}
