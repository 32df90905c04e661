package usecase

import (
	"time"

	"github.com/DRSN-tech/pos-backend/internal/domain"
)

// PRODUCT USECASE

// CreateProductReq — запрос на создание товара. Цены в центах.
type CreateProductReq struct {
	Name          string
	Category      string
	PurchasePrice int64
	SalePrice     int64
	Stock         int32
	Description   *string // явный null допустим
}

// OptionalString различает «поле не передано» и «передан явный null».
// Set=false — поле опущено, Set=true и Value=nil — явный null.
type OptionalString struct {
	Set   bool
	Value *string
}

// UpdateProductReq — частичное обновление: меняются только переданные поля.
// nil-указатель означает «не менять», для Description присутствие поля
// кодируется отдельно через OptionalString.
type UpdateProductReq struct {
	ID            int64
	Name          *string
	Category      *string
	PurchasePrice *int64
	SalePrice     *int64
	Stock         *int32
	Description   OptionalString
}

// HasChanges сообщает, задано ли хотя бы одно поле.
func (r *UpdateProductReq) HasChanges() bool {
	return r.Name != nil || r.Category != nil || r.PurchasePrice != nil ||
		r.SalePrice != nil || r.Stock != nil || r.Description.Set
}

// DeleteProductRes — результат удаления. Отсутствие товара — штатный
// отрицательный результат, не ошибка.
type DeleteProductRes struct {
	Success bool
	Message string
}

// SALE USECASE

// SaleItemReq — позиция в запросе на продажу. Цена в центах.
type SaleItemReq struct {
	ProductID int64
	Qty       int32
	SalePrice int64
}

// RecordSaleReq — запрос на фиксацию продажи. Итоги от клиента не принимаются,
// total и subtotal считаются только на сервере.
type RecordSaleReq struct {
	Cashier string
	Items   []SaleItemReq
}

// SaleDetailItem — позиция денормализованной продажи. ProductName берётся из
// текущего состояния каталога на момент чтения.
type SaleDetailItem struct {
	ProductID   int64
	ProductName string
	Qty         int32
	SalePrice   int64
	Subtotal    int64
}

// SaleDetail — read-model продажи с позициями; собирается из реляционных
// таблиц, сам по себе не хранится.
type SaleDetail struct {
	ID         int64
	OccurredAt time.Time
	Total      int64
	Cashier    string
	Items      []SaleDetailItem
}

// OUTBOX

type OutboxStatus string

const (
	Pending    OutboxStatus = "pending"
	Processing OutboxStatus = "processing"
	Processed  OutboxStatus = "processed"
)

type OutboxEventType string

const SaleRecorded OutboxEventType = "sale.recorded"

// OutboxEvent — запись транзакционного outbox, публикуется в Kafka воркером.
type OutboxEvent struct {
	ID          int64
	EventID     string
	EventType   OutboxEventType
	SaleID      int64
	Payload     []byte
	Status      OutboxStatus
	CreatedAt   time.Time
	ProcessedAt *time.Time
}

// REPOSITORIES

// ProductStock — срез товара, прочитанный под блокировкой в recordSale.
type ProductStock struct {
	ID    int64
	Name  string
	Stock int32
}

// INFRASTRUCTURE

type WriteRawMessageReq struct {
	SaleID  int64
	Payload []byte
}

// MAPPERS

func NewCreateProductReq(name, category string, purchasePrice, salePrice int64, stock int32, description *string) *CreateProductReq {
	return &CreateProductReq{
		Name:          name,
		Category:      category,
		PurchasePrice: purchasePrice,
		SalePrice:     salePrice,
		Stock:         stock,
		Description:   description,
	}
}

func NewRecordSaleReq(cashier string, items []SaleItemReq) *RecordSaleReq {
	return &RecordSaleReq{
		Cashier: cashier,
		Items:   items,
	}
}

func NewDeleteProductRes(success bool, message string) *DeleteProductRes {
	return &DeleteProductRes{
		Success: success,
		Message: message,
	}
}

func NewOutboxEvent(eventID string, eventType OutboxEventType, saleID int64, payload []byte) *OutboxEvent {
	return &OutboxEvent{
		EventID:   eventID,
		EventType: eventType,
		SaleID:    saleID,
		Payload:   payload,
		Status:    Pending,
		CreatedAt: time.Now(),
	}
}

func NewWriteRawMessageReq(saleID int64, payload []byte) *WriteRawMessageReq {
	return &WriteRawMessageReq{
		SaleID:  saleID,
		Payload: payload,
	}
}

func NewSaleDetail(sale *domain.Sale, items []SaleDetailItem) *SaleDetail {
	return &SaleDetail{
		ID:         sale.ID,
		OccurredAt: sale.OccurredAt,
		Total:      sale.Total,
		Cashier:    sale.Cashier,
		Items:      items,
	}
}
