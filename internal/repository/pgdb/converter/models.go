package converter

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductModel представляет запись таблицы products в PostgreSQL.
// Денежные колонки numeric(10,2) читаются и пишутся как точные decimal,
// без двоичной плавающей точки.
type ProductModel struct {
	ID            int64           `db:"id"`
	Name          string          `db:"name"`
	Category      string          `db:"category"`
	PurchasePrice decimal.Decimal `db:"purchase_price"`
	SalePrice     decimal.Decimal `db:"sale_price"`
	Stock         int32           `db:"stock"`
	Description   *string         `db:"description"`
	CreatedAt     time.Time       `db:"created_at"`
}

// SaleModel представляет запись таблицы sales в PostgreSQL.
type SaleModel struct {
	ID         int64           `db:"id"`
	OccurredAt time.Time       `db:"occurred_at"`
	Total      decimal.Decimal `db:"total"`
	Cashier    string          `db:"cashier"`
}

// OutboxEventModel представляет запись таблицы outbox_events в PostgreSQL.
type OutboxEventModel struct {
	ID          int64      `db:"id"`
	EventID     string     `db:"event_id"`
	EventType   string     `db:"event_type"`
	SaleID      int64      `db:"sale_id"`
	Payload     []byte     `db:"payload"`
	Status      string     `db:"status"`
	CreatedAt   time.Time  `db:"created_at"`
	ProcessedAt *time.Time `db:"processed_at"`
}
