package converter

import "time"

// ProductRedisModel — JSON-представление товара в кэше.
// Цены хранятся в центах: сериализация без плавающей точки.
type ProductRedisModel struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Category      string    `json:"category"`
	PurchasePrice int64     `json:"purchase_price"`
	SalePrice     int64     `json:"sale_price"`
	Stock         int32     `json:"stock"`
	Description   *string   `json:"description"`
	CreatedAt     time.Time `json:"created_at"`
}
