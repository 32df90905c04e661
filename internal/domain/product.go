package domain

import "time"

// Product описывает товар каталога
type Product struct {
	ID            int64
	Name          string
	Category      string
	PurchasePrice int64 // Закупочная цена хранится в центах
	SalePrice     int64 // Отпускная цена хранится в центах
	Stock         int32 // Остаток, инвариант stock >= 0
	Description   *string
	CreatedAt     time.Time
}

func NewProduct(name, category string, purchasePrice, salePrice int64, stock int32, description *string) *Product {
	return &Product{
		Name:          name,
		Category:      category,
		PurchasePrice: purchasePrice,
		SalePrice:     salePrice,
		Stock:         stock,
		Description:   description,
	}
}
