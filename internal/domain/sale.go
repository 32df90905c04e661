package domain

import "time"

// Sale описывает зафиксированную продажу
type Sale struct {
	ID         int64
	OccurredAt time.Time
	Total      int64 // Итог хранится в центах, равен сумме subtotal позиций
	Cashier    string
}

func NewSale(cashier string, total int64) *Sale {
	return &Sale{
		Cashier: cashier,
		Total:   total,
	}
}

// SaleItem описывает позицию продажи. SalePrice — цена на момент продажи,
// не зависит от текущей цены товара в каталоге.
type SaleItem struct {
	ID        int64
	SaleID    int64
	ProductID int64
	Qty       int32
	SalePrice int64 // в центах
	Subtotal  int64 // в центах, subtotal == qty * sale_price
}

func NewSaleItem(saleID, productID int64, qty int32, salePrice int64) *SaleItem {
	return &SaleItem{
		SaleID:    saleID,
		ProductID: productID,
		Qty:       qty,
		SalePrice: salePrice,
		Subtotal:  salePrice * int64(qty),
	}
}
