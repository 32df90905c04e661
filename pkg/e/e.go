package e

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// Внутренние ошибки с транзакциями
	ErrTransactionNotFound = fmt.Errorf("transaction not found")

	// 400 Bad Request
	ErrProductNameRequired     = fmt.Errorf("product name is required")
	ErrProductCategoryRequired = fmt.Errorf("product category is required")
	ErrPriceMustBePositive     = fmt.Errorf("price must be positive")
	ErrStockMustBeNonNegative  = fmt.Errorf("stock must be non-negative")
	ErrCashierRequired         = fmt.Errorf("cashier is required")
	ErrNoSaleItems             = fmt.Errorf("sale must contain at least one item")
	ErrQtyMustBePositive       = fmt.Errorf("item quantity must be positive")
	ErrInvalidPrice            = fmt.Errorf("invalid price value")

	// 404 Not Found — штатный отрицательный результат поиска, не сбой
	ErrProductNotFound = fmt.Errorf("product not found")

	// 409 Conflict
	ErrStockConflict = fmt.Errorf("stock update conflict")

	// 500 / 503
	ErrInternalServerError = fmt.Errorf("internal server error")
	ErrStorageUnavailable  = fmt.Errorf("storage unavailable")

	ErrIncorrectEnvVariable = fmt.Errorf("incorrect environment variable")
	ErrStatusBadRequest     = fmt.Errorf("bad request")
)

// InsufficientStockError возвращается, когда суммарное количество товара в продаже
// превышает доступный остаток. Requested — int64: запрошенное количество
// агрегируется по позициям и может превышать диапазон int32.
type InsufficientStockError struct {
	ProductID int64
	Requested int64
	Available int32
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf(
		"insufficient stock for product %d: requested %d, available %d",
		e.ProductID, e.Requested, e.Available,
	)
}

func NewInsufficientStockError(productID, requested int64, available int32) *InsufficientStockError {
	return &InsufficientStockError{
		ProductID: productID,
		Requested: requested,
		Available: available,
	}
}

// Wrap оборачивает ошибку
func Wrap(msg string, err error) error {
	return fmt.Errorf("%s: %w", msg, err)
}

// StorageFailure помечает неожиданную ошибку хранилища как transient-сбой:
// в цепочку добавляется ErrStorageUnavailable. Ошибки протокола PostgreSQL
// (*pgconn.PgError) проходят без пометки — их разбирают вызывающие слои
// (retry по кодам, конфликты остатков).
func StorageFailure(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return err
	}

	return fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
}
