package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/DRSN-tech/pos-backend/internal/domain"
	"github.com/DRSN-tech/pos-backend/internal/usecase"
	"github.com/DRSN-tech/pos-backend/pkg/e"
	"github.com/DRSN-tech/pos-backend/pkg/money"
	"github.com/go-chi/chi/v5"
)

type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// InsufficientStockResponse дополняет отказ данными о дефиците.
type InsufficientStockResponse struct {
	Code      int    `json:"code"`
	Message   string `json:"message"`
	ProductID int64  `json:"product_id"`
	Requested int64  `json:"requested"`
	Available int32  `json:"available"`
}

type ProductResponse struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Category      string    `json:"category"`
	PurchasePrice float64   `json:"purchase_price"`
	SalePrice     float64   `json:"sale_price"`
	Stock         int32     `json:"stock"`
	Description   *string   `json:"description"`
	CreatedAt     time.Time `json:"created_at"`
}

type SaleItemResponse struct {
	ProductID   int64   `json:"product_id"`
	ProductName string  `json:"product_name"`
	Qty         int32   `json:"qty"`
	SalePrice   float64 `json:"sale_price"`
	Subtotal    float64 `json:"subtotal"`
}

type SaleDetailResponse struct {
	ID         int64              `json:"id"`
	OccurredAt time.Time          `json:"occurred_at"`
	Total      float64            `json:"total"`
	Cashier    string             `json:"cashier"`
	Items      []SaleItemResponse `json:"items"`
}

type DeleteProductResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func NewErrorResponse(code int, message string) *ErrorResponse {
	return &ErrorResponse{
		Code:    code,
		Message: message,
	}
}

func ToHTTPResponse(err error) (int, string) {
	switch {
	case errors.Is(err, e.ErrStatusBadRequest),
		errors.Is(err, e.ErrProductNameRequired),
		errors.Is(err, e.ErrProductCategoryRequired),
		errors.Is(err, e.ErrPriceMustBePositive),
		errors.Is(err, e.ErrStockMustBeNonNegative),
		errors.Is(err, e.ErrCashierRequired),
		errors.Is(err, e.ErrNoSaleItems),
		errors.Is(err, e.ErrQtyMustBePositive),
		errors.Is(err, e.ErrInvalidPrice):
		return http.StatusBadRequest, unwrapMessage(err)
	case errors.Is(err, e.ErrProductNotFound):
		return http.StatusNotFound, e.ErrProductNotFound.Error()
	case errors.Is(err, e.ErrStockConflict):
		return http.StatusConflict, e.ErrStockConflict.Error()
	case errors.Is(err, e.ErrStorageUnavailable), errors.Is(err, context.DeadlineExceeded):
		// Таймаут хранилища — transient-сбой: операция атомарна, её безопасно повторить
		return http.StatusServiceUnavailable, e.ErrStorageUnavailable.Error()
	default:
		return http.StatusInternalServerError, e.ErrInternalServerError.Error()
	}
}

// unwrapMessage достаёт исходный текст ошибки валидации без цепочки op-префиксов.
func unwrapMessage(err error) string {
	for {
		unwrapped := errors.Unwrap(err)
		if unwrapped == nil {
			return err.Error()
		}
		err = unwrapped
	}
}

func WriteError(w http.ResponseWriter, err error) {
	var stockErr *e.InsufficientStockError
	if errors.As(err, &stockErr) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(&InsufficientStockResponse{
			Code:      http.StatusConflict,
			Message:   stockErr.Error(),
			ProductID: stockErr.ProductID,
			Requested: stockErr.Requested,
			Available: stockErr.Available,
		})
		return
	}

	code, msg := ToHTTPResponse(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(NewErrorResponse(code, msg))
}

func WriteSuccess(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// parseIDParam читает целочисленный id из URL.
func parseIDParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, e.ErrStatusBadRequest
	}

	return id, nil
}

// parsePrice конвертирует денежное поле запроса в центы. json.Number сохраняет
// исходную десятичную запись из тела запроса, поэтому разбор точный, без прохода
// через binary float; лишние дробные разряды округляются по правилу
// round-half-up (см. pkg/money).
func parsePrice(value json.Number) (int64, error) {
	cents, err := money.ParseCents(value.String())
	if err != nil {
		return 0, err
	}

	if cents <= 0 {
		return 0, e.ErrPriceMustBePositive
	}

	return cents, nil
}

func toProductResponse(product *domain.Product) *ProductResponse {
	return &ProductResponse{
		ID:            product.ID,
		Name:          product.Name,
		Category:      product.Category,
		PurchasePrice: money.ToFloat(product.PurchasePrice),
		SalePrice:     money.ToFloat(product.SalePrice),
		Stock:         product.Stock,
		Description:   product.Description,
		CreatedAt:     product.CreatedAt,
	}
}

func toArrProductResponse(products []*domain.Product) []*ProductResponse {
	result := make([]*ProductResponse, 0, len(products))
	for _, product := range products {
		result = append(result, toProductResponse(product))
	}

	return result
}

func toSaleDetailResponse(detail *usecase.SaleDetail) *SaleDetailResponse {
	items := make([]SaleItemResponse, 0, len(detail.Items))
	for _, item := range detail.Items {
		items = append(items, SaleItemResponse{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Qty:         item.Qty,
			SalePrice:   money.ToFloat(item.SalePrice),
			Subtotal:    money.ToFloat(item.Subtotal),
		})
	}

	return &SaleDetailResponse{
		ID:         detail.ID,
		OccurredAt: detail.OccurredAt,
		Total:      money.ToFloat(detail.Total),
		Cashier:    detail.Cashier,
		Items:      items,
	}
}

func toArrSaleDetailResponse(details []usecase.SaleDetail) []*SaleDetailResponse {
	result := make([]*SaleDetailResponse, 0, len(details))
	for i := range details {
		result = append(result, toSaleDetailResponse(&details[i]))
	}

	return result
}
