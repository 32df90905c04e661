package http

import (
	"encoding/json"
	"net/http"

	"github.com/DRSN-tech/pos-backend/internal/usecase"
	"github.com/DRSN-tech/pos-backend/pkg/e"
	"github.com/DRSN-tech/pos-backend/pkg/logger"
)

type ProductHandler struct {
	productUC usecase.ProductUC
	log       logger.Logger
}

func NewProductHandler(productUC usecase.ProductUC, log logger.Logger) *ProductHandler {
	return &ProductHandler{
		productUC: productUC,
		log:       log,
	}
}

// Денежные поля приходят как json.Number: текст из тела запроса разбирается
// точно, без потери на binary float.
type createProductRequest struct {
	Name          string      `json:"name"`
	Category      string      `json:"category"`
	PurchasePrice json.Number `json:"purchase_price"`
	SalePrice     json.Number `json:"sale_price"`
	Stock         int32       `json:"stock"`
	Description   *string     `json:"description"`
}

// updateProductRequest различает отсутствующее поле и явный null:
// description остаётся сырым JSON, пока его не разберёт descriptionPatch.
type updateProductRequest struct {
	Name          *string         `json:"name"`
	Category      *string         `json:"category"`
	PurchasePrice *json.Number    `json:"purchase_price"`
	SalePrice     *json.Number    `json:"sale_price"`
	Stock         *int32          `json:"stock"`
	Description   json.RawMessage `json:"description"`
}

func (req *updateProductRequest) descriptionPatch() (usecase.OptionalString, error) {
	if req.Description == nil {
		return usecase.OptionalString{}, nil
	}

	if string(req.Description) == "null" {
		return usecase.OptionalString{Set: true}, nil
	}

	var value string
	if err := json.Unmarshal(req.Description, &value); err != nil {
		return usecase.OptionalString{}, e.ErrStatusBadRequest
	}

	return usecase.OptionalString{Set: true, Value: &value}, nil
}

// createProduct добавляет товар в каталог.
func (h *ProductHandler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Warnf("create product: malformed body: %v", err)
		WriteError(w, e.ErrStatusBadRequest)
		return
	}

	purchasePrice, err := parsePrice(req.PurchasePrice)
	if err != nil {
		WriteError(w, err)
		return
	}

	salePrice, err := parsePrice(req.SalePrice)
	if err != nil {
		WriteError(w, err)
		return
	}

	product, err := h.productUC.CreateProduct(r.Context(), usecase.NewCreateProductReq(
		req.Name,
		req.Category,
		purchasePrice,
		salePrice,
		req.Stock,
		req.Description,
	))
	if err != nil {
		h.log.Errorf(err, "create product failed")
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusCreated, toProductResponse(product))
}

// getProduct возвращает товар по id.
func (h *ProductHandler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	product, err := h.productUC.GetProduct(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toProductResponse(product))
}

// listProducts возвращает каталог целиком, новые записи первыми.
func (h *ProductHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.productUC.ListProducts(r.Context())
	if err != nil {
		h.log.Errorf(err, "list products failed")
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toArrProductResponse(products))
}

// updateProduct частично обновляет товар: меняются только присланные поля.
func (h *ProductHandler) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	var req updateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Warnf("update product %d: malformed body: %v", id, err)
		WriteError(w, e.ErrStatusBadRequest)
		return
	}

	description, err := req.descriptionPatch()
	if err != nil {
		WriteError(w, err)
		return
	}

	patch := &usecase.UpdateProductReq{
		ID:          id,
		Name:        req.Name,
		Category:    req.Category,
		Stock:       req.Stock,
		Description: description,
	}

	if req.PurchasePrice != nil {
		cents, err := parsePrice(*req.PurchasePrice)
		if err != nil {
			WriteError(w, err)
			return
		}
		patch.PurchasePrice = &cents
	}

	if req.SalePrice != nil {
		cents, err := parsePrice(*req.SalePrice)
		if err != nil {
			WriteError(w, err)
			return
		}
		patch.SalePrice = &cents
	}

	product, err := h.productUC.UpdateProduct(r.Context(), patch)
	if err != nil {
		h.log.Errorf(err, "update product %d failed", id)
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toProductResponse(product))
}

// deleteProduct удаляет товар вместе с его строками продаж (каскад на уровне схемы).
func (h *ProductHandler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	result, err := h.productUC.DeleteProduct(r.Context(), id)
	if err != nil {
		h.log.Errorf(err, "delete product %d failed", id)
		WriteError(w, err)
		return
	}

	status := http.StatusOK
	if !result.Success {
		status = http.StatusNotFound
	}

	WriteSuccess(w, status, &DeleteProductResponse{
		Success: result.Success,
		Message: result.Message,
	})
}
