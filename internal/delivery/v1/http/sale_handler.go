package http

import (
	"encoding/json"
	"net/http"

	"github.com/DRSN-tech/pos-backend/internal/usecase"
	"github.com/DRSN-tech/pos-backend/pkg/e"
	"github.com/DRSN-tech/pos-backend/pkg/logger"
)

type SaleHandler struct {
	saleUC usecase.SaleUC
	log    logger.Logger
}

func NewSaleHandler(saleUC usecase.SaleUC, log logger.Logger) *SaleHandler {
	return &SaleHandler{
		saleUC: saleUC,
		log:    log,
	}
}

type recordSaleItemRequest struct {
	ProductID int64       `json:"product_id"`
	Qty       int32       `json:"qty"`
	SalePrice json.Number `json:"sale_price"`
}

type recordSaleRequest struct {
	Cashier string                  `json:"cashier"`
	Items   []recordSaleItemRequest `json:"items"`
}

// recordSale фиксирует продажу: списывает остатки и строит чек в одной транзакции.
func (h *SaleHandler) recordSale(w http.ResponseWriter, r *http.Request) {
	var req recordSaleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Warnf("record sale: malformed body: %v", err)
		WriteError(w, e.ErrStatusBadRequest)
		return
	}

	items := make([]usecase.SaleItemReq, 0, len(req.Items))
	for _, item := range req.Items {
		salePrice, err := parsePrice(item.SalePrice)
		if err != nil {
			WriteError(w, err)
			return
		}

		items = append(items, usecase.SaleItemReq{
			ProductID: item.ProductID,
			Qty:       item.Qty,
			SalePrice: salePrice,
		})
	}

	detail, err := h.saleUC.RecordSale(r.Context(), usecase.NewRecordSaleReq(req.Cashier, items))
	if err != nil {
		h.log.Errorf(err, "record sale failed")
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusCreated, toSaleDetailResponse(detail))
}

// listSales возвращает историю продаж с позициями, свежие первыми.
func (h *SaleHandler) listSales(w http.ResponseWriter, r *http.Request) {
	details, err := h.saleUC.ListSales(r.Context())
	if err != nil {
		h.log.Errorf(err, "list sales failed")
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toArrSaleDetailResponse(details))
}
