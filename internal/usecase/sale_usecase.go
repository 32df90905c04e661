package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/DRSN-tech/pos-backend/internal/domain"
	"github.com/DRSN-tech/pos-backend/pkg/e"
	"github.com/DRSN-tech/pos-backend/pkg/jitter"
	"github.com/DRSN-tech/pos-backend/pkg/logger"
	"github.com/DRSN-tech/pos-backend/pkg/money"
	transaction "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// SaleUseCase реализует леджер продаж: атомарную фиксацию продажи
// со списанием остатков и чтение денормализованной истории.
type SaleUseCase struct {
	saleRepo    SaleRepository
	productRepo ProductRepository
	outboxRepo  OutboxRepository
	dbPool      transaction.Transactional
	cacheRepo   CacheRepository
	logger      logger.Logger
}

func NewSaleUC(
	saleRepo SaleRepository,
	productRepo ProductRepository,
	outboxRepo OutboxRepository,
	dbPool transaction.Transactional,
	cacheRepo CacheRepository,
	logger logger.Logger,
) *SaleUseCase {
	return &SaleUseCase{
		saleRepo:    saleRepo,
		productRepo: productRepo,
		outboxRepo:  outboxRepo,
		dbPool:      dbPool,
		cacheRepo:   cacheRepo,
		logger:      logger,
	}
}

// saleRecordedEvent — payload outbox-события. Суммы сериализуются точной
// десятичной записью, не float.
type saleRecordedEvent struct {
	SaleID     int64                  `json:"sale_id"`
	OccurredAt time.Time              `json:"occurred_at"`
	Cashier    string                 `json:"cashier"`
	Total      string                 `json:"total"`
	Items      []saleRecordedEventItm `json:"items"`
}

type saleRecordedEventItm struct {
	ProductID int64  `json:"product_id"`
	Qty       int32  `json:"qty"`
	SalePrice string `json:"sale_price"`
	Subtotal  string `json:"subtotal"`
}

// RecordSale атомарно фиксирует продажу: проверяет остатки под блокировкой,
// пишет продажу с позициями, списывает остатки и кладёт outbox-событие —
// всё в одной транзакции. Любой сбой откатывает всё целиком, поэтому операцию
// безопасно повторить; deadlock/serialization ошибки повторяются сразу
// с джиттер-паузой.
func (s *SaleUseCase) RecordSale(ctx context.Context, req *RecordSaleReq) (*SaleDetail, error) {
	const (
		op          = "SaleUseCase.RecordSale"
		maxAttempts = 3
		baseBackoff = 20 * time.Millisecond
		maxBackoff  = 200 * time.Millisecond
	)

	if err := s.validateSale(req); err != nil {
		return nil, e.Wrap(op, err)
	}

	var (
		detail *SaleDetail
		err    error
	)
	for attempt := 0; ; attempt++ {
		detail, err = s.recordSaleTx(ctx, req)
		if err == nil {
			break
		}

		if attempt+1 >= maxAttempts || !retryableTxError(err) {
			return nil, e.Wrap(op, err)
		}

		backoff := jitter.ExponentialBackoff(baseBackoff, maxBackoff, attempt, jitter.DefaultJitter)
		s.logger.Warnf("Transaction conflict on sale recording, retrying in %v (attempt %d): %v", backoff, attempt+1, err)

		select {
		case <-ctx.Done():
			return nil, e.Wrap(op, ctx.Err())
		case <-time.After(backoff):
		}
	}

	// Остатки изменились — закэшированные товары устарели
	touched := make([]int64, 0, len(detail.Items))
	for _, item := range detail.Items {
		touched = append(touched, item.ProductID)
	}
	if err := s.cacheRepo.DeleteProducts(ctx, touched); err != nil {
		s.logger.Warnf("Failed to delete products from cache: %v", e.Wrap(op, err))
	}

	return detail, nil
}

// recordSaleTx выполняет одну попытку фиксации продажи в рамках транзакции.
func (s *SaleUseCase) recordSaleTx(ctx context.Context, req *RecordSaleReq) (detail *SaleDetail, err error) {
	ctx, tx, err := transaction.NewTransaction(ctx, pgx.TxOptions{}, s.dbPool)
	if err != nil {
		return nil, e.StorageFailure(err)
	}
	// При любой ошибке, включая отмену контекста, транзакция откатывается:
	// частично применённая продажа невозможна
	defer func() {
		if err != nil && tx.IsActive() {
			tx.Rollback(ctx)
		}
	}()
	ctx = context.WithValue(ctx, "tx", tx.Transaction())

	// Количество агрегируется по товару: проверка идёт против суммарного qty,
	// а не позиция за позицией. Сумма копится в int64 — сумма int32-количеств
	// может не влезть в int32
	qtyByProduct := make(map[int64]int64, len(req.Items))
	productOrder := make([]int64, 0, len(req.Items))
	for _, item := range req.Items {
		if _, seen := qtyByProduct[item.ProductID]; !seen {
			productOrder = append(productOrder, item.ProductID)
		}
		qtyByProduct[item.ProductID] += int64(item.Qty)
	}

	locked, err := s.productRepo.GetForUpdate(ctx, productOrder)
	if err != nil {
		return nil, err
	}

	stockByID := make(map[int64]ProductStock, len(locked))
	for _, ps := range locked {
		stockByID[ps.ID] = ps
	}

	for _, productID := range productOrder {
		ps, found := stockByID[productID]
		if !found {
			return nil, e.Wrap("sale item references unknown product", e.ErrProductNotFound)
		}

		if qtyByProduct[productID] > int64(ps.Stock) {
			return nil, e.NewInsufficientStockError(productID, qtyByProduct[productID], ps.Stock)
		}
	}

	// Subtotal и total считаются только на сервере, в центах — точно
	var total int64
	items := make([]*domain.SaleItem, 0, len(req.Items))
	for _, item := range req.Items {
		saleItem := domain.NewSaleItem(0, item.ProductID, item.Qty, item.SalePrice)
		total += saleItem.Subtotal
		items = append(items, saleItem)
	}

	sale, err := s.saleRepo.CreateSale(ctx, domain.NewSale(req.Cashier, total))
	if err != nil {
		return nil, err
	}

	for _, item := range items {
		item.SaleID = sale.ID
	}
	if err = s.saleRepo.CreateSaleItems(ctx, items); err != nil {
		return nil, err
	}

	for _, productID := range productOrder {
		// Суммарное qty прошло проверку против остатка, значит влезает в int32
		if err = s.productRepo.DecrementStock(ctx, productID, int32(qtyByProduct[productID])); err != nil {
			return nil, err
		}
	}

	detail = assembleDetail(sale, items, stockByID)

	event, err := s.buildOutboxEvent(detail)
	if err != nil {
		return nil, err
	}
	if _, err = s.outboxRepo.Create(ctx, event); err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, e.StorageFailure(err)
	}

	return detail, nil
}

// ListSales возвращает продажи с позициями, новые первыми.
func (s *SaleUseCase) ListSales(ctx context.Context) ([]SaleDetail, error) {
	const op = "SaleUseCase.ListSales"

	sales, err := s.saleRepo.GetSalesWithItems(ctx)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return sales, nil
}

func (s *SaleUseCase) buildOutboxEvent(detail *SaleDetail) (*OutboxEvent, error) {
	eventItems := make([]saleRecordedEventItm, 0, len(detail.Items))
	for _, item := range detail.Items {
		eventItems = append(eventItems, saleRecordedEventItm{
			ProductID: item.ProductID,
			Qty:       item.Qty,
			SalePrice: money.String(item.SalePrice),
			Subtotal:  money.String(item.Subtotal),
		})
	}

	payload, err := json.Marshal(saleRecordedEvent{
		SaleID:     detail.ID,
		OccurredAt: detail.OccurredAt,
		Cashier:    detail.Cashier,
		Total:      money.String(detail.Total),
		Items:      eventItems,
	})
	if err != nil {
		return nil, err
	}

	return NewOutboxEvent(uuid.NewString(), SaleRecorded, detail.ID, payload), nil
}

// validateSale проверяет форму запроса до любых обращений к хранилищу.
func (s *SaleUseCase) validateSale(req *RecordSaleReq) error {
	if strings.TrimSpace(req.Cashier) == "" {
		return e.ErrCashierRequired
	}

	if len(req.Items) == 0 {
		return e.ErrNoSaleItems
	}

	for _, item := range req.Items {
		if item.Qty < 1 {
			return e.ErrQtyMustBePositive
		}

		if item.SalePrice <= 0 {
			return e.ErrPriceMustBePositive
		}
	}

	return nil
}

// assembleDetail собирает SaleDetail из данных, уже находящихся в памяти
// транзакции; имена товаров берутся из прочитанных под блокировкой строк.
func assembleDetail(sale *domain.Sale, items []*domain.SaleItem, stockByID map[int64]ProductStock) *SaleDetail {
	detailItems := make([]SaleDetailItem, 0, len(items))
	for _, item := range items {
		detailItems = append(detailItems, SaleDetailItem{
			ProductID:   item.ProductID,
			ProductName: stockByID[item.ProductID].Name,
			Qty:         item.Qty,
			SalePrice:   item.SalePrice,
			Subtotal:    item.Subtotal,
		})
	}

	return NewSaleDetail(sale, detailItems)
}

// retryableTxError распознаёт deadlock (40P01) и serialization failure (40001).
func retryableTxError(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}

	return pgErr.Code == "40001" || pgErr.Code == "40P01"
}
