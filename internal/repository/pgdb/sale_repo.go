package pgdb

import (
	"context"
	"time"

	"github.com/DRSN-tech/pos-backend/internal/domain"
	"github.com/DRSN-tech/pos-backend/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/pos-backend/internal/usecase"
	"github.com/DRSN-tech/pos-backend/pkg/e"
	"github.com/DRSN-tech/pos-backend/pkg/money"
	"github.com/DRSN-tech/pos-backend/pkg/tr"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
	"github.com/shopspring/decimal"
)

// SaleRepo реализует репозиторий продаж поверх PostgreSQL.
type SaleRepo struct {
	pool *pgxpool.Pool
	conv converter.SaleConverter
}

func NewSaleRepo(pool *pgxpool.Pool, conv converter.SaleConverter) *SaleRepo {
	return &SaleRepo{
		pool: pool,
		conv: conv,
	}
}

// CreateSale вставляет строку продажи в рамках транзакции из контекста.
// occurred_at назначает база.
func (s *SaleRepo) CreateSale(ctx context.Context, sale *domain.Sale) (*domain.Sale, error) {
	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	m := s.conv.ToModel(sale)

	query := `
		INSERT INTO sales (cashier, total)
		VALUES ($1, $2)
		RETURNING id, occurred_at
	`

	var model converter.SaleModel
	model.Cashier = m.Cashier
	model.Total = m.Total
	if err := tx.QueryRow(ctx, query, m.Cashier, m.Total).
		Scan(&model.ID, &model.OccurredAt); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), e.StorageFailure(err))
	}

	return s.conv.ToEntity(&model), nil
}

// CreateSaleItems вставляет позиции продажи в рамках транзакции из контекста.
func (s *SaleRepo) CreateSaleItems(ctx context.Context, items []*domain.SaleItem) error {
	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	query := `
		INSERT INTO sale_items (sale_id, product_id, qty, sale_price, subtotal)
		VALUES ($1, $2, $3, $4, $5)
	`

	for _, item := range items {
		if _, err := tx.Exec(ctx, query,
			item.SaleID, item.ProductID, item.Qty,
			money.ToDecimal(item.SalePrice), money.ToDecimal(item.Subtotal),
		); err != nil {
			return e.Wrap(whereami.WhereAmI(), e.StorageFailure(err))
		}
	}

	return nil
}

// saleJoinRow — строка уплощённого джойна sales → sale_items → products.
// Колонки позиции nullable: продажа без позиций материализуется одной строкой
// с NULL на стороне позиции.
type saleJoinRow struct {
	SaleID      int64
	OccurredAt  time.Time
	Total       decimal.Decimal
	Cashier     string
	ProductID   *int64
	Qty         *int32
	SalePrice   decimal.NullDecimal
	Subtotal    decimal.NullDecimal
	ProductName *string
}

// GetSalesWithItems возвращает продажи с позициями, новые первыми.
// Имя товара денормализуется из текущего состояния каталога.
func (s *SaleRepo) GetSalesWithItems(ctx context.Context) ([]usecase.SaleDetail, error) {
	query := `
		SELECT
			s.id, s.occurred_at, s.total, s.cashier,
			si.product_id, si.qty, si.sale_price, si.subtotal,
			p.name
		FROM sales s
		LEFT JOIN sale_items si ON si.sale_id = s.id
		LEFT JOIN products p ON p.id = si.product_id
		ORDER BY s.occurred_at DESC, s.id DESC, si.id
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), e.StorageFailure(err))
	}
	defer rows.Close()

	joinRows := make([]saleJoinRow, 0)
	for rows.Next() {
		var row saleJoinRow
		if err := rows.Scan(
			&row.SaleID, &row.OccurredAt, &row.Total, &row.Cashier,
			&row.ProductID, &row.Qty, &row.SalePrice, &row.Subtotal,
			&row.ProductName,
		); err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), e.StorageFailure(err))
		}

		joinRows = append(joinRows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), e.StorageFailure(err))
	}

	return assembleSaleDetails(joinRows), nil
}

// assembleSaleDetails группирует упорядоченные строки джойна в read-model.
// Запись продажи создаётся при первой встрече её id, позиция добавляется только
// если все колонки позиции заполнены. Строки приходят отсортированными по
// дате продажи, поэтому порядок первых встреч совпадает с нужным порядком выдачи.
func assembleSaleDetails(rows []saleJoinRow) []usecase.SaleDetail {
	details := make([]usecase.SaleDetail, 0)
	indexBySale := make(map[int64]int, len(rows))

	for _, row := range rows {
		idx, seen := indexBySale[row.SaleID]
		if !seen {
			idx = len(details)
			indexBySale[row.SaleID] = idx
			details = append(details, usecase.SaleDetail{
				ID:         row.SaleID,
				OccurredAt: row.OccurredAt,
				Total:      money.FromDecimal(row.Total),
				Cashier:    row.Cashier,
				Items:      make([]usecase.SaleDetailItem, 0),
			})
		}

		if row.ProductID == nil || row.Qty == nil ||
			!row.SalePrice.Valid || !row.Subtotal.Valid || row.ProductName == nil {
			continue
		}

		details[idx].Items = append(details[idx].Items, usecase.SaleDetailItem{
			ProductID:   *row.ProductID,
			ProductName: *row.ProductName,
			Qty:         *row.Qty,
			SalePrice:   money.FromDecimal(row.SalePrice.Decimal),
			Subtotal:    money.FromDecimal(row.Subtotal.Decimal),
		})
	}

	return details
}
