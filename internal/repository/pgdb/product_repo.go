package pgdb

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/DRSN-tech/pos-backend/internal/domain"
	"github.com/DRSN-tech/pos-backend/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/pos-backend/internal/usecase"
	"github.com/DRSN-tech/pos-backend/pkg/e"
	"github.com/DRSN-tech/pos-backend/pkg/money"
	"github.com/DRSN-tech/pos-backend/pkg/tr"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
)

const productColumns = "id, name, category, purchase_price, sale_price, stock, description, created_at"

// ProductRepo реализует репозиторий товаров поверх PostgreSQL.
type ProductRepo struct {
	pool *pgxpool.Pool
	conv converter.ProductConverter
}

func NewProductRepo(pool *pgxpool.Pool, conv converter.ProductConverter) *ProductRepo {
	return &ProductRepo{
		pool: pool,
		conv: conv,
	}
}

// Create сохраняет новый товар; id и created_at назначает база.
func (p *ProductRepo) Create(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	query := `
		INSERT INTO products (name, category, purchase_price, sale_price, stock, description)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + productColumns

	m := p.conv.ToModel(product)

	var model converter.ProductModel
	err := p.pool.QueryRow(ctx, query,
		m.Name, m.Category, m.PurchasePrice, m.SalePrice, m.Stock, m.Description,
	).Scan(
		&model.ID, &model.Name, &model.Category, &model.PurchasePrice,
		&model.SalePrice, &model.Stock, &model.Description, &model.CreatedAt,
	)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), e.StorageFailure(err))
	}

	return p.conv.ToEntity(&model), nil
}

// GetByID возвращает товар или e.ErrProductNotFound.
func (p *ProductRepo) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	var model converter.ProductModel
	err := p.pool.QueryRow(ctx, query, id).Scan(
		&model.ID, &model.Name, &model.Category, &model.PurchasePrice,
		&model.SalePrice, &model.Stock, &model.Description, &model.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, e.ErrProductNotFound
		}
		return nil, e.Wrap(whereami.WhereAmI(), e.StorageFailure(err))
	}

	return p.conv.ToEntity(&model), nil
}

// List возвращает все товары, недавно созданные первыми.
func (p *ProductRepo) List(ctx context.Context) ([]*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products ORDER BY created_at DESC, id DESC`

	rows, err := p.pool.Query(ctx, query)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), e.StorageFailure(err))
	}
	defer rows.Close()

	models := make([]*converter.ProductModel, 0)
	for rows.Next() {
		var model converter.ProductModel
		if err := rows.Scan(
			&model.ID, &model.Name, &model.Category, &model.PurchasePrice,
			&model.SalePrice, &model.Stock, &model.Description, &model.CreatedAt,
		); err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), e.StorageFailure(err))
		}

		models = append(models, &model)
	}
	if err := rows.Err(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), e.StorageFailure(err))
	}

	return p.conv.ToArrEntity(models), nil
}

// Update применяет только переданные поля запроса. Присутствие поля, а не его
// значение, определяет, что меняется: description с явным null обнуляется,
// опущенный — не трогается.
func (p *ProductRepo) Update(ctx context.Context, req *usecase.UpdateProductReq) (*domain.Product, error) {
	if !req.HasChanges() {
		return p.GetByID(ctx, req.ID)
	}

	sets := make([]string, 0, 6)
	args := make([]any, 0, 7)
	set := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if req.Name != nil {
		set("name", *req.Name)
	}
	if req.Category != nil {
		set("category", *req.Category)
	}
	if req.PurchasePrice != nil {
		set("purchase_price", money.ToDecimal(*req.PurchasePrice))
	}
	if req.SalePrice != nil {
		set("sale_price", money.ToDecimal(*req.SalePrice))
	}
	if req.Stock != nil {
		set("stock", *req.Stock)
	}
	if req.Description.Set {
		set("description", req.Description.Value)
	}

	args = append(args, req.ID)
	query := fmt.Sprintf(
		`UPDATE products SET %s WHERE id = $%d RETURNING `+productColumns,
		strings.Join(sets, ", "), len(args),
	)

	var model converter.ProductModel
	err := p.pool.QueryRow(ctx, query, args...).Scan(
		&model.ID, &model.Name, &model.Category, &model.PurchasePrice,
		&model.SalePrice, &model.Stock, &model.Description, &model.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, e.ErrProductNotFound
		}
		return nil, e.Wrap(whereami.WhereAmI(), e.StorageFailure(err))
	}

	return p.conv.ToEntity(&model), nil
}

// Delete удаляет товар; false — если удалять было нечего.
// Зависимые sale_items удаляет каскад схемы.
func (p *ProductRepo) Delete(ctx context.Context, id int64) (bool, error) {
	result, err := p.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return false, e.Wrap(whereami.WhereAmI(), e.StorageFailure(err))
	}

	return result.RowsAffected() > 0, nil
}

// GetForUpdate читает имя и остаток товаров под row-level блокировкой в рамках
// транзакции из контекста. Строки блокируются в порядке id, чтобы конкурентные
// продажи не взаимоблокировались.
func (p *ProductRepo) GetForUpdate(ctx context.Context, ids []int64) ([]usecase.ProductStock, error) {
	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	query := `
		SELECT id, name, stock
		FROM products
		WHERE id = ANY($1)
		ORDER BY id
		FOR UPDATE
	`

	rows, err := tx.Query(ctx, query, ids)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), e.StorageFailure(err))
	}
	defer rows.Close()

	result := make([]usecase.ProductStock, 0, len(ids))
	for rows.Next() {
		var ps usecase.ProductStock
		if err := rows.Scan(&ps.ID, &ps.Name, &ps.Stock); err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), e.StorageFailure(err))
		}

		result = append(result, ps)
	}
	if err := rows.Err(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), e.StorageFailure(err))
	}

	return result, nil
}

// DecrementStock списывает qty единиц товара в рамках транзакции из контекста.
// Условие stock >= qty страхует инвариант stock >= 0 даже при нарушении
// протокола блокировки вызывающим кодом.
func (p *ProductRepo) DecrementStock(ctx context.Context, id int64, qty int32) error {
	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	result, err := tx.Exec(ctx,
		`UPDATE products SET stock = stock - $2 WHERE id = $1 AND stock >= $2`,
		id, qty,
	)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), e.StorageFailure(err))
	}

	if result.RowsAffected() == 0 {
		return e.Wrap(fmt.Sprintf("product %d", id), e.ErrStockConflict)
	}

	return nil
}
