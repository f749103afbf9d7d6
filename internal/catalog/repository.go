package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var ErrNotFound = errors.New("not found")

// DBPool matches the methods from *pgxpool.Pool that we use.
// This allows us to mock the database in tests.
type DBPool interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

type Repository interface {
	CreateCategory(ctx context.Context, c Category) (Category, error)
	UpdateCategory(ctx context.Context, c Category) (Category, error)
	DeleteCategory(ctx context.Context, id string) error
	GetCategory(ctx context.Context, id string) (Category, error)
	ListCategories(ctx context.Context) ([]Category, error)
	AdjustCategoryCount(ctx context.Context, id string, delta int) error

	CreateProduct(ctx context.Context, p Product) (Product, error)
	UpdateProduct(ctx context.Context, p Product) (Product, error)
	DeleteProduct(ctx context.Context, id string) error
	GetProduct(ctx context.Context, id string) (Product, error)
	ListProducts(ctx context.Context, categoryID string) ([]Product, error)
	PopularProducts(ctx context.Context, limit int) ([]Product, error)
	TrendingProducts(ctx context.Context, limit int) ([]Product, error)
}

type PostgresRepository struct {
	pool DBPool
	now  func() time.Time
}

func NewPostgresRepository(pool DBPool) *PostgresRepository {
	return &PostgresRepository{pool: pool, now: func() time.Time { return time.Now().UTC() }}
}

const categoryColumns = `id, name, description, image, count, created_at, updated_at`

func scanCategory(row pgx.Row) (Category, error) {
	var c Category
	err := row.Scan(&c.ID, &c.Name, &c.Description, &c.Image, &c.Count, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (r *PostgresRepository) CreateCategory(ctx context.Context, c Category) (Category, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	now := r.now()
	c.CreatedAt, c.UpdatedAt = now, now

	_, err := r.pool.Exec(ctx, `
		INSERT INTO categories(id, name, description, image, count, created_at, updated_at)
		VALUES($1, $2, $3, $4, $5, $6, $7)
	`, c.ID, c.Name, c.Description, c.Image, c.Count, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return Category{}, fmt.Errorf("insert category: %w", err)
	}
	return c, nil
}

func (r *PostgresRepository) UpdateCategory(ctx context.Context, c Category) (Category, error) {
	c.UpdatedAt = r.now()
	row := r.pool.QueryRow(ctx, `
		UPDATE categories SET name=$2, description=$3, image=$4, updated_at=$5
		WHERE id=$1
		RETURNING `+categoryColumns,
		c.ID, c.Name, c.Description, c.Image, c.UpdatedAt)

	updated, err := scanCategory(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Category{}, ErrNotFound
	}
	if err != nil {
		return Category{}, fmt.Errorf("update category: %w", err)
	}
	return updated, nil
}

func (r *PostgresRepository) DeleteCategory(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM categories WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) GetCategory(ctx context.Context, id string) (Category, error) {
	c, err := scanCategory(r.pool.QueryRow(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Category{}, ErrNotFound
	}
	if err != nil {
		return Category{}, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

func (r *PostgresRepository) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+categoryColumns+` FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	out := []Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) AdjustCategoryCount(ctx context.Context, id string, delta int) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE categories SET count=GREATEST(count + $2, 0), updated_at=now()
		WHERE id=$1
	`, id, delta)
	if err != nil {
		return fmt.Errorf("adjust category count: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

const productColumns = `id, name, price, image, images, category_id, category_name, description,
	sizes, colors, rating, reviews, in_stock, is_new, is_sale, discount, is_popular, is_trending,
	quantity_tiers, details, created_at, updated_at`

// productRecord carries the JSON columns as raw bytes until decode.
type productRecord struct {
	Product
	colors, tiers, details []byte
}

func scanProduct(row pgx.Row) (Product, error) {
	var rec productRecord
	p := &rec.Product
	err := row.Scan(
		&p.ID, &p.Name, &p.Price, &p.Image, &p.Images, &p.CategoryID, &p.CategoryName, &p.Description,
		&p.Sizes, &rec.colors, &p.Rating, &p.Reviews, &p.InStock, &p.IsNew, &p.IsSale, &p.Discount,
		&p.IsPopular, &p.IsTrending, &rec.tiers, &rec.details, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return Product{}, err
	}
	if err := decodeJSON(rec.colors, &p.Colors); err != nil {
		return Product{}, fmt.Errorf("decode colors of %s: %w", p.ID, err)
	}
	if err := decodeJSON(rec.tiers, &p.QuantityTiers); err != nil {
		return Product{}, fmt.Errorf("decode quantity tiers of %s: %w", p.ID, err)
	}
	if err := decodeJSON(rec.details, &p.Details); err != nil {
		return Product{}, fmt.Errorf("decode details of %s: %w", p.ID, err)
	}
	return rec.Product, nil
}

func decodeJSON(data []byte, v any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}

func productJSON(p Product) (colors, tiers, details []byte, err error) {
	if colors, err = json.Marshal(p.Colors); err != nil {
		return nil, nil, nil, err
	}
	if tiers, err = json.Marshal(p.QuantityTiers); err != nil {
		return nil, nil, nil, err
	}
	if details, err = json.Marshal(p.Details); err != nil {
		return nil, nil, nil, err
	}
	return colors, tiers, details, nil
}

func (r *PostgresRepository) CreateProduct(ctx context.Context, p Product) (Product, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := r.now()
	p.CreatedAt, p.UpdatedAt = now, now

	colors, tiers, details, err := productJSON(p)
	if err != nil {
		return Product{}, fmt.Errorf("encode product: %w", err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO products(`+productColumns+`)
		VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)
	`, p.ID, p.Name, p.Price, p.Image, p.Images, p.CategoryID, p.CategoryName, p.Description,
		p.Sizes, colors, p.Rating, p.Reviews, p.InStock, p.IsNew, p.IsSale, p.Discount,
		p.IsPopular, p.IsTrending, tiers, details, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return Product{}, fmt.Errorf("insert product: %w", err)
	}
	return p, nil
}

// UpdateProduct replaces every mutable column; created_at is kept.
func (r *PostgresRepository) UpdateProduct(ctx context.Context, p Product) (Product, error) {
	p.UpdatedAt = r.now()

	colors, tiers, details, err := productJSON(p)
	if err != nil {
		return Product{}, fmt.Errorf("encode product: %w", err)
	}

	row := r.pool.QueryRow(ctx, `
		UPDATE products SET name=$2, price=$3, image=$4, images=$5, category_id=$6, category_name=$7,
			description=$8, sizes=$9, colors=$10, rating=$11, reviews=$12, in_stock=$13, is_new=$14,
			is_sale=$15, discount=$16, is_popular=$17, is_trending=$18, quantity_tiers=$19, details=$20,
			updated_at=$21
		WHERE id=$1
		RETURNING `+productColumns,
		p.ID, p.Name, p.Price, p.Image, p.Images, p.CategoryID, p.CategoryName,
		p.Description, p.Sizes, colors, p.Rating, p.Reviews, p.InStock, p.IsNew,
		p.IsSale, p.Discount, p.IsPopular, p.IsTrending, tiers, details, p.UpdatedAt)

	updated, err := scanProduct(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, ErrNotFound
	}
	if err != nil {
		return Product{}, fmt.Errorf("update product: %w", err)
	}
	return updated, nil
}

func (r *PostgresRepository) DeleteProduct(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) GetProduct(ctx context.Context, id string) (Product, error) {
	p, err := scanProduct(r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, ErrNotFound
	}
	if err != nil {
		return Product{}, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// ListProducts returns every product, newest first. A non-empty categoryID
// narrows the list to that category.
func (r *PostgresRepository) ListProducts(ctx context.Context, categoryID string) ([]Product, error) {
	if categoryID == "" {
		return r.queryProducts(ctx, `SELECT `+productColumns+` FROM products ORDER BY created_at DESC`)
	}
	return r.queryProducts(ctx,
		`SELECT `+productColumns+` FROM products WHERE category_id=$1 ORDER BY created_at DESC`, categoryID)
}

func (r *PostgresRepository) PopularProducts(ctx context.Context, limit int) ([]Product, error) {
	return r.queryProducts(ctx,
		`SELECT `+productColumns+` FROM products WHERE is_popular ORDER BY rating DESC LIMIT $1`, limit)
}

func (r *PostgresRepository) TrendingProducts(ctx context.Context, limit int) ([]Product, error) {
	return r.queryProducts(ctx,
		`SELECT `+productColumns+` FROM products WHERE is_trending ORDER BY created_at DESC LIMIT $1`, limit)
}

func (r *PostgresRepository) queryProducts(ctx context.Context, sql string, args ...any) ([]Product, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	out := []Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
