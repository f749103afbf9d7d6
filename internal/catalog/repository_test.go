package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var productCols = []string{
	"id", "name", "price", "image", "images", "category_id", "category_name", "description",
	"sizes", "colors", "rating", "reviews", "in_stock", "is_new", "is_sale", "discount",
	"is_popular", "is_trending", "quantity_tiers", "details", "created_at", "updated_at",
}

var categoryCols = []string{"id", "name", "description", "image", "count", "created_at", "updated_at"}

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newTestRepo(t *testing.T) (*PostgresRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	repo := NewPostgresRepository(mock)
	repo.now = func() time.Time { return fixedNow }
	return repo, mock
}

func anyArgs(n int) []any {
	out := make([]any, n)
	for i := range out {
		out[i] = pgxmock.AnyArg()
	}
	return out
}

func teeRow(rows *pgxmock.Rows, id string) *pgxmock.Rows {
	return rows.AddRow(
		id, "Tee", decimal.NewFromInt(20), "tee.png", []string{"tee-back.png"}, "c1", "Shirts", "Cotton tee",
		[]string{"S", "M"}, []byte(`[{"name":"Red","hex":"#ff0000"}]`), 4.5, 12, true, false, false, 0,
		true, false, []byte(`[{"minQuantity":1,"maxQuantity":9,"pricePerUnit":"18"}]`),
		[]byte(`{"faq":[{"question":"Wash?","answer":"Cold"}]}`), fixedNow, fixedNow,
	)
}

func TestPostgresRepository_GetProduct(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectQuery(`SELECT (.+) FROM products WHERE id=\$1`).
		WithArgs("p1").
		WillReturnRows(teeRow(pgxmock.NewRows(productCols), "p1"))

	p, err := repo.GetProduct(context.Background(), "p1")
	require.NoError(t, err)
	require.Equal(t, "Tee", p.Name)
	require.True(t, p.Price.Equal(decimal.NewFromInt(20)))
	require.Equal(t, []string{"S", "M"}, p.Sizes)
	require.Equal(t, []Color{{Name: "Red", Hex: "#ff0000"}}, p.Colors)
	require.Len(t, p.QuantityTiers, 1)
	require.True(t, p.QuantityTiers[0].PricePerUnit.Equal(decimal.NewFromInt(18)))
	require.Len(t, p.FAQ, 1)
	require.Equal(t, "Cold", p.FAQ[0].Answer)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_GetProductMissing(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectQuery(`SELECT (.+) FROM products WHERE id=\$1`).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetProduct(context.Background(), "missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestPostgresRepository_ListProducts(t *testing.T) {
	t.Run("all products newest first", func(t *testing.T) {
		repo, mock := newTestRepo(t)
		rows := pgxmock.NewRows(productCols)
		teeRow(rows, "p2")
		teeRow(rows, "p1")

		mock.ExpectQuery(`FROM products ORDER BY created_at DESC`).WillReturnRows(rows)

		got, err := repo.ListProducts(context.Background(), "")
		require.NoError(t, err)
		require.Len(t, got, 2)
		require.Equal(t, "p2", got[0].ID)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("by category", func(t *testing.T) {
		repo, mock := newTestRepo(t)

		mock.ExpectQuery(`FROM products WHERE category_id=\$1 ORDER BY created_at DESC`).
			WithArgs("c1").
			WillReturnRows(pgxmock.NewRows(productCols))

		got, err := repo.ListProducts(context.Background(), "c1")
		require.NoError(t, err)
		require.NotNil(t, got)
		require.Empty(t, got)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresRepository_PopularAndTrending(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectQuery(`WHERE is_popular ORDER BY rating DESC LIMIT \$1`).
		WithArgs(4).
		WillReturnRows(teeRow(pgxmock.NewRows(productCols), "p1"))
	mock.ExpectQuery(`WHERE is_trending ORDER BY created_at DESC LIMIT \$1`).
		WithArgs(8).
		WillReturnRows(pgxmock.NewRows(productCols))

	popular, err := repo.PopularProducts(context.Background(), 4)
	require.NoError(t, err)
	require.Len(t, popular, 1)

	trending, err := repo.TrendingProducts(context.Background(), 8)
	require.NoError(t, err)
	require.Empty(t, trending)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_CreateProduct(t *testing.T) {
	repo, mock := newTestRepo(t)

	args := anyArgs(22)
	args[1] = "Mug"
	mock.ExpectExec(`INSERT INTO products`).
		WithArgs(args...).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	p, err := repo.CreateProduct(context.Background(), Product{Name: "Mug", Price: decimal.NewFromInt(9)})
	require.NoError(t, err)
	require.NotEmpty(t, p.ID)
	require.Equal(t, fixedNow, p.CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_UpdateProductMissing(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectQuery(`UPDATE products SET`).
		WithArgs(anyArgs(21)...).
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.UpdateProduct(context.Background(), Product{ID: "nope", Name: "x"})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestPostgresRepository_DeleteProduct(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectExec(`DELETE FROM products WHERE id=\$1`).
		WithArgs("p1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec(`DELETE FROM products WHERE id=\$1`).
		WithArgs("p1").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	require.NoError(t, repo.DeleteProduct(context.Background(), "p1"))
	require.ErrorIs(t, repo.DeleteProduct(context.Background(), "p1"), ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_Categories(t *testing.T) {
	repo, mock := newTestRepo(t)
	ctx := context.Background()

	mock.ExpectExec(`INSERT INTO categories`).
		WithArgs(pgxmock.AnyArg(), "Shirts", "", "", 0, fixedNow, fixedNow).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectQuery(`FROM categories ORDER BY name`).
		WillReturnRows(pgxmock.NewRows(categoryCols).
			AddRow("c1", "Hats", "", "", 2, fixedNow, fixedNow).
			AddRow("c2", "Shirts", "", "", 0, fixedNow, fixedNow))
	mock.ExpectExec(`UPDATE categories SET count=GREATEST`).
		WithArgs("c1", -1).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectQuery(`FROM categories WHERE id=\$1`).
		WithArgs("zz").
		WillReturnError(pgx.ErrNoRows)

	created, err := repo.CreateCategory(ctx, Category{Name: "Shirts"})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	list, err := repo.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, 2, list[0].Count)

	require.NoError(t, repo.AdjustCategoryCount(ctx, "c1", -1))

	_, err = repo.GetCategory(ctx, "zz")
	require.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_QueryError(t *testing.T) {
	repo, mock := newTestRepo(t)
	boom := errors.New("connection refused")

	mock.ExpectQuery(`FROM categories`).WillReturnError(boom)

	_, err := repo.ListCategories(context.Background())
	require.ErrorIs(t, err, boom)
}
