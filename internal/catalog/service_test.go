package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/andreasstove999/ecommerce-system/storefront-service-go/internal/pricing"
)

// memoryRepo is an in-memory Repository used to exercise the Service.
type memoryRepo struct {
	categories map[string]Category
	products   map[string]Product
	adjustErr  error
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		categories: map[string]Category{"c1": {ID: "c1", Name: "Shirts"}, "c2": {ID: "c2", Name: "Hats"}},
		products:   map[string]Product{},
	}
}

func (m *memoryRepo) CreateCategory(_ context.Context, c Category) (Category, error) {
	m.categories[c.ID] = c
	return c, nil
}

func (m *memoryRepo) UpdateCategory(_ context.Context, c Category) (Category, error) {
	if _, ok := m.categories[c.ID]; !ok {
		return Category{}, ErrNotFound
	}
	m.categories[c.ID] = c
	return c, nil
}

func (m *memoryRepo) DeleteCategory(_ context.Context, id string) error {
	delete(m.categories, id)
	return nil
}

func (m *memoryRepo) GetCategory(_ context.Context, id string) (Category, error) {
	c, ok := m.categories[id]
	if !ok {
		return Category{}, ErrNotFound
	}
	return c, nil
}

func (m *memoryRepo) ListCategories(context.Context) ([]Category, error) {
	out := []Category{}
	for _, c := range m.categories {
		out = append(out, c)
	}
	return out, nil
}

func (m *memoryRepo) AdjustCategoryCount(_ context.Context, id string, delta int) error {
	if m.adjustErr != nil {
		return m.adjustErr
	}
	c, ok := m.categories[id]
	if !ok {
		return ErrNotFound
	}
	c.Count += delta
	m.categories[id] = c
	return nil
}

func (m *memoryRepo) CreateProduct(_ context.Context, p Product) (Product, error) {
	if p.ID == "" {
		p.ID = "generated"
	}
	m.products[p.ID] = p
	return p, nil
}

func (m *memoryRepo) UpdateProduct(_ context.Context, p Product) (Product, error) {
	if _, ok := m.products[p.ID]; !ok {
		return Product{}, ErrNotFound
	}
	m.products[p.ID] = p
	return p, nil
}

func (m *memoryRepo) DeleteProduct(_ context.Context, id string) error {
	if _, ok := m.products[id]; !ok {
		return ErrNotFound
	}
	delete(m.products, id)
	return nil
}

func (m *memoryRepo) GetProduct(_ context.Context, id string) (Product, error) {
	p, ok := m.products[id]
	if !ok {
		return Product{}, ErrNotFound
	}
	return p, nil
}

func (m *memoryRepo) ListProducts(context.Context, string) ([]Product, error)  { return nil, nil }
func (m *memoryRepo) PopularProducts(context.Context, int) ([]Product, error)  { return nil, nil }
func (m *memoryRepo) TrendingProducts(context.Context, int) ([]Product, error) { return nil, nil }

func TestServiceCreateProductUpdatesCategory(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil)

	p, err := svc.CreateProduct(context.Background(), Product{ID: "p1", Name: "Tee", Price: decimal.NewFromInt(20), CategoryID: "c1"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if p.CategoryName != "Shirts" {
		t.Fatalf("category name not filled: %q", p.CategoryName)
	}
	if got := repo.categories["c1"].Count; got != 1 {
		t.Fatalf("expected count 1, got %d", got)
	}
}

func TestServiceRejectsInvalidProducts(t *testing.T) {
	overlapping := []pricing.QuantityTier{
		{MinQuantity: 1, MaxQuantity: 10, PricePerUnit: decimal.NewFromInt(5)},
		{MinQuantity: 5, MaxQuantity: 20, PricePerUnit: decimal.NewFromInt(4)},
	}
	tests := map[string]Product{
		"missing name":      {Price: decimal.NewFromInt(1)},
		"negative price":    {Name: "x", Price: decimal.NewFromInt(-1)},
		"discount too big":  {Name: "x", Discount: 120},
		"unknown category":  {Name: "x", CategoryID: "nope"},
		"overlapping tiers": {Name: "x", QuantityTiers: overlapping},
	}

	for name, p := range tests {
		t.Run(name, func(t *testing.T) {
			repo := newMemoryRepo()
			_, err := NewService(repo, nil).CreateProduct(context.Background(), p)
			if !errors.Is(err, ErrInvalidProduct) {
				t.Fatalf("expected ErrInvalidProduct, got %v", err)
			}
			if len(repo.products) != 0 {
				t.Fatalf("invalid product stored")
			}
		})
	}
}

func TestServiceTierErrorIsWrapped(t *testing.T) {
	p := Product{Name: "x", QuantityTiers: []pricing.QuantityTier{{MinQuantity: 0, MaxQuantity: 3, PricePerUnit: decimal.NewFromInt(1)}}}

	_, err := NewService(newMemoryRepo(), nil).CreateProduct(context.Background(), p)
	if !errors.Is(err, pricing.ErrTierRange) {
		t.Fatalf("expected ErrTierRange in chain, got %v", err)
	}
}

func TestServiceMoveProductBetweenCategories(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()

	p, err := svc.CreateProduct(ctx, Product{ID: "p1", Name: "Tee", CategoryID: "c1"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	p.CategoryID = "c2"
	updated, err := svc.UpdateProduct(ctx, p)
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	if updated.CategoryName != "Hats" {
		t.Fatalf("category name = %q", updated.CategoryName)
	}
	if repo.categories["c1"].Count != 0 || repo.categories["c2"].Count != 1 {
		t.Fatalf("counts not moved: %+v", repo.categories)
	}
}

func TestServiceDeleteProduct(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()

	if _, err := svc.CreateProduct(ctx, Product{ID: "p1", Name: "Tee", CategoryID: "c1"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.DeleteProduct(ctx, "p1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if repo.categories["c1"].Count != 0 {
		t.Fatalf("count not decremented: %d", repo.categories["c1"].Count)
	}
	if err := svc.DeleteProduct(ctx, "p1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestServiceCountFailureDoesNotFailWrite(t *testing.T) {
	repo := newMemoryRepo()
	repo.adjustErr = errors.New("deadlock")

	_, err := NewService(repo, nil).CreateProduct(context.Background(), Product{ID: "p1", Name: "Tee", CategoryID: "c1"})
	if err != nil {
		t.Fatalf("create should succeed, got %v", err)
	}
	if _, ok := repo.products["p1"]; !ok {
		t.Fatalf("product not stored")
	}
}

func TestServiceCategoryValidation(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil)

	if _, err := svc.CreateCategory(context.Background(), Category{ID: "c3"}); !errors.Is(err, ErrInvalidCategory) {
		t.Fatalf("expected ErrInvalidCategory, got %v", err)
	}
	c, err := svc.CreateCategory(context.Background(), Category{ID: "c3", Name: "Bags", Count: 7})
	if err != nil {
		t.Fatalf("create category: %v", err)
	}
	if c.Count != 0 {
		t.Fatalf("new category should start at zero, got %d", c.Count)
	}
}

func TestProductImplementsTiered(t *testing.T) {
	p := Product{
		Price: decimal.NewFromInt(60),
		QuantityTiers: []pricing.QuantityTier{
			{MinQuantity: 10, MaxQuantity: 49, PricePerUnit: decimal.NewFromInt(40)},
		},
	}

	if got := pricing.ResolvePrice(p, 25); !got.Equal(decimal.NewFromInt(40)) {
		t.Fatalf("expected 40, got %s", got)
	}
	if got := pricing.ResolvePrice(p, 5); !got.Equal(decimal.NewFromInt(60)) {
		t.Fatalf("expected base price 60, got %s", got)
	}
}
