package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/andreasstove999/ecommerce-system/storefront-service-go/internal/pricing"
)

var (
	ErrInvalidProduct  = errors.New("invalid product")
	ErrInvalidCategory = errors.New("invalid category")
)

// Service layers validation and category bookkeeping on top of the
// Repository. Category counts are adjusted best effort: a failed adjustment
// is logged and the product write still succeeds.
type Service struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, logger: logger}
}

func validateProduct(p Product) error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidProduct)
	}
	if p.Price.IsNegative() {
		return fmt.Errorf("%w: price must not be negative", ErrInvalidProduct)
	}
	if p.Discount < 0 || p.Discount > 100 {
		return fmt.Errorf("%w: discount must be between 0 and 100", ErrInvalidProduct)
	}
	if err := pricing.ValidateTiers(p.QuantityTiers); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidProduct, err)
	}
	return nil
}

// fillCategory copies the category name onto the product so listings need
// no join.
func (s *Service) fillCategory(ctx context.Context, p *Product) error {
	if p.CategoryID == "" {
		p.CategoryName = ""
		return nil
	}
	c, err := s.repo.GetCategory(ctx, p.CategoryID)
	if errors.Is(err, ErrNotFound) {
		return fmt.Errorf("%w: unknown category %s", ErrInvalidProduct, p.CategoryID)
	}
	if err != nil {
		return err
	}
	p.CategoryName = c.Name
	return nil
}

func (s *Service) adjustCount(ctx context.Context, categoryID string, delta int) {
	if categoryID == "" {
		return
	}
	if err := s.repo.AdjustCategoryCount(ctx, categoryID, delta); err != nil {
		s.logger.Warn("adjusting category count failed",
			zap.String("categoryId", categoryID),
			zap.Int("delta", delta),
			zap.Error(err))
	}
}

func (s *Service) CreateProduct(ctx context.Context, p Product) (Product, error) {
	if err := validateProduct(p); err != nil {
		return Product{}, err
	}
	if err := s.fillCategory(ctx, &p); err != nil {
		return Product{}, err
	}

	created, err := s.repo.CreateProduct(ctx, p)
	if err != nil {
		return Product{}, err
	}
	s.adjustCount(ctx, created.CategoryID, 1)
	return created, nil
}

func (s *Service) UpdateProduct(ctx context.Context, p Product) (Product, error) {
	if err := validateProduct(p); err != nil {
		return Product{}, err
	}
	current, err := s.repo.GetProduct(ctx, p.ID)
	if err != nil {
		return Product{}, err
	}
	if err := s.fillCategory(ctx, &p); err != nil {
		return Product{}, err
	}

	updated, err := s.repo.UpdateProduct(ctx, p)
	if err != nil {
		return Product{}, err
	}
	if current.CategoryID != updated.CategoryID {
		s.adjustCount(ctx, current.CategoryID, -1)
		s.adjustCount(ctx, updated.CategoryID, 1)
	}
	return updated, nil
}

func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	current, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteProduct(ctx, id); err != nil {
		return err
	}
	s.adjustCount(ctx, current.CategoryID, -1)
	return nil
}

func (s *Service) GetProduct(ctx context.Context, id string) (Product, error) {
	return s.repo.GetProduct(ctx, id)
}

func (s *Service) ListProducts(ctx context.Context, categoryID string) ([]Product, error) {
	return s.repo.ListProducts(ctx, categoryID)
}

func (s *Service) PopularProducts(ctx context.Context, limit int) ([]Product, error) {
	return s.repo.PopularProducts(ctx, limit)
}

func (s *Service) TrendingProducts(ctx context.Context, limit int) ([]Product, error) {
	return s.repo.TrendingProducts(ctx, limit)
}

func (s *Service) CreateCategory(ctx context.Context, c Category) (Category, error) {
	if strings.TrimSpace(c.Name) == "" {
		return Category{}, fmt.Errorf("%w: name is required", ErrInvalidCategory)
	}
	c.Count = 0
	return s.repo.CreateCategory(ctx, c)
}

func (s *Service) UpdateCategory(ctx context.Context, c Category) (Category, error) {
	if strings.TrimSpace(c.Name) == "" {
		return Category{}, fmt.Errorf("%w: name is required", ErrInvalidCategory)
	}
	return s.repo.UpdateCategory(ctx, c)
}

func (s *Service) DeleteCategory(ctx context.Context, id string) error {
	return s.repo.DeleteCategory(ctx, id)
}

func (s *Service) GetCategory(ctx context.Context, id string) (Category, error) {
	return s.repo.GetCategory(ctx, id)
}

func (s *Service) ListCategories(ctx context.Context) ([]Category, error) {
	return s.repo.ListCategories(ctx)
}
