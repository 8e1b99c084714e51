package service

import (
	"context"
	"errors"
	"fmt"

	"shop-service/internal/models"
	"shop-service/internal/redisclient"
	"shop-service/internal/storage"
	"shop-service/internal/store"
	"shop-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CatalogService handles product and category management. Reads are served
// through the Redis cache; writes invalidate it.
type CatalogService struct {
	store    *store.Store
	cache    *redisclient.Client
	uploader *storage.Uploader
	logger   *zap.Logger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(store *store.Store, cache *redisclient.Client, uploader *storage.Uploader) *CatalogService {
	return &CatalogService{
		store:    store,
		cache:    cache,
		uploader: uploader,
		logger:   util.GetLogger(),
	}
}

// CategoryRequest represents a category create/update submission
type CategoryRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// CreateCategory creates a new category
func (s *CatalogService) CreateCategory(ctx context.Context, req *CategoryRequest) (*models.Category, error) {
	category := &models.Category{
		ID:          uuid.New().String(),
		Name:        req.Name,
		Description: req.Description,
	}
	if err := s.store.CreateCategory(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	return category, nil
}

// ListCategories retrieves all categories
func (s *CatalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.store.GetCategories(ctx)
}

// UpdateCategory updates a category
func (s *CatalogService) UpdateCategory(ctx context.Context, id string, req *CategoryRequest) (*models.Category, error) {
	category := &models.Category{ID: id, Name: req.Name, Description: req.Description}
	err := s.store.UpdateCategory(ctx, category)
	if errors.Is(err, store.ErrNoRows) {
		return nil, fmt.Errorf("%w: category %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update category: %w", err)
	}
	return category, nil
}

// DeleteCategory hard-deletes a category
func (s *CatalogService) DeleteCategory(ctx context.Context, id string) error {
	err := s.store.DeleteCategory(ctx, id)
	if errors.Is(err, store.ErrNoRows) {
		return fmt.Errorf("%w: category %s", ErrNotFound, id)
	}
	return err
}

// ProductRequest represents the non-file fields of a product submission
type ProductRequest struct {
	Name        string   `form:"name" binding:"required"`
	Description string   `form:"description"`
	Price       int64    `form:"price" binding:"required"`
	CategoryID  string   `form:"category_id" binding:"required"`
	Stock       int      `form:"stock"`
	Sizes       []string `form:"sizes"`
}

func (s *CatalogService) validateProduct(ctx context.Context, req *ProductRequest) error {
	if req.Price <= 0 {
		return fmt.Errorf("%w: price must be positive", ErrValidation)
	}
	if req.Stock < 0 {
		return fmt.Errorf("%w: stock must not be negative", ErrValidation)
	}
	if _, err := s.store.GetCategoryByID(ctx, req.CategoryID); err != nil {
		if errors.Is(err, store.ErrNoRows) {
			return fmt.Errorf("%w: category %s", ErrNotFound, req.CategoryID)
		}
		return fmt.Errorf("failed to check category: %w", err)
	}
	return nil
}

// CreateProduct validates the submission, uploads all images concurrently
// to object storage and persists the record only after every upload
// succeeded. A partial upload aborts the whole write.
func (s *CatalogService) CreateProduct(ctx context.Context, req *ProductRequest, images []storage.ImageFile) (*models.Product, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.CreateProduct")
	defer span.End()

	if err := s.validateProduct(ctx, req); err != nil {
		return nil, err
	}
	if len(images) == 0 {
		return nil, fmt.Errorf("%w: at least one image is required", ErrValidation)
	}

	urls, err := s.uploader.UploadAll(ctx, images)
	if err != nil {
		return nil, fmt.Errorf("image upload failed: %w", err)
	}

	product := &models.Product{
		ID:          uuid.New().String(),
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		CategoryID:  req.CategoryID,
		Stock:       req.Stock,
		Images:      urls,
		Sizes:       req.Sizes,
	}

	if err := s.store.CreateProduct(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.invalidate(ctx, product.ID)
	s.logger.Info("Product created",
		zap.String("product_id", product.ID),
		zap.Int("images", len(urls)))
	return product, nil
}

// UpdateProduct updates a product. Newly uploaded images are appended to
// the existing list unless replaceImages is set.
func (s *CatalogService) UpdateProduct(ctx context.Context, id string, req *ProductRequest, images []storage.ImageFile, replaceImages bool) (*models.Product, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.UpdateProduct")
	defer span.End()

	existing, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.validateProduct(ctx, req); err != nil {
		return nil, err
	}

	urls := []string(existing.Images)
	if len(images) > 0 {
		uploaded, err := s.uploader.UploadAll(ctx, images)
		if err != nil {
			return nil, fmt.Errorf("image upload failed: %w", err)
		}
		if replaceImages {
			urls = uploaded
		} else {
			urls = append(urls, uploaded...)
		}
	} else if replaceImages {
		return nil, fmt.Errorf("%w: cannot replace images without new uploads", ErrValidation)
	}

	product := &models.Product{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		CategoryID:  req.CategoryID,
		Stock:       req.Stock,
		Images:      urls,
		Sizes:       req.Sizes,
	}

	if err := s.store.UpdateProduct(ctx, product); err != nil {
		if errors.Is(err, store.ErrNoRows) {
			return nil, fmt.Errorf("%w: product %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	s.invalidate(ctx, id)
	return product, nil
}

// GetProduct retrieves one product, cache first
func (s *CatalogService) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	if cached, err := s.cache.GetCachedProduct(ctx, id); err == nil && cached != nil {
		return cached, nil
	} else if err != nil {
		s.logger.Warn("Product cache read failed", zap.Error(err))
	}

	product, err := s.store.GetProductByID(ctx, id)
	if errors.Is(err, store.ErrNoRows) {
		return nil, fmt.Errorf("%w: product %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	if err := s.cache.CacheProduct(ctx, product); err != nil {
		s.logger.Warn("Product cache write failed", zap.Error(err))
	}
	return product, nil
}

// ListProducts retrieves the catalog, cache first
func (s *CatalogService) ListProducts(ctx context.Context) ([]models.Product, error) {
	if cached, err := s.cache.GetCachedProductList(ctx); err == nil && cached != nil {
		return cached, nil
	} else if err != nil {
		s.logger.Warn("Product list cache read failed", zap.Error(err))
	}

	products, err := s.store.GetProducts(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.cache.CacheProductList(ctx, products); err != nil {
		s.logger.Warn("Product list cache write failed", zap.Error(err))
	}
	return products, nil
}

// DeleteProduct hard-deletes a product
func (s *CatalogService) DeleteProduct(ctx context.Context, id string) error {
	err := s.store.DeleteProduct(ctx, id)
	if errors.Is(err, store.ErrNoRows) {
		return fmt.Errorf("%w: product %s", ErrNotFound, id)
	}
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	s.invalidate(ctx, id)
	return nil
}

func (s *CatalogService) invalidate(ctx context.Context, productID string) {
	if err := s.cache.InvalidateProduct(ctx, productID); err != nil {
		s.logger.Warn("Product cache invalidation failed", zap.Error(err))
	}
	if err := s.cache.InvalidateProductList(ctx); err != nil {
		s.logger.Warn("Product list cache invalidation failed", zap.Error(err))
	}
}
