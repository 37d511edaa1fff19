package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/entity"
	"storefront/internal/repository"
)

// ProductService manages the catalog.
type ProductService struct {
	productRepo ProductStore
	cache       ProductCache
	now         func() time.Time
}

// NewProductService creates a new instance of ProductService. cache may be nil.
func NewProductService(productRepo ProductStore, cache ProductCache) *ProductService {
	return &ProductService{
		productRepo: productRepo,
		cache:       cache,
		now:         time.Now,
	}
}

// GetProducts lists the active catalog.
func (p *ProductService) GetProducts(ctx context.Context) ([]*entity.Product, error) {
	products, err := p.productRepo.GetActiveProducts(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Error getting products")
		return nil, err
	}
	if products == nil {
		products = []*entity.Product{}
	}
	return products, nil
}

// GetProduct reads a product through the cache.
func (p *ProductService) GetProduct(ctx context.Context, id string) (*entity.Product, error) {
	id, ok := parseProductID(id)
	if !ok {
		return nil, invalidIDError("Invalid Product Id")
	}

	if p.cache != nil {
		cached, err := p.cache.Get(ctx, id)
		if err != nil {
			logger.Warn().Err(err).Msgf("Error getting product %s from cache", id)
		} else if cached != nil {
			return cached, nil
		}
	}

	product, err := p.productRepo.GetProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFoundError("Product not found")
		}
		logger.Error().Err(err).Msgf("Error getting product by ID %s", id)
		return nil, err
	}

	if p.cache != nil {
		if err := p.cache.Set(ctx, product); err != nil {
			logger.Warn().Err(err).Msgf("Error setting product %s in cache", id)
		}
	}
	return product, nil
}

// CreateProduct validates the input, fills in defaults and stores the product.
func (p *ProductService) CreateProduct(ctx context.Context, in *entity.ProductInput) (*entity.Product, error) {
	if in == nil || blank(in.Name) || in.Price == nil || blank(in.Image) {
		return nil, validationError("Please provide all required fields")
	}
	if in.Seller == nil || strings.TrimSpace(in.Seller.Name) == "" || strings.TrimSpace(in.Seller.Email) == "" {
		return nil, validationError("Please provide seller information")
	}

	now := p.now().UTC().Truncate(time.Millisecond)
	product := &entity.Product{
		ID:        primitive.NewObjectID().Hex(),
		Currency:  entity.DefaultCurrency,
		Category:  entity.DefaultCategory,
		Stock:     entity.DefaultStock,
		IsActive:  true,
		Tags:      []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := applyProductInput(product, in); err != nil {
		return nil, err
	}

	created, err := p.productRepo.CreateProduct(ctx, product)
	if err != nil {
		logger.Error().Err(err).Msg("Error creating product")
		return nil, err
	}
	logger.Info().Msgf("Created product %s", created.ID)
	return created, nil
}

// UpdateProduct applies the supplied fields to an existing product.
func (p *ProductService) UpdateProduct(ctx context.Context, id string, in *entity.ProductInput) (*entity.Product, error) {
	id, ok := parseProductID(id)
	if !ok {
		return nil, invalidIDError("Invalid Product Id")
	}
	if in == nil {
		return nil, validationError("Invalid request payload")
	}

	product, err := p.productRepo.GetProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFoundError("Product not found")
		}
		logger.Error().Err(err).Msgf("Error getting product by ID %s", id)
		return nil, err
	}

	if in.Name != nil && blank(in.Name) || in.Image != nil && blank(in.Image) {
		return nil, validationError("Please provide all required fields")
	}
	if in.Seller != nil && (strings.TrimSpace(in.Seller.Name) == "" || strings.TrimSpace(in.Seller.Email) == "") {
		return nil, validationError("Please provide seller information")
	}
	if err := applyProductInput(product, in); err != nil {
		return nil, err
	}
	product.UpdatedAt = p.now().UTC().Truncate(time.Millisecond)

	updated, err := p.productRepo.UpdateProduct(ctx, product)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFoundError("Product not found")
		}
		logger.Error().Err(err).Msgf("Error updating product %s", id)
		return nil, err
	}
	p.invalidate(ctx, id)
	return updated, nil
}

// DeleteProduct removes a product for good. Orders that contain it keep
// their snapshot.
func (p *ProductService) DeleteProduct(ctx context.Context, id string) error {
	id, ok := parseProductID(id)
	if !ok {
		return invalidIDError("Invalid Product Id")
	}

	err := p.productRepo.DeleteProduct(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFoundError("Product not found")
		}
		logger.Error().Err(err).Msgf("Error deleting product %s", id)
		return err
	}
	p.invalidate(ctx, id)
	return nil
}

func (p *ProductService) invalidate(ctx context.Context, ids ...string) {
	if p.cache == nil {
		return
	}
	if err := p.cache.Invalidate(ctx, ids...); err != nil {
		logger.Warn().Err(err).Msgf("Error invalidating cached products %v", ids)
	}
}

func applyProductInput(product *entity.Product, in *entity.ProductInput) error {
	if in.Name != nil {
		product.Name = strings.TrimSpace(*in.Name)
	}
	if in.Price != nil {
		if !in.Price.IsPositive() {
			return validationError("Price must be greater than zero")
		}
		product.Price = in.Price.Round(2)
	}
	if in.Image != nil {
		product.Image = strings.TrimSpace(*in.Image)
	}
	if in.Description != nil {
		product.Description = *in.Description
	}
	if in.Currency != nil && strings.TrimSpace(*in.Currency) != "" {
		product.Currency = strings.ToUpper(strings.TrimSpace(*in.Currency))
	}
	if in.Category != nil && strings.TrimSpace(*in.Category) != "" {
		product.Category = strings.TrimSpace(*in.Category)
	}
	if in.Stock != nil {
		if *in.Stock < 0 {
			return validationError("Stock cannot be negative")
		}
		product.Stock = *in.Stock
	}
	if in.IsActive != nil {
		product.IsActive = *in.IsActive
	}
	if in.Ratings != nil {
		if in.Ratings.Average < 0 || in.Ratings.Average > 5 || in.Ratings.Count < 0 {
			return validationError("Ratings average must be between 0 and 5 and count cannot be negative")
		}
		product.Ratings = *in.Ratings
	}
	if in.Tags != nil {
		product.Tags = append([]string{}, (*in.Tags)...)
	}
	if in.Seller != nil {
		seller, err := normalizeSeller(in.Seller)
		if err != nil {
			return err
		}
		product.Seller = seller
	}
	return nil
}

func normalizeSeller(in *entity.SellerInput) (entity.Seller, error) {
	businessType := in.BusinessType
	switch businessType {
	case "":
		businessType = entity.DefaultBusinessType
	case entity.BusinessTypeIndividual, entity.BusinessTypeBusiness, entity.BusinessTypeCorporation:
	default:
		return entity.Seller{}, validationError("Seller business type must be individual, business or corporation")
	}
	return entity.Seller{
		Name:         strings.TrimSpace(in.Name),
		Email:        strings.TrimSpace(in.Email),
		Phone:        in.Phone,
		Address:      NormalizeAddress(in.Address),
		BusinessName: in.BusinessName,
		BusinessType: businessType,
	}, nil
}

// NormalizeAddress returns the five-field address with empty strings for
// missing parts and the default country.
func NormalizeAddress(in *entity.Address) entity.Address {
	if in == nil {
		return entity.Address{Country: entity.DefaultCountry}
	}
	address := *in
	if address.Country == "" {
		address.Country = entity.DefaultCountry
	}
	return address
}

// parseProductID validates an ObjectID and returns it in the lowercase hex
// form the stores and cache keys use.
func parseProductID(id string) (string, bool) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return "", false
	}
	return oid.Hex(), true
}

// canonicalProductID lowercases valid ObjectIDs and leaves anything else
// untouched, so it simply fails to resolve.
func canonicalProductID(id string) string {
	if canonical, ok := parseProductID(id); ok {
		return canonical
	}
	return id
}

func blank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}
