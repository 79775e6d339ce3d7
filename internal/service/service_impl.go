package service

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/alimikegami/snowboard-review-service/config"
	"github.com/alimikegami/snowboard-review-service/internal/domain"
	"github.com/alimikegami/snowboard-review-service/internal/dto"
	"github.com/alimikegami/snowboard-review-service/internal/repository"
)

type ProductServiceImpl struct {
	productRepo repository.ProductRepository
	cache       repository.ProductCache
	config      config.Config
	events      *EventDispatcher
}

// CreateProductService accepts a nil cache and a nil dispatcher; the
// corresponding feature is then skipped.
func CreateProductService(productRepo repository.ProductRepository, cache repository.ProductCache, config config.Config, events *EventDispatcher) ProductService {
	return &ProductServiceImpl{
		productRepo: productRepo,
		cache:       cache,
		config:      config,
		events:      events,
	}
}

func (s *ProductServiceImpl) AddProduct(ctx context.Context, data dto.ProductRequest) (id string, err error) {
	product := domain.Product{
		Name:         stringValue(data.Name),
		Brand:        stringValue(data.Brand),
		Style:        stringValue(data.Style),
		Description:  data.Description,
		ImageURL:     data.ImageURL,
		AffiliateURL: data.AffiliateURL,
		Tags:         data.Tags,
	}
	if data.PriceEUR != nil {
		product.PriceEUR = *data.PriceEUR
	}
	if product.Tags == nil {
		product.Tags = []string{}
	}

	productID, err := s.productRepo.AddProduct(ctx, product)
	if err != nil {
		return
	}

	product.ID = productID

	s.events.Dispatch(ctx, productID.Hex(), dto.KafkaMessage{
		EventType: dto.EventProductCreated,
		Data:      product,
	})

	return productID.Hex(), nil
}

func (s *ProductServiceImpl) GetProducts(ctx context.Context, param dto.ProductFilter) (data []domain.Product, err error) {
	data, err = s.productRepo.GetProducts(ctx, param)
	if err != nil {
		return nil, err
	}

	if data == nil {
		return []domain.Product{}, nil
	}

	for i := range data {
		normalizeProduct(&data[i])
	}

	return data, nil
}

func (s *ProductServiceImpl) GetProductByID(ctx context.Context, id string) (product domain.Product, err error) {
	if s.cache != nil {
		cached, found, err := s.cache.GetProduct(ctx, id)
		if err != nil {
			log.Ctx(ctx).Warn().Err(err).Str("component", "GetProductByID").Msg("product cache lookup failed")
		} else if found {
			normalizeProduct(&cached)
			return cached, nil
		}
	}

	product, err = s.productRepo.GetProductByID(ctx, id)
	if err != nil {
		return
	}

	normalizeProduct(&product)

	// A fill never replaces an entry, so a review that stored its product
	// after this read wins.
	if s.cache != nil {
		if err := s.cache.FillProduct(ctx, product); err != nil {
			log.Ctx(ctx).Warn().Err(err).Str("component", "GetProductByID").Msg("product cache store failed")
		}
	}

	return product, nil
}

func normalizeProduct(p *domain.Product) {
	if p.Tags == nil {
		p.Tags = []string{}
	}
}

func stringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
