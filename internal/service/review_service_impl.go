package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/alimikegami/snowboard-review-service/config"
	"github.com/alimikegami/snowboard-review-service/internal/domain"
	"github.com/alimikegami/snowboard-review-service/internal/dto"
	"github.com/alimikegami/snowboard-review-service/internal/repository"
	"github.com/alimikegami/snowboard-review-service/pkg/errs"
)

type ReviewServiceImpl struct {
	productRepo repository.ProductRepository
	reviewRepo  repository.ReviewRepository
	cache       repository.ProductCache
	config      config.Config
	events      *EventDispatcher
}

func CreateReviewService(productRepo repository.ProductRepository, reviewRepo repository.ReviewRepository, cache repository.ProductCache, config config.Config, events *EventDispatcher) ReviewService {
	return &ReviewServiceImpl{
		productRepo: productRepo,
		reviewRepo:  reviewRepo,
		cache:       cache,
		config:      config,
		events:      events,
	}
}

// AddReview stores the review and folds its rating into the product aggregate.
// With transactions enabled both writes commit together. Without them a failed
// aggregate update leaves the review in place for the reconciliation job.
func (s *ReviewServiceImpl) AddReview(ctx context.Context, data dto.ReviewRequest) (id string, err error) {
	product, err := s.productRepo.GetProductByID(ctx, stringValue(data.ProductID))
	if err != nil {
		return
	}

	review := domain.Review{
		ProductID: product.ID.Hex(),
		Author:    stringValue(data.Author),
		Level:     stringValue(data.Level),
		Pros:      data.Pros,
		Cons:      data.Cons,
		Body:      data.Body,
	}
	if data.Rating != nil {
		review.Rating = *data.Rating
	}

	var updated domain.Product
	err = s.productRepo.HandleTrx(ctx, func(ctx context.Context) error {
		reviewID, err := s.reviewRepo.AddReview(ctx, review)
		if err != nil {
			return err
		}
		review.ID = reviewID

		updated, err = s.applyRating(ctx, product, review.Rating)
		if err != nil {
			if s.config.MongoDBConfig.UseTransactions {
				return err
			}
			log.Ctx(ctx).Error().Err(err).Str("component", "AddReview").Str("product_id", review.ProductID).Msg("rating aggregate left stale")
		}

		return nil
	})
	if err != nil {
		return
	}

	s.storeProduct(ctx, updated)

	s.events.Dispatch(ctx, review.ProductID, dto.KafkaMessage{
		EventType: dto.EventReviewCreated,
		Data: dto.ReviewCreatedEvent{
			Review:        review,
			AverageRating: updated.AverageRating,
		},
	})

	return review.ID.Hex(), nil
}

// applyRating increments the running aggregate. Products whose average was
// written without a sum and count are rebuilt from their reviews instead.
func (s *ReviewServiceImpl) applyRating(ctx context.Context, product domain.Product, rating int) (domain.Product, error) {
	if product.HasUntrackedRating() {
		return s.RecalculateRating(ctx, product.ID.Hex())
	}

	return s.productRepo.ApplyReviewRating(ctx, product.ID, rating)
}

func (s *ReviewServiceImpl) GetProductReviews(ctx context.Context, productID string) (data []domain.Review, err error) {
	data, err = s.reviewRepo.GetReviewsByProductID(ctx, productID)
	if err != nil {
		return nil, err
	}

	if data == nil {
		return []domain.Review{}, nil
	}

	return data, nil
}

// RecalculateRating returns errs.ErrConflict when another aggregate write
// lands between reading the product and storing the new totals.
func (s *ReviewServiceImpl) RecalculateRating(ctx context.Context, productID string) (product domain.Product, err error) {
	product, err = s.productRepo.GetProductByID(ctx, productID)
	if err != nil {
		return
	}

	summaries, err := s.reviewRepo.GetRatingSummaries(ctx, product.ID.Hex())
	if err != nil {
		return
	}

	// no reviews: the average stays as it is
	if len(summaries) == 0 || summaries[0].Count == 0 {
		return product, nil
	}

	return s.productRepo.SetRatingAggregate(ctx, product.ID, summaries[0].Sum, summaries[0].Count, product.RatingVersion)
}

func (s *ReviewServiceImpl) ReconcileRatings(ctx context.Context) (err error) {
	summaries, err := s.reviewRepo.GetRatingSummaries(ctx)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", "ReconcileRatings").Msg("")
		return
	}

	var lastErr error
	updated := 0
	for _, summary := range summaries {
		if summary.Count == 0 {
			continue
		}

		if _, err := primitive.ObjectIDFromHex(summary.ProductID); err != nil {
			log.Ctx(ctx).Warn().Str("component", "ReconcileRatings").Str("product_id", summary.ProductID).Msg("skipping reviews with malformed product id")
			continue
		}

		changed, err := s.reconcileProduct(ctx, summary.ProductID)
		if err != nil {
			switch {
			case errors.Is(err, errs.ErrNotFound):
				// reviews of a deleted product
			case errors.Is(err, errs.ErrConflict):
				log.Ctx(ctx).Info().Str("component", "ReconcileRatings").Str("product_id", summary.ProductID).Msg("product changed during reconciliation, retrying next run")
			default:
				log.Ctx(ctx).Error().Err(err).Str("component", "ReconcileRatings").Str("product_id", summary.ProductID).Msg("")
				lastErr = err
			}
			continue
		}

		if changed {
			updated++
		}
	}

	log.Ctx(ctx).Info().Str("component", "ReconcileRatings").Int("products", updated).Msg("rating aggregates reconciled")

	return lastErr
}

// reconcileProduct reads the product before aggregating its reviews, so the
// versioned write fails if any rating was applied in between. Reviews inside
// the grace period may be stored without their increment yet; such products
// wait for a later run.
func (s *ReviewServiceImpl) reconcileProduct(ctx context.Context, productID string) (changed bool, err error) {
	product, err := s.productRepo.GetProductByID(ctx, productID)
	if err != nil {
		return
	}

	summaries, err := s.reviewRepo.GetRatingSummaries(ctx, productID)
	if err != nil {
		return
	}

	if len(summaries) == 0 || summaries[0].Count == 0 {
		return false, nil
	}
	summary := summaries[0]

	if time.Since(summary.LatestReviewID.Timestamp()) < s.config.RatingReconcileGrace {
		log.Ctx(ctx).Debug().Str("component", "reconcileProduct").Str("product_id", productID).Msg("recent review, skipping")
		return false, nil
	}

	if ratingMatches(product, summary) {
		return false, nil
	}

	updated, err := s.productRepo.SetRatingAggregate(ctx, product.ID, summary.Sum, summary.Count, product.RatingVersion)
	if err != nil {
		return
	}

	s.storeProduct(ctx, updated)

	return true, nil
}

func ratingMatches(product domain.Product, summary domain.RatingSummary) bool {
	return product.RatingSum == summary.Sum &&
		product.RatingCount == summary.Count &&
		product.AverageRating != nil &&
		*product.AverageRating == domain.AverageRating(summary.Sum, summary.Count)
}

// storeProduct writes an updated product through to the cache. The cache
// keeps whichever copy carries the higher rating version.
func (s *ReviewServiceImpl) storeProduct(ctx context.Context, product domain.Product) {
	if s.cache == nil || product.ID.IsZero() {
		return
	}

	normalizeProduct(&product)

	if err := s.cache.SetProduct(ctx, product); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("component", "storeProduct").Str("product_id", product.ID.Hex()).Msg("")
	}
}
