package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/alimikegami/snowboard-review-service/internal/domain"
	"github.com/alimikegami/snowboard-review-service/internal/dto"
	"github.com/alimikegami/snowboard-review-service/pkg/errs"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const productCollection = "snowboardproduct"

type MongoDBProductRepositoryImpl struct {
	db              *mongo.Database
	useTransactions bool
}

// CreateNewMongoDBProductRepository accepts a nil db; every call then fails
// with errs.ErrDatabaseUnavailable.
func CreateNewMongoDBProductRepository(db *mongo.Database, useTransactions bool) ProductRepository {
	return &MongoDBProductRepositoryImpl{db: db, useTransactions: useTransactions}
}

func (r *MongoDBProductRepositoryImpl) collection() (*mongo.Collection, error) {
	if r.db == nil {
		return nil, errs.ErrDatabaseUnavailable
	}

	return r.db.Collection(productCollection), nil
}

func (r *MongoDBProductRepositoryImpl) AddProduct(ctx context.Context, data domain.Product) (id primitive.ObjectID, err error) {
	coll, err := r.collection()
	if err != nil {
		return
	}

	result, err := coll.InsertOne(ctx, data)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", "AddProduct").Msg("")
		return id, storageError(err)
	}

	return result.InsertedID.(primitive.ObjectID), nil
}

func (r *MongoDBProductRepositoryImpl) GetProducts(ctx context.Context, param dto.ProductFilter) (data []domain.Product, err error) {
	coll, err := r.collection()
	if err != nil {
		return
	}

	cursor, err := coll.Find(ctx, BuildProductFilter(param))
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", "GetProducts").Msg("")
		return nil, storageError(err)
	}

	if err = cursor.All(ctx, &data); err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", "GetProducts").Msg("")
		return nil, storageError(err)
	}

	return data, nil
}

func (r *MongoDBProductRepositoryImpl) GetProductByID(ctx context.Context, id string) (product domain.Product, err error) {
	productID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		log.Ctx(ctx).Debug().Err(err).Str("component", "GetProductByID").Str("id", id).Msg("malformed product id")
		return product, errs.ErrNotFound
	}

	coll, err := r.collection()
	if err != nil {
		return
	}

	filter := bson.D{{Key: "_id", Value: productID}}

	err = coll.FindOne(ctx, filter, options.FindOne()).Decode(&product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return product, errs.ErrNotFound
		}

		log.Ctx(ctx).Error().Err(err).Str("component", "GetProductByID").Msg("")
		return product, storageError(err)
	}

	return product, nil
}

func (r *MongoDBProductRepositoryImpl) ApplyReviewRating(ctx context.Context, id primitive.ObjectID, rating int) (product domain.Product, err error) {
	coll, err := r.collection()
	if err != nil {
		return
	}

	// $inc is atomic per document, so concurrent reviews never lose a rating.
	filter := bson.D{{Key: "_id", Value: id}}
	update := bson.D{{Key: "$inc", Value: bson.D{
		{Key: "rating_sum", Value: rating},
		{Key: "rating_count", Value: 1},
		{Key: "rating_version", Value: 1},
	}}}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	err = coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return product, errs.ErrNotFound
		}

		log.Ctx(ctx).Error().Err(err).Str("component", "ApplyReviewRating").Msg("")
		return product, storageError(err)
	}

	avg := domain.AverageRating(product.RatingSum, product.RatingCount)
	product.AverageRating = &avg

	// The average is only written while the version is still the one it was
	// computed from. A newer write that got in between sets its own.
	averageFilter := versionFilter(id, product.RatingVersion)
	averageUpdate := bson.D{{Key: "$set", Value: bson.D{{Key: "gemiddelde_rating", Value: avg}}}}

	if _, err = coll.UpdateOne(ctx, averageFilter, averageUpdate); err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", "ApplyReviewRating").Msg("")
		return product, storageError(err)
	}

	return product, nil
}

// SetRatingAggregate overwrites the accumulator only while rating_version
// still equals expectedVersion. Otherwise it returns errs.ErrConflict and
// leaves the document alone.
func (r *MongoDBProductRepositoryImpl) SetRatingAggregate(ctx context.Context, id primitive.ObjectID, sum, count, expectedVersion int64) (product domain.Product, err error) {
	coll, err := r.collection()
	if err != nil {
		return
	}

	update := bson.D{
		{Key: "$set", Value: bson.D{
			{Key: "rating_sum", Value: sum},
			{Key: "rating_count", Value: count},
			{Key: "gemiddelde_rating", Value: domain.AverageRating(sum, count)},
		}},
		{Key: "$inc", Value: bson.D{{Key: "rating_version", Value: 1}}},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	err = coll.FindOneAndUpdate(ctx, versionFilter(id, expectedVersion), update, opts).Decode(&product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return product, errs.ErrConflict
		}

		log.Ctx(ctx).Error().Err(err).Str("component", "SetRatingAggregate").Msg("")
		return product, storageError(err)
	}

	return product, nil
}

// HandleTrx runs fn inside a multi-document transaction when the deployment
// supports it. Standalone servers run fn directly.
func (r *MongoDBProductRepositoryImpl) HandleTrx(ctx context.Context, fn func(ctx context.Context) error) error {
	if r.db == nil {
		return errs.ErrDatabaseUnavailable
	}

	if !r.useTransactions {
		return fn(ctx)
	}

	session, err := r.db.Client().StartSession()
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", "HandleTrx").Msg("")
		return storageError(err)
	}

	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		err := fn(sessCtx)
		if err != nil {
			log.Ctx(ctx).Error().Err(err).Str("component", "HandleTrx").Msg("")
		}
		return nil, err
	})

	return err
}

// versionFilter matches the product at the given rating version. Documents
// written before versioning have no field and count as version 0.
func versionFilter(id primitive.ObjectID, version int64) bson.D {
	if version == 0 {
		return bson.D{
			{Key: "_id", Value: id},
			{Key: "$or", Value: bson.A{
				bson.D{{Key: "rating_version", Value: 0}},
				bson.D{{Key: "rating_version", Value: bson.D{{Key: "$exists", Value: false}}}},
			}},
		}
	}

	return bson.D{{Key: "_id", Value: id}, {Key: "rating_version", Value: version}}
}

func storageError(err error) error {
	return fmt.Errorf("%w: %v", errs.ErrStorage, err)
}
