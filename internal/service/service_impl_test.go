package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/alimikegami/snowboard-review-service/config"
	"github.com/alimikegami/snowboard-review-service/internal/domain"
	"github.com/alimikegami/snowboard-review-service/internal/dto"
	"github.com/alimikegami/snowboard-review-service/pkg/errs"
)

func newTestProductService(repo *mockProductRepository, cache *mockProductCache, publisher *mockPublisher) *ProductServiceImpl {
	svc := &ProductServiceImpl{
		productRepo: repo,
		config:      config.Config{},
	}
	// assigned only when set so the interfaces stay nil
	if cache != nil {
		svc.cache = cache
	}
	if publisher != nil {
		svc.events = CreateEventDispatcher(publisher, 0)
	}
	return svc
}

func float64Ptr(f float64) *float64 { return &f }

func strPtr(s string) *string { return &s }

func validProductRequest(name string) dto.ProductRequest {
	return dto.ProductRequest{
		Name:     strPtr(name),
		Brand:    strPtr("Burton"),
		Style:    strPtr("all-mountain"),
		PriceEUR: float64Ptr(399.99),
	}
}

func TestProductService_AddProduct(t *testing.T) {
	repo := new(mockProductRepository)
	publisher := new(mockPublisher)
	svc := newTestProductService(repo, nil, publisher)
	id := primitive.NewObjectID()

	repo.On("AddProduct", mock.Anything, mock.MatchedBy(func(p domain.Product) bool {
		return p.Name == "Burton Custom" && p.PriceEUR == 399.99 && p.Tags != nil && len(p.Tags) == 0 && p.AverageRating == nil
	})).Return(id, nil)

	var published dto.KafkaMessage
	publisher.On("WriteMessage", mock.Anything, id.Hex(), mock.Anything).
		Run(func(args mock.Arguments) {
			require.NoError(t, json.Unmarshal(args.Get(2).([]byte), &published))
		}).Return(nil).Once()

	got, err := svc.AddProduct(context.Background(), validProductRequest("Burton Custom"))
	svc.events.Wait()

	require.NoError(t, err)
	assert.Equal(t, id.Hex(), got)
	assert.Equal(t, dto.EventProductCreated, published.EventType)
	repo.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestProductService_AddProduct_RepositoryError(t *testing.T) {
	repo := new(mockProductRepository)
	publisher := new(mockPublisher)
	svc := newTestProductService(repo, nil, publisher)

	repo.On("AddProduct", mock.Anything, mock.Anything).Return(primitive.NilObjectID, errs.ErrDatabaseUnavailable)

	_, err := svc.AddProduct(context.Background(), validProductRequest("x"))
	svc.events.Wait()

	assert.ErrorIs(t, err, errs.ErrDatabaseUnavailable)
	publisher.AssertNotCalled(t, "WriteMessage", mock.Anything, mock.Anything, mock.Anything)
}

func TestProductService_AddProduct_PublishRetries(t *testing.T) {
	repo := new(mockProductRepository)
	publisher := new(mockPublisher)
	svc := newTestProductService(repo, nil, publisher)
	id := primitive.NewObjectID()

	repo.On("AddProduct", mock.Anything, mock.Anything).Return(id, nil)
	publisher.On("WriteMessage", mock.Anything, id.Hex(), mock.Anything).Return(errors.New("broker down"))

	got, err := svc.AddProduct(context.Background(), validProductRequest("x"))
	svc.events.Wait()

	require.NoError(t, err)
	assert.Equal(t, id.Hex(), got)
	publisher.AssertNumberOfCalls(t, "WriteMessage", publishMaxRetries)
}

func TestProductService_AddProduct_PublishBreakerOpen(t *testing.T) {
	repo := new(mockProductRepository)
	publisher := new(mockPublisher)
	svc := newTestProductService(repo, nil, publisher)
	id := primitive.NewObjectID()

	repo.On("AddProduct", mock.Anything, mock.Anything).Return(id, nil)
	publisher.On("WriteMessage", mock.Anything, id.Hex(), mock.Anything).Return(gobreaker.ErrOpenState)

	_, err := svc.AddProduct(context.Background(), validProductRequest("x"))
	svc.events.Wait()

	require.NoError(t, err)
	publisher.AssertNumberOfCalls(t, "WriteMessage", 1)
}

func TestProductService_AddProduct_PublishesAfterResponse(t *testing.T) {
	repo := new(mockProductRepository)
	publisher := new(mockPublisher)
	svc := newTestProductService(repo, nil, publisher)
	id := primitive.NewObjectID()

	release := make(chan struct{})
	delivered := make(chan context.Context, 1)

	repo.On("AddProduct", mock.Anything, mock.Anything).Return(id, nil)
	publisher.On("WriteMessage", mock.Anything, id.Hex(), mock.Anything).
		Run(func(args mock.Arguments) {
			<-release
			delivered <- args.Get(0).(context.Context)
		}).Return(nil)

	ctx, cancel := context.WithCancel(context.Background())
	got, err := svc.AddProduct(ctx, validProductRequest("x"))

	// the broker is still blocked, yet the request has its answer
	require.NoError(t, err)
	assert.Equal(t, id.Hex(), got)

	cancel()
	close(release)
	svc.events.Wait()

	publishCtx := <-delivered
	assert.NoError(t, publishCtx.Err())
	publisher.AssertNumberOfCalls(t, "WriteMessage", 1)
}

func TestProductService_GetProducts(t *testing.T) {
	testCases := []struct {
		Name        string
		RepoResult  []domain.Product
		RepoErr     error
		ExpectedLen int
		ExpectedErr error
	}{
		{Name: "no products", RepoResult: nil, ExpectedLen: 0},
		{Name: "two products", RepoResult: []domain.Product{{Name: "a"}, {Name: "b", Tags: []string{"park"}}}, ExpectedLen: 2},
		{Name: "storage failure", RepoErr: errs.ErrStorage, ExpectedErr: errs.ErrStorage},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			repo := new(mockProductRepository)
			svc := newTestProductService(repo, nil, nil)
			filter := dto.ProductFilter{Merk: "Burton"}

			if tc.RepoResult == nil {
				repo.On("GetProducts", mock.Anything, filter).Return(nil, tc.RepoErr)
			} else {
				repo.On("GetProducts", mock.Anything, filter).Return(tc.RepoResult, tc.RepoErr)
			}

			got, err := svc.GetProducts(context.Background(), filter)

			if tc.ExpectedErr != nil {
				assert.ErrorIs(t, err, tc.ExpectedErr)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Len(t, got, tc.ExpectedLen)
			for _, p := range got {
				assert.NotNil(t, p.Tags)
			}
		})
	}
}

func TestProductService_GetProductByID_CacheHit(t *testing.T) {
	repo := new(mockProductRepository)
	cache := new(mockProductCache)
	svc := newTestProductService(repo, cache, nil)
	product := domain.Product{ID: primitive.NewObjectID(), Name: "Jones Mountain Twin", Tags: []string{}}

	cache.On("GetProduct", mock.Anything, product.ID.Hex()).Return(product, true, nil)

	got, err := svc.GetProductByID(context.Background(), product.ID.Hex())

	require.NoError(t, err)
	assert.Equal(t, product, got)
	repo.AssertNotCalled(t, "GetProductByID", mock.Anything, mock.Anything)
}

func TestProductService_GetProductByID_CacheMiss(t *testing.T) {
	repo := new(mockProductRepository)
	cache := new(mockProductCache)
	svc := newTestProductService(repo, cache, nil)
	product := domain.Product{ID: primitive.NewObjectID(), Name: "Jones Mountain Twin"}

	cache.On("GetProduct", mock.Anything, product.ID.Hex()).Return(domain.Product{}, false, nil)
	repo.On("GetProductByID", mock.Anything, product.ID.Hex()).Return(product, nil)
	cache.On("FillProduct", mock.Anything, mock.Anything).Return(nil)

	got, err := svc.GetProductByID(context.Background(), product.ID.Hex())

	require.NoError(t, err)
	assert.Equal(t, product.ID, got.ID)
	assert.Equal(t, []string{}, got.Tags)
	cache.AssertCalled(t, "FillProduct", mock.Anything, mock.Anything)
	cache.AssertNotCalled(t, "SetProduct", mock.Anything, mock.Anything)
}

func TestProductService_GetProductByID_CacheErrorFallsBack(t *testing.T) {
	repo := new(mockProductRepository)
	cache := new(mockProductCache)
	svc := newTestProductService(repo, cache, nil)
	product := domain.Product{ID: primitive.NewObjectID()}

	cache.On("GetProduct", mock.Anything, product.ID.Hex()).Return(domain.Product{}, false, errors.New("connection refused"))
	repo.On("GetProductByID", mock.Anything, product.ID.Hex()).Return(product, nil)
	cache.On("FillProduct", mock.Anything, mock.Anything).Return(errors.New("connection refused"))

	got, err := svc.GetProductByID(context.Background(), product.ID.Hex())

	require.NoError(t, err)
	assert.Equal(t, product.ID, got.ID)
}

func TestProductService_GetProductByID_NotFound(t *testing.T) {
	repo := new(mockProductRepository)
	svc := newTestProductService(repo, nil, nil)

	repo.On("GetProductByID", mock.Anything, "not-a-valid-id").Return(domain.Product{}, errs.ErrNotFound)

	_, err := svc.GetProductByID(context.Background(), "not-a-valid-id")

	assert.ErrorIs(t, err, errs.ErrNotFound)
}
