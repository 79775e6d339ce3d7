package controller

import (
	"github.com/alimikegami/snowboard-review-service/internal/dto"
	"github.com/alimikegami/snowboard-review-service/internal/service"
	"github.com/alimikegami/snowboard-review-service/pkg/response"
	"github.com/alimikegami/snowboard-review-service/pkg/validator"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

type Controller struct {
	productService service.ProductService
	reviewService  service.ReviewService
}

func CreateProductController(g *echo.Group, productService service.ProductService, reviewService service.ReviewService) {
	c := Controller{
		productService: productService,
		reviewService:  reviewService,
	}
	g.POST("/products", c.AddProduct)
	g.GET("/products", c.GetProducts)
	g.GET("/products/:id", c.GetProductByID)
	g.GET("/products/:id/reviews", c.GetProductReviews)
	g.POST("/reviews", c.AddReview)
}

func (c *Controller) AddProduct(e echo.Context) error {
	payload := dto.ProductRequest{}
	if err := e.Bind(&payload); err != nil {
		log.Ctx(e.Request().Context()).Warn().Err(err).Str("component", "AddProduct").Msg("")
		return response.WriteErrorResponse(e, validator.NewBindError(err))
	}

	if err := validator.Validate(payload); err != nil {
		return response.WriteErrorResponse(e, err)
	}

	id, err := c.productService.AddProduct(e.Request().Context(), payload)
	if err != nil {
		return response.WriteErrorResponse(e, err)
	}

	return response.WriteCreatedResponse(e, id)
}

func (c *Controller) GetProducts(e echo.Context) error {
	filter := dto.ProductFilter{}
	if err := (&echo.DefaultBinder{}).BindQueryParams(e, &filter); err != nil {
		return response.WriteErrorResponse(e, validator.NewBindError(err))
	}

	data, err := c.productService.GetProducts(e.Request().Context(), filter)
	if err != nil {
		return response.WriteErrorResponse(e, err)
	}

	return response.WriteSuccessResponse(e, data)
}

func (c *Controller) GetProductByID(e echo.Context) error {
	product, err := c.productService.GetProductByID(e.Request().Context(), e.Param("id"))
	if err != nil {
		return response.WriteErrorResponse(e, err)
	}

	return response.WriteSuccessResponse(e, product)
}

func (c *Controller) AddReview(e echo.Context) error {
	payload := dto.ReviewRequest{}
	if err := e.Bind(&payload); err != nil {
		log.Ctx(e.Request().Context()).Warn().Err(err).Str("component", "AddReview").Msg("")
		return response.WriteErrorResponse(e, validator.NewBindError(err))
	}

	if err := validator.Validate(payload); err != nil {
		return response.WriteErrorResponse(e, err)
	}

	id, err := c.reviewService.AddReview(e.Request().Context(), payload)
	if err != nil {
		return response.WriteErrorResponse(e, err)
	}

	return response.WriteCreatedResponse(e, id)
}

func (c *Controller) GetProductReviews(e echo.Context) error {
	data, err := c.reviewService.GetProductReviews(e.Request().Context(), e.Param("id"))
	if err != nil {
		return response.WriteErrorResponse(e, err)
	}

	return response.WriteSuccessResponse(e, data)
}
