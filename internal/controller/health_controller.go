package controller

import (
	"github.com/alimikegami/snowboard-review-service/internal/service"
	"github.com/alimikegami/snowboard-review-service/pkg/response"
	"github.com/labstack/echo/v4"
)

const rootMessage = "Snowboard Reviews Affiliate API draait"

type HealthController struct {
	healthService service.HealthService
}

func CreateHealthController(e *echo.Echo, healthService service.HealthService) {
	c := HealthController{healthService: healthService}
	e.GET("/", c.Root)
	e.GET("/test", c.CheckHealth)
}

func (c *HealthController) Root(e echo.Context) error {
	return response.WriteSuccessResponse(e, response.MessageResponse{Message: rootMessage})
}

// CheckHealth always answers 200; failures show up in the body.
func (c *HealthController) CheckHealth(e echo.Context) error {
	return response.WriteSuccessResponse(e, c.healthService.CheckHealth(e.Request().Context()))
}
