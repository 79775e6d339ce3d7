package response

import (
	"net/http"

	"github.com/alimikegami/snowboard-review-service/pkg/errs"
	"github.com/alimikegami/snowboard-review-service/pkg/validator"
	"github.com/labstack/echo/v4"
)

type CreatedResponse struct {
	ID string `json:"id"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Status string      `json:"status"`
	Detail string      `json:"detail"`
	Errors interface{} `json:"errors"`
}

func WriteSuccessResponse(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, data)
}

func WriteCreatedResponse(c echo.Context, id string) error {
	return c.JSON(http.StatusOK, CreatedResponse{ID: id})
}

// WriteErrorResponse maps err to its status code. Field-level validation
// detail is attached when err carries it.
func WriteErrorResponse(c echo.Context, err error) error {
	statusCode := errs.GetErrorStatusCode(err)
	resp := ErrorResponse{}
	resp.Status = "error"
	resp.Detail = errs.Detail(err)
	if fields := validator.FieldErrors(err); fields != nil {
		resp.Errors = fields
	}

	return c.JSON(statusCode, resp)
}
