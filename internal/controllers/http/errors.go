package http

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"storefront-service/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// mapOrderError turns a service error into a status code and response body.
// Errors without a domain kind are reported as a generic 500.
func mapOrderError(err error) (int, ErrorResponse) {
	oe, ok := domain.AsOrderError(err)
	if !ok {
		return http.StatusInternalServerError, ErrorResponse{Message: "Internal server error"}
	}

	body := ErrorResponse{Message: oe.Error(), Error: string(oe.Kind)}
	switch oe.Kind {
	case domain.KindValidation:
		body.Field = oe.Field
		return http.StatusBadRequest, body
	case domain.KindProductNotFound, domain.KindTotalMismatch:
		body.Product = oe.Product
		return http.StatusBadRequest, body
	case domain.KindInsufficientStock:
		body.Product = oe.Product
		body.Available = &oe.Available
		body.Requested = &oe.Requested
		return http.StatusBadRequest, body
	case domain.KindAmbiguousProduct:
		body.Product = oe.Product
		for _, c := range oe.Categories {
			body.Categories = append(body.Categories, string(c))
		}
		return http.StatusConflict, body
	case domain.KindInvalidTransition:
		return http.StatusConflict, body
	case domain.KindOrderNotFound:
		return http.StatusNotFound, body
	case domain.KindStorageUnavailable:
		body.Message = "Storage temporarily unavailable, please retry"
		return http.StatusInternalServerError, body
	}
	return http.StatusInternalServerError, ErrorResponse{Message: "Internal server error"}
}

func writeError(c *gin.Context, err error) {
	status, body := mapOrderError(err)
	if errors.Is(err, domain.ErrStorageUnavailable) {
		c.Header("Retry-After", "1")
	}
	c.JSON(status, body)
}

// bindingMessage renders the first failed binding rule as a short sentence.
func bindingMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Invalid request body"
	}
	fe := verrs[0]
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("Missing required field: %s", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	}
	return fmt.Sprintf("%s is invalid", field)
}

func writeBindingError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Message: bindingMessage(err),
		Error:   string(domain.KindValidation),
	})
}
