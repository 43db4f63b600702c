package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"

	"github.com/gin-gonic/gin"

	infralogger "github.com/jonesrussell/north-cloud/example-api/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/example-api/internal/domain"
)

const internalErrorDetail = "Internal server error"

// errorResponse is the body of every non-validation error.
type errorResponse struct {
	Detail string `json:"detail"`
}

// validationResponse is the body of a 422.
type validationResponse struct {
	Detail []domain.FieldIssue `json:"detail"`
}

// respondError maps err to a status code and body. Unknown errors are logged
// with the request-scoped logger (which carries request_id) and hidden behind
// an opaque 500.
func respondError(c *gin.Context, log infralogger.Logger, err error) {
	var (
		validationErr *domain.ValidationError
		notFoundErr   *domain.NotFoundError
		conflictErr   *domain.ConflictError
	)

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusUnprocessableEntity, validationResponse{Detail: validationErr.Issues})
	case errors.As(err, &notFoundErr):
		c.JSON(http.StatusNotFound, errorResponse{Detail: notFoundErr.Error()})
	case errors.As(err, &conflictErr):
		c.JSON(http.StatusConflict, errorResponse{Detail: conflictErr.Message})
	default:
		infralogger.FromContextOr(c.Request.Context(), log).Error("Request failed",
			infralogger.String("method", c.Request.Method),
			infralogger.String("path", c.FullPath()),
			infralogger.Error(err),
		)
		c.JSON(http.StatusInternalServerError, errorResponse{Detail: internalErrorDetail})
	}
}

// bindJSON decodes the request body into obj and converts decoding failures
// into a *domain.ValidationError.
func bindJSON(c *gin.Context, obj any) error {
	if c.Request.Body == nil || c.Request.Body == http.NoBody {
		return missingBody()
	}

	err := c.ShouldBindJSON(obj)
	if err == nil {
		return nil
	}

	var (
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
	)
	switch {
	case errors.Is(err, io.EOF):
		return missingBody()
	case errors.Is(err, io.ErrUnexpectedEOF), errors.As(err, &syntaxErr):
		return domain.InvalidBody("", "JSON decode error", "json_invalid")
	case errors.As(err, &typeErr):
		return typeMismatch(typeErr)
	default:
		return domain.InvalidBody("", err.Error(), "value_error")
	}
}

func missingBody() error {
	return domain.InvalidBody("", "Field required", "missing")
}

func typeMismatch(err *json.UnmarshalTypeError) error {
	if err.Field == "" {
		return domain.InvalidBody("", "Input should be a valid dictionary or object to extract fields from", "model_attributes_type")
	}

	switch err.Type.Kind() {
	case reflect.String:
		return domain.InvalidBody(err.Field, "Input should be a valid string", "string_type")
	case reflect.Bool:
		return domain.InvalidBody(err.Field, "Input should be a valid boolean", "bool_type")
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return domain.InvalidBody(err.Field, "Input should be a valid integer", "int_type")
	default:
		return domain.InvalidBody(err.Field, "Input should be a valid "+err.Value, "value_error")
	}
}
