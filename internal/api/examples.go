package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	infralogger "github.com/jonesrussell/north-cloud/example-api/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/example-api/internal/domain"
	"github.com/jonesrussell/north-cloud/example-api/internal/pagination"
)

// ExampleService is the operation set the example handlers delegate to.
type ExampleService interface {
	Create(ctx context.Context, in *domain.ExampleCreate) (*domain.Example, error)
	Get(ctx context.Context, id int64) (*domain.Example, error)
	List(ctx context.Context, params domain.ListParams) (*domain.ExamplePage, error)
	Update(ctx context.Context, id int64, in *domain.ExampleUpdate) (*domain.Example, error)
	Delete(ctx context.Context, id int64) error
}

// ListResponse is the body of GET /examples.
type ListResponse struct {
	Items []domain.Example `json:"items"`
	pagination.Meta
}

// MessageResponse carries a human-readable confirmation.
type MessageResponse struct {
	Message string `json:"message"`
}

// ExampleHandler serves the /examples routes.
type ExampleHandler struct {
	service ExampleService
	logger  infralogger.Logger
}

// NewExampleHandler creates a handler over service.
func NewExampleHandler(service ExampleService, log infralogger.Logger) *ExampleHandler {
	return &ExampleHandler{
		service: service,
		logger:  log,
	}
}

// Create handles POST /examples.
func (h *ExampleHandler) Create(c *gin.Context) {
	var in domain.ExampleCreate
	if err := bindJSON(c, &in); err != nil {
		respondError(c, h.logger, err)
		return
	}

	example, err := h.service.Create(c.Request.Context(), &in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.requestLogger(c).Info("Example created",
		infralogger.Int64("example_id", example.ID),
		infralogger.String("example_name", example.Name),
	)

	c.JSON(http.StatusCreated, example)
}

// List handles GET /examples.
func (h *ExampleHandler) List(c *gin.Context) {
	params, err := parseListParams(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	page, err := h.service.List(c.Request.Context(), params)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, ListResponse{
		Items: page.Items,
		Meta:  page.Meta,
	})
}

// Get handles GET /examples/:id.
func (h *ExampleHandler) Get(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	example, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, example)
}

// Update handles PUT /examples/:id.
func (h *ExampleHandler) Update(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	var in domain.ExampleUpdate
	if err = bindJSON(c, &in); err != nil {
		respondError(c, h.logger, err)
		return
	}

	example, err := h.service.Update(c.Request.Context(), id, &in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.requestLogger(c).Info("Example updated",
		infralogger.Int64("example_id", example.ID),
		infralogger.Strings("changed_fields", in.ChangedFields()),
	)

	c.JSON(http.StatusOK, example)
}

// Delete handles DELETE /examples/:id.
func (h *ExampleHandler) Delete(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	if err = h.service.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.requestLogger(c).Info("Example deleted", infralogger.Int64("example_id", id))

	c.JSON(http.StatusOK, MessageResponse{Message: "Example deleted successfully"})
}

func (h *ExampleHandler) requestLogger(c *gin.Context) infralogger.Logger {
	return infralogger.FromContextOr(c.Request.Context(), h.logger)
}
