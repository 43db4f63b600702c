package api

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/north-cloud/example-api/internal/domain"
)

const intParsingMsg = "Input should be a valid integer, unable to parse string as an integer"

// parseID reads the :id path parameter.
func parseID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, domain.InvalidPathParam("id", intParsingMsg, "int_parsing")
	}
	return id, nil
}

// parseListParams reads page, per_page and search from the query string.
// Bounds are checked by the service.
func parseListParams(c *gin.Context) (domain.ListParams, error) {
	params := domain.ListParams{
		Page:    domain.DefaultPage,
		PerPage: domain.DefaultPerPage,
		Search:  c.Query("search"),
	}

	var issues []domain.FieldIssue
	if raw, ok := c.GetQuery("page"); ok {
		page, err := strconv.Atoi(raw)
		if err != nil {
			issues = append(issues, domain.InvalidQueryParam("page", intParsingMsg, "int_parsing"))
		}
		params.Page = page
	}
	if raw, ok := c.GetQuery("per_page"); ok {
		perPage, err := strconv.Atoi(raw)
		if err != nil {
			issues = append(issues, domain.InvalidQueryParam("per_page", intParsingMsg, "int_parsing"))
		}
		params.PerPage = perPage
	}

	if len(issues) > 0 {
		return params, domain.NewValidationError(issues...)
	}
	return params, nil
}
