package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tmtrack/core/internal/domain/entities"
	"github.com/tmtrack/core/internal/infrastructure/logger"
	"github.com/tmtrack/core/internal/ports"
)

// CategoryHandler handles the shared category list endpoints
type CategoryHandler struct {
	categoryService ports.CategoryService
	logger          *logger.Logger
}

// NewCategoryHandler creates a new category handler
func NewCategoryHandler(categoryService ports.CategoryService, logger *logger.Logger) *CategoryHandler {
	return &CategoryHandler{
		categoryService: categoryService,
		logger:          logger,
	}
}

// ReplaceCategoriesRequest is the body of PUT /categories.
type ReplaceCategoriesRequest struct {
	Categories *[]string `json:"categories" validate:"required"`
}

// GetCategories handles GET /categories
// @Summary Get the category list
// @Tags Categories
// @Produce json
// @Success 200 {object} CategoryListResponse
// @Router /categories [get]
func (h *CategoryHandler) GetCategories(c echo.Context) error {
	ident := IdentityFromContext(c)

	categories, err := h.categoryService.GetCategories(c.Request().Context())
	if err != nil {
		return writeError(c, h.logger, ident, err)
	}

	return c.JSON(http.StatusOK, CategoryListResponse{
		identityFields: annotate(ident),
		Categories:     categories,
	})
}

// ReplaceCategories handles PUT /categories
// @Summary Replace the entire category list
// @Tags Categories
// @Accept json
// @Produce json
// @Success 200 {object} CategoryListResponse
// @Failure 400 {object} ErrorResponse
// @Router /categories [put]
func (h *CategoryHandler) ReplaceCategories(c echo.Context) error {
	ident := IdentityFromContext(c)

	var req ReplaceCategoriesRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, h.logger, ident, entities.ErrEmptyPayload)
	}
	if err := c.Validate(&req); err != nil {
		return writeError(c, h.logger, ident, entities.ValidationErrors{{
			Field:  "categories",
			Reason: "request body must contain a 'categories' list",
		}})
	}

	categories, err := h.categoryService.ReplaceCategories(c.Request().Context(), *req.Categories)
	if err != nil {
		return writeError(c, h.logger, ident, err)
	}

	return c.JSON(http.StatusOK, CategoryListResponse{
		identityFields: annotate(ident),
		Categories:     categories,
	})
}
