package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tmtrack/core/internal/infrastructure/logger"
	"github.com/tmtrack/core/internal/ports"
)

// UserHandler exposes the userids known to the identity tables.
type UserHandler struct {
	resolver ports.IdentityResolver
	logger   *logger.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(resolver ports.IdentityResolver, logger *logger.Logger) *UserHandler {
	return &UserHandler{
		resolver: resolver,
		logger:   logger,
	}
}

// ListUsers handles GET /users
// @Summary List known userids
// @Tags Users
// @Produce json
// @Success 200 {object} UserListResponse
// @Router /users [get]
func (h *UserHandler) ListUsers(c echo.Context) error {
	ident := IdentityFromContext(c)

	return c.JSON(http.StatusOK, UserListResponse{
		identityFields: annotate(ident),
		Users:          h.resolver.Users(),
	})
}
