package server

import (
	"net/http"

	"pos/internal/config"
	"pos/internal/handler"
	"pos/internal/repository"

	"github.com/labstack/echo/v4"
)

// Handlers は起動時に組み立てたhandlerの束
type Handlers struct {
	Auth       *handler.AuthHandler
	Orders     *handler.OrderHandler
	Items      *handler.ItemHandler
	Categories *handler.CategoryHandler
	Users      *handler.UserHandler
	Reports    *handler.ReportHandler
	Feedback   *handler.FeedbackHandler
	AuditLogs  *handler.AuditLogHandler
}

type routeRegistrar interface {
	RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository)
}

func RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository, h Handlers) {
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, handler.SuccessResponse{Message: "ok"})
	})

	for _, r := range []routeRegistrar{
		h.Auth,
		h.Orders,
		h.Items,
		h.Categories,
		h.Users,
		h.Reports,
		h.Feedback,
		h.AuditLogs,
	} {
		r.RegisterRoutes(e, cfg, userRepo)
	}
}
