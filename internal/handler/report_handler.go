package handler

import (
	"net/http"

	"pos/internal/config"
	"pos/internal/domain/model"
	"pos/internal/middleware"
	"pos/internal/repository"
	"pos/internal/usecase"

	"github.com/labstack/echo/v4"
)

type ReportHandler struct {
	uc *usecase.ReportUsecase
}

func NewReportHandler(uc *usecase.ReportUsecase) *ReportHandler {
	return &ReportHandler{uc: uc}
}

func (h *ReportHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	g := authGroup(e, "/reports", cfg, userRepo)

	g.GET("/items", h.items, middleware.RoleGuard(model.MenuReports))
	g.GET("/sales", h.sales, middleware.RoleGuard(model.MenuReports))
	g.GET("/revenue", h.revenue, middleware.RoleGuard(model.MenuCharts))
}

func reportQuery(c echo.Context) usecase.ReportQuery {
	return usecase.ReportQuery{
		StartDate: c.QueryParam("start_date"),
		EndDate:   c.QueryParam("end_date"),
	}
}

func (h *ReportHandler) items(c echo.Context) error {
	s, err := sessionFrom(c)
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.ItemSales(c.Request().Context(), s, reportQuery(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ReportHandler) sales(c echo.Context) error {
	s, err := sessionFrom(c)
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.Sales(c.Request().Context(), s, reportQuery(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ReportHandler) revenue(c echo.Context) error {
	s, err := sessionFrom(c)
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.Revenue(c.Request().Context(), s, c.QueryParam("group_by"), reportQuery(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
