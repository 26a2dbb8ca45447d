package handler

import (
	"net/http"
	"time"

	"pos/internal/config"
	"pos/internal/domain/model"
	"pos/internal/middleware"
	"pos/internal/repository"
	"pos/internal/usecase"

	"github.com/labstack/echo/v4"
)

// GET /audit-logs（管理者のみ）
type AuditLogHandler struct {
	uc *usecase.AuditLogUsecase
}

func NewAuditLogHandler(uc *usecase.AuditLogUsecase) *AuditLogHandler {
	return &AuditLogHandler{uc: uc}
}

func (h *AuditLogHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	g := authGroup(e, "/audit-logs", cfg, userRepo)
	g.GET("", h.list, middleware.RoleGuard(model.MenuUsers))
}

func (h *AuditLogHandler) list(c echo.Context) error {
	s, err := sessionFrom(c)
	if err != nil {
		return writeError(c, err)
	}

	limit, err := queryInt(c, "limit", 0)
	if err != nil {
		return writeError(c, err)
	}
	offset, err := queryInt(c, "offset", 0)
	if err != nil {
		return writeError(c, err)
	}
	resourceID, err := queryInt64Ptr(c, "resource_id")
	if err != nil {
		return writeError(c, err)
	}
	actorID, err := queryInt64Ptr(c, "actor_user_id")
	if err != nil {
		return writeError(c, err)
	}

	in := usecase.ListAuditLogsInput{
		Action:       c.QueryParam("action"),
		ResourceType: c.QueryParam("resource_type"),
		Limit:        limit,
		Offset:       offset,
	}
	if resourceID != nil {
		in.ResourceID = *resourceID
	}
	if actorID != nil {
		in.ActorUserID = *actorID
	}
	if v := c.QueryParam("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid from"})
		}
		in.From = &t
	}
	if v := c.QueryParam("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid to"})
		}
		in.To = &t
	}

	logs, err := h.uc.List(c.Request().Context(), s, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, logs)
}
