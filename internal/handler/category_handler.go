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

type CategoryHandler struct {
	uc *usecase.CategoryUsecase
}

func NewCategoryHandler(uc *usecase.CategoryUsecase) *CategoryHandler {
	return &CategoryHandler{uc: uc}
}

type CategoryRequest struct {
	Name string `json:"category_name"`
}

func (h *CategoryHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	g := authGroup(e, "/categories", cfg, userRepo)
	write := middleware.RoleGuard(model.MenuItems)

	g.GET("", h.list)
	g.POST("", h.create, write)
	g.PUT("/:id", h.update, write)
	g.DELETE("/:id", h.delete, write)
}

func (h *CategoryHandler) list(c echo.Context) error {
	out, err := h.uc.List(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CategoryHandler) create(c echo.Context) error {
	s, err := sessionFrom(c)
	if err != nil {
		return writeError(c, err)
	}
	var req CategoryRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody(c)
	}

	out, err := h.uc.Create(c.Request().Context(), s, req.Name)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *CategoryHandler) update(c echo.Context) error {
	s, err := sessionFrom(c)
	if err != nil {
		return writeError(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	var req CategoryRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody(c)
	}

	out, err := h.uc.Update(c.Request().Context(), s, id, req.Name)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CategoryHandler) delete(c echo.Context) error {
	s, err := sessionFrom(c)
	if err != nil {
		return writeError(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return writeError(c, err)
	}

	if err := h.uc.Delete(c.Request().Context(), s, id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "deleted"})
}
