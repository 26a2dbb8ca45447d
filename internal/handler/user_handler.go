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

// /users（管理者のみ）
type UserHandler struct {
	uc *usecase.UserUsecase
}

func NewUserHandler(uc *usecase.UserUsecase) *UserHandler {
	return &UserHandler{uc: uc}
}

type UserRequest struct {
	FirstName  string `json:"first_name"`
	MiddleName string `json:"middle_name"`
	LastName   string `json:"last_name"`
	Email      string `json:"user_email"`
	Phone      string `json:"user_phone"`
	Address    string `json:"user_address"`
	Password   string `json:"password"`
	Role       string `json:"role"`
	Status     string `json:"user_status"`
}

func (r UserRequest) toInput() usecase.UserInput {
	return usecase.UserInput{
		FirstName:  r.FirstName,
		MiddleName: r.MiddleName,
		LastName:   r.LastName,
		Email:      r.Email,
		Phone:      r.Phone,
		Address:    r.Address,
		Password:   r.Password,
		Role:       r.Role,
		Status:     r.Status,
	}
}

func (h *UserHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	g := authGroup(e, "/users", cfg, userRepo)
	g.Use(middleware.RoleGuard(model.MenuUsers))

	g.GET("", h.list)
	g.GET("/:id", h.detail)
	g.POST("", h.create)
	g.PUT("/:id", h.update)
	g.DELETE("/:id", h.delete)
}

func (h *UserHandler) list(c echo.Context) error {
	s, err := sessionFrom(c)
	if err != nil {
		return writeError(c, err)
	}
	page, err := queryInt(c, "page", 1)
	if err != nil {
		return writeError(c, err)
	}
	perPage, err := queryInt(c, "per_page", usecase.DefaultPerPage)
	if err != nil {
		return writeError(c, err)
	}

	out, err := h.uc.List(c.Request().Context(), s, usecase.ListUsersInput{
		Page:    page,
		PerPage: perPage,
		Role:    c.QueryParam("role"),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *UserHandler) detail(c echo.Context) error {
	s, err := sessionFrom(c)
	if err != nil {
		return writeError(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	u, err := h.uc.Get(c.Request().Context(), s, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, u)
}

func (h *UserHandler) create(c echo.Context) error {
	s, err := sessionFrom(c)
	if err != nil {
		return writeError(c, err)
	}
	var req UserRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody(c)
	}

	u, err := h.uc.Create(c.Request().Context(), s, req.toInput())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, u)
}

func (h *UserHandler) update(c echo.Context) error {
	s, err := sessionFrom(c)
	if err != nil {
		return writeError(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	var req UserRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody(c)
	}

	u, err := h.uc.Update(c.Request().Context(), s, id, req.toInput())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, u)
}

func (h *UserHandler) delete(c echo.Context) error {
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
