package handler

import (
	"net/http"

	"pos/internal/config"
	"pos/internal/domain/model"
	"pos/internal/middleware"
	"pos/internal/repository"
	"pos/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type ItemHandler struct {
	uc *usecase.ItemUsecase
}

func NewItemHandler(uc *usecase.ItemUsecase) *ItemHandler {
	return &ItemHandler{uc: uc}
}

type ItemRequest struct {
	Name        string           `json:"item_name"`
	Description string           `json:"item_description"`
	Price       *decimal.Decimal `json:"item_price"`
	Discount    int64            `json:"item_discount"`
	Quantity    int64            `json:"item_quantity"`
	StockLevel  string           `json:"stock_level"`
	CategoryID  int64            `json:"category_id"`
}

func (r ItemRequest) toInput() usecase.ItemInput {
	return usecase.ItemInput{
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		Discount:    r.Discount,
		Quantity:    r.Quantity,
		StockLevel:  r.StockLevel,
		CategoryID:  r.CategoryID,
	}
}

// 一覧・詳細は全ロール、変更は管理者とマネージャー
func (h *ItemHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	g := authGroup(e, "/items", cfg, userRepo)
	write := middleware.RoleGuard(model.MenuItems)

	g.GET("", h.list)
	g.GET("/:id", h.detail)
	g.POST("", h.create, write)
	g.PUT("/:id", h.update, write)
	g.DELETE("/:id", h.delete, write)
}

func (h *ItemHandler) list(c echo.Context) error {
	page, err := queryInt(c, "page", 1)
	if err != nil {
		return writeError(c, err)
	}
	perPage, err := queryInt(c, "per_page", usecase.DefaultPerPage)
	if err != nil {
		return writeError(c, err)
	}
	categoryID, err := queryInt64Ptr(c, "category_id")
	if err != nil {
		return writeError(c, err)
	}

	out, err := h.uc.List(c.Request().Context(), usecase.ListItemsInput{
		Page:       page,
		PerPage:    perPage,
		CategoryID: categoryID,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ItemHandler) detail(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.Get(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ItemHandler) create(c echo.Context) error {
	s, err := sessionFrom(c)
	if err != nil {
		return writeError(c, err)
	}
	var req ItemRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody(c)
	}

	out, err := h.uc.Create(c.Request().Context(), s, req.toInput())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *ItemHandler) update(c echo.Context) error {
	s, err := sessionFrom(c)
	if err != nil {
		return writeError(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	var req ItemRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody(c)
	}

	out, err := h.uc.Update(c.Request().Context(), s, id, req.toInput())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ItemHandler) delete(c echo.Context) error {
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
