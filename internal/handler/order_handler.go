package handler

import (
	"net/http"

	"pos/internal/config"
	"pos/internal/repository"
	"pos/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type OrderHandler struct {
	uc *usecase.OrderUsecase
}

func NewOrderHandler(uc *usecase.OrderUsecase) *OrderHandler {
	return &OrderHandler{uc: uc}
}

type OrderLineRequest struct {
	ItemID          int64            `json:"item_id"`
	Quantity        int64            `json:"quantity"`
	DiscountedPrice *decimal.Decimal `json:"discounted_price"`
}

// total_priceは受け取るだけ（サーバーで再計算）
type OrderCreateRequest struct {
	CustomerEmail string             `json:"customer_email"`
	FirstName     string             `json:"first_name"`
	LastName      string             `json:"last_name"`
	TotalPrice    *decimal.Decimal   `json:"total_price"`
	OrderItems    []OrderLineRequest `json:"orderItems"`
}

func (r OrderCreateRequest) toInput() usecase.PlaceOrderInput {
	lines := make([]usecase.OrderLineInput, 0, len(r.OrderItems))
	for _, l := range r.OrderItems {
		lines = append(lines, usecase.OrderLineInput{
			ItemID:          l.ItemID,
			Quantity:        l.Quantity,
			DiscountedPrice: l.DiscountedPrice,
		})
	}
	return usecase.PlaceOrderInput{
		CustomerEmail: r.CustomerEmail,
		FirstName:     r.FirstName,
		LastName:      r.LastName,
		TotalPrice:    r.TotalPrice,
		Items:         lines,
	}
}

func (h *OrderHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	g := authGroup(e, "/orders", cfg, userRepo)

	g.POST("", h.create)
	g.POST("/preview", h.preview)
	g.GET("", h.list)
	g.GET("/:id", h.detail)
}

func (h *OrderHandler) create(c echo.Context) error {
	s, err := sessionFrom(c)
	if err != nil {
		return writeError(c, err)
	}

	var req OrderCreateRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody(c)
	}

	out, err := h.uc.PlaceOrder(c.Request().Context(), s, req.toInput())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *OrderHandler) preview(c echo.Context) error {
	var req OrderCreateRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody(c)
	}
	return c.JSON(http.StatusOK, h.uc.Preview(req.toInput()))
}

func (h *OrderHandler) list(c echo.Context) error {
	page, err := queryInt(c, "page", 1)
	if err != nil {
		return writeError(c, err)
	}
	perPage, err := queryInt(c, "per_page", usecase.DefaultPerPage)
	if err != nil {
		return writeError(c, err)
	}

	out, err := h.uc.List(c.Request().Context(), page, perPage)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) detail(c echo.Context) error {
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
