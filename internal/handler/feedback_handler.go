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

type FeedbackHandler struct {
	uc *usecase.FeedbackUsecase
}

func NewFeedbackHandler(uc *usecase.FeedbackUsecase) *FeedbackHandler {
	return &FeedbackHandler{uc: uc}
}

type questionsResponse struct {
	Questions []usecase.Question `json:"questions"`
}

func (h *FeedbackHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	g := authGroup(e, "/feedback", cfg, userRepo)
	g.Use(middleware.RoleGuard(model.MenuFeedback))

	g.GET("/questions", h.questions)
	g.GET("/responses", h.responses)
	g.GET("/summary", h.summary)
}

func (h *FeedbackHandler) questions(c echo.Context) error {
	s, err := sessionFrom(c)
	if err != nil {
		return writeError(c, err)
	}
	qs, err := h.uc.Questions(s)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, questionsResponse{Questions: qs})
}

func (h *FeedbackHandler) responses(c echo.Context) error {
	s, err := sessionFrom(c)
	if err != nil {
		return writeError(c, err)
	}
	rows, err := h.uc.Responses(c.Request().Context(), s)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, rows)
}

func (h *FeedbackHandler) summary(c echo.Context) error {
	s, err := sessionFrom(c)
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.Summary(c.Request().Context(), s)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
