package handler

import (
	"errors"
	"net/http"

	"pos/internal/config"
	"pos/internal/repository"
	"pos/internal/usecase"
	auth "pos/internal/usecase/auth_usecase"

	"github.com/labstack/echo/v4"
)

type AuthHandler struct {
	loginUC *auth.LoginUsecase // ログインusecase
	meUC    *usecase.MeUsecase // 自分の情報・メニュー
}

// DIコンストラクタ
func NewAuthHandler(loginUC *auth.LoginUsecase, meUC *usecase.MeUsecase) *AuthHandler {
	return &AuthHandler{loginUC: loginUC, meUC: meUC}
}

// /auth/login のリクエストボディ。
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	e.POST("/auth/login", h.login)

	me := authGroup(e, "/me", cfg, userRepo)
	me.GET("", h.me)
	me.GET("/menu", h.menu)
}

// POST /auth/login
func (h *AuthHandler) login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody(c)
	}

	out, err := h.loginUC.Execute(c.Request().Context(), auth.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid credentials"})
		case errors.Is(err, auth.ErrUserInactive):
			return c.JSON(http.StatusForbidden, ErrorResponse{Error: "user is inactive"})
		default:
			return writeError(c, err)
		}
	}

	//JSONレスポンス（user + token）
	return c.JSON(http.StatusOK, out)
}

// GET /me
func (h *AuthHandler) me(c echo.Context) error {
	s, err := sessionFrom(c)
	if err != nil {
		return writeError(c, err)
	}
	u, err := h.meUC.Me(c.Request().Context(), s)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, u)
}

// GET /me/menu（ロールで見えるメニューだけ）
func (h *AuthHandler) menu(c echo.Context) error {
	s, err := sessionFrom(c)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, h.meUC.Menu(s))
}
