package handler

import (
	"errors"
	"net/http"
	"strconv"

	"pos/internal/config"
	"pos/internal/domain/model"
	"pos/internal/middleware"
	"pos/internal/repository"
	"pos/internal/usecase"
	"pos/internal/validator"

	"github.com/labstack/echo/v4"
)

// {error, details?}。detailsはDebugのときだけ返す
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// 422 {errors: {field: [msg...]}}
type ValidationErrorResponse struct {
	Errors map[validator.Field][]string `json:"errors"`
}

type SuccessResponse struct {
	Message string `json:"message"`
}

func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}

	var ve *validator.Errors
	if errors.As(err, &ve) {
		return c.JSON(http.StatusUnprocessableEntity, ValidationErrorResponse{Errors: ve.Fields})
	}

	if he, ok := usecase.AsHTTPError(err); ok {
		res := ErrorResponse{Error: he.Message}
		if c.Echo().Debug {
			res.Details = he.Details
		}
		return c.JSON(he.Status, res)
	}

	//500
	c.Logger().Error(err)
	res := ErrorResponse{Error: "internal error"}
	if c.Echo().Debug {
		res.Details = err.Error()
	}
	return c.JSON(http.StatusInternalServerError, res)
}

// 認証つきグループ（JWT + token_version）
func authGroup(e *echo.Echo, prefix string, cfg config.Config, userRepo repository.UserRepository) *echo.Group {
	g := e.Group(prefix)
	g.Use(middleware.AuthJWT(cfg))
	g.Use(middleware.TokenVersionGuard(userRepo))
	return g
}

func sessionFrom(c echo.Context) (model.Session, error) {
	s, ok := middleware.SessionFrom(c)
	if !ok {
		return model.Session{}, usecase.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	return s, nil
}

func pathID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, usecase.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return id, nil
}

// 未指定ならdef
func queryInt(c echo.Context, name string, def int) (int, error) {
	v := c.QueryParam(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, usecase.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return n, nil
}

func queryInt64Ptr(c echo.Context, name string) (*int64, error) {
	v := c.QueryParam(name)
	if v == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return nil, usecase.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return &n, nil
}

func invalidBody(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
}
