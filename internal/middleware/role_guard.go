package middleware

import (
	"net/http"

	"pos/internal/domain/model"

	"github.com/labstack/echo/v4"
)

// メニュー表のロールだけ通す（画面の表示とAPIの許可を同じ表で決める）
func RoleGuard(entry model.MenuEntry) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			s, ok := SessionFrom(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}
			if !entry.Allows(s.Role) {
				return c.JSON(http.StatusForbidden, errorJSON("forbidden"))
			}
			return next(c)
		}
	}
}
