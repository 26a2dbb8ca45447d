package middleware

import (
	"pos/internal/domain/model"

	"github.com/labstack/echo/v4"
)

// AuthJWTが入れたセッションを取り出す
func SessionFrom(c echo.Context) (model.Session, bool) {
	s, ok := c.Get(CtxSessionKey).(model.Session)
	if !ok || s.UserID <= 0 {
		return model.Session{}, false
	}
	return s, true
}
