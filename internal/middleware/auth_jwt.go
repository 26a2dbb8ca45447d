package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"pos/internal/config"
	"pos/internal/domain/model"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
)

const (
	CtxSessionKey      = "session"       // model.Session
	CtxTokenVersionKey = "token_version" // int
)

var errBadClaims = errors.New("invalid claims")

// Authorization: Bearer <jwt> を検証してセッションをcontextに入れる。
// 失敗理由は返さず、すべて401
func AuthJWT(cfg config.Config) echo.MiddlewareFunc {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	keyFunc := func(*jwt.Token) (interface{}, error) {
		return []byte(cfg.JWTSecret), nil
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			claims := jwt.MapClaims{}
			if _, err := parser.ParseWithClaims(raw, claims, keyFunc); err != nil {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			s, tv, err := sessionFromClaims(claims)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			c.Set(CtxSessionKey, s)
			c.Set(CtxTokenVersionKey, tv)
			return next(c)
		}
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// sub（ユーザーID）・role・tv（token_version）
func sessionFromClaims(claims jwt.MapClaims) (model.Session, int, error) {
	userID, err := claimInt64(claims["sub"])
	if err != nil || userID <= 0 {
		return model.Session{}, 0, errBadClaims
	}

	role, _ := claims["role"].(string)
	if !model.Role(role).Valid() {
		return model.Session{}, 0, errBadClaims
	}

	tv, err := claimInt64(claims["tv"])
	if err != nil || tv < 0 {
		return model.Session{}, 0, errBadClaims
	}

	return model.Session{UserID: userID, Role: model.Role(role)}, int(tv), nil
}

// JSONの数値はfloat64で来る。subは文字列
func claimInt64(v interface{}) (int64, error) {
	switch t := v.(type) {
	case float64:
		return int64(t), nil
	case string:
		return strconv.ParseInt(t, 10, 64)
	default:
		return 0, errBadClaims
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func errorJSON(msg string) errorResponse {
	return errorResponse{Error: msg}
}
