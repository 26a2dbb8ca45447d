package token

import (
	"errors"
	"strconv"
	"time"

	"pos/internal/domain/model"

	"github.com/golang-jwt/jwt/v4"
)

// HS256でアクセストークンを発行する
type JWTIssuer struct {
	secret    []byte
	accessTTL time.Duration
}

func NewJWTIssuer(secret string, accessTTL time.Duration) (*JWTIssuer, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is empty")
	}
	if accessTTL <= 0 {
		return nil, errors.New("access token ttl must be positive")
	}
	return &JWTIssuer{secret: []byte(secret), accessTTL: accessTTL}, nil
}

// sub=ユーザーID（文字列）、role、tv=token_version
func (i *JWTIssuer) Issue(userID int64, role model.Role, tokenVersion int, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(i.accessTTL)

	claims := jwt.MapClaims{
		"sub":  strconv.FormatInt(userID, 10),
		"role": string(role),
		"tv":   tokenVersion,
		"iat":  now.Unix(),
		"exp":  expiresAt.Unix(),
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}
