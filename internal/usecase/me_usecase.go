package usecase

import (
	"context"
	"errors"
	"net/http"

	"pos/internal/domain/model"
	repo "pos/internal/repository"
)

// ログイン中のユーザー自身の情報
type MeUsecase struct {
	users repo.UserRepository
}

func NewMeUsecase(users repo.UserRepository) *MeUsecase {
	return &MeUsecase{users: users}
}

func (u *MeUsecase) Me(ctx context.Context, s model.Session) (*model.User, error) {
	if s.UserID <= 0 {
		return nil, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	user, err := u.users.FindByID(ctx, s.UserID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if err != nil {
		return nil, WrapHTTPError(http.StatusInternalServerError, "db error", err)
	}
	return user, nil
}

// ロールで使えるメニューだけ
func (u *MeUsecase) Menu(s model.Session) []model.MenuEntry {
	return model.VisibleActions(s.Role, model.AllMenu())
}
