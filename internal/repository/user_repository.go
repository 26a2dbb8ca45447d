package repository

import (
	"context"

	"pos/internal/domain/model"
)

type UserListQuery struct {
	Page    int
	PerPage int
	Role    *model.Role
}

// 保存・取得を約束（削除済みユーザーは返さない）
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, userID int64) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	List(ctx context.Context, q UserListQuery) ([]model.User, int64, error)
	Update(ctx context.Context, user *model.User) error
	// is_deleted=true にして token_version を+1（強制ログアウト）
	SoftDelete(ctx context.Context, userID int64) error
	IncrementTokenVersion(ctx context.Context, userID int64) error
}
