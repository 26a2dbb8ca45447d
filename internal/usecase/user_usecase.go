package usecase

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"pos/internal/domain/model"
	repo "pos/internal/repository"
	"pos/internal/validator"
)

const minPasswordLen = 8

// 平文パスワードからハッシュへ。
type PasswordHasher interface {
	Hash(plain string) (string, error)
}

type UserUsecase struct {
	users  repo.UserRepository
	audit  repo.AuditLogRepository
	hasher PasswordHasher
	clock  Clock
	log    *slog.Logger
}

// DI
func NewUserUsecase(
	users repo.UserRepository,
	audit repo.AuditLogRepository,
	hasher PasswordHasher,
	clock Clock,
	log *slog.Logger,
) *UserUsecase {
	return &UserUsecase{users: users, audit: audit, hasher: hasher, clock: clock, log: log}
}

type ListUsersInput struct {
	Page    int
	PerPage int
	Role    string
}

// 作成・更新の入力。更新時のPasswordは空なら変更しない
type UserInput struct {
	FirstName  string
	MiddleName string
	LastName   string
	Email      string
	Phone      string
	Address    string
	Password   string
	Role       string
	Status     string
}

func (u *UserUsecase) List(ctx context.Context, s model.Session, in ListUsersInput) (Page[model.User], error) {
	if err := authorize(s, model.MenuUsers); err != nil {
		return Page[model.User]{}, err
	}
	page, perPage := normalizePage(in.Page, in.PerPage, DefaultPerPage)

	q := repo.UserListQuery{Page: page, PerPage: perPage}
	if in.Role != "" {
		role := model.Role(in.Role)
		if !role.Valid() {
			return Page[model.User]{}, NewHTTPError(http.StatusBadRequest, "invalid role")
		}
		q.Role = &role
	}

	users, total, err := u.users.List(ctx, q)
	if err != nil {
		return Page[model.User]{}, WrapHTTPError(http.StatusInternalServerError, "db error", err)
	}
	return newPage(users, page, perPage, total), nil
}

func (u *UserUsecase) Get(ctx context.Context, s model.Session, id int64) (*model.User, error) {
	if err := authorize(s, model.MenuUsers); err != nil {
		return nil, err
	}
	return u.find(ctx, id)
}

func (u *UserUsecase) Create(ctx context.Context, s model.Session, in UserInput) (*model.User, error) {
	if err := authorize(s, model.MenuUsers); err != nil {
		return nil, err
	}
	if err := u.validate(ctx, 0, in, true); err != nil {
		return nil, err
	}

	hashed, err := u.hasher.Hash(in.Password)
	if err != nil {
		return nil, WrapHTTPError(http.StatusInternalServerError, "hash error", err)
	}

	now := u.clock.Now()
	user := &model.User{
		PasswordHash: hashed,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	applyUserInput(user, in)

	err = u.users.Create(ctx, user)
	if errors.Is(err, repo.ErrConflict) {
		return nil, NewHTTPError(http.StatusConflict, "email already exists")
	}
	if err != nil {
		return nil, WrapHTTPError(http.StatusInternalServerError, "db error", err)
	}

	if err := u.writeAudit(ctx, s, model.AuditActionCreateUser, user.ID, nil, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ロール・状態・パスワードが変わったらtoken_versionを上げて古いトークンを無効にする
func (u *UserUsecase) Update(ctx context.Context, s model.Session, id int64, in UserInput) (*model.User, error) {
	if err := authorize(s, model.MenuUsers); err != nil {
		return nil, err
	}
	current, err := u.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := u.validate(ctx, id, in, false); err != nil {
		return nil, err
	}

	before := *current
	updated := *current
	applyUserInput(&updated, in)

	revoke := updated.Role != before.Role || updated.Status != before.Status
	if in.Password != "" {
		hashed, err := u.hasher.Hash(in.Password)
		if err != nil {
			return nil, WrapHTTPError(http.StatusInternalServerError, "hash error", err)
		}
		updated.PasswordHash = hashed
		revoke = true
	}
	if revoke {
		updated.TokenVersion++
	}
	updated.UpdatedAt = u.clock.Now()

	err = u.users.Update(ctx, &updated)
	if errors.Is(err, repo.ErrConflict) {
		return nil, NewHTTPError(http.StatusConflict, "email already exists")
	}
	if err != nil {
		return nil, WrapHTTPError(http.StatusInternalServerError, "db error", err)
	}

	if err := u.writeAudit(ctx, s, model.AuditActionUpdateUser, id, before, updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// 論理削除（token_versionも上がるので即ログアウト）
func (u *UserUsecase) Delete(ctx context.Context, s model.Session, id int64) error {
	if err := authorize(s, model.MenuUsers); err != nil {
		return err
	}
	if id == s.UserID {
		return NewHTTPError(http.StatusBadRequest, "cannot delete yourself")
	}
	before, err := u.find(ctx, id)
	if err != nil {
		return err
	}

	err = u.users.SoftDelete(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return WrapHTTPError(http.StatusInternalServerError, "db error", err)
	}

	return u.writeAudit(ctx, s, model.AuditActionDeleteUser, id, *before, nil)
}

// 起動時に管理者がいなければ作る。既にいれば何もしない
func (u *UserUsecase) EnsureAdmin(ctx context.Context, email, password string) error {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil
	}

	_, err := u.users.FindByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return err
	}

	hashed, err := u.hasher.Hash(password)
	if err != nil {
		return err
	}
	now := u.clock.Now()
	admin := &model.User{
		FirstName:    "System",
		LastName:     "Administrator",
		Email:        email,
		PasswordHash: hashed,
		Role:         model.RoleAdministrator,
		Status:       model.UserStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := u.users.Create(ctx, admin); err != nil {
		return err
	}
	u.log.InfoContext(ctx, "bootstrap administrator created", slog.Int64("user_id", admin.ID))
	return nil
}

func (u *UserUsecase) find(ctx context.Context, id int64) (*model.User, error) {
	if id <= 0 {
		return nil, NewHTTPError(http.StatusBadRequest, "invalid user id")
	}
	user, err := u.users.FindByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return nil, WrapHTTPError(http.StatusInternalServerError, "db error", err)
	}
	return user, nil
}

func (u *UserUsecase) validate(ctx context.Context, selfID int64, in UserInput, creating bool) error {
	v := validator.New()
	v.RequiredString(validator.FieldFirstName, in.FirstName, 55)
	v.MaxLen(validator.FieldMiddleName, strings.TrimSpace(in.MiddleName), 55)
	v.RequiredString(validator.FieldLastName, in.LastName, 55)
	v.Email(validator.FieldUserEmail, in.Email)
	v.MaxLen(validator.FieldUserEmail, strings.TrimSpace(in.Email), 255)
	v.MaxLen(validator.FieldUserPhone, strings.TrimSpace(in.Phone), 30)
	v.MaxLen(validator.FieldAddress, strings.TrimSpace(in.Address), 255)

	if creating || in.Password != "" {
		if len(in.Password) < minPasswordLen {
			v.Add(validator.FieldPassword, "The password field must be at least 8 characters.")
		}
	}
	if !model.Role(in.Role).Valid() {
		v.Add(validator.FieldRole, "The selected role is invalid.")
	}
	if !model.UserStatus(in.Status).Valid() {
		v.Add(validator.FieldUserStatus, "The selected user status is invalid.")
	}

	if !v.Has(validator.FieldUserEmail) {
		existing, err := u.users.FindByEmail(ctx, strings.TrimSpace(in.Email))
		if err != nil && !errors.Is(err, repo.ErrNotFound) {
			return WrapHTTPError(http.StatusInternalServerError, "db error", err)
		}
		if err == nil && existing.ID != selfID {
			v.Add(validator.FieldUserEmail, "The user email has already been taken.")
		}
	}
	return v.Err()
}

func applyUserInput(user *model.User, in UserInput) {
	user.FirstName = strings.TrimSpace(in.FirstName)
	user.MiddleName = strings.TrimSpace(in.MiddleName)
	user.LastName = strings.TrimSpace(in.LastName)
	user.Email = strings.TrimSpace(in.Email)
	user.Phone = strings.TrimSpace(in.Phone)
	user.Address = strings.TrimSpace(in.Address)
	user.Role = model.Role(in.Role)
	user.Status = model.UserStatus(in.Status)
}

func (u *UserUsecase) writeAudit(ctx context.Context, s model.Session, action model.AuditAction, id int64, before, after any) error {
	entry, err := newAuditLog(s, action, model.AuditResourceUser, id, before, after, u.clock.Now())
	if err != nil {
		return WrapHTTPError(http.StatusInternalServerError, "audit encode error", err)
	}
	if err := u.audit.Create(ctx, entry); err != nil {
		u.log.ErrorContext(ctx, "audit log write failed", slog.String("action", string(action)), slog.Any("error", err))
		return WrapHTTPError(http.StatusInternalServerError, "db error", err)
	}
	return nil
}
