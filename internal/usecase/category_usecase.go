package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"pos/internal/domain/model"
	repo "pos/internal/repository"
	"pos/internal/validator"
)

type CategoryUsecase struct {
	categories repo.CategoryRepository
	clock      Clock
}

// DI
func NewCategoryUsecase(categories repo.CategoryRepository, clock Clock) *CategoryUsecase {
	return &CategoryUsecase{categories: categories, clock: clock}
}

func (u *CategoryUsecase) List(ctx context.Context) ([]model.Category, error) {
	cs, err := u.categories.List(ctx)
	if err != nil {
		return nil, WrapHTTPError(http.StatusInternalServerError, "db error", err)
	}
	return cs, nil
}

func (u *CategoryUsecase) Create(ctx context.Context, s model.Session, name string) (model.Category, error) {
	if err := authorize(s, model.MenuItems); err != nil {
		return model.Category{}, err
	}
	name = strings.TrimSpace(name)
	if err := u.validateName(ctx, 0, name); err != nil {
		return model.Category{}, err
	}

	now := u.clock.Now()
	c, err := u.categories.Create(ctx, model.Category{Name: name, CreatedAt: now, UpdatedAt: now})
	if errors.Is(err, repo.ErrConflict) {
		return model.Category{}, NewHTTPError(http.StatusConflict, "category already exists")
	}
	if err != nil {
		return model.Category{}, WrapHTTPError(http.StatusInternalServerError, "db error", err)
	}
	return c, nil
}

func (u *CategoryUsecase) Update(ctx context.Context, s model.Session, id int64, name string) (model.Category, error) {
	if err := authorize(s, model.MenuItems); err != nil {
		return model.Category{}, err
	}
	if id <= 0 {
		return model.Category{}, NewHTTPError(http.StatusBadRequest, "invalid category id")
	}

	c, err := u.categories.FindByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Category{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.Category{}, WrapHTTPError(http.StatusInternalServerError, "db error", err)
	}

	name = strings.TrimSpace(name)
	if err := u.validateName(ctx, id, name); err != nil {
		return model.Category{}, err
	}

	c.Name = name
	c.UpdatedAt = u.clock.Now()
	err = u.categories.Update(ctx, c)
	switch {
	case errors.Is(err, repo.ErrNotFound):
		return model.Category{}, NewHTTPError(http.StatusNotFound, "not found")
	case errors.Is(err, repo.ErrConflict):
		return model.Category{}, NewHTTPError(http.StatusConflict, "category already exists")
	case err != nil:
		return model.Category{}, WrapHTTPError(http.StatusInternalServerError, "db error", err)
	}
	return c, nil
}

// 商品から参照されているカテゴリは消せない（409）
func (u *CategoryUsecase) Delete(ctx context.Context, s model.Session, id int64) error {
	if err := authorize(s, model.MenuItems); err != nil {
		return err
	}
	if id <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid category id")
	}

	n, err := u.categories.CountItems(ctx, id)
	if err != nil {
		return WrapHTTPError(http.StatusInternalServerError, "db error", err)
	}
	if n > 0 {
		return NewHTTPError(http.StatusConflict, "category is in use")
	}

	err = u.categories.Delete(ctx, id)
	switch {
	case errors.Is(err, repo.ErrNotFound):
		return NewHTTPError(http.StatusNotFound, "not found")
	case errors.Is(err, repo.ErrConflict):
		return NewHTTPError(http.StatusConflict, "category is in use")
	case err != nil:
		return WrapHTTPError(http.StatusInternalServerError, "db error", err)
	}
	return nil
}

// 名前は必須・55文字まで・重複不可（selfIDは更新対象自身）
func (u *CategoryUsecase) validateName(ctx context.Context, selfID int64, name string) error {
	v := validator.New()
	v.RequiredString(validator.FieldCategoryName, name, 55)
	if v.Has(validator.FieldCategoryName) {
		return v.Err()
	}

	existing, found, err := u.categories.FindByName(ctx, name)
	if err != nil {
		return WrapHTTPError(http.StatusInternalServerError, "db error", err)
	}
	if found && existing.ID != selfID {
		v.Add(validator.FieldCategoryName, "The category name has already been taken.")
	}
	return v.Err()
}
