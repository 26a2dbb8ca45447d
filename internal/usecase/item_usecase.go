package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"pos/internal/domain/model"
	"pos/internal/domain/pricing"
	repo "pos/internal/repository"
	"pos/internal/validator"

	"github.com/shopspring/decimal"
)

type ItemUsecase struct {
	items      repo.ItemRepository
	categories repo.CategoryRepository
	audit      repo.AuditLogRepository
	clock      Clock
	log        *slog.Logger
}

// DI
func NewItemUsecase(
	items repo.ItemRepository,
	categories repo.CategoryRepository,
	audit repo.AuditLogRepository,
	clock Clock,
	log *slog.Logger,
) *ItemUsecase {
	return &ItemUsecase{
		items:      items,
		categories: categories,
		audit:      audit,
		clock:      clock,
		log:        log,
	}
}

type ListItemsInput struct {
	Page       int
	PerPage    int
	CategoryID *int64
}

// 一覧・詳細で返す形（割引後の単価つき）
type ItemOutput struct {
	ID              int64            `json:"item_id"`
	Name            string           `json:"item_name"`
	Description     string           `json:"item_description"`
	Price           json.Number      `json:"item_price"`
	Discount        int              `json:"item_discount"`
	DiscountedPrice json.Number      `json:"discounted_price"`
	Quantity        int64            `json:"item_quantity"`
	StockLevel      model.StockLevel `json:"stock_level"`
	CategoryID      int64            `json:"category_id"`
	Category        *model.Category  `json:"category,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

func toItemOutput(it model.Item) ItemOutput {
	return ItemOutput{
		ID:              it.ID,
		Name:            it.Name,
		Description:     it.Description,
		Price:           money(it.Price),
		Discount:        it.Discount,
		DiscountedPrice: money(pricing.ApplyDiscount(it.Price, it.Discount)),
		Quantity:        it.Quantity,
		StockLevel:      it.StockLevel,
		CategoryID:      it.CategoryID,
		Category:        it.Category,
		CreatedAt:       it.CreatedAt,
		UpdatedAt:       it.UpdatedAt,
	}
}

// 作成・更新の入力。Priceがnilなら未入力
type ItemInput struct {
	Name        string
	Description string
	Price       *decimal.Decimal
	Discount    int64
	Quantity    int64
	StockLevel  string
	CategoryID  int64
}

func (u *ItemUsecase) List(ctx context.Context, in ListItemsInput) (Page[ItemOutput], error) {
	page, perPage := normalizePage(in.Page, in.PerPage, DefaultPerPage)
	if in.CategoryID != nil && *in.CategoryID <= 0 {
		return Page[ItemOutput]{}, NewHTTPError(http.StatusBadRequest, "invalid category_id")
	}

	items, total, err := u.items.List(ctx, repo.ItemListQuery{
		Page:       page,
		PerPage:    perPage,
		CategoryID: in.CategoryID,
	})
	if err != nil {
		return Page[ItemOutput]{}, WrapHTTPError(http.StatusInternalServerError, "db error", err)
	}

	data := make([]ItemOutput, 0, len(items))
	for _, it := range items {
		data = append(data, toItemOutput(it))
	}
	return newPage(data, page, perPage, total), nil
}

func (u *ItemUsecase) Get(ctx context.Context, id int64) (ItemOutput, error) {
	if id <= 0 {
		return ItemOutput{}, NewHTTPError(http.StatusBadRequest, "invalid item id")
	}
	it, err := u.items.FindByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return ItemOutput{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return ItemOutput{}, WrapHTTPError(http.StatusInternalServerError, "db error", err)
	}
	return toItemOutput(it), nil
}

func (u *ItemUsecase) Create(ctx context.Context, s model.Session, in ItemInput) (ItemOutput, error) {
	if err := authorize(s, model.MenuItems); err != nil {
		return ItemOutput{}, err
	}
	if err := u.validate(ctx, in); err != nil {
		return ItemOutput{}, err
	}

	now := u.clock.Now()
	it, err := u.items.Create(ctx, model.Item{
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		Price:       in.Price.Round(pricing.Places),
		Discount:    int(in.Discount),
		Quantity:    in.Quantity,
		StockLevel:  model.StockLevel(in.StockLevel),
		CategoryID:  in.CategoryID,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return ItemOutput{}, WrapHTTPError(http.StatusInternalServerError, "db error", err)
	}
	return toItemOutput(it), nil
}

func (u *ItemUsecase) Update(ctx context.Context, s model.Session, id int64, in ItemInput) (ItemOutput, error) {
	if err := authorize(s, model.MenuItems); err != nil {
		return ItemOutput{}, err
	}
	if id <= 0 {
		return ItemOutput{}, NewHTTPError(http.StatusBadRequest, "invalid item id")
	}

	//変更前（監査ログ用）
	before, err := u.items.FindByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return ItemOutput{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return ItemOutput{}, WrapHTTPError(http.StatusInternalServerError, "db error", err)
	}

	if err := u.validate(ctx, in); err != nil {
		return ItemOutput{}, err
	}

	after := before
	after.Name = strings.TrimSpace(in.Name)
	after.Description = strings.TrimSpace(in.Description)
	after.Price = in.Price.Round(pricing.Places)
	after.Discount = int(in.Discount)
	after.Quantity = in.Quantity
	after.StockLevel = model.StockLevel(in.StockLevel)
	after.CategoryID = in.CategoryID
	after.Category = nil
	after.UpdatedAt = u.clock.Now()

	err = u.items.Update(ctx, after)
	if errors.Is(err, repo.ErrNotFound) {
		return ItemOutput{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return ItemOutput{}, WrapHTTPError(http.StatusInternalServerError, "db error", err)
	}

	before.Category = nil
	if err := u.writeAudit(ctx, s, model.AuditActionUpdateItem, id, before, after); err != nil {
		return ItemOutput{}, err
	}
	return toItemOutput(after), nil
}

// 削除はフラグのみ。過去の注文明細はこの商品を参照したまま
func (u *ItemUsecase) Delete(ctx context.Context, s model.Session, id int64) error {
	if err := authorize(s, model.MenuItems); err != nil {
		return err
	}
	if id <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid item id")
	}

	before, err := u.items.FindByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return WrapHTTPError(http.StatusInternalServerError, "db error", err)
	}

	err = u.items.SoftDelete(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return WrapHTTPError(http.StatusInternalServerError, "db error", err)
	}

	before.Category = nil
	return u.writeAudit(ctx, s, model.AuditActionDeleteItem, id, before, nil)
}

func (u *ItemUsecase) validate(ctx context.Context, in ItemInput) error {
	v := validator.New()
	v.RequiredString(validator.FieldItemName, in.Name, 55)
	v.RequiredString(validator.FieldItemDescription, in.Description, 255)
	v.NonNegativeDecimal(validator.FieldItemPrice, in.Price)
	v.MaxDecimal(validator.FieldItemPrice, in.Price, pricing.MaxAmount)
	v.BetweenInt(validator.FieldItemDiscount, in.Discount, 0, 100)
	v.MinInt(validator.FieldItemQuantity, in.Quantity, 0)
	if !model.StockLevel(in.StockLevel).Valid() {
		v.Add(validator.FieldStockLevel, "The selected stock level is invalid.")
	}

	if in.CategoryID <= 0 {
		v.Add(validator.FieldCategoryID, "The category id field is required.")
	} else {
		_, err := u.categories.FindByID(ctx, in.CategoryID)
		if errors.Is(err, repo.ErrNotFound) {
			v.Add(validator.FieldCategoryID, "The selected category id is invalid.")
		} else if err != nil {
			return WrapHTTPError(http.StatusInternalServerError, "db error", err)
		}
	}
	return v.Err()
}

func (u *ItemUsecase) writeAudit(ctx context.Context, s model.Session, action model.AuditAction, id int64, before, after any) error {
	entry, err := newAuditLog(s, action, model.AuditResourceItem, id, before, after, u.clock.Now())
	if err != nil {
		return WrapHTTPError(http.StatusInternalServerError, "audit encode error", err)
	}
	if err := u.audit.Create(ctx, entry); err != nil {
		u.log.ErrorContext(ctx, "audit log write failed", slog.String("action", string(action)), slog.Any("error", err))
		return WrapHTTPError(http.StatusInternalServerError, "db error", err)
	}
	return nil
}
