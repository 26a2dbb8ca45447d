package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
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

const (
	maxCustomerNameLen = 255
	maxOrderQuantity   = 10000

	msgOrderCreated = "Order created successfully!"
	msgOrderFailed  = "Failed to create order."
)

type OrderUsecase struct {
	tx         repo.TransactionManager
	items      repo.ItemRepository
	orders     repo.OrderRepository
	orderItems repo.OrderItemRepository
	clock      Clock
	log        *slog.Logger
}

// DI
func NewOrderUsecase(
	tx repo.TransactionManager,
	items repo.ItemRepository,
	orders repo.OrderRepository,
	orderItems repo.OrderItemRepository,
	clock Clock,
	log *slog.Logger,
) *OrderUsecase {
	return &OrderUsecase{
		tx:         tx,
		items:      items,
		orders:     orders,
		orderItems: orderItems,
		clock:      clock,
		log:        log,
	}
}

// 明細1行の入力。DiscountedPriceがnilなら未入力
type OrderLineInput struct {
	ItemID          int64
	Quantity        int64
	DiscountedPrice *decimal.Decimal
}

// POST /orders の入力。TotalPriceは受け取るが使わない（サーバーで再計算する）
type PlaceOrderInput struct {
	CustomerEmail string
	FirstName     string
	LastName      string
	TotalPrice    *decimal.Decimal
	Items         []OrderLineInput
}

type PlaceOrderOutput struct {
	Message         string      `json:"message"`
	OrderID         int64       `json:"order_id"`
	GrandTotalSaved json.Number `json:"grand_total_saved"`
}

type PreviewOutput struct {
	GrandTotal json.Number `json:"grand_total"`
	Advisory   bool        `json:"advisory"`
}

type ReceiptLine struct {
	ItemID          int64       `json:"item_id"`
	ItemName        string      `json:"item_name"`
	Quantity        int64       `json:"quantity"`
	DiscountedPrice json.Number `json:"discounted_price"`
	LineTotal       json.Number `json:"line_total"`
}

type Receipt struct {
	OrderID       int64         `json:"order_id"`
	CustomerEmail string        `json:"customer_email"`
	FirstName     string        `json:"first_name"`
	LastName      string        `json:"last_name"`
	TotalPrice    json.Number   `json:"total_price"`
	CreatedAt     time.Time     `json:"created_at"`
	Items         []ReceiptLine `json:"items"`
}

type OrderSummary struct {
	OrderID       int64       `json:"order_id"`
	CustomerEmail string      `json:"customer_email"`
	FirstName     string      `json:"first_name"`
	LastName      string      `json:"last_name"`
	TotalPrice    json.Number `json:"total_price"`
	CreatedAt     time.Time   `json:"created_at"`
}

// 注文の確定。
// 検証 → 合計の再計算 → 1トランザクションで注文と明細を保存
func (u *OrderUsecase) PlaceOrder(ctx context.Context, s model.Session, in PlaceOrderInput) (PlaceOrderOutput, error) {
	if s.UserID <= 0 {
		return PlaceOrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	if err := u.validate(ctx, in); err != nil {
		return PlaceOrderOutput{}, err
	}

	//単価は2桁に丸めた値で合計し、同じ値を明細に保存する
	lines := make([]pricing.Line, 0, len(in.Items))
	for _, l := range in.Items {
		lines = append(lines, pricing.Line{UnitPrice: pricing.RoundPrice(*l.DiscountedPrice), Quantity: l.Quantity})
	}
	total := pricing.Total(lines)
	if total.GreaterThan(pricing.MaxAmount) {
		v := validator.New()
		v.Add(validator.FieldOrderItems, fmt.Sprintf("The order total must not be greater than %s.", pricing.MaxAmount.StringFixed(pricing.Places)))
		return PlaceOrderOutput{}, v.Err()
	}

	if in.TotalPrice != nil && !in.TotalPrice.Round(pricing.Places).Equal(total) {
		u.log.DebugContext(ctx, "client total differs from computed total",
			slog.String("client_total", in.TotalPrice.String()),
			slog.String("computed_total", total.StringFixed(pricing.Places)),
		)
	}

	now := u.clock.Now()
	var orderID int64

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		id, err := r.Orders().Create(ctx, model.Order{
			CustomerEmail: strings.TrimSpace(in.CustomerEmail),
			FirstName:     strings.TrimSpace(in.FirstName),
			LastName:      strings.TrimSpace(in.LastName),
			TotalPrice:    total,
			CreatedAt:     now,
			UpdatedAt:     now,
		})
		if err != nil {
			return fmt.Errorf("create order: %w", err)
		}

		//価格は入力時点の値をそのまま明細に残す
		rows := make([]model.OrderItem, 0, len(in.Items))
		for i, l := range in.Items {
			rows = append(rows, model.OrderItem{
				ItemID:          l.ItemID,
				Quantity:        l.Quantity,
				DiscountedPrice: lines[i].UnitPrice,
				CreatedAt:       now,
			})
		}
		if err := r.OrderItems().CreateBulk(ctx, id, rows); err != nil {
			return fmt.Errorf("create order items: %w", err)
		}

		orderID = id
		return nil
	})
	if err != nil {
		u.log.ErrorContext(ctx, "order transaction rolled back",
			slog.Int64("cashier_id", s.UserID),
			slog.Int("lines", len(in.Items)),
			slog.Any("error", err),
		)
		return PlaceOrderOutput{}, WrapHTTPError(http.StatusInternalServerError, msgOrderFailed, err)
	}

	u.log.InfoContext(ctx, "order created",
		slog.Int64("order_id", orderID),
		slog.Int64("cashier_id", s.UserID),
		slog.String("total", total.StringFixed(pricing.Places)),
	)

	return PlaceOrderOutput{
		Message:         msgOrderCreated,
		OrderID:         orderID,
		GrandTotalSaved: money(total),
	}, nil
}

// 入力チェック。商品の存在確認はIDをまとめて1回で行う
func (u *OrderUsecase) validate(ctx context.Context, in PlaceOrderInput) error {
	v := validator.New()
	v.Email(validator.FieldCustomerEmail, in.CustomerEmail)
	v.MaxLen(validator.FieldCustomerEmail, strings.TrimSpace(in.CustomerEmail), 100)
	v.RequiredString(validator.FieldFirstName, in.FirstName, maxCustomerNameLen)
	v.RequiredString(validator.FieldLastName, in.LastName, maxCustomerNameLen)

	if len(in.Items) == 0 {
		v.Add(validator.FieldOrderItems, "The order items field is required.")
	}

	ids := make([]int64, 0, len(in.Items))
	for i, l := range in.Items {
		if l.ItemID <= 0 {
			v.Add(validator.LineField(i, validator.FieldItemID), fmt.Sprintf("The %s field is required.", lineLabel(i, "item id")))
		} else {
			ids = append(ids, l.ItemID)
		}
		v.BetweenInt(validator.LineField(i, validator.FieldQuantity), l.Quantity, 1, maxOrderQuantity)
		v.NonNegativeDecimal(validator.LineField(i, validator.FieldDiscountedPrice), l.DiscountedPrice)
		v.MaxDecimal(validator.LineField(i, validator.FieldDiscountedPrice), l.DiscountedPrice, pricing.MaxAmount)
	}

	if len(ids) > 0 {
		found, err := u.items.ExistingActiveIDs(ctx, ids)
		if err != nil {
			u.log.ErrorContext(ctx, "item lookup failed", slog.Any("error", err))
			return WrapHTTPError(http.StatusInternalServerError, msgOrderFailed, err)
		}
		for i, l := range in.Items {
			if l.ItemID > 0 && !found[l.ItemID] {
				v.Add(validator.LineField(i, validator.FieldItemID), fmt.Sprintf("The selected %s is invalid.", lineLabel(i, "item id")))
			}
		}
	}

	if err := v.Err(); err != nil {
		u.log.DebugContext(ctx, "order rejected", slog.Any("error", err))
		return err
	}
	return nil
}

func lineLabel(i int, name string) string {
	return fmt.Sprintf("orderItems.%d.%s", i, name)
}

// 画面表示用の合計（保存しない・商品の存在も見ない）
func (u *OrderUsecase) Preview(in PlaceOrderInput) PreviewOutput {
	lines := make([]pricing.Line, 0, len(in.Items))
	for _, l := range in.Items {
		price := decimal.Zero
		if l.DiscountedPrice != nil {
			price = pricing.RoundPrice(*l.DiscountedPrice)
		}
		lines = append(lines, pricing.Line{UnitPrice: price, Quantity: l.Quantity})
	}
	return PreviewOutput{GrandTotal: money(pricing.Total(lines)), Advisory: true}
}

// レシート（注文ヘッダ + 明細）
func (u *OrderUsecase) Get(ctx context.Context, orderID int64) (Receipt, error) {
	if orderID <= 0 {
		return Receipt{}, NewHTTPError(http.StatusBadRequest, "invalid order id")
	}

	o, err := u.orders.FindByID(ctx, orderID)
	if errors.Is(err, repo.ErrNotFound) {
		return Receipt{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return Receipt{}, WrapHTTPError(http.StatusInternalServerError, "db error", err)
	}

	rows, err := u.orderItems.ListByOrderID(ctx, orderID)
	if err != nil {
		return Receipt{}, WrapHTTPError(http.StatusInternalServerError, "db error", err)
	}

	out := Receipt{
		OrderID:       o.ID,
		CustomerEmail: o.CustomerEmail,
		FirstName:     o.FirstName,
		LastName:      o.LastName,
		TotalPrice:    money(o.TotalPrice),
		CreatedAt:     o.CreatedAt,
		Items:         make([]ReceiptLine, 0, len(rows)),
	}
	for _, r := range rows {
		name := ""
		if r.Item != nil {
			name = r.Item.Name
		}
		line := pricing.Line{UnitPrice: r.DiscountedPrice, Quantity: r.Quantity}
		out.Items = append(out.Items, ReceiptLine{
			ItemID:          r.ItemID,
			ItemName:        name,
			Quantity:        r.Quantity,
			DiscountedPrice: money(r.DiscountedPrice),
			LineTotal:       money(line.Subtotal()),
		})
	}
	return out, nil
}

// 注文一覧（新しい順）
func (u *OrderUsecase) List(ctx context.Context, page, perPage int) (Page[OrderSummary], error) {
	page, perPage = normalizePage(page, perPage, DefaultPerPage)

	orders, total, err := u.orders.List(ctx, page, perPage)
	if err != nil {
		return Page[OrderSummary]{}, WrapHTTPError(http.StatusInternalServerError, "db error", err)
	}

	data := make([]OrderSummary, 0, len(orders))
	for _, o := range orders {
		data = append(data, OrderSummary{
			OrderID:       o.ID,
			CustomerEmail: o.CustomerEmail,
			FirstName:     o.FirstName,
			LastName:      o.LastName,
			TotalPrice:    money(o.TotalPrice),
			CreatedAt:     o.CreatedAt,
		})
	}
	return newPage(data, page, perPage, total), nil
}
