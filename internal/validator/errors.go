// Package validator は入力チェックの結果をフィールド単位でまとめる。
package validator

import (
	"fmt"
	"sort"
	"strings"
)

// エラーのキーになる入力フィールド名
type Field string

const (
	FieldCustomerEmail   Field = "customer_email"
	FieldFirstName       Field = "first_name"
	FieldLastName        Field = "last_name"
	FieldOrderItems      Field = "orderItems"
	FieldItemID          Field = "item_id"
	FieldQuantity        Field = "quantity"
	FieldDiscountedPrice Field = "discounted_price"

	FieldItemName        Field = "item_name"
	FieldItemDescription Field = "item_description"
	FieldItemPrice       Field = "item_price"
	FieldItemDiscount    Field = "item_discount"
	FieldItemQuantity    Field = "item_quantity"
	FieldStockLevel      Field = "stock_level"
	FieldCategoryID      Field = "category_id"
	FieldCategoryName    Field = "category_name"

	FieldMiddleName Field = "middle_name"
	FieldUserEmail  Field = "user_email"
	FieldUserPhone  Field = "user_phone"
	FieldAddress    Field = "user_address"
	FieldPassword   Field = "password"
	FieldRole       Field = "role"
	FieldUserStatus Field = "user_status"
)

// 明細N行目のフィールド（例: orderItems.1.quantity）
func LineField(index int, f Field) Field {
	return Field(fmt.Sprintf("%s.%d.%s", FieldOrderItems, index, f))
}

// フィールドごとのエラーメッセージ。422でそのまま返す
type Errors struct {
	Fields map[Field][]string
}

func New() *Errors {
	return &Errors{Fields: map[Field][]string{}}
}

func (e *Errors) Add(f Field, msg string) {
	e.Fields[f] = append(e.Fields[f], msg)
}

func (e *Errors) Has(f Field) bool {
	return len(e.Fields[f]) > 0
}

func (e *Errors) Empty() bool {
	return e == nil || len(e.Fields) == 0
}

// 空ならnilを返す（if err := v.Err(); err != nil で使う）
func (e *Errors) Err() error {
	if e.Empty() {
		return nil
	}
	return e
}

func (e *Errors) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(e.Fields[Field(k)], ", "))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
