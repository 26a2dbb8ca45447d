package validator

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// 簡易メール形式をチェック
func IsEmailLike(s string) bool {
	return emailRe.MatchString(s)
}

// 必須 + 最大文字数
func (e *Errors) RequiredString(f Field, v string, max int) {
	v = strings.TrimSpace(v)
	if v == "" {
		e.Add(f, fmt.Sprintf("The %s field is required.", label(f)))
		return
	}
	e.MaxLen(f, v, max)
}

func (e *Errors) MaxLen(f Field, v string, max int) {
	if utf8.RuneCountInString(v) > max {
		e.Add(f, fmt.Sprintf("The %s field must not be greater than %d characters.", label(f), max))
	}
}

func (e *Errors) Email(f Field, v string) {
	v = strings.TrimSpace(v)
	if v == "" {
		e.Add(f, fmt.Sprintf("The %s field is required.", label(f)))
		return
	}
	if !IsEmailLike(v) {
		e.Add(f, fmt.Sprintf("The %s field must be a valid email address.", label(f)))
	}
}

func (e *Errors) MinInt(f Field, v int64, min int64) {
	if v < min {
		e.Add(f, fmt.Sprintf("The %s field must be at least %d.", label(f), min))
	}
}

func (e *Errors) BetweenInt(f Field, v int64, min, max int64) {
	if v < min || v > max {
		e.Add(f, fmt.Sprintf("The %s field must be between %d and %d.", label(f), min, max))
	}
}

// nilは未入力扱い
func (e *Errors) NonNegativeDecimal(f Field, v *decimal.Decimal) {
	if v == nil {
		e.Add(f, fmt.Sprintf("The %s field is required.", label(f)))
		return
	}
	if v.IsNegative() {
		e.Add(f, fmt.Sprintf("The %s field must be at least 0.", label(f)))
	}
}

// nilはNonNegativeDecimal側で扱う
func (e *Errors) MaxDecimal(f Field, v *decimal.Decimal, max decimal.Decimal) {
	if v != nil && v.GreaterThan(max) {
		e.Add(f, fmt.Sprintf("The %s field must not be greater than %s.", label(f), max.StringFixed(2)))
	}
}

// 項目名を "orderItems.0.item_id" → "orderItems.0.item id" のように読みやすくする
func label(f Field) string {
	return strings.ReplaceAll(string(f), "_", " ")
}
