package usecase

import (
	"encoding/json"

	"pos/internal/domain/pricing"

	"github.com/shopspring/decimal"
)

// 金額はJSONで数値（小数2桁）として返す
func money(d decimal.Decimal) json.Number {
	return json.Number(d.StringFixed(pricing.Places))
}
