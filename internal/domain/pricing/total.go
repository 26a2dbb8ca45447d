// Package pricing は注文金額の計算をまとめる。
// 画面のプレビューとサーバーの確定値は、どちらもここのTotalを使う。
package pricing

import "github.com/shopspring/decimal"

// 金額は小数2桁で持つ
const Places = 2

var hundred = decimal.NewFromInt(100)

// numeric(10,2) に入る最大額
var MaxAmount = decimal.New(9999999999, -Places)

// 明細1行（単価 × 数量）
type Line struct {
	UnitPrice decimal.Decimal
	Quantity  int64
}

func (l Line) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(l.Quantity))
}

// 単価を2桁に丸める。合計と保存する明細はどちらも丸めた単価を使う
func RoundPrice(p decimal.Decimal) decimal.Decimal {
	return p.Round(Places)
}

// 合計 = Σ(単価 × 数量)。空なら0
func Total(lines []Line) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Subtotal())
	}
	return total.Round(Places)
}

// 割引率（0〜100）を適用した単価
func ApplyDiscount(price decimal.Decimal, percent int) decimal.Decimal {
	if percent <= 0 {
		return price.Round(Places)
	}
	if percent >= 100 {
		return decimal.Zero
	}
	rate := hundred.Sub(decimal.NewFromInt(int64(percent))).Div(hundred)
	return price.Mul(rate).Round(Places)
}
