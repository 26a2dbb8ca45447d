package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 注文明細
// discounted_priceは注文時点の単価スナップショット（あとで商品価格が変わっても変えない）
type OrderItem struct {
	ID              int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID         int64           `gorm:"not null;index" json:"order_id"`
	Order           *Order          `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	ItemID          int64           `gorm:"not null;index" json:"item_id"`
	Item            *Item           `gorm:"foreignKey:ItemID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	Quantity        int64           `gorm:"not null" json:"quantity"`
	DiscountedPrice decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"discounted_price"`
	CreatedAt       time.Time       `gorm:"not null" json:"created_at"`
}
