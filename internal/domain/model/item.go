package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 在庫区分（管理者が設定する）
type StockLevel string

const (
	StockLevelAvailable    StockLevel = "available"
	StockLevelUnavailable  StockLevel = "unavailable"
	StockLevelLowInventory StockLevel = "low_inventory"
)

func (s StockLevel) Valid() bool {
	switch s {
	case StockLevelAvailable, StockLevelUnavailable, StockLevelLowInventory:
		return true
	}
	return false
}

// 商品。削除はis_deletedで行い、行は消さない（注文明細から参照され続けるため）
type Item struct {
	ID          int64           `gorm:"primaryKey;autoIncrement" json:"item_id"`
	Name        string          `gorm:"type:varchar(55);not null" json:"item_name"`
	Description string          `gorm:"type:varchar(255);not null" json:"item_description"`
	Price       decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"item_price"`
	Discount    int             `gorm:"not null;default:0" json:"item_discount"`
	Quantity    int64           `gorm:"not null;default:0" json:"item_quantity"`
	StockLevel  StockLevel      `gorm:"type:varchar(20);not null" json:"stock_level"`
	CategoryID  int64           `gorm:"not null;index" json:"category_id"`
	Category    *Category       `gorm:"foreignKey:CategoryID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"category,omitempty"`
	IsDeleted   bool            `gorm:"not null;default:false;index" json:"-"`
	CreatedAt   time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
