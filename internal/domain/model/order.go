package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 会計1回分の注文。作成後は変更しない
type Order struct {
	ID            int64           `gorm:"primaryKey;autoIncrement" json:"order_id"`
	CustomerEmail string          `gorm:"type:varchar(100);not null" json:"customer_email"`
	FirstName     string          `gorm:"type:varchar(255);not null" json:"first_name"`
	LastName      string          `gorm:"type:varchar(255);not null" json:"last_name"`
	TotalPrice    decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"total_price"`
	CreatedAt     time.Time       `gorm:"not null;index" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"not null" json:"updated_at"`
}
