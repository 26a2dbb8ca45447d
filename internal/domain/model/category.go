package model

import "time"

// 商品カテゴリ
type Category struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"category_id"`
	Name      string    `gorm:"type:varchar(55);not null;uniqueIndex" json:"category_name"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
