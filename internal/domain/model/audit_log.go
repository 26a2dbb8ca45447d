package model

import "time"

// 商品更新、ユーザー更新など。
type AuditAction string

const (
	AuditActionUpdateItem AuditAction = "UPDATE_ITEM"
	AuditActionDeleteItem AuditAction = "DELETE_ITEM"
	AuditActionCreateUser AuditAction = "CREATE_USER"
	AuditActionUpdateUser AuditAction = "UPDATE_USER"
	AuditActionDeleteUser AuditAction = "DELETE_USER"
)

// 何に対する操作か
type AuditResourceType string

const (
	AuditResourceItem AuditResourceType = "item"
	AuditResourceUser AuditResourceType = "user"
)

// 監査ログ（管理者操作ログ）。
// 「誰が」「何を」「どの対象に」「どう変えたか」を残す。
type AuditLog struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`

	//操作したユーザーのID。
	ActorUserID int64 `gorm:"not null;index" json:"actor_user_id"`

	Action AuditAction `gorm:"type:varchar(50);not null;index" json:"action"`

	ResourceType AuditResourceType `gorm:"type:varchar(50);not null;index" json:"resource_type"`

	ResourceID int64 `gorm:"not null;index" json:"resource_id"`

	//JSON文字列で保存する。
	BeforeJSON string `gorm:"type:text" json:"before_json"`
	AfterJSON  string `gorm:"type:text" json:"after_json"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}
