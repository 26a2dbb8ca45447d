package model

import "time"

type Role string

const (
	RoleAdministrator Role = "administrator"
	RoleManager       Role = "manager"
	RoleCashier       Role = "cashier"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdministrator, RoleManager, RoleCashier:
		return true
	}
	return false
}

type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusInactive UserStatus = "inactive"
)

func (s UserStatus) Valid() bool {
	return s == UserStatusActive || s == UserStatusInactive
}

// スタッフ（POSを操作する人）
type User struct {
	ID           int64      `gorm:"primaryKey;autoIncrement" json:"user_id"`
	FirstName    string     `gorm:"type:varchar(55);not null" json:"first_name"`
	MiddleName   string     `gorm:"type:varchar(55)" json:"middle_name"`
	LastName     string     `gorm:"type:varchar(55);not null" json:"last_name"`
	Email        string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"user_email"`
	Phone        string     `gorm:"type:varchar(30)" json:"user_phone"`
	Address      string     `gorm:"type:varchar(255)" json:"user_address"`
	PasswordHash string     `gorm:"column:password_hash;not null" json:"-"`
	Role         Role       `gorm:"type:varchar(20);not null;default:'cashier'" json:"role"`
	Status       UserStatus `gorm:"type:varchar(20);not null;default:'active'" json:"user_status"`
	TokenVersion int        `gorm:"not null;default:0" json:"-"`
	IsDeleted    bool       `gorm:"not null;default:false;index" json:"-"`
	LastLoginAt  *time.Time `json:"last_login_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// "Last, First M." 形式の表示名
func (u User) FullName() string {
	name := u.LastName + ", " + u.FirstName
	if u.MiddleName != "" {
		name += " " + u.MiddleName[:1] + "."
	}
	return name
}

// 認証済みリクエストの主体。middlewareが作り、handlerからusecaseへ明示的に渡す
type Session struct {
	UserID int64
	Role   Role
}
