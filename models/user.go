package models

import (
	"time"
)

// ActorRole is the account role used for route gating.
type ActorRole string

const (
	RoleAdmin  ActorRole = "admin"
	RoleMentor ActorRole = "mentor"
	RoleUser   ActorRole = "user"
)

func (r ActorRole) IsValid() bool {
	switch r {
	case RoleAdmin, RoleMentor, RoleUser:
		return true
	}
	return false
}

type User struct {
	UserID      int        `gorm:"primaryKey;column:user_id" json:"user_id"`
	Email       string     `gorm:"column:email;unique" json:"email"`
	Password    string     `gorm:"column:password" json:"-"`
	FirstName   string     `gorm:"column:first_name" json:"prenom"`
	LastName    string     `gorm:"column:last_name" json:"nom"`
	Role        ActorRole  `gorm:"column:role" json:"role"`
	CompanyName *string    `gorm:"column:company_name" json:"company_name,omitempty"`
	CreateAt    *time.Time `gorm:"column:create_at;autoCreateTime" json:"create_at"`
	UpdateAt    *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt    *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`
}

// TableName overrides
func (User) TableName() string {
	return "users"
}
