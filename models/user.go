package models

import (
	"fmt"
	"net/url"
)

type UserAccount struct {
	RecordModel
	Email  string   `gorm:"uniqueIndex" json:"email"`
	Name   string   `json:"name"`
	Role   UserRole `gorm:"type:varchar(16);default:customer" json:"role"`
	Avatar string   `json:"avatar"`
}

func (UserAccount) TableName() string {
	return "user_accounts"
}

// AvatarFor builds the generated avatar reference assigned on registration.
func AvatarFor(name string) string {
	return fmt.Sprintf("https://api.dicebear.com/7.x/avataaars/svg?seed=%s", url.QueryEscape(name))
}
