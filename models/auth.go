package models

import "time"

// RecordModel is the common header of every stored record. Identifiers are
// opaque strings assigned by the store, never by clients.
type RecordModel struct {
	ID        string    `gorm:"primaryKey;type:varchar(64)" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
}

type LoginIn struct {
	Email string `json:"email" validate:"required,email,max=320"`
}

type RegisterIn struct {
	Email string `json:"email" validate:"required,email,max=320"`
	Name  string `json:"name" validate:"required,min=1,max=120"`
}

type UserOut struct {
	ID     string   `json:"id"`
	Email  string   `json:"email"`
	Name   string   `json:"name"`
	Role   UserRole `json:"role"`
	Avatar string   `json:"avatar"`
}

type SignInOut struct {
	UserOut
	AccessToken string `json:"access_token"`
}

func (u UserAccount) Out() UserOut {
	return UserOut{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role, Avatar: u.Avatar}
}
