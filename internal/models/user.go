package models

import (
	"gorm.io/gorm"
)

// User represents an account in the system
type User struct {
	ID       string `json:"id" gorm:"primaryKey"`
	Username string `json:"username" gorm:"unique;not null"`
	Password string `json:"-" gorm:"not null"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	// CurrentToken is the access token issued at the latest login. A websocket
	// handshake credential is accepted only while it matches this value, so a
	// new login invalidates every token issued before it.
	CurrentToken string `json:"-" gorm:"column:current_token"`
	gorm.Model
}

// TableName specifies the table name for User Model
func (User) TableName() string {
	return "users"
}
