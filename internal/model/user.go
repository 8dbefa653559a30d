package model

import (
	"strings"
	"time"
)

// User is the profile the identity side registers. The engine only reads it.
type User struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Email     string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	FirstName string    `gorm:"type:varchar(255);not null" json:"first_name"`
	LastName  string    `gorm:"type:varchar(255);not null" json:"last_name"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (User) TableName() string {
	return "user_profile"
}

// DisplayName is the "last first" form used on receipts and for name matching.
func (u *User) DisplayName() string {
	return strings.TrimSpace(u.LastName + " " + u.FirstName)
}
