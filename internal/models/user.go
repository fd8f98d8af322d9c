package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Email     string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Login     string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"login"`
	Name      string    `gorm:"type:varchar(255)" json:"name"`
	Birthday  time.Time `gorm:"type:date" json:"birthday"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"-"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"-"`
}

// BeforeSave hook for validation and defaults
func (u *User) BeforeSave(tx *gorm.DB) error {
	u.Email = strings.TrimSpace(u.Email)
	if u.Email == "" || !strings.Contains(u.Email, "@") {
		return gorm.ErrInvalidData
	}

	if u.Login == "" || strings.ContainsAny(u.Login, " \t\n") {
		return gorm.ErrInvalidData
	}

	if u.Birthday.After(time.Now()) {
		return gorm.ErrInvalidData
	}

	// An empty display name falls back to the login.
	if strings.TrimSpace(u.Name) == "" {
		u.Name = u.Login
	}

	return nil
}

// TableName specifies the table name
func (User) TableName() string {
	return "users"
}
