package models

import (
	"time"

	"gorm.io/gorm"
)

type AppRole string

const (
	RoleAdmin  AppRole = "admin"
	RoleEditor AppRole = "editor"
	RoleViewer AppRole = "viewer"
)

type User struct {
	ID           uint           `gorm:"primaryKey"`
	Email        string         `gorm:"uniqueIndex;not null"`
	Password     string         `gorm:"not null;column:password"`
	Prenom       string         `gorm:"not null;column:prenom"`
	Nom          string         `gorm:"not null;column:nom"`
	Role         AppRole        `gorm:"type:varchar(20);default:editor;column:role"`
	Actif        bool           `gorm:"default:true;column:actif"`
	RefreshToken string         `gorm:"type:text;column:refresh_token"`
	CreatedAt    time.Time      `gorm:"autoCreateTime;column:created_at"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime;column:updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index;column:deleted_at"`
}

func (User) TableName() string {
	return "users"
}

// CanEdit reports whether the user may change flows.
func (u User) CanEdit() bool {
	return u.Role == RoleAdmin || u.Role == RoleEditor
}
