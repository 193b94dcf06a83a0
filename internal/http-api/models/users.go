package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID        string     `gorm:"primaryKey;size:36" json:"id"`
	Username  string     `gorm:"uniqueIndex;size:150;not null" json:"username"`
	Email     string     `gorm:"uniqueIndex;not null" json:"email"`
	Password  string     `gorm:"column:password_hash;not null" json:"-"` // Not show in JSON
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	LastLogin *time.Time `json:"last_login,omitempty"`

	Groups  []Group      `gorm:"many2many:user_groups;constraint:OnDelete:CASCADE;" json:"groups,omitempty"`
	Profile *UserProfile `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;" json:"profile,omitempty"`
}

// BeforeCreate hook to set UUID before creating a User
func (user *User) BeforeCreate(tx *gorm.DB) (err error) {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	return
}

func (User) TableName() string {
	return "users"
}

// UserProfile carries the coarse role of a user (Admin, Librarian or Member).
type UserProfile struct {
	ID     int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID string `gorm:"uniqueIndex;size:36;not null" json:"user_id"`
	Role   string `gorm:"size:20;not null;default:'Member'" json:"role"`
}

func (UserProfile) TableName() string {
	return "user_profiles"
}
