package models

type Group struct {
	ID   int64  `json:"id" gorm:"primaryKey;autoIncrement"`
	Name string `json:"name" gorm:"uniqueIndex;size:150;not null"`

	Permissions []Permission `json:"permissions,omitempty" gorm:"many2many:group_permissions;constraint:OnDelete:CASCADE;"`
}

func (Group) TableName() string {
	return "auth_groups"
}

type Permission struct {
	ID       int64  `json:"id" gorm:"primaryKey;autoIncrement"`
	Codename string `json:"codename" gorm:"uniqueIndex;size:100;not null"`
	Name     string `json:"name" gorm:"size:255;not null"`
}

func (Permission) TableName() string {
	return "auth_permissions"
}
