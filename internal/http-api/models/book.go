package models

import "time"

type Book struct {
	ID              int64      `json:"id" gorm:"primaryKey;autoIncrement"`
	Title           string     `json:"title" gorm:"size:200;not null"`
	AuthorID        int64      `json:"author_id" gorm:"not null;index"`
	PublicationYear int        `json:"publication_year" gorm:"not null"`
	CreatedAt       *time.Time `json:"created_at,omitempty" gorm:"autoCreateTime"`
	UpdatedAt       *time.Time `json:"updated_at,omitempty" gorm:"autoUpdateTime"`

	// associations
	Author    *Author   `json:"author,omitempty" gorm:"constraint:OnDelete:CASCADE;"`
	Libraries []Library `json:"libraries,omitempty" gorm:"many2many:library_books;constraint:OnDelete:CASCADE;"`
}

func (Book) TableName() string {
	return "books"
}
