package models

type Library struct {
	ID   int64  `json:"id" gorm:"primaryKey;autoIncrement"`
	Name string `json:"name" gorm:"size:100;not null"`

	Books []Book `json:"books,omitempty" gorm:"many2many:library_books;constraint:OnDelete:CASCADE;"`
}

func (Library) TableName() string {
	return "libraries"
}

// explicit join model for the library <-> book relation
type LibraryBook struct {
	LibraryID int64 `json:"library_id" gorm:"primaryKey"`
	BookID    int64 `json:"book_id" gorm:"primaryKey"`
}

func (LibraryBook) TableName() string {
	return "library_books"
}
