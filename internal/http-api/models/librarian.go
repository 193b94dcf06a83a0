package models

type Librarian struct {
	ID        int64  `json:"id" gorm:"primaryKey;autoIncrement"`
	Name      string `json:"name" gorm:"size:100;not null"`
	LibraryID int64  `json:"library_id" gorm:"uniqueIndex;not null"` // one librarian per library

	Library *Library `json:"library,omitempty" gorm:"constraint:OnDelete:CASCADE;"`
}

func (Librarian) TableName() string {
	return "librarians"
}
