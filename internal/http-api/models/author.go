package models

type Author struct {
	ID   int64  `json:"id" gorm:"primaryKey;autoIncrement"`
	Name string `json:"name" gorm:"size:100;not null;index"`

	Books []Book `json:"books,omitempty" gorm:"foreignKey:AuthorID"`
}

func (Author) TableName() string {
	return "authors"
}
