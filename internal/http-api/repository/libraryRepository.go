package repository

import (
	"context"
	"errors"
	"fmt"

	"libraryhub/internal/http-api/models"

	"gorm.io/gorm"
)

type LibraryRepository interface {
	GetByID(ctx context.Context, id int64) (*models.Library, error)
	LibrarianFor(ctx context.Context, libraryID int64) (*models.Librarian, error)
}

type libraryRepository struct {
	db *gorm.DB
}

func NewLibraryRepository(db *gorm.DB) LibraryRepository {
	return &libraryRepository{db: db}
}

// GetByID loads a library together with its books; each book's author comes
// from the same statement as the book.
func (r *libraryRepository) GetByID(ctx context.Context, id int64) (*models.Library, error) {
	var lib models.Library
	if err := r.db.WithContext(ctx).
		Preload("Books", func(db *gorm.DB) *gorm.DB {
			return db.Joins("Author").Order("books.title asc, books.id asc")
		}).
		First(&lib, id).Error; err != nil {
		return nil, err
	}
	return &lib, nil
}

// LibrarianFor returns nil, nil when the library has no librarian (or does not exist).
func (r *libraryRepository) LibrarianFor(ctx context.Context, libraryID int64) (*models.Librarian, error) {
	var librarian models.Librarian
	err := r.db.WithContext(ctx).
		Joins("Library").
		Where("librarians.library_id = ?", libraryID).
		First(&librarian).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get librarian: %w", err)
	}
	return &librarian, nil
}
