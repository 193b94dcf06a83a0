package repository_test

import (
	"testing"

	"libraryhub/internal/http-api/models"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newAuthor(t *testing.T, db *gorm.DB, name string) *models.Author {
	t.Helper()
	author := &models.Author{Name: name}
	require.NoError(t, db.Create(author).Error)
	return author
}

func newBook(t *testing.T, db *gorm.DB, author *models.Author, title string, year int) *models.Book {
	t.Helper()
	book := &models.Book{Title: title, PublicationYear: year, AuthorID: author.ID}
	require.NoError(t, db.Create(book).Error)
	return book
}

// newLibrary creates the library and shelves the given books in it.
func newLibrary(t *testing.T, db *gorm.DB, name string, books ...*models.Book) *models.Library {
	t.Helper()
	library := &models.Library{Name: name}
	require.NoError(t, db.Create(library).Error)
	for _, b := range books {
		require.NoError(t, db.Create(&models.LibraryBook{LibraryID: library.ID, BookID: b.ID}).Error)
	}
	return library
}

func newLibrarian(t *testing.T, db *gorm.DB, library *models.Library, name string) *models.Librarian {
	t.Helper()
	librarian := &models.Librarian{Name: name, LibraryID: library.ID}
	require.NoError(t, db.Create(librarian).Error)
	return librarian
}
