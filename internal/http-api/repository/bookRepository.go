package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"libraryhub/internal/http-api/models"

	"gorm.io/gorm"
)

// ErrUnknownLibrary is returned when a write references a library id that
// does not exist. Nothing is persisted in that case.
var ErrUnknownLibrary = errors.New("unknown library")

// BookWrite carries already-validated values for a create or update.
type BookWrite struct {
	Title           string
	AuthorName      string
	PublicationYear int
	LibraryIDs      []int64
	SetLibraries    bool // false leaves the library links untouched
}

type BookRepository interface {
	List(ctx context.Context, search string) ([]models.Book, error)
	ListByAuthor(ctx context.Context, authorID int64) ([]models.Book, error)
	ListByLibrary(ctx context.Context, libraryID int64) ([]models.Book, error)
	GetByID(ctx context.Context, id int64) (*models.Book, error)
	Create(ctx context.Context, w BookWrite) (*models.Book, error)
	Update(ctx context.Context, id int64, w BookWrite) (*models.Book, error)
	Delete(ctx context.Context, id int64) error
}

type BookRepo struct {
	db *gorm.DB
}

func NewBookRepo(db *gorm.DB) *BookRepo {
	return &BookRepo{db: db}
}

// withAuthor loads the author through a LEFT JOIN in the same statement.
func (r *BookRepo) withAuthor(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Book{}).Joins("Author")
}

// List returns every book with its author. A non-empty search keeps books whose
// title or author name contains the term (case-insensitive).
func (r *BookRepo) List(ctx context.Context, search string) ([]models.Book, error) {
	list := []models.Book{}
	q := r.withAuthor(ctx)
	if search != "" {
		p := "%" + escapeLike(strings.ToLower(search)) + "%"
		q = q.Where(`LOWER(books.title) LIKE ? ESCAPE '\' OR LOWER("Author".name) LIKE ? ESCAPE '\'`, p, p)
	}
	if err := q.Order("books.title asc, books.id asc").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	return list, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes the LIKE wildcards in s match literally.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func (r *BookRepo) ListByAuthor(ctx context.Context, authorID int64) ([]models.Book, error) {
	list := []models.Book{}
	if err := r.withAuthor(ctx).
		Where("books.author_id = ?", authorID).
		Order("books.title asc, books.id asc").
		Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list books by author: %w", err)
	}
	return list, nil
}

func (r *BookRepo) ListByLibrary(ctx context.Context, libraryID int64) ([]models.Book, error) {
	list := []models.Book{}
	if err := r.withAuthor(ctx).
		Joins("JOIN library_books lb ON lb.book_id = books.id").
		Where("lb.library_id = ?", libraryID).
		Order("books.title asc, books.id asc").
		Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list books in library: %w", err)
	}
	return list, nil
}

func (r *BookRepo) GetByID(ctx context.Context, id int64) (*models.Book, error) {
	var b models.Book
	if err := r.withAuthor(ctx).Preload("Libraries").First(&b, "books.id = ?", id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BookRepo) Create(ctx context.Context, w BookWrite) (*models.Book, error) {
	var id int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		author, err := authorByName(tx, w.AuthorName)
		if err != nil {
			return err
		}
		libraries, err := librariesByID(tx, w.LibraryIDs)
		if err != nil {
			return err
		}

		b := &models.Book{
			Title:           w.Title,
			AuthorID:        author.ID,
			PublicationYear: w.PublicationYear,
		}
		if err := tx.Omit("Author", "Libraries").Create(b).Error; err != nil {
			return fmt.Errorf("create book: %w", err)
		}
		if err := linkLibraries(tx, b.ID, libraries); err != nil {
			return err
		}
		id = b.ID
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *BookRepo) Update(ctx context.Context, id int64, w BookWrite) (*models.Book, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Book
		if err := tx.First(&existing, id).Error; err != nil {
			return err
		}
		author, err := authorByName(tx, w.AuthorName)
		if err != nil {
			return err
		}

		if err := tx.Model(&existing).Omit("Author", "Libraries").Updates(map[string]interface{}{
			"title":            w.Title,
			"author_id":        author.ID,
			"publication_year": w.PublicationYear,
		}).Error; err != nil {
			return fmt.Errorf("update book: %w", err)
		}

		if w.SetLibraries {
			libraries, err := librariesByID(tx, w.LibraryIDs)
			if err != nil {
				return err
			}
			if err := tx.Where("book_id = ?", id).Delete(&models.LibraryBook{}).Error; err != nil {
				return fmt.Errorf("unlink libraries: %w", err)
			}
			if err := linkLibraries(tx, id, libraries); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *BookRepo) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("book_id = ?", id).Delete(&models.LibraryBook{}).Error; err != nil {
			return fmt.Errorf("unlink libraries: %w", err)
		}
		result := tx.Delete(&models.Book{}, id)
		if result.Error != nil {
			return fmt.Errorf("delete book: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// authorByName returns the author with exactly this name, creating it if needed.
func authorByName(tx *gorm.DB, name string) (*models.Author, error) {
	var a models.Author
	if err := tx.Where(models.Author{Name: name}).FirstOrCreate(&a).Error; err != nil {
		return nil, fmt.Errorf("resolve author: %w", err)
	}
	return &a, nil
}

func librariesByID(tx *gorm.DB, ids []int64) ([]models.Library, error) {
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return nil, nil
	}
	var libs []models.Library
	if err := tx.Where("id IN ?", ids).Find(&libs).Error; err != nil {
		return nil, fmt.Errorf("load libraries: %w", err)
	}
	if len(libs) != len(ids) {
		found := make(map[int64]bool, len(libs))
		for _, l := range libs {
			found[l.ID] = true
		}
		var missing []string
		for _, id := range ids {
			if !found[id] {
				missing = append(missing, fmt.Sprint(id))
			}
		}
		return nil, fmt.Errorf("%w: %s", ErrUnknownLibrary, strings.Join(missing, ", "))
	}
	return libs, nil
}

func linkLibraries(tx *gorm.DB, bookID int64, libs []models.Library) error {
	if len(libs) == 0 {
		return nil
	}
	links := make([]models.LibraryBook, 0, len(libs))
	for _, l := range libs {
		links = append(links, models.LibraryBook{LibraryID: l.ID, BookID: bookID})
	}
	if err := tx.Create(&links).Error; err != nil {
		return fmt.Errorf("link libraries: %w", err)
	}
	return nil
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
