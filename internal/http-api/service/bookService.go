package service

import (
	"context"
	"errors"
	"log/slog"

	"libraryhub/internal/authz"
	"libraryhub/internal/http-api/models"
	"libraryhub/internal/http-api/repository"
	"libraryhub/internal/metrics"

	"gorm.io/gorm"
)

var (
	ErrBookNotFound    = errors.New("book not found")
	ErrLibraryNotFound = errors.New("library not found")
)

// BookService is the access layer of the catalog. Every call names its caller;
// authorization runs before any read or write reaches the repository.
type BookService interface {
	ListBooks(ctx context.Context, id authz.Identity, query string) ([]models.Book, error)
	GetBook(ctx context.Context, id authz.Identity, bookID int64) (*models.Book, error)
	BooksByAuthor(ctx context.Context, id authz.Identity, authorID int64) ([]models.Book, error)
	BooksInLibrary(ctx context.Context, id authz.Identity, libraryID int64) ([]models.Book, error)
	GetLibrary(ctx context.Context, id authz.Identity, libraryID int64) (*models.Library, error)
	LibrarianForLibrary(ctx context.Context, id authz.Identity, libraryID int64) (*models.Librarian, error)
	CreateBook(ctx context.Context, id authz.Identity, in BookFields) (*models.Book, error)
	UpdateBook(ctx context.Context, id authz.Identity, bookID int64, patch BookPatch) (*models.Book, error)
	DeleteBook(ctx context.Context, id authz.Identity, bookID int64) error
}

type bookService struct {
	books      repository.BookRepository
	libraries  repository.LibraryRepository
	authorizer *authz.Authorizer
	logger     *slog.Logger
}

func NewBookService(
	books repository.BookRepository,
	libraries repository.LibraryRepository,
	authorizer *authz.Authorizer,
	logger *slog.Logger,
) BookService {
	if logger == nil {
		logger = slog.Default()
	}
	return &bookService{
		books:      books,
		libraries:  libraries,
		authorizer: authorizer,
		logger:     logger,
	}
}

func (s *bookService) ListBooks(ctx context.Context, id authz.Identity, query string) ([]models.Book, error) {
	if err := s.authorizer.Authorize(id, authz.PermView); err != nil {
		return nil, err
	}
	q, err := normalizeSearch(query)
	if err != nil {
		return nil, err
	}
	return s.books.List(ctx, q)
}

func (s *bookService) GetBook(ctx context.Context, id authz.Identity, bookID int64) (*models.Book, error) {
	if err := s.authorizer.Authorize(id, authz.PermView); err != nil {
		return nil, err
	}
	book, err := s.books.GetByID(ctx, bookID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBookNotFound
	}
	return book, err
}

func (s *bookService) BooksByAuthor(ctx context.Context, id authz.Identity, authorID int64) ([]models.Book, error) {
	if err := s.authorizer.Authorize(id, authz.PermView); err != nil {
		return nil, err
	}
	return s.books.ListByAuthor(ctx, authorID)
}

func (s *bookService) BooksInLibrary(ctx context.Context, id authz.Identity, libraryID int64) ([]models.Book, error) {
	if err := s.authorizer.Authorize(id, authz.PermView); err != nil {
		return nil, err
	}
	return s.books.ListByLibrary(ctx, libraryID)
}

func (s *bookService) GetLibrary(ctx context.Context, id authz.Identity, libraryID int64) (*models.Library, error) {
	if err := s.authorizer.Authorize(id, authz.PermView); err != nil {
		return nil, err
	}
	lib, err := s.libraries.GetByID(ctx, libraryID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrLibraryNotFound
	}
	return lib, err
}

// LibrarianForLibrary returns nil, nil when nobody staffs the library.
func (s *bookService) LibrarianForLibrary(ctx context.Context, id authz.Identity, libraryID int64) (*models.Librarian, error) {
	if err := s.authorizer.Authorize(id, authz.PermView); err != nil {
		return nil, err
	}
	return s.libraries.LibrarianFor(ctx, libraryID)
}

func (s *bookService) CreateBook(ctx context.Context, id authz.Identity, in BookFields) (book *models.Book, err error) {
	if err := s.authorizer.Authorize(id, authz.PermCreate); err != nil {
		return nil, err
	}
	defer func() { metrics.ObserveBookMutation("create", err) }()

	fields, err := in.normalize()
	if err != nil {
		return nil, err
	}

	book, err = s.books.Create(ctx, repository.BookWrite{
		Title:           fields.Title,
		AuthorName:      fields.Author,
		PublicationYear: fields.PublicationYear,
		LibraryIDs:      fields.LibraryIDs,
	})
	if err != nil {
		return nil, libraryFieldError(err)
	}

	s.logger.Info("book_created", "book_id", book.ID, "user_id", id.UserID)
	return book, nil
}

func (s *bookService) UpdateBook(ctx context.Context, id authz.Identity, bookID int64, patch BookPatch) (book *models.Book, err error) {
	if err := s.authorizer.Authorize(id, authz.PermEdit); err != nil {
		return nil, err
	}
	defer func() { metrics.ObserveBookMutation("update", err) }()

	current, err := s.books.GetByID(ctx, bookID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBookNotFound
	}
	if err != nil {
		return nil, err
	}

	merged := mergePatch(current, patch)
	fields, err := merged.normalize()
	if err != nil {
		return nil, err
	}

	book, err = s.books.Update(ctx, bookID, repository.BookWrite{
		Title:           fields.Title,
		AuthorName:      fields.Author,
		PublicationYear: fields.PublicationYear,
		LibraryIDs:      fields.LibraryIDs,
		SetLibraries:    patch.LibraryIDs != nil,
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBookNotFound
	}
	if err != nil {
		return nil, libraryFieldError(err)
	}

	s.logger.Info("book_updated", "book_id", book.ID, "user_id", id.UserID)
	return book, nil
}

// DeleteBook checks the permission before looking the book up, so a denied
// caller cannot tell whether the id exists.
func (s *bookService) DeleteBook(ctx context.Context, id authz.Identity, bookID int64) (err error) {
	if err := s.authorizer.Authorize(id, authz.PermDelete); err != nil {
		return err
	}
	defer func() { metrics.ObserveBookMutation("delete", err) }()

	if err := s.books.Delete(ctx, bookID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrBookNotFound
		}
		return err
	}

	s.logger.Info("book_deleted", "book_id", bookID, "user_id", id.UserID)
	return nil
}

func mergePatch(current *models.Book, patch BookPatch) BookFields {
	out := BookFields{
		Title:           current.Title,
		PublicationYear: current.PublicationYear,
	}
	if current.Author != nil {
		out.Author = current.Author.Name
	}
	for _, l := range current.Libraries {
		out.LibraryIDs = append(out.LibraryIDs, l.ID)
	}

	if patch.Title != nil {
		out.Title = *patch.Title
	}
	if patch.Author != nil {
		out.Author = *patch.Author
	}
	if patch.PublicationYear != nil {
		out.PublicationYear = *patch.PublicationYear
	}
	if patch.LibraryIDs != nil {
		out.LibraryIDs = *patch.LibraryIDs
	}
	return out
}

// libraryFieldError reports unknown library ids as a field error.
func libraryFieldError(err error) error {
	if errors.Is(err, repository.ErrUnknownLibrary) {
		return &ValidationError{Fields: map[string]string{"library_ids": err.Error()}}
	}
	return err
}
