package handler

import (
	"context"
	"time"

	"libraryhub/internal/authz"
	"libraryhub/internal/http-api/models"
	"libraryhub/internal/http-api/service"
	"libraryhub/internal/shared"

	"github.com/stretchr/testify/mock"
)

// MockBookService mocks the BookService interface
type MockBookService struct {
	mock.Mock
}

func (m *MockBookService) ListBooks(ctx context.Context, id authz.Identity, query string) ([]models.Book, error) {
	args := m.Called(ctx, id, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Book), args.Error(1)
}

func (m *MockBookService) GetBook(ctx context.Context, id authz.Identity, bookID int64) (*models.Book, error) {
	args := m.Called(ctx, id, bookID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Book), args.Error(1)
}

func (m *MockBookService) BooksByAuthor(ctx context.Context, id authz.Identity, authorID int64) ([]models.Book, error) {
	args := m.Called(ctx, id, authorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Book), args.Error(1)
}

func (m *MockBookService) BooksInLibrary(ctx context.Context, id authz.Identity, libraryID int64) ([]models.Book, error) {
	args := m.Called(ctx, id, libraryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Book), args.Error(1)
}

func (m *MockBookService) GetLibrary(ctx context.Context, id authz.Identity, libraryID int64) (*models.Library, error) {
	args := m.Called(ctx, id, libraryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Library), args.Error(1)
}

func (m *MockBookService) LibrarianForLibrary(ctx context.Context, id authz.Identity, libraryID int64) (*models.Librarian, error) {
	args := m.Called(ctx, id, libraryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Librarian), args.Error(1)
}

func (m *MockBookService) CreateBook(ctx context.Context, id authz.Identity, in service.BookFields) (*models.Book, error) {
	args := m.Called(ctx, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Book), args.Error(1)
}

func (m *MockBookService) UpdateBook(ctx context.Context, id authz.Identity, bookID int64, patch service.BookPatch) (*models.Book, error) {
	args := m.Called(ctx, id, bookID, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Book), args.Error(1)
}

func (m *MockBookService) DeleteBook(ctx context.Context, id authz.Identity, bookID int64) error {
	args := m.Called(ctx, id, bookID)
	return args.Error(0)
}

// MockAuthService mocks the AuthService interface
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, username, password, email string) (*models.User, error) {
	args := m.Called(ctx, username, password, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, username, password string) (string, string, *models.User, error) {
	args := m.Called(ctx, username, password)
	if args.Get(2) == nil {
		return args.String(0), args.String(1), nil, args.Error(3)
	}
	return args.String(0), args.String(1), args.Get(2).(*models.User), args.Error(3)
}

func (m *MockAuthService) RefreshAccessToken(ctx context.Context, refreshToken string) (string, error) {
	args := m.Called(ctx, refreshToken)
	return args.String(0), args.Error(1)
}

func (m *MockAuthService) RevokeToken(ctx context.Context, refreshToken string) error {
	args := m.Called(ctx, refreshToken)
	return args.Error(0)
}

func (m *MockAuthService) ValidateToken(tokenString string) (*shared.AuthClaims, error) {
	args := m.Called(tokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.AuthClaims), args.Error(1)
}

func (m *MockAuthService) AccessTokenTTL() time.Duration {
	return 15 * time.Minute
}
