package dto

import (
	"time"

	"libraryhub/internal/http-api/models"
	"libraryhub/internal/http-api/service"
)

// CreateBookRequest used for POST /api/books. Field rules are enforced by the
// service so every violation comes back in one response.
type CreateBookRequest struct {
	Title           string  `json:"title"`
	Author          string  `json:"author"`
	PublicationYear int     `json:"publication_year"`
	LibraryIDs      []int64 `json:"library_ids,omitempty"`
}

// UpdateBookRequest used for PUT /api/books/:book_id (partial updates allowed)
type UpdateBookRequest struct {
	Title           *string  `json:"title,omitempty"`
	Author          *string  `json:"author,omitempty"`
	PublicationYear *int     `json:"publication_year,omitempty"`
	LibraryIDs      *[]int64 `json:"library_ids,omitempty"`
}

type AuthorResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type LibraryRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type BookResponse struct {
	ID              int64           `json:"id"`
	Title           string          `json:"title"`
	PublicationYear int             `json:"publication_year"`
	Author          *AuthorResponse `json:"author,omitempty"`
	Libraries       []LibraryRef    `json:"libraries,omitempty"`
	CreatedAt       *time.Time      `json:"created_at,omitempty"`
	UpdatedAt       *time.Time      `json:"updated_at,omitempty"`
}

type BookListResponse struct {
	Items []BookResponse `json:"items"`
	Total int            `json:"total"`
}

// Converters
func (r CreateBookRequest) ToFields() service.BookFields {
	return service.BookFields{
		Title:           r.Title,
		Author:          r.Author,
		PublicationYear: r.PublicationYear,
		LibraryIDs:      r.LibraryIDs,
	}
}

func (r UpdateBookRequest) ToPatch() service.BookPatch {
	return service.BookPatch{
		Title:           r.Title,
		Author:          r.Author,
		PublicationYear: r.PublicationYear,
		LibraryIDs:      r.LibraryIDs,
	}
}

func FromBook(b models.Book) BookResponse {
	resp := BookResponse{
		ID:              b.ID,
		Title:           b.Title,
		PublicationYear: b.PublicationYear,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
	if b.Author != nil {
		resp.Author = &AuthorResponse{ID: b.Author.ID, Name: b.Author.Name}
	}
	for _, l := range b.Libraries {
		resp.Libraries = append(resp.Libraries, LibraryRef{ID: l.ID, Name: l.Name})
	}
	return resp
}

func FromBooks(books []models.Book) BookListResponse {
	items := make([]BookResponse, 0, len(books))
	for _, b := range books {
		items = append(items, FromBook(b))
	}
	return BookListResponse{Items: items, Total: len(items)}
}
