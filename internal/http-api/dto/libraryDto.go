package dto

import "libraryhub/internal/http-api/models"

type LibraryResponse struct {
	ID    int64          `json:"id"`
	Name  string         `json:"name"`
	Books []BookResponse `json:"books"`
}

type LibrarianResponse struct {
	ID      int64      `json:"id"`
	Name    string     `json:"name"`
	Library LibraryRef `json:"library"`
}

// LibrarianLookupResponse keeps a 200 when nobody staffs the library; the
// librarian field is null then.
type LibrarianLookupResponse struct {
	LibraryID int64              `json:"library_id"`
	Librarian *LibrarianResponse `json:"librarian"`
}

func FromLibrary(l models.Library) LibraryResponse {
	books := make([]BookResponse, 0, len(l.Books))
	for _, b := range l.Books {
		books = append(books, FromBook(b))
	}
	return LibraryResponse{ID: l.ID, Name: l.Name, Books: books}
}

func FromLibrarian(libraryID int64, l *models.Librarian) LibrarianLookupResponse {
	resp := LibrarianLookupResponse{LibraryID: libraryID}
	if l == nil {
		return resp
	}
	out := &LibrarianResponse{ID: l.ID, Name: l.Name, Library: LibraryRef{ID: l.LibraryID}}
	if l.Library != nil {
		out.Library.Name = l.Library.Name
	}
	resp.Librarian = out
	return resp
}
