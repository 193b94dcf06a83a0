package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"libraryhub/internal/http-api/dto"
	"libraryhub/internal/http-api/middleware"
	"libraryhub/internal/http-api/service"

	"github.com/gin-gonic/gin"
)

// LibraryHandler serves the library and author filtered reads.
type LibraryHandler struct {
	svc    service.BookService
	logger *slog.Logger
}

func NewLibraryHandler(svc service.BookService, logger *slog.Logger) *LibraryHandler {
	return &LibraryHandler{svc: svc, logger: logger}
}

// RegisterRoutes mounts the handler under /libraries.
func (h *LibraryHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/:library_id", h.Get)
	rg.GET("/:library_id/books", h.Books)
	rg.GET("/:library_id/librarian", h.Librarian)
}

// RegisterAuthorRoutes mounts the author read under /authors.
func (h *LibraryHandler) RegisterAuthorRoutes(rg *gin.RouterGroup) {
	rg.GET("/:author_id/books", h.BooksByAuthor)
}

func (h *LibraryHandler) Get(c *gin.Context) {
	libraryID, ok := paramID(c, "library_id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	lib, err := h.svc.GetLibrary(ctx, middleware.IdentityFrom(c), libraryID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromLibrary(*lib))
}

// Books returns an empty list for an unknown library.
func (h *LibraryHandler) Books(c *gin.Context) {
	libraryID, ok := paramID(c, "library_id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	books, err := h.svc.BooksInLibrary(ctx, middleware.IdentityFrom(c), libraryID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromBooks(books))
}

func (h *LibraryHandler) Librarian(c *gin.Context) {
	libraryID, ok := paramID(c, "library_id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	librarian, err := h.svc.LibrarianForLibrary(ctx, middleware.IdentityFrom(c), libraryID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromLibrarian(libraryID, librarian))
}

// BooksByAuthor returns an empty list for an unknown author.
func (h *LibraryHandler) BooksByAuthor(c *gin.Context) {
	authorID, ok := paramID(c, "author_id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	books, err := h.svc.BooksByAuthor(ctx, middleware.IdentityFrom(c), authorID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromBooks(books))
}
