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

type BookHandler struct {
	svc    service.BookService
	logger *slog.Logger
}

func NewBookHandler(svc service.BookService, logger *slog.Logger) *BookHandler {
	return &BookHandler{svc: svc, logger: logger}
}

// RegisterRoutes mounts the handler under /books.
func (h *BookHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/:book_id", h.Get)
	rg.PUT("/:book_id", h.Update)
	rg.DELETE("/:book_id", h.Delete)
}

// List handles GET /api/books?q=
func (h *BookHandler) List(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	books, err := h.svc.ListBooks(ctx, middleware.IdentityFrom(c), c.Query("q"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromBooks(books))
}

func (h *BookHandler) Get(c *gin.Context) {
	bookID, ok := paramID(c, "book_id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	book, err := h.svc.GetBook(ctx, middleware.IdentityFrom(c), bookID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromBook(*book))
}

func (h *BookHandler) Create(c *gin.Context) {
	var req dto.CreateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	book, err := h.svc.CreateBook(ctx, middleware.IdentityFrom(c), req.ToFields())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, dto.FromBook(*book))
}

func (h *BookHandler) Update(c *gin.Context) {
	bookID, ok := paramID(c, "book_id")
	if !ok {
		return
	}

	var req dto.UpdateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	book, err := h.svc.UpdateBook(ctx, middleware.IdentityFrom(c), bookID, req.ToPatch())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromBook(*book))
}

func (h *BookHandler) Delete(c *gin.Context) {
	bookID, ok := paramID(c, "book_id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.svc.DeleteBook(ctx, middleware.IdentityFrom(c), bookID); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
