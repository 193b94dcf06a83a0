package handler

import (
	"net/http"

	"libraryhub/internal/authz"
	"libraryhub/internal/http-api/dto"
	"libraryhub/internal/http-api/middleware"

	"github.com/gin-gonic/gin"
)

// RoleHandler serves one view per profile role.
type RoleHandler struct {
	authorizer *authz.Authorizer
}

func NewRoleHandler(authorizer *authz.Authorizer) *RoleHandler {
	return &RoleHandler{authorizer: authorizer}
}

func (h *RoleHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/admin", h.view("admin_view", authz.RoleAdmin))
	rg.GET("/librarian", h.view("librarian_view", authz.RoleLibrarian))
	rg.GET("/member", h.view("member_view", authz.RoleMember))
}

func (h *RoleHandler) view(name string, role authz.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := middleware.IdentityFrom(c)
		if err := h.authorizer.RequireRole(id, role); err != nil {
			c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
			return
		}
		c.JSON(http.StatusOK, dto.FromIdentity(name, id))
	}
}
