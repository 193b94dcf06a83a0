package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"libraryhub/internal/authz"
	"libraryhub/internal/config"
	"libraryhub/internal/http-api/dto"
	"libraryhub/internal/http-api/middleware"
	"libraryhub/internal/http-api/models"
	"libraryhub/internal/http-api/repository"
	"libraryhub/internal/http-api/service"
	"libraryhub/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type apiClient struct {
	t      *testing.T
	router *gin.Engine
}

func (a apiClient) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a apiClient) login(username string) string {
	w := a.do(http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Username: username, Password: "password123"})
	require.Equal(a.t, http.StatusOK, w.Code, w.Body.String())
	var resp dto.AuthResponse
	require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.AccessToken
}

func newAPI(t *testing.T) (apiClient, *gorm.DB) {
	gin.SetMode(gin.TestMode)
	db := testutil.OpenMemoryDB(t)
	logger := testutil.Logger()
	ctx := context.Background()

	users := repository.NewUserRepository(db)
	identities := service.NewIdentityService(users, nil, logger)
	seeder := service.NewSeedService(repository.NewGroupRepo(db), users, identities, logger)
	_, err := seeder.CreateGroups(ctx)
	require.NoError(t, err)
	_, err = seeder.CreateTestUsers(ctx, service.DefaultTestUsers)
	require.NoError(t, err)

	cfg := &config.Config{
		JWTSecret:       "integration-secret-integration-secret",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: time.Hour,
	}
	authorizer := authz.NewAuthorizer(logger)

	router, err := NewRouter(nil)
	require.NoError(t, err)
	RegisterRoutes(router, Services{
		Auth:       service.NewAuthService(users, repository.NewRefreshTokenRepository(db), cfg, logger),
		Identities: identities,
		Books:      service.NewBookService(repository.NewBookRepo(db), repository.NewLibraryRepository(db), authorizer, logger),
		Authorizer: authorizer,
		Limiter:    middleware.NewRateLimiter(1000, 1000),
		Logger:     logger,
	})
	return apiClient{t: t, router: router}, db
}

func TestAPI_CatalogPermissions(t *testing.T) {
	api, db := newAPI(t)

	central := &models.Library{Name: "Central"}
	require.NoError(t, db.Create(central).Error)

	editorToken := api.login("editor_user")
	viewerToken := api.login("viewer_user")
	adminToken := api.login("admin_user")

	// anonymous callers may read but not write
	w := api.do(http.MethodGet, "/api/books", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = api.do(http.MethodPost, "/api/books", "", dto.CreateBookRequest{Title: "Dune", Author: "Frank Herbert", PublicationYear: 1965})
	assert.Equal(t, http.StatusForbidden, w.Code)

	// viewers cannot create
	w = api.do(http.MethodPost, "/api/books", viewerToken, dto.CreateBookRequest{Title: "Dune", Author: "Frank Herbert", PublicationYear: 1965})
	assert.Equal(t, http.StatusForbidden, w.Code)

	// editors create, with field errors first
	w = api.do(http.MethodPost, "/api/books", editorToken, dto.CreateBookRequest{Title: "  ", Author: "Frank Herbert", PublicationYear: 99})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"validation failed","fields":{"title":"must not be blank","publication_year":"must be between 1000 and 9999"}}`, w.Body.String())

	w = api.do(http.MethodPost, "/api/books", editorToken, dto.CreateBookRequest{
		Title: "Dune", Author: "Frank Herbert", PublicationYear: 1965, LibraryIDs: []int64{central.ID},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created dto.BookResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = api.do(http.MethodGet, "/api/libraries/"+itoa(central.ID)+"/books", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var inLibrary dto.BookListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &inLibrary))
	assert.Equal(t, 1, inLibrary.Total)

	// editors cannot delete; the book survives
	w = api.do(http.MethodDelete, "/api/books/"+itoa(created.ID), editorToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = api.do(http.MethodGet, "/api/books/"+itoa(created.ID), "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = api.do(http.MethodDelete, "/api/books/"+itoa(created.ID), adminToken, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = api.do(http.MethodGet, "/api/books/"+itoa(created.ID), "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAPI_RolesAndTokens(t *testing.T) {
	api, _ := newAPI(t)

	adminToken := api.login("admin_user")
	w := api.do(http.MethodGet, "/api/roles/admin", adminToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	viewerToken := api.login("viewer_user")
	w = api.do(http.MethodGet, "/api/roles/admin", viewerToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = api.do(http.MethodGet, "/api/roles/member", viewerToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = api.do(http.MethodGet, "/api/books", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAPI_RegisterThenLogin(t *testing.T) {
	api, _ := newAPI(t)

	w := api.do(http.MethodPost, "/api/auth/register", "", dto.RegisterRequest{
		Username: "newreader", Password: "password123", Email: "newreader@example.com",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	token := api.login("newreader")
	w = api.do(http.MethodGet, "/api/roles/member", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = api.do(http.MethodPost, "/api/books", token, dto.CreateBookRequest{Title: "X", Author: "Y", PublicationYear: 2000})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = api.do(http.MethodPost, "/api/auth/register", "", dto.RegisterRequest{
		Username: "newreader", Password: "password123", Email: "other@example.com",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

func TestRouter_ForwardedForDoesNotSplitThrottle(t *testing.T) {
	gin.SetMode(gin.TestMode)

	loginStatuses := func(trusted []string) map[int]int {
		router, err := NewRouter(trusted)
		require.NoError(t, err)
		RegisterRoutes(router, Services{
			Auth:    new(MockAuthService),
			Limiter: middleware.NewRateLimiter(0.001, 2),
			Logger:  testutil.Logger(),
		})

		counts := map[int]int{}
		for i := 0; i < 20; i++ {
			req, _ := http.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewBufferString("{}"))
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("X-Forwarded-For", "198.51.100."+strconv.Itoa(i+1))
			req.RemoteAddr = "203.0.113.7:4321"
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			counts[w.Code]++
		}
		return counts
	}

	// a client rotating the header still shares one bucket
	assert.Equal(t, map[int]int{http.StatusBadRequest: 2, http.StatusTooManyRequests: 18}, loginStatuses(nil))

	// behind a configured proxy the forwarded address is the client
	assert.Equal(t, map[int]int{http.StatusBadRequest: 20}, loginStatuses([]string{"203.0.113.7"}))
}

func TestNewRouter_RejectsBadProxy(t *testing.T) {
	_, err := NewRouter([]string{"not-an-address"})
	assert.Error(t, err)
}
