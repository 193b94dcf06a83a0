package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddleware_UsesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Middleware())
	router.GET("/api/books/:book_id", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/api/books/:book_id", "204"))
	for _, id := range []string{"1", "2"} {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/api/books/"+id, nil)
		router.ServeHTTP(w, req)
		require.Equal(t, http.StatusNoContent, w.Code)
	}
	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/api/books/:book_id", "204"))
	assert.Equal(t, 2.0, after-before)
}

func TestObserveCounters(t *testing.T) {
	deny := testutil.ToFloat64(authzDecisions.WithLabelValues("deny"))
	ObserveAuthzDecision("deny")
	assert.Equal(t, deny+1, testutil.ToFloat64(authzDecisions.WithLabelValues("deny")))

	failed := testutil.ToFloat64(bookMutations.WithLabelValues("delete", "error"))
	ObserveBookMutation("delete", errors.New("boom"))
	assert.Equal(t, failed+1, testutil.ToFloat64(bookMutations.WithLabelValues("delete", "error")))

	hits := testutil.ToFloat64(identityCache.WithLabelValues("hit"))
	ObserveIdentityCache("hit")
	assert.Equal(t, hits+1, testutil.ToFloat64(identityCache.WithLabelValues("hit")))
}

func TestHandler_ServesExposition(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ObserveAuthzDecision("allow")

	router := gin.New()
	router.GET("/metrics", Handler())

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/metrics", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "libraryhub_authz_decisions_total"))
}
