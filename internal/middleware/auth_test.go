package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"task-tracker-api/internal/models"
	"task-tracker-api/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

type stubAuthenticator map[string]services.Identity

func (s stubAuthenticator) Authenticate(_ context.Context, token string) (services.Identity, error) {
	id, ok := s[token]
	if !ok {
		return services.Identity{}, services.ErrInvalidToken
	}
	return id, nil
}

var testIdentities = stubAuthenticator{
	"admin-token":  {UserID: "u-1", Role: models.RoleAdmin},
	"member-token": {UserID: "u-2", Role: models.RoleMember},
}

func newAuthRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Authenticate(testIdentities))
	r.GET("/protected", func(c *gin.Context) {
		id, _ := IdentityFrom(c)
		c.JSON(http.StatusOK, gin.H{"user_id": id.UserID})
	})
	r.GET("/admin", RequireCapability(services.DefaultPolicy(), services.CapUsersList), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestAuthenticate_BearerHeader(t *testing.T) {
	r := newAuthRouter()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer member-token")
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"user_id":"u-2"}`, w.Body.String())
}

func TestAuthenticate_QueryFallback(t *testing.T) {
	r := newAuthRouter()
	req := httptest.NewRequest(http.MethodGet, "/protected?token=admin-token", nil)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestAuthenticate_MissingToken(t *testing.T) {
	r := newAuthRouter()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Equal(t, "MissingToken", decodeError(t, w).Error)
}

func TestAuthenticate_InvalidToken(t *testing.T) {
	r := newAuthRouter()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer nope")
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Equal(t, "InvalidToken", decodeError(t, w).Error)
}

func TestRequireCapability(t *testing.T) {
	r := newAuthRouter()

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer member-token")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusForbidden, w.Code)
	require.Equal(t, "Forbidden", decodeError(t, w).Error)

	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer admin-token")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestBearerToken(t *testing.T) {
	require.Equal(t, "abc", bearerToken("Bearer abc"))
	require.Equal(t, "abc", bearerToken("bearer abc"))
	require.Empty(t, bearerToken("Basic abc"))
	require.Empty(t, bearerToken("abc"))
}
