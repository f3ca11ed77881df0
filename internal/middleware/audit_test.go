package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/educonnect-pk/educonnect-api/internal/models"
)

type mockAuditWriter struct {
	entries []*models.AuditLog
	fail    error
}

func (m *mockAuditWriter) CreateAuditLog(ctx context.Context, entry *models.AuditLog) error {
	if m.fail != nil {
		return m.fail
	}
	m.entries = append(m.entries, entry)
	return nil
}

func auditTestRouter(writer *mockAuditWriter, status int, withClaims bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers := []gin.HandlerFunc{}
	if withClaims {
		handlers = append(handlers, func(c *gin.Context) {
			c.Set(ContextUserKey, &models.JWTClaims{UserID: "student-1", Role: models.RoleStudent})
		})
	}
	handlers = append(handlers,
		Audit(writer, models.AuditActionWishlistToggle, "wishlist"),
		func(c *gin.Context) { c.Status(status) },
	)
	r.POST("/wishlist/:tutorId", handlers...)
	return r
}

func TestAuditRecordsSuccessfulRequest(t *testing.T) {
	writer := &mockAuditWriter{}
	r := auditTestRouter(writer, http.StatusOK, true)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/wishlist/2", nil)
	req.Header.Set("User-Agent", "test-client")
	r.ServeHTTP(w, req)

	require.Len(t, writer.entries, 1)
	entry := writer.entries[0]
	assert.Equal(t, models.AuditActionWishlistToggle, entry.Action)
	assert.Equal(t, "wishlist", entry.Resource)
	require.NotNil(t, entry.UserID)
	assert.Equal(t, "student-1", *entry.UserID)
	assert.Equal(t, "test-client", entry.UserAgent)
	assert.Contains(t, string(entry.NewValues), "/wishlist/:tutorId")
}

func TestAuditSkipsFailedRequest(t *testing.T) {
	writer := &mockAuditWriter{}
	r := auditTestRouter(writer, http.StatusConflict, true)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/wishlist/2", nil))

	assert.Empty(t, writer.entries)
}

func TestAuditAnonymousRequestHasNoUser(t *testing.T) {
	writer := &mockAuditWriter{}
	r := auditTestRouter(writer, http.StatusOK, false)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/wishlist/2", nil))

	require.Len(t, writer.entries, 1)
	assert.Nil(t, writer.entries[0].UserID)
}
