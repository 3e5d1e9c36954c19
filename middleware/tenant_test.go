package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"couplefin/database"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (sqlmock.Sqlmock, func()) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	require.NoError(t, err)

	oldDB := database.DB
	database.DB = gormDB
	return mock, func() {
		database.DB = oldDB
		sqlDB.Close()
	}
}

func userRows(coupleID interface{}) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "email", "password", "name", "couple_id", "created_at", "updated_at", "deleted_at"}).
		AddRow(1, "a@example.com", "hash", "阿宝", coupleID, time.Now(), time.Now(), nil)
}

func tenantRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/scoped", func(c *gin.Context) {
		c.Set("userID", uint(1))
	}, TenantContext(), func(c *gin.Context) {
		c.String(200, "couple:%d", GetCurrentCoupleID(c))
	})
	return r
}

func TestTenantContext_Paired(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `users`").
		WillReturnRows(userRows(7))

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/scoped", nil)
	tenantRouter().ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	assert.Equal(t, "couple:7", w.Body.String())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTenantContext_NotPaired(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `users`").
		WillReturnRows(userRows(nil))

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/scoped", nil)
	tenantRouter().ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "NOT_PAIRED")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTenantContext_MissingAuth(t *testing.T) {
	// 无 userID：属于接线错误，返回 500 且不泄露细节
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/scoped", TenantContext(), func(c *gin.Context) {
		c.String(200, "ok")
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/scoped", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "内部错误")
}
