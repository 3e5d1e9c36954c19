package api

import (
	"testing"
	"time"

	"couplefin/config"
	"couplefin/database"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
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

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Mode: "debug", BaseURL: "http://localhost:8080"},
		JWT:    config.JWTConfig{Secret: "test-secret", ExpireTime: time.Hour},
		Gamification: config.GamificationConfig{
			XPTransactionCreated: 10,
			XPCouplePaired:       50,
			XPAccountCreated:     20,
		},
	}
}

// setAuth 模拟 JWTAuth 中间件写入的上下文
func setAuth(userID uint) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userID", userID)
		c.Next()
	}
}

// setTenant 模拟 TenantContext 中间件写入的上下文
func setTenant(coupleID uint) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("coupleID", coupleID)
		c.Next()
	}
}

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}
