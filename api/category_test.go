package api

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func subscriptionRows(planID uint) *sqlmock.Rows {
	end := time.Now().AddDate(0, 1, 0)
	return sqlmock.NewRows([]string{"id", "couple_id", "plan_id", "status", "current_period_end"}).
		AddRow(1, 3, planID, "ACTIVE", end)
}

func planRows(id uint, code string, maxAccounts, maxCategories, maxTxPerMonth int) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "code", "name", "monthly_price", "max_accounts", "max_categories", "max_transactions_per_month"}).
		AddRow(id, code, code, "0.00", maxAccounts, maxCategories, maxTxPerMonth)
}

// expectCurrentPlan 预置套餐查询：订阅 + Preload 的套餐
func expectCurrentPlan(mock sqlmock.Sqlmock, planID uint, maxAccounts, maxCategories, maxTxPerMonth int) {
	mock.ExpectQuery("SELECT .* FROM `subscriptions`").
		WithArgs(3).
		WillReturnRows(subscriptionRows(planID))
	mock.ExpectQuery("SELECT .* FROM `plans`").
		WithArgs(planID).
		WillReturnRows(planRows(planID, "FREE", maxAccounts, maxCategories, maxTxPerMonth))
}

func TestCategoryHandler_Create_PlanLimitExceeded(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	// FREE 套餐上限 15，当前已有 15 个分类
	expectCurrentPlan(mock, 1, 3, 15, 200)
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `categories`").
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(15))

	router := newTestRouter()
	h := NewCategoryHandler()
	router.POST("/categories", setTenant(3), h.Create)

	w := postJSON(router, "/categories", `{"name":"旅行","type":"EXPENSE"}`)
	assert.Equal(t, 422, w.Code)
	assert.Contains(t, w.Body.String(), "LIMIT_EXCEEDED")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryHandler_Create_NoSubscription(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	// 无订阅记录时按业务错误拒绝，而不是 404
	mock.ExpectQuery("SELECT .* FROM `subscriptions`").
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	router := newTestRouter()
	h := NewCategoryHandler()
	router.POST("/categories", setTenant(3), h.Create)

	w := postJSON(router, "/categories", `{"name":"旅行"}`)
	assert.Equal(t, 422, w.Code)
	assert.Contains(t, w.Body.String(), "INACTIVE_SUBSCRIPTION")
}

func TestCategoryHandler_Delete_DefaultCategory(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `categories`").
		WithArgs(3, 5).
		WillReturnRows(sqlmock.NewRows([]string{"id", "couple_id", "name", "icon", "color", "is_default"}).
			AddRow(5, 3, "餐饮", "Utensils", "#f97316", true))

	router := newTestRouter()
	h := NewCategoryHandler()
	router.DELETE("/categories/:id", setTenant(3), h.Delete)

	req := httptest.NewRequest("DELETE", "/categories/5", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 422, w.Code)
	assert.Contains(t, w.Body.String(), "DEFAULT_CATEGORY")
}

func TestCategoryHandler_Delete_CrossTenantIsNotFound(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	// 他人租户的分类查不到，返回 404 而非权限错误
	mock.ExpectQuery("SELECT .* FROM `categories`").
		WithArgs(3, 99).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	router := newTestRouter()
	h := NewCategoryHandler()
	router.DELETE("/categories/:id", setTenant(3), h.Delete)

	req := httptest.NewRequest("DELETE", "/categories/99", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 404, w.Code)
	assert.Contains(t, w.Body.String(), "NOT_FOUND")
}

func TestCategoryHandler_List_InvalidType(t *testing.T) {
	_, cleanup := setupMockDB(t)
	defer cleanup()

	router := newTestRouter()
	h := NewCategoryHandler()
	router.GET("/categories", setTenant(3), h.List)

	req := httptest.NewRequest("GET", "/categories?type=TRANSFER", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
}
