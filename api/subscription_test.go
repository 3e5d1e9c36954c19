package api

import (
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func TestSubscriptionHandler_ListPlans(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `plans`").
		WillReturnRows(planRows(1, "FREE", 3, 15, 200).
			AddRow(2, "PREMIUM", "PREMIUM", "19.00", 0, 0, 0))

	router := newTestRouter()
	h := NewSubscriptionHandler(testConfig())
	router.GET("/plans", setTenant(3), h.ListPlans)

	req := httptest.NewRequest("GET", "/plans", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	assert.Contains(t, w.Body.String(), "FREE")
	assert.Contains(t, w.Body.String(), "PREMIUM")
}

func TestSubscriptionHandler_Get_NoSubscription(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `subscriptions`").
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	router := newTestRouter()
	h := NewSubscriptionHandler(testConfig())
	router.GET("/subscription", setTenant(3), h.Get)

	req := httptest.NewRequest("GET", "/subscription", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 404, w.Code)
	assert.Contains(t, w.Body.String(), "NOT_FOUND")
}

func TestSubscriptionHandler_Subscribe_FreePlan(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `plans`").
		WithArgs("FREE").
		WillReturnRows(planRows(1, "FREE", 3, 15, 200))

	// couple_id 唯一索引上的 upsert
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `subscriptions`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	mock.ExpectQuery("SELECT .* FROM `subscriptions`").
		WithArgs(3).
		WillReturnRows(subscriptionRows(1))
	mock.ExpectQuery("SELECT .* FROM `plans`").
		WithArgs(1).
		WillReturnRows(planRows(1, "FREE", 3, 15, 200))

	router := newTestRouter()
	h := NewSubscriptionHandler(testConfig())
	router.POST("/subscription", setAuth(7), setTenant(3), h.Subscribe)

	w := postJSON(router, "/subscription", `{"plan_code":"FREE"}`)
	assert.Equal(t, 200, w.Code)
	assert.Contains(t, w.Body.String(), "订阅成功")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubscriptionHandler_Cancel(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `subscriptions`").
		WithArgs(3).
		WillReturnRows(subscriptionRows(1))
	mock.ExpectQuery("SELECT .* FROM `plans`").
		WithArgs(1).
		WillReturnRows(planRows(1, "FREE", 3, 15, 200))

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `subscriptions`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	router := newTestRouter()
	h := NewSubscriptionHandler(testConfig())
	router.POST("/subscription/cancel", setTenant(3), h.Cancel)

	w := postJSON(router, "/subscription/cancel", "")
	assert.Equal(t, 200, w.Code)
	assert.Contains(t, w.Body.String(), "CANCELED")
}
