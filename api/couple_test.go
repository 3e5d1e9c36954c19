package api

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func TestCoupleHandler_Create_AlreadyPaired(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `users`").
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "name", "couple_id"}).
			AddRow(7, "u@example.com", "阿宝", 3))

	router := newTestRouter()
	h := NewCoupleHandler(testConfig())
	router.POST("/couple", setAuth(7), h.Create)

	w := postJSON(router, "/couple", `{"financial_model":"TRANSPARENT"}`)
	assert.Equal(t, 422, w.Code)
	assert.Contains(t, w.Body.String(), "ALREADY_PAIRED")
}

func TestCoupleHandler_Accept_ExpiredInvite(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `users`").
		WithArgs(8).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "name", "couple_id"}).
			AddRow(8, "p@example.com", "小美", nil))

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .* FROM `couple_invites`").
		WithArgs("deadbeef").
		WillReturnRows(sqlmock.NewRows([]string{"id", "couple_id", "inviter_id", "email", "token", "expires_at", "used"}).
			AddRow(1, 3, 7, "p@example.com", "deadbeef", time.Now().Add(-time.Hour), false))
	mock.ExpectRollback()

	router := newTestRouter()
	h := NewCoupleHandler(testConfig())
	router.POST("/couple/accept", setAuth(8), h.Accept)

	w := postJSON(router, "/couple/accept", `{"token":"deadbeef"}`)
	assert.Equal(t, 422, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_INVITE")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func coupleAllowanceRows(resetDay int) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "financial_model", "partner_one_id", "partner_two_id",
		"partner_one_monthly", "partner_one_remaining", "partner_two_monthly", "partner_two_remaining", "allowance_reset_day"}).
		AddRow(3, "TRANSPARENT", 7, 8, "500.00", "120.00", "500.00", "80.00", resetDay)
}

func TestCoupleHandler_ResetAllowances_NotDueDay(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	// 选一个肯定不是今天的重置日
	resetDay := time.Now().Day() - 1
	if resetDay < 1 {
		resetDay = 2
	}

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .* FROM `couples` .*FOR UPDATE").
		WithArgs(3).
		WillReturnRows(coupleAllowanceRows(resetDay))
	mock.ExpectRollback()

	router := newTestRouter()
	h := NewCoupleHandler(testConfig())
	router.POST("/couple/allowances/reset", setAuth(7), setTenant(3), h.ResetAllowances)

	w := postJSON(router, "/couple/allowances/reset", "")
	assert.Equal(t, 400, w.Code)
	assert.Contains(t, w.Body.String(), "不是额度重置日")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCoupleHandler_ResetAllowances_Forced(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	resetDay := time.Now().Day() - 1
	if resetDay < 1 {
		resetDay = 2
	}

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .* FROM `couples` .*FOR UPDATE").
		WithArgs(3).
		WillReturnRows(coupleAllowanceRows(resetDay))
	mock.ExpectExec("UPDATE `couples`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	router := newTestRouter()
	h := NewCoupleHandler(testConfig())
	router.POST("/couple/allowances/reset", setAuth(7), setTenant(3), h.ResetAllowances)

	// force 跳过重置日检查，剩余额度拉回每月额度
	w := postJSON(router, "/couple/allowances/reset?force=true", "")
	assert.Equal(t, 200, w.Code)
	assert.Contains(t, w.Body.String(), "\"partner_one_remaining\":500.00")
	assert.Contains(t, w.Body.String(), "\"partner_two_remaining\":500.00")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCoupleHandler_UpdateAllowance(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectBegin()
	// SELECT ... FOR UPDATE 行锁
	mock.ExpectQuery("SELECT .* FROM `couples` .*FOR UPDATE").
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"id", "financial_model", "partner_one_id", "partner_two_id",
			"partner_one_monthly", "partner_one_remaining", "partner_two_monthly", "partner_two_remaining", "allowance_reset_day"}).
			AddRow(3, "TRANSPARENT", 7, 8, "500.00", "500.00", "0.00", "0.00", 1))
	mock.ExpectExec("UPDATE `couples`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	router := newTestRouter()
	h := NewCoupleHandler(testConfig())
	router.PUT("/couple/allowances", setAuth(7), setTenant(3), h.UpdateAllowance)

	req := `{"monthly":300}`
	w := putJSON(router, "/couple/allowances", req)
	assert.Equal(t, 200, w.Code)
	// 每月额度下调后剩余额度同步封顶
	assert.Contains(t, w.Body.String(), "\"partner_one_monthly\":300.00")
	assert.Contains(t, w.Body.String(), "\"partner_one_remaining\":300.00")
	assert.NoError(t, mock.ExpectationsWereMet())
}
