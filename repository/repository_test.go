package repository

import (
	"testing"
	"time"

	"couplefin/apperr"
	"couplefin/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, func()) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock, func() { sqlDB.Close() }
}

func accountRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "couple_id", "owner_id", "name", "type", "balance", "created_at", "updated_at", "deleted_at"})
}

func TestAccountRepository_FindByID_ScopesByCouple(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()

	// couple_id 必须作为查询参数出现
	mock.ExpectQuery("SELECT .* FROM `accounts` WHERE couple_id = \\? AND id = \\?").
		WithArgs(7, 3).
		WillReturnRows(accountRows().AddRow(3, 7, nil, "共同账户", "CHECKING", []byte("100.00"), time.Now(), time.Now(), nil))

	repo := NewAccountRepository(db)
	acc, err := repo.FindByID(7, 3)
	require.NoError(t, err)
	assert.Equal(t, uint(7), acc.CoupleID)
	assert.Equal(t, models.Money(10000), acc.Balance)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepository_FindByID_CrossTenantIsNotFound(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()

	// 记录属于 couple 1，但请求方是 couple 2：空结果 -> NOT_FOUND
	mock.ExpectQuery("SELECT .* FROM `accounts`").
		WithArgs(2, 3).
		WillReturnRows(accountRows())

	repo := NewAccountRepository(db)
	_, err := repo.FindByID(2, 3)
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, apperr.CodeNotFound))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepository_TotalBalance(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT COALESCE\\(SUM\\(balance\\), 0\\) FROM `accounts`").
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow([]byte("1234.56")))

	repo := NewAccountRepository(db)
	total, err := repo.TotalBalance(7)
	require.NoError(t, err)
	assert.Equal(t, models.Money(123456), total)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryRepository_Delete_CrossTenantIsNotFound(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()

	// 软删除是 UPDATE；0 行受影响 -> NOT_FOUND
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `categories` SET `deleted_at`").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	repo := NewCategoryRepository(db)
	err := repo.Delete(2, 10)
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, apperr.CodeNotFound))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGameRepository_FindOrCreateProfile(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()

	// upsert: 冲突时不写入
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `user_game_profiles`").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()
	// 再读取
	mock.ExpectQuery("SELECT .* FROM `user_game_profiles`").
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "current_xp", "total_xp", "level", "created_at", "updated_at", "deleted_at"}).
			AddRow(1, 5, 50, 150, 2, time.Now(), time.Now(), nil))

	repo := NewGameRepository(db)
	profile, err := repo.FindOrCreateProfile(5)
	require.NoError(t, err)
	assert.Equal(t, 2, profile.Level)
	assert.Equal(t, int64(50), profile.CurrentXP)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSubscriptionRepository_Upsert(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `subscriptions` .*ON DUPLICATE KEY UPDATE").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	repo := NewSubscriptionRepository(db)
	err := repo.Upsert(&models.Subscription{CoupleID: 7, PlanID: 2, Status: models.SubscriptionStatusActive})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCoupleRepository_ListDueForReset_FiltersByDay(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()

	// 只命中重置日等于当天的情侣
	mock.ExpectQuery("SELECT .* FROM `couples` WHERE allowance_reset_day = \\?").
		WithArgs(15).
		WillReturnRows(sqlmock.NewRows([]string{"id", "allowance_reset_day"}).
			AddRow(3, 15))

	repo := NewCoupleRepository(db)
	couples, err := repo.ListDueForReset(time.Date(2026, 3, 15, 8, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, couples, 1)
	assert.Equal(t, uint(3), couples[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCoupleRepository_ListDueForReset_MonthEndClamp(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()

	// 2 月 28 日为当月最后一天，重置日 29/30/31 也在这天到期
	mock.ExpectQuery("SELECT .* FROM `couples` WHERE allowance_reset_day >= \\?").
		WithArgs(28).
		WillReturnRows(sqlmock.NewRows([]string{"id", "allowance_reset_day"}).
			AddRow(3, 28).
			AddRow(4, 31))

	repo := NewCoupleRepository(db)
	couples, err := repo.ListDueForReset(time.Date(2026, 2, 28, 8, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Len(t, couples, 2)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepository_ListGroupMembers_ThisOnly(t *testing.T) {
	db, _, cleanup := setupMockDB(t)
	defer cleanup()

	repo := NewTransactionRepository(db)
	pivot := &models.Transaction{ID: 9, CoupleID: 7}
	members, err := repo.ListGroupMembers(7, pivot, models.ScopeThisOnly)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, uint(9), members[0].ID)
}

func TestTransactionRepository_ListGroupMembers_All(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()

	groupID := uint(4)
	mock.ExpectQuery("SELECT .* FROM `transactions` WHERE couple_id = \\? AND group_id = \\?").
		WithArgs(7, 4).
		WillReturnRows(sqlmock.NewRows([]string{"id", "couple_id", "group_id", "installment_no", "settled"}).
			AddRow(1, 7, 4, 1, true).
			AddRow(2, 7, 4, 2, false).
			AddRow(3, 7, 4, 3, false))

	repo := NewTransactionRepository(db)
	pivot := &models.Transaction{ID: 2, CoupleID: 7, GroupID: &groupID, InstallmentNo: 2}
	members, err := repo.ListGroupMembers(7, pivot, models.ScopeAll)
	require.NoError(t, err)
	// ALL 包含已结清的第 1 期
	assert.Len(t, members, 3)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAtomic(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `xp_events`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := Atomic(db, func(tx *gorm.DB) error {
		return NewGameRepository(tx).CreateEvent(&models.XPEvent{UserID: 1, Amount: 10, Reason: "transaction.created"})
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
