package api

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGameHandler_GetProfile(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	// 找不到就建：先 upsert 再读
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `user_game_profiles`").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()
	mock.ExpectQuery("SELECT .* FROM `user_game_profiles`").
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "current_xp", "total_xp", "level"}).
			AddRow(1, 7, 50, 150, 2))

	router := newTestRouter()
	h := NewGameHandler()
	router.GET("/game/profile", setAuth(7), h.GetProfile)

	req := httptest.NewRequest("GET", "/game/profile", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp struct {
		Code int `json:"code"`
		Data struct {
			Level          int     `json:"level"`
			CurrentXP      int64   `json:"current_xp"`
			TotalXP        int64   `json:"total_xp"`
			XPForNextLevel int64   `json:"xp_for_next_level"`
			Progress       float64 `json:"progress"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Data.Level)
	assert.Equal(t, int64(50), resp.Data.CurrentXP)
	assert.Equal(t, int64(150), resp.Data.TotalXP)
	// 2 级升 3 级需要 200 经验
	assert.Equal(t, int64(200), resp.Data.XPForNextLevel)
	assert.InDelta(t, 25.0, resp.Data.Progress, 0.001)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGameHandler_ListXPEvents(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `xp_events`").
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "amount", "reason"}).
			AddRow(2, 7, 10, "transaction.created").
			AddRow(1, 7, 50, "couple.paired"))

	router := newTestRouter()
	h := NewGameHandler()
	router.GET("/game/xp-events", setAuth(7), h.ListXPEvents)

	req := httptest.NewRequest("GET", "/game/xp-events?limit=10", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	assert.Contains(t, w.Body.String(), "transaction.created")
	assert.Contains(t, w.Body.String(), "couple.paired")
}
