package api

import (
	"strconv"

	"couplefin/database"
	"couplefin/middleware"
	"couplefin/repository"

	"github.com/gin-gonic/gin"
)

// GameHandler 游戏化处理器
type GameHandler struct{}

// NewGameHandler 创建游戏化处理器
func NewGameHandler() *GameHandler {
	return &GameHandler{}
}

// GetProfile 获取游戏档案
// @Summary 获取游戏档案
// @Description 首次访问自动创建 1 级档案。升级所需经验与进度为派生值，不落库。
// @Tags 游戏化
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=models.XPResult} "获取成功"
// @Router /api/v1/game/profile [get]
func (h *GameHandler) GetProfile(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	profile, err := repository.NewGameRepository(database.DB).FindOrCreateProfile(userID)
	if err != nil {
		FromError(c, err)
		return
	}
	Success(c, profile.Snapshot())
}

// ListXPEvents 获取经验记录
// @Summary 获取经验记录
// @Description 按时间倒序返回最近的经验奖励记录
// @Tags 游戏化
// @Produce json
// @Security BearerAuth
// @Param limit query int false "数量上限" default(50)
// @Success 200 {object} Response{data=[]models.XPEvent} "获取成功"
// @Router /api/v1/game/xp-events [get]
func (h *GameHandler) ListXPEvents(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	limit := 50
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}

	events, err := repository.NewGameRepository(database.DB).ListEvents(userID, limit)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询经验记录失败"))
		return
	}
	Success(c, events)
}
