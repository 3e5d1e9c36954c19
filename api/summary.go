package api

import (
	"time"

	"couplefin/apperr"
	"couplefin/database"
	"couplefin/middleware"
	"couplefin/models"
	"couplefin/repository"

	"github.com/gin-gonic/gin"
)

// SummaryHandler 统计处理器
type SummaryHandler struct{}

// NewSummaryHandler 创建统计处理器
func NewSummaryHandler() *SummaryHandler {
	return &SummaryHandler{}
}

// Summary 收支汇总
// @Summary 收支汇总
// @Description 指定时间范围内的收入、支出合计与结余。省略范围表示全部。
// @Tags 统计
// @Produce json
// @Security BearerAuth
// @Param start query string false "开始日期 2006-01-02"
// @Param end query string false "结束日期 2006-01-02"
// @Success 200 {object} Response "获取成功"
// @Router /api/v1/statistics/summary [get]
func (h *SummaryHandler) Summary(c *gin.Context) {
	coupleID := middleware.GetCurrentCoupleID(c)
	if coupleID == 0 {
		FromError(c, apperr.TenantContextMissing())
		return
	}

	var start, end time.Time
	var err error
	if v := c.Query("start"); v != "" {
		start, err = time.ParseInLocation("2006-01-02", v, time.Local)
		if err != nil {
			BadRequest(c, "开始时间格式错误")
			return
		}
	}
	if v := c.Query("end"); v != "" {
		end, err = time.ParseInLocation("2006-01-02", v, time.Local)
		if err != nil {
			BadRequest(c, "结束时间格式错误")
			return
		}
		end = end.Add(24*time.Hour - time.Second)
	}

	txRepo := repository.NewTransactionRepository(database.DB)
	income, err := txRepo.SumByType(coupleID, models.TransactionTypeIncome, start, end)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "统计失败"))
		return
	}
	expense, err := txRepo.SumByType(coupleID, models.TransactionTypeExpense, start, end)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "统计失败"))
		return
	}

	Success(c, gin.H{
		"income":  income,
		"expense": expense,
		"net":     income - expense,
	})
}
