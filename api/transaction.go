package api

import (
	"strconv"
	"time"

	"couplefin/apperr"
	"couplefin/config"
	"couplefin/database"
	"couplefin/middleware"
	"couplefin/models"
	"couplefin/repository"
	"couplefin/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// TransactionHandler 交易处理器
type TransactionHandler struct {
	cfg *config.Config
}

// NewTransactionHandler 创建交易处理器
func NewTransactionHandler(cfg *config.Config) *TransactionHandler {
	return &TransactionHandler{cfg: cfg}
}

// GroupRequest 周期/分期参数
type GroupRequest struct {
	Kind string `json:"kind" binding:"required,oneof=RECURRING INSTALLMENT" example:"INSTALLMENT"`
	// 期数。INSTALLMENT 为分期总期数，RECURRING 为预先生成的期数
	Count int `json:"count" binding:"required,min=2,max=60" example:"12"`
}

// CreateTransactionRequest 创建交易请求
type CreateTransactionRequest struct {
	AccountID   uint   `json:"account_id" binding:"required" example:"1"`
	CategoryID  uint   `json:"category_id" binding:"required" example:"3"`
	Type        string `json:"type" binding:"required,oneof=INCOME EXPENSE" example:"EXPENSE"`
	Amount      string `json:"amount" binding:"required" example:"58.50"` // 每期金额，最多两位小数
	Description string `json:"description" binding:"omitempty,max=255" example:"晚餐"`
	OccurredAt  string `json:"occurred_at" binding:"omitempty" example:"2025-06-01T19:30:00+08:00"`
	// 自由支出：从记账人的自由支配额度中扣减
	FreeSpending bool          `json:"free_spending" example:"false"`
	Group        *GroupRequest `json:"group"` // 省略表示普通单笔交易
}

// UpdateTransactionRequest 更新交易请求
type UpdateTransactionRequest struct {
	CategoryID  uint   `json:"category_id" binding:"omitempty" example:"5"`
	Amount      string `json:"amount" binding:"omitempty" example:"68.00"`
	Description string `json:"description" binding:"omitempty,max=255"`
}

// Create 创建交易
// @Summary 创建交易
// @Description 记一笔收入或支出。带 group 参数时按月展开为周期/分期组，首期立即入账，
// @Description 后续各期待结清。自由支出在同一数据库事务内扣减记账人的剩余额度。
// @Tags 交易
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateTransactionRequest true "交易信息"
// @Success 200 {object} Response{data=models.Transaction} "创建成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 404 {object} Response "账户或分类不存在"
// @Failure 422 {object} Response "超出套餐限额或额度不足"
// @Router /api/v1/transactions [post]
func (h *TransactionHandler) Create(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	coupleID := middleware.GetCurrentCoupleID(c)
	if coupleID == 0 {
		FromError(c, apperr.TenantContextMissing())
		return
	}

	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	amount, err := models.ParseMoney(req.Amount)
	if err != nil {
		FromError(c, apperr.Validation(err.Error()))
		return
	}

	occurredAt := time.Now()
	if req.OccurredAt != "" {
		occurredAt, err = time.Parse(time.RFC3339, req.OccurredAt)
		if err != nil {
			BadRequest(c, "时间格式须为 RFC3339")
			return
		}
	}

	// 套餐的每月交易数量限额
	plan, err := currentPlan(database.DB, coupleID)
	if err != nil {
		FromError(c, err)
		return
	}
	count, err := repository.NewTransactionRepository(database.DB).CountInMonth(coupleID, occurredAt)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询交易失败"))
		return
	}
	if !plan.AllowsTransactions(count) {
		FromError(c, apperr.LimitExceeded("当月交易数量已达套餐上限，请升级套餐"))
		return
	}

	var first *models.Transaction
	err = repository.Atomic(database.DB, func(tx *gorm.DB) error {
		accountRepo := repository.NewAccountRepository(tx)
		account, err := accountRepo.FindByID(coupleID, req.AccountID)
		if err != nil {
			return err
		}
		category, err := repository.NewCategoryRepository(tx).FindByID(coupleID, req.CategoryID)
		if err != nil {
			return err
		}
		if !category.IsApplicableToTransactionType(req.Type) {
			return apperr.Validation("分类不适用于该交易类型")
		}

		txRepo := repository.NewTransactionRepository(tx)

		// 周期/分期展开为组，首期即时入账，后续各期待结清
		occurrences := 1
		var groupID *uint
		if req.Group != nil {
			group := &models.TransactionGroup{
				CoupleID: coupleID,
				Kind:     req.Group.Kind,
			}
			if req.Group.Kind == models.GroupKindInstallment {
				group.TotalInstallments = req.Group.Count
			}
			if err := txRepo.CreateGroup(group); err != nil {
				return err
			}
			groupID = &group.ID
			occurrences = req.Group.Count
		}

		txs := make([]models.Transaction, 0, occurrences)
		for i := 0; i < occurrences; i++ {
			t, err := models.NewTransaction(coupleID, req.AccountID, req.CategoryID, userID,
				req.Type, amount, req.Description, occurredAt.AddDate(0, i, 0))
			if err != nil {
				return apperr.Validation(err.Error())
			}
			t.FreeSpending = req.FreeSpending
			if groupID != nil {
				t.GroupID = groupID
				t.InstallmentNo = i + 1
			}
			t.Settled = i == 0
			txs = append(txs, *t)
		}

		// 首期入账
		account.Post(req.Type, amount)
		if err := accountRepo.Save(account); err != nil {
			return err
		}

		// 自由支出扣额度，行锁避免并发扣减丢失
		if req.FreeSpending && req.Type == models.TransactionTypeExpense {
			coupleRepo := repository.NewCoupleRepository(tx)
			couple, err := coupleRepo.FindByIDForUpdate(coupleID)
			if err != nil {
				return err
			}
			if err := couple.SpendFree(userID, amount); err != nil {
				return apperr.Business(apperr.CodeAllowanceExceeded, 0, err.Error())
			}
			if err := coupleRepo.Save(couple); err != nil {
				return err
			}
		}

		if err := txRepo.CreateBatch(txs); err != nil {
			return err
		}
		first = &txs[0]

		_, err = service.AwardXP(tx, userID, h.cfg.Gamification.XPTransactionCreated, "transaction.created")
		return err
	})
	if err != nil {
		FromError(c, err)
		return
	}

	SuccessWithMessage(c, "记账成功", first)
}

// List 获取交易列表
// @Summary 获取交易列表
// @Description 分页，支持按类型、分类、账户和时间范围过滤
// @Tags 交易
// @Produce json
// @Security BearerAuth
// @Param type query string false "交易类型 INCOME/EXPENSE"
// @Param category_id query int false "分类ID"
// @Param account_id query int false "账户ID"
// @Param start query string false "开始时间 RFC3339"
// @Param end query string false "结束时间 RFC3339"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(20)
// @Success 200 {object} Response{data=PageResponse} "获取成功"
// @Router /api/v1/transactions [get]
func (h *TransactionHandler) List(c *gin.Context) {
	coupleID := middleware.GetCurrentCoupleID(c)
	if coupleID == 0 {
		FromError(c, apperr.TenantContextMissing())
		return
	}

	f := repository.ListFilter{
		Type:     c.Query("type"),
		Page:     1,
		PageSize: 20,
	}
	if v := c.Query("category_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			BadRequest(c, "无效的分类ID")
			return
		}
		f.CategoryID = uint(id)
	}
	if v := c.Query("account_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			BadRequest(c, "无效的账户ID")
			return
		}
		f.AccountID = uint(id)
	}
	if v := c.Query("start"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			BadRequest(c, "时间格式须为 RFC3339")
			return
		}
		f.StartTime = t
	}
	if v := c.Query("end"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			BadRequest(c, "时间格式须为 RFC3339")
			return
		}
		f.EndTime = t
	}
	if v := c.Query("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			f.Page = n
		}
	}
	if v := c.Query("page_size"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			f.PageSize = n
		}
	}

	txs, total, err := repository.NewTransactionRepository(database.DB).List(coupleID, f)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询交易失败"))
		return
	}
	Success(c, PageResponse{
		Total:    total,
		Page:     f.Page,
		PageSize: f.PageSize,
		List:     txs,
	})
}

// Get 获取交易详情
// @Summary 获取交易详情
// @Tags 交易
// @Produce json
// @Security BearerAuth
// @Param id path int true "交易ID"
// @Success 200 {object} Response{data=models.Transaction} "获取成功"
// @Failure 404 {object} Response "交易不存在"
// @Router /api/v1/transactions/{id} [get]
func (h *TransactionHandler) Get(c *gin.Context) {
	coupleID := middleware.GetCurrentCoupleID(c)
	if coupleID == 0 {
		FromError(c, apperr.TenantContextMissing())
		return
	}

	id64, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	tx, err := repository.NewTransactionRepository(database.DB).FindByID(coupleID, uint(id64))
	if err != nil {
		FromError(c, err)
		return
	}
	Success(c, tx)
}

// Settle 结清一笔待结清交易
// @Summary 结清交易
// @Description 把周期/分期组内的待结清一期入账：调整账户余额，自由支出同时
// @Description 扣减记账人的剩余额度，与状态翻转在同一数据库事务内提交。
// @Tags 交易
// @Produce json
// @Security BearerAuth
// @Param id path int true "交易ID"
// @Success 200 {object} Response{data=models.Transaction} "结清成功"
// @Failure 400 {object} Response "交易已结清"
// @Failure 404 {object} Response "交易不存在"
// @Failure 422 {object} Response "额度不足"
// @Router /api/v1/transactions/{id}/settle [post]
func (h *TransactionHandler) Settle(c *gin.Context) {
	coupleID := middleware.GetCurrentCoupleID(c)
	if coupleID == 0 {
		FromError(c, apperr.TenantContextMissing())
		return
	}

	id64, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var settled *models.Transaction
	err = repository.Atomic(database.DB, func(tx *gorm.DB) error {
		txRepo := repository.NewTransactionRepository(tx)
		t, err := txRepo.FindByID(coupleID, uint(id64))
		if err != nil {
			return err
		}
		if t.Settled {
			return apperr.Validation("交易已结清，不能重复结清")
		}

		accountRepo := repository.NewAccountRepository(tx)
		account, err := accountRepo.FindByID(coupleID, t.AccountID)
		if err != nil {
			return err
		}
		account.Post(t.Type, t.Amount)
		if err := accountRepo.Save(account); err != nil {
			return err
		}

		if t.FreeSpending && t.Type == models.TransactionTypeExpense {
			coupleRepo := repository.NewCoupleRepository(tx)
			couple, err := coupleRepo.FindByIDForUpdate(coupleID)
			if err != nil {
				return err
			}
			if err := couple.SpendFree(t.UserID, t.Amount); err != nil {
				return apperr.Business(apperr.CodeAllowanceExceeded, 0, err.Error())
			}
			if err := coupleRepo.Save(couple); err != nil {
				return err
			}
		}

		t.Settled = true
		if err := txRepo.Save(t); err != nil {
			return err
		}
		settled = t
		return nil
	})
	if err != nil {
		FromError(c, err)
		return
	}

	SuccessWithMessage(c, "结清成功", settled)
}

// Update 更新交易
// @Summary 更新交易
// @Description scope 控制周期/分期组内的波及范围：THIS_ONLY 仅本笔，THIS_AND_FUTURE 本笔及
// @Description 未来各期，ALL 组内全部（已结清的历史各期也会改写，余额随之重算）
// @Tags 交易
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "交易ID"
// @Param scope query string false "作用域 THIS_ONLY/THIS_AND_FUTURE/ALL" default(THIS_ONLY)
// @Param request body UpdateTransactionRequest true "更新的交易信息"
// @Success 200 {object} Response{data=models.Transaction} "更新成功"
// @Failure 404 {object} Response "交易不存在"
// @Router /api/v1/transactions/{id} [put]
func (h *TransactionHandler) Update(c *gin.Context) {
	coupleID := middleware.GetCurrentCoupleID(c)
	if coupleID == 0 {
		FromError(c, apperr.TenantContextMissing())
		return
	}

	id64, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	scope := c.DefaultQuery("scope", models.ScopeThisOnly)
	if !models.IsValidUpdateScope(scope) {
		BadRequest(c, "无效的作用域")
		return
	}

	var req UpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	var newAmount models.Money
	if req.Amount != "" {
		newAmount, err = models.ParseMoney(req.Amount)
		if err != nil {
			FromError(c, apperr.Validation(err.Error()))
			return
		}
		if newAmount <= 0 {
			FromError(c, apperr.Validation("交易金额必须大于 0"))
			return
		}
	}

	var pivot *models.Transaction
	err = repository.Atomic(database.DB, func(tx *gorm.DB) error {
		txRepo := repository.NewTransactionRepository(tx)
		p, err := txRepo.FindByID(coupleID, uint(id64))
		if err != nil {
			return err
		}

		if req.CategoryID != 0 {
			category, err := repository.NewCategoryRepository(tx).FindByID(coupleID, req.CategoryID)
			if err != nil {
				return err
			}
			if !category.IsApplicableToTransactionType(p.Type) {
				return apperr.Validation("分类不适用于该交易类型")
			}
		}

		members, err := txRepo.ListGroupMembers(coupleID, p, scope)
		if err != nil {
			return err
		}

		accountRepo := repository.NewAccountRepository(tx)
		coupleRepo := repository.NewCoupleRepository(tx)
		for i := range members {
			m := &members[i]

			// 已结清各期的金额变更要冲销重记，余额保持一致
			if req.Amount != "" && newAmount != m.Amount {
				if m.Settled {
					account, err := accountRepo.FindByID(coupleID, m.AccountID)
					if err != nil {
						return err
					}
					account.Unpost(m.Type, m.Amount)
					account.Post(m.Type, newAmount)
					if err := accountRepo.Save(account); err != nil {
						return err
					}
					if m.FreeSpending && m.Type == models.TransactionTypeExpense {
						couple, err := coupleRepo.FindByIDForUpdate(coupleID)
						if err != nil {
							return err
						}
						couple.RestoreFree(m.UserID, m.Amount)
						if err := couple.SpendFree(m.UserID, newAmount); err != nil {
							return apperr.Business(apperr.CodeAllowanceExceeded, 0, err.Error())
						}
						if err := coupleRepo.Save(couple); err != nil {
							return err
						}
					}
				}
				m.Amount = newAmount
			}
			if req.CategoryID != 0 {
				m.CategoryID = req.CategoryID
			}
			if req.Description != "" {
				m.Description = req.Description
			}
			if err := txRepo.Save(m); err != nil {
				return err
			}
			if m.ID == p.ID {
				pivot = m
			}
		}
		return nil
	})
	if err != nil {
		FromError(c, err)
		return
	}

	SuccessWithMessage(c, "更新成功", pivot)
}

// Delete 删除交易
// @Summary 删除交易
// @Description scope 语义同更新。已结清各期删除时冲销账户余额并回补自由支配额度。
// @Tags 交易
// @Produce json
// @Security BearerAuth
// @Param id path int true "交易ID"
// @Param scope query string false "作用域 THIS_ONLY/THIS_AND_FUTURE/ALL" default(THIS_ONLY)
// @Success 200 {object} Response "删除成功"
// @Failure 404 {object} Response "交易不存在"
// @Router /api/v1/transactions/{id} [delete]
func (h *TransactionHandler) Delete(c *gin.Context) {
	coupleID := middleware.GetCurrentCoupleID(c)
	if coupleID == 0 {
		FromError(c, apperr.TenantContextMissing())
		return
	}

	id64, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	scope := c.DefaultQuery("scope", models.ScopeThisOnly)
	if !models.IsValidUpdateScope(scope) {
		BadRequest(c, "无效的作用域")
		return
	}

	err = repository.Atomic(database.DB, func(tx *gorm.DB) error {
		txRepo := repository.NewTransactionRepository(tx)
		pivot, err := txRepo.FindByID(coupleID, uint(id64))
		if err != nil {
			return err
		}

		members, err := txRepo.ListGroupMembers(coupleID, pivot, scope)
		if err != nil {
			return err
		}

		accountRepo := repository.NewAccountRepository(tx)
		coupleRepo := repository.NewCoupleRepository(tx)
		for i := range members {
			m := &members[i]
			if m.Settled {
				account, err := accountRepo.FindByID(coupleID, m.AccountID)
				if err != nil {
					return err
				}
				account.Unpost(m.Type, m.Amount)
				if err := accountRepo.Save(account); err != nil {
					return err
				}
				if m.FreeSpending && m.Type == models.TransactionTypeExpense {
					couple, err := coupleRepo.FindByIDForUpdate(coupleID)
					if err != nil {
						return err
					}
					couple.RestoreFree(m.UserID, m.Amount)
					if err := coupleRepo.Save(couple); err != nil {
						return err
					}
				}
			}
			if err := txRepo.Delete(coupleID, m.ID); err != nil {
				return err
			}
		}

		// ALL 作用域清空整组后连组一起删
		if scope == models.ScopeAll && pivot.GroupID != nil {
			if err := txRepo.DeleteGroup(coupleID, *pivot.GroupID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		FromError(c, err)
		return
	}

	SuccessWithMessage(c, "删除成功", nil)
}
