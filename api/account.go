package api

import (
	"strconv"

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

// AccountHandler 账户处理器
type AccountHandler struct {
	cfg *config.Config
}

// NewAccountHandler 创建账户处理器
func NewAccountHandler(cfg *config.Config) *AccountHandler {
	return &AccountHandler{cfg: cfg}
}

// CreateAccountRequest 创建账户请求
type CreateAccountRequest struct {
	Name  string `json:"name" binding:"required,min=1,max=50" example:"共同账户"`
	Type  string `json:"type" binding:"required,oneof=CHECKING SAVINGS CASH CREDIT_CARD INVESTMENT" example:"CHECKING"`
	Joint bool   `json:"joint" example:"true"` // 共同账户，无单一归属人
}

// UpdateAccountRequest 更新账户请求
type UpdateAccountRequest struct {
	Name string `json:"name" binding:"omitempty,min=1,max=50"`
}

// Create 创建账户
// @Summary 创建账户
// @Description 为当前情侣创建账户。受套餐的账户数量限额约束。
// @Tags 账户
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateAccountRequest true "账户信息"
// @Success 200 {object} Response{data=models.Account} "创建成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 422 {object} Response "超出套餐限额"
// @Router /api/v1/accounts [post]
func (h *AccountHandler) Create(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	coupleID := middleware.GetCurrentCoupleID(c)
	if coupleID == 0 {
		FromError(c, apperr.TenantContextMissing())
		return
	}

	var req CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	// 套餐限额
	plan, err := currentPlan(database.DB, coupleID)
	if err != nil {
		FromError(c, err)
		return
	}
	accountRepo := repository.NewAccountRepository(database.DB)
	count, err := accountRepo.Count(coupleID)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询账户失败"))
		return
	}
	if !plan.AllowsAccounts(count) {
		FromError(c, apperr.LimitExceeded("账户数量已达套餐上限，请升级套餐"))
		return
	}

	var ownerID *uint
	if !req.Joint {
		ownerID = &userID
	}
	account, err := models.NewAccount(coupleID, ownerID, req.Name, req.Type)
	if err != nil {
		FromError(c, apperr.Validation(err.Error()))
		return
	}

	err = repository.Atomic(database.DB, func(tx *gorm.DB) error {
		if err := repository.NewAccountRepository(tx).Create(account); err != nil {
			return err
		}
		_, err := service.AwardXP(tx, userID, h.cfg.Gamification.XPAccountCreated, "account.created")
		return err
	})
	if err != nil {
		FromError(c, err)
		return
	}

	SuccessWithMessage(c, "创建成功", account)
}

// List 获取账户列表
// @Summary 获取账户列表
// @Tags 账户
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=[]models.Account} "获取成功"
// @Router /api/v1/accounts [get]
func (h *AccountHandler) List(c *gin.Context) {
	coupleID := middleware.GetCurrentCoupleID(c)
	if coupleID == 0 {
		FromError(c, apperr.TenantContextMissing())
		return
	}

	accounts, err := repository.NewAccountRepository(database.DB).List(coupleID)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询账户失败"))
		return
	}
	Success(c, accounts)
}

// Get 获取单个账户
// @Summary 获取账户详情
// @Tags 账户
// @Produce json
// @Security BearerAuth
// @Param id path int true "账户ID"
// @Success 200 {object} Response{data=models.Account} "获取成功"
// @Failure 404 {object} Response "账户不存在"
// @Router /api/v1/accounts/{id} [get]
func (h *AccountHandler) Get(c *gin.Context) {
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

	account, err := repository.NewAccountRepository(database.DB).FindByID(coupleID, uint(id64))
	if err != nil {
		FromError(c, err)
		return
	}
	Success(c, account)
}

// Update 更新账户
// @Summary 更新账户
// @Tags 账户
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "账户ID"
// @Param request body UpdateAccountRequest true "更新的账户信息"
// @Success 200 {object} Response{data=models.Account} "更新成功"
// @Failure 404 {object} Response "账户不存在"
// @Router /api/v1/accounts/{id} [put]
func (h *AccountHandler) Update(c *gin.Context) {
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

	var req UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	accountRepo := repository.NewAccountRepository(database.DB)
	account, err := accountRepo.FindByID(coupleID, uint(id64))
	if err != nil {
		FromError(c, err)
		return
	}

	if req.Name != "" {
		account.Name = req.Name
	}
	if err := accountRepo.Save(account); err != nil {
		InternalError(c, SafeErrorMessage(err, "更新账户失败"))
		return
	}
	SuccessWithMessage(c, "更新成功", account)
}

// Delete 删除账户
// @Summary 删除账户
// @Description 仅余额为零的账户可删除
// @Tags 账户
// @Produce json
// @Security BearerAuth
// @Param id path int true "账户ID"
// @Success 200 {object} Response "删除成功"
// @Failure 404 {object} Response "账户不存在"
// @Failure 422 {object} Response "余额不为零"
// @Router /api/v1/accounts/{id} [delete]
func (h *AccountHandler) Delete(c *gin.Context) {
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

	accountRepo := repository.NewAccountRepository(database.DB)
	account, err := accountRepo.FindByID(coupleID, uint(id64))
	if err != nil {
		FromError(c, err)
		return
	}

	if !account.CanBeDeleted() {
		FromError(c, apperr.Business(apperr.CodeAccountNotEmpty, 0, "余额不为零的账户不能删除"))
		return
	}

	if err := accountRepo.Delete(coupleID, account.ID); err != nil {
		FromError(c, err)
		return
	}
	SuccessWithMessage(c, "删除成功", nil)
}

// TotalBalance 获取总余额
// @Summary 获取总余额
// @Description 当前情侣名下全部账户余额合计
// @Tags 账户
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response "获取成功"
// @Router /api/v1/accounts/balance [get]
func (h *AccountHandler) TotalBalance(c *gin.Context) {
	coupleID := middleware.GetCurrentCoupleID(c)
	if coupleID == 0 {
		FromError(c, apperr.TenantContextMissing())
		return
	}

	total, err := repository.NewAccountRepository(database.DB).TotalBalance(coupleID)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询余额失败"))
		return
	}
	Success(c, gin.H{"total_balance": total})
}
