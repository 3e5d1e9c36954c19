package api

import (
	"fmt"
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

// 邀请有效期
const inviteTTL = 72 * time.Hour

// CoupleHandler 情侣配对与设置处理器
type CoupleHandler struct {
	cfg          *config.Config
	emailService *service.EmailService
}

// NewCoupleHandler 创建情侣处理器
func NewCoupleHandler(cfg *config.Config) *CoupleHandler {
	return &CoupleHandler{
		cfg:          cfg,
		emailService: service.NewEmailService(&cfg.Email),
	}
}

// CreateCoupleRequest 创建情侣请求
type CreateCoupleRequest struct {
	FinancialModel    string `json:"financial_model" binding:"omitempty,oneof=TRANSPARENT AUTONOMOUS CUSTOM"`
	AllowanceResetDay int    `json:"allowance_reset_day" binding:"omitempty,min=1,max=31"`
}

// InviteRequest 发送配对邀请请求
type InviteRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// AcceptInviteRequest 接受配对邀请请求
type AcceptInviteRequest struct {
	Token string `json:"token" binding:"required"`
}

// AllowanceRequest 设置自由支配额度请求
type AllowanceRequest struct {
	Monthly models.Money `json:"monthly" binding:"required"`
}

// Create 创建情侣
// @Summary 创建情侣
// @Description 为当前用户创建一个情侣（租户）。创建后可通过邀请把伴侣拉进来。同时播种默认分类和免费版订阅。
// @Tags 情侣
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateCoupleRequest true "情侣设置"
// @Success 200 {object} Response{data=models.Couple} "创建成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 422 {object} Response "已有情侣"
// @Router /api/v1/couple [post]
func (h *CoupleHandler) Create(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req CreateCoupleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	var user models.User
	if err := database.DB.First(&user, userID).Error; err != nil {
		Unauthorized(c, "用户不存在")
		return
	}
	if user.IsPaired() {
		FromError(c, apperr.Business(apperr.CodeAlreadyPaired, 0, "您已有情侣，不能重复创建"))
		return
	}

	couple, err := models.NewCouple(userID, req.FinancialModel, req.AllowanceResetDay)
	if err != nil {
		FromError(c, apperr.Validation(err.Error()))
		return
	}

	err = repository.Atomic(database.DB, func(tx *gorm.DB) error {
		coupleRepo := repository.NewCoupleRepository(tx)
		if err := coupleRepo.Create(couple); err != nil {
			return err
		}

		// 用户归属该情侣
		user.CoupleID = &couple.ID
		if err := tx.Save(&user).Error; err != nil {
			return err
		}

		// 播种默认分类
		var cats []models.Category
		for _, seed := range models.DefaultCategories() {
			cat, err := models.NewCategory(couple.ID, seed.Name, seed.Icon, seed.Color, seed.Type)
			if err != nil {
				return err
			}
			cat.IsDefault = true
			cats = append(cats, *cat)
		}
		if err := repository.NewCategoryRepository(tx).CreateBatch(cats); err != nil {
			return err
		}

		// 默认挂免费版订阅
		planRepo := repository.NewPlanRepository(tx)
		freePlan, err := planRepo.FindByCode(models.PlanCodeFree)
		if err != nil {
			return err
		}
		return repository.NewSubscriptionRepository(tx).Upsert(&models.Subscription{
			CoupleID: couple.ID,
			PlanID:   freePlan.ID,
			Status:   models.SubscriptionStatusActive,
		})
	})
	if err != nil {
		FromError(c, err)
		return
	}

	SuccessWithMessage(c, "创建成功", couple)
}

// Invite 发送配对邀请
// @Summary 发送配对邀请
// @Description 通过邮件向伴侣发送配对邀请链接
// @Tags 情侣
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body InviteRequest true "伴侣邮箱"
// @Success 200 {object} Response "发送成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 422 {object} Response "情侣已配对完成"
// @Router /api/v1/couple/invite [post]
func (h *CoupleHandler) Invite(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req InviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	var user models.User
	if err := database.DB.First(&user, userID).Error; err != nil {
		Unauthorized(c, "用户不存在")
		return
	}
	if !user.IsPaired() {
		FromError(c, apperr.Business(apperr.CodeNotPaired, 0, "请先创建情侣"))
		return
	}

	coupleRepo := repository.NewCoupleRepository(database.DB)
	couple, err := coupleRepo.FindByID(*user.CoupleID)
	if err != nil {
		FromError(c, err)
		return
	}
	if couple.IsComplete() {
		FromError(c, apperr.Business(apperr.CodeAlreadyPaired, 0, "情侣已配对完成"))
		return
	}

	token, err := models.GenerateInviteToken()
	if err != nil {
		InternalError(c, "生成邀请令牌失败")
		return
	}

	invite := &models.CoupleInvite{
		CoupleID:  couple.ID,
		InviterID: userID,
		Email:     req.Email,
		Token:     token,
		ExpiresAt: time.Now().Add(inviteTTL),
	}
	if err := coupleRepo.CreateInvite(invite); err != nil {
		InternalError(c, SafeErrorMessage(err, "创建邀请失败"))
		return
	}

	acceptLink := fmt.Sprintf("%s/pair/accept?token=%s", h.cfg.Server.BaseURL, token)
	if err := h.emailService.SendCoupleInviteEmail(req.Email, user.Name, acceptLink); err != nil {
		InternalError(c, SafeErrorMessage(err, "发送邀请邮件失败"))
		return
	}

	SuccessWithMessage(c, "邀请已发送", gin.H{"expires_at": invite.ExpiresAt})
}

// Accept 接受配对邀请
// @Summary 接受配对邀请
// @Description 受邀用户用令牌加入情侣，并获得配对经验值奖励
// @Tags 情侣
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body AcceptInviteRequest true "邀请令牌"
// @Success 200 {object} Response{data=models.Couple} "配对成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 422 {object} Response "邀请无效或已过期"
// @Router /api/v1/couple/accept [post]
func (h *CoupleHandler) Accept(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req AcceptInviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	var user models.User
	if err := database.DB.First(&user, userID).Error; err != nil {
		Unauthorized(c, "用户不存在")
		return
	}
	if user.IsPaired() {
		FromError(c, apperr.Business(apperr.CodeAlreadyPaired, 0, "您已有情侣"))
		return
	}

	var couple *models.Couple
	err := repository.Atomic(database.DB, func(tx *gorm.DB) error {
		coupleRepo := repository.NewCoupleRepository(tx)

		invite, err := coupleRepo.FindInviteByToken(req.Token)
		if err != nil {
			return apperr.Business(apperr.CodeInvalidInvite, 0, "邀请无效")
		}
		if !invite.IsValid() {
			return apperr.Business(apperr.CodeInvalidInvite, 0, "邀请已使用或已过期")
		}

		couple, err = coupleRepo.FindByID(invite.CoupleID)
		if err != nil {
			return err
		}
		if couple.IsComplete() {
			return apperr.Business(apperr.CodeAlreadyPaired, 0, "情侣已配对完成")
		}

		couple.PartnerTwoID = &userID
		if err := coupleRepo.Save(couple); err != nil {
			return err
		}

		user.CoupleID = &couple.ID
		if err := tx.Save(&user).Error; err != nil {
			return err
		}

		invite.Used = true
		if err := coupleRepo.SaveInvite(invite); err != nil {
			return err
		}

		// 双方都拿配对奖励
		if _, err := service.AwardXP(tx, invite.InviterID, h.cfg.Gamification.XPCouplePaired, "couple.paired"); err != nil {
			return err
		}
		_, err = service.AwardXP(tx, userID, h.cfg.Gamification.XPCouplePaired, "couple.paired")
		return err
	})
	if err != nil {
		FromError(c, err)
		return
	}

	SuccessWithMessage(c, "配对成功", couple)
}

// Get 获取当前情侣信息
// @Summary 获取当前情侣
// @Tags 情侣
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=models.Couple} "获取成功"
// @Router /api/v1/couple [get]
func (h *CoupleHandler) Get(c *gin.Context) {
	coupleID := middleware.GetCurrentCoupleID(c)
	if coupleID == 0 {
		FromError(c, apperr.TenantContextMissing())
		return
	}

	couple, err := repository.NewCoupleRepository(database.DB).FindByID(coupleID)
	if err != nil {
		FromError(c, err)
		return
	}
	Success(c, couple)
}

// UpdateAllowance 设置当前用户的每月自由支配额度
// @Summary 设置自由支配额度
// @Description 设置当前用户的每月自由支配额度，剩余额度不会超过每月额度
// @Tags 情侣
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body AllowanceRequest true "每月额度"
// @Success 200 {object} Response{data=models.Couple} "设置成功"
// @Router /api/v1/couple/allowances [put]
func (h *CoupleHandler) UpdateAllowance(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	coupleID := middleware.GetCurrentCoupleID(c)
	if coupleID == 0 {
		FromError(c, apperr.TenantContextMissing())
		return
	}

	var req AllowanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	var couple *models.Couple
	err := repository.Atomic(database.DB, func(tx *gorm.DB) error {
		coupleRepo := repository.NewCoupleRepository(tx)
		var err error
		couple, err = coupleRepo.FindByIDForUpdate(coupleID)
		if err != nil {
			return err
		}
		if err := couple.SetAllowance(userID, req.Monthly); err != nil {
			return apperr.Validation(err.Error())
		}
		return coupleRepo.Save(couple)
	})
	if err != nil {
		FromError(c, err)
		return
	}

	SuccessWithMessage(c, "设置成功", couple)
}

// ResetAllowances 触发额度重置
// @Summary 重置自由支配额度
// @Description 把双方剩余额度恢复为每月额度。仅在该情侣的重置日生效；
// @Description force=true 跳过重置日检查，用于巡检漏跑后的手动补偿。
// @Tags 情侣
// @Produce json
// @Security BearerAuth
// @Param force query bool false "跳过重置日检查" default(false)
// @Success 200 {object} Response{data=models.Couple} "重置成功"
// @Failure 400 {object} Response "今天不是重置日"
// @Router /api/v1/couple/allowances/reset [post]
func (h *CoupleHandler) ResetAllowances(c *gin.Context) {
	coupleID := middleware.GetCurrentCoupleID(c)
	if coupleID == 0 {
		FromError(c, apperr.TenantContextMissing())
		return
	}
	force := c.Query("force") == "true"

	var couple *models.Couple
	err := repository.Atomic(database.DB, func(tx *gorm.DB) error {
		coupleRepo := repository.NewCoupleRepository(tx)
		var err error
		couple, err = coupleRepo.FindByIDForUpdate(coupleID)
		if err != nil {
			return err
		}
		if !force && !couple.ShouldResetOn(time.Now()) {
			return apperr.Validation("今天不是额度重置日")
		}
		couple.ResetAllowances()
		return coupleRepo.Save(couple)
	})
	if err != nil {
		FromError(c, err)
		return
	}

	SuccessWithMessage(c, "重置成功", couple)
}
