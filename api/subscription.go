package api

import (
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

// SubscriptionHandler 套餐与订阅处理器
type SubscriptionHandler struct {
	cfg            *config.Config
	billingService *service.BillingService
}

// NewSubscriptionHandler 创建订阅处理器
func NewSubscriptionHandler(cfg *config.Config) *SubscriptionHandler {
	return &SubscriptionHandler{
		cfg:            cfg,
		billingService: service.NewBillingService(&cfg.Billing),
	}
}

// SubscribeRequest 订阅请求
type SubscribeRequest struct {
	PlanCode string `json:"plan_code" binding:"required,oneof=FREE PREMIUM"`
}

// currentPlan 取情侣当前生效的套餐。
// 无订阅或订阅失效时按业务错误返回，限额检查都走这里
func currentPlan(db *gorm.DB, coupleID uint) (*models.Plan, error) {
	sub, err := repository.NewSubscriptionRepository(db).FindByCouple(coupleID)
	if err != nil {
		if apperr.IsCode(err, apperr.CodeNotFound) {
			return nil, apperr.Business(apperr.CodeInactiveSubscription, 0, "当前没有有效订阅")
		}
		return nil, err
	}
	if !sub.IsActive() {
		return nil, apperr.Business(apperr.CodeInactiveSubscription, 0, "订阅已失效，请续费")
	}
	return &sub.Plan, nil
}

// ListPlans 列出全部套餐
// @Summary 获取套餐列表
// @Tags 订阅
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=[]models.Plan} "获取成功"
// @Router /api/v1/plans [get]
func (h *SubscriptionHandler) ListPlans(c *gin.Context) {
	plans, err := repository.NewPlanRepository(database.DB).List()
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询套餐失败"))
		return
	}
	Success(c, plans)
}

// Get 获取当前订阅
// @Summary 获取当前订阅
// @Tags 订阅
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=models.Subscription} "获取成功"
// @Failure 404 {object} Response "没有订阅"
// @Router /api/v1/subscription [get]
func (h *SubscriptionHandler) Get(c *gin.Context) {
	coupleID := middleware.GetCurrentCoupleID(c)
	if coupleID == 0 {
		FromError(c, apperr.TenantContextMissing())
		return
	}

	sub, err := repository.NewSubscriptionRepository(database.DB).FindByCouple(coupleID)
	if err != nil {
		FromError(c, err)
		return
	}
	Success(c, sub)
}

// Subscribe 订阅/升级套餐
// @Summary 订阅套餐
// @Description 把情侣的订阅切换到指定套餐。couple_id 唯一约束保证每个情侣至多一条订阅。
// @Tags 订阅
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body SubscribeRequest true "套餐代码"
// @Success 200 {object} Response{data=models.Subscription} "订阅成功"
// @Failure 400 {object} Response "请求参数错误"
// @Router /api/v1/subscription [post]
func (h *SubscriptionHandler) Subscribe(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	coupleID := middleware.GetCurrentCoupleID(c)
	if coupleID == 0 {
		FromError(c, apperr.TenantContextMissing())
		return
	}

	var req SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	plan, err := repository.NewPlanRepository(database.DB).FindByCode(req.PlanCode)
	if err != nil {
		FromError(c, err)
		return
	}

	sub := &models.Subscription{
		CoupleID: coupleID,
		PlanID:   plan.ID,
		Status:   models.SubscriptionStatusActive,
	}

	// 付费套餐先在支付服务商侧建档
	if plan.MonthlyPrice > 0 && h.cfg.Billing.Enabled {
		var user models.User
		if err := database.DB.First(&user, userID).Error; err != nil {
			Unauthorized(c, "用户不存在")
			return
		}
		customerID, err := h.billingService.CreateCustomer(user.Email, user.Name)
		if err != nil {
			InternalError(c, SafeErrorMessage(err, "创建支付客户失败"))
			return
		}
		sub.ExternalCustomerID = customerID
		periodEnd := time.Now().AddDate(0, 1, 0)
		sub.CurrentPeriodEnd = &periodEnd
	}

	subRepo := repository.NewSubscriptionRepository(database.DB)
	if err := subRepo.Upsert(sub); err != nil {
		InternalError(c, SafeErrorMessage(err, "写入订阅失败"))
		return
	}

	saved, err := subRepo.FindByCouple(coupleID)
	if err != nil {
		FromError(c, err)
		return
	}
	SuccessWithMessage(c, "订阅成功", saved)
}

// Cancel 取消订阅
// @Summary 取消订阅
// @Description 把订阅状态置为 CANCELED，当前周期结束前仍可使用
// @Tags 订阅
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=models.Subscription} "取消成功"
// @Failure 404 {object} Response "没有订阅"
// @Router /api/v1/subscription/cancel [post]
func (h *SubscriptionHandler) Cancel(c *gin.Context) {
	coupleID := middleware.GetCurrentCoupleID(c)
	if coupleID == 0 {
		FromError(c, apperr.TenantContextMissing())
		return
	}

	subRepo := repository.NewSubscriptionRepository(database.DB)
	sub, err := subRepo.FindByCouple(coupleID)
	if err != nil {
		FromError(c, err)
		return
	}

	sub.Status = models.SubscriptionStatusCanceled
	if err := subRepo.Save(sub); err != nil {
		InternalError(c, SafeErrorMessage(err, "取消订阅失败"))
		return
	}
	SuccessWithMessage(c, "已取消订阅", sub)
}

// Portal 创建支付服务商客户门户会话
// @Summary 获取账单门户链接
// @Description 用已存储的外部客户ID创建客户门户会话，返回跳转 URL
// @Tags 订阅
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response "获取成功"
// @Failure 404 {object} Response "没有订阅"
// @Router /api/v1/subscription/portal [post]
func (h *SubscriptionHandler) Portal(c *gin.Context) {
	coupleID := middleware.GetCurrentCoupleID(c)
	if coupleID == 0 {
		FromError(c, apperr.TenantContextMissing())
		return
	}

	sub, err := repository.NewSubscriptionRepository(database.DB).FindByCouple(coupleID)
	if err != nil {
		FromError(c, err)
		return
	}

	url, err := h.billingService.CreatePortalSession(sub.ExternalCustomerID)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "创建门户会话失败"))
		return
	}
	Success(c, gin.H{"url": url})
}
