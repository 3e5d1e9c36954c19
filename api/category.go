package api

import (
	"strconv"

	"couplefin/apperr"
	"couplefin/database"
	"couplefin/middleware"
	"couplefin/models"
	"couplefin/repository"

	"github.com/gin-gonic/gin"
)

// CategoryHandler 分类处理器
type CategoryHandler struct{}

// NewCategoryHandler 创建分类处理器
func NewCategoryHandler() *CategoryHandler {
	return &CategoryHandler{}
}

// CreateCategoryRequest 创建分类请求
type CreateCategoryRequest struct {
	Name  string  `json:"name" binding:"required,min=1,max=50" example:"旅行"`
	Icon  string  `json:"icon" binding:"omitempty,max=50" example:"Plane"`
	Color string  `json:"color" binding:"omitempty,max=10" example:"#3b82f6"`
	Type  *string `json:"type" binding:"omitempty,oneof=INCOME EXPENSE" example:"EXPENSE"` // 省略表示通用
}

// UpdateCategoryRequest 更新分类请求
type UpdateCategoryRequest struct {
	Name  string `json:"name" binding:"omitempty,min=1,max=50"`
	Icon  string `json:"icon" binding:"omitempty,max=50"`
	Color string `json:"color" binding:"omitempty,max=10"`
}

// Create 创建分类
// @Summary 创建分类
// @Description 为当前情侣创建收支分类。type 省略时为收入/支出通用。受套餐限额约束。
// @Tags 分类
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateCategoryRequest true "分类信息"
// @Success 200 {object} Response{data=models.Category} "创建成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 409 {object} Response "分类已存在"
// @Failure 422 {object} Response "超出套餐限额"
// @Router /api/v1/categories [post]
func (h *CategoryHandler) Create(c *gin.Context) {
	coupleID := middleware.GetCurrentCoupleID(c)
	if coupleID == 0 {
		FromError(c, apperr.TenantContextMissing())
		return
	}

	var req CreateCategoryRequest
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
	categoryRepo := repository.NewCategoryRepository(database.DB)
	count, err := categoryRepo.Count(coupleID)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询分类失败"))
		return
	}
	if !plan.AllowsCategories(count) {
		FromError(c, apperr.LimitExceeded("分类数量已达套餐上限，请升级套餐"))
		return
	}

	// 同名校验
	if _, err := categoryRepo.FindByName(coupleID, req.Name); err == nil {
		FromError(c, apperr.AlreadyExists("分类"))
		return
	}

	category, err := models.NewCategory(coupleID, req.Name, req.Icon, req.Color, req.Type)
	if err != nil {
		FromError(c, apperr.Validation(err.Error()))
		return
	}

	if err := categoryRepo.Create(category); err != nil {
		InternalError(c, SafeErrorMessage(err, "创建分类失败"))
		return
	}
	SuccessWithMessage(c, "创建成功", category)
}

// List 获取分类列表
// @Summary 获取分类列表
// @Description 可按交易类型过滤，通用分类（type 为空）对两种交易类型都会返回
// @Tags 分类
// @Produce json
// @Security BearerAuth
// @Param type query string false "交易类型 INCOME/EXPENSE"
// @Success 200 {object} Response{data=[]models.Category} "获取成功"
// @Router /api/v1/categories [get]
func (h *CategoryHandler) List(c *gin.Context) {
	coupleID := middleware.GetCurrentCoupleID(c)
	if coupleID == 0 {
		FromError(c, apperr.TenantContextMissing())
		return
	}

	txType := c.Query("type")
	if txType != "" && txType != models.TransactionTypeIncome && txType != models.TransactionTypeExpense {
		BadRequest(c, "无效的交易类型")
		return
	}

	categories, err := repository.NewCategoryRepository(database.DB).List(coupleID, txType)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询分类失败"))
		return
	}
	Success(c, categories)
}

// Update 更新分类
// @Summary 更新分类
// @Description 默认分类仅允许改图标和颜色，名称不可改
// @Tags 分类
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "分类ID"
// @Param request body UpdateCategoryRequest true "更新的分类信息"
// @Success 200 {object} Response{data=models.Category} "更新成功"
// @Failure 404 {object} Response "分类不存在"
// @Router /api/v1/categories/{id} [put]
func (h *CategoryHandler) Update(c *gin.Context) {
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

	var req UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	categoryRepo := repository.NewCategoryRepository(database.DB)
	category, err := categoryRepo.FindByID(coupleID, uint(id64))
	if err != nil {
		FromError(c, err)
		return
	}

	if req.Name != "" {
		if category.IsDefault {
			FromError(c, apperr.Business(apperr.CodeDefaultCategory, 0, "默认分类的名称不可修改"))
			return
		}
		category.Name = req.Name
	}
	if req.Icon != "" {
		category.Icon = req.Icon
	}
	if req.Color != "" {
		category.Color = req.Color
	}

	// 复用构造校验（颜色格式、长度）
	if _, err := models.NewCategory(category.CoupleID, category.Name, category.Icon, category.Color, category.Type); err != nil {
		FromError(c, apperr.Validation(err.Error()))
		return
	}

	if err := categoryRepo.Save(category); err != nil {
		InternalError(c, SafeErrorMessage(err, "更新分类失败"))
		return
	}
	SuccessWithMessage(c, "更新成功", category)
}

// Delete 删除分类
// @Summary 删除分类
// @Description 默认分类不可删除
// @Tags 分类
// @Produce json
// @Security BearerAuth
// @Param id path int true "分类ID"
// @Success 200 {object} Response "删除成功"
// @Failure 404 {object} Response "分类不存在"
// @Failure 422 {object} Response "默认分类不可删除"
// @Router /api/v1/categories/{id} [delete]
func (h *CategoryHandler) Delete(c *gin.Context) {
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

	categoryRepo := repository.NewCategoryRepository(database.DB)
	category, err := categoryRepo.FindByID(coupleID, uint(id64))
	if err != nil {
		FromError(c, err)
		return
	}

	if !category.CanBeDeleted() {
		FromError(c, apperr.Business(apperr.CodeDefaultCategory, 0, "默认分类不可删除"))
		return
	}

	if err := categoryRepo.Delete(coupleID, category.ID); err != nil {
		FromError(c, err)
		return
	}
	SuccessWithMessage(c, "删除成功", nil)
}
