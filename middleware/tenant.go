package middleware

import (
	"log"
	"net/http"

	"couplefin/apperr"
	"couplefin/database"
	"couplefin/models"

	"github.com/gin-gonic/gin"
)

// TenantContext 租户中间件：必须在 JWTAuth 之后使用。
// 加载当前用户并把其 couple_id 写入上下文；未配对用户无法访问租户资源
func TenantContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := GetCurrentUserID(c)
		if userID == 0 {
			// JWTAuth 缺失属于接线错误，按基础设施错误高严重级别记录
			log.Printf("[严重] 租户中间件在无认证上下文的请求上被调用: %s", c.Request.URL.Path)
			e := apperr.TenantContextMissing()
			c.JSON(e.StatusCode, gin.H{"code": e.StatusCode, "message": "内部错误"})
			c.Abort()
			return
		}

		var user models.User
		if err := database.DB.First(&user, userID).Error; err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"code": 401, "message": "用户不存在"})
			c.Abort()
			return
		}
		if user.CoupleID == nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"code":    http.StatusUnprocessableEntity,
				"message": "请先完成配对",
				"error":   gin.H{"code": apperr.CodeNotPaired},
			})
			c.Abort()
			return
		}

		c.Set("coupleID", *user.CoupleID)
		c.Next()
	}
}

// GetCurrentCoupleID 从上下文获取当前情侣ID。
// 返回 0 表示租户上下文缺失，调用方应视为内部错误
func GetCurrentCoupleID(c *gin.Context) uint {
	if v, exists := c.Get("coupleID"); exists {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return 0
}
