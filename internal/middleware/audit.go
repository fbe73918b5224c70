package middleware

import (
	"bytes"
	"io"

	"github.com/David-Jacks/faitherpa/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Audit 把已登录用户的操作写进 audit_logs 表。
func Audit(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 读取请求体（之后还回去）
		var bodyBytes []byte
		if c.Request.Body != nil {
			bodyBytes, _ = io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
		}

		// 执行请求
		c.Next()

		// 只记录登录用户的操作
		user := CurrentUser(c)
		if user == nil {
			return
		}

		path := c.Request.URL.Path
		action := c.Request.Method + " " + path
		if len(bodyBytes) > 0 && len(bodyBytes) < 2000 {
			action += " " + string(bodyBytes)
		}

		log := models.AuditLog{
			UserID:    &user.ID,
			Method:    c.Request.Method,
			Path:      path,
			Action:    action,
			IP:        c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
		}

		_ = db.Create(&log).Error
	}
}
