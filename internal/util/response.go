package util

import "github.com/gin-gonic/gin"

// 通用返回结构里的 data 使用 map
type Response map[string]interface{}

// 稳定的机器可读错误码，前端据此分支
const (
	CodeInvalidRequest       = "invalid_request"
	CodeAmountRequired       = "amount_required"
	CodeNameRequired         = "name_required"
	CodeUserIDRequired       = "user_id_required"
	CodeCredentialsRequired  = "credentials_required"
	CodeInvalidPhone         = "invalid_phone"
	CodeInvalidCredentials   = "invalid_credentials"
	CodeNoPasswordSet        = "no_password_set"
	CodeMissingAuth          = "missing_auth"
	CodeMissingToken         = "missing_token"
	CodeInvalidToken         = "invalid_token"
	CodeTokenRevoked         = "token_revoked"
	CodeInvalidUser          = "invalid_user"
	CodeAdminRequired        = "admin_required"
	CodeConfirmedRequired    = "confirmed_contribution_required"
	CodeUserNotFound         = "user_not_found"
	CodeContributionNotFound = "contribution_not_found"
	CodeDeleteFailed         = "delete_failed"
)

// Success 统一成功返回
func Success(c *gin.Context, status int, data Response) {
	c.JSON(status, data)
}

// Error 统一错误返回：{"error": code, "message": ...}
func Error(c *gin.Context, httpStatus int, code string, msg string) {
	payload := gin.H{"error": code}
	if msg != "" {
		payload["message"] = msg
	}
	c.JSON(httpStatus, payload)
}
