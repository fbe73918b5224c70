package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/David-Jacks/faitherpa/internal/middleware"
	"github.com/David-Jacks/faitherpa/internal/models"
	"github.com/David-Jacks/faitherpa/internal/service"
	"github.com/David-Jacks/faitherpa/internal/token"
	"github.com/David-Jacks/faitherpa/internal/util"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserHandler 负责注册 / 登录 / 登出 / 贡献者视图相关接口
type UserHandler struct {
	DB         *gorm.DB
	Ledger     *service.Ledger
	Revoked    token.RevocationStore
	JWTSecret  string
	TokenTTL   time.Duration
	BcryptCost int
}

func NewUserHandler(db *gorm.DB, ledger *service.Ledger, revoked token.RevocationStore, jwtSecret string, ttlHours, bcryptCost int) *UserHandler {
	if ttlHours <= 0 {
		ttlHours = 24 * 7
	}
	if bcryptCost <= 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &UserHandler{
		DB:         db,
		Ledger:     ledger,
		Revoked:    revoked,
		JWTSecret:  jwtSecret,
		TokenTTL:   time.Duration(ttlHours) * time.Hour,
		BcryptCost: bcryptCost,
	}
}

// ---------- 注册 ----------

type createUserReq struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
	Password    string `json:"password"`
}

func (h *UserHandler) Create(c *gin.Context) {
	var req createUserReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidRequest, "invalid request body")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if err := util.ValidateName(req.Name); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeNameRequired, err.Error())
		return
	}

	user := models.User{Name: req.Name}
	if req.Email != "" {
		user.Email = &req.Email
	}
	if req.PhoneNumber != "" {
		if err := util.ValidatePhone(req.PhoneNumber); err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidPhone, err.Error())
			return
		}
		user.PhoneNumber = &req.PhoneNumber
	}
	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), h.BcryptCost)
		if err != nil {
			util.Error(c, http.StatusInternalServerError, "create_user_failed", "")
			return
		}
		s := string(hash)
		user.PasswordHash = &s
	}

	if err := h.DB.WithContext(c.Request.Context()).Create(&user).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, "create_user_failed", "")
		return
	}

	c.JSON(http.StatusCreated, user)
}

// ---------- 登录 ----------

type authenticateReq struct {
	PhoneNumber string `json:"phoneNumber"`
	Password    string `json:"password"`
}

func (h *UserHandler) Authenticate(c *gin.Context) {
	var req authenticateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidRequest, "invalid request body")
		return
	}

	if req.PhoneNumber == "" || req.Password == "" {
		util.Error(c, http.StatusBadRequest, util.CodeCredentialsRequired, "")
		return
	}
	if err := util.ValidatePhone(req.PhoneNumber); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidPhone, "")
		return
	}

	var user models.User
	if err := h.DB.WithContext(c.Request.Context()).
		Where("phone_number = ?", req.PhoneNumber).
		First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusUnauthorized, util.CodeInvalidCredentials, "")
		} else {
			util.Error(c, http.StatusInternalServerError, "auth_failed", "")
		}
		return
	}

	if user.PasswordHash == nil {
		util.Error(c, http.StatusUnauthorized, util.CodeNoPasswordSet, "")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(req.Password)); err != nil {
		util.Error(c, http.StatusUnauthorized, util.CodeInvalidCredentials, "")
		return
	}

	tokenStr, err := util.GenerateToken(h.JWTSecret, user.ID, user.IsAdmin, h.TokenTTL)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, "auth_failed", "failed to sign token")
		return
	}

	hasConfirmed, err := h.Ledger.HasConfirmed(c.Request.Context(), user.ID)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, "auth_failed", "")
		return
	}

	util.Success(c, http.StatusOK, util.Response{
		"token":        tokenStr,
		"user":         user,
		"hasConfirmed": hasConfirmed,
	})
}

// ---------- 登出 ----------

// Logout 把当前 Bearer token 加入吊销表，有效期取 token 剩余时长。
// token 本身无法解析时仍然吊销（按默认 7 天），登出不应该失败。
func (h *UserHandler) Logout(c *gin.Context) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		util.Error(c, http.StatusBadRequest, util.CodeMissingToken, "")
		return
	}
	tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

	ttl := 7 * 24 * time.Hour
	if claims, err := util.ParseToken(h.JWTSecret, tokenStr); err == nil {
		ttl = util.TokenRemainingTTL(claims)
	}

	if err := h.Revoked.Revoke(c.Request.Context(), tokenStr, ttl); err != nil {
		util.Error(c, http.StatusInternalServerError, "logout_failed", "")
		return
	}

	util.Success(c, http.StatusOK, util.Response{"ok": true})
}

// ---------- 查询 ----------

func (h *UserHandler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		util.Error(c, http.StatusNotFound, util.CodeUserNotFound, "")
		return
	}

	var user models.User
	if err := h.DB.WithContext(c.Request.Context()).First(&user, uint(id)).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, util.CodeUserNotFound, "")
		} else {
			util.Error(c, http.StatusInternalServerError, "get_user_failed", "")
		}
		return
	}

	c.JSON(http.StatusOK, user)
}

// Contributors 返回按贡献者分组的认捐视图。
// 管理员能看到 note，普通用户看不到；confirmed / isRepayable 两个标记
// 对所有登录用户可见。
func (h *UserHandler) Contributors(c *gin.Context) {
	// 禁止浏览器缓存这个接口
	c.Header("Cache-Control", "no-store, no-cache, must-revalidate, proxy-revalidate")
	c.Header("Pragma", "no-cache")
	c.Header("Expires", "0")

	user := middleware.CurrentUser(c)
	if user == nil {
		util.Error(c, http.StatusUnauthorized, util.CodeMissingAuth, "")
		return
	}

	contributors, err := h.Ledger.Contributors(c.Request.Context(), user.IsAdmin)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, "fetch_contributors_failed", "")
		return
	}

	util.Success(c, http.StatusOK, util.Response{"contributors": contributors})
}
