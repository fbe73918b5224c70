package router

import (
	"github.com/David-Jacks/faitherpa/internal/config"
	"github.com/David-Jacks/faitherpa/internal/handler"
	"github.com/David-Jacks/faitherpa/internal/middleware"
	"github.com/David-Jacks/faitherpa/internal/service"
	"github.com/David-Jacks/faitherpa/internal/token"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupRouter configures the Gin engine and the API routes.
func SetupRouter(cfg *config.Config, db *gorm.DB, revoked token.RevocationStore) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	ledger := service.NewLedger(db, cfg.Security.BcryptCost, cfg.App.ListLimit)

	userHandler := handler.NewUserHandler(db, ledger, revoked,
		cfg.JWT.Secret, cfg.JWT.ExpireHours, cfg.Security.BcryptCost)
	contributionHandler := handler.NewContributionHandler(ledger)
	exportHandler := handler.NewExportHandler(db)

	// 公开接口（不需要鉴权）
	r.POST("/users", userHandler.Create)
	r.POST("/auth", userHandler.Authenticate)
	r.POST("/auth/logout", userHandler.Logout)
	r.GET("/users/:id", userHandler.Get)

	r.POST("/contributions", contributionHandler.Create)
	r.GET("/contributions", contributionHandler.List)
	r.GET("/contributions/total", contributionHandler.Total)

	// 需要登录才能访问的接口
	protected := r.Group("")
	protected.Use(
		middleware.Auth(cfg.JWT.Secret, db, revoked, cfg.Auth.AllowHeaderAuth),
		middleware.Audit(db),
	)

	protected.GET("/contributors", userHandler.Contributors)

	// 管理员接口
	admin := protected.Group("")
	admin.Use(middleware.RequireAdmin())

	admin.POST("/contributions/:id/confirm", contributionHandler.Confirm)
	admin.POST("/contributors/:userId/confirm", contributionHandler.ConfirmContributor)
	admin.DELETE("/contributions/:id", contributionHandler.Delete)

	admin.GET("/export/csv", exportHandler.ExportCSV)
	admin.GET("/export/xlsx", exportHandler.ExportXLSX)

	return r
}
