package handler

import (
	"wallet/internal/config"
	"wallet/internal/service"
	"wallet/pkg/auth"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SetupRouter wires every route. The gin mode is left to the caller.
func SetupRouter(db *gorm.DB, rdb *redis.Client, cfg *config.Config, notifier service.Notifier, log *zap.Logger) *gin.Engine {
	r := gin.New()

	httpLog := log.Named("http")
	r.Use(RequestIDMiddleware())
	r.Use(RecoveryMiddleware(httpLog))
	r.Use(LoggerMiddleware(httpLog))

	h := NewHandler(db, rdb, cfg, notifier, log)
	authn := auth.NewAuthenticator(cfg.Auth.JWTSecret, cfg.Auth.Issuer)

	api := r.Group("/api/v1", AuthMiddleware(authn))
	{
		account := api.Group("/account")
		{
			account.POST("/open", h.OpenAccount)
			account.GET("", h.GetAccount)
			account.POST("/top-up", h.TopUp)
		}

		transaction := api.Group("/transaction")
		{
			transaction.GET("/resolve/:account_number", h.ResolveAccount)
			transaction.POST("/send",
				TransferAdmissionMiddleware(rdb, cfg.Business.TransferRateWindow, httpLog),
				h.Transfer)
			transaction.POST("/reverse", h.Reverse)
			transaction.GET("/history", h.ListHistory)
			transaction.GET("/beneficiaries", h.ListBeneficiaries)
			transaction.GET("/beneficiaries/:id", h.GetBeneficiary)
		}

		misc := api.Group("/misc")
		{
			misc.GET("/categories", h.ListCategories)
			misc.POST("/categories", h.CreateCategory)
		}
	}

	r.GET("/health", h.Health)

	return r
}
