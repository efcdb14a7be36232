package handler

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"adaura-rewards/internal/config"
	"adaura-rewards/internal/pkg/token"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Auth     *AuthHandler
	Daily    *DailyHandler
	Game     *GameHandler
	Referral *ReferralHandler
	Withdraw *WithdrawHandler
	Admin    *AdminHandler
	Oracle   *OracleHandler
	Ledger   *LedgerHandler
}

// NewRouter builds the Gin engine with CORS and the full route map.
func NewRouter(cfg config.ServerConfig, tokens *token.Manager, blacklist *token.Blacklist, h Handlers) *gin.Engine {
	gin.SetMode(cfg.Mode)
	router := gin.New()
	router.Use(gin.Recovery())

	corsCfg := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsCfg.AllowAllOrigins = true
	}
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
	router.Use(cors.New(corsCfg))

	api := router.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/signup", h.Auth.Signup)
	auth.POST("/login", h.Auth.Login)

	authed := api.Group("")
	authed.Use(AuthRequired(tokens, blacklist))

	authed.POST("/auth/logout", h.Auth.Logout)
	authed.GET("/me", h.Auth.Me)

	authed.POST("/daily/streak", h.Daily.Streak)
	authed.POST("/daily/claim", h.Daily.Claim)

	authed.POST("/games/wheel/spin", h.Game.SpinWheel)
	authed.POST("/games/slot/spin", h.Game.SpinSlot)
	authed.POST("/games/scratch", h.Game.Scratch)

	authed.POST("/referral/claim", h.Referral.Claim)

	authed.POST("/withdrawals", h.Withdraw.Create)
	authed.GET("/withdrawals", h.Withdraw.ListMine)

	authed.GET("/transactions", h.Ledger.List)

	authed.POST("/oracle/advice", h.Oracle.Advice)
	authed.POST("/oracle/lucky", h.Oracle.Lucky)

	admin := authed.Group("/admin")
	admin.Use(AdminRequired())
	admin.GET("/withdrawals", h.Admin.ListWithdrawals)
	admin.POST("/withdrawals/:id/resolve", h.Admin.ResolveWithdrawal)

	return router
}
