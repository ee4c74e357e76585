package router

import (
	"github.com/Lion1208/fastpay/internal/interfaces/http/handler"
	"github.com/Lion1208/fastpay/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// Handlers bundles everything the route table needs
type Handlers struct {
	System     *handler.SystemHandler
	Auth       *handler.AuthHandler
	Account    *handler.AccountHandler
	Deposit    *handler.DepositHandler
	Withdrawal *handler.WithdrawalHandler
	Transfer   *handler.TransferHandler
	Webhook    *handler.WebhookHandler
	Ticket     *handler.TicketHandler
	APIKey     *handler.APIKeyHandler
}

// Routes builds the platform route registrars. JWT authentication and
// admin gating are applied by the caller's middleware configuration;
// the groups below only declare paths. Extra middleware for the auth
// group, such as the login rate limiter, is passed through authMW.
func Routes(h Handlers, authMW ...gin.HandlerFunc) []RouteRegistrar {
	system := NewDomainGroup("system", "/system")
	system.GET("/info", h.System.GetSystemInfo)
	system.GET("/ping", h.System.Ping)

	auth := NewDomainGroup("auth", "/auth")
	auth.Use(authMW...)
	auth.POST("/register", h.Auth.Register)
	auth.POST("/login", h.Auth.Login)
	auth.POST("/refresh", h.Auth.RefreshToken)

	account := NewDomainGroup("account", "/account")
	account.GET("/me", h.Account.Me)
	account.PUT("/profile", h.Account.UpdateProfile)
	account.GET("/dashboard", h.Account.Dashboard)
	account.GET("/referees", h.Account.ListReferees)
	account.GET("/commissions", h.Account.ListCommissions)

	deposits := NewDomainGroup("deposits", "/deposits")
	deposits.POST("", h.Deposit.CreateDeposit)
	deposits.GET("", h.Deposit.ListDeposits)
	deposits.GET("/:id", h.Deposit.GetDeposit)
	deposits.GET("/:id/receipt", h.Deposit.GetDepositReceipt)

	withdrawals := NewDomainGroup("withdrawals", "/withdrawals")
	withdrawals.POST("", h.Withdrawal.RequestWithdrawal)
	withdrawals.POST("/preview", h.Withdrawal.PreviewWithdrawal)
	withdrawals.GET("", h.Withdrawal.ListWithdrawals)
	withdrawals.GET("/:id", h.Withdrawal.GetWithdrawal)

	transfers := NewDomainGroup("transfers", "/transfers")
	transfers.POST("", h.Transfer.SendTransfer)
	transfers.POST("/preview", h.Transfer.PreviewTransfer)
	transfers.GET("", h.Transfer.ListTransfers)

	webhooks := NewDomainGroup("webhooks", "/webhooks")
	webhooks.POST("/fastdepix", h.Webhook.HandleFastDePix)

	tickets := NewDomainGroup("tickets", "/tickets")
	tickets.POST("", h.Ticket.CreateTicket)
	tickets.GET("", h.Ticket.ListTickets)
	tickets.GET("/:id", h.Ticket.GetTicket)
	tickets.POST("/:id/close", h.Ticket.CloseTicket)

	apikeys := NewDomainGroup("apikeys", "/apikeys")
	apikeys.POST("", h.APIKey.CreateKey)
	apikeys.GET("", h.APIKey.ListKeys)
	apikeys.DELETE("/:id", h.APIKey.RevokeKey)

	public := NewDomainGroup("public", "/public")
	public.GET("/:code", h.Account.PublicPage)

	return []RouteRegistrar{
		system, auth, account, deposits, withdrawals,
		transfers, webhooks, tickets, apikeys, public,
	}
}

// AdminRoutes builds the admin route registrar. The returned group
// must be mounted behind the admin role middleware.
func AdminRoutes(admin *handler.AdminHandler, ticket *handler.TicketHandler) RouteRegistrar {
	g := NewDomainGroup("admin", "/admin")
	g.Use(middleware.RequireAdmin())

	g.GET("/stats", admin.Stats)
	g.GET("/accounts", admin.ListAccounts)
	g.GET("/accounts/:id", admin.GetAccount)
	g.POST("/accounts/:id/block", admin.BlockAccount)
	g.POST("/accounts/:id/unblock", admin.UnblockAccount)
	g.PUT("/accounts/:id/fees", admin.UpdateFees)
	g.GET("/withdrawals", admin.ListWithdrawals)
	g.POST("/withdrawals/:id/approve", admin.ApproveWithdrawal)
	g.POST("/withdrawals/:id/reject", admin.RejectWithdrawal)
	g.POST("/withdrawals/:id/paid", admin.MarkWithdrawalPaid)
	g.GET("/settings", admin.GetSettings)
	g.PUT("/settings", admin.UpdateSettings)
	g.GET("/tickets", ticket.ListAllTickets)
	g.POST("/tickets/:id/reply", ticket.ReplyTicket)

	return g
}

// ExternalRoutes mounts the server-to-server charge API on its own
// prefix, authenticated by API key instead of JWT.
func ExternalRoutes(engine *gin.Engine, ext *handler.ExternalHandler, keyAuth gin.HandlerFunc) {
	g := engine.Group("/ext/v1")
	g.Use(keyAuth)
	g.POST("/charges", ext.CreateCharge)
	g.GET("/charges/:id", ext.GetCharge)
}
