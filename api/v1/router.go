package v1

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"shopgate/api/v1/allowed_domains"
	"shopgate/api/v1/auth"
	"shopgate/api/v1/brand"
	"shopgate/api/v1/domains"
	"shopgate/api/v1/middleware"
	"shopgate/api/v1/payments"
	"shopgate/internal/config"
	"shopgate/internal/domain"
	"shopgate/internal/httpx"
	"shopgate/internal/payment"
	"shopgate/internal/tenant"
	"shopgate/internal/ws"
)

// Deps are the constructed services the router wires to handlers
type Deps struct {
	Resolver     *tenant.Resolver
	Gate         *tenant.Gate
	BrandService *tenant.BrandService
	Registry     *domain.Registry
	BrandAdmin   *domain.BrandAdmin
	Allowlist    *domain.Allowlist
	PaymentSvc   *payment.Service
	Processor    *payment.Processor
}

// SetupRouter sets up the API v1 routes
func SetupRouter(r *gin.Engine, db *gorm.DB, cfg *config.Config, deps Deps) {
	r.Use(middleware.TenantCORS(deps.Gate))

	// Socket.IO endpoint for order status pushes
	if ws.Server != nil {
		r.GET("/socket.io/*any", gin.WrapH(ws.Server))
		r.POST("/socket.io/*any", gin.WrapH(ws.Server))
	}

	v1 := r.Group("/api/v1")
	{
		v1.GET("/ping", pingHandler)

		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/login", auth.LoginHandler(db, cfg))
		}

		// Storefront routes: public, tenant-scoped through the CORS gate
		// and the resolver rather than credentials.
		brandHandler := brand.NewHandler(deps.Resolver, deps.BrandService, deps.BrandAdmin)
		v1.GET("/brand-config", brandHandler.Get)

		paymentsHandler := payments.NewHandler(deps.PaymentSvc, deps.Processor, deps.Resolver)
		paymentsGroup := v1.Group("/payments")
		{
			paymentsGroup.POST("/initiate", paymentsHandler.Initiate)
			paymentsGroup.POST("/webhook", paymentsHandler.Webhook)
			paymentsGroup.POST("/callback", paymentsHandler.Callback)
			paymentsGroup.GET("/status", paymentsHandler.Status)
			paymentsGroup.POST("/retry", paymentsHandler.Retry)
		}

		// Admin routes (authentication required)
		protected := v1.Group("")
		protected.Use(middleware.AuthRequired())
		{
			protected.GET("/me", meHandler)

			domainsHandler := domains.NewHandler(deps.Registry)
			domainsGroup := protected.Group("/domains")
			{
				domainsGroup.GET("", domainsHandler.List)
				domainsGroup.GET("/detail", domainsHandler.Detail)
				domainsGroup.POST("/create", domainsHandler.Create)
				domainsGroup.POST("/toggle", domainsHandler.Toggle)
				domainsGroup.POST("/provision", domainsHandler.Provision)
			}

			allowedHandler := allowed_domains.NewHandler(deps.Allowlist)
			allowedGroup := protected.Group("/allowed-domains")
			{
				allowedGroup.GET("", allowedHandler.List)
				allowedGroup.POST("/add", allowedHandler.Add)
				allowedGroup.POST("/toggle", allowedHandler.Toggle)
			}

			protected.POST("/brand-config/upsert", brandHandler.Upsert)
			protected.GET("/brand-config/detail", brandHandler.Detail)
		}
	}
}

// pingHandler handles the ping request using unified response
func pingHandler(c *gin.Context) {
	httpx.OK(c, gin.H{
		"pong": true,
	})
}

// meHandler returns current user information
func meHandler(c *gin.Context) {
	uid, _ := c.Get("uid")
	username, _ := c.Get("username")
	role, _ := c.Get("role")

	httpx.OK(c, gin.H{
		"uid":      uid,
		"username": username,
		"role":     role,
	})
}
