package router

import (
	"github.com/erp/treasury/internal/infrastructure/logger"
	"github.com/erp/treasury/internal/interfaces/http/handler"
	"github.com/erp/treasury/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handlers are the HTTP handlers served by the treasury API
type Handlers struct {
	System           *handler.SystemHandler
	PaymentOrders    *handler.PaymentOrderHandler
	PurchaseInvoices *handler.PurchaseInvoiceHandler
	Bank             *handler.BankHandler
	Cash             *handler.CashHandler
	Cashflow         *handler.CashflowHandler
}

// EngineConfig holds the middleware settings of the HTTP engine
type EngineConfig struct {
	Logger         *zap.Logger
	CORS           middleware.CORSConfig
	MaxBodySize    int64
	TrustedProxies []string
	Tracing        middleware.TracingConfig
	Tenant         middleware.TenantMiddlewareConfig
	Metrics        middleware.HTTPMetricsConfig
}

// DefaultEngineConfig returns a configuration suitable for tests and local runs
func DefaultEngineConfig(log *zap.Logger) EngineConfig {
	return EngineConfig{
		Logger:      log,
		CORS:        middleware.DefaultCORSConfig(),
		MaxBodySize: 1 << 20,
		Tracing:     middleware.TracingConfig{ServiceName: "treasury"},
		Tenant:      middleware.DefaultTenantConfig(),
	}
}

// NewEngine builds the gin engine with the full middleware stack and every
// treasury route registered.
func NewEngine(cfg EngineConfig, h Handlers) *gin.Engine {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.Tenant.Logger == nil {
		cfg.Tenant.Logger = log
	}

	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Order matters: the request id must exist before logging, and the span
	// must exist before identity and error marking touch it.
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(cfg.CORS))
	if cfg.MaxBodySize > 0 {
		engine.Use(middleware.BodyLimit(cfg.MaxBodySize))
	}
	engine.Use(middleware.TracingWithConfig(cfg.Tracing))
	engine.Use(middleware.SpanErrorMarker())
	engine.Use(middleware.HTTPMetrics(cfg.Metrics))

	if h.System != nil {
		engine.GET("/health", h.System.Health)
		engine.GET("/ready", h.System.Ready)
	}

	r := NewRouter(engine, WithAPIVersion("v1"))
	r.Use(middleware.TenantMiddlewareWithConfig(cfg.Tenant), middleware.TracingAttributeInjector())
	for _, group := range TreasuryRoutes(h) {
		r.Register(group)
	}
	r.Setup()
	log.Debug("HTTP routes registered", zap.Strings("routes", r.Routes()))

	return engine
}

// TreasuryRoutes returns the domain groups of the versioned API. Nil
// handlers are skipped.
func TreasuryRoutes(h Handlers) []*DomainGroup {
	var groups []*DomainGroup

	if h.System != nil {
		system := NewDomainGroup("system", "/system")
		system.GET("/info", h.System.GetSystemInfo)
		groups = append(groups, system)
	}

	if h.PurchaseInvoices != nil {
		invoices := NewDomainGroup("purchase-invoices", "/purchase-invoices")
		invoices.GET("/:id/payment-summary", h.PurchaseInvoices.GetPaymentSummary).
			POST("/:id/credit-note-applications", h.PurchaseInvoices.ApplyCreditNote)
		groups = append(groups, invoices)
	}

	if h.PaymentOrders != nil {
		orders := NewDomainGroup("payment-orders", "/payment-orders")
		orders.POST("", h.PaymentOrders.Create).
			POST("/installments", h.PaymentOrders.GenerateInstallments).
			GET("/:id", h.PaymentOrders.Get).
			POST("/:id/confirm", h.PaymentOrders.Confirm).
			DELETE("/:id", h.PaymentOrders.Delete)
		groups = append(groups, orders)
	}

	if h.Bank != nil {
		accounts := NewDomainGroup("bank-accounts", "/bank-accounts")
		accounts.POST("", h.Bank.CreateAccount).
			GET("/:id", h.Bank.GetAccount).
			POST("/:id/close", h.Bank.CloseAccount).
			POST("/:id/activate", h.Bank.ActivateAccount).
			POST("/:id/deactivate", h.Bank.DeactivateAccount).
			POST("/:id/movements", h.Bank.CreateMovement).
			GET("/:id/movements", h.Bank.ListMovements)

		movements := NewDomainGroup("bank-movements", "/bank-movements")
		movements.POST("/reconcile", h.Bank.ReconcileMovements).
			POST("/:id/reconcile", h.Bank.ReconcileMovement).
			DELETE("/:id", h.Bank.DeleteMovement)
		groups = append(groups, accounts, movements)
	}

	if h.Cash != nil {
		registers := NewDomainGroup("cash-registers", "/cash-registers")
		registers.POST("", h.Cash.CreateRegister).
			POST("/:id/sessions", h.Cash.OpenSession)

		sessions := NewDomainGroup("cash-sessions", "/cash-sessions")
		sessions.POST("/:id/close", h.Cash.CloseSession).
			POST("/:id/movements", h.Cash.AddMovement).
			GET("/:id/movements", h.Cash.ListMovements)

		movements := NewDomainGroup("cash-movements", "/cash-movements")
		movements.DELETE("/:id", h.Cash.DeleteMovement)
		groups = append(groups, registers, sessions, movements)
	}

	if h.Cashflow != nil {
		projections := NewDomainGroup("cashflow-projections", "/cashflow-projections")
		projections.POST("", h.Cashflow.CreateProjection).
			GET("/:id", h.Cashflow.GetProjection).
			POST("/:id/links", h.Cashflow.LinkDocument)

		links := NewDomainGroup("cashflow-projection-links", "/cashflow-projection-links")
		links.DELETE("/:id", h.Cashflow.UnlinkDocument)
		groups = append(groups, projections, links)
	}

	return groups
}
