package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(engine *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestNewRouter(t *testing.T) {
	r := NewRouter(gin.New())

	assert.NotNil(t, r)
	assert.Equal(t, "v1", r.apiVersion)
	assert.Empty(t, r.registrars)
	assert.Empty(t, r.middleware)
}

func TestRouterWithAPIVersion(t *testing.T) {
	r := NewRouter(gin.New(), WithAPIVersion("v2"))

	assert.Equal(t, "v2", r.apiVersion)
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine, WithAPIVersion("v1"))

	group := NewDomainGroup("bank-accounts", "/bank-accounts")
	group.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
	r.Register(group)
	require.Len(t, r.registrars, 1)
	r.Setup()

	w := serve(engine, http.MethodGet, "/api/v1/bank-accounts/ping")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
}

func TestRouterUse(t *testing.T) {
	engine := gin.New()
	engine.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	var calls int
	r := NewRouter(engine).Use(func(c *gin.Context) {
		calls++
		c.Header("X-Api-Middleware", "applied")
		c.Next()
	})
	r.Register(NewDomainGroup("cash-registers", "/cash-registers").
		GET("", func(c *gin.Context) { c.Status(http.StatusOK) }))
	r.Setup()

	w := serve(engine, http.MethodGet, "/api/v1/cash-registers")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "applied", w.Header().Get("X-Api-Middleware"))

	w = serve(engine, http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("X-Api-Middleware"))
	assert.Equal(t, 1, calls)
}

func TestDomainGroup(t *testing.T) {
	t.Run("name and prefix", func(t *testing.T) {
		g := NewDomainGroup("cashflow-projections", "/cashflow-projections")
		assert.Equal(t, "cashflow-projections", g.Name())
		assert.Equal(t, "/cashflow-projections", g.Prefix())
	})

	methods := []struct {
		name   string
		method string
		status int
		add    func(g *DomainGroup, h gin.HandlerFunc)
	}{
		{"GET", http.MethodGet, http.StatusOK, func(g *DomainGroup, h gin.HandlerFunc) { g.GET("/:id", h) }},
		{"POST", http.MethodPost, http.StatusCreated, func(g *DomainGroup, h gin.HandlerFunc) { g.POST("/:id", h) }},
		{"DELETE", http.MethodDelete, http.StatusNoContent, func(g *DomainGroup, h gin.HandlerFunc) { g.DELETE("/:id", h) }},
	}
	for _, m := range methods {
		t.Run("registers "+m.name+" route", func(t *testing.T) {
			engine := gin.New()
			g := NewDomainGroup("bank-movements", "/bank-movements")
			m.add(g, func(c *gin.Context) {
				assert.Equal(t, "123", c.Param("id"))
				c.Status(m.status)
			})
			g.RegisterRoutes(engine.Group("/api/v1"))

			w := serve(engine, m.method, "/api/v1/bank-movements/123")
			assert.Equal(t, m.status, w.Code)
		})
	}

	t.Run("applies group middleware", func(t *testing.T) {
		engine := gin.New()
		g := NewDomainGroup("cash-sessions", "/cash-sessions")
		g.Use(func(c *gin.Context) {
			c.Header("X-Group-Middleware", "applied")
			c.Next()
		})
		g.GET("/:id/movements", func(c *gin.Context) { c.Status(http.StatusOK) })
		g.RegisterRoutes(engine.Group("/api/v1"))

		w := serve(engine, http.MethodGet, "/api/v1/cash-sessions/1/movements")
		assert.Equal(t, "applied", w.Header().Get("X-Group-Middleware"))
	})
}

func TestChainedMethodCalls(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	g := NewDomainGroup("payment-orders", "/payment-orders")
	g.GET("/a", func(c *gin.Context) { c.Status(http.StatusOK) }).
		POST("/b", func(c *gin.Context) { c.Status(http.StatusOK) }).
		DELETE("/c", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.Register(g).Setup()

	for _, tt := range []struct{ method, path string }{
		{http.MethodGet, "/api/v1/payment-orders/a"},
		{http.MethodPost, "/api/v1/payment-orders/b"},
		{http.MethodDelete, "/api/v1/payment-orders/c"},
	} {
		w := serve(engine, tt.method, tt.path)
		assert.Equal(t, http.StatusOK, w.Code, "route %s %s", tt.method, tt.path)
	}
}

func TestTreasuryRoutes_SkipsNilHandlers(t *testing.T) {
	assert.Empty(t, TreasuryRoutes(Handlers{}))
}

func TestRouterRoutes(t *testing.T) {
	engine := gin.New()
	engine.GET("/health", func(c *gin.Context) {})
	r := NewRouter(engine)
	r.Register(NewDomainGroup("bank-movements", "/bank-movements").
		POST("/reconcile", func(c *gin.Context) {}).
		DELETE("/:id", func(c *gin.Context) {}))
	r.Setup()

	assert.Equal(t, []string{
		"DELETE /api/v1/bank-movements/:id",
		"GET /health",
		"POST /api/v1/bank-movements/reconcile",
	}, r.Routes())
}
