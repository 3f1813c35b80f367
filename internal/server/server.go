package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vitalpath/vitalpath/internal/auth"
	catalogdomain "github.com/vitalpath/vitalpath/internal/catalog/domain"
	checkoutdomain "github.com/vitalpath/vitalpath/internal/checkout/domain"
	"github.com/vitalpath/vitalpath/internal/config"
	confirmationdomain "github.com/vitalpath/vitalpath/internal/confirmation/domain"
	guestsessiondomain "github.com/vitalpath/vitalpath/internal/guestsession/domain"
	"github.com/vitalpath/vitalpath/internal/providers/pdf"
	purchasedomain "github.com/vitalpath/vitalpath/internal/purchase/domain"
	"github.com/vitalpath/vitalpath/internal/ratelimit"
	reconciledomain "github.com/vitalpath/vitalpath/internal/reconcile/domain"
	userdomain "github.com/vitalpath/vitalpath/internal/user/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(cfg config.Config, log *zap.Logger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(log))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(cfg config.Config, log *zap.Logger) *gin.Engine {
	return NewEngine(cfg, log)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", srv.Addr))
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine          *gin.Engine
	cfg             config.Config
	log             *zap.Logger
	verifier        *auth.Verifier
	catalogSvc      catalogdomain.Service
	checkoutSvc     checkoutdomain.Service
	confirmationSvc confirmationdomain.Service
	guestSvc        guestsessiondomain.Service
	purchaseSvc     purchasedomain.Service
	userSvc         userdomain.Service
	reconcileSvc    reconciledomain.Service
	receipts        pdf.Provider
	checkoutLimiter *ratelimit.CheckoutLimiter
}

type ServerParams struct {
	fx.In

	Gin             *gin.Engine
	Cfg             config.Config
	Log             *zap.Logger
	Verifier        *auth.Verifier
	CatalogSvc      catalogdomain.Service
	CheckoutSvc     checkoutdomain.Service
	ConfirmationSvc confirmationdomain.Service
	GuestSvc        guestsessiondomain.Service
	PurchaseSvc     purchasedomain.Service
	UserSvc         userdomain.Service
	ReconcileSvc    reconciledomain.Service
	Receipts        pdf.Provider
	CheckoutLimiter *ratelimit.CheckoutLimiter `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:          p.Gin,
		cfg:             p.Cfg,
		log:             p.Log.Named("http.server"),
		verifier:        p.Verifier,
		catalogSvc:      p.CatalogSvc,
		checkoutSvc:     p.CheckoutSvc,
		confirmationSvc: p.ConfirmationSvc,
		guestSvc:        p.GuestSvc,
		purchaseSvc:     p.PurchaseSvc,
		userSvc:         p.UserSvc,
		reconcileSvc:    p.ReconcileSvc,
		receipts:        p.Receipts,
		checkoutLimiter: p.CheckoutLimiter,
	}

	svc.registerAPIRoutes()
	svc.registerAdminRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")
	api.Use(s.VisitorCookie())

	// -------- Catalog --------
	api.GET("/catalog/products", s.ListProducts)
	api.GET("/catalog/products/:slug", s.GetProductBySlug)

	// -------- Checkout --------
	api.POST("/checkout", s.AuthOptional(), s.CheckoutRateLimit(), s.InitiateCheckout)
	api.GET("/checkout/confirm", s.ConfirmCheckout)

	// -------- Guest sessions --------
	api.GET("/guest/session", s.GetGuestSession)
	api.GET("/guest/history", s.GetGuestHistory)
	api.POST("/guest/reconcile", s.AuthRequired(), s.ReconcileGuest)

	// -------- Purchases --------
	api.GET("/purchases", s.AuthRequired(), s.ListPurchases)
	api.GET("/purchases/:id/receipt", s.AuthRequired(), s.GetPurchaseReceipt)
	api.GET("/me", s.AuthRequired(), s.GetMe)
}

func (s *Server) registerAdminRoutes() {
	admin := s.engine.Group("/api/admin")
	admin.Use(s.AuthRequired(), s.AdminRequired())

	admin.POST("/products", s.CreateProduct)
}
