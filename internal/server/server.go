package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/agrimarket/internal/auth"
	"github.com/smallbiznis/agrimarket/internal/authorization"
	"github.com/smallbiznis/agrimarket/internal/booking"
	bookingdomain "github.com/smallbiznis/agrimarket/internal/booking/domain"
	"github.com/smallbiznis/agrimarket/internal/bulkpurchase"
	bulkdomain "github.com/smallbiznis/agrimarket/internal/bulkpurchase/domain"
	"github.com/smallbiznis/agrimarket/internal/config"
	"github.com/smallbiznis/agrimarket/internal/dashboard"
	dashboarddomain "github.com/smallbiznis/agrimarket/internal/dashboard/domain"
	"github.com/smallbiznis/agrimarket/internal/farmer"
	farmerdomain "github.com/smallbiznis/agrimarket/internal/farmer/domain"
	"github.com/smallbiznis/agrimarket/internal/listing"
	listingdomain "github.com/smallbiznis/agrimarket/internal/listing/domain"
	obslogger "github.com/smallbiznis/agrimarket/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/agrimarket/internal/observability/metrics"
	obstracing "github.com/smallbiznis/agrimarket/internal/observability/tracing"
	"github.com/smallbiznis/agrimarket/internal/panchayat"
	panchayatdomain "github.com/smallbiznis/agrimarket/internal/panchayat/domain"
	"github.com/smallbiznis/agrimarket/internal/payment"
	paymentdomain "github.com/smallbiznis/agrimarket/internal/payment/domain"
	"github.com/smallbiznis/agrimarket/internal/ratelimit"
	"github.com/smallbiznis/agrimarket/internal/statement"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const defaultHTTPAddr = ":8080"

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	auth.Module,
	authorization.Module,
	ratelimit.Module,
	panchayat.Module,
	farmer.Module,
	listing.Module,
	payment.Module,
	bulkpurchase.Module,
	booking.Module,
	dashboard.Module,
	statement.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(obslogger.MiddlewareConfig{
		Base:            log,
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(httpMetrics.Middleware())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(cfg config.Config, log *zap.Logger, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	return NewEngine(log, httpMetrics)
}

func run(lc fx.Lifecycle, cfg config.Config, log *zap.Logger, r *gin.Engine) {
	addr := cfg.HTTPAddr
	if addr == "" {
		addr = defaultHTTPAddr
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", addr))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatal("http server stopped", zap.Error(err))
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
	engine       *gin.Engine
	log          *zap.Logger
	tokens       *auth.TokenService
	panchayatSvc panchayatdomain.Service
	farmerSvc    farmerdomain.Service
	listingSvc   listingdomain.Service
	bulkSvc      bulkdomain.Service
	paymentSvc   paymentdomain.Service
	bookingSvc   bookingdomain.Service
	dashboardSvc dashboarddomain.Service
	statementSvc statement.Service
}

type ServerParams struct {
	fx.In

	Gin          *gin.Engine
	Log          *zap.Logger
	Tokens       *auth.TokenService
	PanchayatSvc panchayatdomain.Service
	FarmerSvc    farmerdomain.Service
	ListingSvc   listingdomain.Service
	BulkSvc      bulkdomain.Service
	PaymentSvc   paymentdomain.Service
	BookingSvc   bookingdomain.Service
	DashboardSvc dashboarddomain.Service
	StatementSvc statement.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:       p.Gin,
		log:          p.Log.Named("http.server"),
		tokens:       p.Tokens,
		panchayatSvc: p.PanchayatSvc,
		farmerSvc:    p.FarmerSvc,
		listingSvc:   p.ListingSvc,
		bulkSvc:      p.BulkSvc,
		paymentSvc:   p.PaymentSvc,
		bookingSvc:   p.BookingSvc,
		dashboardSvc: p.DashboardSvc,
		statementSvc: p.StatementSvc,
	}

	svc.registerAPIRoutes()
	svc.registerFallback()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api", s.AuthRequired())

	// -------- Panchayats --------
	api.POST("/panchayats", s.CreatePanchayat)
	api.GET("/panchayats", s.ListPanchayats)
	api.GET("/panchayats/:id", s.GetPanchayatByID)

	// -------- Farmers --------
	api.POST("/farmers/me", s.RegisterFarmer)
	api.GET("/farmers/me", s.GetFarmerProfile)

	// -------- Listings --------
	api.POST("/listings", s.CreateListing)
	api.GET("/listings", s.ListListings)
	api.GET("/listings/:id", s.GetListingByID)
	api.POST("/listings/:id/withdraw", s.WithdrawListing)

	// -------- Bulk purchases --------
	api.POST("/bulk-purchases", s.CreateBulkPurchase)
	api.GET("/bulk-purchases/:id", s.GetBulkPurchaseByID)

	// -------- Payments --------
	api.GET("/farmer/payments", s.ListFarmerPayments)
	api.GET("/farmer/payments/statement.xlsx", s.DownloadFarmerStatement)
	api.POST("/payments/:id/mark-paid", s.MarkPaymentPaid)
	api.POST("/payments/:id/mark-failed", s.MarkPaymentFailed)

	// -------- Bookings --------
	api.POST("/bookings/quote", s.QuoteBooking)
	api.POST("/bookings", s.CreateBooking)
	api.GET("/bookings", s.ListBookings)
	api.POST("/bookings/:id/status", s.UpdateBookingStatus)

	// -------- Dashboard --------
	api.GET("/farmer/dashboard", s.GetFarmerDashboard)
}

func (s *Server) registerFallback() {
	s.engine.NoRoute(func(c *gin.Context) {
		AbortWithError(c, ErrNotFound)
	})
}
