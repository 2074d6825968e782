package router

import (
	"time"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/lechug1122/LuisITRepair/internal/config"
	"github.com/lechug1122/LuisITRepair/internal/handler"
	"github.com/lechug1122/LuisITRepair/internal/middleware"
	"github.com/lechug1122/LuisITRepair/internal/repository"
	"github.com/lechug1122/LuisITRepair/internal/service"
	"github.com/lechug1122/LuisITRepair/internal/worker"
)

// New wires all dependencies and returns a configured Gin engine plus the
// cash service the sweeper goroutine runs against.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) (*gin.Engine, service.CashService) {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.CORSAllowedOrigin))
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	recordRepo := repository.NewServiceRecordRepository(db)
	folioRepo := repository.NewFolioRepository(db)
	saleRepo := repository.NewSaleRepository(db)
	reportRepo := repository.NewCashReportRepository(db)
	expenseRepo := repository.NewExpenseRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	dispatcher := worker.NewDispatcher(rdb)

	intakeSvc := service.NewIntakeService(recordRepo, folioRepo)
	recordSvc := service.NewRecordService(recordRepo, saleRepo, dispatcher)
	cashSvc := service.NewCashService(reportRepo, saleRepo, expenseRepo, rdb)
	saleSvc := service.NewSaleService(saleRepo, intakeSvc, recordSvc, cashSvc, dispatcher,
		decimal.NewFromFloat(cfg.TaxRatePct))

	// ── Handlers ─────────────────────────────────────────────────────────────
	servicesH := handler.NewServicesHandler(intakeSvc, recordSvc)
	salesH := handler.NewSalesHandler(saleSvc)
	registerH := handler.NewRegisterHandler(cashSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	anyStaff := middleware.RequireRole(middleware.RoleOperator, middleware.RoleSupervisor, middleware.RoleAdmin)
	supervisorUp := middleware.RequireRole(middleware.RoleSupervisor, middleware.RoleAdmin)

	v1 := r.Group("/v1", jwtMW)
	{
		services := v1.Group("/services", anyStaff)
		{
			services.POST("", servicesH.Create)
			services.GET("/pending", servicesH.ListPending)
			services.GET("/history", servicesH.ListHistory)
			services.GET("/folio/:folio", servicesH.LookupByFolio)
			services.GET("/:id", servicesH.Get)
			services.PATCH("/:id", servicesH.Update)
		}

		sales := v1.Group("/sales", anyStaff)
		{
			sales.POST("", salesH.Checkout)
			sales.GET("", salesH.ListByDay)
			sales.GET("/:id", salesH.Get)
		}

		register := v1.Group("/register")
		{
			register.POST("/open", anyStaff, registerH.Open)
			register.POST("/close", supervisorUp, registerH.Close)
			register.GET("/today", anyStaff, registerH.Today)
			register.GET("/reports", supervisorUp, registerH.Reports)
			register.POST("/expenses", anyStaff, registerH.AddExpense)
			register.GET("/expenses", anyStaff, registerH.ListExpenses)
			register.DELETE("/expenses/:id", supervisorUp, registerH.RemoveExpense)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r, cashSvc
}
