package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/vivendahq/vivenda/internal/auth"
	authdomain "github.com/vivendahq/vivenda/internal/auth/domain"
	"github.com/vivendahq/vivenda/internal/billing"
	billingdomain "github.com/vivendahq/vivenda/internal/billing/domain"
	"github.com/vivendahq/vivenda/internal/category"
	categorydomain "github.com/vivendahq/vivenda/internal/category/domain"
	"github.com/vivendahq/vivenda/internal/chat"
	chatdomain "github.com/vivendahq/vivenda/internal/chat/domain"
	"github.com/vivendahq/vivenda/internal/config"
	"github.com/vivendahq/vivenda/internal/contract"
	contractdomain "github.com/vivendahq/vivenda/internal/contract/domain"
	"github.com/vivendahq/vivenda/internal/property"
	propertydomain "github.com/vivendahq/vivenda/internal/property/domain"
	"github.com/vivendahq/vivenda/internal/sale"
	saledomain "github.com/vivendahq/vivenda/internal/sale/domain"
	"github.com/vivendahq/vivenda/internal/user"
	userdomain "github.com/vivendahq/vivenda/internal/user/domain"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	auth.Module,
	user.Module,
	category.Module,
	property.Module,
	contract.Module,
	sale.Module,
	billing.Module,
	chat.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(RequestLogMiddleware(log))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(log *zap.Logger) *gin.Engine {
	return NewEngine(log)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
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
	engine      *gin.Engine
	cfg         config.Config
	db          *gorm.DB
	genID       *snowflake.Node
	authSvc     authdomain.Service
	userSvc     userdomain.Service
	categorySvc categorydomain.Service
	propertySvc propertydomain.Service
	contractSvc contractdomain.Service
	saleSvc     saledomain.Service
	billingSvc  billingdomain.Service
	chatSvc     chatdomain.Service
}

type ServerParams struct {
	fx.In

	Gin         *gin.Engine
	Cfg         config.Config
	DB          *gorm.DB
	GenID       *snowflake.Node
	AuthSvc     authdomain.Service
	UserSvc     userdomain.Service
	CategorySvc categorydomain.Service
	PropertySvc propertydomain.Service
	ContractSvc contractdomain.Service
	SaleSvc     saledomain.Service
	BillingSvc  billingdomain.Service
	ChatSvc     chatdomain.Service
}

func NewServer(p ServerParams) *Server {
	s := &Server{
		engine:      p.Gin,
		cfg:         p.Cfg,
		db:          p.DB,
		genID:       p.GenID,
		authSvc:     p.AuthSvc,
		userSvc:     p.UserSvc,
		categorySvc: p.CategorySvc,
		propertySvc: p.PropertySvc,
		contractSvc: p.ContractSvc,
		saleSvc:     p.SaleSvc,
		billingSvc:  p.BillingSvc,
		chatSvc:     p.ChatSvc,
	}

	s.registerAuthRoutes()
	s.registerPublicRoutes()
	s.registerAPIRoutes()

	return s
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAuthRoutes() {
	auth := s.engine.Group("/auth")

	auth.POST("/login", s.Login)
	auth.POST("/register", s.Register)
	auth.GET("/me", s.AuthRequired(), s.Me)
}

// registerPublicRoutes exposes the browse surface: no token required.
func (s *Server) registerPublicRoutes() {
	api := s.engine.Group("/api")

	api.GET("/categories", s.ListCategories)
	api.GET("/properties", s.ListProperties)
	api.GET("/properties/featured", s.ListFeaturedProperties)
	api.GET("/properties/filtered", s.ListProperties)
	api.GET("/properties/owner/:id", s.ListPropertiesByOwner)
	api.GET("/properties/:id", s.GetPropertyByID)
	api.GET("/properties/:id/images", s.ListPropertyImages)
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api", s.AuthRequired())

	api.GET("/users", s.ListUsers)

	api.POST("/categories", s.AdminRequired(), s.CreateCategory)

	// -------- Properties --------
	api.POST("/properties", s.CreateProperty)
	api.PUT("/properties/:id", s.UpdateProperty)
	api.DELETE("/properties/:id", s.DeleteProperty)
	api.POST("/properties/:id/images", s.AddPropertyImage)
	api.DELETE("/property-images/:id", s.DeletePropertyImage)

	// -------- Contracts --------
	api.GET("/contracts", s.ListContracts)
	api.POST("/contracts", s.CreateContract)
	api.GET("/contracts/:id", s.GetContractByID)
	api.PUT("/contracts/:id", s.UpdateContract)
	api.DELETE("/contracts/:id", s.DeleteContract)
	api.GET("/contracts/property/:propertyId", s.ListContractsByProperty)

	// -------- Sales --------
	api.GET("/sales", s.ListSales)
	api.POST("/sales", s.CreateSale)
	api.GET("/sales/:id", s.GetSaleByID)
	api.DELETE("/sales/:id", s.DeleteSale)

	// -------- Bills & Payments --------
	api.GET("/bills", s.ListBills)
	api.POST("/bills", s.CreateBill)
	api.GET("/bills/:id", s.GetBillByID)
	api.GET("/payments", s.ListPayments)
	api.POST("/payments", s.RecordPayment)

	// -------- Chat --------
	api.POST("/conversations/open", s.OpenConversation)
	api.GET("/conversations", s.ListConversations)
	api.GET("/conversations/:id/messages", s.ListConversationMessages)
	api.POST("/messages", s.SendMessage)
}

func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}

func RequestLogMiddleware(log *zap.Logger) gin.HandlerFunc {
	log = log.Named("http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("request_id", c.GetString("request_id")),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("error", c.Errors.Last().Error()))
		}
		switch {
		case c.Writer.Status() >= http.StatusInternalServerError:
			log.Error("request", fields...)
		case c.Writer.Status() >= http.StatusBadRequest:
			log.Warn("request", fields...)
		default:
			log.Info("request", fields...)
		}
	}
}
