package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/SyedTahirHussan/codebuff-sub001/internal/clock"
	"github.com/SyedTahirHussan/codebuff-sub001/internal/config"
	consumptiondomain "github.com/SyedTahirHussan/codebuff-sub001/internal/consumption/domain"
	cycledomain "github.com/SyedTahirHussan/codebuff-sub001/internal/cycle/domain"
	delegationdomain "github.com/SyedTahirHussan/codebuff-sub001/internal/delegation/domain"
	grantdomain "github.com/SyedTahirHussan/codebuff-sub001/internal/grant/domain"
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Config        config.Config
	Log           *zap.Logger
	Clock         clock.Clock
	GrantSvc      grantdomain.Service
	ConsumeSvc    consumptiondomain.Service
	CycleSvc      cycledomain.Service
	DelegationSvc delegationdomain.Service
}

type Server struct {
	engine *gin.Engine
	cfg    config.Config
	log    *zap.Logger

	clock         clock.Clock
	grantSvc      grantdomain.Service
	consumeSvc    consumptiondomain.Service
	cycleSvc      cycledomain.Service
	delegationSvc delegationdomain.Service
}

func NewEngine(cfg config.Config, log *zap.Logger) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(log))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return r
}

func NewServer(p Params, engine *gin.Engine) *Server {
	s := &Server{
		engine: engine,
		cfg:    p.Config,
		log:    p.Log.Named("server"),

		clock:         p.Clock,
		grantSvc:      p.GrantSvc,
		consumeSvc:    p.ConsumeSvc,
		cycleSvc:      p.CycleSvc,
		delegationSvc: p.DelegationSvc,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	v1 := s.engine.Group("/v1")

	v1.POST("/grants", s.CreateGrant)
	v1.GET("/grants/:operation_id", s.GetGrant)
	v1.POST("/grants/:operation_id/revoke", s.RevokeGrant)

	v1.GET("/owners/:owner_id/balance", s.GetBalance)
	v1.POST("/owners/:owner_id/consume", s.Consume)
	v1.GET("/owners/:owner_id/usage", s.ListUsage)

	v1.POST("/consume/delegated", s.ConsumeDelegated)

	v1.POST("/users/:user_id/quota-reset", s.TriggerReset)
}

func run(lc fx.Lifecycle, s *Server) {
	srv := &http.Server{
		Addr:              s.cfg.HTTPAddr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				s.log.Info("http server listening", zap.String("addr", s.cfg.HTTPAddr))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					s.log.Error("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}

var Module = fx.Module("http.server",
	fx.Provide(
		NewEngine,
		NewServer,
	),
	fx.Invoke(run),
)
