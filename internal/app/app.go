package app

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/MontelAle/participium-sub002/domain"
	"github.com/MontelAle/participium-sub002/internal/config"
	httpx "github.com/MontelAle/participium-sub002/internal/http"
	"github.com/MontelAle/participium-sub002/internal/http/handlers"
	"github.com/MontelAle/participium-sub002/internal/http/middleware"
	"github.com/MontelAle/participium-sub002/internal/infrastructure/auth"
	"github.com/MontelAle/participium-sub002/internal/infrastructure/database"
	"github.com/MontelAle/participium-sub002/internal/infrastructure/notifications"
	"github.com/MontelAle/participium-sub002/internal/infrastructure/repositories"
	"github.com/MontelAle/participium-sub002/internal/services"
)

// Container holds all wired dependencies.
type Container struct {
	Config *config.Config
	Logger *zap.Logger

	DB          *gorm.DB
	RedisClient *redis.Client

	CodeRepo    domain.VerificationCodeRepository
	UserRepo    domain.UserRepository
	ReportRepo  domain.ReportRepository
	SessionRepo domain.SessionRepository
	LinkRepo    domain.ChatLinkRepository

	Ledger     *services.TokenLedgerImpl
	AccountSvc domain.AccountService
	LinkSvc    domain.ChatLinkService

	tokenSvc domain.TokenService
}

// NewContainer initializes infrastructure, repositories and services.
func NewContainer(cfg *config.Config, logger *zap.Logger) (*Container, error) {
	gdb, err := database.Open(cfg.DSN)
	if err != nil {
		return nil, err
	}
	if err := database.AutoMigrate(gdb); err != nil {
		return nil, err
	}

	rdb := database.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err := rdb.Ping(context.Background()); err != nil {
		return nil, err
	}

	c := &Container{Config: cfg, Logger: logger, DB: gdb, RedisClient: rdb.Client}

	c.CodeRepo = repositories.NewVerificationCodeRepository(gdb)
	c.UserRepo = repositories.NewUserRepository(gdb)
	c.ReportRepo = repositories.NewReportRepository(gdb)
	c.SessionRepo = repositories.NewSessionRepository(rdb.Client, cfg.SessionTTL)
	c.LinkRepo = repositories.NewChatLinkRepository(gdb)

	ledgerCfg := services.DefaultLedgerConfig()
	if cfg.IssueRetries > 0 {
		ledgerCfg.IssueRetries = cfg.IssueRetries
	}
	if cfg.ExpireGrace > 0 {
		ledgerCfg.ExpireGrace = cfg.ExpireGrace
	}
	c.Ledger = services.NewTokenLedger(c.CodeRepo, ledgerCfg, logger)

	passwordSvc := auth.NewPasswordService()
	tokenSvc := auth.NewJWTService(cfg.JWTSecret, cfg.JWTIssuer, cfg.AccessTTL)
	notifier := notifications.NewSMTPService(
		cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom, logger)
	throttle := repositories.NewIssueThrottle(rdb.Client, cfg.ResendWindow)

	c.AccountSvc = services.NewAccountService(
		c.UserRepo, c.SessionRepo, c.Ledger, passwordSvc, tokenSvc, notifier, throttle,
		services.AccountConfig{
			VerificationTTL: cfg.VerificationTTL,
			SessionTTL:      cfg.SessionTTL,
			AccessExpiresIn: int64(cfg.AccessTTL.Seconds()),
		}, logger)
	c.LinkSvc = services.NewChatLinkService(c.Ledger, c.LinkRepo, c.UserRepo,
		services.LinkConfig{LinkTTL: cfg.LinkTTL}, logger)

	c.tokenSvc = tokenSvc
	return c, nil
}

// Close closes all connections.
func (c *Container) Close() error {
	if c.RedisClient != nil {
		c.RedisClient.Close()
	}
	if c.DB != nil {
		sqlDB, err := c.DB.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}
	return nil
}

// Run wires the container and serves HTTP until the listener fails. The
// expiry sweep runs in the background for as long as the process lives.
func Run(cfg *config.Config, logger *zap.Logger) error {
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	c, err := NewContainer(cfg, logger)
	if err != nil {
		return err
	}
	defer c.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go c.Ledger.RunSweeper(ctx, cfg.SweepInterval)

	authH := handlers.NewAuthHandlers(c.AccountSvc, logger)
	linkH := handlers.NewLinkHandlers(c.LinkSvc, logger)
	reportH := handlers.NewReportHandlers(c.ReportRepo, logger)
	userH := handlers.NewUserHandlers(c.UserRepo, logger)
	authMW := middleware.NewAuthMW(c.tokenSvc, c.SessionRepo)

	r := httpx.BuildRouter(authH, linkH, reportH, userH, authMW, logger)

	addr := ":" + cfg.Port
	logger.Info("listening", zap.String("addr", addr))
	return http.ListenAndServe(addr, r)
}
