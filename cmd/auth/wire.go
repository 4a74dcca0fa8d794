package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/Miraines/MoonyAndStarry/account-service/internal/adapters/db/memory"
	pgrepo "github.com/Miraines/MoonyAndStarry/account-service/internal/adapters/db/postgres"
	redisstore "github.com/Miraines/MoonyAndStarry/account-service/internal/adapters/db/redis"
	"github.com/Miraines/MoonyAndStarry/account-service/internal/adapters/mail/smtp"
	"github.com/Miraines/MoonyAndStarry/account-service/internal/app/auth/jwt"
	"github.com/Miraines/MoonyAndStarry/account-service/internal/app/auth/password"
	authsvc "github.com/Miraines/MoonyAndStarry/account-service/internal/app/auth/service"
	mailsvc "github.com/Miraines/MoonyAndStarry/account-service/internal/app/mail/service"
	usersvc "github.com/Miraines/MoonyAndStarry/account-service/internal/app/user/service"
	"github.com/Miraines/MoonyAndStarry/account-service/internal/domain/auth/repo"
	"github.com/Miraines/MoonyAndStarry/account-service/internal/domain/mail"
	"github.com/Miraines/MoonyAndStarry/account-service/internal/infra/config"
	lg "github.com/Miraines/MoonyAndStarry/account-service/internal/infra/log"
)

type app struct {
	cfg      *config.Config
	log      *zap.Logger
	sqlDB    *sql.DB
	userRepo *pgrepo.PostgresUserRepo
	store    repo.SessionStore
	mailer   *mailsvc.Mailer
	auth     authsvc.Service
	users    usersvc.Service

	closers []func() error
}

func build(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := lg.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	a := &app{cfg: cfg, log: logger}
	a.closers = append(a.closers, func() error { _ = logger.Sync(); return nil })

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{TranslateError: true})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if a.sqlDB, err = db.DB(); err != nil {
		a.Close()
		return nil, fmt.Errorf("database handle: %w", err)
	}
	a.closers = append(a.closers, a.sqlDB.Close)
	a.userRepo = pgrepo.NewPostgresUserRepo(db)

	if a.store, err = a.openStore(ctx); err != nil {
		a.Close()
		return nil, err
	}

	var sender mail.Sender
	if cfg.SMTPHost != "" {
		sender = smtp.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.MailFrom)
	} else {
		logger.Warn("SMTP_HOST is not set, outgoing mail is only logged")
		sender = smtp.NewLogSender(logger)
	}
	if a.mailer, err = mailsvc.NewMailer(sender, logger); err != nil {
		a.Close()
		return nil, fmt.Errorf("load mail templates: %w", err)
	}

	jwtUtil, err := jwt.NewJWTUtil(cfg)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("init JWT util: %w", err)
	}
	hasher := password.NewHasher(cfg.BcryptCost, cfg.PasswordPepper)

	a.auth = authsvc.New(a.userRepo, a.store, jwtUtil, hasher, a.mailer)
	a.users = usersvc.New(a.userRepo, a.store, hasher, jwtUtil.RefreshTTL())
	return a, nil
}

func (a *app) openStore(ctx context.Context) (repo.SessionStore, error) {
	if a.cfg.SessionStore == config.SessionStoreMemory {
		a.log.Info("using in-memory session store", zap.Int("size", a.cfg.MemoryStoreSize))
		st, err := memory.NewMemorySessionStore(a.cfg.MemoryStoreSize)
		if err != nil {
			return nil, fmt.Errorf("memory session store: %w", err)
		}
		return st, nil
	}

	cli := redis.NewClient(&redis.Options{
		Addr:     a.cfg.RedisAddress,
		Password: a.cfg.RedisPassword,
		DB:       a.cfg.RedisDB,
	})
	a.closers = append(a.closers, cli.Close)
	st := redisstore.NewRedisSessionStore(cli)
	if err := st.Ping(ctx); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return st, nil
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && a.log != nil {
			a.log.Warn("close", zap.Error(err))
		}
	}
}
