package main

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"taskmanager/internal/config"
	"taskmanager/internal/domain"
	"taskmanager/internal/logger"
	"taskmanager/internal/repository"
	"taskmanager/internal/service"

	"go.uber.org/zap"
)

// Seeds a Manager account in the configured store (or reuses it) and prints a
// session cookie value for it.
func main() {
	username := flag.String("username", "manager", "manager username")
	password := flag.String("password", "manager", "manager password")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}
	log := logger.Init(cfg.LogLevel, cfg.LogJSON)
	defer logger.Sync()

	ctx := context.Background()
	stores, err := repository.Open(ctx, cfg, log)
	if err != nil {
		logger.Fatal("open store", zap.Error(err))
	}
	defer stores.Close()

	auth := service.NewAuthService(
		stores.Users,
		service.NewPasswordHasher(cfg.BcryptCost),
		service.NewTokenService(cfg.JWTSecret, cfg.SessionTTL),
		log,
	)

	u, err := auth.Register(ctx, service.RegisterInput{
		Username: *username,
		Password: *password,
		Role:     string(domain.RoleManager),
	})
	if he, ok := domain.AsHTTPError(err); ok && he.Message == domain.MsgUserExists {
		logger.Info("user already exists", zap.String("username", *username))
	} else if err != nil {
		logger.Fatal("register", zap.Error(err))
	} else {
		logger.Info("user created", zap.String("id", u.ID))
	}

	u, token, err := auth.Login(ctx, service.LoginInput{Username: *username, Password: *password})
	if err != nil {
		var he *domain.HTTPError
		if errors.As(err, &he) {
			logger.Fatal("login rejected", zap.Int("status", he.Status), zap.String("reason", he.Message))
		}
		logger.Fatal("login", zap.Error(err))
	}
	if u.Role != domain.RoleManager {
		logger.Warn("existing user is not a manager", zap.String("role", string(u.Role)))
	}

	fmt.Printf("%s=%s\n", cfg.CookieName, token)
}
