package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"taskmanager/internal/db"
	"taskmanager/internal/logger"
	"taskmanager/internal/migrations"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	apply := flag.Bool("apply", false, "apply migrations")
	flag.Parse()

	_ = godotenv.Load()
	log := logger.Init(os.Getenv("LOG_LEVEL"), false)
	defer logger.Sync()

	if !*apply {
		names, err := migrations.Names()
		if err != nil {
			logger.Fatal("list migrations", zap.Error(err))
		}
		for _, name := range names {
			fmt.Println(name)
		}
		return
	}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		logger.Fatal("DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, dsn, log)
	if err != nil {
		logger.Fatal("connect", zap.Error(err))
	}
	defer pool.Close()

	applied, err := migrations.Apply(ctx, pool)
	if err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}
	for _, name := range applied {
		fmt.Printf("applied %s\n", name)
	}
}
