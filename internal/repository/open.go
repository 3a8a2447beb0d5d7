package repository

import (
	"context"
	"fmt"
	"time"

	"taskmanager/internal/config"
	"taskmanager/internal/db"

	"go.uber.org/zap"
)

// Stores is the pair of stores for the configured driver.
type Stores struct {
	Users  UserStore
	Tasks  TaskStore
	Pinger Pinger
	close  func()
}

func (s *Stores) Close() {
	if s.close != nil {
		s.close()
	}
}

// Open connects the backend selected by cfg.StoreDriver.
func Open(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Stores, error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		pool, err := db.Connect(ctx, cfg.DatabaseURL, log)
		if err != nil {
			return nil, err
		}
		users := NewUserRepository(pool)
		return &Stores{
			Users:  users,
			Tasks:  NewTaskRepository(pool),
			Pinger: users,
			close:  pool.Close,
		}, nil

	case config.DriverMongo:
		client, database, err := db.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDatabase, log)
		if err != nil {
			return nil, err
		}
		if err := EnsureMongoIndexes(ctx, database); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, fmt.Errorf("ensure mongo indexes: %w", err)
		}
		users := NewMongoUserRepository(database)
		return &Stores{
			Users:  users,
			Tasks:  NewMongoTaskRepository(database),
			Pinger: users,
			close: func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = client.Disconnect(ctx)
			},
		}, nil

	case config.DriverMemory:
		log.Warn("using in-memory store, data is lost on restart")
		mem := NewMemoryStore()
		return &Stores{Users: mem.Users(), Tasks: mem.Tasks(), Pinger: mem}, nil

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}
