package data

import (
	"context"
	"time"

	"moviecatalog/internal/conf"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// ProviderSet is data providers.
var ProviderSet = wire.NewSet(
	NewData,
	NewMovieRepo,
	NewEventPublisher,
)

// Data encapsulates the storage connections. db and rdb are nil when the
// memory driver is configured.
type Data struct {
	db  *gorm.DB
	rdb *redis.Client
	log *log.Helper
}

// NewData creates the Data instance. With the memory driver (the default)
// no external connection is opened; with the postgres driver it connects
// the database and, when configured, an optional redis read cache.
func NewData(c *conf.Data, logger log.Logger) (*Data, func(), error) {
	l := log.NewHelper(logger)

	data := &Data{log: l}
	cleanup := func() {
		l.Info("closing data resources")
		if data.rdb != nil {
			if err := data.rdb.Close(); err != nil {
				l.Errorf("failed to close redis: %v", err)
			}
		}
		if data.db != nil {
			if sqlDB, err := data.db.DB(); err == nil {
				if err := sqlDB.Close(); err != nil {
					l.Errorf("failed to close database: %v", err)
				}
			}
		}
	}

	if c.Database.Driver != "postgres" {
		l.Info("using in-memory movie store")
		return data, cleanup, nil
	}

	db, err := gorm.Open(postgres.Open(c.Database.Source), &gorm.Config{})
	if err != nil {
		l.Errorf("failed to connect to database: %v", err)
		return nil, nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		l.Errorf("failed to get database instance: %v", err)
		return nil, nil, err
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&Movie{}); err != nil {
		l.Errorf("failed to migrate schema: %v", err)
		return nil, nil, err
	}
	data.db = db
	l.Info("database connected successfully")

	if c.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:         c.Redis.Addr,
			ReadTimeout:  conf.Duration(c.Redis.ReadTimeout, time.Second),
			WriteTimeout: conf.Duration(c.Redis.WriteTimeout, time.Second),
		})

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := rdb.Ping(ctx).Err(); err != nil {
			l.Warnf("failed to connect to redis: %v", err)
			// Redis is optional, continue without it
		} else {
			data.rdb = rdb
			l.Info("redis connected successfully")
		}
	}

	return data, cleanup, nil
}
