package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-announcements/internal/models"
	"github.com/noah-isme/sma-announcements/internal/repository"
	"github.com/noah-isme/sma-announcements/pkg/config"
	"github.com/noah-isme/sma-announcements/pkg/database"
)

type announcementStore interface {
	List(ctx context.Context) ([]models.Announcement, error)
	GetByID(ctx context.Context, id models.AnnouncementID) (*models.Announcement, error)
	Create(ctx context.Context, announcement *models.Announcement) error
	Update(ctx context.Context, id models.AnnouncementID, changes models.AnnouncementChanges) (*models.Announcement, error)
	Delete(ctx context.Context, id models.AnnouncementID) (int64, error)
	Ping(ctx context.Context) error
}

type teacherStore interface {
	Exists(ctx context.Context, username string) (bool, error)
}

// backend bundles the repositories of the configured store driver.
type backend struct {
	announcements announcementStore
	teachers      teacherStore
	close         func(ctx context.Context)
}

func openBackend(cfg *config.Config, logr *zap.Logger) (*backend, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch cfg.StoreDriver {
	case config.StoreMongo, "":
		client, db, err := database.NewMongo(cfg.Mongo)
		if err != nil {
			return nil, err
		}
		if err := database.EnsureMongoIndexes(ctx, db); err != nil {
			logr.Warn("mongo index setup failed", zap.Error(err))
		}
		return &backend{
			announcements: repository.NewMongoAnnouncementRepository(db),
			teachers:      repository.NewMongoTeacherRepository(db),
			close: func(ctx context.Context) {
				logr.Info("disconnecting MongoDB client")
				if err := client.Disconnect(ctx); err != nil {
					logr.Error("MongoDB disconnect failed", zap.Error(err))
				}
			},
		}, nil
	case config.StorePostgres:
		db, err := database.NewPostgres(cfg.Database)
		if err != nil {
			return nil, err
		}
		if err := database.EnsurePostgresSchema(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
		return &backend{
			announcements: repository.NewSQLAnnouncementRepository(db),
			teachers:      repository.NewSQLTeacherRepository(db),
			close: func(context.Context) {
				logr.Info("closing PostgreSQL pool")
				if err := db.Close(); err != nil {
					logr.Error("PostgreSQL close failed", zap.Error(err))
				}
			},
		}, nil
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
}
