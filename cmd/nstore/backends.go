package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"nstore-backend/auth"
	"nstore-backend/config"
	"nstore-backend/gateway"
)

type authService interface {
	auth.Service
	Close() error
}

// backends are the remote collaborators selected by DATA_DRIVER and
// STORAGE_DRIVER.
type backends struct {
	products gateway.ProductStore
	images   gateway.ImageStore
	auth     authService
	mongo    *auth.MongoService
	ping     func(ctx context.Context) error
	closers  []func(ctx context.Context) error
}

func openBackends(ctx context.Context, cfg *config.AppConfig, log *slog.Logger) (*backends, error) {
	tokens, err := auth.NewTokens([]byte(cfg.PasetoSecretKey), auth.DefaultSessionTTL)
	if err != nil {
		return nil, err
	}

	b := &backends{}
	switch cfg.DataDriver {
	case config.DataDriverMongo:
		client, err := config.ConnectDB(ctx, cfg.MongoURI(), cfg.MongoMode)
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, client.Disconnect)
		db := client.Database(cfg.MongoDatabase)

		products := gateway.NewMongoProducts(db)
		if err := products.EnsureIndexes(ctx); err != nil {
			b.close(context.Background())
			return nil, fmt.Errorf("product indexes: %w", err)
		}
		svc := auth.NewMongoService(db, cfg.AuthClientID, tokens, log)
		if err := svc.EnsureIndexes(ctx); err != nil {
			b.close(context.Background())
			return nil, fmt.Errorf("admin indexes: %w", err)
		}

		b.products = products
		b.auth = svc
		b.mongo = svc
		b.ping = func(ctx context.Context) error { return client.Ping(ctx, nil) }

	default:
		svc, err := auth.NewMemoryService(tokens, cfg.AdminEmail, cfg.AdminPassword)
		if err != nil {
			return nil, err
		}
		b.products = gateway.NewMemoryProducts(gateway.DemoCatalog(time.Now())...)
		b.auth = svc
		log.Warn("using in-memory data driver; changes are lost on restart", "admin_email", cfg.AdminEmail)
	}
	b.closers = append([]func(context.Context) error{func(context.Context) error { return b.auth.Close() }}, b.closers...)

	images, err := gateway.NewImageStore(ctx, gateway.ImageStoreConfig{
		Driver:        cfg.StorageDriver,
		CloudinaryURL: cfg.CloudinaryURL,
		S3: gateway.S3Config{
			Region:        cfg.S3Region,
			Bucket:        cfg.S3Bucket,
			PublicBaseURL: cfg.S3PublicBaseURL,
		},
		LocalDir:       cfg.LocalUploadDir,
		LocalURLPrefix: cfg.LocalUploadURLPrefix,
	})
	if err != nil {
		b.close(context.Background())
		return nil, err
	}
	b.images = images
	log.Info("backends ready", "data", cfg.DataDriver, "storage", fmt.Sprint(images))
	return b, nil
}

func (b *backends) close(ctx context.Context) error {
	var errs []error
	for _, fn := range b.closers {
		if err := fn(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
