package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	redisclient "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	mongodriver "go.mongodb.org/mongo-driver/mongo"

	"github.com/pixelforge/storefront/internal/api/handler"
	"github.com/pixelforge/storefront/internal/core/ports"
	"github.com/pixelforge/storefront/internal/core/service"
	"github.com/pixelforge/storefront/internal/infrastructure/db/mongo"
	"github.com/pixelforge/storefront/internal/infrastructure/db/redis"
	"github.com/pixelforge/storefront/internal/infrastructure/notify"
	"github.com/pixelforge/storefront/internal/infrastructure/queue"
	"github.com/pixelforge/storefront/internal/infrastructure/storage"
	"github.com/pixelforge/storefront/internal/pkg/config"
)

const localUploadURL = "/uploads"

// app holds the wired services and the resources that must be closed on
// shutdown, in reverse order of acquisition.
type app struct {
	cfg        *config.Config
	log        zerolog.Logger
	mongo      *mongodriver.Client
	redis      *redisclient.Client
	dispatcher *queue.Dispatcher
	uploadDir  string

	auth       *service.AuthService
	users      *service.UserService
	categories *service.CategoryService
	products   *service.ProductService
	inquiries  *service.InquiryService

	closers []func() error
}

func newApp(ctx context.Context, cfg *config.Config, log zerolog.Logger) (_ *app, err error) {
	a := &app{cfg: cfg, log: log}
	defer func() {
		if err != nil {
			a.close()
		}
	}()

	client, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return nil, err
	}
	a.mongo = client
	a.closers = append(a.closers, func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return client.Disconnect(ctx)
	})
	if err := mongo.EnsureIndexes(ctx, db); err != nil {
		return nil, err
	}

	var dedup queue.Deduper
	if cfg.Redis.Addr != "" {
		rdb, err := redis.Connect(ctx, redis.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err != nil {
			return nil, err
		}
		a.redis = rdb
		a.closers = append(a.closers, rdb.Close)
		dedup = redis.NewNotificationDedup(rdb, cfg.Notify.DedupTTL)
	}

	sink, err := a.eventSink(db)
	if err != nil {
		return nil, err
	}

	images, err := a.imageStore(ctx)
	if err != nil {
		return nil, err
	}

	a.dispatcher = queue.NewDispatcher(sink, dedup, queue.Options{Workers: cfg.Notify.Workers}, log.With().Str("component", "notifications").Logger())

	clock := service.SystemClock{}
	userRepo := mongo.NewUserRepository(db)
	categoryRepo := mongo.NewCategoryRepository(db)
	productRepo := mongo.NewProductRepository(db)

	tokens := service.NewTokenService(cfg.JWTSecret, cfg.TokenTTL, clock)
	hasher := service.NewPasswordHasher(cfg.Auth.BcryptCost)

	a.auth = service.NewAuthService(userRepo, hasher, tokens, a.dispatcher, clock,
		service.AuthOptions{MinPasswordLength: cfg.Auth.PasswordMinLength}, log)
	a.users = service.NewUserService(userRepo)
	a.categories = service.NewCategoryService(categoryRepo, clock, log)

	policy := service.DefaultImagePolicy()
	policy.MaxBytes = cfg.Images.MaxBytes
	if len(cfg.Images.AllowedExtensions) > 0 {
		policy.Extensions = cfg.Images.AllowedExtensions
	}
	a.products = service.NewProductService(productRepo, a.categories, images, a.dispatcher, clock,
		service.ProductOptions{AdminEmail: cfg.AdminEmail, Images: policy}, log)
	a.inquiries = service.NewInquiryService(a.dispatcher, clock, cfg.AdminEmail, log)

	return a, nil
}

// eventSink picks the notification channel. Without NOTIFY_SINK, RabbitMQ
// is used when configured and the notifications collection otherwise.
func (a *app) eventSink(db *mongodriver.Database) (ports.EventSink, error) {
	sink := a.cfg.Notify.Sink
	if sink == "" {
		sink = "mongo"
		if a.cfg.Notify.AMQPURL != "" {
			sink = "amqp"
		}
	}
	switch sink {
	case "log":
		return notify.NewLogSink(a.log.With().Str("component", "notifications").Logger()), nil
	case "mongo":
		a.log.Info().Msg("notifications are recorded in the database")
		return mongo.NewNotificationLog(db), nil
	}
	return a.amqpSink()
}

func (a *app) amqpSink() (ports.EventSink, error) {
	sink, err := notify.NewAMQPSink(notify.AMQPConfig{URL: a.cfg.Notify.AMQPURL, Queue: a.cfg.Notify.Queue})
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, sink.Close)
	return sink, nil
}

// imageStore picks MinIO when configured, otherwise the local upload dir.
func (a *app) imageStore(ctx context.Context) (ports.ImageStore, error) {
	m := a.cfg.Minio
	if m.Endpoint == "" {
		store, err := storage.NewLocalStore(a.cfg.Images.UploadDir, localUploadURL)
		if err != nil {
			return nil, err
		}
		a.uploadDir = store.Root()
		return store, nil
	}
	store, err := storage.NewMinioStore(storage.MinioConfig{
		Endpoint:  m.Endpoint,
		AccessKey: m.AccessKey,
		SecretKey: m.SecretKey,
		Bucket:    m.Bucket,
		UseSSL:    m.UseSSL,
		PublicURL: m.PublicURL,
	})
	if err != nil {
		return nil, err
	}
	if err := store.EnsureBucket(ctx); err != nil {
		return nil, fmt.Errorf("minio bucket: %w", err)
	}
	return store, nil
}

func (a *app) readinessChecks() map[string]handler.Check {
	checks := map[string]handler.Check{
		"mongodb": func(ctx context.Context) error { return mongo.Ping(ctx, a.mongo) },
	}
	if a.redis != nil {
		checks["redis"] = func(ctx context.Context) error { return redis.Ping(ctx, a.redis) }
	}
	return checks
}

func (a *app) close() {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	if err := errors.Join(errs...); err != nil {
		a.log.Warn().Err(err).Msg("shutdown cleanup failed")
	}
	a.closers = nil
}
