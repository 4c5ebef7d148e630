package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	glog "github.com/labstack/gommon/log"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"video-uploader/api/handler"
	"video-uploader/internal/blobstore"
	"video-uploader/internal/cache"
	"video-uploader/internal/config"
	"video-uploader/internal/database"
	"video-uploader/internal/repository"
	"video-uploader/internal/tracing"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	ctx := context.Background()

	shutdownTracer, err := tracing.InitTracer(ctx, cfg.ServiceName, cfg.OTelEndpoint)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracer(ctx); err != nil {
			log.Printf("Error shutting down tracer: %v", err)
		}
	}()

	e := echo.New()
	e.HideBanner = true
	e.Logger.SetLevel(logLevel(cfg.LogLevel))

	db, err := database.InitDB(cfg)
	if err != nil {
		e.Logger.Fatalf("failed to connect database: %v", err)
	}
	repo := repository.NewVideos(db)

	var videos handler.VideoStore = repo
	if cfg.RedisAddr != "" {
		client, err := cache.NewClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			e.Logger.Fatalf("failed to connect redis: %v", err)
		}
		defer client.Close()
		videos = cache.NewVideos(repo, client, cfg.CacheTTL, e.Logger)
		e.Logger.Infof("metadata cache enabled at %s", cfg.RedisAddr)
	}

	blobs, err := newBlobStore(ctx, cfg)
	if err != nil {
		e.Logger.Fatalf("failed to initialize %s blob store: %v", cfg.BlobBackend, err)
	}

	h := &handler.Handler{
		Videos: videos,
		Blobs:  blobs,
		DB:     repo,
		Bucket: cfg.S3BucketName,
	}

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(echo.WrapMiddleware(func(next http.Handler) http.Handler {
		return otelhttp.NewHandler(next, "http.request")
	}))

	var uploadMW []echo.MiddlewareFunc
	if cfg.UploadBodyLimit != "" {
		uploadMW = append(uploadMW, middleware.BodyLimit(cfg.UploadBodyLimit))
	}
	h.Routes(e, uploadMW...)

	e.Server.ReadTimeout = 5 * time.Minute
	e.Server.WriteTimeout = 5 * time.Minute
	e.Server.IdleTimeout = 60 * time.Second

	go func() {
		e.Logger.Infof("server starting on :%s", cfg.ServerPort)
		if err := e.Start(fmt.Sprintf(":%s", cfg.ServerPort)); err != nil && err != http.ErrServerClosed {
			e.Logger.Fatal(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	e.Logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		e.Logger.Errorf("server forced to shutdown: %v", err)
	}
}

func newBlobStore(ctx context.Context, cfg config.Config) (blobstore.Store, error) {
	switch cfg.BlobBackend {
	case "minio":
		return blobstore.NewMinioStore(ctx, blobstore.MinioConfig{
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.AWSAccessKeyID,
			SecretKey: cfg.AWSSecretKey,
			Bucket:    cfg.S3BucketName,
			Region:    cfg.AWSRegion,
			UseSSL:    cfg.S3UseSSL,
		})
	default:
		return blobstore.NewS3Store(ctx, blobstore.S3Config{
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretKey,
			Bucket:          cfg.S3BucketName,
			Region:          cfg.AWSRegion,
			Endpoint:        cfg.S3Endpoint,
		})
	}
}

func logLevel(level string) glog.Lvl {
	switch level {
	case "debug":
		return glog.DEBUG
	case "warn":
		return glog.WARN
	case "error":
		return glog.ERROR
	case "off":
		return glog.OFF
	default:
		return glog.INFO
	}
}
