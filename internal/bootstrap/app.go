// Package bootstrap assembles the application from configuration: database,
// blob store, services, handlers, and the HTTP router.
package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"

	"github.com/gin-gonic/gin"

	googleauth "github.com/Kantheephob/Nostalgia-Life-Log/internal/auth"
	"github.com/Kantheephob/Nostalgia-Life-Log/internal/images"
	"github.com/Kantheephob/Nostalgia-Life-Log/internal/shared/config"
	"github.com/Kantheephob/Nostalgia-Life-Log/internal/shared/server"
	"github.com/Kantheephob/Nostalgia-Life-Log/internal/shared/storage/blob"
	localstore "github.com/Kantheephob/Nostalgia-Life-Log/internal/shared/storage/blob/local"
	miniostore "github.com/Kantheephob/Nostalgia-Life-Log/internal/shared/storage/blob/minio"
	s3store "github.com/Kantheephob/Nostalgia-Life-Log/internal/shared/storage/blob/s3"
	"github.com/Kantheephob/Nostalgia-Life-Log/internal/shared/storage/db"
	"github.com/Kantheephob/Nostalgia-Life-Log/internal/users"
)

// App holds the application's shared dependencies.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB
	Store  blob.Store

	UsersRepo     users.Repo
	UsersService  *users.Service
	ImagesService *images.Service
	ImagesHandler *images.Handler
	UsersHandler  *users.Handler
	GoogleAuth    *googleauth.GoogleService
}

// Build prepares the full application for the given configuration.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.BlobStoreType) == "" {
		cfg.BlobStoreType = "local"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		DB:     sqlDB,
		Store:  store,
	}
	buildServices(app)

	var localDir string
	if ls, ok := store.(*localstore.Store); ok {
		localDir = ls.Dir()
	}
	app.Router = server.NewRouter(server.RouterDeps{
		Config:        cfg,
		ImagesHandler: app.ImagesHandler,
		UsersHandler:  app.UsersHandler,
		GoogleAuth:    app.GoogleAuth,
		LocalBlobDir:  localDir,
	})

	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (blob.Store, error) {
	switch cfg.BlobStoreType {
	case "s3":
		if strings.TrimSpace(cfg.AWSRegion) == "" || strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, fmt.Errorf("BLOB_STORE=s3 requires AWS_REGION and S3_BUCKET")
		}
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.PublicBaseURL)
	case "minio":
		if strings.TrimSpace(cfg.MinioEndpoint) == "" {
			return nil, fmt.Errorf("BLOB_STORE=minio requires MINIO_ENDPOINT")
		}
		return miniostore.New(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.PublicBaseURL, cfg.MinioUseSSL)
	default:
		return localstore.New(cfg.LocalStoreDir, cfg.PublicBaseURL), nil
	}
}

func buildServices(app *App) {
	var userRepo users.Repo
	if app.DB != nil {
		userRepo = &users.PGRepo{DB: app.DB}
	} else {
		userRepo = users.NewMemoryRepo()
	}

	userSvc := users.NewService(userRepo)
	imagesSvc := &images.Service{Store: app.Store}

	app.UsersRepo = userRepo
	app.UsersService = userSvc
	app.ImagesService = imagesSvc
	app.ImagesHandler = images.NewHandler(imagesSvc)
	app.UsersHandler = users.NewHandler(userSvc)
	app.GoogleAuth = googleauth.NewGoogleService(
		app.Config.GoogleClientID,
		app.Config.GoogleClientSecret,
		app.Config.GoogleRedirectURL,
		app.Config.UIRedirectURL,
		userSvc,
	)
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
