// Пакет aidoc предоставляет основные компоненты сервиса документов: загрузку PDF с конвертацией во внешнем сервисе, хранение и редактирование структурированных документов, рендеринг их в HTML.
//
// Основные возможности:
//   - Загрузка PDF и конвертация в структурированный документ.
//   - CRUD API для документов.
//   - Рендеринг документов в HTML с формулами.
//   - Фоновая очистка устаревших файлов.
package aidoc

// @title AIDoc API
// @version 1.0
// @description Document conversion and editing service.
// @BasePath /
import (
	"errors"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gofrs/uuid"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	echoSwagger "github.com/swaggo/echo-swagger"
	"gorm.io/gorm"

	"github.com/aisa-it/aidoc/aidoc.go/internal/aidoc/config"
	"github.com/aisa-it/aidoc/aidoc.go/internal/aidoc/convert"
	"github.com/aisa-it/aidoc/aidoc.go/internal/aidoc/cronmanager"
	"github.com/aisa-it/aidoc/aidoc.go/internal/aidoc/dao"
	"github.com/aisa-it/aidoc/aidoc.go/internal/aidoc/editor/schema"
	filestorage "github.com/aisa-it/aidoc/aidoc.go/internal/aidoc/file-storage"
)

type Services struct {
	db       *gorm.DB
	storage  filestorage.FileStorage
	convert  *convert.Service
	registry *schema.Registry
	cron     *cronmanager.CronManager
}

var cfg *config.Config
var appVersion string

// ServerHeader middleware adds a `Server` header to the response.
func ServerHeader(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Response().Header().Set(echo.HeaderServer, "AIDoc")
		return next(c)
	}
}

func Server(db *gorm.DB, c *config.Config, version string) {
	cfg = c
	appVersion = version

	e := echo.New()
	e.HideBanner = true

	storage := newStorage(cfg)
	dao.Config = cfg
	dao.FileStorage = storage

	s := Services{
		db:       db,
		storage:  storage,
		convert:  convert.NewService(convert.NewClient(cfg.ConvertServiceURL.String())),
		registry: schema.New(),
		cron:     cronmanager.NewCronManager(),
	}

	// Stale unattached files cleanup
	if err := s.cron.AddJob("stale-assets-cleanup", "0 3 * * *", s.cleanupStaleAssets); err != nil {
		slog.Error("Register cleanup job", "err", err)
	}
	s.cron.Start()
	defer s.cron.Stop()

	// Global middlewares
	e.Use(ServerHeader)
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowCredentials: true,
	}))
	e.Use(middleware.BodyLimitWithConfig(middleware.BodyLimitConfig{
		Limit: "5M",
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/api/convert/"
		},
	}))
	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Level:     9,
		MinLength: 2048,
		Skipper: func(c echo.Context) bool {
			return strings.Contains(c.Request().URL.Path, "swagger")
		},
	}))
	e.Use(echoprometheus.NewMiddleware("aidoc"))
	e.Pre(middleware.AddTrailingSlashWithConfig(middleware.TrailingSlashConfig{
		Skipper: func(c echo.Context) bool {
			return strings.Contains(c.Request().URL.Path, "swagger")
		},
	}))

	e.Validator = NewRequestValidator()

	apiGroup := e.Group("/api/")

	s.AddDocumentServices(apiGroup)
	s.AddConvertServices(apiGroup)

	// Version endpoint
	apiGroup.GET("version/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"version": version,
		})
	})

	// Health endpoint
	apiGroup.GET("_health/", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	if cfg.SwaggerEnable {
		apiGroup.GET("swagger/*", echoSwagger.WrapHandler)
	}

	// Get stored file
	apiGroup.GET("file/:fileId/", s.getFile)

	// Prometheus metrics
	go func() {
		bootTimeGauge := prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "aidoc",
			Name:      "boot_time",
			Help:      "Server startup time",
		})
		bootTimeGauge.Set(float64(time.Now().UnixMilli()))

		if err := prometheus.Register(bootTimeGauge); err != nil {
			slog.Error("Register boot time gauge", "err", err)
			os.Exit(1)
		}

		metrics := echo.New()
		metrics.HideBanner = true
		metrics.GET("/metrics", echoprometheus.NewHandler())
		if err := metrics.Start(":2112"); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Metrics server fail", "err", err)
		}
	}()

	if err := e.Start(":8080"); err != nil {
		slog.Error("Server fail", "err", err)
	}
}

func newStorage(cfg *config.Config) filestorage.FileStorage {
	if cfg.LocalStoragePath != "" {
		storage, err := filestorage.NewLocalStorage(cfg.LocalStoragePath)
		if err != nil {
			slog.Error("Local storage init", "err", err)
			os.Exit(1)
		}
		return storage
	}

	storage, err := filestorage.NewMinioStorage(
		cfg.MinioEndpoint,
		cfg.MinioAccessKey,
		cfg.MinioSecretKey,
		cfg.MinioSecure,
		cfg.MinioBucketName,
	)
	if err != nil {
		slog.Error("Minio storage init", "err", err)
		os.Exit(1)
	}
	return storage
}

// cleanupStaleAssets удаляет файлы, которые так и не были прикреплены к
// документу за отведенный срок.
func (s *Services) cleanupStaleAssets() {
	cutoff := time.Now().AddDate(0, 0, -cfg.StaleAssetsTTL)
	assets, err := dao.GetStaleFileAssets(s.db, cutoff)
	if err != nil {
		slog.Error("Stale assets query", "err", err)
		return
	}

	for _, asset := range assets {
		if err := dao.DeleteFileAsset(s.db, &asset); err != nil {
			slog.Error("Stale asset delete", "id", asset.Id, "err", err)
			continue
		}
	}

	orphans := s.cleanupOrphanObjects(cutoff)

	if len(assets) > 0 || orphans > 0 {
		slog.Info("Stale assets cleanup", "removed", len(assets), "orphans", orphans)
	}
}

// cleanupOrphanObjects удаляет объекты хранилища без записи в базе:
// остатки прерванных загрузок, переживших свою запись.
func (s *Services) cleanupOrphanObjects(cutoff time.Time) int {
	var ids []string
	if err := s.db.Model(&dao.FileAsset{}).Pluck("id", &ids).Error; err != nil {
		slog.Error("Assets index query", "err", err)
		return 0
	}
	known := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		known[id] = struct{}{}
	}

	orphans := 0
	err := s.storage.ListRoot(func(info filestorage.FileInfo) error {
		id, err := uuid.FromString(info.Name)
		if err != nil {
			// Посторонний объект, хранилище может быть разделяемым
			return nil
		}
		if _, ok := known[id.String()]; ok {
			return nil
		}
		if info.CreatedAt.After(cutoff) {
			return nil
		}
		if err := s.storage.Delete(id); err != nil {
			slog.Error("Orphan object delete", "name", info.Name, "err", err)
			return nil
		}
		orphans++
		return nil
	})
	if err != nil {
		slog.Error("Storage list", "err", err)
	}
	return orphans
}
