package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/vbonduro/fieldsurvey/internal/config"
	"github.com/vbonduro/fieldsurvey/internal/db"
	"github.com/vbonduro/fieldsurvey/internal/importer"
	"github.com/vbonduro/fieldsurvey/internal/logging"
	"github.com/vbonduro/fieldsurvey/internal/photostore"
	"github.com/vbonduro/fieldsurvey/internal/photostore/local"
	"github.com/vbonduro/fieldsurvey/internal/photostore/s3store"
	"github.com/vbonduro/fieldsurvey/internal/service"
	"github.com/vbonduro/fieldsurvey/internal/store"
)

// app holds the dependencies shared by every subcommand.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	db      *sql.DB
	blobs   photostore.PhotoStore
	cleanup []func()

	surveys      *store.SurveyStore
	areas        *store.AreaStore
	observations *store.ObservationStore
	samples      *store.SampleStore
	photos       *store.PhotoStore
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "fieldsurvey",
		Short:         "Assemble field inspection survey reports",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.open(cmd.Context())
		},
	}
	root.AddCommand(newServeCmd(a), newRenderCmd(a), newImportCmd(a))
	return root
}

func (a *app) open(ctx context.Context) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env file: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	a.cfg = cfg

	logger, cleanup, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.logger = logger
	a.cleanup = append(a.cleanup, cleanup)

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		a.close()
		return err
	}
	a.db = database
	a.cleanup = append(a.cleanup, func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	})

	blobs, err := newPhotoStore(ctx, cfg)
	if err != nil {
		a.close()
		return fmt.Errorf("failed to initialize photo store: %w", err)
	}
	a.blobs = blobs
	logger.Info("photo store ready", "backend", cfg.PhotoBackend, "delivery", cfg.PhotoDelivery)

	a.surveys = store.NewSurveyStore(database)
	a.areas = store.NewAreaStore(database)
	a.observations = store.NewObservationStore(database)
	a.samples = store.NewSampleStore(database)
	a.photos = store.NewPhotoStore(database)
	return nil
}

// close releases resources in reverse order of acquisition. Subcommands defer
// it because cobra skips post-run hooks when RunE fails.
func (a *app) close() {
	for i := len(a.cleanup) - 1; i >= 0; i-- {
		a.cleanup[i]()
	}
	a.cleanup = nil
}

func newPhotoStore(ctx context.Context, cfg *config.Config) (photostore.PhotoStore, error) {
	switch cfg.PhotoBackend {
	case "s3":
		return s3store.NewS3PhotoStore(ctx, s3store.Config{
			Bucket:   cfg.S3Bucket,
			Prefix:   cfg.S3Prefix,
			Region:   cfg.S3Region,
			Endpoint: cfg.S3Endpoint,
		})
	default:
		return local.NewLocalPhotoStore(cfg.PhotoPath)
	}
}

func (a *app) reportService() (*service.ReportService, error) {
	return service.NewReportService(
		a.surveys, a.areas, a.observations, a.samples, a.photos, a.blobs,
		service.Delivery{
			Mode:          service.DeliveryMode(a.cfg.PhotoDelivery),
			StaticPrefix:  a.cfg.PhotoStaticPrefix,
			PublicBaseURL: a.cfg.PhotoPublicBaseURL,
		},
		a.logger,
	)
}

func (a *app) importer(baseDir string) *importer.Importer {
	return importer.New(a.surveys, a.areas, a.observations, a.samples, a.photos, a.blobs, baseDir, a.logger)
}
