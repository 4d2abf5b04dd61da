package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vbonduro/fieldsurvey/internal/domain"
	"github.com/vbonduro/fieldsurvey/internal/export"
	"github.com/vbonduro/fieldsurvey/internal/photostore"
	"github.com/vbonduro/fieldsurvey/internal/report"
)

var ErrSurveyNotFound = errors.New("survey not found")

// surveyRepository is the subset of store.SurveyStore that ReportService requires.
type surveyRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Survey, error)
	List(ctx context.Context) ([]*domain.Survey, error)
}

// areaRepository is the subset of store.AreaStore that ReportService requires.
type areaRepository interface {
	ListFunctional(ctx context.Context, surveyID int64) ([]domain.FunctionalArea, error)
	ListHomogeneous(ctx context.Context, surveyID int64) ([]domain.HomogeneousArea, error)
}

type observationRepository interface {
	ListBySurvey(ctx context.Context, surveyID int64) ([]domain.Observation, error)
}

type sampleRepository interface {
	ListAsbestos(ctx context.Context, surveyID int64) ([]domain.AsbestosSample, error)
	ListPaint(ctx context.Context, surveyID int64) ([]domain.PaintSample, error)
	ListLayersBySurvey(ctx context.Context, surveyID int64) (map[int64][]domain.Layer, error)
}

type photoRepository interface {
	ListBySurvey(ctx context.Context, kind domain.PhotoKind, surveyID int64) (map[int64][]domain.Photo, error)
}

// DeliveryMode selects how photos reach the reader of a report.
type DeliveryMode string

const (
	// DeliveryStatic links photos to a path served by this host.
	DeliveryStatic DeliveryMode = "static"
	// DeliveryRemote links photos to a public object storage URL.
	DeliveryRemote DeliveryMode = "remote"
	// DeliveryEmbedded inlines photo bytes so the report is self-contained.
	DeliveryEmbedded DeliveryMode = "embedded"
)

type Delivery struct {
	Mode          DeliveryMode
	StaticPrefix  string
	PublicBaseURL string
}

// Assets returns the resolver matching the delivery mode.
func (d Delivery) Assets() (report.AssetResolver, error) {
	switch d.Mode {
	case DeliveryStatic, "":
		return report.StaticPathAssets{Prefix: d.StaticPrefix}, nil
	case DeliveryRemote:
		if d.PublicBaseURL == "" {
			return nil, errors.New("remote photo delivery requires a public base URL")
		}
		return report.RemoteAssets{BaseURL: d.PublicBaseURL}, nil
	case DeliveryEmbedded:
		return report.EmbeddedOnlyAssets{}, nil
	default:
		return nil, fmt.Errorf("unknown photo delivery mode %q", d.Mode)
	}
}

// maxInlineFetches bounds concurrent photostore reads while inlining.
const maxInlineFetches = 4

type ReportService struct {
	surveys      surveyRepository
	areas        areaRepository
	observations observationRepository
	samples      sampleRepository
	photos       photoRepository
	blobs        photostore.PhotoStore
	delivery     Delivery
	renderer     *report.Renderer
	logger       *slog.Logger
}

func NewReportService(
	surveys surveyRepository,
	areas areaRepository,
	observations observationRepository,
	samples sampleRepository,
	photos photoRepository,
	blobs photostore.PhotoStore,
	delivery Delivery,
	logger *slog.Logger,
) (*ReportService, error) {
	assets, err := delivery.Assets()
	if err != nil {
		return nil, err
	}
	return &ReportService{
		surveys:      surveys,
		areas:        areas,
		observations: observations,
		samples:      samples,
		photos:       photos,
		blobs:        blobs,
		delivery:     delivery,
		renderer:     report.NewRenderer(assets),
		logger:       logger,
	}, nil
}

func (s *ReportService) ListSurveys(ctx context.Context) ([]*domain.Survey, error) {
	return s.surveys.List(ctx)
}

// LoadSnapshot fetches a survey and every collection the report needs. The
// sub-collections are loaded concurrently.
func (s *ReportService) LoadSnapshot(ctx context.Context, surveyID int64) (*report.Snapshot, error) {
	survey, err := s.surveys.GetByID(ctx, surveyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get survey: %w", err)
	}
	if survey == nil {
		return nil, ErrSurveyNotFound
	}

	snap := &report.Snapshot{Survey: *survey}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		snap.FunctionalAreas, err = s.areas.ListFunctional(gctx, surveyID)
		return wrap("functional areas", err)
	})
	g.Go(func() (err error) {
		snap.HomogeneousAreas, err = s.areas.ListHomogeneous(gctx, surveyID)
		return wrap("homogeneous areas", err)
	})
	g.Go(func() (err error) {
		snap.Observations, err = s.observations.ListBySurvey(gctx, surveyID)
		return wrap("observations", err)
	})
	g.Go(func() (err error) {
		snap.AsbestosSamples, err = s.samples.ListAsbestos(gctx, surveyID)
		return wrap("asbestos samples", err)
	})
	g.Go(func() (err error) {
		snap.Layers, err = s.samples.ListLayersBySurvey(gctx, surveyID)
		return wrap("layers", err)
	})
	g.Go(func() (err error) {
		snap.PaintSamples, err = s.samples.ListPaint(gctx, surveyID)
		return wrap("paint samples", err)
	})
	g.Go(func() (err error) {
		snap.ObservationPhotos, err = s.photos.ListBySurvey(gctx, domain.PhotoKindObservation, surveyID)
		return wrap("observation photos", err)
	})
	g.Go(func() (err error) {
		snap.AsbestosPhotos, err = s.photos.ListBySurvey(gctx, domain.PhotoKindAsbestos, surveyID)
		return wrap("asbestos photos", err)
	})
	g.Go(func() (err error) {
		snap.PaintPhotos, err = s.photos.ListBySurvey(gctx, domain.PhotoKindPaint, surveyID)
		return wrap("paint photos", err)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if s.delivery.Mode == DeliveryEmbedded {
		if err := s.inlinePhotos(ctx, snap); err != nil {
			return nil, err
		}
	}
	return snap, nil
}

func wrap(what string, err error) error {
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", what, err)
	}
	return nil
}

// inlinePhotos replaces storage keys with data URIs. Photos whose blob cannot
// be read are logged and left without a source.
func (s *ReportService) inlinePhotos(ctx context.Context, snap *report.Snapshot) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxInlineFetches)

	inline := func(p *domain.Photo) {
		if p.Embedded != "" || p.URL != "" || isSelfContained(p.Filename) || p.Filename == "" {
			return
		}
		g.Go(func() error {
			uri, err := s.dataURI(gctx, p.Filename)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				s.logger.Warn("photo not inlined", "survey_id", snap.Survey.ID, "storage_key", p.Filename, "error", err)
				return nil
			}
			p.Embedded = uri
			return nil
		})
	}

	for _, byOwner := range []map[int64][]domain.Photo{snap.ObservationPhotos, snap.AsbestosPhotos, snap.PaintPhotos} {
		for _, photos := range byOwner {
			for i := range photos {
				inline(&photos[i])
			}
		}
	}

	if key := snap.Survey.SitePhoto; key != "" && !isSelfContained(key) {
		snap.SitePhotoOverride = &domain.Photo{Filename: key}
		inline(snap.SitePhotoOverride)
	}

	return g.Wait()
}

func (s *ReportService) dataURI(ctx context.Context, key string) (string, error) {
	body, mimeType, err := s.blobs.Get(ctx, key)
	if err != nil {
		return "", err
	}
	defer func() {
		if cerr := body.Close(); cerr != nil {
			s.logger.Error("failed to close photo", "storage_key", key, "error", cerr)
		}
	}()

	data, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("failed to read photo: %w", err)
	}
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

func isSelfContained(ref string) bool {
	return strings.HasPrefix(ref, "data:") ||
		strings.HasPrefix(ref, "http://") ||
		strings.HasPrefix(ref, "https://")
}

type RenderOptions struct {
	// GeneratedAt is printed in the report footer when non-zero.
	GeneratedAt time.Time
}

// RenderReport loads a survey and renders it. It returns the markup and a
// download filename.
func (s *ReportService) RenderReport(ctx context.Context, surveyID int64, opts RenderOptions) (string, string, error) {
	snap, err := s.LoadSnapshot(ctx, surveyID)
	if err != nil {
		return "", "", err
	}
	snap.GeneratedAt = opts.GeneratedAt

	start := time.Now()
	markup, err := s.renderer.Render(*snap)
	if err != nil {
		return "", "", fmt.Errorf("failed to render report: %w", err)
	}
	s.logger.Info("report rendered",
		"survey_id", surveyID,
		"bytes", len(markup),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return markup, Filename(snap.Survey, "survey-report.html"), nil
}

// SampleWorkbook returns the sample log spreadsheet and its download filename.
func (s *ReportService) SampleWorkbook(ctx context.Context, surveyID int64) ([]byte, string, error) {
	snap, err := s.LoadSnapshot(ctx, surveyID)
	if err != nil {
		return nil, "", err
	}
	data, err := export.SampleWorkbook(*snap)
	if err != nil {
		return nil, "", fmt.Errorf("failed to build sample workbook: %w", err)
	}
	return data, Filename(snap.Survey, "samples.xlsx"), nil
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Filename builds "<site-slug>-<suffix>", falling back to
// "survey-<id>-<suffix>" when the site name has no usable characters.
func Filename(sv domain.Survey, suffix string) string {
	slug := strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(sv.SiteName), "-"), "-")
	if slug == "" {
		return fmt.Sprintf("survey-%d-%s", sv.ID, suffix)
	}
	return slug + "-" + suffix
}
