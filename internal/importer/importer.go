// Package importer loads survey documents written in YAML into the database.
package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vbonduro/fieldsurvey/internal/domain"
	"github.com/vbonduro/fieldsurvey/internal/photostore"
)

type surveyRepository interface {
	Create(ctx context.Context, sv domain.Survey) (*domain.Survey, error)
}

type areaRepository interface {
	CreateFunctional(ctx context.Context, fa domain.FunctionalArea) (*domain.FunctionalArea, error)
	CreateHomogeneous(ctx context.Context, ha domain.HomogeneousArea) (*domain.HomogeneousArea, error)
}

type observationRepository interface {
	Create(ctx context.Context, o domain.Observation) (*domain.Observation, error)
}

type sampleRepository interface {
	CreateAsbestos(ctx context.Context, a domain.AsbestosSample) (*domain.AsbestosSample, error)
	CreateLayer(ctx context.Context, l domain.Layer) (*domain.Layer, error)
	CreatePaint(ctx context.Context, p domain.PaintSample) (*domain.PaintSample, error)
}

type photoRepository interface {
	Create(ctx context.Context, kind domain.PhotoKind, ownerID int64, storageKey, originalName, url string) (*domain.Photo, error)
}

type Importer struct {
	surveys      surveyRepository
	areas        areaRepository
	observations observationRepository
	samples      sampleRepository
	photos       photoRepository
	blobs        photostore.PhotoStore
	baseDir      string
	logger       *slog.Logger
}

// New returns an Importer. Relative photo file paths are resolved against
// baseDir.
func New(
	surveys surveyRepository,
	areas areaRepository,
	observations observationRepository,
	samples sampleRepository,
	photos photoRepository,
	blobs photostore.PhotoStore,
	baseDir string,
	logger *slog.Logger,
) *Importer {
	return &Importer{
		surveys:      surveys,
		areas:        areas,
		observations: observations,
		samples:      samples,
		photos:       photos,
		blobs:        blobs,
		baseDir:      baseDir,
		logger:       logger,
	}
}

// Decode parses a single YAML survey document. Unknown fields are rejected.
func Decode(r io.Reader) (*Document, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty survey document")
		}
		return nil, fmt.Errorf("failed to parse survey document: %w", err)
	}
	if doc.SiteName == "" {
		return nil, errors.New("site_name is required")
	}
	return &doc, nil
}

// Import stores the survey described by r and returns its id. Records
// created before a failure are not rolled back.
func (im *Importer) Import(ctx context.Context, r io.Reader) (int64, error) {
	doc, err := Decode(r)
	if err != nil {
		return 0, err
	}

	sv := domain.Survey{
		SiteName:      doc.SiteName,
		SiteAddress:   doc.SiteAddress,
		SurveyType:    doc.SurveyType,
		InspectorName: doc.Inspector,
		Status:        doc.Status,
	}
	if doc.SurveyDate != "" {
		d, err := time.Parse(time.DateOnly, doc.SurveyDate)
		if err != nil {
			return 0, fmt.Errorf("invalid survey_date %q: %w", doc.SurveyDate, err)
		}
		sv.SurveyDate = &d
	}
	if doc.SitePhoto != nil {
		ref, err := im.siteReference(ctx, *doc.SitePhoto)
		if err != nil {
			return 0, err
		}
		sv.SitePhoto = ref
	}

	created, err := im.surveys.Create(ctx, sv)
	if err != nil {
		return 0, fmt.Errorf("failed to create survey: %w", err)
	}
	surveyID := created.ID

	for _, fa := range doc.FunctionalAreas {
		if _, err := im.areas.CreateFunctional(ctx, domain.FunctionalArea{
			SurveyID: surveyID, Title: fa.Title, Description: fa.Description,
		}); err != nil {
			return 0, err
		}
	}
	for _, ha := range doc.HomogeneousAreas {
		if _, err := im.areas.CreateHomogeneous(ctx, domain.HomogeneousArea{
			SurveyID: surveyID, Code: ha.Code, Title: ha.Title, Description: ha.Description,
		}); err != nil {
			return 0, err
		}
	}

	for _, o := range doc.Observations {
		obs, err := im.observations.Create(ctx, domain.Observation{
			SurveyID:        surveyID,
			Area:            o.Area,
			RiskLevel:       o.RiskLevel,
			Latitude:        o.Latitude,
			Longitude:       o.Longitude,
			SampleCollected: o.SampleCollected,
			Notes:           o.Notes,
		})
		if err != nil {
			return 0, err
		}
		if err := im.attachPhotos(ctx, domain.PhotoKindObservation, obs.ID, o.Photos); err != nil {
			return 0, err
		}
	}

	for _, a := range doc.AsbestosSamples {
		sample, err := im.samples.CreateAsbestos(ctx, domain.AsbestosSample{
			SurveyID:          surveyID,
			SampleNumber:      a.SampleNumber,
			FunctionalArea:    a.FunctionalArea,
			HomogeneousArea:   a.HomogeneousArea,
			Location:          a.Location,
			MaterialType:      a.MaterialType,
			AsbestosType:      a.AsbestosType,
			AsbestosPercent:   a.AsbestosPercent,
			EstimatedQuantity: a.EstimatedQuantity,
			Condition:         a.Condition,
			CollectionMethod:  a.CollectionMethod,
			Results:           a.Results,
			Notes:             a.Notes,
		})
		if err != nil {
			return 0, err
		}
		for i, l := range a.Layers {
			if _, err := im.samples.CreateLayer(ctx, domain.Layer{
				SampleID:     sample.ID,
				LayerNumber:  i + 1,
				MaterialType: l.MaterialType,
				AsbestosType: l.AsbestosType,
				Percent:      l.Percent,
				Notes:        l.Notes,
			}); err != nil {
				return 0, err
			}
		}
		if err := im.attachPhotos(ctx, domain.PhotoKindAsbestos, sample.ID, a.Photos); err != nil {
			return 0, err
		}
	}

	for _, p := range doc.PaintSamples {
		sample, err := im.samples.CreatePaint(ctx, domain.PaintSample{
			SurveyID:         surveyID,
			SampleNumber:     p.SampleNumber,
			FunctionalArea:   p.FunctionalArea,
			HomogeneousArea:  p.HomogeneousArea,
			Location:         p.Location,
			Substrate:        p.Substrate,
			SubstrateOther:   p.SubstrateOther,
			Color:            p.Color,
			Condition:        p.Condition,
			CollectionMethod: p.CollectionMethod,
			LeadResult:       p.LeadResult,
			CadmiumResult:    p.CadmiumResult,
			Notes:            p.Notes,
		})
		if err != nil {
			return 0, err
		}
		if err := im.attachPhotos(ctx, domain.PhotoKindPaint, sample.ID, p.Photos); err != nil {
			return 0, err
		}
	}

	im.logger.Info("survey imported",
		"survey_id", surveyID,
		"observations", len(doc.Observations),
		"asbestos_samples", len(doc.AsbestosSamples),
		"paint_samples", len(doc.PaintSamples),
	)
	return surveyID, nil
}

func (im *Importer) siteReference(ctx context.Context, ref PhotoRef) (string, error) {
	switch {
	case ref.File != "":
		return im.upload(ctx, "sites", ref.File)
	case ref.URL != "":
		return ref.URL, nil
	default:
		return ref.Key, nil
	}
}

func (im *Importer) attachPhotos(ctx context.Context, kind domain.PhotoKind, ownerID int64, refs []PhotoRef) error {
	for _, ref := range refs {
		key := ref.Key
		name := ref.Name
		if ref.File != "" {
			var err error
			if key, err = im.upload(ctx, string(kind), ref.File); err != nil {
				return err
			}
			if name == "" {
				name = filepath.Base(ref.File)
			}
		}
		if key == "" && ref.URL == "" {
			return fmt.Errorf("%s photo for owner %d has no file, key or url", kind, ownerID)
		}
		if _, err := im.photos.Create(ctx, kind, ownerID, key, name, ref.URL); err != nil {
			return err
		}
	}
	return nil
}

func (im *Importer) upload(ctx context.Context, prefix, file string) (string, error) {
	path := file
	if !filepath.IsAbs(path) {
		path = filepath.Join(im.baseDir, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open photo: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			im.logger.Error("failed to close photo", "path", path, "error", cerr)
		}
	}()

	key, err := im.blobs.Save(ctx, prefix, photostore.MimeTypeForKey(file), f)
	if err != nil {
		return "", fmt.Errorf("failed to store photo %s: %w", file, err)
	}
	im.logger.Debug("photo uploaded", "storage_key", key, "path", path)
	return key, nil
}
