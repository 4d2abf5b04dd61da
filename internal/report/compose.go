package report

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/vbonduro/fieldsurvey/internal/domain"
)

//go:embed templates/*.html
var templatesFS embed.FS

var templates = template.Must(template.New("").ParseFS(templatesFS, "templates/*.html"))

// Snapshot is the complete, already-authorized entity graph of one survey.
// It is never modified by the renderer.
type Snapshot struct {
	Survey            domain.Survey
	Observations      []domain.Observation
	ObservationPhotos map[int64][]domain.Photo
	HomogeneousAreas  []domain.HomogeneousArea
	FunctionalAreas   []domain.FunctionalArea
	AsbestosSamples   []domain.AsbestosSample
	PaintSamples      []domain.PaintSample
	Layers            map[int64][]domain.Layer
	AsbestosPhotos    map[int64][]domain.Photo
	PaintPhotos       map[int64][]domain.Photo

	// SitePhotoOverride replaces Survey.SitePhoto on the cover when set.
	SitePhotoOverride *domain.Photo
	// GeneratedAt is printed in the footer when non-zero. It is supplied by
	// the caller so that rendering stays deterministic.
	GeneratedAt time.Time
}

// Renderer assembles survey reports. The zero value resolves storage keys to
// host-relative paths.
type Renderer struct {
	Assets AssetResolver
}

func NewRenderer(assets AssetResolver) *Renderer {
	return &Renderer{Assets: assets}
}

type documentView struct {
	Title        string
	Cover        template.HTML
	Areas        template.HTML
	Asbestos     template.HTML
	Paint        template.HTML
	Observations template.HTML
	GeneratedAt  string
}

// Render produces the report markup. Sections always appear in the same
// order and each one is rendered independently. Errors only come from
// template execution.
func (r *Renderer) Render(s Snapshot) (string, error) {
	doc := documentView{Title: s.Survey.SiteName + " Survey Report"}
	if !s.GeneratedAt.IsZero() {
		doc.GeneratedAt = s.GeneratedAt.UTC().Format("January 2, 2006 15:04 MST")
	}

	var err error
	if doc.Cover, err = r.CoverSection(s); err != nil {
		return "", err
	}
	if doc.Areas, err = AreaSummarySection(s.FunctionalAreas, s.HomogeneousAreas, s.AsbestosSamples); err != nil {
		return "", err
	}
	if doc.Asbestos, err = r.AsbestosSection(s.AsbestosSamples, s.Layers, s.AsbestosPhotos); err != nil {
		return "", err
	}
	if doc.Paint, err = r.PaintSection(s.PaintSamples, s.PaintPhotos); err != nil {
		return "", err
	}
	if doc.Observations, err = r.ObservationsSection(s.Observations, s.ObservationPhotos); err != nil {
		return "", err
	}

	out, err := execute("document", doc)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func execute(name string, data any) (template.HTML, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to render %s section: %w", name, err)
	}
	return template.HTML(buf.String()), nil
}
