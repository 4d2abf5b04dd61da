package importer

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/fieldsurvey/internal/db"
	"github.com/vbonduro/fieldsurvey/internal/domain"
	"github.com/vbonduro/fieldsurvey/internal/photostore/local"
	"github.com/vbonduro/fieldsurvey/internal/store"
)

const depotYAML = `
site_name: Riverside Depot
site_address: 1 River Rd
survey_type: asbestos-lead
survey_date: "2024-03-05"
inspector: J. Smith
site_photo:
  url: https://cdn.example.com/depot.jpg
functional_areas:
  - title: Boiler Room
homogeneous_areas:
  - code: HA-1
    title: Pipe Lagging
observations:
  - area: Boiler Room
    risk_level: high
    latitude: 45.5
    longitude: -73.5
    sample_collected: true
    photos:
      - file: boiler.jpg
asbestos_samples:
  - sample_number: A-01
    homogeneous_area: HA-1
    material_type: pipe_insulation
    asbestos_percent: 12.5
    estimated_quantity: 40 lf
    layers:
      - material_type: mastic
      - material_type: paper
        percent: 3
paint_samples:
  - sample_number: P-01
    substrate: wood
    lead_result: "5400"
    photos:
      - url: https://cdn.example.com/p.jpg
        name: door
`

type fixture struct {
	importer *Importer
	surveys  *store.SurveyStore
	areas    *store.AreaStore
	obs      *store.ObservationStore
	samples  *store.SampleStore
	photos   *store.PhotoStore
	blobs    *local.LocalPhotoStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	d, err := db.OpenForTesting()
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })

	baseDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(baseDir, "boiler.jpg"), []byte("boiler bytes"), 0o644))

	blobs, err := local.NewLocalPhotoStore(filepath.Join(t.TempDir(), "photos"))
	require.NoError(t, err)

	f := &fixture{
		surveys: store.NewSurveyStore(d),
		areas:   store.NewAreaStore(d),
		obs:     store.NewObservationStore(d),
		samples: store.NewSampleStore(d),
		photos:  store.NewPhotoStore(d),
		blobs:   blobs,
	}
	f.importer = New(f.surveys, f.areas, f.obs, f.samples, f.photos, blobs, baseDir, slog.Default())
	return f
}

func TestImport(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id, err := f.importer.Import(ctx, strings.NewReader(depotYAML))
	require.NoError(t, err)

	sv, err := f.surveys.GetByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, sv)
	assert.Equal(t, "Riverside Depot", sv.SiteName)
	assert.Equal(t, "https://cdn.example.com/depot.jpg", sv.SitePhoto)
	require.NotNil(t, sv.SurveyDate)
	assert.Equal(t, "2024-03-05", sv.SurveyDate.Format("2006-01-02"))

	obs, err := f.obs.ListBySurvey(ctx, id)
	require.NoError(t, err)
	require.Len(t, obs, 1)
	require.NotNil(t, obs[0].SampleCollected)
	assert.True(t, *obs[0].SampleCollected)

	asb, err := f.samples.ListAsbestos(ctx, id)
	require.NoError(t, err)
	require.Len(t, asb, 1)
	layers, err := f.samples.ListLayersBySurvey(ctx, id)
	require.NoError(t, err)
	require.Len(t, layers[asb[0].ID], 2)
	assert.Equal(t, 1, layers[asb[0].ID][0].LayerNumber)
	assert.Equal(t, 2, layers[asb[0].ID][1].LayerNumber)
	require.NotNil(t, layers[asb[0].ID][1].Percent)
	assert.Equal(t, 3.0, *layers[asb[0].ID][1].Percent)

	photos, err := f.photos.ListBySurvey(ctx, domain.PhotoKindObservation, id)
	require.NoError(t, err)
	require.Len(t, photos[obs[0].ID], 1)
	uploaded := photos[obs[0].ID][0]
	assert.Equal(t, "boiler.jpg", uploaded.OriginalName)
	assert.True(t, strings.HasPrefix(uploaded.Filename, "observation/"), uploaded.Filename)

	body, mimeType, err := f.blobs.Get(ctx, uploaded.Filename)
	require.NoError(t, err)
	defer body.Close()
	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "boiler bytes", string(data))
	assert.Equal(t, "image/jpeg", mimeType)

	paintPhotos, err := f.photos.ListBySurvey(ctx, domain.PhotoKindPaint, id)
	require.NoError(t, err)
	require.Len(t, paintPhotos, 1)
	for _, ps := range paintPhotos {
		assert.Equal(t, "https://cdn.example.com/p.jpg", ps[0].URL)
		assert.Equal(t, "door", ps[0].OriginalName)
	}
}

func TestImport_Errors(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr string
	}{
		{"empty", "", "empty survey document"},
		{"missing site name", "inspector: J. Smith\n", "site_name is required"},
		{"unknown field", "site_name: Depot\nweather: rain\n", "field weather not found"},
		{"bad date", "site_name: Depot\nsurvey_date: 05/03/2024\n", "invalid survey_date"},
		{"missing photo file", "site_name: Depot\nobservations:\n  - area: Hall\n    photos:\n      - file: nope.jpg\n", "failed to open photo"},
		{"empty photo ref", "site_name: Depot\npaint_samples:\n  - sample_number: P-1\n    photos:\n      - name: x\n", "has no file, key or url"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			_, err := f.importer.Import(context.Background(), strings.NewReader(tt.doc))
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
