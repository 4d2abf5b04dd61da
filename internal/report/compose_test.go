package report

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/fieldsurvey/internal/domain"
)

func boolPtr(v bool) *bool { return &v }

func fullSnapshot() Snapshot {
	surveyDate := time.Date(2024, time.May, 14, 0, 0, 0, 0, time.UTC)
	return Snapshot{
		Survey: domain.Survey{
			ID:            7,
			SiteName:      "Riverside Elementary",
			SiteAddress:   "12 Mill Rd, Springfield",
			SurveyType:    "asbestos-lead",
			SurveyDate:    &surveyDate,
			InspectorName: "J. Alvarez",
			Status:        "in-progress",
			SitePhoto:     "site/overview.jpg",
		},
		FunctionalAreas: []domain.FunctionalArea{
			{ID: 1, Title: "Boiler Room", Description: "Basement mechanical space"},
		},
		HomogeneousAreas: []domain.HomogeneousArea{
			{ID: 2, Code: "HA-2", Title: "Floor Tile"},
			{ID: 1, Code: "HA-1", Title: "Pipe Insulation"},
		},
		AsbestosSamples: []domain.AsbestosSample{
			{ID: 1, SampleNumber: "A-1", HomogeneousArea: "HA-1", MaterialType: "tsi", AsbestosType: "CHRYSOTILE", AsbestosPercent: floatPtr(15), EstimatedQuantity: "10 lf", Condition: "significantly-damaged"},
			{ID: 2, SampleNumber: "A-2", HomogeneousArea: "HA-1", MaterialType: "tsi", EstimatedQuantity: "5 lf"},
			{ID: 3, SampleNumber: "A-3", HomogeneousArea: "HA-2", MaterialType: "floor-tile"},
		},
		Layers: map[int64][]domain.Layer{
			3: {
				{ID: 1, SampleID: 3, LayerNumber: 1, MaterialType: "vat", Percent: floatPtr(3)},
				{ID: 2, SampleID: 3, LayerNumber: 2, MaterialType: "mastic"},
				{ID: 3, SampleID: 3, LayerNumber: 3},
			},
		},
		AsbestosPhotos: map[int64][]domain.Photo{
			1: {{ID: 1, OwnerID: 1, Filename: "samples/a1.jpg", OriginalName: "IMG_0001.jpg"}},
		},
		PaintSamples: []domain.PaintSample{
			{ID: 1, SampleNumber: "P-1", Substrate: "other", SubstrateOther: "Radiator", Color: "WHITE", LeadResult: "1.20", CadmiumResult: "ND"},
		},
		PaintPhotos: map[int64][]domain.Photo{
			1: {{ID: 2, OwnerID: 1, Filename: "paint/p1.jpg", URL: "https://bucket.example.com/paint/p1.jpg"}},
		},
		Observations: []domain.Observation{
			{ID: 1, Area: "Boiler Room", RiskLevel: "high", Notes: "Damaged lagging on supply line", Latitude: floatPtr(40.7128), Longitude: floatPtr(-74.006), SampleCollected: boolPtr(true)},
			{ID: 2, Area: "Gym", RiskLevel: "low", Latitude: floatPtr(51.5), Longitude: floatPtr(-0.12)},
		},
		ObservationPhotos: map[int64][]domain.Photo{
			1: {{ID: 3, OwnerID: 1, Filename: "obs/o1.jpg", Embedded: "data:image/png;base64,AAA/="}},
		},
	}
}

func TestRender_SectionsInOrder(t *testing.T) {
	out, err := NewRenderer(StaticPathAssets{Prefix: "/files"}).Render(fullSnapshot())
	require.NoError(t, err)

	order := []string{
		`<section class="cover">`,
		`<section class="areas">`,
		`<section class="asbestos">`,
		`<section class="paint">`,
		`<section class="observations">`,
	}
	last := -1
	for _, marker := range order {
		idx := strings.Index(out, marker)
		require.NotEqual(t, -1, idx, "missing %s", marker)
		assert.Greater(t, idx, last, "%s out of order", marker)
		last = idx
	}
}

func TestRender_Cover(t *testing.T) {
	out, err := NewRenderer(StaticPathAssets{Prefix: "/files"}).Render(fullSnapshot())
	require.NoError(t, err)

	assert.Contains(t, out, "<title>Riverside Elementary Survey Report</title>")
	assert.Contains(t, out, "<h1>Riverside Elementary</h1>")
	assert.Contains(t, out, "<dd>Asbestos, Lead</dd>")
	assert.Contains(t, out, "<dd>May 14, 2024</dd>")
	assert.Contains(t, out, "<dd>In Progress</dd>")
	assert.Contains(t, out, `<img src="/files/site/overview.jpg" alt="Site overview">`)
}

func TestRender_SitePhotoOverrideWins(t *testing.T) {
	snap := fullSnapshot()
	snap.SitePhotoOverride = &domain.Photo{Filename: "ignored.jpg", Embedded: "data:image/jpeg;base64,QUJD"}

	out, err := NewRenderer(StaticPathAssets{Prefix: "/files"}).Render(snap)
	require.NoError(t, err)

	assert.Contains(t, out, `<img src="data:image/jpeg;base64,QUJD" alt="Site overview">`)
	assert.NotContains(t, out, "site/overview.jpg")
}

func TestRender_AreaSummaryRollups(t *testing.T) {
	out, err := NewRenderer(nil).Render(fullSnapshot())
	require.NoError(t, err)

	ha1 := "<tr><td>HA-1</td><td>Pipe Insulation</td><td>—</td><td>2</td><td>15</td></tr>"
	ha2 := "<tr><td>HA-2</td><td>Floor Tile</td><td>—</td><td>1</td><td>—</td></tr>"
	assert.Contains(t, out, ha1)
	assert.Contains(t, out, ha2)
	assert.Less(t, strings.Index(out, ha1), strings.Index(out, ha2), "areas are ordered by code")
	assert.Contains(t, out, "<tr><td>Boiler Room</td><td>Basement mechanical space</td></tr>")
}

func TestRender_AsbestosRows(t *testing.T) {
	out, err := NewRenderer(StaticPathAssets{Prefix: "/files"}).Render(fullSnapshot())
	require.NoError(t, err)

	assert.Contains(t, out, "<td>A-1</td><td>—</td><td>HA-1</td><td>—</td><td>Thermal System Insulation</td><td>Chrysotile</td><td>15%</td><td>10 lf</td><td>Significantly Damaged</td>")
	assert.Contains(t, out, "<td>A-3 (1/3)</td>")
	assert.Contains(t, out, "<td>A-3 (3/3)</td>")
	assert.Contains(t, out, "<td>Vinyl Asbestos Tile</td><td>—</td><td>3%</td>")
	assert.Contains(t, out, "<td>Mastic / Adhesive</td>")
	assert.Contains(t, out, "<h3>Sample A-1</h3>")
	assert.Contains(t, out, `<img src="/files/samples/a1.jpg" alt="IMG_0001.jpg">`)
	assert.NotContains(t, out, "<h3>Sample A-2</h3>", "samples without photos get no photo block")
}

func TestRender_PaintRows(t *testing.T) {
	out, err := NewRenderer(StaticPathAssets{Prefix: "/files"}).Render(fullSnapshot())
	require.NoError(t, err)

	assert.Contains(t, out, "<td>P-1</td><td>—</td><td>—</td><td>Radiator</td><td>White</td><td>—</td><td>—</td><td>1.2 ppm</td><td>—</td><td>—</td>")
	assert.Contains(t, out, `<img src="https://bucket.example.com/paint/p1.jpg" alt="paint/p1.jpg">`)
}

func TestRender_ObservationsAndMap(t *testing.T) {
	out, err := NewRenderer(StaticPathAssets{Prefix: "/files"}).Render(fullSnapshot())
	require.NoError(t, err)

	assert.Contains(t, out, "<h3>Boiler Room</h3>")
	assert.Contains(t, out, "<strong>Risk Level:</strong> High")
	assert.Contains(t, out, "<strong>Sample Collected:</strong> Yes")
	assert.Contains(t, out, "<strong>Sample Collected:</strong> —")
	assert.Contains(t, out, `<img src="data:image/png;base64,AAA/=" alt="obs/o1.jpg">`)
	assert.Contains(t, out, "marker=40.7128%2C-74.006")
	assert.NotContains(t, out, "marker=51.5")
}

func TestRender_NoMapWithoutCoordinates(t *testing.T) {
	snap := fullSnapshot()
	for i := range snap.Observations {
		snap.Observations[i].Latitude = nil
	}

	out, err := NewRenderer(nil).Render(snap)
	require.NoError(t, err)
	assert.NotContains(t, out, "<iframe")
}

func TestRender_EmptySnapshotPlaceholders(t *testing.T) {
	out, err := NewRenderer(nil).Render(Snapshot{})
	require.NoError(t, err)

	assert.Contains(t, out, `<tr><td class="empty" colspan="2">No functional areas.</td></tr>`)
	assert.Contains(t, out, `<tr><td class="empty" colspan="5">No homogeneous areas.</td></tr>`)
	assert.Contains(t, out, `<tr><td class="empty" colspan="12">No asbestos samples.</td></tr>`)
	assert.Contains(t, out, `<tr><td class="empty" colspan="10">No paint samples.</td></tr>`)
	assert.Contains(t, out, `<p class="empty">No observations.</p>`)
	assert.Contains(t, out, "<h1></h1>", "missing site name renders empty")
	assert.Contains(t, out, "<dd>—</dd>")
	assert.NotContains(t, out, "<img")
	assert.NotContains(t, out, "<footer>")
}

func TestRender_EscapesFreeText(t *testing.T) {
	snap := fullSnapshot()
	snap.Survey.SiteName = `<script>alert("x")</script>`
	snap.Observations[0].Notes = `<img src=x onerror=alert(1)>`

	out, err := NewRenderer(nil).Render(snap)
	require.NoError(t, err)

	assert.NotContains(t, out, "<script>")
	assert.NotContains(t, out, "<img src=x")
	assert.Contains(t, out, "&lt;script&gt;")
	assert.Contains(t, out, "&lt;img src=x onerror=alert(1)&gt;")
}

func TestRender_DropsUnsafePhotoURL(t *testing.T) {
	snap := Snapshot{
		AsbestosSamples: []domain.AsbestosSample{{ID: 1, SampleNumber: "A-1"}},
		AsbestosPhotos:  map[int64][]domain.Photo{1: {{URL: "javascript:alert(1)", OriginalName: "bad.jpg"}}},
	}

	out, err := NewRenderer(nil).Render(snap)
	require.NoError(t, err)
	assert.NotContains(t, out, "javascript:")
	assert.Contains(t, out, "<figcaption>bad.jpg</figcaption>")
}

func TestRender_EmbeddedOnlySkipsStorageKeys(t *testing.T) {
	out, err := NewRenderer(EmbeddedOnlyAssets{}).Render(fullSnapshot())
	require.NoError(t, err)

	assert.NotContains(t, out, "samples/a1.jpg\"")
	assert.Contains(t, out, "<figcaption>IMG_0001.jpg</figcaption>")
	assert.Contains(t, out, `src="data:image/png;base64,AAA/="`)
}

func TestRender_Deterministic(t *testing.T) {
	snap := fullSnapshot()
	snap.GeneratedAt = time.Date(2024, time.June, 1, 9, 30, 0, 0, time.UTC)
	r := NewRenderer(StaticPathAssets{Prefix: "/files"})

	first, err := r.Render(snap)
	require.NoError(t, err)
	second, err := r.Render(fullSnapshotWithTime(snap.GeneratedAt))
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Contains(t, first, "<footer>Generated June 1, 2024 09:30 UTC</footer>")
}

func fullSnapshotWithTime(ts time.Time) Snapshot {
	s := fullSnapshot()
	s.GeneratedAt = ts
	return s
}

func TestRender_ConcurrentUse(t *testing.T) {
	r := NewRenderer(StaticPathAssets{Prefix: "/files"})
	want, err := r.Render(fullSnapshot())
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]string, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = r.Render(fullSnapshot())
		}(i)
	}
	wg.Wait()

	for _, got := range results {
		assert.Equal(t, want, got)
	}
}
