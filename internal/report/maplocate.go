package report

import (
	"math"
	"net/url"

	"github.com/vbonduro/fieldsurvey/internal/domain"
)

// mapDelta is the half-width of the bounding box in degrees. It is a fixed
// window around the marker, not a to-scale viewport.
const mapDelta = 0.005

const osmEmbedURL = "https://www.openstreetmap.org/export/embed.html"

type BBox struct {
	MinLon, MinLat, MaxLon, MaxLat float64
}

type MapEmbed struct {
	BBox      BBox
	MarkerLat float64
	MarkerLon float64
}

// LocateMap centres a map on the first observation with a finite lat/lon
// pair. Later geotagged observations are ignored.
func LocateMap(observations []domain.Observation) (MapEmbed, bool) {
	for _, o := range observations {
		if !finite(o.Latitude) || !finite(o.Longitude) {
			continue
		}
		lat, lon := *o.Latitude, *o.Longitude
		return MapEmbed{
			BBox: BBox{
				MinLon: lon - mapDelta,
				MinLat: lat - mapDelta,
				MaxLon: lon + mapDelta,
				MaxLat: lat + mapDelta,
			},
			MarkerLat: lat,
			MarkerLon: lon,
		}, true
	}
	return MapEmbed{}, false
}

func finite(v *float64) bool {
	return v != nil && !math.IsNaN(*v) && !math.IsInf(*v, 0)
}

// EmbedURL returns an OpenStreetMap embed URL for the box and marker.
func (m MapEmbed) EmbedURL() string {
	q := url.Values{}
	q.Set("bbox", FormatNumber(m.BBox.MinLon)+","+FormatNumber(m.BBox.MinLat)+","+
		FormatNumber(m.BBox.MaxLon)+","+FormatNumber(m.BBox.MaxLat))
	q.Set("layer", "mapnik")
	q.Set("marker", FormatNumber(m.MarkerLat)+","+FormatNumber(m.MarkerLon))
	return osmEmbedURL + "?" + q.Encode()
}
