package report

import (
	"html/template"
	"strconv"
	"strings"

	"github.com/vbonduro/fieldsurvey/internal/domain"
)

type photoView struct {
	Src     template.URL
	Caption string
}

type photoBlock struct {
	Title  string
	Photos []photoView
}

// imageSrc lets inline data URIs through the template URL filter and drops
// anything that is neither absolute http(s) nor a host-relative path.
func imageSrc(src string) template.URL {
	switch {
	case strings.HasPrefix(src, "data:image/"),
		strings.HasPrefix(src, "http://"),
		strings.HasPrefix(src, "https://"),
		strings.HasPrefix(src, "/"):
		return template.URL(src)
	}
	return ""
}

func (r *Renderer) photoViews(photos []domain.Photo) []photoView {
	views := make([]photoView, 0, len(photos))
	for _, p := range photos {
		caption := p.OriginalName
		if caption == "" {
			caption = p.Filename
		}
		views = append(views, photoView{
			Src:     imageSrc(PhotoSource(p, r.Assets)),
			Caption: caption,
		})
	}
	return views
}

type coverView struct {
	SiteName    string
	SiteAddress string
	SurveyType  string
	SurveyDate  string
	Inspector   string
	Status      string
	PhotoSrc    template.URL
}

func (r *Renderer) CoverSection(s Snapshot) (template.HTML, error) {
	sv := s.Survey
	var src string
	if s.SitePhotoOverride != nil {
		src = PhotoSource(*s.SitePhotoOverride, r.Assets)
	}
	if src == "" {
		src = r.resolve(sv.SitePhoto)
	}
	return execute("cover", coverView{
		SiteName:    sv.SiteName,
		SiteAddress: sv.SiteAddress,
		SurveyType:  orPlaceholder(FormatSurveyType(sv.SurveyType)),
		SurveyDate:  FormatDate(sv.SurveyDate),
		Inspector:   orPlaceholder(sv.InspectorName),
		Status:      orPlaceholder(FormatStatus(sv.Status)),
		PhotoSrc:    imageSrc(src),
	})
}

func (r *Renderer) resolve(candidate string) string {
	if r.Assets == nil {
		return ResolveAssetURL(candidate, "")
	}
	return r.Assets.Resolve(candidate)
}

type functionalAreaRow struct {
	Title       string
	Description string
}

type homogeneousAreaRow struct {
	Code        string
	Title       string
	Description string
	Count       string
	Total       string
}

type areasView struct {
	FunctionalAreas  []functionalAreaRow
	HomogeneousAreas []homogeneousAreaRow
}

func AreaSummarySection(functional []domain.FunctionalArea, homogeneous []domain.HomogeneousArea, samples []domain.AsbestosSample) (template.HTML, error) {
	view := areasView{}
	for _, fa := range functional {
		view.FunctionalAreas = append(view.FunctionalAreas, functionalAreaRow{
			Title:       fa.Title,
			Description: orPlaceholder(fa.Description),
		})
	}

	rollups := RollupByHomogeneousArea(samples)
	for _, ha := range SortHomogeneousAreas(homogeneous) {
		r := rollups[ha.Code]
		total := Placeholder
		if r.Total > 0 {
			total = FormatNumber(r.Total)
		}
		view.HomogeneousAreas = append(view.HomogeneousAreas, homogeneousAreaRow{
			Code:        orPlaceholder(ha.Code),
			Title:       ha.Title,
			Description: orPlaceholder(ha.Description),
			Count:       strconv.Itoa(r.Count),
			Total:       total,
		})
	}
	return execute("areas", view)
}

type asbestosRow struct {
	Label           string
	FunctionalArea  string
	HomogeneousArea string
	Location        string
	Material        string
	Type            string
	Percent         string
	Quantity        string
	Condition       string
	Collection      string
	Results         string
	Notes           string
}

type sampleSectionView[R any] struct {
	Rows        []R
	PhotoBlocks []photoBlock
}

func (r *Renderer) AsbestosSection(samples []domain.AsbestosSample, layers map[int64][]domain.Layer, photos map[int64][]domain.Photo) (template.HTML, error) {
	view := sampleSectionView[asbestosRow]{}
	for _, row := range ExplodeLayers(samples, layers) {
		s := row.Sample
		view.Rows = append(view.Rows, asbestosRow{
			Label:           row.Label(),
			FunctionalArea:  orPlaceholder(s.FunctionalArea),
			HomogeneousArea: orPlaceholder(s.HomogeneousArea),
			Location:        orPlaceholder(s.Location),
			Material:        orPlaceholder(FormatMaterialType(row.MaterialType())),
			Type:            orPlaceholder(SentenceCaseIfSingleWord(row.AsbestosType())),
			Percent:         FormatOptionalNumber(row.Percent(), "%"),
			Quantity:        orPlaceholder(s.EstimatedQuantity),
			Condition:       orPlaceholder(FormatStatus(s.Condition)),
			Collection:      orPlaceholder(SentenceCaseIfSingleWord(s.CollectionMethod)),
			Results:         orPlaceholder(s.Results),
			Notes:           orPlaceholder(row.Notes()),
		})
	}
	for _, s := range samples {
		if ps := photos[s.ID]; len(ps) > 0 {
			view.PhotoBlocks = append(view.PhotoBlocks, photoBlock{Title: s.SampleNumber, Photos: r.photoViews(ps)})
		}
	}
	return execute("asbestos", view)
}

type paintRow struct {
	Label          string
	FunctionalArea string
	Location       string
	Substrate      string
	Color          string
	Condition      string
	Collection     string
	Lead           string
	Cadmium        string
	Notes          string
}

func (r *Renderer) PaintSection(samples []domain.PaintSample, photos map[int64][]domain.Photo) (template.HTML, error) {
	view := sampleSectionView[paintRow]{}
	for _, s := range samples {
		view.Rows = append(view.Rows, paintRow{
			Label:          s.SampleNumber,
			FunctionalArea: orPlaceholder(s.FunctionalArea),
			Location:       orPlaceholder(s.Location),
			Substrate:      orPlaceholder(FormatSubstrate(s)),
			Color:          orPlaceholder(SentenceCaseIfSingleWord(s.Color)),
			Condition:      orPlaceholder(FormatStatus(s.Condition)),
			Collection:     orPlaceholder(SentenceCaseIfSingleWord(s.CollectionMethod)),
			Lead:           FormatOptionalNumber(s.LeadResult, " ppm"),
			Cadmium:        FormatOptionalNumber(s.CadmiumResult, " ppm"),
			Notes:          orPlaceholder(s.Notes),
		})
		if ps := photos[s.ID]; len(ps) > 0 {
			view.PhotoBlocks = append(view.PhotoBlocks, photoBlock{Title: s.SampleNumber, Photos: r.photoViews(ps)})
		}
	}
	return execute("paint", view)
}

type observationView struct {
	Area            string
	RiskLevel       string
	SampleCollected string
	Coordinates     string
	Notes           string
	Photos          []photoView
}

type observationsView struct {
	Observations []observationView
	MapURL       template.URL
}

func (r *Renderer) ObservationsSection(observations []domain.Observation, photos map[int64][]domain.Photo) (template.HTML, error) {
	view := observationsView{}
	for _, o := range observations {
		ov := observationView{
			Area:            orPlaceholder(o.Area),
			RiskLevel:       orPlaceholder(FormatRiskLevel(o.RiskLevel)),
			SampleCollected: yesNo(o.SampleCollected),
			Notes:           orPlaceholder(o.Notes),
			Photos:          r.photoViews(photos[o.ID]),
		}
		if finite(o.Latitude) && finite(o.Longitude) {
			ov.Coordinates = FormatNumber(*o.Latitude) + ", " + FormatNumber(*o.Longitude)
		}
		view.Observations = append(view.Observations, ov)
	}
	if m, ok := LocateMap(observations); ok {
		view.MapURL = template.URL(m.EmbedURL())
	}
	return execute("observations", view)
}

func yesNo(b *bool) string {
	switch {
	case b == nil:
		return Placeholder
	case *b:
		return "Yes"
	default:
		return "No"
	}
}
