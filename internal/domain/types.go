package domain

import "time"

type Survey struct {
	ID            int64
	SiteName      string
	SiteAddress   string
	SurveyType    string // hyphen-joined hazard codes, e.g. "asbestos-lead"
	SurveyDate    *time.Time
	InspectorName string
	Status        string
	SitePhoto     string // storage key or URL of the site overview photo
	CreatedAt     time.Time
}

type FunctionalArea struct {
	ID          int64
	SurveyID    int64
	Title       string
	Description string
}

// HomogeneousArea is linked to samples only through the Code string stored on
// each sample, never by foreign key.
type HomogeneousArea struct {
	ID          int64
	SurveyID    int64
	Code        string
	Title       string
	Description string
}

type Observation struct {
	ID              int64
	SurveyID        int64
	Area            string
	RiskLevel       string
	Latitude        *float64
	Longitude       *float64
	SampleCollected *bool
	Notes           string
}

type AsbestosSample struct {
	ID                int64
	SurveyID          int64
	SampleNumber      string
	FunctionalArea    string
	HomogeneousArea   string
	Location          string
	MaterialType      string
	AsbestosType      string
	AsbestosPercent   *float64
	EstimatedQuantity string
	Condition         string
	CollectionMethod  string
	Results           string
	Notes             string
}

type PaintSample struct {
	ID               int64
	SurveyID         int64
	SampleNumber     string
	FunctionalArea   string
	HomogeneousArea  string
	Location         string
	Substrate        string
	SubstrateOther   string
	Color            string
	Condition        string
	CollectionMethod string
	LeadResult       string
	CadmiumResult    string
	Notes            string
}

// Layer overrides its sample's material fields for display when set.
type Layer struct {
	ID           int64
	SampleID     int64
	LayerNumber  int
	MaterialType string
	AsbestosType string
	Percent      *float64
	Notes        string
}

// PhotoKind names the entity type that owns a photo.
type PhotoKind string

const (
	PhotoKindObservation PhotoKind = "observation"
	PhotoKindAsbestos    PhotoKind = "asbestos"
	PhotoKindPaint       PhotoKind = "paint"
)

type Photo struct {
	ID           int64
	OwnerID      int64
	Filename     string // storage key
	OriginalName string
	Embedded     string // data: URI when delivered inline
	URL          string // absolute remote URL when known
	UploadedAt   time.Time
}
