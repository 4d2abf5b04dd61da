package importer

// Document is the YAML layout of one survey.
type Document struct {
	SiteName         string            `yaml:"site_name"`
	SiteAddress      string            `yaml:"site_address"`
	SurveyType       string            `yaml:"survey_type"`
	SurveyDate       string            `yaml:"survey_date"` // YYYY-MM-DD
	Inspector        string            `yaml:"inspector"`
	Status           string            `yaml:"status"`
	SitePhoto        *PhotoRef         `yaml:"site_photo"`
	FunctionalAreas  []FunctionalArea  `yaml:"functional_areas"`
	HomogeneousAreas []HomogeneousArea `yaml:"homogeneous_areas"`
	Observations     []Observation     `yaml:"observations"`
	AsbestosSamples  []AsbestosSample  `yaml:"asbestos_samples"`
	PaintSamples     []PaintSample     `yaml:"paint_samples"`
}

// PhotoRef points at a photo either as a local file to upload or as an
// existing URL or storage key.
type PhotoRef struct {
	File string `yaml:"file"`
	URL  string `yaml:"url"`
	Key  string `yaml:"key"`
	Name string `yaml:"name"`
}

type FunctionalArea struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
}

type HomogeneousArea struct {
	Code        string `yaml:"code"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
}

type Observation struct {
	Area            string     `yaml:"area"`
	RiskLevel       string     `yaml:"risk_level"`
	Latitude        *float64   `yaml:"latitude"`
	Longitude       *float64   `yaml:"longitude"`
	SampleCollected *bool      `yaml:"sample_collected"`
	Notes           string     `yaml:"notes"`
	Photos          []PhotoRef `yaml:"photos"`
}

type AsbestosSample struct {
	SampleNumber      string     `yaml:"sample_number"`
	FunctionalArea    string     `yaml:"functional_area"`
	HomogeneousArea   string     `yaml:"homogeneous_area"`
	Location          string     `yaml:"location"`
	MaterialType      string     `yaml:"material_type"`
	AsbestosType      string     `yaml:"asbestos_type"`
	AsbestosPercent   *float64   `yaml:"asbestos_percent"`
	EstimatedQuantity string     `yaml:"estimated_quantity"`
	Condition         string     `yaml:"condition"`
	CollectionMethod  string     `yaml:"collection_method"`
	Results           string     `yaml:"results"`
	Notes             string     `yaml:"notes"`
	Layers            []Layer    `yaml:"layers"`
	Photos            []PhotoRef `yaml:"photos"`
}

// Layer numbers are assigned from list position.
type Layer struct {
	MaterialType string   `yaml:"material_type"`
	AsbestosType string   `yaml:"asbestos_type"`
	Percent      *float64 `yaml:"percent"`
	Notes        string   `yaml:"notes"`
}

type PaintSample struct {
	SampleNumber     string     `yaml:"sample_number"`
	FunctionalArea   string     `yaml:"functional_area"`
	HomogeneousArea  string     `yaml:"homogeneous_area"`
	Location         string     `yaml:"location"`
	Substrate        string     `yaml:"substrate"`
	SubstrateOther   string     `yaml:"substrate_other"`
	Color            string     `yaml:"color"`
	Condition        string     `yaml:"condition"`
	CollectionMethod string     `yaml:"collection_method"`
	LeadResult       string     `yaml:"lead_result"`
	CadmiumResult    string     `yaml:"cadmium_result"`
	Notes            string     `yaml:"notes"`
	Photos           []PhotoRef `yaml:"photos"`
}
