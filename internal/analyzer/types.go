package analyzer

import "encoding/json"

// AnalysisResult is the body of a successful /analyze response.
type AnalysisResult struct {
	Address       string        `json:"address"`
	Latitude      float64       `json:"latitude"`
	Longitude     float64       `json:"longitude"`
	ElevationMin  float64       `json:"elevation_min"`
	ElevationMax  float64       `json:"elevation_max"`
	ElevationAvg  float64       `json:"elevation_avg"`
	SlopeAnalysis SlopeAnalysis `json:"slope_analysis"`
	AccessScore   AccessScore   `json:"access_score"`
	ReportPDF     string        `json:"report_pdf,omitempty"`
}

// SlopeAnalysis carries the terrain labels produced by the service.
type SlopeAnalysis struct {
	ElevationChangeMeters  float64 `json:"elevation_change_meters"`
	SlopeClassification    string  `json:"slope_classification"`
	BuildabilityAssessment string  `json:"buildability_assessment"`
}

// AccessScore arrives as either a JSON number or a JSON string and is
// displayed verbatim either way.
type AccessScore string

func (s *AccessScore) UnmarshalJSON(b []byte) error {
	if len(b) == 0 || string(b) == "null" {
		*s = ""
		return nil
	}
	if b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = AccessScore(v)
		return nil
	}
	*s = AccessScore(b)
	return nil
}

func (s AccessScore) String() string { return string(s) }
