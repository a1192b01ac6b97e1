// Package render applies the fixed display formatting for analysis results:
// coordinates at six decimal places, elevations at one decimal place with a
// meter suffix, and service-produced labels passed through verbatim.
package render

import (
	"fmt"
	"strings"

	"site_analyzer/internal/analyzer"
)

// Coordinates formats a latitude/longitude pair.
func Coordinates(lat, lon float64) string {
	return fmt.Sprintf("%.6f, %.6f", lat, lon)
}

// Meters formats an elevation value in meters.
func Meters(v float64) string {
	return fmt.Sprintf("%.1fm", v)
}

// Fields is the flattened display form of a result. Every field is populated
// on success; none may be omitted.
type Fields struct {
	Address             string `json:"address"`
	Coordinates         string `json:"coordinates"`
	ElevationMin        string `json:"elevation_min"`
	ElevationMax        string `json:"elevation_max"`
	ElevationAvg        string `json:"elevation_avg"`
	ElevationChange     string `json:"elevation_change"`
	SlopeClassification string `json:"slope_classification"`
	Buildability        string `json:"buildability_assessment"`
	AccessScore         string `json:"access_score"`
}

// FieldsFrom maps a result into its display fields.
func FieldsFrom(r *analyzer.AnalysisResult) Fields {
	return Fields{
		Address:             r.Address,
		Coordinates:         Coordinates(r.Latitude, r.Longitude),
		ElevationMin:        Meters(r.ElevationMin),
		ElevationMax:        Meters(r.ElevationMax),
		ElevationAvg:        Meters(r.ElevationAvg),
		ElevationChange:     Meters(r.SlopeAnalysis.ElevationChangeMeters),
		SlopeClassification: r.SlopeAnalysis.SlopeClassification,
		Buildability:        r.SlopeAnalysis.BuildabilityAssessment,
		AccessScore:         r.AccessScore.String(),
	}
}

// Report renders the plaintext block printed by the CLI.
func Report(r *analyzer.AnalysisResult) string {
	f := FieldsFrom(r)
	var b strings.Builder
	fmt.Fprintf(&b, "Site Analysis Report\n")
	fmt.Fprintf(&b, "Location:          %s\n", f.Address)
	fmt.Fprintf(&b, "Coordinates:       %s\n", f.Coordinates)
	fmt.Fprintf(&b, "Minimum Elevation: %s\n", f.ElevationMin)
	fmt.Fprintf(&b, "Maximum Elevation: %s\n", f.ElevationMax)
	fmt.Fprintf(&b, "Average Elevation: %s\n", f.ElevationAvg)
	fmt.Fprintf(&b, "Elevation Change:  %s\n", f.ElevationChange)
	fmt.Fprintf(&b, "Classification:    %s\n", f.SlopeClassification)
	fmt.Fprintf(&b, "Buildability:      %s\n", f.Buildability)
	fmt.Fprintf(&b, "Access:            %s\n", f.AccessScore)
	return b.String()
}
