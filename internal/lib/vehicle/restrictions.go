// Package vehicle derives structured travel restrictions from a vehicle's
// physical parameters. The rules are independent of which routing provider
// produced the path.
package vehicle

import (
	"fmt"
	"strings"

	"github.com/girard-solutions/itineris"
)

// Authoritative threshold table. Warning bands include their lower bound, so
// a vehicle sitting exactly on a boundary is flagged; hard limits are strict
// greater-than comparisons.
const (
	maxMassTonnes     = 44.0
	warnMassTonnes    = 40.0
	maxHeightM        = 4.5
	warnHeightM       = 4.0
	maxWidthM         = 2.55
	maxLengthM        = 16.5
	categoryMassGuess = 26.0
	defaultMassTonnes = 3.5
)

// DeriveRestrictions maps a vehicle profile to structured restrictions and
// matching human-readable warnings. Every restriction, error severity
// included, contributes one warning string so the caller can always present
// the condition in plain language.
func DeriveRestrictions(profile itineris.VehicleProfile) ([]itineris.Restriction, []string) {
	v := profile.Normalized()

	var restrictions []itineris.Restriction
	var warnings []string

	add := func(kind itineris.RestrictionKind, severity itineris.Severity, description string) {
		restrictions = append(restrictions, itineris.Restriction{
			Kind:        kind,
			Description: description,
			Severity:    severity,
		})
		warnings = append(warnings, description)
	}

	switch {
	case v.MassTonnes > maxMassTonnes:
		add(itineris.RestrictionWeight, itineris.SeverityError,
			fmt.Sprintf("vehicle mass %.1f t exceeds the %.0f t legal maximum", v.MassTonnes, maxMassTonnes))
	case v.MassTonnes > warnMassTonnes:
		add(itineris.RestrictionWeight, itineris.SeverityWarning,
			fmt.Sprintf("vehicle mass %.1f t is close to the %.0f t legal maximum", v.MassTonnes, maxMassTonnes))
	}

	switch {
	case v.HeightM > maxHeightM:
		add(itineris.RestrictionHeight, itineris.SeverityError,
			fmt.Sprintf("vehicle height %.2f m exceeds the %.1f m limit", v.HeightM, maxHeightM))
	case v.HeightM >= warnHeightM:
		add(itineris.RestrictionHeight, itineris.SeverityWarning,
			fmt.Sprintf("vehicle height %.2f m may be refused by low structures (warning above %.1f m)", v.HeightM, warnHeightM))
	}

	if v.WidthM > maxWidthM {
		add(itineris.RestrictionWidth, itineris.SeverityError,
			fmt.Sprintf("vehicle width %.2f m exceeds the %.2f m limit", v.WidthM, maxWidthM))
	}

	if v.LengthM > maxLengthM {
		add(itineris.RestrictionLength, itineris.SeverityError,
			fmt.Sprintf("vehicle length %.2f m exceeds the %.1f m limit", v.LengthM, maxLengthM))
	}

	if v.Hazmat {
		add(itineris.RestrictionHazmat, itineris.SeverityWarning,
			"hazardous materials transport: tunnel and urban access restrictions may apply")
	}

	return restrictions, warnings
}

// Record is a loosely-shaped vehicle record as stored by the embedding
// application. Zero values mean the field is absent.
type Record struct {
	MassTonnes        float64
	GrossWeightTonnes float64
	Category          string
}

// heavyCategoryKeywords mark categories that imply a heavy vehicle when no
// weight field is present.
var heavyCategoryKeywords = []string{"heavy", "truck", "hgv", "lorry", "camion", "poids lourd", "semi"}

// EstimateMassTonnes extracts a usable mass from an arbitrary vehicle
// record: explicit mass first, then gross weight, then a conservative guess
// for heavy-sounding categories, and finally the light-van default. It
// never fails on missing data.
func EstimateMassTonnes(rec Record) float64 {
	if rec.MassTonnes > 0 {
		return rec.MassTonnes
	}
	if rec.GrossWeightTonnes > 0 {
		return rec.GrossWeightTonnes
	}

	category := strings.ToLower(rec.Category)
	for _, keyword := range heavyCategoryKeywords {
		if strings.Contains(category, keyword) {
			return categoryMassGuess
		}
	}
	return defaultMassTonnes
}
