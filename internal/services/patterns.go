package services

import (
	"fmt"
	"math"
	"sort"

	"github.com/terraincognita07/selene/internal/models"
)

const (
	PatternMenstrualCycle    = "menstrual_cycle"
	PatternTreatmentResponse = "treatment_response"

	minPatternRecords      = 3
	cyclePainDelta         = 1.5
	lowEffectivenessCutoff = 3.0
)

type Pattern struct {
	Type            string   `json:"type"`
	Description     string   `json:"description"`
	Confidence      float64  `json:"confidence"`
	Recommendations []string `json:"recommendations"`
}

// IdentifyPatterns looks for recurring structure in the record set. Fewer
// than three records never produce a pattern.
func IdentifyPatterns(records []models.PainRecord) []Pattern {
	if len(records) < minPatternRecords {
		return []Pattern{}
	}

	patterns := make([]Pattern, 0)
	if pattern := menstrualCyclePattern(records); pattern != nil {
		patterns = append(patterns, *pattern)
	}
	patterns = append(patterns, treatmentResponsePatterns(records)...)

	sort.SliceStable(patterns, func(i, j int) bool {
		return patterns[i].Confidence > patterns[j].Confidence
	})
	return patterns
}

// menstrualCyclePattern fires when one cycle phase averages at least 1.5
// pain points above the overall mean.
func menstrualCyclePattern(records []models.PainRecord) *Pattern {
	overall := averagePainLevel(records)
	phases := cyclePatterns(records)
	if len(phases) == 0 {
		return nil
	}

	peak := phases[0]
	if peak.AveragePainLevel < overall+cyclePainDelta {
		return nil
	}

	confidence := math.Min(1, (peak.AveragePainLevel-overall)/5)
	return &Pattern{
		Type: PatternMenstrualCycle,
		Description: fmt.Sprintf("Pain levels increase significantly during the %s phase (%.1f/10 vs %.1f/10 overall)",
			menstrualStatusText(peak.Phase), peak.AveragePainLevel, overall),
		Confidence: roundToTwoDecimals(confidence),
		Recommendations: []string{
			"Prepare pain management strategies before this phase begins",
			"Track whether early treatment reduces peak pain levels",
		},
	}
}

// treatmentResponsePatterns reports treatments that are consistently
// effective or consistently ineffective across at least two uses.
func treatmentResponsePatterns(records []models.PainRecord) []Pattern {
	patterns := make([]Pattern, 0)
	for _, treatment := range effectiveTreatments(records) {
		switch {
		case treatment.AverageEffectiveness >= effectivenessThreshold:
			patterns = append(patterns, Pattern{
				Type: PatternTreatmentResponse,
				Description: fmt.Sprintf("%s is consistently effective for you (%.1f/10 average across %d uses)",
					treatment.Treatment, treatment.AverageEffectiveness, treatment.UsageCount),
				Confidence: roundToTwoDecimals(treatment.AverageEffectiveness / 10),
				Recommendations: []string{
					fmt.Sprintf("Keep %s accessible as a first-line treatment", treatment.Treatment),
				},
			})
		case treatment.AverageEffectiveness <= lowEffectivenessCutoff:
			patterns = append(patterns, Pattern{
				Type: PatternTreatmentResponse,
				Description: fmt.Sprintf("%s provides little relief for you (%.1f/10 average across %d uses)",
					treatment.Treatment, treatment.AverageEffectiveness, treatment.UsageCount),
				Confidence: roundToTwoDecimals((10 - treatment.AverageEffectiveness) / 10),
				Recommendations: []string{
					fmt.Sprintf("Discuss alternatives to %s with your healthcare provider", treatment.Treatment),
				},
			})
		}
	}
	return patterns
}

func roundToTwoDecimals(value float64) float64 {
	return math.Round(value*100) / 100
}
