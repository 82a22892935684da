package export

import (
	"fmt"

	"github.com/terraincognita07/selene/internal/models"
	"github.com/terraincognita07/selene/internal/services"
)

const highAverageForReferral = 7.0

type Recommendation struct {
	Category       string `json:"category"`
	Priority       string `json:"priority"`
	Recommendation string `json:"recommendation"`
}

// MedicalSummary condenses the tracked data into the figures a clinician
// reads first. HighestPainPhase is nil when no cycle phase data exists.
type MedicalSummary struct {
	PatientOverview     string           `json:"patientOverview"`
	TotalEntries        int              `json:"totalEntries"`
	AveragePainLevel    float64          `json:"averagePainLevel"`
	PeakPainLevel       int              `json:"peakPainLevel"`
	HighestPainPhase    *string          `json:"highestPainPhase"`
	CommonPainTypes     []string         `json:"commonPainTypes"`
	EffectiveTreatments []string         `json:"effectiveTreatments"`
	KeyObservations     []string         `json:"keyObservations"`
	Recommendations     []Recommendation `json:"recommendations"`
}

// GenerateMedicalSummary builds the clinical overview from the record set
// and its precomputed analytics. It is safe on empty input.
func GenerateMedicalSummary(records []models.PainRecord, analytics services.PainAnalytics) MedicalSummary {
	summary := MedicalSummary{
		TotalEntries:        len(records),
		AveragePainLevel:    analytics.AveragePainLevel,
		CommonPainTypes:     []string{},
		EffectiveTreatments: []string{},
		KeyObservations:     []string{},
		Recommendations:     []Recommendation{},
	}

	summary.PatientOverview = fmt.Sprintf(
		"Patient documented %d recorded entries with an average pain level of %.1f out of 10.",
		summary.TotalEntries, summary.AveragePainLevel)

	for _, record := range records {
		if record.PainLevel > summary.PeakPainLevel {
			summary.PeakPainLevel = record.PainLevel
		}
	}

	if len(analytics.CyclePatterns) > 0 {
		label := MenstrualStatusLabel(analytics.CyclePatterns[0].Phase)
		summary.HighestPainPhase = &label
	}

	for _, painType := range analytics.CommonPainTypes {
		summary.CommonPainTypes = append(summary.CommonPainTypes, painType.Type)
	}
	for _, treatment := range analytics.EffectiveTreatments {
		summary.EffectiveTreatments = append(summary.EffectiveTreatments,
			fmt.Sprintf("%s (%.1f/10)", treatment.Treatment, treatment.AverageEffectiveness))
	}

	summary.KeyObservations = append(summary.KeyObservations, analytics.Insights...)
	summary.Recommendations = buildRecommendations(analytics)
	return summary
}

func buildRecommendations(analytics services.PainAnalytics) []Recommendation {
	recommendations := make([]Recommendation, 0, 3)

	if analytics.AveragePainLevel > highAverageForReferral {
		recommendations = append(recommendations, Recommendation{
			Category:       "Pain Management",
			Priority:       "high",
			Recommendation: "Average pain level exceeds 7/10. A pain management consultation is advised.",
		})
	}

	if len(analytics.EffectiveTreatments) > 0 {
		best := analytics.EffectiveTreatments[0]
		recommendations = append(recommendations, Recommendation{
			Category: "Treatment",
			Priority: "medium",
			Recommendation: fmt.Sprintf("%s has shown the best response (%.1f/10 across %d uses) and may warrant continued use.",
				best.Treatment, best.AverageEffectiveness, best.UsageCount),
		})
	}

	recommendations = append(recommendations, Recommendation{
		Category:       "Tracking",
		Priority:       "low",
		Recommendation: "Continue consistent daily tracking to strengthen the evidence base for treatment decisions.",
	})
	return recommendations
}
