package export

import (
	"strings"
	"testing"

	"github.com/terraincognita07/selene/internal/models"
	"github.com/terraincognita07/selene/internal/services"
)

func summaryFixtures() []models.PainRecord {
	return []models.PainRecord{
		{Date: "2024-01-15", Time: "08:00", PainLevel: 8, PainTypes: []string{models.PainTypeCramping},
			MenstrualStatus: models.StatusDay1, Medications: []models.Medication{{Name: "ibuprofen"}}, Effectiveness: 8},
		{Date: "2024-01-16", Time: "09:00", PainLevel: 5, PainTypes: []string{models.PainTypeAching},
			MenstrualStatus: models.StatusDay2To3, Medications: []models.Medication{{Name: "ibuprofen"}}, Effectiveness: 7},
	}
}

func TestGenerateMedicalSummaryOverview(t *testing.T) {
	records := summaryFixtures()
	analytics := services.CalculateAnalytics(records)
	summary := GenerateMedicalSummary(records, analytics)

	if summary.TotalEntries != 2 {
		t.Fatalf("unexpected total %d", summary.TotalEntries)
	}
	if !strings.Contains(summary.PatientOverview, "2 recorded entries") {
		t.Fatalf("overview must state the entry count: %s", summary.PatientOverview)
	}
	if !strings.Contains(summary.PatientOverview, "6.5 out of 10") {
		t.Fatalf("overview must state the average: %s", summary.PatientOverview)
	}
	if summary.PeakPainLevel != 8 {
		t.Fatalf("unexpected peak %d", summary.PeakPainLevel)
	}
	if summary.HighestPainPhase == nil || *summary.HighestPainPhase != "Day 1" {
		t.Fatalf("unexpected phase: %v", summary.HighestPainPhase)
	}
	if len(summary.EffectiveTreatments) != 1 || !strings.Contains(summary.EffectiveTreatments[0], "Ibuprofen") {
		t.Fatalf("unexpected treatments: %v", summary.EffectiveTreatments)
	}
}

func TestGenerateMedicalSummaryEmptyInput(t *testing.T) {
	summary := GenerateMedicalSummary(nil, services.CalculateAnalytics(nil))

	if summary.TotalEntries != 0 || summary.PeakPainLevel != 0 {
		t.Fatalf("unexpected zero-state: %+v", summary)
	}
	if summary.HighestPainPhase != nil {
		t.Fatalf("no cycle data must leave the phase nil")
	}
	if !strings.Contains(summary.PatientOverview, "0 recorded entries") {
		t.Fatalf("unexpected overview: %s", summary.PatientOverview)
	}
}

func TestGenerateMedicalSummaryHighPainRecommendation(t *testing.T) {
	records := []models.PainRecord{
		{Date: "2024-01-15", PainLevel: 8, MenstrualStatus: models.StatusDay1},
		{Date: "2024-01-16", PainLevel: 9, MenstrualStatus: models.StatusDay1},
	}
	summary := GenerateMedicalSummary(records, services.CalculateAnalytics(records))

	var painManagement *Recommendation
	for index := range summary.Recommendations {
		if summary.Recommendations[index].Category == "Pain Management" {
			painManagement = &summary.Recommendations[index]
		}
	}
	if painManagement == nil {
		t.Fatalf("expected pain management recommendation: %v", summary.Recommendations)
	}
	if painManagement.Priority != "high" {
		t.Fatalf("expected high priority, got %s", painManagement.Priority)
	}
}

func TestGenerateMedicalSummaryAlwaysRecommendsTracking(t *testing.T) {
	summary := GenerateMedicalSummary(nil, services.CalculateAnalytics(nil))

	found := false
	for _, recommendation := range summary.Recommendations {
		if recommendation.Category == "Tracking" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected tracking recommendation: %v", summary.Recommendations)
	}
}
