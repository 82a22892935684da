package services

import (
	"strings"
	"testing"

	"github.com/terraincognita07/selene/internal/models"
)

func analyticsFixtures() []models.PainRecord {
	return []models.PainRecord{
		{Date: "2024-01-15", Time: "08:00", PainLevel: 8, PainTypes: []string{models.PainTypeCramping, models.PainTypeSharp},
			Symptoms: []string{models.SymptomNausea}, MenstrualStatus: models.StatusDay1,
			Medications: []models.Medication{{Name: "ibuprofen"}}, Effectiveness: 8},
		{Date: "2024-01-16", Time: "09:00", PainLevel: 7, PainTypes: []string{models.PainTypeCramping, models.PainTypeAching},
			Symptoms: []string{models.SymptomFatigue}, MenstrualStatus: models.StatusDay2To3,
			Medications: []models.Medication{{Name: "Ibuprofen"}}, Effectiveness: 7},
		{Date: "2024-01-20", Time: "10:00", PainLevel: 3, PainTypes: []string{models.PainTypeAching},
			MenstrualStatus: models.StatusMidCycle},
		{Date: "2024-02-12", Time: "11:00", PainLevel: 7, PainTypes: []string{models.PainTypeCramping},
			Symptoms: []string{models.SymptomNausea}, MenstrualStatus: models.StatusDay1,
			Medications: []models.Medication{{Name: "ibuprofen"}}, Effectiveness: 9},
		{Date: "2024-02-15", Time: "12:00", PainLevel: 3, PainTypes: []string{models.PainTypeThrobbing},
			MenstrualStatus: models.StatusAfterPeriod},
	}
}

func TestCalculateAnalyticsAveragePainLevel(t *testing.T) {
	analytics := CalculateAnalytics(analyticsFixtures())

	if analytics.TotalRecords != 5 {
		t.Fatalf("unexpected total %d", analytics.TotalRecords)
	}
	if analytics.AveragePainLevel != 5.6 {
		t.Fatalf("expected 5.6, got %v", analytics.AveragePainLevel)
	}
}

func TestCalculateAnalyticsPainTypeShares(t *testing.T) {
	analytics := CalculateAnalytics(analyticsFixtures())

	if len(analytics.CommonPainTypes) == 0 {
		t.Fatalf("expected pain type frequencies")
	}
	top := analytics.CommonPainTypes[0]
	if top.Type != models.PainTypeCramping || top.Count != 3 {
		t.Fatalf("expected cramping x3 on top, got %+v", top)
	}
	if top.Percentage != 42.9 {
		t.Fatalf("expected 42.9%% of all tags, got %v", top.Percentage)
	}
}

func TestCalculateAnalyticsTreatmentStats(t *testing.T) {
	analytics := CalculateAnalytics(analyticsFixtures())

	if len(analytics.EffectiveTreatments) != 1 {
		t.Fatalf("expected one qualifying treatment, got %d", len(analytics.EffectiveTreatments))
	}
	treatment := analytics.EffectiveTreatments[0]
	if treatment.Treatment != "Ibuprofen" {
		t.Fatalf("casing must be normalized, got %q", treatment.Treatment)
	}
	if treatment.UsageCount != 3 {
		t.Fatalf("case variants must aggregate, got %d uses", treatment.UsageCount)
	}
	if treatment.AverageEffectiveness != 8.0 {
		t.Fatalf("expected 8.0 average, got %v", treatment.AverageEffectiveness)
	}
	if treatment.SuccessRate != 100.0 {
		t.Fatalf("expected 100%% success, got %v", treatment.SuccessRate)
	}
}

func TestCalculateAnalyticsCyclePatterns(t *testing.T) {
	analytics := CalculateAnalytics(analyticsFixtures())

	if len(analytics.CyclePatterns) != 4 {
		t.Fatalf("expected 4 phases, got %d", len(analytics.CyclePatterns))
	}
	top := analytics.CyclePatterns[0]
	if top.Phase != models.StatusDay1 {
		t.Fatalf("expected day_1 with highest pain, got %s", top.Phase)
	}
	if top.AveragePainLevel != 7.5 || top.Frequency != 2 {
		t.Fatalf("unexpected day_1 aggregate: %+v", top)
	}
	if len(top.CommonSymptoms) == 0 || top.CommonSymptoms[0] != models.SymptomNausea {
		t.Fatalf("expected nausea as common day_1 symptom: %v", top.CommonSymptoms)
	}
}

func TestCalculateAnalyticsTrendDataAndDateRange(t *testing.T) {
	analytics := CalculateAnalytics(analyticsFixtures())

	if len(analytics.TrendData) != 5 {
		t.Fatalf("expected one point per record, got %d", len(analytics.TrendData))
	}
	if analytics.TrendData[0].Date != "2024-01-15" || analytics.TrendData[4].Date != "2024-02-15" {
		t.Fatalf("trend data must be date ascending: %v", analytics.TrendData)
	}
	if analytics.DateRange.Start != "2024-01-15" || analytics.DateRange.End != "2024-02-15" {
		t.Fatalf("unexpected date range: %+v", analytics.DateRange)
	}
}

func TestCalculateAnalyticsEmptyInput(t *testing.T) {
	analytics := CalculateAnalytics(nil)

	if analytics.TotalRecords != 0 || analytics.AveragePainLevel != 0 {
		t.Fatalf("unexpected zero-state: %+v", analytics)
	}
	if len(analytics.CommonPainTypes) != 0 || len(analytics.CyclePatterns) != 0 {
		t.Fatalf("expected empty aggregates")
	}
	if len(analytics.Insights) != 1 || analytics.Insights[0] != NoDataInsight {
		t.Fatalf("unexpected insights: %v", analytics.Insights)
	}
}

func containsInsight(insights []string, fragments ...string) bool {
	for _, insight := range insights {
		matched := true
		for _, fragment := range fragments {
			if !strings.Contains(insight, fragment) {
				matched = false
				break
			}
		}
		if matched {
			return true
		}
	}
	return false
}

func TestGenerateInsightsHighAverage(t *testing.T) {
	records := []models.PainRecord{
		{Date: "2024-01-15", PainLevel: 8, MenstrualStatus: models.StatusDay1},
		{Date: "2024-01-16", PainLevel: 9, MenstrualStatus: models.StatusDay1},
	}
	analytics := CalculateAnalytics(records)

	if !containsInsight(analytics.Insights, "high", "healthcare provider") {
		t.Fatalf("expected high pain insight: %v", analytics.Insights)
	}
}

func TestGenerateInsightsLowAverage(t *testing.T) {
	records := []models.PainRecord{
		{Date: "2024-01-15", PainLevel: 2, MenstrualStatus: models.StatusMidCycle},
		{Date: "2024-01-16", PainLevel: 3, MenstrualStatus: models.StatusMidCycle},
	}
	analytics := CalculateAnalytics(records)

	if !containsInsight(analytics.Insights, "low", "working well") {
		t.Fatalf("expected low pain insight: %v", analytics.Insights)
	}
}

func TestGenerateInsightsBestTreatmentAndTracking(t *testing.T) {
	analytics := CalculateAnalytics(analyticsFixtures())

	if !containsInsight(analytics.Insights, "Ibuprofen", "effectiveness") {
		t.Fatalf("expected treatment insight: %v", analytics.Insights)
	}
	if !containsInsight(analytics.Insights, "tracked", "5") {
		t.Fatalf("expected tracking insight: %v", analytics.Insights)
	}
}
