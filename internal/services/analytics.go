package services

import (
	"fmt"
	"sort"
	"strings"

	"github.com/terraincognita07/selene/internal/models"
)

const (
	minTreatmentUses       = 2
	effectivenessThreshold = 7
	successRateThreshold   = 70.0
	highPainAverage        = 7.0
	lowPainAverage         = 3.0
)

const NoDataInsight = "No data available yet. Start tracking your pain to see analytics and insights."

type PainTypeFrequency struct {
	Type       string  `json:"type"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

type TreatmentStat struct {
	Treatment            string  `json:"treatment"`
	AverageEffectiveness float64 `json:"averageEffectiveness"`
	UsageCount           int     `json:"usageCount"`
	SuccessRate          float64 `json:"successRate"`
}

type CyclePattern struct {
	Phase            string   `json:"phase"`
	AveragePainLevel float64  `json:"averagePainLevel"`
	CommonSymptoms   []string `json:"commonSymptoms"`
	Frequency        int      `json:"frequency"`
}

type TrendPoint struct {
	Date           string  `json:"date"`
	PainLevel      float64 `json:"painLevel"`
	MenstrualPhase string  `json:"menstrualPhase"`
}

type AnalyticsDateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type PainAnalytics struct {
	TotalRecords        int                 `json:"totalRecords"`
	AveragePainLevel    float64             `json:"averagePainLevel"`
	CommonPainTypes     []PainTypeFrequency `json:"commonPainTypes"`
	EffectiveTreatments []TreatmentStat     `json:"effectiveTreatments"`
	CyclePatterns       []CyclePattern      `json:"cyclePatterns"`
	TrendData           []TrendPoint        `json:"trendData"`
	Insights            []string            `json:"insights"`
	DateRange           AnalyticsDateRange  `json:"dateRange"`
}

// CalculateAnalytics derives the full analytics view from a record set. It
// is pure: no storage access, a nil or empty slice yields zeroed results.
func CalculateAnalytics(records []models.PainRecord) PainAnalytics {
	analytics := PainAnalytics{
		TotalRecords:        len(records),
		CommonPainTypes:     []PainTypeFrequency{},
		EffectiveTreatments: []TreatmentStat{},
		CyclePatterns:       []CyclePattern{},
		TrendData:           []TrendPoint{},
	}

	if len(records) == 0 {
		analytics.Insights = []string{NoDataInsight}
		return analytics
	}

	analytics.AveragePainLevel = averagePainLevel(records)
	analytics.CommonPainTypes = commonPainTypes(records)
	analytics.EffectiveTreatments = effectiveTreatments(records)
	analytics.CyclePatterns = cyclePatterns(records)
	analytics.TrendData = trendData(records)
	analytics.DateRange = analyticsDateRange(records)
	analytics.Insights = GenerateInsights(analytics)
	return analytics
}

func averagePainLevel(records []models.PainRecord) float64 {
	var total int
	for _, record := range records {
		total += record.PainLevel
	}
	return roundToOneDecimal(float64(total) / float64(len(records)))
}

// commonPainTypes counts every pain type tag. Percentages are shares of all
// tags, not of records, so a record with three types contributes three.
func commonPainTypes(records []models.PainRecord) []PainTypeFrequency {
	counts := make(map[string]int)
	totalTags := 0
	for _, record := range records {
		for _, painType := range record.PainTypes {
			counts[painType]++
			totalTags++
		}
	}
	if totalTags == 0 {
		return []PainTypeFrequency{}
	}

	frequencies := make([]PainTypeFrequency, 0, len(counts))
	for painType, count := range counts {
		frequencies = append(frequencies, PainTypeFrequency{
			Type:       painType,
			Count:      count,
			Percentage: roundToOneDecimal(float64(count) / float64(totalTags) * 100),
		})
	}
	sort.Slice(frequencies, func(i, j int) bool {
		if frequencies[i].Count == frequencies[j].Count {
			return frequencies[i].Type < frequencies[j].Type
		}
		return frequencies[i].Count > frequencies[j].Count
	})
	return frequencies
}

type treatmentAccumulator struct {
	name      string
	uses      int
	total     int
	successes int
}

// effectiveTreatments aggregates per medication. A treatment only counts
// once it has at least two recorded uses; a use succeeds when the record's
// effectiveness reaches 7.
func effectiveTreatments(records []models.PainRecord) []TreatmentStat {
	accumulators := make(map[string]*treatmentAccumulator)
	for _, record := range records {
		for _, medication := range record.Medications {
			key := strings.ToLower(strings.TrimSpace(medication.Name))
			if key == "" {
				continue
			}
			accumulator, exists := accumulators[key]
			if !exists {
				accumulator = &treatmentAccumulator{name: medication.Name}
				accumulators[key] = accumulator
			}
			accumulator.uses++
			accumulator.total += record.Effectiveness
			if record.Effectiveness >= effectivenessThreshold {
				accumulator.successes++
			}
		}
	}

	stats := make([]TreatmentStat, 0, len(accumulators))
	for _, accumulator := range accumulators {
		if accumulator.uses < minTreatmentUses {
			continue
		}
		stats = append(stats, TreatmentStat{
			Treatment:            titleCase(accumulator.name),
			AverageEffectiveness: roundToOneDecimal(float64(accumulator.total) / float64(accumulator.uses)),
			UsageCount:           accumulator.uses,
			SuccessRate:          roundToOneDecimal(float64(accumulator.successes) / float64(accumulator.uses) * 100),
		})
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].AverageEffectiveness == stats[j].AverageEffectiveness {
			return stats[i].Treatment < stats[j].Treatment
		}
		return stats[i].AverageEffectiveness > stats[j].AverageEffectiveness
	})
	return stats
}

func cyclePatterns(records []models.PainRecord) []CyclePattern {
	type phaseAccumulator struct {
		total    int
		count    int
		symptoms map[string]int
	}

	phases := make(map[string]*phaseAccumulator)
	for _, record := range records {
		if record.MenstrualStatus == "" {
			continue
		}
		accumulator, exists := phases[record.MenstrualStatus]
		if !exists {
			accumulator = &phaseAccumulator{symptoms: map[string]int{}}
			phases[record.MenstrualStatus] = accumulator
		}
		accumulator.total += record.PainLevel
		accumulator.count++
		for _, symptom := range record.Symptoms {
			accumulator.symptoms[symptom]++
		}
	}

	patterns := make([]CyclePattern, 0, len(phases))
	for phase, accumulator := range phases {
		patterns = append(patterns, CyclePattern{
			Phase:            phase,
			AveragePainLevel: roundToOneDecimal(float64(accumulator.total) / float64(accumulator.count)),
			CommonSymptoms:   topSymptoms(accumulator.symptoms, 3),
			Frequency:        accumulator.count,
		})
	}
	sort.Slice(patterns, func(i, j int) bool {
		if patterns[i].AveragePainLevel == patterns[j].AveragePainLevel {
			return patterns[i].Phase < patterns[j].Phase
		}
		return patterns[i].AveragePainLevel > patterns[j].AveragePainLevel
	})
	return patterns
}

func topSymptoms(counts map[string]int, limit int) []string {
	type symptomCount struct {
		symptom string
		count   int
	}
	ranked := make([]symptomCount, 0, len(counts))
	for symptom, count := range counts {
		ranked = append(ranked, symptomCount{symptom: symptom, count: count})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].count == ranked[j].count {
			return ranked[i].symptom < ranked[j].symptom
		}
		return ranked[i].count > ranked[j].count
	})

	symptoms := make([]string, 0, limit)
	for _, entry := range ranked {
		if len(symptoms) == limit {
			break
		}
		symptoms = append(symptoms, entry.symptom)
	}
	return symptoms
}

func trendData(records []models.PainRecord) []TrendPoint {
	sorted := make([]models.PainRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Date == sorted[j].Date {
			return sorted[i].Time < sorted[j].Time
		}
		return sorted[i].Date < sorted[j].Date
	})

	points := make([]TrendPoint, 0, len(sorted))
	for _, record := range sorted {
		points = append(points, TrendPoint{
			Date:           record.Date,
			PainLevel:      float64(record.PainLevel),
			MenstrualPhase: record.MenstrualStatus,
		})
	}
	return points
}

func analyticsDateRange(records []models.PainRecord) AnalyticsDateRange {
	var start, end string
	for _, record := range records {
		if record.Date == "" {
			continue
		}
		if start == "" || record.Date < start {
			start = record.Date
		}
		if end == "" || record.Date > end {
			end = record.Date
		}
	}
	return AnalyticsDateRange{Start: start, End: end}
}

// GenerateInsights turns the aggregate figures into short plain-language
// observations.
func GenerateInsights(analytics PainAnalytics) []string {
	if analytics.TotalRecords == 0 {
		return []string{NoDataInsight}
	}

	insights := make([]string, 0, 4)

	switch {
	case analytics.AveragePainLevel >= highPainAverage:
		insights = append(insights, fmt.Sprintf(
			"Your average pain level is high (%.1f/10). Consider discussing pain management options with your healthcare provider.",
			analytics.AveragePainLevel))
	case analytics.AveragePainLevel <= lowPainAverage:
		insights = append(insights, fmt.Sprintf(
			"Your average pain level is low (%.1f/10). Your current pain management appears to be working well.",
			analytics.AveragePainLevel))
	}

	if best := bestTreatment(analytics.EffectiveTreatments); best != nil {
		insights = append(insights, fmt.Sprintf(
			"%s shows high effectiveness (%.1f/10) for your pain relief.",
			best.Treatment, best.AverageEffectiveness))
	}

	if len(analytics.CyclePatterns) > 0 {
		peak := analytics.CyclePatterns[0]
		insights = append(insights, fmt.Sprintf(
			"Your pain levels are typically highest during the %s phase (%.1f/10 average).",
			menstrualStatusText(peak.Phase), peak.AveragePainLevel))
	}

	insights = append(insights, fmt.Sprintf(
		"You have tracked %d pain records. Consistent tracking helps identify patterns and supports conversations with your healthcare provider.",
		analytics.TotalRecords))

	return insights
}

func bestTreatment(treatments []TreatmentStat) *TreatmentStat {
	for index := range treatments {
		treatment := treatments[index]
		if treatment.UsageCount >= minTreatmentUses && treatment.SuccessRate >= successRateThreshold {
			return &treatment
		}
	}
	return nil
}

func titleCase(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return trimmed
	}
	return strings.ToUpper(trimmed[:1]) + trimmed[1:]
}

func menstrualStatusText(status string) string {
	switch status {
	case models.StatusBeforePeriod:
		return "before period"
	case models.StatusDay1:
		return "day 1"
	case models.StatusDay2To3:
		return "days 2-3"
	case models.StatusDay4Plus:
		return "day 4+"
	case models.StatusAfterPeriod:
		return "after period"
	case models.StatusMidCycle:
		return "mid-cycle"
	case models.StatusIrregular:
		return "irregular"
	default:
		return status
	}
}
