package services

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/terraincognita07/selene/internal/models"
)

const (
	minTrendHistory    = 10
	trendHorizonDays   = 7
	trendWindowRecords = 14
	trendSlopeDamping  = 0.5

	minCorrelationSamples = 2
	minFactorSamples      = 3
)

type Correlation struct {
	Factor1      string  `json:"factor1"`
	Factor2      string  `json:"factor2"`
	Correlation  float64 `json:"correlation"`
	Significance float64 `json:"significance"`
	Description  string  `json:"description"`
}

// PredictTrends projects pain levels for the next seven days. It needs at
// least ten records of history; anything less returns an empty forecast.
func PredictTrends(records []models.PainRecord) []TrendPoint {
	if len(records) < minTrendHistory {
		return []TrendPoint{}
	}

	sorted := make([]models.PainRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Date == sorted[j].Date {
			return sorted[i].Time < sorted[j].Time
		}
		return sorted[i].Date < sorted[j].Date
	})

	window := sorted
	if len(window) > trendWindowRecords {
		window = window[len(window)-trendWindowRecords:]
	}

	baseline := weightedRecentAverage(window)
	slope := painSlope(window)

	latest := sorted[len(sorted)-1]
	latestDate := latest.EventDate()
	if latestDate.IsZero() {
		return []TrendPoint{}
	}

	forecast := make([]TrendPoint, 0, trendHorizonDays)
	for day := 1; day <= trendHorizonDays; day++ {
		predicted := baseline + slope*trendSlopeDamping*float64(day)
		predicted = math.Max(0, math.Min(float64(models.MaxPainLevel), predicted))
		forecast = append(forecast, TrendPoint{
			Date:           latestDate.AddDate(0, 0, day).Format(models.RecordDateLayout),
			PainLevel:      roundToOneDecimal(predicted),
			MenstrualPhase: latest.MenstrualStatus,
		})
	}
	return forecast
}

// weightedRecentAverage weights newer records linearly heavier.
func weightedRecentAverage(window []models.PainRecord) float64 {
	var weightedSum, weightTotal float64
	for index, record := range window {
		weight := float64(index + 1)
		weightedSum += weight * float64(record.PainLevel)
		weightTotal += weight
	}
	return weightedSum / weightTotal
}

// painSlope is the least-squares slope of pain level over record index.
func painSlope(window []models.PainRecord) float64 {
	n := float64(len(window))
	var sumX, sumY, sumXY, sumXX float64
	for index, record := range window {
		x := float64(index)
		y := float64(record.PainLevel)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}
	denominator := n*sumXX - sumX*sumX
	if denominator == 0 {
		return 0
	}
	return (n*sumXY - sumX*sumY) / denominator
}

// phaseOrdinal encodes cycle phases by typical proximity to menstruation,
// so phase and pain level can be correlated numerically.
func phaseOrdinal(status string) float64 {
	switch status {
	case models.StatusBeforePeriod:
		return 2
	case models.StatusDay1:
		return 3
	case models.StatusDay2To3:
		return 2.5
	case models.StatusDay4Plus:
		return 1.5
	case models.StatusAfterPeriod:
		return 1
	case models.StatusMidCycle:
		return 0
	default:
		return 1.5
	}
}

// CalculateCorrelations relates pain level to cycle phase and to every
// lifestyle factor with enough samples. Significance scales the correlation
// by sample size, capped at ten samples.
func CalculateCorrelations(records []models.PainRecord) []Correlation {
	if len(records) < minCorrelationSamples {
		return []Correlation{}
	}

	correlations := make([]Correlation, 0)

	phaseValues := make([]float64, 0, len(records))
	painValues := make([]float64, 0, len(records))
	for _, record := range records {
		phaseValues = append(phaseValues, phaseOrdinal(record.MenstrualStatus))
		painValues = append(painValues, float64(record.PainLevel))
	}
	if coefficient, ok := pearson(phaseValues, painValues); ok {
		correlations = append(correlations, buildCorrelation("Menstrual Phase", coefficient, len(records)))
	}

	for factor, samples := range lifestyleSamples(records) {
		if len(samples.factorValues) < minFactorSamples {
			continue
		}
		if coefficient, ok := pearson(samples.factorValues, samples.painValues); ok {
			correlations = append(correlations, buildCorrelation(factorText(factor), coefficient, len(samples.factorValues)))
		}
	}

	sort.SliceStable(correlations, func(i, j int) bool {
		return correlations[i].Significance > correlations[j].Significance
	})
	return correlations
}

type factorSampleSet struct {
	factorValues []float64
	painValues   []float64
}

func lifestyleSamples(records []models.PainRecord) map[string]*factorSampleSet {
	samples := make(map[string]*factorSampleSet)
	for _, record := range records {
		for _, factor := range record.LifestyleFactors {
			set, exists := samples[factor.Factor]
			if !exists {
				set = &factorSampleSet{}
				samples[factor.Factor] = set
			}
			set.factorValues = append(set.factorValues, factor.Value)
			set.painValues = append(set.painValues, float64(record.PainLevel))
		}
	}
	return samples
}

func buildCorrelation(factorName string, coefficient float64, sampleCount int) Correlation {
	significance := math.Abs(coefficient) * math.Min(1, float64(sampleCount)/10)
	return Correlation{
		Factor1:      factorName,
		Factor2:      "Pain Level",
		Correlation:  roundToTwoDecimals(coefficient),
		Significance: roundToTwoDecimals(significance),
		Description:  describeCorrelation(factorName, coefficient),
	}
}

func describeCorrelation(factorName string, coefficient float64) string {
	strength := "weak"
	if math.Abs(coefficient) >= 0.7 {
		strength = "strong"
	} else if math.Abs(coefficient) >= 0.4 {
		strength = "moderate"
	}
	direction := "positive"
	if coefficient < 0 {
		direction = "negative"
	}
	return fmt.Sprintf("%s %s correlation between %s and pain level",
		titleCase(strength), direction, strings.ToLower(factorName))
}

// pearson reports false when either series has zero variance.
func pearson(xs []float64, ys []float64) (float64, bool) {
	n := float64(len(xs))
	if len(xs) != len(ys) || len(xs) == 0 {
		return 0, false
	}

	var sumX, sumY float64
	for index := range xs {
		sumX += xs[index]
		sumY += ys[index]
	}
	meanX := sumX / n
	meanY := sumY / n

	var covariance, varianceX, varianceY float64
	for index := range xs {
		dx := xs[index] - meanX
		dy := ys[index] - meanY
		covariance += dx * dy
		varianceX += dx * dx
		varianceY += dy * dy
	}
	if varianceX == 0 || varianceY == 0 {
		return 0, false
	}
	return covariance / math.Sqrt(varianceX*varianceY), true
}

func factorText(factor string) string {
	switch factor {
	case models.FactorStressLevel:
		return "Stress Level"
	case models.FactorSleepHours:
		return "Sleep Hours"
	case models.FactorExerciseMinutes:
		return "Exercise Minutes"
	default:
		return factor
	}
}
