package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/terraincognita07/selene/internal/models"
)

const reportDateLayout = "Jan 2, 2006"

func FormatPainLevel(level int) string {
	return fmt.Sprintf("%d/10", level)
}

func FormatAveragePain(average float64) string {
	return fmt.Sprintf("%.1f/10", average)
}

func FormatReportDate(at time.Time) string {
	return at.Format(reportDateLayout)
}

// FormatRecordDate renders a stored YYYY-MM-DD date for display. Malformed
// dates pass through unchanged rather than breaking the report.
func FormatRecordDate(date string) string {
	parsed, err := time.Parse(models.RecordDateLayout, date)
	if err != nil {
		return date
	}
	return parsed.Format(reportDateLayout)
}

// MenstrualStatusLabel maps a cycle phase to its clinical display label.
func MenstrualStatusLabel(status string) string {
	switch status {
	case models.StatusBeforePeriod:
		return "Before Period"
	case models.StatusDay1:
		return "Day 1"
	case models.StatusDay2To3:
		return "Days 2-3"
	case models.StatusDay4Plus:
		return "Day 4+"
	case models.StatusAfterPeriod:
		return "After Period"
	case models.StatusMidCycle:
		return "Mid-Cycle"
	case models.StatusIrregular:
		return "Irregular"
	default:
		return status
	}
}

// LifestyleFactorLabel maps a lifestyle factor to its display label.
func LifestyleFactorLabel(factor string) string {
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

func joinOrNone(values []string) string {
	if len(values) == 0 {
		return "None"
	}
	return strings.Join(values, ", ")
}
