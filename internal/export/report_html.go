package export

import (
	"fmt"
	"html/template"
	"sort"
	"strings"
	"time"

	"github.com/terraincognita07/selene/internal/apperrors"
	"github.com/terraincognita07/selene/internal/models"
	"github.com/terraincognita07/selene/internal/services"
)

const ReportTitle = "Pain Tracking Medical Report"

// ExportOptions selects the window and optional report sections.
type ExportOptions struct {
	StartDate       *time.Time
	EndDate         *time.Time
	IncludeSummary  bool
	IncludeInsights bool
	IncludeCharts   bool
}

// DefaultExportOptions enables every optional section with no date window.
func DefaultExportOptions() ExportOptions {
	return ExportOptions{IncludeSummary: true, IncludeInsights: true, IncludeCharts: true}
}

type reportContent struct {
	Title       string
	GeneratedAt time.Time
	Period      string
	Records     []models.PainRecord
	Analytics   services.PainAnalytics
	Summary     MedicalSummary
	Options     ExportOptions
}

// buildReportContent filters the records to the requested window and
// recomputes analytics over the filtered set. An empty window is an error:
// a report over nothing helps nobody.
func buildReportContent(records []models.PainRecord, options ExportOptions, now time.Time) (reportContent, error) {
	filtered := filterByWindow(records, options)
	if len(filtered) == 0 {
		return reportContent{}, apperrors.New(apperrors.CodeExportNoData, "no data available for export")
	}

	analytics := services.CalculateAnalytics(filtered)
	return reportContent{
		Title:       ReportTitle,
		GeneratedAt: now,
		Period:      describePeriod(filtered, options),
		Records:     sortedByDateDesc(filtered),
		Analytics:   analytics,
		Summary:     GenerateMedicalSummary(filtered, analytics),
		Options:     options,
	}, nil
}

func filterByWindow(records []models.PainRecord, options ExportOptions) []models.PainRecord {
	filtered := make([]models.PainRecord, 0, len(records))
	for _, record := range records {
		day := record.EventDate()
		if options.StartDate != nil && day.Before(dayOf(*options.StartDate)) {
			continue
		}
		if options.EndDate != nil && day.After(dayOf(*options.EndDate)) {
			continue
		}
		filtered = append(filtered, record)
	}
	return filtered
}

func dayOf(at time.Time) time.Time {
	return time.Date(at.Year(), at.Month(), at.Day(), 0, 0, 0, 0, time.UTC)
}

func describePeriod(records []models.PainRecord, options ExportOptions) string {
	start, end := "", ""
	for _, record := range records {
		if start == "" || record.Date < start {
			start = record.Date
		}
		if end == "" || record.Date > end {
			end = record.Date
		}
	}
	if options.StartDate != nil {
		start = options.StartDate.Format(models.RecordDateLayout)
	}
	if options.EndDate != nil {
		end = options.EndDate.Format(models.RecordDateLayout)
	}
	return fmt.Sprintf("%s - %s", FormatRecordDate(start), FormatRecordDate(end))
}

func sortedByDateDesc(records []models.PainRecord) []models.PainRecord {
	sorted := make([]models.PainRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Date == sorted[j].Date {
			return sorted[i].Time > sorted[j].Time
		}
		return sorted[i].Date > sorted[j].Date
	})
	return sorted
}

var reportTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"painLevel":  FormatPainLevel,
	"avgPain":    FormatAveragePain,
	"recordDate": FormatRecordDate,
	"reportDate": FormatReportDate,
	"phaseLabel": MenstrualStatusLabel,
	"join":       joinOrNone,
	"medNames": func(medications []models.Medication) string {
		names := make([]string, 0, len(medications))
		for _, medication := range medications {
			names = append(names, medication.Name)
		}
		return joinOrNone(names)
	},
	"factors": formatLifestyleFactors,
}).Parse(reportTemplateHTML))

func formatLifestyleFactors(factors []models.LifestyleFactor) string {
	parts := make([]string, 0, len(factors))
	for _, factor := range factors {
		parts = append(parts, fmt.Sprintf("%s: %g", LifestyleFactorLabel(factor.Factor), factor.Value))
	}
	return joinOrNone(parts)
}

// ExportToHTML renders the full medical report as a standalone HTML
// document.
func ExportToHTML(records []models.PainRecord, options ExportOptions) (string, error) {
	content, err := buildReportContent(records, options, time.Now().UTC())
	if err != nil {
		return "", err
	}

	var rendered strings.Builder
	if err := reportTemplate.Execute(&rendered, content); err != nil {
		return "", apperrors.Wrap(apperrors.CodeStorageError, "failed to render HTML report", err)
	}
	return rendered.String(), nil
}

const reportTemplateHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
  body { font-family: Georgia, "Times New Roman", serif; color: #1a1a1a; margin: 0; }
  .report-container { max-width: 900px; margin: 0 auto; padding: 32px; }
  .report-header { border-bottom: 3px solid #7c3aed; padding-bottom: 16px; margin-bottom: 24px; }
  .report-header h1 { margin: 0 0 8px; }
  .report-metadata { color: #555; font-size: 0.9em; }
  .summary-card { background: #f6f4fb; border: 1px solid #ddd6f3; border-radius: 8px; padding: 16px; margin: 16px 0; }
  .summary-card h3 { margin-top: 0; }
  section { margin-bottom: 28px; }
  table { width: 100%; border-collapse: collapse; font-size: 0.9em; }
  th, td { border: 1px solid #ccc; padding: 6px 8px; text-align: left; vertical-align: top; }
  th { background: #ede9fe; }
  .report-footer { border-top: 1px solid #ccc; margin-top: 32px; padding-top: 16px; font-size: 0.85em; color: #444; }
  .chart-placeholder { border: 1px dashed #999; padding: 24px; text-align: center; color: #666; }
</style>
</head>
<body>
<div class="report-container">
  <div class="report-header">
    <h1>{{.Title}}</h1>
    <div class="report-metadata">
      <div>Generated: {{reportDate .GeneratedAt}}</div>
      <div>Period: {{.Period}}</div>
      <div>Total Records: {{.Analytics.TotalRecords}}</div>
    </div>
  </div>

{{if .Options.IncludeSummary}}
  <section>
    <h2>Executive Summary</h2>
    <div class="summary-card">
      <p>{{.Summary.PatientOverview}}</p>
      <p>Peak pain level: {{painLevel .Summary.PeakPainLevel}}.
      {{if .Summary.HighestPainPhase}}Pain is typically highest during the {{.Summary.HighestPainPhase}} phase.{{end}}</p>
    </div>
  </section>

  <section>
    <h2>Patient Summary</h2>
    <div class="summary-card">
      <h3>Average Pain Level</h3>
      <p>{{avgPain .Analytics.AveragePainLevel}}</p>
    </div>
    <div class="summary-card">
      <h3>Most Effective Treatments</h3>
      <p>{{join .Summary.EffectiveTreatments}}</p>
    </div>
  </section>
{{end}}

  <section>
    <h2>Pain Characteristics</h2>
    <table>
      <tr><th>Pain Type</th><th>Occurrences</th><th>Share</th></tr>
      {{range .Analytics.CommonPainTypes}}
      <tr><td>{{.Type}}</td><td>{{.Count}}</td><td>{{printf "%.1f%%" .Percentage}}</td></tr>
      {{end}}
    </table>
  </section>

  <section>
    <h2>Treatment History</h2>
    <table>
      <tr><th>Treatment</th><th>Uses</th><th>Average Effectiveness</th><th>Success Rate</th></tr>
      {{range .Analytics.EffectiveTreatments}}
      <tr><td>{{.Treatment}}</td><td>{{.UsageCount}}</td><td>{{avgPain .AverageEffectiveness}}</td><td>{{printf "%.1f%%" .SuccessRate}}</td></tr>
      {{end}}
    </table>
  </section>

  <section>
    <h2>Menstrual Cycle Patterns</h2>
    <table>
      <tr><th>Phase</th><th>Entries</th><th>Average Pain</th><th>Common Symptoms</th></tr>
      {{range .Analytics.CyclePatterns}}
      <tr><td>{{phaseLabel .Phase}}</td><td>{{.Frequency}}</td><td>{{avgPain .AveragePainLevel}}</td><td>{{join .CommonSymptoms}}</td></tr>
      {{end}}
    </table>
  </section>

{{if .Options.IncludeInsights}}
  <section>
    <h2>Clinical Insights</h2>
    <ul>
      {{range .Analytics.Insights}}<li>{{.}}</li>{{end}}
    </ul>
  </section>

  <section>
    <h2>Clinical Recommendations</h2>
    <ul>
      {{range .Summary.Recommendations}}<li><strong>{{.Category}}</strong> ({{.Priority}}): {{.Recommendation}}</li>{{end}}
    </ul>
  </section>
{{end}}

{{if .Options.IncludeCharts}}
  <section>
    <h2>Data Visualizations</h2>
    <div class="chart-placeholder">Pain level trend over time ({{len .Analytics.TrendData}} data points)</div>
  </section>
{{end}}

  <section>
    <h2>Detailed Pain Records</h2>
    <table>
      <tr><th>Date</th><th>Time</th><th>Pain</th><th>Types</th><th>Phase</th><th>Medications</th><th>Lifestyle</th><th>Notes</th></tr>
      {{range .Records}}
      <tr>
        <td>{{recordDate .Date}}</td>
        <td>{{.Time}}</td>
        <td>{{painLevel .PainLevel}}</td>
        <td>{{join .PainTypes}}</td>
        <td>{{phaseLabel .MenstrualStatus}}</td>
        <td>{{medNames .Medications}}</td>
        <td>{{factors .LifestyleFactors}}</td>
        <td>{{.Notes}}</td>
      </tr>
      {{end}}
    </table>
  </section>

  <div class="report-footer">
    <p><strong>Medical Disclaimer:</strong> This report is generated from self-reported data and is intended to support, not replace, professional medical evaluation.</p>
    <p><strong>Privacy Notice:</strong> This document contains sensitive health information. Handle and share it accordingly.</p>
  </div>
</div>
</body>
</html>
`
