package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/unidoc/unipdf/v3/creator"
	"github.com/unidoc/unipdf/v3/model"

	"github.com/terraincognita07/selene/internal/apperrors"
	"github.com/terraincognita07/selene/internal/models"
)

// ExportToPDF renders the medical report as a PDF document. Section
// selection follows the same options as the HTML export.
func ExportToPDF(records []models.PainRecord, options ExportOptions) ([]byte, error) {
	content, err := buildReportContent(records, options, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	document := creator.New()
	document.SetPageMargins(50, 50, 60, 60)

	regular, err := model.NewStandard14Font(model.HelveticaName)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeStorageError, "failed to render PDF report", err)
	}
	bold, err := model.NewStandard14Font(model.HelveticaBoldName)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeStorageError, "failed to render PDF report", err)
	}

	builder := &pdfBuilder{document: document, regular: regular, bold: bold}
	builder.title(content.Title)
	builder.metadata(content)

	if content.Options.IncludeSummary {
		builder.heading("Executive Summary")
		builder.paragraph(content.Summary.PatientOverview)
		builder.paragraph(fmt.Sprintf("Peak pain level: %s.", FormatPainLevel(content.Summary.PeakPainLevel)))
		if content.Summary.HighestPainPhase != nil {
			builder.paragraph(fmt.Sprintf("Pain is typically highest during the %s phase.", *content.Summary.HighestPainPhase))
		}

		builder.heading("Patient Summary")
		builder.paragraph(fmt.Sprintf("Average pain level: %s", FormatAveragePain(content.Analytics.AveragePainLevel)))
		builder.paragraph(fmt.Sprintf("Most effective treatments: %s", joinOrNone(content.Summary.EffectiveTreatments)))
	}

	builder.heading("Pain Characteristics")
	builder.table([]string{"Pain Type", "Occurrences", "Share"}, painTypeRows(content))

	builder.heading("Treatment History")
	builder.table([]string{"Treatment", "Uses", "Average Effectiveness", "Success Rate"}, treatmentRows(content))

	builder.heading("Menstrual Cycle Patterns")
	builder.table([]string{"Phase", "Entries", "Average Pain", "Common Symptoms"}, cycleRows(content))

	if content.Options.IncludeInsights {
		builder.heading("Clinical Insights")
		for _, insight := range content.Analytics.Insights {
			builder.paragraph("• " + insight)
		}

		builder.heading("Clinical Recommendations")
		for _, recommendation := range content.Summary.Recommendations {
			builder.paragraph(fmt.Sprintf("• %s (%s): %s",
				recommendation.Category, recommendation.Priority, recommendation.Recommendation))
		}
	}

	if content.Options.IncludeCharts {
		builder.heading("Data Visualizations")
		builder.paragraph(fmt.Sprintf("Pain level trend over time (%d data points).", len(content.Analytics.TrendData)))
	}

	builder.heading("Detailed Pain Records")
	builder.table([]string{"Date", "Time", "Pain", "Phase", "Medications", "Lifestyle"}, recordRows(content))

	builder.heading("Medical Disclaimer")
	builder.paragraph("This report is generated from self-reported data and is intended to support, not replace, professional medical evaluation.")
	builder.heading("Privacy Notice")
	builder.paragraph("This document contains sensitive health information. Handle and share it accordingly.")

	if builder.err != nil {
		return nil, apperrors.Wrap(apperrors.CodeStorageError, "failed to render PDF report", builder.err)
	}

	var buffer bytes.Buffer
	if err := document.Write(&buffer); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeStorageError, "failed to render PDF report", err)
	}
	return buffer.Bytes(), nil
}

// pdfBuilder accumulates drawing errors so the export reads top to bottom
// without an error check per element.
type pdfBuilder struct {
	document *creator.Creator
	regular  *model.PdfFont
	bold     *model.PdfFont
	err      error
}

func (builder *pdfBuilder) title(text string) {
	paragraph := builder.document.NewParagraph(text)
	paragraph.SetFont(builder.bold)
	paragraph.SetFontSize(22)
	paragraph.SetMargins(0, 0, 0, 6)
	builder.draw(paragraph)
}

func (builder *pdfBuilder) metadata(content reportContent) {
	lines := []string{
		"Generated: " + FormatReportDate(content.GeneratedAt),
		"Period: " + content.Period,
		fmt.Sprintf("Total Records: %d", content.Analytics.TotalRecords),
	}
	for _, line := range lines {
		paragraph := builder.document.NewParagraph(line)
		paragraph.SetFont(builder.regular)
		paragraph.SetFontSize(10)
		builder.draw(paragraph)
	}
}

func (builder *pdfBuilder) heading(text string) {
	paragraph := builder.document.NewParagraph(text)
	paragraph.SetFont(builder.bold)
	paragraph.SetFontSize(14)
	paragraph.SetMargins(0, 0, 14, 6)
	builder.draw(paragraph)
}

func (builder *pdfBuilder) paragraph(text string) {
	paragraph := builder.document.NewParagraph(text)
	paragraph.SetFont(builder.regular)
	paragraph.SetFontSize(10)
	paragraph.SetMargins(0, 0, 2, 2)
	builder.draw(paragraph)
}

func (builder *pdfBuilder) table(headers []string, rows [][]string) {
	table := builder.document.NewTable(len(headers))
	table.SetMargins(0, 0, 4, 8)

	for _, header := range headers {
		builder.cell(table, header, builder.bold)
	}
	for _, row := range rows {
		for _, value := range row {
			builder.cell(table, value, builder.regular)
		}
	}
	builder.draw(table)
}

func (builder *pdfBuilder) cell(table *creator.Table, text string, font *model.PdfFont) {
	paragraph := builder.document.NewParagraph(text)
	paragraph.SetFont(font)
	paragraph.SetFontSize(9)

	cell := table.NewCell()
	cell.SetBorder(creator.CellBorderSideAll, creator.CellBorderStyleSingle, 0.5)
	if builder.err == nil {
		builder.err = cell.SetContent(paragraph)
	}
}

func (builder *pdfBuilder) draw(drawable creator.Drawable) {
	if builder.err != nil {
		return
	}
	builder.err = builder.document.Draw(drawable)
}

func painTypeRows(content reportContent) [][]string {
	rows := make([][]string, 0, len(content.Analytics.CommonPainTypes))
	for _, painType := range content.Analytics.CommonPainTypes {
		rows = append(rows, []string{
			painType.Type,
			fmt.Sprintf("%d", painType.Count),
			fmt.Sprintf("%.1f%%", painType.Percentage),
		})
	}
	return rows
}

func treatmentRows(content reportContent) [][]string {
	rows := make([][]string, 0, len(content.Analytics.EffectiveTreatments))
	for _, treatment := range content.Analytics.EffectiveTreatments {
		rows = append(rows, []string{
			treatment.Treatment,
			fmt.Sprintf("%d", treatment.UsageCount),
			FormatAveragePain(treatment.AverageEffectiveness),
			fmt.Sprintf("%.1f%%", treatment.SuccessRate),
		})
	}
	return rows
}

func cycleRows(content reportContent) [][]string {
	rows := make([][]string, 0, len(content.Analytics.CyclePatterns))
	for _, pattern := range content.Analytics.CyclePatterns {
		rows = append(rows, []string{
			MenstrualStatusLabel(pattern.Phase),
			fmt.Sprintf("%d", pattern.Frequency),
			FormatAveragePain(pattern.AveragePainLevel),
			joinOrNone(pattern.CommonSymptoms),
		})
	}
	return rows
}

func recordRows(content reportContent) [][]string {
	rows := make([][]string, 0, len(content.Records))
	for _, record := range content.Records {
		medications := make([]string, 0, len(record.Medications))
		for _, medication := range record.Medications {
			medications = append(medications, medication.Name)
		}
		rows = append(rows, []string{
			FormatRecordDate(record.Date),
			record.Time,
			FormatPainLevel(record.PainLevel),
			MenstrualStatusLabel(record.MenstrualStatus),
			joinOrNone(medications),
			formatLifestyleFactors(record.LifestyleFactors),
		})
	}
	return rows
}
