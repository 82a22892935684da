package services

import (
	"testing"
	"time"

	"github.com/terraincognita07/selene/internal/models"
)

func validRecord() models.PainRecord {
	return models.PainRecord{
		Date:            "2024-01-15",
		Time:            "14:30",
		PainLevel:       7,
		PainTypes:       []string{models.PainTypeCramping, models.PainTypeSharp},
		Locations:       []string{models.LocationLowerAbdomen},
		Symptoms:        []string{models.SymptomNausea},
		MenstrualStatus: models.StatusDay1,
		Medications:     []models.Medication{{Name: "ibuprofen", Dosage: "400mg", Timing: "during pain"}},
		Effectiveness:   7,
		Notes:           "strong cramps in the morning",
	}
}

func hasIssue(issues []ValidationIssue, code string, message string) bool {
	for _, issue := range issues {
		if issue.Code == code && issue.Message == message {
			return true
		}
	}
	return false
}

func TestValidateRecordAcceptsCompleteRecord(t *testing.T) {
	validator := NewRecordValidator()

	record := validRecord()
	result, err := validator.ValidateRecord(&record)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !result.IsValid {
		t.Fatalf("expected valid record, errors: %v", result.Errors)
	}
}

func TestValidateRecordRejectsNil(t *testing.T) {
	validator := NewRecordValidator()

	if _, err := validator.ValidateRecord(nil); err == nil {
		t.Fatalf("expected error for nil record")
	}
}

func TestValidateRecordRequiredFields(t *testing.T) {
	validator := NewRecordValidator()

	record := validRecord()
	record.Date = ""
	record.Time = ""
	record.PainTypes = nil
	record.MenstrualStatus = ""

	result, err := validator.ValidateRecord(&record)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if result.IsValid {
		t.Fatalf("expected invalid record")
	}
	if !hasIssue(result.Errors, IssueRequired, "Date is required") {
		t.Fatalf("missing date error: %v", result.Errors)
	}
	if !hasIssue(result.Errors, IssueRequired, "Time is required") {
		t.Fatalf("missing time error: %v", result.Errors)
	}
	if !hasIssue(result.Errors, IssueRequired, "At least one pain type is required") {
		t.Fatalf("missing pain type error: %v", result.Errors)
	}
	if !hasIssue(result.Errors, IssueRequired, "Menstrual status is required") {
		t.Fatalf("missing status error: %v", result.Errors)
	}
}

func TestValidateRecordPainLevelBounds(t *testing.T) {
	validator := NewRecordValidator()

	record := validRecord()
	record.PainLevel = 11
	result, _ := validator.ValidateRecord(&record)
	if !hasIssue(result.Errors, IssueOutOfRange, "Pain level must be between 0 and 10") {
		t.Fatalf("expected out of range error: %v", result.Errors)
	}

	record.PainLevel = -1
	result, _ = validator.ValidateRecord(&record)
	if !hasIssue(result.Errors, IssueOutOfRange, "Pain level must be between 0 and 10") {
		t.Fatalf("expected out of range error: %v", result.Errors)
	}

	record.PainLevel = 0
	result, _ = validator.ValidateRecord(&record)
	if !result.IsValid {
		t.Fatalf("pain level 0 must be valid: %v", result.Errors)
	}
}

func TestValidateRecordDateAndTimeFormats(t *testing.T) {
	validator := NewRecordValidator()

	record := validRecord()
	record.Date = "15/01/2024"
	result, _ := validator.ValidateRecord(&record)
	if !hasIssue(result.Errors, IssueInvalidFormat, "Date must be in YYYY-MM-DD format") {
		t.Fatalf("expected date format error: %v", result.Errors)
	}

	record = validRecord()
	record.Time = "2pm"
	result, _ = validator.ValidateRecord(&record)
	if !hasIssue(result.Errors, IssueInvalidFormat, "Time must be in HH:MM format") {
		t.Fatalf("expected time format error: %v", result.Errors)
	}
}

func TestValidateRecordRejectsNonCanonicalTime(t *testing.T) {
	validator := NewRecordValidator()

	for _, value := range []string{"9:05", "09:5", "24:00", "09:60"} {
		record := validRecord()
		record.Time = value
		result, _ := validator.ValidateRecord(&record)
		if !hasIssue(result.Errors, IssueInvalidFormat, "Time must be in HH:MM format") {
			t.Fatalf("time %q must be rejected: %v", value, result.Errors)
		}
	}

	record := validRecord()
	record.Time = "09:05"
	result, _ := validator.ValidateRecord(&record)
	if !result.IsValid {
		t.Fatalf("zero-padded time must be valid: %v", result.Errors)
	}
}

func TestValidateRecordRejectsFutureDate(t *testing.T) {
	validator := NewRecordValidator()
	validator.now = func() time.Time { return time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC) }

	record := validRecord()
	record.Date = "2024-06-02"
	result, _ := validator.ValidateRecord(&record)
	if !hasIssue(result.Errors, IssueInvalidDate, "Date cannot be in the future") {
		t.Fatalf("expected future date error: %v", result.Errors)
	}

	record.Date = "2024-06-01"
	result, _ = validator.ValidateRecord(&record)
	if !result.IsValid {
		t.Fatalf("today must be valid: %v", result.Errors)
	}
}

func TestValidateRecordClosedVocabularies(t *testing.T) {
	validator := NewRecordValidator()

	record := validRecord()
	record.PainTypes = []string{"stabbing"}
	record.Locations = []string{"shoulder"}
	record.Symptoms = []string{"dizziness"}
	record.MenstrualStatus = "full_moon"
	record.LifestyleFactors = []models.LifestyleFactor{{Factor: "caffeine", Value: 3}}

	result, _ := validator.ValidateRecord(&record)
	if !hasIssue(result.Errors, IssueInvalidOption, "Invalid pain type: stabbing") {
		t.Fatalf("expected pain type error: %v", result.Errors)
	}
	if !hasIssue(result.Errors, IssueInvalidOption, "Invalid location: shoulder") {
		t.Fatalf("expected location error: %v", result.Errors)
	}
	if !hasIssue(result.Errors, IssueInvalidOption, "Invalid symptom: dizziness") {
		t.Fatalf("expected symptom error: %v", result.Errors)
	}
	if !hasIssue(result.Errors, IssueInvalidOption, "Invalid menstrual status: full_moon") {
		t.Fatalf("expected status error: %v", result.Errors)
	}
	if !hasIssue(result.Errors, IssueInvalidOption, "Invalid lifestyle factor: caffeine") {
		t.Fatalf("expected factor error: %v", result.Errors)
	}
}

func TestValidateRecordNotesAndMedications(t *testing.T) {
	validator := NewRecordValidator()

	record := validRecord()
	record.Notes = string(make([]byte, 1001))
	result, _ := validator.ValidateRecord(&record)
	if !hasIssue(result.Errors, IssueTooLong, "Notes must be 1000 characters or less") {
		t.Fatalf("expected notes error: %v", result.Errors)
	}

	record = validRecord()
	record.Medications = []models.Medication{{Name: "   "}}
	result, _ = validator.ValidateRecord(&record)
	if !hasIssue(result.Errors, IssueRequired, "Medication name is required") {
		t.Fatalf("expected medication error: %v", result.Errors)
	}
}

func TestValidateRecordHighPainWarnings(t *testing.T) {
	validator := NewRecordValidator()

	record := validRecord()
	record.PainLevel = 8
	result, _ := validator.ValidateRecord(&record)
	if !result.IsValid {
		t.Fatalf("warnings must not invalidate: %v", result.Errors)
	}
	if !hasIssue(result.Warnings, WarningHighPainLevel, "High pain level (8/10) - consider consulting healthcare provider") {
		t.Fatalf("expected high pain warning: %v", result.Warnings)
	}

	record.Medications = nil
	result, _ = validator.ValidateRecord(&record)
	if !hasIssue(result.Warnings, WarningNoTreatmentHighPain, "No medications recorded for high pain level") {
		t.Fatalf("expected no treatment warning: %v", result.Warnings)
	}

	record.PainLevel = 7
	result, _ = validator.ValidateRecord(&record)
	if len(result.Warnings) != 0 {
		t.Fatalf("expected no warnings at level 7: %v", result.Warnings)
	}
}

func TestCheckForDuplicatesMatchesTriple(t *testing.T) {
	validator := NewRecordValidator()

	existing := []models.PainRecord{{Date: "2024-01-15", Time: "14:30", PainLevel: 7}}

	candidate := models.PainRecord{Date: "2024-01-15", Time: "14:30", PainLevel: 7}
	if !validator.CheckForDuplicates(candidate, existing) {
		t.Fatalf("expected duplicate")
	}

	candidate.PainLevel = 6
	if validator.CheckForDuplicates(candidate, existing) {
		t.Fatalf("different pain level is not a duplicate")
	}

	candidate = models.PainRecord{Date: "2024-01-15", Time: "14:31", PainLevel: 7}
	if validator.CheckForDuplicates(candidate, existing) {
		t.Fatalf("different time is not a duplicate")
	}
}

func TestSanitizeInputStripsMarkup(t *testing.T) {
	validator := NewRecordValidator()

	if got := validator.SanitizeInput(`<script>alert("xss")</script>Normal text`); got != "Normal text" {
		t.Fatalf("unexpected sanitized value: %q", got)
	}
	if got := validator.SanitizeInput("<b>Bold</b> move"); got != "Bold move" {
		t.Fatalf("unexpected sanitized value: %q", got)
	}
	if got := validator.SanitizeInput("Chars: !@#$%^&*()"); got != "Chars: !@#$%^&*()" {
		t.Fatalf("punctuation must survive: %q", got)
	}
}

func TestValidateDateRange(t *testing.T) {
	validator := NewRecordValidator()

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	if result := validator.ValidateDateRange(start, end); !result.IsValid {
		t.Fatalf("expected valid range: %v", result.Errors)
	}

	result := validator.ValidateDateRange(end, start)
	if !hasIssue(result.Errors, IssueInvalidRange, "Start date must be before end date") {
		t.Fatalf("expected order error: %v", result.Errors)
	}

	result = validator.ValidateDateRange(start, start.AddDate(2, 0, 1))
	if !hasIssue(result.Errors, IssueRangeTooLarge, "Date range cannot exceed 2 years") {
		t.Fatalf("expected size error: %v", result.Errors)
	}

	result = validator.ValidateDateRange(time.Time{}, end)
	if !hasIssue(result.Errors, IssueInvalidDate, "Invalid start date") {
		t.Fatalf("expected invalid start: %v", result.Errors)
	}
}

func TestValidateImportPayload(t *testing.T) {
	validator := NewRecordValidator()

	if result := validator.ValidateImportPayload([]byte("not json")); result.IsValid {
		t.Fatalf("expected invalid payload")
	}

	result := validator.ValidateImportPayload([]byte(`{"preferences":{}}`))
	if !hasIssue(result.Errors, IssueRequired, "Records array is required") {
		t.Fatalf("expected records error: %v", result.Errors)
	}
	if !hasIssue(result.Errors, IssueRequired, "Schema version is required") {
		t.Fatalf("expected version error: %v", result.Errors)
	}

	result = validator.ValidateImportPayload([]byte(`{"records":[],"schemaVersion":"one"}`))
	if !hasIssue(result.Errors, IssueInvalidType, "Schema version must be a number") {
		t.Fatalf("expected version type error: %v", result.Errors)
	}

	valid := `{"records":[],"schemaVersion":1,"preferences":{},"metadata":{}}`
	if result := validator.ValidateImportPayload([]byte(valid)); !result.IsValid {
		t.Fatalf("expected valid payload: %v", result.Errors)
	}

	invalidRecord := `{"records":[{"date":"2024-01-15","time":"14:30","painLevel":15,"painTypes":["cramping"],"menstrualStatus":"day_1"}],"schemaVersion":1}`
	result = validator.ValidateImportPayload([]byte(invalidRecord))
	if result.IsValid {
		t.Fatalf("expected per-record validation to fail")
	}
	if !hasIssue(result.Errors, IssueOutOfRange, "Record 1: Pain level must be between 0 and 10") {
		t.Fatalf("expected prefixed record error: %v", result.Errors)
	}
}
