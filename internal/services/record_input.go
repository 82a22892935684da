package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/terraincognita07/selene/internal/models"
)

// Validation issue codes. Warnings never block persistence.
const (
	IssueRequired      = "REQUIRED"
	IssueOutOfRange    = "OUT_OF_RANGE"
	IssueInvalidFormat = "INVALID_FORMAT"
	IssueInvalidDate   = "INVALID_DATE"
	IssueInvalidOption = "INVALID_OPTION"
	IssueTooLong       = "TOO_LONG"
	IssueInvalidType   = "INVALID_TYPE"
	IssueInvalidRange  = "INVALID_RANGE"
	IssueRangeTooLarge = "RANGE_TOO_LARGE"

	WarningHighPainLevel       = "HIGH_PAIN_LEVEL"
	WarningNoTreatmentHighPain = "NO_TREATMENT_HIGH_PAIN"
)

const (
	highPainThreshold = 8
	maxDateRangeYears = 2
)

type ValidationIssue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

type ValidationResult struct {
	IsValid  bool              `json:"isValid"`
	Errors   []ValidationIssue `json:"errors"`
	Warnings []ValidationIssue `json:"warnings"`
}

func (result ValidationResult) ErrorMessages() []string {
	messages := make([]string, 0, len(result.Errors))
	for _, issue := range result.Errors {
		messages = append(messages, issue.Message)
	}
	return messages
}

// RecordValidator checks pain records and import payloads against the data
// model's closed vocabularies and bounds. Free-text fields pass through a
// strict HTML sanitizer before persistence.
type RecordValidator struct {
	sanitizer *bluemonday.Policy
	now       func() time.Time
}

func NewRecordValidator() *RecordValidator {
	return &RecordValidator{
		sanitizer: bluemonday.StrictPolicy(),
		now:       time.Now,
	}
}

// ValidateRecord checks a single record. The returned error only reports a
// contract violation (nil record); domain problems land in the result.
func (validator *RecordValidator) ValidateRecord(record *models.PainRecord) (ValidationResult, error) {
	if record == nil {
		return ValidationResult{}, errors.New("record is required for validation")
	}

	result := ValidationResult{Errors: []ValidationIssue{}, Warnings: []ValidationIssue{}}

	validator.validateDate(record.Date, &result)
	validator.validateTime(record.Time, &result)
	validator.validatePainLevel(record.PainLevel, &result)
	validator.validatePainTypes(record.PainTypes, &result)
	validator.validateLocations(record.Locations, &result)
	validator.validateSymptoms(record.Symptoms, &result)
	validator.validateMenstrualStatus(record.MenstrualStatus, &result)
	validator.validateMedications(record.Medications, &result)
	validator.validateEffectiveness(record.Effectiveness, &result)
	validator.validateLifestyleFactors(record.LifestyleFactors, &result)
	validator.validateNotes(record.Notes, &result)

	if record.PainLevel >= highPainThreshold {
		result.Warnings = append(result.Warnings, ValidationIssue{
			Field:   "painLevel",
			Message: fmt.Sprintf("High pain level (%d/10) - consider consulting healthcare provider", record.PainLevel),
			Code:    WarningHighPainLevel,
		})
		if len(record.Medications) == 0 {
			result.Warnings = append(result.Warnings, ValidationIssue{
				Field:   "medications",
				Message: "No medications recorded for high pain level",
				Code:    WarningNoTreatmentHighPain,
			})
		}
	}

	result.IsValid = len(result.Errors) == 0
	return result, nil
}

func (validator *RecordValidator) validateDate(date string, result *ValidationResult) {
	if date == "" {
		result.Errors = append(result.Errors, ValidationIssue{Field: "date", Message: "Date is required", Code: IssueRequired})
		return
	}
	parsed, err := time.Parse(models.RecordDateLayout, date)
	if err != nil {
		result.Errors = append(result.Errors, ValidationIssue{Field: "date", Message: "Date must be in YYYY-MM-DD format", Code: IssueInvalidFormat})
		return
	}
	today := validator.now().UTC().Truncate(24 * time.Hour)
	if parsed.After(today) {
		result.Errors = append(result.Errors, ValidationIssue{Field: "date", Message: "Date cannot be in the future", Code: IssueInvalidDate})
	}
}

func (validator *RecordValidator) validateTime(value string, result *ValidationResult) {
	if value == "" {
		result.Errors = append(result.Errors, ValidationIssue{Field: "time", Message: "Time is required", Code: IssueRequired})
		return
	}
	// Parsing alone accepts one-digit hours ("9:05"); the round trip pins
	// the value to the zero-padded canonical form.
	parsed, err := time.Parse(models.RecordTimeLayout, value)
	if err != nil || parsed.Format(models.RecordTimeLayout) != value {
		result.Errors = append(result.Errors, ValidationIssue{Field: "time", Message: "Time must be in HH:MM format", Code: IssueInvalidFormat})
	}
}

func (validator *RecordValidator) validatePainLevel(level int, result *ValidationResult) {
	if level < 0 || level > models.MaxPainLevel {
		result.Errors = append(result.Errors, ValidationIssue{Field: "painLevel", Message: "Pain level must be between 0 and 10", Code: IssueOutOfRange})
	}
}

func (validator *RecordValidator) validatePainTypes(painTypes []string, result *ValidationResult) {
	if len(painTypes) == 0 {
		result.Errors = append(result.Errors, ValidationIssue{Field: "painTypes", Message: "At least one pain type is required", Code: IssueRequired})
		return
	}
	for _, painType := range painTypes {
		if !models.IsValidPainType(painType) {
			result.Errors = append(result.Errors, ValidationIssue{Field: "painTypes", Message: fmt.Sprintf("Invalid pain type: %s", painType), Code: IssueInvalidOption})
		}
	}
}

func (validator *RecordValidator) validateLocations(locations []string, result *ValidationResult) {
	for _, location := range locations {
		if !models.IsValidLocation(location) {
			result.Errors = append(result.Errors, ValidationIssue{Field: "locations", Message: fmt.Sprintf("Invalid location: %s", location), Code: IssueInvalidOption})
		}
	}
}

func (validator *RecordValidator) validateSymptoms(symptoms []string, result *ValidationResult) {
	for _, symptom := range symptoms {
		if !models.IsValidSymptom(symptom) {
			result.Errors = append(result.Errors, ValidationIssue{Field: "symptoms", Message: fmt.Sprintf("Invalid symptom: %s", symptom), Code: IssueInvalidOption})
		}
	}
}

func (validator *RecordValidator) validateMenstrualStatus(status string, result *ValidationResult) {
	if status == "" {
		result.Errors = append(result.Errors, ValidationIssue{Field: "menstrualStatus", Message: "Menstrual status is required", Code: IssueRequired})
		return
	}
	if !models.IsValidMenstrualStatus(status) {
		result.Errors = append(result.Errors, ValidationIssue{Field: "menstrualStatus", Message: fmt.Sprintf("Invalid menstrual status: %s", status), Code: IssueInvalidOption})
	}
}

func (validator *RecordValidator) validateMedications(medications []models.Medication, result *ValidationResult) {
	for _, medication := range medications {
		if strings.TrimSpace(medication.Name) == "" {
			result.Errors = append(result.Errors, ValidationIssue{Field: "medications", Message: "Medication name is required", Code: IssueRequired})
		}
	}
}

func (validator *RecordValidator) validateEffectiveness(effectiveness int, result *ValidationResult) {
	if effectiveness < 0 || effectiveness > models.MaxPainLevel {
		result.Errors = append(result.Errors, ValidationIssue{Field: "effectiveness", Message: "Effectiveness rating must be between 0 and 10", Code: IssueOutOfRange})
	}
}

func (validator *RecordValidator) validateLifestyleFactors(factors []models.LifestyleFactor, result *ValidationResult) {
	for _, factor := range factors {
		if !models.IsValidLifestyleFactor(factor.Factor) {
			result.Errors = append(result.Errors, ValidationIssue{Field: "lifestyleFactors", Message: fmt.Sprintf("Invalid lifestyle factor: %s", factor.Factor), Code: IssueInvalidOption})
		}
	}
}

func (validator *RecordValidator) validateNotes(notes string, result *ValidationResult) {
	if len(notes) > models.MaxNotesLength {
		result.Errors = append(result.Errors, ValidationIssue{Field: "notes", Message: "Notes must be 1000 characters or less", Code: IssueTooLong})
	}
}

// CheckForDuplicates reports whether a record with the same date, time and
// pain level already exists.
func (validator *RecordValidator) CheckForDuplicates(candidate models.PainRecord, existing []models.PainRecord) bool {
	key := candidate.DuplicateKey()
	for _, record := range existing {
		if record.DuplicateKey() == key {
			return true
		}
	}
	return false
}

// SanitizeInput strips markup from free text. Entities introduced by the
// sanitizer are unescaped again, so plain punctuation survives untouched.
func (validator *RecordValidator) SanitizeInput(value string) string {
	return strings.TrimSpace(html.UnescapeString(validator.sanitizer.Sanitize(value)))
}

// ValidateImportPayload structurally checks a raw import document before it
// is decoded into the typed payload: the records array and a numeric schema
// version must be present, and every record must pass full validation.
func (validator *RecordValidator) ValidateImportPayload(payload []byte) ValidationResult {
	result := ValidationResult{Errors: []ValidationIssue{}, Warnings: []ValidationIssue{}}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(payload, &raw); err != nil {
		result.Errors = append(result.Errors, ValidationIssue{Field: "data", Message: "Import data must be a JSON object", Code: IssueInvalidFormat})
		return result
	}

	recordsRaw, hasRecords := raw["records"]
	if !hasRecords {
		result.Errors = append(result.Errors, ValidationIssue{Field: "records", Message: "Records array is required", Code: IssueRequired})
	}

	versionRaw, hasVersion := raw["schemaVersion"]
	if !hasVersion {
		result.Errors = append(result.Errors, ValidationIssue{Field: "schemaVersion", Message: "Schema version is required", Code: IssueRequired})
	} else {
		var version float64
		if err := json.Unmarshal(versionRaw, &version); err != nil {
			result.Errors = append(result.Errors, ValidationIssue{Field: "schemaVersion", Message: "Schema version must be a number", Code: IssueInvalidType})
		}
	}

	if hasRecords {
		var records []models.PainRecord
		if err := json.Unmarshal(recordsRaw, &records); err != nil {
			result.Errors = append(result.Errors, ValidationIssue{Field: "records", Message: "Records must be an array of pain records", Code: IssueInvalidType})
		} else {
			validator.validateImportedRecords(records, &result)
		}
	}

	result.IsValid = len(result.Errors) == 0
	return result
}

func (validator *RecordValidator) validateImportedRecords(records []models.PainRecord, result *ValidationResult) {
	for index, record := range records {
		recordResult, err := validator.ValidateRecord(&record)
		if err != nil {
			continue
		}
		for _, issue := range recordResult.Errors {
			result.Errors = append(result.Errors, ValidationIssue{
				Field:   fmt.Sprintf("records[%d].%s", index, issue.Field),
				Message: fmt.Sprintf("Record %d: %s", index+1, issue.Message),
				Code:    issue.Code,
			})
		}
	}
}

// ValidateDateRange checks a query window: both bounds set, ordered, and no
// wider than two years.
func (validator *RecordValidator) ValidateDateRange(start time.Time, end time.Time) ValidationResult {
	result := ValidationResult{Errors: []ValidationIssue{}, Warnings: []ValidationIssue{}}

	if start.IsZero() {
		result.Errors = append(result.Errors, ValidationIssue{Field: "startDate", Message: "Invalid start date", Code: IssueInvalidDate})
	}
	if end.IsZero() {
		result.Errors = append(result.Errors, ValidationIssue{Field: "endDate", Message: "Invalid end date", Code: IssueInvalidDate})
	}
	if len(result.Errors) == 0 {
		if start.After(end) {
			result.Errors = append(result.Errors, ValidationIssue{Field: "dateRange", Message: "Start date must be before end date", Code: IssueInvalidRange})
		} else if end.After(start.AddDate(maxDateRangeYears, 0, 0)) {
			result.Errors = append(result.Errors, ValidationIssue{Field: "dateRange", Message: "Date range cannot exceed 2 years", Code: IssueRangeTooLarge})
		}
	}

	result.IsValid = len(result.Errors) == 0
	return result
}
