package services

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/terraincognita07/selene/internal/apperrors"
	"github.com/terraincognita07/selene/internal/models"
	"github.com/terraincognita07/selene/internal/storage"
)

// MigrationStep upgrades a raw stored payload by one schema version. Steps
// are pure; persistence happens only after the whole chain succeeds.
type MigrationStep struct {
	ToVersion   int
	Description string
	Apply       func(raw json.RawMessage) (json.RawMessage, error)
}

func migrationSteps() []MigrationStep {
	return []MigrationStep{
		{
			ToVersion:   1,
			Description: "migrate legacy pain tracker payload to the enhanced layout",
			Apply:       migrateLegacyToV1,
		},
	}
}

// RunSchemaMigrations upgrades the persisted payload to the current schema
// version. A fresh store is stamped with the current version and left alone.
func RunSchemaMigrations(store RecordStore, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	var version int
	versionFound, err := store.Load(storage.KeySchemaVersion, &version)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeMigrationError, "failed to read schema version", err)
	}

	var rawRecords json.RawMessage
	recordsFound, err := store.Load(storage.KeyRecords, &rawRecords)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeMigrationError, "failed to read stored records", err)
	}

	if !versionFound && !recordsFound {
		if err := store.Save(storage.KeySchemaVersion, models.CurrentSchemaVersion); err != nil {
			return apperrors.Wrap(apperrors.CodeMigrationError, "failed to initialize schema version", err)
		}
		return nil
	}

	if version > models.CurrentSchemaVersion {
		return apperrors.New(apperrors.CodeMigrationError,
			fmt.Sprintf("stored schema version %d is newer than supported version %d", version, models.CurrentSchemaVersion))
	}
	if version == models.CurrentSchemaVersion {
		return nil
	}

	data, err := MigrateStoredPayload(rawRecords, version)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(data)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeMigrationError, "failed to serialize migrated data", err)
	}
	if err := store.Restore(payload); err != nil {
		return apperrors.Wrap(apperrors.CodeMigrationError, "failed to persist migrated data", err)
	}

	logger.Info("schema migration complete",
		zap.Int("fromVersion", version),
		zap.Int("toVersion", models.CurrentSchemaVersion),
		zap.Int("records", len(data.Records)),
	)
	return nil
}

// MigrateStoredPayload runs every step from fromVersion up to the current
// schema version and decodes the final payload.
func MigrateStoredPayload(raw json.RawMessage, fromVersion int) (models.StoredData, error) {
	steps := migrationSteps()
	sort.Slice(steps, func(i, j int) bool { return steps[i].ToVersion < steps[j].ToVersion })

	current := raw
	for _, step := range steps {
		if step.ToVersion <= fromVersion {
			continue
		}
		migrated, err := step.Apply(current)
		if err != nil {
			return models.StoredData{}, apperrors.Wrap(apperrors.CodeMigrationError,
				fmt.Sprintf("migration to version %d failed", step.ToVersion), err)
		}
		current = migrated
	}

	var data models.StoredData
	if err := json.Unmarshal(current, &data); err != nil {
		return models.StoredData{}, apperrors.Wrap(apperrors.CodeMigrationError, "migrated payload is not decodable", err)
	}
	if data.Records == nil {
		data.Records = []models.PainRecord{}
	}
	if data.Preferences == nil {
		data.Preferences = map[string]any{}
	}
	if data.Metadata == nil {
		data.Metadata = map[string]any{}
	}
	data.SchemaVersion = models.CurrentSchemaVersion
	return data, nil
}

// migrateLegacyToV1 accepts the three known legacy shapes: a bare array of
// entries, an object with a records array, or an object with painEntries.
func migrateLegacyToV1(raw json.RawMessage) (json.RawMessage, error) {
	entries, err := extractLegacyEntries(raw)
	if err != nil {
		return nil, err
	}

	records := make([]models.PainRecord, 0, len(entries))
	for index, entry := range entries {
		records = append(records, mapLegacyRecord(entry, index))
	}

	data := models.EmptyStoredData()
	data.Records = records
	return json.Marshal(data)
}

func extractLegacyEntries(raw json.RawMessage) ([]map[string]any, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	var direct []map[string]any
	if err := json.Unmarshal(raw, &direct); err == nil {
		return direct, nil
	}

	var wrapped struct {
		Records     []map[string]any `json:"records"`
		PainEntries []map[string]any `json:"painEntries"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, fmt.Errorf("unrecognized legacy payload: %w", err)
	}
	if wrapped.Records != nil {
		return wrapped.Records, nil
	}
	return wrapped.PainEntries, nil
}

func mapLegacyRecord(entry map[string]any, index int) models.PainRecord {
	now := time.Now().UTC()

	record := models.PainRecord{
		ID:               legacyString(entry, "id"),
		Date:             legacyString(entry, "date"),
		Time:             legacyTime(entry),
		PainLevel:        clampLevel(legacyNumber(entry, "intensity", legacyNumber(entry, "painLevel", 0))),
		PainTypes:        legacyPainTypes(entry),
		Locations:        legacyLocations(entry),
		Symptoms:         legacySymptoms(entry),
		MenstrualStatus:  mapLegacyMenstrualStatus(legacyString(entry, "menstrualStatus")),
		Medications:      legacyMedications(entry),
		Effectiveness:    clampLevel(legacyNumber(entry, "effectiveness", 0)),
		LifestyleFactors: legacyLifestyleFactors(entry),
		Notes:            legacyString(entry, "notes"),
		CreatedAt:        legacyTimestamp(entry, "createdAt", now),
		UpdatedAt:        legacyTimestamp(entry, "updatedAt", now),
	}

	if record.ID == "" {
		record.ID = fmt.Sprintf("migrated_%d_%d", now.UnixMilli(), index)
	}
	if record.Date == "" {
		record.Date = now.Format(models.RecordDateLayout)
	}
	return record
}

func legacyString(entry map[string]any, key string) string {
	value, _ := entry[key].(string)
	return value
}

func legacyNumber(entry map[string]any, key string, fallback float64) float64 {
	if value, ok := entry[key].(float64); ok {
		return value
	}
	return fallback
}

func legacyTime(entry map[string]any) string {
	if value := legacyString(entry, "time"); value != "" {
		return value
	}
	if createdAt := legacyString(entry, "createdAt"); createdAt != "" {
		if parsed, err := time.Parse(time.RFC3339, createdAt); err == nil {
			return parsed.Format(models.RecordTimeLayout)
		}
	}
	return "12:00"
}

func legacyTimestamp(entry map[string]any, key string, fallback time.Time) time.Time {
	if raw := legacyString(entry, key); raw != "" {
		if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
			return parsed
		}
	}
	return fallback
}

func clampLevel(value float64) int {
	level := int(value)
	if level < 0 {
		return 0
	}
	if level > models.MaxPainLevel {
		return models.MaxPainLevel
	}
	return level
}

var legacyPainTypeMap = map[string]string{
	"cramping":   models.PainTypeCramping,
	"dull_pain":  models.PainTypeAching,
	"sharp_pain": models.PainTypeSharp,
	"throbbing":  models.PainTypeThrobbing,
	"burning":    models.PainTypeBurning,
	"pressure":   models.PainTypePressure,
}

func legacyPainTypes(entry map[string]any) []string {
	painTypes := make([]string, 0)

	if single := legacyString(entry, "painType"); single != "" {
		painTypes = append(painTypes, mapLegacyPainType(single))
	}
	if list, ok := entry["painTypes"].([]any); ok {
		for _, item := range list {
			if value, ok := item.(string); ok {
				painTypes = append(painTypes, mapLegacyPainType(value))
			}
		}
	}
	if len(painTypes) == 0 {
		painTypes = inferPainTypesFromNotes(legacyString(entry, "notes"))
	}
	return dedupeStrings(painTypes)
}

func mapLegacyPainType(legacyType string) string {
	if mapped, ok := legacyPainTypeMap[legacyType]; ok {
		return mapped
	}
	return models.PainTypeAching
}

func inferPainTypesFromNotes(notes string) []string {
	lower := strings.ToLower(notes)
	types := make([]string, 0)
	if strings.Contains(lower, "cramp") {
		types = append(types, models.PainTypeCramping)
	}
	if strings.Contains(lower, "sharp") {
		types = append(types, models.PainTypeSharp)
	}
	if strings.Contains(lower, "throb") {
		types = append(types, models.PainTypeThrobbing)
	}
	if strings.Contains(lower, "burn") {
		types = append(types, models.PainTypeBurning)
	}
	if strings.Contains(lower, "pressure") {
		types = append(types, models.PainTypePressure)
	}
	if strings.Contains(lower, "ache") || strings.Contains(lower, "dull") {
		types = append(types, models.PainTypeAching)
	}
	return types
}

var legacyLocationMap = map[string]string{
	"lower_abdomen": models.LocationLowerAbdomen,
	"lower_back":    models.LocationLowerBack,
	"thighs":        models.LocationUpperThighs,
	"pelvis":        models.LocationPelvis,
	"side":          models.LocationSide,
	"whole_abdomen": models.LocationWholeAbdomen,
	"other":         models.LocationLowerAbdomen,
}

func legacyLocations(entry map[string]any) []string {
	locations := make([]string, 0)
	if single := legacyString(entry, "location"); single != "" {
		locations = append(locations, mapLegacyLocation(single))
	}
	if list, ok := entry["locations"].([]any); ok {
		for _, item := range list {
			if value, ok := item.(string); ok {
				locations = append(locations, mapLegacyLocation(value))
			}
		}
	}
	return dedupeStrings(locations)
}

func mapLegacyLocation(legacyLocation string) string {
	if mapped, ok := legacyLocationMap[legacyLocation]; ok {
		return mapped
	}
	return models.LocationLowerAbdomen
}

var legacySymptomMap = map[string]string{
	"nausea":            models.SymptomNausea,
	"headache":          models.SymptomHeadache,
	"fatigue":           models.SymptomFatigue,
	"bloating":          models.SymptomBloating,
	"mood_changes":      models.SymptomMoodChanges,
	"back_pain":         models.SymptomFatigue,
	"vomiting":          models.SymptomVomiting,
	"diarrhea":          models.SymptomDiarrhea,
	"breast_tenderness": models.SymptomBreastTenderness,
}

func legacySymptoms(entry map[string]any) []string {
	list, ok := entry["symptoms"].([]any)
	if !ok {
		return []string{}
	}
	symptoms := make([]string, 0, len(list))
	for _, item := range list {
		value, ok := item.(string)
		if !ok {
			continue
		}
		if mapped, exists := legacySymptomMap[value]; exists {
			symptoms = append(symptoms, mapped)
		} else {
			symptoms = append(symptoms, models.SymptomFatigue)
		}
	}
	return symptoms
}

var legacyStatusMap = map[string]string{
	"before":        models.StatusBeforePeriod,
	"during":        models.StatusDay1,
	"after":         models.StatusAfterPeriod,
	"none":          models.StatusMidCycle,
	"before_period": models.StatusBeforePeriod,
	"day_1":         models.StatusDay1,
	"day_2_3":       models.StatusDay2To3,
	"day_4_plus":    models.StatusDay4Plus,
	"after_period":  models.StatusAfterPeriod,
	"mid_cycle":     models.StatusMidCycle,
	"irregular":     models.StatusIrregular,
}

func mapLegacyMenstrualStatus(legacyStatus string) string {
	if mapped, ok := legacyStatusMap[legacyStatus]; ok {
		return mapped
	}
	return models.StatusMidCycle
}

func legacyMedications(entry map[string]any) []models.Medication {
	raw, ok := entry["treatments"].([]any)
	if !ok {
		raw, ok = entry["medications"].([]any)
	}
	if !ok {
		return []models.Medication{}
	}

	medications := make([]models.Medication, 0, len(raw))
	for _, item := range raw {
		switch treatment := item.(type) {
		case string:
			medications = append(medications, models.Medication{Name: treatment, Timing: "during pain"})
		case map[string]any:
			name, _ := treatment["name"].(string)
			if name == "" {
				name = "Unknown medication"
			}
			dosage, _ := treatment["dosage"].(string)
			timing, _ := treatment["timing"].(string)
			if timing == "" {
				timing = "during pain"
			}
			medications = append(medications, models.Medication{Name: name, Dosage: dosage, Timing: timing})
		default:
			medications = append(medications, models.Medication{Name: "Unknown medication", Timing: "during pain"})
		}
	}
	return medications
}

var (
	stressNotePattern = regexp.MustCompile(`(?i)stress.*?(\d+)`)
	sleepNotePattern  = regexp.MustCompile(`(?i)sleep.*?(\d+)`)
)

// legacyLifestyleFactors mines the free-text notes for stress and sleep
// figures, the only lifestyle data the legacy tracker could carry.
func legacyLifestyleFactors(entry map[string]any) []models.LifestyleFactor {
	notes := legacyString(entry, "notes")
	factors := make([]models.LifestyleFactor, 0)

	if match := stressNotePattern.FindStringSubmatch(notes); match != nil {
		if value, err := strconv.Atoi(match[1]); err == nil {
			factors = append(factors, models.LifestyleFactor{Factor: models.FactorStressLevel, Value: float64(value)})
		}
	}
	if match := sleepNotePattern.FindStringSubmatch(notes); match != nil {
		if value, err := strconv.Atoi(match[1]); err == nil {
			factors = append(factors, models.LifestyleFactor{Factor: models.FactorSleepHours, Value: float64(value)})
		}
	}
	return factors
}

func dedupeStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	unique := make([]string, 0, len(values))
	for _, value := range values {
		if _, exists := seen[value]; exists {
			continue
		}
		seen[value] = struct{}{}
		unique = append(unique, value)
	}
	return unique
}
