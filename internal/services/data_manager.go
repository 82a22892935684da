package services

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/terraincognita07/selene/internal/apperrors"
	"github.com/terraincognita07/selene/internal/models"
	"github.com/terraincognita07/selene/internal/storage"
)

// RecordStore is what the manager needs from the storage layer. The
// storage.LocalStoreAdapter satisfies it; tests use stubs.
type RecordStore interface {
	Save(key string, value any) error
	Load(key string, target any) (bool, error)
	Clear() error
	GetSize() (int64, error)
	CreateAutoBackup() (string, error)
	CleanupOldBackups() (int, error)
	Export() (models.StoredData, error)
	Restore(payload []byte) error
}

// RecordPatch holds a partial update. Nil fields leave the stored value
// untouched.
type RecordPatch struct {
	Date             *string
	Time             *string
	PainLevel        *int
	PainTypes        []string
	Locations        []string
	Symptoms         []string
	MenstrualStatus  *string
	Medications      []models.Medication
	Effectiveness    *int
	LifestyleFactors []models.LifestyleFactor
	Notes            *string
}

// DataManager owns every mutation of the record collection. Writes follow a
// fixed pipeline: validate, reject duplicates, snapshot a backup, then
// persist.
type DataManager struct {
	store     RecordStore
	validator *RecordValidator
	logger    *zap.Logger
	now       func() time.Time
	newID     func() string
}

func NewDataManager(store RecordStore, validator *RecordValidator, logger *zap.Logger) *DataManager {
	if validator == nil {
		validator = NewRecordValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DataManager{
		store:     store,
		validator: validator,
		logger:    logger,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// SaveRecord validates and persists a new record, assigning its identity
// and timestamps. The stored record is returned.
func (manager *DataManager) SaveRecord(candidate models.PainRecord) (models.PainRecord, error) {
	result, err := manager.validator.ValidateRecord(&candidate)
	if err != nil {
		return models.PainRecord{}, err
	}
	if !result.IsValid {
		return models.PainRecord{}, apperrors.New(apperrors.CodeValidationFailed, "record validation failed").
			WithDetails(result.ErrorMessages())
	}

	records, err := manager.loadRecords()
	if err != nil {
		return models.PainRecord{}, err
	}
	if manager.validator.CheckForDuplicates(candidate, records) {
		return models.PainRecord{}, apperrors.New(apperrors.CodeDuplicateRecord, "duplicate record detected")
	}

	manager.backupBestEffort("save")

	now := manager.now().UTC()
	stored := candidate
	stored.ID = manager.newID()
	stored.Notes = manager.validator.SanitizeInput(stored.Notes)
	stored.CreatedAt = now
	stored.UpdatedAt = now

	records = append(records, stored)
	if err := manager.store.Save(storage.KeyRecords, records); err != nil {
		return models.PainRecord{}, apperrors.Wrap(apperrors.CodeStorageError, "failed to save pain record", err)
	}

	manager.logger.Info("pain record saved", zap.String("id", stored.ID), zap.String("date", stored.Date))
	return stored, nil
}

// UpdateRecord applies a partial update to an existing record. The merged
// record is re-validated before it replaces the stored one.
func (manager *DataManager) UpdateRecord(id string, patch RecordPatch) (models.PainRecord, error) {
	records, err := manager.loadRecords()
	if err != nil {
		return models.PainRecord{}, err
	}

	index := indexOfRecord(records, id)
	if index < 0 {
		return models.PainRecord{}, apperrors.New(apperrors.CodeNotFound, "record not found")
	}

	merged := applyPatch(records[index], patch)
	result, err := manager.validator.ValidateRecord(&merged)
	if err != nil {
		return models.PainRecord{}, err
	}
	if !result.IsValid {
		return models.PainRecord{}, apperrors.New(apperrors.CodeValidationFailed, "updated record validation failed").
			WithDetails(result.ErrorMessages())
	}

	manager.backupBestEffort("update")

	merged.Notes = manager.validator.SanitizeInput(merged.Notes)
	merged.UpdatedAt = manager.now().UTC()
	records[index] = merged

	if err := manager.store.Save(storage.KeyRecords, records); err != nil {
		return models.PainRecord{}, apperrors.Wrap(apperrors.CodeStorageError, "failed to update pain record", err)
	}

	manager.logger.Info("pain record updated", zap.String("id", id))
	return merged, nil
}

// DeleteRecord removes a record by id.
func (manager *DataManager) DeleteRecord(id string) error {
	records, err := manager.loadRecords()
	if err != nil {
		return err
	}

	index := indexOfRecord(records, id)
	if index < 0 {
		return apperrors.New(apperrors.CodeNotFound, "record not found")
	}

	manager.backupBestEffort("delete")

	remaining := append(records[:index], records[index+1:]...)
	if err := manager.store.Save(storage.KeyRecords, remaining); err != nil {
		return apperrors.Wrap(apperrors.CodeStorageError, "failed to delete pain record", err)
	}

	manager.logger.Info("pain record deleted", zap.String("id", id))
	return nil
}

// GetRecord fetches a record by id, or nil when it does not exist.
func (manager *DataManager) GetRecord(id string) (*models.PainRecord, error) {
	records, err := manager.loadRecords()
	if err != nil {
		return nil, err
	}
	index := indexOfRecord(records, id)
	if index < 0 {
		return nil, nil
	}
	record := records[index]
	return &record, nil
}

// GetAllRecords returns every stored record. A fresh store yields an empty
// slice.
func (manager *DataManager) GetAllRecords() ([]models.PainRecord, error) {
	return manager.loadRecords()
}

func (manager *DataManager) loadRecords() ([]models.PainRecord, error) {
	records := make([]models.PainRecord, 0)
	if _, err := manager.store.Load(storage.KeyRecords, &records); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeStorageError, "failed to retrieve pain records", err)
	}
	return records, nil
}

// backupBestEffort snapshots before a mutation. A failed backup is logged
// and never blocks the write.
func (manager *DataManager) backupBestEffort(operation string) {
	if _, err := manager.store.CreateAutoBackup(); err != nil {
		manager.logger.Warn("auto backup failed", zap.String("operation", operation), zap.Error(err))
	}
}

func indexOfRecord(records []models.PainRecord, id string) int {
	for index, record := range records {
		if record.ID == id {
			return index
		}
	}
	return -1
}

func applyPatch(record models.PainRecord, patch RecordPatch) models.PainRecord {
	if patch.Date != nil {
		record.Date = *patch.Date
	}
	if patch.Time != nil {
		record.Time = *patch.Time
	}
	if patch.PainLevel != nil {
		record.PainLevel = *patch.PainLevel
	}
	if patch.PainTypes != nil {
		record.PainTypes = patch.PainTypes
	}
	if patch.Locations != nil {
		record.Locations = patch.Locations
	}
	if patch.Symptoms != nil {
		record.Symptoms = patch.Symptoms
	}
	if patch.MenstrualStatus != nil {
		record.MenstrualStatus = *patch.MenstrualStatus
	}
	if patch.Medications != nil {
		record.Medications = patch.Medications
	}
	if patch.Effectiveness != nil {
		record.Effectiveness = *patch.Effectiveness
	}
	if patch.LifestyleFactors != nil {
		record.LifestyleFactors = patch.LifestyleFactors
	}
	if patch.Notes != nil {
		record.Notes = *patch.Notes
	}
	return record
}
