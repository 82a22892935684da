package services

import (
	"encoding/json"
	"math"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/terraincognita07/selene/internal/apperrors"
	"github.com/terraincognita07/selene/internal/models"
	"github.com/terraincognita07/selene/internal/storage"
)

type DataStatistics struct {
	TotalRecords     int        `json:"totalRecords"`
	OldestRecord     *time.Time `json:"oldestRecord,omitempty"`
	NewestRecord     *time.Time `json:"newestRecord,omitempty"`
	AveragePainLevel float64    `json:"averagePainLevel"`
	StorageSize      int64      `json:"storageSize"`
}

type CleanupResult struct {
	RemovedRecords int   `json:"removedRecords"`
	RemovedBackups int   `json:"removedBackups"`
	OptimizedSize  int64 `json:"optimizedSize"`
}

// ExportData returns the full persisted payload for transfer.
func (manager *DataManager) ExportData() (models.StoredData, error) {
	data, err := manager.store.Export()
	if err != nil {
		return models.StoredData{}, apperrors.Wrap(apperrors.CodeStorageError, "failed to export data", err)
	}
	return data, nil
}

// ExportArchive serializes the payload and seals it with the passphrase.
func (manager *DataManager) ExportArchive(passphrase string) ([]byte, error) {
	data, err := manager.ExportData()
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeStorageError, "failed to export data", err)
	}
	archive, err := storage.EncryptArchive(payload, passphrase)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeStorageError, "failed to encrypt export archive", err)
	}
	return archive, nil
}

// ImportData replaces the entire stored payload after structural and
// per-record validation. A backup is taken before anything is overwritten.
func (manager *DataManager) ImportData(data models.StoredData) error {
	if data.Records == nil {
		return apperrors.New(apperrors.CodeInvalidImportFormat, "invalid import data format")
	}

	invalid := make([]string, 0)
	for index, record := range data.Records {
		result, err := manager.validator.ValidateRecord(&record)
		if err != nil {
			return err
		}
		if !result.IsValid {
			invalid = append(invalid, describeInvalidRecord(index, record, result))
		}
	}
	if len(invalid) > 0 {
		return apperrors.New(apperrors.CodeImportInvalidRecords, "import data contains invalid records").
			WithDetails(invalid)
	}

	manager.backupBestEffort("import")

	payload, err := json.Marshal(data)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeInvalidImportFormat, "invalid import data format", err)
	}
	if err := manager.store.Restore(payload); err != nil {
		return apperrors.Wrap(apperrors.CodeStorageError, "failed to import data", err)
	}

	manager.logger.Info("data imported", zap.Int("records", len(data.Records)))
	return nil
}

// ImportPayload decodes and imports a raw export document.
func (manager *DataManager) ImportPayload(payload []byte) error {
	result := manager.validator.ValidateImportPayload(payload)
	if !result.IsValid {
		return apperrors.New(apperrors.CodeInvalidImportFormat, "invalid import data format").
			WithDetails(result.ErrorMessages())
	}

	var data models.StoredData
	if err := json.Unmarshal(payload, &data); err != nil {
		return apperrors.Wrap(apperrors.CodeInvalidImportFormat, "invalid import data format", err)
	}
	return manager.ImportData(data)
}

// ImportArchive opens a sealed archive and imports its payload.
func (manager *DataManager) ImportArchive(archive []byte, passphrase string) error {
	payload, err := storage.DecryptArchive(archive, passphrase)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeInvalidImportFormat, "failed to decrypt import archive", err)
	}
	return manager.ImportPayload(payload)
}

// ClearAllData wipes the live payload after taking a final backup.
func (manager *DataManager) ClearAllData() error {
	manager.backupBestEffort("clear")
	if err := manager.store.Clear(); err != nil {
		return apperrors.Wrap(apperrors.CodeStorageError, "failed to clear data", err)
	}
	manager.logger.Info("all data cleared")
	return nil
}

// GetDataStatistics summarizes the stored collection.
func (manager *DataManager) GetDataStatistics() (DataStatistics, error) {
	records, err := manager.loadRecords()
	if err != nil {
		return DataStatistics{}, err
	}

	stats := DataStatistics{TotalRecords: len(records)}

	if size, err := manager.store.GetSize(); err == nil {
		stats.StorageSize = size
	}

	if len(records) == 0 {
		return stats, nil
	}

	var total int
	var oldest, newest time.Time
	for _, record := range records {
		total += record.PainLevel
		day := record.EventDate()
		if day.IsZero() {
			continue
		}
		if oldest.IsZero() || day.Before(oldest) {
			oldest = day
		}
		if newest.IsZero() || day.After(newest) {
			newest = day
		}
	}
	stats.AveragePainLevel = roundToOneDecimal(float64(total) / float64(len(records)))
	if !oldest.IsZero() {
		stats.OldestRecord = &oldest
	}
	if !newest.IsZero() {
		stats.NewestRecord = &newest
	}
	return stats, nil
}

// PerformDataCleanup deduplicates the collection and prunes expired backups.
func (manager *DataManager) PerformDataCleanup() (CleanupResult, error) {
	records, err := manager.loadRecords()
	if err != nil {
		return CleanupResult{}, err
	}

	manager.backupBestEffort("cleanup")

	seen := make(map[string]struct{}, len(records))
	deduplicated := make([]models.PainRecord, 0, len(records))
	for _, record := range records {
		key := record.DuplicateKey()
		if _, exists := seen[key]; exists {
			continue
		}
		seen[key] = struct{}{}
		deduplicated = append(deduplicated, record)
	}

	removed := len(records) - len(deduplicated)
	if removed > 0 {
		if err := manager.store.Save(storage.KeyRecords, deduplicated); err != nil {
			return CleanupResult{}, apperrors.Wrap(apperrors.CodeStorageError, "failed to clean up data", err)
		}
	}

	removedBackups, err := manager.store.CleanupOldBackups()
	if err != nil {
		return CleanupResult{}, err
	}

	size, err := manager.store.GetSize()
	if err != nil {
		return CleanupResult{}, err
	}

	result := CleanupResult{RemovedRecords: removed, RemovedBackups: removedBackups, OptimizedSize: size}
	manager.logger.Info("data cleanup finished",
		zap.Int("removedRecords", result.RemovedRecords),
		zap.Int("removedBackups", result.RemovedBackups),
	)
	return result, nil
}

func describeInvalidRecord(index int, record models.PainRecord, result ValidationResult) string {
	identity := record.ID
	if identity == "" {
		identity = record.Date + " " + record.Time
	}
	messages := result.ErrorMessages()
	summary := "invalid record"
	if len(messages) > 0 {
		summary = messages[0]
	}
	return "record " + strconv.Itoa(index+1) + " (" + identity + "): " + summary
}

func roundToOneDecimal(value float64) float64 {
	return math.Round(value*10) / 10
}
